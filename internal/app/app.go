// Package app wires together the registry, adapter manifest, and manager
// into one ready-to-use runtime, the way the CLI and any embedding program
// bootstrap pyano.
package app

import (
	"github.com/ByteBell/pyano/internal/adapter"
	"github.com/ByteBell/pyano/internal/manager"
	"github.com/ByteBell/pyano/internal/registry"
)

// App bundles the constructed Registry and Manager.
type App struct {
	Registry *registry.Registry
	Manager  *manager.Manager
}

// New loads the registry and adapter manifest from their configured
// environment-variable locations and constructs a Manager over them.
func New() (*App, error) {
	reg, err := registry.New()
	if err != nil {
		return nil, err
	}

	manifest, err := adapter.LoadManifest()
	if err != nil {
		return nil, err
	}

	return &App{
		Registry: reg,
		Manager:  manager.New(reg, manifest),
	}, nil
}
