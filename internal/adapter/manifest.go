// Package adapter implements the Process Adapter (spec.md §4.4): given a
// Model State, it produces a fully-formed child-process invocation, chosen
// by host OS/arch and model kind from a fixed adapters directory.
package adapter

import (
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/ByteBell/pyano/internal/envcfg"
	"github.com/ByteBell/pyano/internal/pyanoerr"
)

// Entry is one row of the adapter manifest: the executable path for a
// given (model kind, os, arch) triple, relative to ADAPTERS_HOME.
type Entry struct {
	Kind string `yaml:"kind"`
	OS   string `yaml:"os"`
	Arch string `yaml:"arch"`
	Path string `yaml:"path"`
}

type manifestDoc struct {
	Adapters []Entry `yaml:"adapters"`
}

// Manifest resolves (kind, os, arch) to an adapter binary path.
type Manifest struct {
	entries []Entry
	home    string
}

// LoadManifest reads ADAPTERS_HOME/manifest.yaml. The manifest is the
// (addition) YAML-driven generalization of the original's single
// hardcoded-per-OS llama-server path (see SPEC_FULL.md §4.4).
func LoadManifest() (*Manifest, error) {
	home := envcfg.AdaptersHome()
	path := filepath.Join(home, "manifest.yaml")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pyanoerr.NewConfigError("reading adapter manifest %q: %v", path, err)
	}

	var doc manifestDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, pyanoerr.NewConfigError("parsing adapter manifest %q: %v", path, err)
	}

	return &Manifest{entries: doc.Adapters, home: home}, nil
}

// Resolve returns the absolute adapter binary path for modelKind on the
// current host OS/arch. Missing manifest entry is a ProcessError.
func (m *Manifest) Resolve(modelKind string) (string, error) {
	goos, goarch := runtime.GOOS, runtime.GOARCH
	for _, e := range m.entries {
		if e.Kind == modelKind && e.OS == goos && e.Arch == goarch {
			return filepath.Join(m.home, e.Path), nil
		}
	}
	// Fall back to a generic "llama"-style entry when the exact kind isn't
	// listed — mirrors the manager's default stream-processor dispatch
	// (spec.md §4.6: unrecognized model_kind falls back to the llamacpp path).
	for _, e := range m.entries {
		if e.Kind == "LLaMA" && e.OS == goos && e.Arch == goarch {
			return filepath.Join(m.home, e.Path), nil
		}
	}
	return "", pyanoerr.NewProcessError("no adapter for kind=%s os=%s arch=%s in manifest", modelKind, goos, goarch)
}
