// Package main is the single-binary entrypoint for pyano.
package main

import "github.com/ByteBell/pyano/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
