package adapter

import (
	"context"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/ByteBell/pyano/internal/envcfg"
	"github.com/ByteBell/pyano/internal/model"
)

// BuildCommand constructs the child-process invocation for state: the
// executable is resolved via the manifest by (model_kind, os, arch); the
// arguments are derived purely from state fields (spec.md §4.4 — "Produces
// no side effects beyond reading state and environment variables; emitting
// the command is a pure function of inputs").
func BuildCommand(ctx context.Context, m *Manifest, st *model.State) (*exec.Cmd, error) {
	bin, err := m.Resolve(st.Config.ModelConfig.ModelKind)
	if err != nil {
		return nil, err
	}

	args := []string{
		"-m", filepath.Join(envcfg.ModelHome(), st.Config.ModelConfig.ModelPath),
		"--ctx-size", strconv.Itoa(st.Config.Server.CtxSize),
	}

	if port := st.Port(); port != nil {
		args = append(args, "--port", strconv.Itoa(*port))
	}
	if st.Config.Server.NumThreads != nil {
		args = append(args, "--threads", strconv.Itoa(*st.Config.Server.NumThreads))
	}
	if st.Config.Server.GPULayers > 0 {
		args = append(args, "--n-gpu-layers", strconv.Itoa(st.Config.Server.GPULayers))
	}
	if !st.Config.Server.UseMmap {
		args = append(args, "--no-mmap")
	}
	args = append(args, "--batch-size", strconv.Itoa(st.Config.Server.BatchSize))

	// Extra args appended in a stable (sorted-by-key) insertion order —
	// map iteration order is otherwise undefined in Go, and spec.md §6
	// requires "insertion order", which for a JSON object has no
	// canonical meaning beyond key order once decoded.
	keys := make([]string, 0, len(st.Config.Server.ExtraArgs))
	for k := range st.Config.Server.ExtraArgs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, "--"+k, st.Config.Server.ExtraArgs[k])
	}

	return exec.CommandContext(ctx, bin, args...), nil
}
