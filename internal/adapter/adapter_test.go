package adapter

import (
	"context"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByteBell/pyano/internal/model"
	"github.com/ByteBell/pyano/internal/registry"
)

func testManifest() *Manifest {
	return &Manifest{
		home: "/adapters",
		entries: []Entry{
			{Kind: "LLaMA", OS: runtime.GOOS, Arch: runtime.GOARCH, Path: "llama-server"},
			{Kind: "Qwen", OS: runtime.GOOS, Arch: runtime.GOARCH, Path: "qwen-server"},
		},
	}
}

func TestResolve_ExactMatch(t *testing.T) {
	m := testManifest()
	path, err := m.Resolve("Qwen")
	require.NoError(t, err)
	assert.Equal(t, "/adapters/qwen-server", path)
}

func TestResolve_FallsBackToLLaMA(t *testing.T) {
	m := testManifest()
	path, err := m.Resolve("SomeOtherKind")
	require.NoError(t, err)
	assert.Equal(t, "/adapters/llama-server", path)
}

func TestResolve_NoMatchAtAll(t *testing.T) {
	m := &Manifest{home: "/adapters"}
	_, err := m.Resolve("LLaMA")
	require.Error(t, err)
}

func TestBuildCommand_IncludesExtraArgsSortedByKey(t *testing.T) {
	port := 5010
	threads := 4
	cfg := registry.ModelConfig{
		ModelConfig: registry.ModelSpecificConfig{ModelKind: "LLaMA", ModelPath: "model.gguf"},
		Server: registry.ServerConfig{
			Port:       &port,
			CtxSize:    4096,
			NumThreads: &threads,
			UseMmap:    true,
			BatchSize:  512,
			ExtraArgs:  map[string]string{"z-flag": "1", "a-flag": "2"},
		},
	}
	st := model.New(cfg, nil)

	cmd, err := BuildCommand(context.Background(), testManifest(), st)
	require.NoError(t, err)

	args := cmd.Args[1:]
	aIdx, zIdx := indexOf(args, "--a-flag"), indexOf(args, "--z-flag")
	require.GreaterOrEqual(t, aIdx, 0)
	require.GreaterOrEqual(t, zIdx, 0)
	assert.Less(t, aIdx, zIdx, "extra args must be appended in sorted key order for deterministic command lines")
}

func TestBuildCommand_OmitsNoMmapWhenEnabled(t *testing.T) {
	cfg := registry.ModelConfig{
		ModelConfig: registry.ModelSpecificConfig{ModelKind: "LLaMA", ModelPath: "model.gguf"},
		Server:      registry.ServerConfig{CtxSize: 4096, UseMmap: true, BatchSize: 512},
	}
	st := model.New(cfg, nil)
	cmd, err := BuildCommand(context.Background(), testManifest(), st)
	require.NoError(t, err)
	assert.NotContains(t, cmd.Args, "--no-mmap")
}

func TestBuildCommand_IncludesNoMmapWhenDisabled(t *testing.T) {
	cfg := registry.ModelConfig{
		ModelConfig: registry.ModelSpecificConfig{ModelKind: "LLaMA", ModelPath: "model.gguf"},
		Server:      registry.ServerConfig{CtxSize: 4096, UseMmap: false, BatchSize: 512},
	}
	st := model.New(cfg, nil)
	cmd, err := BuildCommand(context.Background(), testManifest(), st)
	require.NoError(t, err)
	assert.Contains(t, cmd.Args, "--no-mmap")
}

func indexOf(haystack []string, needle string) int {
	for i, s := range haystack {
		if s == needle {
			return i
		}
	}
	return -1
}
