package adapter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByteBell/pyano/internal/pyanoerr"
)

func TestLoadManifest_ParsesYAML(t *testing.T) {
	dir := t.TempDir()
	body := `adapters:
  - kind: LLaMA
    os: linux
    arch: amd64
    path: bin/llama-server
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "manifest.yaml"), []byte(body), 0o644))
	t.Setenv("ADAPTERS_HOME", dir)

	m, err := LoadManifest()
	require.NoError(t, err)
	require.Len(t, m.entries, 1)
	assert.Equal(t, "LLaMA", m.entries[0].Kind)
}

func TestLoadManifest_MissingFileIsConfigError(t *testing.T) {
	t.Setenv("ADAPTERS_HOME", t.TempDir())
	_, err := LoadManifest()
	require.Error(t, err)
	var cfgErr *pyanoerr.ConfigError
	require.ErrorAs(t, err, &cfgErr)
}
