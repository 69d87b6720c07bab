package ggufmeta

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribe_NonGGUFFileIsError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "not-a-model.gguf")
	require.NoError(t, os.WriteFile(path, []byte("definitely not a gguf header"), 0o644))

	_, err := Describe(path)
	assert.Error(t, err, "a file without a valid GGUF magic/header must fail to parse, never block the caller")
}

func TestDescribe_MissingFileIsError(t *testing.T) {
	_, err := Describe(filepath.Join(t.TempDir(), "missing.gguf"))
	assert.Error(t, err)
}
