package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandTree(t *testing.T) {
	root := NewRootCmd()

	names := make(map[string]bool)
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"version", "check", "rules", "genconfig"} {
		assert.True(t, names[want], "missing command %q", want)
	}
}

func TestGenConfigPrints(t *testing.T) {
	root := NewRootCmd()

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"genconfig"})

	require.NoError(t, root.Execute())
}

func TestCheckFailureIsError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".vigil"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".vigil", "rules.yaml"), []byte(`rules:
  - name: changelog-exists
    bundle:
      patterns: ["*.md"]
    phases:
      - validator: core:file_exists
        params:
          patterns: ["CHANGELOG.md"]
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# hi"), 0o644))

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetArgs([]string{"check", "--no-cache", dir})

	err := root.Execute()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrChecksFailed,
		"a failed run surfaces as a sentinel error, never a direct exit")
}

func TestCheckPassingProject(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".vigil"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".vigil", "rules.yaml"), []byte(`rules:
  - name: readme-exists
    bundle:
      patterns: ["*.md"]
    phases:
      - validator: core:file_exists
        params:
          patterns: ["README.md"]
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# hi"), 0o644))

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetArgs([]string{"check", "--no-cache", dir})

	require.NoError(t, root.Execute())
}

func TestRulesEmptyProject(t *testing.T) {
	root := NewRootCmd()
	root.SetArgs([]string{"rules", t.TempDir()})

	require.NoError(t, root.Execute())
}
