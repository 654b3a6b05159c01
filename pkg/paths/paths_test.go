package paths

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppDirs(t *testing.T) {
	assert.True(t, strings.HasSuffix(CacheDir(), "vigil"))
	assert.Equal(t, filepath.Join(StateDir(), "vigil.log"), LogFilePath())
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "projects"), ExpandHome("~/projects"))
	assert.Equal(t, home, ExpandHome("~"))
	assert.Equal(t, "/absolute/path", ExpandHome("/absolute/path"))
	assert.Equal(t, "relative/~path", ExpandHome("relative/~path"))
}
