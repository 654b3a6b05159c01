// Package paths resolves where vigil keeps its own files: the response
// cache and the log file live under the XDG base directories.
package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

// appDir is the subdirectory used under each XDG base directory
const appDir = "vigil"

// CacheDir is the default location of the response cache
func CacheDir() string {
	return filepath.Join(xdg.CacheHome, appDir)
}

// StateDir holds mutable state such as the log file
func StateDir() string {
	return filepath.Join(xdg.StateHome, appDir)
}

// LogFilePath is the default location of the log file
func LogFilePath() string {
	return filepath.Join(StateDir(), appDir+".log")
}

// ExpandHome replaces a leading ~ with the user's home directory
func ExpandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
