package graph

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/vigil-dev/vigil/pkg/errors"
	"github.com/vigil-dev/vigil/pkg/logging"
)

// Extractor parses one resource file into a Resource. Returning ok=false
// skips the file without error.
type Extractor func(path string, content []byte) (Resource, bool, error)

// Build walks the given resource directories and assembles a graph using
// the extractor. The graph is built fresh on every call so it always
// reflects the current files; callers must never cache it across rule
// executions.
func Build(dirs []string, extractor Extractor) (*Graph, error) {
	logger := logging.GetLogger("graph.builder")
	g := New()

	var files []string
	for _, dir := range dirs {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			files = append(files, path)
			return nil
		})
		if err != nil {
			if os.IsNotExist(err) {
				logger.Debug().Str("dir", dir).Msg("resource directory missing, skipping")
				continue
			}
			return nil, errors.Wrapf(err, errors.ErrGraphBuild,
				"walking resource directory %s", dir)
		}
	}

	// Deterministic node insertion order
	sort.Strings(files)

	for _, path := range files {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrGraphBuild,
				"reading resource file %s", path)
		}

		resource, ok, err := extractor(path, content)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrGraphBuild,
				"extracting dependencies from %s", path)
		}
		if !ok {
			continue
		}
		if resource.Path == "" {
			resource.Path = path
		}
		g.Add(resource)
	}

	logger.Debug().Str("graph", g.Describe()).Msg("dependency graph built")
	return g, nil
}
