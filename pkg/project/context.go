// Package project discovers resource inventories (tools and dependency
// metadata) that feed the dependency graph and requires_project_context
// rules.
package project

import (
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vigil-dev/vigil/pkg/graph"
)

// Context supplies discovered project resources to validators. The graph
// is rebuilt fresh on every call so it always reflects the current
// files.
type Context struct {
	// Root is the project root
	Root string

	// ResourceDirs are directories (relative to Root) holding resource
	// definition files
	ResourceDirs []string
}

// BuildGraph walks the resource directories and assembles the dependency
// graph using the front-matter extractor.
func (c *Context) BuildGraph(extraDirs []string) (*graph.Graph, error) {
	dirs := make([]string, 0, len(c.ResourceDirs)+len(extraDirs))
	for _, d := range c.ResourceDirs {
		dirs = append(dirs, filepath.Join(c.Root, filepath.FromSlash(d)))
	}
	for _, d := range extraDirs {
		dirs = append(dirs, filepath.Join(c.Root, filepath.FromSlash(d)))
	}
	return graph.Build(dirs, FrontMatterExtractor)
}

// resourceDoc is the declared metadata of one resource file
type resourceDoc struct {
	Name         string   `yaml:"name"`
	Dependencies []string `yaml:"dependencies"`
}

// FrontMatterExtractor reads resource metadata from YAML. Whole-file
// YAML for .yaml/.yml files, a leading "---" front-matter block for
// everything else (markdown resource docs). Files without metadata are
// skipped. A resource with no name takes its file's base name.
func FrontMatterExtractor(path string, content []byte) (graph.Resource, bool, error) {
	ext := strings.ToLower(filepath.Ext(path))

	var block []byte
	switch ext {
	case ".yaml", ".yml":
		block = content
	default:
		fm, ok := frontMatter(string(content))
		if !ok {
			return graph.Resource{}, false, nil
		}
		block = []byte(fm)
	}

	var doc resourceDoc
	if err := yaml.Unmarshal(block, &doc); err != nil {
		return graph.Resource{}, false, err
	}
	if doc.Name == "" && len(doc.Dependencies) == 0 {
		return graph.Resource{}, false, nil
	}
	if doc.Name == "" {
		base := filepath.Base(path)
		doc.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	return graph.Resource{
		Name:         doc.Name,
		Dependencies: doc.Dependencies,
		Path:         path,
	}, true, nil
}

// frontMatter extracts the YAML block between leading "---" fences
func frontMatter(content string) (string, bool) {
	trimmed := strings.TrimPrefix(content, "\uFEFF")
	if !strings.HasPrefix(trimmed, "---\n") && trimmed != "---" {
		return "", false
	}
	rest := strings.TrimPrefix(trimmed, "---\n")
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return "", false
	}
	return rest[:end], true
}
