// Package bundle discovers project files by glob and groups them into
// document bundles for validation.
package bundle

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"

	"github.com/vigil-dev/vigil/pkg/errors"
	"github.com/vigil-dev/vigil/pkg/logging"
	"github.com/vigil-dev/vigil/pkg/types"
)

// Builder expands bundle specs into runtime bundles
type Builder struct {
	logger zerolog.Logger
}

// NewBuilder creates a bundle builder
func NewBuilder() *Builder {
	return &Builder{
		logger: logging.GetLogger("bundle.builder"),
	}
}

// Build resolves the spec's patterns under root and groups the matches
// per the spec's strategy. Zero matches yields zero bundles, so the rule
// passes vacuously. Files that cannot be read are never dropped silently:
// each becomes its own resource-error Finding. The returned error is
// reserved for configuration problems (an invalid glob).
func (b *Builder) Build(spec types.BundleSpec, root string) ([]types.Bundle, []types.Finding, error) {
	paths, err := b.expand(spec.Patterns, root)
	if err != nil {
		return nil, nil, err
	}

	if len(paths) == 0 {
		b.logger.Debug().
			Str("bundleType", spec.BundleType).
			Strs("patterns", spec.Patterns).
			Msg("no files matched, rule passes vacuously")
		return nil, nil, nil
	}

	var findings []types.Finding

	resources, resourceFindings, err := b.readResources(spec, root)
	if err != nil {
		return nil, nil, err
	}
	findings = append(findings, resourceFindings...)

	var files []types.DocumentFile
	for _, rel := range paths {
		file, readErr := b.readFile(root, rel)
		if readErr != nil {
			findings = append(findings, resourceErrorFinding(spec, rel, readErr))
			continue
		}
		files = append(files, file)
	}

	var bundles []types.Bundle
	switch spec.EffectiveStrategy() {
	case types.StrategyCollection:
		if len(files) > 0 {
			bundles = append(bundles, b.assemble(spec, root, files, resources))
		}
	default:
		for _, file := range files {
			bundles = append(bundles, b.assemble(spec, root, []types.DocumentFile{file}, resources))
		}
	}

	b.logger.Debug().
		Str("bundleType", spec.BundleType).
		Int("files", len(files)).
		Int("bundles", len(bundles)).
		Int("resourceFiles", len(resources)).
		Msg("bundles built")

	return bundles, findings, nil
}

// expand resolves the glob patterns to a de-duplicated, sorted list of
// relative paths
func (b *Builder) expand(patterns []string, root string) ([]string, error) {
	seen := make(map[string]struct{})
	var paths []string

	fsys := os.DirFS(root)
	for _, pattern := range patterns {
		matches, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrBundleGlob,
				"invalid file pattern %q", pattern)
		}
		for _, m := range matches {
			// Keep stat failures in the list: readFile turns them into
			// findings instead of dropping the file
			info, statErr := os.Stat(filepath.Join(root, filepath.FromSlash(m)))
			if statErr == nil && info.IsDir() {
				continue
			}
			if _, dup := seen[m]; dup {
				continue
			}
			seen[m] = struct{}{}
			paths = append(paths, m)
		}
	}

	sort.Strings(paths)
	return paths, nil
}

func (b *Builder) readFile(root, rel string) (types.DocumentFile, error) {
	abs := filepath.Join(root, filepath.FromSlash(rel))
	raw, err := os.ReadFile(abs)
	if err != nil {
		return types.DocumentFile{}, err
	}

	content, usedFallback := decode(raw)
	if usedFallback {
		b.logger.Warn().Str("path", rel).Msg("file is not valid UTF-8, decoded with ISO-8859-1 fallback")
	}

	return types.DocumentFile{
		RelPath:      rel,
		AbsPath:      abs,
		Content:      content,
		UsedFallback: usedFallback,
	}, nil
}

func (b *Builder) readResources(spec types.BundleSpec, root string) ([]types.DocumentFile, []types.Finding, error) {
	if len(spec.ResourcePatterns) == 0 {
		return nil, nil, nil
	}

	paths, err := b.expand(spec.ResourcePatterns, root)
	if err != nil {
		return nil, nil, err
	}

	var resources []types.DocumentFile
	var findings []types.Finding
	for _, rel := range paths {
		file, readErr := b.readFile(root, rel)
		if readErr != nil {
			findings = append(findings, resourceErrorFinding(spec, rel, readErr))
			continue
		}
		resources = append(resources, file)
	}
	return resources, findings, nil
}

func (b *Builder) assemble(spec types.BundleSpec, root string, files, resources []types.DocumentFile) types.Bundle {
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.RelPath
	}

	return types.Bundle{
		ID:        types.BundleID(spec.BundleType, paths),
		Type:      spec.BundleType,
		Strategy:  spec.EffectiveStrategy(),
		Files:     files,
		Root:      root,
		Resources: resources,
	}
}

// resourceErrorFinding turns an unreadable file into a finding scoped to
// that file alone
func resourceErrorFinding(spec types.BundleSpec, rel string, err error) types.Finding {
	return types.Finding{
		BundleID:        types.BundleID(spec.BundleType, []string{rel}),
		BundleType:      spec.BundleType,
		Paths:           []string{rel},
		ObservedIssue:   fmt.Sprintf("file %s could not be read: %v", rel, err),
		ExpectedQuality: "every file matched by the bundle patterns is readable",
		RuleType:        "resource_error",
		FailureDetails: map[string]interface{}{
			"path":  rel,
			"error": err.Error(),
		},
	}
}
