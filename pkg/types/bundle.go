package types

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// BundleStrategy controls how matched files group into bundles
type BundleStrategy string

const (
	// StrategyIndividual emits one bundle per matched file
	StrategyIndividual BundleStrategy = "individual"

	// StrategyCollection emits one bundle covering all matched files
	StrategyCollection BundleStrategy = "collection"
)

// BundleSpec describes which files a rule validates and how they group
type BundleSpec struct {
	// BundleType is a label carried through to findings
	BundleType string `yaml:"bundle_type"`

	// Patterns are file globs relative to the project root
	Patterns []string `yaml:"patterns"`

	// Strategy defaults to individual when empty
	Strategy BundleStrategy `yaml:"strategy,omitempty"`

	// ResourcePatterns resolve to non-validated context files
	ResourcePatterns []string `yaml:"resource_patterns,omitempty"`
}

// EffectiveStrategy resolves the default strategy
func (s BundleSpec) EffectiveStrategy() BundleStrategy {
	if s.Strategy == "" {
		return StrategyIndividual
	}
	return s.Strategy
}

// DocumentFile is one file inside a bundle
type DocumentFile struct {
	// RelPath is the path relative to the project root, slash-separated
	RelPath string

	// AbsPath is the absolute filesystem path
	AbsPath string

	// Content is the decoded file content
	Content string

	// UsedFallback is set when the content was not valid UTF-8 and was
	// decoded with the ISO-8859-1 fallback
	UsedFallback bool
}

// Bundle is a group of one or more files validated together as one unit.
// Bundles are immutable once built.
type Bundle struct {
	// ID is stable across runs for the same type and member paths
	ID string

	Type     string
	Strategy BundleStrategy

	// Files are the validated documents, in deterministic order
	Files []DocumentFile

	// Root is the project root the bundle was built from
	Root string

	// Resources are non-validated context files
	Resources []DocumentFile
}

// Paths returns the relative paths of the validated files
func (b Bundle) Paths() []string {
	paths := make([]string, len(b.Files))
	for i, f := range b.Files {
		paths[i] = f.RelPath
	}
	return paths
}

// ContentHash hashes the bundle's validated content. Used as part of
// cache keys so any content change changes the key.
func (b Bundle) ContentHash() string {
	h := sha256.New()
	for _, f := range b.Files {
		h.Write([]byte(f.RelPath))
		h.Write([]byte{0})
		h.Write([]byte(f.Content))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// ContentOnlyHash hashes the validated content alone, ignoring file
// paths, so a renamed copy of the same bytes compares equal.
func (b Bundle) ContentOnlyHash() string {
	h := sha256.New()
	for _, f := range b.Files {
		h.Write([]byte(f.Content))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// BundleID derives the stable bundle id from the bundle type and the
// sorted member paths.
func BundleID(bundleType string, relPaths []string) string {
	sorted := make([]string, len(relPaths))
	copy(sorted, relPaths)
	sort.Strings(sorted)

	h := sha256.Sum256([]byte(bundleType + "\x00" + strings.Join(sorted, "\x00")))
	return bundleType + "-" + hex.EncodeToString(h[:])[:12]
}
