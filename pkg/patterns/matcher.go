// Package patterns classifies and evaluates glob, regex, and literal
// patterns against slash-separated paths.
package patterns

import (
	"path"
	"regexp"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/vigil-dev/vigil/pkg/errors"
	"github.com/vigil-dev/vigil/pkg/logging"
)

// Kind is the classification of a pattern
type Kind string

const (
	KindRegex   Kind = "regex"
	KindGlob    Kind = "glob"
	KindLiteral Kind = "literal"
)

// regex-only metacharacters; glob shares * ? { } so those never force
// regex classification on their own
const regexMeta = `^$()[]|\+`

// globMeta are the characters that mark a non-regex pattern as a glob
const globMeta = `*?{}`

// Classify determines how a pattern will be evaluated
func Classify(pattern string) Kind {
	if strings.ContainsAny(pattern, regexMeta) {
		return KindRegex
	}
	if strings.ContainsAny(pattern, globMeta) {
		return KindGlob
	}
	return KindLiteral
}

// Matcher evaluates patterns against paths. Compiled regexes are cached
// per instance, so a Matcher is cheap to reuse across a run.
type Matcher struct {
	mu      sync.Mutex
	regexes map[string]*regexp.Regexp
}

// NewMatcher creates a Matcher with an empty regex cache
func NewMatcher() *Matcher {
	return &Matcher{regexes: make(map[string]*regexp.Regexp)}
}

// Matches reports whether the pattern matches the given path. The pattern
// is classified as regex, glob, or literal; glob patterns support ** for
// recursive segments. An invalid regex is an error carrying the offending
// pattern, never a silent non-match.
func (m *Matcher) Matches(pattern, p string) (bool, error) {
	normalized := Normalize(p)

	switch Classify(pattern) {
	case KindRegex:
		re, err := m.compile(pattern)
		if err != nil {
			return false, err
		}
		return re.MatchString(normalized), nil

	case KindGlob:
		matched, err := doublestar.Match(pattern, normalized)
		if err != nil {
			return false, errors.Wrapf(err, errors.ErrPatternInvalid,
				"invalid glob pattern %q", pattern)
		}
		return matched, nil

	default:
		return Normalize(pattern) == normalized, nil
	}
}

// Validate checks that a pattern is well-formed without evaluating it.
// Literal patterns are always well-formed.
func Validate(pattern string) error {
	switch Classify(pattern) {
	case KindRegex:
		if _, err := regexp.Compile(pattern); err != nil {
			return errors.Wrapf(err, errors.ErrPatternInvalid,
				"invalid regex pattern %q", pattern)
		}
	case KindGlob:
		if !doublestar.ValidatePattern(pattern) {
			return errors.Newf(errors.ErrPatternInvalid,
				"invalid glob pattern %q", pattern)
		}
	}
	return nil
}

// MatchesAny reports whether any of the patterns matches the path
func (m *Matcher) MatchesAny(patterns []string, p string) (bool, error) {
	for _, pattern := range patterns {
		matched, err := m.Matches(pattern, p)
		if err != nil {
			return false, err
		}
		if matched {
			return true, nil
		}
	}
	return false, nil
}

func (m *Matcher) compile(pattern string) (*regexp.Regexp, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if re, ok := m.regexes[pattern]; ok {
		return re, nil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		logger := logging.GetLogger("patterns")
		logger.Error().
			Err(err).
			Str("pattern", pattern).
			Msg("invalid regex pattern")
		return nil, errors.Wrapf(err, errors.ErrPatternInvalid,
			"invalid regex pattern %q", pattern)
	}

	m.regexes[pattern] = re
	return re, nil
}

// Normalize converts a path to slash-separated clean form for comparison
func Normalize(p string) string {
	cleaned := path.Clean(strings.ReplaceAll(p, "\\", "/"))
	return strings.TrimPrefix(cleaned, "./")
}
