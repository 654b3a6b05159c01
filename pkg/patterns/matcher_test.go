package patterns

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vigil-dev/vigil/pkg/errors"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		pattern string
		want    Kind
	}{
		{"docs/readme.md", KindLiteral},
		{"readme.md", KindLiteral},
		{"*.md", KindGlob},
		{"docs/**/*.md", KindGlob},
		{"file?.txt", KindGlob},
		{"{a,b}.md", KindGlob},
		{`^docs/.*\.md$`, KindRegex},
		{"(foo|bar)", KindRegex},
		{"[abc].md", KindRegex},
		{`a\.md`, KindRegex},
		{"a+b", KindRegex},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, Classify(tc.pattern), "pattern %q", tc.pattern)
	}
}

func TestMatchesGlob(t *testing.T) {
	m := NewMatcher()

	t.Run("single star", func(t *testing.T) {
		ok, err := m.Matches("*.md", "readme.md")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = m.Matches("*.md", "docs/readme.md")
		require.NoError(t, err)
		assert.False(t, ok, "* must not cross path separators")
	})

	t.Run("double star recursive", func(t *testing.T) {
		for _, p := range []string{"docs/readme.md", "docs/a/b/c/deep.md"} {
			ok, err := m.Matches("docs/**/*.md", p)
			require.NoError(t, err)
			assert.True(t, ok, "path %q", p)
		}

		ok, err := m.Matches("docs/**/*.md", "src/main.go")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("brace alternation", func(t *testing.T) {
		ok, err := m.Matches("*.{md,txt}", "notes.txt")
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestMatchesRegex(t *testing.T) {
	m := NewMatcher()

	ok, err := m.Matches(`^docs/.*\.md$`, "docs/guide.md")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = m.Matches(`^docs/.*\.md$`, "src/guide.md")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMatchesLiteral(t *testing.T) {
	m := NewMatcher()

	ok, err := m.Matches("docs/readme.md", "./docs/readme.md")
	require.NoError(t, err)
	assert.True(t, ok, "normalization should strip ./")

	ok, err = m.Matches("docs/readme.md", `docs\readme.md`)
	require.NoError(t, err)
	assert.True(t, ok, "backslash separators normalize to slashes")

	ok, err = m.Matches("docs/readme.md", "docs/other.md")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInvalidRegexFailsLoudly(t *testing.T) {
	m := NewMatcher()

	_, err := m.Matches("[unclosed", "anything")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrPatternInvalid))
	assert.Contains(t, err.Error(), "[unclosed", "error must name the offending pattern")
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate("docs/readme.md"))
	assert.NoError(t, Validate("docs/**/*.md"))
	assert.NoError(t, Validate(`^docs/.*\.md$`))

	err := Validate("(unclosed")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrPatternInvalid))
}

func TestMatchesAny(t *testing.T) {
	m := NewMatcher()

	ok, err := m.MatchesAny([]string{"*.go", "*.md"}, "readme.md")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = m.MatchesAny([]string{"*.go", "*.md"}, "image.png")
	require.NoError(t, err)
	assert.False(t, ok)

	// An invalid pattern in the list still fails loudly
	_, err = m.MatchesAny([]string{"(bad"}, "x")
	require.Error(t, err)
}

func TestRegexCacheReuse(t *testing.T) {
	m := NewMatcher()

	_, err := m.Matches(`^a$`, "a")
	require.NoError(t, err)
	_, err = m.Matches(`^a$`, "b")
	require.NoError(t, err)

	assert.Len(t, m.regexes, 1)
}
