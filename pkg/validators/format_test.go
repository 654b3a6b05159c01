package validators

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatMessageSubstitution(t *testing.T) {
	got := FormatMessage("file {path} is {size} bytes",
		map[string]interface{}{"path": "a.md", "size": 120})
	assert.Equal(t, "file a.md is 120 bytes", got)
}

func TestFormatMessageUnmatchedPlaceholderPassesThrough(t *testing.T) {
	got := FormatMessage("missing {what} in {path}",
		map[string]interface{}{"path": "a.md"})
	assert.Equal(t, "missing {what} in a.md", got,
		"unknown placeholders must pass through literally, never crash")
}

func TestFormatMessageNoPlaceholdersAppendsDetails(t *testing.T) {
	got := FormatMessage("validation failed",
		map[string]interface{}{"b": 2, "a": 1})
	assert.Equal(t, "validation failed (a=1, b=2)", got,
		"details are appended deterministically rather than discarded")
}

func TestFormatMessageNoPlaceholdersNoDetails(t *testing.T) {
	assert.Equal(t, "plain message", FormatMessage("plain message", nil))
}

func TestFormatMessageEmptyTemplate(t *testing.T) {
	got := FormatMessage("", map[string]interface{}{"k": "v"})
	assert.Equal(t, "k=v", got)
}

func TestFormatMessageRepeatedPlaceholder(t *testing.T) {
	got := FormatMessage("{x} and {x}", map[string]interface{}{"x": "twice"})
	assert.Equal(t, "twice and twice", got)
}
