package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, root, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(content), 0o644))
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 24*time.Hour, cfg.Cache.ParsedTTL(0))
	assert.True(t, cfg.Execution.Parallel)
	assert.Equal(t, 0, cfg.Execution.MaxWorkers)
	assert.Equal(t, 2*time.Minute, cfg.Execution.ParsedUnitTimeout())
	assert.Equal(t, ".vigil/conversations", cfg.Conversation.Dir)
	assert.Empty(t, cfg.RuleDefinitions)
}

func TestLoadProjectOverridesDefaults(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, ".vigil.toml", `
[cache]
enabled = false
ttl = "1h"

[execution]
max_workers = 4
`)

	cfg, err := Load(root)
	require.NoError(t, err)

	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, time.Hour, cfg.Cache.ParsedTTL(0))
	assert.Equal(t, 4, cfg.Execution.MaxWorkers)
	// Untouched values keep their defaults
	assert.True(t, cfg.Execution.Parallel)
}

func TestLoadDottedNameWins(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, ".vigil.toml", "[execution]\nmax_workers = 1\n")
	writeConfig(t, root, "vigil.toml", "[execution]\nmax_workers = 2\n")

	cfg, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Execution.MaxWorkers)
}

func TestLoadInlineRulesAndOverrides(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "vigil.toml", `
[[rule_definitions]]
name = "readme-present"
group = "docs"

[rule_definitions.bundle]
patterns = ["README.md"]

[[rule_definitions.phases]]
validator = "core:file_exists"

[[overrides]]
target = "core:file_size"
strategy = "replace"

[overrides.params]
max_bytes = 512
`)

	cfg, err := Load(root)
	require.NoError(t, err)

	require.Len(t, cfg.RuleDefinitions, 1)
	assert.Equal(t, "readme-present", cfg.RuleDefinitions[0].Name)
	assert.Equal(t, []string{"README.md"}, cfg.RuleDefinitions[0].Bundle.Patterns)

	typed := cfg.TypedOverrides()
	require.Len(t, typed, 1)
	assert.Equal(t, "core:file_size", typed[0].Target)
}

func TestLoadMalformedTOML(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, ".vigil.toml", "[cache\nenabled = maybe")

	_, err := Load(root)
	assert.Error(t, err)
}

func TestGenerateConfigContent(t *testing.T) {
	content, err := GenerateConfigContent()
	require.NoError(t, err)

	assert.Contains(t, content, "[cache]")
	assert.Contains(t, content, "# enabled = true")
	assert.NotContains(t, content, "\nenabled = true")

	// Generated keys must be the keys Load decodes, not Go field names
	assert.Contains(t, content, "# unit_timeout = ")
	assert.Contains(t, content, "# max_workers = ")
	assert.NotContains(t, content, "Enabled")
	assert.NotContains(t, content, "UnitTimeout")
}

func TestGeneratedConfigRoundTrips(t *testing.T) {
	content, err := GenerateConfigContent()
	require.NoError(t, err)

	// Uncommenting every generated value line must produce a config Load
	// accepts
	var uncommented strings.Builder
	for _, line := range strings.Split(content, "\n") {
		if stripped := strings.TrimPrefix(line, "# "); strings.Contains(stripped, " = ") {
			line = stripped
		}
		uncommented.WriteString(line)
		uncommented.WriteString("\n")
	}

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".vigil.toml"),
		[]byte(uncommented.String()), 0o644))

	cfg, err := Load(root)
	require.NoError(t, err)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, "2m", cfg.Execution.UnitTimeout)
}
