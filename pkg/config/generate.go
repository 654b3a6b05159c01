package config

import (
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// GenerateConfigContent renders a starter project config with every
// value present but commented out, so uncommenting a line activates it
func GenerateConfigContent() (string, error) {
	starter := struct {
		Cache        CacheConfig        `toml:"cache"`
		Execution    ExecutionConfig    `toml:"execution"`
		Conversation ConversationConfig `toml:"conversation"`
		Project      ProjectConfig      `toml:"project"`
	}{
		Cache:        CacheConfig{Enabled: true, TTL: "24h"},
		Execution:    ExecutionConfig{Parallel: true, UnitTimeout: "2m"},
		Conversation: ConversationConfig{Dir: ".vigil/conversations"},
		Project:      ProjectConfig{ResourceDirs: []string{}},
	}

	rendered, err := toml.Marshal(starter)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("# vigil project configuration.\n")
	b.WriteString("# Uncomment a value to override the built-in default.\n\n")
	b.WriteString(commentOutValues(string(rendered)))
	return b.String(), nil
}

// commentOutValues comments out assignment lines, keeping section
// headers, comments, and blank lines as-is
func commentOutValues(content string) string {
	lines := strings.Split(content, "\n")
	result := make([]string, 0, len(lines))

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			result = append(result, line)
			continue
		}
		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			result = append(result, line)
			continue
		}
		result = append(result, "# "+line)
	}

	return strings.Join(result, "\n")
}
