package validators

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)

// FormatMessage substitutes {placeholder} tokens in template from
// details. The formatter never fails: placeholders without a matching
// detail pass through literally, and when the template has no
// placeholders at all but details are non-empty, the details are
// appended rather than discarded.
func FormatMessage(template string, details map[string]interface{}) string {
	hasPlaceholders := placeholderPattern.MatchString(template)

	formatted := placeholderPattern.ReplaceAllStringFunc(template, func(token string) string {
		key := token[1 : len(token)-1]
		if value, ok := details[key]; ok {
			return fmt.Sprintf("%v", value)
		}
		return token
	})

	if !hasPlaceholders && len(details) > 0 {
		if formatted == "" {
			return formatDetails(details)
		}
		return formatted + " (" + formatDetails(details) + ")"
	}
	return formatted
}

// formatDetails renders details deterministically as "k=v, k=v"
func formatDetails(details map[string]interface{}) string {
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, details[k])
	}
	return strings.Join(parts, ", ")
}
