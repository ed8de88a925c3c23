package normalization

import (
	"strings"
)

func ParseInputString(input string) string {
	normalized := strings.ToLower(strings.TrimSpace(input))
	return normalized
}

// TrimInputString trims whitespace but keeps case, for display fields like
// names and course labels.
func TrimInputString(input string) string {
	return strings.TrimSpace(input)
}
