// pkg/standardize/naming.go
package standardize

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// NamingConvention selects the column-name normalization style
type NamingConvention int

const (
	SnakeCase NamingConvention = iota
	CamelCase
	PascalCase
)

// String returns a string representation of the naming convention
func (n NamingConvention) String() string {
	switch n {
	case SnakeCase:
		return "snake_case"
	case CamelCase:
		return "camelCase"
	case PascalCase:
		return "PascalCase"
	default:
		return fmt.Sprintf("Unknown(%d)", n)
	}
}

// ParseNamingConvention converts a config string into a NamingConvention
func ParseNamingConvention(s string) (NamingConvention, error) {
	switch s {
	case "snake_case":
		return SnakeCase, nil
	case "camelCase":
		return CamelCase, nil
	case "PascalCase":
		return PascalCase, nil
	default:
		return SnakeCase, fmt.Errorf("unknown naming convention %q", s)
	}
}

var (
	punctPattern      = regexp.MustCompile(`[^\p{L}\p{N}\s_]`)
	spacePattern      = regexp.MustCompile(`\s+`)
	camelSplitPattern = regexp.MustCompile(`([a-z0-9])([A-Z])`)
	underscoreRuns    = regexp.MustCompile(`_+`)
)

// Normalize rewrites a column name under the convention. Punctuation is
// stripped, whitespace and camel-case boundaries become word breaks.
func (n NamingConvention) Normalize(name string) string {
	snake := toSnakeCase(name)
	switch n {
	case CamelCase:
		return joinWords(snake, false)
	case PascalCase:
		return joinWords(snake, true)
	default:
		return snake
	}
}

func toSnakeCase(name string) string {
	s := punctPattern.ReplaceAllString(name, "")
	s = spacePattern.ReplaceAllString(strings.TrimSpace(s), "_")
	s = camelSplitPattern.ReplaceAllString(s, "${1}_${2}")
	s = underscoreRuns.ReplaceAllString(s, "_")
	return strings.ToLower(s)
}

func joinWords(snake string, capitalizeFirst bool) string {
	words := strings.Split(snake, "_")
	var sb strings.Builder
	for i, word := range words {
		if word == "" {
			continue
		}
		if i == 0 && !capitalizeFirst {
			sb.WriteString(word)
			continue
		}
		r, size := utf8.DecodeRuneInString(word)
		sb.WriteRune(unicode.ToTitle(r))
		sb.WriteString(word[size:])
	}
	return sb.String()
}
