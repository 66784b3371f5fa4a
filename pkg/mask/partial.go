// pkg/mask/partial.go
package mask

import (
	"regexp"
	"strings"

	"github.com/David-Botos/data-cleanse/pkg/sensitive"
)

var phoneCleaner = regexp.MustCompile(`[\s\-\(\)\+]`)

// partialMask reveals a type-appropriate prefix and suffix and masks the
// middle with asterisks
func partialMask(value string, t sensitive.Type) string {
	switch t {
	case sensitive.TypePhone:
		return maskPhone(value)
	case sensitive.TypeIDNumber:
		return maskIDNumber(value)
	case sensitive.TypeEmail:
		return maskEmail(value)
	case sensitive.TypeName:
		return maskName(value)
	case sensitive.TypeAddress:
		return maskAddress(value)
	default:
		return maskGeneric(value)
	}
}

// maskPhone reveals the first 3 and last 4 digits
func maskPhone(value string) string {
	cleaned := phoneCleaner.ReplaceAllString(value, "")
	if len(cleaned) >= 11 {
		return cleaned[:3] + "****" + cleaned[len(cleaned)-4:]
	}
	return strings.Repeat("*", len(cleaned))
}

// maskIDNumber reveals the first 6 and last 4 characters
func maskIDNumber(value string) string {
	cleaned := strings.ReplaceAll(value, " ", "")
	switch {
	case len(cleaned) >= 18:
		return cleaned[:6] + "********" + cleaned[len(cleaned)-4:]
	case len(cleaned) >= 15:
		return cleaned[:6] + "*****" + cleaned[len(cleaned)-4:]
	default:
		return strings.Repeat("*", len(cleaned))
	}
}

// maskEmail reveals the first 2 characters of the local part and the domain
func maskEmail(value string) string {
	at := strings.Index(value, "@")
	if at < 0 {
		return strings.Repeat("*", len([]rune(value)))
	}
	local, domain := value[:at], value[at+1:]
	if len(local) <= 2 {
		return strings.Repeat("*", len(local)) + "@" + domain
	}
	return local[:2] + strings.Repeat("*", len(local)-2) + "@" + domain
}

// maskName reveals the family name only
func maskName(value string) string {
	runes := []rune(strings.TrimSpace(value))
	switch {
	case len(runes) <= 1:
		return "*"
	default:
		return string(runes[0]) + strings.Repeat("*", len(runes)-1)
	}
}

// maskAddress keeps the leading region portion and hides the rest
func maskAddress(value string) string {
	runes := []rune(value)
	if len(runes) <= 10 {
		keep := len(runes) / 2
		return string(runes[:keep]) + strings.Repeat("*", len(runes)-keep)
	}
	return string(runes[:8]) + strings.Repeat("*", len(runes)-8)
}

// maskGeneric reveals the first and last 2 characters
func maskGeneric(value string) string {
	runes := []rune(value)
	if len(runes) <= 4 {
		return strings.Repeat("*", len(runes))
	}
	return string(runes[:2]) + strings.Repeat("*", len(runes)-4) + string(runes[len(runes)-2:])
}
