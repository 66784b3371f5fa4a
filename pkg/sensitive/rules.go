// pkg/sensitive/rules.go
package sensitive

import (
	"regexp"
	"strings"
	"unicode"
)

// Value patterns for the rule phase. Phone and ID patterns cover the
// Chinese formats of the source data plus common international shapes.
var (
	phoneCleaner       = regexp.MustCompile(`[\s\-\(\)\+]`)
	chinaMobilePattern = regexp.MustCompile(`^(86)?1[3-9]\d{9}$`)
	usMobilePattern    = regexp.MustCompile(`^1?[2-9]\d{2}[2-9]\d{2}\d{4}$`)
	longDigitsPattern  = regexp.MustCompile(`^\d{10,15}$`)
	extensionPattern   = regexp.MustCompile(`\d{7,15}x\d+`)

	idCard18Pattern = regexp.MustCompile(`^\d{17}[\dX]$`)
	idCard15Pattern = regexp.MustCompile(`^\d{15}$`)

	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

	chineseNamePattern = regexp.MustCompile(`^\p{Han}{2,4}$`)
)

// Column-name hints per sensitivity type
var nameHints = map[Type][]string{
	TypePhone:    {"phone", "mobile", "tel", "telephone", "cell", "contact_phone", "手机", "电话", "联系方式"},
	TypeIDNumber: {"id_card", "identity", "id_number", "citizen_id", "national_id", "card_no", "id_no", "身份证"},
	TypeEmail:    {"email", "mail", "e_mail", "邮箱", "邮件"},
	TypeName:     {"name", "username", "real_name", "full_name", "first_name", "last_name", "姓名", "用户名"},
	TypeAddress:  {"address", "addr", "location", "home_address", "work_address", "地址", "住址"},
}

// ruleTypes is the order in which matchers are evaluated; more specific
// formats come first so an ID number does not win as a long phone number
var ruleTypes = []Type{TypeIDNumber, TypePhone, TypeEmail, TypeName, TypeAddress}

// matchValue reports whether a single value conforms to a type's pattern
func matchValue(t Type, value string) bool {
	switch t {
	case TypePhone:
		return isPhoneNumber(value)
	case TypeIDNumber:
		return isIDNumber(value)
	case TypeEmail:
		return emailPattern.MatchString(value)
	case TypeName:
		return chineseNamePattern.MatchString(strings.TrimSpace(value))
	case TypeAddress:
		return isAddressLike(value)
	default:
		return false
	}
}

// matchRatio returns the fraction of sample values that conform to the type
func matchRatio(t Type, sample []string) float64 {
	if len(sample) == 0 {
		return 0
	}
	hits := 0
	for _, v := range sample {
		if matchValue(t, v) {
			hits++
		}
	}
	return float64(hits) / float64(len(sample))
}

// columnNameHint returns the type suggested by the column name, if any
func columnNameHint(column string) Type {
	lower := strings.ToLower(column)
	for _, t := range ruleTypes {
		for _, hint := range nameHints[t] {
			if strings.Contains(lower, hint) {
				return t
			}
		}
	}
	return TypeNone
}

func isPhoneNumber(value string) bool {
	if value == "" {
		return false
	}
	cleaned := phoneCleaner.ReplaceAllString(value, "")
	if chinaMobilePattern.MatchString(cleaned) || usMobilePattern.MatchString(cleaned) {
		return true
	}
	if longDigitsPattern.MatchString(cleaned) {
		return true
	}
	return extensionPattern.MatchString(strings.ReplaceAll(strings.ReplaceAll(value, " ", ""), "-", ""))
}

func isIDNumber(value string) bool {
	cleaned := strings.ToUpper(strings.ReplaceAll(value, " ", ""))
	switch len(cleaned) {
	case 18:
		return idCard18Pattern.MatchString(cleaned)
	case 15:
		return idCard15Pattern.MatchString(cleaned)
	default:
		return false
	}
}

// isAddressLike is a keyword heuristic: addresses carry region or street
// markers and are longer than a handful of characters
func isAddressLike(value string) bool {
	trimmed := strings.TrimSpace(value)
	if len([]rune(trimmed)) <= 5 {
		return false
	}

	cnMarkers := []string{"省", "市", "区", "县", "路", "街", "号", "village", "镇", "乡"}
	for _, marker := range cnMarkers {
		if strings.Contains(trimmed, marker) {
			return true
		}
	}

	enMarkers := []string{"street", "st.", "avenue", "ave", "road", "rd.", "lane", "blvd", "drive"}
	lower := strings.ToLower(trimmed)
	for _, marker := range enMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}

	// A leading house number followed by words is a common western shape
	runes := []rune(lower)
	if unicode.IsDigit(runes[0]) && strings.Count(lower, " ") >= 2 {
		return true
	}
	return false
}
