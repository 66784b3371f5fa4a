// pkg/profile/kind.go
package profile

import "fmt"

// Kind is the inferred semantic type of a column
type Kind int

const (
	KindText Kind = iota
	KindInteger
	KindFloat
	KindBoolean
	KindDatetime
	KindCategorical
)

// String returns a string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindBoolean:
		return "boolean"
	case KindDatetime:
		return "datetime"
	case KindCategorical:
		return "categorical"
	default:
		return fmt.Sprintf("Unknown(%d)", k)
	}
}

// IsNumeric reports whether the kind is integer or float
func (k Kind) IsNumeric() bool {
	return k == KindInteger || k == KindFloat
}

// ParseKind converts a string into a Kind, for config type mappings
func ParseKind(s string) (Kind, error) {
	switch s {
	case "text":
		return KindText, nil
	case "integer":
		return KindInteger, nil
	case "float":
		return KindFloat, nil
	case "boolean":
		return KindBoolean, nil
	case "datetime":
		return KindDatetime, nil
	case "categorical":
		return KindCategorical, nil
	default:
		return KindText, fmt.Errorf("unknown data type %q", s)
	}
}
