// pkg/sensitive/finding.go
package sensitive

import "fmt"

// Type classifies the kind of sensitive data a column holds
type Type int

const (
	TypeNone Type = iota
	TypePhone
	TypeIDNumber
	TypeEmail
	TypeName
	TypeAddress
)

// String returns a string representation of the sensitivity type
func (t Type) String() string {
	switch t {
	case TypeNone:
		return "none"
	case TypePhone:
		return "phone"
	case TypeIDNumber:
		return "id_number"
	case TypeEmail:
		return "email"
	case TypeName:
		return "name"
	case TypeAddress:
		return "address"
	default:
		return fmt.Sprintf("Unknown(%d)", t)
	}
}

// ParseType converts a config string into a Type
func ParseType(s string) (Type, error) {
	switch s {
	case "none":
		return TypeNone, nil
	case "phone":
		return TypePhone, nil
	case "id_number", "id_card":
		return TypeIDNumber, nil
	case "email":
		return TypeEmail, nil
	case "name":
		return TypeName, nil
	case "address":
		return TypeAddress, nil
	default:
		return TypeNone, fmt.Errorf("unknown sensitivity type %q", s)
	}
}

// Source identifies which signal produced a finding's confidence
type Source int

const (
	SourceRule Source = iota
	SourceLLM
	SourceCombined
)

// String returns a string representation of the source
func (s Source) String() string {
	switch s {
	case SourceRule:
		return "rule"
	case SourceLLM:
		return "llm"
	case SourceCombined:
		return "combined"
	default:
		return fmt.Sprintf("Unknown(%d)", s)
	}
}

// CollaboratorError wraps a failure of the external classification
// collaborator. It is always recovered locally: the classifier degrades
// to rule confidence instead of failing the job.
type CollaboratorError struct {
	Op  string
	Err error
}

// Error returns a formatted error message
func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("external classifier %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the wrapped error
func (e *CollaboratorError) Unwrap() error { return e.Err }

// Finding is the classifier's verdict for one column. Confidence is
// always within [0,1]; findings below the configured threshold never
// reach the masking engine.
type Finding struct {
	Column     string
	Type       Type
	Confidence float64
	Source     Source
	Sensitive  bool
}
