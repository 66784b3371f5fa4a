// pkg/mask/strategy.go
package mask

import "fmt"

// Strategy selects the transformation applied to sensitive values
type Strategy int

const (
	// StrategyPartial reveals a fixed prefix and suffix and masks the rest
	StrategyPartial Strategy = iota
	// StrategyHash replaces the value with a stable one-way digest
	StrategyHash
	// StrategyRandom replaces the value with an irreversible random
	// value of a similar shape
	StrategyRandom
	// StrategyRemove nulls the value out
	StrategyRemove
)

// String returns a string representation of the strategy
func (s Strategy) String() string {
	switch s {
	case StrategyPartial:
		return "partial"
	case StrategyHash:
		return "hash"
	case StrategyRandom:
		return "random"
	case StrategyRemove:
		return "remove"
	default:
		return fmt.Sprintf("Unknown(%d)", s)
	}
}

// ParseStrategy converts a config string into a Strategy
func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "partial":
		return StrategyPartial, nil
	case "hash":
		return StrategyHash, nil
	case "random":
		return StrategyRandom, nil
	case "remove":
		return StrategyRemove, nil
	default:
		return StrategyPartial, fmt.Errorf("unknown masking strategy %q", s)
	}
}
