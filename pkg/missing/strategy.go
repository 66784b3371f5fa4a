// pkg/missing/strategy.go
package missing

import "fmt"

// Strategy selects how nulls in a column are resolved
type Strategy int

const (
	// StrategyNone marks outcomes where no fill ran, such as dropped columns
	StrategyNone Strategy = iota
	StrategyMean
	StrategyMedian
	StrategyMode
	StrategyForwardFill
	StrategyBackwardFill
	StrategyConstant
)

// String returns a string representation of the strategy
func (s Strategy) String() string {
	switch s {
	case StrategyNone:
		return "none"
	case StrategyMean:
		return "mean"
	case StrategyMedian:
		return "median"
	case StrategyMode:
		return "mode"
	case StrategyForwardFill:
		return "forward_fill"
	case StrategyBackwardFill:
		return "backward_fill"
	case StrategyConstant:
		return "constant"
	default:
		return fmt.Sprintf("Unknown(%d)", s)
	}
}

// ParseStrategy converts a config string into a Strategy
func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "mean":
		return StrategyMean, nil
	case "median":
		return StrategyMedian, nil
	case "mode":
		return StrategyMode, nil
	case "forward_fill":
		return StrategyForwardFill, nil
	case "backward_fill":
		return StrategyBackwardFill, nil
	case "constant":
		return StrategyConstant, nil
	default:
		return StrategyNone, fmt.Errorf("unknown missing-value strategy %q", s)
	}
}
