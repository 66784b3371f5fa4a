// pkg/profile/parse.go
package profile

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// datetimeLayouts are tried in order when parsing datetime values
var datetimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"2006-01",
}

// trueValues and falseValues define the recognized boolean spellings
var (
	trueValues  = map[string]bool{"true": true, "yes": true, "y": true, "1": true, "是": true}
	falseValues = map[string]bool{"false": true, "no": true, "n": true, "0": true, "否": true}
)

// ParseFloat attempts to interpret a value as a floating point number
func ParseFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, false
		}
		// Tolerate thousands separators
		s = strings.ReplaceAll(s, ",", "")
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// ParseInt attempts to interpret a value as a whole number
func ParseInt(value interface{}) (int64, bool) {
	f, ok := ParseFloat(value)
	if !ok {
		return 0, false
	}
	if f != math.Trunc(f) {
		return 0, false
	}
	return int64(f), true
}

// ParseBool attempts to interpret a value as a boolean
func ParseBool(value interface{}) (bool, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case string:
		s := strings.ToLower(strings.TrimSpace(v))
		if trueValues[s] {
			return true, true
		}
		if falseValues[s] {
			return false, true
		}
		return false, false
	default:
		return false, false
	}
}

// ParseDatetime attempts to interpret a value as a timestamp
func ParseDatetime(value interface{}) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, true
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range datetimeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

// FormatValue renders a cell value as a string for sampling and masking
func FormatValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		// Whole floats print without a fractional part so large
		// identifiers survive the round trip intact
		if v == math.Trunc(v) && math.Abs(v) < 1e15 {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.Format("2006-01-02 15:04:05")
	default:
		return fmt.Sprintf("%v", v)
	}
}
