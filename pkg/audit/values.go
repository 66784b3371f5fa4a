// pkg/audit/values.go
package audit

import (
	"strings"

	"github.com/lib/pq"
)

// toTextArray converts audit lines into a Postgres text array value,
// with nil for an empty change set
func toTextArray(changes []string) interface{} {
	if len(changes) == 0 {
		return nil
	}
	cleaned := make([]string, 0, len(changes))
	for _, change := range changes {
		if trimmed := strings.TrimSpace(change); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	if len(cleaned) == 0 {
		return nil
	}
	return pq.Array(cleaned)
}
