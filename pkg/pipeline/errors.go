// pkg/pipeline/errors.go
package pipeline

import "fmt"

// ConfigurationError reports an invalid job configuration, detected
// before the offending stage executes. It is never retried.
type ConfigurationError struct {
	Reason string
	Err    error
}

// Error returns a formatted error message
func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration error: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

// Unwrap returns the wrapped error
func (e *ConfigurationError) Unwrap() error { return e.Err }

// StageProcessingError reports a failure inside a stage, such as a column
// promised by config being absent from the dataset. The job fails at that
// stage; reports from earlier stages are preserved.
type StageProcessingError struct {
	Stage string
	Err   error
}

// Error returns a formatted error message
func (e *StageProcessingError) Error() string {
	return fmt.Sprintf("stage %s failed: %v", e.Stage, e.Err)
}

// Unwrap returns the wrapped error
func (e *StageProcessingError) Unwrap() error { return e.Err }

// DataIntegrityError reports an unexpected change in row count between
// stages. Row count and order are pipeline invariants, so this is always
// fatal and never retried.
type DataIntegrityError struct {
	Stage    string
	Expected int
	Actual   int
}

// Error returns a formatted error message
func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("data integrity violation after stage %s: row count changed from %d to %d",
		e.Stage, e.Expected, e.Actual)
}
