package domain

import "fmt"

// ValidationError reports an invalid ScenarioParams field. The simulation
// never starts when one is returned; callers surface Field verbatim.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid parameter %s: %s", e.Field, e.Message)
}

// PartialEnsembleError reports that a run could not complete every
// scenario (worker failure after retry, or caller cancellation when no
// partial statistics were recoverable). Completed discloses how many
// scenarios finished.
type PartialEnsembleError struct {
	Completed int
	Requested int
	Cause     error
}

func (e *PartialEnsembleError) Error() string {
	return fmt.Sprintf("ensemble incomplete: %d of %d scenarios finished: %v", e.Completed, e.Requested, e.Cause)
}

func (e *PartialEnsembleError) Unwrap() error { return e.Cause }
