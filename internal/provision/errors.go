package provision

import (
	"errors"
	"fmt"

	"github.com/biasharahq/platform/internal/engine"
)

// ErrAlreadyProvisioning is returned by the concurrency guard when a run
// is already marked in progress for the tenant.
var ErrAlreadyProvisioning = errors.New("provisioning already in progress")

// Severity drives control flow through the step sequence.
type Severity string

const (
	// SeverityCritical aborts the remaining steps.
	SeverityCritical Severity = "critical"

	// SeverityTransient aborts too, but the same step is safe to retry.
	SeverityTransient Severity = "transient"

	// SeverityNonCritical is recorded and the sequence continues.
	SeverityNonCritical Severity = "non_critical"

	// SeverityValidation is caller fault, raised before any engine call.
	SeverityValidation Severity = "validation"
)

// StepError is a step failure with its control-flow classification.
type StepError struct {
	Step     string   `json:"step"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Err      error    `json:"-"`
}

func (e *StepError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("step %s (%s): %s: %v", e.Step, e.Severity, e.Message, e.Err)
	}
	return fmt.Sprintf("step %s (%s): %s", e.Step, e.Severity, e.Message)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// classify folds an engine error into the taxonomy for a required step.
// Transport failures and engine 5xx are transient; an engine that answers
// with a definitive rejection is critical.
func classify(step string, err error) *StepError {
	var stepErr *StepError
	if errors.As(err, &stepErr) {
		return stepErr
	}

	severity := SeverityCritical
	message := "engine rejected the call"
	if engine.IsUnreachable(err) || engine.IsServerError(err) {
		severity = SeverityTransient
		message = "engine call failed transiently"
	}

	return &StepError{Step: step, Severity: severity, Message: message, Err: err}
}

func nonCritical(step string, err error) *StepError {
	var stepErr *StepError
	if errors.As(err, &stepErr) && stepErr.Severity == SeverityNonCritical {
		return stepErr
	}
	return &StepError{Step: step, Severity: SeverityNonCritical, Message: "optional step failed", Err: err}
}

func critical(step, message string, err error) *StepError {
	return &StepError{Step: step, Severity: SeverityCritical, Message: message, Err: err}
}

func validation(step, message string) *StepError {
	return &StepError{Step: step, Severity: SeverityValidation, Message: message}
}
