package provision

// Run statuses.
const (
	RunCompleted = "completed"
	RunFailed    = "failed"
)

// Step outcomes. Exists means the ensure found the resource and created
// nothing; both Exists and Completed leave the engine in the desired state.
const (
	StepCompleted = "completed"
	StepExists    = "exists"
	StepSkipped   = "skipped"
	StepFailed    = "failed"
)

// StepResult is the outcome of one step in a run.
type StepResult struct {
	Name       string         `json:"name"`
	Status     string         `json:"status"`
	DurationMS int64          `json:"duration_ms"`
	Data       map[string]any `json:"data,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// Result is the outcome of one provisioning run.
type Result struct {
	TenantID       string       `json:"tenant_id"`
	CorrelationID  string       `json:"correlation_id"`
	Status         string       `json:"status"`
	StepsCompleted int          `json:"steps_completed"`
	TotalSteps     int          `json:"total_steps"`
	Progress       float64      `json:"progress"`
	CurrentStep    string       `json:"current_step,omitempty"`
	Steps          []StepResult `json:"steps"`
	Errors         []StepError  `json:"errors,omitempty"`
}

func (r *Result) record(step StepResult) {
	r.Steps = append(r.Steps, step)
	if stepDone(step.Status) {
		r.StepsCompleted++
	}
	if r.TotalSteps > 0 {
		r.Progress = float64(r.StepsCompleted) / float64(r.TotalSteps) * 100
	}
}

func stepDone(status string) bool {
	return status == StepCompleted || status == StepExists || status == StepSkipped
}
