package model

// Tenant provisioning status constants.
const (
	ProvisioningNotProvisioned = "not_provisioned"
	ProvisioningInProgress     = "provisioning"
	ProvisioningProvisioned    = "provisioned"
	ProvisioningFailed         = "failed"
)

// Onboarding process status constants.
const (
	ProcessDraft      = "draft"
	ProcessInProgress = "in_progress"
	ProcessPaused     = "paused"
	ProcessCompleted  = "completed"
	ProcessFailed     = "failed"
)

// Onboarding step status constants.
const (
	StepPending    = "pending"
	StepInProgress = "in_progress"
	StepCompleted  = "completed"
	StepSkipped    = "skipped"
	StepFailed     = "failed"
)

// ProcessActive reports whether a process status counts as active for the
// one-active-process-per-tenant invariant.
func ProcessActive(status string) bool {
	return status == ProcessDraft || status == ProcessInProgress
}

// ProcessTerminal reports whether a process status is terminal.
func ProcessTerminal(status string) bool {
	return status == ProcessCompleted || status == ProcessFailed
}

// StepDone reports whether a step status counts toward process completion.
func StepDone(status string) bool {
	return status == StepCompleted || status == StepSkipped
}
