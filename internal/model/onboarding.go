package model

import (
	"encoding/json"
	"time"
)

// Step kinds. The kind decides which executor handles the step.
const (
	StepKindCompanySetup = "company_setup"
	StepKindModuleSetup  = "module_setup"
)

// OnboardingProcess tracks the activation pipeline of a single tenant.
// At most one process per tenant may be in an active status at a time.
type OnboardingProcess struct {
	ID            string          `json:"id" db:"id"`
	TenantID      string          `json:"tenant_id" db:"tenant_id"`
	WorkspaceType string          `json:"workspace_type" db:"workspace_type"`
	Template      string          `json:"template" db:"template"`
	Engine        string          `json:"engine" db:"engine"`
	Status        string          `json:"status" db:"status"`
	Config        json.RawMessage `json:"config,omitempty" db:"config"`
	CurrentStep   *string         `json:"current_step,omitempty" db:"current_step"`
	Error         *string         `json:"error,omitempty" db:"error"`
	ErrorStep     *string         `json:"error_step,omitempty" db:"error_step"`
	StartedAt     *time.Time      `json:"started_at,omitempty" db:"started_at"`
	CompletedAt   *time.Time      `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// OnboardingStep is a single ordered unit of work inside a process.
type OnboardingStep struct {
	ID          string          `json:"id" db:"id"`
	ProcessID   string          `json:"process_id" db:"process_id"`
	Kind        string          `json:"kind" db:"kind"`
	ModuleCode  *string         `json:"module_code,omitempty" db:"module_code"`
	Title       string          `json:"title" db:"title"`
	StepOrder   int             `json:"step_order" db:"step_order"`
	Required    bool            `json:"required" db:"required"`
	Status      string          `json:"status" db:"status"`
	Error       *string         `json:"error,omitempty" db:"error"`
	ResultData  json.RawMessage `json:"result_data,omitempty" db:"result_data"`
	DurationMS  *int64          `json:"duration_ms,omitempty" db:"duration_ms"`
	StartedAt   *time.Time      `json:"started_at,omitempty" db:"started_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// ProcessProgress is the caller-facing snapshot of a process.
type ProcessProgress struct {
	ProcessID      string  `json:"process_id,omitempty"`
	TenantID       string  `json:"tenant_id"`
	Status         string  `json:"status"`
	TotalSteps     int     `json:"total_steps"`
	CompletedSteps int     `json:"completed_steps"`
	SkippedSteps   int     `json:"skipped_steps"`
	FailedSteps    int     `json:"failed_steps"`
	PendingSteps   int     `json:"pending_steps"`
	Progress       float64 `json:"progress"`
	CurrentStep    *string `json:"current_step,omitempty"`
}
