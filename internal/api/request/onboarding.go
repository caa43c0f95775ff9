package request

// InitiateOnboarding opens an activation process for a tenant. Modules
// and configuration override the selected template's defaults.
type InitiateOnboarding struct {
	WorkspaceType string         `json:"workspace_type" validate:"omitempty,oneof=STARTUP SME ENTERPRISE SACCO"`
	TemplateCode  string         `json:"template_code" validate:"omitempty,max=64"`
	Modules       []string       `json:"modules" validate:"omitempty,dive,min=1"`
	Configuration map[string]any `json:"configuration"`
}

// SkipOnboardingStep marks one optional pending step skipped.
type SkipOnboardingStep struct {
	StepCode string `json:"step_code" validate:"required"`
}
