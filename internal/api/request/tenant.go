package request

type CreateTenant struct {
	Name          string `json:"name" validate:"required,min=1,max=255"`
	WorkspaceType string `json:"workspace_type" validate:"omitempty,oneof=STARTUP SME ENTERPRISE SACCO"`
	Engine        string `json:"engine" validate:"omitempty,oneof=erpnext cbs"`
	EngineBaseURL string `json:"engine_base_url" validate:"omitempty,url"`
}

type UpdateTenant struct {
	Name          *string `json:"name" validate:"omitempty,min=1,max=255"`
	WorkspaceType *string `json:"workspace_type" validate:"omitempty,oneof=STARTUP SME ENTERPRISE SACCO"`
	EngineBaseURL *string `json:"engine_base_url" validate:"omitempty,url"`
}

// SetEngineCredentials stores per-tenant engine credentials. Empty key
// and secret clear the stored overrides.
type SetEngineCredentials struct {
	BaseURL   string `json:"base_url" validate:"omitempty,url"`
	APIKey    string `json:"api_key"`
	APISecret string `json:"api_secret"`
}
