package model

import "time"

type Tenant struct {
	ID                 string    `json:"id" db:"id"`
	Name               string    `json:"name" db:"name"`
	WorkspaceType      string    `json:"workspace_type" db:"workspace_type"`
	Engine             string    `json:"engine" db:"engine"`
	EngineBaseURL      string    `json:"engine_base_url,omitempty" db:"engine_base_url"`
	EngineAPIKeyEnc    string    `json:"-" db:"engine_api_key_enc"`
	EngineAPISecretEnc string    `json:"-" db:"engine_api_secret_enc"`
	ProvisioningStatus string    `json:"provisioning_status" db:"provisioning_status"`
	ProvisioningError  *string   `json:"provisioning_error,omitempty" db:"provisioning_error"`
	ProvisioningSkips  []string  `json:"provisioning_skips,omitempty" db:"provisioning_skips"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time `json:"updated_at" db:"updated_at"`
}
