package model

import "time"

// ProvisioningLog is one recorded event from a provisioning run. Logs are
// keyed by the correlation ID of the run so a whole run can be replayed.
type ProvisioningLog struct {
	ID            string    `json:"id" db:"id"`
	TenantID      string    `json:"tenant_id" db:"tenant_id"`
	CorrelationID string    `json:"correlation_id" db:"correlation_id"`
	Step          string    `json:"step" db:"step"`
	Level         string    `json:"level" db:"level"`
	Message       string    `json:"message" db:"message"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}
