package model

import "time"

// Module codes known to the platform.
const (
	ModuleInventory     = "inventory"
	ModuleAccounting    = "accounting"
	ModulePOS           = "pos"
	ModuleManufacturing = "manufacturing"
	ModulePurchasing    = "purchasing"
	ModuleHR            = "hr"
	ModuleProjects      = "projects"
	ModuleCRM           = "crm"
)

// TenantModule records a business module enabled for a tenant.
type TenantModule struct {
	ID        string    `json:"id" db:"id"`
	TenantID  string    `json:"tenant_id" db:"tenant_id"`
	Code      string    `json:"code" db:"code"`
	Status    string    `json:"status" db:"status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
