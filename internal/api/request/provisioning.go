package request

// StartProvisioning carries the per-run flags; everything else comes from
// the tenant's activation configuration.
type StartProvisioning struct {
	CompanyName           string  `json:"company_name" validate:"omitempty,min=1,max=255"`
	IncludeDemoData       bool    `json:"include_demo_data"`
	POSStoreEnabled       bool    `json:"pos_store_enabled"`
	IncludeOpeningSession bool    `json:"include_opening_session"`
	OpeningCash           float64 `json:"opening_cash" validate:"omitempty,gte=0"`
	Modules               []string `json:"modules" validate:"omitempty,dive,min=1"`
}

// SkipProvisionStep marks one optional provisioning step skipped.
type SkipProvisionStep struct {
	Step string `json:"step" validate:"required"`
}
