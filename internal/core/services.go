package core

type Services struct {
	Tenant          *TenantService
	Module          *ModuleService
	ProvisioningLog *ProvisioningLogService
	APIKey          *APIKeyService
}

func NewServices(db DB, secretsKey []byte) *Services {
	return &Services{
		Tenant:          NewTenantService(db, secretsKey),
		Module:          NewModuleService(db),
		ProvisioningLog: NewProvisioningLogService(db),
		APIKey:          NewAPIKeyService(db),
	}
}
