package core

import (
	"context"

	"github.com/biasharahq/platform/internal/engine"
)

// EngineSource resolves engine clients from tenant records. It is the
// bridge between the tenant database and the engine registry, used by
// the health monitor and the provisioning engine.
type EngineSource struct {
	tenants  *TenantService
	registry *engine.Registry
}

func NewEngineSource(tenants *TenantService, registry *engine.Registry) *EngineSource {
	return &EngineSource{tenants: tenants, registry: registry}
}

func (s *EngineSource) EngineClient(ctx context.Context, tenantID, engineType string) (engine.Client, error) {
	tenant, err := s.tenants.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if engineType == "" {
		engineType = tenant.Engine
	}
	return s.registry.ClientFor(tenant, engineType)
}
