package core

import (
	"context"
	"fmt"
	"time"

	"github.com/biasharahq/platform/internal/model"
	"github.com/biasharahq/platform/internal/platform"
)

// Module status constants.
const (
	ModuleEnabled  = "enabled"
	ModuleDisabled = "disabled"
)

// ModuleService tracks which business modules a tenant has enabled.
type ModuleService struct {
	db DB
}

func NewModuleService(db DB) *ModuleService {
	return &ModuleService{db: db}
}

// Enable records the module as enabled for the tenant. Enabling an
// already-enabled module is a no-op upsert.
func (s *ModuleService) Enable(ctx context.Context, tenantID, code string) error {
	now := time.Now().UTC()
	_, err := s.db.Exec(ctx,
		`INSERT INTO tenant_modules (id, tenant_id, code, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $5)
		 ON CONFLICT (tenant_id, code) DO UPDATE SET status = $4, updated_at = $5`,
		platform.NewID(), tenantID, code, ModuleEnabled, now,
	)
	if err != nil {
		return fmt.Errorf("enable module %s for tenant %s: %w", code, tenantID, err)
	}
	return nil
}

// Disable marks the module disabled without deleting the record.
func (s *ModuleService) Disable(ctx context.Context, tenantID, code string) error {
	tag, err := s.db.Exec(ctx,
		"UPDATE tenant_modules SET status = $1, updated_at = now() WHERE tenant_id = $2 AND code = $3",
		ModuleDisabled, tenantID, code,
	)
	if err != nil {
		return fmt.Errorf("disable module %s for tenant %s: %w", code, tenantID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("module %s for tenant %s: %w", code, tenantID, ErrNotFound)
	}
	return nil
}

func (s *ModuleService) ListByTenant(ctx context.Context, tenantID string) ([]model.TenantModule, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, tenant_id, code, status, created_at, updated_at
		 FROM tenant_modules WHERE tenant_id = $1 ORDER BY code`,
		tenantID,
	)
	if err != nil {
		return nil, fmt.Errorf("list modules for tenant %s: %w", tenantID, err)
	}
	defer rows.Close()

	var mods []model.TenantModule
	for rows.Next() {
		var m model.TenantModule
		if err := rows.Scan(&m.ID, &m.TenantID, &m.Code, &m.Status, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan tenant module: %w", err)
		}
		mods = append(mods, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tenant modules: %w", err)
	}
	return mods, nil
}
