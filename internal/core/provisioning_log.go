package core

import (
	"context"
	"fmt"
	"time"

	"github.com/biasharahq/platform/internal/model"
	"github.com/biasharahq/platform/internal/platform"
)

// ProvisioningLogService persists the per-step event trail of
// provisioning runs.
type ProvisioningLogService struct {
	db DB
}

func NewProvisioningLogService(db DB) *ProvisioningLogService {
	return &ProvisioningLogService{db: db}
}

func (s *ProvisioningLogService) Append(ctx context.Context, entry *model.ProvisioningLog) error {
	if entry.ID == "" {
		entry.ID = platform.NewID()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(ctx,
		`INSERT INTO provisioning_logs (id, tenant_id, correlation_id, step, level, message, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		entry.ID, entry.TenantID, entry.CorrelationID, entry.Step, entry.Level, entry.Message, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert provisioning log: %w", err)
	}
	return nil
}

// ListByTenant returns log entries newest-first, optionally narrowed to
// one run by correlation ID.
func (s *ProvisioningLogService) ListByTenant(ctx context.Context, tenantID, correlationID string, limit int) ([]model.ProvisioningLog, error) {
	query := `SELECT id, tenant_id, correlation_id, step, level, message, created_at
		 FROM provisioning_logs WHERE tenant_id = $1`
	args := []any{tenantID}
	argIdx := 2

	if correlationID != "" {
		query += fmt.Sprintf(` AND correlation_id = $%d`, argIdx)
		args = append(args, correlationID)
		argIdx++
	}

	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d`, argIdx)
	args = append(args, limit)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list provisioning logs for tenant %s: %w", tenantID, err)
	}
	defer rows.Close()

	var entries []model.ProvisioningLog
	for rows.Next() {
		var e model.ProvisioningLog
		if err := rows.Scan(&e.ID, &e.TenantID, &e.CorrelationID, &e.Step, &e.Level, &e.Message, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan provisioning log: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate provisioning logs: %w", err)
	}
	return entries, nil
}
