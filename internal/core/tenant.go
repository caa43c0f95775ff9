package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/biasharahq/platform/internal/api/request"
	"github.com/biasharahq/platform/internal/crypto"
	"github.com/biasharahq/platform/internal/model"
	"github.com/biasharahq/platform/internal/platform"
)

// TenantService manages tenant records. Engine credentials are encrypted
// with the platform secrets key before they touch the database.
type TenantService struct {
	db         DB
	secretsKey []byte
}

func NewTenantService(db DB, secretsKey []byte) *TenantService {
	return &TenantService{db: db, secretsKey: secretsKey}
}

const tenantColumns = `id, name, workspace_type, engine, engine_base_url, engine_api_key_enc, engine_api_secret_enc,
	provisioning_status, provisioning_error, provisioning_skips, created_at, updated_at`

func (s *TenantService) Create(ctx context.Context, tenant *model.Tenant) error {
	if tenant.ID == "" {
		tenant.ID = platform.NewID()
	}
	if tenant.WorkspaceType == "" {
		tenant.WorkspaceType = model.WorkspaceStartup
	}
	if tenant.ProvisioningStatus == "" {
		tenant.ProvisioningStatus = model.ProvisioningNotProvisioned
	}
	now := time.Now().UTC()
	tenant.CreatedAt = now
	tenant.UpdatedAt = now

	_, err := s.db.Exec(ctx,
		`INSERT INTO tenants (id, name, workspace_type, engine, engine_base_url, provisioning_status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		tenant.ID, tenant.Name, tenant.WorkspaceType, tenant.Engine, tenant.EngineBaseURL,
		tenant.ProvisioningStatus, tenant.CreatedAt, tenant.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert tenant: %w", err)
	}
	return nil
}

func (s *TenantService) Get(ctx context.Context, id string) (*model.Tenant, error) {
	var t model.Tenant
	err := s.db.QueryRow(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE id = $1`, id,
	).Scan(&t.ID, &t.Name, &t.WorkspaceType, &t.Engine, &t.EngineBaseURL, &t.EngineAPIKeyEnc, &t.EngineAPISecretEnc,
		&t.ProvisioningStatus, &t.ProvisioningError, &t.ProvisioningSkips, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("tenant %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get tenant %s: %w", id, err)
	}
	return &t, nil
}

func (s *TenantService) List(ctx context.Context, params request.ListParams) ([]model.Tenant, bool, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE 1=1`
	args := []any{}
	argIdx := 1

	if params.Search != "" {
		query += fmt.Sprintf(` AND (id ILIKE $%d OR name ILIKE $%d)`, argIdx, argIdx)
		args = append(args, "%"+params.Search+"%")
		argIdx++
	}
	if params.Status != "" {
		query += fmt.Sprintf(` AND provisioning_status = $%d`, argIdx)
		args = append(args, params.Status)
		argIdx++
	}
	if params.Cursor != "" {
		query += fmt.Sprintf(` AND id > $%d`, argIdx)
		args = append(args, params.Cursor)
		argIdx++
	}

	sortCol := "created_at"
	switch params.Sort {
	case "name":
		sortCol = "name"
	case "created_at":
		sortCol = "created_at"
	}
	order := "DESC"
	if params.Order == "asc" {
		order = "ASC"
	}
	query += fmt.Sprintf(` ORDER BY %s %s`, sortCol, order)
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, params.Limit+1)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("list tenants: %w", err)
	}
	defer rows.Close()

	var tenants []model.Tenant
	for rows.Next() {
		var t model.Tenant
		if err := rows.Scan(&t.ID, &t.Name, &t.WorkspaceType, &t.Engine, &t.EngineBaseURL, &t.EngineAPIKeyEnc, &t.EngineAPISecretEnc,
			&t.ProvisioningStatus, &t.ProvisioningError, &t.ProvisioningSkips, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, false, fmt.Errorf("scan tenant: %w", err)
		}
		tenants = append(tenants, t)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate tenants: %w", err)
	}

	hasMore := len(tenants) > params.Limit
	if hasMore {
		tenants = tenants[:params.Limit]
	}
	return tenants, hasMore, nil
}

func (s *TenantService) Update(ctx context.Context, tenant *model.Tenant) error {
	_, err := s.db.Exec(ctx,
		`UPDATE tenants SET name = $1, workspace_type = $2, engine_base_url = $3, updated_at = now()
		 WHERE id = $4`,
		tenant.Name, tenant.WorkspaceType, tenant.EngineBaseURL, tenant.ID,
	)
	if err != nil {
		return fmt.Errorf("update tenant %s: %w", tenant.ID, err)
	}
	return nil
}

// SetEngine rebinds the tenant to an engine type.
func (s *TenantService) SetEngine(ctx context.Context, id, engineType string) error {
	_, err := s.db.Exec(ctx,
		"UPDATE tenants SET engine = $1, updated_at = now() WHERE id = $2",
		engineType, id,
	)
	if err != nil {
		return fmt.Errorf("set tenant %s engine to %s: %w", id, engineType, err)
	}
	return nil
}

// SetEngineCredentials stores tenant-specific engine credentials,
// encrypted at rest. Empty apiKey and apiSecret clear the overrides.
func (s *TenantService) SetEngineCredentials(ctx context.Context, id, baseURL, apiKey, apiSecret string) error {
	var keyEnc, secretEnc string
	var err error
	if apiKey != "" {
		if keyEnc, err = crypto.Encrypt([]byte(apiKey), s.secretsKey); err != nil {
			return fmt.Errorf("encrypt engine api key: %w", err)
		}
	}
	if apiSecret != "" {
		if secretEnc, err = crypto.Encrypt([]byte(apiSecret), s.secretsKey); err != nil {
			return fmt.Errorf("encrypt engine api secret: %w", err)
		}
	}

	_, err = s.db.Exec(ctx,
		`UPDATE tenants SET engine_base_url = $1, engine_api_key_enc = $2, engine_api_secret_enc = $3, updated_at = now()
		 WHERE id = $4`,
		baseURL, keyEnc, secretEnc, id,
	)
	if err != nil {
		return fmt.Errorf("set tenant %s engine credentials: %w", id, err)
	}
	return nil
}

// SetProvisioningStatus folds a provisioning verdict onto the tenant.
// The message lands in provisioning_error; nil clears it.
func (s *TenantService) SetProvisioningStatus(ctx context.Context, id, status string, message *string) error {
	_, err := s.db.Exec(ctx,
		"UPDATE tenants SET provisioning_status = $1, provisioning_error = $2, updated_at = now() WHERE id = $3",
		status, message, id,
	)
	if err != nil {
		return fmt.Errorf("set tenant %s provisioning status to %s: %w", id, status, err)
	}
	return nil
}

// BeginProvisioning conditionally moves the tenant into the provisioning
// state, clearing any previous error. It reports false when another run
// already holds the status: the WHERE clause makes the check-then-set
// race a database-level no-op.
func (s *TenantService) BeginProvisioning(ctx context.Context, id string) (bool, error) {
	tag, err := s.db.Exec(ctx,
		`UPDATE tenants
		 SET provisioning_status = $1, provisioning_error = NULL, updated_at = now()
		 WHERE id = $2 AND provisioning_status <> $1`,
		model.ProvisioningInProgress, id,
	)
	if err != nil {
		return false, fmt.Errorf("mark tenant %s provisioning: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

// AddProvisioningSkip records a permanently-skipped optional step.
// Adding the same step twice is a no-op.
func (s *TenantService) AddProvisioningSkip(ctx context.Context, id, step string) error {
	_, err := s.db.Exec(ctx,
		`UPDATE tenants
		 SET provisioning_skips = array_append(coalesce(provisioning_skips, '{}'), $1), updated_at = now()
		 WHERE id = $2 AND NOT ($1 = ANY(coalesce(provisioning_skips, '{}')))`,
		step, id,
	)
	if err != nil {
		return fmt.Errorf("add provisioning skip %s for tenant %s: %w", step, id, err)
	}
	return nil
}
