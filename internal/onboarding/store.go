package onboarding

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/biasharahq/platform/internal/model"
)

// DB is the subset of pgxpool.Pool the store needs.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store persists onboarding processes and their steps. Implementations
// must return ErrNoProcess when a lookup finds nothing.
type Store interface {
	CreateProcess(ctx context.Context, p *model.OnboardingProcess, steps []model.OnboardingStep) error

	// CurrentProcess returns the tenant's non-terminal process
	// (draft, in_progress or paused).
	CurrentProcess(ctx context.Context, tenantID string) (*model.OnboardingProcess, error)

	// LatestProcess returns the most recent process regardless of status.
	LatestProcess(ctx context.Context, tenantID string) (*model.OnboardingProcess, error)

	UpdateProcess(ctx context.Context, p *model.OnboardingProcess) error
	Steps(ctx context.Context, processID string) ([]model.OnboardingStep, error)
	UpdateStep(ctx context.Context, s *model.OnboardingStep) error
}

// SQLStore is the PostgreSQL-backed Store.
type SQLStore struct {
	db DB
}

func NewStore(db DB) *SQLStore {
	return &SQLStore{db: db}
}

const processColumns = `id, tenant_id, workspace_type, template, engine, status, config,
	current_step, error, error_step, started_at, completed_at, created_at, updated_at`

func (s *SQLStore) CreateProcess(ctx context.Context, p *model.OnboardingProcess, steps []model.OnboardingStep) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO onboarding_processes (id, tenant_id, workspace_type, template, engine, status, config, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID, p.TenantID, p.WorkspaceType, p.Template, p.Engine, p.Status, p.Config, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert onboarding process: %w", err)
	}

	for i := range steps {
		st := &steps[i]
		_, err := s.db.Exec(ctx,
			`INSERT INTO onboarding_steps (id, process_id, kind, module_code, title, step_order, required, status, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			st.ID, st.ProcessID, st.Kind, st.ModuleCode, st.Title, st.StepOrder, st.Required, st.Status, st.CreatedAt, st.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert onboarding step %s: %w", st.Title, err)
		}
	}
	return nil
}

func (s *SQLStore) CurrentProcess(ctx context.Context, tenantID string) (*model.OnboardingProcess, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+processColumns+`
		 FROM onboarding_processes
		 WHERE tenant_id = $1 AND status IN ($2, $3, $4)
		 ORDER BY created_at DESC LIMIT 1`,
		tenantID, model.ProcessDraft, model.ProcessInProgress, model.ProcessPaused,
	)
	return scanProcess(row)
}

func (s *SQLStore) LatestProcess(ctx context.Context, tenantID string) (*model.OnboardingProcess, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+processColumns+`
		 FROM onboarding_processes
		 WHERE tenant_id = $1
		 ORDER BY created_at DESC LIMIT 1`,
		tenantID,
	)
	return scanProcess(row)
}

func scanProcess(row pgx.Row) (*model.OnboardingProcess, error) {
	var p model.OnboardingProcess
	err := row.Scan(&p.ID, &p.TenantID, &p.WorkspaceType, &p.Template, &p.Engine, &p.Status, &p.Config,
		&p.CurrentStep, &p.Error, &p.ErrorStep, &p.StartedAt, &p.CompletedAt, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoProcess
	}
	if err != nil {
		return nil, fmt.Errorf("scan onboarding process: %w", err)
	}
	return &p, nil
}

func (s *SQLStore) UpdateProcess(ctx context.Context, p *model.OnboardingProcess) error {
	_, err := s.db.Exec(ctx,
		`UPDATE onboarding_processes
		 SET status = $1, engine = $2, config = $3, current_step = $4, error = $5, error_step = $6,
		     started_at = $7, completed_at = $8, updated_at = now()
		 WHERE id = $9`,
		p.Status, p.Engine, p.Config, p.CurrentStep, p.Error, p.ErrorStep, p.StartedAt, p.CompletedAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update onboarding process %s: %w", p.ID, err)
	}
	return nil
}

func (s *SQLStore) Steps(ctx context.Context, processID string) ([]model.OnboardingStep, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, process_id, kind, module_code, title, step_order, required, status,
		        error, result_data, duration_ms, started_at, completed_at, created_at, updated_at
		 FROM onboarding_steps
		 WHERE process_id = $1
		 ORDER BY step_order`,
		processID,
	)
	if err != nil {
		return nil, fmt.Errorf("list onboarding steps: %w", err)
	}
	defer rows.Close()

	var steps []model.OnboardingStep
	for rows.Next() {
		var st model.OnboardingStep
		if err := rows.Scan(&st.ID, &st.ProcessID, &st.Kind, &st.ModuleCode, &st.Title, &st.StepOrder, &st.Required,
			&st.Status, &st.Error, &st.ResultData, &st.DurationMS, &st.StartedAt, &st.CompletedAt, &st.CreatedAt, &st.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan onboarding step: %w", err)
		}
		steps = append(steps, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate onboarding steps: %w", err)
	}
	return steps, nil
}

func (s *SQLStore) UpdateStep(ctx context.Context, st *model.OnboardingStep) error {
	_, err := s.db.Exec(ctx,
		`UPDATE onboarding_steps
		 SET status = $1, error = $2, result_data = $3, duration_ms = $4, started_at = $5, completed_at = $6, updated_at = now()
		 WHERE id = $7`,
		st.Status, st.Error, st.ResultData, st.DurationMS, st.StartedAt, st.CompletedAt, st.ID,
	)
	if err != nil {
		return fmt.Errorf("update onboarding step %s: %w", st.ID, err)
	}
	return nil
}
