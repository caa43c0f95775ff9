// Package onboarding owns the activation lifecycle of a tenant: one
// OnboardingProcess per activation attempt, broken into ordered steps
// that are dispatched to the provisioning engine one at a time by an
// external caller. Nothing in here schedules work on its own.
package onboarding

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/biasharahq/platform/internal/model"
	"github.com/biasharahq/platform/internal/provision"
)

var (
	// ErrAlreadyActive is returned by Initiate when a draft or running
	// process already exists for the tenant.
	ErrAlreadyActive = errors.New("onboarding already active")

	// ErrNoProcess is returned when an operation needs a process and the
	// tenant has none (or none in a usable state).
	ErrNoProcess = errors.New("no onboarding process")

	// ErrInvalidState is returned when the process or step is not in a
	// state the operation accepts.
	ErrInvalidState = errors.New("invalid onboarding state")
)

// The fixed company-setup step always runs first.
const companySetupCode = "company_setup"

// StepCode renders the caller-facing code of a step. Codes are derived
// from the kind tag assigned at step generation, never parsed back.
func StepCode(s *model.OnboardingStep) string {
	if s.Kind == model.StepKindModuleSetup && s.ModuleCode != nil {
		return "module_" + *s.ModuleCode + "_setup"
	}
	return companySetupCode
}

// TenantStore is the tenant persistence the orchestrator needs.
type TenantStore interface {
	Get(ctx context.Context, id string) (*model.Tenant, error)
	SetEngine(ctx context.Context, id, engineType string) error
}

// Provisioner executes the engine-side work behind a step.
type Provisioner interface {
	SetupCompany(ctx context.Context, tenant *model.Tenant, cfg provision.Config, correlationID string) (map[string]any, error)
	SetupModule(ctx context.Context, tenant *model.Tenant, moduleCode string, cfg provision.Config, correlationID string) (map[string]any, error)
}

// ModuleStore records module enablement when a module step completes.
type ModuleStore interface {
	Enable(ctx context.Context, tenantID, code string) error
}

// Options carries the engine selection defaults from configuration.
type Options struct {
	// DefaultEngine is used when the tenant has no engine bound yet.
	DefaultEngine string

	// PreferredEngine is the engine enterprise workspaces activate
	// against. Empty falls back to DefaultEngine.
	PreferredEngine string
}

// Orchestrator drives onboarding processes through their state machine.
type Orchestrator struct {
	store       Store
	tenants     TenantStore
	provisioner Provisioner
	modules     ModuleStore
	opts        Options
	logger      zerolog.Logger
}

func NewOrchestrator(store Store, tenants TenantStore, provisioner Provisioner, modules ModuleStore, opts Options, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		store:       store,
		tenants:     tenants,
		provisioner: provisioner,
		modules:     modules,
		opts:        opts,
		logger:      logger.With().Str("component", "onboarding").Logger(),
	}
}

// Status is the caller-facing snapshot of a tenant's onboarding.
type Status struct {
	TenantID       string                 `json:"tenant_id"`
	Status         string                 `json:"status"`
	WorkspaceType  string                 `json:"workspace_type,omitempty"`
	Template       string                 `json:"template,omitempty"`
	Engine         string                 `json:"engine,omitempty"`
	TotalSteps     int                    `json:"total_steps"`
	CompletedSteps int                    `json:"completed_steps"`
	SkippedSteps   int                    `json:"skipped_steps"`
	Progress       float64                `json:"progress"`
	CurrentStep    *string                `json:"current_step,omitempty"`
	Error          *string                `json:"error,omitempty"`
	Steps          []model.OnboardingStep `json:"steps,omitempty"`
}

// StatusNotStarted is reported for tenants with no process at all.
const StatusNotStarted = "not_started"
