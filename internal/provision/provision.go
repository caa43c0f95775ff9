// Package provision executes the idempotent engine-side setup sequence
// that activates a tenant: company, chart of accounts, warehouses,
// settings, default customer, POS resources, demo data. Every ensure-step
// checks existence by natural key before creating, so whole runs are
// safely re-runnable.
package provision

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/biasharahq/platform/internal/demodata"
	"github.com/biasharahq/platform/internal/engine/health"
	"github.com/biasharahq/platform/internal/model"
	"github.com/biasharahq/platform/internal/platform"
)

// Step names in canonical sequence order.
const (
	StepEngineHealth    = "engine_health"
	StepCompany         = "company"
	StepChartOfAccounts = "chart_of_accounts"
	StepWarehouses      = "warehouses"
	StepSettings        = "settings"
	StepWalkInCustomer  = "walk_in_customer"
	StepPOSProfile      = "pos_profile"
	StepOpeningSession  = "pos_opening_session"
	StepDemoData        = "demo_data"
)

// StepOptional reports whether a step may fail or be skipped without
// failing the run.
func StepOptional(name string) bool {
	return name == StepSettings || name == StepDemoData
}

// TenantStore is the tenant persistence the engine needs.
type TenantStore interface {
	Get(ctx context.Context, id string) (*model.Tenant, error)
	BeginProvisioning(ctx context.Context, id string) (bool, error)
	SetProvisioningStatus(ctx context.Context, id, status string, message *string) error
	AddProvisioningSkip(ctx context.Context, id, step string) error
}

// HealthChecker gates runs on engine availability.
type HealthChecker interface {
	Check(ctx context.Context, tenantID, engineType string, forceRefresh bool) health.Result
	Invalidate(tenantID, engineType string)
}

// LogStore records per-step events for the run log API. Append failures
// are swallowed; logging never fails a run.
type LogStore interface {
	Append(ctx context.Context, entry *model.ProvisioningLog) error
}

// DemoSource supplies demo document bundles.
type DemoSource interface {
	Bundle(ctx context.Context, name string) ([]demodata.Doc, error)
}

// Engine runs provisioning sequences against external engines.
type Engine struct {
	source  health.ClientSource
	monitor HealthChecker
	tenants TenantStore
	logs    LogStore
	demo    DemoSource
	logger  zerolog.Logger
}

func NewEngine(source health.ClientSource, monitor HealthChecker, tenants TenantStore, logs LogStore, demo DemoSource, logger zerolog.Logger) *Engine {
	return &Engine{
		source:  source,
		monitor: monitor,
		tenants: tenants,
		logs:    logs,
		demo:    demo,
		logger:  logger.With().Str("component", "provision").Logger(),
	}
}

// Provision runs the full activation sequence for the tenant. It stops on
// the first critical or transient failure, accumulates non-critical ones,
// and folds the final verdict onto Tenant.provisioning_status. Validation
// failures return before any state is touched.
func (e *Engine) Provision(ctx context.Context, tenantID string, cfg Config, correlationID string) (*Result, error) {
	tenant, err := e.tenants.Get(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("load tenant %s: %w", tenantID, err)
	}

	if cfg.CompanyName == "" {
		cfg.CompanyName = tenant.Name
	}
	if cfg.CompanyName == "" {
		return nil, validation(StepCompany, "company name is empty")
	}
	if correlationID == "" {
		correlationID = platform.NewName("prov_")
	}

	// The in-memory check answers fast; the conditional UPDATE behind
	// BeginProvisioning closes the race between concurrent callers.
	if tenant.ProvisioningStatus == model.ProvisioningInProgress {
		return nil, ErrAlreadyProvisioning
	}
	started, err := e.tenants.BeginProvisioning(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("mark tenant provisioning: %w", err)
	}
	if !started {
		return nil, ErrAlreadyProvisioning
	}

	result := e.runSequence(ctx, tenant, cfg, correlationID)

	if result.Status == RunFailed {
		msg := failureMessage(result)
		if err := e.tenants.SetProvisioningStatus(ctx, tenantID, model.ProvisioningFailed, &msg); err != nil {
			e.logger.Error().Str("tenant_id", tenantID).Err(err).Msg("persist failed provisioning status")
		}
	} else {
		if err := e.tenants.SetProvisioningStatus(ctx, tenantID, model.ProvisioningProvisioned, nil); err != nil {
			e.logger.Error().Str("tenant_id", tenantID).Err(err).Msg("persist provisioned status")
		}
	}

	runsTotal.WithLabelValues(result.Status).Inc()
	return result, nil
}

// Retry re-runs the whole sequence. Idempotency makes already-satisfied
// steps cheap no-ops, so no resume cursor is kept. The health cache is
// invalidated first so a fixed engine is seen immediately.
func (e *Engine) Retry(ctx context.Context, tenantID string, cfg Config, correlationID string) (*Result, error) {
	tenant, err := e.tenants.Get(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("load tenant %s: %w", tenantID, err)
	}
	e.monitor.Invalidate(tenantID, tenant.Engine)
	return e.Provision(ctx, tenantID, cfg, correlationID)
}

// SkipStep marks one optional step skipped for all future runs of the
// tenant, unblocking retries past a manually resolved failure.
func (e *Engine) SkipStep(ctx context.Context, tenantID, step string) error {
	if !StepOptional(step) {
		return validation(step, fmt.Sprintf("step %q is not optional", step))
	}
	if err := e.tenants.AddProvisioningSkip(ctx, tenantID, step); err != nil {
		return fmt.Errorf("persist step skip: %w", err)
	}
	return nil
}

func (e *Engine) runSequence(ctx context.Context, tenant *model.Tenant, cfg Config, correlationID string) *Result {
	client, clientErr := e.source.EngineClient(ctx, tenant.ID, tenant.Engine)

	r := &run{
		engine:        e,
		tenant:        tenant,
		client:        client,
		clientErr:     clientErr,
		cfg:           cfg,
		correlationID: correlationID,
		logger: e.logger.With().
			Str("tenant_id", tenant.ID).
			Str("engine", tenant.Engine).
			Str("correlation_id", correlationID).
			Logger(),
	}

	steps := e.plan(cfg)
	result := &Result{
		TenantID:      tenant.ID,
		CorrelationID: correlationID,
		Status:        RunCompleted,
		TotalSteps:    len(steps),
	}

	skips := make(map[string]bool, len(tenant.ProvisioningSkips))
	for _, s := range tenant.ProvisioningSkips {
		skips[s] = true
	}

	for _, def := range steps {
		if skips[def.name] && StepOptional(def.name) {
			e.appendLog(ctx, r, def.name, "info", "step skipped by operator")
			result.record(StepResult{Name: def.name, Status: StepSkipped})
			stepsTotal.WithLabelValues(def.name, StepSkipped).Inc()
			continue
		}

		e.appendLog(ctx, r, def.name, "info", "step started")
		started := time.Now()
		status, data, err := def.fn(ctx, r)
		elapsed := time.Since(started)
		stepDuration.WithLabelValues(def.name).Observe(elapsed.Seconds())

		if err != nil {
			if StepOptional(def.name) {
				stepErr := nonCritical(def.name, err)
				result.Errors = append(result.Errors, *stepErr)
				result.record(StepResult{Name: def.name, Status: StepFailed, DurationMS: elapsed.Milliseconds(), Error: stepErr.Message})
				stepsTotal.WithLabelValues(def.name, StepFailed).Inc()
				e.appendLog(ctx, r, def.name, "warn", stepErr.Error())
				r.logger.Warn().Str("step", def.name).Err(err).Msg("optional step failed")
				continue
			}

			stepErr := classify(def.name, err)
			result.Errors = append(result.Errors, *stepErr)
			result.Status = RunFailed
			result.CurrentStep = def.name
			result.record(StepResult{Name: def.name, Status: StepFailed, DurationMS: elapsed.Milliseconds(), Error: stepErr.Message})
			stepsTotal.WithLabelValues(def.name, StepFailed).Inc()
			e.appendLog(ctx, r, def.name, "error", stepErr.Error())
			r.logger.Error().Str("step", def.name).Str("severity", string(stepErr.Severity)).Err(err).Msg("provisioning aborted")
			break
		}

		result.record(StepResult{Name: def.name, Status: status, DurationMS: elapsed.Milliseconds(), Data: data})
		stepsTotal.WithLabelValues(def.name, status).Inc()
		e.appendLog(ctx, r, def.name, "info", "step "+status)
		r.logger.Info().Str("step", def.name).Str("status", status).Dur("took", elapsed).Msg("step done")
	}

	return result
}

type stepFn func(ctx context.Context, r *run) (string, map[string]any, error)

type stepDef struct {
	name string
	fn   stepFn
}

// plan lays out the sequence for one run. POS and demo steps are only
// planned when the config asks for them, so TotalSteps reflects the
// actual work.
func (e *Engine) plan(cfg Config) []stepDef {
	steps := []stepDef{
		{StepEngineHealth, stepHealthGate},
		{StepCompany, stepCompany},
		{StepChartOfAccounts, stepChartOfAccounts},
		{StepWarehouses, stepWarehouses},
		{StepSettings, stepSettings},
		{StepWalkInCustomer, stepWalkInCustomer},
	}
	if cfg.POSStoreEnabled {
		steps = append(steps, stepDef{StepPOSProfile, stepPOSProfile})
		if cfg.IncludeOpeningSession {
			steps = append(steps, stepDef{StepOpeningSession, stepOpeningSession})
		}
	}
	if cfg.IncludeDemoData {
		steps = append(steps, stepDef{StepDemoData, stepDemoData})
	}
	return steps
}

func failureMessage(result *Result) string {
	if len(result.Errors) == 0 {
		return "provisioning failed"
	}
	last := result.Errors[len(result.Errors)-1]
	return fmt.Sprintf("%s: %s", last.Step, last.Message)
}

func (e *Engine) appendLog(ctx context.Context, r *run, step, level, message string) {
	if e.logs == nil {
		return
	}
	entry := &model.ProvisioningLog{
		ID:            platform.NewID(),
		TenantID:      r.tenant.ID,
		CorrelationID: r.correlationID,
		Step:          step,
		Level:         level,
		Message:       message,
		CreatedAt:     time.Now().UTC(),
	}
	if err := e.logs.Append(ctx, entry); err != nil {
		r.logger.Warn().Err(err).Msg("append provisioning log")
	}
}
