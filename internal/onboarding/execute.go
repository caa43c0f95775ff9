package onboarding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/biasharahq/platform/internal/engine"
	"github.com/biasharahq/platform/internal/model"
	"github.com/biasharahq/platform/internal/platform"
	"github.com/biasharahq/platform/internal/provision"
)

// Start moves a draft process to in_progress, stamping started_at, or
// resumes a paused one without re-stamping.
func (o *Orchestrator) Start(ctx context.Context, tenantID string) (*model.OnboardingProcess, error) {
	proc, err := o.store.CurrentProcess(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	switch proc.Status {
	case model.ProcessDraft:
		now := time.Now().UTC()
		proc.StartedAt = &now
	case model.ProcessPaused:
		// Resume point; the original started_at stands.
	default:
		return nil, fmt.Errorf("%w: cannot start a %s process", ErrInvalidState, proc.Status)
	}

	proc.Status = model.ProcessInProgress
	if err := o.store.UpdateProcess(ctx, proc); err != nil {
		return nil, err
	}
	return proc, nil
}

// Pause suspends a draft or running process. Completed steps stay
// completed; the next ExecuteNext or Resume picks up where it stopped.
func (o *Orchestrator) Pause(ctx context.Context, tenantID string) (*model.OnboardingProcess, error) {
	proc, err := o.store.CurrentProcess(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if !model.ProcessActive(proc.Status) {
		return nil, fmt.Errorf("%w: cannot pause a %s process", ErrInvalidState, proc.Status)
	}

	proc.Status = model.ProcessPaused
	if err := o.store.UpdateProcess(ctx, proc); err != nil {
		return nil, err
	}
	return proc, nil
}

// Resume moves a paused process back to in_progress, stamping started_at
// only if the process never ran.
func (o *Orchestrator) Resume(ctx context.Context, tenantID string) (*model.OnboardingProcess, error) {
	proc, err := o.store.CurrentProcess(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if proc.Status != model.ProcessPaused {
		return nil, fmt.Errorf("%w: cannot resume a %s process", ErrInvalidState, proc.Status)
	}
	return o.resume(ctx, proc)
}

func (o *Orchestrator) resume(ctx context.Context, proc *model.OnboardingProcess) (*model.OnboardingProcess, error) {
	proc.Status = model.ProcessInProgress
	if proc.StartedAt == nil {
		now := time.Now().UTC()
		proc.StartedAt = &now
	}
	if err := o.store.UpdateProcess(ctx, proc); err != nil {
		return nil, err
	}
	return proc, nil
}

// ExecuteNext runs the lowest-order pending step of the tenant's
// process, auto-resuming a paused one. When no pending steps remain the
// process is marked completed and nil is returned. A step failure is
// folded into the step and process records, not returned as an error:
// the returned step carries the failure for the caller to inspect.
func (o *Orchestrator) ExecuteNext(ctx context.Context, tenantID string) (*model.OnboardingStep, error) {
	proc, err := o.store.CurrentProcess(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	switch proc.Status {
	case model.ProcessPaused:
		if proc, err = o.resume(ctx, proc); err != nil {
			return nil, err
		}
	case model.ProcessInProgress:
	default:
		return nil, fmt.Errorf("%w: process is %s, call start first", ErrInvalidState, proc.Status)
	}

	steps, err := o.store.Steps(ctx, proc.ID)
	if err != nil {
		return nil, err
	}

	step := nextPending(steps)
	if step == nil {
		now := time.Now().UTC()
		proc.Status = model.ProcessCompleted
		proc.CompletedAt = &now
		proc.CurrentStep = nil
		if err := o.store.UpdateProcess(ctx, proc); err != nil {
			return nil, err
		}
		o.logger.Info().Str("tenant_id", tenantID).Str("process_id", proc.ID).Msg("onboarding completed")
		return nil, nil
	}

	tenant, err := o.tenants.Get(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("load tenant %s: %w", tenantID, err)
	}
	cfg, err := runConfig(tenant, proc)
	if err != nil {
		return nil, err
	}

	code := StepCode(step)
	started := time.Now().UTC()
	step.Status = model.StepInProgress
	step.StartedAt = &started
	if err := o.store.UpdateStep(ctx, step); err != nil {
		return nil, err
	}
	proc.CurrentStep = &code
	if err := o.store.UpdateProcess(ctx, proc); err != nil {
		return nil, err
	}

	correlationID := platform.NewName("onb_")
	logger := o.logger.With().
		Str("tenant_id", tenantID).
		Str("step", code).
		Str("correlation_id", correlationID).
		Logger()

	var data map[string]any
	var runErr error
	switch step.Kind {
	case model.StepKindCompanySetup:
		data, runErr = o.provisioner.SetupCompany(ctx, tenant, cfg, correlationID)
	case model.StepKindModuleSetup:
		data, runErr = o.provisioner.SetupModule(ctx, tenant, *step.ModuleCode, cfg, correlationID)
	default:
		runErr = fmt.Errorf("unknown step kind %q", step.Kind)
	}

	finished := time.Now().UTC()
	elapsed := finished.Sub(started).Milliseconds()
	step.DurationMS = &elapsed
	step.CompletedAt = &finished

	if runErr != nil {
		msg := stepFailureMessage(code, runErr)
		step.Status = model.StepFailed
		step.Error = &msg
		if err := o.store.UpdateStep(ctx, step); err != nil {
			return nil, err
		}

		proc.Status = model.ProcessFailed
		proc.Error = &msg
		proc.ErrorStep = &code
		if err := o.store.UpdateProcess(ctx, proc); err != nil {
			return nil, err
		}

		logger.Error().Err(runErr).Msg("onboarding step failed")
		return step, nil
	}

	if raw, err := json.Marshal(data); err == nil {
		step.ResultData = raw
	}
	step.Status = model.StepCompleted
	if err := o.store.UpdateStep(ctx, step); err != nil {
		return nil, err
	}

	if step.Kind == model.StepKindModuleSetup {
		if err := o.modules.Enable(ctx, tenantID, *step.ModuleCode); err != nil {
			return nil, fmt.Errorf("record module %s enabled: %w", *step.ModuleCode, err)
		}
	}

	logger.Info().Dur("took", finished.Sub(started)).Msg("onboarding step completed")
	return step, nil
}

// Skip marks a pending optional step skipped. Required steps and steps
// that already ran fail with ErrInvalidState.
func (o *Orchestrator) Skip(ctx context.Context, tenantID, stepCode string) (*model.OnboardingStep, error) {
	proc, err := o.store.CurrentProcess(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	steps, err := o.store.Steps(ctx, proc.ID)
	if err != nil {
		return nil, err
	}

	for i := range steps {
		step := &steps[i]
		if StepCode(step) != stepCode {
			continue
		}
		if step.Status != model.StepPending {
			return nil, fmt.Errorf("%w: step %s is %s", ErrInvalidState, stepCode, step.Status)
		}
		if step.Required {
			return nil, fmt.Errorf("%w: step %s is required", ErrInvalidState, stepCode)
		}

		step.Status = model.StepSkipped
		if err := o.store.UpdateStep(ctx, step); err != nil {
			return nil, err
		}
		o.logger.Info().Str("tenant_id", tenantID).Str("step", stepCode).Msg("onboarding step skipped")
		return step, nil
	}

	return nil, fmt.Errorf("%w: no step %s", ErrInvalidState, stepCode)
}

// stepFailureMessage renders a failure for the persisted step and
// process records. The status API serves these, so only the classified
// message is kept; raw engine responses stay in the log line.
func stepFailureMessage(code string, err error) string {
	var stepErr *provision.StepError
	if errors.As(err, &stepErr) {
		return fmt.Sprintf("step %s (%s): %s", code, stepErr.Severity, stepErr.Message)
	}
	var apiErr *engine.APIError
	if errors.As(err, &apiErr) {
		return fmt.Sprintf("step %s: engine rejected the call (status %d)", code, apiErr.StatusCode)
	}
	return fmt.Sprintf("step %s: %s", code, err.Error())
}

func nextPending(steps []model.OnboardingStep) *model.OnboardingStep {
	for i := range steps {
		if steps[i].Status == model.StepPending {
			return &steps[i]
		}
	}
	return nil
}
