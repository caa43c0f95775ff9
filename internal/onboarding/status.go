package onboarding

import (
	"context"
	"errors"

	"github.com/biasharahq/platform/internal/model"
)

// Status reports the tenant's latest process, terminal or not. Tenants
// that never initiated onboarding report not_started at 0%.
func (o *Orchestrator) Status(ctx context.Context, tenantID string) (*Status, error) {
	proc, err := o.store.LatestProcess(ctx, tenantID)
	if errors.Is(err, ErrNoProcess) {
		return &Status{TenantID: tenantID, Status: StatusNotStarted}, nil
	}
	if err != nil {
		return nil, err
	}

	steps, err := o.store.Steps(ctx, proc.ID)
	if err != nil {
		return nil, err
	}

	st := &Status{
		TenantID:      tenantID,
		Status:        proc.Status,
		WorkspaceType: proc.WorkspaceType,
		Template:      proc.Template,
		Engine:        proc.Engine,
		TotalSteps:    len(steps),
		Error:         proc.Error,
		Steps:         steps,
	}

	for i := range steps {
		switch steps[i].Status {
		case model.StepCompleted:
			st.CompletedSteps++
		case model.StepSkipped:
			st.SkippedSteps++
		}
	}
	if st.TotalSteps > 0 {
		st.Progress = float64(st.CompletedSteps+st.SkippedSteps) / float64(st.TotalSteps) * 100
	}

	if next := nextPending(steps); next != nil && !model.ProcessTerminal(proc.Status) {
		code := StepCode(next)
		st.CurrentStep = &code
	}

	return st, nil
}
