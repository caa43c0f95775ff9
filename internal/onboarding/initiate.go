package onboarding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/biasharahq/platform/internal/engine"
	"github.com/biasharahq/platform/internal/model"
	"github.com/biasharahq/platform/internal/modules"
	"github.com/biasharahq/platform/internal/modules/template"
	"github.com/biasharahq/platform/internal/platform"
	"github.com/biasharahq/platform/internal/provision"
)

// Initiate creates a new onboarding process in draft. A draft or running
// process fails with ErrAlreadyActive; a paused one is returned as-is so
// callers can resume where they left off. Template defaults are merged
// with the caller's overrides (caller keys win) and one step is generated
// per resolved module, after the fixed company-setup step.
func (o *Orchestrator) Initiate(ctx context.Context, tenantID, workspaceType, templateCode string, overrides map[string]any) (*model.OnboardingProcess, error) {
	tenant, err := o.tenants.Get(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("load tenant %s: %w", tenantID, err)
	}

	existing, err := o.store.CurrentProcess(ctx, tenantID)
	if err != nil && !errors.Is(err, ErrNoProcess) {
		return nil, err
	}
	if existing != nil {
		if existing.Status == model.ProcessPaused {
			return existing, nil
		}
		return nil, fmt.Errorf("%w: process %s is %s", ErrAlreadyActive, existing.ID, existing.Status)
	}

	if workspaceType == "" {
		workspaceType = tenant.WorkspaceType
	}
	workspaceType = strings.ToUpper(workspaceType)
	if workspaceType == "" {
		workspaceType = model.WorkspaceStartup
	}

	if templateCode == "" {
		templateCode = template.ForWorkspaceType(workspaceType)
	}
	tmpl, err := template.Get(templateCode)
	if err != nil {
		return nil, err
	}

	engineType := o.resolveEngine(workspaceType, tenant)
	if engineType != tenant.Engine {
		if err := o.tenants.SetEngine(ctx, tenantID, engineType); err != nil {
			return nil, fmt.Errorf("bind tenant %s to engine %s: %w", tenantID, engineType, err)
		}
	}

	config := template.Merge(tmpl, overrides)
	requested := requestedModules(config)
	order, err := modules.Resolve(requested)
	if err != nil {
		return nil, err
	}

	rawConfig, err := json.Marshal(config)
	if err != nil {
		return nil, fmt.Errorf("marshal activation config: %w", err)
	}

	now := time.Now().UTC()
	proc := &model.OnboardingProcess{
		ID:            platform.NewID(),
		TenantID:      tenantID,
		WorkspaceType: workspaceType,
		Template:      tmpl.Code,
		Engine:        engineType,
		Status:        model.ProcessDraft,
		Config:        rawConfig,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	steps := generateSteps(proc.ID, order, now)

	if err := o.store.CreateProcess(ctx, proc, steps); err != nil {
		return nil, err
	}

	o.logger.Info().
		Str("tenant_id", tenantID).
		Str("workspace_type", workspaceType).
		Str("template", tmpl.Code).
		Str("engine", engineType).
		Strs("modules", order).
		Msg("onboarding initiated")

	return proc, nil
}

// resolveEngine picks the engine a workspace activates against. SACCO
// workspaces always go to the core-banking system; enterprise ones to
// the preferred engine; everything else keeps the tenant's binding or
// falls back to the platform default.
func (o *Orchestrator) resolveEngine(workspaceType string, tenant *model.Tenant) string {
	switch workspaceType {
	case model.WorkspaceSACCO:
		return engine.TypeCBS
	case model.WorkspaceEnterprise:
		if o.opts.PreferredEngine != "" {
			return o.opts.PreferredEngine
		}
	}
	if tenant.Engine != "" {
		return tenant.Engine
	}
	return o.opts.DefaultEngine
}

func requestedModules(config map[string]any) []string {
	raw, ok := config["modules"]
	if !ok {
		return nil
	}
	switch v := raw.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, m := range v {
			if s, ok := m.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func generateSteps(processID string, order []string, now time.Time) []model.OnboardingStep {
	steps := make([]model.OnboardingStep, 0, len(order)+1)
	steps = append(steps, model.OnboardingStep{
		ID:        platform.NewID(),
		ProcessID: processID,
		Kind:      model.StepKindCompanySetup,
		Title:     "Company Setup",
		StepOrder: 0,
		Required:  true,
		Status:    model.StepPending,
		CreatedAt: now,
		UpdatedAt: now,
	})

	for i, code := range order {
		code := code
		title := code
		if mod, ok := modules.Get(code); ok {
			title = mod.Title
		}
		steps = append(steps, model.OnboardingStep{
			ID:         platform.NewID(),
			ProcessID:  processID,
			Kind:       model.StepKindModuleSetup,
			ModuleCode: &code,
			Title:      title + " Setup",
			StepOrder:  i + 1,
			Required:   false,
			Status:     model.StepPending,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}
	return steps
}

// runConfig rebuilds the provisioning config from the persisted
// activation configuration.
func runConfig(tenant *model.Tenant, proc *model.OnboardingProcess) (provision.Config, error) {
	var config map[string]any
	if len(proc.Config) > 0 {
		if err := json.Unmarshal(proc.Config, &config); err != nil {
			return provision.Config{}, fmt.Errorf("parse activation config: %w", err)
		}
	}
	return provision.BuildConfig(tenant.Name, config), nil
}
