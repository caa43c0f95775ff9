package provision

import (
	"context"
	"fmt"

	"github.com/biasharahq/platform/internal/model"
	"github.com/biasharahq/platform/internal/platform"
)

// newRun resolves the engine client and normalizes the config for a
// direct setup call. Unlike full runs, resolution failures surface
// immediately instead of being deferred to the health gate step.
func (e *Engine) newRun(ctx context.Context, tenant *model.Tenant, cfg Config, correlationID string) (*run, error) {
	if cfg.CompanyName == "" {
		cfg.CompanyName = tenant.Name
	}
	if cfg.CompanyName == "" {
		return nil, validation(StepCompany, "company name is empty")
	}
	if correlationID == "" {
		correlationID = platform.NewName("prov_")
	}

	client, err := e.source.EngineClient(ctx, tenant.ID, tenant.Engine)
	if err != nil {
		return nil, critical(StepEngineHealth, "engine client unavailable", err)
	}

	return &run{
		engine:        e,
		tenant:        tenant,
		client:        client,
		cfg:           cfg,
		correlationID: correlationID,
		logger: e.logger.With().
			Str("tenant_id", tenant.ID).
			Str("engine", tenant.Engine).
			Str("correlation_id", correlationID).
			Logger(),
	}, nil
}

// SetupCompany provisions the company-level resources behind an
// onboarding company_setup step: company, chart of accounts, settings and
// the walk-in customer. Returned data maps each substep to its outcome.
func (e *Engine) SetupCompany(ctx context.Context, tenant *model.Tenant, cfg Config, correlationID string) (map[string]any, error) {
	r, err := e.newRun(ctx, tenant, cfg, correlationID)
	if err != nil {
		return nil, err
	}

	data := map[string]any{}
	for _, def := range []stepDef{
		{StepCompany, stepCompany},
		{StepChartOfAccounts, stepChartOfAccounts},
		{StepSettings, stepSettings},
		{StepWalkInCustomer, stepWalkInCustomer},
	} {
		status, _, err := def.fn(ctx, r)
		if err != nil {
			return data, classify(def.name, err)
		}
		data[def.name] = status
	}
	return data, nil
}

// SetupModule provisions the engine-side resources one module needs. Most
// modules amount to a settings upsert; inventory, POS and manufacturing
// also carry warehouses or POS documents.
func (e *Engine) SetupModule(ctx context.Context, tenant *model.Tenant, moduleCode string, cfg Config, correlationID string) (map[string]any, error) {
	r, err := e.newRun(ctx, tenant, cfg, correlationID)
	if err != nil {
		return nil, err
	}

	data := map[string]any{}
	step := "module_" + moduleCode
	fail := func(err error) (map[string]any, error) {
		return data, classify(step, err)
	}

	switch moduleCode {
	case model.ModuleInventory:
		warehouse, err := r.ensureWarehouse(ctx, "Main")
		if err != nil {
			return fail(err)
		}
		data["warehouse"] = warehouse

		settings, err := r.upsertSettings(ctx, resStockSettings, cfg.SettingsFor(moduleCode))
		if err != nil {
			return fail(err)
		}
		data["settings"] = settings

	case model.ModulePOS:
		if cfg.POSStoreEnabled {
			warehouse, err := r.ensureWarehouse(ctx, "POS")
			if err != nil {
				return fail(err)
			}
			data["warehouse"] = warehouse
		}

		profile, _, err := stepPOSProfile(ctx, r)
		if err != nil {
			return fail(err)
		}
		data["pos_profile"] = profile

		if cfg.IncludeOpeningSession {
			session, _, err := stepOpeningSession(ctx, r)
			if err != nil {
				return fail(err)
			}
			data["opening_session"] = session
		}

	case model.ModuleAccounting:
		chart, _, err := stepChartOfAccounts(ctx, r)
		if err != nil {
			return fail(err)
		}
		data["chart_of_accounts"] = chart

		settings, err := r.upsertSettings(ctx, resAccountsSettings, cfg.SettingsFor(moduleCode))
		if err != nil {
			return fail(err)
		}
		data["settings"] = settings

	case model.ModulePurchasing:
		settings, err := r.upsertSettings(ctx, resBuyingSettings, cfg.SettingsFor(moduleCode))
		if err != nil {
			return fail(err)
		}
		data["settings"] = settings

	case model.ModuleManufacturing:
		warehouse, err := r.ensureWarehouse(ctx, "Work In Progress")
		if err != nil {
			return fail(err)
		}
		data["warehouse"] = warehouse

		settings, err := r.upsertSettings(ctx, resMfgSettings, cfg.SettingsFor(moduleCode))
		if err != nil {
			return fail(err)
		}
		data["settings"] = settings

	case model.ModuleHR:
		settings, err := r.upsertSettings(ctx, resHRSettings, cfg.SettingsFor(moduleCode))
		if err != nil {
			return fail(err)
		}
		data["settings"] = settings

	case model.ModuleProjects:
		settings, err := r.upsertSettings(ctx, resProjectsSettings, cfg.SettingsFor(moduleCode))
		if err != nil {
			return fail(err)
		}
		data["settings"] = settings

	case model.ModuleCRM:
		settings, err := r.upsertSettings(ctx, resCRMSettings, cfg.SettingsFor(moduleCode))
		if err != nil {
			return fail(err)
		}
		data["settings"] = settings

	default:
		return nil, validation(step, fmt.Sprintf("unknown module %q", moduleCode))
	}

	return data, nil
}
