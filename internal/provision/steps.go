package provision

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/rs/zerolog"

	"github.com/biasharahq/platform/internal/demodata"
	"github.com/biasharahq/platform/internal/engine"
	"github.com/biasharahq/platform/internal/model"
)

// Engine resource types the sequence touches.
const (
	resCompany          = "Company"
	resAccount          = "Account"
	resWarehouse        = "Warehouse"
	resCustomer         = "Customer"
	resPOSProfile       = "POS Profile"
	resPOSOpeningEntry  = "POS Opening Entry"
	resSellingSettings  = "Selling Settings"
	resStockSettings    = "Stock Settings"
	resBuyingSettings   = "Buying Settings"
	resAccountsSettings = "Accounts Settings"
	resMfgSettings      = "Manufacturing Settings"
	resHRSettings       = "HR Settings"
	resProjectsSettings = "Projects Settings"
	resCRMSettings      = "CRM Settings"
)

const walkInCustomerName = "Walk-In Customer"

// run carries the per-run state every step needs. The client is resolved
// once up front; steps never re-resolve it.
type run struct {
	engine        *Engine
	tenant        *model.Tenant
	client        engine.Client
	clientErr     error
	cfg           Config
	correlationID string
	logger        zerolog.Logger
}

// ensure creates the resource unless one already matches the natural-key
// filters. A create that loses a race to a concurrent writer counts as
// exists.
func (r *run) ensure(ctx context.Context, resourceType string, filters []engine.Filter, doc engine.Resource) (string, error) {
	existing, err := r.client.List(ctx, resourceType, engine.ListOptions{Filters: filters, Limit: 1})
	if err != nil {
		return "", fmt.Errorf("list %s: %w", resourceType, err)
	}
	if len(existing) > 0 {
		return StepExists, nil
	}

	if _, err := r.client.Create(ctx, resourceType, doc); err != nil {
		if engine.IsConflict(err) {
			return StepExists, nil
		}
		return "", fmt.Errorf("create %s: %w", resourceType, err)
	}
	return StepCompleted, nil
}

// upsertSettings writes a singleton settings document. Engines name the
// singleton after its own type. Empty settings are a no-op.
func (r *run) upsertSettings(ctx context.Context, resourceType string, settings map[string]any) (string, error) {
	if len(settings) == 0 {
		return StepExists, nil
	}
	if _, err := r.client.Update(ctx, resourceType, resourceType, settings); err != nil {
		return "", fmt.Errorf("update %s: %w", resourceType, err)
	}
	return StepCompleted, nil
}

// ensureWarehouse matches on warehouse_name rather than the document name:
// engines suffix warehouse names with the company abbreviation.
func (r *run) ensureWarehouse(ctx context.Context, name string) (string, error) {
	return r.ensure(ctx, resWarehouse,
		[]engine.Filter{engine.Eq("warehouse_name", name), engine.Eq("company", r.cfg.CompanyName)},
		engine.Resource{"warehouse_name": name, "company": r.cfg.CompanyName},
	)
}

func (r *run) posProfileName() string {
	return r.cfg.CompanyName + " POS"
}

func stepHealthGate(ctx context.Context, r *run) (string, map[string]any, error) {
	if r.clientErr != nil {
		return "", nil, critical(StepEngineHealth, "engine client unavailable", r.clientErr)
	}

	hr := r.engine.monitor.Check(ctx, r.tenant.ID, r.tenant.Engine, false)
	if !hr.Available() {
		return "", nil, critical(StepEngineHealth, fmt.Sprintf("engine %s: %s", hr.Status, hr.Message), nil)
	}
	return StepCompleted, map[string]any{"status": hr.Status, "response_time_ms": hr.ResponseTimeMS}, nil
}

func stepCompany(ctx context.Context, r *run) (string, map[string]any, error) {
	abbr := abbreviate(r.cfg.CompanyName)
	doc := engine.Resource{
		"company_name":     r.cfg.CompanyName,
		"abbr":             abbr,
		"country":          r.cfg.Country,
		"default_currency": r.cfg.Currency,
	}
	if r.cfg.ChartOfAccounts != "" {
		doc["chart_of_accounts"] = r.cfg.ChartOfAccounts
	}

	status, err := r.ensure(ctx, resCompany, []engine.Filter{engine.Eq("company_name", r.cfg.CompanyName)}, doc)
	if err != nil {
		return "", nil, err
	}
	return status, map[string]any{"company": r.cfg.CompanyName, "abbr": abbr}, nil
}

// stepChartOfAccounts is count-gated rather than per-account ensured: any
// account under the company means a chart is already in place, engine-built
// or ours, and seeding again would tangle the two.
func stepChartOfAccounts(ctx context.Context, r *run) (string, map[string]any, error) {
	existing, err := r.client.List(ctx, resAccount, engine.ListOptions{
		Filters: []engine.Filter{engine.Eq("company", r.cfg.CompanyName)},
		Limit:   1,
	})
	if err != nil {
		return "", nil, fmt.Errorf("list %s: %w", resAccount, err)
	}
	if len(existing) > 0 {
		return StepExists, nil, nil
	}

	created := 0
	for _, account := range defaultChart(r.cfg.CompanyName, abbreviate(r.cfg.CompanyName), r.cfg.Currency) {
		if _, err := r.client.Create(ctx, resAccount, account); err != nil {
			if engine.IsConflict(err) {
				continue
			}
			return "", nil, fmt.Errorf("create account %q: %w", account["account_name"], err)
		}
		created++
	}
	return StepCompleted, map[string]any{"accounts_created": created}, nil
}

func stepWarehouses(ctx context.Context, r *run) (string, map[string]any, error) {
	names := []string{"Main"}
	if r.cfg.POSStoreEnabled {
		names = append(names, "POS")
	}

	created := false
	for _, name := range names {
		status, err := r.ensureWarehouse(ctx, name)
		if err != nil {
			return "", nil, err
		}
		if status == StepCompleted {
			created = true
		}
	}
	return foldStatus(created), map[string]any{"warehouses": names}, nil
}

func stepSettings(ctx context.Context, r *run) (string, map[string]any, error) {
	applied := []string{}

	if status, err := r.upsertSettings(ctx, resSellingSettings, r.cfg.SellingSettings); err != nil {
		return "", nil, err
	} else if status == StepCompleted {
		applied = append(applied, "selling")
	}

	if status, err := r.upsertSettings(ctx, resStockSettings, r.cfg.StockSettings); err != nil {
		return "", nil, err
	} else if status == StepCompleted {
		applied = append(applied, "stock")
	}

	return foldStatus(len(applied) > 0), map[string]any{"applied": applied}, nil
}

func stepWalkInCustomer(ctx context.Context, r *run) (string, map[string]any, error) {
	doc := engine.Resource{
		"customer_name":  walkInCustomerName,
		"customer_type":  "Individual",
		"customer_group": "Individual",
		"territory":      "All Territories",
	}
	status, err := r.ensure(ctx, resCustomer, []engine.Filter{engine.Eq("customer_name", walkInCustomerName)}, doc)
	if err != nil {
		return "", nil, err
	}
	return status, map[string]any{"customer": walkInCustomerName}, nil
}

func stepPOSProfile(ctx context.Context, r *run) (string, map[string]any, error) {
	name := r.posProfileName()
	abbr := abbreviate(r.cfg.CompanyName)
	warehouse := "Main - " + abbr
	if r.cfg.POSStoreEnabled {
		warehouse = "POS - " + abbr
	}
	doc := engine.Resource{
		"name":      name,
		"company":   r.cfg.CompanyName,
		"warehouse": warehouse,
		"currency":  r.cfg.Currency,
		"customer":  walkInCustomerName,
		"payments": []map[string]any{
			{"mode_of_payment": "Cash", "default": 1},
		},
	}
	status, err := r.ensure(ctx, resPOSProfile, []engine.Filter{engine.Eq("name", name)}, doc)
	if err != nil {
		return "", nil, err
	}
	return status, map[string]any{"pos_profile": name}, nil
}

// stepOpeningSession ensures one open session per profile, keyed on
// (pos_profile, status=Open) rather than a document name.
func stepOpeningSession(ctx context.Context, r *run) (string, map[string]any, error) {
	name := r.posProfileName()
	filters := []engine.Filter{
		engine.Eq("pos_profile", name),
		engine.Eq("status", "Open"),
	}
	doc := engine.Resource{
		"pos_profile":       name,
		"company":           r.cfg.CompanyName,
		"status":            "Open",
		"period_start_date": time.Now().UTC().Format("2006-01-02 15:04:05"),
		"balance_details": []map[string]any{
			{"mode_of_payment": "Cash", "opening_amount": r.cfg.OpeningCash},
		},
	}
	status, err := r.ensure(ctx, resPOSOpeningEntry, filters, doc)
	if err != nil {
		return "", nil, err
	}
	return status, map[string]any{"pos_profile": name, "opening_cash": r.cfg.OpeningCash}, nil
}

func stepDemoData(ctx context.Context, r *run) (string, map[string]any, error) {
	if r.engine.demo == nil {
		return "", nil, fmt.Errorf("no demo data source configured")
	}

	docs, err := r.engine.demo.Bundle(ctx, demodata.DefaultBundle)
	if err != nil {
		return "", nil, fmt.Errorf("load demo bundle: %w", err)
	}

	created := 0
	for _, doc := range docs {
		filters := []engine.Filter{engine.Eq(doc.NaturalKey, doc.Document[doc.NaturalKey])}
		status, err := r.ensure(ctx, doc.ResourceType, filters, doc.Document)
		if err != nil {
			return "", nil, fmt.Errorf("demo %s: %w", doc.ResourceType, err)
		}
		if status == StepCompleted {
			created++
		}
	}
	return foldStatus(created > 0), map[string]any{"documents": len(docs), "created": created}, nil
}

func foldStatus(created bool) string {
	if created {
		return StepCompleted
	}
	return StepExists
}

// defaultChart is the minimal account tree seeded when the engine reports
// no accounts for the company. Parents reference the abbreviated names the
// engine assigns to group accounts.
func defaultChart(company, abbr, currency string) []engine.Resource {
	root := func(name, rootType string) engine.Resource {
		return engine.Resource{
			"account_name":     name,
			"company":          company,
			"root_type":        rootType,
			"is_group":         1,
			"account_currency": currency,
		}
	}
	child := func(name, parent, rootType, accountType string) engine.Resource {
		acc := engine.Resource{
			"account_name":     name,
			"parent_account":   parent + " - " + abbr,
			"company":          company,
			"root_type":        rootType,
			"account_currency": currency,
		}
		if accountType != "" {
			acc["account_type"] = accountType
		}
		return acc
	}

	return []engine.Resource{
		root("Assets", "Asset"),
		root("Liabilities", "Liability"),
		root("Equity", "Equity"),
		root("Income", "Income"),
		root("Expenses", "Expense"),
		child("Cash", "Assets", "Asset", "Cash"),
		child("Bank", "Assets", "Asset", "Bank"),
		child("Debtors", "Assets", "Asset", "Receivable"),
		child("Stock In Hand", "Assets", "Asset", "Stock"),
		child("Creditors", "Liabilities", "Liability", "Payable"),
		child("Sales", "Income", "Income", ""),
		child("Cost of Goods Sold", "Expenses", "Expense", "Cost of Goods Sold"),
	}
}

// abbreviate derives the company abbreviation: initials for multi-word
// names, first three letters otherwise. Engines append it to account and
// warehouse names.
func abbreviate(name string) string {
	words := strings.Fields(name)
	if len(words) >= 2 {
		var b strings.Builder
		for _, w := range words {
			for _, r := range w {
				b.WriteRune(unicode.ToUpper(r))
				break
			}
			if b.Len() >= 5 {
				break
			}
		}
		return b.String()
	}

	upper := strings.ToUpper(name)
	runes := []rune(upper)
	if len(runes) > 3 {
		return string(runes[:3])
	}
	return upper
}
