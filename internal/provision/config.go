package provision

// Config is the input for one provisioning run. It is built from the
// activation configuration (template defaults merged with caller
// overrides) plus the per-run flags from the caller.
type Config struct {
	CompanyName     string
	Country         string
	Currency        string
	ChartOfAccounts string

	Modules         []string
	SellingSettings map[string]any
	StockSettings   map[string]any
	ModuleSettings  map[string]map[string]any

	POSStoreEnabled       bool
	IncludeOpeningSession bool
	OpeningCash           float64
	IncludeDemoData       bool
}

// BuildConfig extracts a run config from an activation configuration map
// with the shape {"modules", "settings", "module_settings"}.
func BuildConfig(companyName string, activation map[string]any) Config {
	settings := getMap(activation, "settings")
	moduleSettings := getModuleSettings(activation)
	mods := getStrings(activation, "modules")
	pos := moduleSettings["pos"]

	cfg := Config{
		CompanyName:     companyName,
		Country:         getString(settings, "country", "Kenya"),
		Currency:        getString(settings, "currency", "KES"),
		ChartOfAccounts: getString(settings, "chart_of_accounts", "Standard"),
		Modules:         mods,
		SellingSettings: getMap(settings, "selling"),
		StockSettings:   getMap(settings, "stock"),
		ModuleSettings:  moduleSettings,
	}

	if hasModule(mods, "pos") {
		cfg.POSStoreEnabled = getBool(pos, "pos_store_enabled", true)
		cfg.IncludeOpeningSession = getBool(pos, "include_opening_session", false)
		cfg.OpeningCash = getFloat(pos, "opening_cash", 0)
	}

	return cfg
}

// SettingsFor returns the settings slice for one module, never nil.
func (c Config) SettingsFor(moduleCode string) map[string]any {
	if s, ok := c.ModuleSettings[moduleCode]; ok {
		return s
	}
	return map[string]any{}
}

func hasModule(modules []string, code string) bool {
	for _, m := range modules {
		if m == code {
			return true
		}
	}
	return false
}

func getString(m map[string]any, key, fallback string) string {
	if v, ok := m[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func getBool(m map[string]any, key string, fallback bool) bool {
	if v, ok := m[key].(bool); ok {
		return v
	}
	return fallback
}

func getFloat(m map[string]any, key string, fallback float64) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return fallback
}

func getMap(m map[string]any, key string) map[string]any {
	if v, ok := m[key].(map[string]any); ok {
		return v
	}
	return map[string]any{}
}

func getStrings(m map[string]any, key string) []string {
	raw, ok := m[key].([]any)
	if !ok {
		if typed, ok := m[key].([]string); ok {
			return typed
		}
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func getModuleSettings(activation map[string]any) map[string]map[string]any {
	raw := getMap(activation, "module_settings")
	out := make(map[string]map[string]any, len(raw))
	for code, v := range raw {
		if settings, ok := v.(map[string]any); ok {
			out[code] = settings
		}
	}
	return out
}
