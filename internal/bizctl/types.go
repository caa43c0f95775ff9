package bizctl

// ActivationConfig is the YAML batch definition applied by `bizctl apply`.
type ActivationConfig struct {
	APIURL     string         `yaml:"api_url"`
	APIKey     string         `yaml:"api_key"`
	Workspaces []WorkspaceDef `yaml:"workspaces"`
}

// WorkspaceDef describes one tenant to activate.
type WorkspaceDef struct {
	Name          string         `yaml:"name"`
	WorkspaceType string         `yaml:"workspace_type"`
	Engine        string         `yaml:"engine"`
	EngineBaseURL string         `yaml:"engine_base_url"`
	EngineAPIKey  string         `yaml:"engine_api_key"`
	EngineSecret  string         `yaml:"engine_api_secret"`
	Template      string         `yaml:"template"`
	Modules       []string       `yaml:"modules"`
	Configuration map[string]any `yaml:"configuration"`
}
