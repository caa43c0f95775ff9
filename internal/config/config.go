package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

type Config struct {
	CoreDatabaseURL string
	HTTPListenAddr  string
	LogLevel        string

	// SecretsKey is the hex-encoded 32-byte key used to encrypt tenant
	// engine credentials at rest.
	SecretsKey string

	// Default engine endpoints. Tenants without stored credentials fall
	// back to these. PreferredEngine is what enterprise workspaces are
	// activated against; empty means DefaultEngine.
	DefaultEngine    string
	PreferredEngine  string
	ERPNextBaseURL   string
	ERPNextAPIKey    string
	ERPNextAPISecret string
	CBSBaseURL       string
	CBSAPIKey        string
	CBSAPISecret     string

	// TenantBaseDomain is used to derive per-tenant engine site URLs.
	TenantBaseDomain string

	HealthCacheTTL time.Duration

	// Demo data bundle storage (S3-compatible).
	S3Endpoint       string
	S3Region         string
	S3AccessKey      string
	S3SecretKey      string
	DemoBundleBucket string

	// Optional TLS material for talking to self-hosted engines.
	EngineTLSCACert     string
	EngineTLSServerName string
}

func Load() (*Config, error) {
	cfg := &Config{
		CoreDatabaseURL:     getEnv("CORE_DATABASE_URL", ""),
		HTTPListenAddr:      getEnv("HTTP_LISTEN_ADDR", ":8090"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		SecretsKey:          getEnv("SECRETS_KEY", ""),
		DefaultEngine:       getEnv("DEFAULT_ENGINE", "erpnext"),
		PreferredEngine:     getEnv("PREFERRED_ENGINE", ""),
		ERPNextBaseURL:      getEnv("ERPNEXT_BASE_URL", ""),
		ERPNextAPIKey:       getEnv("ERPNEXT_API_KEY", ""),
		ERPNextAPISecret:    getEnv("ERPNEXT_API_SECRET", ""),
		CBSBaseURL:          getEnv("CBS_BASE_URL", ""),
		CBSAPIKey:           getEnv("CBS_API_KEY", ""),
		CBSAPISecret:        getEnv("CBS_API_SECRET", ""),
		TenantBaseDomain:    getEnv("TENANT_BASE_DOMAIN", "erp.biashara.africa"),
		S3Endpoint:          getEnv("S3_ENDPOINT", ""),
		S3Region:            getEnv("S3_REGION", "auto"),
		S3AccessKey:         getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:         getEnv("S3_SECRET_KEY", ""),
		DemoBundleBucket:    getEnv("DEMO_BUNDLE_BUCKET", ""),
		EngineTLSCACert:     getEnv("ENGINE_TLS_CA_CERT", ""),
		EngineTLSServerName: getEnv("ENGINE_TLS_SERVER_NAME", ""),
	}

	ttl, err := getEnvDuration("HEALTH_CACHE_TTL", 45*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.HealthCacheTTL = ttl

	return cfg, nil
}

// Validate checks that the fields required by the given service are set.
func (c *Config) Validate(service string) error {
	var missing []string

	switch service {
	case "core-api":
		if c.CoreDatabaseURL == "" {
			missing = append(missing, "CORE_DATABASE_URL")
		}
		if c.HTTPListenAddr == "" {
			missing = append(missing, "HTTP_LISTEN_ADDR")
		}
		if c.SecretsKey == "" {
			missing = append(missing, "SECRETS_KEY")
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	if (c.S3AccessKey == "") != (c.S3SecretKey == "") {
		return fmt.Errorf("S3_ACCESS_KEY and S3_SECRET_KEY must both be set or both be empty")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}
