package engine

import (
	"crypto/tls"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/biasharahq/platform/internal/config"
	"github.com/biasharahq/platform/internal/crypto"
	"github.com/biasharahq/platform/internal/model"
	"github.com/biasharahq/platform/internal/platform"
)

// Registry builds engine clients for tenants. Credentials stored on the
// tenant win over the configured platform defaults.
type Registry struct {
	cfg        *config.Config
	secretsKey []byte
	tlsConfig  *tls.Config
	logger     zerolog.Logger
}

func NewRegistry(cfg *config.Config, secretsKey []byte, tlsConfig *tls.Config, logger zerolog.Logger) *Registry {
	return &Registry{
		cfg:        cfg,
		secretsKey: secretsKey,
		tlsConfig:  tlsConfig,
		logger:     logger.With().Str("component", "engine-registry").Logger(),
	}
}

// ClientFor resolves the client for a tenant bound to the given engine type.
// Unknown engine types return ErrUnknownEngine.
func (r *Registry) ClientFor(tenant *model.Tenant, engineType string) (Client, error) {
	var baseURL, apiKey, apiSecret string

	switch engineType {
	case TypeERPNext:
		baseURL = r.cfg.ERPNextBaseURL
		apiKey = r.cfg.ERPNextAPIKey
		apiSecret = r.cfg.ERPNextAPISecret
	case TypeCBS:
		baseURL = r.cfg.CBSBaseURL
		apiKey = r.cfg.CBSAPIKey
		apiSecret = r.cfg.CBSAPISecret
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownEngine, engineType)
	}

	// Tenant overrides apply only for the engine the tenant is bound to.
	if tenant != nil && tenant.Engine == engineType {
		if tenant.EngineBaseURL != "" {
			baseURL = tenant.EngineBaseURL
		}
		if tenant.EngineAPIKeyEnc != "" {
			key, err := crypto.Decrypt(tenant.EngineAPIKeyEnc, r.secretsKey)
			if err != nil {
				return nil, fmt.Errorf("decrypt engine api key for tenant %s: %w", tenant.ID, err)
			}
			apiKey = string(key)
		}
		if tenant.EngineAPISecretEnc != "" {
			secret, err := crypto.Decrypt(tenant.EngineAPISecretEnc, r.secretsKey)
			if err != nil {
				return nil, fmt.Errorf("decrypt engine api secret for tenant %s: %w", tenant.ID, err)
			}
			apiSecret = string(secret)
		}
	}

	// Tenants on the shared platform domain get a derived site URL.
	if baseURL == "" && tenant != nil && r.cfg.TenantBaseDomain != "" {
		baseURL = platform.SiteURL("https", tenant.ID, r.cfg.TenantBaseDomain)
	}
	if baseURL == "" {
		return nil, fmt.Errorf("no base URL configured for engine %s", engineType)
	}

	switch engineType {
	case TypeERPNext:
		return NewERPNextClient(baseURL, apiKey, apiSecret, r.tlsConfig), nil
	default:
		return NewCBSClient(baseURL, apiKey, apiSecret, r.tlsConfig), nil
	}
}
