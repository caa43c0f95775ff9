package config

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
)

// EngineTLS builds a *tls.Config from the engine TLS fields.
// Returns nil, nil if no CA cert is configured (system roots).
func (c *Config) EngineTLS() (*tls.Config, error) {
	if c.EngineTLSCACert == "" {
		return nil, nil
	}

	caPEM, err := os.ReadFile(c.EngineTLSCACert)
	if err != nil {
		return nil, fmt.Errorf("read engine CA cert: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caPEM) {
		return nil, fmt.Errorf("failed to parse engine CA cert")
	}

	tlsConfig := &tls.Config{
		RootCAs: pool,
	}

	if c.EngineTLSServerName != "" {
		tlsConfig.ServerName = c.EngineTLSServerName
	}

	return tlsConfig, nil
}
