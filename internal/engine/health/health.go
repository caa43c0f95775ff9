// Package health probes external engine availability and caches the
// classified outcome per (tenant, engine). Provisioning gates on it.
package health

import (
	"context"
	"time"

	"github.com/biasharahq/platform/internal/engine"
)

// Engine availability statuses.
const (
	StatusOnline         = "online"
	StatusDegraded       = "degraded"
	StatusOffline        = "offline"
	StatusNotProvisioned = "not_provisioned"
)

// Result is one cached health verdict. It never carries a Go error;
// probe failures are folded into Status/Error.
type Result struct {
	Status         string    `json:"status"`
	Message        string    `json:"message"`
	CheckedAt      time.Time `json:"checked_at"`
	ResponseTimeMS int64     `json:"response_time_ms"`
	Error          string    `json:"error,omitempty"`
}

// Available reports whether the engine can serve provisioning calls.
// Degraded still counts: auth-level trouble fails loudly per call instead
// of blocking the whole pipeline.
func (r Result) Available() bool {
	return r.Status == StatusOnline || r.Status == StatusDegraded
}

// ClientSource resolves the engine client used to probe a tenant's engine.
// Resolution failures for unknown engine types must wrap engine.ErrUnknownEngine.
type ClientSource interface {
	EngineClient(ctx context.Context, tenantID, engineType string) (engine.Client, error)
}
