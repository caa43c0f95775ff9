package handler

import (
	"net/http"

	"github.com/biasharahq/platform/internal/api/response"
)

// EngineHealth exposes the health monitor's classified verdicts. The
// check itself never errors; probe failures come back as a status.
type EngineHealth struct {
	monitor AvailabilityChecker
	tenants TenantSource
}

func NewEngineHealth(monitor AvailabilityChecker, tenants TenantSource) *EngineHealth {
	return &EngineHealth{monitor: monitor, tenants: tenants}
}

func (h *EngineHealth) Get(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tenantID := q.Get("tenant")
	engineType := q.Get("engine")
	force := q.Get("force") == "true"

	if tenantID == "" {
		response.WriteError(w, http.StatusBadRequest, "tenant query parameter is required")
		return
	}

	if engineType == "" {
		tenant, err := h.tenants.Get(r.Context(), tenantID)
		if err != nil {
			response.WriteError(w, statusFor(err), err.Error())
			return
		}
		engineType = tenant.Engine
	}

	result := h.monitor.Check(r.Context(), tenantID, engineType, force)
	response.WriteJSON(w, http.StatusOK, map[string]any{
		"tenant_id": tenantID,
		"engine":    engineType,
		"health":    result,
	})
}
