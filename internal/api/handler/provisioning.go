package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/biasharahq/platform/internal/api/request"
	"github.com/biasharahq/platform/internal/api/response"
	"github.com/biasharahq/platform/internal/engine/health"
	"github.com/biasharahq/platform/internal/model"
	"github.com/biasharahq/platform/internal/provision"
)

// ProvisionEngine is the provisioning surface the handler drives.
type ProvisionEngine interface {
	Provision(ctx context.Context, tenantID string, cfg provision.Config, correlationID string) (*provision.Result, error)
	Retry(ctx context.Context, tenantID string, cfg provision.Config, correlationID string) (*provision.Result, error)
	SkipStep(ctx context.Context, tenantID, step string) error
}

// TenantSource resolves tenants for handlers that only read them.
type TenantSource interface {
	Get(ctx context.Context, id string) (*model.Tenant, error)
}

// AvailabilityChecker is the health gate consulted before a run starts.
type AvailabilityChecker interface {
	Check(ctx context.Context, tenantID, engineType string, forceRefresh bool) health.Result
}

// LogLister pages a tenant's provisioning log trail.
type LogLister interface {
	ListByTenant(ctx context.Context, tenantID, correlationID string, limit int) ([]model.ProvisioningLog, error)
}

type Provisioning struct {
	engine  ProvisionEngine
	tenants TenantSource
	monitor AvailabilityChecker
	logs    LogLister
}

func NewProvisioning(engine ProvisionEngine, tenants TenantSource, monitor AvailabilityChecker, logs LogLister) *Provisioning {
	return &Provisioning{engine: engine, tenants: tenants, monitor: monitor, logs: logs}
}

// Start runs the provisioning sequence for the tenant. The run is gated
// on engine availability before any state is touched.
func (h *Provisioning) Start(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, h.engine.Provision)
}

// Retry re-runs the sequence after a failure. Idempotent steps make
// already-satisfied work a no-op.
func (h *Provisioning) Retry(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, h.engine.Retry)
}

type runFn func(ctx context.Context, tenantID string, cfg provision.Config, correlationID string) (*provision.Result, error)

func (h *Provisioning) run(w http.ResponseWriter, r *http.Request, fn runFn) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.StartProvisioning
	if r.ContentLength != 0 {
		if err := request.Decode(r, &req); err != nil {
			response.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	tenant, err := h.tenants.Get(r.Context(), id)
	if err != nil {
		response.WriteError(w, statusFor(err), err.Error())
		return
	}

	if hr := h.monitor.Check(r.Context(), id, tenant.Engine, false); !hr.Available() {
		response.WriteTypedError(w, http.StatusServiceUnavailable, "engine_offline", hr.Message)
		return
	}

	cfg := provision.Config{
		CompanyName:           req.CompanyName,
		Modules:               req.Modules,
		IncludeDemoData:       req.IncludeDemoData,
		POSStoreEnabled:       req.POSStoreEnabled,
		IncludeOpeningSession: req.IncludeOpeningSession,
		OpeningCash:           req.OpeningCash,
	}

	result, err := fn(r.Context(), id, cfg, "")
	if err != nil {
		writeProvisionError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusAccepted, result)
}

// Status reports the tenant's provisioning verdict as last persisted.
func (h *Provisioning) Status(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	tenant, err := h.tenants.Get(r.Context(), id)
	if err != nil {
		response.WriteError(w, statusFor(err), err.Error())
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]any{
		"tenant_id": tenant.ID,
		"status":    tenant.ProvisioningStatus,
		"error":     tenant.ProvisioningError,
		"skips":     tenant.ProvisioningSkips,
	})
}

// SkipStep marks one optional step permanently skipped for the tenant.
func (h *Provisioning) SkipStep(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.SkipProvisionStep
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.tenants.Get(r.Context(), id); err != nil {
		response.WriteError(w, statusFor(err), err.Error())
		return
	}

	if err := h.engine.SkipStep(r.Context(), id, req.Step); err != nil {
		var stepErr *provision.StepError
		if errors.As(err, &stepErr) && stepErr.Severity == provision.SeverityValidation {
			response.WriteTypedError(w, http.StatusConflict, "invalid_state", stepErr.Message)
			return
		}
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Logs pages the tenant's run log, newest first.
func (h *Provisioning) Logs(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= request.MaxLimit {
			limit = n
		}
	}

	entries, err := h.logs.ListByTenant(r.Context(), id, r.URL.Query().Get("correlation_id"), limit)
	if err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]any{"items": entries})
}

func writeProvisionError(w http.ResponseWriter, err error) {
	if errors.Is(err, provision.ErrAlreadyProvisioning) {
		response.WriteTypedError(w, http.StatusConflict, "already_provisioning", err.Error())
		return
	}
	var stepErr *provision.StepError
	if errors.As(err, &stepErr) && stepErr.Severity == provision.SeverityValidation {
		response.WriteError(w, http.StatusBadRequest, stepErr.Message)
		return
	}
	response.WriteError(w, http.StatusInternalServerError, err.Error())
}
