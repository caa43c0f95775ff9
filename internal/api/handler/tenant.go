package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/biasharahq/platform/internal/api/request"
	"github.com/biasharahq/platform/internal/api/response"
	"github.com/biasharahq/platform/internal/core"
	"github.com/biasharahq/platform/internal/model"
)

type Tenant struct {
	svc     *core.TenantService
	modules *core.ModuleService
}

func NewTenant(svc *core.TenantService, modules *core.ModuleService) *Tenant {
	return &Tenant{svc: svc, modules: modules}
}

func (h *Tenant) List(w http.ResponseWriter, r *http.Request) {
	params := request.ParseListParams(r, "created_at")

	tenants, hasMore, err := h.svc.List(r.Context(), params)
	if err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var nextCursor string
	if hasMore && len(tenants) > 0 {
		nextCursor = tenants[len(tenants)-1].ID
	}
	response.WritePaginated(w, http.StatusOK, tenants, nextCursor, hasMore)
}

func (h *Tenant) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateTenant
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	tenant := &model.Tenant{
		Name:          req.Name,
		WorkspaceType: req.WorkspaceType,
		Engine:        req.Engine,
		EngineBaseURL: req.EngineBaseURL,
	}
	if err := h.svc.Create(r.Context(), tenant); err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	response.WriteJSON(w, http.StatusCreated, tenant)
}

func (h *Tenant) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	tenant, err := h.svc.Get(r.Context(), id)
	if err != nil {
		response.WriteError(w, statusFor(err), err.Error())
		return
	}

	response.WriteJSON(w, http.StatusOK, tenant)
}

func (h *Tenant) Update(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.UpdateTenant
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	tenant, err := h.svc.Get(r.Context(), id)
	if err != nil {
		response.WriteError(w, statusFor(err), err.Error())
		return
	}
	if req.Name != nil {
		tenant.Name = *req.Name
	}
	if req.WorkspaceType != nil {
		tenant.WorkspaceType = *req.WorkspaceType
	}
	if req.EngineBaseURL != nil {
		tenant.EngineBaseURL = *req.EngineBaseURL
	}

	if err := h.svc.Update(r.Context(), tenant); err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	response.WriteJSON(w, http.StatusOK, tenant)
}

// SetEngineCredentials stores per-tenant engine credentials. The raw
// secrets never come back out through the API.
func (h *Tenant) SetEngineCredentials(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.SetEngineCredentials
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.svc.Get(r.Context(), id); err != nil {
		response.WriteError(w, statusFor(err), err.Error())
		return
	}

	if err := h.svc.SetEngineCredentials(r.Context(), id, req.BaseURL, req.APIKey, req.APISecret); err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Tenant) Modules(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	mods, err := h.modules.ListByTenant(r.Context(), id)
	if err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	response.WriteJSON(w, http.StatusOK, mods)
}

// statusFor maps service lookup errors onto HTTP statuses.
func statusFor(err error) int {
	if errors.Is(err, core.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
