package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/biasharahq/platform/internal/api/request"
	"github.com/biasharahq/platform/internal/api/response"
	"github.com/biasharahq/platform/internal/core"
	"github.com/biasharahq/platform/internal/model"
	"github.com/biasharahq/platform/internal/modules"
	"github.com/biasharahq/platform/internal/modules/template"
	"github.com/biasharahq/platform/internal/onboarding"
)

// OnboardingOrchestrator is the lifecycle surface the handler drives.
type OnboardingOrchestrator interface {
	Initiate(ctx context.Context, tenantID, workspaceType, templateCode string, overrides map[string]any) (*model.OnboardingProcess, error)
	Start(ctx context.Context, tenantID string) (*model.OnboardingProcess, error)
	Pause(ctx context.Context, tenantID string) (*model.OnboardingProcess, error)
	Resume(ctx context.Context, tenantID string) (*model.OnboardingProcess, error)
	ExecuteNext(ctx context.Context, tenantID string) (*model.OnboardingStep, error)
	Skip(ctx context.Context, tenantID, stepCode string) (*model.OnboardingStep, error)
	Status(ctx context.Context, tenantID string) (*onboarding.Status, error)
}

type Onboarding struct {
	orch OnboardingOrchestrator
}

func NewOnboarding(orch OnboardingOrchestrator) *Onboarding {
	return &Onboarding{orch: orch}
}

// Initiate opens an activation process. A paused process is returned
// as-is with 200; a fresh one with 201.
func (h *Onboarding) Initiate(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.InitiateOnboarding
	if r.ContentLength != 0 {
		if err := request.Decode(r, &req); err != nil {
			response.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	overrides := req.Configuration
	if len(req.Modules) > 0 {
		if overrides == nil {
			overrides = map[string]any{}
		}
		overrides["modules"] = req.Modules
	}

	proc, err := h.orch.Initiate(r.Context(), id, req.WorkspaceType, req.TemplateCode, overrides)
	if err != nil {
		writeOnboardingError(w, err)
		return
	}

	status := http.StatusCreated
	if proc.Status == model.ProcessPaused {
		status = http.StatusOK
	}
	response.WriteJSON(w, status, proc)
}

func (h *Onboarding) Start(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.orch.Start)
}

func (h *Onboarding) Pause(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.orch.Pause)
}

func (h *Onboarding) Resume(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.orch.Resume)
}

func (h *Onboarding) transition(w http.ResponseWriter, r *http.Request, fn func(context.Context, string) (*model.OnboardingProcess, error)) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	proc, err := fn(r.Context(), id)
	if err != nil {
		writeOnboardingError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, proc)
}

// Next executes the lowest-order pending step. When the process just
// completed there is no step to report and the response carries done.
func (h *Onboarding) Next(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	step, err := h.orch.ExecuteNext(r.Context(), id)
	if err != nil {
		writeOnboardingError(w, err)
		return
	}

	if step == nil {
		response.WriteJSON(w, http.StatusOK, map[string]any{"done": true})
		return
	}
	response.WriteJSON(w, http.StatusOK, step)
}

func (h *Onboarding) Skip(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.SkipOnboardingStep
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	step, err := h.orch.Skip(r.Context(), id, req.StepCode)
	if err != nil {
		writeOnboardingError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, step)
}

func (h *Onboarding) Status(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	status, err := h.orch.Status(r.Context(), id)
	if err != nil {
		writeOnboardingError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, status)
}

func writeOnboardingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, onboarding.ErrAlreadyActive):
		response.WriteTypedError(w, http.StatusConflict, "already_active", err.Error())
	case errors.Is(err, onboarding.ErrInvalidState):
		response.WriteTypedError(w, http.StatusConflict, "invalid_state", err.Error())
	case errors.Is(err, onboarding.ErrNoProcess):
		response.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, core.ErrNotFound):
		response.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, template.ErrUnknownTemplate),
		errors.Is(err, modules.ErrUnknownModule),
		errors.Is(err, modules.ErrCircularDependency):
		response.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		response.WriteError(w, http.StatusInternalServerError, err.Error())
	}
}
