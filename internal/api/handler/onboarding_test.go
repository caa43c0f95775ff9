package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biasharahq/platform/internal/model"
	"github.com/biasharahq/platform/internal/modules/template"
	"github.com/biasharahq/platform/internal/onboarding"
)

// fakeOrchestrator returns canned results per method. Unset funcs panic,
// which surfaces any handler call a test did not expect.
type fakeOrchestrator struct {
	initiate func(tenantID, workspaceType, templateCode string, overrides map[string]any) (*model.OnboardingProcess, error)
	start    func(tenantID string) (*model.OnboardingProcess, error)
	pause    func(tenantID string) (*model.OnboardingProcess, error)
	resume   func(tenantID string) (*model.OnboardingProcess, error)
	next     func(tenantID string) (*model.OnboardingStep, error)
	skip     func(tenantID, stepCode string) (*model.OnboardingStep, error)
	status   func(tenantID string) (*onboarding.Status, error)
}

func (f *fakeOrchestrator) Initiate(_ context.Context, tenantID, workspaceType, templateCode string, overrides map[string]any) (*model.OnboardingProcess, error) {
	return f.initiate(tenantID, workspaceType, templateCode, overrides)
}

func (f *fakeOrchestrator) Start(_ context.Context, tenantID string) (*model.OnboardingProcess, error) {
	return f.start(tenantID)
}

func (f *fakeOrchestrator) Pause(_ context.Context, tenantID string) (*model.OnboardingProcess, error) {
	return f.pause(tenantID)
}

func (f *fakeOrchestrator) Resume(_ context.Context, tenantID string) (*model.OnboardingProcess, error) {
	return f.resume(tenantID)
}

func (f *fakeOrchestrator) ExecuteNext(_ context.Context, tenantID string) (*model.OnboardingStep, error) {
	return f.next(tenantID)
}

func (f *fakeOrchestrator) Skip(_ context.Context, tenantID, stepCode string) (*model.OnboardingStep, error) {
	return f.skip(tenantID, stepCode)
}

func (f *fakeOrchestrator) Status(_ context.Context, tenantID string) (*onboarding.Status, error) {
	return f.status(tenantID)
}

func TestOnboardingInitiate_CreatesProcess(t *testing.T) {
	var gotOverrides map[string]any
	orch := &fakeOrchestrator{
		initiate: func(tenantID, workspaceType, templateCode string, overrides map[string]any) (*model.OnboardingProcess, error) {
			gotOverrides = overrides
			return &model.OnboardingProcess{
				ID:       "proc-1",
				TenantID: tenantID,
				Template: templateCode,
				Status:   model.ProcessDraft,
			}, nil
		},
	}
	h := NewOnboarding(orch)

	rec := httptest.NewRecorder()
	r := withChiURLParam(newRequest(http.MethodPost, "/tenants/"+validID+"/onboarding", map[string]any{
		"workspace_type": "SME",
		"modules":        []string{"pos", "inventory"},
		"configuration":  map[string]any{"currency": "KES"},
	}), "id", validID)

	h.Initiate(rec, r)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, []string{"pos", "inventory"}, gotOverrides["modules"])
	assert.Equal(t, "KES", gotOverrides["currency"])

	var proc model.OnboardingProcess
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &proc))
	assert.Equal(t, "proc-1", proc.ID)
	assert.Equal(t, model.ProcessDraft, proc.Status)
}

func TestOnboardingInitiate_EmptyBody(t *testing.T) {
	orch := &fakeOrchestrator{
		initiate: func(tenantID, workspaceType, templateCode string, overrides map[string]any) (*model.OnboardingProcess, error) {
			assert.Empty(t, workspaceType)
			assert.Nil(t, overrides)
			return &model.OnboardingProcess{ID: "proc-1", TenantID: tenantID, Status: model.ProcessDraft}, nil
		},
	}
	h := NewOnboarding(orch)

	rec := httptest.NewRecorder()
	r := withChiURLParam(newRequestRaw(http.MethodPost, "/tenants/"+validID+"/onboarding", ""), "id", validID)

	h.Initiate(rec, r)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestOnboardingInitiate_ReturnsPausedWith200(t *testing.T) {
	orch := &fakeOrchestrator{
		initiate: func(tenantID, _, _ string, _ map[string]any) (*model.OnboardingProcess, error) {
			return &model.OnboardingProcess{ID: "proc-1", TenantID: tenantID, Status: model.ProcessPaused}, nil
		},
	}
	h := NewOnboarding(orch)

	rec := httptest.NewRecorder()
	r := withChiURLParam(newRequestRaw(http.MethodPost, "/tenants/"+validID+"/onboarding", ""), "id", validID)

	h.Initiate(rec, r)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestOnboardingInitiate_AlreadyActive(t *testing.T) {
	orch := &fakeOrchestrator{
		initiate: func(_, _, _ string, _ map[string]any) (*model.OnboardingProcess, error) {
			return nil, onboarding.ErrAlreadyActive
		},
	}
	h := NewOnboarding(orch)

	rec := httptest.NewRecorder()
	r := withChiURLParam(newRequestRaw(http.MethodPost, "/tenants/"+validID+"/onboarding", ""), "id", validID)

	h.Initiate(rec, r)

	assert.Equal(t, http.StatusConflict, rec.Code)
	body := decodeErrorResponse(rec)
	assert.Equal(t, "already_active", body["type"])
}

func TestOnboardingInitiate_UnknownTemplate(t *testing.T) {
	orch := &fakeOrchestrator{
		initiate: func(_, _, _ string, _ map[string]any) (*model.OnboardingProcess, error) {
			return nil, fmt.Errorf("template nope: %w", template.ErrUnknownTemplate)
		},
	}
	h := NewOnboarding(orch)

	rec := httptest.NewRecorder()
	r := withChiURLParam(newRequest(http.MethodPost, "/tenants/"+validID+"/onboarding", map[string]any{
		"template_code": "nope",
	}), "id", validID)

	h.Initiate(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOnboardingStart_InvalidState(t *testing.T) {
	orch := &fakeOrchestrator{
		start: func(string) (*model.OnboardingProcess, error) {
			return nil, fmt.Errorf("%w: cannot start a completed process", onboarding.ErrInvalidState)
		},
	}
	h := NewOnboarding(orch)

	rec := httptest.NewRecorder()
	r := withChiURLParam(newRequest(http.MethodPost, "/tenants/"+validID+"/onboarding/start", nil), "id", validID)

	h.Start(rec, r)

	assert.Equal(t, http.StatusConflict, rec.Code)
	body := decodeErrorResponse(rec)
	assert.Equal(t, "invalid_state", body["type"])
}

func TestOnboardingStart_NoProcess(t *testing.T) {
	orch := &fakeOrchestrator{
		start: func(string) (*model.OnboardingProcess, error) {
			return nil, onboarding.ErrNoProcess
		},
	}
	h := NewOnboarding(orch)

	rec := httptest.NewRecorder()
	r := withChiURLParam(newRequest(http.MethodPost, "/tenants/"+validID+"/onboarding/start", nil), "id", validID)

	h.Start(rec, r)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOnboardingNext_ReturnsStep(t *testing.T) {
	code := "inventory"
	orch := &fakeOrchestrator{
		next: func(string) (*model.OnboardingStep, error) {
			return &model.OnboardingStep{
				ID:         "step-2",
				Kind:       model.StepKindModuleSetup,
				ModuleCode: &code,
				Status:     model.StepCompleted,
			}, nil
		},
	}
	h := NewOnboarding(orch)

	rec := httptest.NewRecorder()
	r := withChiURLParam(newRequest(http.MethodPost, "/tenants/"+validID+"/onboarding/next", nil), "id", validID)

	h.Next(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)
	var step model.OnboardingStep
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &step))
	assert.Equal(t, "step-2", step.ID)
	assert.Equal(t, model.StepCompleted, step.Status)
}

func TestOnboardingNext_Done(t *testing.T) {
	orch := &fakeOrchestrator{
		next: func(string) (*model.OnboardingStep, error) { return nil, nil },
	}
	h := NewOnboarding(orch)

	rec := httptest.NewRecorder()
	r := withChiURLParam(newRequest(http.MethodPost, "/tenants/"+validID+"/onboarding/next", nil), "id", validID)

	h.Next(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]bool
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body["done"])
}

func TestOnboardingSkip_RequiredStep(t *testing.T) {
	orch := &fakeOrchestrator{
		skip: func(_, stepCode string) (*model.OnboardingStep, error) {
			return nil, fmt.Errorf("%w: step %s is required", onboarding.ErrInvalidState, stepCode)
		},
	}
	h := NewOnboarding(orch)

	rec := httptest.NewRecorder()
	r := withChiURLParam(newRequest(http.MethodPost, "/tenants/"+validID+"/onboarding/skip", map[string]any{
		"step_code": "company_setup",
	}), "id", validID)

	h.Skip(rec, r)

	assert.Equal(t, http.StatusConflict, rec.Code)
	body := decodeErrorResponse(rec)
	assert.Equal(t, "invalid_state", body["type"])
}

func TestOnboardingSkip_MissingStepCode(t *testing.T) {
	h := NewOnboarding(&fakeOrchestrator{})

	rec := httptest.NewRecorder()
	r := withChiURLParam(newRequest(http.MethodPost, "/tenants/"+validID+"/onboarding/skip", map[string]any{}), "id", validID)

	h.Skip(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOnboardingStatus_NotStarted(t *testing.T) {
	orch := &fakeOrchestrator{
		status: func(tenantID string) (*onboarding.Status, error) {
			return &onboarding.Status{TenantID: tenantID, Status: onboarding.StatusNotStarted}, nil
		},
	}
	h := NewOnboarding(orch)

	rec := httptest.NewRecorder()
	r := withChiURLParam(newRequest(http.MethodGet, "/tenants/"+validID+"/onboarding", nil), "id", validID)

	h.Status(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)
	var st onboarding.Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, onboarding.StatusNotStarted, st.Status)
	assert.Zero(t, st.Progress)
}
