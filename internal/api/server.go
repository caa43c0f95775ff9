package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/biasharahq/platform/internal/api/handler"
	mw "github.com/biasharahq/platform/internal/api/middleware"
	"github.com/biasharahq/platform/internal/config"
	"github.com/biasharahq/platform/internal/core"
	"github.com/biasharahq/platform/internal/engine/health"
	"github.com/biasharahq/platform/internal/onboarding"
	"github.com/biasharahq/platform/internal/provision"
)

type Server struct {
	router       chi.Router
	logger       zerolog.Logger
	services     *core.Services
	corePool     *pgxpool.Pool
	cfg          *config.Config
	provisioner  *provision.Engine
	monitor      *health.Monitor
	orchestrator *onboarding.Orchestrator
}

func NewServer(logger zerolog.Logger, coreDB *pgxpool.Pool, cfg *config.Config, services *core.Services, provisioner *provision.Engine, monitor *health.Monitor, orchestrator *onboarding.Orchestrator) *Server {
	s := &Server{
		router:       chi.NewRouter(),
		logger:       logger,
		services:     services,
		corePool:     coreDB,
		cfg:          cfg,
		provisioner:  provisioner,
		monitor:      monitor,
		orchestrator: orchestrator,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(mw.RequestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(mw.Metrics)
}

func (s *Server) setupRoutes() {
	// Prometheus metrics endpoint
	s.router.Handle("/metrics", promhttp.Handler())

	// Health check endpoints
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/readyz", s.handleReadyz)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.Auth(s.corePool))

		// Tenants
		tenant := handler.NewTenant(s.services.Tenant, s.services.Module)
		r.Get("/tenants", tenant.List)
		r.Post("/tenants", tenant.Create)
		r.Get("/tenants/{id}", tenant.Get)
		r.Put("/tenants/{id}", tenant.Update)
		r.Put("/tenants/{id}/engine-credentials", tenant.SetEngineCredentials)
		r.Get("/tenants/{id}/modules", tenant.Modules)

		// Provisioning
		prov := handler.NewProvisioning(s.provisioner, s.services.Tenant, s.monitor, s.services.ProvisioningLog)
		r.Post("/tenants/{id}/provisioning/start", prov.Start)
		r.Get("/tenants/{id}/provisioning/status", prov.Status)
		r.Post("/tenants/{id}/provisioning/retry", prov.Retry)
		r.Post("/tenants/{id}/provisioning/skip-step", prov.SkipStep)
		r.Get("/tenants/{id}/provisioning/logs", prov.Logs)

		// Onboarding
		onb := handler.NewOnboarding(s.orchestrator)
		r.Post("/tenants/{id}/onboarding", onb.Initiate)
		r.Get("/tenants/{id}/onboarding", onb.Status)
		r.Post("/tenants/{id}/onboarding/start", onb.Start)
		r.Post("/tenants/{id}/onboarding/pause", onb.Pause)
		r.Post("/tenants/{id}/onboarding/resume", onb.Resume)
		r.Post("/tenants/{id}/onboarding/next", onb.Next)
		r.Post("/tenants/{id}/onboarding/skip", onb.Skip)

		// Engine health
		engineHealth := handler.NewEngineHealth(s.monitor, s.services.Tenant)
		r.Get("/engines/health", engineHealth.Get)

		// API keys
		apiKey := handler.NewAPIKey(s.services.APIKey)
		r.Get("/api-keys", apiKey.List)
		r.Post("/api-keys", apiKey.Create)
		r.Get("/api-keys/{id}", apiKey.Get)
		r.Delete("/api-keys/{id}", apiKey.Revoke)
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := map[string]string{}
	healthy := true

	if err := s.corePool.Ping(ctx); err != nil {
		checks["core_db"] = err.Error()
		healthy = false
	} else {
		checks["core_db"] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	if healthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(checks)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
