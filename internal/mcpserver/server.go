package mcpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
)

// Server exposes the activation tool set over streamable HTTP MCP,
// proxying every call to the core API.
type Server struct {
	router chi.Router
	logger zerolog.Logger
}

// New creates an MCP server targeting the given core API.
func New(apiURL string, logger zerolog.Logger) *Server {
	proxy := NewProxy(apiURL, logger)
	tools := Tools(proxy)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	mcpSrv := server.NewMCPServer(
		"biashara-activation",
		"1.0.0",
		server.WithInstructions("Tenant activation tools — provisioning runs, onboarding progress and engine health checks against the business platform."),
	)
	mcpSrv.AddTools(tools...)

	router.Mount("/mcp", server.NewStreamableHTTPServer(mcpSrv,
		server.WithEndpointPath("/"),
	))

	logger.Info().Int("tools", len(tools)).Msg("mounted MCP endpoint at /mcp")

	return &Server{
		router: router,
		logger: logger,
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
