package api

import (
	"encoding/json"
	"net/http"

	"github.com/clawsec/toolgate/internal/api/handlers"
	mw "github.com/clawsec/toolgate/internal/api/middleware"
	"github.com/clawsec/toolgate/internal/buildconfig"
	"github.com/clawsec/toolgate/internal/config"
	"github.com/clawsec/toolgate/internal/service"
	"github.com/clawsec/toolgate/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// App holds the sidecar router and the gate behind it.
type App struct {
	Router *chi.Mux
	Gate   *service.Gate
}

// NewApp wires the hook endpoints around an assembled gate. decisions may
// be nil when no audit database is configured.
func NewApp(gate *service.Gate, decisions *store.DecisionStore, logger *zap.Logger) *App {
	hooksHandler := handlers.NewHooksHandler(gate)
	decisionsHandler := handlers.NewDecisionsHandler(decisions)

	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)
	r.Use(mw.RateLimit(config.RateLimitRPS(), config.RateLimitBurst()))

	// Health and version (no auth)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	r.Get("/version", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(buildconfig.VersionInfo())
	})

	// Hook endpoints
	r.Route("/v1", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(config.GatewayAPIKey()))

		r.Route("/hooks", func(r chi.Router) {
			r.Post("/tools-resolved", hooksHandler.ToolsResolved)
			r.Post("/before-tool-call", hooksHandler.BeforeToolCall)
		})

		r.Get("/decisions", decisionsHandler.ListRecent)
	})

	return &App{Router: r, Gate: gate}
}
