package main

import (
	"net/http"

	"golang.org/x/time/rate"

	"github.com/ritchiero/Budget-Agent/internal/assistant"
	"github.com/ritchiero/Budget-Agent/internal/auth"
	"github.com/ritchiero/Budget-Agent/internal/config"
	"github.com/ritchiero/Budget-Agent/internal/report"
	"github.com/ritchiero/Budget-Agent/server/internal/handlers"
	"github.com/ritchiero/Budget-Agent/server/internal/middleware"
	"github.com/ritchiero/Budget-Agent/server/internal/templates"
)

// newHandler wires the analyzer, the assistant and the middleware chain
func newHandler(cfg *config.Config) (http.Handler, error) {
	analyzer := report.NewAnalyzer(cfg.DataDir)
	analyzer.Window = cfg.Window
	analyzer.Usage.DeriveMissingCost = cfg.DeriveMissingCost

	tmpl, err := templates.Parse()
	if err != nil {
		return nil, err
	}

	h := handlers.New(analyzer, assistant.FromConfig(cfg.LLM, analyzer), tmpl, cfg.DataDir)
	return newRouter(h, cfg.Server), nil
}

func newRouter(h *handlers.Handler, cfg config.ServerConfig) http.Handler {
	guard := auth.NewGuard(cfg.APIKeyHash)

	limit := rate.Limit(cfg.RateLimit)
	if cfg.RateLimit <= 0 {
		limit = rate.Inf
	}
	limiter := middleware.NewIPRateLimiter(limit, cfg.RateBurst)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", h.Index)
	mux.HandleFunc("GET /api/health", h.Health)

	mux.HandleFunc("GET /api/overview", h.APIOverview)
	mux.HandleFunc("GET /api/hidden-costs", h.APIHiddenCosts)
	mux.HandleFunc("GET /api/timeline", h.APITimeline)
	mux.HandleFunc("GET /api/estimate", h.APIEstimate)
	mux.Handle("POST /api/chat", guard.RequireAPIKey(http.HandlerFunc(h.APIChat)))

	var handler http.Handler = mux
	handler = limiter.Limit(handler)
	handler = middleware.CORS(handler)
	handler = middleware.SecurityHeaders(handler)
	handler = middleware.RequestLogger(handler)
	return handler
}
