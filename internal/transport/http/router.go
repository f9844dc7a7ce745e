package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-notify-dispatch/internal/config"
	"github.com/go-notify-dispatch/internal/scoring"
	"github.com/go-notify-dispatch/internal/transport/http/handler"
	appmiddleware "github.com/go-notify-dispatch/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// Deps holds all dependencies for the ops router.
type Deps struct {
	Scorer     scoring.Service
	RateLimits RateLimitReader
	Loader     BatchIngester
}

// NewRouter builds and returns the ops HTTP router: health checks, ad-hoc
// scoring, rate-limit window inspection and batch ingestion triggers.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// 5 requests/second, burst of 10 — scoring calls can reach a paid API.
	scoreRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	healthH := handler.NewHealthHandler()
	scoreH := handler.NewScoreHandler(deps.Scorer)
	rlH := handler.NewRateLimitHandler(deps.RateLimits)
	batchH := handler.NewBatchHandler(deps.Loader)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)
		r.With(scoreRL.Limit).Post("/score", scoreH.Score)
		r.Get("/rate-limits/{key}", rlH.Get)
		r.Post("/batches", batchH.Ingest)
	})

	return r
}
