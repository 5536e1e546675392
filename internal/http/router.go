package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"server/internal/http/handlers"
	"server/internal/middleware"
)

// Options carries the router's cross-cutting settings.
type Options struct {
	RateLimitPerMin int
	DefaultLocale   string
	CountryLookup   middleware.CountryLookup
	AllowedOrigins  []string
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(app.Logger),
		middleware.CORS(opts.AllowedOrigins),
		middleware.I18N(opts.DefaultLocale, opts.CountryLookup),
	)
	if opts.RateLimitPerMin > 0 {
		r.Use(middleware.RateLimit(opts.RateLimitPerMin, time.Minute))
	}

	r.Get("/healthz", app.Health)

	r.Route("/api/generation", func(r chi.Router) {
		r.With(middleware.Auth).Post("/submit", app.GenerationSubmit)
		r.With(middleware.Auth).Get("/tasks/{task_id}", app.GenerationTask)
		// Fallback is invoked by the webhook pipeline, which authenticates
		// at the network layer, not with user headers.
		r.Post("/fallback", app.GenerationFallback)
	})

	return r
}
