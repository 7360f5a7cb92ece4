package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/openlancer/lancer/internal/domain"
	"github.com/openlancer/lancer/internal/infrastructure/http/handlers"
	"github.com/openlancer/lancer/internal/infrastructure/http/middleware"
)

type RouterConfig struct {
	AuthHandler   *handlers.AuthHandler
	JobHandler    *handlers.JobHandler
	HealthHandler *handlers.HealthHandler
	CSRF          *middleware.CSRFGuard
	RequireJWT    func(http.Handler) http.Handler
	Log           zerolog.Logger
	Secure        func(http.Handler) http.Handler
	IPRateLimit   func(http.Handler) http.Handler
	CORS          func(http.Handler) http.Handler
	Metrics       bool // expose /metrics
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimid.RequestID)
	r.Use(chimid.RealIP)
	r.Use(loggerMiddleware(cfg.Log))
	r.Use(chimid.Recoverer)
	if cfg.Metrics {
		r.Use(middleware.PrometheusMiddleware)
	}
	if cfg.Secure != nil {
		r.Use(cfg.Secure)
	}
	if cfg.CORS != nil {
		r.Use(cfg.CORS)
	}
	// CSRF runs before anything reads a request body and before any
	// auth check, so forged writes are rejected without leaking
	// whether a resource exists.
	r.Use(cfg.CSRF.Handler)

	if cfg.HealthHandler != nil {
		r.Get("/health", cfg.HealthHandler.ServeHTTP)
	} else {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
	}
	if cfg.Metrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/auth", func(r chi.Router) {
		if cfg.IPRateLimit != nil {
			r.Use(cfg.IPRateLimit)
		}
		r.Get("/siwe/nonce", cfg.AuthHandler.SIWENonce)
		r.Post("/siwe/verify", cfg.AuthHandler.SIWEVerify)
		r.Post("/register", cfg.AuthHandler.Register)
		r.Post("/login", cfg.AuthHandler.Login)
		r.Post("/refresh", cfg.AuthHandler.Refresh)
		r.Post("/logout", cfg.AuthHandler.Logout)
	})

	if cfg.JobHandler != nil && cfg.RequireJWT != nil {
		r.Route("/jobs", func(r chi.Router) {
			r.Use(cfg.RequireJWT)
			r.With(middleware.RequireScope(domain.ScopeWriteJobs)).Post("/", cfg.JobHandler.Create)
			r.Get("/{id}", cfg.JobHandler.Get)
			r.With(middleware.RequireScope(domain.ScopeEscrowManage)).Patch("/{id}/escrow", cfg.JobHandler.EscrowAction)
		})
	}

	return r
}

func loggerMiddleware(log zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := chimid.GetReqID(r.Context())
			log.Info().
				Str("request_id", reqID).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Msg("request")
			next.ServeHTTP(w, r)
		})
	}
}
