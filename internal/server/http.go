// Package server assembles the HTTP router: middleware chain, ingestion API, dashboard and probes.
package server

import (
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	healthhandler "housemonitor/internal/health/handler"
	identityhandler "housemonitor/internal/identity/handler"
	readinghandler "housemonitor/internal/reading/handler"
	"housemonitor/internal/security"
	"housemonitor/internal/server/middleware"
	telemetryotel "housemonitor/internal/telemetry/otel"
)

// Deps holds the handlers and options the router is built from.
type Deps struct {
	Log *zap.Logger
	// Verifier checks X-Api-Key on the ingestion routes.
	Verifier  *security.Verifier
	Ingest    *readinghandler.IngestHandler
	Dashboard *readinghandler.DashboardHandler
	Identity  *identityhandler.Handler
	Health    *healthhandler.Handler
	// LoginLimiter wraps POST /login. If nil, login attempts are not rate limited.
	LoginLimiter func(http.Handler) http.Handler
	// CORSOrigins enables CORS for the listed origins. If empty, no CORS headers are sent.
	CORSOrigins []string
	// TrustedProxies are the peers whose X-Forwarded-For / X-Real-Ip set the client IP.
	TrustedProxies []*net.IPNet
	// ForceHTTPS redirects plain HTTP to https:// on every route except the probes.
	ForceHTTPS bool
}

// NewRouter returns the application handler.
//
// Routes:
//   - GET  /healthz, /readyz         → internal/health/handler
//   - ANY  /api/climate, /api/motion → internal/reading/handler (X-Api-Key)
//   - GET  /login, POST /login       → internal/identity/handler
//   - POST /logout                   → internal/identity/handler
//   - GET  /dashboard                → internal/reading/handler (session)
func NewRouter(deps Deps) http.Handler {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(middleware.TrustProxies(deps.TrustedProxies))
	r.Use(middleware.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Logger(log))
	r.Use(telemetryotel.HTTPMiddleware())
	r.Use(middleware.SecurityHeaders)
	if len(deps.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   deps.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Api-Key", "X-CSRF-Token"},
			ExposedHeaders:   []string{middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	if deps.Health != nil {
		r.Get("/healthz", deps.Health.Live)
		r.Get("/readyz", deps.Health.Ready)
	}

	r.Group(func(app chi.Router) {
		if deps.ForceHTTPS {
			app.Use(middleware.RedirectHTTPS)
		}

		if deps.Ingest != nil {
			app.Route("/api", func(api chi.Router) {
				api.Use(middleware.RequireAPIKey(deps.Verifier))
				// Every method is routed so the key is checked before the method.
				api.HandleFunc("/climate", deps.Ingest.Climate)
				api.HandleFunc("/motion", deps.Ingest.Motion)
			})
		}

		if deps.Identity != nil {
			login := http.Handler(http.HandlerFunc(deps.Identity.Login))
			if deps.LoginLimiter != nil {
				login = deps.LoginLimiter(login)
			}
			app.Get("/login", deps.Identity.LoginPage)
			app.Method(http.MethodPost, "/login", login)
			app.Post("/logout", deps.Identity.Logout)

			if deps.Dashboard != nil {
				app.With(deps.Identity.RequireAuthenticated).Method(http.MethodGet, "/dashboard", deps.Dashboard)
			}
		}

		app.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/dashboard", http.StatusFound)
		})
	})

	return r
}
