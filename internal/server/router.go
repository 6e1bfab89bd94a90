// Package server assembles the HTTP router and server.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	adminhandler "event-raffle/backend/internal/admin/handler"
	formhandler "event-raffle/backend/internal/form/handler"
	healthhandler "event-raffle/backend/internal/health/handler"
	identityhandler "event-raffle/backend/internal/identity/handler"
	participanthandler "event-raffle/backend/internal/participant/handler"
	rafflehandler "event-raffle/backend/internal/raffle/handler"
	"event-raffle/backend/internal/server/middleware"
	"event-raffle/backend/internal/server/respond"
)

// Defaults for Deps fields left zero.
const (
	DefaultRateLimit  = 100
	DefaultRateWindow = 15 * time.Minute
)

const rateLimitMessage = "Too many requests from this IP, please try again later."

// AdminService combines the admin identity operations served over HTTP. *adminservice.AdminService implements it.
type AdminService interface {
	adminhandler.AdminService
	identityhandler.PasswordChanger
}

// ParticipantService is the participant pool as seen by the HTTP layer.
type ParticipantService interface {
	participanthandler.Service
	rafflehandler.Participants
}

// Deps holds the services behind the HTTP surface.
type Deps struct {
	Log           zerolog.Logger
	Authenticator middleware.Authenticator
	Auth          identityhandler.AuthService
	Admins        AdminService
	Participants  ParticipantService
	Fields        formhandler.Lister
	Draws         rafflehandler.Drawer
	Settings      rafflehandler.Settings
	// HealthChecks are run by GET /api/health. Nil entries are skipped.
	HealthChecks map[string]healthhandler.Check
	// Gatherer backs /metrics. Nil uses the default gatherer.
	Gatherer prometheus.Gatherer
	// Production selects Secure, SameSite=None session cookies.
	Production     bool
	AllowedOrigins []string
	// RateLimit requests per RateWindow per client IP on /api. Zero selects the defaults.
	RateLimit  int
	RateWindow time.Duration
	// TrustProxy takes the client IP from X-Forwarded-For / X-Real-IP. Enable only behind a proxy
	// that overwrites those headers; otherwise clients can pick their own rate limit key.
	TrustProxy bool
}

// NewRouter returns the HTTP handler for the whole API, instrumented with OpenTelemetry.
//
// Route → handler mapping:
//   - /api/health            → internal/health/handler
//   - /api/auth              → internal/identity/handler
//   - /api/participants      → internal/participant/handler (public)
//   - /api/participants/fields → internal/form/handler (public)
//   - /api/raffle            → internal/raffle/handler (info public, draw and winners authenticated)
//   - /api/admin/raffle      → internal/raffle/handler (authenticated)
//   - /api/admin/participants → internal/participant/handler (authenticated)
//   - /api/admin/users       → internal/admin/handler (superadmin)
func NewRouter(deps Deps) http.Handler {
	requireAuth := middleware.RequireAuth(deps.Authenticator, deps.Log)
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	auth := identityhandler.New(deps.Auth, deps.Admins, requireAuth, deps.Production, deps.Log)
	admins := adminhandler.New(deps.Admins, deps.Log)
	participants := participanthandler.New(deps.Participants, deps.Log)
	fields := formhandler.New(deps.Fields, deps.Log)
	raffle := rafflehandler.New(deps.Draws, deps.Settings, deps.Participants, requireAuth, deps.Log)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	if deps.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.RequestLogger(deps.Log))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Use(rateLimiter(deps.RateLimit, deps.RateWindow))
		r.Method(http.MethodGet, "/health", healthhandler.New(deps.HealthChecks, deps.Log))
		r.Route("/auth", auth.Register)
		r.Route("/participants", func(r chi.Router) {
			participants.Register(r)
			fields.Register(r)
		})
		r.Route("/raffle", raffle.Register)
		r.Route("/admin", func(r chi.Router) {
			r.Use(requireAuth)
			r.Route("/raffle", raffle.RegisterAdmin)
			r.Route("/participants", participants.RegisterAdmin)
			r.Route("/users", admins.Register)
		})
	})
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respond.Error(w, http.StatusNotFound, "Not found")
	})

	return otelhttp.NewHandler(r, "event-raffle-api")
}

func rateLimiter(limit int, window time.Duration) func(http.Handler) http.Handler {
	if limit <= 0 {
		limit = DefaultRateLimit
	}
	if window <= 0 {
		window = DefaultRateWindow
	}
	return httprate.Limit(limit, window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
			respond.Error(w, http.StatusTooManyRequests, rateLimitMessage)
		}),
	)
}
