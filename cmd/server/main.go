// server runs the event raffle HTTP API.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	admindomain "event-raffle/backend/internal/admin/domain"
	adminrepo "event-raffle/backend/internal/admin/repository"
	formdomain "event-raffle/backend/internal/form/domain"
	formrepo "event-raffle/backend/internal/form/repository"
	adminservice "event-raffle/backend/internal/admin/service"
	"event-raffle/backend/internal/avatar"
	"event-raffle/backend/internal/config"
	"event-raffle/backend/internal/db"
	healthhandler "event-raffle/backend/internal/health/handler"
	identitymetrics "event-raffle/backend/internal/identity/metrics"
	identityservice "event-raffle/backend/internal/identity/service"
	"event-raffle/backend/internal/logger"
	participantrepo "event-raffle/backend/internal/participant/repository"
	participantservice "event-raffle/backend/internal/participant/service"
	"event-raffle/backend/internal/platform/rbac"
	"event-raffle/backend/internal/platform/redis"
	"event-raffle/backend/internal/raffle/lock"
	rafflemetrics "event-raffle/backend/internal/raffle/metrics"
	rafflerepo "event-raffle/backend/internal/raffle/repository"
	raffleservice "event-raffle/backend/internal/raffle/service"
	"event-raffle/backend/internal/security"
	"event-raffle/backend/internal/server"
	"event-raffle/backend/internal/telemetry"
	telemetryotel "event-raffle/backend/internal/telemetry/otel"
)

const shutdownTimeout = 10 * time.Second

type stores struct {
	admins       adminrepo.Repository
	participants participantrepo.Repository
	settings     rafflerepo.Repository
	fields       formrepo.Repository
	// ping is nil for in-memory stores.
	ping   healthhandler.Check
	close  func()
	memory bool
}

type superadminBootstrapper interface {
	BootstrapSuperadmin(ctx context.Context, username, password string) (*admindomain.Admin, error)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Missing secrets are fatal before anything else starts.
		boot := logger.New("info", false, os.Stderr)
		boot.Fatal().Err(err).Msg("config")
	}
	log := logger.New(cfg.LogLevel, cfg.Production(), os.Stdout)
	logger.SetGlobal(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	providers, err := telemetryotel.NewProviders(ctx, cfg.OTelEndpoint, cfg.OTelServiceName, cfg.OTelInsecure)
	if err != nil {
		return err
	}
	providers.SetGlobal()
	emitter := telemetryotel.NewEventEmitter(providers.LoggerProvider)

	tokens, err := security.NewTokenProvider(cfg.JWTSecret, security.SessionTokenTTL)
	if err != nil {
		return err
	}
	hasher := security.NewHasher(cfg.BcryptCost)

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()
	checks := map[string]healthhandler.Check{"database": st.ping}

	var gate lock.Gate = lock.NewSemaphoreGate()
	rc, err := redis.New(ctx, cfg.RedisURL)
	if err != nil {
		return err
	}
	if rc != nil {
		defer rc.Close()
		gate = lock.NewRedisGate(rc.Client, lock.DefaultRedisKey, cfg.LockTTL())
		checks["redis"] = rc.Health
		log.Info().Msg("draw lock: redis")
	}

	reg := prometheus.DefaultRegisterer
	adminSvc := adminservice.NewAdminService(st.admins, hasher, emitter)
	authSvc := identityservice.NewAuthService(st.admins, hasher, tokens, emitter, identitymetrics.New(reg))
	participantSvc := participantservice.NewParticipantService(st.participants, avatar.New(), emitter)
	drawSvc := raffleservice.NewDrawService(gate, st.settings, st.participants, emitter, rafflemetrics.New(reg))
	settingsSvc := raffleservice.NewSettingsService(st.settings, emitter)
	if st.memory {
		if err := bootstrapInMemory(ctx, adminSvc, cfg.BootstrapUsername, cfg.BootstrapPassword, log); err != nil {
			return err
		}
	}

	router := server.NewRouter(server.Deps{
		Log:            log,
		Authenticator:  rbac.NewGuard(tokens, st.admins),
		Auth:           authSvc,
		Admins:         adminSvc,
		Participants:   participantSvc,
		Fields:         st.fields,
		Draws:          drawSvc,
		Settings:       settingsSvc,
		HealthChecks:   checks,
		Production:     cfg.Production(),
		AllowedOrigins: cfg.AllowedOrigins(),
		RateLimit:      cfg.RateLimitRequests,
		RateWindow:     cfg.RateWindow(),
		TrustProxy:     cfg.TrustProxy,
	})
	srv := server.NewHTTPServer(cfg.HTTPAddr, router)

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	// Let in-flight async telemetry emits finish before the log exporter goes away.
	time.Sleep(telemetry.ShutdownDrainDuration)
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("telemetry shutdown")
	}
	log.Info().Msg("HTTP server stopped")
	return nil
}

// bootstrapInMemory seeds the superadmin of a fresh in-memory store. Without credentials the
// server still starts, but no admin can log in.
func bootstrapInMemory(ctx context.Context, svc superadminBootstrapper, username, password string, log zerolog.Logger) error {
	if strings.TrimSpace(username) == "" || password == "" {
		log.Warn().Msg("BOOTSTRAP_USERNAME/BOOTSTRAP_PASSWORD not set; admin routes are unreachable on in-memory stores")
		return nil
	}
	a, err := svc.BootstrapSuperadmin(ctx, username, password)
	if errors.Is(err, adminservice.ErrAlreadyBootstrapped) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("bootstrap superadmin: %w", err)
	}
	log.Info().Str("username", a.Username).Msg("superadmin bootstrapped from environment")
	return nil
}

// openStores connects to Postgres when DATABASE_URL is set and falls back to in-memory stores otherwise.
func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	if cfg.DatabaseURL == "" {
		log.Warn().Msg("DATABASE_URL is not set; using in-memory stores, data is lost on restart")
		return &stores{
			admins:       adminrepo.NewMemoryRepository(),
			participants: participantrepo.NewMemoryRepository(),
			settings:     rafflerepo.NewMemoryRepository(),
			fields:       formrepo.NewMemoryRepository(formdomain.DefaultFields()),
			close:        func() {},
			memory:       true,
		}, nil
	}
	conn, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	return postgresStores(conn), nil
}

func postgresStores(conn *sql.DB) *stores {
	return &stores{
		admins:       adminrepo.NewPostgresRepository(conn),
		participants: participantrepo.NewPostgresRepository(conn),
		settings:     rafflerepo.NewPostgresRepository(conn),
		fields:       formrepo.NewPostgresRepository(conn),
		ping:         conn.PingContext,
		close:        func() { _ = conn.Close() },
	}
}
