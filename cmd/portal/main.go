// Command portal serves the Soremed pharmacy portal in front of the backend API.
//
//	@title			Soremed Portal API
//	@version		1.0
//	@description	Session-holding portal in front of the Soremed backend.
//	@BasePath		/
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/soremed/portal/internal/api"
	"github.com/soremed/portal/internal/api/handler"
	"github.com/soremed/portal/internal/api/metrics"
	"github.com/soremed/portal/internal/api/middleware"
	"github.com/soremed/portal/internal/core/ports"
	"github.com/soremed/portal/internal/core/service"
	"github.com/soremed/portal/internal/infrastructure/backend"
	"github.com/soremed/portal/internal/infrastructure/config"
	"github.com/soremed/portal/internal/infrastructure/db/memory"
	mongodb "github.com/soremed/portal/internal/infrastructure/db/mongo"
	redisdb "github.com/soremed/portal/internal/infrastructure/db/redis"
	"github.com/soremed/portal/pkg/logger"
)

// credentialStore is what the portal needs from a persistence backend.
type credentialStore interface {
	ports.CredentialStore
	handler.Pinger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "portal: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "portal",
	})
	log.Info().
		Str("env", cfg.Env).
		Str("backend", cfg.Backend.BaseURL).
		Str("store", cfg.Session.Store).
		Str("scheme", cfg.Session.Scheme).
		Msg("configuration loaded")

	store, closeStore, err := openCredentialStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	client, err := backend.New(backend.Options{
		BaseURL:     cfg.Backend.BaseURL,
		Timeout:     cfg.Backend.Timeout,
		Credentials: store,
		Observer:    metrics.ObserveBackend,
		Logger:      logger.Component("backend"),
	})
	if err != nil {
		return err
	}

	registry := service.NewSessionRegistry(store, client, service.SessionOptions{
		Scheme:           cfg.Session.Scheme,
		TTL:              cfg.Session.TTL,
		HydrationTimeout: cfg.Backend.Timeout,
		OnHydrated:       metrics.ObserveHydration,
	}, cfg.Session.IdleTTL, logger.Component("session"))
	defer registry.Close()

	sessions := middleware.NewSessions(registry, middleware.CookieConfig{
		Name:   cfg.Session.CookieName,
		Secure: cfg.IsProduction(),
		MaxAge: cfg.Session.TTL,
	})
	guards := middleware.NewGuards(sessions, cfg.Session.HydrationWait, logger.Component("guard"))

	loginLimiter := middleware.NewRateLimiter(rate.Limit(cfg.Login.RatePerSec), cfg.Login.Burst, func() {
		metrics.LoginAttemptsTotal.WithLabelValues("rate_limited").Inc()
	})
	defer loginLimiter.Close()

	e := api.NewRouter(api.Dependencies{
		Backend:      client,
		Sessions:     sessions,
		Guards:       guards,
		LoginLimiter: loginLimiter,
		Health: map[string]handler.Pinger{
			"credential_store": store,
			"backend":          client,
		},
		Log: logger.Component("http"),
	})

	address := ":" + cfg.Port
	log.Info().Str("address", address).Msg("starting portal")

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := e.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	log.Info().Msg("portal stopped")
	return nil
}

// openCredentialStore connects the configured store, sealing it when a key is
// set. The returned func releases the underlying connection.
func openCredentialStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (credentialStore, func(), error) {
	var (
		store   credentialStore
		closeFn = func() {}
	)

	switch cfg.Session.Store {
	case config.StoreRedis:
		client, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, nil, err
		}
		store = redisdb.NewCredentialStore(client)
		closeFn = func() { _ = client.Close() }
	case config.StoreMongo:
		client, s, err := mongodb.Connect(ctx, mongodb.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
		})
		if err != nil {
			return nil, nil, err
		}
		store = s
		closeFn = func() {
			dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(dctx)
		}
	default:
		mem := memory.NewCredentialStore()
		go mem.Run(ctx, time.Minute)
		store = mem
	}

	if cfg.Session.Key == "" {
		if cfg.Session.Store != config.StoreMemory {
			log.Warn().Str("store", cfg.Session.Store).Msg("CREDENTIAL_KEY unset, credentials are stored unsealed")
		}
		return store, closeFn, nil
	}

	sealed, err := service.NewSealedCredentialStore(store, cfg.Session.Key)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return sealed, closeFn, nil
}
