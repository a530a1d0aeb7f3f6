// Command phoneapi serves phone-number lookups behind API-key admission
// control.
//
// @title           Phone Lookup API
// @version         1.0
// @description     Phone-number lookups with per-key quotas, expiry and a usage ledger.
// @BasePath        /
// @securityDefinitions.apikey  ApiKeyAuth
// @in                          header
// @name                        X-API-Key
// @securityDefinitions.basic   BasicAuth
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/atharvsharma432199/phone-api/docs"
	"github.com/atharvsharma432199/phone-api/internal/bootstrap"
	"github.com/atharvsharma432199/phone-api/internal/config"
	httpapi "github.com/atharvsharma432199/phone-api/internal/http"
	"github.com/atharvsharma432199/phone-api/internal/jobs"
	"github.com/atharvsharma432199/phone-api/internal/lookup"
	"github.com/atharvsharma432199/phone-api/internal/observability"
	"github.com/atharvsharma432199/phone-api/internal/repo"
	"github.com/atharvsharma432199/phone-api/internal/services"
	"github.com/atharvsharma432199/phone-api/internal/sysutil"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const shutdownGrace = 10 * time.Second

func main() {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	cfg := config.MustLoad()
	sysutil.SetupLogger(os.Stdout, cfg.LogLevel, cfg.LogPretty)
	gin.SetMode(cfg.GinMode)
	docs.SwaggerInfo.Version = version

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("phone-api exited")
	}
	log.Info().Msg("graceful shutdown complete")
}

func run(ctx context.Context, cfg config.Config) error {
	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Warn().Err(err).Msg("tracer shutdown")
		}
	}()

	db, err := repo.OpenSQLite(cfg.APIDBPath, repo.WithTracing(cfg.OTEL.Enabled))
	if err != nil {
		return err
	}
	defer func() { _ = repo.Close(db) }()

	records := repo.NewRecordStore(cfg.PhoneDBPath, cfg.LookupFuzzy, repo.WithTracing(cfg.OTEL.Enabled))
	defer func() { _ = records.Close() }()
	cache := lookup.NewCache(cfg.LookupCacheSize)

	ledger := &services.Ledger{DB: db}
	keys := &services.KeyService{
		DB:               db,
		DefaultMaxUsage:  cfg.DefaultMaxUsage,
		DefaultValidDays: cfg.DefaultValidDays,
	}
	status := &services.StatusService{Keys: keys, Ledger: ledger, Records: records, Cache: cache}

	initr := bootstrap.NewInitializer(bootstrap.Options{
		DB:            db,
		Records:       records,
		Cache:         cache,
		Ingester:      &bootstrap.CommandIngester{Command: cfg.IngestCommand, Dir: cfg.IngestDir},
		AdminUsername: cfg.AdminUsername,
		AdminPassword: cfg.AdminPassword,
		Timeout:       cfg.InitTimeout,
	})
	initErr := make(chan error, 1)
	go func() { initErr <- initr.Run(ctx) }()

	if cfg.RecordStoreWatch {
		w := &bootstrap.StoreWatcher{
			Path: cfg.PhoneDBPath,
			OnChange: func() {
				records.Reset()
				cache.Purge()
			},
		}
		go func() {
			if err := w.Watch(ctx); err != nil {
				log.Warn().Err(err).Msg("record store watcher disabled")
			}
		}()
	}

	refresher := jobs.NewStatusRefresher(status, cfg.RefreshInterval)
	go func() {
		// Gauges need the schema, so wait for startup to finish.
		select {
		case <-initr.Ready():
		case <-ctx.Done():
			return
		}
		if err := refresher.Start(ctx); err != nil {
			log.Warn().Err(err).Msg("status refresher not started")
		}
	}()
	defer refresher.Stop()

	r := gin.New()
	httpapi.RegisterRoutes(r, httpapi.Deps{
		Lookup: &services.LookupService{
			Admission: &services.Admission{DB: db},
			Ledger:    ledger,
			Records:   records,
			Cache:     cache,
		},
		Keys:   keys,
		Status: status,
		Init:   initr,
		Admins: &services.AdminAuth{DB: db},
		Ready:  initr.Ready(),
	}, cfg)

	srv := &http.Server{
		Addr:              net.JoinHostPort("", cfg.Port),
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("http server listening")
		serveErr <- srv.ListenAndServe()
	}()

	for ctx.Err() == nil {
		select {
		case err := <-serveErr:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case err := <-initErr:
			if err != nil {
				_ = srv.Close()
				return err
			}
		case <-ctx.Done():
		}
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
		return err
	}
	return nil
}
