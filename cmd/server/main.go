package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/nekogravitycat/barbershop-backend/internal/app"
	"github.com/nekogravitycat/barbershop-backend/internal/config"
	"github.com/nekogravitycat/barbershop-backend/internal/db"
	"github.com/nekogravitycat/barbershop-backend/internal/events"
	"github.com/nekogravitycat/barbershop-backend/internal/jobs"
	"github.com/nekogravitycat/barbershop-backend/internal/metrics"
	"github.com/nekogravitycat/barbershop-backend/internal/pkg/logger"
	"github.com/nekogravitycat/barbershop-backend/internal/pkg/storage"
	"github.com/nekogravitycat/barbershop-backend/internal/telemetry"
)

func main() {
	// For receiving Ctrl+C / SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, warnings, err := config.Load()
	if err != nil {
		log := logger.New(false, "info")
		log.Fatal().Err(err).Msg("failed to load config")
	}

	log := logger.New(cfg.IsProduction, cfg.LogLevel)
	for _, w := range warnings {
		log.Warn().Msg(w)
	}
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:      cfg.OTELEnabled,
		OTLPEndpoint: cfg.OTELEndpoint,
		SampleRatio:  cfg.OTELSampleRatio,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up tracing")
	}

	metrics.Register()

	pool, err := db.NewPool(ctx, cfg.DBDSN, cfg.DBMaxConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to db")
	}
	defer pool.Close()

	if cfg.DBAutoMigrate {
		if err := db.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate db")
		}
	}

	store, err := storage.NewLocalStorage(cfg.StorageDir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.StorageDir).Msg("failed to open storage")
	}
	defer store.Close()

	var rdb redis.UniversalClient
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			// Not fatal: the cache and pub/sub degrade, bookings keep working.
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable at startup")
		}
	}

	container := app.NewContainer(app.Config{
		IsProduction:        cfg.IsProduction,
		ProdOrigins:         cfg.ProdOrigins,
		Logger:              log,
		DBPool:              pool,
		Storage:             store,
		Redis:               rdb,
		EventsRedisChannel:  cfg.EventsRedisChannel,
		KafkaBrokers:        events.SplitBrokers(cfg.KafkaBrokers),
		EventPublishTimeout: cfg.EventPublishTimeout,
		AvailabilityTTL:     cfg.AvailabilityCacheTTL,
		JWTSecret:           cfg.JWTSecret,
		JWTTTL:              cfg.JWTAccessTokenTTL,
		BcryptCost:          cfg.BcryptCost,
		ShopLocation:        cfg.ShopLocation,
	})

	sweeper, err := jobs.NewSweeper(cfg.CompletionSweepSpec, container.BookingService, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to schedule completion sweep")
	}
	sweeper.Start()

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           telemetry.WrapHandler(container.Router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Str("timezone", cfg.ShopLocation.String()).Msg("server running")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	sweeper.Stop(shutdownCtx)
	// Flush events emitted by the last requests before their transports close.
	if err := container.Dispatcher.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("event dispatcher did not drain")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("tracer shutdown failed")
	}

	log.Info().Msg("server exited gracefully")
}
