package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sowrin-paul/uiu-healthcare-portal/internal/api"
	"github.com/sowrin-paul/uiu-healthcare-portal/internal/api/handler"
	"github.com/sowrin-paul/uiu-healthcare-portal/internal/api/metrics"
	"github.com/sowrin-paul/uiu-healthcare-portal/internal/core/domain"
	"github.com/sowrin-paul/uiu-healthcare-portal/internal/core/ports"
	"github.com/sowrin-paul/uiu-healthcare-portal/internal/core/service"
	"github.com/sowrin-paul/uiu-healthcare-portal/internal/infrastructure/authapi"
	"github.com/sowrin-paul/uiu-healthcare-portal/internal/infrastructure/config"
	"github.com/sowrin-paul/uiu-healthcare-portal/internal/infrastructure/db/memory"
	mongodb "github.com/sowrin-paul/uiu-healthcare-portal/internal/infrastructure/db/mongo"
	redisdb "github.com/sowrin-paul/uiu-healthcare-portal/internal/infrastructure/db/redis"
	"github.com/sowrin-paul/uiu-healthcare-portal/pkg/logger"

	goredis "github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})
	log.Info().Str("env", cfg.Env).Str("mode", cfg.Auth.Mode).Msg("starting healthcare portal")

	// --- Session store ---
	var (
		store ports.SessionStore
		rdb   *goredis.Client
	)
	if cfg.Redis.Addr != "" {
		rdb, err = redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			log.Fatal().Err(err).Msg("connecting redis")
		}
		defer rdb.Close()
		store = redisdb.NewSessionStore(rdb, cfg.DeviceID)
	} else {
		log.Warn().Msg("REDIS_ADDR not set, session will not survive restarts")
		store = memory.NewSessionStore()
	}

	// --- Authentication collaborator ---
	var (
		auth     ports.AuthenticationService
		verifier handler.Verifier
		db       *mongo.Database
	)
	switch cfg.Auth.Mode {
	case config.ModeLocal:
		client, database, err := mongodb.Connect(ctx, mongodb.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("connecting mongo")
		}
		defer client.Disconnect(context.Background())
		db = database

		repo := mongodb.NewUserRepository(db)
		if err := repo.EnsureIndexes(ctx); err != nil {
			log.Fatal().Err(err).Msg("ensuring user indexes")
		}

		directory := service.NewDirectoryService(repo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
		if err := directory.Seed(ctx); err != nil {
			log.Fatal().Err(err).Msg("seeding demo accounts")
		}
		auth = directory
		verifier = directory

	case config.ModeRemote:
		auth = authapi.NewClient(cfg.Auth.ServiceURL, cfg.Auth.Timeout)
	}

	// --- Session state machine ---
	validator := service.NewSessionValidator(auth)
	sessions := service.NewSessionManager(store, auth, validator, log)
	if err := sessions.Bootstrap(ctx); err != nil {
		log.Fatal().Err(err).Msg("bootstrapping session")
	}
	if sessions.Current().Status == domain.StatusAuthenticated {
		metrics.BootstrapsTotal.WithLabelValues("restored").Inc()
	} else {
		metrics.BootstrapsTotal.WithLabelValues("anonymous").Inc()
	}

	// --- HTTP surface ---
	e := api.NewRouter(api.Deps{
		Sessions: sessions,
		Auth:     auth,
		Verifier: verifier,
		Mongo:    db,
		Redis:    rdb,
		Log:      log,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server")
		}
	}()
	log.Info().Str("port", cfg.Port).Msg("listening")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}
