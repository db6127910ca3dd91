package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tastetrail/tastetrail/internal/api"
	"github.com/tastetrail/tastetrail/internal/api/handler"
	"github.com/tastetrail/tastetrail/internal/core/ports"
	"github.com/tastetrail/tastetrail/internal/core/service"
	"github.com/tastetrail/tastetrail/internal/infrastructure/db/memory"
	mongodb "github.com/tastetrail/tastetrail/internal/infrastructure/db/mongo"
	redisdb "github.com/tastetrail/tastetrail/internal/infrastructure/db/redis"
	"github.com/tastetrail/tastetrail/internal/pkg/config"
	"github.com/tastetrail/tastetrail/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	var inMemory bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the TasteTrail API server.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), inMemory)
		},
	}
	cmd.Flags().BoolVar(&inMemory, "in-memory", false, "keep users and revocations in process instead of MongoDB and Redis")
	return cmd
}

// backend is the storage the server runs on plus how to release it.
type backend struct {
	users     ports.UserRepository
	revoker   ports.TokenRevoker
	readiness map[string]handler.Pinger
	close     func()
}

func memoryBackend() *backend {
	return &backend{
		users:     memory.NewUserRepository(),
		revoker:   memory.NewRevocationStore(),
		readiness: map[string]handler.Pinger{},
		close:     func() {},
	}
}

func databaseBackend(ctx context.Context, cfg *config.ServerConfig, log zerolog.Logger) (*backend, error) {
	db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		Timeout:  cfg.Mongo.Timeout,
	})
	if err != nil {
		return nil, err
	}
	disconnect := func() {
		dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := mongodb.Disconnect(dctx, db); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect")
		}
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		Timeout:  cfg.Redis.Timeout,
	})
	if err != nil {
		disconnect()
		return nil, err
	}

	users := mongodb.NewUserRepository(db)
	if err := users.EnsureIndexes(ctx); err != nil {
		_ = rdb.Close()
		disconnect()
		return nil, fmt.Errorf("ensure user indexes: %w", err)
	}

	return &backend{
		users:   users,
		revoker: redisdb.NewRevocationStore(rdb),
		readiness: map[string]handler.Pinger{
			"mongodb": handler.MongoPinger(db),
			"redis":   handler.RedisPinger(rdb),
		},
		close: func() {
			_ = rdb.Close()
			disconnect()
		},
	}, nil
}

// @title                       TasteTrail API
// @version                     1.0
// @description                 Accounts, sessions and role management for TasteTrail.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func runServe(ctx context.Context, inMemory bool) error {
	cfg, err := config.LoadServer(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Development(),
		Output:  os.Stdout,
		Service: "tastetrail-api",
	})

	var be *backend
	if inMemory {
		log.Warn().Msg("running with in-memory storage, data is lost on exit")
		be = memoryBackend()
	} else if be, err = databaseBackend(ctx, cfg, log); err != nil {
		return err
	}
	defer be.close()

	e := api.NewRouter(api.Deps{
		Auth:      service.NewAuthService(be.users, be.revoker, cfg.JWTSecret, cfg.TokenTTL),
		Users:     service.NewUserService(be.users),
		Readiness: be.readiness,
		Log:       log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info().Msg("shutting down")
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}
