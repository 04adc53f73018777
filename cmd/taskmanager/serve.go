package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/taskflow/task-manager/internal/api"
	"github.com/taskflow/task-manager/internal/api/handler"
	"github.com/taskflow/task-manager/internal/core/ports"
	"github.com/taskflow/task-manager/internal/core/service"
	"github.com/taskflow/task-manager/internal/infrastructure/db/memory"
	mongostore "github.com/taskflow/task-manager/internal/infrastructure/db/mongo"
	redisstore "github.com/taskflow/task-manager/internal/infrastructure/db/redis"
	"github.com/taskflow/task-manager/internal/infrastructure/mail"
	"github.com/taskflow/task-manager/internal/pkg/config"
	"github.com/taskflow/task-manager/pkg/logger"
)

const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

type repositories struct {
	users      ports.UserRepository
	categories ports.CategoryRepository
	tasks      ports.TaskRepository
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := initLogger(cfg)

	ops := map[string]gfshutdown.Operation{}
	checks := map[string]handler.HealthCheck{}

	var repos repositories
	switch cfg.Store {
	case config.StoreMemory:
		store := memory.NewStore()
		repos = repositories{users: store.Users(), categories: store.Categories(), tasks: store.Tasks()}
		log.Warn().Msg("using in-memory store, data is lost on exit")
	default:
		store, err := mongostore.Open(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return err
		}
		if err := store.Migrate(ctx); err != nil {
			return err
		}
		repos = repositories{users: store.Users(), categories: store.Categories(), tasks: store.Tasks()}
		checks["mongodb"] = store.Ping
		ops["mongodb"] = store.Close
		log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongodb")
	}

	var limiter *redisstore.RateLimiter
	if cfg.Redis.Enabled {
		rdb, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			// Cache and rate limiting are optional; the API works without them.
			log.Warn().Err(err).Msg("redis unavailable, running without cache and rate limiting")
		} else {
			repos.categories = redisstore.NewCachedCategoryRepository(repos.categories, rdb, cfg.Redis.CacheTTL, log)
			limiter = redisstore.NewRateLimiter(rdb, cfg.RateLimit.Requests, cfg.RateLimit.Window)
			checks["redis"] = redisstore.Ping(rdb)
			ops["redis"] = func(context.Context) error { return rdb.Close() }
		}
	}

	proxies, err := cfg.TrustedProxyNets()
	if err != nil {
		return err
	}

	authService := service.NewAuthService(repos.users, newMailer(cfg), cfg.JWTSecret, cfg.JWTTTL, log)
	deps := api.Deps{
		Auth:           authService,
		Categories:     service.NewCategoryService(repos.categories, repos.tasks, log),
		Tasks:          service.NewTaskService(repos.tasks, repos.categories, log),
		JWTSecret:      cfg.JWTSecret,
		TrustedProxies: proxies,
		HealthChecks:   checks,
		Logger:         log,
	}
	if limiter != nil {
		deps.Limiter = limiter
	}
	e := api.NewRouter(deps)

	go func() {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	ops["http"] = func(ctx context.Context) error {
		log.Info().Msg("shutting down http server")
		return e.Shutdown(ctx)
	}

	wait := gfshutdown.GracefulShutdown(context.Background(), shutdownTimeout, ops)
	code := <-wait
	log.Info().Int("exit_code", code).Msg("server stopped")
	if code != 0 {
		os.Exit(code)
	}
	return nil
}

func newMailer(cfg *config.Config) ports.Mailer {
	if cfg.SMTP.Host == "" {
		return mail.NewLogMailer(cfg.AppURL, logger.Get().With().Str("component", "mailer").Logger())
	}
	return mail.NewSMTPMailer(mail.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		User:     cfg.SMTP.User,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		AppURL:   cfg.AppURL,
	})
}

// initLogger sets up the process logger from cfg; later code fetches it
// with logger.Get.
func initLogger(cfg *config.Config) zerolog.Logger {
	return logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "task-manager",
	})
}
