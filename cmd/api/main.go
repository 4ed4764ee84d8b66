// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-chi/chi/v5"
	flag "github.com/spf13/pflag"

	"github.com/carterperez-dev/staff-portal/internal/admin"
	"github.com/carterperez-dev/staff-portal/internal/auth"
	"github.com/carterperez-dev/staff-portal/internal/chatapp"
	"github.com/carterperez-dev/staff-portal/internal/config"
	"github.com/carterperez-dev/staff-portal/internal/content"
	"github.com/carterperez-dev/staff-portal/internal/core"
	"github.com/carterperez-dev/staff-portal/internal/feedback"
	"github.com/carterperez-dev/staff-portal/internal/health"
	"github.com/carterperez-dev/staff-portal/internal/middleware"
	"github.com/carterperez-dev/staff-portal/internal/server"
	"github.com/carterperez-dev/staff-portal/internal/user"
	"github.com/carterperez-dev/staff-portal/internal/usertype"
	"github.com/carterperez-dev/staff-portal/migrations"
)

const (
	drainDelay = 5 * time.Second
)

type options struct {
	configPath   string
	generateKeys bool
	seed         bool
}

func main() {
	var opts options
	flag.StringVarP(&opts.configPath, "config", "c", "config.yaml", "path to config file")
	flag.BoolVar(&opts.generateKeys, "generate-keys", false, "write a new ES256 key pair and exit")
	flag.BoolVar(&opts.seed, "seed", false, "create the bootstrap superuser and exit")
	flag.Parse()

	if err := run(opts); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(opts options) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	if opts.generateKeys {
		if err := auth.GenerateKeyPair(cfg.JWT.PrivateKeyPath, cfg.JWT.PublicKeyPath); err != nil {
			return err
		}
		logger.Info("key pair written",
			"private_key", cfg.JWT.PrivateKeyPath,
			"public_key", cfg.JWT.PublicKeyPath,
		)
		return nil
	}

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.Sentry.DSN,
			EnableTracing:    true,
			TracesSampleRate: cfg.Sentry.TracesSampleRate,
			Environment:      cfg.App.Environment,
			Release:          cfg.App.Version,
		}); err != nil {
			logger.Warn("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(cfg.Sentry.FlushTimeout)
		}
	}

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	if cfg.Database.AutoMigrate || opts.seed {
		if err := db.Migrate(ctx, migrations.FS); err != nil {
			return err
		}
	}

	userTypeRepo := usertype.NewRepository(db.DB)
	userTypeSvc := usertype.NewService(userTypeRepo)

	userRepo := user.NewRepository(db.DB)
	userSvc := user.NewService(userRepo, userTypeRepo)

	if opts.seed {
		return seed(ctx, cfg.Seed, userTypeSvc, userSvc)
	}

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("JWT manager initialized",
		"algorithm", "ES256",
		"key_id", jwtManager.KeyID(),
	)

	sessionStore := auth.NewSessionStore(db.DB)
	authSvc := auth.NewService(sessionStore, jwtManager, userSvc, auth.NewRedisBlacklist(redis))

	if purged, err := authSvc.PurgeExpiredSessions(ctx); err != nil {
		logger.Warn("failed to purge expired sessions", "error", err)
	} else if purged > 0 {
		logger.Info("expired sessions purged", "count", purged)
	}

	chatAppSvc := chatapp.NewService(chatapp.NewRepository(db.DB), userTypeRepo)
	feedbackSvc := feedback.NewService(feedback.NewRepository(db.DB))

	deps := []health.Dependency{
		{Name: "database", Checker: db},
		{Name: "redis", Checker: redis},
	}

	var contentHandler *content.Handler
	if cfg.Content.Enabled {
		upstream := content.NewMicroCMS(cfg.Content)
		source := content.NewCachedSource(upstream, redis, cfg.Content.CacheTTL)
		contentHandler = content.NewHandler(content.NewService(source))

		deps = append(deps, health.Dependency{
			Name:     "content",
			Optional: true,
			Checker: health.CheckFunc(func(ctx context.Context) error {
				_, err := upstream.Get(ctx, content.EndpointNews, "", url.Values{"limit": {"1"}})
				return err
			}),
		})
	}

	healthHandler := health.NewHandler(deps...)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		DBStats:    db.Stats,
		RedisStats: redis.PoolStats,
		DBPing:     db.Ping,
		RedisPing:  redis.Ping,
		Counters: admin.Counters{
			Users:     userSvc.Count,
			UserTypes: userTypeSvc.Count,
			ChatApps: func(ctx context.Context) (int, int, error) {
				c, err := chatAppSvc.Counts(ctx)
				return c.Total, c.AdminOnly, err
			},
			Feedback: func(ctx context.Context) (map[string]int, error) {
				counts, err := feedbackSvc.CountByStatus(ctx)
				if err != nil {
					return nil, err
				}
				out := make(map[string]int, len(counts))
				for status, n := range counts {
					out[string(status)] = n
				}
				return out, nil
			},
		},
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Tracing)
	router.Use(middleware.Logger(logger))
	limiter := middleware.NewLimiter(ctx, redis.Client)
	router.Use(limiter.PerIP(middleware.PerMinute(cfg.RateLimit.Requests, cfg.RateLimit.Burst)))
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	router.Get("/.well-known/jwks.json", jwtManager.JWKSHandler())

	roleLimiter := limiter.PerRole(
		middleware.RoleLimits(cfg.RateLimit.UserRequests, cfg.RateLimit.UserBurst),
	)
	verify := middleware.Authenticator(authSvc)
	authenticator := func(next http.Handler) http.Handler {
		return verify(roleLimiter(next))
	}

	loginLimiter := limiter.PerEndpoint(
		middleware.PerMinute(cfg.RateLimit.LoginRequests, cfg.RateLimit.LoginRequests),
	)
	feedbackLimiter := limiter.PerEndpoint(
		middleware.PerHour(cfg.RateLimit.FeedbackRequests, cfg.RateLimit.FeedbackRequests),
	)

	router.Route("/v1", func(r chi.Router) {
		auth.NewHandler(authSvc).RegisterRoutes(r, authenticator, loginLimiter)
		user.NewHandler(userSvc).RegisterRoutes(r, authenticator)
		usertype.NewHandler(userTypeSvc).RegisterRoutes(r, authenticator)
		chatapp.NewHandler(chatAppSvc).RegisterRoutes(r, authenticator)
		feedback.NewHandler(feedbackSvc).RegisterRoutes(
			r,
			authenticator,
			middleware.OptionalAuth(authSvc),
			feedbackLimiter,
		)
		adminHandler.RegisterRoutes(r, authenticator)

		if contentHandler != nil {
			contentHandler.RegisterRoutes(r, authenticator)
		}
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

// seed creates the bootstrap user type and superuser. Running it twice is
// a no-op.
func seed(
	ctx context.Context,
	cfg config.SeedConfig,
	types *usertype.Service,
	users *user.Service,
) error {
	if cfg.Username == "" || cfg.Password == "" || cfg.Email == "" {
		return fmt.Errorf("seed: SEED_USERNAME, SEED_EMAIL and SEED_PASSWORD are required")
	}

	t, err := types.Ensure(ctx, cfg.UserTypeName)
	if err != nil {
		return fmt.Errorf("seed user type: %w", err)
	}

	u, created, err := users.EnsureSuperuser(ctx, cfg.Username, cfg.Email, cfg.Password, t.ID)
	if err != nil {
		return fmt.Errorf("seed superuser: %w", err)
	}

	slog.InfoContext(ctx, "seed complete",
		"user_type_id", t.ID,
		"user_id", u.ID,
		"created", created,
	)

	return nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
