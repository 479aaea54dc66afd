package entrypoint

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/bookswap/internal/audit"
	"github.com/mrlokans/bookswap/internal/auth"
	"github.com/mrlokans/bookswap/internal/config"
	"github.com/mrlokans/bookswap/internal/database"
	auditRepo "github.com/mrlokans/bookswap/internal/database/audit"
	"github.com/mrlokans/bookswap/internal/database/books"
	"github.com/mrlokans/bookswap/internal/database/favourites"
	"github.com/mrlokans/bookswap/internal/database/messages"
	"github.com/mrlokans/bookswap/internal/database/transactions"
	"github.com/mrlokans/bookswap/internal/database/users"
	http_controllers "github.com/mrlokans/bookswap/internal/http"
	"github.com/mrlokans/bookswap/internal/scheduler"
	"github.com/mrlokans/bookswap/internal/services"
	"github.com/mrlokans/bookswap/internal/tasks"
)

// App holds every long-lived component of the server.
type App struct {
	Router    *gin.Engine
	DB        *database.Database
	Audit     *audit.Service
	Tasks     *tasks.Client // nil when TASKS_ENABLED is false
	Scheduler *scheduler.AuditCleanupScheduler

	log         *zap.Logger
	loginLimit  *auth.LoginLimiter
	ipLimit     *http_controllers.IPRateLimiter
	redis       *auth.RedisTokenRevoker
	stopWorkers context.CancelFunc
}

// NewApp opens the stores and builds the router. Background work does not
// run until Start is called.
func NewApp(cfg *config.Config, logger *zap.Logger, version string) (_ *App, err error) {
	app := &App{log: logger}
	defer func() {
		if err != nil {
			app.Shutdown(context.Background())
		}
	}()

	app.DB, err = database.NewDatabase(cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	app.Audit = audit.NewService(auditRepo.NewRepository(app.DB.DB), logger)

	healthChecks := map[string]http_controllers.Pinger{"database": app.DB}

	var revoker auth.TokenRevoker = auth.NewMemoryTokenRevoker()
	if cfg.Redis.Addr != "" {
		app.redis = auth.NewRedisTokenRevoker(cfg.Redis.Addr, cfg.Redis.Password)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err = app.redis.Ping(ctx); err != nil {
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		revoker = app.redis
		healthChecks["redis"] = app.redis
		logger.Info("token revocation backed by redis", zap.String("addr", cfg.Redis.Addr))
	} else {
		logger.Info("token revocation kept in memory (set REDIS_ADDR to share it)")
	}

	secret := cfg.Auth.JWTSecret
	if secret == "" {
		if secret, err = auth.GenerateSecret(); err != nil {
			return nil, fmt.Errorf("failed to generate JWT secret: %w", err)
		}
		logger.Warn("AUTH_JWT_SECRET is not set; generated a random secret, tokens will not survive a restart")
	}
	tokens, err := auth.NewTokenManager(secret, cfg.Auth.TokenExpiry, revoker)
	if err != nil {
		return nil, err
	}

	app.loginLimit = auth.NewLoginLimiter(auth.LimiterConfig{
		MaxAttempts:     cfg.Auth.MaxLoginAttempts,
		WindowDuration:  cfg.Auth.RateLimitWindow,
		LockoutDuration: cfg.Auth.LockoutDuration,
	})
	if cfg.RateLimit.PerMinute > 0 {
		app.ipLimit = http_controllers.NewIPRateLimiter(cfg.RateLimit.PerMinute, cfg.RateLimit.Burst, logger)
	}

	if cfg.Tasks.Enabled {
		app.Tasks, err = tasks.NewClient(cfg.Database.Path, tasks.FromConfig(cfg.Tasks, cfg.Audit), logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize task queue: %w", err)
		}
		app.Tasks.Register(tasks.NewPurgeAuditEventsQueue(app.Audit, logger))
		app.Scheduler = scheduler.NewAuditCleanupScheduler(
			cfg.Audit.CleanupSchedule, cfg.Audit.RetentionDays, scheduler.QueueEnqueuer(app.Tasks), logger)
		healthChecks["tasks"] = app.Tasks
	}

	userRepo := users.NewRepository(app.DB.DB)
	bookRepo := books.NewRepository(app.DB.DB)
	favRepo := favourites.NewRepository(app.DB.DB)
	txRepo := transactions.NewRepository(app.DB.DB)

	app.Router = http_controllers.NewRouter(http_controllers.RouterConfig{
		Logger:       logger,
		Auth:         auth.NewService(userRepo, tokens, app.loginLimit, app.Audit, cfg.Auth),
		Users:        services.NewUserService(userRepo, bookRepo, favRepo, app.Audit, app.Audit),
		Books:        services.NewBookService(bookRepo, favRepo, txRepo, app.Audit),
		Messages:     services.NewMessageService(messages.NewRepository(app.DB.DB), userRepo, bookRepo),
		Transactions: services.NewTransactionService(txRepo, bookRepo, app.Audit),
		HealthChecks: healthChecks,
		RateLimiter:  app.ipLimit,
		Version:      version,
	})
	return app, nil
}

// Start launches the task workers and the cleanup scheduler.
func (a *App) Start(ctx context.Context) error {
	if a.Tasks == nil {
		return nil
	}
	workerCtx, cancel := context.WithCancel(ctx)
	a.stopWorkers = cancel
	a.Tasks.Start(workerCtx)
	return a.Scheduler.Start(workerCtx)
}

// Shutdown stops background work first, then closes the stores. It is safe
// to call on a partially built App.
func (a *App) Shutdown(ctx context.Context) {
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}
	if a.Tasks != nil {
		a.Tasks.Stop(ctx)
	}
	if a.stopWorkers != nil {
		a.stopWorkers()
	}
	if a.Audit != nil {
		a.Audit.Wait()
	}
	if a.loginLimit != nil {
		a.loginLimit.Stop()
	}
	if a.ipLimit != nil {
		a.ipLimit.Stop()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Warn("error closing redis client", zap.Error(err))
		}
	}
	if a.Tasks != nil {
		if err := a.Tasks.Close(); err != nil {
			a.log.Warn("error closing task database", zap.Error(err))
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.log.Warn("error closing database", zap.Error(err))
		}
	}
}
