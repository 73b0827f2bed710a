package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ivankudzin/sensgen/internal/config"
	"github.com/ivankudzin/sensgen/internal/jobs/cleanup"
	"github.com/ivankudzin/sensgen/internal/repo/memory"
	pgrepo "github.com/ivankudzin/sensgen/internal/repo/postgres"
	redrepo "github.com/ivankudzin/sensgen/internal/repo/redis"
	analyticsvc "github.com/ivankudzin/sensgen/internal/services/analytics"
	authsvc "github.com/ivankudzin/sensgen/internal/services/auth"
	"github.com/ivankudzin/sensgen/internal/services/cooldown"
	"github.com/ivankudzin/sensgen/internal/services/flow"
	ratesvc "github.com/ivankudzin/sensgen/internal/services/rate"
	"github.com/ivankudzin/sensgen/internal/services/sessions"
	"github.com/ivankudzin/sensgen/internal/services/settings"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	registry   *sessions.Registry
	cleanup    *cleanup.Job
	httpRouter http.Handler
}

type stores struct {
	kv   cooldown.Store
	rate ratesvc.WindowStore
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log, cfg.HTTP.TrustProxy)

	var pool *pgxpool.Pool
	if cfg.Store.Driver != config.StoreDriverMemory {
		if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
			log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
		} else if err := pgrepo.EnsureSchema(ctx, p); err != nil {
			log.Warn("postgres schema init failed, continuing in degraded mode", zap.Error(err))
			p.Close()
		} else {
			pool = p
		}
	}

	var redisClient *goredis.Client
	if cfg.Store.Driver == config.StoreDriverRedis {
		redisClient = redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			log.Warn("redis ping failed, cooldown checks will error until it is reachable", zap.Error(err))
		}
		cancel()
	}

	st, err := selectStores(cfg.Store.Driver, pool, redisClient)
	if err != nil {
		if pool != nil {
			pool.Close()
		}
		return nil, err
	}

	access, err := authsvc.NewAccessChecker(cfg.Auth.AccessCode, cfg.Auth.AccessCodeHash)
	if err != nil {
		return nil, fmt.Errorf("create access checker: %w", err)
	}
	jwtManager := authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL)

	eventRepo := pgrepo.NewEventRepo(pool)
	analyticsService := analyticsvc.NewService(eventRepo, analyticsvc.Config{
		MaxBatchSize: 100,
	})

	src := settings.DefaultSource()
	if cfg.Flow.Seed != 0 {
		src = settings.NewSeededSource(cfg.Flow.Seed)
	}
	generator := settings.NewGenerator(src)

	flowCfg := flow.Config{
		LoadingDelay:    cfg.Flow.LoadingDelay,
		GeneratingDelay: cfg.Flow.GeneratingDelay,
		PollInterval:    cfg.Flow.PollInterval,
	}
	registry := sessions.NewRegistry(func(ctx context.Context, sid, clientID string) (*flow.Flow, error) {
		return flow.New(ctx, flow.Dependencies{
			SessionID: sid,
			Generator: generator,
			Gate:      cooldown.NewGate(st.kv, cooldown.Key(clientID), cfg.Flow.CooldownDuration),
			Access:    access,
			Events:    analyticsService,
			Logger:    log,
		}, flowCfg)
	}, sessions.Config{
		IdleTTL:     cfg.Sessions.IdleTTL,
		MaxSessions: cfg.Sessions.MaxSessions,
	})

	cleanupJob := cleanup.New(registry, cfg.Sessions.CleanupInterval, log)
	if pool != nil {
		cleanupJob.AttachEventsCleanup(eventRepo, cfg.Events.Retention)
		if cfg.Store.Driver == config.StoreDriverPostgres {
			cleanupJob.AttachKVCleanup(pgrepo.NewKVRepo(pool))
		}
	}

	RegisterRoutes(r, Dependencies{
		Registry:         registry,
		Tokens:           jwtManager,
		Limiter:          ratesvc.NewLimiter(st.rate, cfg.Sessions.CreatePerMinute),
		AnalyticsService: analyticsService,
		Logger:           log,
		Config:           cfg,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	log.Info("api app configured",
		zap.String("store_driver", cfg.Store.Driver),
		zap.Bool("postgres", pool != nil),
		zap.Duration("cooldown", cfg.Flow.CooldownDuration),
	)

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		registry:   registry,
		cleanup:    cleanupJob,
		httpRouter: r,
	}, nil
}

func selectStores(driver string, pool *pgxpool.Pool, redisClient *goredis.Client) (stores, error) {
	switch driver {
	case config.StoreDriverRedis:
		return stores{
			kv:   redrepo.NewKVRepo(redisClient),
			rate: redrepo.NewRateRepo(redisClient),
		}, nil
	case config.StoreDriverPostgres:
		if pool == nil {
			return stores{}, errors.New("store driver postgres requires a reachable database")
		}
		return stores{
			kv:   pgrepo.NewKVRepo(pool),
			rate: memory.NewRateRepo(),
		}, nil
	case config.StoreDriverMemory:
		return stores{
			kv:   memory.NewKVRepo(),
			rate: memory.NewRateRepo(),
		}, nil
	default:
		return stores{}, fmt.Errorf("unknown store driver %q", driver)
	}
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// RunCleanup blocks until ctx is done.
func (a *App) RunCleanup(ctx context.Context) {
	a.cleanup.Loop(ctx)
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	a.registry.CloseAll()
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
