package di

import (
	"context"
	"fmt"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"memorybox-backend/internal/config"
	"memorybox-backend/internal/localstore"
	"memorybox-backend/internal/reconcile"
	"memorybox-backend/internal/remote"
	"memorybox-backend/internal/tracing"
	"memorybox-backend/pkg/observability"
)

// shutdownGrace bounds how long any single cleanup may take.
const shutdownGrace = 5 * time.Second

// Container holds the assembled engine. Construction order matters:
// config and logging first, then storage, then the sync chain, then the
// HTTP surface. Shutdown runs the registered cleanups in reverse.
type Container struct {
	Config     *config.Config
	Logger     *zap.Logger
	LogLevel   zap.AtomicLevel
	Metrics    *observability.Collector
	LocalStore *localstore.Store
	Transport  remote.Transport
	Clients    *remote.Clients
	Notifier   *reconcile.Notifier
	Reconciler *reconcile.Reconciler
	Router     *chi.Mux

	tracerProvider *tracing.TracerProvider
	configWatcher  *config.Watcher

	shutdownFunctions []func() error
}

// NewContainer builds a fully wired engine from the environment.
func NewContainer() (*Container, error) {
	c := &Container{
		shutdownFunctions: make([]func() error, 0),
	}
	if err := c.initialize(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Container) initialize() error {
	cfg, err := provideConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	c.Config = cfg

	level := provideLogLevel(cfg)
	logger, err := provideLogger(cfg, level)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	c.Logger = logger
	c.LogLevel = level
	c.addShutdownFunction(func() error {
		// Sync flushes buffered entries; stderr often reports EINVAL on
		// sync, which is harmless.
		_ = logger.Sync()
		return nil
	})

	c.Metrics = provideMetrics()

	if cfg.EnableTracing {
		if err := c.initializeTracing(); err != nil {
			return fmt.Errorf("init tracing: %w", err)
		}
	}

	if err := c.initializeStorage(); err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	if err := c.initializeSync(); err != nil {
		return fmt.Errorf("init sync: %w", err)
	}
	c.initializeRouter()

	if cfg.IsDevelopment() && cfg.OverlayPath() != "" {
		if err := c.initializeConfigWatcher(); err != nil {
			// Hot reload is a convenience; a broken watcher should not
			// keep the engine from starting.
			c.Logger.Warn("config watcher unavailable", zap.Error(err))
		}
	}

	c.Logger.Info("engine initialized",
		zap.String("environment", cfg.Environment),
		zap.Bool("remote", cfg.SupabaseURL != ""),
		zap.Bool("metrics", cfg.EnableMetrics),
		zap.Bool("tracing", cfg.EnableTracing),
	)
	return nil
}

func (c *Container) initializeTracing() error {
	tp, err := tracing.InitTracing("memorybox-backend", c.Config.Environment, c.Config.OTLPEndpoint)
	if err != nil {
		return err
	}
	c.tracerProvider = tp
	c.addShutdownFunction(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return tp.Shutdown(ctx)
	})
	return nil
}

func (c *Container) initializeStorage() error {
	kv, err := provideKV(c.Config, c.Logger)
	if err != nil {
		return err
	}
	c.LocalStore = provideLocalStore(kv, c.Config, c.Metrics, c.Logger)
	return nil
}

func (c *Container) initializeSync() error {
	transport, err := provideTransport(c.Config, c.Metrics, c.Logger)
	if err != nil {
		return err
	}
	c.Transport = transport
	c.Clients = provideClients(transport, c.LocalStore, c.Logger)
	c.Notifier = provideNotifier(c.Logger)
	c.Reconciler = provideReconciler(c.Clients, c.LocalStore, c.Notifier, providePolicy(c.Config), c.Metrics, c.Logger)
	return nil
}

func (c *Container) initializeRouter() {
	r := c.Reconciler
	c.Router = provideRouter(c.Config, c.Metrics, c.Logger,
		provideProfileHandler(r, c.Logger),
		provideFamilyHandler(r, c.Logger),
		provideTreeHandler(r, c.Logger),
		provideMemoryHandler(r, c.Logger),
		provideJournalHandler(r, c.Logger),
		provideJourneyHandler(r, c.Logger),
		provideCapsuleHandler(r, c.Logger),
	)
}

// initializeConfigWatcher hot-reloads the overlay file in development.
// Only the log level takes effect live; storage and retry knobs need a
// restart, which the reload logs so nobody is left wondering.
func (c *Container) initializeConfigWatcher() error {
	watcher, err := config.NewWatcher(c.Config, c.Config.OverlayPath(), c.Logger)
	if err != nil {
		return err
	}
	c.configWatcher = watcher

	watcher.OnChange(func(next *config.Config) {
		if parsed, err := zapcore.ParseLevel(next.LogLevel); err == nil {
			c.LogLevel.SetLevel(parsed)
			c.Logger.Info("log level updated", zap.String("level", next.LogLevel))
		}
		if next.Retry != c.Config.Retry || next.Cache != c.Config.Cache {
			c.Logger.Info("storage or retry settings changed, restart to apply")
		}
	})

	c.addShutdownFunction(func() error {
		watcher.Stop()
		return nil
	})
	return nil
}

func (c *Container) addShutdownFunction(fn func() error) {
	c.shutdownFunctions = append(c.shutdownFunctions, fn)
}

// Shutdown tears the engine down in reverse construction order.
func (c *Container) Shutdown() error {
	var firstErr error
	for i := len(c.shutdownFunctions) - 1; i >= 0; i-- {
		if err := c.shutdownFunctions[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
