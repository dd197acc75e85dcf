// Package di wires the sync engine together: config, logging, the local
// cache, the remote transport chain, the reconciler, and the HTTP surface.
package di

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/wire"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"memorybox-backend/internal/config"
	"memorybox-backend/internal/handlers"
	"memorybox-backend/internal/localstore"
	"memorybox-backend/internal/reconcile"
	"memorybox-backend/internal/remote"
	"memorybox-backend/pkg/observability"
)

// SuperSet combines every provider set needed for a full engine.
var SuperSet = wire.NewSet(
	ConfigProviders,
	StorageProviders,
	SyncProviders,
	InterfaceProviders,
	wire.Bind(new(http.Handler), new(*chi.Mux)),
)

// ConfigProviders covers configuration and logging, the foundation the
// other layers build on.
var ConfigProviders = wire.NewSet(
	provideConfig,
	provideLogLevel,
	provideLogger,
	provideMetrics,
)

// StorageProviders covers the local cache: the key-value backend and the
// snapshot store layered on it.
var StorageProviders = wire.NewSet(
	provideKV,
	provideLocalStore,
)

// SyncProviders covers the remote transport chain and the reconciler
// that arbitrates between the two stores.
var SyncProviders = wire.NewSet(
	provideTransport,
	provideClients,
	provideNotifier,
	providePolicy,
	provideReconciler,
)

// InterfaceProviders covers the HTTP handlers and the router.
var InterfaceProviders = wire.NewSet(
	provideProfileHandler,
	provideFamilyHandler,
	provideTreeHandler,
	provideMemoryHandler,
	provideJournalHandler,
	provideJourneyHandler,
	provideCapsuleHandler,
	provideRouter,
)

func provideConfig() (*config.Config, error) {
	return config.LoadConfig()
}

// provideLogLevel parses the configured level into an AtomicLevel so
// the config watcher can retune logging without a restart. Unknown
// levels fall back to info rather than failing startup.
func provideLogLevel(cfg *config.Config) zap.AtomicLevel {
	level := zapcore.InfoLevel
	if parsed, err := zapcore.ParseLevel(cfg.LogLevel); err == nil {
		level = parsed
	}
	return zap.NewAtomicLevelAt(level)
}

func provideLogger(cfg *config.Config, level zap.AtomicLevel) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.IsDevelopment() {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}
	zapCfg.Level = level
	return zapCfg.Build()
}

// provideMetrics always constructs the collector. EnableMetrics gates
// the /metrics route and the HTTP middleware, not the instruments, so
// nothing downstream has to tolerate a nil collector.
func provideMetrics() *observability.Collector {
	return observability.NewCollector("memorybox")
}

func provideKV(cfg *config.Config, logger *zap.Logger) (localstore.KV, error) {
	if cfg.Cache.StateDir == "" {
		return localstore.NewMemoryKV(cfg.Cache.ByteBudget, logger), nil
	}
	return localstore.NewFileKV(cfg.Cache.StateDir, cfg.Cache.ByteBudget, logger)
}

func provideLocalStore(kv localstore.KV, cfg *config.Config, metrics *observability.Collector, logger *zap.Logger) *localstore.Store {
	return localstore.NewStore(kv, cfg.Cache.KeepCount, metrics, logger)
}

// provideTransport assembles the remote chain. Without credentials in
// development the engine runs against an offline transport and serves
// everything from the cache; production refuses to start that way (see
// config.Validate).
func provideTransport(cfg *config.Config, metrics *observability.Collector, logger *zap.Logger) (remote.Transport, error) {
	if cfg.SupabaseURL == "" {
		logger.Warn("no remote store configured, running cache-only")
		return remote.NewOfflineTransport(), nil
	}

	client, err := remote.NewSupabaseClient(cfg.SupabaseURL, cfg.SupabaseKey)
	if err != nil {
		return nil, err
	}

	transport := remote.NewSupabaseTransport(client, metrics, logger)
	transport = remote.WithBreaker(transport, remote.DefaultBreakerConfig(), logger)
	if cfg.EnableTracing {
		transport = remote.WithTracing(transport, otel.Tracer("memorybox/remote"))
	}
	return transport, nil
}

func provideClients(transport remote.Transport, local *localstore.Store, logger *zap.Logger) *remote.Clients {
	return remote.NewClients(transport, local, logger)
}

func provideNotifier(logger *zap.Logger) *reconcile.Notifier {
	return reconcile.NewNotifier(logger)
}

func providePolicy(cfg *config.Config) reconcile.Policy {
	return reconcile.Policy{
		MaxAttempts: cfg.Retry.MaxAttempts,
		BaseDelay:   cfg.Retry.BaseDelay,
		MaxDelay:    cfg.Retry.MaxDelay,
		Factor:      cfg.Retry.Factor,
	}
}

func provideReconciler(clients *remote.Clients, local *localstore.Store, notifier *reconcile.Notifier, policy reconcile.Policy, metrics *observability.Collector, logger *zap.Logger) *reconcile.Reconciler {
	return reconcile.NewReconciler(clients, local, notifier, policy, metrics, logger)
}

func provideProfileHandler(r *reconcile.Reconciler, logger *zap.Logger) *handlers.ProfileHandler {
	return handlers.NewProfileHandler(r, logger)
}

func provideFamilyHandler(r *reconcile.Reconciler, logger *zap.Logger) *handlers.FamilyHandler {
	return handlers.NewFamilyHandler(r, logger)
}

func provideTreeHandler(r *reconcile.Reconciler, logger *zap.Logger) *handlers.TreeHandler {
	return handlers.NewTreeHandler(r, logger)
}

func provideMemoryHandler(r *reconcile.Reconciler, logger *zap.Logger) *handlers.MemoryHandler {
	return handlers.NewMemoryHandler(r, logger)
}

func provideJournalHandler(r *reconcile.Reconciler, logger *zap.Logger) *handlers.JournalHandler {
	return handlers.NewJournalHandler(r, logger)
}

func provideJourneyHandler(r *reconcile.Reconciler, logger *zap.Logger) *handlers.JourneyHandler {
	return handlers.NewJourneyHandler(r, logger)
}

func provideCapsuleHandler(r *reconcile.Reconciler, logger *zap.Logger) *handlers.CapsuleHandler {
	return handlers.NewCapsuleHandler(r, logger)
}

func provideRouter(cfg *config.Config, metrics *observability.Collector, logger *zap.Logger,
	profile *handlers.ProfileHandler,
	family *handlers.FamilyHandler,
	tree *handlers.TreeHandler,
	memory *handlers.MemoryHandler,
	journal *handlers.JournalHandler,
	journey *handlers.JourneyHandler,
	capsule *handlers.CapsuleHandler,
) *chi.Mux {
	return setupRouter(cfg, metrics, logger, routeHandlers{
		profile: profile,
		family:  family,
		tree:    tree,
		memory:  memory,
		journal: journal,
		journey: journey,
		capsule: capsule,
	})
}
