package di

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"memorybox-backend/internal/config"
	"memorybox-backend/internal/handlers"
	"memorybox-backend/internal/middleware"
	"memorybox-backend/pkg/api"
	"memorybox-backend/pkg/observability"
)

type routeHandlers struct {
	profile *handlers.ProfileHandler
	family  *handlers.FamilyHandler
	tree    *handlers.TreeHandler
	memory  *handlers.MemoryHandler
	journal *handlers.JournalHandler
	journey *handlers.JourneyHandler
	capsule *handlers.CapsuleHandler
}

// setupRouter builds the full HTTP surface: middleware chain, health and
// metrics endpoints, and the authenticated /api/v1 sync routes.
func setupRouter(cfg *config.Config, metrics *observability.Collector, logger *zap.Logger, h routeHandlers) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Timeout(cfg.RequestTimeout, logger))

	if cfg.EnableCORS {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", handlers.UserIDHeader},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	if cfg.EnableMetrics {
		r.Use(middleware.Metrics(metrics))
		r.Get("/metrics", promhttp.HandlerFor(
			metrics.GetRegistry(),
			promhttp.HandlerOpts{},
		).ServeHTTP)
	}

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		remoteMode := "configured"
		if cfg.SupabaseURL == "" {
			remoteMode = "offline"
		}
		cacheMode := "disk"
		if cfg.Cache.StateDir == "" {
			cacheMode = "memory"
		}
		api.Success(w, http.StatusOK, api.HealthResponse{
			Status:      "healthy",
			Environment: cfg.Environment,
			Remote:      remoteMode,
			Cache:       cacheMode,
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(handlers.Authenticator(logger))

		r.Get("/profile", h.profile.GetProfile)
		r.Put("/profile", h.profile.UpdateProfile)

		r.Post("/families", h.family.CreateFamily)
		r.Route("/families/{familyID}", func(r chi.Router) {
			r.Get("/", h.family.GetFamily)
			r.Put("/", h.family.UpdateFamily)

			r.Get("/tree", h.tree.GetTree)
			r.Put("/tree", h.tree.SaveTree)

			r.Get("/memories", h.memory.ListMemories)
			r.Post("/memories", h.memory.CreateMemory)
			r.Put("/memories/{memoryID}", h.memory.UpdateMemory)
			r.Delete("/memories/{memoryID}", h.memory.DeleteMemory)

			r.Get("/capsules", h.capsule.ListCapsules)
			r.Post("/capsules", h.capsule.CreateCapsule)
			r.Delete("/capsules/{capsuleID}", h.capsule.DeleteCapsule)
		})

		r.Get("/journals", h.journal.ListEntries)
		r.Post("/journals", h.journal.CreateEntry)
		r.Put("/journals/{entryID}", h.journal.UpdateEntry)
		r.Delete("/journals/{entryID}", h.journal.DeleteEntry)

		r.Get("/journeys/{journeyType}", h.journey.GetProgress)
		r.Put("/journeys/{journeyType}", h.journey.UpdateProgress)

		r.Get("/book-preferences", h.journey.GetBookPreference)
		r.Put("/book-preferences", h.journey.UpdateBookPreference)
	})

	return r
}
