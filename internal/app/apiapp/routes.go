package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ivankudzin/sensgen/internal/config"
	analyticsvc "github.com/ivankudzin/sensgen/internal/services/analytics"
	authsvc "github.com/ivankudzin/sensgen/internal/services/auth"
	ratesvc "github.com/ivankudzin/sensgen/internal/services/rate"
	"github.com/ivankudzin/sensgen/internal/services/sessions"
	"github.com/ivankudzin/sensgen/internal/transport/http/handlers"
)

type Dependencies struct {
	Registry         *sessions.Registry
	Tokens           *authsvc.JWTManager
	Limiter          *ratesvc.Limiter
	AnalyticsService *analyticsvc.Service
	Logger           *zap.Logger
	Config           config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler()
	catalogHandler := handlers.NewCatalogHandler(deps.Config.Flow.CooldownDuration)
	sessionHandler := handlers.NewSessionHandler(deps.Registry, deps.Tokens, deps.Logger)
	sessionHandler.AttachLimiter(deps.Limiter)
	eventsHandler := handlers.NewEventsHandler(deps.AnalyticsService)
	authMW := SessionAuthMiddleware(deps.Tokens, deps.Logger)

	r.Get("/healthz", healthHandler.Get)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/catalog", catalogHandler.Get)
		r.Post("/sessions", sessionHandler.Create)

		r.Route("/session", func(r chi.Router) {
			r.Use(authMW)
			r.Get("/", sessionHandler.Get)
			r.Delete("/", sessionHandler.Delete)
			r.Post("/platform", sessionHandler.SelectPlatform)
			r.Post("/login", sessionHandler.Login)
			r.Post("/tier", sessionHandler.SelectTier)
			r.Post("/generate", sessionHandler.Generate)
			r.Post("/logout", sessionHandler.Logout)
			r.Post("/events", eventsHandler.Batch)
		})
	})
}
