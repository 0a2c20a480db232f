package http

import (
	"context"
	"net/http"

	"github.com/contoso-notify/internal/config"
	jwtinfra "github.com/contoso-notify/internal/infrastructure/jwt"
	"github.com/contoso-notify/internal/transport/http/handler"
	appmiddleware "github.com/contoso-notify/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router. Background work
// owned by the router stops when ctx is done.
func NewRouter(ctx context.Context, cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	if cfg.TrustProxy {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	eventsRL := appmiddleware.NewRateLimiter(rate.Limit(cfg.EventsRateLimit), cfg.EventsRateBurst)
	go func() {
		<-ctx.Done()
		eventsRL.Close()
	}()

	producerMw := []func(http.Handler) http.Handler{eventsRL.Limit}
	if deps.ProducerAuth != nil {
		producerMw = append(producerMw,
			appmiddleware.Auth(deps.ProducerAuth),
			appmiddleware.RequireScope(jwtinfra.ScopePublish),
		)
	}

	healthH := handler.NewHealthHandler(deps.TransportName, deps.QueueDepth)
	notifH := handler.NewNotificationHandler(deps.Notifications)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)

		r.Get("/notifications", notifH.List)
		r.Post("/notifications/mark-read", notifH.MarkAsRead)
		r.Post("/notifications/{id}/read", notifH.MarkAsRead)
		r.With(producerMw...).Post("/notifications/events", notifH.Publish)
	})

	return r
}
