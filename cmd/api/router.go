package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xavierca1/ligue-leads/internal/infra/http/handlers"
	"github.com/xavierca1/ligue-leads/internal/infra/http/middleware"
)

type routerDeps struct {
	Webhook      *handlers.WebhookHandler
	Admin        *handlers.AdminHandler
	Logs         *handlers.LogsHandler
	Health       *handlers.HealthHandler
	Limiter      middleware.Limiter
	WebhookToken string
	AdminToken   string
	CORSOrigins  []string
	TrustProxy   bool
}

func newRouter(d routerDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	if d.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
	}))

	r.Get("/health", d.Health.Handle)
	r.Handle("/metrics", promhttp.Handler())

	// Webhooks dos formulários
	r.Route("/api/webhook", func(r chi.Router) {
		r.Use(middleware.RateLimit(d.Limiter, nil))
		r.Use(middleware.BearerAuth(d.WebhookToken))
		r.Post("/lead/{roundRobinId}", d.Webhook.HandleByID)
		r.Post("/lead-by-source", d.Webhook.HandleBySource)
	})

	// Administração
	r.Group(func(r chi.Router) {
		r.Use(middleware.BearerAuth(d.AdminToken))

		r.Route("/round-robins/{id}", func(r chi.Router) {
			r.Post("/launch", d.Admin.Launch)
			r.Get("/participants", d.Admin.ListParticipants)
			r.Post("/reorder-participants", d.Admin.Reorder)
			r.Post("/participants/{participantId}/toggle-pause", d.Admin.TogglePause)
			r.Delete("/participants/{participantId}", d.Admin.RemoveParticipant)
		})
		r.Post("/leads/{id}/mark-junk", d.Admin.MarkJunk)
		r.Post("/junk-rules", d.Admin.AddJunkRule)

		r.Route("/logs", func(r chi.Router) {
			r.Get("/lead/{leadId}", d.Logs.ByLead)
			r.Get("/round-robin/{id}", d.Logs.ByRotation)
			r.Get("/errors", d.Logs.Failures)
			r.Get("/discord-stats", d.Logs.NotificationStats)
			r.Get("/discord-stats/{roundRobinId}", d.Logs.NotificationStats)
		})
	})

	return r
}
