package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/xavierca1/onbongo-leads/internal/config"
	"github.com/xavierca1/onbongo-leads/internal/infra/http/handlers"
	"github.com/xavierca1/onbongo-leads/internal/infra/http/middleware"
)

type RouterDeps struct {
	Config   config.Config
	Log      logrus.FieldLogger
	Auth     *middleware.Authenticator
	Leads    *handlers.LeadHandler
	Admin    *handlers.AdminHandler
	Login    *handlers.AuthHandler
	Tracking *handlers.TrackingHandler
	Health   *handlers.HealthHandler
}

// NewRouter expõe as rotas na raiz e também sob /api, como o front antigo usava.
func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLogger(d.Log))
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.Config.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", d.Health.Handle)
	r.Handle("/metrics", promhttp.Handler())

	routes := func(r chi.Router) {
		r.Post("/leads", d.Leads.CaptureLead)
		r.Get("/tracking/config", d.Tracking.Config)
		r.Post("/tracking/event", d.Tracking.Event)
		r.Post("/admin/login", d.Login.Login)

		r.Group(func(r chi.Router) {
			r.Use(d.Auth.RequireAdmin)

			r.Get("/leads", d.Leads.List)
			r.Get("/leads/{id}", d.Leads.Get)

			r.Get("/admin/me", d.Login.Me)
			r.Get("/admin/settings", d.Admin.ListSettings)
			r.Post("/admin/settings", d.Admin.UpdateSetting)
			r.Post("/admin/settings/bulk", d.Admin.BulkUpdateSettings)
			r.Get("/admin/dashboard", d.Admin.Dashboard)
			r.Get("/admin/deliveries", d.Admin.Deliveries)
			r.Post("/admin/webhook/retry/{leadId}", d.Admin.RetryWebhook)
			r.Post("/admin/conversions/retry/{leadId}", d.Admin.RetryConversions)
			r.Post("/admin/webhook/test", d.Admin.TestWebhook)
		})
	}

	r.Group(routes)
	r.Route("/api", routes)

	return r
}
