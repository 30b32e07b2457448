package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/stokes-dk/reg-man-rc-sub001/internal/api"
	"github.com/stokes-dk/reg-man-rc-sub001/internal/config"
	"github.com/stokes-dk/reg-man-rc-sub001/internal/http/ratelimit"
	"github.com/stokes-dk/reg-man-rc-sub001/internal/metrics"
	"github.com/stokes-dk/reg-man-rc-sub001/internal/provider"
	"github.com/stokes-dk/reg-man-rc-sub001/internal/store"
)

// NewRouter wires all HTTP routes.
func NewRouter(cfg *config.Config, st *store.Store, catalog *provider.Catalog) http.Handler {
	r := chi.NewRouter()

	// 20 requests per second, burst of 50; generous enough for
	// calendar clients polling the feed.
	apiRateLimiter := ratelimit.NewIPRateLimiter(rate.Limit(20), 50, 5*time.Minute)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware())

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := st.HealthCheck(ctx); err != nil {
			http.Error(w, "unready", http.StatusServiceUnavailable)
			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if cfg.PrometheusEnabled {
		r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			metrics.Handler().ServeHTTP(w, r)
		})
	}

	h := api.NewHandler(cfg, st, catalog)

	r.Get("/calendar.ics", h.CalendarFeed)

	r.Route("/api", func(r chi.Router) {
		r.Use(apiRateLimiter.Middleware())

		r.Get("/events", h.ListEvents)
		r.Get("/event", h.GetEvent)
		r.Post("/events", h.CreateEvent)
		r.Put("/events/{id}", h.UpdateEvent)
		r.Delete("/events/{id}", h.DeleteEvent)
		r.Post("/events/import", h.ImportCalendar)

		r.Get("/venues", h.ListVenues)
		r.Post("/venues", h.CreateVenue)
		r.Get("/venues/{id}", h.GetVenue)

		r.Get("/categories", h.ListCategories)
		r.Post("/categories", h.CreateCategory)

		r.Get("/items", h.ListItemRegistrations)
		r.Post("/items", h.CreateItemRegistration)
		r.Post("/items/{id}/outcome", h.UpdateItemOutcome)

		r.Get("/volunteers", h.ListVolunteerRegistrations)
		r.Post("/volunteers", h.CreateVolunteerRegistration)
	})

	return r
}
