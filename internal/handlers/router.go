package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"sourcing/internal/auth"
	"sourcing/internal/logger"
	"sourcing/internal/metrics"
)

// NewRouter регистрирует маршруты. /api/ping и /metrics открыты, остальное требует токен
func NewRouter(h *Handler, authn *auth.Authenticator, m *metrics.Metrics, log zerolog.Logger) http.Handler {
	manage := auth.Require(auth.PermSourcingManage)
	respondOrManage := auth.Require(auth.PermSourcingManage, auth.PermSourcingRespond)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.Middleware(log))
	r.Use(middleware.Recoverer)
	if m != nil {
		r.Use(m.Middleware)
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/ping", h.PingHandler)

		r.Group(func(r chi.Router) {
			r.Use(authn.Middleware)

			r.Route("/rfx-portal", func(r chi.Router) {
				r.Get("/", h.ListEventsHandler)
				r.With(manage).Post("/", h.CreateEventHandler)
				r.With(manage).Post("/quotations/analyze", h.AnalyzeQuotationsHandler)

				r.Route("/{rfxId}", func(r chi.Router) {
					r.Get("/", h.GetEventHandler)
					r.With(manage).Patch("/status", h.UpdateEventStatusHandler)
					r.With(manage).Get("/responses", h.ListResponsesHandler)
					r.With(respondOrManage).Post("/responses", h.SubmitResponseHandler)
					r.With(manage).Post("/responses/{responseId}/award", h.AwardResponseHandler)
				})
			})

			r.Route("/suppliers", func(r chi.Router) {
				r.Get("/", h.ListSuppliersHandler)
				r.With(manage).Post("/", h.CreateSupplierHandler)
				r.Get("/{supplierId}", h.GetSupplierHandler)
				r.With(manage).Delete("/{supplierId}", h.DeleteSupplierHandler)
			})

			r.With(manage).Get("/requests/{requestId}/purchase-order", h.GetRequestPurchaseOrderHandler)
		})
	})

	return r
}
