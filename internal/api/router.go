package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/sellerdesk/payout-reconciler/internal/recon"
	"github.com/sellerdesk/payout-reconciler/internal/repository"
)

// NewRouter creates the Chi router with all API routes mounted.
func NewRouter(
	svc *recon.Service,
	orderRepo *repository.OrderRepo,
	summaryRepo *repository.SummaryRepo,
	seller string,
	logger *zap.Logger,
) http.Handler {
	h := &Handlers{
		svc:         svc,
		orderRepo:   orderRepo,
		summaryRepo: summaryRepo,
		seller:      seller,
		logger:      logger,
	}

	r := chi.NewRouter()

	// Middleware.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.SetHeader("Content-Type", "application/json"))

	r.Route("/api/v1", func(r chi.Router) {
		// Reconciliation triggers.
		r.Post("/recompute", h.Recompute)
		r.Post("/batch/nightly", h.RunNightlyBatch)

		// Cached records.
		r.Get("/orders/{id}", h.GetOrder)
		r.Put("/orders/{id}/purchase-cost", h.PutPurchaseCost)
		r.Post("/orders/{id}/cancel", h.CancelOrder)

		// Aggregates.
		r.Get("/forecast", h.GetForecast)
		r.Get("/summaries/{year}/{month}", h.GetSummary)

		// Administration.
		r.Post("/admin/reset", h.ResetComputed)
	})

	return r
}
