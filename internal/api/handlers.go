package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sellerdesk/payout-reconciler/internal/domain"
	"github.com/sellerdesk/payout-reconciler/internal/recon"
	"github.com/sellerdesk/payout-reconciler/internal/repository"
)

// Handlers groups all HTTP handler methods and their dependencies.
type Handlers struct {
	svc         *recon.Service
	orderRepo   *repository.OrderRepo
	summaryRepo *repository.SummaryRepo
	seller      string
	logger      *zap.Logger
}

// --- helpers ---

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response", zap.Error(err))
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}

// --- Recompute ---

func (h *Handlers) Recompute(w http.ResponseWriter, r *http.Request) {
	var req recon.RecomputeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if len(req.OrderIDs) == 0 {
		h.writeError(w, http.StatusBadRequest, "order_ids is required")
		return
	}
	if req.Month < 1 || req.Month > 12 || req.Year < 2000 {
		h.writeError(w, http.StatusBadRequest, "valid year and month are required")
		return
	}

	result, err := h.svc.Recompute(r.Context(), req)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// --- RunNightlyBatch ---

func (h *Handlers) RunNightlyBatch(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.RunNightlyBatch(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, summary)
}

// --- GetOrder ---

func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rec, err := h.orderRepo.Get(id)
	if errors.Is(err, domain.ErrNotFound) {
		h.writeError(w, http.StatusNotFound, "order not found")
		return
	}
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, rec)
}

// --- PutPurchaseCost ---

func (h *Handlers) PutPurchaseCost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body struct {
		Amount decimal.Decimal `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if body.Amount.IsNegative() {
		h.writeError(w, http.StatusBadRequest, "amount must not be negative")
		return
	}

	if err := h.orderRepo.UpsertPurchaseCost(id, body.Amount); err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"order_id": id,
		"amount":   body.Amount.String(),
	})
}

// --- CancelOrder ---

func (h *Handlers) CancelOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.orderRepo.MarkCancelled(id); err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"order_id": id, "status": "cancelled"})
}

// --- GetForecast ---

func (h *Handlers) GetForecast(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.svc.Forecast())
}

// --- GetSummary ---

func (h *Handlers) GetSummary(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid year")
		return
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil || month < 1 || month > 12 {
		h.writeError(w, http.StatusBadRequest, "invalid month")
		return
	}

	summary, err := h.summaryRepo.Get(h.seller, year, month)
	if errors.Is(err, domain.ErrNotFound) {
		// Fail closed: an absent snapshot reads as empty, not as an error.
		h.writeJSON(w, http.StatusOK, &domain.MonthlyProfitSummary{
			Seller:  h.seller,
			Year:    year,
			Month:   month,
			Details: []domain.OrderResult{},
		})
		return
	}
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, summary)
}

// --- ResetComputed ---

func (h *Handlers) ResetComputed(w http.ResponseWriter, r *http.Request) {
	n, err := h.orderRepo.ResetComputed()
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]int64{"reset": n})
}
