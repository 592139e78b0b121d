package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/batiflow/tender-service/internal/models"
	"github.com/batiflow/tender-service/internal/services"
	"github.com/batiflow/tender-service/internal/utils"
)

// OfferHandler serves offer intake, comparison and adjudication.
type OfferHandler struct {
	Offers     *services.OfferService
	Comparison *services.ComparisonService
	Awards     *services.AwardService
	Timeout    time.Duration
}

// NewOfferHandler creates a new OfferHandler.
func NewOfferHandler(offers *services.OfferService, comparison *services.ComparisonService, awards *services.AwardService, timeout time.Duration) *OfferHandler {
	return &OfferHandler{Offers: offers, Comparison: comparison, Awards: awards, Timeout: timeout}
}

// SubmitOffer handles POST /api/tenders/{tenderId}/offers/new.
func (h *OfferHandler) SubmitOffer(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var req models.OfferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	offer, err := h.Offers.Submit(ctx, chi.URLParam(r, "tenderId"), req)
	if err != nil {
		utils.SendDomainError(w, err)
		return
	}
	utils.SendJSON(w, http.StatusCreated, offer)
}

// Compare handles GET /api/tenders/{tenderId}/comparison.
func (h *OfferHandler) Compare(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	comparison, err := h.Comparison.Compare(ctx, chi.URLParam(r, "tenderId"))
	if err != nil {
		utils.SendDomainError(w, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, comparison)
}

// Adjudicate handles POST /api/tenders/{tenderId}/adjudicate.
func (h *OfferHandler) Adjudicate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var req models.AdjudicateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	detail, err := h.Awards.Adjudicate(ctx, chi.URLParam(r, "tenderId"), req)
	if err != nil {
		utils.SendDomainError(w, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, detail)
}
