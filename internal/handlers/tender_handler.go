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

// TenderHandler serves the tender lifecycle endpoints.
type TenderHandler struct {
	Service *services.TenderService
	Timeout time.Duration
}

// NewTenderHandler creates a new TenderHandler.
func NewTenderHandler(service *services.TenderService, timeout time.Duration) *TenderHandler {
	return &TenderHandler{Service: service, Timeout: timeout}
}

// CreateTender handles POST /api/tenders/new.
func (h *TenderHandler) CreateTender(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var req models.TenderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tender, err := h.Service.CreateTender(ctx, req)
	if err != nil {
		utils.SendDomainError(w, err)
		return
	}
	utils.SendJSON(w, http.StatusCreated, tender)
}

// GetTenders handles GET /api/tenders.
func (h *TenderHandler) GetTenders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	limit, offset, err := utils.ParseLimitOffset(r.URL.Query().Get("limit"), r.URL.Query().Get("offset"))
	if err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	statuses := r.URL.Query()["status"]

	tenders, err := h.Service.ListTenders(ctx, limit, offset, statuses)
	if err != nil {
		utils.SendDomainError(w, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, tenders)
}

// GetTender handles GET /api/tenders/{tenderId}.
func (h *TenderHandler) GetTender(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	detail, err := h.Service.GetTender(ctx, chi.URLParam(r, "tenderId"))
	if err != nil {
		utils.SendDomainError(w, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, detail)
}

// Invite handles POST /api/tenders/{tenderId}/invite.
func (h *TenderHandler) Invite(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var req models.InviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	detail, err := h.Service.Invite(ctx, chi.URLParam(r, "tenderId"), req)
	if err != nil {
		utils.SendDomainError(w, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, detail)
}

// AddClarification handles POST /api/tenders/{tenderId}/clarifications.
func (h *TenderHandler) AddClarification(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var req models.ClarificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tender, err := h.Service.AddClarification(ctx, chi.URLParam(r, "tenderId"), req)
	if err != nil {
		utils.SendDomainError(w, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, tender)
}

// Cancel handles POST /api/tenders/{tenderId}/cancel.
func (h *TenderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var req struct {
		ActorID string `json:"actorId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tender, err := h.Service.CancelTender(ctx, chi.URLParam(r, "tenderId"), req.ActorID)
	if err != nil {
		utils.SendDomainError(w, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, tender)
}
