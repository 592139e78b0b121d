package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/batiflow/tender-service/internal/models"
	"github.com/batiflow/tender-service/internal/repository"
)

// OfferService handles offer intake. The invitation check here is a
// business rule of the workflow, enforced regardless of any outer
// authorization layer.
type OfferService struct {
	Offers  repository.OfferRepository
	Tenders repository.TenderRepository
	Audit   AuditRecorder
}

// NewOfferService creates a new OfferService.
func NewOfferService(offers repository.OfferRepository, tenders repository.TenderRepository, audit AuditRecorder) *OfferService {
	return &OfferService{Offers: offers, Tenders: tenders, Audit: audit}
}

// Submit validates and records a company's offer against a tender. Line
// items are stored as given; cross-offer validation is deferred to the
// comparison and to human review.
func (s *OfferService) Submit(ctx context.Context, tenderID string, req models.OfferRequest) (*models.Offer, error) {
	if req.CompanyID == "" {
		return nil, models.NewError(models.KindValidation, "missing required field: companyId")
	}
	if req.TotalExclTax < 0 || req.TotalInclTax < 0 {
		return nil, models.NewError(models.KindValidation, "offer totals must not be negative")
	}
	for _, item := range req.Items {
		if item.Label == "" {
			return nil, models.NewError(models.KindValidation, "line item labels must not be empty")
		}
	}

	tender, err := s.Tenders.GetTender(ctx, tenderID)
	if err != nil {
		return nil, err
	}
	if tender.Status.Terminal() {
		return nil, models.NewError(models.KindValidation, "tender %s is %s and no longer accepts offers", tenderID, tender.Status)
	}

	invited, err := s.Tenders.HasInvitation(ctx, tenderID, req.CompanyID)
	if err != nil {
		return nil, err
	}
	if !invited {
		return nil, models.NewError(models.KindNotInvited, "company %s is not invited to tender %s", req.CompanyID, tenderID)
	}

	offer, err := s.Offers.SubmitOffer(ctx, tenderID, req)
	if err != nil {
		return nil, err
	}

	if err := s.Audit.Record(ctx, models.AuditEvent{
		Action:   models.AuditOfferReceived,
		TenderID: tenderID,
		ActorID:  req.ActorID,
		Metadata: map[string]string{"offerId": offer.ID, "companyId": req.CompanyID},
	}); err != nil {
		zap.L().Warn("audit record failed",
			zap.String("action", models.AuditOfferReceived),
			zap.String("tenderId", tenderID),
			zap.Error(err))
	}

	return offer, nil
}
