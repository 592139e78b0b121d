package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/batiflow/tender-service/internal/models"
	"github.com/batiflow/tender-service/internal/repository"
)

// AwardService is the adjudication orchestrator: the one state-changing,
// multi-entity operation of the workflow. The transactional boundary lives
// in the award repository; this layer validates input, logs the outcome and
// refreshes the detail view.
type AwardService struct {
	Awards  repository.AwardRepository
	Tenders repository.TenderRepository
}

// NewAwardService creates a new AwardService.
func NewAwardService(awards repository.AwardRepository, tenders repository.TenderRepository) *AwardService {
	return &AwardService{Awards: awards, Tenders: tenders}
}

// Adjudicate atomically awards the tender to the given offer, rejecting all
// siblings, creating the downstream contract and, when a matching budget
// entry exists, its allocation. Re-adjudication fails with
// AlreadyAdjudicated rather than re-running the side effects.
func (s *AwardService) Adjudicate(ctx context.Context, tenderID string, req models.AdjudicateRequest) (*models.TenderDetail, error) {
	if req.WinningOfferID == "" {
		return nil, models.NewError(models.KindValidation, "missing required field: winningOfferId")
	}

	contract, err := s.Awards.Adjudicate(ctx, tenderID, req.WinningOfferID, req.ActorID)
	if err != nil {
		return nil, err
	}

	zap.L().Info("tender adjudicated",
		zap.String("component", "award_service"),
		zap.String("tenderId", tenderID),
		zap.String("winningOfferId", req.WinningOfferID),
		zap.String("contractId", contract.ID),
		zap.Float64("amount", contract.Amount))

	return s.Tenders.GetTenderDetail(ctx, tenderID)
}
