package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/batiflow/tender-service/internal/db"
	"github.com/batiflow/tender-service/internal/models"
)

// AwardRepository performs the adjudication of a tender as one atomic unit:
// either all of reject-all, mark-winner, tender transition, contract,
// allocation and audit entry become visible, or none do.
type AwardRepository interface {
	Adjudicate(ctx context.Context, tenderID, winningOfferID, actorID string) (*models.Contract, error)
}

// PostgresAwardRepository implements AwardRepository in a single pgx
// transaction.
type PostgresAwardRepository struct {
	DB db.Pool
}

// NewPostgresAwardRepository creates a new PostgresAwardRepository.
func NewPostgresAwardRepository(pool db.Pool) *PostgresAwardRepository {
	return &PostgresAwardRepository{DB: pool}
}

// Adjudicate awards the tender to the given offer. Two concurrent calls on
// the same tender cannot both succeed: the conditional claim on the tender
// row decides the race and the loser fails with AlreadyAdjudicated.
func (r *PostgresAwardRepository) Adjudicate(ctx context.Context, tenderID, winningOfferID, actorID string) (*models.Contract, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "award: begin tx")
	}
	defer tx.Rollback(ctx)

	tender, err := claimTender(ctx, tx, tenderID)
	if err != nil {
		return nil, err
	}

	winner, err := loadWinningOffer(ctx, tx, tenderID, winningOfferID)
	if err != nil {
		return nil, err
	}

	project, err := resolveProject(ctx, tx, tender.ProjectID)
	if err != nil {
		return nil, err
	}

	if err := flipOfferStatuses(ctx, tx, tenderID, winningOfferID); err != nil {
		return nil, err
	}

	taxRate := project.DefaultTaxRate
	if tender.TaxRate != nil {
		taxRate = *tender.TaxRate
	}

	contract := models.Contract{
		ID:         uuid.New().String(),
		TenderID:   tender.ID,
		ProjectID:  tender.ProjectID,
		CompanyID:  winner.CompanyID,
		Amount:     winner.TotalInclTax,
		TaxRate:    taxRate,
		BudgetCode: tender.BudgetCode,
		CreatedAt:  time.Now().UTC(),
	}
	if err := insertContract(ctx, tx, contract); err != nil {
		return nil, err
	}

	// A missing budget entry is not an error; the contract simply stays
	// unallocated.
	if tender.BudgetCode != nil {
		entryID, err := resolveBudgetEntry(ctx, tx, tender.ProjectID, *tender.BudgetCode)
		if err != nil {
			return nil, err
		}
		if entryID != nil {
			allocation := models.BudgetAllocation{
				ID:            uuid.New().String(),
				ContractID:    contract.ID,
				BudgetEntryID: *entryID,
				Amount:        contract.Amount,
				CreatedAt:     contract.CreatedAt,
			}
			if err := insertAllocation(ctx, tx, allocation); err != nil {
				return nil, err
			}
		}
	}

	event := models.AuditEvent{
		ID:       uuid.New().String(),
		Action:   models.AuditAdjudicated,
		TenderID: tender.ID,
		ActorID:  actorID,
		Metadata: map[string]string{
			"winningOfferId": winner.ID,
			"contractId":     contract.ID,
			"companyId":      winner.CompanyID,
		},
		CreatedAt: time.Now().UTC(),
	}
	if tender.BudgetCode != nil {
		event.Metadata["budgetCode"] = *tender.BudgetCode
	}
	if err := insertAuditEvent(ctx, tx, event); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, eris.Wrap(err, "award: commit tx")
	}
	return &contract, nil
}

// claimTender moves the tender to ADJUDICATED if it is still awardable.
// Zero rows affected means either the tender does not exist or a concurrent
// call already claimed it; the follow-up read tells the two apart.
func claimTender(ctx context.Context, tx pgx.Tx, tenderID string) (*models.Tender, error) {
	tender, err := scanTender(tx.QueryRow(ctx, `
		UPDATE tender SET status = $1, updated_at = now()
		WHERE id = $2 AND status NOT IN ($3, $4)
		RETURNING `+tenderColumns,
		models.TenderAdjudicated, tenderID, models.TenderAdjudicated, models.TenderCancelled))
	if err == nil {
		return tender, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrap(err, "award: claim tender")
	}

	var status models.TenderStatus
	err = tx.QueryRow(ctx, `SELECT status FROM tender WHERE id = $1`, tenderID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NewError(models.KindNotFound, "tender %s not found", tenderID)
	}
	if err != nil {
		return nil, eris.Wrap(err, "award: read tender status")
	}
	return nil, models.NewError(models.KindAlreadyAdjudicated, "tender %s is %s and can no longer be awarded", tenderID, status)
}

// loadWinningOffer reads the chosen offer inside the transaction, so only an
// offer visible to this transaction can win.
func loadWinningOffer(ctx context.Context, tx pgx.Tx, tenderID, offerID string) (*models.Offer, error) {
	var offer models.Offer
	err := tx.QueryRow(ctx,
		`SELECT `+offerColumns+` FROM offer WHERE id = $1`, offerID).Scan(
		&offer.ID,
		&offer.TenderID,
		&offer.CompanyID,
		&offer.CompanyName,
		&offer.TotalExclTax,
		&offer.TotalInclTax,
		&offer.DelayProposal,
		&offer.Status,
		&offer.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NewError(models.KindInvalidOffer, "offer %s not found", offerID)
	}
	if err != nil {
		return nil, eris.Wrap(err, "award: load winning offer")
	}
	if offer.TenderID != tenderID {
		return nil, models.NewError(models.KindInvalidOffer, "offer %s belongs to tender %s, not %s", offerID, offer.TenderID, tenderID)
	}
	return &offer, nil
}

// flipOfferStatuses rejects every offer on the tender, then marks the
// winner. The two writes share the transaction and never change
// independently.
func flipOfferStatuses(ctx context.Context, tx pgx.Tx, tenderID, winningOfferID string) error {
	if _, err := tx.Exec(ctx,
		`UPDATE offer SET status = $1 WHERE tender_id = $2`,
		models.OfferRejected, tenderID); err != nil {
		return eris.Wrap(err, "award: reject offers")
	}

	tag, err := tx.Exec(ctx,
		`UPDATE offer SET status = $1 WHERE id = $2`,
		models.OfferWinner, winningOfferID)
	if err != nil {
		return eris.Wrap(err, "award: mark winner")
	}
	if tag.RowsAffected() != 1 {
		return models.NewError(models.KindInvalidOffer, "offer %s disappeared while awarding", winningOfferID)
	}
	return nil
}
