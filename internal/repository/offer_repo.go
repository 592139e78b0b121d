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

const offerColumns = `id, tender_id, company_id, company_name, total_excl_tax, total_incl_tax, delay_proposal, status, created_at`

// OfferRepository persists offers and their line items.
type OfferRepository interface {
	SubmitOffer(ctx context.Context, tenderID string, req models.OfferRequest) (*models.Offer, error)
	GetOffer(ctx context.Context, offerID string) (*models.Offer, error)
	ListOffers(ctx context.Context, tenderID string) ([]models.Offer, error)
}

// PostgresOfferRepository implements OfferRepository over pgx.
type PostgresOfferRepository struct {
	DB db.Pool
}

// NewPostgresOfferRepository creates a new PostgresOfferRepository.
func NewPostgresOfferRepository(pool db.Pool) *PostgresOfferRepository {
	return &PostgresOfferRepository{DB: pool}
}

// SubmitOffer inserts the offer with its line items and bumps the tender to
// IN_PROGRESS when it was still DRAFT or INVITED. The bump is conditional so
// a racing submit can never reopen a terminal tender.
func (r *PostgresOfferRepository) SubmitOffer(ctx context.Context, tenderID string, req models.OfferRequest) (*models.Offer, error) {
	newOffer := models.Offer{
		ID:            uuid.New().String(),
		TenderID:      tenderID,
		CompanyID:     req.CompanyID,
		CompanyName:   req.CompanyName,
		TotalExclTax:  req.TotalExclTax,
		TotalInclTax:  req.TotalInclTax,
		DelayProposal: req.DelayProposal,
		Status:        models.OfferSubmitted,
		CreatedAt:     time.Now().UTC(),
		Items:         req.Items,
	}

	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "offer: begin submit tx")
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO offer (id, tender_id, company_id, company_name, total_excl_tax, total_incl_tax, delay_proposal, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		newOffer.ID,
		newOffer.TenderID,
		newOffer.CompanyID,
		newOffer.CompanyName,
		newOffer.TotalExclTax,
		newOffer.TotalInclTax,
		newOffer.DelayProposal,
		newOffer.Status,
		newOffer.CreatedAt)
	if err != nil {
		return nil, eris.Wrap(err, "offer: insert")
	}

	for position, item := range newOffer.Items {
		_, err = tx.Exec(ctx, `
			INSERT INTO offer_item (id, offer_id, position, label, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			uuid.New().String(), newOffer.ID, position, item.Label, item.Quantity, item.UnitPrice)
		if err != nil {
			return nil, eris.Wrap(err, "offer: insert line item")
		}
	}

	_, err = tx.Exec(ctx,
		`UPDATE tender SET status = $1, updated_at = now() WHERE id = $2 AND status IN ($3, $4)`,
		models.TenderInProgress, tenderID, models.TenderDraft, models.TenderInvited)
	if err != nil {
		return nil, eris.Wrap(err, "offer: bump tender status")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, eris.Wrap(err, "offer: commit submit tx")
	}
	return &newOffer, nil
}

// GetOffer returns a single offer with its line items.
func (r *PostgresOfferRepository) GetOffer(ctx context.Context, offerID string) (*models.Offer, error) {
	var offer models.Offer
	err := r.DB.QueryRow(ctx,
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
		return nil, eris.Wrap(err, "offer: get")
	}

	items, err := listLineItems(ctx, r.DB, []string{offer.ID})
	if err != nil {
		return nil, err
	}
	offer.Items = items[offer.ID]
	return &offer, nil
}

// ListOffers returns the tender's offers with line items, in submission order.
func (r *PostgresOfferRepository) ListOffers(ctx context.Context, tenderID string) ([]models.Offer, error) {
	return listOffers(ctx, r.DB, tenderID)
}

func listOffers(ctx context.Context, q Querier, tenderID string) ([]models.Offer, error) {
	rows, err := q.Query(ctx,
		`SELECT `+offerColumns+` FROM offer WHERE tender_id = $1 ORDER BY created_at, id`, tenderID)
	if err != nil {
		return nil, eris.Wrap(err, "offer: list")
	}
	defer rows.Close()

	var offers []models.Offer
	var offerIDs []string
	for rows.Next() {
		var offer models.Offer
		if err := rows.Scan(
			&offer.ID,
			&offer.TenderID,
			&offer.CompanyID,
			&offer.CompanyName,
			&offer.TotalExclTax,
			&offer.TotalInclTax,
			&offer.DelayProposal,
			&offer.Status,
			&offer.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "offer: scan list row")
		}
		offers = append(offers, offer)
		offerIDs = append(offerIDs, offer.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "offer: list rows")
	}

	if len(offers) == 0 {
		return nil, nil
	}

	itemsByOffer, err := listLineItems(ctx, q, offerIDs)
	if err != nil {
		return nil, err
	}
	for i := range offers {
		offers[i].Items = itemsByOffer[offers[i].ID]
	}
	return offers, nil
}

func listLineItems(ctx context.Context, q Querier, offerIDs []string) (map[string][]models.OfferLineItem, error) {
	rows, err := q.Query(ctx, `
		SELECT offer_id, label, quantity, unit_price
		FROM offer_item
		WHERE offer_id = ANY($1::uuid[])
		ORDER BY offer_id, position`, offerIDs)
	if err != nil {
		return nil, eris.Wrap(err, "offer: list line items")
	}
	defer rows.Close()

	itemsByOffer := make(map[string][]models.OfferLineItem)
	for rows.Next() {
		var offerID string
		var item models.OfferLineItem
		if err := rows.Scan(&offerID, &item.Label, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, eris.Wrap(err, "offer: scan line item")
		}
		itemsByOffer[offerID] = append(itemsByOffer[offerID], item)
	}
	return itemsByOffer, rows.Err()
}
