package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/rotisserie/eris"

	"github.com/batiflow/tender-service/internal/db"
	"github.com/batiflow/tender-service/internal/models"
)

// Querier is the query surface shared by db.Pool and pgx.Tx, so the same
// statement helpers run inside and outside a transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const tenderColumns = `id, project_id, title, budget_code, description, question_deadline, offer_deadline, tax_rate, status, open_clarifications, created_at, updated_at`

// TenderRepository persists tenders, invitations and clarifications.
type TenderRepository interface {
	CreateTender(ctx context.Context, req models.TenderRequest, status models.TenderStatus) (*models.Tender, error)
	GetTender(ctx context.Context, tenderID string) (*models.Tender, error)
	GetTenderDetail(ctx context.Context, tenderID string) (*models.TenderDetail, error)
	ListTenders(ctx context.Context, limit, offset int, statuses []string) ([]models.Tender, error)
	InviteCompanies(ctx context.Context, tenderID string, companyIDs []string) ([]string, error)
	HasInvitation(ctx context.Context, tenderID, companyID string) (bool, error)
	TransitionStatus(ctx context.Context, tenderID string, from []models.TenderStatus, to models.TenderStatus) (bool, error)
	AddClarification(ctx context.Context, tenderID, companyID, message string) (*models.Tender, error)
}

// PostgresTenderRepository implements TenderRepository over pgx.
type PostgresTenderRepository struct {
	DB db.Pool
}

// NewPostgresTenderRepository creates a new PostgresTenderRepository.
func NewPostgresTenderRepository(pool db.Pool) *PostgresTenderRepository {
	return &PostgresTenderRepository{DB: pool}
}

func scanTender(row pgx.Row) (*models.Tender, error) {
	var t models.Tender
	err := row.Scan(
		&t.ID,
		&t.ProjectID,
		&t.Title,
		&t.BudgetCode,
		&t.Description,
		&t.QuestionDeadline,
		&t.OfferDeadline,
		&t.TaxRate,
		&t.Status,
		&t.OpenClarifications,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTender inserts a tender and, when companies were supplied at
// creation time, their invitations in the same transaction.
func (r *PostgresTenderRepository) CreateTender(ctx context.Context, req models.TenderRequest, status models.TenderStatus) (*models.Tender, error) {
	now := time.Now().UTC()
	newTender := models.Tender{
		ID:               uuid.New().String(),
		ProjectID:        req.ProjectID,
		Title:            req.Title,
		BudgetCode:       req.BudgetCode,
		Description:      req.Description,
		QuestionDeadline: req.QuestionDeadline,
		OfferDeadline:    req.OfferDeadline,
		TaxRate:          req.TaxRate,
		Status:           status,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "tender: begin create tx")
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO tender (id, project_id, title, budget_code, description, question_deadline, offer_deadline, tax_rate, status, open_clarifications, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 0, $10, $11)`,
		newTender.ID,
		newTender.ProjectID,
		newTender.Title,
		newTender.BudgetCode,
		newTender.Description,
		newTender.QuestionDeadline,
		newTender.OfferDeadline,
		newTender.TaxRate,
		newTender.Status,
		newTender.CreatedAt,
		newTender.UpdatedAt)
	if err != nil {
		return nil, eris.Wrap(err, "tender: insert")
	}

	if _, err := insertInvitations(ctx, tx, newTender.ID, req.InvitedCompanyIDs); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, eris.Wrap(err, "tender: commit create tx")
	}
	return &newTender, nil
}

// GetTender returns a single tender row.
func (r *PostgresTenderRepository) GetTender(ctx context.Context, tenderID string) (*models.Tender, error) {
	tender, err := scanTender(r.DB.QueryRow(ctx,
		`SELECT `+tenderColumns+` FROM tender WHERE id = $1`, tenderID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NewError(models.KindNotFound, "tender %s not found", tenderID)
	}
	if err != nil {
		return nil, eris.Wrap(err, "tender: get")
	}
	return tender, nil
}

// GetTenderDetail returns a tender with its invited companies and offers.
func (r *PostgresTenderRepository) GetTenderDetail(ctx context.Context, tenderID string) (*models.TenderDetail, error) {
	tender, err := r.GetTender(ctx, tenderID)
	if err != nil {
		return nil, err
	}

	invited, err := r.listInvitedCompanies(ctx, tenderID)
	if err != nil {
		return nil, err
	}

	offers, err := listOffers(ctx, r.DB, tenderID)
	if err != nil {
		return nil, err
	}

	return &models.TenderDetail{
		Tender:            *tender,
		InvitedCompanyIDs: invited,
		Offers:            offers,
	}, nil
}

// ListTenders returns a page of tenders, optionally filtered by status.
func (r *PostgresTenderRepository) ListTenders(ctx context.Context, limit, offset int, statuses []string) ([]models.Tender, error) {
	query := `SELECT ` + tenderColumns + ` FROM tender`
	var filters []string
	var args []interface{}
	argIndex := 1

	if len(statuses) > 0 {
		filters = append(filters, fmt.Sprintf("status = ANY($%d)", argIndex))
		args = append(args, pq.Array(statuses))
		argIndex++
	}

	if len(filters) > 0 {
		query += " WHERE " + strings.Join(filters, " AND ")
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, offset)

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "tender: list")
	}
	defer rows.Close()

	var tenders []models.Tender
	for rows.Next() {
		var t models.Tender
		if err := rows.Scan(
			&t.ID,
			&t.ProjectID,
			&t.Title,
			&t.BudgetCode,
			&t.Description,
			&t.QuestionDeadline,
			&t.OfferDeadline,
			&t.TaxRate,
			&t.Status,
			&t.OpenClarifications,
			&t.CreatedAt,
			&t.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "tender: scan list row")
		}
		tenders = append(tenders, t)
	}
	return tenders, rows.Err()
}

// insertInvitations adds the given companies to the tender's invited set and
// returns only the newly added ones. The conflict target is the natural key,
// so overlapping concurrent invites converge to the same union.
func insertInvitations(ctx context.Context, q Querier, tenderID string, companyIDs []string) ([]string, error) {
	if len(companyIDs) == 0 {
		return nil, nil
	}

	rows, err := q.Query(ctx, `
		INSERT INTO invitation (tender_id, company_id, invited_at)
		SELECT $1, unnest($2::uuid[]), now()
		ON CONFLICT (tender_id, company_id) DO NOTHING
		RETURNING company_id`,
		tenderID, companyIDs)
	if err != nil {
		return nil, eris.Wrap(err, "invitation: insert")
	}
	defer rows.Close()

	var added []string
	for rows.Next() {
		var companyID string
		if err := rows.Scan(&companyID); err != nil {
			return nil, eris.Wrap(err, "invitation: scan")
		}
		added = append(added, companyID)
	}
	return added, rows.Err()
}

// InviteCompanies persists the set difference between the requested
// companies and the already-invited ones.
func (r *PostgresTenderRepository) InviteCompanies(ctx context.Context, tenderID string, companyIDs []string) ([]string, error) {
	return insertInvitations(ctx, r.DB, tenderID, companyIDs)
}

func (r *PostgresTenderRepository) listInvitedCompanies(ctx context.Context, tenderID string) ([]string, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT company_id FROM invitation WHERE tender_id = $1 ORDER BY invited_at, company_id`, tenderID)
	if err != nil {
		return nil, eris.Wrap(err, "invitation: list")
	}
	defer rows.Close()

	var companies []string
	for rows.Next() {
		var companyID string
		if err := rows.Scan(&companyID); err != nil {
			return nil, eris.Wrap(err, "invitation: scan")
		}
		companies = append(companies, companyID)
	}
	return companies, rows.Err()
}

// HasInvitation reports whether the company holds an invitation for the tender.
func (r *PostgresTenderRepository) HasInvitation(ctx context.Context, tenderID, companyID string) (bool, error) {
	var invited bool
	err := r.DB.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM invitation WHERE tender_id = $1 AND company_id = $2)`,
		tenderID, companyID).Scan(&invited)
	if err != nil {
		return false, eris.Wrap(err, "invitation: exists")
	}
	return invited, nil
}

// TransitionStatus conditionally advances the tender's status. It reports
// false without error when the tender was no longer in any of the expected
// source states, which callers treat as "someone else moved it first".
func (r *PostgresTenderRepository) TransitionStatus(ctx context.Context, tenderID string, from []models.TenderStatus, to models.TenderStatus) (bool, error) {
	fromValues := make([]string, len(from))
	for i, s := range from {
		fromValues[i] = string(s)
	}

	tag, err := r.DB.Exec(ctx,
		`UPDATE tender SET status = $1, updated_at = now() WHERE id = $2 AND status = ANY($3)`,
		to, tenderID, pq.Array(fromValues))
	if err != nil {
		return false, eris.Wrap(err, "tender: transition status")
	}
	return tag.RowsAffected() > 0, nil
}

// AddClarification appends one clarification and bumps the tender's open
// counter, returning the refreshed tender row.
func (r *PostgresTenderRepository) AddClarification(ctx context.Context, tenderID, companyID, message string) (*models.Tender, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "clarification: begin tx")
	}
	defer tx.Rollback(ctx)

	tender, err := scanTender(tx.QueryRow(ctx, `
		UPDATE tender SET open_clarifications = open_clarifications + 1, updated_at = now()
		WHERE id = $1
		RETURNING `+tenderColumns, tenderID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NewError(models.KindNotFound, "tender %s not found", tenderID)
	}
	if err != nil {
		return nil, eris.Wrap(err, "clarification: bump counter")
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO clarification (id, tender_id, company_id, message, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		uuid.New().String(), tenderID, companyID, message, time.Now().UTC())
	if err != nil {
		return nil, eris.Wrap(err, "clarification: insert")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, eris.Wrap(err, "clarification: commit tx")
	}
	return tender, nil
}
