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

// The helpers below take a Querier so the adjudication transaction can run
// them against its pgx.Tx while the services use the shared pool.

func resolveProject(ctx context.Context, q Querier, projectID string) (*models.Project, error) {
	var p models.Project
	err := q.QueryRow(ctx,
		`SELECT id, organization_id, default_tax_rate FROM project WHERE id = $1`, projectID).Scan(
		&p.ID, &p.OrganizationID, &p.DefaultTaxRate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NewError(models.KindNotFound, "project %s not found", projectID)
	}
	if err != nil {
		return nil, eris.Wrap(err, "directory: resolve project")
	}
	return &p, nil
}

func resolveBudgetEntry(ctx context.Context, q Querier, projectID, budgetCode string) (*string, error) {
	var entryID string
	err := q.QueryRow(ctx,
		`SELECT id FROM budget_entry WHERE project_id = $1 AND code = $2`, projectID, budgetCode).Scan(&entryID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "directory: resolve budget entry")
	}
	return &entryID, nil
}

func insertContract(ctx context.Context, q Querier, contract models.Contract) error {
	_, err := q.Exec(ctx, `
		INSERT INTO contract (id, tender_id, project_id, company_id, amount, tax_rate, budget_code, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		contract.ID,
		contract.TenderID,
		contract.ProjectID,
		contract.CompanyID,
		contract.Amount,
		contract.TaxRate,
		contract.BudgetCode,
		contract.CreatedAt)
	if err != nil {
		return eris.Wrap(err, "ledger: insert contract")
	}
	return nil
}

func insertAllocation(ctx context.Context, q Querier, allocation models.BudgetAllocation) error {
	_, err := q.Exec(ctx, `
		INSERT INTO budget_allocation (id, contract_id, budget_entry_id, amount, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		allocation.ID,
		allocation.ContractID,
		allocation.BudgetEntryID,
		allocation.Amount,
		allocation.CreatedAt)
	if err != nil {
		return eris.Wrap(err, "ledger: insert budget allocation")
	}
	return nil
}

func insertAuditEvent(ctx context.Context, q Querier, event models.AuditEvent) error {
	_, err := q.Exec(ctx, `
		INSERT INTO audit_event (id, action, tender_id, actor_id, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		event.ID,
		event.Action,
		event.TenderID,
		event.ActorID,
		event.Metadata,
		event.CreatedAt)
	if err != nil {
		return eris.Wrap(err, "audit: insert event")
	}
	return nil
}

// PostgresProjectDirectory resolves projects and budget entries from the
// platform's shared tables.
type PostgresProjectDirectory struct {
	DB db.Pool
}

// NewPostgresProjectDirectory creates a new PostgresProjectDirectory.
func NewPostgresProjectDirectory(pool db.Pool) *PostgresProjectDirectory {
	return &PostgresProjectDirectory{DB: pool}
}

// ResolveProject returns the project's organization and default tax rate.
func (d *PostgresProjectDirectory) ResolveProject(ctx context.Context, projectID string) (*models.Project, error) {
	return resolveProject(ctx, d.DB, projectID)
}

// ResolveBudgetEntry returns the budget entry id for (project, code), or nil
// when no entry matches.
func (d *PostgresProjectDirectory) ResolveBudgetEntry(ctx context.Context, projectID, budgetCode string) (*string, error) {
	return resolveBudgetEntry(ctx, d.DB, projectID, budgetCode)
}

// PostgresAuditRecorder appends audit events to the platform's audit table.
type PostgresAuditRecorder struct {
	DB db.Pool
}

// NewPostgresAuditRecorder creates a new PostgresAuditRecorder.
func NewPostgresAuditRecorder(pool db.Pool) *PostgresAuditRecorder {
	return &PostgresAuditRecorder{DB: pool}
}

// Record appends one audit event.
func (a *PostgresAuditRecorder) Record(ctx context.Context, event models.AuditEvent) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	return insertAuditEvent(ctx, a.DB, event)
}
