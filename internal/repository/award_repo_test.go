package repository

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/batiflow/tender-service/internal/models"
)

func projectRows(defaultTaxRate float64) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "organization_id", "default_tax_rate"}).
		AddRow("p-1", "org-1", defaultTaxRate)
}

// expectClaim matches the conditional status update that opens every
// adjudication.
func expectClaim(mock pgxmock.PgxPoolIface, tenderID string) *pgxmock.ExpectedQuery {
	return mock.ExpectQuery("UPDATE tender SET status").
		WithArgs(models.TenderAdjudicated, tenderID, models.TenderAdjudicated, models.TenderCancelled)
}

func TestAdjudicateSuccessWithAllocation(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	budgetCode := "CFC-224"
	mock.ExpectBegin()
	expectClaim(mock, "t-1").
		WillReturnRows(tenderRows("t-1", models.TenderAdjudicated, &budgetCode, nil, 0))
	mock.ExpectQuery("FROM offer WHERE id").
		WithArgs("o-1").
		WillReturnRows(addOfferRow(offerRows(), "o-1", "t-1", "c-a", 10810))
	mock.ExpectQuery("FROM project WHERE id").
		WithArgs("p-1").
		WillReturnRows(projectRows(8.1))
	mock.ExpectExec("UPDATE offer SET status").
		WithArgs(models.OfferRejected, "t-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))
	mock.ExpectExec("UPDATE offer SET status").
		WithArgs(models.OfferWinner, "o-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("INSERT INTO contract").
		WithArgs(pgxmock.AnyArg(), "t-1", "p-1", "c-a", 10810.0, 8.1, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery("FROM budget_entry").
		WithArgs("p-1", budgetCode).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("be-1"))
	mock.ExpectExec("INSERT INTO budget_allocation").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), "be-1", 10810.0, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO audit_event").
		WithArgs(pgxmock.AnyArg(), models.AuditAdjudicated, "t-1", "u-1", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	repo := NewPostgresAwardRepository(mock)
	contract, err := repo.Adjudicate(context.Background(), "t-1", "o-1", "u-1")
	require.NoError(t, err)
	assert.Equal(t, "t-1", contract.TenderID)
	assert.Equal(t, "c-a", contract.CompanyID)
	assert.Equal(t, 10810.0, contract.Amount)
	assert.Equal(t, 8.1, contract.TaxRate, "falls back to the project default")
	require.NotNil(t, contract.BudgetCode)
	assert.Equal(t, budgetCode, *contract.BudgetCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdjudicateWithoutBudgetCodeSkipsAllocation(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	taxRate := 3.8
	mock.ExpectBegin()
	expectClaim(mock, "t-1").
		WillReturnRows(tenderRows("t-1", models.TenderAdjudicated, nil, &taxRate, 0))
	mock.ExpectQuery("FROM offer WHERE id").
		WithArgs("o-1").
		WillReturnRows(addOfferRow(offerRows(), "o-1", "t-1", "c-a", 9900))
	mock.ExpectQuery("FROM project WHERE id").
		WithArgs("p-1").
		WillReturnRows(projectRows(8.1))
	mock.ExpectExec("UPDATE offer SET status").
		WithArgs(models.OfferRejected, "t-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE offer SET status").
		WithArgs(models.OfferWinner, "o-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("INSERT INTO contract").
		WithArgs(pgxmock.AnyArg(), "t-1", "p-1", "c-a", 9900.0, 3.8, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO audit_event").
		WithArgs(pgxmock.AnyArg(), models.AuditAdjudicated, "t-1", "u-1", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	repo := NewPostgresAwardRepository(mock)
	contract, err := repo.Adjudicate(context.Background(), "t-1", "o-1", "u-1")
	require.NoError(t, err)
	assert.Equal(t, 3.8, contract.TaxRate, "tender rate wins over the project default")
	assert.Nil(t, contract.BudgetCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdjudicateMissingBudgetEntryLeavesContractUnallocated(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	budgetCode := "CFC-999"
	mock.ExpectBegin()
	expectClaim(mock, "t-1").
		WillReturnRows(tenderRows("t-1", models.TenderAdjudicated, &budgetCode, nil, 0))
	mock.ExpectQuery("FROM offer WHERE id").
		WithArgs("o-1").
		WillReturnRows(addOfferRow(offerRows(), "o-1", "t-1", "c-a", 9900))
	mock.ExpectQuery("FROM project WHERE id").
		WithArgs("p-1").
		WillReturnRows(projectRows(8.1))
	mock.ExpectExec("UPDATE offer SET status").
		WithArgs(models.OfferRejected, "t-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE offer SET status").
		WithArgs(models.OfferWinner, "o-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("INSERT INTO contract").
		WithArgs(pgxmock.AnyArg(), "t-1", "p-1", "c-a", 9900.0, 8.1, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery("FROM budget_entry").
		WithArgs("p-1", budgetCode).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectExec("INSERT INTO audit_event").
		WithArgs(pgxmock.AnyArg(), models.AuditAdjudicated, "t-1", "u-1", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	repo := NewPostgresAwardRepository(mock)
	contract, err := repo.Adjudicate(context.Background(), "t-1", "o-1", "u-1")
	require.NoError(t, err)
	require.NotNil(t, contract.BudgetCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdjudicateAlreadyAdjudicated(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	expectClaim(mock, "t-1").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery("SELECT status FROM tender").
		WithArgs("t-1").
		WillReturnRows(pgxmock.NewRows([]string{"status"}).AddRow(models.TenderAdjudicated))
	mock.ExpectRollback()

	repo := NewPostgresAwardRepository(mock)
	_, err = repo.Adjudicate(context.Background(), "t-1", "o-1", "u-1")
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindAlreadyAdjudicated))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdjudicateCancelledTender(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	expectClaim(mock, "t-1").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery("SELECT status FROM tender").
		WithArgs("t-1").
		WillReturnRows(pgxmock.NewRows([]string{"status"}).AddRow(models.TenderCancelled))
	mock.ExpectRollback()

	repo := NewPostgresAwardRepository(mock)
	_, err = repo.Adjudicate(context.Background(), "t-1", "o-1", "u-1")
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindAlreadyAdjudicated))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdjudicateUnknownTender(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	expectClaim(mock, "t-missing").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery("SELECT status FROM tender").
		WithArgs("t-missing").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	repo := NewPostgresAwardRepository(mock)
	_, err = repo.Adjudicate(context.Background(), "t-missing", "o-1", "u-1")
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdjudicateOfferFromAnotherTender(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	expectClaim(mock, "t-1").
		WillReturnRows(tenderRows("t-1", models.TenderAdjudicated, nil, nil, 0))
	mock.ExpectQuery("FROM offer WHERE id").
		WithArgs("o-9").
		WillReturnRows(addOfferRow(offerRows(), "o-9", "t-2", "c-a", 9900))
	mock.ExpectRollback()

	repo := NewPostgresAwardRepository(mock)
	_, err = repo.Adjudicate(context.Background(), "t-1", "o-9", "u-1")
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindInvalidOffer))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdjudicateUnknownOffer(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	expectClaim(mock, "t-1").
		WillReturnRows(tenderRows("t-1", models.TenderAdjudicated, nil, nil, 0))
	mock.ExpectQuery("FROM offer WHERE id").
		WithArgs("o-missing").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	repo := NewPostgresAwardRepository(mock)
	_, err = repo.Adjudicate(context.Background(), "t-1", "o-missing", "u-1")
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindInvalidOffer))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdjudicateWinnerVanishedMidFlight(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	expectClaim(mock, "t-1").
		WillReturnRows(tenderRows("t-1", models.TenderAdjudicated, nil, nil, 0))
	mock.ExpectQuery("FROM offer WHERE id").
		WithArgs("o-1").
		WillReturnRows(addOfferRow(offerRows(), "o-1", "t-1", "c-a", 9900))
	mock.ExpectQuery("FROM project WHERE id").
		WithArgs("p-1").
		WillReturnRows(projectRows(8.1))
	mock.ExpectExec("UPDATE offer SET status").
		WithArgs(models.OfferRejected, "t-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 2))
	mock.ExpectExec("UPDATE offer SET status").
		WithArgs(models.OfferWinner, "o-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectRollback()

	repo := NewPostgresAwardRepository(mock)
	_, err = repo.Adjudicate(context.Background(), "t-1", "o-1", "u-1")
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindInvalidOffer))
	assert.NoError(t, mock.ExpectationsWereMet())
}
