package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/jobwork/backend/internal/domain/shared"
	"github.com/jobwork/backend/internal/domain/stock"
)

// newMockStockEntryRepository creates a GormStockEntryRepository with a mocked SQL connection
func newMockStockEntryRepository(t *testing.T) (*GormStockEntryRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormStockEntryRepository(gormDB), mock, mockDB
}

func testScope() shared.Scope {
	return shared.Scope{CompanyID: uuid.New(), FiscalYearID: uuid.New()}
}

func TestGormStockEntryRepository_Balance(t *testing.T) {
	t.Run("sums signed quantities for an item", func(t *testing.T) {
		repo, mock, mockDB := newMockStockEntryRepository(t)
		defer mockDB.Close()

		scope := testScope()
		itemID := uuid.New()

		rows := sqlmock.NewRows([]string{"sum"}).AddRow("37.5")
		mock.ExpectQuery(`SELECT SUM\(CASE WHEN direction = \$1 THEN quantity ELSE -quantity END\) FROM "stock_entries" WHERE \(company_id = \$2 AND fiscal_year_id = \$3\) AND item_id = \$4`).
			WithArgs(stock.DirectionIn, scope.CompanyID, scope.FiscalYearID, itemID).
			WillReturnRows(rows)

		balance, err := repo.Balance(context.Background(), scope, itemID, nil)

		assert.NoError(t, err)
		assert.True(t, balance.Equal(decimal.RequireFromString("37.5")))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns zero when the item has no entries", func(t *testing.T) {
		repo, mock, mockDB := newMockStockEntryRepository(t)
		defer mockDB.Close()

		scope := testScope()
		itemID := uuid.New()

		rows := sqlmock.NewRows([]string{"sum"}).AddRow(nil)
		mock.ExpectQuery(`SELECT SUM\(CASE WHEN direction = \$1 THEN quantity ELSE -quantity END\) FROM "stock_entries"`).
			WithArgs(stock.DirectionIn, scope.CompanyID, scope.FiscalYearID, itemID).
			WillReturnRows(rows)

		balance, err := repo.Balance(context.Background(), scope, itemID, nil)

		assert.NoError(t, err)
		assert.True(t, balance.IsZero())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("applies the as-of cutoff", func(t *testing.T) {
		repo, mock, mockDB := newMockStockEntryRepository(t)
		defer mockDB.Close()

		scope := testScope()
		itemID := uuid.New()
		asOf := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)

		rows := sqlmock.NewRows([]string{"sum"}).AddRow("12")
		mock.ExpectQuery(`SELECT SUM\(CASE WHEN direction = \$1 THEN quantity ELSE -quantity END\) FROM "stock_entries" WHERE \(company_id = \$2 AND fiscal_year_id = \$3\) AND item_id = \$4 AND entry_date <= \$5`).
			WithArgs(stock.DirectionIn, scope.CompanyID, scope.FiscalYearID, itemID, asOf).
			WillReturnRows(rows)

		balance, err := repo.Balance(context.Background(), scope, itemID, &asOf)

		assert.NoError(t, err)
		assert.True(t, balance.Equal(decimal.NewFromInt(12)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormStockEntryRepository_Balances(t *testing.T) {
	t.Run("groups signed sums by item", func(t *testing.T) {
		repo, mock, mockDB := newMockStockEntryRepository(t)
		defer mockDB.Close()

		scope := testScope()
		itemA := uuid.New()
		itemB := uuid.New()

		rows := sqlmock.NewRows([]string{"item_id", "balance"}).
			AddRow(itemA, "100").
			AddRow(itemB, "-4.25")
		mock.ExpectQuery(`SELECT item_id, SUM\(CASE WHEN direction = \$1 THEN quantity ELSE -quantity END\) AS balance FROM "stock_entries" WHERE company_id = \$2 AND fiscal_year_id = \$3 GROUP BY .*item_id.* ORDER BY item_id`).
			WithArgs(stock.DirectionIn, scope.CompanyID, scope.FiscalYearID).
			WillReturnRows(rows)

		balances, err := repo.Balances(context.Background(), scope, nil)

		assert.NoError(t, err)
		require.Len(t, balances, 2)
		assert.Equal(t, itemA, balances[0].ItemID)
		assert.True(t, balances[0].Balance.Equal(decimal.NewFromInt(100)))
		assert.True(t, balances[1].Balance.IsNegative())
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormStockEntryRepository_FindByReference(t *testing.T) {
	t.Run("returns entries of a source document", func(t *testing.T) {
		repo, mock, mockDB := newMockStockEntryRepository(t)
		defer mockDB.Close()

		scope := testScope()
		refID := uuid.New()
		entryID := uuid.New()
		itemID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "company_id", "fiscal_year_id", "item_id", "kind", "direction", "reference_type", "reference_id", "quantity"}).
			AddRow(entryID, scope.CompanyID, scope.FiscalYearID, itemID, "JOBWORK_RETURN", "OUT", "DELIVERY", refID, "10")

		mock.ExpectQuery(`SELECT \* FROM "stock_entries" WHERE \(company_id = \$1 AND fiscal_year_id = \$2\) AND \(reference_type = \$3 AND reference_id = \$4\) ORDER BY created_at ASC`).
			WithArgs(scope.CompanyID, scope.FiscalYearID, stock.ReferenceTypeDelivery, refID).
			WillReturnRows(rows)

		entries, err := repo.FindByReference(context.Background(), scope, stock.ReferenceTypeDelivery, refID)

		assert.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, entryID, entries[0].ID)
		assert.Equal(t, stock.DirectionOut, entries[0].Direction)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormStockEntryRepository_DeleteForScope(t *testing.T) {
	t.Run("keeps opening entries when requested", func(t *testing.T) {
		repo, mock, mockDB := newMockStockEntryRepository(t)
		defer mockDB.Close()

		scope := testScope()

		mock.ExpectExec(`DELETE FROM "stock_entries" WHERE \(company_id = \$1 AND fiscal_year_id = \$2\) AND reference_type <> \$3`).
			WithArgs(scope.CompanyID, scope.FiscalYearID, stock.ReferenceTypeOpening).
			WillReturnResult(sqlmock.NewResult(0, 7))

		err := repo.DeleteForScope(context.Background(), scope, true)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("wipes everything including openings", func(t *testing.T) {
		repo, mock, mockDB := newMockStockEntryRepository(t)
		defer mockDB.Close()

		scope := testScope()

		mock.ExpectExec(`DELETE FROM "stock_entries" WHERE company_id = \$1 AND fiscal_year_id = \$2`).
			WithArgs(scope.CompanyID, scope.FiscalYearID).
			WillReturnResult(sqlmock.NewResult(0, 9))

		err := repo.DeleteForScope(context.Background(), scope, false)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
