package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	financeDomain "github.com/allisson/finstore/internal/finance/domain"
)

// Driver-level failures are hard to provoke against a real file, so these
// paths are exercised with a mocked connection.
func TestSQLiteTransactionRepositoryDriverErrors(t *testing.T) {
	ctx := context.Background()
	driverErr := errors.New("disk I/O error")

	setup := func(t *testing.T) (*SQLiteTransactionRepository, sqlmock.Sqlmock) {
		t.Helper()
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		t.Cleanup(func() {
			mock.ExpectClose()
			require.NoError(t, db.Close())
		})
		return NewSQLiteTransactionRepository(db), mock
	}

	t.Run("create surfaces exec failures", func(t *testing.T) {
		repo, mock := setup(t)
		mock.ExpectExec("INSERT INTO transactions").WillReturnError(driverErr)

		err := repo.Create(ctx, &financeDomain.Transaction{ID: "tx-1"})
		assert.ErrorIs(t, err, driverErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("update surfaces rows-affected failures", func(t *testing.T) {
		repo, mock := setup(t)
		mock.ExpectExec("UPDATE transactions").
			WillReturnResult(sqlmock.NewErrorResult(driverErr))

		err := repo.Update(ctx, &financeDomain.Transaction{ID: "tx-1"})
		assert.ErrorIs(t, err, driverErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("list surfaces query failures", func(t *testing.T) {
		repo, mock := setup(t)
		mock.ExpectQuery("SELECT (.+) FROM transactions").WillReturnError(driverErr)

		_, err := repo.List(ctx, financeDomain.TransactionFilter{})
		assert.ErrorIs(t, err, driverErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("list surfaces row iteration failures", func(t *testing.T) {
		repo, mock := setup(t)
		rows := sqlmock.NewRows([]string{
			"id", "kind", "category", "amount_cents", "occurred_at",
			"description", "merchant", "created_at", "updated_at",
		}).
			AddRow("tx-1", "expense", "groceries", 4250, time.Now(), "", "", time.Now(), time.Now()).
			RowError(0, driverErr)
		mock.ExpectQuery("SELECT (.+) FROM transactions").WillReturnRows(rows)

		_, err := repo.List(ctx, financeDomain.TransactionFilter{})
		assert.ErrorIs(t, err, driverErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("delete surfaces exec failures", func(t *testing.T) {
		repo, mock := setup(t)
		mock.ExpectExec("DELETE FROM transactions").WillReturnError(driverErr)

		err := repo.Delete(ctx, "tx-1")
		assert.ErrorIs(t, err, driverErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
