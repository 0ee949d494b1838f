package repository

import (
	"context"
	"database/sql"

	"github.com/allisson/finstore/internal/database"
	apperrors "github.com/allisson/finstore/internal/errors"
	financeDomain "github.com/allisson/finstore/internal/finance/domain"
)

// SQLiteTransactionRepository implements Transaction persistence for SQLite.
type SQLiteTransactionRepository struct {
	db *sql.DB
}

// Create inserts a new transaction.
func (s *SQLiteTransactionRepository) Create(ctx context.Context, tx *financeDomain.Transaction) error {
	querier := database.GetTx(ctx, s.db)

	query := `INSERT INTO transactions (id, kind, category, amount_cents, occurred_at, description, merchant, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		tx.ID,
		tx.Kind,
		tx.Category,
		tx.AmountCents,
		tx.OccurredAt,
		tx.Description,
		tx.Merchant,
		tx.CreatedAt,
		tx.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create transaction")
	}
	return nil
}

// Update replaces every mutable column of an existing transaction.
func (s *SQLiteTransactionRepository) Update(ctx context.Context, tx *financeDomain.Transaction) error {
	querier := database.GetTx(ctx, s.db)

	query := `UPDATE transactions
			  SET kind = ?, category = ?, amount_cents = ?, occurred_at = ?, description = ?, merchant = ?, updated_at = ?
			  WHERE id = ?`

	result, err := querier.ExecContext(
		ctx,
		query,
		tx.Kind,
		tx.Category,
		tx.AmountCents,
		tx.OccurredAt,
		tx.Description,
		tx.Merchant,
		tx.UpdatedAt,
		tx.ID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update transaction")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to update transaction")
	}
	if rows == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// GetByID retrieves a transaction by its identifier.
func (s *SQLiteTransactionRepository) GetByID(ctx context.Context, id string) (*financeDomain.Transaction, error) {
	querier := database.GetTx(ctx, s.db)

	query := `SELECT id, kind, category, amount_cents, occurred_at, description, merchant, created_at, updated_at
			  FROM transactions
			  WHERE id = ?
			  LIMIT 1`

	var tx financeDomain.Transaction
	err := querier.QueryRowContext(ctx, query, id).Scan(
		&tx.ID,
		&tx.Kind,
		&tx.Category,
		&tx.AmountCents,
		&tx.OccurredAt,
		&tx.Description,
		&tx.Merchant,
		&tx.CreatedAt,
		&tx.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get transaction by id")
	}

	return &tx, nil
}

// List retrieves transactions matching the filter, ordered by occurrence
// time then id so range scans are deterministic.
func (s *SQLiteTransactionRepository) List(
	ctx context.Context,
	filter financeDomain.TransactionFilter,
) ([]*financeDomain.Transaction, error) {
	querier := database.GetTx(ctx, s.db)

	var f sqlFilter
	if filter.Category != nil {
		f.add("category = ?", *filter.Category)
	}
	if filter.OccurredFrom != nil {
		f.add("occurred_at >= ?", *filter.OccurredFrom)
	}
	if filter.OccurredTo != nil {
		f.add("occurred_at < ?", *filter.OccurredTo)
	}

	query := `SELECT id, kind, category, amount_cents, occurred_at, description, merchant, created_at, updated_at
			  FROM transactions` + f.where() + ` ORDER BY occurred_at ASC, id ASC` + paging(filter.Limit, filter.Offset)

	rows, err := querier.QueryContext(ctx, query, f.args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list transactions")
	}
	defer rows.Close()

	var txs []*financeDomain.Transaction
	for rows.Next() {
		var tx financeDomain.Transaction
		err := rows.Scan(
			&tx.ID,
			&tx.Kind,
			&tx.Category,
			&tx.AmountCents,
			&tx.OccurredAt,
			&tx.Description,
			&tx.Merchant,
			&tx.CreatedAt,
			&tx.UpdatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan transaction")
		}
		txs = append(txs, &tx)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to list transactions")
	}

	return txs, nil
}

// Delete removes a transaction by its identifier.
func (s *SQLiteTransactionRepository) Delete(ctx context.Context, id string) error {
	querier := database.GetTx(ctx, s.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete transaction")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to delete transaction")
	}
	if rows == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteWhere removes every transaction matching the filter and reports how
// many rows went away.
func (s *SQLiteTransactionRepository) DeleteWhere(
	ctx context.Context,
	filter financeDomain.TransactionFilter,
) (int64, error) {
	querier := database.GetTx(ctx, s.db)

	var f sqlFilter
	if filter.Category != nil {
		f.add("category = ?", *filter.Category)
	}
	if filter.OccurredFrom != nil {
		f.add("occurred_at >= ?", *filter.OccurredFrom)
	}
	if filter.OccurredTo != nil {
		f.add("occurred_at < ?", *filter.OccurredTo)
	}

	result, err := querier.ExecContext(ctx, `DELETE FROM transactions`+f.where(), f.args...)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete transactions")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete transactions")
	}
	return rows, nil
}

// NewSQLiteTransactionRepository creates a new SQLite Transaction repository instance.
func NewSQLiteTransactionRepository(db *sql.DB) *SQLiteTransactionRepository {
	return &SQLiteTransactionRepository{db: db}
}
