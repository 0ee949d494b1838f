package repository

import (
	"context"
	"database/sql"

	"github.com/allisson/finstore/internal/database"
	apperrors "github.com/allisson/finstore/internal/errors"
	financeDomain "github.com/allisson/finstore/internal/finance/domain"
)

// SQLiteDebtRepository implements Debt persistence for SQLite.
type SQLiteDebtRepository struct {
	db *sql.DB
}

// Create inserts a new debt.
func (s *SQLiteDebtRepository) Create(ctx context.Context, debt *financeDomain.Debt) error {
	querier := database.GetTx(ctx, s.db)

	query := `INSERT INTO debts (id, original_cents, balance_cents, interest_bps, due_date, creditor, note, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		debt.ID,
		debt.OriginalCents,
		debt.BalanceCents,
		debt.InterestBps,
		debt.DueDate,
		debt.Creditor,
		debt.Note,
		debt.CreatedAt,
		debt.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create debt")
	}
	return nil
}

// Update replaces every mutable column of an existing debt.
func (s *SQLiteDebtRepository) Update(ctx context.Context, debt *financeDomain.Debt) error {
	querier := database.GetTx(ctx, s.db)

	query := `UPDATE debts
			  SET original_cents = ?, balance_cents = ?, interest_bps = ?, due_date = ?, creditor = ?, note = ?, updated_at = ?
			  WHERE id = ?`

	result, err := querier.ExecContext(
		ctx,
		query,
		debt.OriginalCents,
		debt.BalanceCents,
		debt.InterestBps,
		debt.DueDate,
		debt.Creditor,
		debt.Note,
		debt.UpdatedAt,
		debt.ID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update debt")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to update debt")
	}
	if rows == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// GetByID retrieves a debt by its identifier.
func (s *SQLiteDebtRepository) GetByID(ctx context.Context, id string) (*financeDomain.Debt, error) {
	querier := database.GetTx(ctx, s.db)

	query := `SELECT id, original_cents, balance_cents, interest_bps, due_date, creditor, note, created_at, updated_at
			  FROM debts
			  WHERE id = ?
			  LIMIT 1`

	var debt financeDomain.Debt
	err := querier.QueryRowContext(ctx, query, id).Scan(
		&debt.ID,
		&debt.OriginalCents,
		&debt.BalanceCents,
		&debt.InterestBps,
		&debt.DueDate,
		&debt.Creditor,
		&debt.Note,
		&debt.CreatedAt,
		&debt.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get debt by id")
	}

	return &debt, nil
}

// List retrieves debts matching the filter, ordered by due date then id.
func (s *SQLiteDebtRepository) List(
	ctx context.Context,
	filter financeDomain.DebtFilter,
) ([]*financeDomain.Debt, error) {
	querier := database.GetTx(ctx, s.db)

	f := debtFilter(filter)
	query := `SELECT id, original_cents, balance_cents, interest_bps, due_date, creditor, note, created_at, updated_at
			  FROM debts` + f.where() + ` ORDER BY due_date ASC, id ASC` + paging(filter.Limit, filter.Offset)

	rows, err := querier.QueryContext(ctx, query, f.args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list debts")
	}
	defer rows.Close()

	var debts []*financeDomain.Debt
	for rows.Next() {
		var debt financeDomain.Debt
		err := rows.Scan(
			&debt.ID,
			&debt.OriginalCents,
			&debt.BalanceCents,
			&debt.InterestBps,
			&debt.DueDate,
			&debt.Creditor,
			&debt.Note,
			&debt.CreatedAt,
			&debt.UpdatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan debt")
		}
		debts = append(debts, &debt)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to list debts")
	}

	return debts, nil
}

// Delete removes a debt by its identifier.
func (s *SQLiteDebtRepository) Delete(ctx context.Context, id string) error {
	querier := database.GetTx(ctx, s.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM debts WHERE id = ?`, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete debt")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to delete debt")
	}
	if rows == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteWhere removes every debt matching the filter.
func (s *SQLiteDebtRepository) DeleteWhere(
	ctx context.Context,
	filter financeDomain.DebtFilter,
) (int64, error) {
	querier := database.GetTx(ctx, s.db)

	f := debtFilter(filter)
	result, err := querier.ExecContext(ctx, `DELETE FROM debts`+f.where(), f.args...)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete debts")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete debts")
	}
	return rows, nil
}

func debtFilter(filter financeDomain.DebtFilter) sqlFilter {
	var f sqlFilter
	if filter.DueFrom != nil {
		f.add("due_date >= ?", *filter.DueFrom)
	}
	if filter.DueTo != nil {
		f.add("due_date < ?", *filter.DueTo)
	}
	return f
}

// NewSQLiteDebtRepository creates a new SQLite Debt repository instance.
func NewSQLiteDebtRepository(db *sql.DB) *SQLiteDebtRepository {
	return &SQLiteDebtRepository{db: db}
}
