package repository

import (
	"context"
	"database/sql"

	"github.com/allisson/finstore/internal/database"
	apperrors "github.com/allisson/finstore/internal/errors"
	financeDomain "github.com/allisson/finstore/internal/finance/domain"
)

// SQLiteBillRepository implements Bill persistence for SQLite.
type SQLiteBillRepository struct {
	db *sql.DB
}

// Create inserts a new bill.
func (s *SQLiteBillRepository) Create(ctx context.Context, bill *financeDomain.Bill) error {
	querier := database.GetTx(ctx, s.db)

	query := `INSERT INTO bills (id, amount_cents, due_date, paid, payee, note, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		bill.ID,
		bill.AmountCents,
		bill.DueDate,
		bill.Paid,
		bill.Payee,
		bill.Note,
		bill.CreatedAt,
		bill.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create bill")
	}
	return nil
}

// Update replaces every mutable column of an existing bill.
func (s *SQLiteBillRepository) Update(ctx context.Context, bill *financeDomain.Bill) error {
	querier := database.GetTx(ctx, s.db)

	query := `UPDATE bills
			  SET amount_cents = ?, due_date = ?, paid = ?, payee = ?, note = ?, updated_at = ?
			  WHERE id = ?`

	result, err := querier.ExecContext(
		ctx,
		query,
		bill.AmountCents,
		bill.DueDate,
		bill.Paid,
		bill.Payee,
		bill.Note,
		bill.UpdatedAt,
		bill.ID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update bill")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to update bill")
	}
	if rows == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// GetByID retrieves a bill by its identifier.
func (s *SQLiteBillRepository) GetByID(ctx context.Context, id string) (*financeDomain.Bill, error) {
	querier := database.GetTx(ctx, s.db)

	query := `SELECT id, amount_cents, due_date, paid, payee, note, created_at, updated_at
			  FROM bills
			  WHERE id = ?
			  LIMIT 1`

	var bill financeDomain.Bill
	err := querier.QueryRowContext(ctx, query, id).Scan(
		&bill.ID,
		&bill.AmountCents,
		&bill.DueDate,
		&bill.Paid,
		&bill.Payee,
		&bill.Note,
		&bill.CreatedAt,
		&bill.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get bill by id")
	}

	return &bill, nil
}

// List retrieves bills matching the filter, ordered by due date then id so
// reminder scans walk the calendar forward.
func (s *SQLiteBillRepository) List(
	ctx context.Context,
	filter financeDomain.BillFilter,
) ([]*financeDomain.Bill, error) {
	querier := database.GetTx(ctx, s.db)

	f := billFilter(filter)
	query := `SELECT id, amount_cents, due_date, paid, payee, note, created_at, updated_at
			  FROM bills` + f.where() + ` ORDER BY due_date ASC, id ASC` + paging(filter.Limit, filter.Offset)

	rows, err := querier.QueryContext(ctx, query, f.args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list bills")
	}
	defer rows.Close()

	var bills []*financeDomain.Bill
	for rows.Next() {
		var bill financeDomain.Bill
		err := rows.Scan(
			&bill.ID,
			&bill.AmountCents,
			&bill.DueDate,
			&bill.Paid,
			&bill.Payee,
			&bill.Note,
			&bill.CreatedAt,
			&bill.UpdatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan bill")
		}
		bills = append(bills, &bill)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to list bills")
	}

	return bills, nil
}

// Delete removes a bill by its identifier.
func (s *SQLiteBillRepository) Delete(ctx context.Context, id string) error {
	querier := database.GetTx(ctx, s.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM bills WHERE id = ?`, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete bill")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to delete bill")
	}
	if rows == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteWhere removes every bill matching the filter.
func (s *SQLiteBillRepository) DeleteWhere(
	ctx context.Context,
	filter financeDomain.BillFilter,
) (int64, error) {
	querier := database.GetTx(ctx, s.db)

	f := billFilter(filter)
	result, err := querier.ExecContext(ctx, `DELETE FROM bills`+f.where(), f.args...)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete bills")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete bills")
	}
	return rows, nil
}

func billFilter(filter financeDomain.BillFilter) sqlFilter {
	var f sqlFilter
	if filter.Paid != nil {
		f.add("paid = ?", *filter.Paid)
	}
	if filter.DueFrom != nil {
		f.add("due_date >= ?", *filter.DueFrom)
	}
	if filter.DueTo != nil {
		f.add("due_date < ?", *filter.DueTo)
	}
	return f
}

// NewSQLiteBillRepository creates a new SQLite Bill repository instance.
func NewSQLiteBillRepository(db *sql.DB) *SQLiteBillRepository {
	return &SQLiteBillRepository{db: db}
}
