package repository

import (
	"context"
	"database/sql"

	"github.com/allisson/finstore/internal/database"
	apperrors "github.com/allisson/finstore/internal/errors"
	financeDomain "github.com/allisson/finstore/internal/finance/domain"
)

// SQLiteBudgetRepository implements Budget persistence for SQLite.
type SQLiteBudgetRepository struct {
	db *sql.DB
}

// Create inserts a new budget.
func (s *SQLiteBudgetRepository) Create(ctx context.Context, budget *financeDomain.Budget) error {
	querier := database.GetTx(ctx, s.db)

	query := `INSERT INTO budgets (id, category, period, limit_cents, note, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		budget.ID,
		budget.Category,
		budget.Period,
		budget.LimitCents,
		budget.Note,
		budget.CreatedAt,
		budget.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create budget")
	}
	return nil
}

// Update replaces every mutable column of an existing budget.
func (s *SQLiteBudgetRepository) Update(ctx context.Context, budget *financeDomain.Budget) error {
	querier := database.GetTx(ctx, s.db)

	query := `UPDATE budgets
			  SET category = ?, period = ?, limit_cents = ?, note = ?, updated_at = ?
			  WHERE id = ?`

	result, err := querier.ExecContext(
		ctx,
		query,
		budget.Category,
		budget.Period,
		budget.LimitCents,
		budget.Note,
		budget.UpdatedAt,
		budget.ID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update budget")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to update budget")
	}
	if rows == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// GetByID retrieves a budget by its identifier.
func (s *SQLiteBudgetRepository) GetByID(ctx context.Context, id string) (*financeDomain.Budget, error) {
	querier := database.GetTx(ctx, s.db)

	query := `SELECT id, category, period, limit_cents, note, created_at, updated_at
			  FROM budgets
			  WHERE id = ?
			  LIMIT 1`

	var budget financeDomain.Budget
	err := querier.QueryRowContext(ctx, query, id).Scan(
		&budget.ID,
		&budget.Category,
		&budget.Period,
		&budget.LimitCents,
		&budget.Note,
		&budget.CreatedAt,
		&budget.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get budget by id")
	}

	return &budget, nil
}

// List retrieves budgets matching the filter, ordered by period then category.
func (s *SQLiteBudgetRepository) List(
	ctx context.Context,
	filter financeDomain.BudgetFilter,
) ([]*financeDomain.Budget, error) {
	querier := database.GetTx(ctx, s.db)

	f := budgetFilter(filter)
	query := `SELECT id, category, period, limit_cents, note, created_at, updated_at
			  FROM budgets` + f.where() + ` ORDER BY period ASC, category ASC, id ASC` + paging(filter.Limit, filter.Offset)

	rows, err := querier.QueryContext(ctx, query, f.args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list budgets")
	}
	defer rows.Close()

	var budgets []*financeDomain.Budget
	for rows.Next() {
		var budget financeDomain.Budget
		err := rows.Scan(
			&budget.ID,
			&budget.Category,
			&budget.Period,
			&budget.LimitCents,
			&budget.Note,
			&budget.CreatedAt,
			&budget.UpdatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan budget")
		}
		budgets = append(budgets, &budget)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to list budgets")
	}

	return budgets, nil
}

// Delete removes a budget by its identifier.
func (s *SQLiteBudgetRepository) Delete(ctx context.Context, id string) error {
	querier := database.GetTx(ctx, s.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM budgets WHERE id = ?`, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete budget")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to delete budget")
	}
	if rows == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteWhere removes every budget matching the filter.
func (s *SQLiteBudgetRepository) DeleteWhere(
	ctx context.Context,
	filter financeDomain.BudgetFilter,
) (int64, error) {
	querier := database.GetTx(ctx, s.db)

	f := budgetFilter(filter)
	result, err := querier.ExecContext(ctx, `DELETE FROM budgets`+f.where(), f.args...)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete budgets")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete budgets")
	}
	return rows, nil
}

func budgetFilter(filter financeDomain.BudgetFilter) sqlFilter {
	var f sqlFilter
	if filter.Category != nil {
		f.add("category = ?", *filter.Category)
	}
	if filter.Period != nil {
		f.add("period = ?", *filter.Period)
	}
	return f
}

// NewSQLiteBudgetRepository creates a new SQLite Budget repository instance.
func NewSQLiteBudgetRepository(db *sql.DB) *SQLiteBudgetRepository {
	return &SQLiteBudgetRepository{db: db}
}
