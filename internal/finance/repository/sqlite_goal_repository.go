package repository

import (
	"context"
	"database/sql"

	"github.com/allisson/finstore/internal/database"
	apperrors "github.com/allisson/finstore/internal/errors"
	financeDomain "github.com/allisson/finstore/internal/finance/domain"
)

// SQLiteGoalRepository implements Goal persistence for SQLite.
type SQLiteGoalRepository struct {
	db *sql.DB
}

// targetDate maps the optional deadline to a nullable column so the index on
// target_date only covers goals that actually have one.
func targetDate(g *financeDomain.Goal) sql.NullTime {
	if g.TargetDate.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: g.TargetDate, Valid: true}
}

func scanGoal(scan func(dest ...any) error) (*financeDomain.Goal, error) {
	var goal financeDomain.Goal
	var target sql.NullTime
	err := scan(
		&goal.ID,
		&goal.Status,
		&goal.TargetCents,
		&goal.SavedCents,
		&target,
		&goal.Name,
		&goal.Note,
		&goal.CreatedAt,
		&goal.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if target.Valid {
		goal.TargetDate = target.Time
	}
	return &goal, nil
}

// Create inserts a new goal.
func (s *SQLiteGoalRepository) Create(ctx context.Context, goal *financeDomain.Goal) error {
	querier := database.GetTx(ctx, s.db)

	query := `INSERT INTO goals (id, status, target_cents, saved_cents, target_date, name, note, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		goal.ID,
		goal.Status,
		goal.TargetCents,
		goal.SavedCents,
		targetDate(goal),
		goal.Name,
		goal.Note,
		goal.CreatedAt,
		goal.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create goal")
	}
	return nil
}

// Update replaces every mutable column of an existing goal.
func (s *SQLiteGoalRepository) Update(ctx context.Context, goal *financeDomain.Goal) error {
	querier := database.GetTx(ctx, s.db)

	query := `UPDATE goals
			  SET status = ?, target_cents = ?, saved_cents = ?, target_date = ?, name = ?, note = ?, updated_at = ?
			  WHERE id = ?`

	result, err := querier.ExecContext(
		ctx,
		query,
		goal.Status,
		goal.TargetCents,
		goal.SavedCents,
		targetDate(goal),
		goal.Name,
		goal.Note,
		goal.UpdatedAt,
		goal.ID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update goal")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to update goal")
	}
	if rows == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// GetByID retrieves a goal by its identifier.
func (s *SQLiteGoalRepository) GetByID(ctx context.Context, id string) (*financeDomain.Goal, error) {
	querier := database.GetTx(ctx, s.db)

	query := `SELECT id, status, target_cents, saved_cents, target_date, name, note, created_at, updated_at
			  FROM goals
			  WHERE id = ?
			  LIMIT 1`

	goal, err := scanGoal(querier.QueryRowContext(ctx, query, id).Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get goal by id")
	}

	return goal, nil
}

// List retrieves goals matching the filter, ordered by creation time then id.
func (s *SQLiteGoalRepository) List(
	ctx context.Context,
	filter financeDomain.GoalFilter,
) ([]*financeDomain.Goal, error) {
	querier := database.GetTx(ctx, s.db)

	f := goalFilter(filter)
	query := `SELECT id, status, target_cents, saved_cents, target_date, name, note, created_at, updated_at
			  FROM goals` + f.where() + ` ORDER BY created_at ASC, id ASC` + paging(filter.Limit, filter.Offset)

	rows, err := querier.QueryContext(ctx, query, f.args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list goals")
	}
	defer rows.Close()

	var goals []*financeDomain.Goal
	for rows.Next() {
		goal, err := scanGoal(rows.Scan)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan goal")
		}
		goals = append(goals, goal)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to list goals")
	}

	return goals, nil
}

// Delete removes a goal by its identifier.
func (s *SQLiteGoalRepository) Delete(ctx context.Context, id string) error {
	querier := database.GetTx(ctx, s.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM goals WHERE id = ?`, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete goal")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to delete goal")
	}
	if rows == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteWhere removes every goal matching the filter.
func (s *SQLiteGoalRepository) DeleteWhere(
	ctx context.Context,
	filter financeDomain.GoalFilter,
) (int64, error) {
	querier := database.GetTx(ctx, s.db)

	f := goalFilter(filter)
	result, err := querier.ExecContext(ctx, `DELETE FROM goals`+f.where(), f.args...)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete goals")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete goals")
	}
	return rows, nil
}

func goalFilter(filter financeDomain.GoalFilter) sqlFilter {
	var f sqlFilter
	if filter.Status != nil {
		f.add("status = ?", *filter.Status)
	}
	if filter.TargetBefore != nil {
		f.add("target_date < ?", *filter.TargetBefore)
	}
	return f
}

// NewSQLiteGoalRepository creates a new SQLite Goal repository instance.
func NewSQLiteGoalRepository(db *sql.DB) *SQLiteGoalRepository {
	return &SQLiteGoalRepository{db: db}
}
