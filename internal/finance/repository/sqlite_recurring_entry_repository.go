package repository

import (
	"context"
	"database/sql"

	"github.com/allisson/finstore/internal/database"
	apperrors "github.com/allisson/finstore/internal/errors"
	financeDomain "github.com/allisson/finstore/internal/finance/domain"
)

// SQLiteRecurringEntryRepository implements RecurringEntry persistence for SQLite.
type SQLiteRecurringEntryRepository struct {
	db *sql.DB
}

// Create inserts a new recurring entry.
func (s *SQLiteRecurringEntryRepository) Create(ctx context.Context, entry *financeDomain.RecurringEntry) error {
	querier := database.GetTx(ctx, s.db)

	query := `INSERT INTO recurring_entries (id, kind, category, amount_cents, frequency, next_run_at, active, description, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		entry.ID,
		entry.Kind,
		entry.Category,
		entry.AmountCents,
		entry.Frequency,
		entry.NextRunAt,
		entry.Active,
		entry.Description,
		entry.CreatedAt,
		entry.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create recurring entry")
	}
	return nil
}

// Update replaces every mutable column of an existing recurring entry.
func (s *SQLiteRecurringEntryRepository) Update(ctx context.Context, entry *financeDomain.RecurringEntry) error {
	querier := database.GetTx(ctx, s.db)

	query := `UPDATE recurring_entries
			  SET kind = ?, category = ?, amount_cents = ?, frequency = ?, next_run_at = ?, active = ?, description = ?, updated_at = ?
			  WHERE id = ?`

	result, err := querier.ExecContext(
		ctx,
		query,
		entry.Kind,
		entry.Category,
		entry.AmountCents,
		entry.Frequency,
		entry.NextRunAt,
		entry.Active,
		entry.Description,
		entry.UpdatedAt,
		entry.ID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update recurring entry")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to update recurring entry")
	}
	if rows == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// GetByID retrieves a recurring entry by its identifier.
func (s *SQLiteRecurringEntryRepository) GetByID(ctx context.Context, id string) (*financeDomain.RecurringEntry, error) {
	querier := database.GetTx(ctx, s.db)

	query := `SELECT id, kind, category, amount_cents, frequency, next_run_at, active, description, created_at, updated_at
			  FROM recurring_entries
			  WHERE id = ?
			  LIMIT 1`

	var entry financeDomain.RecurringEntry
	err := querier.QueryRowContext(ctx, query, id).Scan(
		&entry.ID,
		&entry.Kind,
		&entry.Category,
		&entry.AmountCents,
		&entry.Frequency,
		&entry.NextRunAt,
		&entry.Active,
		&entry.Description,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get recurring entry by id")
	}

	return &entry, nil
}

// List retrieves recurring entries matching the filter, ordered by next run
// time so schedulers see due entries first.
func (s *SQLiteRecurringEntryRepository) List(
	ctx context.Context,
	filter financeDomain.RecurringEntryFilter,
) ([]*financeDomain.RecurringEntry, error) {
	querier := database.GetTx(ctx, s.db)

	f := recurringEntryFilter(filter)
	query := `SELECT id, kind, category, amount_cents, frequency, next_run_at, active, description, created_at, updated_at
			  FROM recurring_entries` + f.where() + ` ORDER BY next_run_at ASC, id ASC` + paging(filter.Limit, filter.Offset)

	rows, err := querier.QueryContext(ctx, query, f.args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list recurring entries")
	}
	defer rows.Close()

	var entries []*financeDomain.RecurringEntry
	for rows.Next() {
		var entry financeDomain.RecurringEntry
		err := rows.Scan(
			&entry.ID,
			&entry.Kind,
			&entry.Category,
			&entry.AmountCents,
			&entry.Frequency,
			&entry.NextRunAt,
			&entry.Active,
			&entry.Description,
			&entry.CreatedAt,
			&entry.UpdatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan recurring entry")
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to list recurring entries")
	}

	return entries, nil
}

// Delete removes a recurring entry by its identifier.
func (s *SQLiteRecurringEntryRepository) Delete(ctx context.Context, id string) error {
	querier := database.GetTx(ctx, s.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM recurring_entries WHERE id = ?`, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete recurring entry")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to delete recurring entry")
	}
	if rows == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteWhere removes every recurring entry matching the filter.
func (s *SQLiteRecurringEntryRepository) DeleteWhere(
	ctx context.Context,
	filter financeDomain.RecurringEntryFilter,
) (int64, error) {
	querier := database.GetTx(ctx, s.db)

	f := recurringEntryFilter(filter)
	result, err := querier.ExecContext(ctx, `DELETE FROM recurring_entries`+f.where(), f.args...)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete recurring entries")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete recurring entries")
	}
	return rows, nil
}

func recurringEntryFilter(filter financeDomain.RecurringEntryFilter) sqlFilter {
	var f sqlFilter
	if filter.Active != nil {
		f.add("active = ?", *filter.Active)
	}
	if filter.NextRunBefore != nil {
		f.add("next_run_at < ?", *filter.NextRunBefore)
	}
	return f
}

// NewSQLiteRecurringEntryRepository creates a new SQLite RecurringEntry repository instance.
func NewSQLiteRecurringEntryRepository(db *sql.DB) *SQLiteRecurringEntryRepository {
	return &SQLiteRecurringEntryRepository{db: db}
}
