package repository

import (
	"context"
	"database/sql"

	"github.com/allisson/finstore/internal/database"
	apperrors "github.com/allisson/finstore/internal/errors"
	financeDomain "github.com/allisson/finstore/internal/finance/domain"
)

// SQLiteNotificationRepository implements Notification persistence for SQLite.
type SQLiteNotificationRepository struct {
	db *sql.DB
}

// Create inserts a new notification.
func (s *SQLiteNotificationRepository) Create(ctx context.Context, notification *financeDomain.Notification) error {
	querier := database.GetTx(ctx, s.db)

	query := `INSERT INTO notifications (id, kind, read, message, created_at)
			  VALUES (?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		notification.ID,
		notification.Kind,
		notification.Read,
		notification.Message,
		notification.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create notification")
	}
	return nil
}

// Update replaces the mutable columns of an existing notification.
func (s *SQLiteNotificationRepository) Update(ctx context.Context, notification *financeDomain.Notification) error {
	querier := database.GetTx(ctx, s.db)

	query := `UPDATE notifications
			  SET kind = ?, read = ?, message = ?
			  WHERE id = ?`

	result, err := querier.ExecContext(
		ctx,
		query,
		notification.Kind,
		notification.Read,
		notification.Message,
		notification.ID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update notification")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to update notification")
	}
	if rows == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// GetByID retrieves a notification by its identifier.
func (s *SQLiteNotificationRepository) GetByID(ctx context.Context, id string) (*financeDomain.Notification, error) {
	querier := database.GetTx(ctx, s.db)

	query := `SELECT id, kind, read, message, created_at
			  FROM notifications
			  WHERE id = ?
			  LIMIT 1`

	var notification financeDomain.Notification
	err := querier.QueryRowContext(ctx, query, id).Scan(
		&notification.ID,
		&notification.Kind,
		&notification.Read,
		&notification.Message,
		&notification.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get notification by id")
	}

	return &notification, nil
}

// List retrieves notifications matching the filter, oldest first.
func (s *SQLiteNotificationRepository) List(
	ctx context.Context,
	filter financeDomain.NotificationFilter,
) ([]*financeDomain.Notification, error) {
	querier := database.GetTx(ctx, s.db)

	f := notificationFilter(filter)
	query := `SELECT id, kind, read, message, created_at
			  FROM notifications` + f.where() + ` ORDER BY created_at ASC, id ASC` + paging(filter.Limit, filter.Offset)

	rows, err := querier.QueryContext(ctx, query, f.args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list notifications")
	}
	defer rows.Close()

	var notifications []*financeDomain.Notification
	for rows.Next() {
		var notification financeDomain.Notification
		err := rows.Scan(
			&notification.ID,
			&notification.Kind,
			&notification.Read,
			&notification.Message,
			&notification.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan notification")
		}
		notifications = append(notifications, &notification)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to list notifications")
	}

	return notifications, nil
}

// Delete removes a notification by its identifier.
func (s *SQLiteNotificationRepository) Delete(ctx context.Context, id string) error {
	querier := database.GetTx(ctx, s.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM notifications WHERE id = ?`, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete notification")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to delete notification")
	}
	if rows == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteWhere removes every notification matching the filter.
func (s *SQLiteNotificationRepository) DeleteWhere(
	ctx context.Context,
	filter financeDomain.NotificationFilter,
) (int64, error) {
	querier := database.GetTx(ctx, s.db)

	f := notificationFilter(filter)
	result, err := querier.ExecContext(ctx, `DELETE FROM notifications`+f.where(), f.args...)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete notifications")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete notifications")
	}
	return rows, nil
}

func notificationFilter(filter financeDomain.NotificationFilter) sqlFilter {
	var f sqlFilter
	if filter.Kind != nil {
		f.add("kind = ?", *filter.Kind)
	}
	if filter.Read != nil {
		f.add("read = ?", *filter.Read)
	}
	if filter.CreatedFrom != nil {
		f.add("created_at >= ?", *filter.CreatedFrom)
	}
	return f
}

// NewSQLiteNotificationRepository creates a new SQLite Notification repository instance.
func NewSQLiteNotificationRepository(db *sql.DB) *SQLiteNotificationRepository {
	return &SQLiteNotificationRepository{db: db}
}
