package store

import (
	"context"
	"time"

	financeDomain "github.com/allisson/finstore/internal/finance/domain"
	"github.com/allisson/finstore/internal/schema"
)

// NotificationAccessor serves encrypted reads and writes for the
// notifications table.
type NotificationAccessor struct {
	store *Store
}

// Notifications returns the accessor for the notifications table.
func (s *Store) Notifications() *NotificationAccessor {
	return &NotificationAccessor{store: s}
}

// Add validates and persists a new notification.
func (a *NotificationAccessor) Add(
	ctx context.Context,
	notification *financeDomain.Notification,
) (_ *financeDomain.Notification, err error) {
	defer func(start time.Time) {
		a.store.observe(ctx, schema.TableNotifications, "add", start, err)
	}(time.Now())

	sess, err := a.store.session()
	if err != nil {
		return nil, err
	}

	record := *notification
	if record.ID == "" {
		if record.ID, err = newID(); err != nil {
			return nil, err
		}
	}
	record.CreatedAt = time.Now().UTC()
	if err = record.Validate(); err != nil {
		return nil, invalidInput(err)
	}

	stored := record
	if err = sess.codec.EncryptRecord(&stored); err != nil {
		return nil, err
	}
	if err = sess.notifications.Create(ctx, &stored); err != nil {
		return nil, err
	}
	return &record, nil
}

// Get retrieves one notification by id, decrypted.
func (a *NotificationAccessor) Get(
	ctx context.Context,
	id string,
) (_ *financeDomain.Notification, err error) {
	defer func(start time.Time) {
		a.store.observe(ctx, schema.TableNotifications, "get", start, err)
	}(time.Now())

	sess, err := a.store.session()
	if err != nil {
		return nil, err
	}

	notification, err := sess.notifications.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.codec.DecryptRecord(notification)
	return notification, nil
}

// Query retrieves notifications matching the filter, decrypted, oldest
// first. The result set is fully decrypted before the optional match
// predicate runs.
func (a *NotificationAccessor) Query(
	ctx context.Context,
	filter financeDomain.NotificationFilter,
	match func(*financeDomain.Notification) bool,
) (_ []*financeDomain.Notification, err error) {
	defer func(start time.Time) {
		a.store.observe(ctx, schema.TableNotifications, "query", start, err)
	}(time.Now())

	sess, err := a.store.session()
	if err != nil {
		return nil, err
	}

	notifications, err := sess.notifications.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	for _, notification := range notifications {
		sess.codec.DecryptRecord(notification)
	}
	if match == nil {
		return notifications, nil
	}

	matched := make([]*financeDomain.Notification, 0, len(notifications))
	for _, notification := range notifications {
		if match(notification) {
			matched = append(matched, notification)
		}
	}
	return matched, nil
}

// Update applies a partial patch to an existing notification.
func (a *NotificationAccessor) Update(
	ctx context.Context,
	id string,
	patch financeDomain.NotificationPatch,
) (_ *financeDomain.Notification, err error) {
	defer func(start time.Time) {
		a.store.observe(ctx, schema.TableNotifications, "update", start, err)
	}(time.Now())

	sess, err := a.store.session()
	if err != nil {
		return nil, err
	}

	var updated *financeDomain.Notification
	err = sess.txManager.WithTx(ctx, func(ctx context.Context) error {
		raw, err := sess.notifications.GetByID(ctx, id)
		if err != nil {
			return err
		}

		plain := *raw
		sess.codec.DecryptRecord(&plain)

		if patch.Read != nil {
			plain.Read = *patch.Read
		}
		if patch.Message != nil {
			plain.Message = *patch.Message
		}
		if err := plain.Validate(); err != nil {
			return invalidInput(err)
		}

		stored := plain
		fields := sess.registry.SensitiveFields(schema.TableNotifications)
		if err := sealPatched(sess.codec, fields, raw, &stored, &patch); err != nil {
			return err
		}
		if err := sess.notifications.Update(ctx, &stored); err != nil {
			return err
		}
		updated = &plain
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes one notification by id.
func (a *NotificationAccessor) Delete(ctx context.Context, id string) (err error) {
	defer func(start time.Time) {
		a.store.observe(ctx, schema.TableNotifications, "delete", start, err)
	}(time.Now())

	sess, err := a.store.session()
	if err != nil {
		return err
	}
	return sess.notifications.Delete(ctx, id)
}

// DeleteWhere removes every notification matching the filter.
func (a *NotificationAccessor) DeleteWhere(
	ctx context.Context,
	filter financeDomain.NotificationFilter,
) (_ int64, err error) {
	defer func(start time.Time) {
		a.store.observe(ctx, schema.TableNotifications, "delete_where", start, err)
	}(time.Now())

	sess, err := a.store.session()
	if err != nil {
		return 0, err
	}
	return sess.notifications.DeleteWhere(ctx, filter)
}
