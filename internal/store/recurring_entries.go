package store

import (
	"context"
	"time"

	financeDomain "github.com/allisson/finstore/internal/finance/domain"
	"github.com/allisson/finstore/internal/schema"
)

// RecurringEntryAccessor serves encrypted reads and writes for the
// recurring_entries table.
type RecurringEntryAccessor struct {
	store *Store
}

// RecurringEntries returns the accessor for the recurring_entries table.
func (s *Store) RecurringEntries() *RecurringEntryAccessor {
	return &RecurringEntryAccessor{store: s}
}

// Add validates and persists a new recurring entry.
func (a *RecurringEntryAccessor) Add(
	ctx context.Context,
	entry *financeDomain.RecurringEntry,
) (_ *financeDomain.RecurringEntry, err error) {
	defer func(start time.Time) {
		a.store.observe(ctx, schema.TableRecurringEntries, "add", start, err)
	}(time.Now())

	sess, err := a.store.session()
	if err != nil {
		return nil, err
	}

	record := *entry
	if record.ID == "" {
		if record.ID, err = newID(); err != nil {
			return nil, err
		}
	}
	now := time.Now().UTC()
	record.CreatedAt = now
	record.UpdatedAt = now
	if err = record.Validate(); err != nil {
		return nil, invalidInput(err)
	}

	stored := record
	if err = sess.codec.EncryptRecord(&stored); err != nil {
		return nil, err
	}
	if err = sess.recurringEntries.Create(ctx, &stored); err != nil {
		return nil, err
	}
	return &record, nil
}

// Get retrieves one recurring entry by id, decrypted.
func (a *RecurringEntryAccessor) Get(
	ctx context.Context,
	id string,
) (_ *financeDomain.RecurringEntry, err error) {
	defer func(start time.Time) {
		a.store.observe(ctx, schema.TableRecurringEntries, "get", start, err)
	}(time.Now())

	sess, err := a.store.session()
	if err != nil {
		return nil, err
	}

	entry, err := sess.recurringEntries.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.codec.DecryptRecord(entry)
	return entry, nil
}

// Query retrieves recurring entries matching the filter, decrypted and in
// next-run order. The result set is fully decrypted before the optional
// match predicate runs.
func (a *RecurringEntryAccessor) Query(
	ctx context.Context,
	filter financeDomain.RecurringEntryFilter,
	match func(*financeDomain.RecurringEntry) bool,
) (_ []*financeDomain.RecurringEntry, err error) {
	defer func(start time.Time) {
		a.store.observe(ctx, schema.TableRecurringEntries, "query", start, err)
	}(time.Now())

	sess, err := a.store.session()
	if err != nil {
		return nil, err
	}

	entries, err := sess.recurringEntries.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		sess.codec.DecryptRecord(entry)
	}
	if match == nil {
		return entries, nil
	}

	matched := make([]*financeDomain.RecurringEntry, 0, len(entries))
	for _, entry := range entries {
		if match(entry) {
			matched = append(matched, entry)
		}
	}
	return matched, nil
}

// Update applies a partial patch to an existing recurring entry.
func (a *RecurringEntryAccessor) Update(
	ctx context.Context,
	id string,
	patch financeDomain.RecurringEntryPatch,
) (_ *financeDomain.RecurringEntry, err error) {
	defer func(start time.Time) {
		a.store.observe(ctx, schema.TableRecurringEntries, "update", start, err)
	}(time.Now())

	sess, err := a.store.session()
	if err != nil {
		return nil, err
	}

	var updated *financeDomain.RecurringEntry
	err = sess.txManager.WithTx(ctx, func(ctx context.Context) error {
		raw, err := sess.recurringEntries.GetByID(ctx, id)
		if err != nil {
			return err
		}

		plain := *raw
		sess.codec.DecryptRecord(&plain)

		if patch.Kind != nil {
			plain.Kind = *patch.Kind
		}
		if patch.Category != nil {
			plain.Category = *patch.Category
		}
		if patch.AmountCents != nil {
			plain.AmountCents = *patch.AmountCents
		}
		if patch.Frequency != nil {
			plain.Frequency = *patch.Frequency
		}
		if patch.NextRunAt != nil {
			plain.NextRunAt = *patch.NextRunAt
		}
		if patch.Active != nil {
			plain.Active = *patch.Active
		}
		if patch.Description != nil {
			plain.Description = *patch.Description
		}
		plain.UpdatedAt = time.Now().UTC()
		if err := plain.Validate(); err != nil {
			return invalidInput(err)
		}

		stored := plain
		fields := sess.registry.SensitiveFields(schema.TableRecurringEntries)
		if err := sealPatched(sess.codec, fields, raw, &stored, &patch); err != nil {
			return err
		}
		if err := sess.recurringEntries.Update(ctx, &stored); err != nil {
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

// Delete removes one recurring entry by id.
func (a *RecurringEntryAccessor) Delete(ctx context.Context, id string) (err error) {
	defer func(start time.Time) {
		a.store.observe(ctx, schema.TableRecurringEntries, "delete", start, err)
	}(time.Now())

	sess, err := a.store.session()
	if err != nil {
		return err
	}
	return sess.recurringEntries.Delete(ctx, id)
}

// DeleteWhere removes every recurring entry matching the filter.
func (a *RecurringEntryAccessor) DeleteWhere(
	ctx context.Context,
	filter financeDomain.RecurringEntryFilter,
) (_ int64, err error) {
	defer func(start time.Time) {
		a.store.observe(ctx, schema.TableRecurringEntries, "delete_where", start, err)
	}(time.Now())

	sess, err := a.store.session()
	if err != nil {
		return 0, err
	}
	return sess.recurringEntries.DeleteWhere(ctx, filter)
}
