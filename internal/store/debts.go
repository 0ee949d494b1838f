package store

import (
	"context"
	"time"

	financeDomain "github.com/allisson/finstore/internal/finance/domain"
	"github.com/allisson/finstore/internal/schema"
)

// DebtAccessor serves encrypted reads and writes for the debts table.
type DebtAccessor struct {
	store *Store
}

// Debts returns the accessor for the debts table.
func (s *Store) Debts() *DebtAccessor {
	return &DebtAccessor{store: s}
}

// Add validates and persists a new debt. A zero balance defaults to the
// original amount.
func (a *DebtAccessor) Add(
	ctx context.Context,
	debt *financeDomain.Debt,
) (_ *financeDomain.Debt, err error) {
	defer func(start time.Time) {
		a.store.observe(ctx, schema.TableDebts, "add", start, err)
	}(time.Now())

	sess, err := a.store.session()
	if err != nil {
		return nil, err
	}

	record := *debt
	if record.ID == "" {
		if record.ID, err = newID(); err != nil {
			return nil, err
		}
	}
	if record.BalanceCents == 0 {
		record.BalanceCents = record.OriginalCents
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
	if err = sess.debts.Create(ctx, &stored); err != nil {
		return nil, err
	}
	return &record, nil
}

// Get retrieves one debt by id, decrypted.
func (a *DebtAccessor) Get(ctx context.Context, id string) (_ *financeDomain.Debt, err error) {
	defer func(start time.Time) {
		a.store.observe(ctx, schema.TableDebts, "get", start, err)
	}(time.Now())

	sess, err := a.store.session()
	if err != nil {
		return nil, err
	}

	debt, err := sess.debts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.codec.DecryptRecord(debt)
	return debt, nil
}

// Query retrieves debts matching the filter, decrypted and in due-date
// order. The result set is fully decrypted before the optional match
// predicate runs.
func (a *DebtAccessor) Query(
	ctx context.Context,
	filter financeDomain.DebtFilter,
	match func(*financeDomain.Debt) bool,
) (_ []*financeDomain.Debt, err error) {
	defer func(start time.Time) {
		a.store.observe(ctx, schema.TableDebts, "query", start, err)
	}(time.Now())

	sess, err := a.store.session()
	if err != nil {
		return nil, err
	}

	debts, err := sess.debts.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	for _, debt := range debts {
		sess.codec.DecryptRecord(debt)
	}
	if match == nil {
		return debts, nil
	}

	matched := make([]*financeDomain.Debt, 0, len(debts))
	for _, debt := range debts {
		if match(debt) {
			matched = append(matched, debt)
		}
	}
	return matched, nil
}

// Update applies a partial patch to an existing debt.
func (a *DebtAccessor) Update(
	ctx context.Context,
	id string,
	patch financeDomain.DebtPatch,
) (_ *financeDomain.Debt, err error) {
	defer func(start time.Time) {
		a.store.observe(ctx, schema.TableDebts, "update", start, err)
	}(time.Now())

	sess, err := a.store.session()
	if err != nil {
		return nil, err
	}

	var updated *financeDomain.Debt
	err = sess.txManager.WithTx(ctx, func(ctx context.Context) error {
		raw, err := sess.debts.GetByID(ctx, id)
		if err != nil {
			return err
		}

		plain := *raw
		sess.codec.DecryptRecord(&plain)

		if patch.OriginalCents != nil {
			plain.OriginalCents = *patch.OriginalCents
		}
		if patch.BalanceCents != nil {
			plain.BalanceCents = *patch.BalanceCents
		}
		if patch.InterestBps != nil {
			plain.InterestBps = *patch.InterestBps
		}
		if patch.DueDate != nil {
			plain.DueDate = *patch.DueDate
		}
		if patch.Creditor != nil {
			plain.Creditor = *patch.Creditor
		}
		if patch.Note != nil {
			plain.Note = *patch.Note
		}
		plain.UpdatedAt = time.Now().UTC()
		if err := plain.Validate(); err != nil {
			return invalidInput(err)
		}

		stored := plain
		fields := sess.registry.SensitiveFields(schema.TableDebts)
		if err := sealPatched(sess.codec, fields, raw, &stored, &patch); err != nil {
			return err
		}
		if err := sess.debts.Update(ctx, &stored); err != nil {
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

// Delete removes one debt by id.
func (a *DebtAccessor) Delete(ctx context.Context, id string) (err error) {
	defer func(start time.Time) {
		a.store.observe(ctx, schema.TableDebts, "delete", start, err)
	}(time.Now())

	sess, err := a.store.session()
	if err != nil {
		return err
	}
	return sess.debts.Delete(ctx, id)
}

// DeleteWhere removes every debt matching the filter.
func (a *DebtAccessor) DeleteWhere(
	ctx context.Context,
	filter financeDomain.DebtFilter,
) (_ int64, err error) {
	defer func(start time.Time) {
		a.store.observe(ctx, schema.TableDebts, "delete_where", start, err)
	}(time.Now())

	sess, err := a.store.session()
	if err != nil {
		return 0, err
	}
	return sess.debts.DeleteWhere(ctx, filter)
}
