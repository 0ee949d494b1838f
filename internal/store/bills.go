package store

import (
	"context"
	"time"

	financeDomain "github.com/allisson/finstore/internal/finance/domain"
	"github.com/allisson/finstore/internal/schema"
)

// BillAccessor serves encrypted reads and writes for the bills table.
type BillAccessor struct {
	store *Store
}

// Bills returns the accessor for the bills table.
func (s *Store) Bills() *BillAccessor {
	return &BillAccessor{store: s}
}

// Add validates and persists a new bill.
func (a *BillAccessor) Add(
	ctx context.Context,
	bill *financeDomain.Bill,
) (_ *financeDomain.Bill, err error) {
	defer func(start time.Time) {
		a.store.observe(ctx, schema.TableBills, "add", start, err)
	}(time.Now())

	sess, err := a.store.session()
	if err != nil {
		return nil, err
	}

	record := *bill
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
	if err = sess.bills.Create(ctx, &stored); err != nil {
		return nil, err
	}
	return &record, nil
}

// Get retrieves one bill by id, decrypted.
func (a *BillAccessor) Get(ctx context.Context, id string) (_ *financeDomain.Bill, err error) {
	defer func(start time.Time) {
		a.store.observe(ctx, schema.TableBills, "get", start, err)
	}(time.Now())

	sess, err := a.store.session()
	if err != nil {
		return nil, err
	}

	bill, err := sess.bills.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.codec.DecryptRecord(bill)
	return bill, nil
}

// Query retrieves bills matching the filter, decrypted and in due-date
// order. The result set is fully decrypted before the optional match
// predicate runs.
func (a *BillAccessor) Query(
	ctx context.Context,
	filter financeDomain.BillFilter,
	match func(*financeDomain.Bill) bool,
) (_ []*financeDomain.Bill, err error) {
	defer func(start time.Time) {
		a.store.observe(ctx, schema.TableBills, "query", start, err)
	}(time.Now())

	sess, err := a.store.session()
	if err != nil {
		return nil, err
	}

	bills, err := sess.bills.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	for _, bill := range bills {
		sess.codec.DecryptRecord(bill)
	}
	if match == nil {
		return bills, nil
	}

	matched := make([]*financeDomain.Bill, 0, len(bills))
	for _, bill := range bills {
		if match(bill) {
			matched = append(matched, bill)
		}
	}
	return matched, nil
}

// Update applies a partial patch to an existing bill.
func (a *BillAccessor) Update(
	ctx context.Context,
	id string,
	patch financeDomain.BillPatch,
) (_ *financeDomain.Bill, err error) {
	defer func(start time.Time) {
		a.store.observe(ctx, schema.TableBills, "update", start, err)
	}(time.Now())

	sess, err := a.store.session()
	if err != nil {
		return nil, err
	}

	var updated *financeDomain.Bill
	err = sess.txManager.WithTx(ctx, func(ctx context.Context) error {
		raw, err := sess.bills.GetByID(ctx, id)
		if err != nil {
			return err
		}

		plain := *raw
		sess.codec.DecryptRecord(&plain)

		if patch.AmountCents != nil {
			plain.AmountCents = *patch.AmountCents
		}
		if patch.DueDate != nil {
			plain.DueDate = *patch.DueDate
		}
		if patch.Paid != nil {
			plain.Paid = *patch.Paid
		}
		if patch.Payee != nil {
			plain.Payee = *patch.Payee
		}
		if patch.Note != nil {
			plain.Note = *patch.Note
		}
		plain.UpdatedAt = time.Now().UTC()
		if err := plain.Validate(); err != nil {
			return invalidInput(err)
		}

		stored := plain
		fields := sess.registry.SensitiveFields(schema.TableBills)
		if err := sealPatched(sess.codec, fields, raw, &stored, &patch); err != nil {
			return err
		}
		if err := sess.bills.Update(ctx, &stored); err != nil {
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

// Delete removes one bill by id.
func (a *BillAccessor) Delete(ctx context.Context, id string) (err error) {
	defer func(start time.Time) {
		a.store.observe(ctx, schema.TableBills, "delete", start, err)
	}(time.Now())

	sess, err := a.store.session()
	if err != nil {
		return err
	}
	return sess.bills.Delete(ctx, id)
}

// DeleteWhere removes every bill matching the filter.
func (a *BillAccessor) DeleteWhere(
	ctx context.Context,
	filter financeDomain.BillFilter,
) (_ int64, err error) {
	defer func(start time.Time) {
		a.store.observe(ctx, schema.TableBills, "delete_where", start, err)
	}(time.Now())

	sess, err := a.store.session()
	if err != nil {
		return 0, err
	}
	return sess.bills.DeleteWhere(ctx, filter)
}
