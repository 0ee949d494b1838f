package store

import (
	"context"
	"time"

	financeDomain "github.com/allisson/finstore/internal/finance/domain"
	"github.com/allisson/finstore/internal/schema"
)

// TransactionAccessor serves encrypted reads and writes for the transactions
// table. Obtain one from Store.Transactions; it is safe for concurrent use.
type TransactionAccessor struct {
	store *Store
}

// Transactions returns the accessor for the transactions table.
func (s *Store) Transactions() *TransactionAccessor {
	return &TransactionAccessor{store: s}
}

// Add validates and persists a new transaction. The id and timestamps are
// assigned here; sensitive fields are encrypted before the row is written.
// The returned record is the plaintext form.
func (a *TransactionAccessor) Add(
	ctx context.Context,
	tx *financeDomain.Transaction,
) (_ *financeDomain.Transaction, err error) {
	defer func(start time.Time) {
		a.store.observe(ctx, schema.TableTransactions, "add", start, err)
	}(time.Now())

	sess, err := a.store.session()
	if err != nil {
		return nil, err
	}

	record := *tx
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
	if err = sess.transactions.Create(ctx, &stored); err != nil {
		return nil, err
	}
	return &record, nil
}

// Get retrieves one transaction by id, decrypted.
func (a *TransactionAccessor) Get(
	ctx context.Context,
	id string,
) (_ *financeDomain.Transaction, err error) {
	defer func(start time.Time) {
		a.store.observe(ctx, schema.TableTransactions, "get", start, err)
	}(time.Now())

	sess, err := a.store.session()
	if err != nil {
		return nil, err
	}

	tx, err := sess.transactions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.codec.DecryptRecord(tx)
	return tx, nil
}

// Query retrieves transactions matching the filter, decrypted and in
// occurrence order. The whole result set is materialized and decrypted before
// the optional match predicate runs, so predicates always see plaintext.
func (a *TransactionAccessor) Query(
	ctx context.Context,
	filter financeDomain.TransactionFilter,
	match func(*financeDomain.Transaction) bool,
) (_ []*financeDomain.Transaction, err error) {
	defer func(start time.Time) {
		a.store.observe(ctx, schema.TableTransactions, "query", start, err)
	}(time.Now())

	sess, err := a.store.session()
	if err != nil {
		return nil, err
	}

	txs, err := sess.transactions.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	for _, tx := range txs {
		sess.codec.DecryptRecord(tx)
	}
	if match == nil {
		return txs, nil
	}

	matched := make([]*financeDomain.Transaction, 0, len(txs))
	for _, tx := range txs {
		if match(tx) {
			matched = append(matched, tx)
		}
	}
	return matched, nil
}

// Update applies a partial patch to an existing transaction and returns the
// updated plaintext record. Sensitive fields the patch does not touch keep
// their original ciphertext.
func (a *TransactionAccessor) Update(
	ctx context.Context,
	id string,
	patch financeDomain.TransactionPatch,
) (_ *financeDomain.Transaction, err error) {
	defer func(start time.Time) {
		a.store.observe(ctx, schema.TableTransactions, "update", start, err)
	}(time.Now())

	sess, err := a.store.session()
	if err != nil {
		return nil, err
	}

	var updated *financeDomain.Transaction
	err = sess.txManager.WithTx(ctx, func(ctx context.Context) error {
		raw, err := sess.transactions.GetByID(ctx, id)
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
		if patch.OccurredAt != nil {
			plain.OccurredAt = *patch.OccurredAt
		}
		if patch.Description != nil {
			plain.Description = *patch.Description
		}
		if patch.Merchant != nil {
			plain.Merchant = *patch.Merchant
		}
		plain.UpdatedAt = time.Now().UTC()
		if err := plain.Validate(); err != nil {
			return invalidInput(err)
		}

		stored := plain
		fields := sess.registry.SensitiveFields(schema.TableTransactions)
		if err := sealPatched(sess.codec, fields, raw, &stored, &patch); err != nil {
			return err
		}
		if err := sess.transactions.Update(ctx, &stored); err != nil {
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

// Delete removes one transaction by id.
func (a *TransactionAccessor) Delete(ctx context.Context, id string) (err error) {
	defer func(start time.Time) {
		a.store.observe(ctx, schema.TableTransactions, "delete", start, err)
	}(time.Now())

	sess, err := a.store.session()
	if err != nil {
		return err
	}
	return sess.transactions.Delete(ctx, id)
}

// DeleteWhere removes every transaction matching the filter and reports how
// many rows were removed.
func (a *TransactionAccessor) DeleteWhere(
	ctx context.Context,
	filter financeDomain.TransactionFilter,
) (_ int64, err error) {
	defer func(start time.Time) {
		a.store.observe(ctx, schema.TableTransactions, "delete_where", start, err)
	}(time.Now())

	sess, err := a.store.session()
	if err != nil {
		return 0, err
	}
	return sess.transactions.DeleteWhere(ctx, filter)
}
