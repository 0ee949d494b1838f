package store

import (
	"context"
	"time"

	financeDomain "github.com/allisson/finstore/internal/finance/domain"
	"github.com/allisson/finstore/internal/schema"
)

// BudgetAccessor serves encrypted reads and writes for the budgets table.
type BudgetAccessor struct {
	store *Store
}

// Budgets returns the accessor for the budgets table.
func (s *Store) Budgets() *BudgetAccessor {
	return &BudgetAccessor{store: s}
}

// Add validates and persists a new budget.
func (a *BudgetAccessor) Add(
	ctx context.Context,
	budget *financeDomain.Budget,
) (_ *financeDomain.Budget, err error) {
	defer func(start time.Time) {
		a.store.observe(ctx, schema.TableBudgets, "add", start, err)
	}(time.Now())

	sess, err := a.store.session()
	if err != nil {
		return nil, err
	}

	record := *budget
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
	if err = sess.budgets.Create(ctx, &stored); err != nil {
		return nil, err
	}
	return &record, nil
}

// Get retrieves one budget by id, decrypted.
func (a *BudgetAccessor) Get(ctx context.Context, id string) (_ *financeDomain.Budget, err error) {
	defer func(start time.Time) {
		a.store.observe(ctx, schema.TableBudgets, "get", start, err)
	}(time.Now())

	sess, err := a.store.session()
	if err != nil {
		return nil, err
	}

	budget, err := sess.budgets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.codec.DecryptRecord(budget)
	return budget, nil
}

// Query retrieves budgets matching the filter, decrypted. The result set is
// fully decrypted before the optional match predicate runs.
func (a *BudgetAccessor) Query(
	ctx context.Context,
	filter financeDomain.BudgetFilter,
	match func(*financeDomain.Budget) bool,
) (_ []*financeDomain.Budget, err error) {
	defer func(start time.Time) {
		a.store.observe(ctx, schema.TableBudgets, "query", start, err)
	}(time.Now())

	sess, err := a.store.session()
	if err != nil {
		return nil, err
	}

	budgets, err := sess.budgets.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	for _, budget := range budgets {
		sess.codec.DecryptRecord(budget)
	}
	if match == nil {
		return budgets, nil
	}

	matched := make([]*financeDomain.Budget, 0, len(budgets))
	for _, budget := range budgets {
		if match(budget) {
			matched = append(matched, budget)
		}
	}
	return matched, nil
}

// Update applies a partial patch to an existing budget.
func (a *BudgetAccessor) Update(
	ctx context.Context,
	id string,
	patch financeDomain.BudgetPatch,
) (_ *financeDomain.Budget, err error) {
	defer func(start time.Time) {
		a.store.observe(ctx, schema.TableBudgets, "update", start, err)
	}(time.Now())

	sess, err := a.store.session()
	if err != nil {
		return nil, err
	}

	var updated *financeDomain.Budget
	err = sess.txManager.WithTx(ctx, func(ctx context.Context) error {
		raw, err := sess.budgets.GetByID(ctx, id)
		if err != nil {
			return err
		}

		plain := *raw
		sess.codec.DecryptRecord(&plain)

		if patch.Category != nil {
			plain.Category = *patch.Category
		}
		if patch.Period != nil {
			plain.Period = *patch.Period
		}
		if patch.LimitCents != nil {
			plain.LimitCents = *patch.LimitCents
		}
		if patch.Note != nil {
			plain.Note = *patch.Note
		}
		plain.UpdatedAt = time.Now().UTC()
		if err := plain.Validate(); err != nil {
			return invalidInput(err)
		}

		stored := plain
		fields := sess.registry.SensitiveFields(schema.TableBudgets)
		if err := sealPatched(sess.codec, fields, raw, &stored, &patch); err != nil {
			return err
		}
		if err := sess.budgets.Update(ctx, &stored); err != nil {
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

// Delete removes one budget by id.
func (a *BudgetAccessor) Delete(ctx context.Context, id string) (err error) {
	defer func(start time.Time) {
		a.store.observe(ctx, schema.TableBudgets, "delete", start, err)
	}(time.Now())

	sess, err := a.store.session()
	if err != nil {
		return err
	}
	return sess.budgets.Delete(ctx, id)
}

// DeleteWhere removes every budget matching the filter.
func (a *BudgetAccessor) DeleteWhere(
	ctx context.Context,
	filter financeDomain.BudgetFilter,
) (_ int64, err error) {
	defer func(start time.Time) {
		a.store.observe(ctx, schema.TableBudgets, "delete_where", start, err)
	}(time.Now())

	sess, err := a.store.session()
	if err != nil {
		return 0, err
	}
	return sess.budgets.DeleteWhere(ctx, filter)
}
