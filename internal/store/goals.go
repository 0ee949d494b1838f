package store

import (
	"context"
	"time"

	financeDomain "github.com/allisson/finstore/internal/finance/domain"
	"github.com/allisson/finstore/internal/schema"
)

// GoalAccessor serves encrypted reads and writes for the goals table.
type GoalAccessor struct {
	store *Store
}

// Goals returns the accessor for the goals table.
func (s *Store) Goals() *GoalAccessor {
	return &GoalAccessor{store: s}
}

// Add validates and persists a new goal.
func (a *GoalAccessor) Add(
	ctx context.Context,
	goal *financeDomain.Goal,
) (_ *financeDomain.Goal, err error) {
	defer func(start time.Time) {
		a.store.observe(ctx, schema.TableGoals, "add", start, err)
	}(time.Now())

	sess, err := a.store.session()
	if err != nil {
		return nil, err
	}

	record := *goal
	if record.ID == "" {
		if record.ID, err = newID(); err != nil {
			return nil, err
		}
	}
	if record.Status == "" {
		record.Status = financeDomain.GoalActive
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
	if err = sess.goals.Create(ctx, &stored); err != nil {
		return nil, err
	}
	return &record, nil
}

// Get retrieves one goal by id, decrypted.
func (a *GoalAccessor) Get(ctx context.Context, id string) (_ *financeDomain.Goal, err error) {
	defer func(start time.Time) {
		a.store.observe(ctx, schema.TableGoals, "get", start, err)
	}(time.Now())

	sess, err := a.store.session()
	if err != nil {
		return nil, err
	}

	goal, err := sess.goals.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.codec.DecryptRecord(goal)
	return goal, nil
}

// Query retrieves goals matching the filter, decrypted. The result set is
// fully decrypted before the optional match predicate runs.
func (a *GoalAccessor) Query(
	ctx context.Context,
	filter financeDomain.GoalFilter,
	match func(*financeDomain.Goal) bool,
) (_ []*financeDomain.Goal, err error) {
	defer func(start time.Time) {
		a.store.observe(ctx, schema.TableGoals, "query", start, err)
	}(time.Now())

	sess, err := a.store.session()
	if err != nil {
		return nil, err
	}

	goals, err := sess.goals.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	for _, goal := range goals {
		sess.codec.DecryptRecord(goal)
	}
	if match == nil {
		return goals, nil
	}

	matched := make([]*financeDomain.Goal, 0, len(goals))
	for _, goal := range goals {
		if match(goal) {
			matched = append(matched, goal)
		}
	}
	return matched, nil
}

// Update applies a partial patch to an existing goal.
func (a *GoalAccessor) Update(
	ctx context.Context,
	id string,
	patch financeDomain.GoalPatch,
) (_ *financeDomain.Goal, err error) {
	defer func(start time.Time) {
		a.store.observe(ctx, schema.TableGoals, "update", start, err)
	}(time.Now())

	sess, err := a.store.session()
	if err != nil {
		return nil, err
	}

	var updated *financeDomain.Goal
	err = sess.txManager.WithTx(ctx, func(ctx context.Context) error {
		raw, err := sess.goals.GetByID(ctx, id)
		if err != nil {
			return err
		}

		plain := *raw
		sess.codec.DecryptRecord(&plain)

		if patch.Status != nil {
			plain.Status = *patch.Status
		}
		if patch.TargetCents != nil {
			plain.TargetCents = *patch.TargetCents
		}
		if patch.SavedCents != nil {
			plain.SavedCents = *patch.SavedCents
		}
		if patch.TargetDate != nil {
			plain.TargetDate = *patch.TargetDate
		}
		if patch.Name != nil {
			plain.Name = *patch.Name
		}
		if patch.Note != nil {
			plain.Note = *patch.Note
		}
		plain.UpdatedAt = time.Now().UTC()
		if err := plain.Validate(); err != nil {
			return invalidInput(err)
		}

		stored := plain
		fields := sess.registry.SensitiveFields(schema.TableGoals)
		if err := sealPatched(sess.codec, fields, raw, &stored, &patch); err != nil {
			return err
		}
		if err := sess.goals.Update(ctx, &stored); err != nil {
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

// Delete removes one goal by id.
func (a *GoalAccessor) Delete(ctx context.Context, id string) (err error) {
	defer func(start time.Time) {
		a.store.observe(ctx, schema.TableGoals, "delete", start, err)
	}(time.Now())

	sess, err := a.store.session()
	if err != nil {
		return err
	}
	return sess.goals.Delete(ctx, id)
}

// DeleteWhere removes every goal matching the filter.
func (a *GoalAccessor) DeleteWhere(
	ctx context.Context,
	filter financeDomain.GoalFilter,
) (_ int64, err error) {
	defer func(start time.Time) {
		a.store.observe(ctx, schema.TableGoals, "delete_where", start, err)
	}(time.Now())

	sess, err := a.store.session()
	if err != nil {
		return 0, err
	}
	return sess.goals.DeleteWhere(ctx, filter)
}
