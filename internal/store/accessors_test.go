package store

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/finstore/internal/crypto/domain"
	apperrors "github.com/allisson/finstore/internal/errors"
	financeDomain "github.com/allisson/finstore/internal/finance/domain"
	"github.com/allisson/finstore/internal/schema"
	"github.com/allisson/finstore/internal/testutil"
)

func TestGoalAccessor(t *testing.T) {
	ctx := context.Background()

	t.Run("add defaults status to active and encrypts name and note", func(t *testing.T) {
		s := openTestStore(t)

		goal, err := s.Goals().Add(ctx, &financeDomain.Goal{
			TargetCents: 500000,
			Name:        "emergency fund",
			Note:        "three months of expenses",
		})
		require.NoError(t, err)
		assert.Equal(t, financeDomain.GoalActive, goal.Status)

		raw := testutil.RawColumn(t, s.sess.db, schema.TableGoals, "name", goal.ID)
		assert.True(t, strings.HasPrefix(raw, cryptoDomain.EncryptedMarker))

		found, err := s.Goals().Get(ctx, goal.ID)
		require.NoError(t, err)
		assert.Equal(t, "emergency fund", found.Name)
		assert.Equal(t, "three months of expenses", found.Note)
	})

	t.Run("query filters by status", func(t *testing.T) {
		s := openTestStore(t)

		_, err := s.Goals().Add(ctx, &financeDomain.Goal{TargetCents: 1000, Name: "active goal"})
		require.NoError(t, err)
		_, err = s.Goals().Add(ctx, &financeDomain.Goal{
			Status:      financeDomain.GoalArchived,
			TargetCents: 1000,
			Name:        "archived goal",
		})
		require.NoError(t, err)

		status := financeDomain.GoalArchived
		goals, err := s.Goals().Query(ctx, financeDomain.GoalFilter{Status: &status}, nil)
		require.NoError(t, err)
		require.Len(t, goals, 1)
		assert.Equal(t, "archived goal", goals[0].Name)
	})

	t.Run("update patches saved amount and status", func(t *testing.T) {
		s := openTestStore(t)

		goal, err := s.Goals().Add(ctx, &financeDomain.Goal{TargetCents: 1000, Name: "vacation"})
		require.NoError(t, err)

		saved := int64(1000)
		status := financeDomain.GoalReached
		updated, err := s.Goals().Update(ctx, goal.ID, financeDomain.GoalPatch{
			SavedCents: &saved,
			Status:     &status,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1000), updated.SavedCents)
		assert.Equal(t, financeDomain.GoalReached, updated.Status)
		assert.Equal(t, "vacation", updated.Name)
	})
}

func TestBillAccessor(t *testing.T) {
	ctx := context.Background()
	due := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)

	t.Run("add and mark paid", func(t *testing.T) {
		s := openTestStore(t)

		bill, err := s.Bills().Add(ctx, &financeDomain.Bill{
			AmountCents: 12000,
			DueDate:     due,
			Payee:       "electric company",
			Note:        "autopay failed",
		})
		require.NoError(t, err)
		assert.False(t, bill.Paid)

		raw := testutil.RawColumn(t, s.sess.db, schema.TableBills, "payee", bill.ID)
		assert.True(t, strings.HasPrefix(raw, cryptoDomain.EncryptedMarker))

		paid := true
		updated, err := s.Bills().Update(ctx, bill.ID, financeDomain.BillPatch{Paid: &paid})
		require.NoError(t, err)
		assert.True(t, updated.Paid)
		assert.Equal(t, "electric company", updated.Payee)
	})

	t.Run("query unpaid bills in a due window", func(t *testing.T) {
		s := openTestStore(t)

		_, err := s.Bills().Add(ctx, &financeDomain.Bill{
			AmountCents: 12000, DueDate: due, Payee: "electric company",
		})
		require.NoError(t, err)
		_, err = s.Bills().Add(ctx, &financeDomain.Bill{
			AmountCents: 8000, DueDate: due.Add(60 * 24 * time.Hour), Payee: "water utility",
		})
		require.NoError(t, err)

		paid := false
		from := due.Add(-24 * time.Hour)
		to := due.Add(24 * time.Hour)
		bills, err := s.Bills().Query(ctx, financeDomain.BillFilter{
			Paid:    &paid,
			DueFrom: &from,
			DueTo:   &to,
		}, nil)
		require.NoError(t, err)
		require.Len(t, bills, 1)
		assert.Equal(t, "electric company", bills[0].Payee)
	})
}

func TestBudgetAccessor(t *testing.T) {
	ctx := context.Background()

	t.Run("add validates the period format", func(t *testing.T) {
		s := openTestStore(t)

		_, err := s.Budgets().Add(ctx, &financeDomain.Budget{
			Category:   "groceries",
			Period:     "August 2026",
			LimitCents: 50000,
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

		budget, err := s.Budgets().Add(ctx, &financeDomain.Budget{
			Category:   "groceries",
			Period:     "2026-08",
			LimitCents: 50000,
			Note:       "tighten up",
		})
		require.NoError(t, err)

		raw := testutil.RawColumn(t, s.sess.db, schema.TableBudgets, "note", budget.ID)
		assert.True(t, strings.HasPrefix(raw, cryptoDomain.EncryptedMarker))
	})

	t.Run("query filters by category and period", func(t *testing.T) {
		s := openTestStore(t)

		_, err := s.Budgets().Add(ctx, &financeDomain.Budget{
			Category: "groceries", Period: "2026-08", LimitCents: 50000,
		})
		require.NoError(t, err)
		_, err = s.Budgets().Add(ctx, &financeDomain.Budget{
			Category: "groceries", Period: "2026-09", LimitCents: 50000,
		})
		require.NoError(t, err)

		period := "2026-09"
		budgets, err := s.Budgets().Query(ctx, financeDomain.BudgetFilter{Period: &period}, nil)
		require.NoError(t, err)
		require.Len(t, budgets, 1)
		assert.Equal(t, "2026-09", budgets[0].Period)
	})
}

func TestRecurringEntryAccessor(t *testing.T) {
	ctx := context.Background()
	nextRun := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	t.Run("add and query due entries", func(t *testing.T) {
		s := openTestStore(t)

		entry, err := s.RecurringEntries().Add(ctx, &financeDomain.RecurringEntry{
			Kind:        financeDomain.KindExpense,
			Category:    "housing",
			AmountCents: 150000,
			Frequency:   financeDomain.FrequencyMonthly,
			NextRunAt:   nextRun,
			Active:      true,
			Description: "rent",
		})
		require.NoError(t, err)

		raw := testutil.RawColumn(t, s.sess.db, schema.TableRecurringEntries, "description", entry.ID)
		assert.True(t, strings.HasPrefix(raw, cryptoDomain.EncryptedMarker))

		active := true
		before := nextRun.Add(time.Hour)
		entries, err := s.RecurringEntries().Query(ctx, financeDomain.RecurringEntryFilter{
			Active:        &active,
			NextRunBefore: &before,
		}, nil)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "rent", entries[0].Description)
	})

	t.Run("update advances the schedule", func(t *testing.T) {
		s := openTestStore(t)

		entry, err := s.RecurringEntries().Add(ctx, &financeDomain.RecurringEntry{
			Kind:        financeDomain.KindExpense,
			Category:    "housing",
			AmountCents: 150000,
			Frequency:   financeDomain.FrequencyMonthly,
			NextRunAt:   nextRun,
			Active:      true,
			Description: "rent",
		})
		require.NoError(t, err)

		advanced := nextRun.AddDate(0, 1, 0)
		updated, err := s.RecurringEntries().Update(ctx, entry.ID, financeDomain.RecurringEntryPatch{
			NextRunAt: &advanced,
		})
		require.NoError(t, err)
		assert.True(t, advanced.Equal(updated.NextRunAt))
		assert.Equal(t, "rent", updated.Description)
	})
}

func TestDebtAccessor(t *testing.T) {
	ctx := context.Background()
	due := time.Date(2027, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("add defaults the balance to the original amount", func(t *testing.T) {
		s := openTestStore(t)

		debt, err := s.Debts().Add(ctx, &financeDomain.Debt{
			OriginalCents: 250000,
			DueDate:       due,
			Creditor:      "family loan",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(250000), debt.BalanceCents)

		raw := testutil.RawColumn(t, s.sess.db, schema.TableDebts, "creditor", debt.ID)
		assert.True(t, strings.HasPrefix(raw, cryptoDomain.EncryptedMarker))
	})

	t.Run("update pays the balance down", func(t *testing.T) {
		s := openTestStore(t)

		debt, err := s.Debts().Add(ctx, &financeDomain.Debt{
			OriginalCents: 250000,
			DueDate:       due,
			Creditor:      "family loan",
		})
		require.NoError(t, err)

		balance := int64(100000)
		updated, err := s.Debts().Update(ctx, debt.ID, financeDomain.DebtPatch{
			BalanceCents: &balance,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(100000), updated.BalanceCents)
		assert.Equal(t, "family loan", updated.Creditor)
	})
}

func TestNotificationAccessor(t *testing.T) {
	ctx := context.Background()

	t.Run("add encrypts the message", func(t *testing.T) {
		s := openTestStore(t)

		notification, err := s.Notifications().Add(ctx, &financeDomain.Notification{
			Kind:    financeDomain.NotificationBill,
			Message: "electric bill due in 3 days",
		})
		require.NoError(t, err)
		assert.False(t, notification.Read)
		assert.False(t, notification.CreatedAt.IsZero())

		raw := testutil.RawColumn(t, s.sess.db, schema.TableNotifications, "message", notification.ID)
		assert.True(t, strings.HasPrefix(raw, cryptoDomain.EncryptedMarker))
	})

	t.Run("marking read keeps the message ciphertext", func(t *testing.T) {
		s := openTestStore(t)

		notification, err := s.Notifications().Add(ctx, &financeDomain.Notification{
			Kind:    financeDomain.NotificationBill,
			Message: "electric bill due in 3 days",
		})
		require.NoError(t, err)
		before := testutil.RawColumn(t, s.sess.db, schema.TableNotifications, "message", notification.ID)

		read := true
		updated, err := s.Notifications().Update(ctx, notification.ID, financeDomain.NotificationPatch{
			Read: &read,
		})
		require.NoError(t, err)
		assert.True(t, updated.Read)
		assert.Equal(t, "electric bill due in 3 days", updated.Message)

		after := testutil.RawColumn(t, s.sess.db, schema.TableNotifications, "message", notification.ID)
		assert.Equal(t, before, after)
	})

	t.Run("query filters by kind and read state", func(t *testing.T) {
		s := openTestStore(t)

		_, err := s.Notifications().Add(ctx, &financeDomain.Notification{
			Kind: financeDomain.NotificationBill, Message: "bill notice",
		})
		require.NoError(t, err)
		_, err = s.Notifications().Add(ctx, &financeDomain.Notification{
			Kind: financeDomain.NotificationGoal, Message: "goal notice",
		})
		require.NoError(t, err)

		kind := financeDomain.NotificationGoal
		read := false
		notifications, err := s.Notifications().Query(ctx, financeDomain.NotificationFilter{
			Kind: &kind,
			Read: &read,
		}, nil)
		require.NoError(t, err)
		require.Len(t, notifications, 1)
		assert.Equal(t, "goal notice", notifications[0].Message)
	})
}
