package store

import (
	"context"

	financeDomain "github.com/allisson/finstore/internal/finance/domain"
)

// TransactionRepository defines transaction persistence operations.
type TransactionRepository interface {
	Create(ctx context.Context, tx *financeDomain.Transaction) error
	Update(ctx context.Context, tx *financeDomain.Transaction) error
	GetByID(ctx context.Context, id string) (*financeDomain.Transaction, error)
	List(ctx context.Context, filter financeDomain.TransactionFilter) ([]*financeDomain.Transaction, error)
	Delete(ctx context.Context, id string) error
	DeleteWhere(ctx context.Context, filter financeDomain.TransactionFilter) (int64, error)
}

// GoalRepository defines goal persistence operations.
type GoalRepository interface {
	Create(ctx context.Context, goal *financeDomain.Goal) error
	Update(ctx context.Context, goal *financeDomain.Goal) error
	GetByID(ctx context.Context, id string) (*financeDomain.Goal, error)
	List(ctx context.Context, filter financeDomain.GoalFilter) ([]*financeDomain.Goal, error)
	Delete(ctx context.Context, id string) error
	DeleteWhere(ctx context.Context, filter financeDomain.GoalFilter) (int64, error)
}

// BillRepository defines bill persistence operations.
type BillRepository interface {
	Create(ctx context.Context, bill *financeDomain.Bill) error
	Update(ctx context.Context, bill *financeDomain.Bill) error
	GetByID(ctx context.Context, id string) (*financeDomain.Bill, error)
	List(ctx context.Context, filter financeDomain.BillFilter) ([]*financeDomain.Bill, error)
	Delete(ctx context.Context, id string) error
	DeleteWhere(ctx context.Context, filter financeDomain.BillFilter) (int64, error)
}

// BudgetRepository defines budget persistence operations.
type BudgetRepository interface {
	Create(ctx context.Context, budget *financeDomain.Budget) error
	Update(ctx context.Context, budget *financeDomain.Budget) error
	GetByID(ctx context.Context, id string) (*financeDomain.Budget, error)
	List(ctx context.Context, filter financeDomain.BudgetFilter) ([]*financeDomain.Budget, error)
	Delete(ctx context.Context, id string) error
	DeleteWhere(ctx context.Context, filter financeDomain.BudgetFilter) (int64, error)
}

// RecurringEntryRepository defines recurring entry persistence operations.
type RecurringEntryRepository interface {
	Create(ctx context.Context, entry *financeDomain.RecurringEntry) error
	Update(ctx context.Context, entry *financeDomain.RecurringEntry) error
	GetByID(ctx context.Context, id string) (*financeDomain.RecurringEntry, error)
	List(ctx context.Context, filter financeDomain.RecurringEntryFilter) ([]*financeDomain.RecurringEntry, error)
	Delete(ctx context.Context, id string) error
	DeleteWhere(ctx context.Context, filter financeDomain.RecurringEntryFilter) (int64, error)
}

// DebtRepository defines debt persistence operations.
type DebtRepository interface {
	Create(ctx context.Context, debt *financeDomain.Debt) error
	Update(ctx context.Context, debt *financeDomain.Debt) error
	GetByID(ctx context.Context, id string) (*financeDomain.Debt, error)
	List(ctx context.Context, filter financeDomain.DebtFilter) ([]*financeDomain.Debt, error)
	Delete(ctx context.Context, id string) error
	DeleteWhere(ctx context.Context, filter financeDomain.DebtFilter) (int64, error)
}

// NotificationRepository defines notification persistence operations.
type NotificationRepository interface {
	Create(ctx context.Context, notification *financeDomain.Notification) error
	Update(ctx context.Context, notification *financeDomain.Notification) error
	GetByID(ctx context.Context, id string) (*financeDomain.Notification, error)
	List(ctx context.Context, filter financeDomain.NotificationFilter) ([]*financeDomain.Notification, error)
	Delete(ctx context.Context, id string) error
	DeleteWhere(ctx context.Context, filter financeDomain.NotificationFilter) (int64, error)
}
