package domain

import "time"

// Filters constrain list and delete operations to indexed plaintext columns.
// Sensitive fields are never filterable at the SQL layer; matching on
// decrypted content happens above the repository, after decryption.

// TransactionFilter selects transactions by indexed columns.
type TransactionFilter struct {
	Category *string
	// OccurredFrom is inclusive.
	OccurredFrom *time.Time
	// OccurredTo is exclusive.
	OccurredTo *time.Time
	Limit      int
	Offset     int
}

// GoalFilter selects goals by indexed columns.
type GoalFilter struct {
	Status *GoalStatus
	// TargetBefore is exclusive.
	TargetBefore *time.Time
	Limit        int
	Offset       int
}

// BillFilter selects bills by indexed columns.
type BillFilter struct {
	Paid *bool
	// DueFrom is inclusive.
	DueFrom *time.Time
	// DueTo is exclusive.
	DueTo  *time.Time
	Limit  int
	Offset int
}

// BudgetFilter selects budgets by indexed columns.
type BudgetFilter struct {
	Category *string
	Period   *string
	Limit    int
	Offset   int
}

// RecurringEntryFilter selects recurring entries by indexed columns.
type RecurringEntryFilter struct {
	Active *bool
	// NextRunBefore is exclusive.
	NextRunBefore *time.Time
	Limit         int
	Offset        int
}

// DebtFilter selects debts by indexed columns.
type DebtFilter struct {
	// DueFrom is inclusive.
	DueFrom *time.Time
	// DueTo is exclusive.
	DueTo  *time.Time
	Limit  int
	Offset int
}

// NotificationFilter selects notifications by indexed columns.
type NotificationFilter struct {
	Kind *NotificationKind
	Read *bool
	// CreatedFrom is inclusive.
	CreatedFrom *time.Time
	Limit       int
	Offset      int
}
