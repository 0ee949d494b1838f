package schema

// Table names.
const (
	TableTransactions     = "transactions"
	TableGoals            = "goals"
	TableBills            = "bills"
	TableBudgets          = "budgets"
	TableRecurringEntries = "recurring_entries"
	TableDebts            = "debts"
	TableNotifications    = "notifications"
)

// Versions returns the declared schema history. Every version is a full
// snapshot; the SQL applied per step lives in migrations/sqlite.
//
// Sensitive fields are free-text only. Ids, amounts, dates, categories, and
// statuses stay plaintext so the engine can index and range-scan them.
func Versions() []Version {
	transactionsV1 := TableSchema{
		Name: TableTransactions,
		Indexes: []Index{
			{Name: "idx_transactions_category", Columns: []string{"category"}},
			{Name: "idx_transactions_occurred_at", Columns: []string{"occurred_at"}},
		},
		SensitiveFields: []string{"description", "merchant"},
	}
	goalsV1 := TableSchema{
		Name: TableGoals,
		Indexes: []Index{
			{Name: "idx_goals_status", Columns: []string{"status"}},
		},
		SensitiveFields: []string{"name", "note"},
	}
	billsV1 := TableSchema{
		Name: TableBills,
		Indexes: []Index{
			{Name: "idx_bills_due_date", Columns: []string{"due_date"}},
			{Name: "idx_bills_paid", Columns: []string{"paid"}},
		},
		SensitiveFields: []string{"payee", "note"},
	}
	budgetsV1 := TableSchema{
		Name: TableBudgets,
		Indexes: []Index{
			{Name: "idx_budgets_category", Columns: []string{"category"}},
			{Name: "idx_budgets_period", Columns: []string{"period"}},
		},
		SensitiveFields: []string{"note"},
	}

	transactionsV2 := transactionsV1
	transactionsV2.Indexes = append([]Index{}, transactionsV1.Indexes...)
	transactionsV2.Indexes = append(transactionsV2.Indexes, Index{
		Name:    "idx_transactions_category_occurred_at",
		Columns: []string{"category", "occurred_at"},
	})

	recurringV2 := TableSchema{
		Name: TableRecurringEntries,
		Indexes: []Index{
			{Name: "idx_recurring_entries_category", Columns: []string{"category"}},
			{Name: "idx_recurring_entries_next_run_at", Columns: []string{"next_run_at"}},
		},
		SensitiveFields: []string{"description"},
	}
	debtsV2 := TableSchema{
		Name: TableDebts,
		Indexes: []Index{
			{Name: "idx_debts_due_date", Columns: []string{"due_date"}},
		},
		SensitiveFields: []string{"creditor", "note"},
	}

	goalsV3 := goalsV1
	goalsV3.Indexes = append([]Index{}, goalsV1.Indexes...)
	goalsV3.Indexes = append(goalsV3.Indexes, Index{
		Name:    "idx_goals_target_date",
		Columns: []string{"target_date"},
	})

	billsV3 := billsV1
	billsV3.Indexes = append([]Index{}, billsV1.Indexes...)
	billsV3.Indexes = append(billsV3.Indexes, Index{
		Name:    "idx_bills_paid_due_date",
		Columns: []string{"paid", "due_date"},
	})

	notificationsV3 := TableSchema{
		Name: TableNotifications,
		Indexes: []Index{
			{Name: "idx_notifications_kind", Columns: []string{"kind"}},
			{Name: "idx_notifications_created_at", Columns: []string{"created_at"}},
			{Name: "idx_notifications_read", Columns: []string{"read"}},
		},
		SensitiveFields: []string{"message"},
	}

	return []Version{
		{
			Number: 1,
			Tables: []TableSchema{transactionsV1, goalsV1, billsV1, budgetsV1},
		},
		{
			Number: 2,
			Tables: []TableSchema{transactionsV2, goalsV1, billsV1, budgetsV1, recurringV2, debtsV2},
		},
		{
			Number: 3,
			Tables: []TableSchema{transactionsV2, goalsV3, billsV3, budgetsV1, recurringV2, debtsV2, notificationsV3},
		},
	}
}

// Default returns a validated registry over the declared versions.
// It panics only on a programming error in the declarations above, which the
// registry tests catch before a release.
func Default() *Registry {
	registry, err := NewRegistry(Versions())
	if err != nil {
		panic(err)
	}
	return registry
}
