package domain

import (
	"time"

	validation "github.com/jellydator/validation"

	"github.com/allisson/finstore/internal/schema"
)

// Frequency is how often a recurring entry repeats.
type Frequency string

const (
	// FrequencyDaily repeats every day.
	FrequencyDaily Frequency = "daily"
	// FrequencyWeekly repeats every week.
	FrequencyWeekly Frequency = "weekly"
	// FrequencyMonthly repeats every month.
	FrequencyMonthly Frequency = "monthly"
	// FrequencyYearly repeats every year.
	FrequencyYearly Frequency = "yearly"
)

// RecurringEntry is a template transaction materialized on a schedule.
type RecurringEntry struct {
	ID          string
	Kind        TransactionKind
	Category    string
	AmountCents int64
	Frequency   Frequency
	// NextRunAt is when the entry is next due to materialize (indexed).
	NextRunAt time.Time
	Active    bool
	// Description is free text; encrypted at rest.
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName implements schema.Record.
func (r *RecurringEntry) TableName() string {
	return schema.TableRecurringEntries
}

// FieldRef implements schema.Record for the sensitive fields.
func (r *RecurringEntry) FieldRef(name string) (*string, bool) {
	if name == "description" {
		return &r.Description, true
	}
	return nil, false
}

// Validate checks the entry's required fields.
func (r *RecurringEntry) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Kind, validation.Required, validation.In(KindIncome, KindExpense)),
		validation.Field(&r.Category, validation.Required, validation.Length(1, 120)),
		validation.Field(&r.AmountCents, validation.Required),
		validation.Field(&r.Frequency, validation.Required,
			validation.In(FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly)),
		validation.Field(&r.NextRunAt, validation.Required),
	)
}

// RecurringEntryPatch is a partial update; nil fields are left unchanged.
type RecurringEntryPatch struct {
	Kind        *TransactionKind
	Category    *string
	AmountCents *int64
	Frequency   *Frequency
	NextRunAt   *time.Time
	Active      *bool
	Description *string
}

// TableName implements schema.Record.
func (p *RecurringEntryPatch) TableName() string {
	return schema.TableRecurringEntries
}

// FieldRef implements schema.Record.
func (p *RecurringEntryPatch) FieldRef(name string) (*string, bool) {
	if name == "description" && p.Description != nil {
		return p.Description, true
	}
	return nil, false
}
