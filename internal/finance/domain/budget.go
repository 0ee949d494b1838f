package domain

import (
	"time"

	validation "github.com/jellydator/validation"

	"github.com/allisson/finstore/internal/schema"
	appvalidation "github.com/allisson/finstore/internal/validation"
)

// Budget caps spending for one category in one monthly period.
type Budget struct {
	ID string
	// Category is the plaintext spending category (indexed).
	Category string
	// Period is the budget month in "YYYY-MM" form (indexed).
	Period     string
	LimitCents int64
	// Note is free text; encrypted at rest.
	Note      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName implements schema.Record.
func (b *Budget) TableName() string {
	return schema.TableBudgets
}

// FieldRef implements schema.Record for the sensitive fields.
func (b *Budget) FieldRef(name string) (*string, bool) {
	if name == "note" {
		return &b.Note, true
	}
	return nil, false
}

// Validate checks the budget's required fields and the period format.
func (b *Budget) Validate() error {
	return validation.ValidateStruct(b,
		validation.Field(&b.Category, validation.Required, validation.Length(1, 120)),
		validation.Field(&b.Period, validation.Required, appvalidation.Period),
		validation.Field(&b.LimitCents, validation.Required, validation.Min(int64(1))),
	)
}

// BudgetPatch is a partial update; nil fields are left unchanged.
type BudgetPatch struct {
	Category   *string
	Period     *string
	LimitCents *int64
	Note       *string
}

// TableName implements schema.Record.
func (p *BudgetPatch) TableName() string {
	return schema.TableBudgets
}

// FieldRef implements schema.Record.
func (p *BudgetPatch) FieldRef(name string) (*string, bool) {
	if name == "note" && p.Note != nil {
		return p.Note, true
	}
	return nil, false
}
