// Package domain defines the personal-finance record types persisted by the
// store.
//
// Every type implements schema.Record so the field codec can reach its
// sensitive fields. Sensitive fields are free text only (descriptions,
// merchants, payees, notes); ids, amounts, dates, categories, and statuses
// stay plaintext because the engine indexes and range-scans them, and
// ciphertext is neither orderable nor matchable.
package domain

import (
	"time"

	validation "github.com/jellydator/validation"

	"github.com/allisson/finstore/internal/schema"
)

// TransactionKind classifies a transaction as money in or money out.
type TransactionKind string

const (
	// KindIncome marks money received.
	KindIncome TransactionKind = "income"
	// KindExpense marks money spent.
	KindExpense TransactionKind = "expense"
)

// Transaction represents a single ledger entry.
type Transaction struct {
	// ID is the unique identifier for the transaction.
	ID string
	// Kind is income or expense.
	Kind TransactionKind
	// Category is the plaintext spending category (indexed).
	Category string
	// AmountCents is the amount in minor currency units.
	AmountCents int64
	// OccurredAt is when the transaction happened (indexed).
	OccurredAt time.Time
	// Description is free text; encrypted at rest.
	Description string
	// Merchant is the counterparty name; encrypted at rest.
	Merchant string
	// CreatedAt is the UTC creation timestamp.
	CreatedAt time.Time
	// UpdatedAt is the UTC timestamp of the last mutation.
	UpdatedAt time.Time
}

// TableName implements schema.Record.
func (t *Transaction) TableName() string {
	return schema.TableTransactions
}

// FieldRef implements schema.Record for the sensitive fields.
func (t *Transaction) FieldRef(name string) (*string, bool) {
	switch name {
	case "description":
		return &t.Description, true
	case "merchant":
		return &t.Merchant, true
	default:
		return nil, false
	}
}

// Validate checks the transaction's required fields and value ranges.
func (t *Transaction) Validate() error {
	return validation.ValidateStruct(t,
		validation.Field(&t.Kind, validation.Required, validation.In(KindIncome, KindExpense)),
		validation.Field(&t.Category, validation.Required, validation.Length(1, 120)),
		validation.Field(&t.AmountCents, validation.Required),
		validation.Field(&t.OccurredAt, validation.Required),
	)
}

// TransactionPatch is a partial update; nil fields are left unchanged.
type TransactionPatch struct {
	Kind        *TransactionKind
	Category    *string
	AmountCents *int64
	OccurredAt  *time.Time
	Description *string
	Merchant    *string
}

// TableName implements schema.Record.
func (p *TransactionPatch) TableName() string {
	return schema.TableTransactions
}

// FieldRef implements schema.Record. Unset fields report absent so the codec
// skips them.
func (p *TransactionPatch) FieldRef(name string) (*string, bool) {
	switch name {
	case "description":
		if p.Description == nil {
			return nil, false
		}
		return p.Description, true
	case "merchant":
		if p.Merchant == nil {
			return nil, false
		}
		return p.Merchant, true
	default:
		return nil, false
	}
}
