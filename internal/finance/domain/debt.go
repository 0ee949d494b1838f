package domain

import (
	"time"

	validation "github.com/jellydator/validation"

	"github.com/allisson/finstore/internal/schema"
)

// Debt represents money owed to a creditor.
type Debt struct {
	ID            string
	OriginalCents int64
	BalanceCents  int64
	// InterestBps is the annual interest rate in basis points.
	InterestBps int64
	// DueDate is when the debt falls due (indexed).
	DueDate time.Time
	// Creditor is the counterparty; encrypted at rest.
	Creditor string
	// Note is free text; encrypted at rest.
	Note      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName implements schema.Record.
func (d *Debt) TableName() string {
	return schema.TableDebts
}

// FieldRef implements schema.Record for the sensitive fields.
func (d *Debt) FieldRef(name string) (*string, bool) {
	switch name {
	case "creditor":
		return &d.Creditor, true
	case "note":
		return &d.Note, true
	default:
		return nil, false
	}
}

// Validate checks the debt's required fields and value ranges.
func (d *Debt) Validate() error {
	return validation.ValidateStruct(d,
		validation.Field(&d.OriginalCents, validation.Required, validation.Min(int64(1))),
		validation.Field(&d.BalanceCents, validation.Min(int64(0))),
		validation.Field(&d.InterestBps, validation.Min(int64(0))),
		validation.Field(&d.DueDate, validation.Required),
		validation.Field(&d.Creditor, validation.Required),
	)
}

// DebtPatch is a partial update; nil fields are left unchanged.
type DebtPatch struct {
	OriginalCents *int64
	BalanceCents  *int64
	InterestBps   *int64
	DueDate       *time.Time
	Creditor      *string
	Note          *string
}

// TableName implements schema.Record.
func (p *DebtPatch) TableName() string {
	return schema.TableDebts
}

// FieldRef implements schema.Record.
func (p *DebtPatch) FieldRef(name string) (*string, bool) {
	switch name {
	case "creditor":
		if p.Creditor == nil {
			return nil, false
		}
		return p.Creditor, true
	case "note":
		if p.Note == nil {
			return nil, false
		}
		return p.Note, true
	default:
		return nil, false
	}
}
