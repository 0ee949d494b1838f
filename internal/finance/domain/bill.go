package domain

import (
	"time"

	validation "github.com/jellydator/validation"

	"github.com/allisson/finstore/internal/schema"
)

// Bill represents a payable bill with a due date.
type Bill struct {
	ID          string
	AmountCents int64
	// DueDate is when the bill is due (indexed for reminder scans).
	DueDate time.Time
	// Paid marks whether the bill has been settled.
	Paid bool
	// Payee is the billing party; encrypted at rest.
	Payee string
	// Note is free text; encrypted at rest.
	Note      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName implements schema.Record.
func (b *Bill) TableName() string {
	return schema.TableBills
}

// FieldRef implements schema.Record for the sensitive fields.
func (b *Bill) FieldRef(name string) (*string, bool) {
	switch name {
	case "payee":
		return &b.Payee, true
	case "note":
		return &b.Note, true
	default:
		return nil, false
	}
}

// Validate checks the bill's required fields.
func (b *Bill) Validate() error {
	return validation.ValidateStruct(b,
		validation.Field(&b.AmountCents, validation.Required, validation.Min(int64(1))),
		validation.Field(&b.DueDate, validation.Required),
		validation.Field(&b.Payee, validation.Required),
	)
}

// BillPatch is a partial update; nil fields are left unchanged.
type BillPatch struct {
	AmountCents *int64
	DueDate     *time.Time
	Paid        *bool
	Payee       *string
	Note        *string
}

// TableName implements schema.Record.
func (p *BillPatch) TableName() string {
	return schema.TableBills
}

// FieldRef implements schema.Record.
func (p *BillPatch) FieldRef(name string) (*string, bool) {
	switch name {
	case "payee":
		if p.Payee == nil {
			return nil, false
		}
		return p.Payee, true
	case "note":
		if p.Note == nil {
			return nil, false
		}
		return p.Note, true
	default:
		return nil, false
	}
}
