package domain

import (
	"time"

	validation "github.com/jellydator/validation"

	"github.com/allisson/finstore/internal/schema"
)

// NotificationKind classifies stored notifications.
type NotificationKind string

const (
	// NotificationBudget flags a budget threshold event.
	NotificationBudget NotificationKind = "budget"
	// NotificationBill flags an upcoming or overdue bill.
	NotificationBill NotificationKind = "bill"
	// NotificationGoal flags goal progress.
	NotificationGoal NotificationKind = "goal"
	// NotificationDebt flags a debt due date.
	NotificationDebt NotificationKind = "debt"
)

// Notification is a persisted user-facing notice. The rules that produce
// notifications live outside this layer; the store only persists them.
type Notification struct {
	ID   string
	Kind NotificationKind
	Read bool
	// Message is free text; encrypted at rest.
	Message   string
	CreatedAt time.Time
}

// TableName implements schema.Record.
func (n *Notification) TableName() string {
	return schema.TableNotifications
}

// FieldRef implements schema.Record for the sensitive fields.
func (n *Notification) FieldRef(name string) (*string, bool) {
	if name == "message" {
		return &n.Message, true
	}
	return nil, false
}

// Validate checks the notification's required fields.
func (n *Notification) Validate() error {
	return validation.ValidateStruct(n,
		validation.Field(&n.Kind, validation.Required,
			validation.In(NotificationBudget, NotificationBill, NotificationGoal, NotificationDebt)),
		validation.Field(&n.Message, validation.Required),
	)
}

// NotificationPatch is a partial update; nil fields are left unchanged.
type NotificationPatch struct {
	Read    *bool
	Message *string
}

// TableName implements schema.Record.
func (p *NotificationPatch) TableName() string {
	return schema.TableNotifications
}

// FieldRef implements schema.Record.
func (p *NotificationPatch) FieldRef(name string) (*string, bool) {
	if name == "message" && p.Message != nil {
		return p.Message, true
	}
	return nil, false
}
