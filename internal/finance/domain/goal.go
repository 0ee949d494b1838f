package domain

import (
	"time"

	validation "github.com/jellydator/validation"

	"github.com/allisson/finstore/internal/schema"
)

// GoalStatus is the lifecycle state of a savings goal.
type GoalStatus string

const (
	// GoalActive marks a goal still being saved toward.
	GoalActive GoalStatus = "active"
	// GoalReached marks a goal whose target has been met.
	GoalReached GoalStatus = "reached"
	// GoalArchived marks a goal no longer pursued.
	GoalArchived GoalStatus = "archived"
)

// Goal represents a savings goal.
type Goal struct {
	ID          string
	Status      GoalStatus
	TargetCents int64
	SavedCents  int64
	// TargetDate is optional; the zero value means no deadline.
	TargetDate time.Time
	// Name is free text; encrypted at rest.
	Name string
	// Note is free text; encrypted at rest.
	Note      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName implements schema.Record.
func (g *Goal) TableName() string {
	return schema.TableGoals
}

// FieldRef implements schema.Record for the sensitive fields.
func (g *Goal) FieldRef(name string) (*string, bool) {
	switch name {
	case "name":
		return &g.Name, true
	case "note":
		return &g.Note, true
	default:
		return nil, false
	}
}

// Validate checks the goal's required fields and value ranges.
func (g *Goal) Validate() error {
	return validation.ValidateStruct(g,
		validation.Field(&g.Status, validation.Required, validation.In(GoalActive, GoalReached, GoalArchived)),
		validation.Field(&g.TargetCents, validation.Required, validation.Min(int64(1))),
		validation.Field(&g.SavedCents, validation.Min(int64(0))),
		validation.Field(&g.Name, validation.Required),
	)
}

// GoalPatch is a partial update; nil fields are left unchanged.
type GoalPatch struct {
	Status      *GoalStatus
	TargetCents *int64
	SavedCents  *int64
	TargetDate  *time.Time
	Name        *string
	Note        *string
}

// TableName implements schema.Record.
func (p *GoalPatch) TableName() string {
	return schema.TableGoals
}

// FieldRef implements schema.Record.
func (p *GoalPatch) FieldRef(name string) (*string, bool) {
	switch name {
	case "name":
		if p.Name == nil {
			return nil, false
		}
		return p.Name, true
	case "note":
		if p.Note == nil {
			return nil, false
		}
		return p.Note, true
	default:
		return nil, false
	}
}
