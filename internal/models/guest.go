package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Guest status machine: pending is the initial state, checked records an
// arrival, deleted is a soft delete. There is no transition out of deleted.
const (
	GuestStatusPending = "pending"
	GuestStatusChecked = "checked"
	GuestStatusDeleted = "deleted"
)

type Guest struct {
	bun.BaseModel `bun:"table:guests"`

	ID         string     `bun:"id,pk" json:"id"`
	VenueID    string     `bun:"venue_id" json:"venue_id"`
	Name       string     `bun:"name" json:"name"`
	TargetDate string     `bun:"target_date" json:"target_date"`
	Status     string     `bun:"status" json:"status"`
	CheckedAt  *time.Time `bun:"checked_at" json:"checked_at,omitempty"`
	// Attribution: at most one of CreatedBy (staff user id) or LinkID is
	// set, fixed at creation time.
	CreatedBy string    `bun:"created_by" json:"created_by,omitempty"`
	LinkID    string    `bun:"link_id" json:"link_id,omitempty"`
	CreatedAt time.Time `bun:"created_at" json:"created_at"`
}
