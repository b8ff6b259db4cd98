package models

import (
	"time"

	"github.com/uptrace/bun"
)

// GuestLink is an external, token-authenticated registration link handed
// to a DJ. It is bound to a single venue and a single event date and
// carries a hard guest capacity. used_guests only ever grows: deleting a
// guest does not give the slot back (anti-abuse policy).
type GuestLink struct {
	bun.BaseModel `bun:"table:guest_links"`

	ID         string     `bun:"id,pk" json:"id"`
	VenueID    string     `bun:"venue_id" json:"venue_id"`
	Token      string     `bun:"token,unique" json:"-"`
	DJName     string     `bun:"dj_name" json:"dj_name"`
	EventName  string     `bun:"event_name" json:"event_name"`
	TargetDate string     `bun:"target_date" json:"target_date"`
	MaxGuests  int        `bun:"max_guests" json:"max_guests"`
	UsedGuests int        `bun:"used_guests" json:"used_guests"`
	Active     bool       `bun:"active" json:"active"`
	ExpiresAt  *time.Time `bun:"expires_at" json:"expires_at,omitempty"`
	CreatedBy  string     `bun:"created_by" json:"created_by"`
	CreatedAt  time.Time  `bun:"created_at" json:"created_at"`
}

// Expired reports whether the link's optional expiry has passed.
func (l *GuestLink) Expired(now time.Time) bool {
	return l.ExpiresAt != nil && now.After(*l.ExpiresAt)
}

// Remaining returns how many guests can still register via this link.
func (l *GuestLink) Remaining() int {
	if r := l.MaxGuests - l.UsedGuests; r > 0 {
		return r
	}
	return 0
}

// GuestLinkPublic is what an anonymous link holder gets to see.
type GuestLinkPublic struct {
	DJName     string `json:"dj_name"`
	EventName  string `json:"event_name"`
	TargetDate string `json:"target_date"`
	MaxGuests  int    `json:"max_guests"`
	UsedGuests int    `json:"used_guests"`
}

func (l *GuestLink) Public() GuestLinkPublic {
	return GuestLinkPublic{
		DJName:     l.DJName,
		EventName:  l.EventName,
		TargetDate: l.TargetDate,
		MaxGuests:  l.MaxGuests,
		UsedGuests: l.UsedGuests,
	}
}
