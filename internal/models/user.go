package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Staff roles. VenueID is empty only for super_admin accounts.
const (
	RoleSuperAdmin = "super_admin"
	RoleVenueAdmin = "venue_admin"
	RoleDoor       = "door"
	RoleDJ         = "dj"
)

type User struct {
	bun.BaseModel `bun:"table:users"`

	ID          string    `bun:"id,pk" json:"id"`
	VenueID     string    `bun:"venue_id" json:"venue_id,omitempty"`
	Email       string    `bun:"email" json:"email"`
	DisplayName string    `bun:"display_name" json:"display_name"`
	Role        string    `bun:"role" json:"role"`
	GuestQuota  int       `bun:"guest_quota" json:"guest_quota"`
	Active      bool      `bun:"active" json:"active"`
	CreatedAt   time.Time `bun:"created_at" json:"created_at"`
}

func ValidRole(role string) bool {
	switch role {
	case RoleSuperAdmin, RoleVenueAdmin, RoleDoor, RoleDJ:
		return true
	}
	return false
}
