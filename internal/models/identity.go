package models

// Identity is the resolved caller passed explicitly into every ledger
// operation. Handlers build it from the verified session subject plus the
// user row; services never read ambient auth state.
type Identity struct {
	UserID     string `json:"user_id"`
	VenueID    string `json:"venue_id,omitempty"`
	Role       string `json:"role"`
	GuestQuota int    `json:"guest_quota"`
	Active     bool   `json:"active"`
}

// CanAccessVenue reports whether the caller may operate on the venue.
// Super admins are unscoped; everyone else is bound to their own venue.
func (id Identity) CanAccessVenue(venueID string) bool {
	if !id.Active {
		return false
	}
	if id.Role == RoleSuperAdmin {
		return true
	}
	return id.VenueID != "" && id.VenueID == venueID
}

// IsAdmin reports whether the caller manages users and links for a venue.
func (id Identity) IsAdmin() bool {
	return id.Role == RoleSuperAdmin || id.Role == RoleVenueAdmin
}

// CanCheckIn reports whether the caller may drive guest status transitions.
func (id Identity) CanCheckIn() bool {
	switch id.Role {
	case RoleSuperAdmin, RoleVenueAdmin, RoleDoor:
		return true
	}
	return false
}
