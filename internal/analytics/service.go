package analytics

import (
	"context"
	"fmt"

	"guestlist/internal/ledger"
	"guestlist/internal/models"
)

// Service aggregates night-level stats for the staff dashboard.
type Service struct {
	db *DB
}

func NewService(db *DB) *Service {
	return &Service{db: db}
}

// NightStats is one venue night's dashboard summary.
type NightStats struct {
	VenueID     string       `json:"venue_id"`
	Date        string       `json:"date"`
	Pending     int          `json:"pending"`
	Checked     int          `json:"checked"`
	Total       int          `json:"total"`
	LinkUsage   []LinkUsage  `json:"link_usage"`
	StaffCounts []StaffCount `json:"staff_counts"`
}

type LinkUsage struct {
	LinkID     string `json:"link_id"`
	DJName     string `json:"dj_name"`
	MaxGuests  int    `json:"max_guests"`
	UsedGuests int    `json:"used_guests"`
	Remaining  int    `json:"remaining"`
	Checked    int    `json:"checked"`
}

type StaffCount struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Registered  int    `json:"registered"`
	Checked     int    `json:"checked"`
}

// GetNightStats builds the summary for a venue and business date.
func (s *Service) GetNightStats(ctx context.Context, identity models.Identity, venueID, date string) (*NightStats, error) {
	if !identity.CanAccessVenue(venueID) {
		return nil, ledger.ErrUnauthorized
	}

	pending, err := s.db.CountGuestsByStatus(ctx, venueID, date, models.GuestStatusPending)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ledger.ErrStore, err)
	}
	checked, err := s.db.CountGuestsByStatus(ctx, venueID, date, models.GuestStatusChecked)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ledger.ErrStore, err)
	}

	usageData, err := s.db.GetLinkUsage(ctx, venueID, date)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ledger.ErrStore, err)
	}
	usage := make([]LinkUsage, len(usageData))
	for i, u := range usageData {
		remaining := u.MaxGuests - u.UsedGuests
		if remaining < 0 {
			remaining = 0
		}
		usage[i] = LinkUsage{
			LinkID:     u.LinkID,
			DJName:     u.DJName,
			MaxGuests:  u.MaxGuests,
			UsedGuests: u.UsedGuests,
			Remaining:  remaining,
			Checked:    u.Checked,
		}
	}

	staffData, err := s.db.GetStaffCounts(ctx, venueID, date)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ledger.ErrStore, err)
	}
	staff := make([]StaffCount, len(staffData))
	for i, c := range staffData {
		staff[i] = StaffCount(c)
	}

	return &NightStats{
		VenueID:     venueID,
		Date:        date,
		Pending:     pending,
		Checked:     checked,
		Total:       pending + checked,
		LinkUsage:   usage,
		StaffCounts: staff,
	}, nil
}
