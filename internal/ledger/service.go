package ledger

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"guestlist/internal/models"
	"guestlist/internal/utils"
)

// DBLayer is the persistence surface the ledger needs. RegisterViaLink
// must consume one capacity slot and insert the guest in a single
// transaction, returning ErrLimitReached when no slot is left at write
// time.
type DBLayer interface {
	GetLinkByToken(token string) (*models.GuestLink, error)
	GetVenueByID(id string) (*models.Venue, error)
	RegisterViaLink(linkID string, guest models.Guest) error
	CreateGuest(guest models.Guest) error
	GetGuestByID(id string) (*models.Guest, error)
	UpdateGuestStatus(guest models.Guest) error
	ListGuests(venueID, date string) ([]models.Guest, error)
	CountGuestsByCreator(userID, date string) (int, error)
}

type EventPublisher interface {
	PublishGuestRegistered(guest models.Guest) error
	PublishGuestCheckedIn(guest models.Guest) error
	PublishGuestDeleted(guest models.Guest) error
}

type Service struct {
	DB     DBLayer
	Events EventPublisher
}

func NewService(db DBLayer, events EventPublisher) *Service {
	return &Service{DB: db, Events: events}
}

// ---------------- EXTERNAL LINK REGISTRATION ----------------

// ValidateLink looks up an active link by exact token match and checks
// expiry and capacity. The result is advisory: registration re-validates
// at write time.
func (s *Service) ValidateLink(token string) (*models.GuestLink, *models.Venue, error) {
	if token == "" {
		return nil, nil, ErrValidation
	}

	link, err := s.DB.GetLinkByToken(token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("%w: %v", ErrStore, err)
	}
	if link.Expired(time.Now()) {
		return nil, nil, ErrExpired
	}
	if link.UsedGuests >= link.MaxGuests {
		return nil, nil, ErrLimitReached
	}

	venue, err := s.DB.GetVenueByID(link.VenueID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("%w: %v", ErrStore, err)
	}

	return link, venue, nil
}

// RegisterViaLink registers a guest for an anonymous link holder. The
// capacity slot is consumed inside the store transaction, so two
// concurrent registrations against the last slot cannot both succeed.
func (s *Service) RegisterViaLink(token, name, date string) (*models.Guest, error) {
	link, _, err := s.ValidateLink(token)
	if err != nil {
		return nil, err
	}

	if !utils.ValidDate(date) {
		return nil, ErrValidation
	}
	// A link is single-date: it must not admit guests for any other night.
	if date != link.TargetDate {
		return nil, ErrDateMismatch
	}

	normalized, err := NormalizeGuestName(name)
	if err != nil {
		return nil, err
	}

	guest := models.Guest{
		ID:         uuid.NewString(),
		VenueID:    link.VenueID,
		Name:       normalized,
		TargetDate: link.TargetDate,
		Status:     models.GuestStatusPending,
		LinkID:     link.ID,
		CreatedAt:  time.Now(),
	}

	if err := s.DB.RegisterViaLink(link.ID, guest); err != nil {
		if errors.Is(err, ErrLimitReached) {
			return nil, ErrLimitReached
		}
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}

	if s.Events != nil {
		if err := s.Events.PublishGuestRegistered(guest); err != nil {
			fmt.Printf("Kafka publish error (guest registered): %v\n", err)
		}
	}

	return &guest, nil
}

// ---------------- STAFF GUEST CREATION ----------------

// AddGuest creates a guest on behalf of an authenticated staff member.
// DJ accounts are bounded by their personal quota per business date.
func (s *Service) AddGuest(identity models.Identity, venueID, name, date string) (*models.Guest, error) {
	if !identity.CanAccessVenue(venueID) {
		return nil, ErrUnauthorized
	}
	if !utils.ValidDate(date) {
		return nil, ErrValidation
	}

	normalized, err := NormalizeGuestName(name)
	if err != nil {
		return nil, err
	}

	if identity.Role == models.RoleDJ {
		count, err := s.DB.CountGuestsByCreator(identity.UserID, date)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStore, err)
		}
		if count >= identity.GuestQuota {
			return nil, ErrLimitReached
		}
	}

	guest := models.Guest{
		ID:         uuid.NewString(),
		VenueID:    venueID,
		Name:       normalized,
		TargetDate: date,
		Status:     models.GuestStatusPending,
		CreatedBy:  identity.UserID,
		CreatedAt:  time.Now(),
	}

	if err := s.DB.CreateGuest(guest); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}

	if s.Events != nil {
		if err := s.Events.PublishGuestRegistered(guest); err != nil {
			fmt.Printf("Kafka publish error (guest registered): %v\n", err)
		}
	}

	return &guest, nil
}

// ---------------- STATUS TRANSITIONS ----------------

// CheckIn moves a pending guest to checked and stamps the arrival time.
// Re-checking a checked guest just refreshes the timestamp.
func (s *Service) CheckIn(identity models.Identity, guestID string) (*models.Guest, error) {
	guest, err := s.transitionTarget(identity, guestID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	guest.Status = models.GuestStatusChecked
	guest.CheckedAt = &now

	if err := s.DB.UpdateGuestStatus(*guest); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}

	if s.Events != nil {
		if err := s.Events.PublishGuestCheckedIn(*guest); err != nil {
			fmt.Printf("Kafka publish error (guest checked in): %v\n", err)
		}
	}

	return guest, nil
}

// UndoCheckIn is the correction path: checked back to pending with the
// arrival timestamp cleared.
func (s *Service) UndoCheckIn(identity models.Identity, guestID string) (*models.Guest, error) {
	guest, err := s.transitionTarget(identity, guestID)
	if err != nil {
		return nil, err
	}
	if guest.Status != models.GuestStatusChecked {
		return nil, ErrValidation
	}

	guest.Status = models.GuestStatusPending
	guest.CheckedAt = nil

	if err := s.DB.UpdateGuestStatus(*guest); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}

	return guest, nil
}

// DeleteGuest soft-deletes a guest. Link capacity is never given back:
// used_guests stays where it is.
func (s *Service) DeleteGuest(identity models.Identity, guestID string) (*models.Guest, error) {
	guest, err := s.transitionTarget(identity, guestID)
	if err != nil {
		return nil, err
	}

	guest.Status = models.GuestStatusDeleted
	guest.CheckedAt = nil

	if err := s.DB.UpdateGuestStatus(*guest); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}

	if s.Events != nil {
		if err := s.Events.PublishGuestDeleted(*guest); err != nil {
			fmt.Printf("Kafka publish error (guest deleted): %v\n", err)
		}
	}

	return guest, nil
}

// transitionTarget loads a guest and enforces role and venue scope for a
// status transition. Deleted guests are terminal.
func (s *Service) transitionTarget(identity models.Identity, guestID string) (*models.Guest, error) {
	if !identity.CanCheckIn() {
		return nil, ErrUnauthorized
	}

	guest, err := s.DB.GetGuestByID(guestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}
	if !identity.CanAccessVenue(guest.VenueID) {
		return nil, ErrUnauthorized
	}
	if guest.Status == models.GuestStatusDeleted {
		return nil, ErrNotFound
	}

	return guest, nil
}

// ---------------- LISTING ----------------

// ListGuests returns the non-deleted guests for a venue and date,
// narrowed by attribution and sorted. Filtering and sorting are pure
// in-memory transformations over the fetched list.
func (s *Service) ListGuests(identity models.Identity, venueID, date string, filter AttributionFilter, order SortOrder) ([]models.Guest, error) {
	if !identity.CanAccessVenue(venueID) {
		return nil, ErrUnauthorized
	}
	if !utils.ValidDate(date) {
		return nil, ErrValidation
	}

	guests, err := s.DB.ListGuests(venueID, date)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}

	guests = filter.Apply(guests)
	SortGuests(guests, order)
	return guests, nil
}
