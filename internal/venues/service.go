package venues

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"guestlist/internal/ledger"
	"guestlist/internal/models"
)

type DBLayer interface {
	CreateVenue(venue models.Venue) error
	GetVenueByID(id string) (*models.Venue, error)
	UpdateVenue(venue models.Venue) error
	ListVenues() ([]models.Venue, error)
}

type Service struct {
	DB DBLayer
}

func NewService(db DBLayer) *Service {
	return &Service{DB: db}
}

type CreateParams struct {
	Name        string
	Category    string
	Address     string
	Description string
}

// CreateVenue is super-admin only. Venues start active.
func (s *Service) CreateVenue(identity models.Identity, params CreateParams) (*models.Venue, error) {
	if identity.Role != models.RoleSuperAdmin {
		return nil, ledger.ErrUnauthorized
	}
	if params.Name == "" || !models.ValidVenueCategory(params.Category) {
		return nil, ledger.ErrValidation
	}

	venue := models.Venue{
		ID:          uuid.NewString(),
		Name:        params.Name,
		Category:    params.Category,
		Address:     params.Address,
		Description: params.Description,
		Active:      true,
		CreatedAt:   time.Now(),
	}

	if err := s.DB.CreateVenue(venue); err != nil {
		return nil, fmt.Errorf("%w: %v", ledger.ErrStore, err)
	}
	return &venue, nil
}

func (s *Service) GetVenue(identity models.Identity, venueID string) (*models.Venue, error) {
	if !identity.CanAccessVenue(venueID) {
		return nil, ledger.ErrUnauthorized
	}

	venue, err := s.DB.GetVenueByID(venueID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ledger.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ledger.ErrStore, err)
	}
	return venue, nil
}

// ListVenues returns every venue for super admins and just the caller's
// own venue for everyone else.
func (s *Service) ListVenues(identity models.Identity) ([]models.Venue, error) {
	if identity.Role == models.RoleSuperAdmin {
		venues, err := s.DB.ListVenues()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ledger.ErrStore, err)
		}
		return venues, nil
	}

	venue, err := s.GetVenue(identity, identity.VenueID)
	if err != nil {
		return nil, err
	}
	return []models.Venue{*venue}, nil
}

type UpdateParams struct {
	Name        string
	Category    string
	Address     string
	Description string
}

func (s *Service) UpdateVenue(identity models.Identity, venueID string, params UpdateParams) (*models.Venue, error) {
	if !identity.IsAdmin() {
		return nil, ledger.ErrUnauthorized
	}

	venue, err := s.GetVenue(identity, venueID)
	if err != nil {
		return nil, err
	}

	if params.Name != "" {
		venue.Name = params.Name
	}
	if params.Category != "" {
		if !models.ValidVenueCategory(params.Category) {
			return nil, ledger.ErrValidation
		}
		venue.Category = params.Category
	}
	venue.Address = params.Address
	venue.Description = params.Description

	if err := s.DB.UpdateVenue(*venue); err != nil {
		return nil, fmt.Errorf("%w: %v", ledger.ErrStore, err)
	}
	return venue, nil
}

// SetActive soft-enables or soft-disables a venue. Venues are never
// hard-deleted in normal flow.
func (s *Service) SetActive(identity models.Identity, venueID string, active bool) error {
	if identity.Role != models.RoleSuperAdmin {
		return ledger.ErrUnauthorized
	}

	venue, err := s.DB.GetVenueByID(venueID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ledger.ErrNotFound
		}
		return fmt.Errorf("%w: %v", ledger.ErrStore, err)
	}

	venue.Active = active
	if err := s.DB.UpdateVenue(*venue); err != nil {
		return fmt.Errorf("%w: %v", ledger.ErrStore, err)
	}
	return nil
}
