package links

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"

	"guestlist/internal/ledger"
	"guestlist/internal/models"
	"guestlist/internal/utils"
)

type DBLayer interface {
	CreateLink(link models.GuestLink) error
	GetLinkByID(id string) (*models.GuestLink, error)
	ListLinksByVenue(venueID, date string) ([]models.GuestLink, error)
	UpdateLinkActive(id string, active bool) error
}

type Service struct {
	DB DBLayer
}

func NewService(db DBLayer) *Service {
	return &Service{DB: db}
}

type CreateParams struct {
	VenueID    string
	DJName     string
	EventName  string
	TargetDate string
	MaxGuests  int
	ExpiresAt  *time.Time
}

// CreateLink mints a new external registration link with a fresh opaque
// token. Admin-only; the link is scoped to the admin's venue.
func (s *Service) CreateLink(identity models.Identity, params CreateParams) (*models.GuestLink, error) {
	if !identity.IsAdmin() || !identity.CanAccessVenue(params.VenueID) {
		return nil, ledger.ErrUnauthorized
	}
	if params.DJName == "" || params.MaxGuests <= 0 {
		return nil, ledger.ErrValidation
	}
	if !utils.ValidDate(params.TargetDate) {
		return nil, ledger.ErrValidation
	}

	link := models.GuestLink{
		ID:         uuid.NewString(),
		VenueID:    params.VenueID,
		Token:      utils.GenerateLinkToken(),
		DJName:     params.DJName,
		EventName:  params.EventName,
		TargetDate: params.TargetDate,
		MaxGuests:  params.MaxGuests,
		UsedGuests: 0,
		Active:     true,
		ExpiresAt:  params.ExpiresAt,
		CreatedBy:  identity.UserID,
		CreatedAt:  time.Now(),
	}

	if err := s.DB.CreateLink(link); err != nil {
		return nil, fmt.Errorf("%w: %v", ledger.ErrStore, err)
	}

	return &link, nil
}

func (s *Service) GetLink(identity models.Identity, linkID string) (*models.GuestLink, error) {
	link, err := s.DB.GetLinkByID(linkID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ledger.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ledger.ErrStore, err)
	}
	if !identity.CanAccessVenue(link.VenueID) {
		return nil, ledger.ErrUnauthorized
	}
	return link, nil
}

// ListLinks returns a venue's links for a date, newest first as stored.
func (s *Service) ListLinks(identity models.Identity, venueID, date string) ([]models.GuestLink, error) {
	if !identity.CanAccessVenue(venueID) {
		return nil, ledger.ErrUnauthorized
	}
	if !utils.ValidDate(date) {
		return nil, ledger.ErrValidation
	}

	links, err := s.DB.ListLinksByVenue(venueID, date)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ledger.ErrStore, err)
	}
	return links, nil
}

// Deactivate disables a link for new registrations. Existing guests and
// the used counter are untouched.
func (s *Service) Deactivate(identity models.Identity, linkID string) error {
	link, err := s.GetLink(identity, linkID)
	if err != nil {
		return err
	}
	if !identity.IsAdmin() {
		return ledger.ErrUnauthorized
	}

	if err := s.DB.UpdateLinkActive(link.ID, false); err != nil {
		return fmt.Errorf("%w: %v", ledger.ErrStore, err)
	}
	return nil
}

// PublicURL builds the shareable registration URL for a link.
func PublicURL(origin, token string) string {
	return fmt.Sprintf("%s/guest?token=%s", origin, url.QueryEscape(token))
}

// QRCode renders the link's public URL as a PNG for door/DJ sharing.
func (s *Service) QRCode(identity models.Identity, linkID, origin string) ([]byte, error) {
	link, err := s.GetLink(identity, linkID)
	if err != nil {
		return nil, err
	}

	png, err := qrcode.Encode(PublicURL(origin, link.Token), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR: %w", err)
	}
	return png, nil
}
