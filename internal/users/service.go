package users

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"guestlist/internal/ledger"
	"guestlist/internal/models"
)

type DBLayer interface {
	CreateUser(user models.User) error
	GetUserByID(id string) (*models.User, error)
	UpdateUser(user models.User) error
	ListUsersByVenue(venueID string) ([]models.User, error)
}

type Service struct {
	DB DBLayer
}

func NewService(db DBLayer) *Service {
	return &Service{DB: db}
}

type InviteParams struct {
	VenueID     string
	Email       string
	DisplayName string
	Role        string
	GuestQuota  int
}

// InviteUser creates a staff account. Credential setup happens in the
// identity collaborator once the invited person follows the email flow;
// this side only records the account row. Venue admins can invite door
// and dj staff for their own venue; super admins can invite anyone.
func (s *Service) InviteUser(identity models.Identity, params InviteParams) (*models.User, error) {
	if !identity.IsAdmin() {
		return nil, ledger.ErrUnauthorized
	}
	if !models.ValidRole(params.Role) {
		return nil, ledger.ErrValidation
	}
	if identity.Role != models.RoleSuperAdmin {
		if !identity.CanAccessVenue(params.VenueID) {
			return nil, ledger.ErrUnauthorized
		}
		if params.Role == models.RoleSuperAdmin || params.Role == models.RoleVenueAdmin {
			return nil, ledger.ErrUnauthorized
		}
	}
	if params.Role != models.RoleSuperAdmin && params.VenueID == "" {
		return nil, ledger.ErrValidation
	}

	email := strings.TrimSpace(strings.ToLower(params.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, ledger.ErrValidation
	}
	if params.GuestQuota < 0 {
		return nil, ledger.ErrValidation
	}

	quota := 0
	if params.Role == models.RoleDJ {
		quota = params.GuestQuota
	}

	user := models.User{
		ID:          uuid.NewString(),
		VenueID:     params.VenueID,
		Email:       email,
		DisplayName: strings.TrimSpace(params.DisplayName),
		Role:        params.Role,
		GuestQuota:  quota,
		Active:      true,
		CreatedAt:   time.Now(),
	}

	if err := s.DB.CreateUser(user); err != nil {
		return nil, fmt.Errorf("%w: %v", ledger.ErrStore, err)
	}
	return &user, nil
}

func (s *Service) GetUser(identity models.Identity, userID string) (*models.User, error) {
	user, err := s.DB.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ledger.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ledger.ErrStore, err)
	}
	if identity.UserID != user.ID && !identity.CanAccessVenue(user.VenueID) {
		return nil, ledger.ErrUnauthorized
	}
	return user, nil
}

func (s *Service) ListUsers(identity models.Identity, venueID string) ([]models.User, error) {
	if !identity.CanAccessVenue(venueID) {
		return nil, ledger.ErrUnauthorized
	}

	users, err := s.DB.ListUsersByVenue(venueID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ledger.ErrStore, err)
	}
	return users, nil
}

// UpdateQuota changes a DJ's guest quota. Quotas are meaningless for
// other roles and are rejected.
func (s *Service) UpdateQuota(identity models.Identity, userID string, quota int) (*models.User, error) {
	if !identity.IsAdmin() {
		return nil, ledger.ErrUnauthorized
	}
	if quota < 0 {
		return nil, ledger.ErrValidation
	}

	user, err := s.GetUser(identity, userID)
	if err != nil {
		return nil, err
	}
	if user.Role != models.RoleDJ {
		return nil, ledger.ErrValidation
	}

	user.GuestQuota = quota
	if err := s.DB.UpdateUser(*user); err != nil {
		return nil, fmt.Errorf("%w: %v", ledger.ErrStore, err)
	}
	return user, nil
}

// SetActive soft-deactivates or reactivates a staff account. Rows are
// never deleted; an inactive account simply fails authorization.
func (s *Service) SetActive(identity models.Identity, userID string, active bool) error {
	if !identity.IsAdmin() {
		return ledger.ErrUnauthorized
	}

	user, err := s.GetUser(identity, userID)
	if err != nil {
		return err
	}
	if user.ID == identity.UserID {
		// Nobody locks themselves out
		return ledger.ErrValidation
	}

	user.Active = active
	if err := s.DB.UpdateUser(*user); err != nil {
		return fmt.Errorf("%w: %v", ledger.ErrStore, err)
	}
	return nil
}
