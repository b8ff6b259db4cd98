package users_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"guestlist/internal/ledger"
	"guestlist/internal/models"
	"guestlist/internal/users"
)

type MockDBLayer struct {
	mock.Mock
}

func (m *MockDBLayer) CreateUser(user models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockDBLayer) GetUserByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockDBLayer) UpdateUser(user models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockDBLayer) ListUsersByVenue(venueID string) ([]models.User, error) {
	args := m.Called(venueID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func superAdmin() models.Identity {
	return models.Identity{UserID: "root", Role: models.RoleSuperAdmin, Active: true}
}

func venueAdmin() models.Identity {
	return models.Identity{UserID: "admin1", VenueID: "venue1", Role: models.RoleVenueAdmin, Active: true}
}

func TestInviteUser(t *testing.T) {
	mockDB := new(MockDBLayer)
	service := users.NewService(mockDB)

	var created models.User
	mockDB.On("CreateUser", mock.AnythingOfType("models.User")).
		Run(func(args mock.Arguments) { created = args.Get(0).(models.User) }).
		Return(nil)

	user, err := service.InviteUser(venueAdmin(), users.InviteParams{
		VenueID:     "venue1",
		Email:       "  DJ@Example.COM ",
		DisplayName: "DJ Hana",
		Role:        models.RoleDJ,
		GuestQuota:  10,
	})
	assert.NoError(t, err)
	assert.Equal(t, "dj@example.com", user.Email)
	assert.Equal(t, 10, user.GuestQuota)
	assert.True(t, user.Active)
	assert.Equal(t, created.ID, user.ID)
}

func TestInviteUserQuotaOnlyForDJ(t *testing.T) {
	mockDB := new(MockDBLayer)
	service := users.NewService(mockDB)

	mockDB.On("CreateUser", mock.AnythingOfType("models.User")).Return(nil)

	// Quota is meaningless for door staff and gets dropped
	user, err := service.InviteUser(venueAdmin(), users.InviteParams{
		VenueID:    "venue1",
		Email:      "door@example.com",
		Role:       models.RoleDoor,
		GuestQuota: 10,
	})
	assert.NoError(t, err)
	assert.Equal(t, 0, user.GuestQuota)
}

func TestInviteUserRoleEscalation(t *testing.T) {
	service := users.NewService(new(MockDBLayer))

	// A venue admin cannot mint admins of any kind
	for _, role := range []string{models.RoleSuperAdmin, models.RoleVenueAdmin} {
		_, err := service.InviteUser(venueAdmin(), users.InviteParams{
			VenueID: "venue1",
			Email:   "x@example.com",
			Role:    role,
		})
		assert.ErrorIs(t, err, ledger.ErrUnauthorized)
	}

	// Nor invite into another venue
	_, err := service.InviteUser(venueAdmin(), users.InviteParams{
		VenueID: "venue2",
		Email:   "x@example.com",
		Role:    models.RoleDoor,
	})
	assert.ErrorIs(t, err, ledger.ErrUnauthorized)

	// A super admin can do both
	mockDB := new(MockDBLayer)
	service = users.NewService(mockDB)
	mockDB.On("CreateUser", mock.AnythingOfType("models.User")).Return(nil)

	_, err = service.InviteUser(superAdmin(), users.InviteParams{
		VenueID: "venue2",
		Email:   "x@example.com",
		Role:    models.RoleVenueAdmin,
	})
	assert.NoError(t, err)
}

func TestInviteUserValidation(t *testing.T) {
	service := users.NewService(new(MockDBLayer))

	cases := []users.InviteParams{
		{VenueID: "venue1", Email: "not-an-email", Role: models.RoleDoor},
		{VenueID: "venue1", Email: "", Role: models.RoleDoor},
		{VenueID: "venue1", Email: "x@example.com", Role: "bouncer"},
		{VenueID: "venue1", Email: "x@example.com", Role: models.RoleDJ, GuestQuota: -1},
	}
	for _, params := range cases {
		_, err := service.InviteUser(venueAdmin(), params)
		assert.ErrorIs(t, err, ledger.ErrValidation)
	}
}

func TestUpdateQuota(t *testing.T) {
	mockDB := new(MockDBLayer)
	service := users.NewService(mockDB)

	dj := &models.User{ID: "dj1", VenueID: "venue1", Role: models.RoleDJ, GuestQuota: 5}
	mockDB.On("GetUserByID", "dj1").Return(dj, nil)
	mockDB.On("UpdateUser", mock.AnythingOfType("models.User")).Return(nil)

	updated, err := service.UpdateQuota(venueAdmin(), "dj1", 15)
	assert.NoError(t, err)
	assert.Equal(t, 15, updated.GuestQuota)
}

func TestUpdateQuotaOnlyForDJs(t *testing.T) {
	mockDB := new(MockDBLayer)
	service := users.NewService(mockDB)

	door := &models.User{ID: "door1", VenueID: "venue1", Role: models.RoleDoor}
	mockDB.On("GetUserByID", "door1").Return(door, nil)

	_, err := service.UpdateQuota(venueAdmin(), "door1", 15)
	assert.ErrorIs(t, err, ledger.ErrValidation)
}

func TestSetActiveNoSelfLockout(t *testing.T) {
	mockDB := new(MockDBLayer)
	service := users.NewService(mockDB)

	self := &models.User{ID: "admin1", VenueID: "venue1", Role: models.RoleVenueAdmin, Active: true}
	mockDB.On("GetUserByID", "admin1").Return(self, nil)

	err := service.SetActive(venueAdmin(), "admin1", false)
	assert.ErrorIs(t, err, ledger.ErrValidation)
}

func TestSetActive(t *testing.T) {
	mockDB := new(MockDBLayer)
	service := users.NewService(mockDB)

	dj := &models.User{ID: "dj1", VenueID: "venue1", Role: models.RoleDJ, Active: true}
	mockDB.On("GetUserByID", "dj1").Return(dj, nil)

	var updated models.User
	mockDB.On("UpdateUser", mock.AnythingOfType("models.User")).
		Run(func(args mock.Arguments) { updated = args.Get(0).(models.User) }).
		Return(nil)

	err := service.SetActive(venueAdmin(), "dj1", false)
	assert.NoError(t, err)
	assert.False(t, updated.Active)
}
