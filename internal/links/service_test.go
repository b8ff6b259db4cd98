package links_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"guestlist/internal/ledger"
	"guestlist/internal/links"
	"guestlist/internal/models"
)

type MockDBLayer struct {
	mock.Mock
}

func (m *MockDBLayer) CreateLink(link models.GuestLink) error {
	args := m.Called(link)
	return args.Error(0)
}

func (m *MockDBLayer) GetLinkByID(id string) (*models.GuestLink, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GuestLink), args.Error(1)
}

func (m *MockDBLayer) ListLinksByVenue(venueID, date string) ([]models.GuestLink, error) {
	args := m.Called(venueID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.GuestLink), args.Error(1)
}

func (m *MockDBLayer) UpdateLinkActive(id string, active bool) error {
	args := m.Called(id, active)
	return args.Error(0)
}

func adminIdentity() models.Identity {
	return models.Identity{UserID: "admin1", VenueID: "venue1", Role: models.RoleVenueAdmin, Active: true}
}

func TestCreateLink(t *testing.T) {
	mockDB := new(MockDBLayer)
	service := links.NewService(mockDB)

	var created models.GuestLink
	mockDB.On("CreateLink", mock.AnythingOfType("models.GuestLink")).
		Run(func(args mock.Arguments) { created = args.Get(0).(models.GuestLink) }).
		Return(nil)

	link, err := service.CreateLink(adminIdentity(), links.CreateParams{
		VenueID:    "venue1",
		DJName:     "DJ Hana",
		EventName:  "Friday Night",
		TargetDate: "2026-08-29",
		MaxGuests:  20,
	})
	assert.NoError(t, err)
	assert.NotEmpty(t, link.Token)
	assert.Equal(t, 0, link.UsedGuests)
	assert.True(t, link.Active)
	assert.Equal(t, "admin1", link.CreatedBy)
	assert.Equal(t, created.Token, link.Token)
}

func TestCreateLinkAuthz(t *testing.T) {
	service := links.NewService(new(MockDBLayer))

	// Door staff cannot mint links
	door := models.Identity{UserID: "door1", VenueID: "venue1", Role: models.RoleDoor, Active: true}
	_, err := service.CreateLink(door, links.CreateParams{VenueID: "venue1", DJName: "DJ", TargetDate: "2026-08-29", MaxGuests: 5})
	assert.ErrorIs(t, err, ledger.ErrUnauthorized)

	// Admins cannot mint links for another venue
	_, err = service.CreateLink(adminIdentity(), links.CreateParams{VenueID: "venue2", DJName: "DJ", TargetDate: "2026-08-29", MaxGuests: 5})
	assert.ErrorIs(t, err, ledger.ErrUnauthorized)
}

func TestCreateLinkValidation(t *testing.T) {
	service := links.NewService(new(MockDBLayer))

	cases := []links.CreateParams{
		{VenueID: "venue1", DJName: "", TargetDate: "2026-08-29", MaxGuests: 5},
		{VenueID: "venue1", DJName: "DJ", TargetDate: "2026-08-29", MaxGuests: 0},
		{VenueID: "venue1", DJName: "DJ", TargetDate: "29/08/2026", MaxGuests: 5},
	}
	for _, params := range cases {
		_, err := service.CreateLink(adminIdentity(), params)
		assert.ErrorIs(t, err, ledger.ErrValidation)
	}
}

func TestDeactivate(t *testing.T) {
	mockDB := new(MockDBLayer)
	service := links.NewService(mockDB)

	link := &models.GuestLink{ID: "link1", VenueID: "venue1", Active: true, CreatedAt: time.Now()}
	mockDB.On("GetLinkByID", "link1").Return(link, nil)
	mockDB.On("UpdateLinkActive", "link1", false).Return(nil)

	err := service.Deactivate(adminIdentity(), "link1")
	assert.NoError(t, err)
	mockDB.AssertExpectations(t)
}

func TestPublicURL(t *testing.T) {
	url := links.PublicURL("https://list.example.com", "abc+/=123")
	assert.Equal(t, "https://list.example.com/guest?token=abc%2B%2F%3D123", url)
}

func TestQRCode(t *testing.T) {
	mockDB := new(MockDBLayer)
	service := links.NewService(mockDB)

	link := &models.GuestLink{ID: "link1", VenueID: "venue1", Token: "tok123", Active: true}
	mockDB.On("GetLinkByID", "link1").Return(link, nil)

	png, err := service.QRCode(adminIdentity(), "link1", "https://list.example.com")
	assert.NoError(t, err)
	assert.NotEmpty(t, png)
	// PNG magic bytes
	assert.Equal(t, byte(0x89), png[0])
	assert.Equal(t, byte('P'), png[1])
}
