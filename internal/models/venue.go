package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	VenueCategoryClub     = "club"
	VenueCategoryBar      = "bar"
	VenueCategoryLounge   = "lounge"
	VenueCategoryFestival = "festival"
	VenueCategoryPrivate  = "private"
)

type Venue struct {
	bun.BaseModel `bun:"table:venues"`

	ID          string    `bun:"id,pk" json:"id"`
	Name        string    `bun:"name" json:"name"`
	Category    string    `bun:"category" json:"category"`
	Address     string    `bun:"address" json:"address,omitempty"`
	Description string    `bun:"description" json:"description,omitempty"`
	Active      bool      `bun:"active" json:"active"`
	CreatedAt   time.Time `bun:"created_at" json:"created_at"`
}

func ValidVenueCategory(category string) bool {
	switch category {
	case VenueCategoryClub, VenueCategoryBar, VenueCategoryLounge, VenueCategoryFestival, VenueCategoryPrivate:
		return true
	}
	return false
}

// VenuePublic is the subset shown on the anonymous registration page.
type VenuePublic struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Address  string `json:"address,omitempty"`
}

func (v *Venue) Public() VenuePublic {
	return VenuePublic{
		Name:     v.Name,
		Category: v.Category,
		Address:  v.Address,
	}
}
