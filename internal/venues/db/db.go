package db

import (
	"context"

	"github.com/uptrace/bun"

	"guestlist/internal/models"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) CreateVenue(venue models.Venue) error {
	_, err := d.Bun.NewInsert().Model(&venue).Exec(context.Background())
	return err
}

func (d *DB) GetVenueByID(id string) (*models.Venue, error) {
	var venue models.Venue
	err := d.Bun.NewSelect().
		Model(&venue).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &venue, nil
}

func (d *DB) UpdateVenue(venue models.Venue) error {
	_, err := d.Bun.NewUpdate().
		Model(&venue).
		Column("name", "category", "address", "description", "active").
		Where("id = ?", venue.ID).
		Exec(context.Background())
	return err
}

func (d *DB) ListVenues() ([]models.Venue, error) {
	var venues []models.Venue
	err := d.Bun.NewSelect().
		Model(&venues).
		Order("name ASC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return venues, nil
}
