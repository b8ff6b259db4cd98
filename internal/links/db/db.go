package db

import (
	"context"

	"github.com/uptrace/bun"

	"guestlist/internal/models"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) CreateLink(link models.GuestLink) error {
	_, err := d.Bun.NewInsert().Model(&link).Exec(context.Background())
	return err
}

func (d *DB) GetLinkByID(id string) (*models.GuestLink, error) {
	var link models.GuestLink
	err := d.Bun.NewSelect().
		Model(&link).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (d *DB) ListLinksByVenue(venueID, date string) ([]models.GuestLink, error) {
	var links []models.GuestLink
	err := d.Bun.NewSelect().
		Model(&links).
		Where("venue_id = ?", venueID).
		Where("target_date = ?", date).
		Order("created_at ASC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return links, nil
}

func (d *DB) UpdateLinkActive(id string, active bool) error {
	_, err := d.Bun.NewUpdate().
		Model((*models.GuestLink)(nil)).
		Set("active = ?", active).
		Where("id = ?", id).
		Exec(context.Background())
	return err
}
