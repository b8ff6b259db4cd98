package db

import (
	"context"

	"github.com/uptrace/bun"

	"guestlist/internal/models"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) CreateUser(user models.User) error {
	_, err := d.Bun.NewInsert().Model(&user).Exec(context.Background())
	return err
}

func (d *DB) GetUserByID(id string) (*models.User, error) {
	var user models.User
	err := d.Bun.NewSelect().
		Model(&user).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *DB) UpdateUser(user models.User) error {
	_, err := d.Bun.NewUpdate().
		Model(&user).
		Column("email", "display_name", "role", "guest_quota", "active").
		Where("id = ?", user.ID).
		Exec(context.Background())
	return err
}

func (d *DB) ListUsersByVenue(venueID string) ([]models.User, error) {
	var users []models.User
	err := d.Bun.NewSelect().
		Model(&users).
		Where("venue_id = ?", venueID).
		Order("display_name ASC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return users, nil
}
