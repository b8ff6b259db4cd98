package db

import (
	"context"
	"database/sql"

	"github.com/uptrace/bun"

	"guestlist/internal/ledger"
	"guestlist/internal/models"
)

type DB struct {
	Bun *bun.DB
}

// GetLinkByToken fetches an active link by exact token match. Inactive
// links are invisible here, so a disabled token reads as not found.
func (d *DB) GetLinkByToken(token string) (*models.GuestLink, error) {
	var link models.GuestLink
	err := d.Bun.NewSelect().
		Model(&link).
		Where("token = ?", token).
		Where("active = ?", true).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &link, nil
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

// RegisterViaLink consumes one capacity slot and inserts the guest in a
// single transaction. The conditional update is the capacity guard: if a
// concurrent registration took the last slot, zero rows are affected and
// the whole operation rolls back with ErrLimitReached.
func (d *DB) RegisterViaLink(linkID string, guest models.Guest) error {
	ctx := context.Background()
	return d.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model((*models.GuestLink)(nil)).
			Set("used_guests = used_guests + 1").
			Where("id = ?", linkID).
			Where("active = ?", true).
			Where("used_guests < max_guests").
			Exec(ctx)
		if err != nil {
			return err
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return ledger.ErrLimitReached
		}

		_, err = tx.NewInsert().Model(&guest).Exec(ctx)
		return err
	})
}

func (d *DB) CreateGuest(guest models.Guest) error {
	_, err := d.Bun.NewInsert().Model(&guest).Exec(context.Background())
	return err
}

func (d *DB) GetGuestByID(id string) (*models.Guest, error) {
	var guest models.Guest
	err := d.Bun.NewSelect().
		Model(&guest).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &guest, nil
}

func (d *DB) UpdateGuestStatus(guest models.Guest) error {
	_, err := d.Bun.NewUpdate().
		Model(&guest).
		Column("status", "checked_at").
		Where("id = ?", guest.ID).
		Exec(context.Background())
	return err
}

// ListGuests returns non-deleted guests for a venue and date in creation
// order. Soft-deleted rows stay in the table but never leave it.
func (d *DB) ListGuests(venueID, date string) ([]models.Guest, error) {
	var guests []models.Guest
	err := d.Bun.NewSelect().
		Model(&guests).
		Where("venue_id = ?", venueID).
		Where("target_date = ?", date).
		Where("status != ?", models.GuestStatusDeleted).
		Order("created_at ASC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return guests, nil
}

// CountGuestsByCreator counts a staff member's non-deleted guests for a
// date. Used for DJ quota enforcement.
func (d *DB) CountGuestsByCreator(userID, date string) (int, error) {
	return d.Bun.NewSelect().
		Model((*models.Guest)(nil)).
		Where("created_by = ?", userID).
		Where("target_date = ?", date).
		Where("status != ?", models.GuestStatusDeleted).
		Count(context.Background())
}
