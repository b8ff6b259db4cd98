package analytics

import (
	"context"

	"github.com/uptrace/bun"

	"guestlist/internal/models"
)

// DB handles analytics database operations
type DB struct {
	bun *bun.DB
}

// NewDB creates a new analytics DB handler
func NewDB(db *bun.DB) *DB {
	return &DB{bun: db}
}

// CountGuestsByStatus counts a venue's guests for a date in one status,
// excluding soft-deleted rows unless asked for them explicitly.
func (db *DB) CountGuestsByStatus(ctx context.Context, venueID, date, status string) (int, error) {
	return db.bun.NewSelect().
		Model((*models.Guest)(nil)).
		Where("venue_id = ?", venueID).
		Where("target_date = ?", date).
		Where("status = ?", status).
		Count(ctx)
}

// LinkUsageData is the raw per-link usage row for a venue night.
type LinkUsageData struct {
	LinkID     string `bun:"link_id"`
	DJName     string `bun:"dj_name"`
	MaxGuests  int    `bun:"max_guests"`
	UsedGuests int    `bun:"used_guests"`
	Checked    int    `bun:"checked"`
}

// GetLinkUsage aggregates registration and check-in counts per external
// link for one venue and date.
func (db *DB) GetLinkUsage(ctx context.Context, venueID, date string) ([]LinkUsageData, error) {
	var usage []LinkUsageData
	err := db.bun.NewRaw(`
		SELECT
			l.id AS link_id,
			l.dj_name AS dj_name,
			l.max_guests AS max_guests,
			l.used_guests AS used_guests,
			COUNT(CASE WHEN g.status = 'checked' THEN 1 END) AS checked
		FROM
			guest_links l
		LEFT JOIN
			guests g ON g.link_id = l.id AND g.status != 'deleted'
		WHERE
			l.venue_id = ? AND l.target_date = ?
		GROUP BY
			l.id, l.dj_name, l.max_guests, l.used_guests
		ORDER BY
			l.dj_name
	`, venueID, date).Scan(ctx, &usage)

	return usage, err
}

// StaffCountData is the raw per-staff registration count for one night.
type StaffCountData struct {
	UserID      string `bun:"user_id"`
	DisplayName string `bun:"display_name"`
	Registered  int    `bun:"registered"`
	Checked     int    `bun:"checked"`
}

// GetStaffCounts aggregates guests per creating staff member.
func (db *DB) GetStaffCounts(ctx context.Context, venueID, date string) ([]StaffCountData, error) {
	var counts []StaffCountData
	err := db.bun.NewRaw(`
		SELECT
			u.id AS user_id,
			u.display_name AS display_name,
			COUNT(g.id) AS registered,
			COUNT(CASE WHEN g.status = 'checked' THEN 1 END) AS checked
		FROM
			users u
		JOIN
			guests g ON g.created_by = u.id AND g.status != 'deleted'
		WHERE
			g.venue_id = ? AND g.target_date = ?
		GROUP BY
			u.id, u.display_name
		ORDER BY
			u.display_name
	`, venueID, date).Scan(ctx, &counts)

	return counts, err
}
