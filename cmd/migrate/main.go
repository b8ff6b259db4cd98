package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"guestlist/internal/busdate"
	"guestlist/internal/config"
	"guestlist/internal/database/migrations"
	"guestlist/internal/models"
	"guestlist/internal/utils"
)

// Dev/ops migration CLI. "up" and "down" walk the versioned SQL
// migrations; "seed" additionally loads a small demo dataset for local
// frontend work.
func main() {
	dir := flag.String("dir", "./migrations", "migrations directory")
	flag.Parse()

	command := flag.Arg(0)
	if command == "" {
		command = "up"
	}

	_ = godotenv.Load()
	cfg := config.Load()

	sqldb, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatalf("Failed to open Postgres: %v", err)
	}
	defer sqldb.Close()

	if err := sqldb.Ping(); err != nil {
		log.Fatalf("Failed to connect to Postgres: %v", err)
	}

	bunDB := bun.NewDB(sqldb, pgdialect.New())
	runner := migrations.NewRunner(bunDB, migrations.Options{Dir: *dir})
	defer runner.Close()

	switch command {
	case "up":
		if err := runner.Up(); err != nil {
			log.Fatalf("Migration up failed: %v", err)
		}
	case "down":
		if err := runner.Down(); err != nil {
			log.Fatalf("Migration down failed: %v", err)
		}
	case "seed":
		if err := runner.Up(); err != nil {
			log.Fatalf("Migration up failed: %v", err)
		}
		if err := seed(context.Background(), bunDB, cfg.Business.CutoffHour); err != nil {
			log.Fatalf("Seed failed: %v", err)
		}
	default:
		log.Fatalf("Unknown command %q (want up, down or seed)", command)
	}

	version, err := runner.Version()
	if err != nil {
		log.Fatalf("Failed to read schema version: %v", err)
	}
	log.Printf("Done. Schema version: %d", version)
}

func seed(ctx context.Context, db *bun.DB, cutoffHour int) error {
	tonight := busdate.Today(cutoffHour)

	venue := models.Venue{
		ID:        "venue-demo",
		Name:      "Club Octagon",
		Category:  models.VenueCategoryClub,
		Address:   "645 Nonhyeon-ro, Gangnam-gu, Seoul",
		Active:    true,
		CreatedAt: time.Now(),
	}
	if _, err := db.NewInsert().Model(&venue).On("CONFLICT (id) DO NOTHING").Exec(ctx); err != nil {
		return err
	}

	staff := []models.User{
		{ID: "user-super", Email: "root@guestlist.local", DisplayName: "Platform Admin", Role: models.RoleSuperAdmin, Active: true, CreatedAt: time.Now()},
		{ID: "user-admin", VenueID: venue.ID, Email: "admin@guestlist.local", DisplayName: "Venue Admin", Role: models.RoleVenueAdmin, Active: true, CreatedAt: time.Now()},
		{ID: "user-door", VenueID: venue.ID, Email: "door@guestlist.local", DisplayName: "Door Staff", Role: models.RoleDoor, Active: true, CreatedAt: time.Now()},
		{ID: "user-dj", VenueID: venue.ID, Email: "dj@guestlist.local", DisplayName: "Resident DJ", Role: models.RoleDJ, GuestQuota: 10, Active: true, CreatedAt: time.Now()},
	}
	if _, err := db.NewInsert().Model(&staff).On("CONFLICT (id) DO NOTHING").Exec(ctx); err != nil {
		return err
	}

	link := models.GuestLink{
		ID:         "link-demo",
		VenueID:    venue.ID,
		Token:      utils.GenerateLinkToken(),
		DJName:     "Resident DJ",
		EventName:  "Saturday Night",
		TargetDate: tonight,
		MaxGuests:  20,
		Active:     true,
		CreatedBy:  "user-admin",
		CreatedAt:  time.Now(),
	}
	if _, err := db.NewInsert().Model(&link).On("CONFLICT (id) DO NOTHING").Exec(ctx); err != nil {
		return err
	}

	log.Printf("Seeded venue %s with demo staff and link for %s", venue.ID, tonight)
	return nil
}
