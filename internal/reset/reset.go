package reset

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/flatlogic/usermgmt-backend/internal/config"
	"github.com/flatlogic/usermgmt-backend/internal/model"
	"github.com/flatlogic/usermgmt-backend/internal/utils"
)

// adminID is fixed so demo links and bookmarks survive a reseed.
const adminID = "44cd4090-a641-443d-bdf5-51debfa10356"

// Start launches the hourly demo wipe when RESET_ENABLED is set.  The
// job truncates all application tables and reseeds the admin plus a few
// sample accounts and products, so public demo instances stay clean.
func Start(db *sql.DB, cfg *config.Config) {
	if !cfg.ResetEnabled {
		return
	}
	go func() {
		if err := run(db, cfg); err != nil {
			log.Printf("reset: initial seed failed: %v", err)
		}
		t := time.NewTicker(time.Hour)
		defer t.Stop()
		for range t.C {
			if err := run(db, cfg); err != nil {
				log.Printf("reset: %v", err)
			}
		}
	}()
}

func run(db *sql.DB, cfg *config.Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, table := range []string{"files", "products", "users"} {
		if _, err := db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}

	hash, err := utils.HashPassword(cfg.AdminPass, cfg.BcryptCost)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	seedUsers := []struct {
		id, firstName, email, role string
	}{
		{adminID, "Admin", cfg.AdminEmail, model.RoleAdmin},
		{uuid.NewString(), "John", "john@doe.com", model.RoleUser},
		{uuid.NewString(), "Client", "client@hello.com", model.RoleUser},
	}
	for _, u := range seedUsers {
		if _, err := db.ExecContext(ctx,
			`INSERT INTO users (id, email, password, role, provider, first_name,
			   email_verified, authentication_uid, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, 1, ?, ?, ?)`,
			u.id, u.email, hash, u.role, model.ProviderLocal, u.firstName, u.id, now, now,
		); err != nil {
			return err
		}
	}

	seedProducts := []struct {
		title string
		price float64
		img   string
	}{
		{"Pineapple Candy", 12.5, "assets/products/product1.jpg"},
		{"Apple Cake", 30, "assets/products/product2.jpg"},
		{"Orange Soda", 7.2, "assets/products/product3.jpg"},
	}
	for _, p := range seedProducts {
		if _, err := db.ExecContext(ctx,
			`INSERT INTO products (id, title, price, img, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			uuid.NewString(), p.title, p.price, p.img, now, now,
		); err != nil {
			return err
		}
	}

	log.Printf("reset: demo data reseeded")
	return nil
}
