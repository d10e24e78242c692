package main

import (
	"log"

	"simpliparts-be/internal/config"
	"simpliparts-be/internal/model"
	"simpliparts-be/pkg/database"
)

func main() {
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	opts := database.DefaultOptions()
	opts.LogSQL = true
	db, err := database.Open(cfg.Database.Connection, opts)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}
	defer database.Close(db)

	log.Println("Step 1: Setting up extensions...")
	setupSQL := []string{
		// gen_random_uuid()
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
	}
	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute setup SQL: %v. Continuing...", err)
		}
	}

	log.Println("Step 2: Running AutoMigrate...")
	models := []interface{}{
		&model.User{},
		&model.Profile{},
		&model.UserProvider{},
		&model.UserRefreshToken{},
		&model.ResetCode{},
		&model.Shop{},
		&model.ShopIntegration{},
		&model.BillingTransaction{},
		&model.Feedback{},
		&model.WaitlistEntry{},
	}
	if err := db.AutoMigrate(models...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	log.Println("Step 3: Adding constraints AutoMigrate does not express...")
	postMigrationSQL := []string{
		`DO $$ BEGIN
		   IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'shops_free_credits_non_negative') THEN
		     ALTER TABLE shops ADD CONSTRAINT shops_free_credits_non_negative CHECK (free_credits_remaining >= 0);
		   END IF;
		 END $$;`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_waitlist_email_lower ON waitlist_interest (lower(email));`,
	}
	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute post-migration SQL: %v", err)
		}
	}

	log.Println("Success: Database migration completed.")
}
