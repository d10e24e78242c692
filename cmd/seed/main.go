package main

import (
	"errors"
	"log"
	"time"

	"simpliparts-be/internal/config"
	"simpliparts-be/internal/model"
	"simpliparts-be/pkg/database"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type demoAccount struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	ShopName  string
	Status    string
	Credits   int
}

// Accounts for local development: one on the free tier, one with no credits
// left, and one paying shop.
var demoAccounts = []demoAccount{
	{Email: "free@simpliparts.test", Password: "Demo1234", FirstName: "Frank", LastName: "Free", ShopName: "Frank's Garage", Status: "free", Credits: 3},
	{Email: "empty@simpliparts.test", Password: "Demo1234", FirstName: "Erin", LastName: "Empty", ShopName: "Erin's Auto", Status: "free", Credits: 0},
	{Email: "pro@simpliparts.test", Password: "Demo1234", FirstName: "Paula", LastName: "Pro", ShopName: "Paula's Performance", Status: "active", Credits: 0},
}

func main() {
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}
	defer database.Close(db)

	log.Println("Seeding demo accounts...")
	for _, a := range demoAccounts {
		if err := seedAccount(db, a); err != nil {
			log.Printf("Error seeding '%s': %v", a.Email, err)
			continue
		}
	}
	log.Println("Demo seeding completed!")
}

func seedAccount(db *gorm.DB, a demoAccount) error {
	var existing model.User
	err := db.Where("email = ?", a.Email).First(&existing).Error
	if err == nil {
		log.Printf("Account '%s' already exists, skipping...", a.Email)
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(a.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	hashStr := string(hash)

	return db.Transaction(func(tx *gorm.DB) error {
		user := model.User{
			Id:           uuid.New(),
			Email:        a.Email,
			PasswordHash: &hashStr,
			FirstName:    a.FirstName,
			LastName:     a.LastName,
			Status:       "active",
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		shop := model.Shop{
			Id:                   uuid.New(),
			Name:                 a.ShopName,
			SubscriptionStatus:   a.Status,
			FreeCreditsRemaining: a.Credits,
			NotificationEmails:   []string{a.Email},
		}
		if a.Status == "active" {
			end := time.Now().AddDate(0, 1, 0)
			customer := "mt-" + shop.Id.String()
			shop.SubscriptionCurrentPeriodEnd = &end
			shop.BillingCustomerId = &customer
		}
		if err := tx.Create(&shop).Error; err != nil {
			return err
		}

		if err := tx.Create(&model.Profile{UserId: user.Id, ShopId: shop.Id}).Error; err != nil {
			return err
		}
		log.Printf("Created %s (%s, %s)", a.Email, a.ShopName, a.Status)
		return nil
	})
}
