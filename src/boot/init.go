package boot

import (
	"cafe/src/config"
	"cafe/src/db"
	"cafe/src/lib"
	"cafe/src/models"
	"cafe/src/utils"
	"errors"
	"log"
	"os"

	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.Category{},
		&models.MenuItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Event{},
		&models.Booking{},
		&models.AdminUser{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	if err := seedAdminUser(db); err != nil {
		log.Printf("Error seeding admin user: %s\n", err.Error())
	}

	return db
}

// seedAdminUser provisions the bootstrap admin account from the
// environment. A no-op when the account already exists or the env
// vars are unset.
func seedAdminUser(db *gorm.DB) error {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		return nil
	}
	var admin models.AdminUser
	err := db.Where(&models.AdminUser{Email: email}).First(&admin).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	admin = models.AdminUser{
		Name:         "Administrator",
		Email:        email,
		PasswordHash: hash,
		Role:         "admin",
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	log.Printf("Seeded admin account: %s\n", email)
	return nil
}

func InitScheduler() {
	interval := config.StaleOrderCutoff() / 2
	jobID, err := lib.CreateCronJob(utils.ExpireStaleOrders, interval)
	if err != nil {
		log.Printf("Error scheduling stale order sweep: %s\n", err.Error())
		return
	}
	log.Printf("Job ID: %s\n", *jobID)
}

func StopScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("Error retrieving Scheduler. Check logs for info")
		return
	}
	err = sched.Shutdown()
	if err != nil {
		log.Println("An error has occurred while stopping Scheduler. Check logs for info")
		return
	}
}
