package seeders

import (
	"os"
	"time"

	"cylinder-booking/constants"
	"cylinder-booking/logger"
	"cylinder-booking/models/inventory"
	"cylinder-booking/models/user"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Run seeds the records the application needs on first boot: the admin
// account and the singleton cylinder stock row.
func Run(db *gorm.DB) error {
	if err := seedAdminUser(db); err != nil {
		return err
	}
	return seedCylinderStock(db)
}

func seedAdminUser(db *gorm.DB) error {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		logger.Warning("ADMIN_EMAIL/ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := user.User{
		Name:          "Administrator",
		Email:         email,
		EmailVerified: true,
		Phone:         os.Getenv("ADMIN_PHONE"),
		PasswordHash:  string(hash),
		Role:          constants.RoleAdmin,
		QuotaYear:     time.Now().Year(),
	}

	if err := db.Where(user.User{Email: email}).FirstOrCreate(&admin).Error; err != nil {
		return err
	}

	logger.Success("Admin user seeded: " + email)
	return nil
}

func seedCylinderStock(db *gorm.DB) error {
	var stock inventory.CylinderStock
	if err := db.FirstOrCreate(&stock, inventory.CylinderStock{ID: 1}).Error; err != nil {
		return err
	}
	return nil
}
