package database

import (
	"github.com/yeremiapane/cohee-app/models"
	"github.com/yeremiapane/cohee-app/utils"
	"gorm.io/gorm"
)

// Migrate membuat/menyesuaikan seluruh tabel.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Table{},
		&models.TableSession{},
		&models.MenuItem{},
		&models.Product{},
		&models.Order{},
	)
	if err != nil {
		utils.ErrorLogger.Printf("Failed to AutoMigrate: %v", err)
		return err
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
	return nil
}
