package database

import (
	"gorm.io/gorm"

	"github.com/pedidoflow/restaurante-app/models"
	"github.com/pedidoflow/restaurante-app/utils"
)

// Migrate creates/updates every table this service owns.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.MenuCategory{},
		&models.Menu{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderEvent{},
		&models.Notification{},
		&models.WebhookDeadLetter{},
		&models.Reservation{},
		&models.ServiceCall{},
		&models.BillRequest{},
		&models.Question{},
		&models.Complaint{},
		&models.Rating{},
		&models.Suggestion{},
	)
	if err != nil {
		return err
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
	return nil
}
