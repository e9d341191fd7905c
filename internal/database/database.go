package database

import (
	"fmt"

	"amazon-connector-service/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the database connection. Query logging follows the
// environment: chatty in development, silent elsewhere.
func Connect(databaseURL, environment string) (*gorm.DB, error) {
	logLevel := logger.Silent
	if environment == "development" {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// Migrate runs schema migrations for every model the service owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Channel{},
		&models.ChannelOrderState{},
		&models.Order{},
		&models.OrderLine{},
		&models.SyncException{},
		&models.Party{},
		&models.Address{},
		&models.ContactMechanism{},
		&models.Subdivision{},
		&models.Product{},
		&models.ProductListing{},
		&models.InventoryLevel{},
		&models.Shipment{},
		&models.ShipmentUnit{},
	)
}
