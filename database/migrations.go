package database

import (
	"geniustrading/logger"
	"geniustrading/models"

	"gorm.io/gorm"
)

// Models lists every table the application owns, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Session{},
		&models.Transaction{},
		&models.Investment{},
		&models.Kyc{},
		&models.DepositAddress{},
		&models.Testimonial{},
	}
}

// Migrate brings the schema up to date. On MySQL DDL is not transactional, so
// a failure part way leaves the earlier tables migrated; rerunning is safe.
func Migrate(db *gorm.DB) error {
	log := logger.For("database")
	if err := db.Transaction(func(tx *gorm.DB) error {
		return tx.AutoMigrate(Models()...)
	}); err != nil {
		return err
	}
	log.Info().Int("tables", len(Models())).Msg("schema migrated")
	return nil
}
