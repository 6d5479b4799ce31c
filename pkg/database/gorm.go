package database

import (
	"log"
	"os"
	"time"

	"stewardship-be/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func getLogger() logger.Interface {
	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
			Colorful:                  true,
		},
	)
}

func configureConnectionPool(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return nil
}

func NewGormDBFromDSN(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: getLogger(),
	})
	if err != nil {
		return nil, err
	}

	if err := configureConnectionPool(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates or updates the giving tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Member{},
		&model.Designation{},
		&model.Donation{},
		&model.RecurringDonation{},
		&model.PaymentTransaction{},
		&model.TaxReceipt{},
		&model.ReceiptSequence{},
	); err != nil {
		return err
	}

	// One live receipt per donation and per member-year. Voided receipts
	// stay behind without blocking reissue.
	if err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS uniq_live_single_receipt
		ON tax_receipts (donation_id) WHERE is_annual = false AND status <> 'voided'`).Error; err != nil {
		return err
	}
	return db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS uniq_live_annual_receipt
		ON tax_receipts (member_id, tax_year) WHERE is_annual = true AND status <> 'voided'`).Error
}
