package persistence

import (
	"errors"
	"fmt"
	"time"

	"pickupstand/internal/domain"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open connects to PostgreSQL with the pool limits the app runs with.
// TranslateError is on so unique violations surface as
// gorm.ErrDuplicatedKey regardless of driver.
func Open(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

// AutoMigrate creates or updates the schema for every entity.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Shop{},
		&domain.InstallSession{},
		&domain.Customer{},
		&domain.CustomerNote{},
		&domain.PickupLocation{},
		&domain.TimeSlot{},
		&domain.BlackoutDate{},
		&domain.PickupSchedule{},
		&domain.OrderItem{},
		&domain.SubscriptionPlanGroup{},
		&domain.SubscriptionPlanFrequency{},
		&domain.SellingPlanConfig{},
		&domain.SubscriptionPickup{},
		&domain.WebhookEvent{},
		&domain.GoogleCalendarAuth{},
		&domain.SmsMessage{},
	)
}

// translate maps gorm errors onto the domain sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return domain.ErrDuplicate
	default:
		return err
	}
}
