package database

import (
	"fmt"

	"acenta-backend/internal/config"
	"acenta-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open veritabanına bağlanır ve migration'ları çalıştırır. Bağlantı tek
// noktadan açılır ve constructor'lara parametre olarak dağıtılır.
func Open(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("veritabanına bağlanılamadı: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Company{},
		&models.User{},
		&models.CariAccount{},
		&models.Cari{},
		&models.Transaction{},
		&models.CashAccount{},
		&models.BankAccount{},
		&models.CheckPromissory{},
		&models.PaymentSettlement{},
		&models.Reservation{},
		&models.ExtraSale{},
		&models.ServicePurchase{},
		&models.TourType{},
		&models.PaymentType{},
		&models.SeasonalPrice{},
		&models.SeasonalPriceOverride{},
		&models.Hotel{},
		&models.HotelRoom{},
		&models.HotelReservation{},
		&models.HotelICSEvent{},
		&models.HotelReservationPushQueue{},
		&models.HotelReservationPushLog{},
		&models.Notification{},
		&models.ActivityLog{},
		&models.Staff{},
		&models.PayrollPayment{},
	)
	if err != nil {
		return fmt.Errorf("AutoMigrate hatası: %w", err)
	}
	return nil
}
