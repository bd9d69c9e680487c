package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"acenta-backend/internal/database"
	"acenta-backend/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSeq atomic.Int64

// NewTestDB her test için izole bir in-memory sqlite veritabanı açar ve
// tüm şemayı migrate eder.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// Her test kendi adlandırılmış in-memory db'sini alır; cache=shared
	// aynı ad içinde bağlantı paylaşımı sağlar, testler arası sızdırmaz.
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("test veritabanı açılamadı: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql.DB alınamadı: %v", err)
	}
	// shared cache in-memory db tek bağlantıda kalmalı
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migration başarısız: %v", err)
	}
	return db
}

// NewCompany test firması oluşturur.
func NewCompany(t *testing.T, db *gorm.DB) *models.Company {
	t.Helper()

	company := models.Company{
		CompanyName:    "Test Acente",
		CompanyCode:    "TEST01",
		ModulesEnabled: `{"tour": true, "hotel": true}`,
	}
	if err := db.Create(&company).Error; err != nil {
		t.Fatalf("test firması oluşturulamadı: %v", err)
	}
	return &company
}

// NewCariAccount sıfır bakiyeli test carisi oluşturur.
func NewCariAccount(t *testing.T, db *gorm.DB, companyID uint, name string) *models.CariAccount {
	t.Helper()

	account := models.CariAccount{CompanyID: companyID, Name: name}
	if err := db.Create(&account).Error; err != nil {
		t.Fatalf("test carisi oluşturulamadı: %v", err)
	}
	return &account
}
