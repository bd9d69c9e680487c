package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TourType struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	CompanyID     uint            `gorm:"index;not null" json:"company_id"`
	Name          string          `gorm:"size:100;not null" json:"name"`
	DurationHours float64         `gorm:"default:0" json:"duration_hours"`
	// Sezon fiyatı bulunamazsa kullanılacak varsayılan birim fiyat
	DefaultPrice decimal.Decimal `gorm:"type:numeric(20,2);default:0" json:"default_price"`
	Currency     Currency        `gorm:"size:8;not null;default:'EUR'" json:"currency"`
	Description  string          `gorm:"size:500" json:"description"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
