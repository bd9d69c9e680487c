package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SeasonalPrice: tarih aralığı + tur tipi için genel birim fiyat.
type SeasonalPrice struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	CompanyID  uint            `gorm:"index;not null" json:"company_id"`
	StartDate  string          `gorm:"size:10;index;not null" json:"start_date"` // YYYY-MM-DD
	EndDate    string          `gorm:"size:10;index;not null" json:"end_date"`
	TourTypeID uint            `gorm:"index;not null" json:"tour_type_id"`
	Price      decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"price"`
	Currency   Currency        `gorm:"size:8;not null;default:'EUR'" json:"currency"`

	Overrides []SeasonalPriceOverride `gorm:"foreignKey:SeasonalPriceID;constraint:OnDelete:CASCADE" json:"overrides"`

	CreatedBy uint      `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SeasonalPriceOverride: belirli bir cariye özel birim fiyat.
type SeasonalPriceOverride struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	SeasonalPriceID uint            `gorm:"index;not null" json:"seasonal_price_id"`
	CariID          uint            `gorm:"index;not null" json:"cari_id"`
	Price           decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"price"`
	CreatedAt       time.Time       `json:"created_at"`
}
