package cariself

import (
	"fmt"

	"acenta-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ResolvedPrice sunucu tarafında belirlenen birim fiyat ve kaynağı.
type ResolvedPrice struct {
	UnitPrice decimal.Decimal
	Currency  models.Currency
	Source    string // cari_override / seasonal / tour_default
}

// ResolveUnitPrice cari panel başvurusu için birim fiyatı belirler.
// Öncelik sırası: cariye özel sezon fiyatı > genel sezon fiyatı > tur
// tipi varsayılanı. İstemciden gelen fiyat asla kullanılmaz.
func ResolveUnitPrice(tx *gorm.DB, companyID, cariID, tourTypeID uint, date string) (*ResolvedPrice, error) {
	var season models.SeasonalPrice
	err := tx.Where("company_id = ? AND tour_type_id = ? AND start_date <= ? AND end_date >= ?",
		companyID, tourTypeID, date, date).
		Order("start_date DESC").
		First(&season).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, err
	}

	if err == nil {
		var override models.SeasonalPriceOverride
		oerr := tx.Where("seasonal_price_id = ? AND cari_id = ?", season.ID, cariID).
			First(&override).Error
		if oerr == nil {
			return &ResolvedPrice{UnitPrice: override.Price, Currency: season.Currency, Source: "cari_override"}, nil
		}
		if oerr != gorm.ErrRecordNotFound {
			return nil, oerr
		}
		return &ResolvedPrice{UnitPrice: season.Price, Currency: season.Currency, Source: "seasonal"}, nil
	}

	var tt models.TourType
	if err := tx.First(&tt, "id = ? AND company_id = ?", tourTypeID, companyID).Error; err != nil {
		return nil, fmt.Errorf("tur tipi bulunamadı: %w", err)
	}
	if !tt.DefaultPrice.IsPositive() {
		return nil, fmt.Errorf("bu tarih için fiyat tanımı yok (tur tipi %d, tarih %s)", tourTypeID, date)
	}
	return &ResolvedPrice{UnitPrice: tt.DefaultPrice, Currency: tt.Currency, Source: "tour_default"}, nil
}
