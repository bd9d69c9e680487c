package cariself

import (
	"testing"

	"acenta-backend/internal/models"
	"acenta-backend/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func seedPricing(t *testing.T, db *gorm.DB, companyID, cariID uint) (tourTypeID uint) {
	t.Helper()

	tt := models.TourType{
		CompanyID:    companyID,
		Name:         "Safari",
		DefaultPrice: dec("100"),
		Currency:     models.CurrencyEUR,
	}
	require.NoError(t, db.Create(&tt).Error)

	season := models.SeasonalPrice{
		CompanyID:  companyID,
		StartDate:  "2026-06-01",
		EndDate:    "2026-08-31",
		TourTypeID: tt.ID,
		Price:      dec("80"),
		Currency:   models.CurrencyEUR,
		Overrides: []models.SeasonalPriceOverride{
			{CariID: cariID, Price: dec("50")},
		},
	}
	require.NoError(t, db.Create(&season).Error)
	return tt.ID
}

func TestResolveUnitPricePrefersCariOverride(t *testing.T) {
	db := testutil.NewTestDB(t)
	company := testutil.NewCompany(t, db)
	cari := testutil.NewCariAccount(t, db, company.ID, "Anlaşmalı Acente")
	tourTypeID := seedPricing(t, db, company.ID, cari.ID)

	price, err := ResolveUnitPrice(db, company.ID, cari.ID, tourTypeID, "2026-07-15")
	require.NoError(t, err)
	assert.True(t, price.UnitPrice.Equal(dec("50")), "birim fiyat: %s", price.UnitPrice)
	assert.Equal(t, "cari_override", price.Source)
	assert.Equal(t, models.CurrencyEUR, price.Currency)
}

func TestResolveUnitPriceFallsBackToSeasonal(t *testing.T) {
	db := testutil.NewTestDB(t)
	company := testutil.NewCompany(t, db)
	cari := testutil.NewCariAccount(t, db, company.ID, "Anlaşmalı")
	other := testutil.NewCariAccount(t, db, company.ID, "Anlaşmasız")
	tourTypeID := seedPricing(t, db, company.ID, cari.ID)

	price, err := ResolveUnitPrice(db, company.ID, other.ID, tourTypeID, "2026-07-15")
	require.NoError(t, err)
	assert.True(t, price.UnitPrice.Equal(dec("80")))
	assert.Equal(t, "seasonal", price.Source)
}

func TestResolveUnitPriceFallsBackToTourDefault(t *testing.T) {
	db := testutil.NewTestDB(t)
	company := testutil.NewCompany(t, db)
	cari := testutil.NewCariAccount(t, db, company.ID, "Kış Müşterisi")
	tourTypeID := seedPricing(t, db, company.ID, cari.ID)

	// Sezon aralığı dışı tarih
	price, err := ResolveUnitPrice(db, company.ID, cari.ID, tourTypeID, "2026-12-20")
	require.NoError(t, err)
	assert.True(t, price.UnitPrice.Equal(dec("100")))
	assert.Equal(t, "tour_default", price.Source)
}

func TestResolveUnitPriceErrorsWithoutAnyPrice(t *testing.T) {
	db := testutil.NewTestDB(t)
	company := testutil.NewCompany(t, db)
	cari := testutil.NewCariAccount(t, db, company.ID, "Fiyatsız")

	tt := models.TourType{
		CompanyID: company.ID,
		Name:      "Tanımsız Tur",
		Currency:  models.CurrencyEUR,
	}
	require.NoError(t, db.Create(&tt).Error)

	_, err := ResolveUnitPrice(db, company.ID, cari.ID, tt.ID, "2026-05-01")
	assert.Error(t, err)
}
