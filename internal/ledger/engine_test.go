package ledger

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

func TestDeltaSigns(t *testing.T) {
	cases := []struct {
		txType   models.TransactionType
		expected string
	}{
		{models.TransactionDebit, "100"},
		{models.TransactionRefund, "100"},
		{models.TransactionExpense, "100"},
		{models.TransactionDebt, "100"},
		{models.TransactionCredit, "-100"},
		{models.TransactionPayment, "-100"},
	}

	for _, tc := range cases {
		t.Run(string(tc.txType), func(t *testing.T) {
			delta, err := Delta(tc.txType, dec("100"))
			require.NoError(t, err)
			assert.True(t, delta.Equal(dec(tc.expected)),
				"beklenen %s, bulunan %s", tc.expected, delta)
		})
	}
}

func TestDeltaRejectsNegativeAmount(t *testing.T) {
	_, err := Delta(models.TransactionDebit, dec("-5"))
	assert.Error(t, err)
}

func TestDeltaRejectsUnknownType(t *testing.T) {
	_, err := Delta(models.TransactionType("bilinmeyen"), dec("10"))
	assert.Error(t, err)
}

func TestPostAppliesDeltaPerCurrency(t *testing.T) {
	db := testutil.NewTestDB(t)
	company := testutil.NewCompany(t, db)
	account := testutil.NewCariAccount(t, db, company.ID, "Acme Travel")
	engine := NewEngine()

	err := db.Transaction(func(tx *gorm.DB) error {
		return engine.Post(tx, &models.Transaction{
			CompanyID:       company.ID,
			CariID:          account.ID,
			TransactionType: models.TransactionDebit,
			Amount:          dec("200"),
			Currency:        models.CurrencyEUR,
			ReferenceType:   models.ReferenceManual,
			Date:            "2026-05-01",
		})
	})
	require.NoError(t, err)

	err = db.Transaction(func(tx *gorm.DB) error {
		return engine.Post(tx, &models.Transaction{
			CompanyID:       company.ID,
			CariID:          account.ID,
			TransactionType: models.TransactionPayment,
			Amount:          dec("30"),
			Currency:        models.CurrencyUSD,
			ReferenceType:   models.ReferenceManual,
			Date:            "2026-05-02",
		})
	})
	require.NoError(t, err)

	var fresh models.CariAccount
	require.NoError(t, db.First(&fresh, account.ID).Error)
	assert.True(t, fresh.BalanceEUR.Equal(dec("200")), "EUR bakiyesi: %s", fresh.BalanceEUR)
	assert.True(t, fresh.BalanceUSD.Equal(dec("-30")), "USD bakiyesi: %s", fresh.BalanceUSD)
	assert.True(t, fresh.BalanceTRY.IsZero())
}

// Düzeltme protokolü: A -> B -> A dizisi bakiyeyi ilk A işlenmişçesine
// bırakmalı, para birimi değişse bile.
func TestRevertReapplyAcrossCurrencies(t *testing.T) {
	db := testutil.NewTestDB(t)
	company := testutil.NewCompany(t, db)
	account := testutil.NewCariAccount(t, db, company.ID, "Beta Tur")
	engine := NewEngine()

	original := models.Transaction{
		CompanyID:       company.ID,
		CariID:          account.ID,
		TransactionType: models.TransactionDebit,
		Amount:          dec("100"),
		Currency:        models.CurrencyEUR,
		ReferenceType:   models.ReferenceManual,
		Date:            "2026-06-01",
	}
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return engine.Post(tx, &original)
	}))

	// A -> B: EUR satırını geri al, USD olarak yeniden uygula
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		if err := engine.Unpost(tx, &original); err != nil {
			return err
		}
		return engine.Post(tx, &models.Transaction{
			CompanyID:       company.ID,
			CariID:          account.ID,
			TransactionType: models.TransactionDebit,
			Amount:          dec("150"),
			Currency:        models.CurrencyUSD,
			ReferenceType:   models.ReferenceManual,
			Date:            "2026-06-01",
		})
	}))

	var mid models.CariAccount
	require.NoError(t, db.First(&mid, account.ID).Error)
	assert.True(t, mid.BalanceEUR.IsZero(), "EUR sıfırlanmalı: %s", mid.BalanceEUR)
	assert.True(t, mid.BalanceUSD.Equal(dec("150")))

	// B -> A: geri dön
	var current models.Transaction
	require.NoError(t, db.Where("cari_id = ?", account.ID).First(&current).Error)
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		if err := engine.Unpost(tx, &current); err != nil {
			return err
		}
		restored := original
		restored.ID = 0
		return engine.Post(tx, &restored)
	}))

	var final models.CariAccount
	require.NoError(t, db.First(&final, account.ID).Error)
	assert.True(t, final.BalanceEUR.Equal(dec("100")))
	assert.True(t, final.BalanceUSD.IsZero())
	assert.True(t, final.BalanceTRY.IsZero())
}

// Artımlı güncellemeler her zaman Recalculate ile aynı sonucu vermeli.
func TestIncrementalMatchesRecalculate(t *testing.T) {
	db := testutil.NewTestDB(t)
	company := testutil.NewCompany(t, db)
	account := testutil.NewCariAccount(t, db, company.ID, "Gamma Travel")
	engine := NewEngine()

	seq := []struct {
		txType   models.TransactionType
		amount   string
		currency models.Currency
	}{
		{models.TransactionDebit, "120.50", models.CurrencyEUR},
		{models.TransactionPayment, "40.25", models.CurrencyEUR},
		{models.TransactionDebit, "300", models.CurrencyUSD},
		{models.TransactionCredit, "75.10", models.CurrencyUSD},
		{models.TransactionDebt, "55", models.CurrencyTRY},
		{models.TransactionRefund, "10", models.CurrencyEUR},
		{models.TransactionExpense, "20.45", models.CurrencyTRY},
		{models.TransactionPayment, "100", models.CurrencyUSD},
	}
	for _, s := range seq {
		require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
			return engine.Post(tx, &models.Transaction{
				CompanyID:       company.ID,
				CariID:          account.ID,
				TransactionType: s.txType,
				Amount:          dec(s.amount),
				Currency:        s.currency,
				ReferenceType:   models.ReferenceManual,
				Date:            "2026-07-01",
			})
		}))
	}

	var incremental models.CariAccount
	require.NoError(t, db.First(&incremental, account.ID).Error)

	recalculated, err := engine.Recalculate(db, company.ID, account.ID)
	require.NoError(t, err)

	assert.True(t, incremental.BalanceEUR.Equal(recalculated.BalanceEUR),
		"EUR: artımlı %s, yeniden hesap %s", incremental.BalanceEUR, recalculated.BalanceEUR)
	assert.True(t, incremental.BalanceUSD.Equal(recalculated.BalanceUSD),
		"USD: artımlı %s, yeniden hesap %s", incremental.BalanceUSD, recalculated.BalanceUSD)
	assert.True(t, incremental.BalanceTRY.Equal(recalculated.BalanceTRY),
		"TRY: artımlı %s, yeniden hesap %s", incremental.BalanceTRY, recalculated.BalanceTRY)

	// Beklenen değerler: EUR 120.50-40.25+10 = 90.25, USD 300-75.10-100 = 124.90, TRY 55+20.45 = 75.45
	assert.True(t, recalculated.BalanceEUR.Equal(dec("90.25")))
	assert.True(t, recalculated.BalanceUSD.Equal(dec("124.90")))
	assert.True(t, recalculated.BalanceTRY.Equal(dec("75.45")))
}

func TestUnpostDeletesRow(t *testing.T) {
	db := testutil.NewTestDB(t)
	company := testutil.NewCompany(t, db)
	account := testutil.NewCariAccount(t, db, company.ID, "Delta Tur")
	engine := NewEngine()

	tr := models.Transaction{
		CompanyID:       company.ID,
		CariID:          account.ID,
		TransactionType: models.TransactionDebit,
		Amount:          dec("80"),
		Currency:        models.CurrencyEUR,
		ReferenceType:   models.ReferenceManual,
		Date:            "2026-05-10",
	}
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error { return engine.Post(tx, &tr) }))
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error { return engine.Unpost(tx, &tr) }))

	var count int64
	require.NoError(t, db.Model(&models.Transaction{}).Where("cari_id = ?", account.ID).Count(&count).Error)
	assert.Zero(t, count)

	var fresh models.CariAccount
	require.NoError(t, db.First(&fresh, account.ID).Error)
	assert.True(t, fresh.BalanceEUR.IsZero())
}
