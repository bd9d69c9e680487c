package settlement

import (
	"testing"
	"time"

	"acenta-backend/internal/ledger"
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

func postPayment(t *testing.T, db *gorm.DB, svc *Service, engine *ledger.Engine,
	companyID, cariID uint, amount string, currency models.Currency, p Params) (*models.Transaction, *PoolEffect) {
	t.Helper()

	tr := &models.Transaction{
		CompanyID:       companyID,
		CariID:          cariID,
		TransactionType: models.TransactionPayment,
		Amount:          dec(amount),
		Currency:        currency,
		ReferenceType:   models.ReferenceManual,
		Date:            "2026-08-10",
	}
	var effect *PoolEffect
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := engine.Post(tx, tr); err != nil {
			return err
		}
		var err error
		effect, err = svc.Apply(tx, tr, p)
		return err
	})
	require.NoError(t, err)
	return tr, effect
}

func TestParseMethodRejectsUnknown(t *testing.T) {
	_, err := ParseMethod("bitcoin")
	assert.Error(t, err)

	for _, m := range []string{"cash", "bank_transfer", "credit_card", "check_promissory", "transfer_to_cari", "write_off"} {
		_, err := ParseMethod(m)
		assert.NoError(t, err, m)
	}
}

func TestCashPaymentCreditsPoolImmediately(t *testing.T) {
	db := testutil.NewTestDB(t)
	company := testutil.NewCompany(t, db)
	account := testutil.NewCariAccount(t, db, company.ID, "Nakitçi")
	engine := ledger.NewEngine()
	svc := NewService(engine)

	tr, effect := postPayment(t, db, svc, engine, company.ID, account.ID, "100", models.CurrencyEUR, Params{Method: MethodCash})

	require.NotNil(t, effect.CashAccountID)
	assert.True(t, effect.Credited.Equal(dec("100")))
	assert.True(t, tr.IsSettled)

	var pool models.CashAccount
	require.NoError(t, db.First(&pool, *effect.CashAccountID).Error)
	assert.Equal(t, models.CashAccountCash, pool.AccountType)
	assert.True(t, pool.CurrentBalance.Equal(dec("100")))

	// Cari bakiyesi tahsilatla düşer
	var fresh models.CariAccount
	require.NoError(t, db.First(&fresh, account.ID).Error)
	assert.True(t, fresh.BalanceEUR.Equal(dec("-100")))
}

func TestCreditCardDefersUntilValorDate(t *testing.T) {
	db := testutil.NewTestDB(t)
	company := testutil.NewCompany(t, db)
	account := testutil.NewCariAccount(t, db, company.ID, "Kartlı")
	engine := ledger.NewEngine()
	svc := NewService(engine)

	bank := models.BankAccount{
		CompanyID:      company.ID,
		Name:           "Test Bankası",
		Currency:       models.CurrencyEUR,
		CommissionRate: dec("10"),
		ValorDays:      2,
		IsActive:       true,
	}
	require.NoError(t, db.Create(&bank).Error)

	tr, effect := postPayment(t, db, svc, engine, company.ID, account.ID, "100", models.CurrencyEUR,
		Params{Method: MethodCreditCard, BankAccountID: &bank.ID})

	assert.True(t, effect.Deferred)
	assert.True(t, effect.Commission.Equal(dec("10")), "komisyon: %s", effect.Commission)
	assert.True(t, effect.NetAmount.Equal(dec("90")))
	require.NotNil(t, effect.ValorDate)
	assert.Equal(t, "2026-08-12", effect.ValorDate.Format("2006-01-02"))
	assert.False(t, tr.IsSettled)

	// Valör dolmadan süpürme hiçbir şey yapmamalı
	n, err := svc.SettleDuePayments(db, mustDate("2026-08-11"))
	require.NoError(t, err)
	assert.Zero(t, n)

	// Valör günü: net tutar havuza geçer
	n, err = svc.SettleDuePayments(db, mustDate("2026-08-12"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var settled models.Transaction
	require.NoError(t, db.First(&settled, tr.ID).Error)
	assert.True(t, settled.IsSettled)
	require.NotNil(t, settled.CashAccountID)

	var pool models.CashAccount
	require.NoError(t, db.First(&pool, *settled.CashAccountID).Error)
	assert.True(t, pool.CurrentBalance.Equal(dec("90")), "havuz: %s", pool.CurrentBalance)

	var record models.PaymentSettlement
	require.NoError(t, db.First(&record, "transaction_id = ?", tr.ID).Error)
	assert.True(t, record.Amount.Equal(dec("90")))
}

// Süpürme idempotenttir: ikinci çalıştırma kasayı tekrar arttırmaz.
func TestSweepDoesNotDoubleCredit(t *testing.T) {
	db := testutil.NewTestDB(t)
	company := testutil.NewCompany(t, db)
	account := testutil.NewCariAccount(t, db, company.ID, "Tek Geçiş")
	engine := ledger.NewEngine()
	svc := NewService(engine)

	bank := models.BankAccount{
		CompanyID: company.ID, Name: "Banka", Currency: models.CurrencyEUR,
		CommissionRate: dec("0"), ValorDays: 1, IsActive: true,
	}
	require.NoError(t, db.Create(&bank).Error)

	tr, _ := postPayment(t, db, svc, engine, company.ID, account.ID, "50", models.CurrencyEUR,
		Params{Method: MethodCreditCard, BankAccountID: &bank.ID})

	later := mustDate("2026-09-01")
	n, err := svc.SettleDuePayments(db, later)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	n, err = svc.SettleDuePayments(db, later)
	require.NoError(t, err)
	assert.Zero(t, n, "ikinci süpürme kayıt işlememeli")

	var settled models.Transaction
	require.NoError(t, db.First(&settled, tr.ID).Error)
	var pool models.CashAccount
	require.NoError(t, db.First(&pool, *settled.CashAccountID).Error)
	assert.True(t, pool.CurrentBalance.Equal(dec("50")), "havuz çift kredilenmiş: %s", pool.CurrentBalance)
}

func TestCreditCardWithoutValorOrCommissionSettlesImmediately(t *testing.T) {
	db := testutil.NewTestDB(t)
	company := testutil.NewCompany(t, db)
	account := testutil.NewCariAccount(t, db, company.ID, "Anında")
	engine := ledger.NewEngine()
	svc := NewService(engine)

	bank := models.BankAccount{
		CompanyID: company.ID, Name: "Komisyonsuz", Currency: models.CurrencyEUR,
		CommissionRate: dec("0"), ValorDays: 0, IsActive: true,
	}
	require.NoError(t, db.Create(&bank).Error)

	tr, effect := postPayment(t, db, svc, engine, company.ID, account.ID, "75", models.CurrencyEUR,
		Params{Method: MethodCreditCard, BankAccountID: &bank.ID})

	assert.False(t, effect.Deferred)
	assert.True(t, tr.IsSettled)
	assert.True(t, effect.Credited.Equal(dec("75")))
}

func TestCommissionOnlyGetsOneDayValor(t *testing.T) {
	db := testutil.NewTestDB(t)
	company := testutil.NewCompany(t, db)
	account := testutil.NewCariAccount(t, db, company.ID, "Yarın")
	engine := ledger.NewEngine()
	svc := NewService(engine)

	bank := models.BankAccount{
		CompanyID: company.ID, Name: "Sadece Komisyon", Currency: models.CurrencyEUR,
		CommissionRate: dec("5"), ValorDays: 0, IsActive: true,
	}
	require.NoError(t, db.Create(&bank).Error)

	_, effect := postPayment(t, db, svc, engine, company.ID, account.ID, "100", models.CurrencyEUR,
		Params{Method: MethodCreditCard, BankAccountID: &bank.ID})

	assert.True(t, effect.Deferred)
	require.NotNil(t, effect.ValorDate)
	assert.Equal(t, "2026-08-11", effect.ValorDate.Format("2006-01-02"))
}

func TestCheckPromissoryRequiresDueDate(t *testing.T) {
	db := testutil.NewTestDB(t)
	company := testutil.NewCompany(t, db)
	account := testutil.NewCariAccount(t, db, company.ID, "Çekçi")
	engine := ledger.NewEngine()
	svc := NewService(engine)

	tr := &models.Transaction{
		CompanyID: company.ID, CariID: account.ID,
		TransactionType: models.TransactionPayment,
		Amount:          dec("100"), Currency: models.CurrencyEUR,
		ReferenceType: models.ReferenceManual, Date: "2026-08-10",
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := engine.Post(tx, tr); err != nil {
			return err
		}
		_, err := svc.Apply(tx, tr, Params{Method: MethodCheckPromissory})
		return err
	})
	assert.Error(t, err)
}

func TestCheckCollection(t *testing.T) {
	db := testutil.NewTestDB(t)
	company := testutil.NewCompany(t, db)
	account := testutil.NewCariAccount(t, db, company.ID, "Senetli")
	engine := ledger.NewEngine()
	svc := NewService(engine)

	_, effect := postPayment(t, db, svc, engine, company.ID, account.ID, "250", models.CurrencyTRY,
		Params{Method: MethodCheckPromissory, DueDate: "2026-10-01", CheckNumber: "CHK-7"})
	require.NotNil(t, effect.CheckID)

	check, err := svc.CollectCheck(db, company.ID, *effect.CheckID, nil)
	require.NoError(t, err)
	assert.True(t, check.IsCollected)
	require.NotNil(t, check.CashAccountID)

	var pool models.CashAccount
	require.NoError(t, db.First(&pool, *check.CashAccountID).Error)
	assert.True(t, pool.CurrentBalance.Equal(dec("250")))

	// Tekrar tahsil edilemez
	_, err = svc.CollectCheck(db, company.ID, *effect.CheckID, nil)
	assert.Error(t, err)
}

func TestTransferToCariMirrorsOnTarget(t *testing.T) {
	db := testutil.NewTestDB(t)
	company := testutil.NewCompany(t, db)
	source := testutil.NewCariAccount(t, db, company.ID, "Kaynak")
	target := testutil.NewCariAccount(t, db, company.ID, "Hedef")
	engine := ledger.NewEngine()
	svc := NewService(engine)

	postPayment(t, db, svc, engine, company.ID, source.ID, "100", models.CurrencyEUR,
		Params{Method: MethodTransferToCari, TargetCariID: &target.ID})

	var mirror models.Transaction
	require.NoError(t, db.First(&mirror, "cari_id = ? AND reference_type = ?",
		target.ID, models.ReferenceCariTransfer).Error)
	assert.Equal(t, models.TransactionCredit, mirror.TransactionType)

	// Her iki cari de recalculate ile tutarlı kalmalı
	srcRecalc, err := engine.Recalculate(db, company.ID, source.ID)
	require.NoError(t, err)
	var srcLive models.CariAccount
	require.NoError(t, db.First(&srcLive, source.ID).Error)
	assert.True(t, srcLive.BalanceEUR.Equal(srcRecalc.BalanceEUR))

	tgtRecalc, err := engine.Recalculate(db, company.ID, target.ID)
	require.NoError(t, err)
	var tgtLive models.CariAccount
	require.NoError(t, db.First(&tgtLive, target.ID).Error)
	assert.True(t, tgtLive.BalanceEUR.Equal(tgtRecalc.BalanceEUR))
}

func TestWriteOffClampsAtZero(t *testing.T) {
	db := testutil.NewTestDB(t)
	company := testutil.NewCompany(t, db)
	account := testutil.NewCariAccount(t, db, company.ID, "Silinen")
	engine := ledger.NewEngine()
	svc := NewService(engine)

	// 30 EUR borç
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return engine.Post(tx, &models.Transaction{
			CompanyID: company.ID, CariID: account.ID,
			TransactionType: models.TransactionDebit,
			Amount:          dec("30"), Currency: models.CurrencyEUR,
			ReferenceType: models.ReferenceManual, Date: "2026-08-01",
		})
	}))

	// 100 istense de 30'a kırpılır
	clamped, err := svc.ClampWriteOff(db, company.ID, account.ID, models.CurrencyEUR, dec("100"))
	require.NoError(t, err)
	assert.True(t, clamped.Equal(dec("30")), "kırpılan: %s", clamped)

	// Sıfır (veya eksi) bakiyede sıfır döner
	clamped, err = svc.ClampWriteOff(db, company.ID, account.ID, models.CurrencyUSD, dec("10"))
	require.NoError(t, err)
	assert.True(t, clamped.IsZero())
}

func mustDate(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}
