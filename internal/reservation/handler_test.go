package reservation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"acenta-backend/internal/audit"
	"acenta-backend/internal/auth"
	"acenta-backend/internal/ledger"
	"acenta-backend/internal/models"
	"acenta-backend/internal/testutil"

	"github.com/gofiber/fiber/v2"
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

func newTestApp(db *gorm.DB, companyID uint) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	// Test oturumu: JWT middleware'in yazdığı locals'ı doğrudan koy
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(auth.CtxPrincipalKey, auth.PrincipalUser)
		c.Locals(auth.CtxCompanyIDKey, companyID)
		c.Locals(auth.CtxUserIDKey, uint(1))
		return c.Next()
	})

	h := NewHandler(db, ledger.NewEngine(), audit.NewLogger(db))
	app.Post("/reservations", h.Create())
	app.Put("/reservations/:id", h.Update())
	app.Post("/reservations/:id/cancel", h.Cancel())
	app.Delete("/reservations/:id", h.Delete())
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func balance(t *testing.T, db *gorm.DB, cariID uint) *models.CariAccount {
	t.Helper()
	var account models.CariAccount
	require.NoError(t, db.First(&account, cariID).Error)
	return &account
}

func TestCreateReservationPostsDebit(t *testing.T) {
	db := testutil.NewTestDB(t)
	company := testutil.NewCompany(t, db)
	cari := testutil.NewCariAccount(t, db, company.ID, "Acente A")
	app := newTestApp(db, company.ID)

	resp := doJSON(t, app, http.MethodPost, "/reservations", fiber.Map{
		"cari_id":       cari.ID,
		"date":          "2026-07-10",
		"customer_name": "John Smith",
		"atv_count":     2,
		"price":         "200",
		"currency":      "EUR",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	account := balance(t, db, cari.ID)
	assert.True(t, account.BalanceEUR.Equal(dec("200")), "bakiye: %s", account.BalanceEUR)

	var tr models.Transaction
	require.NoError(t, db.First(&tr, "cari_id = ?", cari.ID).Error)
	assert.Equal(t, models.TransactionDebit, tr.TransactionType)
	assert.Equal(t, models.ReferenceReservation, tr.ReferenceType)

	var res models.Reservation
	require.NoError(t, db.First(&res, "cari_id = ?", cari.ID).Error)
	assert.NotEmpty(t, res.VoucherCode)
	assert.Equal(t, models.ReservationConfirmed, res.Status)
}

// Senaryo: 200 EUR rezervasyon -> fiyat 150'ye düşer -> 50 EUR no-show ile
// iptal. Ara adımlarda ve sonda bakiye hep geçmişin toplamına eşit olmalı.
func TestReservationLifecycleKeepsBalanceConsistent(t *testing.T) {
	db := testutil.NewTestDB(t)
	company := testutil.NewCompany(t, db)
	cari := testutil.NewCariAccount(t, db, company.ID, "Acente B")
	app := newTestApp(db, company.ID)
	engine := ledger.NewEngine()

	resp := doJSON(t, app, http.MethodPost, "/reservations", fiber.Map{
		"cari_id":       cari.ID,
		"date":          "2026-07-10",
		"customer_name": "Jane Doe",
		"price":         "200",
		"currency":      "EUR",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var res models.Reservation
	require.NoError(t, db.First(&res, "cari_id = ?", cari.ID).Error)

	// Fiyat düzeltmesi 200 -> 150
	resp = doJSON(t, app, http.MethodPut, fmt.Sprintf("/reservations/%d", res.ID), fiber.Map{
		"cari_id":       cari.ID,
		"date":          res.Date,
		"customer_name": res.CustomerName,
		"price":         "150",
		"currency":      "EUR",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, balance(t, db, cari.ID).BalanceEUR.Equal(dec("150")))

	// 50 EUR no-show ile iptal
	resp = doJSON(t, app, http.MethodPost, fmt.Sprintf("/reservations/%d/cancel", res.ID), fiber.Map{
		"reason":           "Müşteri gelmedi",
		"no_show_amount":   "50",
		"no_show_currency": "EUR",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	account := balance(t, db, cari.ID)
	assert.True(t, account.BalanceEUR.Equal(dec("50")), "bakiye: %s", account.BalanceEUR)

	// Artımlı sonuç recalculate ile aynı olmalı
	recalc, err := engine.Recalculate(db, company.ID, cari.ID)
	require.NoError(t, err)
	assert.True(t, recalc.BalanceEUR.Equal(dec("50")))

	var fresh models.Reservation
	require.NoError(t, db.First(&fresh, res.ID).Error)
	assert.Equal(t, models.ReservationCancelled, fresh.Status)
	assert.True(t, fresh.NoShowApplied)
}

// İki fazlı iptal: orijinal debit kendi biriminde düşer, ceza başka
// birimde ayrı bir borç olarak işlenir. Tutarlar asla mahsup edilmez.
func TestCancelWithNoShowInDifferentCurrency(t *testing.T) {
	db := testutil.NewTestDB(t)
	company := testutil.NewCompany(t, db)
	cari := testutil.NewCariAccount(t, db, company.ID, "Acente C")
	app := newTestApp(db, company.ID)

	resp := doJSON(t, app, http.MethodPost, "/reservations", fiber.Map{
		"cari_id":       cari.ID,
		"date":          "2026-07-20",
		"customer_name": "Max Mustermann",
		"price":         "100",
		"currency":      "EUR",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var res models.Reservation
	require.NoError(t, db.First(&res, "cari_id = ?", cari.ID).Error)

	resp = doJSON(t, app, http.MethodPost, fmt.Sprintf("/reservations/%d/cancel", res.ID), fiber.Map{
		"reason":           "No-show",
		"no_show_amount":   "30",
		"no_show_currency": "USD",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	account := balance(t, db, cari.ID)
	assert.True(t, account.BalanceEUR.IsZero(), "EUR: %s", account.BalanceEUR)
	assert.True(t, account.BalanceUSD.Equal(dec("30")), "USD: %s", account.BalanceUSD)

	var penalty models.Transaction
	require.NoError(t, db.First(&penalty, "cari_id = ? AND reference_type = ?",
		cari.ID, models.ReferenceNoShowPenalty).Error)
	assert.Equal(t, models.TransactionDebt, penalty.TransactionType)
	assert.Equal(t, models.CurrencyUSD, penalty.Currency)

	// Orijinal debit silinmiş olmalı
	var debitCount int64
	require.NoError(t, db.Model(&models.Transaction{}).
		Where("cari_id = ? AND reference_type = ?", cari.ID, models.ReferenceReservation).
		Count(&debitCount).Error)
	assert.Zero(t, debitCount)
}

func TestCancelTwiceRejected(t *testing.T) {
	db := testutil.NewTestDB(t)
	company := testutil.NewCompany(t, db)
	cari := testutil.NewCariAccount(t, db, company.ID, "Acente D")
	app := newTestApp(db, company.ID)

	doJSON(t, app, http.MethodPost, "/reservations", fiber.Map{
		"cari_id":       cari.ID,
		"date":          "2026-07-21",
		"customer_name": "Tekrar İptal",
		"price":         "90",
		"currency":      "TRY",
	})
	var res models.Reservation
	require.NoError(t, db.First(&res, "cari_id = ?", cari.ID).Error)

	resp := doJSON(t, app, http.MethodPost, fmt.Sprintf("/reservations/%d/cancel", res.ID), fiber.Map{"reason": "x"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, fmt.Sprintf("/reservations/%d/cancel", res.ID), fiber.Map{"reason": "y"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// İptal no-show'suz: bakiye sıfıra dönmüş olmalı
	assert.True(t, balance(t, db, cari.ID).BalanceTRY.IsZero())
}

func TestDeleteRemovesAllDocumentRows(t *testing.T) {
	db := testutil.NewTestDB(t)
	company := testutil.NewCompany(t, db)
	cari := testutil.NewCariAccount(t, db, company.ID, "Acente E")
	app := newTestApp(db, company.ID)

	doJSON(t, app, http.MethodPost, "/reservations", fiber.Map{
		"cari_id":       cari.ID,
		"date":          "2026-08-01",
		"customer_name": "Silinecek",
		"price":         "120",
		"currency":      "EUR",
	})
	var res models.Reservation
	require.NoError(t, db.First(&res, "cari_id = ?", cari.ID).Error)

	doJSON(t, app, http.MethodPost, fmt.Sprintf("/reservations/%d/cancel", res.ID), fiber.Map{
		"reason":           "no-show",
		"no_show_amount":   "40",
		"no_show_currency": "EUR",
	})

	resp := doJSON(t, app, http.MethodDelete, fmt.Sprintf("/reservations/%d", res.ID), fiber.Map{})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var txCount int64
	require.NoError(t, db.Model(&models.Transaction{}).Where("cari_id = ?", cari.ID).Count(&txCount).Error)
	assert.Zero(t, txCount)
	assert.True(t, balance(t, db, cari.ID).BalanceEUR.IsZero())
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	db := testutil.NewTestDB(t)
	company := testutil.NewCompany(t, db)
	cari := testutil.NewCariAccount(t, db, company.ID, "Acente F")
	app := newTestApp(db, company.ID)

	cases := []fiber.Map{
		{"cari_id": cari.ID, "date": "10.07.2026", "customer_name": "X", "price": "10", "currency": "EUR"},
		{"cari_id": cari.ID, "date": "2026-07-10", "customer_name": "", "price": "10", "currency": "EUR"},
		{"cari_id": cari.ID, "date": "2026-07-10", "customer_name": "X", "price": "0", "currency": "EUR"},
		{"cari_id": cari.ID, "date": "2026-07-10", "customer_name": "X", "price": "10", "currency": "GBP"},
		{"cari_id": 0, "date": "2026-07-10", "customer_name": "X", "price": "10", "currency": "EUR"},
	}
	for i, body := range cases {
		resp := doJSON(t, app, http.MethodPost, "/reservations", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "vaka %d", i)
	}
}
