package transaction

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
	"acenta-backend/internal/settlement"
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
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(auth.CtxPrincipalKey, auth.PrincipalUser)
		c.Locals(auth.CtxCompanyIDKey, companyID)
		c.Locals(auth.CtxUserIDKey, uint(1))
		return c.Next()
	})

	engine := ledger.NewEngine()
	h := NewHandler(db, engine, settlement.NewService(engine), audit.NewLogger(db))
	app.Post("/transactions", h.Create())
	app.Put("/transactions/:id", h.Update())
	app.Delete("/transactions/:id", h.Delete())
	app.Post("/cari-accounts/:id/recalculate", h.Recalculate())
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

func TestManualTransactionCreateUpdatesBalance(t *testing.T) {
	db := testutil.NewTestDB(t)
	company := testutil.NewCompany(t, db)
	cari := testutil.NewCariAccount(t, db, company.ID, "Manuel")
	app := newTestApp(db, company.ID)

	resp := doJSON(t, app, http.MethodPost, "/transactions", fiber.Map{
		"cari_id":          cari.ID,
		"transaction_type": "debit",
		"amount":           "250.75",
		"currency":         "TRY",
		"description":      "Elle giriş",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var account models.CariAccount
	require.NoError(t, db.First(&account, cari.ID).Error)
	assert.True(t, account.BalanceTRY.Equal(dec("250.75")))
}

// Kaynak belgeye bağlı satırlar doğrudan düzenlenemez ve silinemez.
func TestDocumentBackedRowsAreImmutable(t *testing.T) {
	db := testutil.NewTestDB(t)
	company := testutil.NewCompany(t, db)
	cari := testutil.NewCariAccount(t, db, company.ID, "Belgeli")
	app := newTestApp(db, company.ID)
	engine := ledger.NewEngine()

	refID := uint(42)
	tr := models.Transaction{
		CompanyID:       company.ID,
		CariID:          cari.ID,
		TransactionType: models.TransactionDebit,
		Amount:          dec("100"),
		Currency:        models.CurrencyEUR,
		ReferenceID:     &refID,
		ReferenceType:   models.ReferenceReservation,
		Date:            "2026-07-01",
	}
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return engine.Post(tx, &tr)
	}))

	resp := doJSON(t, app, http.MethodPut, fmt.Sprintf("/transactions/%d", tr.ID), fiber.Map{
		"transaction_type": "debit",
		"amount":           "999",
		"currency":         "EUR",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/transactions/%d", tr.ID), fiber.Map{})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	// Satır ve bakiye değişmemiş olmalı
	var account models.CariAccount
	require.NoError(t, db.First(&account, cari.ID).Error)
	assert.True(t, account.BalanceEUR.Equal(dec("100")))
}

func TestPaymentRequiresMethod(t *testing.T) {
	db := testutil.NewTestDB(t)
	company := testutil.NewCompany(t, db)
	cari := testutil.NewCariAccount(t, db, company.ID, "Yöntemsiz")
	app := newTestApp(db, company.ID)

	resp := doJSON(t, app, http.MethodPost, "/transactions", fiber.Map{
		"cari_id":          cari.ID,
		"transaction_type": "payment",
		"amount":           "100",
		"currency":         "EUR",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/transactions", fiber.Map{
		"cari_id":          cari.ID,
		"transaction_type": "payment",
		"amount":           "100",
		"currency":         "EUR",
		"payment_method":   "bitcoin",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWriteOffPaymentClampedByHandler(t *testing.T) {
	db := testutil.NewTestDB(t)
	company := testutil.NewCompany(t, db)
	cari := testutil.NewCariAccount(t, db, company.ID, "Affedilen")
	app := newTestApp(db, company.ID)

	// 30 EUR borç oluştur
	resp := doJSON(t, app, http.MethodPost, "/transactions", fiber.Map{
		"cari_id":          cari.ID,
		"transaction_type": "debit",
		"amount":           "30",
		"currency":         "EUR",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// 100 EUR write_off istense de bakiye sıfırın altına inmez
	resp = doJSON(t, app, http.MethodPost, "/transactions", fiber.Map{
		"cari_id":          cari.ID,
		"transaction_type": "payment",
		"amount":           "100",
		"currency":         "EUR",
		"payment_method":   "write_off",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var account models.CariAccount
	require.NoError(t, db.First(&account, cari.ID).Error)
	assert.True(t, account.BalanceEUR.IsZero(), "bakiye: %s", account.BalanceEUR)
}

func TestRecalculateRepairsDriftedBalance(t *testing.T) {
	db := testutil.NewTestDB(t)
	company := testutil.NewCompany(t, db)
	cari := testutil.NewCariAccount(t, db, company.ID, "Bozulan")
	app := newTestApp(db, company.ID)

	doJSON(t, app, http.MethodPost, "/transactions", fiber.Map{
		"cari_id":          cari.ID,
		"transaction_type": "debit",
		"amount":           "100",
		"currency":         "EUR",
	})

	// Bakiyeyi elle boz
	require.NoError(t, db.Model(&models.CariAccount{}).Where("id = ?", cari.ID).
		UpdateColumn("balance_eur", dec("999")).Error)

	resp := doJSON(t, app, http.MethodPost, fmt.Sprintf("/cari-accounts/%d/recalculate", cari.ID), fiber.Map{})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var account models.CariAccount
	require.NoError(t, db.First(&account, cari.ID).Error)
	assert.True(t, account.BalanceEUR.Equal(dec("100")))
}
