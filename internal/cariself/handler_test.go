package cariself

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
	"acenta-backend/internal/notification"
	"acenta-backend/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testSession struct {
	principal     string
	cariID        uint
	cariAccountID uint
}

func newTestApp(db *gorm.DB, companyID uint, session *testSession) *fiber.App {
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
		c.Locals(auth.CtxPrincipalKey, session.principal)
		c.Locals(auth.CtxCompanyIDKey, companyID)
		c.Locals(auth.CtxUserIDKey, uint(1))
		c.Locals(auth.CtxCariIDKey, session.cariID)
		c.Locals(auth.CtxCariAccountIDKey, session.cariAccountID)
		return c.Next()
	})

	h := NewHandler(db, ledger.NewEngine(), notification.NewService(db), audit.NewLogger(db))
	app.Post("/cari-panel/reservations", h.Submit())
	app.Put("/cari-panel/reservations/:id", h.EditSubmission())
	app.Post("/reservations/:id/approve", h.Approve())
	app.Post("/reservations/:id/reject", h.Reject())
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

func setupCariSession(t *testing.T, db *gorm.DB, companyID uint) (*testSession, *models.CariAccount, uint) {
	t.Helper()

	account := testutil.NewCariAccount(t, db, companyID, "Panel Acentesi")
	code := "CPANEL01"
	account.CariCode = &code
	require.NoError(t, db.Save(account).Error)

	cari := models.Cari{
		CompanyID:     companyID,
		CariAccountID: account.ID,
		CariCode:      code,
		Name:          account.Name,
		PasswordHash:  "x",
		IsActive:      true,
	}
	require.NoError(t, db.Create(&cari).Error)

	tourTypeID := seedPricing(t, db, companyID, account.ID)

	return &testSession{
		principal:     auth.PrincipalCari,
		cariID:        cari.ID,
		cariAccountID: account.ID,
	}, account, tourTypeID
}

func TestSubmitRejectsClientPrice(t *testing.T) {
	db := testutil.NewTestDB(t)
	company := testutil.NewCompany(t, db)
	session, _, tourTypeID := setupCariSession(t, db, company.ID)
	app := newTestApp(db, company.ID, session)

	resp := doJSON(t, app, http.MethodPost, "/cari-panel/reservations", fiber.Map{
		"date":          "2026-07-15",
		"tour_type_id":  tourTypeID,
		"customer_name": "Misafir",
		"atv_count":     2,
		"price":         "1", // istemci fiyatı kabul edilmez
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// Fiyat sunucuda çözülür: cariye özel 50 x 2 ATV = 100, istemcinin
// önerisi ne olursa olsun.
func TestSubmitUsesServerSidePricing(t *testing.T) {
	db := testutil.NewTestDB(t)
	company := testutil.NewCompany(t, db)
	session, account, tourTypeID := setupCariSession(t, db, company.ID)
	app := newTestApp(db, company.ID, session)

	resp := doJSON(t, app, http.MethodPost, "/cari-panel/reservations", fiber.Map{
		"date":          "2026-07-15",
		"tour_type_id":  tourTypeID,
		"customer_name": "Misafir",
		"atv_count":     2,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var res models.Reservation
	require.NoError(t, db.First(&res, "cari_id = ?", account.ID).Error)
	assert.True(t, res.Price.Equal(dec("100")), "fiyat: %s", res.Price)
	assert.Equal(t, models.CurrencyEUR, res.Currency)
	assert.Equal(t, models.ReservationPendingApproval, res.Status)
	assert.NotEmpty(t, res.VoucherCode)
	require.NotNil(t, res.SubmittedByCariID)

	// Başvuru aşamasında defter satırı yok, bakiye sıfır
	var fresh models.CariAccount
	require.NoError(t, db.First(&fresh, account.ID).Error)
	assert.True(t, fresh.BalanceEUR.IsZero())
}

func TestApproveRequiresPickupTime(t *testing.T) {
	db := testutil.NewTestDB(t)
	company := testutil.NewCompany(t, db)
	session, account, tourTypeID := setupCariSession(t, db, company.ID)
	app := newTestApp(db, company.ID, session)

	doJSON(t, app, http.MethodPost, "/cari-panel/reservations", fiber.Map{
		"date":          "2026-07-15",
		"tour_type_id":  tourTypeID,
		"customer_name": "Misafir",
		"atv_count":     1,
	})
	var res models.Reservation
	require.NoError(t, db.First(&res, "cari_id = ?", account.ID).Error)

	resp := doJSON(t, app, http.MethodPost, fmt.Sprintf("/reservations/%d/approve", res.ID), fiber.Map{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, fmt.Sprintf("/reservations/%d/approve", res.ID), fiber.Map{
		"pickup_time": "25:99",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// Onay anında başvurudaki dondurulmuş fiyat işlenir; bu arada sezon
// fiyatı değişse bile.
func TestApprovePostsFrozenPrice(t *testing.T) {
	db := testutil.NewTestDB(t)
	company := testutil.NewCompany(t, db)
	session, account, tourTypeID := setupCariSession(t, db, company.ID)
	app := newTestApp(db, company.ID, session)

	doJSON(t, app, http.MethodPost, "/cari-panel/reservations", fiber.Map{
		"date":          "2026-07-15",
		"tour_type_id":  tourTypeID,
		"customer_name": "Misafir",
		"atv_count":     2,
	})
	var res models.Reservation
	require.NoError(t, db.First(&res, "cari_id = ?", account.ID).Error)
	require.True(t, res.Price.Equal(dec("100")))

	// Onaydan önce sezon fiyatları uçsun: dondurulmuş fiyat etkilenmemeli
	require.NoError(t, db.Where("company_id = ?", company.ID).Delete(&models.SeasonalPrice{}).Error)

	resp := doJSON(t, app, http.MethodPost, fmt.Sprintf("/reservations/%d/approve", res.ID), fiber.Map{
		"pickup_time": "09:30",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var fresh models.Reservation
	require.NoError(t, db.First(&fresh, res.ID).Error)
	assert.Equal(t, models.ReservationApproved, fresh.Status)
	assert.Equal(t, "09:30", fresh.PickupTime)

	var tr models.Transaction
	require.NoError(t, db.First(&tr, "cari_id = ? AND reference_type = ?",
		account.ID, models.ReferenceReservation).Error)
	assert.True(t, tr.Amount.Equal(dec("100")), "işlenen tutar: %s", tr.Amount)

	var balance models.CariAccount
	require.NoError(t, db.First(&balance, account.ID).Error)
	assert.True(t, balance.BalanceEUR.Equal(dec("100")))
}

func TestRejectAppendsReasonToNotes(t *testing.T) {
	db := testutil.NewTestDB(t)
	company := testutil.NewCompany(t, db)
	session, account, tourTypeID := setupCariSession(t, db, company.ID)
	app := newTestApp(db, company.ID, session)

	doJSON(t, app, http.MethodPost, "/cari-panel/reservations", fiber.Map{
		"date":          "2026-07-15",
		"tour_type_id":  tourTypeID,
		"customer_name": "Misafir",
		"atv_count":     1,
		"notes":         "orijinal not",
	})
	var res models.Reservation
	require.NoError(t, db.First(&res, "cari_id = ?", account.ID).Error)

	resp := doJSON(t, app, http.MethodPost, fmt.Sprintf("/reservations/%d/reject", res.ID), fiber.Map{
		"reason": "Kontenjan dolu",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var fresh models.Reservation
	require.NoError(t, db.First(&fresh, res.ID).Error)
	assert.Equal(t, models.ReservationRejected, fresh.Status)
	assert.Contains(t, fresh.Notes, "orijinal not")
	assert.Contains(t, fresh.Notes, "Kontenjan dolu")

	// Reddedilen başvuru deftere hiç dokunmaz
	var txCount int64
	require.NoError(t, db.Model(&models.Transaction{}).Where("cari_id = ?", account.ID).Count(&txCount).Error)
	assert.Zero(t, txCount)
}

func TestEditSubmissionRecalculatesPrice(t *testing.T) {
	db := testutil.NewTestDB(t)
	company := testutil.NewCompany(t, db)
	session, account, tourTypeID := setupCariSession(t, db, company.ID)
	app := newTestApp(db, company.ID, session)

	doJSON(t, app, http.MethodPost, "/cari-panel/reservations", fiber.Map{
		"date":          "2026-07-15",
		"tour_type_id":  tourTypeID,
		"customer_name": "Misafir",
		"atv_count":     2,
	})
	var res models.Reservation
	require.NoError(t, db.First(&res, "cari_id = ?", account.ID).Error)

	resp := doJSON(t, app, http.MethodPut, fmt.Sprintf("/cari-panel/reservations/%d", res.ID), fiber.Map{
		"date":          "2026-07-16",
		"tour_type_id":  tourTypeID,
		"customer_name": "Misafir",
		"atv_count":     3,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var fresh models.Reservation
	require.NoError(t, db.First(&fresh, res.ID).Error)
	assert.True(t, fresh.Price.Equal(dec("150")), "fiyat: %s", fresh.Price)
	assert.Equal(t, "2026-07-16", fresh.Date)
}
