package payroll

import (
	"fmt"
	"time"

	"acenta-backend/internal/audit"
	"acenta-backend/internal/auth"
	"acenta-backend/internal/ledger"
	"acenta-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Handler struct {
	db     *gorm.DB
	engine *ledger.Engine
	audit  *audit.Logger
}

func NewHandler(db *gorm.DB, engine *ledger.Engine, auditLog *audit.Logger) *Handler {
	return &Handler{db: db, engine: engine, audit: auditLog}
}

type staffRequest struct {
	FullName      string          `json:"full_name"`
	Position      string          `json:"position"`
	MonthlySalary decimal.Decimal `json:"monthly_salary"`
	Currency      string          `json:"currency"`
}

// POST /api/staff
//
// Personel oluşturulurken ödemelerinin işleneceği cari hesap da açılır.
func (h *Handler) CreateStaff() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := auth.CompanyID(c)
		if err != nil {
			return err
		}

		var req staffRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if req.FullName == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Personel adı zorunlu")
		}
		currency := models.Currency(req.Currency)
		if !currency.Valid() {
			currency = models.CurrencyTRY
		}

		var staff models.Staff
		err = h.db.Transaction(func(tx *gorm.DB) error {
			account := models.CariAccount{
				CompanyID:   companyID,
				Name:        "Personel: " + req.FullName,
				IsProtected: true,
				Notes:       "Personel maaş/avans carisi",
			}
			if err := tx.Create(&account).Error; err != nil {
				return err
			}

			staff = models.Staff{
				CompanyID:     companyID,
				CariAccountID: account.ID,
				FullName:      req.FullName,
				Position:      req.Position,
				MonthlySalary: req.MonthlySalary,
				Currency:      currency,
				IsActive:      true,
			}
			return tx.Create(&staff).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Personel kaydedilemedi")
		}

		return c.Status(fiber.StatusCreated).JSON(staff)
	}
}

// GET /api/staff
func (h *Handler) ListStaff() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := auth.CompanyID(c)
		if err != nil {
			return err
		}

		var staff []models.Staff
		if err := h.db.Where("company_id = ?", companyID).Order("full_name ASC").Find(&staff).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Personel listelenemedi")
		}
		return c.JSON(staff)
	}
}

type paymentRequest struct {
	StaffID     uint            `json:"staff_id"`
	PaymentType string          `json:"payment_type"` // salary / advance
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
}

// POST /api/payroll/payments
//
// Maaş/avans ödemesi personel carisine expense satırı olarak işlenir.
func (h *Handler) CreatePayment() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := auth.CompanyID(c)
		if err != nil {
			return err
		}

		var req paymentRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		paymentType := models.PayrollPaymentType(req.PaymentType)
		if paymentType != models.PayrollSalary && paymentType != models.PayrollAdvance {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz ödeme tipi (salary/advance)")
		}
		if !req.Amount.IsPositive() {
			return fiber.NewError(fiber.StatusBadRequest, "Tutar pozitif olmalı")
		}
		currency := models.Currency(req.Currency)
		if !currency.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz para birimi (EUR/USD/TRY)")
		}
		date := req.Date
		if date == "" {
			date = time.Now().Format("2006-01-02")
		} else if _, err := time.Parse("2006-01-02", date); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Tarih formatı geçersiz, 'YYYY-MM-DD' olmalı")
		}

		label := "Maaş"
		if paymentType == models.PayrollAdvance {
			label = "Avans"
		}

		var payment models.PayrollPayment
		err = h.db.Transaction(func(tx *gorm.DB) error {
			var staff models.Staff
			if err := tx.First(&staff, "id = ? AND company_id = ?", req.StaffID, companyID).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "Personel bulunamadı")
			}

			t := models.Transaction{
				CompanyID:       companyID,
				CariID:          staff.CariAccountID,
				TransactionType: models.TransactionExpense,
				Amount:          req.Amount,
				Currency:        currency,
				Description:     fmt.Sprintf("%s ödemesi - %s", label, staff.FullName),
				ReferenceType:   models.ReferencePayroll,
				Date:            date,
				CreatedBy:       auth.UserID(c),
			}
			if err := h.engine.Post(tx, &t); err != nil {
				return err
			}

			payment = models.PayrollPayment{
				CompanyID:     companyID,
				StaffID:       staff.ID,
				TransactionID: t.ID,
				PaymentType:   paymentType,
				Amount:        req.Amount,
				Currency:      currency,
				Date:          date,
				Description:   req.Description,
				CreatedBy:     auth.UserID(c),
			}
			if err := tx.Create(&payment).Error; err != nil {
				return err
			}

			// Transaction satırını belgeye bağla
			return tx.Model(&t).Update("reference_id", payment.ID).Error
		})
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				return fe
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}

		h.audit.Write(audit.LogOptions{
			CompanyID: companyID, UserID: auth.UserID(c),
			Action: "create", EntityType: "payroll_payment", EntityID: payment.ID,
			Description: fmt.Sprintf("%s ödemesi kaydedildi", label),
			IPAddress:   c.IP(),
		})

		return c.Status(fiber.StatusCreated).JSON(payment)
	}
}

// GET /api/payroll/payments?staff_id=
func (h *Handler) ListPayments() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := auth.CompanyID(c)
		if err != nil {
			return err
		}

		q := h.db.Where("company_id = ?", companyID)
		if staffID := c.Query("staff_id"); staffID != "" {
			q = q.Where("staff_id = ?", staffID)
		}

		var payments []models.PayrollPayment
		if err := q.Order("date DESC").Limit(500).Find(&payments).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ödemeler listelenemedi")
		}
		return c.JSON(payments)
	}
}
