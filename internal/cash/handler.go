package cash

import (
	"acenta-backend/internal/auth"
	"acenta-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Handler struct {
	db *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// GET /api/cash-accounts
func (h *Handler) List() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := auth.CompanyID(c)
		if err != nil {
			return err
		}

		q := h.db.Where("company_id = ?", companyID)
		if t := c.Query("type"); t != "" {
			q = q.Where("account_type = ?", t)
		}

		var accounts []models.CashAccount
		if err := q.Order("account_type ASC, currency ASC").Find(&accounts).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kasa hesapları listelenemedi")
		}
		return c.JSON(accounts)
	}
}

type cashAccountRequest struct {
	AccountType   string `json:"account_type"`
	Name          string `json:"name"`
	Currency      string `json:"currency"`
	BankAccountID *uint  `json:"bank_account_id"`
}

// POST /api/cash-accounts
func (h *Handler) Create() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := auth.CompanyID(c)
		if err != nil {
			return err
		}

		var req cashAccountRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		accountType := models.CashAccountType(req.AccountType)
		if !accountType.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz kasa tipi (cash/bank_account/credit_card)")
		}
		currency := models.Currency(req.Currency)
		if !currency.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz para birimi (EUR/USD/TRY)")
		}
		if req.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Kasa adı zorunlu")
		}

		account := models.CashAccount{
			CompanyID:     companyID,
			AccountType:   accountType,
			Name:          req.Name,
			Currency:      currency,
			BankAccountID: req.BankAccountID,
			IsActive:      true,
		}
		if err := h.db.Create(&account).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kasa hesabı kaydedilemedi")
		}
		return c.Status(fiber.StatusCreated).JSON(account)
	}
}

// DELETE /api/cash-accounts/:id
func (h *Handler) Delete() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := auth.CompanyID(c)
		if err != nil {
			return err
		}

		var account models.CashAccount
		if err := h.db.First(&account, "id = ? AND company_id = ?", c.Params("id"), companyID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Kasa hesabı bulunamadı")
		}
		if !account.CurrentBalance.IsZero() {
			return fiber.NewError(fiber.StatusBadRequest, "Bakiyesi sıfır olmayan kasa silinemez")
		}

		if err := h.db.Delete(&account).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kasa hesabı silinemedi")
		}
		return c.JSON(fiber.Map{"message": "Kasa hesabı silindi"})
	}
}

type bankAccountRequest struct {
	Name           string          `json:"name"`
	IBAN           string          `json:"iban"`
	Currency       string          `json:"currency"`
	CommissionRate decimal.Decimal `json:"commission_rate"`
	ValorDays      int             `json:"valor_days"`
	IsActive       bool            `json:"is_active"`
}

// GET /api/bank-accounts
func (h *Handler) ListBanks() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := auth.CompanyID(c)
		if err != nil {
			return err
		}

		var banks []models.BankAccount
		if err := h.db.Where("company_id = ?", companyID).Order("name ASC").Find(&banks).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Banka hesapları listelenemedi")
		}
		return c.JSON(banks)
	}
}

// POST /api/bank-accounts
func (h *Handler) CreateBank() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := auth.CompanyID(c)
		if err != nil {
			return err
		}

		var req bankAccountRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if req.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Banka adı zorunlu")
		}
		currency := models.Currency(req.Currency)
		if !currency.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz para birimi (EUR/USD/TRY)")
		}
		if req.CommissionRate.IsNegative() || req.ValorDays < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Komisyon oranı ve valör günü negatif olamaz")
		}

		bank := models.BankAccount{
			CompanyID:      companyID,
			Name:           req.Name,
			IBAN:           req.IBAN,
			Currency:       currency,
			CommissionRate: req.CommissionRate,
			ValorDays:      req.ValorDays,
			IsActive:       true,
		}
		if err := h.db.Create(&bank).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Banka hesabı kaydedilemedi")
		}
		return c.Status(fiber.StatusCreated).JSON(bank)
	}
}

// PUT /api/bank-accounts/:id
func (h *Handler) UpdateBank() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := auth.CompanyID(c)
		if err != nil {
			return err
		}

		var bank models.BankAccount
		if err := h.db.First(&bank, "id = ? AND company_id = ?", c.Params("id"), companyID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Banka hesabı bulunamadı")
		}

		var req bankAccountRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if req.CommissionRate.IsNegative() || req.ValorDays < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Komisyon oranı ve valör günü negatif olamaz")
		}

		bank.Name = req.Name
		bank.IBAN = req.IBAN
		bank.CommissionRate = req.CommissionRate
		bank.ValorDays = req.ValorDays
		bank.IsActive = req.IsActive
		if err := h.db.Save(&bank).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Banka hesabı güncellenemedi")
		}
		return c.JSON(bank)
	}
}
