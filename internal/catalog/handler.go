package catalog

import (
	"time"

	"acenta-backend/internal/auth"
	"acenta-backend/internal/models"
	"acenta-backend/internal/settlement"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Handler tur tipleri, ödeme tipleri ve sezon fiyatları gibi tanım
// verilerini yönetir.
type Handler struct {
	db *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// --- Tur tipleri ---

type tourTypeRequest struct {
	Name          string          `json:"name"`
	DurationHours float64         `json:"duration_hours"`
	DefaultPrice  decimal.Decimal `json:"default_price"`
	Currency      string          `json:"currency"`
	Description   string          `json:"description"`
}

// GET /api/tour-types
func (h *Handler) ListTourTypes() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := auth.CompanyID(c)
		if err != nil {
			return err
		}

		var items []models.TourType
		if err := h.db.Where("company_id = ?", companyID).Order("name ASC").Find(&items).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Tur tipleri listelenemedi")
		}
		return c.JSON(items)
	}
}

// POST /api/tour-types
func (h *Handler) CreateTourType() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := auth.CompanyID(c)
		if err != nil {
			return err
		}

		var req tourTypeRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if req.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Tur adı zorunlu")
		}
		currency := models.Currency(req.Currency)
		if !currency.Valid() {
			currency = models.CurrencyEUR
		}
		if req.DefaultPrice.IsNegative() {
			return fiber.NewError(fiber.StatusBadRequest, "Varsayılan fiyat negatif olamaz")
		}

		tt := models.TourType{
			CompanyID:     companyID,
			Name:          req.Name,
			DurationHours: req.DurationHours,
			DefaultPrice:  req.DefaultPrice,
			Currency:      currency,
			Description:   req.Description,
		}
		if err := h.db.Create(&tt).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Tur tipi kaydedilemedi")
		}
		return c.Status(fiber.StatusCreated).JSON(tt)
	}
}

// PUT /api/tour-types/:id
func (h *Handler) UpdateTourType() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := auth.CompanyID(c)
		if err != nil {
			return err
		}

		var tt models.TourType
		if err := h.db.First(&tt, "id = ? AND company_id = ?", c.Params("id"), companyID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Tur tipi bulunamadı")
		}

		var req tourTypeRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if req.DefaultPrice.IsNegative() {
			return fiber.NewError(fiber.StatusBadRequest, "Varsayılan fiyat negatif olamaz")
		}

		tt.Name = req.Name
		tt.DurationHours = req.DurationHours
		tt.DefaultPrice = req.DefaultPrice
		if currency := models.Currency(req.Currency); currency.Valid() {
			tt.Currency = currency
		}
		tt.Description = req.Description
		if err := h.db.Save(&tt).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Tur tipi güncellenemedi")
		}
		return c.JSON(tt)
	}
}

// DELETE /api/tour-types/:id
func (h *Handler) DeleteTourType() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := auth.CompanyID(c)
		if err != nil {
			return err
		}

		var used int64
		if err := h.db.Model(&models.Reservation{}).
			Where("company_id = ? AND tour_type_id = ?", companyID, c.Params("id")).
			Count(&used).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kullanım kontrolü yapılamadı")
		}
		if used > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Rezervasyonda kullanılan tur tipi silinemez")
		}

		res := h.db.Delete(&models.TourType{}, "id = ? AND company_id = ?", c.Params("id"), companyID)
		if res.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Tur tipi silinemedi")
		}
		if res.RowsAffected == 0 {
			return fiber.NewError(fiber.StatusNotFound, "Tur tipi bulunamadı")
		}
		return c.JSON(fiber.Map{"message": "Tur tipi silindi"})
	}
}

// --- Ödeme tipleri ---

type paymentTypeRequest struct {
	Name        string `json:"name"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

// GET /api/payment-types
func (h *Handler) ListPaymentTypes() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := auth.CompanyID(c)
		if err != nil {
			return err
		}

		var items []models.PaymentType
		if err := h.db.Where("company_id = ?", companyID).Order("name ASC").Find(&items).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ödeme tipleri listelenemedi")
		}
		return c.JSON(items)
	}
}

// POST /api/payment-types
func (h *Handler) CreatePaymentType() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := auth.CompanyID(c)
		if err != nil {
			return err
		}

		var req paymentTypeRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if req.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Ödeme tipi adı zorunlu")
		}
		if _, err := settlement.ParseMethod(req.Code); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		pt := models.PaymentType{
			CompanyID:   companyID,
			Name:        req.Name,
			Code:        req.Code,
			Description: req.Description,
		}
		if err := h.db.Create(&pt).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ödeme tipi kaydedilemedi")
		}
		return c.Status(fiber.StatusCreated).JSON(pt)
	}
}

// DELETE /api/payment-types/:id
func (h *Handler) DeletePaymentType() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := auth.CompanyID(c)
		if err != nil {
			return err
		}

		res := h.db.Delete(&models.PaymentType{}, "id = ? AND company_id = ?", c.Params("id"), companyID)
		if res.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ödeme tipi silinemedi")
		}
		if res.RowsAffected == 0 {
			return fiber.NewError(fiber.StatusNotFound, "Ödeme tipi bulunamadı")
		}
		return c.JSON(fiber.Map{"message": "Ödeme tipi silindi"})
	}
}

// --- Sezon fiyatları ---

type seasonalPriceRequest struct {
	StartDate  string          `json:"start_date"`
	EndDate    string          `json:"end_date"`
	TourTypeID uint            `json:"tour_type_id"`
	Price      decimal.Decimal `json:"price"`
	Currency   string          `json:"currency"`

	Overrides []struct {
		CariID uint            `json:"cari_id"`
		Price  decimal.Decimal `json:"price"`
	} `json:"overrides"`
}

func (r *seasonalPriceRequest) validate() error {
	if _, err := time.Parse("2006-01-02", r.StartDate); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Başlangıç tarihi geçersiz, 'YYYY-MM-DD' olmalı")
	}
	if _, err := time.Parse("2006-01-02", r.EndDate); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Bitiş tarihi geçersiz, 'YYYY-MM-DD' olmalı")
	}
	if r.EndDate < r.StartDate {
		return fiber.NewError(fiber.StatusBadRequest, "Bitiş tarihi başlangıçtan önce olamaz")
	}
	if r.TourTypeID == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "Tur tipi seçilmeli")
	}
	if !r.Price.IsPositive() {
		return fiber.NewError(fiber.StatusBadRequest, "Fiyat pozitif olmalı")
	}
	if !models.Currency(r.Currency).Valid() {
		return fiber.NewError(fiber.StatusBadRequest, "Geçersiz para birimi (EUR/USD/TRY)")
	}
	for _, o := range r.Overrides {
		if o.CariID == 0 || !o.Price.IsPositive() {
			return fiber.NewError(fiber.StatusBadRequest, "Cari fiyat tanımları geçersiz")
		}
	}
	return nil
}

// GET /api/seasonal-prices
func (h *Handler) ListSeasonalPrices() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := auth.CompanyID(c)
		if err != nil {
			return err
		}

		q := h.db.Preload("Overrides").Where("company_id = ?", companyID)
		if tourTypeID := c.Query("tour_type_id"); tourTypeID != "" {
			q = q.Where("tour_type_id = ?", tourTypeID)
		}

		var items []models.SeasonalPrice
		if err := q.Order("start_date DESC").Find(&items).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Sezon fiyatları listelenemedi")
		}
		return c.JSON(items)
	}
}

// POST /api/seasonal-prices
func (h *Handler) CreateSeasonalPrice() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := auth.CompanyID(c)
		if err != nil {
			return err
		}

		var req seasonalPriceRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if err := req.validate(); err != nil {
			return err
		}

		sp := models.SeasonalPrice{
			CompanyID:  companyID,
			StartDate:  req.StartDate,
			EndDate:    req.EndDate,
			TourTypeID: req.TourTypeID,
			Price:      req.Price,
			Currency:   models.Currency(req.Currency),
			CreatedBy:  auth.UserID(c),
		}
		for _, o := range req.Overrides {
			sp.Overrides = append(sp.Overrides, models.SeasonalPriceOverride{
				CariID: o.CariID,
				Price:  o.Price,
			})
		}

		if err := h.db.Create(&sp).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Sezon fiyatı kaydedilemedi")
		}
		return c.Status(fiber.StatusCreated).JSON(sp)
	}
}

// PUT /api/seasonal-prices/:id
func (h *Handler) UpdateSeasonalPrice() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := auth.CompanyID(c)
		if err != nil {
			return err
		}

		var req seasonalPriceRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if err := req.validate(); err != nil {
			return err
		}

		var sp models.SeasonalPrice
		err = h.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.First(&sp, "id = ? AND company_id = ?", c.Params("id"), companyID).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "Sezon fiyatı bulunamadı")
			}

			sp.StartDate = req.StartDate
			sp.EndDate = req.EndDate
			sp.TourTypeID = req.TourTypeID
			sp.Price = req.Price
			sp.Currency = models.Currency(req.Currency)
			if err := tx.Save(&sp).Error; err != nil {
				return err
			}

			// Override listesi bütün olarak değiştirilir.
			if err := tx.Delete(&models.SeasonalPriceOverride{}, "seasonal_price_id = ?", sp.ID).Error; err != nil {
				return err
			}
			sp.Overrides = nil
			for _, o := range req.Overrides {
				override := models.SeasonalPriceOverride{
					SeasonalPriceID: sp.ID,
					CariID:          o.CariID,
					Price:           o.Price,
				}
				if err := tx.Create(&override).Error; err != nil {
					return err
				}
				sp.Overrides = append(sp.Overrides, override)
			}
			return nil
		})
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				return fe
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Sezon fiyatı güncellenemedi")
		}
		return c.JSON(sp)
	}
}

// DELETE /api/seasonal-prices/:id
func (h *Handler) DeleteSeasonalPrice() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := auth.CompanyID(c)
		if err != nil {
			return err
		}

		res := h.db.Delete(&models.SeasonalPrice{}, "id = ? AND company_id = ?", c.Params("id"), companyID)
		if res.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Sezon fiyatı silinemedi")
		}
		if res.RowsAffected == 0 {
			return fiber.NewError(fiber.StatusNotFound, "Sezon fiyatı bulunamadı")
		}
		return c.JSON(fiber.Map{"message": "Sezon fiyatı silindi"})
	}
}
