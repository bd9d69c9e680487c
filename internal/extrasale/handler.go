package extrasale

import (
	"fmt"
	"time"

	"acenta-backend/internal/audit"
	"acenta-backend/internal/auth"
	"acenta-backend/internal/ledger"
	"acenta-backend/internal/models"
	"acenta-backend/internal/reservation"

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

type saleRequest struct {
	CariID          uint            `json:"cari_id"`
	ProductName     string          `json:"product_name"`
	CustomerName    string          `json:"customer_name"`
	CustomerContact string          `json:"customer_contact"`
	PickupLocation  string          `json:"pickup_location"`
	Date            string          `json:"date"`
	Time            string          `json:"time"`
	SalePrice       decimal.Decimal `json:"sale_price"`
	PurchasePrice   decimal.Decimal `json:"purchase_price"`
	Currency        string          `json:"currency"`
	SupplierID      *uint           `json:"supplier_id"`
	Notes           string          `json:"notes"`
}

type cancelRequest struct {
	Reason         string           `json:"reason"`
	NoShowAmount   *decimal.Decimal `json:"no_show_amount"`
	NoShowCurrency string           `json:"no_show_currency"`
}

func (r *saleRequest) validate() error {
	if r.CariID == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "Cari hesap seçilmeli")
	}
	if r.ProductName == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Ürün adı zorunlu")
	}
	if _, err := time.Parse("2006-01-02", r.Date); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Tarih formatı geçersiz, 'YYYY-MM-DD' olmalı")
	}
	if !r.SalePrice.IsPositive() {
		return fiber.NewError(fiber.StatusBadRequest, "Satış fiyatı pozitif olmalı")
	}
	if r.PurchasePrice.IsNegative() {
		return fiber.NewError(fiber.StatusBadRequest, "Alış fiyatı negatif olamaz")
	}
	if !models.Currency(r.Currency).Valid() {
		return fiber.NewError(fiber.StatusBadRequest, "Geçersiz para birimi (EUR/USD/TRY)")
	}
	if r.PurchasePrice.IsPositive() && r.SupplierID == nil {
		return fiber.NewError(fiber.StatusBadRequest, "Alış fiyatı girildiyse tedarikçi cari seçilmeli")
	}
	return nil
}

// postSaleRows satış debit'ini ve (varsa) tedarikçi credit'ini işler.
func (h *Handler) postSaleRows(tx *gorm.DB, sale *models.ExtraSale) error {
	if err := h.engine.Post(tx, &models.Transaction{
		CompanyID:       sale.CompanyID,
		CariID:          sale.CariID,
		TransactionType: models.TransactionDebit,
		Amount:          sale.SalePrice,
		Currency:        sale.Currency,
		Description:     fmt.Sprintf("Ekstra satış %s - %s", sale.VoucherCode, sale.ProductName),
		ReferenceID:     &sale.ID,
		ReferenceType:   models.ReferenceExtraSale,
		Date:            sale.Date,
		CreatedBy:       sale.CreatedBy,
	}); err != nil {
		return err
	}

	if sale.SupplierID != nil && sale.PurchasePrice.IsPositive() {
		return h.engine.Post(tx, &models.Transaction{
			CompanyID:       sale.CompanyID,
			CariID:          *sale.SupplierID,
			TransactionType: models.TransactionCredit,
			Amount:          sale.PurchasePrice,
			Currency:        sale.Currency,
			Description:     fmt.Sprintf("Ekstra satış alımı %s - %s", sale.VoucherCode, sale.ProductName),
			ReferenceID:     &sale.ID,
			ReferenceType:   models.ReferenceExtraSale,
			Date:            sale.Date,
			CreatedBy:       sale.CreatedBy,
		})
	}
	return nil
}

// unpostSaleRows belgeye bağlı tüm defter satırlarını geri alır.
func (h *Handler) unpostSaleRows(tx *gorm.DB, companyID, saleID uint, includeNoShow bool) error {
	refs := []string{models.ReferenceExtraSale}
	if includeNoShow {
		refs = append(refs, models.ReferenceNoShowPenalty)
	}
	var rows []models.Transaction
	if err := tx.Where("company_id = ? AND reference_id = ? AND reference_type IN ?",
		companyID, saleID, refs).Find(&rows).Error; err != nil {
		return err
	}
	for i := range rows {
		if err := h.engine.Unpost(tx, &rows[i]); err != nil {
			return err
		}
	}
	return nil
}

// POST /api/extra-sales
func (h *Handler) Create() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := auth.CompanyID(c)
		if err != nil {
			return err
		}

		var req saleRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if err := req.validate(); err != nil {
			return err
		}

		var sale models.ExtraSale
		err = h.db.Transaction(func(tx *gorm.DB) error {
			var cari models.CariAccount
			if err := tx.First(&cari, "id = ? AND company_id = ?", req.CariID, companyID).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "Cari hesap bulunamadı")
			}
			var supplierName string
			if req.SupplierID != nil {
				var supplier models.CariAccount
				if err := tx.First(&supplier, "id = ? AND company_id = ?", *req.SupplierID, companyID).Error; err != nil {
					return fiber.NewError(fiber.StatusNotFound, "Tedarikçi cari bulunamadı")
				}
				supplierName = supplier.Name
			}

			voucher, err := reservation.GenerateVoucherCode(tx, companyID)
			if err != nil {
				return err
			}

			sale = models.ExtraSale{
				CompanyID:       companyID,
				CariID:          cari.ID,
				CariName:        cari.Name,
				ProductName:     req.ProductName,
				CustomerName:    req.CustomerName,
				CustomerContact: req.CustomerContact,
				PickupLocation:  req.PickupLocation,
				Date:            req.Date,
				Time:            req.Time,
				SalePrice:       req.SalePrice,
				PurchasePrice:   req.PurchasePrice,
				Currency:        models.Currency(req.Currency),
				SupplierID:      req.SupplierID,
				SupplierName:    supplierName,
				VoucherCode:     voucher,
				Status:          models.ReservationConfirmed,
				Notes:           req.Notes,
				CreatedBy:       auth.UserID(c),
			}
			if err := tx.Create(&sale).Error; err != nil {
				return fmt.Errorf("satış kaydedilemedi: %w", err)
			}
			return h.postSaleRows(tx, &sale)
		})
		if err != nil {
			return toFiberError(err)
		}

		h.audit.Write(audit.LogOptions{
			CompanyID:   companyID,
			UserID:      auth.UserID(c),
			Action:      "create",
			EntityType:  "extra_sale",
			EntityID:    sale.ID,
			Description: "Ekstra satış oluşturuldu: " + sale.VoucherCode,
			IPAddress:   c.IP(),
		})

		return c.Status(fiber.StatusCreated).JSON(sale)
	}
}

// PUT /api/extra-sales/:id
//
// Finansal alan değişiminde belge satırları geri alınıp yeniden işlenir.
func (h *Handler) Update() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := auth.CompanyID(c)
		if err != nil {
			return err
		}

		var req saleRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if err := req.validate(); err != nil {
			return err
		}

		var sale models.ExtraSale
		err = h.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.First(&sale, "id = ? AND company_id = ?", c.Params("id"), companyID).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "Satış bulunamadı")
			}
			if sale.Status == models.ReservationCancelled {
				return fiber.NewError(fiber.StatusBadRequest, "İptal edilmiş satış düzenlenemez")
			}

			var cari models.CariAccount
			if err := tx.First(&cari, "id = ? AND company_id = ?", req.CariID, companyID).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "Cari hesap bulunamadı")
			}
			var supplierName string
			if req.SupplierID != nil {
				var supplier models.CariAccount
				if err := tx.First(&supplier, "id = ? AND company_id = ?", *req.SupplierID, companyID).Error; err != nil {
					return fiber.NewError(fiber.StatusNotFound, "Tedarikçi cari bulunamadı")
				}
				supplierName = supplier.Name
			}

			if err := h.unpostSaleRows(tx, companyID, sale.ID, false); err != nil {
				return err
			}

			sale.CariID = cari.ID
			sale.CariName = cari.Name
			sale.ProductName = req.ProductName
			sale.CustomerName = req.CustomerName
			sale.CustomerContact = req.CustomerContact
			sale.PickupLocation = req.PickupLocation
			sale.Date = req.Date
			sale.Time = req.Time
			sale.SalePrice = req.SalePrice
			sale.PurchasePrice = req.PurchasePrice
			sale.Currency = models.Currency(req.Currency)
			sale.SupplierID = req.SupplierID
			sale.SupplierName = supplierName
			sale.Notes = req.Notes
			if err := tx.Save(&sale).Error; err != nil {
				return err
			}
			return h.postSaleRows(tx, &sale)
		})
		if err != nil {
			return toFiberError(err)
		}

		h.audit.Write(audit.LogOptions{
			CompanyID:  companyID,
			UserID:     auth.UserID(c),
			Action:     "update",
			EntityType: "extra_sale",
			EntityID:   sale.ID,
			Changes:    req,
			IPAddress:  c.IP(),
		})

		return c.JSON(sale)
	}
}

// POST /api/extra-sales/:id/cancel
func (h *Handler) Cancel() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := auth.CompanyID(c)
		if err != nil {
			return err
		}

		var req cancelRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		applyNoShow := req.NoShowAmount != nil && req.NoShowAmount.IsPositive()
		noShowCurrency := models.Currency(req.NoShowCurrency)
		if applyNoShow && !noShowCurrency.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "No-show para birimi geçersiz (EUR/USD/TRY)")
		}

		var sale models.ExtraSale
		err = h.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.First(&sale, "id = ? AND company_id = ?", c.Params("id"), companyID).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "Satış bulunamadı")
			}
			if sale.Status == models.ReservationCancelled {
				return fiber.NewError(fiber.StatusBadRequest, "Satış zaten iptal edilmiş")
			}

			if err := h.unpostSaleRows(tx, companyID, sale.ID, false); err != nil {
				return err
			}

			if applyNoShow {
				if err := h.engine.Post(tx, &models.Transaction{
					CompanyID:       companyID,
					CariID:          sale.CariID,
					TransactionType: models.TransactionDebt,
					Amount:          *req.NoShowAmount,
					Currency:        noShowCurrency,
					Description:     fmt.Sprintf("No-show cezası - %s (%s)", sale.VoucherCode, sale.ProductName),
					ReferenceID:     &sale.ID,
					ReferenceType:   models.ReferenceNoShowPenalty,
					Date:            time.Now().Format("2006-01-02"),
					CreatedBy:       auth.UserID(c),
				}); err != nil {
					return err
				}
			}

			now := time.Now()
			sale.Status = models.ReservationCancelled
			sale.CancellationReason = req.Reason
			sale.CancelledAt = &now
			sale.NoShowApplied = applyNoShow
			if applyNoShow {
				sale.NoShowAmount = req.NoShowAmount
				sale.NoShowCurrency = &noShowCurrency
			}
			return tx.Save(&sale).Error
		})
		if err != nil {
			return toFiberError(err)
		}

		h.audit.Write(audit.LogOptions{
			CompanyID:   companyID,
			UserID:      auth.UserID(c),
			Action:      "cancel",
			EntityType:  "extra_sale",
			EntityID:    sale.ID,
			Description: "Ekstra satış iptal edildi: " + sale.VoucherCode,
			Changes:     req,
			IPAddress:   c.IP(),
		})

		return c.JSON(sale)
	}
}

// DELETE /api/extra-sales/:id
func (h *Handler) Delete() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := auth.CompanyID(c)
		if err != nil {
			return err
		}

		var sale models.ExtraSale
		err = h.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.First(&sale, "id = ? AND company_id = ?", c.Params("id"), companyID).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "Satış bulunamadı")
			}
			if err := h.unpostSaleRows(tx, companyID, sale.ID, true); err != nil {
				return err
			}
			return tx.Delete(&sale).Error
		})
		if err != nil {
			return toFiberError(err)
		}

		h.audit.Write(audit.LogOptions{
			CompanyID:   companyID,
			UserID:      auth.UserID(c),
			Action:      "delete",
			EntityType:  "extra_sale",
			EntityID:    sale.ID,
			Description: "Ekstra satış silindi: " + sale.VoucherCode,
			IPAddress:   c.IP(),
		})

		return c.JSON(fiber.Map{"message": "Satış silindi"})
	}
}

// GET /api/extra-sales
func (h *Handler) List() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := auth.CompanyID(c)
		if err != nil {
			return err
		}

		q := h.db.Where("company_id = ?", companyID)
		if start := c.Query("start"); start != "" {
			q = q.Where("date >= ?", start)
		}
		if end := c.Query("end"); end != "" {
			q = q.Where("date <= ?", end)
		}
		if status := c.Query("status"); status != "" {
			q = q.Where("status = ?", status)
		}
		if cariID := c.Query("cari_id"); cariID != "" {
			q = q.Where("cari_id = ?", cariID)
		}

		var items []models.ExtraSale
		if err := q.Order("date DESC").Limit(500).Find(&items).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Satışlar listelenemedi")
		}
		return c.JSON(items)
	}
}

func toFiberError(err error) error {
	if _, ok := err.(*fiber.Error); ok {
		return err
	}
	return fiber.NewError(fiber.StatusInternalServerError, err.Error())
}
