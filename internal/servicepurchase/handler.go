package servicepurchase

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

type purchaseRequest struct {
	SupplierID         uint            `json:"supplier_id"`
	ServiceDescription string          `json:"service_description"`
	Amount             decimal.Decimal `json:"amount"`
	Currency           string          `json:"currency"`
	Date               string          `json:"date"`
	Notes              string          `json:"notes"`
}

func (r *purchaseRequest) validate() error {
	if r.SupplierID == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "Tedarikçi cari seçilmeli")
	}
	if r.ServiceDescription == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Hizmet açıklaması zorunlu")
	}
	if !r.Amount.IsPositive() {
		return fiber.NewError(fiber.StatusBadRequest, "Tutar pozitif olmalı")
	}
	if !models.Currency(r.Currency).Valid() {
		return fiber.NewError(fiber.StatusBadRequest, "Geçersiz para birimi (EUR/USD/TRY)")
	}
	if _, err := time.Parse("2006-01-02", r.Date); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Tarih formatı geçersiz, 'YYYY-MM-DD' olmalı")
	}
	return nil
}

// POST /api/service-purchases
func (h *Handler) Create() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := auth.CompanyID(c)
		if err != nil {
			return err
		}

		var req purchaseRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if err := req.validate(); err != nil {
			return err
		}

		var sp models.ServicePurchase
		err = h.db.Transaction(func(tx *gorm.DB) error {
			var supplier models.CariAccount
			if err := tx.First(&supplier, "id = ? AND company_id = ?", req.SupplierID, companyID).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "Tedarikçi cari bulunamadı")
			}

			sp = models.ServicePurchase{
				CompanyID:          companyID,
				SupplierID:         supplier.ID,
				SupplierName:       supplier.Name,
				ServiceDescription: req.ServiceDescription,
				Amount:             req.Amount,
				Currency:           models.Currency(req.Currency),
				Date:               req.Date,
				Notes:              req.Notes,
				CreatedBy:          auth.UserID(c),
			}
			if err := tx.Create(&sp).Error; err != nil {
				return fmt.Errorf("hizmet alımı kaydedilemedi: %w", err)
			}

			return h.engine.Post(tx, &models.Transaction{
				CompanyID:       companyID,
				CariID:          supplier.ID,
				TransactionType: models.TransactionCredit,
				Amount:          sp.Amount,
				Currency:        sp.Currency,
				Description:     "Hizmet alımı: " + sp.ServiceDescription,
				ReferenceID:     &sp.ID,
				ReferenceType:   models.ReferenceServicePurchase,
				Date:            sp.Date,
				CreatedBy:       sp.CreatedBy,
			})
		})
		if err != nil {
			return toFiberError(err)
		}

		h.audit.Write(audit.LogOptions{
			CompanyID:  companyID,
			UserID:     auth.UserID(c),
			Action:     "create",
			EntityType: "service_purchase",
			EntityID:   sp.ID,
			IPAddress:  c.IP(),
		})

		return c.Status(fiber.StatusCreated).JSON(sp)
	}
}

// PUT /api/service-purchases/:id
func (h *Handler) Update() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := auth.CompanyID(c)
		if err != nil {
			return err
		}

		var req purchaseRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if err := req.validate(); err != nil {
			return err
		}

		var sp models.ServicePurchase
		err = h.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.First(&sp, "id = ? AND company_id = ?", c.Params("id"), companyID).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "Hizmet alımı bulunamadı")
			}

			var supplier models.CariAccount
			if err := tx.First(&supplier, "id = ? AND company_id = ?", req.SupplierID, companyID).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "Tedarikçi cari bulunamadı")
			}

			old, err := h.engine.FindDocumentTransaction(tx, companyID, sp.ID, models.ReferenceServicePurchase)
			if err != nil {
				return fmt.Errorf("belge işlemi bulunamadı: %w", err)
			}
			if err := h.engine.Unpost(tx, old); err != nil {
				return err
			}

			sp.SupplierID = supplier.ID
			sp.SupplierName = supplier.Name
			sp.ServiceDescription = req.ServiceDescription
			sp.Amount = req.Amount
			sp.Currency = models.Currency(req.Currency)
			sp.Date = req.Date
			sp.Notes = req.Notes
			if err := tx.Save(&sp).Error; err != nil {
				return err
			}

			return h.engine.Post(tx, &models.Transaction{
				CompanyID:       companyID,
				CariID:          supplier.ID,
				TransactionType: models.TransactionCredit,
				Amount:          sp.Amount,
				Currency:        sp.Currency,
				Description:     "Hizmet alımı: " + sp.ServiceDescription,
				ReferenceID:     &sp.ID,
				ReferenceType:   models.ReferenceServicePurchase,
				Date:            sp.Date,
				CreatedBy:       old.CreatedBy,
			})
		})
		if err != nil {
			return toFiberError(err)
		}

		h.audit.Write(audit.LogOptions{
			CompanyID:  companyID,
			UserID:     auth.UserID(c),
			Action:     "update",
			EntityType: "service_purchase",
			EntityID:   sp.ID,
			Changes:    req,
			IPAddress:  c.IP(),
		})

		return c.JSON(sp)
	}
}

// DELETE /api/service-purchases/:id
func (h *Handler) Delete() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := auth.CompanyID(c)
		if err != nil {
			return err
		}

		var sp models.ServicePurchase
		err = h.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.First(&sp, "id = ? AND company_id = ?", c.Params("id"), companyID).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "Hizmet alımı bulunamadı")
			}

			old, err := h.engine.FindDocumentTransaction(tx, companyID, sp.ID, models.ReferenceServicePurchase)
			if err == nil {
				if err := h.engine.Unpost(tx, old); err != nil {
					return err
				}
			} else if err != gorm.ErrRecordNotFound {
				return err
			}

			return tx.Delete(&sp).Error
		})
		if err != nil {
			return toFiberError(err)
		}

		h.audit.Write(audit.LogOptions{
			CompanyID:  companyID,
			UserID:     auth.UserID(c),
			Action:     "delete",
			EntityType: "service_purchase",
			EntityID:   sp.ID,
			IPAddress:  c.IP(),
		})

		return c.JSON(fiber.Map{"message": "Hizmet alımı silindi"})
	}
}

// GET /api/service-purchases
func (h *Handler) List() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := auth.CompanyID(c)
		if err != nil {
			return err
		}

		q := h.db.Where("company_id = ?", companyID)
		if supplierID := c.Query("supplier_id"); supplierID != "" {
			q = q.Where("supplier_id = ?", supplierID)
		}
		if start := c.Query("start"); start != "" {
			q = q.Where("date >= ?", start)
		}
		if end := c.Query("end"); end != "" {
			q = q.Where("date <= ?", end)
		}

		var items []models.ServicePurchase
		if err := q.Order("date DESC").Limit(500).Find(&items).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Hizmet alımları listelenemedi")
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
