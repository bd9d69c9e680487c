package transaction

import (
	"time"

	"acenta-backend/internal/audit"
	"acenta-backend/internal/auth"
	"acenta-backend/internal/ledger"
	"acenta-backend/internal/models"
	"acenta-backend/internal/settlement"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Kaynak belgeye bağlı satırlar buradan düzenlenemez; belge handler'ları
// revert + reapply protokolünü kendisi yürütür.
const immutableReferenceMsg = "Bu işlem bir kaynak belgeye bağlı, doğrudan düzenlenemez. Lütfen ilgili belgeyi (rezervasyon/satış) düzenleyin."

type Handler struct {
	db         *gorm.DB
	engine     *ledger.Engine
	settlement *settlement.Service
	audit      *audit.Logger
}

func NewHandler(db *gorm.DB, engine *ledger.Engine, st *settlement.Service, auditLog *audit.Logger) *Handler {
	return &Handler{db: db, engine: engine, settlement: st, audit: auditLog}
}

type createRequest struct {
	CariID          uint            `json:"cari_id"`
	TransactionType string          `json:"transaction_type"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	Description     string          `json:"description"`
	Date            string          `json:"date"` // YYYY-MM-DD, boşsa bugün

	// transaction_type = payment için
	PaymentMethod string `json:"payment_method"`
	PaymentTypeID *uint  `json:"payment_type_id"`
	BankAccountID *uint  `json:"bank_account_id"`
	TargetCariID  *uint  `json:"target_cari_id"`
	DueDate       string `json:"due_date"`
	CheckNumber   string `json:"check_number"`
}

type updateRequest struct {
	TransactionType string          `json:"transaction_type"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	Description     string          `json:"description"`
	Date            string          `json:"date"`
}

// POST /api/transactions
func (h *Handler) Create() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := auth.CompanyID(c)
		if err != nil {
			return err
		}

		var req createRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		txType := models.TransactionType(req.TransactionType)
		if !txType.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz işlem tipi")
		}
		currency := models.Currency(req.Currency)
		if !currency.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz para birimi (EUR/USD/TRY)")
		}
		if !req.Amount.IsPositive() {
			return fiber.NewError(fiber.StatusBadRequest, "Tutar pozitif olmalı")
		}
		if req.CariID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Cari hesap seçilmeli")
		}

		date := req.Date
		if date == "" {
			date = time.Now().Format("2006-01-02")
		} else if _, err := time.Parse("2006-01-02", date); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Tarih formatı geçersiz, 'YYYY-MM-DD' olmalı")
		}

		var method settlement.PaymentMethod
		if txType == models.TransactionPayment {
			if req.PaymentMethod == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Tahsilat için ödeme yöntemi zorunlu")
			}
			method, err = settlement.ParseMethod(req.PaymentMethod)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
		} else if req.PaymentMethod != "" {
			return fiber.NewError(fiber.StatusBadRequest, "Ödeme yöntemi yalnızca tahsilat (payment) işlemlerinde kullanılır")
		}

		t := models.Transaction{
			CompanyID:       companyID,
			CariID:          req.CariID,
			TransactionType: txType,
			Amount:          req.Amount,
			Currency:        currency,
			Description:     req.Description,
			ReferenceType:   models.ReferenceManual,
			PaymentTypeID:   req.PaymentTypeID,
			Date:            date,
			CreatedBy:       auth.UserID(c),
		}

		var effect *settlement.PoolEffect
		err = h.db.Transaction(func(tx *gorm.DB) error {
			var exists models.CariAccount
			if err := tx.First(&exists, "id = ? AND company_id = ?", req.CariID, companyID).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "Cari hesap bulunamadı")
			}

			if txType == models.TransactionPayment && method == settlement.MethodWriteOff {
				clamped, err := h.settlement.ClampWriteOff(tx, companyID, req.CariID, currency, t.Amount)
				if err != nil {
					return err
				}
				if clamped.IsZero() {
					return fiber.NewError(fiber.StatusBadRequest, "Bakiye sıfır veya eksi, write_off uygulanamaz")
				}
				t.Amount = clamped
			}

			if err := h.engine.Post(tx, &t); err != nil {
				return err
			}

			if txType == models.TransactionPayment {
				effect, err = h.settlement.Apply(tx, &t, settlement.Params{
					Method:        method,
					BankAccountID: req.BankAccountID,
					TargetCariID:  req.TargetCariID,
					DueDate:       req.DueDate,
					CheckNumber:   req.CheckNumber,
				})
				if err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return toFiberError(err)
		}

		h.audit.Write(audit.LogOptions{
			CompanyID:   companyID,
			UserID:      auth.UserID(c),
			Action:      "create",
			EntityType:  "transaction",
			EntityID:    t.ID,
			Description: "İşlem oluşturuldu: " + string(t.TransactionType),
			IPAddress:   c.IP(),
		})

		resp := fiber.Map{"transaction": t}
		if effect != nil {
			resp["settlement"] = effect
		}
		return c.Status(fiber.StatusCreated).JSON(resp)
	}
}

// PUT /api/transactions/:id
//
// Yalnızca manuel, tahsilat olmayan satırlar düzenlenebilir. Düzeltme her
// zaman geri al + yeniden uygula olarak işler; para birimi değişse bile
// eski birimden eski tutar düşer, yeni birime yeni tutar eklenir.
func (h *Handler) Update() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := auth.CompanyID(c)
		if err != nil {
			return err
		}

		var req updateRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		txType := models.TransactionType(req.TransactionType)
		if !txType.Valid() || txType == models.TransactionPayment {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz işlem tipi")
		}
		currency := models.Currency(req.Currency)
		if !currency.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz para birimi (EUR/USD/TRY)")
		}
		if !req.Amount.IsPositive() {
			return fiber.NewError(fiber.StatusBadRequest, "Tutar pozitif olmalı")
		}

		var updated models.Transaction
		err = h.db.Transaction(func(tx *gorm.DB) error {
			var old models.Transaction
			if err := tx.First(&old, "id = ? AND company_id = ?", c.Params("id"), companyID).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "İşlem bulunamadı")
			}
			if old.ReferenceType != models.ReferenceManual {
				return fiber.NewError(fiber.StatusUnprocessableEntity, immutableReferenceMsg)
			}
			if old.TransactionType == models.TransactionPayment {
				return fiber.NewError(fiber.StatusBadRequest, "Tahsilat işlemleri düzenlenemez; silip yeniden oluşturun")
			}

			if err := h.engine.Unpost(tx, &old); err != nil {
				return err
			}

			updated = models.Transaction{
				ID:              old.ID,
				CompanyID:       old.CompanyID,
				CariID:          old.CariID,
				TransactionType: txType,
				Amount:          req.Amount,
				Currency:        currency,
				Description:     req.Description,
				ReferenceType:   models.ReferenceManual,
				Date:            old.Date,
				CreatedBy:       old.CreatedBy,
				CreatedAt:       old.CreatedAt,
			}
			if req.Date != "" {
				if _, err := time.Parse("2006-01-02", req.Date); err != nil {
					return fiber.NewError(fiber.StatusBadRequest, "Tarih formatı geçersiz, 'YYYY-MM-DD' olmalı")
				}
				updated.Date = req.Date
			}
			return h.engine.Post(tx, &updated)
		})
		if err != nil {
			return toFiberError(err)
		}

		h.audit.Write(audit.LogOptions{
			CompanyID:  companyID,
			UserID:     auth.UserID(c),
			Action:     "update",
			EntityType: "transaction",
			EntityID:   updated.ID,
			Changes:    req,
			IPAddress:  c.IP(),
		})

		return c.JSON(updated)
	}
}

// DELETE /api/transactions/:id
func (h *Handler) Delete() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := auth.CompanyID(c)
		if err != nil {
			return err
		}

		var deleted models.Transaction
		err = h.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.First(&deleted, "id = ? AND company_id = ?", c.Params("id"), companyID).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "İşlem bulunamadı")
			}
			if deleted.ReferenceType != models.ReferenceManual {
				return fiber.NewError(fiber.StatusUnprocessableEntity, immutableReferenceMsg)
			}

			// Tahsilatsa kasa/çek yan etkilerini de geri al.
			if deleted.TransactionType == models.TransactionPayment {
				if deleted.IsSettled && deleted.CashAccountID != nil {
					res := tx.Model(&models.CashAccount{}).
						Where("id = ?", *deleted.CashAccountID).
						UpdateColumn("current_balance", gorm.Expr("current_balance - ?", deleted.NetAmount))
					if res.Error != nil {
						return res.Error
					}
				}
				if err := tx.Delete(&models.CheckPromissory{}, "transaction_id = ?", deleted.ID).Error; err != nil {
					return err
				}
				if err := tx.Delete(&models.PaymentSettlement{}, "transaction_id = ?", deleted.ID).Error; err != nil {
					return err
				}
			}

			return h.engine.Unpost(tx, &deleted)
		})
		if err != nil {
			return toFiberError(err)
		}

		h.audit.Write(audit.LogOptions{
			CompanyID:  companyID,
			UserID:     auth.UserID(c),
			Action:     "delete",
			EntityType: "transaction",
			EntityID:   deleted.ID,
			IPAddress:  c.IP(),
		})

		return c.JSON(fiber.Map{"message": "İşlem silindi"})
	}
}

// GET /api/transactions?cari_id=&type=
func (h *Handler) List() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := auth.CompanyID(c)
		if err != nil {
			return err
		}

		q := h.db.Where("company_id = ?", companyID)
		if cariID := c.Query("cari_id"); cariID != "" {
			q = q.Where("cari_id = ?", cariID)
		}
		if t := c.Query("type"); t != "" {
			q = q.Where("transaction_type = ?", t)
		}

		var items []models.Transaction
		if err := q.Order("created_at DESC, id DESC").Limit(500).Find(&items).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İşlemler listelenemedi")
		}
		return c.JSON(items)
	}
}

// POST /api/cari-accounts/:id/recalculate
func (h *Handler) Recalculate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := auth.CompanyID(c)
		if err != nil {
			return err
		}

		cariID, err := c.ParamsInt("id")
		if err != nil || cariID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz cari id")
		}

		account, err := h.engine.Recalculate(h.db, companyID, uint(cariID))
		if err != nil {
			return toFiberError(err)
		}

		h.audit.Write(audit.LogOptions{
			CompanyID:   companyID,
			UserID:      auth.UserID(c),
			Action:      "recalculate",
			EntityType:  "cari_account",
			EntityID:    account.ID,
			Description: "Bakiyeler işlem geçmişinden yeniden hesaplandı",
			IPAddress:   c.IP(),
		})

		return c.JSON(account)
	}
}

// GET /api/checks?collected=true|false
func (h *Handler) ListChecks() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := auth.CompanyID(c)
		if err != nil {
			return err
		}

		var collected *bool
		if v := c.Query("collected"); v != "" {
			b := v == "true"
			collected = &b
		}

		checks, err := h.settlement.ListChecks(h.db, companyID, collected)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Çek/senetler listelenemedi")
		}
		return c.JSON(checks)
	}
}

// POST /api/checks/:id/collect
func (h *Handler) CollectCheck() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := auth.CompanyID(c)
		if err != nil {
			return err
		}

		checkID, err := c.ParamsInt("id")
		if err != nil || checkID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz çek id")
		}

		var req struct {
			CashAccountID *uint `json:"cash_account_id"`
		}
		_ = c.BodyParser(&req)

		check, err := h.settlement.CollectCheck(h.db, companyID, uint(checkID), req.CashAccountID)
		if err != nil {
			return toFiberError(err)
		}

		h.audit.Write(audit.LogOptions{
			CompanyID:   companyID,
			UserID:      auth.UserID(c),
			Action:      "settle",
			EntityType:  "check_promissory",
			EntityID:    check.ID,
			Description: "Çek/senet tahsil edildi",
			IPAddress:   c.IP(),
		})

		return c.JSON(check)
	}
}

// toFiberError fiber hatalarını olduğu gibi geçirir, kalanını 500'e sarar.
func toFiberError(err error) error {
	if _, ok := err.(*fiber.Error); ok {
		return err
	}
	return fiber.NewError(fiber.StatusInternalServerError, err.Error())
}
