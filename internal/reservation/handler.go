package reservation

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

type reservationRequest struct {
	CariID         uint            `json:"cari_id"`
	Date           string          `json:"date"`
	Time           string          `json:"time"`
	TourTypeID     *uint           `json:"tour_type_id"`
	CustomerName   string          `json:"customer_name"`
	PersonCount    int             `json:"person_count"`
	ATVCount       int             `json:"atv_count"`
	PickupLocation string          `json:"pickup_location"`
	PickupMapsLink string          `json:"pickup_maps_link"`
	PickupTime     string          `json:"pickup_time"`
	Price          decimal.Decimal `json:"price"`
	Currency       string          `json:"currency"`
	Notes          string          `json:"notes"`
}

type cancelRequest struct {
	Reason         string           `json:"reason"`
	NoShowAmount   *decimal.Decimal `json:"no_show_amount"`
	NoShowCurrency string           `json:"no_show_currency"`
}

func (r *reservationRequest) validate() error {
	if r.CariID == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "Cari hesap seçilmeli")
	}
	if _, err := time.Parse("2006-01-02", r.Date); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Tarih formatı geçersiz, 'YYYY-MM-DD' olmalı")
	}
	if r.CustomerName == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Müşteri adı zorunlu")
	}
	if !r.Price.IsPositive() {
		return fiber.NewError(fiber.StatusBadRequest, "Fiyat pozitif olmalı")
	}
	if !models.Currency(r.Currency).Valid() {
		return fiber.NewError(fiber.StatusBadRequest, "Geçersiz para birimi (EUR/USD/TRY)")
	}
	return nil
}

// POST /api/reservations
func (h *Handler) Create() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := auth.CompanyID(c)
		if err != nil {
			return err
		}

		var req reservationRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if err := req.validate(); err != nil {
			return err
		}

		var res models.Reservation
		err = h.db.Transaction(func(tx *gorm.DB) error {
			var cari models.CariAccount
			if err := tx.First(&cari, "id = ? AND company_id = ?", req.CariID, companyID).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "Cari hesap bulunamadı")
			}

			voucher, err := GenerateVoucherCode(tx, companyID)
			if err != nil {
				return err
			}

			res = models.Reservation{
				CompanyID:      companyID,
				CariID:         cari.ID,
				CariName:       cari.Name,
				Date:           req.Date,
				Time:           req.Time,
				TourTypeID:     req.TourTypeID,
				CustomerName:   req.CustomerName,
				PersonCount:    req.PersonCount,
				ATVCount:       req.ATVCount,
				PickupLocation: req.PickupLocation,
				PickupMapsLink: req.PickupMapsLink,
				PickupTime:     req.PickupTime,
				Price:          req.Price,
				Currency:       models.Currency(req.Currency),
				VoucherCode:    voucher,
				Status:         models.ReservationConfirmed,
				Notes:          req.Notes,
				CreatedBy:      auth.UserID(c),
			}
			if req.TourTypeID != nil {
				var tt models.TourType
				if err := tx.First(&tt, "id = ? AND company_id = ?", *req.TourTypeID, companyID).Error; err == nil {
					res.TourTypeName = tt.Name
				}
			}
			if err := tx.Create(&res).Error; err != nil {
				return fmt.Errorf("rezervasyon kaydedilemedi: %w", err)
			}

			return h.engine.Post(tx, &models.Transaction{
				CompanyID:       companyID,
				CariID:          cari.ID,
				TransactionType: models.TransactionDebit,
				Amount:          res.Price,
				Currency:        res.Currency,
				Description:     fmt.Sprintf("Rezervasyon %s - %s", res.VoucherCode, res.CustomerName),
				ReferenceID:     &res.ID,
				ReferenceType:   models.ReferenceReservation,
				Date:            res.Date,
				CreatedBy:       res.CreatedBy,
			})
		})
		if err != nil {
			return toFiberError(err)
		}

		h.audit.Write(audit.LogOptions{
			CompanyID:   companyID,
			UserID:      auth.UserID(c),
			Action:      "create",
			EntityType:  "reservation",
			EntityID:    res.ID,
			Description: "Rezervasyon oluşturuldu: " + res.VoucherCode,
			IPAddress:   c.IP(),
		})

		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

// PUT /api/reservations/:id
//
// Fiyat, para birimi veya cari değişirse belge işlemi geri alınıp yeni
// değerlerle yeniden işlenir. Eski etki her zaman eski (tip, tutar, birim)
// üçlüsüyle düşülür; birim değişiminde net fark asla kullanılmaz.
func (h *Handler) Update() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := auth.CompanyID(c)
		if err != nil {
			return err
		}

		var req reservationRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if err := req.validate(); err != nil {
			return err
		}

		var res models.Reservation
		err = h.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.First(&res, "id = ? AND company_id = ?", c.Params("id"), companyID).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "Rezervasyon bulunamadı")
			}
			if res.Status == models.ReservationCancelled || res.Status == models.ReservationRejected {
				return fiber.NewError(fiber.StatusBadRequest, "İptal edilmiş rezervasyon düzenlenemez")
			}

			var cari models.CariAccount
			if err := tx.First(&cari, "id = ? AND company_id = ?", req.CariID, companyID).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "Cari hesap bulunamadı")
			}

			financialChange := res.CariID != req.CariID ||
				!res.Price.Equal(req.Price) ||
				res.Currency != models.Currency(req.Currency)

			// Onay bekleyen başvuruların henüz işlem satırı yoktur.
			hasLedgerRow := res.Status != models.ReservationPendingApproval

			if financialChange && hasLedgerRow {
				old, err := h.engine.FindDocumentTransaction(tx, companyID, res.ID, models.ReferenceReservation)
				if err != nil {
					return fmt.Errorf("belge işlemi bulunamadı: %w", err)
				}
				if err := h.engine.Unpost(tx, old); err != nil {
					return err
				}
				if err := h.engine.Post(tx, &models.Transaction{
					CompanyID:       companyID,
					CariID:          req.CariID,
					TransactionType: models.TransactionDebit,
					Amount:          req.Price,
					Currency:        models.Currency(req.Currency),
					Description:     old.Description,
					ReferenceID:     &res.ID,
					ReferenceType:   models.ReferenceReservation,
					Date:            req.Date,
					CreatedBy:       old.CreatedBy,
				}); err != nil {
					return err
				}
			}

			res.CariID = cari.ID
			res.CariName = cari.Name
			res.Date = req.Date
			res.Time = req.Time
			res.TourTypeID = req.TourTypeID
			res.CustomerName = req.CustomerName
			res.PersonCount = req.PersonCount
			res.ATVCount = req.ATVCount
			res.PickupLocation = req.PickupLocation
			res.PickupMapsLink = req.PickupMapsLink
			res.PickupTime = req.PickupTime
			res.Price = req.Price
			res.Currency = models.Currency(req.Currency)
			res.Notes = req.Notes
			if req.TourTypeID != nil {
				var tt models.TourType
				if err := tx.First(&tt, "id = ? AND company_id = ?", *req.TourTypeID, companyID).Error; err == nil {
					res.TourTypeName = tt.Name
				}
			}
			return tx.Save(&res).Error
		})
		if err != nil {
			return toFiberError(err)
		}

		h.audit.Write(audit.LogOptions{
			CompanyID:  companyID,
			UserID:     auth.UserID(c),
			Action:     "update",
			EntityType: "reservation",
			EntityID:   res.ID,
			Changes:    req,
			IPAddress:  c.IP(),
		})

		return c.JSON(res)
	}
}

// POST /api/reservations/:id/cancel
//
// İki fazlı iptal: önce orijinal debit kendi para biriminde geri alınır,
// sonra no-show cezası (varsa) kendi para biriminde debt olarak işlenir.
// İki tutar asla birbirine mahsup edilmez.
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

		var res models.Reservation
		err = h.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.First(&res, "id = ? AND company_id = ?", c.Params("id"), companyID).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "Rezervasyon bulunamadı")
			}
			if res.Status == models.ReservationCancelled {
				return fiber.NewError(fiber.StatusBadRequest, "Rezervasyon zaten iptal edilmiş")
			}

			// Faz 1: orijinal debit'i geri al (onay bekleyenlerde satır yok).
			if res.Status != models.ReservationPendingApproval && res.Status != models.ReservationRejected {
				old, err := h.engine.FindDocumentTransaction(tx, companyID, res.ID, models.ReferenceReservation)
				if err != nil {
					return fmt.Errorf("belge işlemi bulunamadı: %w", err)
				}
				if err := h.engine.Unpost(tx, old); err != nil {
					return err
				}
			}

			// Faz 2: no-show cezası kendi para biriminde yeni borç.
			if applyNoShow {
				if err := h.engine.Post(tx, &models.Transaction{
					CompanyID:       companyID,
					CariID:          res.CariID,
					TransactionType: models.TransactionDebt,
					Amount:          *req.NoShowAmount,
					Currency:        noShowCurrency,
					Description:     fmt.Sprintf("No-show cezası - %s (%s)", res.VoucherCode, res.CustomerName),
					ReferenceID:     &res.ID,
					ReferenceType:   models.ReferenceNoShowPenalty,
					Date:            time.Now().Format("2006-01-02"),
					CreatedBy:       auth.UserID(c),
				}); err != nil {
					return err
				}
			}

			now := time.Now()
			res.Status = models.ReservationCancelled
			res.CancellationReason = req.Reason
			res.CancelledAt = &now
			res.NoShowApplied = applyNoShow
			if applyNoShow {
				res.NoShowAmount = req.NoShowAmount
				res.NoShowCurrency = &noShowCurrency
			}
			return tx.Save(&res).Error
		})
		if err != nil {
			return toFiberError(err)
		}

		h.audit.Write(audit.LogOptions{
			CompanyID:   companyID,
			UserID:      auth.UserID(c),
			Action:      "cancel",
			EntityType:  "reservation",
			EntityID:    res.ID,
			Description: "Rezervasyon iptal edildi: " + res.VoucherCode,
			Changes:     req,
			IPAddress:   c.IP(),
		})

		return c.JSON(res)
	}
}

// DELETE /api/reservations/:id
func (h *Handler) Delete() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := auth.CompanyID(c)
		if err != nil {
			return err
		}

		var res models.Reservation
		err = h.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.First(&res, "id = ? AND company_id = ?", c.Params("id"), companyID).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "Rezervasyon bulunamadı")
			}

			// Belgeye bağlı tüm satırlar (debit + varsa no-show) geri alınır.
			var rows []models.Transaction
			if err := tx.Where("company_id = ? AND reference_id = ? AND reference_type IN ?",
				companyID, res.ID, []string{models.ReferenceReservation, models.ReferenceNoShowPenalty}).
				Find(&rows).Error; err != nil {
				return err
			}
			for i := range rows {
				if err := h.engine.Unpost(tx, &rows[i]); err != nil {
					return err
				}
			}

			return tx.Delete(&res).Error
		})
		if err != nil {
			return toFiberError(err)
		}

		h.audit.Write(audit.LogOptions{
			CompanyID:   companyID,
			UserID:      auth.UserID(c),
			Action:      "delete",
			EntityType:  "reservation",
			EntityID:    res.ID,
			Description: "Rezervasyon silindi: " + res.VoucherCode,
			IPAddress:   c.IP(),
		})

		return c.JSON(fiber.Map{"message": "Rezervasyon silindi"})
	}
}

// GET /api/reservations?date=&start=&end=&status=&cari_id=
func (h *Handler) List() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := auth.CompanyID(c)
		if err != nil {
			return err
		}

		q := h.db.Where("company_id = ?", companyID)
		if date := c.Query("date"); date != "" {
			q = q.Where("date = ?", date)
		}
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

		var items []models.Reservation
		if err := q.Order("date DESC, time DESC").Limit(500).Find(&items).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Rezervasyonlar listelenemedi")
		}
		return c.JSON(items)
	}
}

// GET /api/reservations/:id
func (h *Handler) Get() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := auth.CompanyID(c)
		if err != nil {
			return err
		}

		var res models.Reservation
		if err := h.db.First(&res, "id = ? AND company_id = ?", c.Params("id"), companyID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Rezervasyon bulunamadı")
		}
		return c.JSON(res)
	}
}

func toFiberError(err error) error {
	if _, ok := err.(*fiber.Error); ok {
		return err
	}
	return fiber.NewError(fiber.StatusInternalServerError, err.Error())
}
