package cariself

import (
	"fmt"
	"time"

	"acenta-backend/internal/audit"
	"acenta-backend/internal/auth"
	"acenta-backend/internal/ledger"
	"acenta-backend/internal/models"
	"acenta-backend/internal/notification"
	"acenta-backend/internal/reservation"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Handler cari panel (self-servis) uçlarını ve firma tarafındaki
// onay/red akışını taşır. Fiyat her zaman sunucuda çözülür; istekte
// gelen fiyat alanları yok sayılmaz, reddedilir.
type Handler struct {
	db     *gorm.DB
	engine *ledger.Engine
	notify *notification.Service
	audit  *audit.Logger
}

func NewHandler(db *gorm.DB, engine *ledger.Engine, notify *notification.Service, auditLog *audit.Logger) *Handler {
	return &Handler{db: db, engine: engine, notify: notify, audit: auditLog}
}

type submitRequest struct {
	Date           string `json:"date"`
	Time           string `json:"time"`
	TourTypeID     uint   `json:"tour_type_id"`
	CustomerName   string `json:"customer_name"`
	PersonCount    int    `json:"person_count"`
	ATVCount       int    `json:"atv_count"`
	PickupLocation string `json:"pickup_location"`
	Notes          string `json:"notes"`

	// Fiyat alanları istemciden kabul edilmez; doluysa istek reddedilir.
	Price    *decimal.Decimal `json:"price"`
	Currency *string          `json:"currency"`
}

func (r *submitRequest) validate() error {
	if r.Price != nil || r.Currency != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Fiyat cari panelden belirlenemez")
	}
	if _, err := time.Parse("2006-01-02", r.Date); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Tarih formatı geçersiz, 'YYYY-MM-DD' olmalı")
	}
	if r.TourTypeID == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "Tur tipi seçilmeli")
	}
	if r.CustomerName == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Müşteri adı zorunlu")
	}
	if r.ATVCount <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "ATV sayısı pozitif olmalı")
	}
	return nil
}

// POST /api/cari-panel/reservations  (cari token)
func (h *Handler) Submit() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := auth.CompanyID(c)
		if err != nil {
			return err
		}
		cariID := auth.CariID(c)
		accountID := auth.CariAccountID(c)
		if cariID == 0 || accountID == 0 {
			return fiber.NewError(fiber.StatusForbidden, "Cari oturumu bulunamadı")
		}

		var req submitRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if err := req.validate(); err != nil {
			return err
		}

		var res models.Reservation
		err = h.db.Transaction(func(tx *gorm.DB) error {
			var account models.CariAccount
			if err := tx.First(&account, "id = ? AND company_id = ?", accountID, companyID).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "Cari hesap bulunamadı")
			}

			price, err := ResolveUnitPrice(tx, companyID, accountID, req.TourTypeID, req.Date)
			if err != nil {
				return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
			}
			total := price.UnitPrice.Mul(decimal.NewFromInt(int64(req.ATVCount)))

			voucher, err := reservation.GenerateVoucherCode(tx, companyID)
			if err != nil {
				return err
			}

			var tt models.TourType
			tourTypeName := ""
			if err := tx.First(&tt, "id = ? AND company_id = ?", req.TourTypeID, companyID).Error; err == nil {
				tourTypeName = tt.Name
			}

			pickupLocation := req.PickupLocation
			if pickupLocation == "" {
				pickupLocation = account.PickupLocation
			}

			res = models.Reservation{
				CompanyID:         companyID,
				CariID:            accountID,
				CariName:          account.Name,
				Date:              req.Date,
				Time:              req.Time,
				TourTypeID:        &req.TourTypeID,
				TourTypeName:      tourTypeName,
				CustomerName:      req.CustomerName,
				PersonCount:       req.PersonCount,
				ATVCount:          req.ATVCount,
				PickupLocation:    pickupLocation,
				PickupMapsLink:    account.PickupMapsLink,
				Price:             total,
				Currency:          price.Currency,
				VoucherCode:       voucher,
				Status:            models.ReservationPendingApproval,
				SubmittedByCariID: &cariID,
				CariCodeSnapshot:  account.CariCode,
				Notes:             req.Notes,
			}
			return tx.Create(&res).Error
		})
		if err != nil {
			return toFiberError(err)
		}

		h.notify.NotifyAdmins(companyID, "Yeni rezervasyon başvurusu",
			fmt.Sprintf("%s carisi %s tarihi için başvuru gönderdi (%s)", res.CariName, res.Date, res.VoucherCode),
			"reservation", res.ID)

		h.audit.Write(audit.LogOptions{
			CompanyID:   companyID,
			UserID:      0,
			UserName:    res.CariName,
			Action:      "create",
			EntityType:  "reservation",
			EntityID:    res.ID,
			Description: "Cari panel başvurusu: " + res.VoucherCode,
			IPAddress:   c.IP(),
		})

		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

// PUT /api/cari-panel/reservations/:id  (cari token)
//
// Yalnızca onay bekleyen kendi başvurusu, dar bir alan listesiyle
// düzenlenebilir. ATV sayısı değişirse toplam fiyat sunucuda yeniden
// hesaplanır.
func (h *Handler) EditSubmission() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := auth.CompanyID(c)
		if err != nil {
			return err
		}
		cariID := auth.CariID(c)
		accountID := auth.CariAccountID(c)

		var req submitRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if err := req.validate(); err != nil {
			return err
		}

		var res models.Reservation
		err = h.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.First(&res, "id = ? AND company_id = ? AND submitted_by_cari_id = ?",
				c.Params("id"), companyID, cariID).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "Başvuru bulunamadı")
			}
			if res.Status != models.ReservationPendingApproval {
				return fiber.NewError(fiber.StatusBadRequest, "Yalnızca onay bekleyen başvurular düzenlenebilir")
			}

			price, err := ResolveUnitPrice(tx, companyID, accountID, req.TourTypeID, req.Date)
			if err != nil {
				return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
			}

			res.Date = req.Date
			res.Time = req.Time
			res.TourTypeID = &req.TourTypeID
			res.CustomerName = req.CustomerName
			res.PersonCount = req.PersonCount
			res.ATVCount = req.ATVCount
			res.PickupLocation = req.PickupLocation
			res.Notes = req.Notes
			res.Price = price.UnitPrice.Mul(decimal.NewFromInt(int64(req.ATVCount)))
			res.Currency = price.Currency

			var tt models.TourType
			if err := tx.First(&tt, "id = ? AND company_id = ?", req.TourTypeID, companyID).Error; err == nil {
				res.TourTypeName = tt.Name
			}
			return tx.Save(&res).Error
		})
		if err != nil {
			return toFiberError(err)
		}

		h.notify.NotifyAdmins(companyID, "Rezervasyon başvurusu güncellendi",
			fmt.Sprintf("%s başvurusunu güncelledi (%s)", res.CariName, res.VoucherCode),
			"reservation", res.ID)

		return c.JSON(res)
	}
}

// GET /api/cari-panel/reservations  (cari token)
func (h *Handler) ListMine() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := auth.CompanyID(c)
		if err != nil {
			return err
		}
		accountID := auth.CariAccountID(c)

		q := h.db.Where("company_id = ? AND cari_id = ?", companyID, accountID)
		if status := c.Query("status"); status != "" {
			q = q.Where("status = ?", status)
		}

		var items []models.Reservation
		if err := q.Order("date DESC").Limit(500).Find(&items).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Rezervasyonlar listelenemedi")
		}
		return c.JSON(items)
	}
}

// GET /api/cari-panel/balance  (cari token)
func (h *Handler) MyBalance() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := auth.CompanyID(c)
		if err != nil {
			return err
		}
		accountID := auth.CariAccountID(c)

		var account models.CariAccount
		if err := h.db.First(&account, "id = ? AND company_id = ?", accountID, companyID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Cari hesap bulunamadı")
		}

		return c.JSON(fiber.Map{
			"name":        account.Name,
			"balance_eur": account.BalanceEUR,
			"balance_usd": account.BalanceUSD,
			"balance_try": account.BalanceTRY,
		})
	}
}

// GET /api/reservations/pending  (firma kullanıcısı)
func (h *Handler) ListPending() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := auth.CompanyID(c)
		if err != nil {
			return err
		}

		var items []models.Reservation
		if err := h.db.Where("company_id = ? AND status = ?", companyID, models.ReservationPendingApproval).
			Order("created_at ASC").Find(&items).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Başvurular listelenemedi")
		}
		return c.JSON(items)
	}
}

type approveRequest struct {
	PickupTime string `json:"pickup_time"` // HH:MM, zorunlu
}

// POST /api/reservations/:id/approve  (firma kullanıcısı)
//
// Onay anında başvurudaki dondurulmuş fiyatla debit işlenir; onay ile
// başvuru arasında sezon fiyatı değişse bile başvurudaki tutar geçerlidir.
func (h *Handler) Approve() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := auth.CompanyID(c)
		if err != nil {
			return err
		}

		var req approveRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if _, err := time.Parse("15:04", req.PickupTime); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Alış saati (pickup_time) zorunlu, 'HH:MM' formatında olmalı")
		}

		var res models.Reservation
		err = h.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.First(&res, "id = ? AND company_id = ?", c.Params("id"), companyID).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "Başvuru bulunamadı")
			}
			if res.Status != models.ReservationPendingApproval {
				return fiber.NewError(fiber.StatusBadRequest, "Yalnızca onay bekleyen başvurular onaylanabilir")
			}

			res.Status = models.ReservationApproved
			res.PickupTime = req.PickupTime
			if err := tx.Save(&res).Error; err != nil {
				return err
			}

			return h.engine.Post(tx, &models.Transaction{
				CompanyID:       companyID,
				CariID:          res.CariID,
				TransactionType: models.TransactionDebit,
				Amount:          res.Price,
				Currency:        res.Currency,
				Description:     fmt.Sprintf("Rezervasyon %s - %s", res.VoucherCode, res.CustomerName),
				ReferenceID:     &res.ID,
				ReferenceType:   models.ReferenceReservation,
				Date:            res.Date,
				CreatedBy:       auth.UserID(c),
			})
		})
		if err != nil {
			return toFiberError(err)
		}

		h.audit.Write(audit.LogOptions{
			CompanyID:   companyID,
			UserID:      auth.UserID(c),
			Action:      "approve",
			EntityType:  "reservation",
			EntityID:    res.ID,
			Description: "Başvuru onaylandı: " + res.VoucherCode,
			IPAddress:   c.IP(),
		})

		return c.JSON(res)
	}
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

// POST /api/reservations/:id/reject  (firma kullanıcısı)
func (h *Handler) Reject() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := auth.CompanyID(c)
		if err != nil {
			return err
		}

		var req rejectRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		var res models.Reservation
		err = h.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.First(&res, "id = ? AND company_id = ?", c.Params("id"), companyID).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "Başvuru bulunamadı")
			}
			if res.Status != models.ReservationPendingApproval {
				return fiber.NewError(fiber.StatusBadRequest, "Yalnızca onay bekleyen başvurular reddedilebilir")
			}

			res.Status = models.ReservationRejected
			if req.Reason != "" {
				if res.Notes != "" {
					res.Notes += "\n"
				}
				res.Notes += "Red nedeni: " + req.Reason
			}
			return tx.Save(&res).Error
		})
		if err != nil {
			return toFiberError(err)
		}

		h.audit.Write(audit.LogOptions{
			CompanyID:   companyID,
			UserID:      auth.UserID(c),
			Action:      "reject",
			EntityType:  "reservation",
			EntityID:    res.ID,
			Description: "Başvuru reddedildi: " + res.VoucherCode,
			IPAddress:   c.IP(),
		})

		return c.JSON(res)
	}
}

func toFiberError(err error) error {
	if _, ok := err.(*fiber.Error); ok {
		return err
	}
	return fiber.NewError(fiber.StatusInternalServerError, err.Error())
}
