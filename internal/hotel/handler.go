package hotel

import (
	"acenta-backend/internal/audit"
	"acenta-backend/internal/auth"
	"acenta-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Handler struct {
	db    *gorm.DB
	push  *PushService
	sync  *SyncService
	audit *audit.Logger
}

func NewHandler(db *gorm.DB, push *PushService, sync *SyncService, auditLog *audit.Logger) *Handler {
	return &Handler{db: db, push: push, sync: sync, audit: auditLog}
}

type hotelRequest struct {
	Name           string            `json:"name"`
	Address        string            `json:"address"`
	City           string            `json:"city"`
	Country        string            `json:"country"`
	Phone          string            `json:"phone"`
	Email          string            `json:"email"`
	Website        string            `json:"website"`
	ICSURL         string            `json:"ics_url"`
	ICSSyncEnabled bool              `json:"ics_sync_enabled"`
	PushMethod     models.PushMethod `json:"push_method"`
	PushEndpoint   string            `json:"push_endpoint"`
	PushAPIKey     string            `json:"push_api_key"`
	PushEmail      string            `json:"push_email"`
	IsActive       bool              `json:"is_active"`
}

// POST /api/hotels
func (h *Handler) CreateHotel() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := auth.CompanyID(c)
		if err != nil {
			return err
		}

		var req hotelRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if req.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Otel adı zorunlu")
		}
		if req.PushMethod != "" && !req.PushMethod.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz push yöntemi (ics/json/email)")
		}

		hotel := models.Hotel{
			CompanyID:      companyID,
			Name:           req.Name,
			Address:        req.Address,
			City:           req.City,
			Country:        req.Country,
			Phone:          req.Phone,
			Email:          req.Email,
			Website:        req.Website,
			ICSURL:         req.ICSURL,
			ICSSyncEnabled: req.ICSSyncEnabled,
			PushMethod:     req.PushMethod,
			PushEndpoint:   req.PushEndpoint,
			PushAPIKey:     req.PushAPIKey,
			PushEmail:      req.PushEmail,
			IsActive:       true,
		}
		if hotel.PushMethod == "" {
			hotel.PushMethod = models.PushMethodJSON
		}
		if err := h.db.Create(&hotel).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Otel kaydedilemedi")
		}

		h.audit.Write(audit.LogOptions{
			CompanyID: companyID, UserID: auth.UserID(c),
			Action: "create", EntityType: "hotel", EntityID: hotel.ID,
			IPAddress: c.IP(),
		})
		return c.Status(fiber.StatusCreated).JSON(hotel)
	}
}

// PUT /api/hotels/:id
func (h *Handler) UpdateHotel() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := auth.CompanyID(c)
		if err != nil {
			return err
		}

		var hotel models.Hotel
		if err := h.db.First(&hotel, "id = ? AND company_id = ?", c.Params("id"), companyID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Otel bulunamadı")
		}

		var req hotelRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if req.PushMethod != "" && !req.PushMethod.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz push yöntemi (ics/json/email)")
		}

		hotel.Name = req.Name
		hotel.Address = req.Address
		hotel.City = req.City
		hotel.Country = req.Country
		hotel.Phone = req.Phone
		hotel.Email = req.Email
		hotel.Website = req.Website
		hotel.ICSURL = req.ICSURL
		hotel.ICSSyncEnabled = req.ICSSyncEnabled
		if req.PushMethod != "" {
			hotel.PushMethod = req.PushMethod
		}
		hotel.PushEndpoint = req.PushEndpoint
		if req.PushAPIKey != "" {
			hotel.PushAPIKey = req.PushAPIKey
		}
		hotel.PushEmail = req.PushEmail
		hotel.IsActive = req.IsActive
		if err := h.db.Save(&hotel).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Otel güncellenemedi")
		}

		return c.JSON(hotel)
	}
}

// GET /api/hotels
func (h *Handler) ListHotels() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := auth.CompanyID(c)
		if err != nil {
			return err
		}

		var hotels []models.Hotel
		if err := h.db.Where("company_id = ?", companyID).Order("name ASC").Find(&hotels).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Oteller listelenemedi")
		}
		return c.JSON(hotels)
	}
}

type roomRequest struct {
	HotelID      uint   `json:"hotel_id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	MaxOccupancy int    `json:"max_occupancy"`
	RoomCount    int    `json:"room_count"`
	IsActive     bool   `json:"is_active"`
}

// POST /api/hotels/rooms
func (h *Handler) CreateRoom() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := auth.CompanyID(c)
		if err != nil {
			return err
		}

		var req roomRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if req.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Oda adı zorunlu")
		}

		var hotel models.Hotel
		if err := h.db.First(&hotel, "id = ? AND company_id = ?", req.HotelID, companyID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Otel bulunamadı")
		}

		room := models.HotelRoom{
			HotelID:      hotel.ID,
			CompanyID:    companyID,
			Name:         req.Name,
			Description:  req.Description,
			MaxOccupancy: req.MaxOccupancy,
			RoomCount:    req.RoomCount,
			IsActive:     true,
		}
		if err := h.db.Create(&room).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Oda kaydedilemedi")
		}
		return c.Status(fiber.StatusCreated).JSON(room)
	}
}

// GET /api/hotels/:id/rooms
func (h *Handler) ListRooms() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := auth.CompanyID(c)
		if err != nil {
			return err
		}

		var rooms []models.HotelRoom
		if err := h.db.Where("company_id = ? AND hotel_id = ?", companyID, c.Params("id")).
			Order("name ASC").Find(&rooms).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Odalar listelenemedi")
		}
		return c.JSON(rooms)
	}
}

type hotelReservationRequest struct {
	HotelID       uint            `json:"hotel_id"`
	RoomID        uint            `json:"room_id"`
	CustomerName  string          `json:"customer_name"`
	CustomerEmail string          `json:"customer_email"`
	CustomerPhone string          `json:"customer_phone"`
	CheckinDate   string          `json:"checkin_date"`
	CheckoutDate  string          `json:"checkout_date"`
	GuestCount    int             `json:"guest_count"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	Currency      string          `json:"currency"`
	Notes         string          `json:"notes"`
}

// POST /api/hotels/reservations
//
// Rezervasyon kaydedildikten sonra otel push'u senkron denenir; hata
// alınırsa kuyruğa düşer, istek her durumda başarıyla döner.
func (h *Handler) CreateReservation() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := auth.CompanyID(c)
		if err != nil {
			return err
		}

		var req hotelReservationRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if req.CustomerName == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Misafir adı zorunlu")
		}
		if req.CheckinDate == "" || req.CheckoutDate == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Giriş ve çıkış tarihleri zorunlu")
		}
		currency := models.Currency(req.Currency)
		if req.Currency != "" && !currency.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz para birimi (EUR/USD/TRY)")
		}

		var hotel models.Hotel
		if err := h.db.First(&hotel, "id = ? AND company_id = ?", req.HotelID, companyID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Otel bulunamadı")
		}

		reservation := models.HotelReservation{
			HotelID:       hotel.ID,
			CompanyID:     companyID,
			RoomID:        req.RoomID,
			CustomerName:  req.CustomerName,
			CustomerEmail: req.CustomerEmail,
			CustomerPhone: req.CustomerPhone,
			CheckinDate:   req.CheckinDate,
			CheckoutDate:  req.CheckoutDate,
			GuestCount:    req.GuestCount,
			TotalPrice:    req.TotalPrice,
			Currency:      currency,
			Status:        "confirmed",
			PushStatus:    models.PushStatusPending,
			Notes:         req.Notes,
		}
		if reservation.Currency == "" {
			reservation.Currency = models.CurrencyEUR
		}
		if err := h.db.Create(&reservation).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Rezervasyon kaydedilemedi")
		}

		h.push.Dispatch(reservation.ID)

		h.audit.Write(audit.LogOptions{
			CompanyID: companyID, UserID: auth.UserID(c),
			Action: "create", EntityType: "hotel_reservation", EntityID: reservation.ID,
			IPAddress: c.IP(),
		})

		// Push sonucu rezervasyonun güncel halinde
		h.db.First(&reservation, reservation.ID)
		return c.Status(fiber.StatusCreated).JSON(reservation)
	}
}

// GET /api/hotels/:id/reservations
func (h *Handler) ListReservations() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := auth.CompanyID(c)
		if err != nil {
			return err
		}

		q := h.db.Where("company_id = ? AND hotel_id = ?", companyID, c.Params("id"))
		if status := c.Query("push_status"); status != "" {
			q = q.Where("push_status = ?", status)
		}

		var items []models.HotelReservation
		if err := q.Order("checkin_date DESC").Limit(500).Find(&items).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Rezervasyonlar listelenemedi")
		}
		return c.JSON(items)
	}
}

// DELETE /api/hotels/reservations/:id
func (h *Handler) DeleteReservation() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := auth.CompanyID(c)
		if err != nil {
			return err
		}

		var reservation models.HotelReservation
		if err := h.db.First(&reservation, "id = ? AND company_id = ?", c.Params("id"), companyID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Rezervasyon bulunamadı")
		}

		h.push.CancelPending(reservation.ID)
		if err := h.db.Delete(&reservation).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Rezervasyon silinemedi")
		}

		h.audit.Write(audit.LogOptions{
			CompanyID: companyID, UserID: auth.UserID(c),
			Action: "delete", EntityType: "hotel_reservation", EntityID: reservation.ID,
			IPAddress: c.IP(),
		})
		return c.JSON(fiber.Map{"message": "Rezervasyon silindi"})
	}
}

// GET /api/hotels/push-queue?status=
func (h *Handler) ListQueue() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := auth.CompanyID(c)
		if err != nil {
			return err
		}

		q := h.db.Where("company_id = ?", companyID)
		if status := c.Query("status"); status != "" {
			q = q.Where("status = ?", status)
		}

		var items []models.HotelReservationPushQueue
		if err := q.Order("created_at DESC").Limit(200).Find(&items).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kuyruk listelenemedi")
		}
		return c.JSON(items)
	}
}

// POST /api/hotels/push-queue/:id/retry
func (h *Handler) RetryQueueItem() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := auth.CompanyID(c)
		if err != nil {
			return err
		}

		queueID, err := c.ParamsInt("id")
		if err != nil || queueID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz kuyruk id")
		}

		item, err := h.push.RetryNow(companyID, uint(queueID))
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return fiber.NewError(fiber.StatusNotFound, "Kuyruk kaydı bulunamadı")
			}
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.JSON(item)
	}
}

// GET /api/hotels/reservations/:id/push-logs
func (h *Handler) ListPushLogs() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := auth.CompanyID(c)
		if err != nil {
			return err
		}

		var logs []models.HotelReservationPushLog
		if err := h.db.Where("company_id = ? AND reservation_id = ?", companyID, c.Params("id")).
			Order("created_at DESC").Limit(100).Find(&logs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Push günlükleri listelenemedi")
		}
		return c.JSON(logs)
	}
}

// GET /api/hotels/:id/calendar?from=&to=
//
// Otelin kendi rezervasyonlarını ve dış ICS kaynağından senkronlanan
// etkinlikleri tek takvim görünümünde döndürür.
func (h *Handler) Calendar() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := auth.CompanyID(c)
		if err != nil {
			return err
		}

		resQ := h.db.Where("company_id = ? AND hotel_id = ?", companyID, c.Params("id"))
		evQ := h.db.Where("company_id = ? AND hotel_id = ?", companyID, c.Params("id"))
		if from := c.Query("from"); from != "" {
			resQ = resQ.Where("checkout_date >= ?", from)
			evQ = evQ.Where("dt_end >= ?", from)
		}
		if to := c.Query("to"); to != "" {
			resQ = resQ.Where("checkin_date <= ?", to)
			evQ = evQ.Where("dt_start <= ?", to)
		}

		var reservations []models.HotelReservation
		if err := resQ.Order("checkin_date ASC").Limit(500).Find(&reservations).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Takvim okunamadı")
		}
		var events []models.HotelICSEvent
		if err := evQ.Order("dt_start ASC").Limit(500).Find(&events).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Takvim okunamadı")
		}

		return c.JSON(fiber.Map{
			"reservations": reservations,
			"ics_events":   events,
		})
	}
}

// POST /api/hotels/:id/sync
func (h *Handler) SyncICS() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := auth.CompanyID(c)
		if err != nil {
			return err
		}

		hotelID, err := c.ParamsInt("id")
		if err != nil || hotelID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz otel id")
		}

		var hotel models.Hotel
		if err := h.db.First(&hotel, "id = ? AND company_id = ?", hotelID, companyID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Otel bulunamadı")
		}

		created, err := h.sync.SyncHotel(hotel.ID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadGateway, err.Error())
		}
		return c.JSON(fiber.Map{"created": created, "message": "Takvim senkronize edildi"})
	}
}
