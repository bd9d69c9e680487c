package cariaccount

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"strings"

	"acenta-backend/internal/audit"
	"acenta-backend/internal/auth"
	"acenta-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Handler struct {
	db    *gorm.DB
	audit *audit.Logger
}

func NewHandler(db *gorm.DB, auditLog *audit.Logger) *Handler {
	return &Handler{db: db, audit: auditLog}
}

// ensureWalkInAccount firmanın Münferit carisini garanti eder. Cari
// seçilmeden yapılan işlemler bu sentetik hesapta toplanır; hesap
// korumalıdır, silinemez.
func (h *Handler) ensureWalkInAccount(companyID uint) {
	var count int64
	if err := h.db.Model(&models.CariAccount{}).
		Where("company_id = ? AND name = ? AND is_protected = ?", companyID, models.WalkInCariName, true).
		Count(&count).Error; err != nil || count > 0 {
		return
	}

	walkIn := models.CariAccount{
		CompanyID:   companyID,
		Name:        models.WalkInCariName,
		IsProtected: true,
		Notes:       "Cari seçilmeden yapılan işlemler için otomatik oluşturuldu",
	}
	if err := h.db.Create(&walkIn).Error; err != nil {
		log.Printf("Münferit carisi oluşturulamadı (firma %d): %v", companyID, err)
	}
}

type accountRequest struct {
	Name             string `json:"name"`
	AuthorizedPerson string `json:"authorized_person"`
	Phone            string `json:"phone"`
	Email            string `json:"email"`
	Address          string `json:"address"`
	TaxOffice        string `json:"tax_office"`
	TaxNumber        string `json:"tax_number"`
	PickupLocation   string `json:"pickup_location"`
	PickupMapsLink   string `json:"pickup_maps_link"`
	Notes            string `json:"notes"`
}

// GET /api/cari-accounts
func (h *Handler) List() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := auth.CompanyID(c)
		if err != nil {
			return err
		}

		h.ensureWalkInAccount(companyID)

		q := h.db.Where("company_id = ?", companyID)
		if search := c.Query("search"); search != "" {
			q = q.Where("name ILIKE ?", "%"+search+"%")
		}

		var accounts []models.CariAccount
		if err := q.Order("name ASC").Find(&accounts).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cari hesaplar listelenemedi")
		}
		return c.JSON(accounts)
	}
}

// GET /api/cari-accounts/:id — bakiyeler + son işlemler
func (h *Handler) Get() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := auth.CompanyID(c)
		if err != nil {
			return err
		}

		var account models.CariAccount
		if err := h.db.First(&account, "id = ? AND company_id = ?", c.Params("id"), companyID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Cari hesap bulunamadı")
		}

		var transactions []models.Transaction
		if err := h.db.Where("company_id = ? AND cari_id = ?", companyID, account.ID).
			Order("created_at DESC, id DESC").Limit(200).Find(&transactions).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İşlemler okunamadı")
		}

		return c.JSON(fiber.Map{
			"account":      account,
			"transactions": transactions,
		})
	}
}

// POST /api/cari-accounts
func (h *Handler) Create() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := auth.CompanyID(c)
		if err != nil {
			return err
		}

		var req accountRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if strings.TrimSpace(req.Name) == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Cari adı zorunlu")
		}

		account := models.CariAccount{
			CompanyID:        companyID,
			Name:             strings.TrimSpace(req.Name),
			AuthorizedPerson: req.AuthorizedPerson,
			Phone:            req.Phone,
			Email:            req.Email,
			Address:          req.Address,
			TaxOffice:        req.TaxOffice,
			TaxNumber:        req.TaxNumber,
			PickupLocation:   req.PickupLocation,
			PickupMapsLink:   req.PickupMapsLink,
			Notes:            req.Notes,
		}
		if err := h.db.Create(&account).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cari hesap kaydedilemedi")
		}

		h.audit.Write(audit.LogOptions{
			CompanyID: companyID, UserID: auth.UserID(c),
			Action: "create", EntityType: "cari_account", EntityID: account.ID,
			Description: "Cari hesap oluşturuldu: " + account.Name,
			IPAddress:   c.IP(),
		})
		return c.Status(fiber.StatusCreated).JSON(account)
	}
}

// PUT /api/cari-accounts/:id
func (h *Handler) Update() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := auth.CompanyID(c)
		if err != nil {
			return err
		}

		var account models.CariAccount
		if err := h.db.First(&account, "id = ? AND company_id = ?", c.Params("id"), companyID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Cari hesap bulunamadı")
		}

		var req accountRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if strings.TrimSpace(req.Name) == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Cari adı zorunlu")
		}
		if account.IsProtected && strings.TrimSpace(req.Name) != account.Name {
			return fiber.NewError(fiber.StatusBadRequest, "Korumalı carinin adı değiştirilemez")
		}

		account.Name = strings.TrimSpace(req.Name)
		account.AuthorizedPerson = req.AuthorizedPerson
		account.Phone = req.Phone
		account.Email = req.Email
		account.Address = req.Address
		account.TaxOffice = req.TaxOffice
		account.TaxNumber = req.TaxNumber
		account.PickupLocation = req.PickupLocation
		account.PickupMapsLink = req.PickupMapsLink
		account.Notes = req.Notes
		if err := h.db.Save(&account).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cari hesap güncellenemedi")
		}

		return c.JSON(account)
	}
}

// DELETE /api/cari-accounts/:id
func (h *Handler) Delete() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := auth.CompanyID(c)
		if err != nil {
			return err
		}

		var account models.CariAccount
		if err := h.db.First(&account, "id = ? AND company_id = ?", c.Params("id"), companyID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Cari hesap bulunamadı")
		}
		if account.IsProtected {
			return fiber.NewError(fiber.StatusBadRequest, "Korumalı cari hesap silinemez")
		}

		var txCount int64
		if err := h.db.Model(&models.Transaction{}).
			Where("company_id = ? AND cari_id = ?", companyID, account.ID).
			Count(&txCount).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İşlem kontrolü yapılamadı")
		}
		if txCount > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "İşlem geçmişi olan cari silinemez")
		}

		if err := h.db.Delete(&account).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cari hesap silinemedi")
		}

		h.audit.Write(audit.LogOptions{
			CompanyID: companyID, UserID: auth.UserID(c),
			Action: "delete", EntityType: "cari_account", EntityID: account.ID,
			Description: "Cari hesap silindi: " + account.Name,
			IPAddress:   c.IP(),
		})
		return c.JSON(fiber.Map{"message": "Cari hesap silindi"})
	}
}

type panelAccessRequest struct {
	Password string `json:"password"`
}

// POST /api/cari-accounts/:id/panel-access
//
// Cari panel girişi açar: cari_code üretir ve Cari kimliğini oluşturur.
func (h *Handler) EnablePanelAccess() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := auth.CompanyID(c)
		if err != nil {
			return err
		}

		var req panelAccessRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if len(req.Password) < 6 {
			return fiber.NewError(fiber.StatusBadRequest, "Şifre en az 6 karakter olmalı")
		}

		var account models.CariAccount
		if err := h.db.First(&account, "id = ? AND company_id = ?", c.Params("id"), companyID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Cari hesap bulunamadı")
		}
		if account.IsProtected {
			return fiber.NewError(fiber.StatusBadRequest, "Korumalı cari için panel girişi açılamaz")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Şifre oluşturulamadı")
		}

		var cari models.Cari
		err = h.db.Transaction(func(tx *gorm.DB) error {
			code := account.CariCode
			if code == nil {
				generated, err := generateCariCode(tx)
				if err != nil {
					return err
				}
				code = &generated
				account.CariCode = code
				if err := tx.Save(&account).Error; err != nil {
					return err
				}
			}

			err := tx.Where("company_id = ? AND cari_account_id = ?", companyID, account.ID).First(&cari).Error
			if err == gorm.ErrRecordNotFound {
				cari = models.Cari{
					CompanyID:     companyID,
					CariAccountID: account.ID,
					CariCode:      *code,
					Name:          account.Name,
					PasswordHash:  string(hash),
					IsActive:      true,
				}
				return tx.Create(&cari).Error
			}
			if err != nil {
				return err
			}

			cari.PasswordHash = string(hash)
			cari.IsActive = true
			return tx.Save(&cari).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Panel girişi açılamadı")
		}

		return c.JSON(fiber.Map{
			"cari_code": cari.CariCode,
			"message":   "Cari panel girişi aktif",
		})
	}
}

func generateCariCode(tx *gorm.DB) (string, error) {
	for attempt := 0; attempt < 10; attempt++ {
		raw := make([]byte, 4)
		if _, err := rand.Read(raw); err != nil {
			return "", err
		}
		code := "C" + strings.ToUpper(hex.EncodeToString(raw))

		var count int64
		if err := tx.Model(&models.Cari{}).Where("cari_code = ?", code).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return code, nil
		}
	}
	return "", fiber.NewError(fiber.StatusInternalServerError, "Benzersiz cari kodu üretilemedi")
}
