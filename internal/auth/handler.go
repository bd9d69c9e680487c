package auth

import (
	"crypto/rand"
	"encoding/hex"
	"strings"

	"acenta-backend/internal/config"
	"acenta-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Handler struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewHandler(db *gorm.DB, cfg *config.Config) *Handler {
	return &Handler{db: db, cfg: cfg}
}

type RegisterCompanyRequest struct {
	CompanyName   string `json:"company_name"`
	AdminUsername string `json:"admin_username"`
	AdminPassword string `json:"admin_password"`
	AdminFullName string `json:"admin_full_name"`
	AdminEmail    string `json:"admin_email"`
}

type LoginRequest struct {
	CompanyCode string `json:"company_code"`
	Username    string `json:"username"`
	Password    string `json:"password"`
}

type CariLoginRequest struct {
	CariCode string `json:"cari_code"`
	Password string `json:"password"`
}

// POST /api/auth/register
func (h *Handler) RegisterCompany() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RegisterCompanyRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.CompanyName == "" || body.AdminUsername == "" || body.AdminPassword == "" {
			return fiber.NewError(fiber.StatusBadRequest, "company_name, admin_username ve admin_password zorunlu")
		}

		var existing models.User
		if err := h.db.First(&existing, "username = ?", body.AdminUsername).Error; err == nil {
			return fiber.NewError(fiber.StatusBadRequest, "Bu kullanıcı adı zaten kullanılıyor")
		}

		// Benzersiz firma kodu üret
		companyCode := generateCode(4)
		for {
			var count int64
			h.db.Model(&models.Company{}).Where("company_code = ?", companyCode).Count(&count)
			if count == 0 {
				break
			}
			companyCode = generateCode(4)
		}

		company := models.Company{
			CompanyCode: companyCode,
			CompanyName: body.CompanyName,
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.AdminPassword), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Şifre oluşturulamadı")
		}

		err = h.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&company).Error; err != nil {
				return err
			}
			admin := models.User{
				CompanyID:    company.ID,
				Username:     body.AdminUsername,
				Email:        body.AdminEmail,
				FullName:     body.AdminFullName,
				PasswordHash: string(hash),
				IsAdmin:      true,
			}
			return tx.Create(&admin).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Firma oluşturulamadı")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message":      "Firma kaydı tamamlandı",
			"company_code": company.CompanyCode,
			"company_name": company.CompanyName,
		})
	}
}

// POST /api/auth/login
func (h *Handler) Login() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		var company models.Company
		if err := h.db.First(&company, "company_code = ?", strings.ToUpper(body.CompanyCode)).Error; err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Firma kodu geçersiz")
		}

		var user models.User
		if err := h.db.First(&user, "company_id = ? AND username = ?", company.ID, body.Username).Error; err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Kullanıcı adı veya şifre hatalı")
		}

		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)) != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Kullanıcı adı veya şifre hatalı")
		}

		token, err := GenerateUserToken(h.cfg.JWTSecret, &user)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Token üretilemedi")
		}

		return c.JSON(fiber.Map{
			"access_token": token,
			"token_type":   "bearer",
			"user": fiber.Map{
				"id":        user.ID,
				"username":  user.Username,
				"full_name": user.FullName,
				"is_admin":  user.IsAdmin,
			},
			"company": fiber.Map{
				"id":   company.ID,
				"name": company.CompanyName,
				"code": company.CompanyCode,
			},
		})
	}
}

// POST /api/auth/cari-login — cari panel girişi
func (h *Handler) CariLogin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CariLoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		var cari models.Cari
		if err := h.db.First(&cari, "cari_code = ? AND is_active = ?", strings.ToUpper(body.CariCode), true).Error; err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Cari kodu veya şifre hatalı")
		}

		if bcrypt.CompareHashAndPassword([]byte(cari.PasswordHash), []byte(body.Password)) != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Cari kodu veya şifre hatalı")
		}

		token, err := GenerateCariToken(h.cfg.JWTSecret, &cari)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Token üretilemedi")
		}

		return c.JSON(fiber.Map{
			"access_token": token,
			"token_type":   "bearer",
			"cari": fiber.Map{
				"id":              cari.ID,
				"name":            cari.Name,
				"cari_code":       cari.CariCode,
				"cari_account_id": cari.CariAccountID,
			},
		})
	}
}

// GET /api/auth/me
func (h *Handler) Me() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := UserID(c)
		var user models.User
		if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Kullanıcı bulunamadı")
		}
		var company models.Company
		if err := h.db.First(&company, "id = ?", user.CompanyID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Firma bulunamadı")
		}
		return c.JSON(fiber.Map{"user": user, "company": company})
	}
}

// generateCode n baytlık hex kod üretir (firma/cari kodları).
func generateCode(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return strings.ToUpper(hex.EncodeToString([]byte{0, 0, 0, 0}))
	}
	return strings.ToUpper(hex.EncodeToString(b))
}
