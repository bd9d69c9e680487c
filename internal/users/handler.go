package users

import (
	"strings"

	"acenta-backend/internal/audit"
	"acenta-backend/internal/auth"
	"acenta-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Handler firma kullanıcılarının yönetimi (yalnızca admin).
type Handler struct {
	db    *gorm.DB
	audit *audit.Logger
}

func NewHandler(db *gorm.DB, auditLog *audit.Logger) *Handler {
	return &Handler{db: db, audit: auditLog}
}

type userRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	FullName    string `json:"full_name"`
	Password    string `json:"password"`
	Permissions string `json:"permissions"` // jsonb
	IsAdmin     bool   `json:"is_admin"`
}

// GET /api/users
func (h *Handler) List() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := auth.CompanyID(c)
		if err != nil {
			return err
		}

		var items []models.User
		if err := h.db.Where("company_id = ?", companyID).Order("full_name ASC").Find(&items).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kullanıcılar listelenemedi")
		}
		return c.JSON(items)
	}
}

// POST /api/users
func (h *Handler) Create() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := auth.CompanyID(c)
		if err != nil {
			return err
		}

		var req userRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		req.Username = strings.TrimSpace(strings.ToLower(req.Username))
		if req.Username == "" || req.FullName == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Kullanıcı adı ve ad soyad zorunlu")
		}
		if len(req.Password) < 6 {
			return fiber.NewError(fiber.StatusBadRequest, "Şifre en az 6 karakter olmalı")
		}

		var existing int64
		if err := h.db.Model(&models.User{}).Where("username = ?", req.Username).Count(&existing).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı kontrolü yapılamadı")
		}
		if existing > 0 {
			return fiber.NewError(fiber.StatusConflict, "Bu kullanıcı adı zaten kullanılıyor")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Şifre oluşturulamadı")
		}

		user := models.User{
			CompanyID:    companyID,
			Username:     req.Username,
			Email:        req.Email,
			FullName:     req.FullName,
			PasswordHash: string(hash),
			Permissions:  req.Permissions,
			IsAdmin:      req.IsAdmin,
		}
		if user.Permissions == "" {
			user.Permissions = "{}"
		}
		if err := h.db.Create(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı kaydedilemedi")
		}

		h.audit.Write(audit.LogOptions{
			CompanyID: companyID, UserID: auth.UserID(c),
			Action: "create", EntityType: "user", EntityID: user.ID,
			Description: "Kullanıcı oluşturuldu: " + user.Username,
			IPAddress:   c.IP(),
		})
		return c.Status(fiber.StatusCreated).JSON(user)
	}
}

// PUT /api/users/:id
func (h *Handler) Update() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := auth.CompanyID(c)
		if err != nil {
			return err
		}

		var user models.User
		if err := h.db.First(&user, "id = ? AND company_id = ?", c.Params("id"), companyID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Kullanıcı bulunamadı")
		}

		var req userRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if req.FullName != "" {
			user.FullName = req.FullName
		}
		user.Email = req.Email
		if req.Permissions != "" {
			user.Permissions = req.Permissions
		}
		user.IsAdmin = req.IsAdmin
		if req.Password != "" {
			if len(req.Password) < 6 {
				return fiber.NewError(fiber.StatusBadRequest, "Şifre en az 6 karakter olmalı")
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Şifre oluşturulamadı")
			}
			user.PasswordHash = string(hash)
		}

		if err := h.db.Save(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı güncellenemedi")
		}
		return c.JSON(user)
	}
}

// DELETE /api/users/:id
func (h *Handler) Delete() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := auth.CompanyID(c)
		if err != nil {
			return err
		}
		if c.Params("id") == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Kullanıcı id zorunlu")
		}

		var user models.User
		if err := h.db.First(&user, "id = ? AND company_id = ?", c.Params("id"), companyID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Kullanıcı bulunamadı")
		}
		if user.ID == auth.UserID(c) {
			return fiber.NewError(fiber.StatusBadRequest, "Kendi hesabınızı silemezsiniz")
		}

		if err := h.db.Delete(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı silinemedi")
		}

		h.audit.Write(audit.LogOptions{
			CompanyID: companyID, UserID: auth.UserID(c),
			Action: "delete", EntityType: "user", EntityID: user.ID,
			Description: "Kullanıcı silindi: " + user.Username,
			IPAddress:   c.IP(),
		})
		return c.JSON(fiber.Map{"message": "Kullanıcı silindi"})
	}
}
