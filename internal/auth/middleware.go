package auth

import (
	"encoding/json"
	"fmt"
	"strings"

	"acenta-backend/internal/config"
	"acenta-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

const (
	CtxPrincipalKey     = "principal"
	CtxUserIDKey        = "user_id"
	CtxCompanyIDKey     = "company_id"
	CtxIsAdminKey       = "is_admin"
	CtxCariIDKey        = "cari_id"
	CtxCariAccountIDKey = "cari_account_id"
)

func JWTMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Authorization header eksik")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return fiber.NewError(fiber.StatusUnauthorized, "Authorization formatı 'Bearer <token>' olmalı")
		}

		token, err := jwt.ParseWithClaims(parts[1], &JWTCustomClaims{}, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("geçersiz imzalama yöntemi")
			}
			return []byte(cfg.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			return fiber.NewError(fiber.StatusUnauthorized, "Geçersiz veya süresi dolmuş token")
		}

		claims, ok := token.Claims.(*JWTCustomClaims)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Token çözümlenemedi")
		}

		c.Locals(CtxPrincipalKey, claims.Principal)
		c.Locals(CtxCompanyIDKey, claims.CompanyID)
		c.Locals(CtxUserIDKey, claims.UserID)
		c.Locals(CtxIsAdminKey, claims.IsAdmin)
		c.Locals(CtxCariIDKey, claims.CariID)
		c.Locals(CtxCariAccountIDKey, claims.CariAccountID)

		return c.Next()
	}
}

// RequireUser yalnızca firma kullanıcısı token'larını kabul eder.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if p, _ := c.Locals(CtxPrincipalKey).(string); p != PrincipalUser {
			return fiber.NewError(fiber.StatusForbidden, "Bu işlem için kullanıcı girişi gerekli")
		}
		return c.Next()
	}
}

// RequireCari yalnızca cari panel token'larını kabul eder.
func RequireCari() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if p, _ := c.Locals(CtxPrincipalKey).(string); p != PrincipalCari {
			return fiber.NewError(fiber.StatusForbidden, "Bu işlem için cari girişi gerekli")
		}
		return c.Next()
	}
}

func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		isAdmin, _ := c.Locals(CtxIsAdminKey).(bool)
		if !isAdmin {
			return fiber.NewError(fiber.StatusForbidden, "Bu işlem için yetkiniz yok")
		}
		return c.Next()
	}
}

// RequireModule firmanın ilgili modüle (tour/hotel) erişimi olduğunu
// doğrular.
func RequireModule(db *gorm.DB, moduleName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, ok := c.Locals(CtxCompanyIDKey).(uint)
		if !ok || companyID == 0 {
			return fiber.NewError(fiber.StatusForbidden, "Firma bilgisi alınamadı")
		}

		var company models.Company
		if err := db.First(&company, "id = ?", companyID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Firma bulunamadı")
		}

		enabled := map[string]bool{}
		if company.ModulesEnabled != "" {
			_ = json.Unmarshal([]byte(company.ModulesEnabled), &enabled)
		}
		if !enabled[moduleName] {
			return fiber.NewError(fiber.StatusForbidden,
				fmt.Sprintf("'%s' modülü firmanız için aktif değil", moduleName))
		}

		return c.Next()
	}
}

// CompanyID context'ten firma id'sini çeker.
func CompanyID(c *fiber.Ctx) (uint, error) {
	id, ok := c.Locals(CtxCompanyIDKey).(uint)
	if !ok || id == 0 {
		return 0, fiber.NewError(fiber.StatusForbidden, "Firma bilgisi alınamadı")
	}
	return id, nil
}

func UserID(c *fiber.Ctx) uint {
	id, _ := c.Locals(CtxUserIDKey).(uint)
	return id
}

func CariID(c *fiber.Ctx) uint {
	id, _ := c.Locals(CtxCariIDKey).(uint)
	return id
}

func CariAccountID(c *fiber.Ctx) uint {
	id, _ := c.Locals(CtxCariAccountIDKey).(uint)
	return id
}
