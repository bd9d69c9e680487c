package notification

import (
	"acenta-backend/internal/auth"
	"acenta-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type Handler struct {
	db *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// GET /api/notifications
func (h *Handler) List() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := auth.CompanyID(c)
		if err != nil {
			return err
		}
		userID := auth.UserID(c)

		var items []models.Notification
		q := h.db.Where("company_id = ? AND user_id = ?", companyID, userID)
		if c.Query("unread") == "true" {
			q = q.Where("is_read = ?", false)
		}
		if err := q.Order("created_at DESC").Limit(100).Find(&items).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Bildirimler listelenemedi")
		}
		return c.JSON(items)
	}
}

// PUT /api/notifications/:id/read
func (h *Handler) MarkRead() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, err := auth.CompanyID(c)
		if err != nil {
			return err
		}
		userID := auth.UserID(c)

		res := h.db.Model(&models.Notification{}).
			Where("id = ? AND company_id = ? AND user_id = ?", c.Params("id"), companyID, userID).
			Update("is_read", true)
		if res.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Bildirim güncellenemedi")
		}
		if res.RowsAffected == 0 {
			return fiber.NewError(fiber.StatusNotFound, "Bildirim bulunamadı")
		}
		return c.JSON(fiber.Map{"message": "Bildirim okundu olarak işaretlendi"})
	}
}
