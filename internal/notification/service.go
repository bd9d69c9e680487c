package notification

import (
	"log"

	"acenta-backend/internal/models"

	"gorm.io/gorm"
)

// Service firma içi bildirimleri yazar. Bildirim hataları çağıran
// operasyonu kesmez.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// NotifyAdmins firmanın tüm admin kullanıcılarına bildirim bırakır.
func (s *Service) NotifyAdmins(companyID uint, title, message, entityType string, entityID uint) {
	var admins []models.User
	if err := s.db.Where("company_id = ? AND is_admin = ?", companyID, true).Find(&admins).Error; err != nil {
		log.Printf("admin kullanıcılar okunamadı: %v", err)
		return
	}

	for _, admin := range admins {
		n := models.Notification{
			CompanyID:  companyID,
			UserID:     admin.ID,
			Title:      title,
			Message:    message,
			EntityType: entityType,
			EntityID:   entityID,
		}
		if err := s.db.Create(&n).Error; err != nil {
			log.Printf("bildirim yazılamadı (user %d): %v", admin.ID, err)
		}
	}
}
