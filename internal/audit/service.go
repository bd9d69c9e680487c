package audit

import (
	"encoding/json"
	"log"

	"acenta-backend/internal/models"

	"gorm.io/gorm"
)

// Logger işlem günlüğü yazar. Yazma hataları loglanır ama asla çağıran
// operasyona döndürülmez.
type Logger struct {
	db *gorm.DB
}

func NewLogger(db *gorm.DB) *Logger {
	return &Logger{db: db}
}

type LogOptions struct {
	CompanyID   uint
	UserID      uint
	UserName    string
	Action      string // create / update / delete / cancel / approve / reject / settle
	EntityType  string
	EntityID    uint
	Description string
	Changes     any
	IPAddress   string
}

func (l *Logger) Write(opts LogOptions) {
	changesStr := "null"
	if opts.Changes != nil {
		if b, err := json.Marshal(opts.Changes); err == nil {
			changesStr = string(b)
		}
	}

	entry := models.ActivityLog{
		CompanyID:   opts.CompanyID,
		UserID:      opts.UserID,
		UserName:    opts.UserName,
		Action:      opts.Action,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Description: opts.Description,
		Changes:     changesStr,
		IPAddress:   opts.IPAddress,
	}

	if err := l.db.Create(&entry).Error; err != nil {
		log.Printf("activity log yazılamadı: %v", err)
	}
}
