package models

import "time"

type Notification struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	CompanyID  uint   `gorm:"index;not null" json:"company_id"`
	UserID     uint   `gorm:"index;not null" json:"user_id"`
	Title      string `gorm:"size:150;not null" json:"title"`
	Message    string `gorm:"size:500" json:"message"`
	EntityType string `gorm:"size:50" json:"entity_type"`
	EntityID   uint   `json:"entity_id"`
	IsRead     bool   `gorm:"default:false;index" json:"is_read"`
	CreatedAt  time.Time `json:"created_at"`
}
