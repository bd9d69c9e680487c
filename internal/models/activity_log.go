package models

import "time"

// ActivityLog: fire-and-forget işlem günlüğü. Yazma hataları çağıran
// operasyonu asla kesmez.
type ActivityLog struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	CompanyID   uint   `gorm:"index;not null" json:"company_id"`
	UserID      uint   `gorm:"index" json:"user_id"`
	UserName    string `gorm:"size:150" json:"user_name"` // denormalize
	Action      string `gorm:"size:50;index" json:"action"`
	EntityType  string `gorm:"size:50;index" json:"entity_type"`
	EntityID    uint   `gorm:"index" json:"entity_id"`
	Description string `gorm:"size:500" json:"description"`
	Changes     string `gorm:"type:jsonb" json:"changes"`
	IPAddress   string `gorm:"size:45" json:"ip_address"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}
