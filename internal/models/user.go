package models

import "time"

type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	CompanyID    uint   `gorm:"index;not null" json:"company_id"`
	Company      Company `json:"-"`
	Username     string `gorm:"size:100;uniqueIndex;not null" json:"username"`
	Email        string `gorm:"size:100" json:"email"`
	FullName     string `gorm:"size:150;not null" json:"full_name"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	// Modül bazlı izinler, jsonb: {"tour": {"list": true, "create": false, ...}}
	Permissions string `gorm:"type:jsonb;default:'{}'" json:"permissions"`
	IsAdmin     bool   `gorm:"default:false" json:"is_admin"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
