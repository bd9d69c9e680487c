package models

import "time"

type Company struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	CompanyCode string `gorm:"size:16;uniqueIndex;not null" json:"company_code"` // benzersiz firma kodu
	CompanyName string `gorm:"size:150;not null" json:"company_name"`
	// Modül erişimleri (tour/hotel), jsonb: {"tour": true, "hotel": false}
	ModulesEnabled string `gorm:"type:jsonb;default:'{\"tour\": true, \"hotel\": false}'" json:"modules_enabled"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
