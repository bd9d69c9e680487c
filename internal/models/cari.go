package models

import "time"

// Cari: cari panel giriş kimliği. CariAccount'tan ayrı bir koleksiyondur;
// cari_code üzerinden 1:1 bağlıdır.
type Cari struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	CompanyID     uint   `gorm:"index;not null" json:"company_id"`
	CariAccountID uint   `gorm:"index;not null" json:"cari_account_id"`
	CariAccount   CariAccount `json:"-"`
	CariCode      string `gorm:"size:32;uniqueIndex;not null" json:"cari_code"`
	Name          string `gorm:"size:150;not null" json:"name"`
	PasswordHash  string `gorm:"size:255;not null" json:"-"`
	IsActive      bool   `gorm:"default:true" json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
