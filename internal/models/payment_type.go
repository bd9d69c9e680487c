package models

import "time"

// PaymentType: firma tanımlı ödeme tipi. Code, settlement paketindeki
// kapalı PaymentMethod kümesinden biridir.
type PaymentType struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	CompanyID   uint   `gorm:"index;not null" json:"company_id"`
	Name        string `gorm:"size:100;not null" json:"name"`
	Code        string `gorm:"size:30;not null" json:"code"` // cash, bank_transfer, credit_card, ...
	Description string `gorm:"size:255" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
