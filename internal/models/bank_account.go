package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BankAccount: banka hesabı tanımı. Kredi kartı tahsilatlarında komisyon
// oranı ve valör gün sayısı buradan okunur.
type BankAccount struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	CompanyID      uint            `gorm:"index;not null" json:"company_id"`
	Name           string          `gorm:"size:100;not null" json:"name"` // örn: "Ziraat Bankası"
	IBAN           string          `gorm:"size:50" json:"iban"`
	Currency       Currency        `gorm:"size:8;not null;default:'EUR'" json:"currency"`
	CommissionRate decimal.Decimal `gorm:"type:numeric(10,4);default:0" json:"commission_rate"` // yüzde
	ValorDays      int             `gorm:"default:0" json:"valor_days"`
	IsActive       bool            `gorm:"default:true" json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
