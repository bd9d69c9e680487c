package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CheckPromissory: çek/senet kaydı. Tahsilat ayrı bir aksiyondur,
// tahsil edilene kadar kasa bakiyesine dokunulmaz.
type CheckPromissory struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	CompanyID     uint            `gorm:"index;not null" json:"company_id"`
	CariID        uint            `gorm:"index;not null" json:"cari_id"`
	TransactionID uint            `gorm:"index;not null" json:"transaction_id"`
	Amount        decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"amount"`
	Currency      Currency        `gorm:"size:8;not null;default:'EUR'" json:"currency"`
	CheckNumber   string          `gorm:"size:50" json:"check_number"`
	DueDate       time.Time       `gorm:"index;not null" json:"due_date"` // vade
	IsCollected   bool            `gorm:"default:false;index" json:"is_collected"`
	CollectedAt   *time.Time      `json:"collected_at"`
	CashAccountID *uint           `json:"cash_account_id"` // tahsil edilen kasa
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
