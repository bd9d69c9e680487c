package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentSettlement: bir tahsilatın kasaya geçtiği anın kaydı (valör
// süpürmesi veya çek tahsilatı).
type PaymentSettlement struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	CompanyID     uint            `gorm:"index;not null" json:"company_id"`
	TransactionID uint            `gorm:"uniqueIndex;not null" json:"transaction_id"`
	CashAccountID uint            `gorm:"index;not null" json:"cash_account_id"`
	Amount        decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"amount"` // kasaya geçen net tutar
	Currency      Currency        `gorm:"size:8;not null;default:'EUR'" json:"currency"`
	SettledAt     time.Time       `gorm:"index;not null" json:"settled_at"`
	CreatedAt     time.Time       `json:"created_at"`
}
