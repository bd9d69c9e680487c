package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type CashAccountType string

const (
	CashAccountCash       CashAccountType = "cash"         // nakit kasa
	CashAccountBank       CashAccountType = "bank_account" // banka hesabı
	CashAccountCreditCard CashAccountType = "credit_card"  // kredi kartı havuzu
)

func (t CashAccountType) Valid() bool {
	switch t {
	case CashAccountCash, CashAccountBank, CashAccountCreditCard:
		return true
	}
	return false
}

// CashAccount: şirket içi likidite havuzu. current_balance yalnızca
// valörü dolmuş (settle edilmiş) fonları yansıtır.
type CashAccount struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	CompanyID      uint            `gorm:"index;not null" json:"company_id"`
	AccountType    CashAccountType `gorm:"size:20;not null" json:"account_type"`
	Name           string          `gorm:"size:100;not null" json:"name"`
	Currency       Currency        `gorm:"size:8;not null;default:'EUR'" json:"currency"`
	CurrentBalance decimal.Decimal `gorm:"type:numeric(20,2);default:0" json:"current_balance"`
	BankAccountID  *uint           `json:"bank_account_id"` // banka alt hesabı ise
	IsActive       bool            `gorm:"default:true" json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
