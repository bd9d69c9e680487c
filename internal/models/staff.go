package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PayrollPaymentType string

const (
	PayrollSalary  PayrollPaymentType = "salary"  // maaş
	PayrollAdvance PayrollPaymentType = "advance" // avans
)

// Staff: personel kaydı. Her personelin ödemelerinin işlendiği bir cari
// hesabı vardır.
type Staff struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	CompanyID     uint            `gorm:"index;not null" json:"company_id"`
	CariAccountID uint            `gorm:"index;not null" json:"cari_account_id"`
	FullName      string          `gorm:"size:150;not null" json:"full_name"`
	Position      string          `gorm:"size:100" json:"position"`
	MonthlySalary decimal.Decimal `gorm:"type:numeric(20,2);default:0" json:"monthly_salary"`
	Currency      Currency        `gorm:"size:8;not null;default:'TRY'" json:"currency"`
	IsActive      bool            `gorm:"default:true" json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// PayrollPayment: maaş/avans ödemesi. Personel carisine expense
// Transaction olarak işlenir.
type PayrollPayment struct {
	ID            uint               `gorm:"primaryKey" json:"id"`
	CompanyID     uint               `gorm:"index;not null" json:"company_id"`
	StaffID       uint               `gorm:"index;not null" json:"staff_id"`
	TransactionID uint               `gorm:"index" json:"transaction_id"`
	PaymentType   PayrollPaymentType `gorm:"size:10;not null" json:"payment_type"`
	Amount        decimal.Decimal    `gorm:"type:numeric(20,2);not null" json:"amount"`
	Currency      Currency           `gorm:"size:8;not null;default:'TRY'" json:"currency"`
	Date          string             `gorm:"size:10;index;not null" json:"date"`
	Description   string             `gorm:"size:500" json:"description"`
	CreatedBy     uint               `json:"created_by"`
	CreatedAt     time.Time          `json:"created_at"`
}
