package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionDebit   TransactionType = "debit"   // borç (rezervasyon, satış)
	TransactionCredit  TransactionType = "credit"  // alacak (hizmet alımı)
	TransactionPayment TransactionType = "payment" // tahsilat
	TransactionRefund  TransactionType = "refund"  // iade
	TransactionExpense TransactionType = "expense" // gider (maaş/avans)
	TransactionDebt    TransactionType = "debt"    // no-show cezası
)

func (t TransactionType) Valid() bool {
	switch t {
	case TransactionDebit, TransactionCredit, TransactionPayment,
		TransactionRefund, TransactionExpense, TransactionDebt:
		return true
	}
	return false
}

const (
	ReferenceManual          = "manual"
	ReferenceReservation     = "reservation"
	ReferenceExtraSale       = "extra_sale"
	ReferenceServicePurchase = "service_purchase"
	ReferenceNoShowPenalty   = "no_show_penalty"
	ReferencePayroll         = "payroll"
	ReferenceCariTransfer    = "cari_transfer"
)

// Transaction: cari hesaba işlenmiş defter satırı. Tutar her zaman pozitif
// büyüklüktür, yön transaction_type'tan gelir. reference_type "manual"
// olmayan satırlar kaynak belge üzerinden yönetilir, doğrudan düzenlenemez.
type Transaction struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	CompanyID       uint            `gorm:"index;not null" json:"company_id"`
	CariID          uint            `gorm:"index;not null" json:"cari_id"`
	TransactionType TransactionType `gorm:"size:20;not null;index" json:"transaction_type"`
	Amount          decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"amount"`
	Currency        Currency        `gorm:"size:8;not null;default:'EUR'" json:"currency"`
	Description     string          `gorm:"size:500" json:"description"`

	ReferenceID   *uint  `gorm:"index" json:"reference_id"`
	ReferenceType string `gorm:"size:30;index;default:'manual'" json:"reference_type"`

	// Ödeme yöntemi alanları (transaction_type = payment)
	PaymentMethod *string `gorm:"size:30" json:"payment_method"`
	PaymentTypeID *uint   `json:"payment_type_id"`
	BankAccountID *uint   `json:"bank_account_id"`
	CashAccountID *uint   `json:"cash_account_id"`

	// Valör / komisyon (kredi kartı tahsilatları)
	CommissionAmount decimal.Decimal `gorm:"type:numeric(20,2);default:0" json:"commission_amount"`
	NetAmount        decimal.Decimal `gorm:"type:numeric(20,2);default:0" json:"net_amount"`
	ValorDate        *time.Time      `gorm:"index" json:"valor_date"`
	IsSettled        bool            `gorm:"default:false;index" json:"is_settled"`

	// Çek / senet
	DueDate     *time.Time `json:"due_date"`
	CheckNumber string     `gorm:"size:50" json:"check_number"`

	Date      string `gorm:"size:10;index" json:"date"` // YYYY-MM-DD
	CreatedBy uint   `json:"created_by"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
