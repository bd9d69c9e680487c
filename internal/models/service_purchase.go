package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ServicePurchase: tedarikçiden hizmet alımı. Aktifken tedarikçi carisinde
// bir credit Transaction'a sahiptir.
type ServicePurchase struct {
	ID                 uint            `gorm:"primaryKey" json:"id"`
	CompanyID          uint            `gorm:"index;not null" json:"company_id"`
	SupplierID         uint            `gorm:"index;not null" json:"supplier_id"` // cari_id
	SupplierName       string          `gorm:"size:150" json:"supplier_name"`
	ServiceDescription string          `gorm:"size:500;not null" json:"service_description"`
	Amount             decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"amount"`
	Currency           Currency        `gorm:"size:8;not null;default:'EUR'" json:"currency"`
	Date               string          `gorm:"size:10;index;not null" json:"date"`
	Notes              string          `gorm:"size:1000" json:"notes"`
	CreatedBy          uint            `json:"created_by"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}
