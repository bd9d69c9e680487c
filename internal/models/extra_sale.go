package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExtraSale: açık satış (tur dışı ürün/hizmet satışı).
type ExtraSale struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	CompanyID       uint   `gorm:"index;not null" json:"company_id"`
	CariID          uint   `gorm:"index;not null" json:"cari_id"`
	CariName        string `gorm:"size:150" json:"cari_name"`
	ProductName     string `gorm:"size:150;not null" json:"product_name"`
	CustomerName    string `gorm:"size:150" json:"customer_name"`
	CustomerContact string `gorm:"size:100" json:"customer_contact"`
	PickupLocation  string `gorm:"size:255" json:"pickup_location"`
	Date            string `gorm:"size:10;index;not null" json:"date"`
	Time            string `gorm:"size:5" json:"time"`

	SalePrice     decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"sale_price"`
	PurchasePrice decimal.Decimal `gorm:"type:numeric(20,2);default:0" json:"purchase_price"`
	Currency      Currency        `gorm:"size:8;not null;default:'EUR'" json:"currency"`

	SupplierID   *uint  `json:"supplier_id"` // tedarikçi cari
	SupplierName string `gorm:"size:150" json:"supplier_name"`

	VoucherCode string            `gorm:"size:20;index" json:"voucher_code"`
	Status      ReservationStatus `gorm:"size:20;index;default:'confirmed'" json:"status"`

	CancellationReason string           `gorm:"size:500" json:"cancellation_reason"`
	CancelledAt        *time.Time       `json:"cancelled_at"`
	NoShowApplied      bool             `gorm:"default:false" json:"no_show_applied"`
	NoShowAmount       *decimal.Decimal `gorm:"type:numeric(20,2)" json:"no_show_amount"`
	NoShowCurrency     *Currency        `gorm:"size:8" json:"no_show_currency"`

	Notes     string `gorm:"size:1000" json:"notes"`
	CreatedBy uint   `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
