package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ReservationStatus string

const (
	ReservationConfirmed       ReservationStatus = "confirmed"
	ReservationCancelled       ReservationStatus = "cancelled"
	ReservationCompleted       ReservationStatus = "completed"
	ReservationPendingApproval ReservationStatus = "pending_approval" // cari panel başvurusu
	ReservationApproved        ReservationStatus = "approved"
	ReservationRejected        ReservationStatus = "rejected"
)

// Reservation: tur rezervasyonu. Aktifken cari hesapta tam olarak bir
// debit Transaction'a sahiptir.
type Reservation struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	CompanyID    uint   `gorm:"index;not null" json:"company_id"`
	CariID       uint   `gorm:"index;not null" json:"cari_id"`
	CariName     string `gorm:"size:150" json:"cari_name"`
	Date         string `gorm:"size:10;index;not null" json:"date"` // YYYY-MM-DD
	Time         string `gorm:"size:5" json:"time"`                 // HH:MM
	TourTypeID   *uint  `json:"tour_type_id"`
	TourTypeName string `gorm:"size:100" json:"tour_type_name"`
	CustomerName string `gorm:"size:150;not null" json:"customer_name"`
	PersonCount  int    `gorm:"default:1" json:"person_count"`
	ATVCount     int    `gorm:"default:1" json:"atv_count"`

	PickupLocation string `gorm:"size:255" json:"pickup_location"`
	PickupMapsLink string `gorm:"size:500" json:"pickup_maps_link"`
	PickupTime     string `gorm:"size:5" json:"pickup_time"`

	Price    decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"price"`
	Currency Currency        `gorm:"size:8;not null;default:'EUR'" json:"currency"`

	VoucherCode string            `gorm:"size:20;index" json:"voucher_code"`
	Status      ReservationStatus `gorm:"size:20;index;default:'confirmed'" json:"status"`

	// Cari panel başvuruları
	SubmittedByCariID *uint   `json:"submitted_by_cari_id"`
	CariCodeSnapshot  *string `gorm:"size:32" json:"cari_code_snapshot"`

	// İptal / no-show
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
