package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PushMethod string

const (
	PushMethodICS   PushMethod = "ics"
	PushMethodJSON  PushMethod = "json"
	PushMethodEmail PushMethod = "email"
)

func (m PushMethod) Valid() bool {
	switch m {
	case PushMethodICS, PushMethodJSON, PushMethodEmail:
		return true
	}
	return false
}

type Hotel struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	CompanyID uint   `gorm:"index;not null" json:"company_id"`
	Name      string `gorm:"size:150;not null" json:"name"`
	Address   string `gorm:"size:500" json:"address"`
	City      string `gorm:"size:100" json:"city"`
	Country   string `gorm:"size:100" json:"country"`
	Phone     string `gorm:"size:50" json:"phone"`
	Email     string `gorm:"size:100" json:"email"`
	Website   string `gorm:"size:255" json:"website"`

	// ICS takvim senkronizasyonu
	ICSURL         string     `gorm:"size:500" json:"ics_url"`
	ICSSyncEnabled bool       `gorm:"default:false" json:"ics_sync_enabled"`
	ICSSyncLastAt  *time.Time `json:"ics_sync_last_at"`

	// Push yapılandırması
	PushMethod   PushMethod `gorm:"size:10;default:'json'" json:"push_method"`
	PushEndpoint string     `gorm:"size:500" json:"push_endpoint"`
	PushAPIKey   string     `gorm:"size:255" json:"-"`
	PushEmail    string     `gorm:"size:100" json:"push_email"`

	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type HotelRoom struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	HotelID      uint   `gorm:"index;not null" json:"hotel_id"`
	CompanyID    uint   `gorm:"index;not null" json:"company_id"`
	Name         string `gorm:"size:100;not null" json:"name"` // "Standart Oda", "Deluxe Suit"
	Description  string `gorm:"size:500" json:"description"`
	MaxOccupancy int    `gorm:"default:2" json:"max_occupancy"`
	RoomCount    int    `gorm:"default:1" json:"room_count"`
	IsActive     bool   `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type PushStatus string

const (
	PushStatusPending PushStatus = "pending"
	PushStatusSent    PushStatus = "sent"
	PushStatusQueued  PushStatus = "queued"
	PushStatusFailed  PushStatus = "failed"
)

type HotelReservation struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	HotelID       uint   `gorm:"index;not null" json:"hotel_id"`
	CompanyID     uint   `gorm:"index;not null" json:"company_id"`
	RoomID        uint   `gorm:"index" json:"room_id"`
	CustomerName  string `gorm:"size:150;not null" json:"customer_name"`
	CustomerEmail string `gorm:"size:100" json:"customer_email"`
	CustomerPhone string `gorm:"size:50" json:"customer_phone"`
	CheckinDate   string `gorm:"size:10;index;not null" json:"checkin_date"`
	CheckoutDate  string `gorm:"size:10;not null" json:"checkout_date"`
	GuestCount    int    `gorm:"default:1" json:"guest_count"`

	TotalPrice decimal.Decimal `gorm:"type:numeric(20,2);default:0" json:"total_price"`
	Currency   Currency        `gorm:"size:8;not null;default:'EUR'" json:"currency"`
	Status     string          `gorm:"size:20;index;default:'pending'" json:"status"`

	// Dış ICS kaynağından geldiyse
	ICSEventUID string `gorm:"size:255;index" json:"ics_event_uid"`
	External    bool   `gorm:"default:false" json:"external"`

	PushStatus        PushStatus `gorm:"size:10;default:'pending'" json:"push_status"`
	PushLastAttemptAt *time.Time `json:"push_last_attempt_at"`

	Notes     string    `gorm:"size:1000" json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HotelICSEvent: dış ICS takviminden senkronlanan etkinlik.
type HotelICSEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	HotelID   uint      `gorm:"index;not null" json:"hotel_id"`
	CompanyID uint      `gorm:"index;not null" json:"company_id"`
	EventUID  string    `gorm:"size:255;index;not null" json:"event_uid"`
	Summary   string    `gorm:"size:255" json:"summary"`
	DTStart   time.Time `json:"dtstart"`
	DTEnd     time.Time `json:"dtend"`
	Location  string    `gorm:"size:255" json:"location"`
	Status    string    `gorm:"size:20;default:'confirmed'" json:"status"`
	RawVEvent string    `gorm:"type:text" json:"raw_vevent"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
