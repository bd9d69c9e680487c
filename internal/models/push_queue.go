package models

import "time"

type QueueStatus string

const (
	QueueStatusQueued     QueueStatus = "queued"
	QueueStatusProcessing QueueStatus = "processing"
	QueueStatusSent       QueueStatus = "sent"
	QueueStatusFailed     QueueStatus = "failed"
	QueueStatusCancelled  QueueStatus = "cancelled"
)

const PushMaxAttempts = 5

// HotelReservationPushQueue: başarısız push denemeleri için retry kuyruğu.
// sent ve failed terminal durumlardır.
type HotelReservationPushQueue struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	HotelID       uint        `gorm:"index;not null" json:"hotel_id"`
	ReservationID uint        `gorm:"index;not null" json:"reservation_id"`
	CompanyID     uint        `gorm:"index;not null" json:"company_id"`
	Payload       string      `gorm:"type:jsonb" json:"payload"` // rezervasyon anlık görüntüsü
	PushMethod    PushMethod  `gorm:"size:10;not null" json:"push_method"`
	AttemptCount  int         `gorm:"default:0" json:"attempt_count"`
	MaxAttempts   int         `gorm:"default:5" json:"max_attempts"`
	LastAttemptAt *time.Time  `json:"last_attempt_at"`
	NextRetryAt   *time.Time  `gorm:"index" json:"next_retry_at"`
	Status        QueueStatus `gorm:"size:12;index;default:'queued'" json:"status"`
	Error         string      `gorm:"size:500" json:"error"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// HotelReservationPushLog: append-only push deneme günlüğü.
type HotelReservationPushLog struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	HotelID        uint       `gorm:"index;not null" json:"hotel_id"`
	ReservationID  uint       `gorm:"index;not null" json:"reservation_id"`
	CompanyID      uint       `gorm:"index;not null" json:"company_id"`
	Method         PushMethod `gorm:"size:10;not null" json:"method"`
	RequestPayload string     `gorm:"type:jsonb" json:"request_payload"`
	ResponseCode   *int       `json:"response_code"`
	ResponseBody   string     `gorm:"size:1000" json:"response_body"`
	Success        bool       `gorm:"index" json:"success"`
	ErrorMessage   string     `gorm:"size:500" json:"error_message"`
	CreatedAt      time.Time  `json:"created_at"`
}
