package hotel

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"acenta-backend/internal/config"
	"acenta-backend/internal/models"

	"gorm.io/gorm"
)

// PushService otel push denemelerini ve retry kuyruğunu yönetir. Push
// hataları rezervasyon işlemini asla kesmez; başarısız denemeler kuyruğa
// düşer ve zamanlanmış süpürme tekrar dener.
type PushService struct {
	db       *gorm.DB
	adapters map[models.PushMethod]pushAdapter
}

func NewPushService(db *gorm.DB, cfg *config.Config) *PushService {
	return &PushService{
		db: db,
		adapters: map[models.PushMethod]pushAdapter{
			models.PushMethodJSON:  newJSONAdapter(),
			models.PushMethodICS:   newICSAdapter(),
			models.PushMethodEmail: newEmailAdapter(cfg),
		},
	}
}

// backoffDelay n. denemeden sonraki bekleme süresi: min(2^n, 60) dakika.
func backoffDelay(attemptCount int) time.Duration {
	minutes := 1
	for i := 0; i < attemptCount && minutes < 60; i++ {
		minutes *= 2
	}
	if minutes > 60 {
		minutes = 60
	}
	return time.Duration(minutes) * time.Minute
}

func truncateError(msg string) string {
	if len(msg) > 500 {
		return msg[:500]
	}
	return msg
}

func (s *PushService) buildPayload(reservation *models.HotelReservation, hotel *models.Hotel) *pushPayload {
	roomName := ""
	if reservation.RoomID != 0 {
		var room models.HotelRoom
		if err := s.db.First(&room, "id = ?", reservation.RoomID).Error; err == nil {
			roomName = room.Name
		}
	}
	return &pushPayload{
		ReservationID: reservation.ID,
		HotelName:     hotel.Name,
		RoomName:      roomName,
		CustomerName:  reservation.CustomerName,
		CustomerEmail: reservation.CustomerEmail,
		CustomerPhone: reservation.CustomerPhone,
		CheckinDate:   reservation.CheckinDate,
		CheckoutDate:  reservation.CheckoutDate,
		GuestCount:    reservation.GuestCount,
		TotalPrice:    reservation.TotalPrice.StringFixed(2),
		Currency:      string(reservation.Currency),
		Notes:         reservation.Notes,
	}
}

func (s *PushService) writeLog(hotel *models.Hotel, reservationID uint, payloadJSON string, result pushResult) {
	entry := models.HotelReservationPushLog{
		HotelID:        hotel.ID,
		ReservationID:  reservationID,
		CompanyID:      hotel.CompanyID,
		Method:         hotel.PushMethod,
		RequestPayload: payloadJSON,
		ResponseCode:   result.ResponseCode,
		ResponseBody:   result.ResponseBody,
		Success:        result.Success,
		ErrorMessage:   truncateError(result.ErrorMessage),
	}
	if err := s.db.Create(&entry).Error; err != nil {
		log.Printf("push log yazılamadı: %v", err)
	}
}

// Dispatch rezervasyonu hemen push'lamayı dener; başarısızsa kuyruğa
// alır. Hata döndürmez, çağıran handler push sonucundan etkilenmez.
func (s *PushService) Dispatch(reservationID uint) {
	var reservation models.HotelReservation
	if err := s.db.First(&reservation, "id = ?", reservationID).Error; err != nil {
		log.Printf("push: rezervasyon bulunamadı (%d): %v", reservationID, err)
		return
	}
	var hotel models.Hotel
	if err := s.db.First(&hotel, "id = ?", reservation.HotelID).Error; err != nil {
		log.Printf("push: otel bulunamadı (%d): %v", reservation.HotelID, err)
		return
	}

	adapter, ok := s.adapters[hotel.PushMethod]
	if !ok {
		log.Printf("push: bilinmeyen yöntem %q (otel %d)", hotel.PushMethod, hotel.ID)
		return
	}

	payload := s.buildPayload(&reservation, &hotel)
	payloadJSON, _ := json.Marshal(payload)

	now := time.Now()
	result := adapter.Push(&hotel, payload)
	s.writeLog(&hotel, reservation.ID, string(payloadJSON), result)

	if result.Success {
		s.db.Model(&reservation).Updates(map[string]interface{}{
			"push_status":          models.PushStatusSent,
			"push_last_attempt_at": now,
		})
		return
	}

	// İlk deneme başarısız: kuyruğa al, bir sonraki deneme backoff sonrası.
	nextRetry := now.Add(backoffDelay(1))
	queue := models.HotelReservationPushQueue{
		HotelID:       hotel.ID,
		ReservationID: reservation.ID,
		CompanyID:     hotel.CompanyID,
		Payload:       string(payloadJSON),
		PushMethod:    hotel.PushMethod,
		AttemptCount:  1,
		MaxAttempts:   models.PushMaxAttempts,
		LastAttemptAt: &now,
		NextRetryAt:   &nextRetry,
		Status:        models.QueueStatusQueued,
		Error:         truncateError(result.ErrorMessage),
	}
	if err := s.db.Create(&queue).Error; err != nil {
		log.Printf("push kuyruğuna yazılamadı: %v", err)
		return
	}

	s.db.Model(&reservation).Updates(map[string]interface{}{
		"push_status":          models.PushStatusQueued,
		"push_last_attempt_at": now,
	})
}

// ProcessQueue zamanı gelmiş kuyruk kayıtlarını yeniden dener. Her
// çağrıda en fazla batchSize kayıt işlenir.
func (s *PushService) ProcessQueue(batchSize int) (processed int) {
	now := time.Now()

	var items []models.HotelReservationPushQueue
	err := s.db.Where("status = ? AND next_retry_at <= ?", models.QueueStatusQueued, now).
		Order("next_retry_at ASC").
		Limit(batchSize).
		Find(&items).Error
	if err != nil {
		log.Printf("push kuyruğu okunamadı: %v", err)
		return 0
	}

	for i := range items {
		s.processItem(&items[i])
		processed++
	}
	return processed
}

func (s *PushService) processItem(item *models.HotelReservationPushQueue) {
	// Paralel süpürmelere karşı atomik claim.
	res := s.db.Model(&models.HotelReservationPushQueue{}).
		Where("id = ? AND status = ?", item.ID, models.QueueStatusQueued).
		Update("status", models.QueueStatusProcessing)
	if res.Error != nil || res.RowsAffected == 0 {
		return
	}

	var hotel models.Hotel
	if err := s.db.First(&hotel, "id = ?", item.HotelID).Error; err != nil {
		s.failItem(item, "otel bulunamadı")
		return
	}

	adapter, ok := s.adapters[item.PushMethod]
	if !ok {
		s.failItem(item, fmt.Sprintf("bilinmeyen push yöntemi: %s", item.PushMethod))
		return
	}

	var payload pushPayload
	if err := json.Unmarshal([]byte(item.Payload), &payload); err != nil {
		s.failItem(item, "kuyruk payload'ı çözümlenemedi")
		return
	}

	now := time.Now()
	result := adapter.Push(&hotel, &payload)
	s.writeLog(&hotel, item.ReservationID, item.Payload, result)

	item.AttemptCount++
	item.LastAttemptAt = &now

	if result.Success {
		item.Status = models.QueueStatusSent
		item.NextRetryAt = nil
		item.Error = ""
		if err := s.db.Save(item).Error; err != nil {
			log.Printf("kuyruk kaydı güncellenemedi (%d): %v", item.ID, err)
		}
		s.db.Model(&models.HotelReservation{}).Where("id = ?", item.ReservationID).
			Updates(map[string]interface{}{
				"push_status":          models.PushStatusSent,
				"push_last_attempt_at": now,
			})
		return
	}

	item.Error = truncateError(result.ErrorMessage)

	if item.AttemptCount >= item.MaxAttempts {
		// Terminal durum: süpürme artık bu kaydı almaz, manuel retry gerekir.
		item.Status = models.QueueStatusFailed
		item.NextRetryAt = nil
		if err := s.db.Save(item).Error; err != nil {
			log.Printf("kuyruk kaydı güncellenemedi (%d): %v", item.ID, err)
		}
		s.db.Model(&models.HotelReservation{}).Where("id = ?", item.ReservationID).
			Updates(map[string]interface{}{
				"push_status":          models.PushStatusFailed,
				"push_last_attempt_at": now,
			})
		return
	}

	nextRetry := now.Add(backoffDelay(item.AttemptCount))
	item.Status = models.QueueStatusQueued
	item.NextRetryAt = &nextRetry
	if err := s.db.Save(item).Error; err != nil {
		log.Printf("kuyruk kaydı güncellenemedi (%d): %v", item.ID, err)
	}
}

func (s *PushService) failItem(item *models.HotelReservationPushQueue, msg string) {
	item.Status = models.QueueStatusFailed
	item.Error = truncateError(msg)
	item.NextRetryAt = nil
	if err := s.db.Save(item).Error; err != nil {
		log.Printf("kuyruk kaydı güncellenemedi (%d): %v", item.ID, err)
	}
}

// RetryNow failed/cancelled bir kuyruk kaydını sıfırlayıp hemen yeniden
// denemeye açar.
func (s *PushService) RetryNow(companyID, queueID uint) (*models.HotelReservationPushQueue, error) {
	var item models.HotelReservationPushQueue
	if err := s.db.First(&item, "id = ? AND company_id = ?", queueID, companyID).Error; err != nil {
		return nil, err
	}
	if item.Status == models.QueueStatusSent {
		return nil, fmt.Errorf("gönderilmiş kayıt yeniden denenemez")
	}

	now := time.Now()
	item.Status = models.QueueStatusQueued
	item.AttemptCount = 0
	item.NextRetryAt = &now
	item.Error = ""
	if err := s.db.Save(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// CancelPending rezervasyona ait bekleyen kuyruk kayıtlarını iptal eder
// (rezervasyon silinince çağrılır).
func (s *PushService) CancelPending(reservationID uint) {
	err := s.db.Model(&models.HotelReservationPushQueue{}).
		Where("reservation_id = ? AND status IN ?", reservationID,
			[]models.QueueStatus{models.QueueStatusQueued, models.QueueStatusProcessing}).
		Update("status", models.QueueStatusCancelled).Error
	if err != nil {
		log.Printf("kuyruk kayıtları iptal edilemedi (rezervasyon %d): %v", reservationID, err)
	}
}
