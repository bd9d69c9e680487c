package hotel

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"acenta-backend/internal/models"

	ics "github.com/arran4/golang-ical"
	"gorm.io/gorm"
)

// SyncService dış ICS takvimlerini (ör. Booking.com, Airbnb export)
// çekip otel rezervasyonlarına yansıtır.
type SyncService struct {
	db     *gorm.DB
	client *http.Client
}

func NewSyncService(db *gorm.DB) *SyncService {
	return &SyncService{db: db, client: &http.Client{Timeout: 30 * time.Second}}
}

// SyncHotel otelin ICS URL'sini indirir, VEVENT'leri upsert eder ve her
// yeni etkinlik için harici işaretli bir rezervasyon açar.
func (s *SyncService) SyncHotel(hotelID uint) (created int, err error) {
	var hotel models.Hotel
	if err := s.db.First(&hotel, "id = ?", hotelID).Error; err != nil {
		return 0, fmt.Errorf("otel bulunamadı: %w", err)
	}
	if !hotel.ICSSyncEnabled || hotel.ICSURL == "" {
		return 0, fmt.Errorf("otel için ICS senkronizasyonu aktif değil")
	}

	resp, err := s.client.Get(hotel.ICSURL)
	if err != nil {
		return 0, fmt.Errorf("ICS takvimi indirilemedi: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("ICS kaynağı %d döndü", resp.StatusCode)
	}

	cal, err := ics.ParseCalendar(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("ICS çözümlenemedi: %w", err)
	}

	for _, event := range cal.Events() {
		uid := event.GetProperty(ics.ComponentPropertyUniqueId)
		if uid == nil || uid.Value == "" {
			continue
		}

		start, err := event.GetStartAt()
		if err != nil {
			continue
		}
		end, err := event.GetEndAt()
		if err != nil {
			end = start
		}

		summary := ""
		if p := event.GetProperty(ics.ComponentPropertySummary); p != nil {
			summary = p.Value
		}
		location := ""
		if p := event.GetProperty(ics.ComponentPropertyLocation); p != nil {
			location = p.Value
		}

		record := models.HotelICSEvent{
			HotelID:   hotel.ID,
			CompanyID: hotel.CompanyID,
			EventUID:  uid.Value,
			Summary:   summary,
			DTStart:   start,
			DTEnd:     end,
			Location:  location,
			RawVEvent: event.Serialize(&ics.SerializationConfiguration{
				MaxLength:         75,
				PropertyMaxLength: 75,
				NewLine:           string(ics.NewLine),
			}),
		}

		var existing models.HotelICSEvent
		err = s.db.Where("hotel_id = ? AND event_uid = ?", hotel.ID, uid.Value).First(&existing).Error
		if err == nil {
			existing.Summary = record.Summary
			existing.DTStart = record.DTStart
			existing.DTEnd = record.DTEnd
			existing.Location = record.Location
			existing.RawVEvent = record.RawVEvent
			if err := s.db.Save(&existing).Error; err != nil {
				log.Printf("ICS etkinliği güncellenemedi (%s): %v", uid.Value, err)
			}
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return created, err
		}

		if err := s.db.Create(&record).Error; err != nil {
			log.Printf("ICS etkinliği yazılamadı (%s): %v", uid.Value, err)
			continue
		}

		reservation := models.HotelReservation{
			HotelID:      hotel.ID,
			CompanyID:    hotel.CompanyID,
			CustomerName: summary,
			CheckinDate:  start.Format("2006-01-02"),
			CheckoutDate: end.Format("2006-01-02"),
			GuestCount:   1,
			Status:       "confirmed",
			ICSEventUID:  uid.Value,
			External:     true,
			PushStatus:   models.PushStatusSent, // dış kaynak, geri push edilmez
		}
		if err := s.db.Create(&reservation).Error; err != nil {
			log.Printf("harici rezervasyon yazılamadı (%s): %v", uid.Value, err)
			continue
		}
		created++
	}

	now := time.Now()
	s.db.Model(&hotel).Update("ics_sync_last_at", now)

	return created, nil
}

// SyncAll senkronizasyonu açık tüm otelleri sırayla işler.
func (s *SyncService) SyncAll() {
	var hotels []models.Hotel
	if err := s.db.Where("ics_sync_enabled = ? AND ics_url <> ''", true).Find(&hotels).Error; err != nil {
		log.Printf("senkronlanacak oteller okunamadı: %v", err)
		return
	}
	for _, h := range hotels {
		if _, err := s.SyncHotel(h.ID); err != nil {
			log.Printf("ICS senkronizasyonu başarısız (otel %d): %v", h.ID, err)
		}
	}
}
