package hotel

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/smtp"
	"strings"
	"time"

	"acenta-backend/internal/config"
	"acenta-backend/internal/models"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"
)

// pushResult bir push denemesinin sonucu. Adaptörler hata döndürmez;
// başarısızlık sonuç içinde taşınır ve kuyruk katmanı karar verir.
type pushResult struct {
	Success      bool
	ResponseCode *int
	ResponseBody string
	ErrorMessage string
}

// pushPayload kuyruğa yazılan rezervasyon anlık görüntüsü. Otel push'u
// rezervasyon sonradan değişse bile enqueue anındaki haliyle gider.
type pushPayload struct {
	ReservationID uint   `json:"reservation_id"`
	HotelName     string `json:"hotel_name"`
	RoomName      string `json:"room_name,omitempty"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email,omitempty"`
	CustomerPhone string `json:"customer_phone,omitempty"`
	CheckinDate   string `json:"checkin_date"`
	CheckoutDate  string `json:"checkout_date"`
	GuestCount    int    `json:"guest_count"`
	TotalPrice    string `json:"total_price"`
	Currency      string `json:"currency"`
	Notes         string `json:"notes,omitempty"`
}

type pushAdapter interface {
	Push(hotel *models.Hotel, payload *pushPayload) pushResult
}

const pushTimeout = 10 * time.Second

// --- JSON webhook adaptörü ---

type jsonAdapter struct {
	client *http.Client
}

func newJSONAdapter() *jsonAdapter {
	return &jsonAdapter{client: &http.Client{Timeout: pushTimeout}}
}

func (a *jsonAdapter) Push(hotel *models.Hotel, payload *pushPayload) pushResult {
	if hotel.PushEndpoint == "" {
		return pushResult{ErrorMessage: "push endpoint tanımlı değil"}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return pushResult{ErrorMessage: "payload serileştirilemedi: " + err.Error()}
	}

	req, err := http.NewRequest(http.MethodPost, hotel.PushEndpoint, bytes.NewReader(body))
	if err != nil {
		return pushResult{ErrorMessage: "istek oluşturulamadı: " + err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	// Her deneme ayrı izlenebilsin diye benzersiz istek id'si
	req.Header.Set("X-Request-ID", uuid.NewString())
	if hotel.PushAPIKey != "" {
		req.Header.Set("X-API-Key", hotel.PushAPIKey)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return pushResult{ErrorMessage: err.Error()}
	}
	defer resp.Body.Close()

	buf := make([]byte, 1000)
	n, _ := resp.Body.Read(buf)
	respBody := string(buf[:n])

	code := resp.StatusCode
	if code >= 200 && code < 300 {
		return pushResult{Success: true, ResponseCode: &code, ResponseBody: respBody}
	}
	return pushResult{
		ResponseCode: &code,
		ResponseBody: respBody,
		ErrorMessage: fmt.Sprintf("endpoint %d döndü", code),
	}
}

// --- ICS adaptörü ---
//
// Rezervasyonu tek VEVENT'lik bir takvim olarak endpoint'e POST eder.

type icsAdapter struct {
	client *http.Client
}

func newICSAdapter() *icsAdapter {
	return &icsAdapter{client: &http.Client{Timeout: pushTimeout}}
}

func buildVCalendar(payload *pushPayload) (string, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//acenta-backend//hotel-push//TR")

	event := cal.AddEvent(fmt.Sprintf("reservation-%d@acenta", payload.ReservationID))
	event.SetSummary(fmt.Sprintf("%s - %s (%d kişi)", payload.HotelName, payload.CustomerName, payload.GuestCount))
	event.SetDescription(fmt.Sprintf("Oda: %s\nTutar: %s %s\n%s",
		payload.RoomName, payload.TotalPrice, payload.Currency, payload.Notes))

	checkin, err := time.Parse("2006-01-02", payload.CheckinDate)
	if err != nil {
		return "", fmt.Errorf("checkin tarihi çözümlenemedi: %w", err)
	}
	checkout, err := time.Parse("2006-01-02", payload.CheckoutDate)
	if err != nil {
		return "", fmt.Errorf("checkout tarihi çözümlenemedi: %w", err)
	}
	event.SetAllDayStartAt(checkin)
	event.SetAllDayEndAt(checkout)
	event.SetDtStampTime(time.Now())

	return cal.Serialize(), nil
}

func (a *icsAdapter) Push(hotel *models.Hotel, payload *pushPayload) pushResult {
	if hotel.PushEndpoint == "" {
		return pushResult{ErrorMessage: "push endpoint tanımlı değil"}
	}

	body, err := buildVCalendar(payload)
	if err != nil {
		return pushResult{ErrorMessage: err.Error()}
	}

	req, err := http.NewRequest(http.MethodPost, hotel.PushEndpoint, strings.NewReader(body))
	if err != nil {
		return pushResult{ErrorMessage: "istek oluşturulamadı: " + err.Error()}
	}
	req.Header.Set("Content-Type", "text/calendar")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if hotel.PushAPIKey != "" {
		req.Header.Set("X-API-Key", hotel.PushAPIKey)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return pushResult{ErrorMessage: err.Error()}
	}
	defer resp.Body.Close()

	code := resp.StatusCode
	if code >= 200 && code < 300 {
		return pushResult{Success: true, ResponseCode: &code}
	}
	return pushResult{ResponseCode: &code, ErrorMessage: fmt.Sprintf("endpoint %d döndü", code)}
}

// --- E-posta adaptörü ---

type emailAdapter struct {
	cfg *config.Config
}

func newEmailAdapter(cfg *config.Config) *emailAdapter {
	return &emailAdapter{cfg: cfg}
}

func (a *emailAdapter) Push(hotel *models.Hotel, payload *pushPayload) pushResult {
	to := hotel.PushEmail
	if to == "" {
		to = hotel.Email
	}
	if to == "" {
		return pushResult{ErrorMessage: "otel e-posta adresi tanımlı değil"}
	}
	if a.cfg.SMTPUser == "" {
		return pushResult{ErrorMessage: "SMTP yapılandırması eksik"}
	}

	subject := fmt.Sprintf("Yeni rezervasyon: %s (%s - %s)",
		payload.CustomerName, payload.CheckinDate, payload.CheckoutDate)
	body := fmt.Sprintf(
		"Otel: %s\r\nMisafir: %s\r\nGiriş: %s\r\nÇıkış: %s\r\nKişi: %d\r\nTutar: %s %s\r\nNot: %s\r\n",
		payload.HotelName, payload.CustomerName, payload.CheckinDate, payload.CheckoutDate,
		payload.GuestCount, payload.TotalPrice, payload.Currency, payload.Notes)

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s",
		a.cfg.SMTPFrom, to, subject, body)

	addr := a.cfg.SMTPHost + ":" + a.cfg.SMTPPort
	auth := smtp.PlainAuth("", a.cfg.SMTPUser, a.cfg.SMTPPassword, a.cfg.SMTPHost)

	if err := smtp.SendMail(addr, auth, a.cfg.SMTPFrom, []string{to}, []byte(msg)); err != nil {
		return pushResult{ErrorMessage: "e-posta gönderilemedi: " + err.Error()}
	}
	return pushResult{Success: true}
}
