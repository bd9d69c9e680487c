package currency

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"acenta-backend/internal/auth"

	"github.com/gofiber/fiber/v2"
)

// fallbackRates dış servis erişilemediğinde dönen son çare kurlar
// (EUR bazlı).
var fallbackRates = map[string]float64{
	"EUR": 1.0,
	"USD": 1.1,
	"TRY": 35.0,
}

const ratesURL = "https://api.frankfurter.app/latest?from=EUR&to=USD,TRY"

// Service EUR bazlı döviz kurlarını kısa süreli önbellekle sunar.
type Service struct {
	client *http.Client

	mu        sync.Mutex
	cached    map[string]float64
	fetchedAt time.Time
}

func NewService() *Service {
	return &Service{client: &http.Client{Timeout: 5 * time.Second}}
}

type ratesResponse struct {
	Rates map[string]float64 `json:"rates"`
}

// Rates güncel kurları döndürür; servis hatasında önbellek, o da yoksa
// sabit fallback kullanılır.
func (s *Service) Rates() map[string]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != nil && time.Since(s.fetchedAt) < time.Hour {
		return s.cached
	}

	resp, err := s.client.Get(ratesURL)
	if err != nil {
		log.Printf("kur servisi erişilemedi: %v", err)
		return s.cachedOrFallback()
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Printf("kur servisi %d döndü", resp.StatusCode)
		return s.cachedOrFallback()
	}

	var parsed ratesResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		log.Printf("kur yanıtı çözümlenemedi: %v", err)
		return s.cachedOrFallback()
	}

	rates := map[string]float64{"EUR": 1.0}
	for code, rate := range parsed.Rates {
		rates[code] = rate
	}
	s.cached = rates
	s.fetchedAt = time.Now()
	return rates
}

func (s *Service) cachedOrFallback() map[string]float64 {
	if s.cached != nil {
		return s.cached
	}
	return fallbackRates
}

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GET /api/currency-rates
func (h *Handler) Get() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := auth.CompanyID(c); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"base": "EUR", "rates": h.service.Rates()})
	}
}
