package jobs

import (
	"context"
	"log"
	"time"

	"acenta-backend/internal/config"
	"acenta-backend/internal/hotel"
	"acenta-backend/internal/settlement"

	"gorm.io/gorm"
)

// Scheduler arka plan işlerini ticker'larla yürütür: otel push kuyruğu
// süpürmesi, valör günü gelen tahsilatların kasaya geçirilmesi ve ICS
// takvim senkronizasyonu.
type Scheduler struct {
	db         *gorm.DB
	cfg        *config.Config
	push       *hotel.PushService
	sync       *hotel.SyncService
	settlement *settlement.Service
}

func NewScheduler(db *gorm.DB, cfg *config.Config, push *hotel.PushService, sync *hotel.SyncService, st *settlement.Service) *Scheduler {
	return &Scheduler{db: db, cfg: cfg, push: push, sync: sync, settlement: st}
}

const pushBatchSize = 50

// Start ctx iptal edilene kadar çalışır. Her iş kendi goroutine'inde
// döner; bir işin hatası diğerlerini durdurmaz.
func (s *Scheduler) Start(ctx context.Context) {
	go s.runPushSweep(ctx)
	go s.runValorSweep(ctx)
	go s.runICSSync(ctx)
	log.Println("[INFO] Zamanlanmış işler başlatıldı")
}

func (s *Scheduler) runPushSweep(ctx context.Context) {
	interval := time.Duration(s.cfg.PushSweepInterval) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.push.ProcessQueue(pushBatchSize); n > 0 {
				log.Printf("[INFO] Push kuyruğu: %d kayıt işlendi", n)
			}
		}
	}
}

func (s *Scheduler) runValorSweep(ctx context.Context) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	// Açılışta bir kez çalıştır, gecikmiş valörler bekletilmesin.
	s.settleDue()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.settleDue()
		}
	}
}

func (s *Scheduler) settleDue() {
	n, err := s.settlement.SettleDuePayments(s.db, time.Now())
	if err != nil {
		log.Printf("[ERROR] Valör süpürmesi başarısız: %v", err)
		return
	}
	if n > 0 {
		log.Printf("[INFO] Valör süpürmesi: %d tahsilat kasaya geçirildi", n)
	}
}

func (s *Scheduler) runICSSync(ctx context.Context) {
	ticker := time.NewTicker(6 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sync.SyncAll()
		}
	}
}
