package settlement

import (
	"fmt"
	"log"
	"time"

	"acenta-backend/internal/models"

	"gorm.io/gorm"
)

// SettleDuePayments valör tarihi gelmiş kredi kartı tahsilatlarını kasaya
// geçirir. Her işlem kendi transaction'ında settle edilir; biri hata
// verirse diğerleri etkilenmez. İdempotenttir: is_settled işaretli
// satırlar sorguya girmez, PaymentSettlement kaydındaki unique index
// çifte geçişi engeller.
func (s *Service) SettleDuePayments(db *gorm.DB, now time.Time) (int, error) {
	var due []models.Transaction
	err := db.Where("transaction_type = ? AND is_settled = ? AND valor_date IS NOT NULL AND valor_date <= ?",
		models.TransactionPayment, false, now).
		Order("valor_date ASC").
		Limit(200).
		Find(&due).Error
	if err != nil {
		return 0, fmt.Errorf("valör bekleyen tahsilatlar okunamadı: %w", err)
	}

	settled := 0
	for i := range due {
		if err := s.settleOne(db, &due[i]); err != nil {
			log.Printf("valör settle hatası (işlem %d): %v", due[i].ID, err)
			continue
		}
		settled++
	}
	return settled, nil
}

func (s *Service) settleOne(db *gorm.DB, t *models.Transaction) error {
	return db.Transaction(func(tx *gorm.DB) error {
		// Paralel sweep'e karşı yeniden oku.
		var fresh models.Transaction
		if err := tx.First(&fresh, "id = ? AND is_settled = ?", t.ID, false).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil // başka bir sweep önce davranmış
			}
			return err
		}

		pool, err := s.getOrCreatePool(tx, fresh.CompanyID, models.CashAccountCreditCard, fresh.Currency, fresh.BankAccountID)
		if err != nil {
			return err
		}
		if err := creditPool(tx, pool.ID, fresh.NetAmount); err != nil {
			return err
		}

		settledAt := time.Now()
		record := models.PaymentSettlement{
			CompanyID:     fresh.CompanyID,
			TransactionID: fresh.ID,
			CashAccountID: pool.ID,
			Amount:        fresh.NetAmount,
			Currency:      fresh.Currency,
			SettledAt:     settledAt,
		}
		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("settlement kaydı yazılamadı: %w", err)
		}

		return tx.Model(&models.Transaction{}).
			Where("id = ?", fresh.ID).
			Updates(map[string]interface{}{
				"is_settled":      true,
				"cash_account_id": pool.ID,
			}).Error
	})
}
