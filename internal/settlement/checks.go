package settlement

import (
	"fmt"
	"time"

	"acenta-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CollectCheck vadesi gelen çek/senedi tahsil eder: tutar kasaya geçer,
// çek tahsil edildi işaretlenir, bağlı payment satırı settle edilir.
func (s *Service) CollectCheck(db *gorm.DB, companyID, checkID uint, cashAccountID *uint) (*models.CheckPromissory, error) {
	var check models.CheckPromissory

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&check, "id = ? AND company_id = ?", checkID, companyID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Çek/senet bulunamadı")
		}
		if check.IsCollected {
			return fiber.NewError(fiber.StatusBadRequest, "Çek/senet zaten tahsil edilmiş")
		}

		var pool *models.CashAccount
		if cashAccountID != nil {
			var p models.CashAccount
			if err := tx.First(&p, "id = ? AND company_id = ?", *cashAccountID, companyID).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "Kasa hesabı bulunamadı")
			}
			pool = &p
		} else {
			p, err := s.getOrCreatePool(tx, companyID, models.CashAccountCash, check.Currency, nil)
			if err != nil {
				return err
			}
			pool = p
		}

		if err := creditPool(tx, pool.ID, check.Amount); err != nil {
			return err
		}

		now := time.Now()
		check.IsCollected = true
		check.CollectedAt = &now
		check.CashAccountID = &pool.ID
		if err := tx.Save(&check).Error; err != nil {
			return fmt.Errorf("çek/senet güncellenemedi: %w", err)
		}

		record := models.PaymentSettlement{
			CompanyID:     companyID,
			TransactionID: check.TransactionID,
			CashAccountID: pool.ID,
			Amount:        check.Amount,
			Currency:      check.Currency,
			SettledAt:     now,
		}
		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("settlement kaydı yazılamadı: %w", err)
		}

		return tx.Model(&models.Transaction{}).
			Where("id = ?", check.TransactionID).
			Updates(map[string]interface{}{
				"is_settled":      true,
				"cash_account_id": pool.ID,
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return &check, nil
}

// ListChecks firma çek/senetlerini listeler; collected filtresi opsiyonel.
func (s *Service) ListChecks(db *gorm.DB, companyID uint, collected *bool) ([]models.CheckPromissory, error) {
	q := db.Where("company_id = ?", companyID)
	if collected != nil {
		q = q.Where("is_collected = ?", *collected)
	}
	var checks []models.CheckPromissory
	if err := q.Order("due_date ASC").Find(&checks).Error; err != nil {
		return nil, err
	}
	return checks, nil
}
