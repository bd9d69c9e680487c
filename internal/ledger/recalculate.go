package ledger

import (
	"fmt"

	"acenta-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Recalculate cari hesabın üç bakiyesini sıfırlar ve tüm işlem
// satırlarını created_at sırasıyla yeniden toplayarak yazar. Onarım
// aracıdır; canlı yazmalarla eşzamanlı çalıştırılmamalıdır (çağıranın
// serileştirme sorumluluğu).
func (e *Engine) Recalculate(db *gorm.DB, companyID, cariID uint) (*models.CariAccount, error) {
	var account models.CariAccount

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&account, "id = ? AND company_id = ?", cariID, companyID).Error; err != nil {
			return fmt.Errorf("cari hesap bulunamadı: %w", err)
		}

		var transactions []models.Transaction
		if err := tx.Where("company_id = ? AND cari_id = ?", companyID, cariID).
			Order("created_at ASC, id ASC").
			Find(&transactions).Error; err != nil {
			return fmt.Errorf("işlemler okunamadı: %w", err)
		}

		totals := map[models.Currency]decimal.Decimal{
			models.CurrencyEUR: decimal.Zero,
			models.CurrencyUSD: decimal.Zero,
			models.CurrencyTRY: decimal.Zero,
		}
		for _, t := range transactions {
			delta, err := Delta(t.TransactionType, t.Amount)
			if err != nil {
				return err
			}
			totals[t.Currency] = totals[t.Currency].Add(delta)
		}

		res := tx.Model(&models.CariAccount{}).
			Where("id = ? AND company_id = ?", cariID, companyID).
			UpdateColumns(map[string]interface{}{
				"balance_eur": totals[models.CurrencyEUR],
				"balance_usd": totals[models.CurrencyUSD],
				"balance_try": totals[models.CurrencyTRY],
			})
		if res.Error != nil {
			return fmt.Errorf("bakiyeler yazılamadı: %w", res.Error)
		}

		account.BalanceEUR = totals[models.CurrencyEUR]
		account.BalanceUSD = totals[models.CurrencyUSD]
		account.BalanceTRY = totals[models.CurrencyTRY]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &account, nil
}
