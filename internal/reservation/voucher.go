package reservation

import (
	"crypto/rand"
	"fmt"

	"acenta-backend/internal/models"

	"gorm.io/gorm"
)

const voucherAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func randomVoucher() (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	for i := range b {
		b[i] = voucherAlphabet[int(b[i])%len(voucherAlphabet)]
	}
	return "VCR-" + string(b), nil
}

// GenerateVoucherCode firma genelinde benzersiz voucher kodu üretir.
// Çakışmada yeniden dener; rezervasyonlar ve açık satışlar birlikte
// kontrol edilir.
func GenerateVoucherCode(tx *gorm.DB, companyID uint) (string, error) {
	for attempt := 0; attempt < 10; attempt++ {
		code, err := randomVoucher()
		if err != nil {
			return "", fmt.Errorf("voucher üretilemedi: %w", err)
		}

		var count int64
		if err := tx.Model(&models.Reservation{}).
			Where("company_id = ? AND voucher_code = ?", companyID, code).
			Count(&count).Error; err != nil {
			return "", err
		}
		if count > 0 {
			continue
		}
		if err := tx.Model(&models.ExtraSale{}).
			Where("company_id = ? AND voucher_code = ?", companyID, code).
			Count(&count).Error; err != nil {
			return "", err
		}
		if count > 0 {
			continue
		}
		return code, nil
	}
	return "", fmt.Errorf("benzersiz voucher kodu üretilemedi")
}
