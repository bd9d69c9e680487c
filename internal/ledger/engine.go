package ledger

import (
	"fmt"

	"acenta-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// İşlem tipi -> cari bakiyeye uygulanan işaret. Tek doğruluk kaynağı:
// hem artımlı güncellemeler hem Recalculate bu tabloyu kullanır.
//
// debit   +  borç (rezervasyon, satış)
// credit  -  alacak (hizmet alımı)
// payment -  tahsilat
// refund  +  iade
// expense +  gider (personel carisi muhasebe kuralı)
// debt    +  no-show cezası
func signOf(t models.TransactionType) (decimal.Decimal, error) {
	switch t {
	case models.TransactionDebit, models.TransactionRefund,
		models.TransactionExpense, models.TransactionDebt:
		return decimal.NewFromInt(1), nil
	case models.TransactionCredit, models.TransactionPayment:
		return decimal.NewFromInt(-1), nil
	}
	return decimal.Zero, fmt.Errorf("bilinmeyen işlem tipi: %s", t)
}

// Delta bir işlemin cari bakiyeye uygulanacak işaretli etkisini döndürür.
// Amount her zaman pozitif büyüklüktür.
func Delta(t models.TransactionType, amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("tutar negatif olamaz: %s", amount)
	}
	sign, err := signOf(t)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Mul(sign), nil
}

// BalanceColumn para birimine karşılık gelen bakiye kolonunu döndürür.
func BalanceColumn(currency models.Currency) (string, error) {
	switch currency {
	case models.CurrencyEUR:
		return "balance_eur", nil
	case models.CurrencyUSD:
		return "balance_usd", nil
	case models.CurrencyTRY:
		return "balance_try", nil
	}
	return "", fmt.Errorf("geçersiz para birimi: %s", currency)
}

// Engine cari bakiyelerini işlem satırlarıyla tutarlı tutar. Tüm
// mutasyonlar çağıranın verdiği gorm transaction'ı içinde çalışır.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// AdjustBalance cari bakiyesine tek alanlık atomik artış uygular.
func (e *Engine) AdjustBalance(tx *gorm.DB, companyID, cariID uint, currency models.Currency, delta decimal.Decimal) error {
	col, err := BalanceColumn(currency)
	if err != nil {
		return err
	}

	res := tx.Model(&models.CariAccount{}).
		Where("id = ? AND company_id = ?", cariID, companyID).
		UpdateColumn(col, gorm.Expr(col+" + ?", delta))
	if res.Error != nil {
		return fmt.Errorf("bakiye güncellenemedi: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("cari hesap bulunamadı (id=%d)", cariID)
	}
	return nil
}

// Post işlem satırını oluşturur ve ileri delta'yı aynı transaction
// içinde bakiyeye uygular.
func (e *Engine) Post(tx *gorm.DB, t *models.Transaction) error {
	if !t.TransactionType.Valid() {
		return fmt.Errorf("geçersiz işlem tipi: %s", t.TransactionType)
	}
	if !t.Currency.Valid() {
		return fmt.Errorf("geçersiz para birimi: %s", t.Currency)
	}

	delta, err := Delta(t.TransactionType, t.Amount)
	if err != nil {
		return err
	}

	if err := tx.Create(t).Error; err != nil {
		return fmt.Errorf("işlem kaydedilemedi: %w", err)
	}
	return e.AdjustBalance(tx, t.CompanyID, t.CariID, t.Currency, delta)
}

// Unpost işlemin mevcut (tip, tutar, para birimi) etkisini geri alır ve
// satırı siler. Düzeltmelerde her zaman önce geri al, sonra yeniden
// uygula; para birimi değişiminde asla net fark kullanma.
func (e *Engine) Unpost(tx *gorm.DB, t *models.Transaction) error {
	delta, err := Delta(t.TransactionType, t.Amount)
	if err != nil {
		return err
	}

	if err := e.AdjustBalance(tx, t.CompanyID, t.CariID, t.Currency, delta.Neg()); err != nil {
		return err
	}
	if err := tx.Delete(&models.Transaction{}, "id = ?", t.ID).Error; err != nil {
		return fmt.Errorf("işlem silinemedi: %w", err)
	}
	return nil
}

// FindDocumentTransaction kaynak belgeye ait tek işlem satırını bulur.
func (e *Engine) FindDocumentTransaction(tx *gorm.DB, companyID, referenceID uint, referenceType string) (*models.Transaction, error) {
	var t models.Transaction
	err := tx.Where("company_id = ? AND reference_id = ? AND reference_type = ?",
		companyID, referenceID, referenceType).First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}
