package settlement

import (
	"fmt"
	"time"

	"acenta-backend/internal/ledger"
	"acenta-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentMethod kapalı ödeme yöntemi kümesi. Serbest string dispatch
// yerine exhaustive switch ile işlenir.
type PaymentMethod string

const (
	MethodCash            PaymentMethod = "cash"
	MethodBankTransfer    PaymentMethod = "bank_transfer"
	MethodCreditCard      PaymentMethod = "credit_card"
	MethodCheckPromissory PaymentMethod = "check_promissory"
	MethodTransferToCari  PaymentMethod = "transfer_to_cari"
	MethodWriteOff        PaymentMethod = "write_off"
)

func ParseMethod(s string) (PaymentMethod, error) {
	switch PaymentMethod(s) {
	case MethodCash, MethodBankTransfer, MethodCreditCard,
		MethodCheckPromissory, MethodTransferToCari, MethodWriteOff:
		return PaymentMethod(s), nil
	}
	return "", fmt.Errorf("geçersiz ödeme yöntemi: %q", s)
}

// PoolEffect bir tahsilatın kasa/valör sonucunu özetler.
type PoolEffect struct {
	CashAccountID *uint            `json:"cash_account_id"`
	Credited      decimal.Decimal  `json:"credited"`   // kasaya hemen geçen tutar
	Deferred      bool             `json:"deferred"`   // valör bekliyor
	ValorDate     *time.Time       `json:"valor_date"`
	Commission    decimal.Decimal  `json:"commission"`
	NetAmount     decimal.Decimal  `json:"net_amount"`
	CheckID       *uint            `json:"check_id"`
	TargetCariID  *uint            `json:"target_cari_id"`
}

// Params tahsilat oluşturulurken yöntemin ihtiyaç duyduğu ek alanlar.
type Params struct {
	Method        PaymentMethod
	BankAccountID *uint  // credit_card / bank_transfer
	TargetCariID  *uint  // transfer_to_cari
	DueDate       string // check_promissory, YYYY-MM-DD
	CheckNumber   string
}

type Service struct {
	engine *ledger.Engine
}

func NewService(engine *ledger.Engine) *Service {
	return &Service{engine: engine}
}

// ClampWriteOff write_off tahsilatının tutarını carinin mevcut pozitif
// bakiyesiyle sınırlar; bakiye write_off ile eksiye düşemez.
func (s *Service) ClampWriteOff(tx *gorm.DB, companyID, cariID uint, currency models.Currency, amount decimal.Decimal) (decimal.Decimal, error) {
	var account models.CariAccount
	if err := tx.First(&account, "id = ? AND company_id = ?", cariID, companyID).Error; err != nil {
		return decimal.Zero, fmt.Errorf("cari hesap bulunamadı: %w", err)
	}

	balance := account.Balance(currency)
	if balance.IsNegative() {
		return decimal.Zero, nil
	}
	if amount.GreaterThan(balance) {
		return balance, nil
	}
	return amount, nil
}

// Apply ödenmiş (Post edilmiş) bir payment işlemine yöntemin kasa/valör
// politikasını uygular. Çağıranın transaction'ı içinde çalışır.
func (s *Service) Apply(tx *gorm.DB, t *models.Transaction, p Params) (*PoolEffect, error) {
	switch p.Method {
	case MethodCash:
		return s.applyImmediate(tx, t, models.CashAccountCash, nil)

	case MethodBankTransfer:
		if p.BankAccountID == nil {
			return nil, fiberValidation("bank_account_id zorunlu (bank_transfer)")
		}
		return s.applyImmediate(tx, t, models.CashAccountBank, p.BankAccountID)

	case MethodCreditCard:
		return s.applyCreditCard(tx, t, p)

	case MethodCheckPromissory:
		return s.applyCheck(tx, t, p)

	case MethodTransferToCari:
		return s.applyCariTransfer(tx, t, p)

	case MethodWriteOff:
		// Bakiye etkisi Post + ClampWriteOff ile tamamlandı; kasa etkisi yok.
		method := string(MethodWriteOff)
		t.PaymentMethod = &method
		t.IsSettled = true
		if err := tx.Save(t).Error; err != nil {
			return nil, err
		}
		return &PoolEffect{Credited: decimal.Zero}, nil
	}

	return nil, fmt.Errorf("geçersiz ödeme yöntemi: %q", p.Method)
}

// applyImmediate nakit / havale: tutar ilgili havuza hemen geçer.
func (s *Service) applyImmediate(tx *gorm.DB, t *models.Transaction, poolType models.CashAccountType, bankAccountID *uint) (*PoolEffect, error) {
	pool, err := s.getOrCreatePool(tx, t.CompanyID, poolType, t.Currency, bankAccountID)
	if err != nil {
		return nil, err
	}

	if err := creditPool(tx, pool.ID, t.Amount); err != nil {
		return nil, err
	}

	method := string(MethodCash)
	if poolType == models.CashAccountBank {
		method = string(MethodBankTransfer)
	}
	t.PaymentMethod = &method
	t.BankAccountID = bankAccountID
	t.CashAccountID = &pool.ID
	t.NetAmount = t.Amount
	t.IsSettled = true
	if err := tx.Save(t).Error; err != nil {
		return nil, err
	}

	return &PoolEffect{CashAccountID: &pool.ID, Credited: t.Amount, NetAmount: t.Amount}, nil
}

// applyCreditCard komisyon düşer ve valör tarihine kadar kasa girişini
// erteler. Valör günü yoksa ama komisyon varsa valör = ödeme günü + 1.
// İkisi de yoksa hemen settle edilir.
func (s *Service) applyCreditCard(tx *gorm.DB, t *models.Transaction, p Params) (*PoolEffect, error) {
	if p.BankAccountID == nil {
		return nil, fiberValidation("bank_account_id zorunlu (credit_card)")
	}

	var bank models.BankAccount
	if err := tx.First(&bank, "id = ? AND company_id = ?", *p.BankAccountID, t.CompanyID).Error; err != nil {
		return nil, fmt.Errorf("banka hesabı bulunamadı: %w", err)
	}

	commission := t.Amount.Mul(bank.CommissionRate).Div(decimal.NewFromInt(100)).Round(2)
	net := t.Amount.Sub(commission)

	paymentDate, err := time.Parse("2006-01-02", t.Date)
	if err != nil {
		paymentDate = time.Now().UTC().Truncate(24 * time.Hour)
	}

	valorDays := bank.ValorDays
	if valorDays == 0 && commission.IsPositive() {
		valorDays = 1
	}

	method := string(MethodCreditCard)
	t.PaymentMethod = &method
	t.BankAccountID = p.BankAccountID
	t.CommissionAmount = commission
	t.NetAmount = net

	if valorDays == 0 {
		// Valör yok: net tutar hemen kasaya geçer.
		pool, err := s.getOrCreatePool(tx, t.CompanyID, models.CashAccountCreditCard, t.Currency, p.BankAccountID)
		if err != nil {
			return nil, err
		}
		if err := creditPool(tx, pool.ID, net); err != nil {
			return nil, err
		}
		t.CashAccountID = &pool.ID
		t.IsSettled = true
		if err := tx.Save(t).Error; err != nil {
			return nil, err
		}
		return &PoolEffect{CashAccountID: &pool.ID, Credited: net, Commission: commission, NetAmount: net}, nil
	}

	valorDate := paymentDate.AddDate(0, 0, valorDays)
	t.ValorDate = &valorDate
	t.IsSettled = false
	if err := tx.Save(t).Error; err != nil {
		return nil, err
	}

	return &PoolEffect{
		Deferred:   true,
		ValorDate:  &valorDate,
		Commission: commission,
		NetAmount:  net,
	}, nil
}

// applyCheck çek/senet kaydı açar; kasa etkisi tahsilat aksiyonuna kadar yok.
func (s *Service) applyCheck(tx *gorm.DB, t *models.Transaction, p Params) (*PoolEffect, error) {
	if p.DueDate == "" {
		return nil, fiberValidation("vade tarihi (due_date) zorunlu (check_promissory)")
	}
	dueDate, err := time.Parse("2006-01-02", p.DueDate)
	if err != nil {
		return nil, fiberValidation("due_date formatı geçersiz, 'YYYY-MM-DD' olmalı")
	}

	check := models.CheckPromissory{
		CompanyID:     t.CompanyID,
		CariID:        t.CariID,
		TransactionID: t.ID,
		Amount:        t.Amount,
		Currency:      t.Currency,
		CheckNumber:   p.CheckNumber,
		DueDate:       dueDate,
	}
	if err := tx.Create(&check).Error; err != nil {
		return nil, fmt.Errorf("çek/senet kaydedilemedi: %w", err)
	}

	method := string(MethodCheckPromissory)
	t.PaymentMethod = &method
	t.DueDate = &dueDate
	t.CheckNumber = p.CheckNumber
	t.IsSettled = false
	if err := tx.Save(t).Error; err != nil {
		return nil, err
	}

	return &PoolEffect{CheckID: &check.ID}, nil
}

// applyCariTransfer tutarı hedef cariye aynı para biriminde credit satırı
// olarak işler. Hedefteki satır da işaret tablosundan geçer; her iki cari
// için bakiye, geçmişin yeniden hesaplanmasıyla birebir aynı kalır.
func (s *Service) applyCariTransfer(tx *gorm.DB, t *models.Transaction, p Params) (*PoolEffect, error) {
	if p.TargetCariID == nil {
		return nil, fiberValidation("hedef cari (target_cari_id) zorunlu (transfer_to_cari)")
	}
	if *p.TargetCariID == t.CariID {
		return nil, fiberValidation("hedef cari kaynak cariden farklı olmalı")
	}

	var target models.CariAccount
	if err := tx.First(&target, "id = ? AND company_id = ?", *p.TargetCariID, t.CompanyID).Error; err != nil {
		return nil, fmt.Errorf("hedef cari bulunamadı: %w", err)
	}

	mirror := models.Transaction{
		CompanyID:       t.CompanyID,
		CariID:          target.ID,
		TransactionType: models.TransactionCredit,
		Amount:          t.Amount,
		Currency:        t.Currency,
		Description:     fmt.Sprintf("Cari virman - işlem #%d", t.ID),
		ReferenceID:     &t.ID,
		ReferenceType:   models.ReferenceCariTransfer,
		Date:            t.Date,
		CreatedBy:       t.CreatedBy,
	}
	if err := s.engine.Post(tx, &mirror); err != nil {
		return nil, err
	}

	method := string(MethodTransferToCari)
	t.PaymentMethod = &method
	t.IsSettled = true
	if err := tx.Save(t).Error; err != nil {
		return nil, err
	}

	return &PoolEffect{TargetCariID: p.TargetCariID}, nil
}

// getOrCreatePool (tip, para birimi) anahtarıyla kasa havuzunu bulur,
// yoksa oluşturur.
func (s *Service) getOrCreatePool(tx *gorm.DB, companyID uint, poolType models.CashAccountType, currency models.Currency, bankAccountID *uint) (*models.CashAccount, error) {
	q := tx.Where("company_id = ? AND account_type = ? AND currency = ?", companyID, poolType, currency)
	if bankAccountID != nil {
		q = q.Where("bank_account_id = ?", *bankAccountID)
	}

	var pool models.CashAccount
	err := q.First(&pool).Error
	if err == nil {
		return &pool, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	pool = models.CashAccount{
		CompanyID:     companyID,
		AccountType:   poolType,
		Name:          poolName(poolType, currency),
		Currency:      currency,
		BankAccountID: bankAccountID,
		IsActive:      true,
	}
	if err := tx.Create(&pool).Error; err != nil {
		return nil, fmt.Errorf("kasa hesabı oluşturulamadı: %w", err)
	}
	return &pool, nil
}

func poolName(poolType models.CashAccountType, currency models.Currency) string {
	switch poolType {
	case models.CashAccountBank:
		return fmt.Sprintf("Banka Hesabı (%s)", currency)
	case models.CashAccountCreditCard:
		return fmt.Sprintf("Kredi Kartı (%s)", currency)
	default:
		return fmt.Sprintf("Nakit Kasa (%s)", currency)
	}
}

func creditPool(tx *gorm.DB, poolID uint, amount decimal.Decimal) error {
	res := tx.Model(&models.CashAccount{}).
		Where("id = ?", poolID).
		UpdateColumn("current_balance", gorm.Expr("current_balance + ?", amount))
	if res.Error != nil {
		return fmt.Errorf("kasa bakiyesi güncellenemedi: %w", res.Error)
	}
	return nil
}
