package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Currency string

const (
	CurrencyEUR Currency = "EUR"
	CurrencyUSD Currency = "USD"
	CurrencyTRY Currency = "TRY"
)

func (c Currency) Valid() bool {
	switch c {
	case CurrencyEUR, CurrencyUSD, CurrencyTRY:
		return true
	}
	return false
}

// CariAccount: cari hesap (müşteri/tedarikçi). Para birimi başına bağımsız
// bakiye tutulur, birimler arası çeviri yapılmaz.
type CariAccount struct {
	ID               uint    `gorm:"primaryKey" json:"id"`
	CompanyID        uint    `gorm:"index;not null" json:"company_id"`
	Name             string  `gorm:"size:150;not null" json:"name"`
	AuthorizedPerson string  `gorm:"size:150" json:"authorized_person"`
	Phone            string  `gorm:"size:50" json:"phone"`
	Email            string  `gorm:"size:100" json:"email"`
	Address          string  `gorm:"size:500" json:"address"`
	TaxOffice        string  `gorm:"size:100" json:"tax_office"`
	TaxNumber        string  `gorm:"size:50" json:"tax_number"`
	PickupLocation   string  `gorm:"size:255" json:"pickup_location"`
	PickupMapsLink   string  `gorm:"size:500" json:"pickup_maps_link"`
	// Cari panel giriş kodu (opsiyonel, şirket içinde benzersiz)
	CariCode *string `gorm:"size:32;uniqueIndex" json:"cari_code"`

	BalanceEUR decimal.Decimal `gorm:"type:numeric(20,2);default:0" json:"balance_eur"`
	BalanceUSD decimal.Decimal `gorm:"type:numeric(20,2);default:0" json:"balance_usd"`
	BalanceTRY decimal.Decimal `gorm:"type:numeric(20,2);default:0" json:"balance_try"`

	// Sentetik hesaplar (örn. Münferit) silinemez
	IsProtected bool   `gorm:"default:false" json:"is_protected"`
	Notes       string `gorm:"size:1000" json:"notes"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Münferit: cari seçilmeden yapılan işlemlerin toplandığı sentetik hesap
const WalkInCariName = "Münferit"

func (c *CariAccount) Balance(currency Currency) decimal.Decimal {
	switch currency {
	case CurrencyUSD:
		return c.BalanceUSD
	case CurrencyTRY:
		return c.BalanceTRY
	default:
		return c.BalanceEUR
	}
}
