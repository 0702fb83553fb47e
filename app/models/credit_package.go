package models

import "time"

// Payment provider constants used across payment-related models.
const (
	PaymentProviderDodo = "dodo"
)

// CreditPackage maps a provider product reference to a purchasable credit
// quantity. The rows form the canonical price table.
type CreditPackage struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Provider   string    `gorm:"type:varchar(20);not null;index:ux_credit_packages_product,unique,priority:1" json:"provider"`
	ProductID  string    `gorm:"type:varchar(191);not null;index:ux_credit_packages_product,unique,priority:2" json:"product_id"`
	Name       string    `gorm:"type:varchar(100);not null" json:"name"`
	Credits    uint      `gorm:"not null" json:"credits"`
	PriceCents uint      `gorm:"not null" json:"price_cents"`
	IsActive   bool      `gorm:"default:true;index" json:"is_active"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// DefaultCreditPackages is the seeded price table. One canonical set;
// historic UI variants with other prices are intentionally not carried.
func DefaultCreditPackages() []CreditPackage {
	return []CreditPackage{
		{Provider: PaymentProviderDodo, ProductID: "pdt_pXCCBMDtusTUcsrB6KECY", Name: "Basic", Credits: 100, PriceCents: 300, IsActive: true},
		{Provider: PaymentProviderDodo, ProductID: "pdt_QcERrcHmG3kzIBR0Su4Sc", Name: "Best Value", Credits: 500, PriceCents: 1000, IsActive: true},
		{Provider: PaymentProviderDodo, ProductID: "pdt_g1vldnHU4iWPsnPWuNfBF", Name: "Pro Pack", Credits: 1000, PriceCents: 1800, IsActive: true},
	}
}
