package models

import "time"

// CompanySettings is the singleton record describing the invoice issuer.
// It is lazily created with a placeholder name on first access.
type CompanySettings struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name         string `gorm:"size:200;not null" json:"name"`
	RegistryCode string `gorm:"size:20" json:"registry_code,omitempty"`
	VATNumber    string `gorm:"size:20" json:"vat_number,omitempty"`
	Address      string `gorm:"type:text" json:"address,omitempty"`
	Email        string `gorm:"size:120" json:"email,omitempty"`
	Phone        string `gorm:"size:20" json:"phone,omitempty"`
	LogoURL      string `gorm:"size:255" json:"logo_url,omitempty"`

	DefaultVatRateID *uint    `json:"default_vat_rate_id,omitempty"`
	DefaultVatRate   *VatRate `gorm:"foreignKey:DefaultVatRateID" json:"default_vat_rate,omitempty"`

	// DefaultTemplate selects the PDF layout when a request names none.
	DefaultTemplate string `gorm:"size:20;default:'standard'" json:"default_template"`
	InvoiceTerms    string `gorm:"type:text" json:"invoice_terms,omitempty"`
}
