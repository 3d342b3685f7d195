package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// VatRate is an entry in the VAT rate directory. Name and percentage are
// unique across all rates, active or not; percentage is 0..100 with two
// fractional digits.
type VatRate struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name        string          `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Percent     decimal.Decimal `gorm:"type:decimal(5,2);not null;uniqueIndex" json:"percent"`
	Description string          `gorm:"size:255" json:"description,omitempty"`
	Active      bool            `gorm:"not null;default:true" json:"active"`
}
