package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the status of an invoice. The set is closed:
// transition legality is decided in one place (services.CanTransition),
// not scattered over handlers.
type InvoiceStatus string

const (
	InvoiceStatusDraft   InvoiceStatus = "draft"
	InvoiceStatusSent    InvoiceStatus = "sent"
	InvoiceStatusPaid    InvoiceStatus = "paid"
	InvoiceStatusOverdue InvoiceStatus = "overdue"
)

// Valid reports whether s is one of the four known statuses.
func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPaid, InvoiceStatusOverdue:
		return true
	}
	return false
}

// Invoice is the aggregate tying together client, line items, VAT rate,
// status and derived totals. Subtotal and Total are always recomputed from
// the lines before a write; they are never edited directly.
type Invoice struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Human-readable number, format YYYY-NNNN. The unique index is the
	// hard guarantee; the service pre-checks only for a friendly error.
	Number string `gorm:"size:20;not null;uniqueIndex" json:"number"`

	ClientID uint    `gorm:"index;not null" json:"client_id"`
	Client   *Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`

	IssueDate time.Time `gorm:"not null" json:"issue_date"`
	DueDate   time.Time `gorm:"not null" json:"due_date"`

	// VatRateID is the live reference; VatRatePercent is the denormalized
	// copy written on every rate assignment so the invoice survives the
	// rate being deleted later.
	VatRateID      *uint           `gorm:"index" json:"vat_rate_id,omitempty"`
	VatRate        *VatRate        `gorm:"foreignKey:VatRateID" json:"vat_rate,omitempty"`
	VatRatePercent decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"vat_rate_percent"`

	Subtotal decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	Total    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total"`

	Status InvoiceStatus `gorm:"size:20;not null;default:'draft'" json:"status"`

	Lines []InvoiceLine `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"lines,omitempty"`
}

// CanBeEdited is false exactly when the invoice is paid. Paid invoices
// accept no line edits, no deletion and no transition away from paid.
func (i *Invoice) CanBeEdited() bool {
	return i.Status != InvoiceStatusPaid
}

// IsPastDue reports whether the due date lies strictly before today.
// Comparison is on calendar dates, not instants.
func (i *Invoice) IsPastDue(now time.Time) bool {
	return DateOf(i.DueDate).Before(DateOf(now))
}

// EffectiveVatRate prefers the live rate reference and falls back to the
// denormalized copy when the reference is gone.
func (i *Invoice) EffectiveVatRate() decimal.Decimal {
	if i.VatRate != nil {
		return i.VatRate.Percent
	}
	return i.VatRatePercent
}

// VATAmount is the derived VAT portion of the total.
func (i *Invoice) VATAmount() decimal.Decimal {
	return i.Total.Sub(i.Subtotal)
}

// InvoiceLine belongs to exactly one invoice and is only ever mutated as
// part of an invoice edit. LineTotal must equal Qty*UnitPrice after any
// recalculation.
type InvoiceLine struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	InvoiceID uint `gorm:"index;not null" json:"invoice_id"`

	Description string          `gorm:"size:500;not null" json:"description"`
	Qty         decimal.Decimal `gorm:"type:decimal(10,2);not null;default:1" json:"qty"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"line_total"`
}

// DateOf truncates t to its calendar date in UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
