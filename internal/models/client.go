package models

import "time"

// Client is a customer that invoices are issued to. Deleting a client
// cascades to its invoices and their lines at the storage layer, but the
// service layer refuses the delete while any invoice exists.
type Client struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name         string `gorm:"size:200;not null" json:"name"`
	RegistryCode string `gorm:"size:20" json:"registry_code,omitempty"`
	Email        string `gorm:"size:120" json:"email,omitempty"`
	Phone        string `gorm:"size:20" json:"phone,omitempty"`
	Address      string `gorm:"type:text" json:"address,omitempty"`

	Invoices []Invoice `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"-"`
}

// ClientStats carries the derived, never-stored client attributes.
type ClientStats struct {
	InvoiceCount    int64      `json:"invoice_count"`
	LastInvoiceDate *time.Time `json:"last_invoice_date,omitempty"`
	TotalRevenue    string     `json:"total_revenue"`
}
