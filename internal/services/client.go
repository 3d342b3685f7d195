package services

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tkallas/arved/internal/models"
	"github.com/tkallas/arved/internal/rules"
)

// ClientService manages clients and their derived statistics.
type ClientService struct {
	db *gorm.DB
}

func NewClientService(db *gorm.DB) *ClientService {
	return &ClientService{db: db}
}

// ClientInput carries the user-editable fields of a client.
type ClientInput struct {
	Name         string `json:"name"`
	RegistryCode string `json:"registry_code"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
}

// List returns clients ordered by name, optionally narrowed by a search
// term matched against name, email and registry code.
func (s *ClientService) List(q string) ([]models.Client, error) {
	var clients []models.Client
	query := s.db.Order("name asc")
	if q = strings.TrimSpace(q); q != "" {
		like := "%" + q + "%"
		query = query.Where("name LIKE ? OR email LIKE ? OR registry_code LIKE ?", like, like, like)
	}
	err := query.Find(&clients).Error
	return clients, err
}

// Get loads one client.
func (s *ClientService) Get(id uint) (*models.Client, error) {
	var client models.Client
	if err := s.db.First(&client, id).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func (s *ClientService) Create(in ClientInput) (*models.Client, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, rules.New(rules.KindInvalidAmount, "client name is required")
	}
	client := models.Client{
		Name:         strings.TrimSpace(in.Name),
		RegistryCode: in.RegistryCode,
		Email:        in.Email,
		Phone:        in.Phone,
		Address:      in.Address,
	}
	if err := s.db.Create(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func (s *ClientService) Update(id uint, in ClientInput) (*models.Client, error) {
	client, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, rules.New(rules.KindInvalidAmount, "client name is required")
	}
	client.Name = strings.TrimSpace(in.Name)
	client.RegistryCode = in.RegistryCode
	client.Email = in.Email
	client.Phone = in.Phone
	client.Address = in.Address
	if err := s.db.Save(client).Error; err != nil {
		return nil, err
	}
	return client, nil
}

// Delete removes a client. Refused while the client owns any invoice; the
// storage-level cascade only applies once the guard has passed.
func (s *ClientService) Delete(id uint) error {
	client, err := s.Get(id)
	if err != nil {
		return err
	}
	var invoiceCount int64
	if err := s.db.Model(&models.Invoice{}).Where("client_id = ?", id).Count(&invoiceCount).Error; err != nil {
		return err
	}
	if invoiceCount > 0 {
		return rules.Errorf(rules.KindClientHasInvoices, "client %q still owns %d invoice(s)", client.Name, invoiceCount)
	}
	return s.db.Delete(client).Error
}

// Stats computes the derived client attributes: invoice count, date of
// the most recent invoice and total revenue. Drafts don't count as
// revenue.
func (s *ClientService) Stats(id uint) (*models.ClientStats, error) {
	var invoices []models.Invoice
	if err := s.db.Where("client_id = ?", id).Find(&invoices).Error; err != nil {
		return nil, err
	}

	stats := models.ClientStats{InvoiceCount: int64(len(invoices))}
	revenue := decimal.Zero
	var last *time.Time
	for i := range invoices {
		inv := &invoices[i]
		if inv.Status != models.InvoiceStatusDraft {
			revenue = revenue.Add(inv.Total)
		}
		if last == nil || inv.IssueDate.After(*last) {
			d := inv.IssueDate
			last = &d
		}
	}
	stats.LastInvoiceDate = last
	stats.TotalRevenue = revenue.StringFixed(2)
	return &stats, nil
}
