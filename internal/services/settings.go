package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/tkallas/arved/internal/models"
)

// SettingsService manages the singleton company settings record.
type SettingsService struct {
	db *gorm.DB
}

func NewSettingsService(db *gorm.DB) *SettingsService {
	return &SettingsService{db: db}
}

// SettingsInput carries the user-editable issuer fields.
type SettingsInput struct {
	Name             string `json:"name"`
	RegistryCode     string `json:"registry_code"`
	VATNumber        string `json:"vat_number"`
	Address          string `json:"address"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	LogoURL          string `json:"logo_url"`
	DefaultVatRateID *uint  `json:"default_vat_rate_id"`
	DefaultTemplate  string `json:"default_template"`
	InvoiceTerms     string `json:"invoice_terms"`
}

// Get returns the settings record, lazily creating a placeholder on first
// access.
func (s *SettingsService) Get() (*models.CompanySettings, error) {
	var settings models.CompanySettings
	err := s.db.Preload("DefaultVatRate").First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		settings = models.CompanySettings{Name: "My Company", DefaultTemplate: "standard"}
		if err := s.db.Create(&settings).Error; err != nil {
			return nil, err
		}
		return &settings, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// Update overwrites the issuer fields.
func (s *SettingsService) Update(in SettingsInput) (*models.CompanySettings, error) {
	settings, err := s.Get()
	if err != nil {
		return nil, err
	}
	if in.Name != "" {
		settings.Name = in.Name
	}
	settings.RegistryCode = in.RegistryCode
	settings.VATNumber = in.VATNumber
	settings.Address = in.Address
	settings.Email = in.Email
	settings.Phone = in.Phone
	settings.LogoURL = in.LogoURL
	settings.InvoiceTerms = in.InvoiceTerms
	if in.DefaultVatRateID != nil {
		var rate models.VatRate
		if err := s.db.First(&rate, *in.DefaultVatRateID).Error; err != nil {
			return nil, err
		}
		settings.DefaultVatRateID = in.DefaultVatRateID
	}
	if in.DefaultTemplate != "" {
		settings.DefaultTemplate = in.DefaultTemplate
	}
	if err := s.db.Save(settings).Error; err != nil {
		return nil, err
	}
	return settings, nil
}
