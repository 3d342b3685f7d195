package services

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tkallas/arved/internal/models"
	"github.com/tkallas/arved/internal/rules"
)

// StandardRatePercent is the jurisdiction's standard VAT rate, used to pick
// the default directory entry and as the last-resort fallback when the
// directory is empty.
var StandardRatePercent = decimal.NewFromInt(24)

var hundred = decimal.NewFromInt(100)

// VatRateService manages the VAT rate directory.
type VatRateService struct {
	db *gorm.DB
}

func NewVatRateService(db *gorm.DB) *VatRateService {
	return &VatRateService{db: db}
}

// VatRateInput carries the user-editable fields of a rate.
type VatRateInput struct {
	Name        string          `json:"name"`
	Percent     decimal.Decimal `json:"percent"`
	Description string          `json:"description"`
	Active      *bool           `json:"active,omitempty"`
}

// All returns every rate, active or not, ascending by percentage.
func (s *VatRateService) All() ([]models.VatRate, error) {
	var vatRates []models.VatRate
	err := s.db.Order("percent asc").Find(&vatRates).Error
	return vatRates, err
}

// ActiveRates returns the active rates ascending by percentage.
func (s *VatRateService) ActiveRates() ([]models.VatRate, error) {
	var vatRates []models.VatRate
	err := s.db.Where("active = ?", true).Order("percent asc").Find(&vatRates).Error
	return vatRates, err
}

// DefaultRate returns the active rate at the standard percentage, or the
// first active rate when none matches, or nil when the directory holds no
// active rates at all.
func (s *VatRateService) DefaultRate() (*models.VatRate, error) {
	active, err := s.ActiveRates()
	if err != nil {
		return nil, err
	}
	for i := range active {
		if active[i].Percent.Equal(StandardRatePercent) {
			return &active[i], nil
		}
	}
	if len(active) > 0 {
		return &active[0], nil
	}
	return nil, nil
}

// DefaultPercent resolves the percentage new invoices get when no rate is
// chosen explicitly.
func (s *VatRateService) DefaultPercent() (decimal.Decimal, error) {
	rate, err := s.DefaultRate()
	if err != nil {
		return decimal.Zero, err
	}
	if rate == nil {
		return StandardRatePercent, nil
	}
	return rate.Percent, nil
}

// EffectiveRate returns the percentage actually applied to an invoice: the
// live referenced rate when it still exists, otherwise the invoice's
// denormalized copy.
func (s *VatRateService) EffectiveRate(inv *models.Invoice) decimal.Decimal {
	if inv.VatRateID != nil {
		var rate models.VatRate
		if err := s.db.First(&rate, *inv.VatRateID).Error; err == nil {
			return rate.Percent
		}
	}
	return inv.VatRatePercent
}

// Create adds a rate to the directory after the uniqueness checks.
func (s *VatRateService) Create(in VatRateInput) (*models.VatRate, error) {
	if err := s.validate(in, 0); err != nil {
		return nil, err
	}
	rate := models.VatRate{
		Name:        in.Name,
		Percent:     in.Percent.Round(2),
		Description: in.Description,
		Active:      true,
	}
	if in.Active != nil {
		rate.Active = *in.Active
	}
	if err := s.db.Create(&rate).Error; err != nil {
		return nil, err
	}
	return &rate, nil
}

// Update changes an existing rate; name and percentage stay unique across
// the whole directory, the rate itself excluded.
func (s *VatRateService) Update(id uint, in VatRateInput) (*models.VatRate, error) {
	var rate models.VatRate
	if err := s.db.First(&rate, id).Error; err != nil {
		return nil, err
	}
	if err := s.validate(in, id); err != nil {
		return nil, err
	}
	rate.Name = in.Name
	rate.Percent = in.Percent.Round(2)
	rate.Description = in.Description
	if in.Active != nil {
		rate.Active = *in.Active
	}
	if err := s.db.Save(&rate).Error; err != nil {
		return nil, err
	}
	return &rate, nil
}

// Deactivate hides a rate from the active listing without touching the
// invoices that reference it.
func (s *VatRateService) Deactivate(id uint) (*models.VatRate, error) {
	var rate models.VatRate
	if err := s.db.First(&rate, id).Error; err != nil {
		return nil, err
	}
	rate.Active = false
	if err := s.db.Save(&rate).Error; err != nil {
		return nil, err
	}
	return &rate, nil
}

// Delete removes a rate. Refused while any invoice references it; such
// invoices would lose their live reference and only the denormalized copy
// would remain, so the caller must deactivate instead.
func (s *VatRateService) Delete(id uint) error {
	var rate models.VatRate
	if err := s.db.First(&rate, id).Error; err != nil {
		return err
	}
	var refs int64
	if err := s.db.Model(&models.Invoice{}).Where("vat_rate_id = ?", id).Count(&refs).Error; err != nil {
		return err
	}
	if refs > 0 {
		return rules.Errorf(rules.KindRateInUse, "VAT rate %q is referenced by %d invoice(s)", rate.Name, refs)
	}
	return s.db.Delete(&rate).Error
}

// IsUnique is the predicate the forms surface consumes: it reports whether
// the (name, percent) pair would be unique, with a displayable reason.
func (s *VatRateService) IsUnique(name string, percent decimal.Decimal, excludeID uint) (bool, string) {
	if err := s.checkUnique(name, percent, excludeID); err != nil {
		return false, err.Error()
	}
	return true, ""
}

func (s *VatRateService) validate(in VatRateInput, excludeID uint) error {
	if in.Name == "" {
		return rules.New(rules.KindInvalidAmount, "VAT rate name is required")
	}
	if in.Percent.IsNegative() || in.Percent.GreaterThan(hundred) {
		return rules.New(rules.KindInvalidAmount, "VAT percentage must be between 0 and 100")
	}
	return s.checkUnique(in.Name, in.Percent, excludeID)
}

func (s *VatRateService) checkUnique(name string, percent decimal.Decimal, excludeID uint) error {
	var existing models.VatRate
	q := s.db.Where("name = ?", name)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.First(&existing).Error; err == nil {
		return rules.Errorf(rules.KindDuplicateVatRate, "a VAT rate named %q already exists", name)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	q = s.db.Where("percent = ?", percent.Round(2))
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.First(&existing).Error; err == nil {
		return rules.Errorf(rules.KindDuplicateVatRate, "a VAT rate of %s%% already exists", percent.Round(2))
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return nil
}
