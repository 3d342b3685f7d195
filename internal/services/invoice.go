package services

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tkallas/arved/internal/models"
	"github.com/tkallas/arved/internal/money"
	"github.com/tkallas/arved/internal/rules"
	"github.com/tkallas/arved/internal/validation"
)

// InvoiceService owns the invoice aggregate: it coordinates line edits,
// totals recomputation and status changes so that no persisted state ever
// has totals that are stale relative to the lines. Every mutation runs as
// one transaction.
type InvoiceService struct {
	db    *gorm.DB
	rates *VatRateService
	clock Clock
}

func NewInvoiceService(db *gorm.DB, rates *VatRateService, clock Clock) *InvoiceService {
	if clock == nil {
		clock = SystemClock
	}
	return &InvoiceService{db: db, rates: rates, clock: clock}
}

// LineInput is one line of an invoice create/update request. A zero ID
// means a new line; an existing ID updates that line in place.
type LineInput struct {
	ID          uint            `json:"id,omitempty"`
	Description string          `json:"description"`
	Qty         decimal.Decimal `json:"qty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// InvoiceInput carries the user-editable fields of an invoice.
type InvoiceInput struct {
	Number    string               `json:"number,omitempty"`
	ClientID  uint                 `json:"client_id"`
	IssueDate time.Time            `json:"issue_date"`
	DueDate   time.Time            `json:"due_date"`
	VatRateID *uint                `json:"vat_rate_id,omitempty"`
	Status    models.InvoiceStatus `json:"status,omitempty"`
	Lines     []LineInput          `json:"lines"`
}

// ListFilter narrows the invoice listing.
type ListFilter struct {
	Status   models.InvoiceStatus
	ClientID uint
	DateFrom *time.Time
	DateTo   *time.Time
}

// Get loads one invoice with client, lines and the live VAT rate.
func (s *InvoiceService) Get(id uint) (*models.Invoice, error) {
	var inv models.Invoice
	err := s.db.Preload("Client").Preload("Lines").Preload("VatRate").First(&inv, id).Error
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// List returns invoices matching the filter, newest issue date first.
// Callers that present status to the user must run MarkOverdue first.
func (s *InvoiceService) List(f ListFilter) ([]models.Invoice, error) {
	q := s.db.Preload("Client").Preload("Lines")
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.ClientID != 0 {
		q = q.Where("client_id = ?", f.ClientID)
	}
	if f.DateFrom != nil {
		q = q.Where("issue_date >= ?", models.DateOf(*f.DateFrom))
	}
	if f.DateTo != nil {
		q = q.Where("issue_date <= ?", models.DateOf(*f.DateTo))
	}
	var invoices []models.Invoice
	err := q.Order("issue_date DESC, id DESC").Find(&invoices).Error
	return invoices, err
}

// ValidateNumber is the predicate behind the number field of the invoice
// form: format plus uniqueness, excluding the invoice being edited.
func (s *InvoiceService) ValidateNumber(number string, excludeID uint) (bool, string) {
	if !validation.InvoiceNumberFormat(number) {
		return false, "invoice number must match YYYY-NNNN"
	}
	var count int64
	q := s.db.Model(&models.Invoice{}).Where("number = ?", number)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, "could not verify invoice number"
	}
	if count > 0 {
		return false, "invoice number already in use"
	}
	return true, ""
}

// Create builds a new invoice with its lines, computes totals and persists
// everything in one transaction. An empty number is generated from the
// numbering sequence; a supplied number must pass format and uniqueness.
func (s *InvoiceService) Create(in InvoiceInput) (*models.Invoice, error) {
	status := in.Status
	if status == "" {
		status = models.InvoiceStatusDraft
	}
	if !status.Valid() {
		return nil, rules.Errorf(rules.KindInvalidStatus, "invalid status: %q", string(status))
	}

	lines, err := buildLines(in.Lines)
	if err != nil {
		return nil, err
	}

	var client models.Client
	if err := s.db.First(&client, in.ClientID).Error; err != nil {
		return nil, err
	}

	rateID, ratePercent, err := s.resolveRate(in.VatRateID)
	if err != nil {
		return nil, err
	}

	totals, err := money.InvoiceTotals(moneyLines(lines), ratePercent)
	if err != nil {
		return nil, err
	}

	inv := models.Invoice{
		Number:         in.Number,
		ClientID:       in.ClientID,
		IssueDate:      models.DateOf(in.IssueDate),
		DueDate:        models.DateOf(in.DueDate),
		VatRateID:      rateID,
		VatRatePercent: ratePercent,
		Subtotal:       totals.Subtotal,
		Total:          totals.Total,
		Status:         status,
		Lines:          lines,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if inv.Number == "" {
			number, err := NextInvoiceNumber(tx, s.clock.Now().Year())
			if err != nil {
				return err
			}
			inv.Number = number
		} else if ok, reason := s.validateNumberTx(tx, inv.Number, 0); !ok {
			return numberError(inv.Number, reason)
		}
		return tx.Create(&inv).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(inv.ID)
}

// Update replaces the invoice's editable fields and lines. Paid invoices
// are immutable; a status change embedded in the edit goes through the
// transition engine, with past-due judged against the new due date.
func (s *InvoiceService) Update(id uint, in InvoiceInput) (*models.Invoice, error) {
	inv, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if !inv.CanBeEdited() {
		return nil, rules.New(rules.KindEditForbidden, "paid invoices cannot be edited")
	}

	lines, err := buildLines(in.Lines)
	if err != nil {
		return nil, err
	}

	newDue := models.DateOf(in.DueDate)
	if in.Status != "" && in.Status != inv.Status {
		pastDue := newDue.Before(models.DateOf(s.clock.Now()))
		if err := CheckTransition(inv.Status, in.Status, pastDue); err != nil {
			return nil, err
		}
		inv.Status = in.Status
	}

	if in.ClientID != 0 && in.ClientID != inv.ClientID {
		var client models.Client
		if err := s.db.First(&client, in.ClientID).Error; err != nil {
			return nil, err
		}
		inv.ClientID = in.ClientID
	}

	if in.VatRateID != nil {
		rateID, ratePercent, err := s.resolveRate(in.VatRateID)
		if err != nil {
			return nil, err
		}
		// Denormalized copy follows every rate assignment.
		inv.VatRateID = rateID
		inv.VatRatePercent = ratePercent
	} else {
		// The referenced rate may have been edited since the last save;
		// totals are always recomputed at the effective rate and the
		// denormalized copy follows it.
		inv.VatRatePercent = inv.EffectiveVatRate()
	}

	totals, err := money.InvoiceTotals(moneyLines(lines), inv.VatRatePercent)
	if err != nil {
		return nil, err
	}

	inv.IssueDate = models.DateOf(in.IssueDate)
	inv.DueDate = newDue
	inv.Subtotal = totals.Subtotal
	inv.Total = totals.Total

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if in.Number != "" && in.Number != inv.Number {
			if ok, reason := s.validateNumberTx(tx, in.Number, inv.ID); !ok {
				return numberError(in.Number, reason)
			}
			inv.Number = in.Number
		}

		// Full line replacement: lines absent from the input are removed,
		// the rest are upserted with their recomputed totals. Line IDs
		// that don't belong to this invoice are treated as new lines.
		var existingIDs []uint
		if err := tx.Model(&models.InvoiceLine{}).Where("invoice_id = ?", inv.ID).Pluck("id", &existingIDs).Error; err != nil {
			return err
		}
		owned := make(map[uint]bool, len(existingIDs))
		for _, id := range existingIDs {
			owned[id] = true
		}
		keep := make([]uint, 0, len(lines))
		for i := range lines {
			if lines[i].ID != 0 && !owned[lines[i].ID] {
				lines[i].ID = 0
			}
			if lines[i].ID != 0 {
				keep = append(keep, lines[i].ID)
			}
		}
		del := tx.Where("invoice_id = ?", inv.ID)
		if len(keep) > 0 {
			del = del.Where("id NOT IN ?", keep)
		}
		if err := del.Delete(&models.InvoiceLine{}).Error; err != nil {
			return err
		}
		for i := range lines {
			lines[i].InvoiceID = inv.ID
			if err := tx.Save(&lines[i]).Error; err != nil {
				return err
			}
		}

		inv.Lines = nil // already persisted above; avoid double upsert
		return tx.Save(inv).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(inv.ID)
}

// Delete removes an invoice and its lines. Paid invoices cannot be deleted.
func (s *InvoiceService) Delete(id uint) error {
	inv, err := s.Get(id)
	if err != nil {
		return err
	}
	if !inv.CanBeEdited() {
		return rules.New(rules.KindEditForbidden, "paid invoices cannot be deleted")
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("invoice_id = ?", inv.ID).Delete(&models.InvoiceLine{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Invoice{}, inv.ID).Error
	})
}

// Duplicate copies an invoice into a fresh draft: new number, today's
// issue date, same client, rate and lines.
func (s *InvoiceService) Duplicate(id uint) (*models.Invoice, error) {
	orig, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	dup := models.Invoice{
		ClientID:       orig.ClientID,
		IssueDate:      models.DateOf(s.clock.Now()),
		DueDate:        orig.DueDate,
		VatRateID:      orig.VatRateID,
		VatRatePercent: orig.VatRatePercent,
		Subtotal:       orig.Subtotal,
		Total:          orig.Total,
		Status:         models.InvoiceStatusDraft,
	}
	for _, l := range orig.Lines {
		dup.Lines = append(dup.Lines, models.InvoiceLine{
			Description: l.Description,
			Qty:         l.Qty,
			UnitPrice:   l.UnitPrice,
			LineTotal:   l.LineTotal,
		})
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		number, err := NextInvoiceNumber(tx, s.clock.Now().Year())
		if err != nil {
			return err
		}
		dup.Number = number
		return tx.Create(&dup).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(dup.ID)
}

// ChangeStatus runs an explicit transition through the state machine. A
// successful change updates only the status and the update timestamp;
// totals are untouched. A self-transition is a no-op success.
func (s *InvoiceService) ChangeStatus(id uint, next models.InvoiceStatus) (*models.Invoice, error) {
	inv, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	pastDue := inv.IsPastDue(s.clock.Now())
	if err := CheckTransition(inv.Status, next, pastDue); err != nil {
		return nil, err
	}
	if next == inv.Status {
		return inv, nil
	}
	err = s.db.Model(&models.Invoice{}).Where("id = ?", inv.ID).
		Updates(map[string]any{"status": next, "updated_at": s.clock.Now()}).Error
	if err != nil {
		return nil, err
	}
	return s.Get(inv.ID)
}

// Send marks a draft invoice as sent. Delivery itself belongs to the
// transport layer; only the status side effect lives here.
func (s *InvoiceService) Send(id uint) (*models.Invoice, error) {
	inv, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if inv.Status == models.InvoiceStatusDraft {
		return s.ChangeStatus(id, models.InvoiceStatusSent)
	}
	return inv, nil
}

// MarkOverdue promotes every sent invoice whose due date is strictly
// before today to overdue. One UPDATE, so the sweep is idempotent and
// commits on its own: it runs before any status-dependent read, never
// inside the same unit of work.
func (s *InvoiceService) MarkOverdue() (int64, error) {
	today := models.DateOf(s.clock.Now())
	res := s.db.Model(&models.Invoice{}).
		Where("status = ? AND due_date < ?", models.InvoiceStatusSent, today).
		Updates(map[string]any{"status": models.InvoiceStatusOverdue, "updated_at": s.clock.Now()})
	return res.RowsAffected, res.Error
}

func (s *InvoiceService) validateNumberTx(tx *gorm.DB, number string, excludeID uint) (bool, string) {
	if !validation.InvoiceNumberFormat(number) {
		return false, "invoice number must match YYYY-NNNN"
	}
	var count int64
	q := tx.Model(&models.Invoice{}).Where("number = ?", number)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, "could not verify invoice number"
	}
	if count > 0 {
		return false, "invoice number already in use"
	}
	return true, ""
}

func numberError(number, reason string) error {
	if reason == "invoice number already in use" {
		return rules.Errorf(rules.KindDuplicateInvoiceNumber, "invoice number %q already in use", number)
	}
	return rules.New(rules.KindInvalidNumber, reason)
}

// resolveRate turns an optional rate reference into the (reference,
// denormalized percent) pair stored on the invoice. With no reference the
// directory default applies.
func (s *InvoiceService) resolveRate(rateID *uint) (*uint, decimal.Decimal, error) {
	if rateID != nil {
		var rate models.VatRate
		if err := s.db.First(&rate, *rateID).Error; err != nil {
			return nil, decimal.Zero, err
		}
		return &rate.ID, rate.Percent, nil
	}
	def, err := s.rates.DefaultRate()
	if err != nil {
		return nil, decimal.Zero, err
	}
	if def == nil {
		return nil, StandardRatePercent, nil
	}
	return &def.ID, def.Percent, nil
}

// buildLines validates the line inputs and computes each line total.
// Fully blank rows (as submitted by a form with trailing empty entries)
// are dropped; an invoice must end up with at least one real line.
func buildLines(inputs []LineInput) ([]models.InvoiceLine, error) {
	lines := make([]models.InvoiceLine, 0, len(inputs))
	for _, in := range inputs {
		if strings.TrimSpace(in.Description) == "" && in.Qty.IsZero() && in.UnitPrice.IsZero() {
			continue
		}
		if strings.TrimSpace(in.Description) == "" {
			return nil, rules.New(rules.KindInvalidAmount, "line description is required")
		}
		total, err := money.LineTotal(in.Qty, in.UnitPrice)
		if err != nil {
			return nil, err
		}
		lines = append(lines, models.InvoiceLine{
			ID:          in.ID,
			Description: strings.TrimSpace(in.Description),
			Qty:         in.Qty.Round(2),
			UnitPrice:   in.UnitPrice.Round(2),
			LineTotal:   total,
		})
	}
	if len(lines) == 0 {
		return nil, rules.New(rules.KindEmptyInvoice, "an invoice needs at least one line")
	}
	return lines, nil
}

func moneyLines(lines []models.InvoiceLine) []money.Line {
	out := make([]money.Line, len(lines))
	for i, l := range lines {
		out[i] = money.Line{Qty: l.Qty, UnitPrice: l.UnitPrice, LineTotal: l.LineTotal}
	}
	return out
}

// IsNotFound reports whether err is the storage layer's record-not-found.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
