package services

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tkallas/arved/internal/models"
)

// DashboardMetrics is the overview snapshot computed from live data.
type DashboardMetrics struct {
	RevenueMonth  string           `json:"revenue_month"`
	CashIn        string           `json:"cash_in"`
	Outstanding   string           `json:"outstanding"`
	UnpaidCount   int64            `json:"unpaid_count"`
	AvgDaysToPay  int64            `json:"avg_days_to_pay"`
	TotalClients  int64            `json:"total_clients"`
	TotalInvoices int64            `json:"total_invoices"`
	Recent        []models.Invoice `json:"recent_invoices"`
}

// DashboardService aggregates the overview numbers. Callers run the
// overdue sweep first so the status buckets are consistent.
type DashboardService struct {
	db    *gorm.DB
	clock Clock
}

func NewDashboardService(db *gorm.DB, clock Clock) *DashboardService {
	if clock == nil {
		clock = SystemClock
	}
	return &DashboardService{db: db, clock: clock}
}

// Metrics computes the dashboard snapshot.
func (s *DashboardService) Metrics() (*DashboardMetrics, error) {
	now := s.clock.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	m := &DashboardMetrics{}

	var paid []models.Invoice
	if err := s.db.Where("status = ?", models.InvoiceStatusPaid).Find(&paid).Error; err != nil {
		return nil, err
	}
	revenueMonth := decimal.Zero
	cashIn := decimal.Zero
	var totalDays int64
	for i := range paid {
		inv := &paid[i]
		cashIn = cashIn.Add(inv.Total)
		if !inv.IssueDate.Before(monthStart) {
			revenueMonth = revenueMonth.Add(inv.Total)
		}
		days := int64(inv.DueDate.Sub(inv.IssueDate).Hours() / 24)
		if days < 1 {
			days = 1
		}
		totalDays += days
	}
	if len(paid) > 0 {
		m.AvgDaysToPay = totalDays / int64(len(paid))
	}
	m.RevenueMonth = revenueMonth.StringFixed(2)
	m.CashIn = cashIn.StringFixed(2)

	unpaidStatuses := []models.InvoiceStatus{models.InvoiceStatusSent, models.InvoiceStatusOverdue}
	if err := s.db.Model(&models.Invoice{}).Where("status IN ?", unpaidStatuses).Count(&m.UnpaidCount).Error; err != nil {
		return nil, err
	}
	var unpaid []models.Invoice
	if err := s.db.Where("status IN ?", unpaidStatuses).Find(&unpaid).Error; err != nil {
		return nil, err
	}
	outstanding := decimal.Zero
	for i := range unpaid {
		outstanding = outstanding.Add(unpaid[i].Total)
	}
	m.Outstanding = outstanding.StringFixed(2)

	if err := s.db.Model(&models.Client{}).Count(&m.TotalClients).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Invoice{}).Count(&m.TotalInvoices).Error; err != nil {
		return nil, err
	}
	if err := s.db.Preload("Client").Order("issue_date DESC, id DESC").Limit(5).Find(&m.Recent).Error; err != nil {
		return nil, err
	}
	return m, nil
}
