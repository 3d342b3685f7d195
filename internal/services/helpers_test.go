package services_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tkallas/arved/internal/db"
	"github.com/tkallas/arved/internal/models"
	"github.com/tkallas/arved/internal/services"
)

// today is the pinned test date; due-date boundaries are expressed
// relative to it.
var today = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(
		sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"),
		&gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)},
	)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func newInvoiceService(conn *gorm.DB, clock services.Clock) *services.InvoiceService {
	return services.NewInvoiceService(conn, services.NewVatRateService(conn), clock)
}

func seedClient(t *testing.T, conn *gorm.DB, name string) *models.Client {
	t.Helper()
	client := models.Client{Name: name, Email: "billing@example.com"}
	if err := conn.Create(&client).Error; err != nil {
		t.Fatalf("seed client: %v", err)
	}
	return &client
}

func seedRate(t *testing.T, conn *gorm.DB, name string, percent int64) *models.VatRate {
	t.Helper()
	rate := models.VatRate{Name: name, Percent: decimal.NewFromInt(percent), Active: true}
	if err := conn.Create(&rate).Error; err != nil {
		t.Fatalf("seed vat rate: %v", err)
	}
	return &rate
}

func mustCreateInvoice(t *testing.T, svc *services.InvoiceService, in services.InvoiceInput) *models.Invoice {
	t.Helper()
	inv, err := svc.Create(in)
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}
	return inv
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}
