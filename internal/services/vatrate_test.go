package services_test

import (
	"testing"

	"github.com/tkallas/arved/internal/models"
	"github.com/tkallas/arved/internal/rules"
	"github.com/tkallas/arved/internal/services"
)

func TestVatRateUniqueness(t *testing.T) {
	conn := setupTestDB(t)
	svc := services.NewVatRateService(conn)

	if _, err := svc.Create(services.VatRateInput{Name: "Standard", Percent: dec("24")}); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Create(services.VatRateInput{Name: "Standard", Percent: dec("20")}); !rules.Is(err, rules.KindDuplicateVatRate) {
		t.Fatalf("duplicate name: want duplicate_vat_rate, got %v", err)
	}
	if _, err := svc.Create(services.VatRateInput{Name: "Other", Percent: dec("24")}); !rules.Is(err, rules.KindDuplicateVatRate) {
		t.Fatalf("duplicate percent: want duplicate_vat_rate, got %v", err)
	}

	// Updating a rate with its own values stays legal.
	rates, err := svc.All()
	if err != nil || len(rates) != 1 {
		t.Fatalf("all: %v (%d rates)", err, len(rates))
	}
	if _, err := svc.Update(rates[0].ID, services.VatRateInput{Name: "Standard", Percent: dec("24")}); err != nil {
		t.Fatalf("self update: %v", err)
	}

	if ok, _ := svc.IsUnique("Standard", dec("9"), 0); ok {
		t.Fatalf("IsUnique accepted a taken name")
	}
	if ok, reason := svc.IsUnique("Reduced", dec("9"), 0); !ok {
		t.Fatalf("IsUnique rejected a free pair: %s", reason)
	}
}

func TestVatRateValidation(t *testing.T) {
	conn := setupTestDB(t)
	svc := services.NewVatRateService(conn)

	if _, err := svc.Create(services.VatRateInput{Name: "", Percent: dec("24")}); !rules.Is(err, rules.KindInvalidAmount) {
		t.Fatalf("empty name: want invalid_amount, got %v", err)
	}
	if _, err := svc.Create(services.VatRateInput{Name: "Bad", Percent: dec("-1")}); !rules.Is(err, rules.KindInvalidAmount) {
		t.Fatalf("negative percent: want invalid_amount, got %v", err)
	}
	if _, err := svc.Create(services.VatRateInput{Name: "Bad", Percent: dec("101")}); !rules.Is(err, rules.KindInvalidAmount) {
		t.Fatalf("percent above 100: want invalid_amount, got %v", err)
	}
	if _, err := svc.Create(services.VatRateInput{Name: "Zero", Percent: dec("0")}); err != nil {
		t.Fatalf("zero percent must be legal: %v", err)
	}
}

func TestDeleteReferencedRateRefused(t *testing.T) {
	conn := setupTestDB(t)
	client := seedClient(t, conn, "Acme OÜ")
	rate := seedRate(t, conn, "Standard", 24)
	invSvc := newInvoiceService(conn, services.FixedClock(today))
	rateSvc := services.NewVatRateService(conn)

	mustCreateInvoice(t, invSvc, services.InvoiceInput{
		ClientID:  client.ID,
		IssueDate: today,
		DueDate:   today.AddDate(0, 0, 7),
		VatRateID: &rate.ID,
		Lines:     []services.LineInput{{Description: "Work", Qty: dec("1"), UnitPrice: dec("10")}},
	})

	if err := rateSvc.Delete(rate.ID); !rules.Is(err, rules.KindRateInUse) {
		t.Fatalf("delete referenced rate: want rate_in_use, got %v", err)
	}

	// Deactivation is the allowed alternative and leaves the invoice alone.
	deactivated, err := rateSvc.Deactivate(rate.ID)
	if err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if deactivated.Active {
		t.Fatalf("rate still active after deactivate")
	}
	active, err := rateSvc.ActiveRates()
	if err != nil {
		t.Fatalf("active rates: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("active rates = %d, want 0", len(active))
	}
}

func TestEffectiveRateSurvivesRateDeletion(t *testing.T) {
	conn := setupTestDB(t)
	client := seedClient(t, conn, "Acme OÜ")
	rate := seedRate(t, conn, "Standard", 22)
	invSvc := newInvoiceService(conn, services.FixedClock(today))
	rateSvc := services.NewVatRateService(conn)

	inv := mustCreateInvoice(t, invSvc, services.InvoiceInput{
		ClientID:  client.ID,
		IssueDate: today,
		DueDate:   today.AddDate(0, 0, 7),
		VatRateID: &rate.ID,
		Lines:     []services.LineInput{{Description: "Work", Qty: dec("1"), UnitPrice: dec("100")}},
	})

	if !rateSvc.EffectiveRate(inv).Equal(dec("22")) {
		t.Fatalf("effective rate with live reference = %s, want 22", rateSvc.EffectiveRate(inv))
	}

	// Remove the row underneath the reference; the denormalized copy takes
	// over and the stored totals don't move.
	if err := conn.Delete(&models.VatRate{}, rate.ID).Error; err != nil {
		t.Fatalf("raw delete: %v", err)
	}
	if !rateSvc.EffectiveRate(inv).Equal(dec("22")) {
		t.Fatalf("effective rate after deletion = %s, want 22", rateSvc.EffectiveRate(inv))
	}
	reloaded, err := invSvc.Get(inv.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !reloaded.Total.Equal(dec("122.00")) {
		t.Fatalf("total after rate deletion = %s, want 122.00", reloaded.Total)
	}
}

func TestDefaultRatePrefersStandardPercent(t *testing.T) {
	conn := setupTestDB(t)
	svc := services.NewVatRateService(conn)

	seedRate(t, conn, "Reduced", 9)
	seedRate(t, conn, "Standard", 24)

	def, err := svc.DefaultRate()
	if err != nil {
		t.Fatalf("default rate: %v", err)
	}
	if def == nil || !def.Percent.Equal(dec("24")) {
		t.Fatalf("default rate = %v, want the 24%% entry", def)
	}

	// Without a standard entry the lowest active rate wins.
	if err := conn.Delete(&models.VatRate{}, def.ID).Error; err != nil {
		t.Fatalf("delete: %v", err)
	}
	def, err = svc.DefaultRate()
	if err != nil {
		t.Fatalf("default rate: %v", err)
	}
	if def == nil || !def.Percent.Equal(dec("9")) {
		t.Fatalf("fallback default = %v, want the 9%% entry", def)
	}

	// Empty directory: the default percent is still the standard figure.
	if err := conn.Delete(&models.VatRate{}, def.ID).Error; err != nil {
		t.Fatalf("delete: %v", err)
	}
	percent, err := svc.DefaultPercent()
	if err != nil {
		t.Fatalf("default percent: %v", err)
	}
	if !percent.Equal(dec("24")) {
		t.Fatalf("default percent with empty directory = %s, want 24", percent)
	}
}
