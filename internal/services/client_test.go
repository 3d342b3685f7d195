package services_test

import (
	"testing"

	"github.com/tkallas/arved/internal/models"
	"github.com/tkallas/arved/internal/rules"
	"github.com/tkallas/arved/internal/services"
)

func TestClientCRUD(t *testing.T) {
	conn := setupTestDB(t)
	svc := services.NewClientService(conn)

	created, err := svc.Create(services.ClientInput{Name: "  Acme OÜ  ", Email: "acme@example.com"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Name != "Acme OÜ" {
		t.Fatalf("name not trimmed: %q", created.Name)
	}

	if _, err := svc.Create(services.ClientInput{Name: "   "}); !rules.Is(err, rules.KindInvalidAmount) {
		t.Fatalf("blank name: want invalid_amount, got %v", err)
	}

	updated, err := svc.Update(created.ID, services.ClientInput{Name: "Acme Group OÜ", Phone: "+372 5555 5555"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Acme Group OÜ" || updated.Phone != "+372 5555 5555" {
		t.Fatalf("update did not stick: %+v", updated)
	}

	if err := svc.Delete(created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(created.ID); !services.IsNotFound(err) {
		t.Fatalf("get after delete: want not found, got %v", err)
	}
}

func TestClientListSearch(t *testing.T) {
	conn := setupTestDB(t)
	svc := services.NewClientService(conn)

	seedClient(t, conn, "Alpha AS")
	seedClient(t, conn, "Beta OÜ")
	seedClient(t, conn, "Gamma Alpha MTÜ")

	all, err := svc.List("")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("unfiltered = %d, want 3", len(all))
	}

	matched, err := svc.List("Alpha")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(matched) != 2 {
		t.Fatalf("search Alpha = %d, want 2", len(matched))
	}
}

func TestClientDeleteGuard(t *testing.T) {
	conn := setupTestDB(t)
	client := seedClient(t, conn, "Acme OÜ")
	seedRate(t, conn, "Standard", 24)
	clientSvc := services.NewClientService(conn)
	invSvc := newInvoiceService(conn, services.FixedClock(today))

	inv := mustCreateInvoice(t, invSvc, services.InvoiceInput{
		ClientID:  client.ID,
		IssueDate: today,
		DueDate:   today.AddDate(0, 0, 7),
		Lines:     []services.LineInput{{Description: "Work", Qty: dec("1"), UnitPrice: dec("10")}},
	})

	if err := clientSvc.Delete(client.ID); !rules.Is(err, rules.KindClientHasInvoices) {
		t.Fatalf("delete with invoices: want client_has_invoices, got %v", err)
	}

	if err := invSvc.Delete(inv.ID); err != nil {
		t.Fatalf("delete invoice: %v", err)
	}
	if err := clientSvc.Delete(client.ID); err != nil {
		t.Fatalf("delete without invoices: %v", err)
	}
}

func TestClientStats(t *testing.T) {
	conn := setupTestDB(t)
	client := seedClient(t, conn, "Acme OÜ")
	seedRate(t, conn, "Standard", 24)
	clientSvc := services.NewClientService(conn)
	invSvc := newInvoiceService(conn, services.FixedClock(today))

	line := []services.LineInput{{Description: "Work", Qty: dec("1"), UnitPrice: dec("100")}}
	mustCreateInvoice(t, invSvc, services.InvoiceInput{
		ClientID: client.ID, IssueDate: today.AddDate(0, 0, -20), DueDate: today.AddDate(0, 0, -6),
		Status: models.InvoiceStatusPaid, Lines: line,
	})
	mustCreateInvoice(t, invSvc, services.InvoiceInput{
		ClientID: client.ID, IssueDate: today, DueDate: today.AddDate(0, 0, 14),
		Status: models.InvoiceStatusSent, Lines: line,
	})
	// Drafts count as invoices but not as revenue.
	mustCreateInvoice(t, invSvc, services.InvoiceInput{
		ClientID: client.ID, IssueDate: today.AddDate(0, 0, -1), DueDate: today.AddDate(0, 0, 13),
		Lines: line,
	})

	stats, err := clientSvc.Stats(client.ID)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.InvoiceCount != 3 {
		t.Fatalf("invoice count = %d, want 3", stats.InvoiceCount)
	}
	if stats.TotalRevenue != "248.00" {
		t.Fatalf("revenue = %s, want 248.00 (two 124.00 invoices, draft excluded)", stats.TotalRevenue)
	}
	if stats.LastInvoiceDate == nil || !stats.LastInvoiceDate.Equal(models.DateOf(today)) {
		t.Fatalf("last invoice date = %v, want today", stats.LastInvoiceDate)
	}
}
