package services_test

import (
	"testing"

	"github.com/tkallas/arved/internal/models"
	"github.com/tkallas/arved/internal/rules"
	"github.com/tkallas/arved/internal/services"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		name    string
		from    models.InvoiceStatus
		to      models.InvoiceStatus
		pastDue bool
		want    bool
	}{
		{"draft to sent", models.InvoiceStatusDraft, models.InvoiceStatusSent, false, true},
		{"draft to paid", models.InvoiceStatusDraft, models.InvoiceStatusPaid, false, true},
		{"draft to overdue", models.InvoiceStatusDraft, models.InvoiceStatusOverdue, false, true},
		{"sent to paid", models.InvoiceStatusSent, models.InvoiceStatusPaid, false, true},
		{"sent to draft", models.InvoiceStatusSent, models.InvoiceStatusDraft, false, true},
		{"sent to overdue", models.InvoiceStatusSent, models.InvoiceStatusOverdue, true, true},
		{"overdue to paid", models.InvoiceStatusOverdue, models.InvoiceStatusPaid, false, true},
		{"overdue to sent while past due", models.InvoiceStatusOverdue, models.InvoiceStatusSent, true, false},
		{"overdue to sent after extension", models.InvoiceStatusOverdue, models.InvoiceStatusSent, false, true},
		{"paid to sent", models.InvoiceStatusPaid, models.InvoiceStatusSent, false, false},
		{"paid to draft", models.InvoiceStatusPaid, models.InvoiceStatusDraft, false, false},
		{"paid to overdue", models.InvoiceStatusPaid, models.InvoiceStatusOverdue, true, false},
		{"paid to paid self loop", models.InvoiceStatusPaid, models.InvoiceStatusPaid, false, true},
		{"draft self loop", models.InvoiceStatusDraft, models.InvoiceStatusDraft, false, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, reason := services.CanTransition(tc.from, tc.to, tc.pastDue)
			if got != tc.want {
				t.Fatalf("CanTransition(%s, %s, %v) = %v (%s), want %v", tc.from, tc.to, tc.pastDue, got, reason, tc.want)
			}
			if !got && reason == "" {
				t.Fatalf("refused transition must carry a reason")
			}
		})
	}
}

func TestCheckTransitionErrorKinds(t *testing.T) {
	if err := services.CheckTransition(models.InvoiceStatusPaid, models.InvoiceStatusSent, false); !rules.Is(err, rules.KindIllegalTransition) {
		t.Fatalf("paid->sent: want illegal_transition, got %v", err)
	}
	if err := services.CheckTransition(models.InvoiceStatusDraft, "archived", false); !rules.Is(err, rules.KindInvalidStatus) {
		t.Fatalf("unknown target status: want invalid_status, got %v", err)
	}
	if err := services.CheckTransition(models.InvoiceStatusSent, models.InvoiceStatusPaid, false); err != nil {
		t.Fatalf("sent->paid should be legal, got %v", err)
	}
}
