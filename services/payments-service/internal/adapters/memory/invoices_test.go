package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prrathnayake/conveyancers-marketplace/platform/idgen"
	"github.com/prrathnayake/conveyancers-marketplace/services/payments-service/internal/domain"
)

func TestInvoiceLedgerLifecycle(t *testing.T) {
	ctx := context.Background()
	ledger := NewInvoiceLedger(idgen.NewSequence(), func() time.Time { return fixedNow })

	inv, err := ledger.Create(ctx, domain.NewInvoice{
		JobID: "job", Recipient: "recipient", IssuedAt: "2024-01-01", DueAt: "2024-01-15",
		Lines: []domain.InvoiceLine{{Description: "Fee", AmountCents: 10000, TaxRate: 0.10}},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if inv.ID != "inv_000001" || inv.SubtotalCents != 10000 || inv.TaxCents != 1000 || inv.TotalCents != 11000 {
		t.Fatalf("unexpected invoice %+v", inv)
	}

	if _, err := ledger.UpdateStatus(ctx, inv.ID, domain.InvoiceStatusPaid); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("draft -> paid must be rejected, got %v", err)
	}
	paid, err := ledger.Advance(ctx, inv.ID, domain.InvoiceStatusPaid)
	if err != nil || paid.Status != domain.InvoiceStatusPaid {
		t.Fatalf("Advance to paid: %+v %v", paid, err)
	}
	if _, err := ledger.UpdateStatus(ctx, inv.ID, domain.InvoiceStatusVoided); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("paid -> voided must be rejected, got %v", err)
	}
	if _, err := ledger.Get(ctx, "inv_missing"); domain.CodeOf(err, "") != "invoice_not_found" {
		t.Fatalf("expected invoice_not_found, got %v", err)
	}
	if _, err := ledger.UpdateStatus(ctx, "inv_missing", domain.InvoiceStatusIssued); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestInvoiceLedgerRejectsInvalidInputWithoutConsumingState(t *testing.T) {
	ctx := context.Background()
	ledger := NewInvoiceLedger(idgen.NewSequence(), nil)
	_, err := ledger.Create(ctx, domain.NewInvoice{JobID: "job", Recipient: "r", IssuedAt: "2024-01-01", DueAt: "2024-01-02"})
	if domain.CodeOf(err, "") != "missing_line_items" {
		t.Fatalf("expected missing_line_items, got %v", err)
	}
	list, _ := ledger.List(ctx)
	if len(list) != 0 {
		t.Fatalf("failed create must not store an invoice")
	}
}

func TestInvoiceListReturnsCopies(t *testing.T) {
	ctx := context.Background()
	ledger := NewInvoiceLedger(idgen.NewSequence(), nil)
	inv, _ := ledger.Create(ctx, domain.NewInvoice{
		JobID: "job", Recipient: "r", IssuedAt: "2024-01-01", DueAt: "2024-01-02",
		Lines: []domain.InvoiceLine{{Description: "Fee", AmountCents: 100}},
	})
	inv.Lines[0].AmountCents = 1
	stored, _ := ledger.Get(ctx, inv.ID)
	if stored.Lines[0].AmountCents != 100 {
		t.Fatalf("invoice lines must be immutable once stored")
	}
}
