package memory

import (
	"context"
	"sync"
	"time"

	"github.com/prrathnayake/conveyancers-marketplace/services/payments-service/internal/domain"
	"github.com/prrathnayake/conveyancers-marketplace/services/payments-service/internal/ports"
)

type InvoiceLedger struct {
	mu       sync.Mutex
	ids      ports.IDGenerator
	nowFn    func() time.Time
	invoices map[string]domain.InvoiceRecord
	order    []string
}

func NewInvoiceLedger(ids ports.IDGenerator, nowFn func() time.Time) *InvoiceLedger {
	if nowFn == nil {
		nowFn = func() time.Time { return time.Now().UTC() }
	}
	return &InvoiceLedger{ids: ids, nowFn: nowFn, invoices: map[string]domain.InvoiceRecord{}}
}

func (l *InvoiceLedger) Create(_ context.Context, input domain.NewInvoice) (domain.InvoiceRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	inv, err := domain.BuildInvoice(l.ids.NewID("inv_"), input, l.nowFn())
	if err != nil {
		return domain.InvoiceRecord{}, err
	}
	l.invoices[inv.ID] = inv
	l.order = append(l.order, inv.ID)
	return cloneInvoice(inv), nil
}

func (l *InvoiceLedger) Get(_ context.Context, invoiceID string) (domain.InvoiceRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	inv, ok := l.invoices[invoiceID]
	if !ok {
		return domain.InvoiceRecord{}, invoiceNotFound(invoiceID)
	}
	return cloneInvoice(inv), nil
}

func (l *InvoiceLedger) List(_ context.Context) ([]domain.InvoiceRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.InvoiceRecord, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, cloneInvoice(l.invoices[id]))
	}
	return out, nil
}

func (l *InvoiceLedger) UpdateStatus(_ context.Context, invoiceID string, status domain.InvoiceStatus) (domain.InvoiceRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	inv, ok := l.invoices[invoiceID]
	if !ok {
		return domain.InvoiceRecord{}, invoiceNotFound(invoiceID)
	}
	if err := inv.Transition(status, l.nowFn()); err != nil {
		return domain.InvoiceRecord{}, err
	}
	l.invoices[invoiceID] = inv
	return cloneInvoice(inv), nil
}

func (l *InvoiceLedger) Advance(_ context.Context, invoiceID string, target domain.InvoiceStatus) (domain.InvoiceRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	inv, ok := l.invoices[invoiceID]
	if !ok {
		return domain.InvoiceRecord{}, invoiceNotFound(invoiceID)
	}
	path, reachable := inv.Status.PathTo(target)
	if !reachable {
		return domain.InvoiceRecord{}, domain.Transition("invalid_transition", "invoice cannot reach "+string(target)+" from "+string(inv.Status))
	}
	now := l.nowFn()
	for _, step := range path {
		if err := inv.Transition(step, now); err != nil {
			return domain.InvoiceRecord{}, err
		}
	}
	l.invoices[invoiceID] = inv
	return cloneInvoice(inv), nil
}

func invoiceNotFound(invoiceID string) error {
	return domain.NotFound("invoice_not_found", "invoice "+invoiceID+" not found")
}

func cloneInvoice(inv domain.InvoiceRecord) domain.InvoiceRecord {
	inv.Lines = append([]domain.InvoiceLine(nil), inv.Lines...)
	return inv
}
