package invoices

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/openbooks-app/openbooks/internal/ledger/postings"
)

type memoryInvoiceRepo struct {
	invoices      map[int64]*Invoice
	payments      map[int64][]Payment
	nextID        int64
	nextPaymentID int64
}

func newMemoryInvoiceRepo() *memoryInvoiceRepo {
	return &memoryInvoiceRepo{
		invoices: make(map[int64]*Invoice),
		payments: make(map[int64][]Payment),
	}
}

func (r *memoryInvoiceRepo) Create(ctx context.Context, inv Invoice) (Invoice, error) {
	r.nextID++
	inv.ID = r.nextID
	inv.CreatedAt = time.Now()
	inv.UpdatedAt = inv.CreatedAt
	r.invoices[inv.ID] = &inv
	return inv, nil
}

func (r *memoryInvoiceRepo) Get(ctx context.Context, orgID uuid.UUID, id int64) (Invoice, error) {
	inv, ok := r.invoices[id]
	if !ok || inv.OrgID != orgID {
		return Invoice{}, ErrInvoiceNotFound
	}
	return *inv, nil
}

func (r *memoryInvoiceRepo) List(ctx context.Context, orgID uuid.UUID) ([]Invoice, error) {
	var out []Invoice
	for _, inv := range r.invoices {
		if inv.OrgID == orgID {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (r *memoryInvoiceRepo) UpdateStatus(ctx context.Context, orgID uuid.UUID, id int64, status InvoiceStatus) error {
	inv, ok := r.invoices[id]
	if !ok || inv.OrgID != orgID {
		return ErrInvoiceNotFound
	}
	inv.Status = status
	inv.UpdatedAt = time.Now()
	return nil
}

func (r *memoryInvoiceRepo) CreatePayment(ctx context.Context, p Payment) (Payment, error) {
	r.nextPaymentID++
	p.ID = r.nextPaymentID
	p.CreatedAt = time.Now()
	r.payments[p.InvoiceID] = append(r.payments[p.InvoiceID], p)
	return p, nil
}

func (r *memoryInvoiceRepo) ListPayments(ctx context.Context, invoiceID int64) ([]Payment, error) {
	return r.payments[invoiceID], nil
}

func (r *memoryInvoiceRepo) SumPayments(ctx context.Context, invoiceID int64) (float64, error) {
	var total float64
	for _, p := range r.payments[invoiceID] {
		total += p.Amount
	}
	return total, nil
}

type recordingLedger struct {
	posted []postings.AutomaticInput
}

func (l *recordingLedger) PostAutomatic(ctx context.Context, orgID uuid.UUID, in postings.AutomaticInput) (postings.Posting, error) {
	l.posted = append(l.posted, in)
	return postings.Posting{ID: int64(len(l.posted)), OrgID: orgID, AccountID: in.AccountID}, nil
}

func paymentDate() time.Time {
	return time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
}

func createSentInvoice(t *testing.T, svc *Service, orgID uuid.UUID, total float64) Invoice {
	t.Helper()
	inv, err := svc.Create(context.Background(), orgID, CreateInput{
		Number:       "INV-001",
		CustomerName: "Acme Ltd",
		Total:        total,
		IssueDate:    paymentDate().AddDate(0, 0, -14),
		DueDate:      paymentDate().AddDate(0, 0, 16),
	})
	require.NoError(t, err)
	require.NoError(t, svc.Send(context.Background(), orgID, inv.ID))
	return inv
}

func TestSendOnlyFromDraft(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()
	svc := NewService(newMemoryInvoiceRepo(), &recordingLedger{})

	inv := createSentInvoice(t, svc, orgID, 100)
	err := svc.Send(ctx, orgID, inv.ID)
	require.ErrorIs(t, err, ErrInvalidStatus)
}

func TestRecordPaymentPartialThenPaid(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()
	ledger := &recordingLedger{}
	svc := NewService(newMemoryInvoiceRepo(), ledger)

	inv := createSentInvoice(t, svc, orgID, 1000)

	_, err := svc.RecordPayment(ctx, orgID, inv.ID, PaymentInput{
		Amount: 400, Date: paymentDate(), Method: "bank", DepositAccountID: 7,
	})
	require.NoError(t, err)

	detail, err := svc.Get(ctx, orgID, inv.ID)
	require.NoError(t, err)
	require.Equal(t, StatusPartial, detail.Status)
	require.InDelta(t, 400, detail.Paid, 0.001)
	require.InDelta(t, 600, detail.Balance, 0.001)

	_, err = svc.RecordPayment(ctx, orgID, inv.ID, PaymentInput{
		Amount: 600, Date: paymentDate().AddDate(0, 0, 7), Method: "bank", DepositAccountID: 7,
	})
	require.NoError(t, err)

	detail, err = svc.Get(ctx, orgID, inv.ID)
	require.NoError(t, err)
	require.Equal(t, StatusPaid, detail.Status)
	require.InDelta(t, 0, detail.Balance, 0.001)
	require.Len(t, detail.Payments, 2)
}

func TestRecordPaymentEmitsLedgerLine(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()
	ledger := &recordingLedger{}
	svc := NewService(newMemoryInvoiceRepo(), ledger)

	inv := createSentInvoice(t, svc, orgID, 500)

	_, err := svc.RecordPayment(ctx, orgID, inv.ID, PaymentInput{
		Amount: 500, Date: paymentDate(), Method: "cash", DepositAccountID: 7,
	})
	require.NoError(t, err)

	require.Len(t, ledger.posted, 1)
	line := ledger.posted[0]
	require.Equal(t, postings.ReferenceInvoicePayment, line.Reference)
	require.Equal(t, int64(7), line.AccountID)
	require.InDelta(t, 500, line.Debit, 0.001)
	require.Zero(t, line.Credit)
	require.NotNil(t, line.SourceID)
	require.Equal(t, inv.ID, *line.SourceID)
}

func TestRecordPaymentRejectsOverpayment(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()
	ledger := &recordingLedger{}
	repo := newMemoryInvoiceRepo()
	svc := NewService(repo, ledger)

	inv := createSentInvoice(t, svc, orgID, 300)

	_, err := svc.RecordPayment(ctx, orgID, inv.ID, PaymentInput{
		Amount: 200, Date: paymentDate(), Method: "bank", DepositAccountID: 7,
	})
	require.NoError(t, err)

	_, err = svc.RecordPayment(ctx, orgID, inv.ID, PaymentInput{
		Amount: 150, Date: paymentDate(), Method: "bank", DepositAccountID: 7,
	})
	require.ErrorIs(t, err, ErrExceedsBalance)

	// The rejected payment must not reach storage or the ledger.
	payments, err := repo.ListPayments(ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	require.Len(t, ledger.posted, 1)
}

func TestRecordPaymentUnknownInvoice(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryInvoiceRepo(), &recordingLedger{})

	_, err := svc.RecordPayment(ctx, uuid.New(), 404, PaymentInput{
		Amount: 100, Date: paymentDate(), Method: "bank", DepositAccountID: 7,
	})
	require.ErrorIs(t, err, ErrInvoiceNotFound)
}
