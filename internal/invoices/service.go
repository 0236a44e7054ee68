package invoices

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/openbooks-app/openbooks/internal/ledger/postings"
)

// LedgerPort is the slice of the posting engine this workflow consumes.
type LedgerPort interface {
	PostAutomatic(ctx context.Context, orgID uuid.UUID, in postings.AutomaticInput) (postings.Posting, error)
}

// CreateInput groups fields for creating an invoice.
type CreateInput struct {
	Number       string
	CustomerName string
	Total        float64
	IssueDate    time.Time
	DueDate      time.Time
}

// PaymentInput records money received against an invoice. DepositAccountID
// names the ledger account to debit; the workflow, not the ledger core,
// decides which side of the transaction it represents.
type PaymentInput struct {
	Amount           float64
	Date             time.Time
	Method           string
	Notes            string
	DepositAccountID int64
}

// InvoiceDetail is an invoice with its payments and derived amounts.
type InvoiceDetail struct {
	Invoice
	Payments []Payment
	Paid     float64
	Balance  float64
}

type Service struct {
	repo   RepositoryPort
	ledger LedgerPort
}

func NewService(repo RepositoryPort, ledger LedgerPort) *Service {
	return &Service{repo: repo, ledger: ledger}
}

// Create adds a draft invoice.
func (s *Service) Create(ctx context.Context, orgID uuid.UUID, in CreateInput) (Invoice, error) {
	if in.Number == "" {
		return Invoice{}, errors.New("invoices: number required")
	}
	if in.CustomerName == "" {
		return Invoice{}, errors.New("invoices: customer name required")
	}
	if in.Total <= 0 {
		return Invoice{}, errors.New("invoices: total must be positive")
	}
	return s.repo.Create(ctx, Invoice{
		OrgID:        orgID,
		Number:       in.Number,
		CustomerName: in.CustomerName,
		Total:        in.Total,
		Status:       StatusDraft,
		IssueDate:    in.IssueDate,
		DueDate:      in.DueDate,
	})
}

// Send marks a draft invoice as sent.
func (s *Service) Send(ctx context.Context, orgID uuid.UUID, id int64) error {
	inv, err := s.repo.Get(ctx, orgID, id)
	if err != nil {
		return err
	}
	if inv.Status != StatusDraft {
		return ErrInvalidStatus
	}
	return s.repo.UpdateStatus(ctx, orgID, id, StatusSent)
}

// Get returns an invoice with its payments and derived paid/balance amounts.
func (s *Service) Get(ctx context.Context, orgID uuid.UUID, id int64) (InvoiceDetail, error) {
	inv, err := s.repo.Get(ctx, orgID, id)
	if err != nil {
		return InvoiceDetail{}, err
	}
	payments, err := s.repo.ListPayments(ctx, id)
	if err != nil {
		return InvoiceDetail{}, err
	}
	var paid float64
	for _, p := range payments {
		paid += p.Amount
	}
	return InvoiceDetail{
		Invoice:  inv,
		Payments: payments,
		Paid:     paid,
		Balance:  inv.Total - paid,
	}, nil
}

// List returns the organization's invoices, newest first.
func (s *Service) List(ctx context.Context, orgID uuid.UUID) ([]Invoice, error) {
	return s.repo.List(ctx, orgID)
}

// RecordPayment stores a payment, recomputes the invoice status from the
// cumulative paid amount, and posts one automatic ledger line debiting the
// deposit account. Overpayment is rejected before anything is written.
func (s *Service) RecordPayment(ctx context.Context, orgID uuid.UUID, invoiceID int64, in PaymentInput) (Payment, error) {
	if in.Amount <= 0 {
		return Payment{}, errors.New("invoices: amount must be positive")
	}
	inv, err := s.repo.Get(ctx, orgID, invoiceID)
	if err != nil {
		return Payment{}, err
	}
	paid, err := s.repo.SumPayments(ctx, invoiceID)
	if err != nil {
		return Payment{}, err
	}
	if in.Amount > inv.Total-paid {
		return Payment{}, ErrExceedsBalance
	}

	payment, err := s.repo.CreatePayment(ctx, Payment{
		InvoiceID: invoiceID,
		Amount:    in.Amount,
		Date:      in.Date,
		Method:    in.Method,
		Notes:     in.Notes,
	})
	if err != nil {
		return Payment{}, err
	}

	newPaid := paid + in.Amount
	status := inv.Status
	if newPaid >= inv.Total {
		status = StatusPaid
	} else if newPaid > 0 {
		status = StatusPartial
	}
	if status != inv.Status {
		if err := s.repo.UpdateStatus(ctx, orgID, invoiceID, status); err != nil {
			return Payment{}, err
		}
	}

	sourceID := invoiceID
	_, err = s.ledger.PostAutomatic(ctx, orgID, postings.AutomaticInput{
		AccountID:   in.DepositAccountID,
		Date:        in.Date,
		Debit:       in.Amount,
		Description: fmt.Sprintf("Payment for invoice %s", inv.Number),
		Reference:   postings.ReferenceInvoicePayment,
		SourceID:    &sourceID,
	})
	if err != nil {
		return Payment{}, err
	}
	return payment, nil
}
