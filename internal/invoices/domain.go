// Package invoices implements the invoice and payment workflow. It consumes
// the ledger core: each recorded payment emits one automatic posting against
// the deposit account chosen by the caller.
package invoices

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// InvoiceStatus enumerates the invoice lifecycle. PARTIAL and PAID are
// derived from cumulative recorded payments, never set directly.
type InvoiceStatus string

const (
	StatusDraft   InvoiceStatus = "DRAFT"
	StatusSent    InvoiceStatus = "SENT"
	StatusPartial InvoiceStatus = "PARTIAL"
	StatusPaid    InvoiceStatus = "PAID"
	StatusOverdue InvoiceStatus = "OVERDUE"
)

// Invoice is a customer invoice. Customer master data lives outside this
// system; invoices carry a display name only.
type Invoice struct {
	ID           int64
	OrgID        uuid.UUID
	Number       string
	CustomerName string
	Total        float64
	Status       InvoiceStatus
	IssueDate    time.Time
	DueDate      time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Payment records money received against an invoice.
type Payment struct {
	ID        int64
	InvoiceID int64
	Amount    float64
	Date      time.Time
	Method    string
	Notes     string
	CreatedAt time.Time
}

var (
	// ErrInvoiceNotFound indicates a missing invoice.
	ErrInvoiceNotFound = errors.New("invoices: invoice not found")
	// ErrExceedsBalance indicates a payment larger than the remaining balance.
	ErrExceedsBalance = errors.New("invoices: payment exceeds remaining balance")
	// ErrInvalidStatus indicates the action does not apply in the current status.
	ErrInvalidStatus = errors.New("invoices: invalid status transition")
)
