package postings

import (
	"time"

	"github.com/google/uuid"

	"github.com/openbooks-app/openbooks/internal/ledger/accounts"
)

// Reference classifies the origin of a posting. It is a closed set: handling
// code switches on it exhaustively instead of comparing free-form strings.
type Reference string

const (
	// ReferenceJournal marks lines of a manual journal entry.
	ReferenceJournal Reference = "JOURNAL"
	// ReferenceInvoicePayment marks postings generated by recording an invoice payment.
	ReferenceInvoicePayment Reference = "INVOICE_PAYMENT"
	// ReferenceExpense marks postings generated by recording an expense.
	ReferenceExpense Reference = "EXPENSE"
)

// Valid reports whether r is a known reference tag.
func (r Reference) Valid() bool {
	switch r {
	case ReferenceJournal, ReferenceInvoicePayment, ReferenceExpense:
		return true
	}
	return false
}

// Manual reports whether postings carrying this tag were authored by a user
// and may therefore be deleted as a group.
func (r Reference) Manual() bool {
	return r == ReferenceJournal
}

// Posting is one immutable row of the append-only posting set. A line carries
// either a debit or a credit; both are non-negative. GroupID links all lines
// of one manual journal entry. SourceID points back at the originating
// record for automatic postings.
type Posting struct {
	ID          int64
	OrgID       uuid.UUID
	AccountID   int64
	Date        time.Time
	Debit       float64
	Credit      float64
	Description string
	Reference   Reference
	GroupID     *uuid.UUID
	SourceID    *int64
	CreatedAt   time.Time
}

// Entry is a posting enriched with its account for listings.
type Entry struct {
	Posting
	AccountCode string
	AccountName string
	AccountType accounts.AccountType
}

// Filter narrows entry listings.
type Filter struct {
	AccountID *int64
	From      *time.Time
	To        *time.Time
	Search    string
}
