package postings

import (
	"fmt"
	"math"
	"time"

	"github.com/openbooks-app/openbooks/internal/ledger/shared"
)

// balanceEpsilon tolerates float rounding when comparing group totals.
const balanceEpsilon = 0.01

// JournalLineInput describes one line of a manual journal entry.
type JournalLineInput struct {
	AccountID int64
	Debit     float64
	Credit    float64
}

// JournalInput groups fields required to post a manual journal entry.
type JournalInput struct {
	Date        time.Time
	Description string
	Lines       []JournalLineInput
}

// Validate checks shape and the balance invariant before anything is written.
func (in JournalInput) Validate() error {
	if in.Date.IsZero() {
		return fmt.Errorf("%w: date is required", shared.ErrInvalidInput)
	}
	if in.Description == "" {
		return fmt.Errorf("%w: description is required", shared.ErrInvalidInput)
	}
	if len(in.Lines) < 2 {
		return shared.ErrTooFewLines
	}
	var debit, credit float64
	for idx, line := range in.Lines {
		if line.AccountID == 0 {
			return fmt.Errorf("%w: line %d missing account", shared.ErrInvalidInput, idx)
		}
		if line.Debit < 0 || line.Credit < 0 {
			return fmt.Errorf("%w: line %d negative amount", shared.ErrInvalidInput, idx)
		}
		debit += line.Debit
		credit += line.Credit
	}
	if math.Abs(debit-credit) > balanceEpsilon {
		return shared.ErrUnbalanced
	}
	return nil
}

// AutomaticInput describes a single-line posting emitted by a workflow event
// (invoice payment, expense). The balancing side of the transaction is
// implicit in the owning workflow and is not checked here.
type AutomaticInput struct {
	AccountID   int64
	Date        time.Time
	Debit       float64
	Credit      float64
	Description string
	Reference   Reference
	SourceID    *int64
}

// Validate checks shape. Automatic postings carry a single line, so the
// group balance rule does not apply to them.
func (in AutomaticInput) Validate() error {
	if in.AccountID == 0 {
		return fmt.Errorf("%w: account is required", shared.ErrInvalidInput)
	}
	if in.Date.IsZero() {
		return fmt.Errorf("%w: date is required", shared.ErrInvalidInput)
	}
	if in.Debit < 0 || in.Credit < 0 {
		return fmt.Errorf("%w: negative amount", shared.ErrInvalidInput)
	}
	if !in.Reference.Valid() {
		return fmt.Errorf("%w: unknown reference %q", shared.ErrInvalidInput, in.Reference)
	}
	if in.Reference.Manual() {
		return fmt.Errorf("%w: reference %q is reserved for manual entries", shared.ErrInvalidInput, in.Reference)
	}
	return nil
}
