// Package expenses implements the expense recording workflow. Each recorded
// expense emits one automatic ledger posting debiting the chosen expense
// account; the offsetting side stays implicit in the workflow, as in the
// invoice payment flow.
package expenses

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Expense is a recorded business expense.
type Expense struct {
	ID          int64
	OrgID       uuid.UUID
	VendorName  string
	Description string
	Amount      float64
	Date        time.Time
	AccountID   int64
	CreatedAt   time.Time
}

// ErrExpenseNotFound indicates a missing expense.
var ErrExpenseNotFound = errors.New("expenses: expense not found")
