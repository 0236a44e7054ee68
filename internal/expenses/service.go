package expenses

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

// RecordInput groups fields for recording an expense.
type RecordInput struct {
	VendorName  string
	Description string
	Amount      float64
	Date        time.Time
	AccountID   int64
}

type Service struct {
	repo   RepositoryPort
	ledger LedgerPort
}

func NewService(repo RepositoryPort, ledger LedgerPort) *Service {
	return &Service{repo: repo, ledger: ledger}
}

// Record stores the expense and posts one automatic ledger line debiting the
// chosen expense account, tagged with the expense id as its source.
func (s *Service) Record(ctx context.Context, orgID uuid.UUID, in RecordInput) (Expense, error) {
	if in.VendorName == "" {
		return Expense{}, errors.New("expenses: vendor name required")
	}
	if in.Amount <= 0 {
		return Expense{}, errors.New("expenses: amount must be positive")
	}
	if in.Date.IsZero() {
		return Expense{}, errors.New("expenses: date required")
	}

	exp, err := s.repo.Create(ctx, Expense{
		OrgID:       orgID,
		VendorName:  in.VendorName,
		Description: in.Description,
		Amount:      in.Amount,
		Date:        in.Date,
		AccountID:   in.AccountID,
	})
	if err != nil {
		return Expense{}, err
	}

	sourceID := exp.ID
	_, err = s.ledger.PostAutomatic(ctx, orgID, postings.AutomaticInput{
		AccountID:   in.AccountID,
		Date:        in.Date,
		Debit:       in.Amount,
		Description: fmt.Sprintf("Expense: %s", in.VendorName),
		Reference:   postings.ReferenceExpense,
		SourceID:    &sourceID,
	})
	if err != nil {
		return Expense{}, err
	}
	return exp, nil
}

// Get returns one expense.
func (s *Service) Get(ctx context.Context, orgID uuid.UUID, id int64) (Expense, error) {
	return s.repo.Get(ctx, orgID, id)
}

// List returns the organization's expenses, newest first.
func (s *Service) List(ctx context.Context, orgID uuid.UUID) ([]Expense, error) {
	return s.repo.List(ctx, orgID)
}
