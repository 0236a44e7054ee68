package postings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/openbooks-app/openbooks/internal/ledger/accounts"
	"github.com/openbooks-app/openbooks/internal/ledger/reports"
	ledgershared "github.com/openbooks-app/openbooks/internal/ledger/shared"
	appshared "github.com/openbooks-app/openbooks/internal/shared"
)

// AccountDirectory resolves accounts for balance aggregation. The chart of
// accounts service satisfies it.
type AccountDirectory interface {
	Get(ctx context.Context, orgID uuid.UUID, id int64) (accounts.Account, error)
	Children(ctx context.Context, orgID uuid.UUID, id int64) ([]accounts.Account, error)
}

// AuditPort records posting activity in the audit trail.
type AuditPort interface {
	Record(ctx context.Context, log appshared.AuditLog) error
}

// MetricsPort counts posting activity. Implemented by observability.Metrics.
type MetricsPort interface {
	PostingRecorded(reference string, lines int)
	JournalDeleted(lines int)
	UnbalancedRejected()
}

type Service struct {
	repo     Repository
	dir      AccountDirectory
	audit    AuditPort
	metrics  MetricsPort
	now      func() time.Time
	newGroup func() uuid.UUID
}

func NewService(repo Repository, dir AccountDirectory, audit AuditPort, metrics MetricsPort) *Service {
	return &Service{
		repo:     repo,
		dir:      dir,
		audit:    audit,
		metrics:  metrics,
		now:      time.Now,
		newGroup: uuid.New,
	}
}

// WithNow overrides the clock, for tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// PostJournal records a manual journal entry: one posting per line, all
// sharing a freshly generated reference group and the JOURNAL tag. Every
// account must resolve to an active account of the organization, and the
// lines must balance within 0.01. The lines commit in one transaction or not
// at all.
func (s *Service) PostJournal(ctx context.Context, orgID uuid.UUID, in JournalInput) ([]Posting, uuid.UUID, error) {
	if err := in.Validate(); err != nil {
		if errors.Is(err, ledgershared.ErrUnbalanced) && s.metrics != nil {
			s.metrics.UnbalancedRejected()
		}
		return nil, uuid.Nil, err
	}
	groupID := s.newGroup()
	created := make([]Posting, 0, len(in.Lines))
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		for _, line := range in.Lines {
			if _, err := tx.GetActiveAccount(ctx, orgID, line.AccountID); err != nil {
				return err
			}
		}
		for _, line := range in.Lines {
			group := groupID
			p, err := tx.InsertPosting(ctx, Posting{
				OrgID:       orgID,
				AccountID:   line.AccountID,
				Date:        in.Date,
				Debit:       line.Debit,
				Credit:      line.Credit,
				Description: in.Description,
				Reference:   ReferenceJournal,
				GroupID:     &group,
			})
			if err != nil {
				return err
			}
			created = append(created, p)
		}
		return nil
	})
	if err != nil {
		return nil, uuid.Nil, err
	}
	if s.metrics != nil {
		s.metrics.PostingRecorded(string(ReferenceJournal), len(created))
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, appshared.AuditLog{
			OrgID:    orgID,
			Action:   "ledger.journal.post",
			Entity:   "journal_entry",
			EntityID: groupID.String(),
			Meta: map[string]any{
				"lines": len(created),
				"date":  in.Date.Format("2006-01-02"),
			},
			At: s.now(),
		})
	}
	return created, groupID, nil
}

// PostAutomatic records the single ledger line for a workflow event. The
// balancing side is implicit in the owning workflow (an expense touches only
// the expense account), so no group balance check applies here. Trial balance
// totals therefore only match on a journal-only ledger.
func (s *Service) PostAutomatic(ctx context.Context, orgID uuid.UUID, in AutomaticInput) (Posting, error) {
	if err := in.Validate(); err != nil {
		return Posting{}, err
	}
	var created Posting
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if _, err := tx.GetActiveAccount(ctx, orgID, in.AccountID); err != nil {
			return err
		}
		p, err := tx.InsertPosting(ctx, Posting{
			OrgID:       orgID,
			AccountID:   in.AccountID,
			Date:        in.Date,
			Debit:       in.Debit,
			Credit:      in.Credit,
			Description: in.Description,
			Reference:   in.Reference,
			SourceID:    in.SourceID,
		})
		if err != nil {
			return err
		}
		created = p
		return nil
	})
	if err != nil {
		return Posting{}, err
	}
	if s.metrics != nil {
		s.metrics.PostingRecorded(string(in.Reference), 1)
	}
	return created, nil
}

// DeleteJournal removes every posting of a manual reference group. Automatic
// postings are never deleted here; they retire with their originating record.
func (s *Service) DeleteJournal(ctx context.Context, orgID, groupID uuid.UUID) error {
	var deleted int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		group, err := tx.ListGroup(ctx, orgID, groupID)
		if err != nil {
			return err
		}
		if len(group) == 0 {
			return ledgershared.ErrEntryNotFound
		}
		for _, p := range group {
			if !p.Reference.Manual() {
				return ledgershared.ErrNotJournal
			}
		}
		deleted, err = tx.DeleteGroup(ctx, orgID, groupID)
		return err
	})
	if err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.JournalDeleted(int(deleted))
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, appshared.AuditLog{
			OrgID:    orgID,
			Action:   "ledger.journal.delete",
			Entity:   "journal_entry",
			EntityID: groupID.String(),
			Meta:     map[string]any{"lines": deleted},
			At:       s.now(),
		})
	}
	return nil
}

// GetGroup returns all postings sharing a reference group.
func (s *Service) GetGroup(ctx context.Context, orgID, groupID uuid.UUID) ([]Posting, error) {
	group, err := s.repo.ListGroup(ctx, orgID, groupID)
	if err != nil {
		return nil, err
	}
	if len(group) == 0 {
		return nil, ledgershared.ErrEntryNotFound
	}
	return group, nil
}

// AccountBalance recomputes the balance from the posting set on every call:
// sum of (debit - credit) over the account's own postings. Revenue and
// liability accounts therefore show credit balances as negative numbers.
func (s *Service) AccountBalance(ctx context.Context, orgID uuid.UUID, accountID int64) (float64, error) {
	if _, err := s.dir.Get(ctx, orgID, accountID); err != nil {
		return 0, err
	}
	return s.repo.SumAccount(ctx, orgID, accountID)
}

// SubtreeBalance returns the account's own balance plus the subtree balances
// of its direct children. Termination relies on the chart being acyclic,
// which parent assignment enforces.
func (s *Service) SubtreeBalance(ctx context.Context, orgID uuid.UUID, accountID int64) (float64, error) {
	if _, err := s.dir.Get(ctx, orgID, accountID); err != nil {
		return 0, err
	}
	return s.subtreeBalance(ctx, orgID, accountID)
}

func (s *Service) subtreeBalance(ctx context.Context, orgID uuid.UUID, accountID int64) (float64, error) {
	total, err := s.repo.SumAccount(ctx, orgID, accountID)
	if err != nil {
		return 0, err
	}
	children, err := s.dir.Children(ctx, orgID, accountID)
	if err != nil {
		return 0, err
	}
	for _, child := range children {
		sub, err := s.subtreeBalance(ctx, orgID, child.ID)
		if err != nil {
			return 0, err
		}
		total += sub
	}
	return total, nil
}

// TrialBalance aggregates per-account debit/credit totals into a trial
// balance grouped by account type.
func (s *Service) TrialBalance(ctx context.Context, orgID uuid.UUID) (reports.TrialBalance, error) {
	totals, err := s.repo.Totals(ctx, orgID)
	if err != nil {
		return reports.TrialBalance{}, err
	}
	return reports.BuildTrialBalance(totals), nil
}

// List returns entries matching the filter, most recent date first, ties
// broken by most recent creation, enriched with account details.
func (s *Service) List(ctx context.Context, orgID uuid.UUID, filter Filter, page, perPage int) ([]Entry, appshared.Pagination, error) {
	if perPage <= 0 {
		perPage = 50
	}
	if page <= 0 {
		page = 1
	}
	entries, total, err := s.repo.List(ctx, orgID, filter, perPage, (page-1)*perPage)
	if err != nil {
		return nil, appshared.Pagination{}, fmt.Errorf("list entries: %w", err)
	}
	return entries, appshared.NewPagination(page, perPage, total), nil
}
