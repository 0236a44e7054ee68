package postings

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/openbooks-app/openbooks/internal/ledger/accounts"
	"github.com/openbooks-app/openbooks/internal/ledger/reports"
	"github.com/openbooks-app/openbooks/internal/ledger/shared"
	appshared "github.com/openbooks-app/openbooks/internal/shared"
)

type memoryLedgerRepo struct {
	accounts map[int64]accounts.Account
	postings []Posting
	nextID   int64
}

func newMemoryLedgerRepo() *memoryLedgerRepo {
	return &memoryLedgerRepo{accounts: make(map[int64]accounts.Account)}
}

func (r *memoryLedgerRepo) addAccount(orgID uuid.UUID, id int64, code string, typ accounts.AccountType, parentID *int64) accounts.Account {
	a := accounts.Account{ID: id, OrgID: orgID, Code: code, Name: code, Type: typ, ParentID: parentID, IsActive: true}
	r.accounts[id] = a
	return a
}

func (r *memoryLedgerRepo) SumAccount(ctx context.Context, orgID uuid.UUID, accountID int64) (float64, error) {
	var sum float64
	for _, p := range r.postings {
		if p.OrgID == orgID && p.AccountID == accountID {
			sum += p.Debit - p.Credit
		}
	}
	return sum, nil
}

func (r *memoryLedgerRepo) Totals(ctx context.Context, orgID uuid.UUID) ([]reports.AccountTotals, error) {
	byAccount := make(map[int64]*reports.AccountTotals)
	var out []reports.AccountTotals
	for id, a := range r.accounts {
		if a.OrgID != orgID || !a.IsActive {
			continue
		}
		byAccount[id] = &reports.AccountTotals{Code: a.Code, Name: a.Name, Type: a.Type}
	}
	for _, p := range r.postings {
		if t, ok := byAccount[p.AccountID]; ok && p.OrgID == orgID {
			t.Debit += p.Debit
			t.Credit += p.Credit
		}
	}
	for _, t := range byAccount {
		out = append(out, *t)
	}
	return out, nil
}

func (r *memoryLedgerRepo) List(ctx context.Context, orgID uuid.UUID, filter Filter, limit, offset int) ([]Entry, int, error) {
	var matched []Entry
	for _, p := range r.postings {
		if p.OrgID != orgID {
			continue
		}
		if filter.AccountID != nil && p.AccountID != *filter.AccountID {
			continue
		}
		a := r.accounts[p.AccountID]
		matched = append(matched, Entry{Posting: p, AccountCode: a.Code, AccountName: a.Name, AccountType: a.Type})
	}
	total := len(matched)
	if offset > len(matched) {
		return nil, total, nil
	}
	matched = matched[offset:]
	if limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, total, nil
}

func (r *memoryLedgerRepo) ListGroup(ctx context.Context, orgID, groupID uuid.UUID) ([]Posting, error) {
	var out []Posting
	for _, p := range r.postings {
		if p.OrgID == orgID && p.GroupID != nil && *p.GroupID == groupID {
			out = append(out, p)
		}
	}
	return out, nil
}

// WithTx appends inside the callback and truncates back on error, so failed
// journal groups leave no partial lines behind.
func (r *memoryLedgerRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	mark := len(r.postings)
	if err := fn(ctx, (*memoryLedgerTx)(r)); err != nil {
		r.postings = r.postings[:mark]
		return err
	}
	return nil
}

type memoryLedgerTx memoryLedgerRepo

func (t *memoryLedgerTx) GetActiveAccount(ctx context.Context, orgID uuid.UUID, accountID int64) (accounts.Account, error) {
	a, ok := t.accounts[accountID]
	if !ok || a.OrgID != orgID || !a.IsActive {
		return accounts.Account{}, shared.ErrAccountNotFound
	}
	return a, nil
}

func (t *memoryLedgerTx) InsertPosting(ctx context.Context, p Posting) (Posting, error) {
	t.nextID++
	p.ID = t.nextID
	p.CreatedAt = time.Now()
	t.postings = append(t.postings, p)
	return p, nil
}

func (t *memoryLedgerTx) ListGroup(ctx context.Context, orgID, groupID uuid.UUID) ([]Posting, error) {
	return (*memoryLedgerRepo)(t).ListGroup(ctx, orgID, groupID)
}

func (t *memoryLedgerTx) DeleteGroup(ctx context.Context, orgID, groupID uuid.UUID) (int64, error) {
	var kept []Posting
	var deleted int64
	for _, p := range t.postings {
		if p.OrgID == orgID && p.GroupID != nil && *p.GroupID == groupID {
			deleted++
			continue
		}
		kept = append(kept, p)
	}
	t.postings = kept
	return deleted, nil
}

type memoryDirectory struct {
	repo *memoryLedgerRepo
}

func (d memoryDirectory) Get(ctx context.Context, orgID uuid.UUID, id int64) (accounts.Account, error) {
	a, ok := d.repo.accounts[id]
	if !ok || a.OrgID != orgID {
		return accounts.Account{}, shared.ErrAccountNotFound
	}
	return a, nil
}

func (d memoryDirectory) Children(ctx context.Context, orgID uuid.UUID, id int64) ([]accounts.Account, error) {
	var out []accounts.Account
	for _, a := range d.repo.accounts {
		if a.OrgID == orgID && a.IsActive && a.ParentID != nil && *a.ParentID == id {
			out = append(out, a)
		}
	}
	return out, nil
}

type recordingMetrics struct {
	posted     int
	deleted    int
	unbalanced int
}

func (m *recordingMetrics) PostingRecorded(reference string, lines int) { m.posted += lines }
func (m *recordingMetrics) JournalDeleted(lines int)                   { m.deleted += lines }
func (m *recordingMetrics) UnbalancedRejected()                        { m.unbalanced++ }

type recordingAudit struct {
	logs []appshared.AuditLog
}

func (a *recordingAudit) Record(ctx context.Context, log appshared.AuditLog) error {
	a.logs = append(a.logs, log)
	return nil
}

func newTestService(t *testing.T) (*Service, *memoryLedgerRepo, *recordingMetrics, *recordingAudit) {
	t.Helper()
	repo := newMemoryLedgerRepo()
	metrics := &recordingMetrics{}
	audit := &recordingAudit{}
	svc := NewService(repo, memoryDirectory{repo: repo}, audit, metrics)
	return svc, repo, metrics, audit
}

func entryDate() time.Time {
	return time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
}

func TestPostJournalBalanced(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()
	svc, repo, metrics, audit := newTestService(t)
	repo.addAccount(orgID, 1, "1000", accounts.AccountTypeAsset, nil)
	repo.addAccount(orgID, 2, "4000", accounts.AccountTypeRevenue, nil)

	created, groupID, err := svc.PostJournal(ctx, orgID, JournalInput{
		Date:        entryDate(),
		Description: "Cash sale",
		Lines: []JournalLineInput{
			{AccountID: 1, Debit: 500},
			{AccountID: 2, Credit: 500},
		},
	})
	require.NoError(t, err)
	require.Len(t, created, 2)
	require.NotEqual(t, uuid.Nil, groupID)
	for _, p := range created {
		require.Equal(t, ReferenceJournal, p.Reference)
		require.NotNil(t, p.GroupID)
		require.Equal(t, groupID, *p.GroupID)
	}

	cash, err := svc.AccountBalance(ctx, orgID, 1)
	require.NoError(t, err)
	require.InDelta(t, 500, cash, 0.001)

	sales, err := svc.AccountBalance(ctx, orgID, 2)
	require.NoError(t, err)
	require.InDelta(t, -500, sales, 0.001)

	require.Equal(t, 2, metrics.posted)
	require.Len(t, audit.logs, 1)
	require.Equal(t, "ledger.journal.post", audit.logs[0].Action)
}

func TestPostJournalUnbalancedRejected(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()
	svc, repo, metrics, _ := newTestService(t)
	repo.addAccount(orgID, 1, "1000", accounts.AccountTypeAsset, nil)
	repo.addAccount(orgID, 2, "4000", accounts.AccountTypeRevenue, nil)

	_, _, err := svc.PostJournal(ctx, orgID, JournalInput{
		Date:        entryDate(),
		Description: "Off by 100",
		Lines: []JournalLineInput{
			{AccountID: 1, Debit: 500},
			{AccountID: 2, Credit: 400},
		},
	})
	require.ErrorIs(t, err, shared.ErrUnbalanced)
	require.Empty(t, repo.postings)
	require.Equal(t, 1, metrics.unbalanced)
}

func TestPostJournalToleratesRoundingWithinEpsilon(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()
	svc, repo, _, _ := newTestService(t)
	repo.addAccount(orgID, 1, "1000", accounts.AccountTypeAsset, nil)
	repo.addAccount(orgID, 2, "4000", accounts.AccountTypeRevenue, nil)

	_, _, err := svc.PostJournal(ctx, orgID, JournalInput{
		Date:        entryDate(),
		Description: "Rounding residue",
		Lines: []JournalLineInput{
			{AccountID: 1, Debit: 100.005},
			{AccountID: 2, Credit: 100.00},
		},
	})
	require.NoError(t, err)
}

func TestPostJournalRequiresTwoLines(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()
	svc, repo, _, _ := newTestService(t)
	repo.addAccount(orgID, 1, "1000", accounts.AccountTypeAsset, nil)

	_, _, err := svc.PostJournal(ctx, orgID, JournalInput{
		Date:        entryDate(),
		Description: "Single line",
		Lines:       []JournalLineInput{{AccountID: 1, Debit: 500}},
	})
	require.ErrorIs(t, err, shared.ErrTooFewLines)
}

func TestPostJournalUnknownAccountLeavesNothingBehind(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()
	svc, repo, _, _ := newTestService(t)
	repo.addAccount(orgID, 1, "1000", accounts.AccountTypeAsset, nil)

	_, _, err := svc.PostJournal(ctx, orgID, JournalInput{
		Date:        entryDate(),
		Description: "Bad account",
		Lines: []JournalLineInput{
			{AccountID: 1, Debit: 500},
			{AccountID: 99, Credit: 500},
		},
	})
	require.ErrorIs(t, err, shared.ErrAccountNotFound)
	require.Empty(t, repo.postings)
}

func TestPostJournalRejectsInactiveAccount(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()
	svc, repo, _, _ := newTestService(t)
	repo.addAccount(orgID, 1, "1000", accounts.AccountTypeAsset, nil)
	inactive := repo.addAccount(orgID, 2, "4000", accounts.AccountTypeRevenue, nil)
	inactive.IsActive = false
	repo.accounts[2] = inactive

	_, _, err := svc.PostJournal(ctx, orgID, JournalInput{
		Date:        entryDate(),
		Description: "Inactive target",
		Lines: []JournalLineInput{
			{AccountID: 1, Debit: 500},
			{AccountID: 2, Credit: 500},
		},
	})
	require.ErrorIs(t, err, shared.ErrAccountNotFound)
	require.Empty(t, repo.postings)
}

func TestPostAutomaticRejectsJournalReference(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()
	svc, repo, _, _ := newTestService(t)
	repo.addAccount(orgID, 1, "6000", accounts.AccountTypeExpense, nil)

	_, err := svc.PostAutomatic(ctx, orgID, AutomaticInput{
		AccountID:   1,
		Date:        entryDate(),
		Debit:       100,
		Description: "Masquerading journal",
		Reference:   ReferenceJournal,
	})
	require.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestPostAutomaticSingleLine(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()
	svc, repo, metrics, _ := newTestService(t)
	repo.addAccount(orgID, 1, "6000", accounts.AccountTypeExpense, nil)

	sourceID := int64(42)
	p, err := svc.PostAutomatic(ctx, orgID, AutomaticInput{
		AccountID:   1,
		Date:        entryDate(),
		Debit:       250,
		Description: "Office supplies",
		Reference:   ReferenceExpense,
		SourceID:    &sourceID,
	})
	require.NoError(t, err)
	require.Equal(t, ReferenceExpense, p.Reference)
	require.Nil(t, p.GroupID)
	require.NotNil(t, p.SourceID)
	require.Equal(t, int64(42), *p.SourceID)
	require.Equal(t, 1, metrics.posted)
}

func TestDeleteJournalRemovesWholeGroup(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()
	svc, repo, metrics, _ := newTestService(t)
	repo.addAccount(orgID, 1, "1000", accounts.AccountTypeAsset, nil)
	repo.addAccount(orgID, 2, "4000", accounts.AccountTypeRevenue, nil)

	_, groupID, err := svc.PostJournal(ctx, orgID, JournalInput{
		Date:        entryDate(),
		Description: "Cash sale",
		Lines: []JournalLineInput{
			{AccountID: 1, Debit: 500},
			{AccountID: 2, Credit: 500},
		},
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteJournal(ctx, orgID, groupID))
	require.Empty(t, repo.postings)
	require.Equal(t, 2, metrics.deleted)

	err = svc.DeleteJournal(ctx, orgID, groupID)
	require.ErrorIs(t, err, shared.ErrEntryNotFound)
}

func TestDeleteJournalRefusesAutomaticGroups(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()
	svc, repo, _, _ := newTestService(t)
	repo.addAccount(orgID, 1, "1000", accounts.AccountTypeAsset, nil)

	groupID := uuid.New()
	repo.postings = append(repo.postings, Posting{
		ID: 1, OrgID: orgID, AccountID: 1, Date: entryDate(),
		Debit: 100, Reference: ReferenceInvoicePayment, GroupID: &groupID,
	})

	err := svc.DeleteJournal(ctx, orgID, groupID)
	require.ErrorIs(t, err, shared.ErrNotJournal)
	require.Len(t, repo.postings, 1)
}

func TestSubtreeBalanceAggregatesChildren(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()
	svc, repo, _, _ := newTestService(t)
	parent := repo.addAccount(orgID, 1, "1000", accounts.AccountTypeAsset, nil)
	repo.addAccount(orgID, 2, "1010", accounts.AccountTypeAsset, &parent.ID)
	repo.addAccount(orgID, 3, "1020", accounts.AccountTypeAsset, &parent.ID)
	repo.addAccount(orgID, 4, "3000", accounts.AccountTypeEquity, nil)

	_, _, err := svc.PostJournal(ctx, orgID, JournalInput{
		Date:        entryDate(),
		Description: "Fund accounts",
		Lines: []JournalLineInput{
			{AccountID: 1, Debit: 100},
			{AccountID: 2, Debit: 40},
			{AccountID: 3, Debit: 60},
			{AccountID: 4, Credit: 200},
		},
	})
	require.NoError(t, err)

	own, err := svc.AccountBalance(ctx, orgID, 1)
	require.NoError(t, err)
	require.InDelta(t, 100, own, 0.001)

	subtree, err := svc.SubtreeBalance(ctx, orgID, 1)
	require.NoError(t, err)
	require.InDelta(t, 200, subtree, 0.001)
}

func TestTrialBalanceBalancesForJournalOnlyLedger(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()
	svc, repo, _, _ := newTestService(t)
	repo.addAccount(orgID, 1, "1000", accounts.AccountTypeAsset, nil)
	repo.addAccount(orgID, 2, "4000", accounts.AccountTypeRevenue, nil)
	repo.addAccount(orgID, 3, "6000", accounts.AccountTypeExpense, nil)

	_, _, err := svc.PostJournal(ctx, orgID, JournalInput{
		Date:        entryDate(),
		Description: "Cash sale",
		Lines: []JournalLineInput{
			{AccountID: 1, Debit: 500},
			{AccountID: 2, Credit: 500},
		},
	})
	require.NoError(t, err)
	_, _, err = svc.PostJournal(ctx, orgID, JournalInput{
		Date:        entryDate(),
		Description: "Pay rent",
		Lines: []JournalLineInput{
			{AccountID: 3, Debit: 120},
			{AccountID: 1, Credit: 120},
		},
	})
	require.NoError(t, err)

	tb, err := svc.TrialBalance(ctx, orgID)
	require.NoError(t, err)
	require.InDelta(t, tb.TotalDebit, tb.TotalCredit, 0.001)
	require.InDelta(t, 620, tb.TotalDebit, 0.001)
}

func TestListPaginates(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()
	svc, repo, _, _ := newTestService(t)
	repo.addAccount(orgID, 1, "1000", accounts.AccountTypeAsset, nil)
	repo.addAccount(orgID, 2, "4000", accounts.AccountTypeRevenue, nil)

	for i := 0; i < 3; i++ {
		_, _, err := svc.PostJournal(ctx, orgID, JournalInput{
			Date:        entryDate().AddDate(0, 0, i),
			Description: "Sale",
			Lines: []JournalLineInput{
				{AccountID: 1, Debit: 10},
				{AccountID: 2, Credit: 10},
			},
		})
		require.NoError(t, err)
	}

	entries, page, err := svc.List(ctx, orgID, Filter{}, 1, 4)
	require.NoError(t, err)
	require.Len(t, entries, 4)
	require.Equal(t, 6, page.Total)
	require.Equal(t, 2, page.TotalPages)

	accountID := int64(1)
	entries, page, err = svc.List(ctx, orgID, Filter{AccountID: &accountID}, 1, 50)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, 3, page.Total)
}
