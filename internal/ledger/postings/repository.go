package postings

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openbooks-app/openbooks/internal/ledger/accounts"
	"github.com/openbooks-app/openbooks/internal/ledger/reports"
	"github.com/openbooks-app/openbooks/internal/ledger/shared"
)

// Repository encapsulates DB operations for ledger postings. Multi-row
// writes happen through WithTx so a journal entry commits all-or-nothing.
type Repository interface {
	SumAccount(ctx context.Context, orgID uuid.UUID, accountID int64) (float64, error)
	Totals(ctx context.Context, orgID uuid.UUID) ([]reports.AccountTotals, error)
	List(ctx context.Context, orgID uuid.UUID, filter Filter, limit, offset int) ([]Entry, int, error)
	ListGroup(ctx context.Context, orgID, groupID uuid.UUID) ([]Posting, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes the write operations available within a transaction.
type TxRepository interface {
	GetActiveAccount(ctx context.Context, orgID uuid.UUID, accountID int64) (accounts.Account, error)
	InsertPosting(ctx context.Context, p Posting) (Posting, error)
	ListGroup(ctx context.Context, orgID, groupID uuid.UUID) ([]Posting, error)
	DeleteGroup(ctx context.Context, orgID, groupID uuid.UUID) (int64, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) SumAccount(ctx context.Context, orgID uuid.UUID, accountID int64) (float64, error) {
	var balance float64
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(debit - credit), 0) FROM ledger_entries WHERE org_id=$1 AND account_id=$2`,
		orgID, accountID).Scan(&balance)
	return balance, err
}

func (r *repository) Totals(ctx context.Context, orgID uuid.UUID) ([]reports.AccountTotals, error) {
	rows, err := r.db.Query(ctx,
		`SELECT a.code, a.name, a.type, COALESCE(SUM(e.debit), 0), COALESCE(SUM(e.credit), 0)
FROM ledger_accounts a LEFT JOIN ledger_entries e ON e.account_id = a.id
WHERE a.org_id=$1 AND a.is_active GROUP BY a.code, a.name, a.type ORDER BY a.code`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []reports.AccountTotals
	for rows.Next() {
		var t reports.AccountTotals
		if err := rows.Scan(&t.Code, &t.Name, &t.Type, &t.Debit, &t.Credit); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *repository) List(ctx context.Context, orgID uuid.UUID, filter Filter, limit, offset int) ([]Entry, int, error) {
	where := `WHERE e.org_id=$1`
	args := []any{orgID}
	if filter.AccountID != nil {
		args = append(args, *filter.AccountID)
		where += fmt.Sprintf(` AND e.account_id=$%d`, len(args))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		where += fmt.Sprintf(` AND e.date >= $%d`, len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		where += fmt.Sprintf(` AND e.date <= $%d`, len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where += fmt.Sprintf(` AND e.description ILIKE $%d`, len(args))
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM ledger_entries e `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	query := `SELECT e.id, e.org_id, e.account_id, e.date, e.debit, e.credit, e.description,
e.reference, e.group_id, e.source_id, e.created_at, a.code, a.name, a.type
FROM ledger_entries e JOIN ledger_accounts a ON a.id = e.account_id ` + where +
		fmt.Sprintf(` ORDER BY e.date DESC, e.created_at DESC, e.id DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var entries []Entry
	for rows.Next() {
		var e Entry
		err := rows.Scan(&e.ID, &e.OrgID, &e.AccountID, &e.Date, &e.Debit, &e.Credit, &e.Description,
			&e.Reference, &e.GroupID, &e.SourceID, &e.CreatedAt, &e.AccountCode, &e.AccountName, &e.AccountType)
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}

func (r *repository) ListGroup(ctx context.Context, orgID, groupID uuid.UUID) ([]Posting, error) {
	return listGroup(ctx, r.db, orgID, groupID)
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	if err := fn(ctx, &txRepository{tx: tx}); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

type txRepository struct {
	tx pgx.Tx
}

// querier is the subset of pgx shared by pools and transactions.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *txRepository) GetActiveAccount(ctx context.Context, orgID uuid.UUID, accountID int64) (accounts.Account, error) {
	var a accounts.Account
	err := r.tx.QueryRow(ctx,
		`SELECT id, org_id, code, name, type, parent_id, is_active, is_system, created_at, updated_at
FROM ledger_accounts WHERE org_id=$1 AND id=$2 AND is_active`, orgID, accountID).
		Scan(&a.ID, &a.OrgID, &a.Code, &a.Name, &a.Type, &a.ParentID, &a.IsActive, &a.IsSystem, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return accounts.Account{}, shared.ErrAccountNotFound
		}
		return accounts.Account{}, err
	}
	return a, nil
}

func (r *txRepository) InsertPosting(ctx context.Context, p Posting) (Posting, error) {
	row := r.tx.QueryRow(ctx,
		`INSERT INTO ledger_entries (org_id, account_id, date, debit, credit, description, reference, group_id, source_id)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9) RETURNING id, created_at`,
		p.OrgID, p.AccountID, p.Date, toNumeric(p.Debit), toNumeric(p.Credit), p.Description, p.Reference, p.GroupID, p.SourceID)
	if err := row.Scan(&p.ID, &p.CreatedAt); err != nil {
		return Posting{}, err
	}
	return p, nil
}

func (r *txRepository) ListGroup(ctx context.Context, orgID, groupID uuid.UUID) ([]Posting, error) {
	return listGroup(ctx, r.tx, orgID, groupID)
}

func (r *txRepository) DeleteGroup(ctx context.Context, orgID, groupID uuid.UUID) (int64, error) {
	cmd, err := r.tx.Exec(ctx, `DELETE FROM ledger_entries WHERE org_id=$1 AND group_id=$2`, orgID, groupID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func listGroup(ctx context.Context, q querier, orgID, groupID uuid.UUID) ([]Posting, error) {
	rows, err := q.Query(ctx,
		`SELECT id, org_id, account_id, date, debit, credit, description, reference, group_id, source_id, created_at
FROM ledger_entries WHERE org_id=$1 AND group_id=$2 ORDER BY created_at, id`, orgID, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Posting
	for rows.Next() {
		var p Posting
		err := rows.Scan(&p.ID, &p.OrgID, &p.AccountID, &p.Date, &p.Debit, &p.Credit, &p.Description,
			&p.Reference, &p.GroupID, &p.SourceID, &p.CreatedAt)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Amounts are stored as NUMERIC(14,2); format at the boundary so float noise
// never reaches the column.
func toNumeric(v float64) any {
	return fmt.Sprintf("%.2f", v)
}
