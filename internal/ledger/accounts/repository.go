package accounts

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openbooks-app/openbooks/internal/ledger/shared"
)

// Repository encapsulates DB operations for the chart of accounts.
type Repository interface {
	Get(ctx context.Context, orgID uuid.UUID, id int64) (Account, error)
	GetByCode(ctx context.Context, orgID uuid.UUID, code string) (Account, error)
	List(ctx context.Context, orgID uuid.UUID, activeOnly bool) ([]Account, error)
	Children(ctx context.Context, orgID uuid.UUID, parentID int64) ([]Account, error)
	Create(ctx context.Context, a Account) (Account, error)
	Update(ctx context.Context, a Account) (Account, error)
	Delete(ctx context.Context, orgID uuid.UUID, id int64) error
	CountPostings(ctx context.Context, orgID uuid.UUID, accountID int64) (int64, error)
	CountChildren(ctx context.Context, orgID uuid.UUID, accountID int64) (int64, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const accountColumns = `id, org_id, code, name, type, parent_id, is_active, is_system, created_at, updated_at`

func scanAccount(row pgx.Row) (Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.OrgID, &a.Code, &a.Name, &a.Type, &a.ParentID, &a.IsActive, &a.IsSystem, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (r *repository) Get(ctx context.Context, orgID uuid.UUID, id int64) (Account, error) {
	a, err := scanAccount(r.db.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM ledger_accounts WHERE org_id=$1 AND id=$2`, orgID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, shared.ErrAccountNotFound
		}
		return Account{}, err
	}
	return a, nil
}

func (r *repository) GetByCode(ctx context.Context, orgID uuid.UUID, code string) (Account, error) {
	a, err := scanAccount(r.db.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM ledger_accounts WHERE org_id=$1 AND code=$2`, orgID, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, shared.ErrAccountNotFound
		}
		return Account{}, err
	}
	return a, nil
}

func (r *repository) List(ctx context.Context, orgID uuid.UUID, activeOnly bool) ([]Account, error) {
	query := `SELECT ` + accountColumns + ` FROM ledger_accounts WHERE org_id=$1`
	if activeOnly {
		query += ` AND is_active`
	}
	query += ` ORDER BY type, code`
	rows, err := r.db.Query(ctx, query, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAccounts(rows)
}

func (r *repository) Children(ctx context.Context, orgID uuid.UUID, parentID int64) ([]Account, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+accountColumns+` FROM ledger_accounts WHERE org_id=$1 AND parent_id=$2 AND is_active ORDER BY code`,
		orgID, parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAccounts(rows)
}

func (r *repository) Create(ctx context.Context, a Account) (Account, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO ledger_accounts (org_id, code, name, type, parent_id, is_active, is_system)
VALUES ($1,$2,$3,$4,$5,$6,$7) RETURNING id, created_at, updated_at`,
		a.OrgID, a.Code, a.Name, a.Type, a.ParentID, a.IsActive, a.IsSystem)
	if err := row.Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return Account{}, mapAccountError(err)
	}
	return a, nil
}

func (r *repository) Update(ctx context.Context, a Account) (Account, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE ledger_accounts SET code=$3, name=$4, type=$5, parent_id=$6, is_active=$7, updated_at=NOW()
WHERE org_id=$1 AND id=$2 RETURNING updated_at`,
		a.OrgID, a.ID, a.Code, a.Name, a.Type, a.ParentID, a.IsActive)
	if err := row.Scan(&a.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, shared.ErrAccountNotFound
		}
		return Account{}, mapAccountError(err)
	}
	return a, nil
}

func (r *repository) Delete(ctx context.Context, orgID uuid.UUID, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM ledger_accounts WHERE org_id=$1 AND id=$2`, orgID, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrAccountNotFound
	}
	return nil
}

func (r *repository) CountPostings(ctx context.Context, orgID uuid.UUID, accountID int64) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM ledger_entries WHERE org_id=$1 AND account_id=$2`, orgID, accountID).Scan(&n)
	return n, err
}

func (r *repository) CountChildren(ctx context.Context, orgID uuid.UUID, accountID int64) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM ledger_accounts WHERE org_id=$1 AND parent_id=$2`, orgID, accountID).Scan(&n)
	return n, err
}

func collectAccounts(rows pgx.Rows) ([]Account, error) {
	var out []Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func mapAccountError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return shared.ErrDuplicateCode
	}
	return err
}
