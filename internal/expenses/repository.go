package expenses

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryPort defines data access for expenses.
type RepositoryPort interface {
	Create(ctx context.Context, e Expense) (Expense, error)
	Get(ctx context.Context, orgID uuid.UUID, id int64) (Expense, error)
	List(ctx context.Context, orgID uuid.UUID) ([]Expense, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) RepositoryPort {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, e Expense) (Expense, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO expenses (org_id, vendor_name, description, amount, date, account_id)
VALUES ($1,$2,$3,$4,$5,$6) RETURNING id, created_at`,
		e.OrgID, e.VendorName, e.Description, e.Amount, e.Date, e.AccountID)
	if err := row.Scan(&e.ID, &e.CreatedAt); err != nil {
		return Expense{}, err
	}
	return e, nil
}

func (r *repository) Get(ctx context.Context, orgID uuid.UUID, id int64) (Expense, error) {
	var e Expense
	err := r.db.QueryRow(ctx,
		`SELECT id, org_id, vendor_name, description, amount, date, account_id, created_at
FROM expenses WHERE org_id=$1 AND id=$2`, orgID, id).
		Scan(&e.ID, &e.OrgID, &e.VendorName, &e.Description, &e.Amount, &e.Date, &e.AccountID, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Expense{}, ErrExpenseNotFound
		}
		return Expense{}, err
	}
	return e, nil
}

func (r *repository) List(ctx context.Context, orgID uuid.UUID) ([]Expense, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, org_id, vendor_name, description, amount, date, account_id, created_at
FROM expenses WHERE org_id=$1 ORDER BY date DESC, id DESC`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Expense
	for rows.Next() {
		var e Expense
		if err := rows.Scan(&e.ID, &e.OrgID, &e.VendorName, &e.Description, &e.Amount, &e.Date, &e.AccountID, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
