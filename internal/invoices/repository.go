package invoices

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryPort defines data access for invoices and payments.
type RepositoryPort interface {
	Create(ctx context.Context, inv Invoice) (Invoice, error)
	Get(ctx context.Context, orgID uuid.UUID, id int64) (Invoice, error)
	List(ctx context.Context, orgID uuid.UUID) ([]Invoice, error)
	UpdateStatus(ctx context.Context, orgID uuid.UUID, id int64, status InvoiceStatus) error
	CreatePayment(ctx context.Context, p Payment) (Payment, error)
	ListPayments(ctx context.Context, invoiceID int64) ([]Payment, error)
	SumPayments(ctx context.Context, invoiceID int64) (float64, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) RepositoryPort {
	return &repository{db: db}
}

const invoiceColumns = `id, org_id, number, customer_name, total, status, issue_date, due_date, created_at, updated_at`

func scanInvoice(row pgx.Row) (Invoice, error) {
	var inv Invoice
	err := row.Scan(&inv.ID, &inv.OrgID, &inv.Number, &inv.CustomerName, &inv.Total, &inv.Status,
		&inv.IssueDate, &inv.DueDate, &inv.CreatedAt, &inv.UpdatedAt)
	return inv, err
}

func (r *repository) Create(ctx context.Context, inv Invoice) (Invoice, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO invoices (org_id, number, customer_name, total, status, issue_date, due_date)
VALUES ($1,$2,$3,$4,$5,$6,$7) RETURNING id, created_at, updated_at`,
		inv.OrgID, inv.Number, inv.CustomerName, inv.Total, inv.Status, inv.IssueDate, inv.DueDate)
	if err := row.Scan(&inv.ID, &inv.CreatedAt, &inv.UpdatedAt); err != nil {
		return Invoice{}, err
	}
	return inv, nil
}

func (r *repository) Get(ctx context.Context, orgID uuid.UUID, id int64) (Invoice, error) {
	inv, err := scanInvoice(r.db.QueryRow(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE org_id=$1 AND id=$2`, orgID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Invoice{}, ErrInvoiceNotFound
		}
		return Invoice{}, err
	}
	return inv, nil
}

func (r *repository) List(ctx context.Context, orgID uuid.UUID) ([]Invoice, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE org_id=$1 ORDER BY issue_date DESC, id DESC`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func (r *repository) UpdateStatus(ctx context.Context, orgID uuid.UUID, id int64, status InvoiceStatus) error {
	cmd, err := r.db.Exec(ctx,
		`UPDATE invoices SET status=$3, updated_at=NOW() WHERE org_id=$1 AND id=$2`, orgID, id, status)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrInvoiceNotFound
	}
	return nil
}

func (r *repository) CreatePayment(ctx context.Context, p Payment) (Payment, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO invoice_payments (invoice_id, amount, date, method, notes)
VALUES ($1,$2,$3,$4,$5) RETURNING id, created_at`,
		p.InvoiceID, p.Amount, p.Date, p.Method, p.Notes)
	if err := row.Scan(&p.ID, &p.CreatedAt); err != nil {
		return Payment{}, err
	}
	return p, nil
}

func (r *repository) ListPayments(ctx context.Context, invoiceID int64) ([]Payment, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, invoice_id, amount, date, method, notes, created_at
FROM invoice_payments WHERE invoice_id=$1 ORDER BY date, id`, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.InvoiceID, &p.Amount, &p.Date, &p.Method, &p.Notes, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *repository) SumPayments(ctx context.Context, invoiceID int64) (float64, error) {
	var total float64
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM invoice_payments WHERE invoice_id=$1`, invoiceID).Scan(&total)
	return total, err
}
