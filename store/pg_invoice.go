package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGInvoiceStore implements InvoiceStore backed by PostgreSQL.
type PGInvoiceStore struct {
	pool *pgxpool.Pool
}

func (s *PGInvoiceStore) Create(ctx context.Context, i *Invoice) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO invoices (id, user_id, reference_number, customer_name,
			invoice_date, amount_due, service_description, payment_terms,
			category, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,NOW(),NOW())`,
		i.ID, i.UserID, i.ReferenceNumber, i.CustomerName,
		i.InvoiceDate, i.AmountDue, i.ServiceDescription, i.PaymentTerms,
		i.Category, i.Status)
	if err != nil {
		if isDuplicateError(err) {
			return fmt.Errorf("%w: invoice reference %s", ErrDuplicate, i.ReferenceNumber)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

func (s *PGInvoiceStore) Get(ctx context.Context, userID, id uuid.UUID) (*Invoice, error) {
	return s.scanOne(ctx, `SELECT * FROM invoices WHERE user_id = $1 AND id = $2`, userID, id)
}

func (s *PGInvoiceStore) Update(ctx context.Context, i *Invoice) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE invoices SET reference_number=$3, customer_name=$4,
			invoice_date=$5, amount_due=$6, service_description=$7,
			payment_terms=$8, category=$9, status=$10, updated_at=NOW()
		WHERE user_id=$1 AND id=$2`,
		i.UserID, i.ID, i.ReferenceNumber, i.CustomerName,
		i.InvoiceDate, i.AmountDue, i.ServiceDescription,
		i.PaymentTerms, i.Category, i.Status)
	if err != nil {
		if isDuplicateError(err) {
			return fmt.Errorf("%w: invoice reference %s", ErrDuplicate, i.ReferenceNumber)
		}
		return fmt.Errorf("update invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGInvoiceStore) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM invoices WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGInvoiceStore) List(ctx context.Context, userID uuid.UUID, f InvoiceFilter) ([]*Invoice, error) {
	query := `SELECT * FROM invoices WHERE user_id = $1`
	args := []any{userID}
	idx := 2

	if f.Category != "" {
		query += fmt.Sprintf(` AND category = $%d`, idx)
		args = append(args, f.Category)
		idx++
	}

	query += fmt.Sprintf(` ORDER BY invoice_date DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	limit := f.Pagination.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, f.Pagination.Offset)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	var invoices []*Invoice
	for rows.Next() {
		i, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, i)
	}
	return invoices, rows.Err()
}

func (s *PGInvoiceStore) scanOne(ctx context.Context, query string, args ...any) (*Invoice, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query invoice: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("query invoice: %w", err)
		}
		return nil, ErrNotFound
	}
	return scanInvoice(rows)
}

func scanInvoice(rows pgx.Rows) (*Invoice, error) {
	var i Invoice
	err := rows.Scan(&i.ID, &i.UserID, &i.ReferenceNumber, &i.CustomerName,
		&i.InvoiceDate, &i.AmountDue, &i.ServiceDescription, &i.PaymentTerms,
		&i.Category, &i.Status, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("scan invoice: %w", err)
	}
	return &i, nil
}
