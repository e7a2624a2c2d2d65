package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGContactStore implements ContactStore backed by PostgreSQL.
type PGContactStore struct {
	pool *pgxpool.Pool
}

func (s *PGContactStore) Create(ctx context.Context, c *Contact) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO contacts (id, user_id, contact_number, name, email, phone,
			company, notes, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,NOW(),NOW())`,
		c.ID, c.UserID, c.ContactNumber, c.Name, c.Email, c.Phone,
		c.Company, c.Notes)
	if err != nil {
		if isDuplicateError(err) {
			return fmt.Errorf("%w: contact number %s", ErrDuplicate, c.ContactNumber)
		}
		return fmt.Errorf("insert contact: %w", err)
	}
	return nil
}

func (s *PGContactStore) Get(ctx context.Context, userID, id uuid.UUID) (*Contact, error) {
	return s.scanOne(ctx, `SELECT * FROM contacts WHERE user_id = $1 AND id = $2`, userID, id)
}

func (s *PGContactStore) Update(ctx context.Context, c *Contact) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE contacts SET contact_number=$3, name=$4, email=$5, phone=$6,
			company=$7, notes=$8, updated_at=NOW()
		WHERE user_id=$1 AND id=$2`,
		c.UserID, c.ID, c.ContactNumber, c.Name, c.Email, c.Phone,
		c.Company, c.Notes)
	if err != nil {
		if isDuplicateError(err) {
			return fmt.Errorf("%w: contact number %s", ErrDuplicate, c.ContactNumber)
		}
		return fmt.Errorf("update contact: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGContactStore) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM contacts WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGContactStore) List(ctx context.Context, userID uuid.UUID, f ContactFilter) ([]*Contact, error) {
	query := `SELECT * FROM contacts WHERE user_id = $1`
	args := []any{userID}
	idx := 2

	if f.ContactNumber != "" {
		query += fmt.Sprintf(` AND contact_number = $%d`, idx)
		args = append(args, f.ContactNumber)
		idx++
	}
	if f.Search != "" {
		query += fmt.Sprintf(` AND (name ILIKE $%d OR company ILIKE $%d)`, idx, idx)
		args = append(args, "%"+f.Search+"%")
		idx++
	}

	query += fmt.Sprintf(` ORDER BY name ASC LIMIT $%d OFFSET $%d`, idx, idx+1)
	limit := f.Pagination.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, f.Pagination.Offset)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	var contacts []*Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

func (s *PGContactStore) scanOne(ctx context.Context, query string, args ...any) (*Contact, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query contact: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("query contact: %w", err)
		}
		return nil, ErrNotFound
	}
	return scanContact(rows)
}

func scanContact(rows pgx.Rows) (*Contact, error) {
	var c Contact
	err := rows.Scan(&c.ID, &c.UserID, &c.ContactNumber, &c.Name, &c.Email,
		&c.Phone, &c.Company, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("scan contact: %w", err)
	}
	return &c, nil
}
