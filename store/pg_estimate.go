package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGEstimateStore implements EstimateStore backed by PostgreSQL.
type PGEstimateStore struct {
	pool *pgxpool.Pool
}

func (s *PGEstimateStore) Create(ctx context.Context, e *Estimate) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO estimates (id, user_id, estimate_number, customer_name,
			estimate_date, amount, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,NOW(),NOW())`,
		e.ID, e.UserID, e.EstimateNumber, e.CustomerName,
		e.EstimateDate, e.Amount, e.Status)
	if err != nil {
		if isDuplicateError(err) {
			return fmt.Errorf("%w: estimate number %s", ErrDuplicate, e.EstimateNumber)
		}
		return fmt.Errorf("insert estimate: %w", err)
	}
	return nil
}

func (s *PGEstimateStore) Get(ctx context.Context, userID, id uuid.UUID) (*Estimate, error) {
	return s.scanOne(ctx, `SELECT * FROM estimates WHERE user_id = $1 AND id = $2`, userID, id)
}

func (s *PGEstimateStore) Update(ctx context.Context, e *Estimate) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE estimates SET estimate_number=$3, customer_name=$4,
			estimate_date=$5, amount=$6, status=$7, updated_at=NOW()
		WHERE user_id=$1 AND id=$2`,
		e.UserID, e.ID, e.EstimateNumber, e.CustomerName,
		e.EstimateDate, e.Amount, e.Status)
	if err != nil {
		if isDuplicateError(err) {
			return fmt.Errorf("%w: estimate number %s", ErrDuplicate, e.EstimateNumber)
		}
		return fmt.Errorf("update estimate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGEstimateStore) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM estimates WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("delete estimate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGEstimateStore) List(ctx context.Context, userID uuid.UUID, f EstimateFilter) ([]*Estimate, error) {
	query := `SELECT * FROM estimates WHERE user_id = $1`
	args := []any{userID}
	idx := 2

	if f.EstimateNumber != "" {
		query += fmt.Sprintf(` AND estimate_number = $%d`, idx)
		args = append(args, f.EstimateNumber)
		idx++
	}

	query += fmt.Sprintf(` ORDER BY estimate_date DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	limit := f.Pagination.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, f.Pagination.Offset)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list estimates: %w", err)
	}
	defer rows.Close()

	var estimates []*Estimate
	for rows.Next() {
		e, err := scanEstimate(rows)
		if err != nil {
			return nil, err
		}
		estimates = append(estimates, e)
	}
	return estimates, rows.Err()
}

func (s *PGEstimateStore) scanOne(ctx context.Context, query string, args ...any) (*Estimate, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query estimate: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("query estimate: %w", err)
		}
		return nil, ErrNotFound
	}
	return scanEstimate(rows)
}

func scanEstimate(rows pgx.Rows) (*Estimate, error) {
	var e Estimate
	err := rows.Scan(&e.ID, &e.UserID, &e.EstimateNumber, &e.CustomerName,
		&e.EstimateDate, &e.Amount, &e.Status, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("scan estimate: %w", err)
	}
	return &e, nil
}
