package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGProductStore implements ProductStore backed by PostgreSQL.
type PGProductStore struct {
	pool *pgxpool.Pool
}

func (s *PGProductStore) Create(ctx context.Context, p *Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO products (id, user_id, sku, name, price, stock,
			exported, exported_at, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,NOW(),NOW())`,
		p.ID, p.UserID, p.SKU, p.Name, p.Price, p.Stock,
		p.Exported, p.ExportedAt)
	if err != nil {
		if isDuplicateError(err) {
			return fmt.Errorf("%w: product sku %s", ErrDuplicate, p.SKU)
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (s *PGProductStore) Get(ctx context.Context, userID, id uuid.UUID) (*Product, error) {
	return s.scanOne(ctx, `SELECT * FROM products WHERE user_id = $1 AND id = $2`, userID, id)
}

func (s *PGProductStore) Update(ctx context.Context, p *Product) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE products SET sku=$3, name=$4, price=$5, stock=$6,
			exported=$7, exported_at=$8, updated_at=NOW()
		WHERE user_id=$1 AND id=$2`,
		p.UserID, p.ID, p.SKU, p.Name, p.Price, p.Stock,
		p.Exported, p.ExportedAt)
	if err != nil {
		if isDuplicateError(err) {
			return fmt.Errorf("%w: product sku %s", ErrDuplicate, p.SKU)
		}
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGProductStore) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM products WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGProductStore) List(ctx context.Context, userID uuid.UUID, f ProductFilter) ([]*Product, error) {
	query := `SELECT * FROM products WHERE user_id = $1`
	args := []any{userID}
	idx := 2

	if f.SKU != "" {
		query += fmt.Sprintf(` AND sku = $%d`, idx)
		args = append(args, f.SKU)
		idx++
	}
	if f.Exported != nil {
		query += fmt.Sprintf(` AND exported = $%d`, idx)
		args = append(args, *f.Exported)
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
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []*Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (s *PGProductStore) scanOne(ctx context.Context, query string, args ...any) (*Product, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query product: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("query product: %w", err)
		}
		return nil, ErrNotFound
	}
	return scanProduct(rows)
}

func scanProduct(rows pgx.Rows) (*Product, error) {
	var p Product
	err := rows.Scan(&p.ID, &p.UserID, &p.SKU, &p.Name, &p.Price, &p.Stock,
		&p.Exported, &p.ExportedAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("scan product: %w", err)
	}
	return &p, nil
}
