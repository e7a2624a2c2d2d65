package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGFileStore implements FileStore backed by PostgreSQL.
type PGFileStore struct {
	pool *pgxpool.Pool
}

func (s *PGFileStore) Create(ctx context.Context, f *FileItem) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO files (id, user_id, stored_name, original_name,
			content_type, size, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,NOW(),NOW())`,
		f.ID, f.UserID, f.StoredName, f.OriginalName, f.ContentType, f.Size)
	if err != nil {
		if isDuplicateError(err) {
			return fmt.Errorf("%w: file %s", ErrDuplicate, f.StoredName)
		}
		return fmt.Errorf("insert file: %w", err)
	}
	return nil
}

func (s *PGFileStore) Get(ctx context.Context, userID, id uuid.UUID) (*FileItem, error) {
	return s.scanOne(ctx, `SELECT * FROM files WHERE user_id = $1 AND id = $2`, userID, id)
}

func (s *PGFileStore) GetByStoredName(ctx context.Context, userID uuid.UUID, storedName string) (*FileItem, error) {
	return s.scanOne(ctx, `SELECT * FROM files WHERE user_id = $1 AND stored_name = $2`, userID, storedName)
}

func (s *PGFileStore) Update(ctx context.Context, f *FileItem) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE files SET stored_name=$3, original_name=$4, content_type=$5,
			size=$6, updated_at=NOW()
		WHERE user_id=$1 AND id=$2`,
		f.UserID, f.ID, f.StoredName, f.OriginalName, f.ContentType, f.Size)
	if err != nil {
		return fmt.Errorf("update file: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGFileStore) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM files WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGFileStore) List(ctx context.Context, userID uuid.UUID, f FileFilter) ([]*FileItem, error) {
	query := `SELECT * FROM files WHERE user_id = $1`
	args := []any{userID}
	idx := 2

	if f.ContentType != "" {
		query += fmt.Sprintf(` AND content_type = $%d`, idx)
		args = append(args, f.ContentType)
		idx++
	}

	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	limit := f.Pagination.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, f.Pagination.Offset)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	var files []*FileItem
	for rows.Next() {
		fi, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, fi)
	}
	return files, rows.Err()
}

func (s *PGFileStore) scanOne(ctx context.Context, query string, args ...any) (*FileItem, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query file: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("query file: %w", err)
		}
		return nil, ErrNotFound
	}
	return scanFile(rows)
}

func scanFile(rows pgx.Rows) (*FileItem, error) {
	var f FileItem
	err := rows.Scan(&f.ID, &f.UserID, &f.StoredName, &f.OriginalName,
		&f.ContentType, &f.Size, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}
	return &f, nil
}
