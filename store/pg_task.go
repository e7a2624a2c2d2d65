package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGTaskStore implements TaskStore backed by PostgreSQL.
type PGTaskStore struct {
	pool *pgxpool.Pool
}

func (s *PGTaskStore) Create(ctx context.Context, t *Task) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Status == "" {
		t.Status = TaskStatusOpen
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO tasks (id, user_id, title, description, status, due_date,
			note_id, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,NOW(),NOW())`,
		t.ID, t.UserID, t.Title, t.Description, t.Status, t.DueDate, t.NoteID)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (s *PGTaskStore) Get(ctx context.Context, userID, id uuid.UUID) (*Task, error) {
	return s.scanOne(ctx, `SELECT * FROM tasks WHERE user_id = $1 AND id = $2`, userID, id)
}

func (s *PGTaskStore) Update(ctx context.Context, t *Task) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE tasks SET title=$3, description=$4, status=$5, due_date=$6,
			note_id=$7, updated_at=NOW()
		WHERE user_id=$1 AND id=$2`,
		t.UserID, t.ID, t.Title, t.Description, t.Status, t.DueDate, t.NoteID)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGTaskStore) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGTaskStore) List(ctx context.Context, userID uuid.UUID, f TaskFilter) ([]*Task, error) {
	query := `SELECT * FROM tasks WHERE user_id = $1`
	args := []any{userID}
	idx := 2

	if f.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, idx)
		args = append(args, f.Status)
		idx++
	}
	if f.NoteID != nil {
		query += fmt.Sprintf(` AND note_id = $%d`, idx)
		args = append(args, *f.NoteID)
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
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *PGTaskStore) scanOne(ctx context.Context, query string, args ...any) (*Task, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query task: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("query task: %w", err)
		}
		return nil, ErrNotFound
	}
	return scanTask(rows)
}

func scanTask(rows pgx.Rows) (*Task, error) {
	var t Task
	err := rows.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Status,
		&t.DueDate, &t.NoteID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("scan task: %w", err)
	}
	return &t, nil
}
