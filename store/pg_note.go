package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGNoteStore implements NoteStore backed by PostgreSQL. Mentions are
// stored as a JSONB column alongside the note content.
type PGNoteStore struct {
	pool *pgxpool.Pool
}

func (s *PGNoteStore) Create(ctx context.Context, n *Note) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	mentions, err := marshalMentions(n.Mentions)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO notes (id, user_id, title, content, mentions, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,NOW(),NOW())`,
		n.ID, n.UserID, n.Title, n.Content, mentions)
	if err != nil {
		return fmt.Errorf("insert note: %w", err)
	}
	return nil
}

func (s *PGNoteStore) Get(ctx context.Context, userID, id uuid.UUID) (*Note, error) {
	return s.scanOne(ctx, `SELECT * FROM notes WHERE user_id = $1 AND id = $2`, userID, id)
}

func (s *PGNoteStore) Update(ctx context.Context, n *Note) error {
	mentions, err := marshalMentions(n.Mentions)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE notes SET title=$3, content=$4, mentions=$5, updated_at=NOW()
		WHERE user_id=$1 AND id=$2`,
		n.UserID, n.ID, n.Title, n.Content, mentions)
	if err != nil {
		return fmt.Errorf("update note: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the note and any tasks linked to it. Both statements run
// in one transaction so a task can never outlive its note half-deleted.
func (s *PGNoteStore) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin note delete: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM tasks WHERE user_id = $1 AND note_id = $2`, userID, id); err != nil {
		return fmt.Errorf("delete note tasks: %w", err)
	}
	tag, err := tx.Exec(ctx, `DELETE FROM notes WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit note delete: %w", err)
	}
	return nil
}

func (s *PGNoteStore) List(ctx context.Context, userID uuid.UUID, f NoteFilter) ([]*Note, error) {
	query := `SELECT * FROM notes WHERE user_id = $1`
	args := []any{userID}
	idx := 2

	if f.MentionsContact != nil {
		// Match any mention span pointing at the contact.
		query += fmt.Sprintf(` AND mentions @> $%d`, idx)
		probe, err := json.Marshal([]map[string]any{{"contact_id": f.MentionsContact.String()}})
		if err != nil {
			return nil, fmt.Errorf("marshal mention probe: %w", err)
		}
		args = append(args, probe)
		idx++
	}

	query += fmt.Sprintf(` ORDER BY updated_at DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	limit := f.Pagination.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, f.Pagination.Offset)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	var notes []*Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func (s *PGNoteStore) scanOne(ctx context.Context, query string, args ...any) (*Note, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query note: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("query note: %w", err)
		}
		return nil, ErrNotFound
	}
	return scanNote(rows)
}

func scanNote(rows pgx.Rows) (*Note, error) {
	var n Note
	var mentions []byte
	err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &mentions,
		&n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("scan note: %w", err)
	}
	if len(mentions) > 0 {
		if err := json.Unmarshal(mentions, &n.Mentions); err != nil {
			return nil, fmt.Errorf("unmarshal mentions: %w", err)
		}
	}
	return &n, nil
}

func marshalMentions(mentions []Mention) ([]byte, error) {
	if mentions == nil {
		mentions = []Mention{}
	}
	b, err := json.Marshal(mentions)
	if err != nil {
		return nil, fmt.Errorf("marshal mentions: %w", err)
	}
	return b, nil
}
