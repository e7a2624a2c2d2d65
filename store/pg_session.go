package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// sessionColumns is the scan order shared by every session query.
const sessionColumns = `id, user_id, token, ip_address, user_agent, active, created_at, expires_at`

// PGSessionStore implements SessionStore backed by PostgreSQL.
type PGSessionStore struct {
	pool *pgxpool.Pool
}

func (s *PGSessionStore) Create(ctx context.Context, sess *Session) error {
	if sess.ID == uuid.Nil {
		sess.ID = uuid.New()
	}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO sessions (id, user_id, token, ip_address, user_agent,
			active, created_at, expires_at)
		VALUES ($1,$2,$3,$4,$5,$6,NOW(),$7)
		RETURNING created_at`,
		sess.ID, sess.UserID, sess.Token, sess.IPAddress, sess.UserAgent,
		sess.Active, sess.ExpiresAt).Scan(&sess.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// GetByToken resolves an active, unexpired session. Expired rows stay in
// the table until the sweeper removes them, so the lookup filters on
// expires_at rather than trusting deletion to have happened.
func (s *PGSessionStore) GetByToken(ctx context.Context, token string) (*Session, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+sessionColumns+` FROM sessions
		WHERE token = $1 AND active = true AND expires_at > NOW()`, token)

	var sess Session
	err := row.Scan(&sess.ID, &sess.UserID, &sess.Token, &sess.IPAddress,
		&sess.UserAgent, &sess.Active, &sess.CreatedAt, &sess.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query session: %w", err)
	}
	return &sess, nil
}

func (s *PGSessionStore) Update(ctx context.Context, sess *Session) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE sessions SET token=$2, ip_address=$3, user_agent=$4,
			active=$5, expires_at=$6
		WHERE id=$1`,
		sess.ID, sess.Token, sess.IPAddress, sess.UserAgent,
		sess.Active, sess.ExpiresAt)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGSessionStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGSessionStore) List(ctx context.Context, f SessionFilter) ([]*Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE 1=1`
	args := []any{}
	idx := 1

	if f.UserID != nil {
		query += fmt.Sprintf(` AND user_id = $%d`, idx)
		args = append(args, *f.UserID)
		idx++
	}
	if f.Active != nil {
		query += fmt.Sprintf(` AND active = $%d`, idx)
		args = append(args, *f.Active)
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
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		var sess Session
		err := rows.Scan(&sess.ID, &sess.UserID, &sess.Token, &sess.IPAddress,
			&sess.UserAgent, &sess.Active, &sess.CreatedAt, &sess.ExpiresAt)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, &sess)
	}
	return sessions, rows.Err()
}

// DeleteExpired removes expired and deactivated sessions. The server runs
// it periodically; logout only flips the active flag.
func (s *PGSessionStore) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at < NOW() OR active = false`)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
