package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGChannelStore implements ChannelStore backed by PostgreSQL.
type PGChannelStore struct {
	pool *pgxpool.Pool
}

func (s *PGChannelStore) Create(ctx context.Context, c *Channel) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO channels (id, user_id, name, kind, base_url, consumer_key,
			consumer_secret, enabled, last_export_at, last_export_note,
			created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,NOW(),NOW())`,
		c.ID, c.UserID, c.Name, c.Kind, c.BaseURL, c.ConsumerKey,
		c.ConsumerSecret, c.Enabled, c.LastExportAt, c.LastExportNote)
	if err != nil {
		if isDuplicateError(err) {
			return fmt.Errorf("%w: channel %s", ErrDuplicate, c.Name)
		}
		return fmt.Errorf("insert channel: %w", err)
	}
	return nil
}

func (s *PGChannelStore) Get(ctx context.Context, userID, id uuid.UUID) (*Channel, error) {
	return s.scanOne(ctx, `SELECT * FROM channels WHERE user_id = $1 AND id = $2`, userID, id)
}

func (s *PGChannelStore) Update(ctx context.Context, c *Channel) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE channels SET name=$3, kind=$4, base_url=$5, consumer_key=$6,
			consumer_secret=$7, enabled=$8, last_export_at=$9,
			last_export_note=$10, updated_at=NOW()
		WHERE user_id=$1 AND id=$2`,
		c.UserID, c.ID, c.Name, c.Kind, c.BaseURL, c.ConsumerKey,
		c.ConsumerSecret, c.Enabled, c.LastExportAt, c.LastExportNote)
	if err != nil {
		if isDuplicateError(err) {
			return fmt.Errorf("%w: channel %s", ErrDuplicate, c.Name)
		}
		return fmt.Errorf("update channel: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGChannelStore) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM channels WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("delete channel: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGChannelStore) List(ctx context.Context, userID uuid.UUID, f ChannelFilter) ([]*Channel, error) {
	query := `SELECT * FROM channels WHERE user_id = $1`
	args := []any{userID}
	idx := 2

	if f.Kind != "" {
		query += fmt.Sprintf(` AND kind = $%d`, idx)
		args = append(args, f.Kind)
		idx++
	}
	if f.Enabled != nil {
		query += fmt.Sprintf(` AND enabled = $%d`, idx)
		args = append(args, *f.Enabled)
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
		return nil, fmt.Errorf("list channels: %w", err)
	}
	defer rows.Close()

	var channels []*Channel
	for rows.Next() {
		c, err := scanChannel(rows)
		if err != nil {
			return nil, err
		}
		channels = append(channels, c)
	}
	return channels, rows.Err()
}

func (s *PGChannelStore) scanOne(ctx context.Context, query string, args ...any) (*Channel, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query channel: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("query channel: %w", err)
		}
		return nil, ErrNotFound
	}
	return scanChannel(rows)
}

func scanChannel(rows pgx.Rows) (*Channel, error) {
	var c Channel
	err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Kind, &c.BaseURL,
		&c.ConsumerKey, &c.ConsumerSecret, &c.Enabled, &c.LastExportAt,
		&c.LastExportNote, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("scan channel: %w", err)
	}
	return &c, nil
}
