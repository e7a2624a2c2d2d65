package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGConfig holds PostgreSQL connection configuration.
type PGConfig struct {
	URL             string        `yaml:"url" json:"url"`
	MaxConns        int32         `yaml:"max_conns" json:"max_conns"`
	MinConns        int32         `yaml:"min_conns" json:"min_conns"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime" json:"max_conn_lifetime"`
}

// PGStore wraps a pgxpool.Pool and provides access to all plugin stores.
type PGStore struct {
	pool *pgxpool.Pool

	users     *PGUserStore
	sessions  *PGSessionStore
	contacts  *PGContactStore
	notes     *PGNoteStore
	tasks     *PGTaskStore
	estimates *PGEstimateStore
	invoices  *PGInvoiceStore
	products  *PGProductStore
	files     *PGFileStore
	channels  *PGChannelStore
}

// NewPGStore connects to PostgreSQL and returns a PGStore with all sub-stores.
func NewPGStore(ctx context.Context, cfg PGConfig) (*PGStore, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse pg config: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pg pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping pg: %w", err)
	}

	s := &PGStore{pool: pool}
	s.users = &PGUserStore{pool: pool}
	s.sessions = &PGSessionStore{pool: pool}
	s.contacts = &PGContactStore{pool: pool}
	s.notes = &PGNoteStore{pool: pool}
	s.tasks = &PGTaskStore{pool: pool}
	s.estimates = &PGEstimateStore{pool: pool}
	s.invoices = &PGInvoiceStore{pool: pool}
	s.products = &PGProductStore{pool: pool}
	s.files = &PGFileStore{pool: pool}
	s.channels = &PGChannelStore{pool: pool}
	return s, nil
}

// Pool returns the underlying pgxpool.Pool.
func (s *PGStore) Pool() *pgxpool.Pool { return s.pool }

// Close closes the connection pool.
func (s *PGStore) Close() { s.pool.Close() }

// Users returns the UserStore.
func (s *PGStore) Users() UserStore { return s.users }

// Sessions returns the SessionStore.
func (s *PGStore) Sessions() SessionStore { return s.sessions }

// Contacts returns the ContactStore.
func (s *PGStore) Contacts() ContactStore { return s.contacts }

// Notes returns the NoteStore.
func (s *PGStore) Notes() NoteStore { return s.notes }

// Tasks returns the TaskStore.
func (s *PGStore) Tasks() TaskStore { return s.tasks }

// Estimates returns the EstimateStore.
func (s *PGStore) Estimates() EstimateStore { return s.estimates }

// Invoices returns the InvoiceStore.
func (s *PGStore) Invoices() InvoiceStore { return s.invoices }

// Products returns the ProductStore.
func (s *PGStore) Products() ProductStore { return s.products }

// Files returns the FileStore.
func (s *PGStore) Files() FileStore { return s.files }

// Channels returns the ChannelStore.
func (s *PGStore) Channels() ChannelStore { return s.channels }

// isDuplicateError reports whether err is a unique-constraint violation.
func isDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}
