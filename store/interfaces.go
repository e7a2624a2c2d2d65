package store

import (
	"context"

	"github.com/google/uuid"
)

// Pagination holds common pagination parameters.
type Pagination struct {
	Offset int
	Limit  int
}

// DefaultPagination returns a Pagination with sensible defaults.
func DefaultPagination() Pagination {
	return Pagination{Offset: 0, Limit: 50}
}

// --- User ---

// UserFilter specifies criteria for listing users.
type UserFilter struct {
	Email      string
	Active     *bool
	Pagination Pagination
}

// UserStore defines persistence operations for users.
type UserStore interface {
	Create(ctx context.Context, u *User) error
	Get(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f UserFilter) ([]*User, error)
}

// --- Session ---

// SessionFilter specifies criteria for listing sessions.
type SessionFilter struct {
	UserID     *uuid.UUID
	Active     *bool
	Pagination Pagination
}

// SessionStore defines persistence operations for sessions.
type SessionStore interface {
	Create(ctx context.Context, s *Session) error
	GetByToken(ctx context.Context, token string) (*Session, error)
	Update(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f SessionFilter) ([]*Session, error)
	DeleteExpired(ctx context.Context) (int64, error)
}

// --- Contact ---

// ContactFilter specifies criteria for listing contacts.
type ContactFilter struct {
	ContactNumber string
	Search        string
	Pagination    Pagination
}

// ContactStore defines persistence operations for contacts. Every read
// and write is scoped to the owning user.
type ContactStore interface {
	Create(ctx context.Context, c *Contact) error
	Get(ctx context.Context, userID, id uuid.UUID) (*Contact, error)
	Update(ctx context.Context, c *Contact) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID, f ContactFilter) ([]*Contact, error)
}

// --- Note ---

// NoteFilter specifies criteria for listing notes.
type NoteFilter struct {
	MentionsContact *uuid.UUID
	Pagination      Pagination
}

// NoteStore defines persistence operations for notes. Delete also removes
// tasks that reference the note, in a single transaction.
type NoteStore interface {
	Create(ctx context.Context, n *Note) error
	Get(ctx context.Context, userID, id uuid.UUID) (*Note, error)
	Update(ctx context.Context, n *Note) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID, f NoteFilter) ([]*Note, error)
}

// --- Task ---

// TaskFilter specifies criteria for listing tasks.
type TaskFilter struct {
	Status     TaskStatus
	NoteID     *uuid.UUID
	Pagination Pagination
}

// TaskStore defines persistence operations for tasks.
type TaskStore interface {
	Create(ctx context.Context, t *Task) error
	Get(ctx context.Context, userID, id uuid.UUID) (*Task, error)
	Update(ctx context.Context, t *Task) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID, f TaskFilter) ([]*Task, error)
}

// --- Estimate ---

// EstimateFilter specifies criteria for listing estimates.
type EstimateFilter struct {
	EstimateNumber string
	Pagination     Pagination
}

// EstimateStore defines persistence operations for estimates.
type EstimateStore interface {
	Create(ctx context.Context, e *Estimate) error
	Get(ctx context.Context, userID, id uuid.UUID) (*Estimate, error)
	Update(ctx context.Context, e *Estimate) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID, f EstimateFilter) ([]*Estimate, error)
}

// --- Invoice ---

// InvoiceFilter specifies criteria for listing invoices.
type InvoiceFilter struct {
	Category   string
	Pagination Pagination
}

// InvoiceStore defines persistence operations for invoices.
type InvoiceStore interface {
	Create(ctx context.Context, i *Invoice) error
	Get(ctx context.Context, userID, id uuid.UUID) (*Invoice, error)
	Update(ctx context.Context, i *Invoice) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID, f InvoiceFilter) ([]*Invoice, error)
}

// --- Product ---

// ProductFilter specifies criteria for listing products.
type ProductFilter struct {
	SKU        string
	Exported   *bool
	Pagination Pagination
}

// ProductStore defines persistence operations for products.
type ProductStore interface {
	Create(ctx context.Context, p *Product) error
	Get(ctx context.Context, userID, id uuid.UUID) (*Product, error)
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID, f ProductFilter) ([]*Product, error)
}

// --- FileItem ---

// FileFilter specifies criteria for listing files.
type FileFilter struct {
	ContentType string
	Pagination  Pagination
}

// FileStore defines persistence operations for file metadata.
type FileStore interface {
	Create(ctx context.Context, f *FileItem) error
	Get(ctx context.Context, userID, id uuid.UUID) (*FileItem, error)
	GetByStoredName(ctx context.Context, userID uuid.UUID, storedName string) (*FileItem, error)
	Update(ctx context.Context, f *FileItem) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID, f FileFilter) ([]*FileItem, error)
}

// --- Channel ---

// ChannelFilter specifies criteria for listing channels.
type ChannelFilter struct {
	Kind       ChannelKind
	Enabled    *bool
	Pagination Pagination
}

// ChannelStore defines persistence operations for channels.
type ChannelStore interface {
	Create(ctx context.Context, c *Channel) error
	Get(ctx context.Context, userID, id uuid.UUID) (*Channel, error)
	Update(ctx context.Context, c *Channel) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID, f ChannelFilter) ([]*Channel, error)
}
