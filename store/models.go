package store

import (
	"time"

	"github.com/google/uuid"
)

// Role represents a user's role within the console.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// ValidRoles is the set of valid role values.
var ValidRoles = map[Role]bool{
	RoleAdmin:  true,
	RoleMember: true,
}

// PluginName identifies a resource plugin a user can be entitled to.
const (
	PluginContacts  = "contacts"
	PluginNotes     = "notes"
	PluginTasks     = "tasks"
	PluginEstimates = "estimates"
	PluginInvoices  = "invoices"
	PluginProducts  = "products"
	PluginFiles     = "files"
	PluginChannels  = "channels"
)

// AllPlugins lists every known plugin name.
var AllPlugins = []string{
	PluginContacts, PluginNotes, PluginTasks, PluginEstimates,
	PluginInvoices, PluginProducts, PluginFiles, PluginChannels,
}

// User represents a console user.
type User struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	DisplayName  string     `json:"display_name"`
	Role         Role       `json:"role"`
	Plugins      []string   `json:"plugins"`
	Active       bool       `json:"active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

// Entitled reports whether the user may use the named plugin.
func (u *User) Entitled(plugin string) bool {
	for _, p := range u.Plugins {
		if p == plugin {
			return true
		}
	}
	return false
}

// Session represents an authenticated browser session.
type Session struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Token     string    `json:"-"`
	IPAddress string    `json:"ip_address,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Contact represents an address-book entry owned by a user.
type Contact struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	ContactNumber string    `json:"contact_number"`
	Name          string    `json:"name"`
	Email         string    `json:"email,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	Company       string    `json:"company,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Mention describes an inline @name span inside a note's content.
// Position and Length index into the content string; ContactName is
// denormalized so the span survives contact renames.
type Mention struct {
	ContactID   uuid.UUID `json:"contact_id"`
	ContactName string    `json:"contact_name"`
	Position    int       `json:"position"`
	Length      int       `json:"length"`
}

// Note represents a free-text note with optional contact mentions.
type Note struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Mentions  []Mention `json:"mentions,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TaskStatus represents the lifecycle status of a task.
type TaskStatus string

const (
	TaskStatusOpen       TaskStatus = "open"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

// Valid reports whether s is a known task status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusOpen, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

// Task represents a to-do item, optionally linked back to a note.
type Task struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      TaskStatus `json:"status"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	NoteID      *uuid.UUID `json:"note_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Estimate represents a quote issued to a customer.
type Estimate struct {
	ID             uuid.UUID `json:"id"`
	UserID         uuid.UUID `json:"user_id"`
	EstimateNumber string    `json:"estimate_number"`
	CustomerName   string    `json:"customer_name"`
	EstimateDate   time.Time `json:"estimate_date"`
	Amount         string    `json:"amount"`
	Status         string    `json:"status,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Invoice represents a billed amount, either entered manually or imported
// from text. Amounts are kept as decimal strings to avoid float drift.
type Invoice struct {
	ID                 uuid.UUID `json:"id"`
	UserID             uuid.UUID `json:"user_id"`
	ReferenceNumber    string    `json:"reference_number"`
	CustomerName       string    `json:"customer_name"`
	InvoiceDate        time.Time `json:"invoice_date"`
	AmountDue          string    `json:"amount_due"`
	ServiceDescription string    `json:"service_description,omitempty"`
	PaymentTerms       string    `json:"payment_terms,omitempty"`
	Category           string    `json:"category,omitempty"`
	Status             string    `json:"status,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Product represents an item that can be exported to a sales channel.
type Product struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"user_id"`
	SKU        string     `json:"sku"`
	Name       string     `json:"name"`
	Price      string     `json:"price"`
	Stock      int        `json:"stock"`
	Exported   bool       `json:"exported"`
	ExportedAt *time.Time `json:"exported_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// FileItem represents an uploaded file's metadata; the bytes live in the
// blob storage under StoredName.
type FileItem struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	StoredName   string    `json:"stored_name"`
	OriginalName string    `json:"original_name"`
	ContentType  string    `json:"content_type"`
	Size         int64     `json:"size"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ChannelKind identifies the integration protocol of a channel.
type ChannelKind string

const (
	ChannelKindWooCommerce ChannelKind = "woocommerce"
)

// Channel represents an external sales endpoint products can be exported to.
type Channel struct {
	ID             uuid.UUID   `json:"id"`
	UserID         uuid.UUID   `json:"user_id"`
	Name           string      `json:"name"`
	Kind           ChannelKind `json:"kind"`
	BaseURL        string      `json:"base_url"`
	ConsumerKey    string      `json:"-"`
	ConsumerSecret string      `json:"-"`
	Enabled        bool        `json:"enabled"`
	LastExportAt   *time.Time  `json:"last_export_at,omitempty"`
	LastExportNote string      `json:"last_export_note,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}
