package client

import "time"

// User is the authenticated account as returned by the auth endpoints.
type User struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	DisplayName string   `json:"display_name"`
	Role        string   `json:"role"`
	Plugins     []string `json:"plugins"`
}

// Entitled reports whether the user may access the named plugin.
func (u User) Entitled(plugin string) bool {
	for _, p := range u.Plugins {
		if p == plugin {
			return true
		}
	}
	return false
}

// Contact is a CRM contact.
type Contact struct {
	ID            string    `json:"id"`
	ContactNumber string    `json:"contact_number"`
	Name          string    `json:"name"`
	Email         string    `json:"email,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	Company       string    `json:"company,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (c Contact) ItemID() string { return c.ID }

// Mention marks a contact reference inside a note's content.
type Mention struct {
	ContactID   string `json:"contact_id"`
	ContactName string `json:"contact_name"`
	Position    int    `json:"position"`
	Length      int    `json:"length"`
}

// Note is a free-form note, optionally mentioning contacts.
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Mentions  []Mention `json:"mentions,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (n Note) ItemID() string { return n.ID }

// Task is a to-do item, optionally linked to a note.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	NoteID      string     `json:"note_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (t Task) ItemID() string { return t.ID }

// Estimate is a quoted amount for prospective work.
type Estimate struct {
	ID             string    `json:"id"`
	EstimateNumber string    `json:"estimate_number"`
	CustomerName   string    `json:"customer_name"`
	EstimateDate   time.Time `json:"estimate_date"`
	Amount         string    `json:"amount"`
	Status         string    `json:"status,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (e Estimate) ItemID() string { return e.ID }

// Invoice is a billed amount. Monetary values are decimal strings to
// avoid float drift.
type Invoice struct {
	ID                 string    `json:"id"`
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

func (i Invoice) ItemID() string { return i.ID }

// Product is a sellable item, exportable to a channel.
type Product struct {
	ID         string     `json:"id"`
	SKU        string     `json:"sku"`
	Name       string     `json:"name"`
	Price      string     `json:"price"`
	Stock      int        `json:"stock"`
	Exported   bool       `json:"exported"`
	ExportedAt *time.Time `json:"exported_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (p Product) ItemID() string { return p.ID }

// FileItem is an uploaded file's metadata.
type FileItem struct {
	ID           string    `json:"id"`
	StoredName   string    `json:"stored_name"`
	OriginalName string    `json:"original_name"`
	ContentType  string    `json:"content_type"`
	Size         int64     `json:"size"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (f FileItem) ItemID() string { return f.ID }

// Channel is an external sales channel. Credentials are write-only:
// the server accepts them on create and update but never returns them.
type Channel struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Kind           string     `json:"kind"`
	BaseURL        string     `json:"base_url"`
	ConsumerKey    string     `json:"consumer_key,omitempty"`
	ConsumerSecret string     `json:"consumer_secret,omitempty"`
	Enabled        bool       `json:"enabled"`
	LastExportAt   *time.Time `json:"last_export_at,omitempty"`
	LastExportNote string     `json:"last_export_note,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (ch Channel) ItemID() string { return ch.ID }

// ExportSummary reports the outcome of a channel export.
type ExportSummary struct {
	Pushed int      `json:"pushed"`
	Failed int      `json:"failed"`
	Errors []string `json:"errors,omitempty"`
}

// ImportRecord is the parsed payload of one import line.
type ImportRecord struct {
	CustomerName       string    `json:"customer_name"`
	InvoiceDate        time.Time `json:"invoice_date"`
	AmountDue          string    `json:"amount_due"`
	ServiceDescription string    `json:"service_description,omitempty"`
	PaymentTerms       string    `json:"payment_terms,omitempty"`
	ReferenceNumber    string    `json:"reference_number,omitempty"`
	Category           string    `json:"category,omitempty"`
}

// ImportLineReport is the server's per-line verdict on an invoice
// import preview.
type ImportLineReport struct {
	Line    int          `json:"line"`
	Raw     string       `json:"raw"`
	Record  ImportRecord `json:"record"`
	IsValid bool         `json:"is_valid"`
	Errors  []string     `json:"errors,omitempty"`
}
