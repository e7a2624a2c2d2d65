package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// In-memory store implementations shared by handler tests. They mirror the
// Postgres stores' semantics closely enough for route-level testing:
// ownership scoping, ErrNotFound, and ErrDuplicate on unique fields.

// MockUserStore is an in-memory UserStore.
type MockUserStore struct {
	mu    sync.Mutex
	Users map[uuid.UUID]*User
}

// NewMockUserStore creates an empty MockUserStore.
func NewMockUserStore() *MockUserStore {
	return &MockUserStore{Users: make(map[uuid.UUID]*User)}
}

func (m *MockUserStore) Create(_ context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.Users {
		if existing.Email == u.Email {
			return ErrDuplicate
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	m.Users[u.ID] = u
	return nil
}

func (m *MockUserStore) Get(_ context.Context, id uuid.UUID) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.Users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

func (m *MockUserStore) GetByEmail(_ context.Context, email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.Users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MockUserStore) Update(_ context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Users[u.ID]; !ok {
		return ErrNotFound
	}
	m.Users[u.ID] = u
	return nil
}

func (m *MockUserStore) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Users[id]; !ok {
		return ErrNotFound
	}
	delete(m.Users, id)
	return nil
}

func (m *MockUserStore) List(_ context.Context, f UserFilter) ([]*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*User
	for _, u := range m.Users {
		if f.Email != "" && u.Email != f.Email {
			continue
		}
		if f.Active != nil && u.Active != *f.Active {
			continue
		}
		result = append(result, u)
	}
	return result, nil
}

// MockSessionStore is an in-memory SessionStore.
type MockSessionStore struct {
	mu       sync.Mutex
	Sessions map[uuid.UUID]*Session
}

// NewMockSessionStore creates an empty MockSessionStore.
func NewMockSessionStore() *MockSessionStore {
	return &MockSessionStore{Sessions: make(map[uuid.UUID]*Session)}
}

func (m *MockSessionStore) Create(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	m.Sessions[s.ID] = s
	return nil
}

func (m *MockSessionStore) GetByToken(_ context.Context, token string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.Sessions {
		if s.Token == token && s.Active && time.Now().Before(s.ExpiresAt) {
			return s, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MockSessionStore) Update(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Sessions[s.ID]; !ok {
		return ErrNotFound
	}
	m.Sessions[s.ID] = s
	return nil
}

func (m *MockSessionStore) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Sessions[id]; !ok {
		return ErrNotFound
	}
	delete(m.Sessions, id)
	return nil
}

func (m *MockSessionStore) List(_ context.Context, f SessionFilter) ([]*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*Session
	for _, s := range m.Sessions {
		if f.UserID != nil && s.UserID != *f.UserID {
			continue
		}
		if f.Active != nil && s.Active != *f.Active {
			continue
		}
		result = append(result, s)
	}
	return result, nil
}

func (m *MockSessionStore) DeleteExpired(_ context.Context) (int64, error) {
	return 0, nil
}

// MockContactStore is an in-memory ContactStore.
type MockContactStore struct {
	mu       sync.Mutex
	Contacts map[uuid.UUID]*Contact
}

// NewMockContactStore creates an empty MockContactStore.
func NewMockContactStore() *MockContactStore {
	return &MockContactStore{Contacts: make(map[uuid.UUID]*Contact)}
}

func (m *MockContactStore) Create(_ context.Context, c *Contact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.Contacts {
		if existing.UserID == c.UserID && existing.ContactNumber == c.ContactNumber {
			return ErrDuplicate
		}
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	m.Contacts[c.ID] = c
	return nil
}

func (m *MockContactStore) Get(_ context.Context, userID, id uuid.UUID) (*Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.Contacts[id]
	if !ok || c.UserID != userID {
		return nil, ErrNotFound
	}
	return c, nil
}

func (m *MockContactStore) Update(_ context.Context, c *Contact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.Contacts[c.ID]
	if !ok || existing.UserID != c.UserID {
		return ErrNotFound
	}
	for _, other := range m.Contacts {
		if other.ID != c.ID && other.UserID == c.UserID && other.ContactNumber == c.ContactNumber {
			return ErrDuplicate
		}
	}
	m.Contacts[c.ID] = c
	return nil
}

func (m *MockContactStore) Delete(_ context.Context, userID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.Contacts[id]
	if !ok || c.UserID != userID {
		return ErrNotFound
	}
	delete(m.Contacts, id)
	return nil
}

func (m *MockContactStore) List(_ context.Context, userID uuid.UUID, _ ContactFilter) ([]*Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*Contact
	for _, c := range m.Contacts {
		if c.UserID == userID {
			result = append(result, c)
		}
	}
	return result, nil
}

// MockNoteStore is an in-memory NoteStore. Delete mirrors the transactional
// cascade by removing linked tasks from an attached MockTaskStore.
type MockNoteStore struct {
	mu    sync.Mutex
	Notes map[uuid.UUID]*Note
	Tasks *MockTaskStore
}

// NewMockNoteStore creates an empty MockNoteStore.
func NewMockNoteStore() *MockNoteStore {
	return &MockNoteStore{Notes: make(map[uuid.UUID]*Note)}
}

func (m *MockNoteStore) Create(_ context.Context, n *Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	m.Notes[n.ID] = n
	return nil
}

func (m *MockNoteStore) Get(_ context.Context, userID, id uuid.UUID) (*Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.Notes[id]
	if !ok || n.UserID != userID {
		return nil, ErrNotFound
	}
	return n, nil
}

func (m *MockNoteStore) Update(_ context.Context, n *Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.Notes[n.ID]
	if !ok || existing.UserID != n.UserID {
		return ErrNotFound
	}
	m.Notes[n.ID] = n
	return nil
}

func (m *MockNoteStore) Delete(ctx context.Context, userID, id uuid.UUID) error {
	m.mu.Lock()
	n, ok := m.Notes[id]
	if !ok || n.UserID != userID {
		m.mu.Unlock()
		return ErrNotFound
	}
	delete(m.Notes, id)
	m.mu.Unlock()

	if m.Tasks != nil {
		tasks, _ := m.Tasks.List(ctx, userID, TaskFilter{NoteID: &id})
		for _, t := range tasks {
			_ = m.Tasks.Delete(ctx, userID, t.ID)
		}
	}
	return nil
}

func (m *MockNoteStore) List(_ context.Context, userID uuid.UUID, f NoteFilter) ([]*Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*Note
	for _, n := range m.Notes {
		if n.UserID != userID {
			continue
		}
		if f.MentionsContact != nil {
			found := false
			for _, mn := range n.Mentions {
				if mn.ContactID == *f.MentionsContact {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		result = append(result, n)
	}
	return result, nil
}

// MockTaskStore is an in-memory TaskStore.
type MockTaskStore struct {
	mu    sync.Mutex
	Tasks map[uuid.UUID]*Task
}

// NewMockTaskStore creates an empty MockTaskStore.
func NewMockTaskStore() *MockTaskStore {
	return &MockTaskStore{Tasks: make(map[uuid.UUID]*Task)}
}

func (m *MockTaskStore) Create(_ context.Context, t *Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Status == "" {
		t.Status = TaskStatusOpen
	}
	m.Tasks[t.ID] = t
	return nil
}

func (m *MockTaskStore) Get(_ context.Context, userID, id uuid.UUID) (*Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.Tasks[id]
	if !ok || t.UserID != userID {
		return nil, ErrNotFound
	}
	return t, nil
}

func (m *MockTaskStore) Update(_ context.Context, t *Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.Tasks[t.ID]
	if !ok || existing.UserID != t.UserID {
		return ErrNotFound
	}
	m.Tasks[t.ID] = t
	return nil
}

func (m *MockTaskStore) Delete(_ context.Context, userID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.Tasks[id]
	if !ok || t.UserID != userID {
		return ErrNotFound
	}
	delete(m.Tasks, id)
	return nil
}

func (m *MockTaskStore) List(_ context.Context, userID uuid.UUID, f TaskFilter) ([]*Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*Task
	for _, t := range m.Tasks {
		if t.UserID != userID {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.NoteID != nil && (t.NoteID == nil || *t.NoteID != *f.NoteID) {
			continue
		}
		result = append(result, t)
	}
	return result, nil
}

// MockEstimateStore is an in-memory EstimateStore.
type MockEstimateStore struct {
	mu        sync.Mutex
	Estimates map[uuid.UUID]*Estimate
}

// NewMockEstimateStore creates an empty MockEstimateStore.
func NewMockEstimateStore() *MockEstimateStore {
	return &MockEstimateStore{Estimates: make(map[uuid.UUID]*Estimate)}
}

func (m *MockEstimateStore) Create(_ context.Context, e *Estimate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.Estimates {
		if existing.UserID == e.UserID && existing.EstimateNumber == e.EstimateNumber {
			return ErrDuplicate
		}
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	m.Estimates[e.ID] = e
	return nil
}

func (m *MockEstimateStore) Get(_ context.Context, userID, id uuid.UUID) (*Estimate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.Estimates[id]
	if !ok || e.UserID != userID {
		return nil, ErrNotFound
	}
	return e, nil
}

func (m *MockEstimateStore) Update(_ context.Context, e *Estimate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.Estimates[e.ID]
	if !ok || existing.UserID != e.UserID {
		return ErrNotFound
	}
	m.Estimates[e.ID] = e
	return nil
}

func (m *MockEstimateStore) Delete(_ context.Context, userID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.Estimates[id]
	if !ok || e.UserID != userID {
		return ErrNotFound
	}
	delete(m.Estimates, id)
	return nil
}

func (m *MockEstimateStore) List(_ context.Context, userID uuid.UUID, _ EstimateFilter) ([]*Estimate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*Estimate
	for _, e := range m.Estimates {
		if e.UserID == userID {
			result = append(result, e)
		}
	}
	return result, nil
}

// MockInvoiceStore is an in-memory InvoiceStore.
type MockInvoiceStore struct {
	mu       sync.Mutex
	Invoices map[uuid.UUID]*Invoice
}

// NewMockInvoiceStore creates an empty MockInvoiceStore.
func NewMockInvoiceStore() *MockInvoiceStore {
	return &MockInvoiceStore{Invoices: make(map[uuid.UUID]*Invoice)}
}

func (m *MockInvoiceStore) Create(_ context.Context, i *Invoice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.Invoices {
		if existing.UserID == i.UserID && existing.ReferenceNumber == i.ReferenceNumber {
			return ErrDuplicate
		}
	}
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	m.Invoices[i.ID] = i
	return nil
}

func (m *MockInvoiceStore) Get(_ context.Context, userID, id uuid.UUID) (*Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.Invoices[id]
	if !ok || i.UserID != userID {
		return nil, ErrNotFound
	}
	return i, nil
}

func (m *MockInvoiceStore) Update(_ context.Context, i *Invoice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.Invoices[i.ID]
	if !ok || existing.UserID != i.UserID {
		return ErrNotFound
	}
	m.Invoices[i.ID] = i
	return nil
}

func (m *MockInvoiceStore) Delete(_ context.Context, userID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.Invoices[id]
	if !ok || i.UserID != userID {
		return ErrNotFound
	}
	delete(m.Invoices, id)
	return nil
}

func (m *MockInvoiceStore) List(_ context.Context, userID uuid.UUID, f InvoiceFilter) ([]*Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*Invoice
	for _, i := range m.Invoices {
		if i.UserID != userID {
			continue
		}
		if f.Category != "" && i.Category != f.Category {
			continue
		}
		result = append(result, i)
	}
	return result, nil
}

// MockProductStore is an in-memory ProductStore.
type MockProductStore struct {
	mu       sync.Mutex
	Products map[uuid.UUID]*Product
}

// NewMockProductStore creates an empty MockProductStore.
func NewMockProductStore() *MockProductStore {
	return &MockProductStore{Products: make(map[uuid.UUID]*Product)}
}

func (m *MockProductStore) Create(_ context.Context, p *Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.Products {
		if existing.UserID == p.UserID && existing.SKU == p.SKU {
			return ErrDuplicate
		}
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	m.Products[p.ID] = p
	return nil
}

func (m *MockProductStore) Get(_ context.Context, userID, id uuid.UUID) (*Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.Products[id]
	if !ok || p.UserID != userID {
		return nil, ErrNotFound
	}
	return p, nil
}

func (m *MockProductStore) Update(_ context.Context, p *Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.Products[p.ID]
	if !ok || existing.UserID != p.UserID {
		return ErrNotFound
	}
	m.Products[p.ID] = p
	return nil
}

func (m *MockProductStore) Delete(_ context.Context, userID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.Products[id]
	if !ok || p.UserID != userID {
		return ErrNotFound
	}
	delete(m.Products, id)
	return nil
}

func (m *MockProductStore) List(_ context.Context, userID uuid.UUID, f ProductFilter) ([]*Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*Product
	for _, p := range m.Products {
		if p.UserID != userID {
			continue
		}
		if f.SKU != "" && p.SKU != f.SKU {
			continue
		}
		if f.Exported != nil && p.Exported != *f.Exported {
			continue
		}
		result = append(result, p)
	}
	return result, nil
}

// MockFileStore is an in-memory FileStore.
type MockFileStore struct {
	mu    sync.Mutex
	Files map[uuid.UUID]*FileItem
}

// NewMockFileStore creates an empty MockFileStore.
func NewMockFileStore() *MockFileStore {
	return &MockFileStore{Files: make(map[uuid.UUID]*FileItem)}
}

func (m *MockFileStore) Create(_ context.Context, f *FileItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.Files {
		if existing.StoredName == f.StoredName {
			return ErrDuplicate
		}
	}
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	m.Files[f.ID] = f
	return nil
}

func (m *MockFileStore) Get(_ context.Context, userID, id uuid.UUID) (*FileItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.Files[id]
	if !ok || f.UserID != userID {
		return nil, ErrNotFound
	}
	return f, nil
}

func (m *MockFileStore) GetByStoredName(_ context.Context, userID uuid.UUID, storedName string) (*FileItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.Files {
		if f.UserID == userID && f.StoredName == storedName {
			return f, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MockFileStore) Update(_ context.Context, f *FileItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.Files[f.ID]
	if !ok || existing.UserID != f.UserID {
		return ErrNotFound
	}
	m.Files[f.ID] = f
	return nil
}

func (m *MockFileStore) Delete(_ context.Context, userID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.Files[id]
	if !ok || f.UserID != userID {
		return ErrNotFound
	}
	delete(m.Files, id)
	return nil
}

func (m *MockFileStore) List(_ context.Context, userID uuid.UUID, _ FileFilter) ([]*FileItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*FileItem
	for _, f := range m.Files {
		if f.UserID == userID {
			result = append(result, f)
		}
	}
	return result, nil
}

// MockChannelStore is an in-memory ChannelStore.
type MockChannelStore struct {
	mu       sync.Mutex
	Channels map[uuid.UUID]*Channel
}

// NewMockChannelStore creates an empty MockChannelStore.
func NewMockChannelStore() *MockChannelStore {
	return &MockChannelStore{Channels: make(map[uuid.UUID]*Channel)}
}

func (m *MockChannelStore) Create(_ context.Context, c *Channel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.Channels {
		if existing.UserID == c.UserID && existing.Name == c.Name {
			return ErrDuplicate
		}
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	m.Channels[c.ID] = c
	return nil
}

func (m *MockChannelStore) Get(_ context.Context, userID, id uuid.UUID) (*Channel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.Channels[id]
	if !ok || c.UserID != userID {
		return nil, ErrNotFound
	}
	return c, nil
}

func (m *MockChannelStore) Update(_ context.Context, c *Channel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.Channels[c.ID]
	if !ok || existing.UserID != c.UserID {
		return ErrNotFound
	}
	m.Channels[c.ID] = c
	return nil
}

func (m *MockChannelStore) Delete(_ context.Context, userID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.Channels[id]
	if !ok || c.UserID != userID {
		return ErrNotFound
	}
	delete(m.Channels, id)
	return nil
}

func (m *MockChannelStore) List(_ context.Context, userID uuid.UUID, f ChannelFilter) ([]*Channel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*Channel
	for _, c := range m.Channels {
		if c.UserID != userID {
			continue
		}
		if f.Kind != "" && c.Kind != f.Kind {
			continue
		}
		if f.Enabled != nil && c.Enabled != *f.Enabled {
			continue
		}
		result = append(result, c)
	}
	return result, nil
}
