package panel

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/homebasehq/homebase/validate"
)

// ModeClosed is the panel state when no item is being created, edited, or
// viewed. The full state machine is:
//
//	Closed → Create → (saved) → Closed
//	Closed → Edit(item) → (saved) → View(item)
//	Closed → View(item) → Edit(item) | Closed
//
// There is no distinct loading or error state; failures attach to the
// current attempt as validation errors, not as transitions.
const ModeClosed Mode = "closed"

// ErrValidation is returned by Save when blocking validation errors
// prevented the server call. The errors themselves are on the context.
var ErrValidation = errors.New("validation failed")

// Item is anything a panel context can manage.
type Item interface {
	ItemID() string
}

// ItemClient is the API surface a panel context needs for its resource.
// The concrete implementations live in the client package.
type ItemClient[T Item] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, item T) (T, error)
	Update(ctx context.Context, item T) (T, error)
	Delete(ctx context.Context, id string) error
}

// FieldErrorer is implemented by API errors that carry structured field
// errors (uniqueness rejections surface this way).
type FieldErrorer interface {
	FieldErrors() []validate.FieldError
}

// Validator checks an item against its siblings. siblings excludes the
// item being edited, so uniqueness checks need no self-exclusion logic.
type Validator[T Item] func(item T, siblings []T) []validate.FieldError

// Context owns one plugin's client-side collection and panel state.
type Context[T Item] struct {
	pluginName      string
	defaultOpenMode Mode
	client          ItemClient[T]
	validators      []Validator[T]
	registry        *CloseRegistry
	logger          *slog.Logger

	mu      sync.Mutex
	items   []T
	mode    Mode
	current *T
	errs    []validate.FieldError
}

// Option configures a Context.
type Option[T Item] func(*Context[T])

// WithValidators sets the validators run before every save.
func WithValidators[T Item](vs ...Validator[T]) Option[T] {
	return func(c *Context[T]) { c.validators = vs }
}

// WithDefaultOpenMode sets the mode Open uses for a non-nil item. Legacy
// plugins open straight into edit; newer ones open into view.
func WithDefaultOpenMode[T Item](m Mode) Option[T] {
	return func(c *Context[T]) { c.defaultOpenMode = m }
}

// WithLogger sets the context's logger.
func WithLogger[T Item](l *slog.Logger) Option[T] {
	return func(c *Context[T]) { c.logger = l }
}

// NewContext creates a panel context for one plugin. Call Mount to join
// the close registry and Unmount to leave it.
func NewContext[T Item](pluginName string, client ItemClient[T], registry *CloseRegistry, opts ...Option[T]) *Context[T] {
	c := &Context[T]{
		pluginName:      pluginName,
		defaultOpenMode: ModeEdit,
		client:          client,
		registry:        registry,
		logger:          slog.Default(),
		mode:            ModeClosed,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Mount registers the context's close function with the close registry.
func (c *Context[T]) Mount() {
	c.registry.Register(c.pluginName, c.ClosePanel)
}

// Unmount removes the context from the close registry.
func (c *Context[T]) Unmount() {
	c.registry.Unregister(c.pluginName)
}

// Capabilities returns this context's actions in shell-consumable form.
// Items passed through the shell arrive as any; a type mismatch is logged
// and ignored rather than panicking the shell.
func (c *Context[T]) Capabilities() Capabilities {
	return Capabilities{
		OpenForCreate: func() { c.Open(nil) },
		OpenForEdit: func(item any) {
			if t, ok := item.(T); ok {
				c.OpenForEdit(t)
			} else {
				c.logger.Warn("wrong item type for panel", "plugin", c.pluginName)
			}
		},
		OpenForView: func(item any) {
			if t, ok := item.(T); ok {
				c.OpenForView(t)
			} else {
				c.logger.Warn("wrong item type for panel", "plugin", c.pluginName)
			}
		},
		Close: c.ClosePanel,
	}
}

// Load replaces the in-memory collection from the server.
func (c *Context[T]) Load(ctx context.Context) error {
	items, err := c.client.List(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.items = items
	c.mu.Unlock()
	return nil
}

// Open opens the panel: nil means create mode, otherwise the plugin's
// default open mode for existing items. Opening always clears validation
// errors and closes every other plugin's panel.
func (c *Context[T]) Open(item *T) {
	if item == nil {
		c.open(ModeCreate, nil)
		return
	}
	c.open(c.defaultOpenMode, item)
}

// OpenForEdit opens the panel in edit mode for an existing item.
func (c *Context[T]) OpenForEdit(item T) {
	c.open(ModeEdit, &item)
}

// OpenForView opens the panel in view mode for an existing item.
func (c *Context[T]) OpenForView(item T) {
	c.open(ModeView, &item)
}

func (c *Context[T]) open(mode Mode, item *T) {
	c.mu.Lock()
	c.mode = mode
	c.current = item
	c.errs = nil
	c.mu.Unlock()
	c.registry.CloseOthers(c.pluginName)
}

// ClosePanel closes the panel and clears the current item. Safe to call
// when already closed.
func (c *Context[T]) ClosePanel() {
	c.mu.Lock()
	c.mode = ModeClosed
	c.current = nil
	c.errs = nil
	c.mu.Unlock()
}

// Save validates and persists the panel's item. Blocking validation
// errors abort before any server call and Save returns ErrValidation.
// On a successful create the panel closes and the new item joins the
// collection; on a successful edit the panel transitions to view mode
// holding the server-returned item.
func (c *Context[T]) Save(ctx context.Context, item T) error {
	c.mu.Lock()
	wasCreate := c.mode == ModeCreate
	siblings := make([]T, 0, len(c.items))
	for _, existing := range c.items {
		if existing.ItemID() != item.ItemID() {
			siblings = append(siblings, existing)
		}
	}
	var errs []validate.FieldError
	for _, v := range c.validators {
		errs = append(errs, v(item, siblings)...)
	}
	c.errs = errs
	c.mu.Unlock()

	if len(validate.Blocking(errs)) > 0 {
		return ErrValidation
	}

	if wasCreate {
		saved, err := c.client.Create(ctx, item)
		if err != nil {
			c.recordSaveError(err)
			return err
		}
		c.mu.Lock()
		c.items = append(c.items, saved)
		c.mode = ModeClosed
		c.current = nil
		c.errs = nil
		c.mu.Unlock()
		return nil
	}

	saved, err := c.client.Update(ctx, item)
	if err != nil {
		c.recordSaveError(err)
		return err
	}
	c.mu.Lock()
	c.upsertLocked(saved)
	c.mode = ModeView
	c.current = &saved
	c.errs = nil
	c.mu.Unlock()
	return nil
}

// Delete removes an item via the API, then from the local collection.
// Local state is only touched after the server confirms, so there is
// nothing to roll back on failure.
func (c *Context[T]) Delete(ctx context.Context, id string) error {
	if err := c.client.Delete(ctx, id); err != nil {
		c.recordSaveError(err)
		return err
	}
	c.mu.Lock()
	kept := c.items[:0]
	for _, item := range c.items {
		if item.ItemID() != id {
			kept = append(kept, item)
		}
	}
	c.items = kept
	if c.current != nil && (*c.current).ItemID() == id {
		c.mode = ModeClosed
		c.current = nil
	}
	c.mu.Unlock()
	return nil
}

func (c *Context[T]) recordSaveError(err error) {
	var fe FieldErrorer
	var errs []validate.FieldError
	if errors.As(err, &fe) {
		errs = fe.FieldErrors()
	} else {
		errs = []validate.FieldError{{
			Field:    validate.GeneralField,
			Message:  "Failed to save " + singularize(camelCase(c.pluginName)) + ". Please try again.",
			Severity: validate.SeverityBlocking,
		}}
	}
	c.mu.Lock()
	c.errs = errs
	c.mu.Unlock()
}

func (c *Context[T]) upsertLocked(item T) {
	for i, existing := range c.items {
		if existing.ItemID() == item.ItemID() {
			c.items[i] = item
			return
		}
	}
	c.items = append(c.items, item)
}

// PluginName returns the plugin this context belongs to.
func (c *Context[T]) PluginName() string { return c.pluginName }

// Items returns a copy of the in-memory collection.
func (c *Context[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// Mode returns the current panel mode.
func (c *Context[T]) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// IsOpen reports whether the panel is open in any mode.
func (c *Context[T]) IsOpen() bool {
	return c.Mode() != ModeClosed
}

// Current returns the item the panel is editing or viewing, or nil.
func (c *Context[T]) Current() *T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Errors returns the validation errors from the latest attempt.
func (c *Context[T]) Errors() []validate.FieldError {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]validate.FieldError, len(c.errs))
	copy(out, c.errs)
	return out
}
