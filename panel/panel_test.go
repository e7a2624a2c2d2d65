package panel

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homebasehq/homebase/validate"
)

type testItem struct {
	ID   string
	Name string
}

func (t testItem) ItemID() string { return t.ID }

// fakeClient records calls and serves canned responses.
type fakeClient struct {
	created   []testItem
	updated   []testItem
	deleted   []string
	listed    []testItem
	saveErr   error
	nextID    string
	listErr   error
	deleteErr error
}

func (f *fakeClient) List(ctx context.Context) ([]testItem, error) {
	return f.listed, f.listErr
}

func (f *fakeClient) Create(ctx context.Context, item testItem) (testItem, error) {
	if f.saveErr != nil {
		return testItem{}, f.saveErr
	}
	item.ID = f.nextID
	f.created = append(f.created, item)
	return item, nil
}

func (f *fakeClient) Update(ctx context.Context, item testItem) (testItem, error) {
	if f.saveErr != nil {
		return testItem{}, f.saveErr
	}
	f.updated = append(f.updated, item)
	return item, nil
}

func (f *fakeClient) Delete(ctx context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func newTestContext(t *testing.T, plugin string, client *fakeClient, reg *CloseRegistry, opts ...Option[testItem]) *Context[testItem] {
	t.Helper()
	c := NewContext[testItem](plugin, client, reg, opts...)
	c.Mount()
	t.Cleanup(c.Unmount)
	return c
}

func TestOpenClosesOtherPanels(t *testing.T) {
	reg := NewCloseRegistry(nil)
	notes := newTestContext(t, "notes", &fakeClient{}, reg)
	tasks := newTestContext(t, "tasks", &fakeClient{}, reg)

	notes.Open(nil)
	require.True(t, notes.IsOpen())

	item := testItem{ID: "t1"}
	tasks.OpenForEdit(item)

	assert.False(t, notes.IsOpen(), "opening tasks must close notes")
	assert.True(t, tasks.IsOpen())
	assert.Equal(t, ModeEdit, tasks.Mode())
}

func TestUnregisteredPanelSkippedByCloseOthers(t *testing.T) {
	reg := NewCloseRegistry(nil)
	notes := NewContext[testItem]("notes", &fakeClient{}, reg)
	notes.Mount()
	tasks := newTestContext(t, "tasks", &fakeClient{}, reg)

	notes.Unmount()

	// Must not panic or call into the unmounted context.
	tasks.Open(nil)
	assert.True(t, tasks.IsOpen())
	assert.Equal(t, 1, reg.Len())
}

func TestCloseOthersSurvivesPanickingCallback(t *testing.T) {
	reg := NewCloseRegistry(nil)
	reg.Register("broken", func() { panic("boom") })

	closed := false
	reg.Register("healthy", func() { closed = true })

	assert.NotPanics(t, func() { reg.CloseOthers("tasks") })
	assert.True(t, closed, "healthy callback must still run")
}

func TestBlockingErrorsAbortBeforeServerCall(t *testing.T) {
	client := &fakeClient{nextID: "n1"}
	reg := NewCloseRegistry(nil)
	requireName := func(item testItem, _ []testItem) []validate.FieldError {
		return validate.Append(nil, validate.Required("name", "Name", item.Name))
	}
	c := newTestContext(t, "notes", client, reg, WithValidators(requireName))

	c.Open(nil)
	err := c.Save(context.Background(), testItem{})

	require.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, client.created, "server must not be called")
	assert.True(t, c.IsOpen(), "panel stays open on validation failure")
	require.Len(t, c.Errors(), 1)
	assert.Equal(t, "name", c.Errors()[0].Field)
}

func TestAdvisoryErrorsDoNotBlockSave(t *testing.T) {
	client := &fakeClient{nextID: "c1"}
	reg := NewCloseRegistry(nil)
	warn := func(item testItem, _ []testItem) []validate.FieldError {
		return []validate.FieldError{validate.New("email", "Warning: another contact uses this email")}
	}
	c := newTestContext(t, "contacts", client, reg, WithValidators(warn))

	c.Open(nil)
	err := c.Save(context.Background(), testItem{Name: "Ada"})

	require.NoError(t, err)
	assert.Len(t, client.created, 1, "advisory errors must not stop the save")
}

func TestCreateAppendsOnceAndCloses(t *testing.T) {
	client := &fakeClient{nextID: "n9"}
	reg := NewCloseRegistry(nil)
	c := newTestContext(t, "notes", client, reg)

	c.Open(nil)
	require.Equal(t, ModeCreate, c.Mode())
	require.NoError(t, c.Save(context.Background(), testItem{Name: "first"}))

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "n9", items[0].ID)
	assert.Equal(t, ModeClosed, c.Mode())
	assert.Nil(t, c.Current())
}

func TestEditTransitionsToView(t *testing.T) {
	client := &fakeClient{listed: []testItem{{ID: "n1", Name: "old"}}}
	reg := NewCloseRegistry(nil)
	c := newTestContext(t, "notes", client, reg)
	require.NoError(t, c.Load(context.Background()))

	c.OpenForEdit(testItem{ID: "n1", Name: "old"})
	require.NoError(t, c.Save(context.Background(), testItem{ID: "n1", Name: "new"}))

	assert.Equal(t, ModeView, c.Mode())
	require.NotNil(t, c.Current())
	assert.Equal(t, "new", c.Current().Name)

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "new", items[0].Name, "collection holds the server result")
}

type fieldErrsErr struct{ errs []validate.FieldError }

func (e fieldErrsErr) Error() string                       { return "rejected" }
func (e fieldErrsErr) FieldErrors() []validate.FieldError { return e.errs }

func TestServerFieldErrorsSurfaceOnPanel(t *testing.T) {
	client := &fakeClient{saveErr: fieldErrsErr{errs: []validate.FieldError{
		{Field: "sku", Message: "SKU must be unique", Severity: validate.SeverityBlocking},
	}}}
	reg := NewCloseRegistry(nil)
	c := newTestContext(t, "products", client, reg)

	c.Open(nil)
	err := c.Save(context.Background(), testItem{Name: "widget"})

	require.Error(t, err)
	require.Len(t, c.Errors(), 1)
	assert.Equal(t, "sku", c.Errors()[0].Field)
	assert.True(t, c.IsOpen())
}

func TestServerFailureSetsGeneralError(t *testing.T) {
	client := &fakeClient{saveErr: errors.New("boom")}
	reg := NewCloseRegistry(nil)
	c := newTestContext(t, "notes", client, reg)

	c.Open(nil)
	err := c.Save(context.Background(), testItem{Name: "x"})

	require.Error(t, err)
	require.Len(t, c.Errors(), 1)
	assert.Equal(t, validate.GeneralField, c.Errors()[0].Field)
	assert.Equal(t, "Failed to save note. Please try again.", c.Errors()[0].Message)
}

func TestDeleteOnlyMutatesAfterServerSuccess(t *testing.T) {
	client := &fakeClient{listed: []testItem{{ID: "n1"}}, deleteErr: errors.New("down")}
	reg := NewCloseRegistry(nil)
	c := newTestContext(t, "notes", client, reg)
	require.NoError(t, c.Load(context.Background()))

	require.Error(t, c.Delete(context.Background(), "n1"))
	assert.Len(t, c.Items(), 1, "failed delete must not touch local state")

	client.deleteErr = nil
	require.NoError(t, c.Delete(context.Background(), "n1"))
	assert.Empty(t, c.Items())
}

func TestDeriveFunctionName(t *testing.T) {
	cases := []struct {
		action string
		mode   Mode
		plural string
		want   string
	}{
		{"open", ModeEdit, "woocommerce-products", "openWooSettingsForEdit"},
		{"open", ModeEdit, "notes", "openNoteForEdit"},
		{"open", ModeCreate, "tasks", "openTaskForCreate"},
		{"open", ModeView, "estimates", "openEstimateForView"},
		{"close", "", "notes", "closeNotesPanel"},
		{"close", "", "woocommerce-products", "closeWoocommerceProductsPanel"},
		{"submit", "", "invoices", "submitInvoicesForm"},
		{"cancel", "", "contacts", "cancelContactsForm"},
	}
	for _, tc := range cases {
		got := DeriveFunctionName(tc.action, tc.mode, tc.plural)
		assert.Equal(t, tc.want, got, "%s/%s/%s", tc.action, tc.mode, tc.plural)
	}
}

func TestCapabilityDispatchResolvesLegacyCommands(t *testing.T) {
	table := NewCapabilityTable(nil)
	var opened *testItem
	table.Register("notes", Capabilities{
		OpenForEdit: func(item any) {
			v := item.(testItem)
			opened = &v
		},
	})

	ok := table.Dispatch("openNoteForEdit", testItem{ID: "n1"})

	require.True(t, ok)
	require.NotNil(t, opened)
	assert.Equal(t, "n1", opened.ID)

	assert.False(t, table.Dispatch("openGhostForEdit", nil))
}

func TestCapabilitiesAdapterIgnoresWrongType(t *testing.T) {
	reg := NewCloseRegistry(nil)
	c := newTestContext(t, "notes", &fakeClient{}, reg)
	caps := c.Capabilities()

	assert.NotPanics(t, func() { caps.OpenForEdit(42) })
	assert.False(t, c.IsOpen())

	caps.OpenForCreate()
	assert.Equal(t, ModeCreate, c.Mode())
}

func TestFormBridgeMissingHandlerIsNoOp(t *testing.T) {
	bridge := NewFormBridge(nil)
	assert.NotPanics(t, func() { bridge.InvokeSubmit("notes") })

	submitted := false
	bridge.RegisterFormHandlers("notes", FormHandlers{Submit: func() { submitted = true }})
	bridge.InvokeSubmit("notes")
	assert.True(t, submitted)

	bridge.UnregisterFormHandlers("notes")
	assert.NotPanics(t, func() { bridge.InvokeCancel("notes") })
}
