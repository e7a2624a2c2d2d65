package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/homebasehq/homebase/channel/woocommerce"
	"github.com/homebasehq/homebase/store"
)

// testEnv bundles a router, its stores, and a logged-in user.
type testEnv struct {
	handler http.Handler
	stores  Stores
	user    *store.User
	session *store.Session
	blobs   *store.LocalStorage
	metrics *Metrics
}

// fakeExporter satisfies ProductExporter without touching the network.
type fakeExporter struct {
	summary *woocommerce.ExportSummary
	err     error
	got     []*store.Product
}

func (f *fakeExporter) Export(_ context.Context, products []*store.Product) (*woocommerce.ExportSummary, error) {
	f.got = products
	if f.err != nil {
		return nil, f.err
	}
	return f.summary, nil
}

func newTestEnv(t *testing.T, exporter ProductExporter) *testEnv {
	t.Helper()

	blobs, err := store.NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStorage: %v", err)
	}

	tasks := store.NewMockTaskStore()
	notes := store.NewMockNoteStore()
	notes.Tasks = tasks

	stores := Stores{
		Users:     store.NewMockUserStore(),
		Sessions:  store.NewMockSessionStore(),
		Contacts:  store.NewMockContactStore(),
		Notes:     notes,
		Tasks:     tasks,
		Estimates: store.NewMockEstimateStore(),
		Invoices:  store.NewMockInvoiceStore(),
		Products:  store.NewMockProductStore(),
		Files:     store.NewMockFileStore(),
		Channels:  store.NewMockChannelStore(),
		Blobs:     blobs,
	}

	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	now := time.Now()
	user := &store.User{
		ID:           uuid.New(),
		Email:        "admin@example.com",
		PasswordHash: string(hash),
		DisplayName:  "Admin",
		Role:         store.RoleAdmin,
		Plugins:      store.AllPlugins,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := stores.Users.Create(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	session := &store.Session{
		ID:        uuid.New(),
		UserID:    user.ID,
		Token:     "test-session-token",
		Active:    true,
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}
	if err := stores.Sessions.Create(context.Background(), session); err != nil {
		t.Fatalf("seed session: %v", err)
	}

	metrics := NewMetrics()
	cfg := Config{
		JWTSecret:  "test-secret",
		JWTIssuer:  "homebase-test",
		SessionTTL: time.Hour,
		Metrics:    metrics,
	}
	if exporter != nil {
		cfg.Exporter = func(*store.Channel) ProductExporter { return exporter }
	}

	return &testEnv{
		handler: NewRouter(stores, cfg),
		stores:  stores,
		user:    user,
		session: session,
		blobs:   blobs,
		metrics: metrics,
	}
}

// do sends an authenticated JSON request through the router.
func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: e.session.Token})
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

// doAnon sends an unauthenticated request through the router.
func (e *testEnv) doAnon(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

// newBearerRequest builds a request authenticated by bearer token only.
func newBearerRequest(t *testing.T, method, path, token string) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	return req, httptest.NewRecorder()
}

// decodeData unmarshals the data field of an envelope response.
func decodeData(t *testing.T, w *httptest.ResponseRecorder, target any) {
	t.Helper()
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body %s)", err, w.Body.String())
	}
	if err := json.Unmarshal(env.Data, target); err != nil {
		t.Fatalf("decode data: %v (body %s)", err, w.Body.String())
	}
}

// decodeFieldErrors unmarshals an error envelope's errors array.
func decodeFieldErrors(t *testing.T, w *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	var env struct {
		Errors []map[string]any `json:"errors"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode errors: %v (body %s)", err, w.Body.String())
	}
	return env.Errors
}
