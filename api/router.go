package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/homebasehq/homebase/store"
)

// Config holds configuration for the API layer.
type Config struct {
	JWTSecret  string //nolint:gosec // G117: config field
	JWTIssuer  string
	SessionTTL time.Duration

	// SecureCookies controls the session cookie's Secure flag. Disable
	// only for plain-HTTP local development.
	SecureCookies bool

	// AuthRateLimit is the maximum number of requests per minute per IP
	// allowed on the /auth/login endpoint. Defaults to 10 when zero.
	AuthRateLimit int

	// Exporter overrides the channel exporter, used in tests.
	Exporter ExporterFactory

	// Logger receives per-request log lines; nil means slog.Default.
	Logger *slog.Logger

	// Metrics receives request metrics; a fresh instance is created when
	// nil.
	Metrics *Metrics
}

// Stores groups all store interfaces needed by the API.
type Stores struct {
	Users     store.UserStore
	Sessions  store.SessionStore
	Contacts  store.ContactStore
	Notes     store.NoteStore
	Tasks     store.TaskStore
	Estimates store.EstimateStore
	Invoices  store.InvoiceStore
	Products  store.ProductStore
	Files     store.FileStore
	Channels  store.ChannelStore
	Blobs     store.BlobStorage
}

// NewRouter creates an http.Handler with all API routes registered.
// Every plugin route requires an authenticated session and the matching
// entitlement on the user's account.
func NewRouter(stores Stores, cfg Config) http.Handler {
	mux := http.NewServeMux()

	secret := []byte(cfg.JWTSecret)
	mw := NewMiddleware(secret, stores.Users, stores.Sessions)
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = NewMetrics()
	}

	// --- Auth ---
	authH := NewAuthHandler(stores.Users, stores.Sessions, secret, cfg.JWTIssuer, cfg.SessionTTL, cfg.SecureCookies)
	authRL := mw.RateLimit(cfg.AuthRateLimit)
	mux.Handle("POST /api/auth/login", authRL(http.HandlerFunc(authH.Login)))
	mux.HandleFunc("POST /api/auth/logout", authH.Logout)
	mux.Handle("GET /api/auth/me", mw.RequireAuth(http.HandlerFunc(authH.Me)))
	mux.Handle("POST /api/auth/token", mw.RequireAuth(http.HandlerFunc(authH.Token)))

	// plugin wraps a handler in auth plus the plugin entitlement check.
	plugin := func(name string, h http.HandlerFunc) http.Handler {
		return mw.RequireAuth(mw.RequirePlugin(name)(h))
	}

	// --- Contacts ---
	contactH := NewContactHandler(stores.Contacts)
	mux.Handle("GET /api/contacts", plugin(store.PluginContacts, contactH.List))
	mux.Handle("POST /api/contacts", plugin(store.PluginContacts, contactH.Create))
	mux.Handle("PUT /api/contacts/{id}", plugin(store.PluginContacts, contactH.Update))
	mux.Handle("DELETE /api/contacts/{id}", plugin(store.PluginContacts, contactH.Delete))

	// --- Notes ---
	noteH := NewNoteHandler(stores.Notes)
	mux.Handle("GET /api/notes", plugin(store.PluginNotes, noteH.List))
	mux.Handle("POST /api/notes", plugin(store.PluginNotes, noteH.Create))
	mux.Handle("PUT /api/notes/{id}", plugin(store.PluginNotes, noteH.Update))
	mux.Handle("DELETE /api/notes/{id}", plugin(store.PluginNotes, noteH.Delete))

	// --- Tasks ---
	taskH := NewTaskHandler(stores.Tasks, stores.Notes)
	mux.Handle("GET /api/tasks", plugin(store.PluginTasks, taskH.List))
	mux.Handle("POST /api/tasks", plugin(store.PluginTasks, taskH.Create))
	mux.Handle("PUT /api/tasks/{id}", plugin(store.PluginTasks, taskH.Update))
	mux.Handle("DELETE /api/tasks/{id}", plugin(store.PluginTasks, taskH.Delete))

	// --- Estimates ---
	estimateH := NewEstimateHandler(stores.Estimates)
	mux.Handle("GET /api/estimates", plugin(store.PluginEstimates, estimateH.List))
	mux.Handle("POST /api/estimates", plugin(store.PluginEstimates, estimateH.Create))
	mux.Handle("PUT /api/estimates/{id}", plugin(store.PluginEstimates, estimateH.Update))
	mux.Handle("DELETE /api/estimates/{id}", plugin(store.PluginEstimates, estimateH.Delete))

	// --- Invoices ---
	invoiceH := NewInvoiceHandler(stores.Invoices)
	mux.Handle("GET /api/invoices", plugin(store.PluginInvoices, invoiceH.List))
	mux.Handle("POST /api/invoices", plugin(store.PluginInvoices, invoiceH.Create))
	mux.Handle("PUT /api/invoices/{id}", plugin(store.PluginInvoices, invoiceH.Update))
	mux.Handle("DELETE /api/invoices/{id}", plugin(store.PluginInvoices, invoiceH.Delete))
	mux.Handle("POST /api/invoices/import/preview", plugin(store.PluginInvoices, invoiceH.ImportPreview))

	// --- Products ---
	productH := NewProductHandler(stores.Products)
	mux.Handle("GET /api/products", plugin(store.PluginProducts, productH.List))
	mux.Handle("POST /api/products", plugin(store.PluginProducts, productH.Create))
	mux.Handle("PUT /api/products/{id}", plugin(store.PluginProducts, productH.Update))
	mux.Handle("DELETE /api/products/{id}", plugin(store.PluginProducts, productH.Delete))

	// --- Files ---
	fileH := NewFileHandler(stores.Files, stores.Blobs)
	mux.Handle("GET /api/files", plugin(store.PluginFiles, fileH.List))
	mux.Handle("POST /api/files/upload", plugin(store.PluginFiles, fileH.Upload))
	mux.Handle("PUT /api/files/{id}", plugin(store.PluginFiles, fileH.Update))
	mux.Handle("DELETE /api/files/{id}", plugin(store.PluginFiles, fileH.Delete))
	mux.Handle("GET /api/files/raw/{filename}", plugin(store.PluginFiles, fileH.Raw))

	// --- Channels ---
	channelH := NewChannelHandler(stores.Channels, stores.Products, cfg.Exporter, metrics)
	mux.Handle("GET /api/channels", plugin(store.PluginChannels, channelH.List))
	mux.Handle("POST /api/channels", plugin(store.PluginChannels, channelH.Create))
	mux.Handle("PUT /api/channels/{id}", plugin(store.PluginChannels, channelH.Update))
	mux.Handle("DELETE /api/channels/{id}", plugin(store.PluginChannels, channelH.Delete))
	mux.Handle("POST /api/channels/{id}/export", plugin(store.PluginChannels, channelH.Export))

	// --- Operational ---
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return metrics.Instrument(LogRequests(cfg.Logger)(mux))
}
