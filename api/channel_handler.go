package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/homebasehq/homebase/channel/woocommerce"
	"github.com/homebasehq/homebase/store"
	"github.com/homebasehq/homebase/validate"
)

// ProductExporter pushes products to an external channel.
type ProductExporter interface {
	Export(ctx context.Context, products []*store.Product) (*woocommerce.ExportSummary, error)
}

// ExporterFactory builds an exporter for a channel. Tests substitute a
// fake; production uses the WooCommerce client.
type ExporterFactory func(ch *store.Channel) ProductExporter

// ChannelHandler handles channel CRUD and export endpoints.
type ChannelHandler struct {
	channels    store.ChannelStore
	products    store.ProductStore
	newExporter ExporterFactory
	metrics     *Metrics
}

// NewChannelHandler creates a new ChannelHandler. A nil factory uses the
// WooCommerce exporter.
func NewChannelHandler(channels store.ChannelStore, products store.ProductStore, factory ExporterFactory, metrics *Metrics) *ChannelHandler {
	if factory == nil {
		factory = func(ch *store.Channel) ProductExporter {
			return woocommerce.NewExporter(ch)
		}
	}
	return &ChannelHandler{
		channels:    channels,
		products:    products,
		newExporter: factory,
		metrics:     metrics,
	}
}

func (h *ChannelHandler) countExport(kind, outcome string) {
	if h.metrics != nil {
		h.metrics.ChannelExports.WithLabelValues(kind, outcome).Inc()
	}
}

type channelRequest struct {
	Name           string `json:"name"`
	Kind           string `json:"kind"`
	BaseURL        string `json:"base_url"`
	ConsumerKey    string `json:"consumer_key"`
	ConsumerSecret string `json:"consumer_secret"`
	Enabled        *bool  `json:"enabled"`
}

func (req *channelRequest) validate() []validate.FieldError {
	var errs []validate.FieldError
	errs = validate.Append(errs, validate.Required("name", "Name", req.Name))
	errs = validate.Append(errs, validate.Required("base_url", "Base URL", req.BaseURL))
	if req.Kind != "" && store.ChannelKind(req.Kind) != store.ChannelKindWooCommerce {
		errs = append(errs, validate.FieldError{
			Field:    "kind",
			Message:  "Kind must be woocommerce",
			Severity: validate.SeverityBlocking,
		})
	}
	return errs
}

// List handles GET /api/channels. Credentials never round-trip.
func (h *ChannelHandler) List(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	channels, err := h.channels.List(r.Context(), user.ID, store.ChannelFilter{
		Pagination: store.DefaultPagination(),
	})
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	WriteJSON(w, http.StatusOK, channels)
}

// Create handles POST /api/channels.
func (h *ChannelHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var req channelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if errs := req.validate(); len(errs) > 0 {
		WriteFieldErrors(w, http.StatusBadRequest, errs)
		return
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	now := time.Now()
	ch := &store.Channel{
		ID:             uuid.New(),
		UserID:         user.ID,
		Name:           strings.TrimSpace(req.Name),
		Kind:           store.ChannelKindWooCommerce,
		BaseURL:        strings.TrimRight(strings.TrimSpace(req.BaseURL), "/"),
		ConsumerKey:    req.ConsumerKey,
		ConsumerSecret: req.ConsumerSecret,
		Enabled:        enabled,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := h.channels.Create(r.Context(), ch); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			WriteConflict(w, "name", "Channel name must be unique")
			return
		}
		WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	WriteJSON(w, http.StatusCreated, ch)
}

// Update handles PUT /api/channels/{id}. Empty credential fields keep
// the stored values so editing a channel does not require re-entering
// its secret.
func (h *ChannelHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid channel id")
		return
	}

	ch, err := h.channels.Get(r.Context(), user.ID, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "channel not found")
			return
		}
		WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	var req channelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if errs := req.validate(); len(errs) > 0 {
		WriteFieldErrors(w, http.StatusBadRequest, errs)
		return
	}

	ch.Name = strings.TrimSpace(req.Name)
	ch.BaseURL = strings.TrimRight(strings.TrimSpace(req.BaseURL), "/")
	if req.ConsumerKey != "" {
		ch.ConsumerKey = req.ConsumerKey
	}
	if req.ConsumerSecret != "" {
		ch.ConsumerSecret = req.ConsumerSecret
	}
	if req.Enabled != nil {
		ch.Enabled = *req.Enabled
	}
	ch.UpdatedAt = time.Now()

	if err := h.channels.Update(r.Context(), ch); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			WriteConflict(w, "name", "Channel name must be unique")
			return
		}
		WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	WriteJSON(w, http.StatusOK, ch)
}

// Delete handles DELETE /api/channels/{id}.
func (h *ChannelHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid channel id")
		return
	}
	if err := h.channels.Delete(r.Context(), user.ID, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "channel not found")
			return
		}
		WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Export handles POST /api/channels/{id}/export. It pushes the user's
// products to the channel, flags the pushed ones as exported, and
// records the run summary on the channel.
func (h *ChannelHandler) Export(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid channel id")
		return
	}

	ch, err := h.channels.Get(r.Context(), user.ID, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "channel not found")
			return
		}
		WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !ch.Enabled {
		WriteError(w, http.StatusConflict, "channel is disabled")
		return
	}

	products, err := h.products.List(r.Context(), user.ID, store.ProductFilter{
		Pagination: store.Pagination{Limit: 1000},
	})
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	summary, err := h.newExporter(ch).Export(r.Context(), products)
	if err != nil {
		h.countExport(string(ch.Kind), "error")
		WriteError(w, http.StatusBadGateway, "channel export failed")
		return
	}
	h.countExport(string(ch.Kind), "ok")

	now := time.Now()
	failedSKUs := make(map[string]bool, len(summary.Errors))
	for _, msg := range summary.Errors {
		if idx := strings.Index(msg, ":"); idx != -1 {
			failedSKUs[msg[:idx]] = true
		}
	}
	for _, p := range products {
		if failedSKUs[p.SKU] {
			continue
		}
		p.Exported = true
		p.ExportedAt = &now
		p.UpdatedAt = now
		_ = h.products.Update(r.Context(), p)
	}

	ch.LastExportAt = &now
	ch.LastExportNote = fmt.Sprintf("pushed %d, failed %d", summary.Pushed, summary.Failed)
	ch.UpdatedAt = now
	_ = h.channels.Update(r.Context(), ch)

	WriteJSON(w, http.StatusOK, summary)
}
