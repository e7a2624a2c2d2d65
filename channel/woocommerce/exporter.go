// Package woocommerce pushes products to a WooCommerce store over its
// REST API.
package woocommerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/homebasehq/homebase/store"
)

const productsPath = "/wp-json/wc/v3/products"

// ExportSummary reports how an export run went. Errors holds one
// message per failed product so a partial failure is still actionable.
type ExportSummary struct {
	Pushed int      `json:"pushed"`
	Failed int      `json:"failed"`
	Errors []string `json:"errors,omitempty"`
}

// wcProduct is the subset of the WooCommerce product schema we write.
type wcProduct struct {
	Name          string `json:"name"`
	SKU           string `json:"sku"`
	RegularPrice  string `json:"regular_price"`
	StockQuantity int    `json:"stock_quantity"`
	ManageStock   bool   `json:"manage_stock"`
}

// Exporter pushes products to one WooCommerce channel.
type Exporter struct {
	baseURL        string
	consumerKey    string
	consumerSecret string
	httpClient     *http.Client
	logger         *slog.Logger
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(e *Exporter) {
		e.httpClient = httpClient
	}
}

// WithLogger sets the exporter's logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Exporter) {
		e.logger = l
	}
}

// NewExporter creates an exporter for a channel. Credentials are the
// WooCommerce REST consumer key and secret, sent as basic auth.
func NewExporter(ch *store.Channel, opts ...Option) *Exporter {
	e := &Exporter{
		baseURL:        strings.TrimRight(ch.BaseURL, "/"),
		consumerKey:    ch.ConsumerKey,
		consumerSecret: ch.ConsumerSecret,
		httpClient:     &http.Client{Timeout: 30 * time.Second},
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export pushes each product in turn. One product failing does not stop
// the rest; the summary carries a per-product error message instead.
func (e *Exporter) Export(ctx context.Context, products []*store.Product) (*ExportSummary, error) {
	summary := &ExportSummary{}
	for _, p := range products {
		if err := e.pushProduct(ctx, p); err != nil {
			if ctx.Err() != nil {
				return summary, ctx.Err()
			}
			summary.Failed++
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", p.SKU, err))
			e.logger.Warn("product export failed", "sku", p.SKU, "error", err)
			continue
		}
		summary.Pushed++
	}
	return summary, nil
}

func (e *Exporter) pushProduct(ctx context.Context, p *store.Product) error {
	body, err := json.Marshal(wcProduct{
		Name:          p.Name,
		SKU:           p.SKU,
		RegularPrice:  p.Price,
		StockQuantity: p.Stock,
		ManageStock:   true,
	})
	if err != nil {
		return fmt.Errorf("encoding product: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+productsPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(e.consumerKey, e.consumerSecret)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg := readErrorMessage(resp.Body)
		if msg == "" {
			msg = resp.Status
		}
		return fmt.Errorf("remote rejected product: %s", msg)
	}
	return nil
}

// readErrorMessage pulls the message out of a WooCommerce error body,
// e.g. {"code":"...","message":"...","data":{...}}.
func readErrorMessage(r io.Reader) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(io.LimitReader(r, 4096)).Decode(&body); err != nil {
		return ""
	}
	return body.Message
}
