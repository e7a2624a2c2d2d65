package api

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/homebasehq/homebase/channel/woocommerce"
	"github.com/homebasehq/homebase/store"
)

func seedChannel(t *testing.T, env *testEnv, enabled bool) *store.Channel {
	t.Helper()
	w := env.do(t, http.MethodPost, "/api/channels", map[string]any{
		"name":            "Main store",
		"kind":            "woocommerce",
		"base_url":        "https://shop.example.com/",
		"consumer_key":    "ck_live",
		"consumer_secret": "cs_live",
		"enabled":         enabled,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create channel = %d, body %s", w.Code, w.Body.String())
	}
	var ch store.Channel
	decodeData(t, w, &ch)
	return &ch
}

func TestChannelCreateHidesCredentials(t *testing.T) {
	env := newTestEnv(t, nil)
	seedChannel(t, env, true)

	w := env.do(t, http.MethodGet, "/api/channels", nil)
	if body := w.Body.String(); strings.Contains(body, "ck_live") || strings.Contains(body, "cs_live") {
		t.Errorf("credentials leaked in response: %s", body)
	}
}

func TestChannelExportMarksProducts(t *testing.T) {
	exporter := &fakeExporter{summary: &woocommerce.ExportSummary{Pushed: 1, Failed: 1, Errors: []string{"SKU-2: remote rejected product"}}}
	env := newTestEnv(t, exporter)
	ch := seedChannel(t, env, true)

	for _, sku := range []string{"SKU-1", "SKU-2"} {
		w := env.do(t, http.MethodPost, "/api/products", map[string]any{
			"sku": sku, "name": "Item " + sku, "price": "10.00", "stock": 1,
		})
		if w.Code != http.StatusCreated {
			t.Fatalf("create product = %d", w.Code)
		}
	}

	w := env.do(t, http.MethodPost, "/api/channels/"+ch.ID.String()+"/export", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("export status = %d, body %s", w.Code, w.Body.String())
	}
	var summary woocommerce.ExportSummary
	decodeData(t, w, &summary)
	if summary.Pushed != 1 || summary.Failed != 1 {
		t.Errorf("summary = %+v", summary)
	}
	if len(exporter.got) != 2 {
		t.Errorf("exporter saw %d products", len(exporter.got))
	}

	products, err := env.stores.Products.List(context.Background(), env.user.ID, store.ProductFilter{})
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	for _, p := range products {
		switch p.SKU {
		case "SKU-1":
			if !p.Exported || p.ExportedAt == nil {
				t.Errorf("SKU-1 not marked exported: %+v", p)
			}
		case "SKU-2":
			if p.Exported {
				t.Errorf("SKU-2 wrongly marked exported: %+v", p)
			}
		}
	}

	updated, err := env.stores.Channels.Get(context.Background(), env.user.ID, ch.ID)
	if err != nil {
		t.Fatalf("get channel: %v", err)
	}
	if updated.LastExportAt == nil || updated.LastExportNote != "pushed 1, failed 1" {
		t.Errorf("channel summary = %+v", updated)
	}
}

func TestChannelExportCountsRuns(t *testing.T) {
	exporter := &fakeExporter{summary: &woocommerce.ExportSummary{Pushed: 1}}
	env := newTestEnv(t, exporter)
	ch := seedChannel(t, env, true)

	w := env.do(t, http.MethodPost, "/api/channels/"+ch.ID.String()+"/export", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("export status = %d, body %s", w.Code, w.Body.String())
	}

	got := testutil.ToFloat64(env.metrics.ChannelExports.WithLabelValues(string(store.ChannelKindWooCommerce), "ok"))
	if got != 1 {
		t.Errorf("channel_exports_total{woocommerce,ok} = %v, want 1", got)
	}
}

func TestChannelExportRejectsDisabled(t *testing.T) {
	exporter := &fakeExporter{summary: &woocommerce.ExportSummary{}}
	env := newTestEnv(t, exporter)
	ch := seedChannel(t, env, false)

	w := env.do(t, http.MethodPost, "/api/channels/"+ch.ID.String()+"/export", nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", w.Code)
	}
	if exporter.got != nil {
		t.Error("exporter must not run for a disabled channel")
	}
}

func TestChannelUpdateKeepsCredentialsWhenOmitted(t *testing.T) {
	env := newTestEnv(t, nil)
	ch := seedChannel(t, env, true)

	w := env.do(t, http.MethodPut, "/api/channels/"+ch.ID.String(), map[string]any{
		"name":     "Renamed store",
		"base_url": "https://shop.example.com",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", w.Code, w.Body.String())
	}

	stored, err := env.stores.Channels.Get(context.Background(), env.user.ID, ch.ID)
	if err != nil {
		t.Fatalf("get channel: %v", err)
	}
	if stored.ConsumerKey != "ck_live" || stored.ConsumerSecret != "cs_live" {
		t.Errorf("credentials lost on update: %+v", stored)
	}
	if stored.Name != "Renamed store" {
		t.Errorf("name = %q", stored.Name)
	}
}
