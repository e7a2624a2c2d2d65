package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/homebasehq/homebase/store"
)

func TestInvoiceCreateParsesDates(t *testing.T) {
	env := newTestEnv(t, nil)

	for _, date := range []string{"2024-07-01", "07/01/2024"} {
		w := env.do(t, http.MethodPost, "/api/invoices", map[string]any{
			"reference_number": "REF-" + date,
			"customer_name":    "Client A",
			"invoice_date":     date,
			"amount_due":       "1500.00",
		})
		if w.Code != http.StatusCreated {
			t.Fatalf("date %q: status = %d, body %s", date, w.Code, w.Body.String())
		}
		var inv store.Invoice
		decodeData(t, w, &inv)
		if inv.InvoiceDate.Year() != 2024 || inv.InvoiceDate.Month() != 7 {
			t.Errorf("date %q parsed to %v", date, inv.InvoiceDate)
		}
	}
}

func TestInvoiceValidation(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodPost, "/api/invoices", map[string]any{
		"reference_number": "REF-1",
		"customer_name":    "Client A",
		"invoice_date":     "someday",
		"amount_due":       "$1,500",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	fields := map[string]bool{}
	for _, e := range decodeFieldErrors(t, w) {
		fields[e["field"].(string)] = true
	}
	if !fields["invoice_date"] || !fields["amount_due"] {
		t.Errorf("fields = %v", fields)
	}
}

func TestInvoiceDuplicateReferenceConflict(t *testing.T) {
	env := newTestEnv(t, nil)

	body := map[string]any{
		"reference_number": "REF-1",
		"customer_name":    "Client A",
		"invoice_date":     "2024-07-01",
		"amount_due":       "100.00",
	}
	if w := env.do(t, http.MethodPost, "/api/invoices", body); w.Code != http.StatusCreated {
		t.Fatalf("first create = %d", w.Code)
	}
	w := env.do(t, http.MethodPost, "/api/invoices", body)
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", w.Code)
	}
	errs := decodeFieldErrors(t, w)
	if len(errs) != 1 || errs[0]["field"] != "reference_number" {
		t.Errorf("errors = %+v", errs)
	}
}

func TestInvoiceImportPreview(t *testing.T) {
	env := newTestEnv(t, nil)

	text := strings.Join([]string{
		"Client A, 2024-07-01, 1500.00, Web Design, Net 30, REF123, Marketing",
		"",
		"Client B, 2024-13-45, abc",
		"Client C",
	}, "\n")

	req := httptest.NewRequest(http.MethodPost, "/api/invoices/import/preview", strings.NewReader(text))
	req.Header.Set("Content-Type", "text/plain")
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: env.session.Token})
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var reports []struct {
		Line    int      `json:"line"`
		IsValid bool     `json:"is_valid"`
		Errors  []string `json:"errors"`
	}
	decodeData(t, w, &reports)
	if len(reports) != 3 {
		t.Fatalf("got %d reports, want 3 (blank line skipped)", len(reports))
	}
	if !reports[0].IsValid {
		t.Errorf("line 1 should be valid: %+v", reports[0])
	}
	if reports[1].IsValid || len(reports[1].Errors) != 2 {
		t.Errorf("line 3 should fail date and amount: %+v", reports[1])
	}
	if reports[2].IsValid {
		t.Errorf("line 4 should be invalid: %+v", reports[2])
	}
	found := false
	for _, msg := range reports[2].Errors {
		if msg == "Minimum 3 fields required: Customer Name, Invoice Date, Amount Due" {
			found = true
		}
	}
	if !found {
		t.Errorf("minimum-fields message missing: %+v", reports[2].Errors)
	}
}

func TestInvoiceImportPreviewRejectsOversizedBody(t *testing.T) {
	env := newTestEnv(t, nil)

	line := "Client A, 2024-07-01, 1500.00\n"
	text := strings.Repeat(line, 1<<20/len(line)+1)

	req := httptest.NewRequest(http.MethodPost, "/api/invoices/import/preview", strings.NewReader(text))
	req.Header.Set("Content-Type", "text/plain")
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: env.session.Token})
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413", w.Code)
	}
}
