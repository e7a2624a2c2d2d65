package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// mockAPI simulates the Homebase API with cookie sessions.
func mockAPI(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error":"invalid credentials"}`)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "homebase_session", Value: "tok-1", Path: "/"})
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"user": map[string]any{
					"id":      "u1",
					"email":   body["email"],
					"role":    "admin",
					"plugins": []string{"contacts", "notes"},
				},
			},
		})
	})

	requireSession := func(r *http.Request) bool {
		c, err := r.Cookie("homebase_session")
		return err == nil && c.Value == "tok-1"
	}

	mux.HandleFunc("GET /api/contacts", func(w http.ResponseWriter, r *http.Request) {
		if !requireSession(r) {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error":"authentication required"}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"id": "c1", "contact_number": "CN-001", "name": "Client A"},
			},
		})
	})

	mux.HandleFunc("POST /api/contacts", func(w http.ResponseWriter, r *http.Request) {
		var in Contact
		json.NewDecoder(r.Body).Decode(&in)
		if in.Email == "dup@example.com" {
			w.WriteHeader(http.StatusConflict)
			fmt.Fprint(w, `{"errors":[{"field":"contact_number","message":"Contact number must be unique"}]}`)
			return
		}
		in.ID = "c2"
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"data": in})
	})

	mux.HandleFunc("PUT /api/contacts/{id}", func(w http.ResponseWriter, r *http.Request) {
		var in Contact
		json.NewDecoder(r.Body).Decode(&in)
		in.ID = r.PathValue("id")
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"data": in})
	})

	mux.HandleFunc("DELETE /api/contacts/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("POST /api/channels/{id}/export", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"pushed": 3, "failed": 1, "errors": []string{"SKU-9: 502 from remote"}},
		})
	})

	mux.HandleFunc("POST /api/invoices/import/preview", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"line": 1, "raw": "Client A, 2024-07-01, 1500.00", "is_valid": true},
				{"line": 2, "raw": "Client B", "is_valid": false, "errors": []string{"Minimum 3 fields required: Customer Name, Invoice Date, Amount Due"}},
			},
		})
	})

	return httptest.NewServer(mux)
}

func TestLoginStoresSessionCookie(t *testing.T) {
	srv := mockAPI(t)
	defer srv.Close()

	c := New(srv.URL)
	user, err := c.Login(context.Background(), "admin@example.com", "secret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.Email != "admin@example.com" || user.Role != "admin" {
		t.Errorf("unexpected user: %+v", user)
	}
	if !user.Entitled("notes") || user.Entitled("invoices") {
		t.Errorf("unexpected entitlements: %v", user.Plugins)
	}

	// The session cookie must ride along on the next request.
	contacts, err := c.Contacts().List(context.Background())
	if err != nil {
		t.Fatalf("List after login: %v", err)
	}
	if len(contacts) != 1 || contacts[0].Name != "Client A" {
		t.Errorf("unexpected contacts: %+v", contacts)
	}
}

func TestUnauthenticatedRequestFails(t *testing.T) {
	srv := mockAPI(t)
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.Contacts().List(context.Background())
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", apiErr.StatusCode)
	}
	if apiErr.Message != "authentication required" {
		t.Errorf("message = %q", apiErr.Message)
	}
}

func TestConflictMapsToFieldErrors(t *testing.T) {
	srv := mockAPI(t)
	defer srv.Close()

	c := New(srv.URL)
	if _, err := c.Login(context.Background(), "a@b.c", "secret"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	_, err := c.Contacts().Create(context.Background(), Contact{Name: "Dup", Email: "dup@example.com"})
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusConflict {
		t.Errorf("status = %d, want 409", apiErr.StatusCode)
	}
	errs := apiErr.FieldErrors()
	if len(errs) != 1 || errs[0].Field != "contact_number" {
		t.Errorf("field errors = %+v", errs)
	}
}

func TestCRUDRoundtrip(t *testing.T) {
	srv := mockAPI(t)
	defer srv.Close()

	c := New(srv.URL)
	if _, err := c.Login(context.Background(), "a@b.c", "secret"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	created, err := c.Contacts().Create(context.Background(), Contact{Name: "New"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID != "c2" {
		t.Errorf("created ID = %q", created.ID)
	}

	created.Name = "Renamed"
	updated, err := c.Contacts().Update(context.Background(), created)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != "Renamed" || updated.ID != "c2" {
		t.Errorf("updated = %+v", updated)
	}

	if err := c.Contacts().Delete(context.Background(), "c2"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
}

func TestExportChannel(t *testing.T) {
	srv := mockAPI(t)
	defer srv.Close()

	c := New(srv.URL)
	summary, err := c.ExportChannel(context.Background(), "ch1")
	if err != nil {
		t.Fatalf("ExportChannel: %v", err)
	}
	if summary.Pushed != 3 || summary.Failed != 1 || len(summary.Errors) != 1 {
		t.Errorf("summary = %+v", summary)
	}
}

func TestPreviewInvoiceImport(t *testing.T) {
	srv := mockAPI(t)
	defer srv.Close()

	c := New(srv.URL)
	reports, err := c.PreviewInvoiceImport(context.Background(), "Client A, 2024-07-01, 1500.00\nClient B")
	if err != nil {
		t.Fatalf("PreviewInvoiceImport: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("got %d reports", len(reports))
	}
	if !reports[0].IsValid || reports[1].IsValid {
		t.Errorf("validity flipped: %+v", reports)
	}
	if !strings.Contains(reports[1].Errors[0], "Minimum 3 fields required") {
		t.Errorf("error = %q", reports[1].Errors[0])
	}
}

func TestNormalizeDate(t *testing.T) {
	for _, in := range []string{"2024-07-01", "07/01/2024", "2024/07/01"} {
		got, err := NormalizeDate(in)
		if err != nil {
			t.Fatalf("NormalizeDate(%q): %v", in, err)
		}
		want := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
		if !got.Equal(want) {
			t.Errorf("NormalizeDate(%q) = %v", in, got)
		}
	}
	if _, err := NormalizeDate("July 1st"); err == nil {
		t.Error("expected error for unparseable date")
	}
}
