package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/homebasehq/homebase/store"
)

func TestContactCreateAndList(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodPost, "/api/contacts", map[string]any{
		"contact_number": "CN-001",
		"name":           "Client A",
		"email":          "clienta@example.com",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", w.Code, w.Body.String())
	}
	var created store.Contact
	decodeData(t, w, &created)
	if created.ID == uuid.Nil || created.ContactNumber != "CN-001" {
		t.Errorf("created = %+v", created)
	}

	w = env.do(t, http.MethodGet, "/api/contacts", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var contacts []store.Contact
	decodeData(t, w, &contacts)
	if len(contacts) != 1 || contacts[0].Name != "Client A" {
		t.Errorf("contacts = %+v", contacts)
	}
}

func TestContactDuplicateNumberConflict(t *testing.T) {
	env := newTestEnv(t, nil)

	body := map[string]any{"contact_number": "CN-001", "name": "Client A"}
	if w := env.do(t, http.MethodPost, "/api/contacts", body); w.Code != http.StatusCreated {
		t.Fatalf("first create status = %d", w.Code)
	}

	w := env.do(t, http.MethodPost, "/api/contacts", map[string]any{
		"contact_number": "CN-001",
		"name":           "Client B",
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409, body %s", w.Code, w.Body.String())
	}
	errs := decodeFieldErrors(t, w)
	if len(errs) != 1 || errs[0]["field"] != "contact_number" {
		t.Errorf("errors = %+v", errs)
	}
	if errs[0]["message"] != "Contact number must be unique" {
		t.Errorf("message = %v", errs[0]["message"])
	}
}

func TestContactValidation(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodPost, "/api/contacts", map[string]any{"email": "x@y.z"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	errs := decodeFieldErrors(t, w)
	fields := map[string]bool{}
	for _, e := range errs {
		fields[e["field"].(string)] = true
	}
	if !fields["contact_number"] || !fields["name"] {
		t.Errorf("errors = %+v", errs)
	}
}

func TestContactOwnershipScoping(t *testing.T) {
	env := newTestEnv(t, nil)

	// Another user's contact is invisible to the logged-in user.
	other := &store.Contact{
		ID:            uuid.New(),
		UserID:        uuid.New(),
		ContactNumber: "CN-900",
		Name:          "Foreign",
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	if err := env.stores.Contacts.Create(context.Background(), other); err != nil {
		t.Fatalf("seed contact: %v", err)
	}

	w := env.do(t, http.MethodPut, "/api/contacts/"+other.ID.String(), map[string]any{
		"contact_number": "CN-900",
		"name":           "Hijacked",
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("update status = %d, want 404", w.Code)
	}

	if w := env.do(t, http.MethodDelete, "/api/contacts/"+other.ID.String(), nil); w.Code != http.StatusNotFound {
		t.Errorf("delete status = %d, want 404", w.Code)
	}

	w = env.do(t, http.MethodGet, "/api/contacts", nil)
	var contacts []store.Contact
	decodeData(t, w, &contacts)
	if len(contacts) != 0 {
		t.Errorf("foreign contact leaked into list: %+v", contacts)
	}
}

func TestPluginEntitlementEnforced(t *testing.T) {
	env := newTestEnv(t, nil)

	env.user.Plugins = []string{store.PluginNotes}
	if err := env.stores.Users.Update(context.Background(), env.user); err != nil {
		t.Fatalf("update user: %v", err)
	}

	if w := env.do(t, http.MethodGet, "/api/contacts", nil); w.Code != http.StatusForbidden {
		t.Errorf("contacts status = %d, want 403", w.Code)
	}
	if w := env.do(t, http.MethodGet, "/api/notes", nil); w.Code != http.StatusOK {
		t.Errorf("notes status = %d, want 200", w.Code)
	}
}
