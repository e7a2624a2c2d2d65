package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/homebasehq/homebase/store"
	"github.com/homebasehq/homebase/validate"
)

// ContactHandler handles contact CRUD endpoints.
type ContactHandler struct {
	contacts store.ContactStore
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(contacts store.ContactStore) *ContactHandler {
	return &ContactHandler{contacts: contacts}
}

type contactRequest struct {
	ContactNumber string `json:"contact_number"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Company       string `json:"company"`
	Notes         string `json:"notes"`
}

func (req *contactRequest) validate() []validate.FieldError {
	var errs []validate.FieldError
	errs = validate.Append(errs, validate.Required("contact_number", "Contact number", req.ContactNumber))
	errs = validate.Append(errs, validate.Required("name", "Name", req.Name))
	return errs
}

// List handles GET /api/contacts.
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	f := store.ContactFilter{
		Search:     strings.TrimSpace(r.URL.Query().Get("q")),
		Pagination: store.DefaultPagination(),
	}
	contacts, err := h.contacts.List(r.Context(), user.ID, f)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	WriteJSON(w, http.StatusOK, contacts)
}

// Create handles POST /api/contacts.
func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var req contactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if errs := req.validate(); len(errs) > 0 {
		WriteFieldErrors(w, http.StatusBadRequest, errs)
		return
	}

	now := time.Now()
	contact := &store.Contact{
		ID:            uuid.New(),
		UserID:        user.ID,
		ContactNumber: strings.TrimSpace(req.ContactNumber),
		Name:          strings.TrimSpace(req.Name),
		Email:         strings.TrimSpace(req.Email),
		Phone:         strings.TrimSpace(req.Phone),
		Company:       strings.TrimSpace(req.Company),
		Notes:         req.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := h.contacts.Create(r.Context(), contact); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			WriteConflict(w, "contact_number", "Contact number must be unique")
			return
		}
		WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	WriteJSON(w, http.StatusCreated, contact)
}

// Update handles PUT /api/contacts/{id}.
func (h *ContactHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid contact id")
		return
	}

	contact, err := h.contacts.Get(r.Context(), user.ID, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "contact not found")
			return
		}
		WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	var req contactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if errs := req.validate(); len(errs) > 0 {
		WriteFieldErrors(w, http.StatusBadRequest, errs)
		return
	}

	contact.ContactNumber = strings.TrimSpace(req.ContactNumber)
	contact.Name = strings.TrimSpace(req.Name)
	contact.Email = strings.TrimSpace(req.Email)
	contact.Phone = strings.TrimSpace(req.Phone)
	contact.Company = strings.TrimSpace(req.Company)
	contact.Notes = req.Notes
	contact.UpdatedAt = time.Now()

	if err := h.contacts.Update(r.Context(), contact); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			WriteConflict(w, "contact_number", "Contact number must be unique")
			return
		}
		WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	WriteJSON(w, http.StatusOK, contact)
}

// Delete handles DELETE /api/contacts/{id}.
func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid contact id")
		return
	}
	if err := h.contacts.Delete(r.Context(), user.ID, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "contact not found")
			return
		}
		WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
