package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/homebasehq/homebase/store"
	"github.com/homebasehq/homebase/validate"
)

// NoteHandler handles note CRUD endpoints.
type NoteHandler struct {
	notes store.NoteStore
}

// NewNoteHandler creates a new NoteHandler.
func NewNoteHandler(notes store.NoteStore) *NoteHandler {
	return &NoteHandler{notes: notes}
}

type noteRequest struct {
	Title    string          `json:"title"`
	Content  string          `json:"content"`
	Mentions []store.Mention `json:"mentions"`
}

func (req *noteRequest) validate() []validate.FieldError {
	var errs []validate.FieldError
	errs = validate.Append(errs, validate.Required("title", "Title", req.Title))
	for i, m := range req.Mentions {
		// A mention is a span into the content; reject spans that point
		// outside it so readers never index past the text.
		if m.Position < 0 || m.Length <= 0 || m.Position+m.Length > len(req.Content) {
			errs = append(errs, validate.FieldError{
				Field:    "mentions",
				Message:  fmt.Sprintf("Mention %d is out of bounds", i+1),
				Severity: validate.SeverityBlocking,
			})
		}
	}
	return errs
}

// List handles GET /api/notes. The mentions_contact query parameter
// narrows the list to notes mentioning that contact; the root app uses
// it for its cross-plugin projection.
func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	f := store.NoteFilter{Pagination: store.DefaultPagination()}
	if raw := r.URL.Query().Get("mentions_contact"); raw != "" {
		contactID, err := uuid.Parse(raw)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "invalid mentions_contact id")
			return
		}
		f.MentionsContact = &contactID
	}
	notes, err := h.notes.List(r.Context(), user.ID, f)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	WriteJSON(w, http.StatusOK, notes)
}

// Create handles POST /api/notes.
func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if errs := req.validate(); len(errs) > 0 {
		WriteFieldErrors(w, http.StatusBadRequest, errs)
		return
	}

	now := time.Now()
	note := &store.Note{
		ID:        uuid.New(),
		UserID:    user.ID,
		Title:     strings.TrimSpace(req.Title),
		Content:   req.Content,
		Mentions:  req.Mentions,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.notes.Create(r.Context(), note); err != nil {
		WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	WriteJSON(w, http.StatusCreated, note)
}

// Update handles PUT /api/notes/{id}.
func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid note id")
		return
	}

	note, err := h.notes.Get(r.Context(), user.ID, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "note not found")
			return
		}
		WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if errs := req.validate(); len(errs) > 0 {
		WriteFieldErrors(w, http.StatusBadRequest, errs)
		return
	}

	note.Title = strings.TrimSpace(req.Title)
	note.Content = req.Content
	note.Mentions = req.Mentions
	note.UpdatedAt = time.Now()

	if err := h.notes.Update(r.Context(), note); err != nil {
		WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	WriteJSON(w, http.StatusOK, note)
}

// Delete handles DELETE /api/notes/{id}. Tasks referencing the note go
// with it; the store runs both deletes in one transaction.
func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid note id")
		return
	}
	if err := h.notes.Delete(r.Context(), user.ID, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "note not found")
			return
		}
		WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
