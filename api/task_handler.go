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

// TaskHandler handles task CRUD endpoints.
type TaskHandler struct {
	tasks store.TaskStore
	notes store.NoteStore
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(tasks store.TaskStore, notes store.NoteStore) *TaskHandler {
	return &TaskHandler{tasks: tasks, notes: notes}
}

type taskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	DueDate     *time.Time `json:"due_date"`
	NoteID      *uuid.UUID `json:"note_id"`
}

func (req *taskRequest) validate() []validate.FieldError {
	var errs []validate.FieldError
	errs = validate.Append(errs, validate.Required("title", "Title", req.Title))
	if req.Status != "" && !store.TaskStatus(req.Status).Valid() {
		errs = append(errs, validate.FieldError{
			Field:    "status",
			Message:  "Status must be one of: open, in_progress, done",
			Severity: validate.SeverityBlocking,
		})
	}
	return errs
}

// List handles GET /api/tasks. Supports status and note_id filters.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	f := store.TaskFilter{
		Status:     store.TaskStatus(r.URL.Query().Get("status")),
		Pagination: store.DefaultPagination(),
	}
	if raw := r.URL.Query().Get("note_id"); raw != "" {
		noteID, err := uuid.Parse(raw)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "invalid note_id")
			return
		}
		f.NoteID = &noteID
	}
	tasks, err := h.tasks.List(r.Context(), user.ID, f)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	WriteJSON(w, http.StatusOK, tasks)
}

// Create handles POST /api/tasks.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if errs := req.validate(); len(errs) > 0 {
		WriteFieldErrors(w, http.StatusBadRequest, errs)
		return
	}
	if req.NoteID != nil {
		if _, err := h.notes.Get(r.Context(), user.ID, *req.NoteID); err != nil {
			WriteError(w, http.StatusBadRequest, "linked note not found")
			return
		}
	}

	status := store.TaskStatus(req.Status)
	if status == "" {
		status = store.TaskStatusOpen
	}
	now := time.Now()
	task := &store.Task{
		ID:          uuid.New(),
		UserID:      user.ID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Status:      status,
		DueDate:     req.DueDate,
		NoteID:      req.NoteID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.tasks.Create(r.Context(), task); err != nil {
		WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	WriteJSON(w, http.StatusCreated, task)
}

// Update handles PUT /api/tasks/{id}.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	task, err := h.tasks.Get(r.Context(), user.ID, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "task not found")
			return
		}
		WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if errs := req.validate(); len(errs) > 0 {
		WriteFieldErrors(w, http.StatusBadRequest, errs)
		return
	}
	if req.NoteID != nil {
		if _, err := h.notes.Get(r.Context(), user.ID, *req.NoteID); err != nil {
			WriteError(w, http.StatusBadRequest, "linked note not found")
			return
		}
	}

	task.Title = strings.TrimSpace(req.Title)
	task.Description = req.Description
	if req.Status != "" {
		task.Status = store.TaskStatus(req.Status)
	}
	task.DueDate = req.DueDate
	task.NoteID = req.NoteID
	task.UpdatedAt = time.Now()

	if err := h.tasks.Update(r.Context(), task); err != nil {
		WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	WriteJSON(w, http.StatusOK, task)
}

// Delete handles DELETE /api/tasks/{id}.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid task id")
		return
	}
	if err := h.tasks.Delete(r.Context(), user.ID, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "task not found")
			return
		}
		WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
