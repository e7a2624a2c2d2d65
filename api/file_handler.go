package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/homebasehq/homebase/store"
	"github.com/homebasehq/homebase/validate"
)

const (
	maxUploadFileSize = 25 << 20
	maxUploadFiles    = 20
)

// allowedContentTypes is the upload MIME allow-list. Detection is by
// sniffing the first bytes, not by trusting the client's header.
var allowedContentTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"application/pdf": true,
	"text/plain":      true,
	"text/csv":        true,
}

// FileHandler handles file metadata CRUD plus upload and raw download.
type FileHandler struct {
	files store.FileStore
	blobs store.BlobStorage
}

// NewFileHandler creates a new FileHandler.
func NewFileHandler(files store.FileStore, blobs store.BlobStorage) *FileHandler {
	return &FileHandler{files: files, blobs: blobs}
}

// List handles GET /api/files.
func (h *FileHandler) List(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	files, err := h.files.List(r.Context(), user.ID, store.FileFilter{
		Pagination: store.DefaultPagination(),
	})
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	WriteJSON(w, http.StatusOK, files)
}

// Upload handles POST /api/files/upload. Multipart, field name "files".
// Each file is size-checked, sniffed against the MIME allow-list, and
// stored under a fresh random name so uploads can never collide or
// shadow each other.
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	parts := r.MultipartForm.File["files"]
	if len(parts) == 0 {
		WriteError(w, http.StatusBadRequest, "no files provided")
		return
	}
	if len(parts) > maxUploadFiles {
		WriteError(w, http.StatusBadRequest, fmt.Sprintf("at most %d files per request", maxUploadFiles))
		return
	}

	var saved []*store.FileItem
	var errs []validate.FieldError
	for _, part := range parts {
		item, fieldErr := h.saveOne(r, user.ID, part)
		if fieldErr != nil {
			errs = append(errs, *fieldErr)
			continue
		}
		saved = append(saved, item)
	}
	if len(errs) > 0 {
		WriteFieldErrors(w, http.StatusBadRequest, errs)
		return
	}
	WriteJSON(w, http.StatusCreated, saved)
}

func (h *FileHandler) saveOne(r *http.Request, userID uuid.UUID, part *multipart.FileHeader) (*store.FileItem, *validate.FieldError) {
	if part.Size > maxUploadFileSize {
		return nil, &validate.FieldError{
			Field:    part.Filename,
			Message:  "File exceeds the 25MB limit",
			Severity: validate.SeverityBlocking,
		}
	}

	src, err := part.Open()
	if err != nil {
		return nil, &validate.FieldError{
			Field:    part.Filename,
			Message:  "Unable to read file",
			Severity: validate.SeverityBlocking,
		}
	}
	defer src.Close()

	head := make([]byte, 512)
	n, _ := io.ReadFull(src, head)
	contentType := http.DetectContentType(head[:n])
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = contentType[:idx]
	}
	if !allowedContentTypes[contentType] {
		return nil, &validate.FieldError{
			Field:    part.Filename,
			Message:  fmt.Sprintf("File type %s is not allowed", contentType),
			Severity: validate.SeverityBlocking,
		}
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, &validate.FieldError{
			Field:    part.Filename,
			Message:  "Unable to read file",
			Severity: validate.SeverityBlocking,
		}
	}

	storedName := uuid.NewString() + strings.ToLower(filepath.Ext(part.Filename))
	size, err := h.blobs.Put(r.Context(), storedName, src)
	if err != nil {
		return nil, &validate.FieldError{
			Field:    part.Filename,
			Message:  "Unable to store file",
			Severity: validate.SeverityBlocking,
		}
	}

	now := time.Now()
	item := &store.FileItem{
		ID:           uuid.New(),
		UserID:       userID,
		StoredName:   storedName,
		OriginalName: filepath.Base(part.Filename),
		ContentType:  contentType,
		Size:         size,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := h.files.Create(r.Context(), item); err != nil {
		_ = h.blobs.Delete(r.Context(), storedName)
		return nil, &validate.FieldError{
			Field:    part.Filename,
			Message:  "Unable to store file",
			Severity: validate.SeverityBlocking,
		}
	}
	return item, nil
}

// Update handles PUT /api/files/{id}. Only the display name changes;
// the stored blob is immutable.
func (h *FileHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid file id")
		return
	}

	item, err := h.files.Get(r.Context(), user.ID, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "file not found")
			return
		}
		WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	var req struct {
		OriginalName string `json:"original_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if fieldErr := validate.Required("original_name", "File name", req.OriginalName); fieldErr != nil {
		WriteFieldErrors(w, http.StatusBadRequest, []validate.FieldError{*fieldErr})
		return
	}

	item.OriginalName = filepath.Base(strings.TrimSpace(req.OriginalName))
	item.UpdatedAt = time.Now()
	if err := h.files.Update(r.Context(), item); err != nil {
		WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	WriteJSON(w, http.StatusOK, item)
}

// Delete handles DELETE /api/files/{id}. Metadata goes first; a blob
// orphaned by a crash between the two deletes is harmless and sweepable.
func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid file id")
		return
	}

	item, err := h.files.Get(r.Context(), user.ID, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "file not found")
			return
		}
		WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if err := h.files.Delete(r.Context(), user.ID, id); err != nil {
		WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if err := h.blobs.Delete(r.Context(), item.StoredName); err != nil && !errors.Is(err, store.ErrNotFound) {
		WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Raw handles GET /api/files/raw/{filename}. Ownership is checked via
// the metadata row, so one user cannot fetch another's blob by name.
func (h *FileHandler) Raw(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	storedName := r.PathValue("filename")

	item, err := h.files.GetByStoredName(r.Context(), user.ID, storedName)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "file not found")
			return
		}
		WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	blob, err := h.blobs.Get(r.Context(), item.StoredName)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "file not found")
			return
		}
		WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	defer blob.Close()

	w.Header().Set("Content-Type", item.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", item.OriginalName))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	_, _ = io.Copy(w, blob)
}
