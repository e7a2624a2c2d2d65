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

// EstimateHandler handles estimate CRUD endpoints.
type EstimateHandler struct {
	estimates store.EstimateStore
}

// NewEstimateHandler creates a new EstimateHandler.
func NewEstimateHandler(estimates store.EstimateStore) *EstimateHandler {
	return &EstimateHandler{estimates: estimates}
}

type estimateRequest struct {
	EstimateNumber string    `json:"estimate_number"`
	CustomerName   string    `json:"customer_name"`
	EstimateDate   time.Time `json:"estimate_date"`
	Amount         string    `json:"amount"`
	Status         string    `json:"status"`
}

func (req *estimateRequest) validate() []validate.FieldError {
	var errs []validate.FieldError
	errs = validate.Append(errs, validate.Required("estimate_number", "Estimate number", req.EstimateNumber))
	errs = validate.Append(errs, validate.Required("customer_name", "Customer name", req.CustomerName))
	errs = validate.Append(errs, validate.DecimalAmount("amount", "Amount", req.Amount))
	if req.EstimateDate.IsZero() {
		errs = append(errs, validate.FieldError{
			Field:    "estimate_date",
			Message:  "Estimate date is required",
			Severity: validate.SeverityBlocking,
		})
	}
	return errs
}

// List handles GET /api/estimates.
func (h *EstimateHandler) List(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	estimates, err := h.estimates.List(r.Context(), user.ID, store.EstimateFilter{
		Pagination: store.DefaultPagination(),
	})
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	WriteJSON(w, http.StatusOK, estimates)
}

// Create handles POST /api/estimates.
func (h *EstimateHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var req estimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if errs := req.validate(); len(errs) > 0 {
		WriteFieldErrors(w, http.StatusBadRequest, errs)
		return
	}

	now := time.Now()
	estimate := &store.Estimate{
		ID:             uuid.New(),
		UserID:         user.ID,
		EstimateNumber: strings.TrimSpace(req.EstimateNumber),
		CustomerName:   strings.TrimSpace(req.CustomerName),
		EstimateDate:   req.EstimateDate,
		Amount:         strings.TrimSpace(req.Amount),
		Status:         req.Status,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := h.estimates.Create(r.Context(), estimate); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			WriteConflict(w, "estimate_number", "Estimate number must be unique")
			return
		}
		WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	WriteJSON(w, http.StatusCreated, estimate)
}

// Update handles PUT /api/estimates/{id}.
func (h *EstimateHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid estimate id")
		return
	}

	estimate, err := h.estimates.Get(r.Context(), user.ID, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "estimate not found")
			return
		}
		WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	var req estimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if errs := req.validate(); len(errs) > 0 {
		WriteFieldErrors(w, http.StatusBadRequest, errs)
		return
	}

	estimate.EstimateNumber = strings.TrimSpace(req.EstimateNumber)
	estimate.CustomerName = strings.TrimSpace(req.CustomerName)
	estimate.EstimateDate = req.EstimateDate
	estimate.Amount = strings.TrimSpace(req.Amount)
	estimate.Status = req.Status
	estimate.UpdatedAt = time.Now()

	if err := h.estimates.Update(r.Context(), estimate); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			WriteConflict(w, "estimate_number", "Estimate number must be unique")
			return
		}
		WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	WriteJSON(w, http.StatusOK, estimate)
}

// Delete handles DELETE /api/estimates/{id}.
func (h *EstimateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid estimate id")
		return
	}
	if err := h.estimates.Delete(r.Context(), user.ID, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "estimate not found")
			return
		}
		WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
