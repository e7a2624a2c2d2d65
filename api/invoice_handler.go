package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/homebasehq/homebase/importer"
	"github.com/homebasehq/homebase/store"
	"github.com/homebasehq/homebase/validate"
)

// maxImportBody caps the import preview request body.
const maxImportBody = 1 << 20

// InvoiceHandler handles invoice CRUD and bulk import endpoints.
type InvoiceHandler struct {
	invoices store.InvoiceStore
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(invoices store.InvoiceStore) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices}
}

// invoiceRequest accepts invoice_date as a string so manual entry takes
// the same formats as the importer.
type invoiceRequest struct {
	ReferenceNumber    string `json:"reference_number"`
	CustomerName       string `json:"customer_name"`
	InvoiceDate        string `json:"invoice_date"`
	AmountDue          string `json:"amount_due"`
	ServiceDescription string `json:"service_description"`
	PaymentTerms       string `json:"payment_terms"`
	Category           string `json:"category"`
	Status             string `json:"status"`
}

func (req *invoiceRequest) validate() ([]validate.FieldError, time.Time) {
	var errs []validate.FieldError
	errs = validate.Append(errs, validate.Required("reference_number", "Reference number", req.ReferenceNumber))
	errs = validate.Append(errs, validate.Required("customer_name", "Customer name", req.CustomerName))
	errs = validate.Append(errs, validate.DecimalAmount("amount_due", "Amount due", req.AmountDue))

	date, err := importer.ParseDate(req.InvoiceDate)
	if err != nil {
		errs = append(errs, validate.FieldError{
			Field:    "invoice_date",
			Message:  "Invoice date must be a valid date",
			Severity: validate.SeverityBlocking,
		})
	}
	return errs, date
}

// List handles GET /api/invoices. Supports a category filter.
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	invoices, err := h.invoices.List(r.Context(), user.ID, store.InvoiceFilter{
		Category:   r.URL.Query().Get("category"),
		Pagination: store.DefaultPagination(),
	})
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	WriteJSON(w, http.StatusOK, invoices)
}

// Create handles POST /api/invoices.
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var req invoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	errs, date := req.validate()
	if len(errs) > 0 {
		WriteFieldErrors(w, http.StatusBadRequest, errs)
		return
	}

	now := time.Now()
	invoice := &store.Invoice{
		ID:                 uuid.New(),
		UserID:             user.ID,
		ReferenceNumber:    strings.TrimSpace(req.ReferenceNumber),
		CustomerName:       strings.TrimSpace(req.CustomerName),
		InvoiceDate:        date,
		AmountDue:          strings.TrimSpace(req.AmountDue),
		ServiceDescription: req.ServiceDescription,
		PaymentTerms:       req.PaymentTerms,
		Category:           req.Category,
		Status:             req.Status,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := h.invoices.Create(r.Context(), invoice); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			WriteConflict(w, "reference_number", "Reference number must be unique")
			return
		}
		WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	WriteJSON(w, http.StatusCreated, invoice)
}

// Update handles PUT /api/invoices/{id}.
func (h *InvoiceHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid invoice id")
		return
	}

	invoice, err := h.invoices.Get(r.Context(), user.ID, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "invoice not found")
			return
		}
		WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	var req invoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	errs, date := req.validate()
	if len(errs) > 0 {
		WriteFieldErrors(w, http.StatusBadRequest, errs)
		return
	}

	invoice.ReferenceNumber = strings.TrimSpace(req.ReferenceNumber)
	invoice.CustomerName = strings.TrimSpace(req.CustomerName)
	invoice.InvoiceDate = date
	invoice.AmountDue = strings.TrimSpace(req.AmountDue)
	invoice.ServiceDescription = req.ServiceDescription
	invoice.PaymentTerms = req.PaymentTerms
	invoice.Category = req.Category
	invoice.Status = req.Status
	invoice.UpdatedAt = time.Now()

	if err := h.invoices.Update(r.Context(), invoice); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			WriteConflict(w, "reference_number", "Reference number must be unique")
			return
		}
		WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	WriteJSON(w, http.StatusOK, invoice)
}

// Delete handles DELETE /api/invoices/{id}.
func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid invoice id")
		return
	}
	if err := h.invoices.Delete(r.Context(), user.ID, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "invoice not found")
			return
		}
		WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ImportPreview handles POST /api/invoices/import/preview. The body is
// free text, one record per line; nothing is persisted. The caller posts
// the valid records individually afterwards.
func (h *InvoiceHandler) ImportPreview(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxImportBody+1))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "unable to read request body")
		return
	}
	// Truncating would silently mangle the last record, so oversized
	// pastes are rejected outright.
	if len(body) > maxImportBody {
		WriteError(w, http.StatusRequestEntityTooLarge, "import text exceeds the size limit")
		return
	}
	reports := importer.ParseLines(string(body))
	WriteJSON(w, http.StatusOK, reports)
}
