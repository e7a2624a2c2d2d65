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

// ProductHandler handles product CRUD endpoints.
type ProductHandler struct {
	products store.ProductStore
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(products store.ProductStore) *ProductHandler {
	return &ProductHandler{products: products}
}

type productRequest struct {
	SKU   string `json:"sku"`
	Name  string `json:"name"`
	Price string `json:"price"`
	Stock int    `json:"stock"`
}

func (req *productRequest) validate() []validate.FieldError {
	var errs []validate.FieldError
	errs = validate.Append(errs, validate.Required("sku", "SKU", req.SKU))
	errs = validate.Append(errs, validate.Required("name", "Name", req.Name))
	errs = validate.Append(errs, validate.DecimalAmount("price", "Price", req.Price))
	if req.Stock < 0 {
		errs = append(errs, validate.FieldError{
			Field:    "stock",
			Message:  "Stock cannot be negative",
			Severity: validate.SeverityBlocking,
		})
	}
	return errs
}

// List handles GET /api/products. Supports an exported filter.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	f := store.ProductFilter{Pagination: store.DefaultPagination()}
	if raw := r.URL.Query().Get("exported"); raw != "" {
		exported := raw == "true"
		f.Exported = &exported
	}
	products, err := h.products.List(r.Context(), user.ID, f)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	WriteJSON(w, http.StatusOK, products)
}

// Create handles POST /api/products.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if errs := req.validate(); len(errs) > 0 {
		WriteFieldErrors(w, http.StatusBadRequest, errs)
		return
	}

	now := time.Now()
	product := &store.Product{
		ID:        uuid.New(),
		UserID:    user.ID,
		SKU:       strings.TrimSpace(req.SKU),
		Name:      strings.TrimSpace(req.Name),
		Price:     strings.TrimSpace(req.Price),
		Stock:     req.Stock,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.products.Create(r.Context(), product); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			WriteConflict(w, "sku", "SKU must be unique")
			return
		}
		WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	WriteJSON(w, http.StatusCreated, product)
}

// Update handles PUT /api/products/{id}. Editing a product clears its
// exported flag; the channel copy is stale until the next export.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	product, err := h.products.Get(r.Context(), user.ID, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "product not found")
			return
		}
		WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if errs := req.validate(); len(errs) > 0 {
		WriteFieldErrors(w, http.StatusBadRequest, errs)
		return
	}

	product.SKU = strings.TrimSpace(req.SKU)
	product.Name = strings.TrimSpace(req.Name)
	product.Price = strings.TrimSpace(req.Price)
	product.Stock = req.Stock
	product.Exported = false
	product.ExportedAt = nil
	product.UpdatedAt = time.Now()

	if err := h.products.Update(r.Context(), product); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			WriteConflict(w, "sku", "SKU must be unique")
			return
		}
		WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	WriteJSON(w, http.StatusOK, product)
}

// Delete handles DELETE /api/products/{id}.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	if err := h.products.Delete(r.Context(), user.ID, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "product not found")
			return
		}
		WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
