package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/EcommerceGo/storefront/internal/catalog"
	"github.com/utafrali/EcommerceGo/storefront/internal/domain"
	apperrors "github.com/utafrali/EcommerceGo/storefront/pkg/errors"
	"github.com/utafrali/EcommerceGo/storefront/pkg/httputil"
	"github.com/utafrali/EcommerceGo/storefront/pkg/pagination"
)

const (
	featuredProducts = 8
	// maxFormBytes leaves room for an oversized image so that it is
	// reported as a validation error rather than a truncated body.
	maxFormBytes   = 4*domain.MaxImageSize + 1<<20
	maxFormMemory  = 8 << 20
	confirmParam   = "confirm"
	productIDParam = "id"
)

// Home handles GET /.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	if _, err := h.products.List(r.Context()); err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, map[string]any{
		"featured": h.products.Featured(featuredProducts),
	})
}

// Catalog handles GET /products, one page of the public product list.
func (h *Handler) Catalog(w http.ResponseWriter, r *http.Request) {
	items, err := h.products.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, pagination.Slice(items, pagination.FromRequest(r)))
}

// ListProducts handles GET /admin/products.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	items, err := h.products.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	body := map[string]any{"products": items}
	if c, ok := h.products.PendingDelete(); ok {
		body["pending_delete"] = c
	}
	httputil.WriteData(w, http.StatusOK, body)
}

// CreateProduct handles POST /admin/products.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	draft, image, err := parseProductForm(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.products.Create(r.Context(), draft, image); err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteData(w, http.StatusCreated, map[string]any{"products": h.products.Items()})
}

// UpdateProduct handles PUT /admin/products/{id}.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, productIDParam)
	draft, image, err := parseProductForm(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.products.Update(r.Context(), id, draft, image); err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, map[string]any{"products": h.products.Items()})
}

// RequestDelete handles POST /admin/products/{id}/delete. The returned
// token must be sent back to confirm.
func (h *Handler) RequestDelete(w http.ResponseWriter, r *http.Request) {
	c, err := h.products.RequestDelete(chi.URLParam(r, productIDParam))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, c)
}

// ConfirmDelete handles DELETE /admin/products/{id}/delete?confirm=token.
func (h *Handler) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	c := catalog.Confirmation{
		ID:    chi.URLParam(r, productIDParam),
		Token: r.URL.Query().Get(confirmParam),
	}
	if c.Token == "" {
		h.fail(w, r, apperrors.Validation("deletion was not confirmed"))
		return
	}
	if err := h.products.ConfirmDelete(r.Context(), c); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CancelDelete handles POST /admin/products/{id}/delete/cancel.
func (h *Handler) CancelDelete(w http.ResponseWriter, _ *http.Request) {
	h.products.CancelDelete()
	w.WriteHeader(http.StatusNoContent)
}

// RemoveImage handles DELETE /admin/products/{id}/image.
func (h *Handler) RemoveImage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, productIDParam)
	product, ok := h.products.Find(id)
	if !ok {
		var err error
		if product, err = h.products.Get(r.Context(), id); err != nil {
			h.fail(w, r, err)
			return
		}
	}

	edit := domain.NewPendingEdit(product)
	if err := h.products.RemoveImage(r.Context(), edit); err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, map[string]any{
		"product": edit.Original,
		"preview": edit.Preview,
	})
}

// parseProductForm reads a multipart product form. Sizes and colors may
// be comma separated or JSON arrays.
func parseProductForm(w http.ResponseWriter, r *http.Request) (domain.ProductDraft, *domain.Attachment, error) {
	var draft domain.ProductDraft

	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		return draft, nil, apperrors.Validation(fmt.Sprintf("invalid product form: %v", err))
	}

	draft.Name = strings.TrimSpace(r.FormValue("name"))
	draft.Description = strings.TrimSpace(r.FormValue("description"))
	if raw := strings.TrimSpace(r.FormValue("price")); raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return draft, nil, apperrors.ValidationFields("invalid product", map[string]string{
				"price": "Product price must be a number",
			})
		}
		draft.Price = &price
	}

	var err error
	if draft.Sizes, err = parseList(r.FormValue("sizes")); err != nil {
		return draft, nil, apperrors.ValidationFields("invalid product", map[string]string{"sizes": err.Error()})
	}
	if draft.Colors, err = parseList(r.FormValue("colors")); err != nil {
		return draft, nil, apperrors.ValidationFields("invalid product", map[string]string{"colors": err.Error()})
	}

	image, err := readImage(r)
	if err != nil {
		return draft, nil, err
	}
	return draft, image, nil
}

func parseList(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "[") {
		return domain.ParseList(raw), nil
	}
	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, errors.New("must be a list of values")
	}
	return domain.ParseList(strings.Join(items, ",")), nil
}

func readImage(r *http.Request) (*domain.Attachment, error) {
	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Validation(fmt.Sprintf("invalid image upload: %v", err))
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, apperrors.Validation(fmt.Sprintf("invalid image upload: %v", err))
	}
	return domain.NewAttachment(header.Filename, header.Header.Get("Content-Type"), data), nil
}
