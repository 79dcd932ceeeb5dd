// Package catalog keeps the locally held product and user collections in
// step with the backend.
package catalog

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/utafrali/EcommerceGo/storefront/internal/domain"
	"github.com/utafrali/EcommerceGo/storefront/internal/envelope"
	"github.com/utafrali/EcommerceGo/storefront/internal/gateway"
	apperrors "github.com/utafrali/EcommerceGo/storefront/pkg/errors"
	"github.com/utafrali/EcommerceGo/storefront/pkg/logger"
)

// ProductGateway is the subset of the gateway used for products.
type ProductGateway interface {
	ListProducts(ctx context.Context) (json.RawMessage, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	CreateProduct(ctx context.Context, form *gateway.ProductForm) (json.RawMessage, error)
	UpdateProduct(ctx context.Context, id string, form *gateway.ProductForm) (json.RawMessage, error)
	DeleteProduct(ctx context.Context, id string) error
	DeleteProductImage(ctx context.Context, id, imageURL string) error
}

// Confirmation is issued by RequestDelete and must be presented to
// ConfirmDelete. A deletion never happens without one.
type Confirmation struct {
	ID    string `json:"id"`
	Token string `json:"token"`
}

// Products is the locally held product collection.
type Products struct {
	gw           ProductGateway
	sess         SessionView
	logger       *slog.Logger
	uploadPreset string

	mu      sync.RWMutex
	items   []domain.Product
	pending *Confirmation
}

// ProductsOption configures a Products collection.
type ProductsOption func(*Products)

// WithUploadPreset sends preset with every product image upload.
func WithUploadPreset(preset string) ProductsOption {
	return func(p *Products) {
		p.uploadPreset = preset
	}
}

// NewProducts creates an empty product collection.
func NewProducts(gw ProductGateway, sess SessionView, logger *slog.Logger, opts ...ProductsOption) *Products {
	p := &Products{
		gw:     gw,
		sess:   sess,
		logger: logger,
		items:  []domain.Product{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// List fetches the catalog and replaces the local collection with it.
func (p *Products) List(ctx context.Context) ([]domain.Product, error) {
	raw, err := p.gw.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	items, err := envelope.Collection[domain.Product](raw, "products")
	if err != nil {
		return nil, apperrors.Server(http.StatusBadGateway, "backend returned an unreadable product list", err)
	}

	p.mu.Lock()
	p.items = items
	p.mu.Unlock()
	return cloneProducts(items), nil
}

// Items returns a copy of the local collection.
func (p *Products) Items() []domain.Product {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return cloneProducts(p.items)
}

// Featured returns up to n products from the head of the local collection.
func (p *Products) Featured(n int) []domain.Product {
	items := p.Items()
	if n >= 0 && len(items) > n {
		items = items[:n]
	}
	return items
}

// Find returns the locally held product with the given id.
func (p *Products) Find(id string) (*domain.Product, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for i := range p.items {
		if p.items[i].ID == id {
			out := p.items[i]
			return &out, true
		}
	}
	return nil, false
}

// Get fetches a single product from the backend.
func (p *Products) Get(ctx context.Context, id string) (*domain.Product, error) {
	return p.gw.GetProduct(ctx, id)
}

// Create validates and submits a new product, then re-fetches the
// collection. Nothing is sent when validation fails.
func (p *Products) Create(ctx context.Context, draft domain.ProductDraft, image *domain.Attachment) error {
	if err := ValidateDraft(draft, image, true); err != nil {
		return err
	}
	form, err := gateway.NewProductForm(draft, image, gateway.WithUploadPreset(p.uploadPreset))
	if err != nil {
		return apperrors.Server(0, "could not encode product", err)
	}

	_, err = privileged(ctx, p.sess, p.logger, "create_product", func(ctx context.Context) (json.RawMessage, error) {
		return p.gw.CreateProduct(ctx, form)
	})
	if err != nil {
		return err
	}

	logger.WithContext(ctx, p.logger).InfoContext(ctx, "product created", slog.String("name", draft.Name))
	return p.refresh(ctx)
}

// Update validates and submits changes to product id, then re-fetches the
// collection. image is optional.
func (p *Products) Update(ctx context.Context, id string, draft domain.ProductDraft, image *domain.Attachment) error {
	if err := ValidateDraft(draft, image, false); err != nil {
		return err
	}
	form, err := gateway.NewProductForm(draft, image, gateway.WithUploadPreset(p.uploadPreset))
	if err != nil {
		return apperrors.Server(0, "could not encode product", err)
	}

	_, err = privileged(ctx, p.sess, p.logger, "update_product", func(ctx context.Context) (json.RawMessage, error) {
		return p.gw.UpdateProduct(ctx, id, form)
	})
	if err != nil {
		return err
	}

	logger.WithContext(ctx, p.logger).InfoContext(ctx, "product updated", slog.String("product_id", id))
	return p.refresh(ctx)
}

// Save submits a pending edit as a create or an update.
func (p *Products) Save(ctx context.Context, edit *domain.PendingEdit) error {
	if edit.IsCreate() {
		return p.Create(ctx, edit.Draft, edit.Attachment)
	}
	return p.Update(ctx, edit.Original.ID, edit.Draft, edit.Attachment)
}

// RequestDelete asks for confirmation before deleting product id. Only
// one deletion can be awaiting confirmation at a time.
func (p *Products) RequestDelete(id string) (Confirmation, error) {
	if _, ok := p.Find(id); !ok {
		return Confirmation{}, apperrors.NotFound("product", id)
	}
	c := Confirmation{ID: id, Token: uuid.New().String()}

	p.mu.Lock()
	p.pending = &c
	p.mu.Unlock()
	return c, nil
}

// CancelDelete drops the deletion awaiting confirmation, if any.
func (p *Products) CancelDelete() {
	p.mu.Lock()
	p.pending = nil
	p.mu.Unlock()
}

// PendingDelete returns the deletion awaiting confirmation.
func (p *Products) PendingDelete() (Confirmation, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.pending == nil {
		return Confirmation{}, false
	}
	return *p.pending, true
}

// ConfirmDelete deletes the product named by c and removes it from the
// local collection without re-fetching.
func (p *Products) ConfirmDelete(ctx context.Context, c Confirmation) error {
	p.mu.Lock()
	pending := p.pending
	if pending == nil || *pending != c {
		p.mu.Unlock()
		return apperrors.Validation("deletion was not confirmed")
	}
	p.pending = nil
	p.mu.Unlock()

	_, err := privileged(ctx, p.sess, p.logger, "delete_product", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, p.gw.DeleteProduct(ctx, c.ID)
	})
	if err != nil {
		return err
	}

	p.mu.Lock()
	kept := p.items[:0:0]
	for _, item := range p.items {
		if item.ID != c.ID {
			kept = append(kept, item)
		}
	}
	p.items = kept
	p.mu.Unlock()

	logger.WithContext(ctx, p.logger).InfoContext(ctx, "product deleted", slog.String("product_id", c.ID))
	return nil
}

// RemoveImage removes the image of the product being edited. An image
// that only exists locally is simply dropped. Otherwise the backend is
// asked to delete it and the preview is refreshed from the re-fetched
// product.
func (p *Products) RemoveImage(ctx context.Context, edit *domain.PendingEdit) error {
	if edit.IsCreate() || !edit.Original.HasImage() {
		edit.ClearImage()
		return nil
	}

	id, imageURL := edit.Original.ID, edit.Original.ImageURL
	_, err := privileged(ctx, p.sess, p.logger, "remove_product_image", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, p.gw.DeleteProductImage(ctx, id, imageURL)
	})
	if err != nil {
		return err
	}

	edit.ClearImage()
	original := *edit.Original
	original.ImageURL = ""
	edit.Original = &original

	refreshed, err := privileged(ctx, p.sess, p.logger, "get_product", func(ctx context.Context) (*domain.Product, error) {
		return p.gw.GetProduct(ctx, id)
	})
	if err != nil {
		return err
	}
	edit.Original = refreshed
	edit.Preview = refreshed.ImageURL
	p.replace(*refreshed)

	logger.WithContext(ctx, p.logger).InfoContext(ctx, "product image removed", slog.String("product_id", id))
	return nil
}

func (p *Products) refresh(ctx context.Context) error {
	if _, err := p.List(ctx); err != nil {
		logger.WithContext(ctx, p.logger).WarnContext(ctx, "re-fetch after save failed",
			slog.String("error", err.Error()),
		)
		return err
	}
	return nil
}

func (p *Products) replace(product domain.Product) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.items {
		if p.items[i].ID == product.ID {
			p.items[i] = product
			return
		}
	}
}

func cloneProducts(in []domain.Product) []domain.Product {
	out := make([]domain.Product, len(in))
	for i, p := range in {
		p.Sizes = append([]string(nil), p.Sizes...)
		p.Colors = append([]string(nil), p.Colors...)
		out[i] = p
	}
	return out
}
