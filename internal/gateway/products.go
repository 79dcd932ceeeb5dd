package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/utafrali/EcommerceGo/storefront/internal/domain"
	"github.com/utafrali/EcommerceGo/storefront/internal/envelope"
	apperrors "github.com/utafrali/EcommerceGo/storefront/pkg/errors"
)

// ListProducts fetches the product collection. The body is returned raw
// because the backend may or may not wrap it in an envelope.
func (c *Client) ListProducts(ctx context.Context) (json.RawMessage, error) {
	return c.send(ctx, call{method: http.MethodGet, route: "/products", path: "/products"})
}

// GetProduct fetches a single product.
func (c *Client) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	raw, err := c.send(ctx, call{
		method: http.MethodGet,
		route:  "/products/{id}",
		path:   "/products/" + url.PathEscape(id),
	})
	if err != nil {
		return nil, err
	}
	p, err := envelope.Entity[domain.Product](raw, "product")
	if err != nil {
		return nil, apperrors.Server(http.StatusBadGateway, "backend returned an unreadable product", err)
	}
	return p, nil
}

// CreateProduct submits a new product as multipart form data.
func (c *Client) CreateProduct(ctx context.Context, form *ProductForm) (json.RawMessage, error) {
	return c.send(ctx, call{
		method:      http.MethodPost,
		route:       "/products",
		path:        "/products",
		body:        form.Bytes(),
		contentType: form.ContentType(),
	})
}

// UpdateProduct replaces the product with the given id.
func (c *Client) UpdateProduct(ctx context.Context, id string, form *ProductForm) (json.RawMessage, error) {
	return c.send(ctx, call{
		method:      http.MethodPut,
		route:       "/products/{id}",
		path:        "/products/" + url.PathEscape(id),
		body:        form.Bytes(),
		contentType: form.ContentType(),
	})
}

// DeleteProduct removes the product with the given id.
func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	_, err := c.send(ctx, call{
		method:  http.MethodDelete,
		route:   "/products/{id}",
		path:    "/products/" + url.PathEscape(id),
		discard: true,
	})
	return err
}

// DeleteProductImage detaches imageURL from the product.
func (c *Client) DeleteProductImage(ctx context.Context, id, imageURL string) error {
	cl, err := jsonCall(http.MethodDelete, "/products/{id}/images",
		"/products/"+url.PathEscape(id)+"/images",
		map[string]string{"imageUrl": imageURL})
	if err != nil {
		return apperrors.Server(0, "could not build backend request", err)
	}
	cl.discard = true
	_, err = c.send(ctx, cl)
	return err
}
