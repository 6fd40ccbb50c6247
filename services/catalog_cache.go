package services

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"storefront-dashboard/clients"
	"storefront-dashboard/logger"
	"storefront-dashboard/models"

	"go.uber.org/zap"
)

// CatalogCache holds the last product list fetched from the backend.
// Mutations never patch the list; the caller refreshes after each one.
type CatalogCache struct {
	api CatalogAPI
	ts  clients.TokenSource

	mu       sync.RWMutex
	products []models.Product
}

func NewCatalogCache(api CatalogAPI, ts clients.TokenSource) *CatalogCache {
	return &CatalogCache{api: api, ts: ts}
}

// Refresh replaces the local list with the backend's full list.
// On failure the previous snapshot is kept.
func (c *CatalogCache) Refresh(ctx context.Context) ([]models.Product, error) {
	products, err := c.api.ListProducts(ctx, c.ts)
	if err != nil {
		logger.Error(ctx, "Error fetching products", err)
		return nil, fmt.Errorf("fetch products: %w", err)
	}
	if products == nil {
		products = []models.Product{}
	}

	c.mu.Lock()
	c.products = products
	c.mu.Unlock()

	return clone(products), nil
}

// Products returns a copy of the current snapshot.
func (c *CatalogCache) Products() []models.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return clone(c.products)
}

// Find looks a product up in the snapshot.
func (c *CatalogCache) Find(productID int64) (models.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, p := range c.products {
		if p.ID == productID {
			return p, true
		}
	}
	return models.Product{}, false
}

// Product fetches a single product from the backend without touching the snapshot.
func (c *CatalogCache) Product(ctx context.Context, productID int64) (models.Product, error) {
	p, err := c.api.GetProduct(ctx, c.ts, productID)
	if err != nil {
		logger.Error(ctx, "Error fetching product", err, zap.Int64("product_id", productID))
		if clients.IsStatus(err, http.StatusNotFound) {
			return models.Product{}, fmt.Errorf("%w: %d", ErrProductNotFound, productID)
		}
		return models.Product{}, fmt.Errorf("fetch product %d: %w", productID, err)
	}
	return p, nil
}

func (c *CatalogCache) Create(ctx context.Context, form models.ProductForm) error {
	p := form.Product()
	if err := c.api.CreateProduct(ctx, c.ts, p); err != nil {
		logger.Error(ctx, "Error creating product", err, zap.String("name", p.Name))
		return fmt.Errorf("create product: %w", err)
	}
	logger.Info(ctx, "Product created successfully", zap.String("name", p.Name))
	return nil
}

func (c *CatalogCache) Update(ctx context.Context, productID int64, form models.ProductForm) error {
	p := form.Product()
	if err := c.api.UpdateProduct(ctx, c.ts, productID, p); err != nil {
		logger.Error(ctx, "Error updating product", err, zap.Int64("product_id", productID))
		return fmt.Errorf("update product %d: %w", productID, err)
	}
	logger.Info(ctx, "Product updated successfully", zap.Int64("product_id", productID))
	return nil
}

func (c *CatalogCache) Delete(ctx context.Context, productID int64) error {
	if err := c.api.DeleteProduct(ctx, c.ts, productID); err != nil {
		logger.Error(ctx, "Error deleting product", err, zap.Int64("product_id", productID))
		return fmt.Errorf("delete product %d: %w", productID, err)
	}
	logger.Info(ctx, "Product deleted successfully", zap.Int64("product_id", productID))
	return nil
}

func clone[T any](in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	return out
}
