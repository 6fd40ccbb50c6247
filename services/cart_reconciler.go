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

// CartReconciler mirrors one user's remote cart items in memory and decides
// whether adding a product creates a new line or bumps an existing one.
//
// Local state changes only after the backend confirms the call. Operations
// are serialized, so two adds of the same product cannot both take the
// create path.
type CartReconciler struct {
	api    CartAPI
	ts     clients.TokenSource
	userID int64

	opMu sync.Mutex

	mu    sync.RWMutex
	items []models.CartItem
}

func NewCartReconciler(api CartAPI, ts clients.TokenSource, userID int64) *CartReconciler {
	return &CartReconciler{api: api, ts: ts, userID: userID}
}

func (r *CartReconciler) UserID() int64 { return r.userID }

// Load replaces the local items with the backend's list for the user.
func (r *CartReconciler) Load(ctx context.Context) error {
	r.opMu.Lock()
	defer r.opMu.Unlock()

	items, err := r.api.ListCartItems(ctx, r.ts, r.userID)
	if err != nil {
		logger.Error(ctx, "Error fetching cart items", err, zap.Int64("user_id", r.userID))
		return fmt.Errorf("fetch cart items: %w", err)
	}
	if items == nil {
		items = []models.CartItem{}
	}

	r.mu.Lock()
	r.items = items
	r.mu.Unlock()
	return nil
}

// Items returns a copy of the local cart.
func (r *CartReconciler) Items() []models.CartItem {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return clone(r.items)
}

// Total sums price times quantity over the local cart.
func (r *CartReconciler) Total() float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var total float64
	for _, it := range r.items {
		total += it.Subtotal()
	}
	return total
}

// Hydrate fills display fields of lines that have none. Lines that already
// carry a name keep the values captured when they were added.
func (r *CartReconciler) Hydrate(products []models.Product) {
	byID := make(map[int64]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].Name != "" {
			continue
		}
		if p, ok := byID[r.items[i].ProductID]; ok {
			r.items[i].Name = p.Name
			r.items[i].Price = p.Price
		}
	}
}

// AddToCart creates a line with quantity 1 for a product not yet in the
// cart, or raises the existing line's quantity by exactly one.
func (r *CartReconciler) AddToCart(ctx context.Context, product models.Product) error {
	r.opMu.Lock()
	defer r.opMu.Unlock()

	if existing, ok := r.findByProduct(product.ID); ok {
		quantity := existing.Quantity + 1
		if err := r.api.UpdateCartItem(ctx, r.ts, existing.ID, quantity); err != nil {
			logger.Error(ctx, "Error updating cart item", err,
				zap.Int64("item_id", existing.ID), zap.Int64("product_id", product.ID))
			return fmt.Errorf("update cart item %d: %w", existing.ID, err)
		}
		r.setQuantity(existing.ID, quantity)
		logger.Info(ctx, "Cart item updated successfully", zap.Int64("item_id", existing.ID), zap.Int("quantity", quantity))
		return nil
	}

	created, err := r.api.CreateCartItem(ctx, r.ts, models.CreateCartItemRequest{
		UserID:    r.userID,
		ProductID: product.ID,
		Quantity:  1,
	})
	if err != nil {
		logger.Error(ctx, "Error creating cart item", err, zap.Int64("product_id", product.ID))
		return fmt.Errorf("create cart item: %w", err)
	}
	if created.ID == 0 {
		err := fmt.Errorf("backend returned no id for new cart item")
		logger.Error(ctx, "Error creating cart item", err, zap.Int64("product_id", product.ID))
		return err
	}

	r.mu.Lock()
	r.items = append(r.items, models.CartItem{
		ID:        created.ID,
		UserID:    r.userID,
		ProductID: product.ID,
		Quantity:  1,
		Name:      product.Name,
		Price:     product.Price,
	})
	r.mu.Unlock()

	logger.Info(ctx, "Cart item created successfully", zap.Int64("item_id", created.ID), zap.Int64("product_id", product.ID))
	return nil
}

// SetQuantity changes a line's quantity. Quantities below 1 are rejected
// without calling the backend; use RemoveFromCart to drop a line.
func (r *CartReconciler) SetQuantity(ctx context.Context, itemID int64, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	r.opMu.Lock()
	defer r.opMu.Unlock()

	if err := r.api.UpdateCartItem(ctx, r.ts, itemID, quantity); err != nil {
		logger.Error(ctx, "Error updating cart item", err, zap.Int64("item_id", itemID))
		return fmt.Errorf("update cart item %d: %w", itemID, err)
	}
	r.setQuantity(itemID, quantity)
	return nil
}

// RemoveFromCart deletes a line remotely and then locally. A 404 from the
// backend means the line is already gone, so it is dropped locally too.
func (r *CartReconciler) RemoveFromCart(ctx context.Context, itemID int64) error {
	r.opMu.Lock()
	defer r.opMu.Unlock()

	if err := r.api.DeleteCartItem(ctx, r.ts, itemID); err != nil && !clients.IsStatus(err, http.StatusNotFound) {
		logger.Error(ctx, "Error deleting cart item", err, zap.Int64("item_id", itemID))
		return fmt.Errorf("delete cart item %d: %w", itemID, err)
	}

	r.mu.Lock()
	kept := r.items[:0]
	for _, it := range r.items {
		if it.ID != itemID {
			kept = append(kept, it)
		}
	}
	r.items = kept
	r.mu.Unlock()

	logger.Info(ctx, "Cart item deleted successfully", zap.Int64("item_id", itemID))
	return nil
}

func (r *CartReconciler) findByProduct(productID int64) (models.CartItem, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, it := range r.items {
		if it.ProductID == productID {
			return it, true
		}
	}
	return models.CartItem{}, false
}

func (r *CartReconciler) setQuantity(itemID int64, quantity int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID == itemID {
			r.items[i].Quantity = quantity
			return
		}
	}
}
