package models

// CartItem is one line of a user's cart. Name and Price are display fields
// copied from the product when the line was created.
type CartItem struct {
	ID        int64   `json:"id"`
	UserID    int64   `json:"userId"`
	ProductID int64   `json:"productId"`
	Quantity  int     `json:"quantity"`
	Name      string  `json:"name,omitempty"`
	Price     float64 `json:"price,omitempty"`
}

// Subtotal is the display price times quantity.
func (i CartItem) Subtotal() float64 {
	return i.Price * float64(i.Quantity)
}

// CreateCartItemRequest is the body of POST /cart-items.
type CreateCartItemRequest struct {
	UserID    int64 `json:"userId"`
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// UpdateCartItemRequest is the body of PATCH /cart-items/{id}.
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// AddToCartRequest is what the dashboard UI posts to add a product.
type AddToCartRequest struct {
	ProductID int64 `json:"productId" binding:"required"`
}

// SetQuantityRequest is what the dashboard UI posts to change a quantity.
type SetQuantityRequest struct {
	Quantity int `json:"quantity"`
}
