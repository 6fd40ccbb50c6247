package services

import (
	"context"
	"errors"

	"storefront-dashboard/clients"
	"storefront-dashboard/models"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrProductNotFound = errors.New("product not found")
)

// CatalogAPI is the slice of the backend the Catalog Cache needs.
type CatalogAPI interface {
	ListProducts(ctx context.Context, ts clients.TokenSource) ([]models.Product, error)
	GetProduct(ctx context.Context, ts clients.TokenSource, productID int64) (models.Product, error)
	CreateProduct(ctx context.Context, ts clients.TokenSource, p models.Product) error
	UpdateProduct(ctx context.Context, ts clients.TokenSource, productID int64, p models.Product) error
	DeleteProduct(ctx context.Context, ts clients.TokenSource, productID int64) error
}

// CartAPI is the slice of the backend the Cart Reconciler needs.
type CartAPI interface {
	ListCartItems(ctx context.Context, ts clients.TokenSource, userID int64) ([]models.CartItem, error)
	CreateCartItem(ctx context.Context, ts clients.TokenSource, req models.CreateCartItemRequest) (models.CartItem, error)
	UpdateCartItem(ctx context.Context, ts clients.TokenSource, itemID int64, quantity int) error
	DeleteCartItem(ctx context.Context, ts clients.TokenSource, itemID int64) error
}

// AccountAPI covers login and profile lookups.
type AccountAPI interface {
	Login(ctx context.Context, email, password string) (string, error)
	GetUser(ctx context.Context, ts clients.TokenSource, userID int64) (models.User, error)
}

// StorefrontAPI is everything the dashboard calls on the backend.
type StorefrontAPI interface {
	CatalogAPI
	CartAPI
	AccountAPI
}

var _ StorefrontAPI = (*clients.APIClient)(nil)
