package clients

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"storefront-dashboard/models"
)

func (a *APIClient) Login(ctx context.Context, email, password string) (string, error) {
	var out models.LoginResponse
	err := a.call(ctx, nil, http.MethodPost, "/auth/login", models.LoginRequest{Email: email, Password: password}, &out)
	if err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", fmt.Errorf("login response carried no token")
	}
	return out.Token, nil
}

func (a *APIClient) GetUser(ctx context.Context, ts TokenSource, userID int64) (models.User, error) {
	var out models.UserEnvelope
	err := a.call(ctx, ts, http.MethodGet, "/user/"+id(userID), nil, &out)
	return out.User, err
}

func (a *APIClient) ListProducts(ctx context.Context, ts TokenSource) ([]models.Product, error) {
	var out []models.Product
	if err := a.call(ctx, ts, http.MethodGet, "/products", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *APIClient) GetProduct(ctx context.Context, ts TokenSource, productID int64) (models.Product, error) {
	var out models.Product
	err := a.call(ctx, ts, http.MethodGet, "/products/"+id(productID), nil, &out)
	return out, err
}

func (a *APIClient) CreateProduct(ctx context.Context, ts TokenSource, p models.Product) error {
	return a.call(ctx, ts, http.MethodPost, "/products", p.Payload(), nil)
}

func (a *APIClient) UpdateProduct(ctx context.Context, ts TokenSource, productID int64, p models.Product) error {
	return a.call(ctx, ts, http.MethodPatch, "/products/"+id(productID), p.Payload(), nil)
}

func (a *APIClient) DeleteProduct(ctx context.Context, ts TokenSource, productID int64) error {
	return a.call(ctx, ts, http.MethodDelete, "/products/"+id(productID), nil, nil)
}

func (a *APIClient) ListCartItems(ctx context.Context, ts TokenSource, userID int64) ([]models.CartItem, error) {
	var out []models.CartItem
	if err := a.call(ctx, ts, http.MethodGet, "/cart-items/"+id(userID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *APIClient) CreateCartItem(ctx context.Context, ts TokenSource, req models.CreateCartItemRequest) (models.CartItem, error) {
	var out models.CartItem
	err := a.call(ctx, ts, http.MethodPost, "/cart-items", req, &out)
	return out, err
}

func (a *APIClient) UpdateCartItem(ctx context.Context, ts TokenSource, itemID int64, quantity int) error {
	return a.call(ctx, ts, http.MethodPatch, "/cart-items/"+id(itemID), models.UpdateCartItemRequest{Quantity: quantity}, nil)
}

func (a *APIClient) DeleteCartItem(ctx context.Context, ts TokenSource, itemID int64) error {
	return a.call(ctx, ts, http.MethodDelete, "/cart-items/"+id(itemID), nil, nil)
}

func id(v int64) string {
	return strconv.FormatInt(v, 10)
}
