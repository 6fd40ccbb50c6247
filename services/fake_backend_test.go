package services

import (
	"context"
	"fmt"
	"sync"

	"storefront-dashboard/clients"
	"storefront-dashboard/models"
)

// --- Fake backend ---

type fakeBackend struct {
	mu sync.Mutex

	calls    []string
	tokens   []string
	products []models.Product
	items    []models.CartItem
	nextID   int64
	users    map[int64]string
	token    string

	failOn map[string]error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		nextID: 100,
		users:  map[int64]string{},
		failOn: map[string]error{},
	}
}

func (f *fakeBackend) record(ctx context.Context, ts clients.TokenSource, call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	tok := ""
	if ts != nil {
		tok, _ = ts.Token(ctx)
	}
	f.tokens = append(f.tokens, tok)
	if err, ok := f.failOn[call]; ok {
		return err
	}
	return nil
}

func (f *fakeBackend) fail(call string, err error) {
	f.mu.Lock()
	f.failOn[call] = err
	f.mu.Unlock()
}

func (f *fakeBackend) heal(call string) {
	f.mu.Lock()
	delete(f.failOn, call)
	f.mu.Unlock()
}

func (f *fakeBackend) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeBackend) reset() {
	f.mu.Lock()
	f.calls = nil
	f.tokens = nil
	f.mu.Unlock()
}

func (f *fakeBackend) count(call string) int {
	n := 0
	for _, c := range f.Calls() {
		if c == call {
			n++
		}
	}
	return n
}

func (f *fakeBackend) Login(ctx context.Context, email, password string) (string, error) {
	if err := f.record(ctx, nil, "POST /auth/login"); err != nil {
		return "", err
	}
	return f.token, nil
}

func (f *fakeBackend) GetUser(ctx context.Context, ts clients.TokenSource, userID int64) (models.User, error) {
	if err := f.record(ctx, ts, fmt.Sprintf("GET /user/%d", userID)); err != nil {
		return models.User{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return models.User{Username: f.users[userID]}, nil
}

func (f *fakeBackend) ListProducts(ctx context.Context, ts clients.TokenSource) ([]models.Product, error) {
	if err := f.record(ctx, ts, "GET /products"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Product(nil), f.products...), nil
}

func (f *fakeBackend) GetProduct(ctx context.Context, ts clients.TokenSource, productID int64) (models.Product, error) {
	if err := f.record(ctx, ts, fmt.Sprintf("GET /products/%d", productID)); err != nil {
		return models.Product{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.products {
		if p.ID == productID {
			return p, nil
		}
	}
	return models.Product{}, &clients.StatusError{Code: 404, Body: "not found"}
}

func (f *fakeBackend) CreateProduct(ctx context.Context, ts clients.TokenSource, p models.Product) error {
	if err := f.record(ctx, ts, "POST /products"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	p.ID = f.nextID
	f.products = append(f.products, p)
	return nil
}

func (f *fakeBackend) UpdateProduct(ctx context.Context, ts clients.TokenSource, productID int64, p models.Product) error {
	if err := f.record(ctx, ts, fmt.Sprintf("PATCH /products/%d", productID)); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.products {
		if f.products[i].ID == productID {
			p.ID = productID
			f.products[i] = p
			return nil
		}
	}
	return &clients.StatusError{Code: 404, Body: "not found"}
}

func (f *fakeBackend) DeleteProduct(ctx context.Context, ts clients.TokenSource, productID int64) error {
	if err := f.record(ctx, ts, fmt.Sprintf("DELETE /products/%d", productID)); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.products {
		if f.products[i].ID == productID {
			f.products = append(f.products[:i], f.products[i+1:]...)
			return nil
		}
	}
	return &clients.StatusError{Code: 404, Body: "not found"}
}

func (f *fakeBackend) ListCartItems(ctx context.Context, ts clients.TokenSource, userID int64) ([]models.CartItem, error) {
	if err := f.record(ctx, ts, fmt.Sprintf("GET /cart-items/%d", userID)); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.CartItem
	for _, it := range f.items {
		if it.UserID == userID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (f *fakeBackend) CreateCartItem(ctx context.Context, ts clients.TokenSource, req models.CreateCartItemRequest) (models.CartItem, error) {
	if err := f.record(ctx, ts, "POST /cart-items"); err != nil {
		return models.CartItem{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	item := models.CartItem{ID: f.nextID, UserID: req.UserID, ProductID: req.ProductID, Quantity: req.Quantity}
	f.items = append(f.items, item)
	return item, nil
}

func (f *fakeBackend) UpdateCartItem(ctx context.Context, ts clients.TokenSource, itemID int64, quantity int) error {
	if err := f.record(ctx, ts, fmt.Sprintf("PATCH /cart-items/%d", itemID)); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == itemID {
			f.items[i].Quantity = quantity
			return nil
		}
	}
	return &clients.StatusError{Code: 404, Body: "not found"}
}

func (f *fakeBackend) DeleteCartItem(ctx context.Context, ts clients.TokenSource, itemID int64) error {
	if err := f.record(ctx, ts, fmt.Sprintf("DELETE /cart-items/%d", itemID)); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == itemID {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return &clients.StatusError{Code: 404, Body: "not found"}
}

func (f *fakeBackend) remoteItem(itemID int64) (models.CartItem, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, it := range f.items {
		if it.ID == itemID {
			return it, true
		}
	}
	return models.CartItem{}, false
}
