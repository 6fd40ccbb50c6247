package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	"storefront-dashboard/clients"
	apperrors "storefront-dashboard/errors"
	"storefront-dashboard/logger"
	"storefront-dashboard/models"
	"storefront-dashboard/session"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// View is what the dashboard page renders.
type View struct {
	Username  string            `json:"username"`
	Products  []models.Product  `json:"products"`
	Cart      []models.CartItem `json:"cart"`
	CartTotal float64           `json:"cartTotal"`
	Errors    map[string]string `json:"errors,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// CartView is the cart as the UI renders it.
type CartView struct {
	Items []models.CartItem `json:"items"`
	Total float64           `json:"total"`
}

func cartView(ws *Workspace) CartView {
	return CartView{Items: ws.Cart.Items(), Total: ws.Cart.Total()}
}

// Dashboard ties the session guard to the per-session catalog and cart.
type Dashboard struct {
	api        StorefrontAPI
	guard      *session.Guard
	workspaces *Workspaces
}

// NewDashboard wires the dashboard. A nil guard checks against the wall
// clock; idleTTL bounds how long an untouched workspace stays in memory and
// falls back to DefaultIdleTTL when zero.
func NewDashboard(api StorefrontAPI, guard *session.Guard, idleTTL time.Duration) *Dashboard {
	if guard == nil {
		guard = &session.Guard{Now: time.Now}
	}
	return &Dashboard{
		api:        api,
		guard:      guard,
		workspaces: NewWorkspaces(api, idleTTL),
	}
}

func (d *Dashboard) Guard() *session.Guard { return d.guard }

// Login exchanges credentials for a token and persists token and user id
// under a new session id, discarding the pre-login session. The caller must
// hand the returned session's id to the browser. Rejected credentials surface
// as ErrInvalidCredentials.
func (d *Dashboard) Login(ctx context.Context, sess *session.Session, email, password string) (*session.Session, error) {
	token, err := d.api.Login(ctx, email, password)
	if err != nil {
		logger.Warn(ctx, "Login failed", zap.String("email", email), zap.Error(err))
		var se *clients.StatusError
		if errors.As(err, &se) && se.Code >= 400 && se.Code < 500 {
			return nil, apperrors.ErrInvalidCredentials.Wrap(err)
		}
		return nil, apperrors.ErrBadGateway.Wrap(err)
	}

	userID, err := session.UserIDFromToken(token)
	if err != nil {
		logger.Error(ctx, "Login returned an undecodable token", err)
		return nil, apperrors.ErrBadGateway.Wrap(err)
	}

	fresh := sess.Renew(uuid.NewString())
	if err := fresh.Save(ctx, token, userID); err != nil {
		logger.Error(ctx, "Failed to persist session", err)
		return nil, apperrors.ErrServiceUnavailable.Wrap(err)
	}

	d.workspaces.Drop(sess.ID)
	if err := sess.Clear(ctx); err != nil {
		logger.Warn(ctx, "Failed to clear pre-login session", zap.Error(err))
	}

	logger.Info(ctx, "Login succeeded", zap.Int64("user_id", userID))
	return fresh, nil
}

// Logout discards all local state of the session.
func (d *Dashboard) Logout(ctx context.Context, sess *session.Session) error {
	d.workspaces.Drop(sess.ID)
	return sess.Clear(ctx)
}

// Authorize runs the session guard. An absent or expired token, or a session
// without a usable user id, clears the session and returns ErrTokenExpired;
// callers must send the user to login.
func (d *Dashboard) Authorize(ctx context.Context, sess *session.Session) (int64, error) {
	if !sess.Valid(ctx, d.guard) {
		return 0, d.expire(ctx, sess)
	}

	userID, err := sess.UserID(ctx)
	if err != nil {
		return 0, apperrors.ErrServiceUnavailable.Wrap(err)
	}
	if userID <= 0 {
		logger.Warn(ctx, "Session has no usable user id", zap.String("session_id", sess.ID))
		return 0, d.expire(ctx, sess)
	}
	return userID, nil
}

func (d *Dashboard) expire(ctx context.Context, sess *session.Session) error {
	d.workspaces.Drop(sess.ID)
	if err := sess.Clear(ctx); err != nil {
		logger.Warn(ctx, "Failed to clear expired session", zap.Error(err))
	}
	return apperrors.ErrTokenExpired
}

// Workspace authorizes the session and returns its workspace.
func (d *Dashboard) Workspace(ctx context.Context, sess *session.Session) (*Workspace, error) {
	userID, err := d.Authorize(ctx, sess)
	if err != nil {
		return nil, err
	}
	return d.workspaces.Get(sess.ID, userID, sess), nil
}

// Load fetches user, catalog and cart concurrently for an authorized
// workspace. A failed source is reported in View.Errors and leaves that part
// of the workspace unchanged.
func (d *Dashboard) Load(ctx context.Context, ws *Workspace) View {
	type result struct {
		name string
		err  error
	}

	userCh := make(chan result, 1)
	catalogCh := make(chan result, 1)
	cartCh := make(chan result, 1)

	go func() {
		user, err := d.api.GetUser(ctx, ws.tokens, ws.UserID)
		if err != nil {
			logger.Error(ctx, "Error fetching user", err, zap.Int64("user_id", ws.UserID))
		} else {
			ws.setUsername(user.Username)
		}
		userCh <- result{name: "user", err: err}
	}()

	go func() {
		_, err := ws.Catalog.Refresh(ctx)
		catalogCh <- result{name: "products", err: err}
	}()

	go func() {
		cartCh <- result{name: "cart", err: ws.Cart.Load(ctx)}
	}()

	view := View{Timestamp: time.Now().UTC()}
	for _, r := range []result{<-userCh, <-catalogCh, <-cartCh} {
		if r.err != nil {
			if view.Errors == nil {
				view.Errors = make(map[string]string)
			}
			view.Errors[r.name] = r.err.Error()
		}
	}

	ws.Cart.Hydrate(ws.Catalog.Products())

	view.Username = ws.Username()
	view.Products = ws.Catalog.Products()
	view.Cart = ws.Cart.Items()
	view.CartTotal = ws.Cart.Total()
	return view
}

// Products refreshes the catalog snapshot and returns it.
func (d *Dashboard) Products(ctx context.Context, ws *Workspace) ([]models.Product, error) {
	if _, err := ws.Catalog.Refresh(ctx); err != nil {
		return nil, apperrors.ErrBadGateway.Wrap(err)
	}
	return ws.Catalog.Products(), nil
}

// Product fetches one product for the edit form.
func (d *Dashboard) Product(ctx context.Context, ws *Workspace, productID int64) (models.Product, error) {
	p, err := ws.Catalog.Product(ctx, productID)
	if err != nil {
		return models.Product{}, upstream(err)
	}
	return p, nil
}

// Cart reloads the cart from the backend and joins display fields from the
// catalog snapshot.
func (d *Dashboard) Cart(ctx context.Context, ws *Workspace) (CartView, error) {
	if err := ws.Cart.Load(ctx); err != nil {
		return CartView{}, apperrors.ErrBadGateway.Wrap(err)
	}
	ws.Cart.Hydrate(ws.Catalog.Products())
	return cartView(ws), nil
}

// CreateProduct creates a product and then refreshes the catalog.
func (d *Dashboard) CreateProduct(ctx context.Context, ws *Workspace, form models.ProductForm) ([]models.Product, error) {
	if err := ws.Catalog.Create(ctx, form); err != nil {
		return nil, apperrors.ErrBadGateway.Wrap(err)
	}
	return d.refresh(ctx, ws), nil
}

// UpdateProduct updates a product and then refreshes the catalog.
func (d *Dashboard) UpdateProduct(ctx context.Context, ws *Workspace, productID int64, form models.ProductForm) ([]models.Product, error) {
	if err := ws.Catalog.Update(ctx, productID, form); err != nil {
		return nil, upstream(err)
	}
	return d.refresh(ctx, ws), nil
}

// DeleteProduct deletes a product and then refreshes the catalog.
func (d *Dashboard) DeleteProduct(ctx context.Context, ws *Workspace, productID int64) ([]models.Product, error) {
	if err := ws.Catalog.Delete(ctx, productID); err != nil {
		return nil, upstream(err)
	}
	return d.refresh(ctx, ws), nil
}

// AddToCart resolves the product from the catalog snapshot, falling back to
// the backend, and hands it to the cart reconciler.
func (d *Dashboard) AddToCart(ctx context.Context, ws *Workspace, productID int64) ([]models.CartItem, error) {
	product, ok := ws.Catalog.Find(productID)
	if !ok {
		var err error
		product, err = ws.Catalog.Product(ctx, productID)
		if err != nil {
			return nil, upstream(err)
		}
	}
	if err := ws.Cart.AddToCart(ctx, product); err != nil {
		return nil, apperrors.ErrBadGateway.Wrap(err)
	}
	return ws.Cart.Items(), nil
}

func (d *Dashboard) SetQuantity(ctx context.Context, ws *Workspace, itemID int64, quantity int) ([]models.CartItem, error) {
	if err := ws.Cart.SetQuantity(ctx, itemID, quantity); err != nil {
		if errors.Is(err, ErrInvalidQuantity) {
			return nil, apperrors.ErrValidation.Wrap(err)
		}
		return nil, apperrors.ErrBadGateway.Wrap(err)
	}
	return ws.Cart.Items(), nil
}

func (d *Dashboard) RemoveFromCart(ctx context.Context, ws *Workspace, itemID int64) ([]models.CartItem, error) {
	if err := ws.Cart.RemoveFromCart(ctx, itemID); err != nil {
		return nil, apperrors.ErrBadGateway.Wrap(err)
	}
	return ws.Cart.Items(), nil
}

func (d *Dashboard) refresh(ctx context.Context, ws *Workspace) []models.Product {
	if _, err := ws.Catalog.Refresh(ctx); err != nil {
		logger.Warn(ctx, "Catalog refresh after mutation failed; serving previous snapshot", zap.Error(err))
	}
	return ws.Catalog.Products()
}

func upstream(err error) error {
	if errors.Is(err, ErrProductNotFound) || clients.IsStatus(err, http.StatusNotFound) {
		return apperrors.ErrNotFound.Wrap(err)
	}
	return apperrors.ErrBadGateway.Wrap(err)
}
