package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront-dashboard/clients"
	apperrors "storefront-dashboard/errors"
	"storefront-dashboard/models"
	"storefront-dashboard/session"
	"storefront-dashboard/storage"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mintToken(t *testing.T, userID int64, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": userID,
		"exp":    exp.Unix(),
	}).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return tok
}

type dashboardFixture struct {
	backend *fakeBackend
	store   *storage.MemoryStore
	sess    *session.Session
	dash    *Dashboard
}

func newDashboardFixture(t *testing.T) *dashboardFixture {
	backend := newFakeBackend()
	backend.users[7] = "budi"
	backend.products = []models.Product{lamp, {ID: 6, Name: "Desk", Price: 100}}
	backend.token = mintToken(t, 7, time.Now().Add(time.Hour))

	store := storage.NewMemoryStore()
	return &dashboardFixture{
		backend: backend,
		store:   store,
		sess:    session.New("sess-1", store),
		dash:    NewDashboard(backend, nil, 0),
	}
}

// login signs the fixture user in and makes the rotated session current.
func (f *dashboardFixture) login(t *testing.T) *Workspace {
	t.Helper()
	ctx := context.Background()
	fresh, err := f.dash.Login(ctx, f.sess, "budi@example.com", "secret")
	require.NoError(t, err)
	f.sess = fresh
	ws, err := f.dash.Workspace(ctx, f.sess)
	require.NoError(t, err)
	return ws
}

func TestDashboard_LoginThenLoad(t *testing.T) {
	f := newDashboardFixture(t)
	ctx := context.Background()

	ws := f.login(t)

	uid, err := f.sess.UserID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(7), uid)

	view := f.dash.Load(ctx, ws)
	assert.Equal(t, "budi", view.Username)
	assert.Len(t, view.Products, 2)
	assert.Empty(t, view.Cart)
	assert.Nil(t, view.Errors)

	// Every authenticated call carries the session's token.
	for i, call := range f.backend.Calls() {
		if call == "POST /auth/login" {
			continue
		}
		assert.Equal(t, f.backend.token, f.backend.tokens[i], call)
	}
}

func TestDashboard_LoginRejected(t *testing.T) {
	f := newDashboardFixture(t)
	f.backend.fail("POST /auth/login", &clients.StatusError{Code: 401, Body: "bad credentials"})

	fresh, err := f.dash.Login(context.Background(), f.sess, "budi@example.com", "wrong")
	assert.Nil(t, fresh)
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	assert.Equal(t, 0, f.store.Len())
	assert.Equal(t, 1, f.backend.count("POST /auth/login"))
}

func TestDashboard_LoginBackendDown(t *testing.T) {
	f := newDashboardFixture(t)
	f.backend.fail("POST /auth/login", errors.New("connection refused"))

	_, err := f.dash.Login(context.Background(), f.sess, "budi@example.com", "secret")
	assert.ErrorIs(t, err, apperrors.ErrBadGateway)
}

func TestDashboard_LoginRotatesSession(t *testing.T) {
	// Arrange
	f := newDashboardFixture(t)
	ctx := context.Background()
	planted := f.sess
	require.NoError(t, planted.Save(ctx, mintToken(t, 9, time.Now().Add(time.Hour)), 9))
	_, err := f.dash.Workspace(ctx, planted)
	require.NoError(t, err)

	// Act
	fresh, err := f.dash.Login(ctx, planted, "budi@example.com", "secret")

	// Assert
	require.NoError(t, err)
	assert.NotEqual(t, planted.ID, fresh.ID)
	token, err := planted.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, token, "the pre-login id carries nothing")
	_, err = f.dash.Workspace(ctx, planted)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)

	ws, err := f.dash.Workspace(ctx, fresh)
	require.NoError(t, err)
	assert.Equal(t, int64(7), ws.UserID)
	assert.Equal(t, 1, f.dash.workspaces.Len())
}

func TestDashboard_ExpiredTokenRedirects(t *testing.T) {
	f := newDashboardFixture(t)
	ctx := context.Background()
	require.NoError(t, f.sess.Save(ctx, mintToken(t, 7, time.Now().Add(-10*time.Second)), 7))

	_, err := f.dash.Workspace(ctx, f.sess)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
	assert.Empty(t, f.backend.Calls(), "no remote work after the guard rejects")
	assert.Equal(t, 0, f.store.Len(), "local session state is discarded")
}

func TestDashboard_MissingTokenRedirects(t *testing.T) {
	f := newDashboardFixture(t)

	_, err := f.dash.Workspace(context.Background(), f.sess)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
}

func TestDashboard_MalformedTokenRedirects(t *testing.T) {
	f := newDashboardFixture(t)
	ctx := context.Background()
	require.NoError(t, f.sess.Save(ctx, "garbage", 7))

	_, err := f.dash.Workspace(ctx, f.sess)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
}

func TestDashboard_UnusableUserIDRedirects(t *testing.T) {
	for name, stored := range map[string]string{"zero": "0", "garbage": "abc"} {
		t.Run(name, func(t *testing.T) {
			f := newDashboardFixture(t)
			ctx := context.Background()
			require.NoError(t, f.sess.Save(ctx, mintToken(t, 7, time.Now().Add(time.Hour)), 7))
			require.NoError(t, f.store.Set(ctx, "session:"+f.sess.ID+":userId", stored))

			_, err := f.dash.Workspace(ctx, f.sess)

			assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
			assert.Equal(t, 0, f.store.Len())
			assert.Equal(t, 0, f.dash.workspaces.Len())
			assert.Empty(t, f.backend.Calls())
		})
	}
}

func TestDashboard_LoadReportsPartialFailures(t *testing.T) {
	f := newDashboardFixture(t)
	ctx := context.Background()
	ws := f.login(t)
	f.backend.fail("GET /user/7", errors.New("user service down"))

	view := f.dash.Load(ctx, ws)
	assert.Contains(t, view.Errors, "user")
	assert.Len(t, view.Products, 2)
}

func TestDashboard_AddToCartTwice(t *testing.T) {
	f := newDashboardFixture(t)
	ctx := context.Background()
	ws := f.login(t)
	f.dash.Load(ctx, ws)

	_, err := f.dash.AddToCart(ctx, ws, 5)
	require.NoError(t, err)
	cart, err := f.dash.AddToCart(ctx, ws, 5)
	require.NoError(t, err)

	require.Len(t, cart, 1)
	assert.Equal(t, int64(5), cart[0].ProductID)
	assert.Equal(t, 2, cart[0].Quantity)
	assert.Equal(t, "Lamp", cart[0].Name)
}

func TestDashboard_AddToCartUnknownProduct(t *testing.T) {
	f := newDashboardFixture(t)
	ctx := context.Background()
	ws := f.login(t)

	_, err := f.dash.AddToCart(ctx, ws, 404)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, 0, f.backend.count("POST /cart-items"))
}

func TestDashboard_ProductMutationRefreshes(t *testing.T) {
	f := newDashboardFixture(t)
	ctx := context.Background()
	ws := f.login(t)

	products, err := f.dash.CreateProduct(ctx, ws, models.ProductForm{Name: "Mug", Price: 3})
	require.NoError(t, err)
	assert.Len(t, products, 3)
	assert.Equal(t, 1, f.backend.count("GET /products"))

	products, err = f.dash.DeleteProduct(ctx, ws, 6)
	require.NoError(t, err)
	assert.Len(t, products, 2)

	_, err = f.dash.UpdateProduct(ctx, ws, 999, models.ProductForm{Name: "Ghost"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, 2, f.backend.count("GET /products"), "failed mutation skips the refresh")
}

func TestDashboard_SetQuantityValidation(t *testing.T) {
	f := newDashboardFixture(t)
	ctx := context.Background()
	ws := f.login(t)

	_, err := f.dash.SetQuantity(ctx, ws, 1, 0)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestDashboard_LogoutDropsState(t *testing.T) {
	f := newDashboardFixture(t)
	ctx := context.Background()
	f.login(t)
	assert.Equal(t, 1, f.dash.workspaces.Len())

	require.NoError(t, f.dash.Logout(ctx, f.sess))
	assert.Equal(t, 0, f.dash.workspaces.Len())
	assert.Equal(t, 0, f.store.Len())
}

func TestWorkspaces_NewUserGetsFreshWorkspace(t *testing.T) {
	ws := NewWorkspaces(newFakeBackend(), 0)

	a := ws.Get("s", 1, nil)
	assert.Same(t, a, ws.Get("s", 1, nil))

	b := ws.Get("s", 2, nil)
	assert.NotSame(t, a, b)
	assert.Equal(t, int64(2), b.Cart.UserID())
}

func TestWorkspaces_IdleEviction(t *testing.T) {
	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	ws := NewWorkspaces(newFakeBackend(), time.Hour)
	ws.now = func() time.Time { return clock }

	t.Run("Active workspaces survive", func(t *testing.T) {
		a := ws.Get("a", 1, nil)
		ws.Get("b", 2, nil)

		clock = clock.Add(40 * time.Minute)
		assert.Same(t, a, ws.Get("a", 1, nil))
		assert.Equal(t, 2, ws.Len())
	})

	t.Run("Idle workspaces are dropped by later lookups", func(t *testing.T) {
		clock = clock.Add(30 * time.Minute)

		ws.Get("a", 1, nil)

		assert.Equal(t, 1, ws.Len(), "b has been idle for 70 minutes")
	})

	t.Run("A returning session gets a fresh workspace", func(t *testing.T) {
		clock = clock.Add(2 * time.Hour)

		b := ws.Get("b", 2, nil)

		assert.Equal(t, int64(2), b.UserID)
		assert.Equal(t, 1, ws.Len())
	})
}

func TestDashboard_LoadTrustsTheAuthorizedWorkspace(t *testing.T) {
	// Arrange
	f := newDashboardFixture(t)
	ctx := context.Background()
	ws := f.login(t)
	require.NoError(t, f.sess.Clear(ctx))

	// Act
	view := f.dash.Load(ctx, ws)

	// Assert
	assert.Len(t, view.Products, 2, "no second guard pass between middleware and handler")
	assert.Equal(t, "budi", view.Username)
	assert.Equal(t, 1, f.dash.workspaces.Len())
}
