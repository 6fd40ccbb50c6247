package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	apperrors "storefront-dashboard/errors"
	"storefront-dashboard/logger"
	"storefront-dashboard/services"
	"storefront-dashboard/session"
	"storefront-dashboard/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	SessionContextKey   = "session"
	WorkspaceContextKey = "workspace"

	cookieOptionsKey = "session_cookie"
)

type cookieOptions struct {
	maxAge int
	secure bool
}

// Sessions resolves the browser's session cookie to a session.Session,
// issuing a fresh id when the cookie is absent or not a UUID.
func Sessions(store storage.Store, ttl time.Duration, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		opts := cookieOptions{maxAge: int(ttl.Seconds()), secure: secure}
		c.Set(cookieOptionsKey, opts)

		id, err := c.Cookie(session.CookieName)
		if err != nil || !validSessionID(id) {
			id = uuid.NewString()
			http.SetCookie(c.Writer, session.Cookie(id, opts.maxAge, opts.secure))
		}

		c.Set(SessionContextKey, session.New(id, store))
		c.Next()
	}
}

// SetSession replaces the request's session, e.g. after login rotated its id,
// and sends the new id to the browser.
func SetSession(c *gin.Context, sess *session.Session) {
	opts, _ := c.Get(cookieOptionsKey)
	o, _ := opts.(cookieOptions)
	http.SetCookie(c.Writer, session.Cookie(sess.ID, o.maxAge, o.secure))
	c.Set(SessionContextKey, sess)
}

func validSessionID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// RequireSession runs the session guard. Browsers are redirected to the login
// page, API callers get 401 with the redirect target in the body.
func RequireSession(dash *services.Dashboard) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := GetSession(c)
		if err != nil {
			apperrors.Abort(c, apperrors.ErrInternalServer.Wrap(err))
			return
		}

		ws, err := dash.Workspace(c.Request.Context(), sess)
		if err != nil {
			if errors.Is(err, apperrors.ErrTokenExpired) {
				logger.Info(c.Request.Context(), "Session rejected by guard", zap.String("path", c.Request.URL.Path))
				if WantsHTML(c) {
					c.Redirect(http.StatusFound, apperrors.ErrTokenExpired.Redirect)
					c.Abort()
					return
				}
				c.AbortWithStatusJSON(http.StatusUnauthorized, apperrors.ErrTokenExpired)
				return
			}
			apperrors.Abort(c, err)
			return
		}

		c.Set(WorkspaceContextKey, ws)
		c.Next()
	}
}

// WantsHTML reports whether the caller is a browser navigation.
func WantsHTML(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "text/html")
}

func GetSession(c *gin.Context) (*session.Session, error) {
	val, exists := c.Get(SessionContextKey)
	if !exists {
		return nil, errors.New("session not found in context")
	}
	sess, ok := val.(*session.Session)
	if !ok || sess == nil {
		return nil, errors.New("session has invalid type in context")
	}
	return sess, nil
}

func GetWorkspace(c *gin.Context) (*services.Workspace, error) {
	val, exists := c.Get(WorkspaceContextKey)
	if !exists {
		return nil, errors.New("workspace not found in context")
	}
	ws, ok := val.(*services.Workspace)
	if !ok || ws == nil {
		return nil, errors.New("workspace has invalid type in context")
	}
	return ws, nil
}
