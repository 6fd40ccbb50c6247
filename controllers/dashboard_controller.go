package controllers

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"time"

	apperrors "storefront-dashboard/errors"
	"storefront-dashboard/logger"
	"storefront-dashboard/metrics"
	"storefront-dashboard/middleware"
	"storefront-dashboard/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type DashboardController struct {
	dash      *services.Dashboard
	validator *RequestValidator
	metrics   *metrics.Client
}

func NewDashboardController(dash *services.Dashboard, mc *metrics.Client) *DashboardController {
	return &DashboardController{
		dash:      dash,
		validator: NewRequestValidator(),
		metrics:   mc,
	}
}

func (dc *DashboardController) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
}

func (dc *DashboardController) LoginPage(c *gin.Context) {
	renderLogin(c, http.StatusOK, "")
}

func (dc *DashboardController) Login(c *gin.Context) {
	ctx := c.Request.Context()

	req, err := dc.validator.ParseLogin(c)
	if err != nil {
		dc.loginFailed(c, apperrors.ErrInvalidInput.Wrap(err))
		return
	}

	sess, err := middleware.GetSession(c)
	if err != nil {
		apperrors.Abort(c, apperrors.ErrInternalServer.Wrap(err))
		return
	}

	fresh, err := dc.dash.Login(ctx, sess, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidCredentials) {
			dc.record(metrics.MetricLoginFailures)
		}
		dc.loginFailed(c, err)
		return
	}
	middleware.SetSession(c, fresh)

	if middleware.WantsHTML(c) {
		c.Redirect(http.StatusSeeOther, "/dashboard")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "redirect": "/dashboard"})
}

func (dc *DashboardController) loginFailed(c *gin.Context, err error) {
	if middleware.WantsHTML(c) {
		appErr := apperrors.From(err)
		renderLogin(c, appErr.Code, appErr.Message)
		return
	}
	apperrors.Abort(c, err)
}

func (dc *DashboardController) Logout(c *gin.Context) {
	sess, err := middleware.GetSession(c)
	if err != nil {
		apperrors.Abort(c, apperrors.ErrInternalServer.Wrap(err))
		return
	}
	if err := dc.dash.Logout(c.Request.Context(), sess); err != nil {
		logger.Error(c.Request.Context(), "Failed to clear session", err)
		apperrors.Abort(c, apperrors.ErrServiceUnavailable.Wrap(err))
		return
	}

	if middleware.WantsHTML(c) {
		c.Redirect(http.StatusSeeOther, "/login")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "redirect": "/login"})
}

// Dashboard returns user, catalog and cart in one view.
func (dc *DashboardController) Dashboard(c *gin.Context) {
	ws, ok := dc.workspace(c)
	if !ok {
		return
	}

	view := dc.dash.Load(c.Request.Context(), ws)
	if len(view.Errors) > 0 {
		logger.Warn(c.Request.Context(), "Dashboard loaded with errors", zap.Any("errors", view.Errors))
	}
	c.JSON(http.StatusOK, view)
}

// workspace fetches the workspace RequireSession put on the context.
func (dc *DashboardController) workspace(c *gin.Context) (*services.Workspace, bool) {
	ws, err := middleware.GetWorkspace(c)
	if err != nil {
		apperrors.Abort(c, apperrors.ErrInternalServer.Wrap(err))
		return nil, false
	}
	return ws, true
}

func (dc *DashboardController) record(name string) {
	if !dc.metrics.IsEnabled() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = dc.metrics.RecordCount(ctx, name, map[string]string{"Service": "storefront-dashboard"})
	}()
}

const loginPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>Sign in</title>
</head>
<body>
  <h1>Sign in</h1>
  %s
  <form method="post" action="/login">
    <label>Email <input type="email" name="email" required /></label>
    <label>Password <input type="password" name="password" required /></label>
    <button type="submit">Sign in</button>
  </form>
</body>
</html>`

func renderLogin(c *gin.Context, status int, message string) {
	notice := ""
	if message != "" {
		notice = `<p role="alert">` + html.EscapeString(message) + `</p>`
	}
	c.Data(status, "text/html; charset=utf-8", []byte(fmt.Sprintf(loginPage, notice)))
}
