package controllers

import (
	"net/http"

	apperrors "storefront-dashboard/errors"
	"storefront-dashboard/metrics"
	"storefront-dashboard/models"
	"storefront-dashboard/services"

	"github.com/gin-gonic/gin"
)

func (dc *DashboardController) GetCart(c *gin.Context) {
	ws, ok := dc.workspace(c)
	if !ok {
		return
	}
	cart, err := dc.dash.Cart(c.Request.Context(), ws)
	if err != nil {
		apperrors.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (dc *DashboardController) AddToCart(c *gin.Context) {
	ws, ok := dc.workspace(c)
	if !ok {
		return
	}
	productID, err := dc.validator.ParseAddToCart(c)
	if err != nil {
		apperrors.Abort(c, apperrors.ErrInvalidInput.Wrap(err))
		return
	}
	items, err := dc.dash.AddToCart(c.Request.Context(), ws, productID)
	if err != nil {
		apperrors.Abort(c, err)
		return
	}
	dc.record(metrics.MetricCartAdds)
	c.JSON(http.StatusOK, newCartView(items))
}

func (dc *DashboardController) SetQuantity(c *gin.Context) {
	ws, ok := dc.workspace(c)
	if !ok {
		return
	}
	itemID, err := dc.validator.ParseID(c, "id")
	if err != nil {
		apperrors.Abort(c, apperrors.ErrInvalidInput.Wrap(err))
		return
	}
	quantity, err := dc.validator.ParseQuantity(c)
	if err != nil {
		apperrors.Abort(c, apperrors.ErrInvalidInput.Wrap(err))
		return
	}
	items, err := dc.dash.SetQuantity(c.Request.Context(), ws, itemID, quantity)
	if err != nil {
		apperrors.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, newCartView(items))
}

func (dc *DashboardController) RemoveFromCart(c *gin.Context) {
	ws, ok := dc.workspace(c)
	if !ok {
		return
	}
	itemID, err := dc.validator.ParseID(c, "id")
	if err != nil {
		apperrors.Abort(c, apperrors.ErrInvalidInput.Wrap(err))
		return
	}
	items, err := dc.dash.RemoveFromCart(c.Request.Context(), ws, itemID)
	if err != nil {
		apperrors.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, newCartView(items))
}

func newCartView(items []models.CartItem) services.CartView {
	view := services.CartView{Items: items}
	for _, it := range items {
		view.Total += it.Subtotal()
	}
	return view
}
