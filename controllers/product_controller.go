package controllers

import (
	"net/http"

	apperrors "storefront-dashboard/errors"

	"github.com/gin-gonic/gin"
)

func (dc *DashboardController) ListProducts(c *gin.Context) {
	ws, ok := dc.workspace(c)
	if !ok {
		return
	}
	products, err := dc.dash.Products(c.Request.Context(), ws)
	if err != nil {
		apperrors.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (dc *DashboardController) GetProduct(c *gin.Context) {
	ws, ok := dc.workspace(c)
	if !ok {
		return
	}
	id, err := dc.validator.ParseID(c, "id")
	if err != nil {
		apperrors.Abort(c, apperrors.ErrInvalidInput.Wrap(err))
		return
	}
	product, err := dc.dash.Product(c.Request.Context(), ws, id)
	if err != nil {
		apperrors.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (dc *DashboardController) CreateProduct(c *gin.Context) {
	ws, ok := dc.workspace(c)
	if !ok {
		return
	}
	form, err := dc.validator.ParseProductForm(c)
	if err != nil {
		apperrors.Abort(c, apperrors.ErrValidation.Wrap(err))
		return
	}
	products, err := dc.dash.CreateProduct(c.Request.Context(), ws, form)
	if err != nil {
		apperrors.Abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"products": products})
}

func (dc *DashboardController) UpdateProduct(c *gin.Context) {
	ws, ok := dc.workspace(c)
	if !ok {
		return
	}
	id, err := dc.validator.ParseID(c, "id")
	if err != nil {
		apperrors.Abort(c, apperrors.ErrInvalidInput.Wrap(err))
		return
	}
	form, err := dc.validator.ParseProductForm(c)
	if err != nil {
		apperrors.Abort(c, apperrors.ErrValidation.Wrap(err))
		return
	}
	products, err := dc.dash.UpdateProduct(c.Request.Context(), ws, id, form)
	if err != nil {
		apperrors.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (dc *DashboardController) DeleteProduct(c *gin.Context) {
	ws, ok := dc.workspace(c)
	if !ok {
		return
	}
	id, err := dc.validator.ParseID(c, "id")
	if err != nil {
		apperrors.Abort(c, apperrors.ErrInvalidInput.Wrap(err))
		return
	}
	products, err := dc.dash.DeleteProduct(c.Request.Context(), ws, id)
	if err != nil {
		apperrors.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}
