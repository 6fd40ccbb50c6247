package controllers

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"storefront-dashboard/models"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// RequestValidator handles all input validation
type RequestValidator struct {
	validate *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	v := validator.New()
	// whole: a float field holding an integral value, e.g. a stock count.
	_ = v.RegisterValidation("whole", func(fl validator.FieldLevel) bool {
		f := fl.Field().Float()
		return f == math.Trunc(f)
	})
	return &RequestValidator{
		validate: v,
	}
}

// ParseProductForm binds a product form from JSON or form data and validates it.
func (rv *RequestValidator) ParseProductForm(c *gin.Context) (models.ProductForm, error) {
	var form models.ProductForm
	if err := c.ShouldBind(&form); err != nil {
		return models.ProductForm{}, fmt.Errorf("invalid form data: %w", err)
	}
	form.Name = strings.TrimSpace(form.Name)

	if err := rv.validate.Struct(&form); err != nil {
		return models.ProductForm{}, fmt.Errorf("validation failed: %w", err)
	}
	return form, nil
}

// ParseID reads a positive integer path parameter.
func (rv *RequestValidator) ParseID(c *gin.Context, param string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id < 1 {
		return 0, errors.New("invalid " + param)
	}
	return id, nil
}

// ParseQuantity binds a quantity change. Range checks belong to the cart.
func (rv *RequestValidator) ParseQuantity(c *gin.Context) (int, error) {
	var req models.SetQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return 0, fmt.Errorf("invalid quantity: %w", err)
	}
	return req.Quantity, nil
}

func (rv *RequestValidator) ParseAddToCart(c *gin.Context) (int64, error) {
	var req models.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return 0, fmt.Errorf("invalid request: %w", err)
	}
	if req.ProductID < 1 {
		return 0, errors.New("invalid productId")
	}
	return req.ProductID, nil
}

func (rv *RequestValidator) ParseLogin(c *gin.Context) (models.LoginRequest, error) {
	var req models.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		return models.LoginRequest{}, fmt.Errorf("invalid credentials payload: %w", err)
	}
	req.Email = strings.TrimSpace(req.Email)
	return req, nil
}
