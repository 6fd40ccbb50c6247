package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

type Product struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	ImageURL    string  `json:"image"`
	Discount    float64 `json:"discount"`
	Stock       int     `json:"stock"`
}

// FlexNumber accepts a JSON number, a numeric string, or an empty string (zero).
// Form inputs produce either representation.
type FlexNumber float64

func (n *FlexNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*n = 0
		return nil
	}

	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		return n.parse(s)
	}

	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("invalid number %s", string(b))
	}
	return n.set(f, string(b))
}

// UnmarshalParam binds form values; gin calls it instead of its own float parsing.
func (n *FlexNumber) UnmarshalParam(param string) error {
	return n.parse(param)
}

func (n *FlexNumber) parse(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		*n = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid number %q", s)
	}
	return n.set(f, s)
}

// set rejects values that cannot be sent as JSON.
func (n *FlexNumber) set(f float64, raw string) error {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return fmt.Errorf("invalid number %q", raw)
	}
	*n = FlexNumber(f)
	return nil
}

// ProductForm is the create/update input. Numeric fields are normalized by Product.
type ProductForm struct {
	Name        string     `json:"name" form:"name" validate:"required"`
	Price       FlexNumber `json:"price" form:"price" validate:"gte=0"`
	Description string     `json:"description" form:"description"`
	ImageURL    string     `json:"image" form:"image"`
	Discount    FlexNumber `json:"discount" form:"discount" validate:"gte=0"`
	Stock       FlexNumber `json:"stock" form:"stock" validate:"gte=0,lte=2147483647,whole"`
}

// Product converts the form into the wire representation sent to the backend.
// Stock must already be validated as a whole number that fits an int32.
func (f ProductForm) Product() Product {
	return Product{
		Name:        strings.TrimSpace(f.Name),
		Price:       float64(f.Price),
		Description: f.Description,
		ImageURL:    strings.TrimSpace(f.ImageURL),
		Discount:    float64(f.Discount),
		Stock:       int(f.Stock),
	}
}

// ProductPayload is the body of POST /products and PATCH /products/{id}.
type ProductPayload struct {
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	ImageURL    string  `json:"image"`
	Discount    float64 `json:"discount"`
	Stock       int     `json:"stock"`
}

func (p Product) Payload() ProductPayload {
	return ProductPayload{
		Name:        p.Name,
		Price:       p.Price,
		Description: p.Description,
		ImageURL:    p.ImageURL,
		Discount:    p.Discount,
		Stock:       p.Stock,
	}
}
