// Package cart holds the line quantity state and the cart form protocol.
package cart

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/composable-commerce/storefront/internal/validation"
	"github.com/composable-commerce/storefront/pkg/types"
)

// Quantity is a cart line quantity. The zero value is treated as 1.
type Quantity struct {
	n int
}

// NewQuantity clamps n into [1, validation.MaxQuantity]
func NewQuantity(n int) Quantity {
	switch {
	case n < 1:
		n = 1
	case n > validation.MaxQuantity:
		n = validation.MaxQuantity
	}
	return Quantity{n: n}
}

// Value returns the quantity as an int
func (q Quantity) Value() int {
	if q.n < 1 {
		return 1
	}
	return q.n
}

// Increment returns the next quantity, saturating at the maximum
func (q Quantity) Increment() Quantity { return NewQuantity(q.Value() + 1) }

// Decrement returns the previous quantity, never below 1
func (q Quantity) Decrement() Quantity { return NewQuantity(q.Value() - 1) }

// CanDecrement reports whether Decrement changes the quantity
func (q Quantity) CanDecrement() bool { return q.Value() > 1 }

// CanIncrement reports whether Increment changes the quantity
func (q Quantity) CanIncrement() bool { return q.Value() < validation.MaxQuantity }

func (q Quantity) String() string { return fmt.Sprint(q.Value()) }

// ParseQuantity reads a form quantity; empty means 1
func ParseQuantity(raw string) (Quantity, error) {
	n, err := validation.NewValidator().ParseQuantity(raw)
	if err != nil {
		return Quantity{}, err
	}
	return NewQuantity(n), nil
}

// Action is a cart mutation requested by a form post
type Action string

// Supported cart actions
const (
	LinesAdd    Action = "LinesAdd"
	LinesUpdate Action = "LinesUpdate"
	LinesRemove Action = "LinesRemove"
)

// ParseAction validates the cartAction form value
func ParseAction(raw string) (Action, error) {
	switch a := Action(strings.TrimSpace(raw)); a {
	case LinesAdd, LinesUpdate, LinesRemove:
		return a, nil
	default:
		return "", fmt.Errorf("unsupported cart action %q", raw)
	}
}

// Request is a decoded cart form post
type Request struct {
	Action        Action
	MerchandiseID string
	LineID        string
	Quantity      Quantity
	RedirectTo    string
}

// ParseForm decodes and validates a cart form post
func ParseForm(form url.Values) (Request, error) {
	action, err := ParseAction(form.Get("cartAction"))
	if err != nil {
		return Request{}, err
	}

	v := validation.NewValidator()
	req := Request{Action: action}

	switch action {
	case LinesAdd:
		req.MerchandiseID = strings.TrimSpace(form.Get("merchandiseId"))
		if err := v.ValidateGID(req.MerchandiseID); err != nil {
			return Request{}, fmt.Errorf("merchandiseId: %w", err)
		}
	case LinesUpdate, LinesRemove:
		req.LineID = strings.TrimSpace(form.Get("lineId"))
		if err := v.ValidateGID(req.LineID); err != nil {
			return Request{}, fmt.Errorf("lineId: %w", err)
		}
	}

	if action != LinesRemove {
		if req.Quantity, err = ParseQuantity(form.Get("quantity")); err != nil {
			return Request{}, err
		}
	}

	if target := form.Get("redirectTo"); target != "" && v.ValidateRedirect(target) == nil {
		req.RedirectTo = target
	}
	return req, nil
}

// AddLines is the mutation input for a LinesAdd request
func (r Request) AddLines() []types.CartLineInput {
	return []types.CartLineInput{{MerchandiseID: r.MerchandiseID, Quantity: r.Quantity.Value()}}
}

// UpdateLines is the mutation input for a LinesUpdate request
func (r Request) UpdateLines() []types.CartLineUpdateInput {
	return []types.CartLineUpdateInput{{ID: r.LineID, Quantity: r.Quantity.Value()}}
}
