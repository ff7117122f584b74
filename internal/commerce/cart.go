package commerce

import (
	"context"
	"fmt"
	"strings"

	"github.com/composable-commerce/storefront/pkg/types"
)

// UserErrors are validation failures reported by a mutation
type UserErrors []types.UserError

func (e UserErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, ue := range e {
		msgs = append(msgs, ue.Message)
	}
	return strings.Join(msgs, "; ")
}

type cartPayload struct {
	Result struct {
		Cart       *types.Cart       `json:"cart"`
		UserErrors []types.UserError `json:"userErrors"`
	} `json:"result"`
}

func (p cartPayload) cart() (types.Cart, error) {
	if len(p.Result.UserErrors) > 0 {
		return types.Cart{}, UserErrors(p.Result.UserErrors)
	}
	if p.Result.Cart == nil {
		return types.Cart{}, fmt.Errorf("cart: %w", ErrNotFound)
	}
	return *p.Result.Cart, nil
}

// Cart loads a cart by id
func (c *Client) Cart(ctx context.Context, cartID string) (types.Cart, error) {
	var data struct {
		Cart *types.Cart `json:"cart"`
	}
	if err := c.Query(ctx, cartQuery, map[string]any{"cartId": cartID}, &data); err != nil {
		return types.Cart{}, err
	}
	if data.Cart == nil {
		return types.Cart{}, fmt.Errorf("cart %q: %w", cartID, ErrNotFound)
	}
	return *data.Cart, nil
}

// CartCreate creates a cart holding lines
func (c *Client) CartCreate(ctx context.Context, lines []types.CartLineInput) (types.Cart, error) {
	var data cartPayload
	if err := c.Query(ctx, cartCreateMutation, map[string]any{"lines": lines}, &data); err != nil {
		return types.Cart{}, err
	}
	return data.cart()
}

// CartLinesAdd adds merchandise to an existing cart
func (c *Client) CartLinesAdd(ctx context.Context, cartID string, lines []types.CartLineInput) (types.Cart, error) {
	var data cartPayload
	if err := c.Query(ctx, cartLinesAddMutation, map[string]any{"cartId": cartID, "lines": lines}, &data); err != nil {
		return types.Cart{}, err
	}
	return data.cart()
}

// CartLinesUpdate changes line quantities
func (c *Client) CartLinesUpdate(ctx context.Context, cartID string, lines []types.CartLineUpdateInput) (types.Cart, error) {
	var data cartPayload
	if err := c.Query(ctx, cartLinesUpdateMutation, map[string]any{"cartId": cartID, "lines": lines}, &data); err != nil {
		return types.Cart{}, err
	}
	return data.cart()
}

// CartLinesRemove removes lines from a cart
func (c *Client) CartLinesRemove(ctx context.Context, cartID string, lineIDs []string) (types.Cart, error) {
	var data cartPayload
	if err := c.Query(ctx, cartLinesRemoveMutation, map[string]any{"cartId": cartID, "lineIds": lineIDs}, &data); err != nil {
		return types.Cart{}, err
	}
	return data.cart()
}
