package mock

import (
	"context"
	"fmt"
	"strconv"

	"github.com/composable-commerce/storefront/internal/commerce"
	"github.com/composable-commerce/storefront/pkg/types"
)

// Cart loads a cart by id
func (c *Commerce) Cart(_ context.Context, cartID string) (types.Cart, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.record("Cart", cartID); err != nil {
		return types.Cart{}, err
	}
	cart, ok := c.carts[cartID]
	if !ok {
		return types.Cart{}, fmt.Errorf("cart %q: %w", cartID, commerce.ErrNotFound)
	}
	return *cart, nil
}

// CartCreate creates a cart holding lines
func (c *Commerce) CartCreate(_ context.Context, lines []types.CartLineInput) (types.Cart, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.record("CartCreate", lines); err != nil {
		return types.Cart{}, err
	}

	cart := &types.Cart{ID: c.id("Cart")}
	cart.CheckoutURL = c.shop.PrimaryDomain.URL + "/checkouts/" + strconv.Itoa(c.nextID)
	if err := c.addLines(cart, lines); err != nil {
		return types.Cart{}, err
	}
	c.carts[cart.ID] = cart
	return *cart, nil
}

// CartLinesAdd adds lines, merging with existing lines of the same variant
func (c *Commerce) CartLinesAdd(_ context.Context, cartID string, lines []types.CartLineInput) (types.Cart, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.record("CartLinesAdd", cartID, lines); err != nil {
		return types.Cart{}, err
	}
	cart, ok := c.carts[cartID]
	if !ok {
		return types.Cart{}, fmt.Errorf("cart %q: %w", cartID, commerce.ErrNotFound)
	}
	if err := c.addLines(cart, lines); err != nil {
		return types.Cart{}, err
	}
	return *cart, nil
}

// CartLinesUpdate sets line quantities; zero removes the line
func (c *Commerce) CartLinesUpdate(_ context.Context, cartID string, lines []types.CartLineUpdateInput) (types.Cart, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.record("CartLinesUpdate", cartID, lines); err != nil {
		return types.Cart{}, err
	}
	cart, ok := c.carts[cartID]
	if !ok {
		return types.Cart{}, fmt.Errorf("cart %q: %w", cartID, commerce.ErrNotFound)
	}

	for _, in := range lines {
		idx := lineIndex(cart, in.ID)
		if idx < 0 {
			return types.Cart{}, commerce.UserErrors{{Field: []string{"lines"}, Message: "The merchandise line was not found in the cart.", Code: "INVALID"}}
		}
		if in.Quantity <= 0 {
			cart.Lines.Nodes = append(cart.Lines.Nodes[:idx], cart.Lines.Nodes[idx+1:]...)
			continue
		}
		cart.Lines.Nodes[idx].Quantity = in.Quantity
	}
	c.total(cart)
	return *cart, nil
}

// CartLinesRemove drops lines by id
func (c *Commerce) CartLinesRemove(_ context.Context, cartID string, lineIDs []string) (types.Cart, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.record("CartLinesRemove", cartID, lineIDs); err != nil {
		return types.Cart{}, err
	}
	cart, ok := c.carts[cartID]
	if !ok {
		return types.Cart{}, fmt.Errorf("cart %q: %w", cartID, commerce.ErrNotFound)
	}

	for _, id := range lineIDs {
		if idx := lineIndex(cart, id); idx >= 0 {
			cart.Lines.Nodes = append(cart.Lines.Nodes[:idx], cart.Lines.Nodes[idx+1:]...)
		}
	}
	c.total(cart)
	return *cart, nil
}

func (c *Commerce) addLines(cart *types.Cart, lines []types.CartLineInput) error {
	for _, in := range lines {
		v, ok := c.variant(in.MerchandiseID)
		if !ok {
			return commerce.UserErrors{{Field: []string{"lines", "merchandiseId"}, Message: "The merchandise does not exist.", Code: "INVALID"}}
		}
		if !v.AvailableForSale {
			return commerce.UserErrors{{Field: []string{"lines"}, Message: "The product is sold out.", Code: "MERCHANDISE_NOT_ENOUGH_STOCK"}}
		}

		merged := false
		for i := range cart.Lines.Nodes {
			if cart.Lines.Nodes[i].Merchandise.ID == v.ID {
				cart.Lines.Nodes[i].Quantity += in.Quantity
				merged = true
				break
			}
		}
		if !merged {
			cart.Lines.Nodes = append(cart.Lines.Nodes, types.CartLine{ID: c.id("CartLine"), Quantity: in.Quantity, Merchandise: v})
		}
	}
	c.total(cart)
	return nil
}

func (c *Commerce) variant(id string) (types.Variant, bool) {
	for _, variants := range c.variants {
		for _, v := range variants {
			if v.ID == id {
				return v, true
			}
		}
	}
	return types.Variant{}, false
}

func lineIndex(cart *types.Cart, id string) int {
	for i, line := range cart.Lines.Nodes {
		if line.ID == id {
			return i
		}
	}
	return -1
}

// total recomputes quantities and costs in cents
func (c *Commerce) total(cart *types.Cart) {
	var quantity int
	var cents int64
	for i := range cart.Lines.Nodes {
		line := &cart.Lines.Nodes[i]
		lineCents := toCents(line.Merchandise.Price.Amount) * int64(line.Quantity)
		line.Cost.TotalAmount = money(fromCents(lineCents))
		quantity += line.Quantity
		cents += lineCents
	}
	cart.TotalQuantity = quantity
	cart.Cost.SubtotalAmount = money(fromCents(cents))
	cart.Cost.TotalAmount = money(fromCents(cents))
}

func toCents(amount string) int64 {
	f, err := strconv.ParseFloat(amount, 64)
	if err != nil {
		return 0
	}
	return int64(f*100 + 0.5)
}

func fromCents(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}
