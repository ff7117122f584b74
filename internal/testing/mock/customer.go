package mock

import (
	"context"
	"fmt"

	"github.com/composable-commerce/storefront/internal/commerce"
	"github.com/composable-commerce/storefront/pkg/types"
)

// CustomerAccessTokenCreate checks credentials against the seeded customers
func (c *Commerce) CustomerAccessTokenCreate(_ context.Context, email, password string) (types.CustomerAccessToken, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.record("CustomerAccessTokenCreate", email); err != nil {
		return types.CustomerAccessToken{}, err
	}
	if want, ok := c.passwords[email]; !ok || want != password {
		return types.CustomerAccessToken{}, commerce.UserErrors{{Message: "Unidentified customer", Code: "UNIDENTIFIED_CUSTOMER"}}
	}
	for token, customer := range c.customers {
		if customer.Email == email {
			return types.CustomerAccessToken{AccessToken: token, ExpiresAt: "2099-01-01T00:00:00Z"}, nil
		}
	}
	return types.CustomerAccessToken{}, commerce.ErrUnauthenticated
}

// CustomerAccessTokenDelete records the revocation. Tokens stay valid so
// tests can log in again.
func (c *Commerce) CustomerAccessTokenDelete(_ context.Context, token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.record("CustomerAccessTokenDelete", token)
}

// Customer returns the customer behind token
func (c *Commerce) Customer(_ context.Context, token string) (types.Customer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.record("Customer", token); err != nil {
		return types.Customer{}, err
	}
	customer, ok := c.customers[token]
	if !ok {
		return types.Customer{}, commerce.ErrUnauthenticated
	}
	return customer, nil
}

// CustomerUpdate applies the non-nil fields of input. A password change
// rotates the token.
func (c *Commerce) CustomerUpdate(_ context.Context, token string, input types.CustomerUpdateInput) (types.Customer, *types.CustomerAccessToken, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.record("CustomerUpdate", token, input); err != nil {
		return types.Customer{}, nil, err
	}
	customer, ok := c.customers[token]
	if !ok {
		return types.Customer{}, nil, fmt.Errorf("customer update: %w", commerce.ErrUnauthenticated)
	}

	oldEmail := customer.Email
	if input.FirstName != nil {
		customer.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		customer.LastName = *input.LastName
	}
	if input.Email != nil {
		customer.Email = *input.Email
	}
	if input.Phone != nil {
		customer.Phone = *input.Phone
	}
	if input.AcceptsMarketing != nil {
		customer.AcceptsMarketing = *input.AcceptsMarketing
	}

	password := c.passwords[oldEmail]
	if input.Password != nil {
		password = *input.Password
	}
	delete(c.passwords, oldEmail)
	c.passwords[customer.Email] = password

	if input.Password == nil {
		c.customers[token] = customer
		return customer, nil, nil
	}

	delete(c.customers, token)
	rotated := types.CustomerAccessToken{AccessToken: token + "-rotated", ExpiresAt: "2099-01-01T00:00:00Z"}
	c.customers[rotated.AccessToken] = customer
	return customer, &rotated, nil
}
