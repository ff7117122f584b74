package commerce

import (
	"context"
	"errors"
	"fmt"

	"github.com/composable-commerce/storefront/pkg/types"
)

// ErrUnauthenticated is returned when a customer access token is missing,
// expired or revoked.
var ErrUnauthenticated = errors.New("customer not authenticated")

// CustomerAccessTokenCreate exchanges credentials for an access token
func (c *Client) CustomerAccessTokenCreate(ctx context.Context, email, password string) (types.CustomerAccessToken, error) {
	var data struct {
		Result struct {
			CustomerAccessToken *types.CustomerAccessToken `json:"customerAccessToken"`
			CustomerUserErrors  []types.UserError          `json:"customerUserErrors"`
		} `json:"result"`
	}
	vars := map[string]any{"input": map[string]string{"email": email, "password": password}}
	if err := c.Query(ctx, customerAccessTokenCreateMutation, vars, &data); err != nil {
		return types.CustomerAccessToken{}, err
	}
	if len(data.Result.CustomerUserErrors) > 0 {
		return types.CustomerAccessToken{}, UserErrors(data.Result.CustomerUserErrors)
	}
	if data.Result.CustomerAccessToken == nil {
		return types.CustomerAccessToken{}, ErrUnauthenticated
	}
	return *data.Result.CustomerAccessToken, nil
}

// CustomerAccessTokenDelete revokes an access token
func (c *Client) CustomerAccessTokenDelete(ctx context.Context, token string) error {
	return c.Query(ctx, customerAccessTokenDeleteMutation, map[string]any{"customerAccessToken": token}, nil)
}

// Customer loads the customer behind an access token with recent orders
func (c *Client) Customer(ctx context.Context, token string) (types.Customer, error) {
	var data struct {
		Customer *types.Customer `json:"customer"`
	}
	if err := c.Query(ctx, customerQuery, map[string]any{"customerAccessToken": token}, &data); err != nil {
		return types.Customer{}, err
	}
	if data.Customer == nil {
		return types.Customer{}, ErrUnauthenticated
	}
	return *data.Customer, nil
}

// CustomerUpdate changes profile fields. A password change rotates the
// access token, so the new token is returned when the API issues one.
func (c *Client) CustomerUpdate(ctx context.Context, token string, input types.CustomerUpdateInput) (types.Customer, *types.CustomerAccessToken, error) {
	var data struct {
		Result struct {
			Customer            *types.Customer            `json:"customer"`
			CustomerAccessToken *types.CustomerAccessToken `json:"customerAccessToken"`
			CustomerUserErrors  []types.UserError          `json:"customerUserErrors"`
		} `json:"result"`
	}
	vars := map[string]any{"customerAccessToken": token, "customer": input}
	if err := c.Query(ctx, customerUpdateMutation, vars, &data); err != nil {
		return types.Customer{}, nil, err
	}
	if len(data.Result.CustomerUserErrors) > 0 {
		return types.Customer{}, nil, UserErrors(data.Result.CustomerUserErrors)
	}
	if data.Result.Customer == nil {
		return types.Customer{}, nil, fmt.Errorf("customer update: %w", ErrUnauthenticated)
	}
	return *data.Result.Customer, data.Result.CustomerAccessToken, nil
}
