// Package commerce is a client for the storefront GraphQL API: catalog,
// metaobject content, carts and customer accounts.
package commerce

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"resty.dev/v3"
)

// ErrNotFound is returned when a requested handle or id resolves to nothing
var ErrNotFound = errors.New("not found")

// Options configures a Client
type Options struct {
	StoreDomain string
	PublicToken string
	APIVersion  string
	Timeout     time.Duration
	Language    string
	Country     string

	// Endpoint overrides the URL derived from StoreDomain and APIVersion
	Endpoint string
}

// Client posts GraphQL operations to the storefront API
type Client struct {
	http          *resty.Client
	endpoint      string
	defaultLocale Locale
}

// NewClient creates a storefront API client
func NewClient(opts Options) *Client {
	endpoint := opts.Endpoint
	if endpoint == "" {
		domain := strings.TrimSuffix(strings.TrimPrefix(strings.TrimPrefix(opts.StoreDomain, "https://"), "http://"), "/")
		endpoint = fmt.Sprintf("https://%s/api/%s/graphql.json", domain, opts.APIVersion)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	httpClient := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("X-Shopify-Storefront-Access-Token", opts.PublicToken)

	return &Client{
		http:          httpClient,
		endpoint:      endpoint,
		defaultLocale: Locale{Language: strings.ToUpper(opts.Language), Country: strings.ToUpper(opts.Country)},
	}
}

// Close releases idle connections
func (c *Client) Close() error {
	return c.http.Close()
}

// Endpoint returns the GraphQL URL requests are sent to
func (c *Client) Endpoint() string {
	return c.endpoint
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors"`
}

// GraphQLError is one entry of a GraphQL errors array
type GraphQLError struct {
	Message string `json:"message"`
	Path    []any  `json:"path,omitempty"`
}

// QueryError is returned when the API answers with GraphQL errors
type QueryError struct {
	Operation string
	Errors    []GraphQLError
}

func (e *QueryError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, ge := range e.Errors {
		msgs = append(msgs, ge.Message)
	}
	return fmt.Sprintf("%s: %s", e.Operation, strings.Join(msgs, "; "))
}

// Query runs a GraphQL operation and decodes its data into out. Queries
// using @inContext get the request locale injected as $country/$language.
func (c *Client) Query(ctx context.Context, query string, vars map[string]any, out any) error {
	if vars == nil {
		vars = map[string]any{}
	}
	if strings.Contains(query, "$country") {
		locale := LocaleFromContext(ctx, c.defaultLocale)
		if _, ok := vars["country"]; !ok && locale.Country != "" {
			vars["country"] = locale.Country
		}
		if _, ok := vars["language"]; !ok && locale.Language != "" {
			vars["language"] = locale.Language
		}
	}

	operation := operationName(query)

	var result graphQLResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(graphQLRequest{Query: query, Variables: vars}).
		SetResult(&result).
		Post(c.endpoint)
	if err != nil {
		return fmt.Errorf("%s: request failed: %w", operation, err)
	}
	if resp.IsError() {
		return fmt.Errorf("%s: unexpected status %d", operation, resp.StatusCode())
	}
	if len(result.Errors) > 0 {
		return &QueryError{Operation: operation, Errors: result.Errors}
	}
	if out == nil || len(result.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(result.Data, out); err != nil {
		return fmt.Errorf("%s: failed to decode data: %w", operation, err)
	}
	return nil
}

// operationName extracts the name after "query"/"mutation" for error messages
func operationName(query string) string {
	fields := strings.Fields(query)
	for i, f := range fields {
		if (f == "query" || f == "mutation") && i+1 < len(fields) {
			name := fields[i+1]
			if idx := strings.IndexAny(name, "({"); idx >= 0 {
				name = name[:idx]
			}
			if name != "" {
				return name
			}
		}
	}
	return "graphql"
}
