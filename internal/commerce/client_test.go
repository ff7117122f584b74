package commerce

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/composable-commerce/storefront/pkg/types"
)

type recordedRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// fakeAPI answers every request with the next canned body and records what
// it was sent.
type fakeAPI struct {
	mu       sync.Mutex
	status   int
	bodies   []string
	requests []recordedRequest
	headers  []http.Header
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var req recordedRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	f.requests = append(f.requests, req)
	f.headers = append(f.headers, r.Header.Clone())

	body := `{"data":{}}`
	if len(f.bodies) > 0 {
		body = f.bodies[0]
		if len(f.bodies) > 1 {
			f.bodies = f.bodies[1:]
		}
	}
	w.Header().Set("Content-Type", "application/json")
	if f.status != 0 {
		w.WriteHeader(f.status)
	}
	_, _ = w.Write([]byte(body))
}

func newTestClient(t *testing.T, bodies ...string) (*Client, *fakeAPI) {
	t.Helper()
	api := &fakeAPI{bodies: bodies}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	client := NewClient(Options{
		PublicToken: "public-token",
		Language:    "en",
		Country:     "us",
		Endpoint:    srv.URL,
	})
	t.Cleanup(func() { _ = client.Close() })
	return client, api
}

func TestNewClientEndpoint(t *testing.T) {
	client := NewClient(Options{StoreDomain: "https://shop.example.com/", APIVersion: "2024-01"})
	defer client.Close()
	assert.Equal(t, "https://shop.example.com/api/2024-01/graphql.json", client.Endpoint())
}

func TestQuerySendsTokenAndLocale(t *testing.T) {
	client, api := newTestClient(t, `{"data":{"products":{"nodes":[{"id":"gid://shopify/Product/1","title":"Tee"}]}}}`)

	products, err := client.LatestProducts(context.Background(), 4)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Tee", products[0].Title)

	require.Len(t, api.requests, 1)
	assert.Equal(t, "public-token", api.headers[0].Get("X-Shopify-Storefront-Access-Token"))
	assert.Equal(t, "US", api.requests[0].Variables["country"])
	assert.Equal(t, "EN", api.requests[0].Variables["language"])
	assert.EqualValues(t, 4, api.requests[0].Variables["first"])
}

func TestQueryUsesRequestLocale(t *testing.T) {
	client, api := newTestClient(t, `{"data":{"products":{"nodes":[]}}}`)

	ctx := WithLocale(context.Background(), Locale{Language: "FR", Country: "CA", PathPrefix: "/fr-ca"})
	_, err := client.LatestProducts(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, "CA", api.requests[0].Variables["country"])
	assert.Equal(t, "FR", api.requests[0].Variables["language"])
}

func TestQueryWithoutContextDirective(t *testing.T) {
	client, api := newTestClient(t, `{"data":{"shop":{"name":"Demo"}}}`)

	shop, err := client.Shop(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Demo", shop.Name)
	assert.NotContains(t, api.requests[0].Variables, "country")
}

func TestQueryErrors(t *testing.T) {
	t.Run("graphql errors", func(t *testing.T) {
		client, _ := newTestClient(t, `{"errors":[{"message":"Throttled"},{"message":"Try later"}]}`)

		_, err := client.Shop(context.Background())
		var qe *QueryError
		require.True(t, errors.As(err, &qe))
		assert.Equal(t, "Shop", qe.Operation)
		assert.Equal(t, "Shop: Throttled; Try later", err.Error())
	})

	t.Run("http status", func(t *testing.T) {
		client, api := newTestClient(t, `{}`)
		api.status = http.StatusUnauthorized

		_, err := client.Shop(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unexpected status 401")
	})
}

func TestFetchAllMetaobjectsPages(t *testing.T) {
	client, api := newTestClient(t,
		`{"data":{"metaobjects":{"nodes":[{"id":"1","handle":"a","type":"footer","fields":[{"key":"title","type":"single_line_text_field","value":"A"}]}],"pageInfo":{"hasNextPage":true,"endCursor":"c1"}}}}`,
		`{"data":{"metaobjects":{"nodes":[{"id":"2","handle":"b","type":"footer","fields":[]}],"pageInfo":{"hasNextPage":false,"endCursor":"c2"}}}}`,
	)

	all, err := client.FetchAllMetaobjects(context.Background(), "footer")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "A", all[0].Fields.String("title"))

	require.Len(t, api.requests, 2)
	assert.NotContains(t, api.requests[0].Variables, "after")
	assert.Equal(t, "c1", api.requests[1].Variables["after"])
	assert.EqualValues(t, metaobjectPageSize, api.requests[1].Variables["first"])
}

func TestMetaobjectNotFound(t *testing.T) {
	client, _ := newTestClient(t, `{"data":{"metaobjects":{"nodes":[],"pageInfo":{"hasNextPage":false}}}}`)

	_, err := client.Metaobject(context.Background(), "shopify_home")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestProduct(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		client, _ := newTestClient(t, `{"data":{"product":null}}`)
		_, err := client.Product(context.Background(), "missing", nil)
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("information metafield", func(t *testing.T) {
		client, api := newTestClient(t, `{"data":{"product":{
			"id":"gid://shopify/Product/1","title":"Tee","handle":"tee",
			"information":{"reference":{"id":"m1","fields":[{"key":"delivery_title","type":"single_line_text_field","value":"Free shipping"}]}}
		}}}`)

		detail, err := client.Product(context.Background(), "tee", []types.SelectedOption{{Name: "Size", Value: "M"}})
		require.NoError(t, err)
		assert.Equal(t, "Tee", detail.Title)
		assert.Equal(t, "Free shipping", detail.Information.String("delivery_title"))

		opts, ok := api.requests[0].Variables["selectedOptions"].([]any)
		require.True(t, ok)
		assert.Len(t, opts, 1)
	})

	t.Run("no metafield", func(t *testing.T) {
		client, api := newTestClient(t, `{"data":{"product":{"id":"1","title":"Tee","information":null}}}`)
		detail, err := client.Product(context.Background(), "tee", nil)
		require.NoError(t, err)
		assert.NotNil(t, detail.Information)
		assert.Empty(t, detail.Information)

		opts, ok := api.requests[0].Variables["selectedOptions"].([]any)
		require.True(t, ok)
		assert.Empty(t, opts)
	})
}

func TestCartMutations(t *testing.T) {
	t.Run("create", func(t *testing.T) {
		client, api := newTestClient(t, `{"data":{"result":{"cart":{"id":"cart-1","totalQuantity":2},"userErrors":[]}}}`)

		cart, err := client.CartCreate(context.Background(), []types.CartLineInput{{MerchandiseID: "v1", Quantity: 2}})
		require.NoError(t, err)
		assert.Equal(t, "cart-1", cart.ID)
		assert.Equal(t, 2, cart.TotalQuantity)
		assert.True(t, strings.HasPrefix(strings.TrimSpace(api.requests[0].Query), "mutation CartCreate"))
	})

	t.Run("user errors", func(t *testing.T) {
		client, _ := newTestClient(t, `{"data":{"result":{"cart":null,"userErrors":[{"field":["lines"],"message":"Quantity too high"}]}}}`)

		_, err := client.CartLinesUpdate(context.Background(), "cart-1", []types.CartLineUpdateInput{{ID: "l1", Quantity: 9999}})
		var ue UserErrors
		require.True(t, errors.As(err, &ue))
		assert.Equal(t, "Quantity too high", ue.Error())
	})

	t.Run("missing cart", func(t *testing.T) {
		client, _ := newTestClient(t, `{"data":{"cart":null}}`)
		_, err := client.Cart(context.Background(), "gone")
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("remove", func(t *testing.T) {
		client, api := newTestClient(t, `{"data":{"result":{"cart":{"id":"cart-1","totalQuantity":0},"userErrors":[]}}}`)
		cart, err := client.CartLinesRemove(context.Background(), "cart-1", []string{"l1"})
		require.NoError(t, err)
		assert.Zero(t, cart.TotalQuantity)
		assert.Equal(t, []any{"l1"}, api.requests[0].Variables["lineIds"])
	})
}

func TestCustomer(t *testing.T) {
	t.Run("login", func(t *testing.T) {
		client, _ := newTestClient(t, `{"data":{"result":{"customerAccessToken":{"accessToken":"tok","expiresAt":"2030-01-01T00:00:00Z"},"customerUserErrors":[]}}}`)
		token, err := client.CustomerAccessTokenCreate(context.Background(), "a@example.com", "hunter22")
		require.NoError(t, err)
		assert.Equal(t, "tok", token.AccessToken)
	})

	t.Run("bad credentials", func(t *testing.T) {
		client, _ := newTestClient(t, `{"data":{"result":{"customerAccessToken":null,"customerUserErrors":[{"message":"Unidentified customer","code":"UNIDENTIFIED_CUSTOMER"}]}}}`)
		_, err := client.CustomerAccessTokenCreate(context.Background(), "a@example.com", "wrong")
		var ue UserErrors
		require.True(t, errors.As(err, &ue))
		assert.Equal(t, "UNIDENTIFIED_CUSTOMER", ue[0].Code)
	})

	t.Run("expired token", func(t *testing.T) {
		client, _ := newTestClient(t, `{"data":{"customer":null}}`)
		_, err := client.Customer(context.Background(), "expired")
		assert.True(t, errors.Is(err, ErrUnauthenticated))
	})

	t.Run("update", func(t *testing.T) {
		client, api := newTestClient(t, `{"data":{"result":{"customer":{"id":"c1","firstName":"Ada"},"customerAccessToken":null,"customerUserErrors":[]}}}`)
		name := "Ada"
		customer, rotated, err := client.CustomerUpdate(context.Background(), "tok", types.CustomerUpdateInput{FirstName: &name})
		require.NoError(t, err)
		assert.Equal(t, "Ada", customer.FirstName)
		assert.Nil(t, rotated)

		sent, ok := api.requests[0].Variables["customer"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, map[string]any{"firstName": "Ada"}, sent)
	})
}

func TestOperationName(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{query: "query Shop { shop { id } }", want: "Shop"},
		{query: "mutation CartCreate($lines: [CartLineInput!]) {}", want: "CartCreate"},
		{query: "{ shop { id } }", want: "graphql"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, operationName(tt.query))
	}
}
