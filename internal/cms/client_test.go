package cms

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/composable-commerce/storefront/internal/fields"
)

const homeEntry = `{
  "uid": "blt123",
  "title": "Home",
  "banner": {
    "uid": "bltbanner",
    "heading": "Summer",
    "buttons": [
      {"title": "Shop", "url": "/collections/all", "open_in_new_tab": false}
    ]
  },
  "hero_image": {"uid": "bltimg", "url": "https://images.example.com/hero.jpg", "filename": "hero.jpg"}
}`

type fakeCMS struct {
	hits    atomic.Int32
	status  int
	body    string
	lastReq *http.Request
}

func (f *fakeCMS) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.hits.Add(1)
	f.lastReq = r.Clone(context.Background())
	w.Header().Set("Content-Type", "application/json")
	if f.status != 0 {
		w.WriteHeader(f.status)
	}
	_, _ = w.Write([]byte(f.body))
}

func newTestClient(t *testing.T, fake *fakeCMS, ttl time.Duration) *Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client := NewClient(Options{
		APIKey:        "blt-key",
		DeliveryToken: "cs-token",
		Environment:   "production",
		CacheTTL:      ttl,
		BaseURL:       srv.URL + "/v3",
	})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestFetchEntry(t *testing.T) {
	fake := &fakeCMS{body: `{"entries":[` + homeEntry + `]}`}
	client := newTestClient(t, fake, 0)

	entry, err := client.FetchEntry(context.Background(), "shopify_home")
	require.NoError(t, err)

	assert.Equal(t, "blt123", entry.UID)
	assert.Equal(t, "Home", entry.Title)
	assert.Equal(t, "Summer", entry.Fields.Ref("banner").String("heading"))

	buttons := entry.Fields.Ref("banner").Refs("buttons")
	require.Len(t, buttons, 1)
	assert.Equal(t, "/collections/all", buttons[0].Fields.String("url"))
	assert.False(t, buttons[0].Fields.Flag("open_in_new_tab"))

	url, ok := entry.Fields.MediaURL("hero_image")
	assert.True(t, ok)
	assert.Equal(t, "https://images.example.com/hero.jpg", url)

	assert.Equal(t, "/v3/content_types/shopify_home/entries", fake.lastReq.URL.Path)
	assert.Equal(t, "production", fake.lastReq.URL.Query().Get("environment"))
	assert.Equal(t, "blt-key", fake.lastReq.Header.Get("api_key"))
	assert.Equal(t, "cs-token", fake.lastReq.Header.Get("access_token"))
}

func TestFetchEntryEmpty(t *testing.T) {
	client := newTestClient(t, &fakeCMS{body: `{"entries":[]}`}, 0)

	_, err := client.FetchEntry(context.Background(), "shopify_home")
	assert.True(t, errors.Is(err, ErrNoEntry))
}

func TestFetchEntryByUID(t *testing.T) {
	fake := &fakeCMS{body: `{"entry":{"uid":"bltb5740faf62d6dde3","title":"Pages","heading":"About us","description":null}}`}
	client := newTestClient(t, fake, 0)

	entry, err := client.FetchEntryByUID(context.Background(), "pages_shopify", "bltb5740faf62d6dde3")
	require.NoError(t, err)
	assert.Equal(t, "About us", entry.Fields.String("heading"))

	_, ok := entry.Fields.Leaf("description")
	assert.False(t, ok)
	assert.Equal(t, "/v3/content_types/pages_shopify/entries/bltb5740faf62d6dde3", fake.lastReq.URL.Path)
}

func TestFetchErrors(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		client := newTestClient(t, &fakeCMS{status: http.StatusNotFound, body: `{"error_code":141}`}, 0)
		_, err := client.FetchEntryByUID(context.Background(), "pages_shopify", "missing")
		assert.True(t, errors.Is(err, ErrNoEntry))
	})

	t.Run("unauthorized", func(t *testing.T) {
		client := newTestClient(t, &fakeCMS{status: http.StatusUnauthorized, body: `{}`}, 0)
		_, err := client.FetchEntry(context.Background(), "shopify_home")

		var statusErr *StatusError
		require.True(t, errors.As(err, &statusErr))
		assert.Equal(t, http.StatusUnauthorized, statusErr.Status)
		assert.False(t, errors.Is(err, ErrNoEntry))
	})

	t.Run("null entry", func(t *testing.T) {
		client := newTestClient(t, &fakeCMS{body: `{"entry":null}`}, 0)
		_, err := client.FetchEntryByUID(context.Background(), "pages_shopify", "x")
		assert.True(t, errors.Is(err, ErrNoEntry))
	})
}

func TestCache(t *testing.T) {
	t.Run("serves from cache within ttl", func(t *testing.T) {
		fake := &fakeCMS{body: `{"entries":[` + homeEntry + `]}`}
		client := newTestClient(t, fake, time.Minute)

		for i := 0; i < 3; i++ {
			_, err := client.FetchEntry(context.Background(), "shopify_home")
			require.NoError(t, err)
		}
		assert.EqualValues(t, 1, fake.hits.Load())
	})

	t.Run("expires", func(t *testing.T) {
		fake := &fakeCMS{body: `{"entries":[` + homeEntry + `]}`}
		client := newTestClient(t, fake, time.Minute)

		now := time.Now()
		client.cache.now = func() time.Time { return now }
		_, err := client.FetchEntry(context.Background(), "shopify_home")
		require.NoError(t, err)

		now = now.Add(2 * time.Minute)
		_, err = client.FetchEntry(context.Background(), "shopify_home")
		require.NoError(t, err)
		assert.EqualValues(t, 2, fake.hits.Load())
	})

	t.Run("disabled", func(t *testing.T) {
		fake := &fakeCMS{body: `{"entries":[` + homeEntry + `]}`}
		client := newTestClient(t, fake, 0)

		for i := 0; i < 2; i++ {
			_, err := client.FetchEntry(context.Background(), "shopify_home")
			require.NoError(t, err)
		}
		assert.EqualValues(t, 2, fake.hits.Load())
	})
}

func TestDecodeEntryKinds(t *testing.T) {
	entry, err := decodeEntry([]byte(homeEntry))
	require.NoError(t, err)

	banner, ok := entry.Fields.Find("banner")
	require.True(t, ok)
	assert.Equal(t, fields.KindSingleReference, banner.Kind)

	hero, ok := entry.Fields.Find("hero_image")
	require.True(t, ok)
	assert.Equal(t, fields.KindMedia, hero.Kind)
}
