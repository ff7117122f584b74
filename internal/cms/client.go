// Package cms fetches structured content entries from the headless CMS
// delivery API and exposes them as field sets.
package cms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"resty.dev/v3"

	"github.com/composable-commerce/storefront/internal/fields"
)

// ErrNoEntry is returned when a content type has no published entry
var ErrNoEntry = errors.New("no entry")

// Options configures a Client
type Options struct {
	Host          string
	APIKey        string
	DeliveryToken string
	Environment   string
	Timeout       time.Duration
	CacheTTL      time.Duration

	// BaseURL overrides https://{Host}/v3
	BaseURL string
}

// Entry is one published CMS entry
type Entry struct {
	UID    string
	Title  string
	Fields fields.FieldSet
}

// Client reads entries from the delivery API
type Client struct {
	http        *resty.Client
	baseURL     string
	environment string
	cache       *cache
}

// NewClient creates a delivery API client
func NewClient(opts Options) *Client {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s/v3", strings.TrimSuffix(opts.Host, "/"))
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	httpClient := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeader("api_key", opts.APIKey).
		SetHeader("access_token", opts.DeliveryToken)

	return &Client{
		http:        httpClient,
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		environment: opts.Environment,
		cache:       newCache(opts.CacheTTL),
	}
}

// Close releases idle connections
func (c *Client) Close() error {
	return c.http.Close()
}

// FetchEntry returns the first entry of a content type
func (c *Client) FetchEntry(ctx context.Context, contentType string) (Entry, error) {
	key := contentType
	if entry, ok := c.cache.get(key); ok {
		return entry, nil
	}

	var result struct {
		Entries []json.RawMessage `json:"entries"`
	}
	path := fmt.Sprintf("/content_types/%s/entries", url.PathEscape(contentType))
	if err := c.get(ctx, path, &result); err != nil {
		return Entry{}, err
	}
	if len(result.Entries) == 0 {
		return Entry{}, fmt.Errorf("content type %q: %w", contentType, ErrNoEntry)
	}

	entry, err := decodeEntry(result.Entries[0])
	if err != nil {
		return Entry{}, fmt.Errorf("content type %q: %w", contentType, err)
	}
	c.cache.put(key, entry)
	return entry, nil
}

// FetchEntryByUID returns one entry of a content type
func (c *Client) FetchEntryByUID(ctx context.Context, contentType, uid string) (Entry, error) {
	key := contentType + "/" + uid
	if entry, ok := c.cache.get(key); ok {
		return entry, nil
	}

	var result struct {
		Entry json.RawMessage `json:"entry"`
	}
	path := fmt.Sprintf("/content_types/%s/entries/%s", url.PathEscape(contentType), url.PathEscape(uid))
	if err := c.get(ctx, path, &result); err != nil {
		return Entry{}, err
	}
	if len(result.Entry) == 0 || string(result.Entry) == "null" {
		return Entry{}, fmt.Errorf("entry %s/%s: %w", contentType, uid, ErrNoEntry)
	}

	entry, err := decodeEntry(result.Entry)
	if err != nil {
		return Entry{}, fmt.Errorf("entry %s/%s: %w", contentType, uid, err)
	}
	c.cache.put(key, entry)
	return entry, nil
}

// StatusError is a non-2xx answer from the delivery API
type StatusError struct {
	Status int
	Path   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("cms: %s: unexpected status %d", e.Path, e.Status)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req := c.http.R().
		SetContext(ctx).
		SetResult(out)
	if c.environment != "" {
		req.SetQueryParam("environment", c.environment)
	}

	resp, err := req.Get(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("cms request failed: %w", err)
	}
	if resp.IsError() {
		statusErr := &StatusError{Status: resp.StatusCode(), Path: path}
		if statusErr.Status == http.StatusNotFound {
			return fmt.Errorf("%w: %w", ErrNoEntry, statusErr)
		}
		return statusErr
	}
	return nil
}

func decodeEntry(raw json.RawMessage) (Entry, error) {
	fs, err := fields.DecodeEntry(raw)
	if err != nil {
		return Entry{}, err
	}
	return Entry{
		UID:    fs.String("uid"),
		Title:  fs.String("title"),
		Fields: fs,
	}, nil
}

// cache holds decoded entries for a fixed TTL. A zero TTL disables it.
type cache struct {
	ttl     time.Duration
	now     func() time.Time
	mu      sync.RWMutex
	entries map[string]cachedEntry
}

type cachedEntry struct {
	entry   Entry
	expires time.Time
}

func newCache(ttl time.Duration) *cache {
	return &cache{ttl: ttl, now: time.Now, entries: make(map[string]cachedEntry)}
}

func (c *cache) get(key string) (Entry, bool) {
	if c.ttl <= 0 {
		return Entry{}, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	cached, ok := c.entries[key]
	if !ok || c.now().After(cached.expires) {
		return Entry{}, false
	}
	return cached.entry, true
}

func (c *cache) put(key string, entry Entry) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cachedEntry{entry: entry, expires: c.now().Add(c.ttl)}
}
