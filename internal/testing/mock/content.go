package mock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/composable-commerce/storefront/internal/cms"
	"github.com/composable-commerce/storefront/internal/fields"
)

// Seeded CMS content types
const (
	HomeContentType  = "shopify_home"
	PagesContentType = "pages_shopify"
	PagesEntryUID    = "blt-pages"
)

// Content is an in-memory CMS
type Content struct {
	mu       sync.RWMutex
	entries  map[string][]cms.Entry
	failures map[string]error
	calls    []CapturedCall
}

// NewContent creates a CMS seeded with a home and a pages entry
func NewContent() *Content {
	c := &Content{
		entries:  make(map[string][]cms.Entry),
		failures: make(map[string]error),
	}
	c.loadTestData()
	return c
}

func cta(href, title string) fields.Node {
	return fields.Node{Fields: fields.FieldSet{
		fields.Ref("cta_title", "", fields.Text("href", href), fields.Text("title", title)),
	}}
}

func (c *Content) loadTestData() {
	c.entries[HomeContentType] = []cms.Entry{{UID: "blt-home", Title: "Home", Fields: fields.FieldSet{
		fields.Ref("banner", "",
			fields.Text("banner_heading", "Autumn"),
			fields.Text("banner_title", "Layer up"),
			fields.Text("banner_description", "<p>Wool is back.</p>"),
			fields.Ref("button", "", fields.Refs("repo", cta("/collections/all", "Browse"))),
		),
		fields.Text("feature_title", "Editor picks"),
		fields.Text("new_arrival_title", "Just landed"),
	}}}
	c.entries[PagesContentType] = []cms.Entry{{UID: PagesEntryUID, Title: "Pages", Fields: fields.FieldSet{
		fields.Text("heading", "Good to know"),
		fields.Text("description", "Answers to common questions"),
	}}}
}

// Fail makes every later call to method return err; a nil err clears it
func (c *Content) Fail(method string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err == nil {
		delete(c.failures, method)
		return
	}
	c.failures[method] = err
}

// Calls returns the recorded calls to method
func (c *Content) Calls(method string) []CapturedCall {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []CapturedCall
	for _, call := range c.calls {
		if method == "" || call.Method == method {
			out = append(out, call)
		}
	}
	return out
}

func (c *Content) record(method string, args ...interface{}) error {
	c.calls = append(c.calls, CapturedCall{Method: method, Args: args, Timestamp: time.Now()})
	return c.failures[method]
}

// FetchEntry returns the first entry of contentType
func (c *Content) FetchEntry(_ context.Context, contentType string) (cms.Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.record("FetchEntry", contentType); err != nil {
		return cms.Entry{}, err
	}
	entries := c.entries[contentType]
	if len(entries) == 0 {
		return cms.Entry{}, fmt.Errorf("content type %q: %w", contentType, cms.ErrNoEntry)
	}
	return entries[0], nil
}

// FetchEntryByUID returns one entry
func (c *Content) FetchEntryByUID(_ context.Context, contentType, uid string) (cms.Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.record("FetchEntryByUID", contentType, uid); err != nil {
		return cms.Entry{}, err
	}
	for _, entry := range c.entries[contentType] {
		if entry.UID == uid {
			return entry, nil
		}
	}
	return cms.Entry{}, fmt.Errorf("entry %s/%s: %w", contentType, uid, cms.ErrNoEntry)
}
