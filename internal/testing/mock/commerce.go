// Package mock provides in-memory stand-ins for the commerce API and the
// CMS, seeded with a small demo catalog.
package mock

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/composable-commerce/storefront/internal/commerce"
	"github.com/composable-commerce/storefront/internal/fields"
	"github.com/composable-commerce/storefront/pkg/types"
)

// Seeded identifiers
const (
	ShirtHandle      = "linen-shirt"
	ShirtID          = "gid://shopify/Product/1"
	ShirtSmallID     = "gid://shopify/ProductVariant/11"
	ShirtMediumID    = "gid://shopify/ProductVariant/12"
	GiftCardHandle   = "gift-card"
	GiftCardID       = "gid://shopify/Product/2"
	GiftCardBasicID  = "gid://shopify/ProductVariant/21"
	CustomerEmail    = "ada@example.com"
	CustomerPassword = "correct-horse"
	CustomerToken    = "token-ada"
)

// CapturedCall records one method invocation
type CapturedCall struct {
	Method    string        `json:"method"`
	Args      []interface{} `json:"args"`
	Timestamp time.Time     `json:"timestamp"`
}

// Commerce is an in-memory commerce API
type Commerce struct {
	mu          sync.RWMutex
	shop        types.Shop
	menus       map[string]types.Menu
	metaobjects map[string][]commerce.Metaobject
	products    map[string]commerce.ProductDetail
	variants    map[string][]types.Variant
	related     map[string][]types.Product
	collections []types.Collection
	pages       map[string]types.Page
	carts       map[string]*types.Cart
	passwords   map[string]string
	customers   map[string]types.Customer
	failures    map[string]error
	calls       []CapturedCall
	nextID      int
}

// NewCommerce creates a commerce API seeded with test data
func NewCommerce() *Commerce {
	c := &Commerce{
		menus:       make(map[string]types.Menu),
		metaobjects: make(map[string][]commerce.Metaobject),
		products:    make(map[string]commerce.ProductDetail),
		variants:    make(map[string][]types.Variant),
		related:     make(map[string][]types.Product),
		pages:       make(map[string]types.Page),
		carts:       make(map[string]*types.Cart),
		passwords:   make(map[string]string),
		customers:   make(map[string]types.Customer),
		failures:    make(map[string]error),
	}
	c.loadTestData()
	return c
}

func money(amount string) types.Money {
	return types.Money{Amount: amount, CurrencyCode: "USD"}
}

func variant(id, title, price string, product types.Product, options ...types.SelectedOption) types.Variant {
	v := types.Variant{
		ID:               id,
		Title:            title,
		AvailableForSale: true,
		Price:            money(price),
		SelectedOptions:  options,
	}
	v.Product.Title = product.Title
	v.Product.Handle = product.Handle
	return v
}

func link(id, url, title string) fields.Node {
	return fields.Node{ID: id, Fields: fields.FieldSet{
		fields.Text("url", url),
		fields.Text("title", title),
		fields.Bool("open_in_new_tab", false),
	}}
}

func (c *Commerce) loadTestData() {
	c.shop = types.Shop{ID: "gid://shopify/Shop/1", Name: "Demo Store"}
	c.shop.PrimaryDomain.URL = "https://demo.example.com"

	c.menus["main-menu"] = types.Menu{ID: "gid://shopify/Menu/1", Items: []types.MenuItem{
		{ID: "m1", Title: "Collections", Type: "CATALOG", URL: "https://demo.example.com/collections"},
		{ID: "m2", Title: "About", Type: "PAGE", URL: "https://demo.myshopify.com/pages/about"},
		{ID: "m3", Title: "Journal", Type: "HTTP", URL: "https://journal.example.org"},
	}}

	shirt := types.Product{
		ID:                  ShirtID,
		Title:               "Linen Shirt",
		Handle:              ShirtHandle,
		Vendor:              "Demo",
		Description:         "A breathable linen shirt.",
		PriceRange:          types.PriceRange{MinVariantPrice: money("40.00"), MaxVariantPrice: money("45.00")},
		CompareAtPriceRange: &types.PriceRange{MinVariantPrice: money("50.00"), MaxVariantPrice: money("50.00")},
		FeaturedImage:       &types.Image{URL: "https://cdn.example.com/shirt.jpg", AltText: "Linen Shirt"},
		Options: []types.ProductOption{
			{Name: "Size", Values: []string{"S", "M"}},
			{Name: "Color", Values: []string{"White"}},
		},
	}
	small := variant(ShirtSmallID, "S / White", "40.00", shirt, types.SelectedOption{Name: "Size", Value: "S"}, types.SelectedOption{Name: "Color", Value: "White"})
	small.CompareAtPrice = &types.Money{Amount: "50.00", CurrencyCode: "USD"}
	medium := variant(ShirtMediumID, "M / White", "45.00", shirt, types.SelectedOption{Name: "Size", Value: "M"}, types.SelectedOption{Name: "Color", Value: "White"})
	medium.AvailableForSale = false

	giftCard := types.Product{
		ID:            GiftCardID,
		Title:         "Gift Card",
		Handle:        GiftCardHandle,
		Vendor:        "Demo",
		PriceRange:    types.PriceRange{MinVariantPrice: money("25.00"), MaxVariantPrice: money("25.00")},
		FeaturedImage: &types.Image{URL: "https://cdn.example.com/gift.jpg"},
		Options:       []types.ProductOption{{Name: "Title", Values: []string{"Default Title"}}},
	}
	basic := variant(GiftCardBasicID, "Default Title", "25.00", giftCard, types.SelectedOption{Name: "Title", Value: "Default Title"})

	c.products[ShirtHandle] = commerce.ProductDetail{
		Product: shirt,
		Information: fields.FieldSet{
			fields.Text("product_review", "<p>Customers love it.</p>"),
			fields.Text("shipping_return_policy", "<p>Ships in two days.</p>"),
		},
	}
	c.products[GiftCardHandle] = commerce.ProductDetail{Product: giftCard, Information: fields.FieldSet{}}
	c.variants[ShirtHandle] = []types.Variant{small, medium}
	c.variants[GiftCardHandle] = []types.Variant{basic}
	c.related[ShirtID] = []types.Product{giftCard}

	c.collections = []types.Collection{
		{ID: "gid://shopify/Collection/1", Title: "New Arrivals", Handle: "new-arrivals", Description: "Fresh in.",
			Products: types.ProductConnection{Nodes: []types.Product{shirt}}},
		{ID: "gid://shopify/Collection/2", Title: "Womens Fashion", Handle: "womens-fashion",
			Products: types.ProductConnection{Nodes: []types.Product{shirt, giftCard}}},
	}

	c.pages["shipping"] = types.Page{ID: "gid://shopify/Page/1", Title: "Shipping", Handle: "shipping", Body: "<p>We ship worldwide.</p>"}

	c.metaobjects["home"] = []commerce.Metaobject{{ID: "gid://shopify/Metaobject/1", Type: "home", Fields: fields.FieldSet{
		fields.Ref("banner_section", "gid://shopify/Metaobject/2",
			fields.Text("heading", "Summer"),
			fields.Text("title", "Linen season"),
			fields.Text("description", "<p>Light layers for warm days.</p>"),
			fields.Refs("banner_cta", link("gid://shopify/Metaobject/3", "/collections/all", "Shop now")),
		),
		fields.Text("shop_now_title", "Shop now"),
		fields.Text("feature_title", "Featured"),
		fields.Text("new_arrival_title", "New arrivals"),
		fields.Text("top_category_title", "Top categories"),
		fields.Ref("best_seller_section", "gid://shopify/Metaobject/4", fields.Text("title", "Best sellers")),
	}}}
	c.metaobjects["footer"] = []commerce.Metaobject{{ID: "gid://shopify/Metaobject/10", Type: "footer", Fields: fields.FieldSet{
		fields.Ref("company_menu", "gid://shopify/Metaobject/11",
			fields.Text("heading", "Company"),
			fields.Refs("sub_menu", link("gid://shopify/Metaobject/12", "/pages/about", "About us")),
		),
		fields.Ref("product_menu", "gid://shopify/Metaobject/13",
			fields.Text("menu_title", "Shop"),
			fields.Refs("sub_menu", link("gid://shopify/Metaobject/14", "/collections/all", "All products")),
		),
		fields.Ref("subscribe", "gid://shopify/Metaobject/15",
			fields.Text("subscribe_message", "Join the list"),
			fields.Text("mail_placeholder_text", "you@example.com"),
		),
		fields.Text("copyright", "© Demo Store"),
	}}}
	c.metaobjects["about_us"] = []commerce.Metaobject{{ID: "gid://shopify/Metaobject/20", Type: "about_us", Fields: fields.FieldSet{
		fields.Text("title", "About us"),
		fields.Text("description", "<p>We make shirts.</p>"),
	}}}
	c.metaobjects["product_page_contents"] = []commerce.Metaobject{{ID: "gid://shopify/Metaobject/30", Type: "product_page_contents", Fields: fields.FieldSet{
		fields.Text("collection_page_heading", "Our collections"),
		fields.Text("product_page_heading", "All products"),
		fields.Text("related_products_heading", "You may also like"),
	}}}
	c.metaobjects["product_detail_page"] = []commerce.Metaobject{{ID: "gid://shopify/Metaobject/40", Type: "product_detail_page", Fields: fields.FieldSet{
		fields.Text("product", ShirtID),
		fields.Bool("free_delivery", true),
		fields.Text("return_policy", "Returns within 60 days"),
	}}}

	c.passwords[CustomerEmail] = CustomerPassword
	customer := types.Customer{ID: "gid://shopify/Customer/1", FirstName: "Ada", LastName: "Lovelace", Email: CustomerEmail}
	customer.Orders.Nodes = []types.Order{{ID: "gid://shopify/Order/1", OrderNumber: 1001, FinancialStatus: "PAID", CurrentTotalPrice: money("40.00")}}
	c.customers[CustomerToken] = customer
}

// Fail makes every later call to method return err; a nil err clears it
func (c *Commerce) Fail(method string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err == nil {
		delete(c.failures, method)
		return
	}
	c.failures[method] = err
}

// Calls returns the recorded calls to method, or every call when method is empty
func (c *Commerce) Calls(method string) []CapturedCall {
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

// SetMetaobjects replaces the metaobjects of a type
func (c *Commerce) SetMetaobjects(typ string, nodes []commerce.Metaobject) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metaobjects[typ] = nodes
}

// CartByID returns a stored cart
func (c *Commerce) CartByID(id string) (types.Cart, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cart, ok := c.carts[id]
	if !ok {
		return types.Cart{}, false
	}
	return *cart, true
}

// record notes a call and returns the injected failure, if any. Callers
// hold the lock.
func (c *Commerce) record(method string, args ...interface{}) error {
	c.calls = append(c.calls, CapturedCall{Method: method, Args: args, Timestamp: time.Now()})
	return c.failures[method]
}

func (c *Commerce) id(kind string) string {
	c.nextID++
	return fmt.Sprintf("gid://shopify/%s/%d", kind, 1000+c.nextID)
}

// Metaobject returns the first metaobject of typ
func (c *Commerce) Metaobject(_ context.Context, typ string) (commerce.Metaobject, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.record("Metaobject", typ); err != nil {
		return commerce.Metaobject{}, err
	}
	nodes := c.metaobjects[typ]
	if len(nodes) == 0 {
		return commerce.Metaobject{}, fmt.Errorf("metaobject %q: %w", typ, commerce.ErrNotFound)
	}
	return nodes[0], nil
}

// FetchAllMetaobjects returns every metaobject of typ
func (c *Commerce) FetchAllMetaobjects(_ context.Context, typ string) ([]commerce.Metaobject, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.record("FetchAllMetaobjects", typ); err != nil {
		return nil, err
	}
	return append([]commerce.Metaobject(nil), c.metaobjects[typ]...), nil
}

// LatestProducts returns up to first products
func (c *Commerce) LatestProducts(_ context.Context, first int) ([]types.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.record("LatestProducts", first); err != nil {
		return nil, err
	}
	return limit(c.allProducts(), first), nil
}

// CollectionProducts returns a collection with its first products
func (c *Commerce) CollectionProducts(_ context.Context, handle string, first int) (types.Collection, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.record("CollectionProducts", handle, first); err != nil {
		return types.Collection{}, err
	}
	col, ok := c.collection(handle)
	if !ok {
		return types.Collection{}, fmt.Errorf("collection %q: %w", handle, commerce.ErrNotFound)
	}
	col.Products.Nodes = limit(col.Products.Nodes, first)
	return col, nil
}

// TopCollections returns up to first collections
func (c *Commerce) TopCollections(_ context.Context, first int) ([]types.Collection, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.record("TopCollections", first); err != nil {
		return nil, err
	}
	return limit(c.collections, first), nil
}

// Collections returns one page of collections
func (c *Commerce) Collections(_ context.Context, page commerce.PageVars) (types.CollectionConnection, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.record("Collections", page); err != nil {
		return types.CollectionConnection{}, err
	}
	nodes, info := paginate(c.collections, page)
	return types.CollectionConnection{Nodes: nodes, PageInfo: info}, nil
}

// Collection returns a collection with one page of its products
func (c *Commerce) Collection(_ context.Context, handle string, page commerce.PageVars) (types.Collection, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.record("Collection", handle, page); err != nil {
		return types.Collection{}, err
	}
	col, ok := c.collection(handle)
	if !ok {
		return types.Collection{}, fmt.Errorf("collection %q: %w", handle, commerce.ErrNotFound)
	}
	col.Products.Nodes, col.Products.PageInfo = paginate(col.Products.Nodes, page)
	return col, nil
}

// AllProducts returns one page of the catalog
func (c *Commerce) AllProducts(_ context.Context, page commerce.PageVars) (types.ProductConnection, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.record("AllProducts", page); err != nil {
		return types.ProductConnection{}, err
	}
	nodes, info := paginate(c.allProducts(), page)
	return types.ProductConnection{Nodes: nodes, PageInfo: info}, nil
}

// Product returns a product. SelectedVariant is set only when selected
// names a complete option combination.
func (c *Commerce) Product(_ context.Context, handle string, selected []types.SelectedOption) (commerce.ProductDetail, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.record("Product", handle, selected); err != nil {
		return commerce.ProductDetail{}, err
	}
	detail, ok := c.products[handle]
	if !ok {
		return commerce.ProductDetail{}, fmt.Errorf("product %q: %w", handle, commerce.ErrNotFound)
	}

	variants := c.variants[handle]
	if len(variants) > 0 {
		detail.Variants.Nodes = variants[:1]
	}
	for i := range variants {
		if matches(variants[i], selected) {
			v := variants[i]
			detail.SelectedVariant = &v
			break
		}
	}
	return detail, nil
}

func matches(v types.Variant, selected []types.SelectedOption) bool {
	if len(selected) != len(v.SelectedOptions) {
		return false
	}
	for _, want := range selected {
		found := false
		for _, have := range v.SelectedOptions {
			if have == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Variants returns every variant of a product
func (c *Commerce) Variants(_ context.Context, handle string) ([]types.Variant, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.record("Variants", handle); err != nil {
		return nil, err
	}
	if _, ok := c.products[handle]; !ok {
		return nil, fmt.Errorf("product %q: %w", handle, commerce.ErrNotFound)
	}
	return append([]types.Variant(nil), c.variants[handle]...), nil
}

// Recommendations returns related products
func (c *Commerce) Recommendations(_ context.Context, productID string) ([]types.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.record("Recommendations", productID); err != nil {
		return nil, err
	}
	return append([]types.Product(nil), c.related[productID]...), nil
}

// Page returns a static page
func (c *Commerce) Page(_ context.Context, handle string) (types.Page, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.record("Page", handle); err != nil {
		return types.Page{}, err
	}
	page, ok := c.pages[handle]
	if !ok {
		return types.Page{}, fmt.Errorf("page %q: %w", handle, commerce.ErrNotFound)
	}
	return page, nil
}

// Header returns the shop and a menu; Menu is nil for unknown handles
func (c *Commerce) Header(_ context.Context, menuHandle string) (commerce.Header, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.record("Header", menuHandle); err != nil {
		return commerce.Header{}, err
	}
	header := commerce.Header{Shop: c.shop}
	if menu, ok := c.menus[menuHandle]; ok {
		header.Menu = &menu
	}
	return header, nil
}

// Shop returns the store details
func (c *Commerce) Shop(context.Context) (types.Shop, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.record("Shop"); err != nil {
		return types.Shop{}, err
	}
	return c.shop, nil
}

func (c *Commerce) allProducts() []types.Product {
	handles := make([]string, 0, len(c.products))
	for h := range c.products {
		handles = append(handles, h)
	}
	sort.Strings(handles)

	products := make([]types.Product, 0, len(handles))
	for _, h := range handles {
		products = append(products, c.products[h].Product)
	}
	return products
}

func (c *Commerce) collection(handle string) (types.Collection, bool) {
	for _, col := range c.collections {
		if col.Handle == handle {
			col.Products.Nodes = append([]types.Product(nil), col.Products.Nodes...)
			return col, true
		}
	}
	return types.Collection{}, false
}

func limit[T any](items []T, n int) []T {
	if n >= 0 && len(items) > n {
		items = items[:n]
	}
	return append([]T(nil), items...)
}

// paginate serves items with numeric cursors
func paginate[T any](items []T, page commerce.PageVars) ([]T, types.PageInfo) {
	start, end := 0, len(items)
	switch {
	case page.Last > 0:
		if page.StartCursor != "" {
			fmt.Sscanf(page.StartCursor, "c%d", &end)
		}
		end = min(max(end, 0), len(items))
		start = max(end-page.Last, 0)
	default:
		if page.EndCursor != "" {
			fmt.Sscanf(page.EndCursor, "c%d", &start)
			start++
		}
		start = min(max(start, 0), len(items))
		if page.First > 0 {
			end = min(start+page.First, len(items))
		}
	}

	info := types.PageInfo{
		HasPreviousPage: start > 0,
		HasNextPage:     end < len(items),
	}
	if end > start {
		info.StartCursor = fmt.Sprintf("c%d", start)
		info.EndCursor = fmt.Sprintf("c%d", end-1)
	}
	return append([]T(nil), items[start:end]...), info
}
