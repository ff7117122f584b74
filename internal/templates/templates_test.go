package templates

import (
	"bytes"
	"html/template"
	"testing"

	"github.com/gin-gonic/gin/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/composable-commerce/storefront/internal/views"
	"github.com/composable-commerce/storefront/pkg/types"
)

func newRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := New()
	require.NoError(t, err)
	return r
}

func TestNewParsesEveryPage(t *testing.T) {
	r := newRenderer(t)
	assert.Equal(t, []string{
		About, Cart, Collection, Collections, Error, Home, Login, Orders, StaticPage, Product, Products, Profile,
	}, r.Names())
}

func TestRenderEmptyPages(t *testing.T) {
	r := newRenderer(t)

	contents := map[string]any{
		Home:        views.HomePage{},
		Collections: views.CollectionsPage{},
		Collection:  views.CollectionPage{},
		Products:    views.ProductsPage{},
		Product:     views.ProductPage{},
		About:       views.About{},
		StaticPage:  views.StaticPage{},
		Cart:        views.CartPageFrom(nil),
		Login:       views.LoginPage{},
		Orders:      views.AccountPage{},
		Profile:     views.AccountPage{},
		Error:       views.ErrorPage{Status: 404, Message: "Not found"},
	}
	for name, content := range contents {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			err := r.Render(&buf, name, views.Page{Layout: views.Layout{ShopName: "Demo"}, Content: content})
			require.NoError(t, err)
			assert.Contains(t, buf.String(), "<title>")
		})
	}
}

func TestRenderLayout(t *testing.T) {
	r := newRenderer(t)

	page := views.Page{
		Title:  "Home",
		Locale: "/en-ca",
		Layout: views.Layout{
			ShopName:  "Demo",
			Menu:      []views.Link{{URL: "/collections", Title: "Collections"}},
			CartCount: 3,
			Footer: views.Footer{
				Menus: []views.MenuSection{{
					Key:     "company_menu",
					Heading: "Company",
					Links:   []views.Link{{URL: "https://example.com/jobs", Title: "Careers", NewTab: true}},
				}},
				Subscribe: views.Subscribe{Message: "Join us", Placeholder: "you@example.com"},
				Copyright: template.HTML("<b>2024</b>"),
			},
		},
		Content: views.HomePage{Home: views.Home{Banner: views.Banner{Title: "Summer"}}},
	}

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, Home, page))
	out := buf.String()

	assert.Contains(t, out, "<title>Home | Demo</title>")
	assert.Contains(t, out, `href="/en-ca/collections"`)
	assert.Contains(t, out, `href="/en-ca/cart"`)
	assert.Contains(t, out, "<span>3</span>")
	assert.Contains(t, out, `target="_blank"`)
	assert.Contains(t, out, `action="/en-ca/subscribe"`)
	assert.Contains(t, out, "<b>2024</b>")
	assert.Contains(t, out, "Summer")
}

func TestRenderCartLines(t *testing.T) {
	r := newRenderer(t)

	c := &types.Cart{ID: "cart-1", CheckoutURL: "https://checkout.example.com/c/1"}
	line := types.CartLine{ID: "line-1", Quantity: 1}
	line.Merchandise.Product.Title = "Linen Shirt"
	c.Lines.Nodes = []types.CartLine{line}

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, Cart, views.Page{Content: views.CartPageFrom(c)}))
	out := buf.String()

	assert.Contains(t, out, "Linen Shirt")
	assert.Contains(t, out, `name="quantity" value="2"`)
	assert.Contains(t, out, "disabled>-</button>")
	assert.Contains(t, out, "https://checkout.example.com/c/1")
}

func TestRenderEscapesContent(t *testing.T) {
	r := newRenderer(t)

	var buf bytes.Buffer
	page := views.Page{Content: views.ErrorPage{Status: 502, Message: "<script>alert(1)</script>"}}
	require.NoError(t, r.Render(&buf, Error, page))
	assert.NotContains(t, buf.String(), "<script>")
}

func TestRenderUnknownTemplate(t *testing.T) {
	r := newRenderer(t)
	assert.Error(t, r.Render(&bytes.Buffer{}, "missing", nil))
}

func TestInstance(t *testing.T) {
	r := newRenderer(t)

	html, ok := r.Instance(Product, nil).(render.HTML)
	require.True(t, ok)
	assert.Equal(t, "layout", html.Name)
	assert.Same(t, r.sets[Product], html.Template)

	fallback := r.Instance("missing", nil).(render.HTML)
	assert.Same(t, r.sets[Error], fallback.Template)
}

func TestLocalized(t *testing.T) {
	tests := []struct {
		prefix string
		path   string
		want   string
	}{
		{"", "/cart", "/cart"},
		{"/en-ca", "/cart", "/en-ca/cart"},
		{"/en-ca", "/", "/en-ca"},
		{"/en-ca", "https://example.com/x", "https://example.com/x"},
		{"/en-ca", "//cdn.example.com/x", "//cdn.example.com/x"},
		{"/en-ca", "", ""},
		{"/en-ca", "/en-ca/products/shirt", "/en-ca/products/shirt"},
		{"/en-ca", "/en-caps", "/en-ca/en-caps"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Localized(tt.prefix, tt.path), "%s + %s", tt.prefix, tt.path)
	}
}
