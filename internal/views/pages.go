package views

import (
	"html/template"

	"github.com/composable-commerce/storefront/internal/cart"
	"github.com/composable-commerce/storefront/pkg/types"
)

// Page is what every template receives
type Page struct {
	Title   string
	Locale  string
	Layout  Layout
	Content any
}

// Layout is the chrome around every page
type Layout struct {
	ShopName  string
	Menu      []Link
	Footer    Footer
	CartCount int
	LoggedIn  bool
}

// ProductCard is a product tile with its discount badge
type ProductCard struct {
	types.Product
	PriceOff string
}

// ProductCards builds tiles for products
func ProductCards(products []types.Product) []ProductCard {
	cards := make([]ProductCard, 0, len(products))
	for _, p := range products {
		card := ProductCard{Product: p}
		if p.CompareAtPriceRange != nil {
			compareAt := p.CompareAtPriceRange.MinVariantPrice
			card.PriceOff, _ = PriceOff(p.PriceRange.MinVariantPrice, &compareAt)
		}
		cards = append(cards, card)
	}
	return cards
}

// HomePage is the content of /
type HomePage struct {
	Home           Home
	Featured       []ProductCard
	NewArrivals    []ProductCard
	BestSellers    []ProductCard
	TopCollections []types.Collection
	Collections    []types.Collection
}

// CollectionsPage is the content of /collections
type CollectionsPage struct {
	Heading     string
	Collections []types.Collection
	Pagination  Pagination
}

// CollectionPage is the content of /collections/:handle
type CollectionPage struct {
	Collection types.Collection
	Products   []ProductCard
	Pagination Pagination
}

// ProductsPage is the content of /collections/all
type ProductsPage struct {
	Heading    string
	Products   []ProductCard
	Pagination Pagination
}

// ProductPage is the content of /products/:handle
type ProductPage struct {
	Product        types.Product
	Variant        *types.Variant
	PriceOff       string
	Options        []OptionGroup
	Content        ProductContent
	Delivery       Delivery
	RelatedHeading string
	Related        []ProductCard
}

// StaticPage is the content of /pages/:handle
type StaticPage struct {
	Page    types.Page
	Content PageContent
}

// Body is the page HTML as authored in the commerce admin
func (p StaticPage) Body() template.HTML {
	return html(p.Page.Body)
}

// CartLine is a cart line with its quantity controls
type CartLine struct {
	types.CartLine
	Quantity cart.Quantity
}

// CartPage is the content of /cart
type CartPage struct {
	Cart  *types.Cart
	Lines []CartLine
	Error string
}

// CartPageFrom wraps a cart for rendering; a nil cart renders as empty
func CartPageFrom(c *types.Cart) CartPage {
	page := CartPage{Cart: c}
	if c == nil {
		return page
	}
	for _, line := range c.Lines.Nodes {
		page.Lines = append(page.Lines, CartLine{CartLine: line, Quantity: cart.NewQuantity(line.Quantity)})
	}
	return page
}

// LoginPage is the content of /account/login
type LoginPage struct {
	Email string
	Error string
}

// AccountPage is the content of the /account pages
type AccountPage struct {
	Customer types.Customer
	Error    string
	Saved    bool
}

// ErrorPage is rendered for 404 and upstream failures
type ErrorPage struct {
	Status  int
	Message string
}
