package types

import "time"

// Money is a decimal amount as returned by the storefront API
type Money struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}

// Image is a catalog image
type Image struct {
	ID      string `json:"id,omitempty"`
	URL     string `json:"url"`
	AltText string `json:"altText,omitempty"`
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`
}

// PageInfo carries cursor pagination state
type PageInfo struct {
	HasNextPage     bool   `json:"hasNextPage"`
	HasPreviousPage bool   `json:"hasPreviousPage"`
	StartCursor     string `json:"startCursor"`
	EndCursor       string `json:"endCursor"`
}

// SelectedOption is one chosen product option, e.g. Size=M
type SelectedOption struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ProductOption lists the values a product option can take
type ProductOption struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// PriceRange is the min/max variant price of a product
type PriceRange struct {
	MinVariantPrice Money `json:"minVariantPrice"`
	MaxVariantPrice Money `json:"maxVariantPrice"`
}

// SEO holds page metadata
type SEO struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Variant is a purchasable product variant
type Variant struct {
	ID               string           `json:"id"`
	Title            string           `json:"title"`
	SKU              string           `json:"sku,omitempty"`
	AvailableForSale bool             `json:"availableForSale"`
	Price            Money            `json:"price"`
	CompareAtPrice   *Money           `json:"compareAtPrice"`
	Image            *Image           `json:"image"`
	SelectedOptions  []SelectedOption `json:"selectedOptions"`
	Product          struct {
		Title  string `json:"title"`
		Handle string `json:"handle"`
	} `json:"product"`
}

// IsDefault reports whether this is the implicit single variant of a product
// without options.
func (v Variant) IsDefault() bool {
	for _, opt := range v.SelectedOptions {
		if opt.Name == "Title" && opt.Value == "Default Title" {
			return true
		}
	}
	return false
}

// VariantConnection is a page of variants
type VariantConnection struct {
	Nodes []Variant `json:"nodes"`
}

// Product is a catalog product. SelectedVariant is only set when the
// request selected a full option combination.
type Product struct {
	ID                  string            `json:"id"`
	Title               string            `json:"title"`
	Handle              string            `json:"handle"`
	Vendor              string            `json:"vendor"`
	Description         string            `json:"description"`
	DescriptionHTML     string            `json:"descriptionHtml"`
	PriceRange          PriceRange        `json:"priceRange"`
	CompareAtPriceRange *PriceRange       `json:"compareAtPriceRange"`
	FeaturedImage       *Image            `json:"featuredImage"`
	Options             []ProductOption   `json:"options"`
	SelectedVariant     *Variant          `json:"selectedVariant"`
	Variants            VariantConnection `json:"variants"`
	SEO                 SEO               `json:"seo"`
}

// ProductConnection is a page of products
type ProductConnection struct {
	Nodes    []Product `json:"nodes"`
	PageInfo PageInfo  `json:"pageInfo"`
}

// Collection is a catalog collection
type Collection struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Handle      string            `json:"handle"`
	Description string            `json:"description"`
	Image       *Image            `json:"image"`
	Products    ProductConnection `json:"products"`
}

// CollectionConnection is a page of collections
type CollectionConnection struct {
	Nodes    []Collection `json:"nodes"`
	PageInfo PageInfo     `json:"pageInfo"`
}

// Page is a static storefront page
type Page struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Handle string `json:"handle"`
	Body   string `json:"body"`
	SEO    SEO    `json:"seo"`
}

// MenuItem is one navigation link
type MenuItem struct {
	ID    string     `json:"id"`
	Title string     `json:"title"`
	URL   string     `json:"url"`
	Type  string     `json:"type"`
	Items []MenuItem `json:"items,omitempty"`
}

// Menu is a navigation menu
type Menu struct {
	ID    string     `json:"id"`
	Items []MenuItem `json:"items"`
}

// Shop is the store itself
type Shop struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	PrimaryDomain struct {
		URL string `json:"url"`
	} `json:"primaryDomain"`
}

// CartLine is one line in a cart
type CartLine struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
	Cost     struct {
		TotalAmount Money `json:"totalAmount"`
	} `json:"cost"`
	Merchandise Variant `json:"merchandise"`
}

// Cart is a customer cart
type Cart struct {
	ID            string `json:"id"`
	CheckoutURL   string `json:"checkoutUrl"`
	TotalQuantity int    `json:"totalQuantity"`
	Cost          struct {
		SubtotalAmount Money `json:"subtotalAmount"`
		TotalAmount    Money `json:"totalAmount"`
	} `json:"cost"`
	Lines struct {
		Nodes []CartLine `json:"nodes"`
	} `json:"lines"`
}

// CartLineInput adds merchandise to a cart
type CartLineInput struct {
	MerchandiseID string `json:"merchandiseId"`
	Quantity      int    `json:"quantity"`
}

// CartLineUpdateInput changes the quantity of an existing line
type CartLineUpdateInput struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

// Order is a past customer order
type Order struct {
	ID                string `json:"id"`
	OrderNumber       int    `json:"orderNumber"`
	ProcessedAt       string `json:"processedAt"`
	FinancialStatus   string `json:"financialStatus"`
	FulfillmentStatus string `json:"fulfillmentStatus"`
	CurrentTotalPrice Money  `json:"currentTotalPrice"`
}

// Customer is a logged in customer
type Customer struct {
	ID               string `json:"id"`
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	AcceptsMarketing bool   `json:"acceptsMarketing"`
	Orders           struct {
		Nodes []Order `json:"nodes"`
	} `json:"orders"`
}

// CustomerUpdateInput holds the profile fields a customer can change. Nil
// fields are left untouched.
type CustomerUpdateInput struct {
	FirstName        *string `json:"firstName,omitempty"`
	LastName         *string `json:"lastName,omitempty"`
	Email            *string `json:"email,omitempty"`
	Phone            *string `json:"phone,omitempty"`
	Password         *string `json:"password,omitempty"`
	AcceptsMarketing *bool   `json:"acceptsMarketing,omitempty"`
}

// CustomerAccessToken authenticates customer queries
type CustomerAccessToken struct {
	AccessToken string `json:"accessToken"`
	ExpiresAt   string `json:"expiresAt"`
}

// UserError is a validation error returned by a mutation
type UserError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
	Code    string   `json:"code,omitempty"`
}

// Subscriber is a newsletter sign-up
type Subscriber struct {
	Email     string    `json:"email" yaml:"email"`
	Source    string    `json:"source" yaml:"source"`
	Locale    string    `json:"locale" yaml:"locale"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}
