package server

import (
	"context"

	"github.com/composable-commerce/storefront/internal/cms"
	"github.com/composable-commerce/storefront/internal/commerce"
	"github.com/composable-commerce/storefront/pkg/types"
)

// CommerceAPI is the part of the storefront API client pages are built from
type CommerceAPI interface {
	Metaobject(ctx context.Context, typ string) (commerce.Metaobject, error)
	FetchAllMetaobjects(ctx context.Context, typ string) ([]commerce.Metaobject, error)

	LatestProducts(ctx context.Context, first int) ([]types.Product, error)
	CollectionProducts(ctx context.Context, handle string, first int) (types.Collection, error)
	TopCollections(ctx context.Context, first int) ([]types.Collection, error)
	Collections(ctx context.Context, page commerce.PageVars) (types.CollectionConnection, error)
	Collection(ctx context.Context, handle string, page commerce.PageVars) (types.Collection, error)
	AllProducts(ctx context.Context, page commerce.PageVars) (types.ProductConnection, error)
	Product(ctx context.Context, handle string, selected []types.SelectedOption) (commerce.ProductDetail, error)
	Variants(ctx context.Context, handle string) ([]types.Variant, error)
	Recommendations(ctx context.Context, productID string) ([]types.Product, error)
	Page(ctx context.Context, handle string) (types.Page, error)
	Header(ctx context.Context, menuHandle string) (commerce.Header, error)
	Shop(ctx context.Context) (types.Shop, error)

	Cart(ctx context.Context, cartID string) (types.Cart, error)
	CartCreate(ctx context.Context, lines []types.CartLineInput) (types.Cart, error)
	CartLinesAdd(ctx context.Context, cartID string, lines []types.CartLineInput) (types.Cart, error)
	CartLinesUpdate(ctx context.Context, cartID string, lines []types.CartLineUpdateInput) (types.Cart, error)
	CartLinesRemove(ctx context.Context, cartID string, lineIDs []string) (types.Cart, error)

	CustomerAccessTokenCreate(ctx context.Context, email, password string) (types.CustomerAccessToken, error)
	CustomerAccessTokenDelete(ctx context.Context, token string) error
	Customer(ctx context.Context, token string) (types.Customer, error)
	CustomerUpdate(ctx context.Context, token string, input types.CustomerUpdateInput) (types.Customer, *types.CustomerAccessToken, error)
}

// ContentAPI is the CMS delivery client
type ContentAPI interface {
	FetchEntry(ctx context.Context, contentType string) (cms.Entry, error)
	FetchEntryByUID(ctx context.Context, contentType, uid string) (cms.Entry, error)
}

var (
	_ CommerceAPI = (*commerce.Client)(nil)
	_ ContentAPI  = (*cms.Client)(nil)
)
