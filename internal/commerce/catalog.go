package commerce

import (
	"context"
	"fmt"

	"github.com/composable-commerce/storefront/internal/fields"
	"github.com/composable-commerce/storefront/pkg/types"
)

// metaobjectPageSize is the largest page the API serves
const metaobjectPageSize = 100

// Metaobject is a structured content entry stored in the commerce platform
type Metaobject struct {
	ID     string          `json:"id"`
	Handle string          `json:"handle"`
	Type   string          `json:"type"`
	Fields fields.FieldSet `json:"fields"`
}

type metaobjectConnection struct {
	Nodes    []Metaobject `json:"nodes"`
	PageInfo struct {
		HasNextPage bool   `json:"hasNextPage"`
		EndCursor   string `json:"endCursor"`
	} `json:"pageInfo"`
}

// Metaobjects returns the first page of metaobjects of the given type
func (c *Client) Metaobjects(ctx context.Context, typ string, first int) ([]Metaobject, error) {
	page, err := c.metaobjectPage(ctx, typ, first, "")
	if err != nil {
		return nil, err
	}
	return page.Nodes, nil
}

// Metaobject returns the first metaobject of the given type
func (c *Client) Metaobject(ctx context.Context, typ string) (Metaobject, error) {
	nodes, err := c.Metaobjects(ctx, typ, 1)
	if err != nil {
		return Metaobject{}, err
	}
	if len(nodes) == 0 {
		return Metaobject{}, fmt.Errorf("metaobject %q: %w", typ, ErrNotFound)
	}
	return nodes[0], nil
}

// FetchAllMetaobjects walks every page of the given type
func (c *Client) FetchAllMetaobjects(ctx context.Context, typ string) ([]Metaobject, error) {
	var (
		all   []Metaobject
		after string
	)
	for {
		page, err := c.metaobjectPage(ctx, typ, metaobjectPageSize, after)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Nodes...)

		if !page.PageInfo.HasNextPage || page.PageInfo.EndCursor == "" || page.PageInfo.EndCursor == after {
			return all, nil
		}
		after = page.PageInfo.EndCursor
	}
}

func (c *Client) metaobjectPage(ctx context.Context, typ string, first int, after string) (metaobjectConnection, error) {
	vars := map[string]any{"type": typ, "first": first}
	if after != "" {
		vars["after"] = after
	}

	var data struct {
		Metaobjects metaobjectConnection `json:"metaobjects"`
	}
	if err := c.Query(ctx, metaobjectsQuery, vars, &data); err != nil {
		return metaobjectConnection{}, err
	}
	return data.Metaobjects, nil
}

// LatestProducts returns the newest products
func (c *Client) LatestProducts(ctx context.Context, first int) ([]types.Product, error) {
	var data struct {
		Products types.ProductConnection `json:"products"`
	}
	if err := c.Query(ctx, latestProductsQuery, map[string]any{"first": first}, &data); err != nil {
		return nil, err
	}
	return data.Products.Nodes, nil
}

// CollectionProducts returns a collection with its first products
func (c *Client) CollectionProducts(ctx context.Context, handle string, first int) (types.Collection, error) {
	var data struct {
		Collection *types.Collection `json:"collection"`
	}
	if err := c.Query(ctx, collectionProductsQuery, map[string]any{"handle": handle, "first": first}, &data); err != nil {
		return types.Collection{}, err
	}
	if data.Collection == nil {
		return types.Collection{}, fmt.Errorf("collection %q: %w", handle, ErrNotFound)
	}
	return *data.Collection, nil
}

// TopCollections returns the most recent collections
func (c *Client) TopCollections(ctx context.Context, first int) ([]types.Collection, error) {
	var data struct {
		Collections types.CollectionConnection `json:"collections"`
	}
	if err := c.Query(ctx, topCollectionsQuery, map[string]any{"first": first}, &data); err != nil {
		return nil, err
	}
	return data.Collections.Nodes, nil
}

// Collections returns one page of collections
func (c *Client) Collections(ctx context.Context, page PageVars) (types.CollectionConnection, error) {
	var data struct {
		Collections types.CollectionConnection `json:"collections"`
	}
	if err := c.Query(ctx, collectionsQuery, page.Variables(), &data); err != nil {
		return types.CollectionConnection{}, err
	}
	return data.Collections, nil
}

// Collection returns a collection with one page of its products
func (c *Client) Collection(ctx context.Context, handle string, page PageVars) (types.Collection, error) {
	vars := page.Variables()
	vars["handle"] = handle

	var data struct {
		Collection *types.Collection `json:"collection"`
	}
	if err := c.Query(ctx, collectionQuery, vars, &data); err != nil {
		return types.Collection{}, err
	}
	if data.Collection == nil {
		return types.Collection{}, fmt.Errorf("collection %q: %w", handle, ErrNotFound)
	}
	return *data.Collection, nil
}

// AllProducts returns one page of the whole catalog
func (c *Client) AllProducts(ctx context.Context, page PageVars) (types.ProductConnection, error) {
	var data struct {
		Products types.ProductConnection `json:"products"`
	}
	if err := c.Query(ctx, allProductsQuery, page.Variables(), &data); err != nil {
		return types.ProductConnection{}, err
	}
	return data.Products, nil
}

// ProductDetail is a product plus the content attached to it through the
// custom.information metafield.
type ProductDetail struct {
	types.Product
	Information fields.FieldSet
}

// Product loads a product; selected picks SelectedVariant
func (c *Client) Product(ctx context.Context, handle string, selected []types.SelectedOption) (ProductDetail, error) {
	if selected == nil {
		selected = []types.SelectedOption{}
	}

	var data struct {
		Product *struct {
			types.Product
			Information *struct {
				Reference *struct {
					Fields fields.FieldSet `json:"fields"`
				} `json:"reference"`
			} `json:"information"`
		} `json:"product"`
	}
	vars := map[string]any{"handle": handle, "selectedOptions": selected}
	if err := c.Query(ctx, productQuery, vars, &data); err != nil {
		return ProductDetail{}, err
	}
	if data.Product == nil {
		return ProductDetail{}, fmt.Errorf("product %q: %w", handle, ErrNotFound)
	}

	detail := ProductDetail{Product: data.Product.Product, Information: fields.FieldSet{}}
	if info := data.Product.Information; info != nil && info.Reference != nil && info.Reference.Fields != nil {
		detail.Information = info.Reference.Fields
	}
	return detail, nil
}

// Variants returns up to 250 variants of a product
func (c *Client) Variants(ctx context.Context, handle string) ([]types.Variant, error) {
	var data struct {
		Product *struct {
			Variants types.VariantConnection `json:"variants"`
		} `json:"product"`
	}
	if err := c.Query(ctx, variantsQuery, map[string]any{"handle": handle}, &data); err != nil {
		return nil, err
	}
	if data.Product == nil {
		return nil, fmt.Errorf("product %q: %w", handle, ErrNotFound)
	}
	return data.Product.Variants.Nodes, nil
}

// Recommendations returns products related to productID
func (c *Client) Recommendations(ctx context.Context, productID string) ([]types.Product, error) {
	var data struct {
		ProductRecommendations []types.Product `json:"productRecommendations"`
	}
	if err := c.Query(ctx, recommendationsQuery, map[string]any{"productId": productID}, &data); err != nil {
		return nil, err
	}
	return data.ProductRecommendations, nil
}

// Page returns a static page by handle
func (c *Client) Page(ctx context.Context, handle string) (types.Page, error) {
	var data struct {
		Page *types.Page `json:"page"`
	}
	if err := c.Query(ctx, pageQuery, map[string]any{"handle": handle}, &data); err != nil {
		return types.Page{}, err
	}
	if data.Page == nil {
		return types.Page{}, fmt.Errorf("page %q: %w", handle, ErrNotFound)
	}
	return *data.Page, nil
}

// Header is the shop and its navigation menu. Menu is nil when the handle
// does not exist.
type Header struct {
	Shop types.Shop
	Menu *types.Menu
}

// Header loads shop details and the navigation menu
func (c *Client) Header(ctx context.Context, menuHandle string) (Header, error) {
	var data struct {
		Shop types.Shop  `json:"shop"`
		Menu *types.Menu `json:"menu"`
	}
	if err := c.Query(ctx, headerQuery, map[string]any{"menuHandle": menuHandle}, &data); err != nil {
		return Header{}, err
	}
	return Header{Shop: data.Shop, Menu: data.Menu}, nil
}

// Shop returns the store details; used as a connectivity probe
func (c *Client) Shop(ctx context.Context) (types.Shop, error) {
	var data struct {
		Shop types.Shop `json:"shop"`
	}
	if err := c.Query(ctx, shopQuery, nil, &data); err != nil {
		return types.Shop{}, err
	}
	return data.Shop, nil
}

// Menu loads a navigation menu by handle
func (c *Client) Menu(ctx context.Context, handle string) (types.Menu, error) {
	header, err := c.Header(ctx, handle)
	if err != nil {
		return types.Menu{}, err
	}
	if header.Menu == nil {
		return types.Menu{}, fmt.Errorf("menu %q: %w", handle, ErrNotFound)
	}
	return *header.Menu, nil
}
