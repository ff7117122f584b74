package server

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/composable-commerce/storefront/internal/cms"
	"github.com/composable-commerce/storefront/internal/commerce"
	"github.com/composable-commerce/storefront/internal/config"
	"github.com/composable-commerce/storefront/internal/templates"
	"github.com/composable-commerce/storefront/internal/views"
	"github.com/composable-commerce/storefront/pkg/types"
)

// Page sizes
const (
	featuredProductsCount  = 3
	newArrivalsCount       = 3
	bestSellersCount       = 4
	topCollectionsCount    = 8
	homeCollectionsPageBy  = 6
	collectionsPageBy      = 8
	productsPageBy         = 8
	maxRelatedProducts     = 5
	allProductsHandle      = "all"
	defaultCollectionTitle = "Collections"
	defaultProductsTitle   = "Products"
	defaultRelatedTitle    = "Related products"
)

func (s *Server) handleHome(c *gin.Context) {
	var page views.HomePage
	newArrivals, bestSellers := s.cfg.Content.NewArrivalsHandle, s.cfg.Content.BestSellersHandle
	homeCollections := s.pageVars(c, homeCollectionsPageBy)

	layout, err := s.compose(c, func(ctx context.Context, g *errgroup.Group) {
		g.Go(func() error {
			page.Home = s.homeContent(ctx)
			return nil
		})
		g.Go(func() error {
			products, _ := fetchOptional(ctx, s.events, "commerce", "products:latest", func(ctx context.Context) ([]types.Product, error) {
				return s.commerce.LatestProducts(ctx, featuredProductsCount)
			})
			page.Featured = views.ProductCards(products)
			return nil
		})
		g.Go(func() error {
			collection, _ := fetchOptional(ctx, s.events, "commerce", "collection:"+newArrivals, func(ctx context.Context) (types.Collection, error) {
				return s.commerce.CollectionProducts(ctx, newArrivals, newArrivalsCount)
			})
			page.NewArrivals = views.ProductCards(collection.Products.Nodes)
			return nil
		})
		g.Go(func() error {
			collection, _ := fetchOptional(ctx, s.events, "commerce", "collection:"+bestSellers, func(ctx context.Context) (types.Collection, error) {
				return s.commerce.CollectionProducts(ctx, bestSellers, bestSellersCount)
			})
			page.BestSellers = views.ProductCards(collection.Products.Nodes)
			return nil
		})
		g.Go(func() error {
			page.TopCollections, _ = fetchOptional(ctx, s.events, "commerce", "collections:top", func(ctx context.Context) ([]types.Collection, error) {
				return s.commerce.TopCollections(ctx, topCollectionsCount)
			})
			return nil
		})
		g.Go(func() error {
			conn, _ := fetchOptional(ctx, s.events, "commerce", "collections", func(ctx context.Context) (types.CollectionConnection, error) {
				return s.commerce.Collections(ctx, homeCollections)
			})
			page.Collections = conn.Nodes
			return nil
		})
	})
	if err != nil {
		s.fail(c, layout, "home", err)
		return
	}
	s.render(c, http.StatusOK, templates.Home, "", layout, page)
}

// homeContent reads the home copy from the configured source. A failed
// fetch renders the page without it.
func (s *Server) homeContent(ctx context.Context) views.Home {
	if s.cfg.Content.HomeSource == config.HomeSourceCMS && s.content != nil {
		contentType := s.cfg.Content.HomeContentType
		entry, ok := fetchOptional(ctx, s.events, "cms", "entry:"+contentType, func(ctx context.Context) (cms.Entry, error) {
			return s.content.FetchEntry(ctx, contentType)
		})
		if !ok {
			return views.Home{}
		}
		return views.HomeFromEntry(entry.Fields)
	}

	mo, ok := fetchOptional(ctx, s.events, "commerce", "metaobject:"+homeMetaobjectType, func(ctx context.Context) (commerce.Metaobject, error) {
		return s.commerce.Metaobject(ctx, homeMetaobjectType)
	})
	if !ok {
		return views.Home{}
	}
	return views.HomeFromMetaobject(mo.Fields)
}

func (s *Server) handleCollections(c *gin.Context) {
	var page views.CollectionsPage
	vars := s.pageVars(c, collectionsPageBy)
	path := s.paginationPath(c)

	layout, err := s.compose(c, func(ctx context.Context, g *errgroup.Group) {
		g.Go(func() error {
			conn, err := s.commerce.Collections(ctx, vars)
			if err != nil {
				return err
			}
			page.Collections = conn.Nodes
			page.Pagination = views.PaginationLinks(conn.PageInfo, path)
			return nil
		})
		g.Go(func() error {
			page.Heading = s.heading(ctx, "collection_page_heading", defaultCollectionTitle)
			return nil
		})
	})
	if err != nil {
		s.fail(c, layout, "collections", err)
		return
	}
	s.render(c, http.StatusOK, templates.Collections, page.Heading, layout, page)
}

func (s *Server) handleCollection(c *gin.Context) {
	handle := strings.TrimSpace(c.Param("handle"))
	switch {
	case handle == "":
		s.redirect(c, http.StatusFound, "/collections")
		return
	case handle == allProductsHandle:
		s.handleAllProducts(c)
		return
	}

	if err := s.validator.ValidateHandle(handle); err != nil {
		layout, _ := s.compose(c, nil)
		s.notFound(c, layout, "collection:"+handle)
		return
	}

	var page views.CollectionPage
	vars := s.pageVars(c, collectionsPageBy)
	path := s.paginationPath(c)

	layout, err := s.compose(c, func(ctx context.Context, g *errgroup.Group) {
		g.Go(func() error {
			collection, err := s.commerce.Collection(ctx, handle, vars)
			if err != nil {
				return err
			}
			page.Collection = collection
			page.Products = views.ProductCards(collection.Products.Nodes)
			page.Pagination = views.PaginationLinks(collection.Products.PageInfo, path)
			return nil
		})
	})
	if err != nil {
		s.fail(c, layout, "collection:"+handle, err)
		return
	}
	s.render(c, http.StatusOK, templates.Collection, page.Collection.Title, layout, page)
}

func (s *Server) handleAllProducts(c *gin.Context) {
	var page views.ProductsPage
	vars := s.pageVars(c, productsPageBy)
	path := s.paginationPath(c)

	layout, err := s.compose(c, func(ctx context.Context, g *errgroup.Group) {
		g.Go(func() error {
			conn, err := s.commerce.AllProducts(ctx, vars)
			if err != nil {
				return err
			}
			page.Products = views.ProductCards(conn.Nodes)
			page.Pagination = views.PaginationLinks(conn.PageInfo, path)
			return nil
		})
		g.Go(func() error {
			page.Heading = s.heading(ctx, "product_page_heading", defaultProductsTitle)
			return nil
		})
	})
	if err != nil {
		s.fail(c, layout, "products", err)
		return
	}
	s.render(c, http.StatusOK, templates.Products, page.Heading, layout, page)
}

func (s *Server) handleProduct(c *gin.Context) {
	handle := strings.TrimSpace(c.Param("handle"))
	if err := s.validator.ValidateHandle(handle); err != nil {
		layout, _ := s.compose(c, nil)
		s.notFound(c, layout, "product:"+handle)
		return
	}

	query := c.Request.URL.Query()
	selected := commerce.SelectedOptions(query)
	pathname := s.localized(c, c.Request.URL.Path)

	var (
		page       views.ProductPage
		detail     commerce.ProductDetail
		variants   []types.Variant
		delivery   = views.Delivery{Label: views.DefaultDeliveryLabel, ReturnPolicy: views.DefaultReturnPolicy}
		redirectTo string
	)

	layout, err := s.compose(c, func(ctx context.Context, g *errgroup.Group) {
		deliverySets := make(chan []commerce.Metaobject, 1)
		g.Go(func() error {
			nodes, _ := fetchOptional(ctx, s.events, "commerce", "metaobjects:"+productDetailMetaobjectType, func(ctx context.Context) ([]commerce.Metaobject, error) {
				return s.commerce.FetchAllMetaobjects(ctx, productDetailMetaobjectType)
			})
			deliverySets <- nodes
			return nil
		})
		g.Go(func() error {
			page.RelatedHeading = s.heading(ctx, "related_products_heading", defaultRelatedTitle)
			return nil
		})
		g.Go(func() error {
			variants, _ = fetchOptional(ctx, s.events, "commerce", "variants:"+handle, func(ctx context.Context) ([]types.Variant, error) {
				return s.commerce.Variants(ctx, handle)
			})
			return nil
		})
		g.Go(func() error {
			var err error
			detail, err = s.commerce.Product(ctx, handle, selected)
			if err != nil {
				return err
			}

			if target, ok := variantRedirect(&detail.Product, pathname, query); ok {
				redirectTo = target
				return nil
			}

			productID := detail.ID
			g.Go(func() error {
				related, _ := fetchOptional(ctx, s.events, "commerce", "recommendations:"+handle, func(ctx context.Context) ([]types.Product, error) {
					return s.commerce.Recommendations(ctx, productID)
				})
				if len(related) > maxRelatedProducts {
					related = related[:maxRelatedProducts]
				}
				page.Related = views.ProductCards(related)
				return nil
			})
			g.Go(func() error {
				var sets []commerce.Metaobject
				select {
				case sets = <-deliverySets:
				case <-ctx.Done():
				}
				delivery = views.DeliveryFrom(fieldSets(sets), productID)
				return nil
			})
			return nil
		})
	})
	if err != nil {
		s.fail(c, layout, "product:"+handle, err)
		return
	}
	if redirectTo != "" {
		c.Redirect(http.StatusFound, redirectTo)
		return
	}

	page.Product = detail.Product
	page.Variant = detail.SelectedVariant
	page.Content = views.ProductContentFrom(detail.Information)
	page.Delivery = delivery
	page.Options = views.ProductOptions(detail.Product, variants, detail.SelectedVariant, pathname, query)
	if v := detail.SelectedVariant; v != nil {
		page.PriceOff, _ = views.PriceOff(v.Price, v.CompareAtPrice)
	}

	s.render(c, http.StatusOK, templates.Product, productTitle(detail.Product), layout, page)
}

// variantRedirect applies the variant selection rule. A product whose only
// variant is the default one selects it; otherwise a request that selected
// no complete variant is sent to the URL of the first variant.
func variantRedirect(product *types.Product, pathname string, query url.Values) (string, bool) {
	if len(product.Variants.Nodes) == 0 {
		return "", false
	}

	first := product.Variants.Nodes[0]
	if first.IsDefault() {
		product.SelectedVariant = &first
		return "", false
	}
	if product.SelectedVariant != nil {
		return "", false
	}

	target := commerce.VariantURL(product.Handle, pathname, query, first.SelectedOptions)
	current := pathname
	if encoded := query.Encode(); encoded != "" {
		current += "?" + encoded
	}
	if target == current {
		return "", false
	}
	return target, true
}

func productTitle(p types.Product) string {
	if p.SEO.Title != "" {
		return p.SEO.Title
	}
	return p.Title
}
