package server

import (
	"context"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/composable-commerce/storefront/internal/audit"
	"github.com/composable-commerce/storefront/internal/commerce"
	"github.com/composable-commerce/storefront/internal/fields"
	"github.com/composable-commerce/storefront/internal/session"
	"github.com/composable-commerce/storefront/internal/views"
	"github.com/composable-commerce/storefront/pkg/types"
)

// Metaobject types pages read their content from
const (
	homeMetaobjectType          = "home"
	footerMetaobjectType        = "footer"
	aboutMetaobjectType         = "about_us"
	productDetailMetaobjectType = "product_detail_page"
	headingsMetaobjectType      = "product_page_contents"
)

// fetchOptional runs fetch and collapses a failure into an absent value.
// Failures are recorded as FETCH_FAILED events.
func fetchOptional[T any](ctx context.Context, events *audit.Logger, source, resource string, fetch func(context.Context) (T, error)) (T, bool) {
	v, err := fetch(ctx)
	if err != nil {
		events.LogFetchFailure(source, resource, err, requestIDFrom(ctx))
		var zero T
		return zero, false
	}
	return v, true
}

// compose loads the layout and the page data concurrently. load adds the
// page's own fetches to g; only those may fail the page.
func (s *Server) compose(c *gin.Context, load func(ctx context.Context, g *errgroup.Group)) (views.Layout, error) {
	l, err := s.composeLayout(c, load)
	return l.view(), err
}

func (s *Server) composeLayout(c *gin.Context, load func(ctx context.Context, g *errgroup.Group)) (*layoutLoad, error) {
	g, ctx := errgroup.WithContext(c.Request.Context())
	l := s.loadLayout(ctx, g, sessionFrom(c))
	if load != nil {
		load(ctx, g)
	}
	return l, g.Wait()
}

// layoutLoad collects the layout fetches. Each field is written by exactly
// one goroutine and read after the group is done.
type layoutLoad struct {
	storeDomain string
	loggedIn    bool
	header      commerce.Header
	footer      fields.FieldSet
	cart        types.Cart
	hasCart     bool
}

func (s *Server) loadLayout(ctx context.Context, g *errgroup.Group, sess session.Data) *layoutLoad {
	l := &layoutLoad{storeDomain: s.cfg.Commerce.StoreDomain, loggedIn: sess.LoggedIn()}

	menuHandle := s.cfg.Content.HeaderMenuHandle
	g.Go(func() error {
		l.header, _ = fetchOptional(ctx, s.events, "commerce", "menu:"+menuHandle, func(ctx context.Context) (commerce.Header, error) {
			return s.commerce.Header(ctx, menuHandle)
		})
		return nil
	})

	g.Go(func() error {
		footer, ok := fetchOptional(ctx, s.events, "commerce", "metaobject:"+footerMetaobjectType, func(ctx context.Context) (commerce.Metaobject, error) {
			return s.commerce.Metaobject(ctx, footerMetaobjectType)
		})
		if ok {
			l.footer = footer.Fields
		}
		return nil
	})

	if sess.CartID != "" {
		g.Go(func() error {
			l.cart, l.hasCart = fetchOptional(ctx, s.events, "commerce", "cart", func(ctx context.Context) (types.Cart, error) {
				return s.commerce.Cart(ctx, sess.CartID)
			})
			return nil
		})
	}
	return l
}

func (l *layoutLoad) view() views.Layout {
	return views.Layout{
		ShopName:  l.header.Shop.Name,
		Menu:      views.HeaderMenu(l.header.Menu, l.header.Shop.PrimaryDomain.URL, l.storeDomain),
		Footer:    views.FooterFrom(l.footer),
		CartCount: l.cart.TotalQuantity,
		LoggedIn:  l.loggedIn,
	}
}

// metaobjectSets loads every metaobject of typ as field sets; a failure
// yields none.
func (s *Server) metaobjectSets(ctx context.Context, typ string) []fields.FieldSet {
	nodes, _ := fetchOptional(ctx, s.events, "commerce", "metaobjects:"+typ, func(ctx context.Context) ([]commerce.Metaobject, error) {
		return s.commerce.FetchAllMetaobjects(ctx, typ)
	})
	return fieldSets(nodes)
}

func fieldSets(nodes []commerce.Metaobject) []fields.FieldSet {
	sets := make([]fields.FieldSet, 0, len(nodes))
	for _, n := range nodes {
		sets = append(sets, n.Fields)
	}
	return sets
}

// heading reads one heading from the product_page_contents metaobjects
func (s *Server) heading(ctx context.Context, key, fallback string) string {
	if h := views.HeadingFrom(s.metaobjectSets(ctx, headingsMetaobjectType), key); h != "" {
		return h
	}
	return fallback
}
