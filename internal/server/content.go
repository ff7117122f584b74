package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/composable-commerce/storefront/internal/cms"
	"github.com/composable-commerce/storefront/internal/commerce"
	"github.com/composable-commerce/storefront/internal/templates"
	"github.com/composable-commerce/storefront/internal/views"
)

const aboutHandle = "about"

func (s *Server) handlePage(c *gin.Context) {
	handle := strings.TrimSpace(c.Param("handle"))
	if handle == aboutHandle {
		s.handleAbout(c)
		return
	}
	if err := s.validator.ValidateHandle(handle); err != nil {
		layout, _ := s.compose(c, nil)
		s.notFound(c, layout, "page:"+handle)
		return
	}

	var page views.StaticPage
	layout, err := s.compose(c, func(ctx context.Context, g *errgroup.Group) {
		g.Go(func() error {
			p, err := s.commerce.Page(ctx, handle)
			if err != nil {
				return err
			}
			page.Page = p
			return nil
		})
		if s.content == nil {
			return
		}
		contentType, uid := s.cfg.Content.PagesContentType, s.cfg.Content.PagesEntryUID
		g.Go(func() error {
			entry, ok := fetchOptional(ctx, s.events, "cms", "entry:"+contentType+"/"+uid, func(ctx context.Context) (cms.Entry, error) {
				return s.content.FetchEntryByUID(ctx, contentType, uid)
			})
			if ok {
				page.Content = views.PageContentFrom(entry.Fields)
			}
			return nil
		})
	})
	if err != nil {
		s.fail(c, layout, "page:"+handle, err)
		return
	}

	title := page.Page.SEO.Title
	if title == "" {
		title = page.Page.Title
	}
	s.render(c, http.StatusOK, templates.StaticPage, title, layout, page)
}

func (s *Server) handleAbout(c *gin.Context) {
	var about views.About
	layout, err := s.compose(c, func(ctx context.Context, g *errgroup.Group) {
		g.Go(func() error {
			mo, ok := fetchOptional(ctx, s.events, "commerce", "metaobject:"+aboutMetaobjectType, func(ctx context.Context) (commerce.Metaobject, error) {
				return s.commerce.Metaobject(ctx, aboutMetaobjectType)
			})
			if ok {
				about = views.AboutFrom(mo.Fields)
			}
			return nil
		})
	})
	if err != nil {
		s.fail(c, layout, "about", err)
		return
	}

	title := about.Title
	if title == "" {
		title = "About"
	}
	s.render(c, http.StatusOK, templates.About, title, layout, about)
}
