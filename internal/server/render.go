package server

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/composable-commerce/storefront/internal/audit"
	"github.com/composable-commerce/storefront/internal/cms"
	"github.com/composable-commerce/storefront/internal/commerce"
	"github.com/composable-commerce/storefront/internal/templates"
	"github.com/composable-commerce/storefront/internal/views"
)

func (s *Server) render(c *gin.Context, status int, name, title string, layout views.Layout, content any) {
	c.HTML(status, name, views.Page{
		Title:   title,
		Locale:  localePrefix(c.Request.Context()),
		Layout:  layout,
		Content: content,
	})
}

// redirect sends the client to a storefront path under the request locale
func (s *Server) redirect(c *gin.Context, code int, path string) {
	c.Redirect(code, s.localized(c, path))
}

func (s *Server) localized(c *gin.Context, path string) string {
	return templates.Localized(localePrefix(c.Request.Context()), path)
}

// fail renders the page for a failed required fetch: 404 when the resource
// does not exist, 502 otherwise.
func (s *Server) fail(c *gin.Context, layout views.Layout, resource string, err error) {
	if errors.Is(err, commerce.ErrNotFound) || errors.Is(err, cms.ErrNoEntry) {
		s.notFound(c, layout, resource)
		return
	}

	s.log.Error().Err(err).Str("resource", resource).Str("request_id", c.GetString(requestIDKey)).Msg("upstream request failed")
	s.events.LogError("commerce", err, map[string]interface{}{
		"resource":   resource,
		"request_id": c.GetString(requestIDKey),
	})
	s.render(c, http.StatusBadGateway, templates.Error, "Unavailable", layout, views.ErrorPage{
		Status:  http.StatusBadGateway,
		Message: "The store is temporarily unavailable. Please try again shortly.",
	})
}

func (s *Server) notFound(c *gin.Context, layout views.Layout, resource string) {
	s.events.Log(&audit.Event{
		Type:      audit.EventNotFound,
		Severity:  audit.SeverityInfo,
		Source:    "server",
		Resource:  resource,
		Action:    c.Request.Method,
		Result:    "not_found",
		RequestID: c.GetString(requestIDKey),
	})
	s.render(c, http.StatusNotFound, templates.Error, "Not found", layout, views.ErrorPage{
		Status:  http.StatusNotFound,
		Message: "We couldn't find the page you're looking for.",
	})
}

func (s *Server) handleNotFound(c *gin.Context) {
	layout, _ := s.compose(c, nil)
	s.notFound(c, layout, c.Request.URL.Path)
}

// paginationPath is the localized path pagination links point at
func (s *Server) paginationPath(c *gin.Context) string {
	return s.localized(c, c.Request.URL.Path)
}

// pageVars reads cursor pagination from the query; a malformed cursor
// falls back to the first page.
func (s *Server) pageVars(c *gin.Context, pageBy int) commerce.PageVars {
	q := c.Request.URL.Query()
	if cursor := q.Get("cursor"); cursor != "" && s.validator.ValidateCursor(cursor) != nil {
		q = url.Values{}
	}
	return commerce.PageVarsFromQuery(q, pageBy)
}
