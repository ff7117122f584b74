package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/composable-commerce/storefront/internal/commerce"
	"github.com/composable-commerce/storefront/internal/session"
)

const (
	requestIDKey  = "request_id"
	sessionKey    = "session"
	requestHeader = "X-Request-ID"
)

type requestIDCtxKey struct{}

// localeHandler strips a locale segment off the path and stores the locale
// in the request context.
func localeHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		locale, rest, ok := commerce.ParseLocalePath(r.URL.Path)
		if ok {
			r = r.WithContext(commerce.WithLocale(r.Context(), locale))
			u := *r.URL
			u.Path = rest
			u.RawPath = ""
			r.URL = &u
		}
		next.ServeHTTP(w, r)
	})
}

// localePrefix is the path prefix of the request locale, empty for the default
func localePrefix(ctx context.Context) string {
	return commerce.LocaleFromContext(ctx, commerce.Locale{}).PathPrefix
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestHeader)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestHeader, id)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), requestIDCtxKey{}, id))
		c.Next()
	}
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDCtxKey{}).(string)
	return id
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		event := s.log.Info()
		if status >= http.StatusInternalServerError {
			event = s.log.Error()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("locale", localePrefix(c.Request.Context())).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Str("request_id", c.GetString(requestIDKey)).
			Msg("request")

		if c.Request.Method == http.MethodGet && status != http.StatusNotFound && c.Request.URL.Path != "/healthz" {
			s.events.LogPage(c.Request.URL.Path, status, c.GetString(requestIDKey))
		}
	}
}

func (s *Server) recover(c *gin.Context, recovered any) {
	s.log.Error().Interface("panic", recovered).Str("path", c.Request.URL.Path).Msg("handler panicked")
	s.events.LogError("server", fmt.Errorf("panic: %v", recovered), map[string]interface{}{"path": c.Request.URL.Path})
	c.AbortWithStatus(http.StatusInternalServerError)
}

func (s *Server) loadSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(sessionKey, s.sessions.Load(c.Request))
		c.Next()
	}
}

func sessionFrom(c *gin.Context) session.Data {
	data, _ := c.Get(sessionKey)
	sess, _ := data.(session.Data)
	return sess
}

func (s *Server) saveSession(c *gin.Context, data session.Data) {
	c.Set(sessionKey, data)
	if err := s.sessions.Save(c.Writer, data); err != nil {
		s.log.Error().Err(err).Msg("failed to save session")
	}
}

// requireCustomer redirects visitors without a customer token to the login page
func (s *Server) requireCustomer() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !sessionFrom(c).LoggedIn() {
			s.redirect(c, http.StatusFound, "/account/login")
			c.Abort()
			return
		}
		c.Next()
	}
}
