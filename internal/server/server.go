// Package server composes storefront pages from the commerce API, the CMS
// and the metaobject content store and serves them over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/composable-commerce/storefront/internal/audit"
	"github.com/composable-commerce/storefront/internal/config"
	"github.com/composable-commerce/storefront/internal/session"
	"github.com/composable-commerce/storefront/internal/storage"
	"github.com/composable-commerce/storefront/internal/templates"
	"github.com/composable-commerce/storefront/internal/validation"
)

// Options wires a Server to its collaborators
type Options struct {
	Config      *config.Config
	Commerce    CommerceAPI
	Content     ContentAPI // nil when the CMS is not configured
	Subscribers storage.SubscriberStore
	Sessions    *session.Store
	Events      *audit.Logger
	Logger      zerolog.Logger
	Renderer    *templates.Renderer
}

// Server is the storefront HTTP server
type Server struct {
	cfg         *config.Config
	commerce    CommerceAPI
	content     ContentAPI
	subscribers storage.SubscriberStore
	sessions    *session.Store
	events      *audit.Logger
	log         zerolog.Logger
	renderer    *templates.Renderer
	validator   *validation.Validator
	rateLimiter *RateLimiter
	engine      *gin.Engine
	startTime   time.Time
}

// New creates a storefront server
func New(opts Options) (*Server, error) {
	switch {
	case opts.Config == nil:
		return nil, errors.New("server: config is required")
	case opts.Commerce == nil:
		return nil, errors.New("server: commerce client is required")
	case opts.Sessions == nil:
		return nil, errors.New("server: session store is required")
	case opts.Events == nil:
		return nil, errors.New("server: event logger is required")
	}

	if opts.Subscribers == nil {
		opts.Subscribers = storage.NewMemoryStore()
	}
	if opts.Renderer == nil {
		r, err := templates.New()
		if err != nil {
			return nil, err
		}
		opts.Renderer = r
	}

	s := &Server{
		cfg:         opts.Config,
		commerce:    opts.Commerce,
		content:     opts.Content,
		subscribers: opts.Subscribers,
		sessions:    opts.Sessions,
		events:      opts.Events,
		log:         opts.Logger,
		renderer:    opts.Renderer,
		validator:   validation.NewValidator(),
		startTime:   time.Now(),
	}

	limit := opts.Config.Server.RateLimit
	if limit.RequestsPerMinute > 0 || limit.RequestsPerHour > 0 {
		s.rateLimiter = NewRateLimiter(limit.RequestsPerMinute, limit.RequestsPerHour)
	}

	s.engine = s.routes()
	return s, nil
}

func (s *Server) routes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.HTMLRender = s.renderer
	r.Use(requestID(), s.accessLog(), gin.CustomRecovery(s.recover), rateLimit(s.rateLimiter, s.events), s.loadSession())

	r.GET("/healthz", s.handleHealth)

	r.GET("/", s.handleHome)
	r.GET("/collections", s.handleCollections)
	r.GET("/collections/:handle", s.handleCollection)
	r.GET("/products", func(c *gin.Context) { s.redirect(c, http.StatusFound, "/collections/all") })
	r.GET("/products/:handle", s.handleProduct)
	r.GET("/pages/:handle", s.handlePage)

	r.GET("/cart", s.handleCart)
	r.POST("/cart", s.handleCartAction)

	r.POST("/subscribe", s.handleSubscribe)

	account := r.Group("/account")
	{
		account.GET("/login", s.handleLogin)
		account.POST("/login", s.handleLoginSubmit)
		account.POST("/logout", s.handleLogout)

		private := account.Group("", s.requireCustomer())
		private.GET("", func(c *gin.Context) { s.redirect(c, http.StatusFound, "/account/orders") })
		private.GET("/orders", s.handleOrders)
		private.GET("/profile", s.handleProfile)
		private.POST("/profile", s.handleProfileSubmit)
	}

	r.NoRoute(s.handleNotFound)
	return r
}

// Handler returns the HTTP handler. A leading /{language}-{country} path
// segment selects the request locale and is stripped before routing.
func (s *Server) Handler() http.Handler {
	return localeHandler(s.engine)
}

// Run serves until ctx is done, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr(),
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	s.events.LogSystem(audit.EventStartup, "storefront server started", map[string]interface{}{
		"addr":        srv.Addr,
		"home_source": s.cfg.Content.HomeSource,
		"cms":         s.content != nil,
	})

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to serve on %s: %w", srv.Addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)

	s.events.LogSystem(audit.EventShutdown, "storefront server stopped", map[string]interface{}{
		"uptime": time.Since(s.startTime).Round(time.Second).String(),
	})
	if err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
