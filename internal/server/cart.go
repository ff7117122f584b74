package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/composable-commerce/storefront/internal/audit"
	"github.com/composable-commerce/storefront/internal/cart"
	"github.com/composable-commerce/storefront/internal/commerce"
	"github.com/composable-commerce/storefront/internal/templates"
	"github.com/composable-commerce/storefront/internal/views"
	"github.com/composable-commerce/storefront/pkg/types"
)

func (s *Server) handleCart(c *gin.Context) {
	l, err := s.composeLayout(c, nil)
	if err != nil {
		s.fail(c, l.view(), "cart", err)
		return
	}

	var current *types.Cart
	if l.hasCart {
		current = &l.cart
	}
	s.render(c, http.StatusOK, templates.Cart, "Cart", l.view(), views.CartPageFrom(current))
}

func (s *Server) handleCartAction(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		s.cartError(c, http.StatusBadRequest, "The cart form could not be read.")
		return
	}
	req, err := cart.ParseForm(c.Request.PostForm)
	if err != nil {
		s.cartError(c, http.StatusBadRequest, err.Error())
		return
	}

	sess := sessionFrom(c)
	if req.Action != cart.LinesAdd && sess.CartID == "" {
		s.redirect(c, http.StatusSeeOther, "/cart")
		return
	}

	ctx := c.Request.Context()
	var updated types.Cart
	switch req.Action {
	case cart.LinesAdd:
		if sess.CartID != "" {
			updated, err = s.commerce.CartLinesAdd(ctx, sess.CartID, req.AddLines())
		}
		if sess.CartID == "" || errors.Is(err, commerce.ErrNotFound) {
			updated, err = s.commerce.CartCreate(ctx, req.AddLines())
		}
	case cart.LinesUpdate:
		updated, err = s.commerce.CartLinesUpdate(ctx, sess.CartID, req.UpdateLines())
	case cart.LinesRemove:
		updated, err = s.commerce.CartLinesRemove(ctx, sess.CartID, []string{req.LineID})
	}

	var userErrs commerce.UserErrors
	switch {
	case errors.As(err, &userErrs):
		s.cartError(c, http.StatusBadRequest, userErrs.Error())
		return
	case err != nil:
		layout, _ := s.compose(c, nil)
		s.fail(c, layout, "cart:"+string(req.Action), err)
		return
	}

	s.events.Log(&audit.Event{
		Type:      audit.EventCartUpdate,
		Severity:  audit.SeverityInfo,
		Source:    "cart",
		Resource:  updated.ID,
		Action:    string(req.Action),
		Result:    "success",
		Details:   map[string]interface{}{"total_quantity": updated.TotalQuantity},
		RequestID: c.GetString(requestIDKey),
	})

	if updated.ID != sess.CartID {
		sess.CartID = updated.ID
		s.saveSession(c, sess)
	}

	target := "/cart"
	if req.RedirectTo != "" {
		target = req.RedirectTo
	}
	s.redirect(c, http.StatusSeeOther, target)
}

// cartError re-renders the cart with a message
func (s *Server) cartError(c *gin.Context, status int, message string) {
	l, _ := s.composeLayout(c, nil)

	var current *types.Cart
	if l.hasCart {
		current = &l.cart
	}
	page := views.CartPageFrom(current)
	page.Error = message
	s.render(c, status, templates.Cart, "Cart", l.view(), page)
}
