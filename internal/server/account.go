package server

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/composable-commerce/storefront/internal/audit"
	"github.com/composable-commerce/storefront/internal/commerce"
	"github.com/composable-commerce/storefront/internal/templates"
	"github.com/composable-commerce/storefront/internal/validation"
	"github.com/composable-commerce/storefront/internal/views"
	"github.com/composable-commerce/storefront/pkg/types"
)

// Password change errors
var (
	ErrCurrentPasswordRequired = errors.New("current password is required")
	ErrPasswordsMismatch       = errors.New("new passwords must match")
	ErrPasswordUnchanged       = errors.New("new password must be different than current password")
)

func (s *Server) handleLogin(c *gin.Context) {
	if sessionFrom(c).LoggedIn() {
		s.redirect(c, http.StatusFound, "/account")
		return
	}
	layout, _ := s.compose(c, nil)
	s.render(c, http.StatusOK, templates.Login, "Login", layout, views.LoginPage{})
}

func (s *Server) handleLoginSubmit(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")

	loginError := func(status int, message string) {
		layout, _ := s.compose(c, nil)
		s.render(c, status, templates.Login, "Login", layout, views.LoginPage{Email: email, Error: message})
	}

	if email == "" || password == "" {
		loginError(http.StatusBadRequest, "Please provide both an email and a password.")
		return
	}
	if err := s.validator.ValidateEmail(email); err != nil {
		loginError(http.StatusBadRequest, err.Error())
		return
	}

	token, err := s.commerce.CustomerAccessTokenCreate(c.Request.Context(), email, password)
	var userErrs commerce.UserErrors
	switch {
	case errors.As(err, &userErrs), errors.Is(err, commerce.ErrUnauthenticated):
		s.events.LogCustomer(audit.EventLoginFailed, email, false, map[string]interface{}{"request_id": c.GetString(requestIDKey)})
		message := "Incorrect email or password."
		if len(userErrs) > 0 {
			message = userErrs[0].Message
		}
		loginError(http.StatusBadRequest, message)
		return
	case err != nil:
		layout, _ := s.compose(c, nil)
		s.fail(c, layout, "customer:login", err)
		return
	}

	sess := sessionFrom(c)
	sess.CustomerAccessToken = token.AccessToken
	s.saveSession(c, sess)
	s.events.LogCustomer(audit.EventLogin, email, true, map[string]interface{}{"expires_at": token.ExpiresAt})

	s.redirect(c, http.StatusSeeOther, "/account")
}

func (s *Server) handleLogout(c *gin.Context) {
	sess := sessionFrom(c)
	if token := sess.CustomerAccessToken; token != "" {
		if err := s.commerce.CustomerAccessTokenDelete(c.Request.Context(), token); err != nil {
			s.log.Warn().Err(err).Msg("failed to revoke customer access token")
		}
		s.events.LogCustomer(audit.EventLogout, "", true, nil)
	}

	sess.CustomerAccessToken = ""
	s.saveSession(c, sess)
	s.redirect(c, http.StatusSeeOther, "/")
}

// loadCustomer composes the layout with the signed in customer. An expired
// token ends the login.
func (s *Server) loadCustomer(c *gin.Context) (views.Layout, types.Customer, bool) {
	token := sessionFrom(c).CustomerAccessToken

	var customer types.Customer
	layout, err := s.compose(c, func(ctx context.Context, g *errgroup.Group) {
		g.Go(func() error {
			var err error
			customer, err = s.commerce.Customer(ctx, token)
			return err
		})
	})
	switch {
	case errors.Is(err, commerce.ErrUnauthenticated):
		s.expireLogin(c)
		return layout, customer, false
	case err != nil:
		s.fail(c, layout, "customer", err)
		return layout, customer, false
	}
	return layout, customer, true
}

func (s *Server) expireLogin(c *gin.Context) {
	sess := sessionFrom(c)
	sess.CustomerAccessToken = ""
	s.saveSession(c, sess)
	s.redirect(c, http.StatusFound, "/account/login")
}

func (s *Server) handleOrders(c *gin.Context) {
	layout, customer, ok := s.loadCustomer(c)
	if !ok {
		return
	}
	s.render(c, http.StatusOK, templates.Orders, "Orders", layout, views.AccountPage{Customer: customer})
}

func (s *Server) handleProfile(c *gin.Context) {
	layout, customer, ok := s.loadCustomer(c)
	if !ok {
		return
	}
	s.render(c, http.StatusOK, templates.Profile, "Profile", layout, views.AccountPage{Customer: customer})
}

func (s *Server) handleProfileSubmit(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	input, err := ProfileUpdateFromForm(s.validator, c.Request.PostForm)
	if err != nil {
		layout, customer, ok := s.loadCustomer(c)
		if !ok {
			return
		}
		s.render(c, http.StatusBadRequest, templates.Profile, "Profile", layout, views.AccountPage{Customer: customer, Error: err.Error()})
		return
	}

	sess := sessionFrom(c)
	customer, token, err := s.commerce.CustomerUpdate(c.Request.Context(), sess.CustomerAccessToken, input)
	var userErrs commerce.UserErrors
	switch {
	case errors.As(err, &userErrs):
		s.events.LogCustomer(audit.EventProfileUpdate, "", false, map[string]interface{}{"errors": userErrs.Error()})
		layout, current, ok := s.loadCustomer(c)
		if !ok {
			return
		}
		s.render(c, http.StatusBadRequest, templates.Profile, "Profile", layout, views.AccountPage{Customer: current, Error: userErrs[0].Message})
		return
	case errors.Is(err, commerce.ErrUnauthenticated):
		s.expireLogin(c)
		return
	case err != nil:
		layout, _ := s.compose(c, nil)
		s.fail(c, layout, "customer:update", err)
		return
	}

	if token != nil && token.AccessToken != "" && token.AccessToken != sess.CustomerAccessToken {
		sess.CustomerAccessToken = token.AccessToken
		s.saveSession(c, sess)
	}
	s.events.LogCustomer(audit.EventProfileUpdate, customer.Email, true, map[string]interface{}{"password_changed": input.Password != nil})

	layout, _ := s.compose(c, nil)
	s.render(c, http.StatusOK, templates.Profile, "Profile", layout, views.AccountPage{Customer: customer, Saved: true})
}

// ProfileUpdateFromForm reads the profile form. Fields absent from the form
// are left untouched; acceptsMarketing is a checkbox and always set. A new
// password requires the current one and a matching confirmation.
func ProfileUpdateFromForm(v *validation.Validator, form url.Values) (types.CustomerUpdateInput, error) {
	var input types.CustomerUpdateInput

	text := func(key string, validate func(string) error) (*string, error) {
		if !form.Has(key) {
			return nil, nil
		}
		value := v.SanitizeString(form.Get(key))
		if validate != nil {
			if err := validate(value); err != nil {
				return nil, err
			}
		}
		return &value, nil
	}

	var err error
	if input.FirstName, err = text("firstName", v.ValidateName); err != nil {
		return input, err
	}
	if input.LastName, err = text("lastName", v.ValidateName); err != nil {
		return input, err
	}
	if input.Phone, err = text("phone", v.ValidatePhone); err != nil {
		return input, err
	}
	optionalEmail := func(email string) error {
		if email == "" {
			return nil
		}
		return v.ValidateEmail(email)
	}
	if input.Email, err = text("email", optionalEmail); err != nil {
		return input, err
	}
	if input.Email != nil && *input.Email == "" {
		input.Email = nil
	}

	accepts := form.Get("acceptsMarketing") == "on"
	input.AcceptsMarketing = &accepts

	current := form.Get("currentPassword")
	next := form.Get("newPassword")
	if next == "" {
		return input, nil
	}
	switch {
	case current == "":
		return input, ErrCurrentPasswordRequired
	case next != form.Get("newPasswordConfirm"):
		return input, ErrPasswordsMismatch
	case next == current:
		return input, ErrPasswordUnchanged
	}
	if err := v.ValidatePassword(next); err != nil {
		return input, err
	}
	input.Password = &next
	return input, nil
}
