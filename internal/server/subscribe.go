package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/composable-commerce/storefront/internal/audit"
	"github.com/composable-commerce/storefront/internal/storage"
	"github.com/composable-commerce/storefront/pkg/types"
)

// handleSubscribe stores a newsletter sign-up from the footer form and
// sends the visitor back to the page they came from.
func (s *Server) handleSubscribe(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))
	if err := s.validator.ValidateEmail(email); err != nil {
		c.String(http.StatusBadRequest, "Please enter a valid email address.")
		return
	}

	locale := localePrefix(c.Request.Context())
	sub := types.Subscriber{
		Email:     email,
		Source:    "footer",
		Locale:    strings.TrimPrefix(locale, "/"),
		CreatedAt: time.Now().UTC(),
	}

	added, err := s.subscribers.Add(c.Request.Context(), sub)
	switch {
	case errors.Is(err, storage.ErrInvalidEmail):
		c.String(http.StatusBadRequest, "Please enter a valid email address.")
		return
	case err != nil:
		s.log.Error().Err(err).Msg("failed to store subscriber")
		s.events.LogError("subscribers", err, map[string]interface{}{"request_id": c.GetString(requestIDKey)})
		c.String(http.StatusServiceUnavailable, "We couldn't sign you up right now. Please try again later.")
		return
	}

	result := "added"
	if !added {
		result = "exists"
	}
	s.events.Log(&audit.Event{
		Type:      audit.EventSubscribe,
		Severity:  audit.SeverityInfo,
		Source:    "newsletter",
		Customer:  email,
		Action:    "subscribe",
		Result:    result,
		RequestID: c.GetString(requestIDKey),
	})

	target := "/"
	if ref := c.PostForm("redirectTo"); ref != "" && s.validator.ValidateRedirect(ref) == nil {
		target = ref
	}
	s.redirect(c, http.StatusSeeOther, target)
}
