package validation

import (
	"fmt"
	"net/mail"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// MaxQuantity bounds a single cart line
const MaxQuantity = 999

// Validator checks request input before it reaches the commerce API
type Validator struct {
	handlePattern *regexp.Regexp
	gidPattern    *regexp.Regexp
	phonePattern  *regexp.Regexp
	cursorPattern *regexp.Regexp

	// Patterns that never belong in storefront form input
	injectionPatterns []*regexp.Regexp
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{
		// Handles are lowercase slugs
		handlePattern: regexp.MustCompile(`^[a-z0-9]+(?:[-_][a-z0-9]+)*$`),

		// Global ids, e.g. gid://shopify/ProductVariant/123
		gidPattern: regexp.MustCompile(`^gid://[a-z]+/[A-Za-z]+/[A-Za-z0-9?=&._-]+$`),

		// E.164
		phonePattern: regexp.MustCompile(`^\+[1-9][0-9]{6,14}$`),

		// Opaque base64 cursors
		cursorPattern: regexp.MustCompile(`^[A-Za-z0-9+/=_:-]{1,512}$`),

		injectionPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)<\s*script`),
			regexp.MustCompile(`(?i)javascript:`),
			regexp.MustCompile(`(?i)on\w+\s*=`),
			regexp.MustCompile(`\x00`),
		},
	}
}

// ValidateHandle validates a product, collection or page handle
func (v *Validator) ValidateHandle(handle string) error {
	if handle == "" {
		return fmt.Errorf("handle cannot be empty")
	}
	if len(handle) > 255 {
		return fmt.Errorf("handle too long (max 255 characters)")
	}
	if !v.handlePattern.MatchString(handle) {
		return fmt.Errorf("invalid handle format: %q", handle)
	}
	return nil
}

// ValidateGID validates a global object id such as a variant or cart line id
func (v *Validator) ValidateGID(id string) error {
	if id == "" {
		return fmt.Errorf("id cannot be empty")
	}
	if !v.gidPattern.MatchString(id) {
		return fmt.Errorf("invalid id format")
	}
	return nil
}

// ValidateCursor validates an opaque pagination cursor
func (v *Validator) ValidateCursor(cursor string) error {
	if cursor == "" {
		return nil
	}
	if !v.cursorPattern.MatchString(cursor) {
		return fmt.Errorf("invalid cursor")
	}
	return nil
}

// ValidateEmail validates a customer or subscriber email address
func (v *Validator) ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}
	if len(email) > 254 {
		return fmt.Errorf("email too long")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("invalid email address")
	}
	if !strings.Contains(email[strings.LastIndex(email, "@"):], ".") {
		return fmt.Errorf("invalid email domain")
	}
	return nil
}

// ValidatePhone validates an optional E.164 phone number
func (v *Validator) ValidatePhone(phone string) error {
	if phone == "" {
		return nil
	}
	if !v.phonePattern.MatchString(phone) {
		return fmt.Errorf("phone must be in international format, e.g. +16135551111")
	}
	return nil
}

// ValidateName validates a first or last name
func (v *Validator) ValidateName(name string) error {
	if len(name) > 255 {
		return fmt.Errorf("name too long (max 255 characters)")
	}
	if v.containsInjection(name) {
		return fmt.Errorf("name contains invalid content")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return fmt.Errorf("name contains control characters")
		}
	}
	return nil
}

// ValidatePassword checks the minimum the commerce platform accepts
func (v *Validator) ValidatePassword(password string) error {
	if len(password) < 5 {
		return fmt.Errorf("password must be at least 5 characters")
	}
	if len(password) > 40 {
		return fmt.Errorf("password must be at most 40 characters")
	}
	return nil
}

// ParseQuantity parses a cart quantity form value
func (v *Validator) ParseQuantity(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 1, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("quantity must be a number")
	}
	if n < 0 || n > MaxQuantity {
		return 0, fmt.Errorf("quantity must be between 0 and %d", MaxQuantity)
	}
	return n, nil
}

// ValidateRedirect accepts only same-site absolute paths
func (v *Validator) ValidateRedirect(target string) error {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return fmt.Errorf("redirect must be a local path")
	}
	if strings.ContainsAny(target, "\r\n") {
		return fmt.Errorf("redirect contains invalid characters")
	}
	return nil
}

// SanitizeString trims input and strips control characters
func (v *Validator) SanitizeString(input string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			return -1
		}
		return r
	}, input))
}

func (v *Validator) containsInjection(input string) bool {
	for _, pattern := range v.injectionPatterns {
		if pattern.MatchString(input) {
			return true
		}
	}
	return false
}
