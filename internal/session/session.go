// Package session keeps the customer token and cart id in a sealed cookie.
package session

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/composable-commerce/storefront/internal/crypto"
)

// Data is what a session cookie carries
type Data struct {
	CustomerAccessToken string `json:"customer_access_token,omitempty"`
	CartID              string `json:"cart_id,omitempty"`
}

// IsZero reports whether the session carries nothing
func (d Data) IsZero() bool {
	return d.CustomerAccessToken == "" && d.CartID == ""
}

// LoggedIn reports whether a customer token is present
func (d Data) LoggedIn() bool {
	return d.CustomerAccessToken != ""
}

// Options configures the cookie
type Options struct {
	CookieName string
	MaxAge     time.Duration
	Secure     bool
}

// Store reads and writes sealed session cookies
type Store struct {
	sealer *crypto.Sealer
	opts   Options
}

// NewStore creates a store whose cookies are sealed with a key derived from secret
func NewStore(secret string, opts Options) (*Store, error) {
	sealer, err := crypto.NewSealer(secret)
	if err != nil {
		return nil, err
	}
	if opts.CookieName == "" {
		opts.CookieName = "session"
	}
	return &Store{sealer: sealer, opts: opts}, nil
}

// Load returns the session carried by r. A missing, tampered or
// undecryptable cookie yields an empty session.
func (s *Store) Load(r *http.Request) Data {
	cookie, err := r.Cookie(s.opts.CookieName)
	if err != nil || cookie.Value == "" {
		return Data{}
	}

	plaintext, err := s.sealer.Open(cookie.Value, s.aad())
	if err != nil {
		return Data{}
	}

	var data Data
	if err := json.Unmarshal(plaintext, &data); err != nil {
		return Data{}
	}
	return data
}

// Save writes data as the session cookie; an empty session clears it
func (s *Store) Save(w http.ResponseWriter, data Data) error {
	if data.IsZero() {
		s.Clear(w)
		return nil
	}

	plaintext, err := json.Marshal(data)
	if err != nil {
		return err
	}
	token, err := s.sealer.Seal(plaintext, s.aad())
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.opts.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.opts.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   s.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Clear expires the session cookie
func (s *Store) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.opts.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// aad binds sealed values to the cookie name
func (s *Store) aad() []byte {
	return []byte("cookie:" + s.opts.CookieName)
}
