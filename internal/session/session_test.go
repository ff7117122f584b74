package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(testSecret, Options{CookieName: "session", MaxAge: time.Hour})
	require.NoError(t, err)
	return store
}

func roundTrip(t *testing.T, store *Store, data Data) (*http.Cookie, Data) {
	t.Helper()
	rec := httptest.NewRecorder()
	require.NoError(t, store.Save(rec, data))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	return cookies[0], store.Load(req)
}

func TestSaveAndLoad(t *testing.T) {
	store := newTestStore(t)
	data := Data{CustomerAccessToken: "tok", CartID: "gid://shopify/Cart/1"}

	cookie, loaded := roundTrip(t, store, data)
	assert.Equal(t, data, loaded)
	assert.True(t, loaded.LoggedIn())
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, 3600, cookie.MaxAge)
	assert.NotContains(t, cookie.Value, "tok")
}

func TestLoadWithoutCookie(t *testing.T) {
	store := newTestStore(t)
	data := store.Load(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, data.IsZero())
}

func TestTamperedCookieIsEmpty(t *testing.T) {
	store := newTestStore(t)
	cookie, _ := roundTrip(t, store, Data{CartID: "gid://shopify/Cart/1"})

	tampered := []byte(cookie.Value)
	mid := len(tampered) / 2
	if tampered[mid] == 'A' {
		tampered[mid] = 'B'
	} else {
		tampered[mid] = 'A'
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: string(tampered)})
	assert.True(t, store.Load(req).IsZero())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: "not-a-sealed-value"})
	assert.True(t, store.Load(req).IsZero())
}

func TestCookieFromOtherSecretIsEmpty(t *testing.T) {
	cookie, _ := roundTrip(t, newTestStore(t), Data{CartID: "c"})

	other, err := NewStore("another-secret-of-enough-length", Options{CookieName: "session"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	assert.True(t, other.Load(req).IsZero())
}

func TestSaveEmptyClears(t *testing.T) {
	store := newTestStore(t)
	rec := httptest.NewRecorder()
	require.NoError(t, store.Save(rec, Data{}))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestNewStoreRejectsShortSecret(t *testing.T) {
	_, err := NewStore("short", Options{})
	assert.Error(t, err)
}
