package commerce

import (
	"context"
	"regexp"
	"strings"
)

// Locale selects the market a query is priced and translated for
type Locale struct {
	Language string
	Country  string
	// PathPrefix is the URL prefix the locale was read from, e.g. "/en-gb"
	PathPrefix string
}

var localeSegment = regexp.MustCompile(`^/([a-zA-Z]{2})-([a-zA-Z]{2})(/|$)`)

// ParseLocalePath splits a leading /xx-yy segment off path. The returned
// path always starts with "/".
func ParseLocalePath(path string) (Locale, string, bool) {
	m := localeSegment.FindStringSubmatch(path)
	if m == nil {
		return Locale{}, path, false
	}

	prefix := "/" + strings.ToLower(m[1]) + "-" + strings.ToLower(m[2])
	rest := path[len(m[0])-len(m[3]):]
	if rest == "" {
		rest = "/"
	}

	return Locale{
		Language:   strings.ToUpper(m[1]),
		Country:    strings.ToUpper(m[2]),
		PathPrefix: prefix,
	}, rest, true
}

type localeKey struct{}

// WithLocale attaches a locale to ctx for Query to pick up
func WithLocale(ctx context.Context, locale Locale) context.Context {
	return context.WithValue(ctx, localeKey{}, locale)
}

// LocaleFromContext returns the locale stored in ctx or fallback
func LocaleFromContext(ctx context.Context, fallback Locale) Locale {
	if locale, ok := ctx.Value(localeKey{}).(Locale); ok {
		return locale
	}
	return fallback
}
