package commerce

import (
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/composable-commerce/storefront/pkg/types"
)

var localePathPattern = regexp.MustCompile(`(/[a-zA-Z]{2}-[a-zA-Z]{2}/)`)

// ignoredOptionParams are tracking parameters that are never product options
var ignoredOptionParams = []string{"_sid", "_pos", "_psq", "_ss", "_v", "fbclid"}

// VariantURL builds the product URL that selects the given options. A locale
// segment in pathname is kept and existing query parameters are preserved.
func VariantURL(handle, pathname string, query url.Values, options []types.SelectedOption) string {
	path := "/products/" + handle
	if m := localePathPattern.FindString(pathname); m != "" {
		path = m + "products/" + handle
	}

	params := url.Values{}
	for k, v := range query {
		params[k] = append([]string(nil), v...)
	}
	for _, opt := range options {
		params.Set(opt.Name, opt.Value)
	}

	if encoded := params.Encode(); encoded != "" {
		return path + "?" + encoded
	}
	return path
}

// SelectedOptions turns query parameters into product option selections,
// skipping tracking parameters. The result is sorted by option name.
func SelectedOptions(query url.Values) []types.SelectedOption {
	names := make([]string, 0, len(query))
	for name := range query {
		if isIgnoredOptionParam(name) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	options := make([]types.SelectedOption, 0, len(names))
	for _, name := range names {
		options = append(options, types.SelectedOption{Name: name, Value: query.Get(name)})
	}
	return options
}

func isIgnoredOptionParam(name string) bool {
	for _, prefix := range ignoredOptionParams {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}
