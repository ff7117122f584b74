package views

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/composable-commerce/storefront/internal/commerce"
	"github.com/composable-commerce/storefront/pkg/types"
)

// PriceOff returns compareAt minus price with two decimals when the
// product is discounted.
func PriceOff(price types.Money, compareAt *types.Money) (string, bool) {
	if compareAt == nil {
		return "", false
	}
	p, err := strconv.ParseFloat(price.Amount, 64)
	if err != nil || p <= 0 {
		return "", false
	}
	c, err := strconv.ParseFloat(compareAt.Amount, 64)
	if err != nil || p >= c {
		return "", false
	}
	return strconv.FormatFloat(c-p, 'f', 2, 64), true
}

// FormatMoney renders an amount with its currency code
func FormatMoney(m types.Money) string {
	amount, err := strconv.ParseFloat(m.Amount, 64)
	if err != nil {
		return strings.TrimSpace(m.Amount + " " + m.CurrencyCode)
	}
	return fmt.Sprintf("%.2f %s", amount, m.CurrencyCode)
}

// OptionGroup is one product option in the variant selector
type OptionGroup struct {
	Name   string
	Values []OptionValue
}

// OptionValue is one selectable value of an option
type OptionValue struct {
	Value     string
	Available bool
	Active    bool
	URL       string
}

// ProductOptions builds the variant selector. Options with a single value
// are hidden. Each value links to the variant that swaps in that value while
// keeping the rest of the current selection.
func ProductOptions(product types.Product, variants []types.Variant, selected *types.Variant, pathname string, query url.Values) []OptionGroup {
	current := map[string]string{}
	if selected != nil {
		for _, opt := range selected.SelectedOptions {
			current[opt.Name] = opt.Value
		}
	} else {
		for _, opt := range commerce.SelectedOptions(query) {
			current[opt.Name] = opt.Value
		}
	}

	var groups []OptionGroup
	for _, option := range product.Options {
		if len(option.Values) < 2 {
			continue
		}

		group := OptionGroup{Name: option.Name}
		for _, value := range option.Values {
			want := make([]types.SelectedOption, 0, len(product.Options))
			for _, o := range product.Options {
				v := current[o.Name]
				if o.Name == option.Name {
					v = value
				}
				if v != "" {
					want = append(want, types.SelectedOption{Name: o.Name, Value: v})
				}
			}

			variant := matchVariant(variants, want)
			group.Values = append(group.Values, OptionValue{
				Value:     value,
				Available: variant != nil && variant.AvailableForSale,
				Active:    current[option.Name] == value,
				URL:       commerce.VariantURL(product.Handle, pathname, query, want),
			})
		}
		groups = append(groups, group)
	}
	return groups
}

func matchVariant(variants []types.Variant, want []types.SelectedOption) *types.Variant {
	for i := range variants {
		if hasOptions(variants[i], want) {
			return &variants[i]
		}
	}
	return nil
}

func hasOptions(v types.Variant, want []types.SelectedOption) bool {
	for _, w := range want {
		found := false
		for _, opt := range v.SelectedOptions {
			if opt.Name == w.Name && opt.Value == w.Value {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Pagination holds previous/next page links; empty when there is no page
type Pagination struct {
	Previous string
	Next     string
}

// PaginationLinks builds cursor links for path in the form read by
// commerce.PageVarsFromQuery.
func PaginationLinks(info types.PageInfo, path string) Pagination {
	var p Pagination
	if info.HasPreviousPage && info.StartCursor != "" {
		p.Previous = path + "?" + url.Values{"direction": {"previous"}, "cursor": {info.StartCursor}}.Encode()
	}
	if info.HasNextPage && info.EndCursor != "" {
		p.Next = path + "?" + url.Values{"direction": {"next"}, "cursor": {info.EndCursor}}.Encode()
	}
	return p
}

// FallbackHeaderMenu is used when the header menu cannot be loaded
var FallbackHeaderMenu = types.Menu{
	ID: "fallback",
	Items: []types.MenuItem{
		{ID: "collections", Title: "Collections", Type: "HTTP", URL: "/collections"},
		{ID: "blog", Title: "Blog", Type: "HTTP", URL: "/blogs/journal"},
		{ID: "policies", Title: "Policies", Type: "HTTP", URL: "/policies"},
		{ID: "about", Title: "About", Type: "PAGE", URL: "/pages/about"},
	},
}

// HeaderMenu turns the navigation menu into links. Links to the shop's own
// domains are made relative; items without a URL are dropped.
func HeaderMenu(menu *types.Menu, primaryDomainURL, publicStoreDomain string) []Link {
	if menu == nil {
		menu = &FallbackHeaderMenu
	}

	var links []Link
	for _, item := range menu.Items {
		if item.URL == "" {
			continue
		}
		links = append(links, Link{
			URL:   internalPath(item.URL, primaryDomainURL, publicStoreDomain),
			Title: item.Title,
		})
	}
	return links
}

func internalPath(raw, primaryDomainURL, publicStoreDomain string) string {
	internal := strings.Contains(raw, "myshopify.com") ||
		(publicStoreDomain != "" && strings.Contains(raw, publicStoreDomain)) ||
		(primaryDomainURL != "" && strings.Contains(raw, primaryDomainURL))
	if !internal {
		return raw
	}

	u, err := url.Parse(raw)
	if err != nil || u.Path == "" {
		return "/"
	}
	return u.Path
}
