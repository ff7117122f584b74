// Package views builds the per-page view models templates render. Builders
// only read resolved field sets and catalog types; every one of them accepts
// an empty FieldSet and returns the zero view.
package views

import (
	"strings"

	"github.com/composable-commerce/storefront/internal/fields"
)

// Link is a navigation target authored in content
type Link struct {
	URL    string
	Title  string
	NewTab bool
}

// Target is the anchor target attribute for the link
func (l Link) Target() string {
	if l.NewTab {
		return "_blank"
	}
	return "_self"
}

// LinkFrom reads a {url, title, open_in_new_tab} set. A link exists only
// when both url and title are present.
func LinkFrom(fs fields.FieldSet) (Link, bool) {
	return linkFrom(fs, "url", "title", fs)
}

// ctaLinkFrom reads the CMS shape {cta_title: {href, title}, open_in_new_tab}
func ctaLinkFrom(fs fields.FieldSet) (Link, bool) {
	return linkFrom(fs.Ref("cta_title"), "href", "title", fs)
}

func linkFrom(target fields.FieldSet, urlKey, titleKey string, flags fields.FieldSet) (Link, bool) {
	url, ok := target.Leaf(urlKey)
	url = strings.TrimSpace(url)
	if !ok || url == "" {
		return Link{}, false
	}
	title, ok := target.Leaf(titleKey)
	if !ok || title == "" {
		return Link{}, false
	}
	return Link{URL: url, Title: title, NewTab: flags.Flag("open_in_new_tab")}, true
}

func optionalLink(l Link, ok bool) *Link {
	if !ok {
		return nil
	}
	return &l
}

// linksFrom keeps the links of nodes that resolve, in source order
func linksFrom(nodes []fields.Node, read func(fields.FieldSet) (Link, bool)) []Link {
	var links []Link
	for _, node := range nodes {
		if link, ok := read(node.Fields); ok {
			links = append(links, link)
		}
	}
	return links
}

// MenuSection is a titled list of links
type MenuSection struct {
	Key     string
	Heading string
	Links   []Link
}

// MenuSectionFrom reads a menu set: its heading from titleKey and its links
// from the sub_menu references.
func MenuSectionFrom(fs fields.FieldSet, titleKey string) MenuSection {
	found := fs.FindAll(titleKey, "sub_menu")

	var section MenuSection
	if f, ok := found[titleKey]; ok && f.Value != nil {
		section.Heading = *f.Value
	}
	section.Links = linksFrom(fields.ResolveReferences(found["sub_menu"]), LinkFrom)
	return section
}
