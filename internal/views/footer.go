package views

import (
	"html/template"

	"github.com/composable-commerce/storefront/internal/fields"
)

// FooterMenuOrder is the order footer menus render in
var FooterMenuOrder = []string{"product_menu", "collection_menu", "company_menu"}

// Footer is the site footer
type Footer struct {
	Menus     []MenuSection
	Subscribe Subscribe
	Social    []SocialLink
	Copyright template.HTML
}

// Subscribe is the newsletter form copy
type Subscribe struct {
	Message     string
	Description string
	Placeholder string
}

// SocialLink is an icon link
type SocialLink struct {
	Link
	IconURL string
}

// FooterFrom builds the footer from the footer metaobject fields
func FooterFrom(fs fields.FieldSet) Footer {
	var footer Footer

	for _, f := range fields.OrderBySchema(fs, FooterMenuOrder) {
		if !isFooterMenu(f.Key) {
			continue
		}
		node, ok := fields.ResolveReference(f)
		if !ok {
			continue
		}
		titleKey := "heading"
		if f.Key == "product_menu" {
			titleKey = "menu_title"
		}
		section := MenuSectionFrom(node.Fields, titleKey)
		section.Key = f.Key
		footer.Menus = append(footer.Menus, section)
	}

	subscribe := fs.Ref("subscribe")
	footer.Subscribe = Subscribe{
		Message:     subscribe.String("subscribe_message"),
		Description: subscribe.String("subscribe_description"),
		Placeholder: subscribe.String("mail_placeholder_text"),
	}

	for _, node := range fs.Refs("social_icon") {
		link, ok := LinkFrom(node.Fields.Ref("menu"))
		if !ok {
			continue
		}
		icon, _ := node.Fields.MediaURL("icon")
		footer.Social = append(footer.Social, SocialLink{Link: link, IconURL: icon})
	}

	footer.Copyright = template.HTML(fs.String("copyright")) // #nosec G203 - authored CMS markup
	return footer
}

func isFooterMenu(key string) bool {
	for _, k := range FooterMenuOrder {
		if k == key {
			return true
		}
	}
	return false
}
