package views

import (
	"html/template"

	"github.com/composable-commerce/storefront/internal/fields"
)

// Home is the home page content. It is filled either from the "home"
// metaobject or from the CMS home entry; both shapes map to the same view.
type Home struct {
	Banner                Banner
	ShopNowTitle          string
	FeatureTitle          string
	ViewAll               *Link
	NewArrivalTitle       string
	NewArrivalDescription template.HTML
	TopCategoryTitle      string
	CollectionHeading     string
	Offer                 Offer
	BestSeller            BestSeller
}

// Banner is the hero section
type Banner struct {
	Heading     string
	Title       string
	Description template.HTML
	Buttons     []Link
}

// Offer is the promotional strip
type Offer struct {
	ImageURL string
	Title    string
	Subtitle string
	CTA      *Link
}

// BestSeller is the best seller section heading
type BestSeller struct {
	Title       string
	Description string
	CTA         *Link
}

// HomeFromMetaobject reads the fields of the "home" metaobject
func HomeFromMetaobject(fs fields.FieldSet) Home {
	banner := fs.Ref("banner_section")
	offer := fs.Ref("offer_section")
	best := fs.Ref("best_seller_section")

	offerImage, _ := offer.MediaURL("image")

	return Home{
		Banner: Banner{
			Heading:     banner.String("heading"),
			Title:       banner.String("title"),
			Description: html(banner.String("description")),
			Buttons:     linksFrom(banner.Refs("banner_cta"), LinkFrom),
		},
		ShopNowTitle:          fs.String("shop_now_title"),
		FeatureTitle:          fs.String("feature_title"),
		ViewAll:               optionalLink(LinkFrom(fs.Ref("view_all_product"))),
		NewArrivalTitle:       fs.String("new_arrival_title"),
		NewArrivalDescription: html(fs.String("new_arrival_description")),
		TopCategoryTitle:      fs.String("top_category_title"),
		CollectionHeading:     fs.String("collection_heading"),
		Offer: Offer{
			ImageURL: offerImage,
			Title:    offer.String("offer_title"),
			Subtitle: offer.String("offer_subtitle"),
			CTA:      optionalLink(LinkFrom(offer.Ref("cta"))),
		},
		BestSeller: BestSeller{
			Title:       best.String("title"),
			Description: best.String("description"),
			CTA:         optionalLink(LinkFrom(best.Ref("view_product"))),
		},
	}
}

// HomeFromEntry reads the CMS home entry
func HomeFromEntry(fs fields.FieldSet) Home {
	banner := fs.Ref("banner")
	offer := fs.Ref("offer_section")
	best := fs.Ref("best_seller")

	offerImage, _ := offer.MediaURL("image")

	return Home{
		Banner: Banner{
			Heading:     banner.String("banner_heading"),
			Title:       banner.String("banner_title"),
			Description: html(banner.String("banner_description")),
			Buttons:     linksFrom(banner.Ref("button").Refs("repo"), ctaLinkFrom),
		},
		ShopNowTitle:          fs.Path("best_seller", "shop_cta", "cta_title").String("title"),
		FeatureTitle:          fs.String("feature_title"),
		ViewAll:               optionalLink(ctaLinkFrom(fs.Ref("view_all_product"))),
		NewArrivalTitle:       fs.String("new_arrival_title"),
		NewArrivalDescription: html(fs.String("new_arrival_description")),
		TopCategoryTitle:      fs.String("top_category_title"),
		CollectionHeading:     fs.String("collection_heading"),
		Offer: Offer{
			ImageURL: offerImage,
			Title:    offer.String("offer_title"),
			Subtitle: offer.String("offer_subtitle"),
			CTA:      optionalLink(ctaLinkFrom(offer.Ref("cta"))),
		},
		BestSeller: BestSeller{
			Title:       best.String("title"),
			Description: best.String("description"),
			CTA:         optionalLink(ctaLinkFrom(best.Ref("view_product"))),
		},
	}
}

// html marks authored rich text as safe markup
func html(s string) template.HTML {
	return template.HTML(s) // #nosec G203 - authored CMS markup
}
