package views

import (
	"html/template"

	"github.com/composable-commerce/storefront/internal/fields"
)

// Default delivery copy shown when no product_detail_page entry matches
const (
	DefaultDeliveryLabel = "Enter your postal code"
	FreeDeliveryLabel    = "Free delivery included"
	DefaultReturnPolicy  = "Free 30 Days Delivery Returns. Details"
)

// About is the about page
type About struct {
	Title       string
	Description template.HTML
}

// AboutFrom reads the "about_us" metaobject
func AboutFrom(fs fields.FieldSet) About {
	return About{
		Title:       fs.String("title"),
		Description: html(fs.String("description")),
	}
}

// PageContent is the CMS header of a static page
type PageContent struct {
	Heading     string
	Description string
}

// PageContentFrom reads the CMS pages entry
func PageContentFrom(fs fields.FieldSet) PageContent {
	return PageContent{
		Heading:     fs.String("heading"),
		Description: fs.String("description"),
	}
}

// ProductContent is the rich text attached to a product
type ProductContent struct {
	Review         template.HTML
	ShippingReturn template.HTML
}

// ProductContentFrom reads the product's custom.information metaobject
func ProductContentFrom(fs fields.FieldSet) ProductContent {
	found := fs.FindAll("product_review", "shipping_return_policy")
	return ProductContent{
		Review:         html(leafOf(found["product_review"])),
		ShippingReturn: html(leafOf(found["shipping_return_policy"])),
	}
}

// Delivery is the delivery and returns box on the product page
type Delivery struct {
	Label        string
	ReturnPolicy string
}

// DeliveryFrom picks the first product_detail_page set whose product field
// equals productID. Without a match the default copy is returned.
func DeliveryFrom(sets []fields.FieldSet, productID string) Delivery {
	for _, fs := range sets {
		if product, ok := fs.Leaf("product"); !ok || product != productID {
			continue
		}

		delivery := Delivery{ReturnPolicy: fs.String("return_policy")}
		switch {
		case fs.Flag("free_delivery"):
			delivery.Label = FreeDeliveryLabel
		default:
			delivery.Label = DefaultDeliveryLabel
		}
		return delivery
	}
	return Delivery{Label: DefaultDeliveryLabel, ReturnPolicy: DefaultReturnPolicy}
}

// HeadingFrom returns the first value of key across sets, e.g. the
// collection_page_heading of the product_page_contents metaobjects.
func HeadingFrom(sets []fields.FieldSet, key string) string {
	for _, fs := range sets {
		if v, ok := fs.Leaf(key); ok {
			return v
		}
	}
	return ""
}

func leafOf(f fields.Field) string {
	if f.Value == nil {
		return ""
	}
	switch f.Kind {
	case fields.KindText, fields.KindBoolean:
		return *f.Value
	default:
		return ""
	}
}
