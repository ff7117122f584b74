package commerce

// Metaobject field selections. GraphQL fragments cannot recurse, so each
// nesting level is spelled out; three levels cover every page layout.
const (
	mediaImageSelection = `... on MediaImage { id image { url } }`

	fieldLeafSelection = `key type value reference { ` + mediaImageSelection + ` }`

	fieldNestedSelection = `key type value
    reference { ` + mediaImageSelection + ` ... on Metaobject { id fields { ` + fieldLeafSelection + ` } } }
    references(first: 25) { nodes { ... on Metaobject { id fields { ` + fieldLeafSelection + ` } } } }`

	fieldSelection = `key type value
  reference { ` + mediaImageSelection + ` ... on Metaobject { id fields { ` + fieldNestedSelection + ` } } }
  references(first: 25) { nodes { ... on Metaobject { id fields { ` + fieldNestedSelection + ` } } } }`
)

const metaobjectsQuery = `query Metaobjects($type: String!, $first: Int!, $after: String) {
  metaobjects(type: $type, first: $first, after: $after) {
    nodes { id handle type fields { ` + fieldSelection + ` } }
    pageInfo { hasNextPage endCursor }
  }
}`

const moneyFragment = `fragment MoneyFields on MoneyV2 { amount currencyCode }`

const productCardFragment = `fragment ProductCard on Product {
  id
  title
  handle
  vendor
  featuredImage { id url altText width height }
  priceRange { minVariantPrice { ...MoneyFields } maxVariantPrice { ...MoneyFields } }
  compareAtPriceRange { minVariantPrice { ...MoneyFields } maxVariantPrice { ...MoneyFields } }
}`

const collectionCardFragment = `fragment CollectionCard on Collection {
  id
  title
  handle
  description
  image { id url altText width height }
}`

const pageInfoSelection = `pageInfo { hasNextPage hasPreviousPage startCursor endCursor }`

const productVariantFragment = `fragment ProductVariant on ProductVariant {
  id
  title
  sku
  availableForSale
  price { ...MoneyFields }
  compareAtPrice { ...MoneyFields }
  image { id url altText width height }
  selectedOptions { name value }
  product { title handle }
}`

const latestProductsQuery = `query LatestProducts($country: CountryCode, $language: LanguageCode, $first: Int!)
  @inContext(country: $country, language: $language) {
  products(first: $first, sortKey: CREATED_AT, reverse: true) { nodes { ...ProductCard } }
}
` + productCardFragment + "\n" + moneyFragment

const collectionProductsQuery = `query CollectionProducts($country: CountryCode, $language: LanguageCode, $handle: String!, $first: Int!)
  @inContext(country: $country, language: $language) {
  collection(handle: $handle) {
    ...CollectionCard
    products(first: $first) { nodes { ...ProductCard } }
  }
}
` + collectionCardFragment + "\n" + productCardFragment + "\n" + moneyFragment

const topCollectionsQuery = `query TopCollections($country: CountryCode, $language: LanguageCode, $first: Int!)
  @inContext(country: $country, language: $language) {
  collections(first: $first, reverse: true) { nodes { ...CollectionCard } }
}
` + collectionCardFragment

const collectionsQuery = `query Collections($country: CountryCode, $language: LanguageCode, $first: Int, $last: Int, $startCursor: String, $endCursor: String)
  @inContext(country: $country, language: $language) {
  collections(first: $first, last: $last, before: $startCursor, after: $endCursor, sortKey: UPDATED_AT, reverse: true) {
    nodes { ...CollectionCard }
    ` + pageInfoSelection + `
  }
}
` + collectionCardFragment

const collectionQuery = `query Collection($country: CountryCode, $language: LanguageCode, $handle: String!, $first: Int, $last: Int, $startCursor: String, $endCursor: String)
  @inContext(country: $country, language: $language) {
  collection(handle: $handle) {
    ...CollectionCard
    products(first: $first, last: $last, before: $startCursor, after: $endCursor) {
      nodes { ...ProductCard }
      ` + pageInfoSelection + `
    }
  }
}
` + collectionCardFragment + "\n" + productCardFragment + "\n" + moneyFragment

const allProductsQuery = `query AllProducts($country: CountryCode, $language: LanguageCode, $first: Int, $last: Int, $startCursor: String, $endCursor: String)
  @inContext(country: $country, language: $language) {
  products(first: $first, last: $last, before: $startCursor, after: $endCursor) {
    nodes { ...ProductCard }
    ` + pageInfoSelection + `
  }
}
` + productCardFragment + "\n" + moneyFragment

const productQuery = `query Product($country: CountryCode, $language: LanguageCode, $handle: String!, $selectedOptions: [SelectedOptionInput!]!)
  @inContext(country: $country, language: $language) {
  product(handle: $handle) {
    id
    title
    vendor
    handle
    description
    descriptionHtml
    featuredImage { id url altText width height }
    options { name values }
    priceRange { minVariantPrice { ...MoneyFields } maxVariantPrice { ...MoneyFields } }
    selectedVariant: variantBySelectedOptions(selectedOptions: $selectedOptions) { ...ProductVariant }
    variants(first: 1) { nodes { ...ProductVariant } }
    seo { title description }
    information: metafield(namespace: "custom", key: "information") {
      reference { ... on Metaobject { id fields { ` + fieldSelection + ` } } }
    }
  }
}
` + productVariantFragment + "\n" + moneyFragment

const variantsQuery = `query ProductVariants($country: CountryCode, $language: LanguageCode, $handle: String!)
  @inContext(country: $country, language: $language) {
  product(handle: $handle) { variants(first: 250) { nodes { ...ProductVariant } } }
}
` + productVariantFragment + "\n" + moneyFragment

const recommendationsQuery = `query ProductRecommendations($country: CountryCode, $language: LanguageCode, $productId: ID!)
  @inContext(country: $country, language: $language) {
  productRecommendations(productId: $productId, intent: RELATED) { ...ProductCard }
}
` + productCardFragment + "\n" + moneyFragment

const pageQuery = `query Page($country: CountryCode, $language: LanguageCode, $handle: String!)
  @inContext(country: $country, language: $language) {
  page(handle: $handle) { id title handle body seo { title description } }
}`

const headerQuery = `query Header($country: CountryCode, $language: LanguageCode, $menuHandle: String!)
  @inContext(country: $country, language: $language) {
  shop { id name description primaryDomain { url } }
  menu(handle: $menuHandle) {
    id
    items { id title url type items { id title url type } }
  }
}`

const shopQuery = `query Shop { shop { id name description primaryDomain { url } } }`

const cartFragment = `fragment CartFields on Cart {
  id
  checkoutUrl
  totalQuantity
  cost { subtotalAmount { ...MoneyFields } totalAmount { ...MoneyFields } }
  lines(first: 100) {
    nodes {
      id
      quantity
      cost { totalAmount { ...MoneyFields } }
      merchandise { ... on ProductVariant { ...ProductVariant } }
    }
  }
}
` + productVariantFragment + "\n" + moneyFragment

const userErrorsSelection = `userErrors { field message code }`

const cartQuery = `query Cart($country: CountryCode, $language: LanguageCode, $cartId: ID!)
  @inContext(country: $country, language: $language) {
  cart(id: $cartId) { ...CartFields }
}
` + cartFragment

const cartCreateMutation = `mutation CartCreate($country: CountryCode, $language: LanguageCode, $lines: [CartLineInput!])
  @inContext(country: $country, language: $language) {
  result: cartCreate(input: { lines: $lines }) { cart { ...CartFields } ` + userErrorsSelection + ` }
}
` + cartFragment

const cartLinesAddMutation = `mutation CartLinesAdd($country: CountryCode, $language: LanguageCode, $cartId: ID!, $lines: [CartLineInput!]!)
  @inContext(country: $country, language: $language) {
  result: cartLinesAdd(cartId: $cartId, lines: $lines) { cart { ...CartFields } ` + userErrorsSelection + ` }
}
` + cartFragment

const cartLinesUpdateMutation = `mutation CartLinesUpdate($country: CountryCode, $language: LanguageCode, $cartId: ID!, $lines: [CartLineUpdateInput!]!)
  @inContext(country: $country, language: $language) {
  result: cartLinesUpdate(cartId: $cartId, lines: $lines) { cart { ...CartFields } ` + userErrorsSelection + ` }
}
` + cartFragment

const cartLinesRemoveMutation = `mutation CartLinesRemove($country: CountryCode, $language: LanguageCode, $cartId: ID!, $lineIds: [ID!]!)
  @inContext(country: $country, language: $language) {
  result: cartLinesRemove(cartId: $cartId, lineIds: $lineIds) { cart { ...CartFields } ` + userErrorsSelection + ` }
}
` + cartFragment

const customerUserErrorsSelection = `customerUserErrors { field message code }`

const customerAccessTokenCreateMutation = `mutation CustomerAccessTokenCreate($input: CustomerAccessTokenCreateInput!) {
  result: customerAccessTokenCreate(input: $input) {
    customerAccessToken { accessToken expiresAt }
    ` + customerUserErrorsSelection + `
  }
}`

const customerAccessTokenDeleteMutation = `mutation CustomerAccessTokenDelete($customerAccessToken: String!) {
  customerAccessTokenDelete(customerAccessToken: $customerAccessToken) { deletedAccessToken }
}`

const customerSelection = `id firstName lastName email phone acceptsMarketing`

const customerQuery = `query Customer($country: CountryCode, $language: LanguageCode, $customerAccessToken: String!)
  @inContext(country: $country, language: $language) {
  customer(customerAccessToken: $customerAccessToken) {
    ` + customerSelection + `
    orders(first: 20, sortKey: PROCESSED_AT, reverse: true) {
      nodes { id orderNumber processedAt financialStatus fulfillmentStatus currentTotalPrice { ...MoneyFields } }
    }
  }
}
` + moneyFragment

const customerUpdateMutation = `mutation CustomerUpdate($customerAccessToken: String!, $customer: CustomerUpdateInput!) {
  result: customerUpdate(customerAccessToken: $customerAccessToken, customer: $customer) {
    customer { ` + customerSelection + ` }
    customerAccessToken { accessToken expiresAt }
    ` + customerUserErrorsSelection + `
  }
}`
