package constants

const (
	AppMainStorefront    = "main-storefront"
	AppStorefrontService = "storefront"
)
