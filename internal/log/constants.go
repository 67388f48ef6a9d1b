package log

const (
	KeyAppName            = "app"
	KeyCacheKey           = "cacheKey"
	KeyCart               = "cart"
	KeyCartItems          = "cartItems"
	KeyCartTotal          = "cartTotal"
	KeyCheckoutState      = "checkoutState"
	KeyConfig             = "config"
	KeyDbURL              = "dbUrl"
	KeyOrderID            = "orderId"
	KeyProcess            = "process"
	KeyProductID          = "productId"
	KeyProductName        = "productName"
	KeyQuantity           = "quantity"
	KeyRequestBody        = "requestBody"
	KeyRequestHeader      = "requestHeader"
	KeyRequestHost        = "host"
	KeyRequestID          = "requestId"
	KeyRequestIp          = "requesterIP"
	KeyRequestMethod      = "requestMethod"
	KeyRequestProcessedAt = "requestProcessedAt"
	KeyRequestURI         = "requestURI"
	KeyRequestURL         = "requestURL"
	KeySpanID             = "spanId"
	KeyTag                = "tag"
	KeyTraceID            = "traceId"
)
