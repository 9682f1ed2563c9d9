package domain

// Storage keys, one JSON snapshot each
const (
	KeyProducts  = "products"
	KeySales     = "sales"
	KeySuspended = "suspended"
	KeySettings  = "settings"
)

var Keys = []string{KeyProducts, KeySales, KeySuspended, KeySettings}
