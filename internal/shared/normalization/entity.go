package normalization

import "strings"

// resourceAliases maps the spellings used by views, CLI flags and websocket commands to the
// canonical resource name.
var resourceAliases = map[string]string{
	"":        "",
	"-":       "",
	"default": "orders",

	"order":  "orders",
	"orders": "orders",

	"income":  "incomes",
	"incomes": "incomes",

	"sale":  "sales",
	"sales": "sales",

	"stock":  "stocks",
	"stocks": "stocks",
}

// NormalizeResource converts resource names to their canonical plural form. Unknown names are
// returned lower-cased and trimmed so callers can still report them.
//
//	NormalizeResource(" Order ") => "orders"
//	NormalizeResource("STOCK")   => "stocks"
func NormalizeResource(raw string) string {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	normalized := strings.ReplaceAll(trimmed, "_", "-")

	if canonical, found := resourceAliases[normalized]; found {
		return canonical
	}
	return normalized
}

// IsKnownResource reports whether raw resolves to one of the built-in resources.
func IsKnownResource(raw string) bool {
	switch NormalizeResource(raw) {
	case "orders", "incomes", "sales", "stocks":
		return true
	default:
		return false
	}
}

// KnownResources returns the built-in resources in dashboard order.
func KnownResources() []string {
	return []string{"orders", "incomes", "sales", "stocks"}
}
