// Package currency holds the static currency-metadata table the UI renders
// dropdowns and flags from. Read-only; the quiz engine only sees codes.
package currency

import "sort"

type Info struct {
	Code string `json:"code"`
	Name string `json:"name"`
	Flag string `json:"flag"`
}

// Popular is the ordering shown at the top of the dropdowns.
var Popular = []string{"USD", "EUR", "GBP", "JPY", "CHF", "CAD", "AUD", "CNY"}

var table = map[string]Info{
	"USD": {"USD", "US Dollar", "🇺🇸"},
	"EUR": {"EUR", "Euro", "🇪🇺"},
	"GBP": {"GBP", "British Pound", "🇬🇧"},
	"JPY": {"JPY", "Japanese Yen", "🇯🇵"},
	"CHF": {"CHF", "Swiss Franc", "🇨🇭"},
	"CAD": {"CAD", "Canadian Dollar", "🇨🇦"},
	"AUD": {"AUD", "Australian Dollar", "🇦🇺"},
	"CNY": {"CNY", "Chinese Yuan", "🇨🇳"},
	"NZD": {"NZD", "New Zealand Dollar", "🇳🇿"},
	"SEK": {"SEK", "Swedish Krona", "🇸🇪"},
	"NOK": {"NOK", "Norwegian Krone", "🇳🇴"},
	"DKK": {"DKK", "Danish Krone", "🇩🇰"},
	"PLN": {"PLN", "Polish Zloty", "🇵🇱"},
	"CZK": {"CZK", "Czech Koruna", "🇨🇿"},
	"HUF": {"HUF", "Hungarian Forint", "🇭🇺"},
	"RON": {"RON", "Romanian Leu", "🇷🇴"},
	"TRY": {"TRY", "Turkish Lira", "🇹🇷"},
	"RUB": {"RUB", "Russian Ruble", "🇷🇺"},
	"INR": {"INR", "Indian Rupee", "🇮🇳"},
	"IDR": {"IDR", "Indonesian Rupiah", "🇮🇩"},
	"KRW": {"KRW", "South Korean Won", "🇰🇷"},
	"SGD": {"SGD", "Singapore Dollar", "🇸🇬"},
	"HKD": {"HKD", "Hong Kong Dollar", "🇭🇰"},
	"TWD": {"TWD", "New Taiwan Dollar", "🇹🇼"},
	"THB": {"THB", "Thai Baht", "🇹🇭"},
	"VND": {"VND", "Vietnamese Dong", "🇻🇳"},
	"PHP": {"PHP", "Philippine Peso", "🇵🇭"},
	"MYR": {"MYR", "Malaysian Ringgit", "🇲🇾"},
	"MXN": {"MXN", "Mexican Peso", "🇲🇽"},
	"BRL": {"BRL", "Brazilian Real", "🇧🇷"},
	"ARS": {"ARS", "Argentine Peso", "🇦🇷"},
	"CLP": {"CLP", "Chilean Peso", "🇨🇱"},
	"COP": {"COP", "Colombian Peso", "🇨🇴"},
	"PEN": {"PEN", "Peruvian Sol", "🇵🇪"},
	"ZAR": {"ZAR", "South African Rand", "🇿🇦"},
	"EGP": {"EGP", "Egyptian Pound", "🇪🇬"},
	"NGN": {"NGN", "Nigerian Naira", "🇳🇬"},
	"KES": {"KES", "Kenyan Shilling", "🇰🇪"},
	"ILS": {"ILS", "Israeli New Shekel", "🇮🇱"},
	"AED": {"AED", "UAE Dirham", "🇦🇪"},
	"SAR": {"SAR", "Saudi Riyal", "🇸🇦"},
	"KWD": {"KWD", "Kuwaiti Dinar", "🇰🇼"},
	"UAH": {"UAH", "Ukrainian Hryvnia", "🇺🇦"},
	"ISK": {"ISK", "Icelandic Krona", "🇮🇸"},
}

// Lookup returns the metadata for a code.
func Lookup(code string) (Info, bool) {
	info, ok := table[code]
	return info, ok
}

// Known reports whether code is a supported currency.
func Known(code string) bool {
	_, ok := table[code]
	return ok
}

// All returns every supported currency, popular ones first in their fixed
// order, the rest alphabetical.
func All() []Info {
	popular := make(map[string]bool, len(Popular))
	out := make([]Info, 0, len(table))
	for _, code := range Popular {
		if info, ok := table[code]; ok {
			out = append(out, info)
			popular[code] = true
		}
	}

	rest := make([]Info, 0, len(table))
	for code, info := range table {
		if !popular[code] {
			rest = append(rest, info)
		}
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i].Code < rest[j].Code })

	return append(out, rest...)
}
