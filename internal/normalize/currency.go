package normalize

import "strings"

// currencyByCountry covers the countries the Adzuna API is scoped by, plus
// the West African markets the academy serves.
var currencyByCountry = map[string]string{
	"at": "EUR",
	"au": "AUD",
	"be": "EUR",
	"br": "BRL",
	"ca": "CAD",
	"ch": "CHF",
	"de": "EUR",
	"es": "EUR",
	"fr": "EUR",
	"gb": "GBP",
	"gh": "GHS",
	"in": "INR",
	"it": "EUR",
	"ke": "KES",
	"mx": "MXN",
	"ng": "NGN",
	"nl": "EUR",
	"nz": "NZD",
	"pl": "PLN",
	"sg": "SGD",
	"us": "USD",
	"za": "ZAR",
}

// CurrencyForCountry maps an ISO 3166-1 alpha-2 code to a display currency,
// defaulting to USD for unknown countries.
func CurrencyForCountry(code string) string {
	if currency, ok := currencyByCountry[strings.ToLower(strings.TrimSpace(code))]; ok {
		return currency
	}
	return "USD"
}
