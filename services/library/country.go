package library

import "strings"

// countryCodes maps common country names to their ISO 3166-1 codes for the
// watch-provider lookup. Anything not listed is uppercased and passed through
// as a best guess.
var countryCodes = map[string]string{
	"india":          "IN",
	"united states":  "US",
	"usa":            "US",
	"uk":             "GB",
	"united kingdom": "GB",
	"canada":         "CA",
	"australia":      "AU",
	"germany":        "DE",
	"france":         "FR",
	"japan":          "JP",
	"brazil":         "BR",
	"mexico":         "MX",
	"spain":          "ES",
	"italy":          "IT",
	"russia":         "RU",
	"china":          "CN",
	"south korea":    "KR",
}

// NormalizeCountry resolves a country name or code to an ISO code.
func NormalizeCountry(country string) string {
	if code, ok := countryCodes[strings.ToLower(strings.TrimSpace(country))]; ok {
		return code
	}
	return strings.ToUpper(strings.TrimSpace(country))
}
