package geo

import (
	"golang.org/x/text/language"
)

// Countries is the set of ISO 3166-1 alpha-2 codes CLDR knows as countries
// or autonomous areas. Codes must be given in upper case.
type Countries struct{}

func NewCountries() *Countries {
	return &Countries{}
}

func (c *Countries) Contains(code string) bool {
	if len(code) != 2 || !isUpper(code[0]) || !isUpper(code[1]) {
		return false
	}
	region, err := language.ParseRegion(code)
	if err != nil {
		return false
	}
	return region.IsCountry() && region.String() == code
}

func isUpper(b byte) bool {
	return b >= 'A' && b <= 'Z'
}
