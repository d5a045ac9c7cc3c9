package usecase

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/nirik/fas/internal/domain"
)

const phoneDigits = "0123456789+-() "

// CheckCompletion applies the agreement heuristics to p. The first failing
// check wins and is reported as a ValidationError.
func CheckCompletion(p domain.Person, countries CountryCodes) error {
	switch {
	case p.Telephone == "":
		return domain.ValidationError{Reason: domain.ReasonMissingTelephone}
	case p.PostalAddress == "":
		return domain.ValidationError{Reason: domain.ReasonMissingAddress}
	case p.HumanName == "":
		return domain.ValidationError{Reason: domain.ReasonMissingName}
	case p.CountryCode == "":
		return domain.ValidationError{Reason: domain.ReasonMissingCountry}
	}

	if len(p.CountryCode) != 2 || !countries.Contains(p.CountryCode) {
		return domain.ValidationError{Reason: domain.ReasonInvalidCountry}
	}

	if !ValidTelephone(p.Telephone) {
		return domain.ValidationError{Reason: domain.ReasonInvalidTelephone}
	}

	if !PlausibleAddress(p.PostalAddress) {
		return domain.ValidationError{Reason: domain.ReasonImplausibleAddress}
	}

	return nil
}

// ValidTelephone allows digits, '+', '-', parentheses and spaces.
func ValidTelephone(phone string) bool {
	for _, r := range phone {
		if !strings.ContainsRune(phoneDigits, r) {
			return false
		}
	}
	return true
}

// PlausibleAddress requires more than one whitespace separated token.
func PlausibleAddress(address string) bool {
	return strings.IndexFunc(strings.TrimSpace(address), unicode.IsSpace) >= 0
}

// ReadyToSign is the gate in front of the agreement page.
func ReadyToSign(p domain.Person) bool {
	if p.Telephone == "" || p.PostalAddress == "" {
		return false
	}
	return utf8.RuneCountInString(p.CountryCode) == 2 && strings.TrimSpace(p.CountryCode) != ""
}
