package usecase

import (
	"errors"
	"testing"

	"github.com/nirik/fas/internal/domain"
)

func TestCheckCompletion(t *testing.T) {
	base := domain.Person{
		HumanName:     completeProfile.HumanName,
		Telephone:     completeProfile.Telephone,
		PostalAddress: completeProfile.PostalAddress,
		CountryCode:   completeProfile.CountryCode,
	}

	tests := []struct {
		name   string
		modify func(p *domain.Person)
		reason string
	}{
		{"complete", func(p *domain.Person) {}, ""},
		{"missing telephone", func(p *domain.Person) { p.Telephone = "" }, domain.ReasonMissingTelephone},
		{"missing address", func(p *domain.Person) { p.PostalAddress = "" }, domain.ReasonMissingAddress},
		{"missing name", func(p *domain.Person) { p.HumanName = "" }, domain.ReasonMissingName},
		{"missing country", func(p *domain.Person) { p.CountryCode = "" }, domain.ReasonMissingCountry},
		{"three letter country", func(p *domain.Person) { p.CountryCode = "USA" }, domain.ReasonInvalidCountry},
		{"unknown country", func(p *domain.Person) { p.CountryCode = "ZZ" }, domain.ReasonInvalidCountry},
		{"letters in telephone", func(p *domain.Person) { p.Telephone = "call me maybe" }, domain.ReasonInvalidTelephone},
		{"single word address", func(p *domain.Person) { p.PostalAddress = "Somewhere" }, domain.ReasonImplausibleAddress},
		{"padded single word address", func(p *domain.Person) { p.PostalAddress = "  Somewhere  " }, domain.ReasonImplausibleAddress},
		{"missing telephone wins", func(p *domain.Person) { p.Telephone = ""; p.CountryCode = "ZZ" }, domain.ReasonMissingTelephone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := base
			tt.modify(&p)
			err := CheckCompletion(p, testCountries)
			if tt.reason == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			var verr domain.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if verr.Reason != tt.reason {
				t.Fatalf("expected reason %q, got %q", tt.reason, verr.Reason)
			}
		})
	}
}

func TestValidTelephone(t *testing.T) {
	for _, phone := range []string{"+1 (555) 123-4567", "0123456789", "+49-30-1234"} {
		if !ValidTelephone(phone) {
			t.Errorf("expected %q to be valid", phone)
		}
	}
	for _, phone := range []string{"call me maybe", "555.123.4567", "+1 555 x12"} {
		if ValidTelephone(phone) {
			t.Errorf("expected %q to be invalid", phone)
		}
	}
}

func TestReadyToSign(t *testing.T) {
	p := domain.Person{Telephone: "555", PostalAddress: "1 Road", CountryCode: "US"}
	if !ReadyToSign(p) {
		t.Fatalf("expected ready")
	}

	for _, modify := range []func(*domain.Person){
		func(p *domain.Person) { p.Telephone = "" },
		func(p *domain.Person) { p.PostalAddress = "" },
		func(p *domain.Person) { p.CountryCode = "" },
		func(p *domain.Person) { p.CountryCode = "USA" },
		func(p *domain.Person) { p.CountryCode = "É" },
	} {
		q := p
		modify(&q)
		if ReadyToSign(q) {
			t.Fatalf("expected %+v not to be ready", q)
		}
	}
}
