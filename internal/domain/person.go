package domain

import "time"

// Person is an account holder. Username and ID never change after creation.
type Person struct {
	ID            int64     `json:"id"`
	Username      string    `json:"username"`
	HumanName     string    `json:"humanName"`
	Email         string    `json:"email"`
	Telephone     string    `json:"telephone"`
	PostalAddress string    `json:"postalAddress"`
	CountryCode   string    `json:"countryCode"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Profile holds the attributes a person submits with the agreement.
type Profile struct {
	HumanName     string `json:"humanName" form:"human_name"`
	Telephone     string `json:"telephone" form:"telephone"`
	PostalAddress string `json:"postalAddress" form:"postal_address"`
	CountryCode   string `json:"countryCode" form:"country_code"`
}

// ProfileDelta lists only the fields that must be written. Nil means unchanged.
type ProfileDelta struct {
	HumanName     *string
	Telephone     *string
	PostalAddress *string
	CountryCode   *string
}

func (d ProfileDelta) Empty() bool {
	return d.HumanName == nil && d.Telephone == nil && d.PostalAddress == nil && d.CountryCode == nil
}

// Diff returns the fields of p that are non-empty and differ from the stored values.
func (p Person) Diff(profile Profile) ProfileDelta {
	var delta ProfileDelta
	if v := profile.HumanName; v != "" && v != p.HumanName {
		delta.HumanName = &v
	}
	if v := profile.Telephone; v != "" && v != p.Telephone {
		delta.Telephone = &v
	}
	if v := profile.PostalAddress; v != "" && v != p.PostalAddress {
		delta.PostalAddress = &v
	}
	if v := profile.CountryCode; v != "" && v != p.CountryCode {
		delta.CountryCode = &v
	}
	return delta
}

// Apply returns a copy of p with the delta written over it.
func (p Person) Apply(delta ProfileDelta) Person {
	if delta.HumanName != nil {
		p.HumanName = *delta.HumanName
	}
	if delta.Telephone != nil {
		p.Telephone = *delta.Telephone
	}
	if delta.PostalAddress != nil {
		p.PostalAddress = *delta.PostalAddress
	}
	if delta.CountryCode != nil {
		p.CountryCode = *delta.CountryCode
	}
	return p
}
