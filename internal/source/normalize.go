package source

import (
	"strconv"
	"strings"

	"github.com/nyaruka/phonenumbers"

	"github.com/kindseek/leadscout/internal/model"
)

// Region abbreviations as they appear in the registries.
var regionAliases = map[model.Country]map[string]string{
	model.CountryCA: {
		"on": "Ontario",
		"bc": "British Columbia",
		"qc": "Quebec",
		"ab": "Alberta",
		"mb": "Manitoba",
		"ns": "Nova Scotia",
		"sk": "Saskatchewan",
		"nb": "New Brunswick",
	},
	model.CountryAU: {
		"nsw": "New South Wales",
		"vic": "Victoria",
		"qld": "Queensland",
		"wa":  "Western Australia",
		"sa":  "South Australia",
		"tas": "Tasmania",
		"act": "Australian Capital Territory",
		"nt":  "Northern Territory",
	},
}

// NormalizeRegion expands a province or state abbreviation to its full name.
// Already-expanded names pass through unchanged.
func NormalizeRegion(country model.Country, region string) string {
	region = strings.TrimSpace(region)
	if full, ok := regionAliases[country][strings.ToLower(region)]; ok {
		return full
	}
	return region
}

// ParseCapacity parses a capacity cell. Registries emit integers, floats and
// thousand separators; anything unparseable is treated as unknown.
func ParseCapacity(s string) *int {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return nil
	}
	n := int(f)
	return &n
}

// NormalizePhone formats a phone number in international notation for the
// lead's country. Numbers that fail to parse are kept as-is; a wrong-looking
// phone is still a contact signal.
func NormalizePhone(raw string, country model.Country) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	num, err := phonenumbers.Parse(raw, string(country))
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return raw
	}
	return phonenumbers.Format(num, phonenumbers.INTERNATIONAL)
}

// NormalizeEmail lowercases and validates the bare shape of an email cell.
func NormalizeEmail(raw string) string {
	raw = strings.ToLower(strings.TrimSpace(raw))
	at := strings.Index(raw, "@")
	if at <= 0 || at == len(raw)-1 || strings.ContainsAny(raw, " \t") {
		return ""
	}
	return raw
}

// joinAddress concatenates the non-empty address parts with commas.
func joinAddress(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}

// appendPostal appends a postal code to an address unless already present.
func appendPostal(address, postal string) string {
	postal = strings.TrimSpace(postal)
	if postal == "" || strings.Contains(address, postal) {
		return address
	}
	return joinAddress(address, postal)
}
