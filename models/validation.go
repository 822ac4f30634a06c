package models

import (
	"regexp"
	"strings"
)

var (
	postalCodePattern = regexp.MustCompile(`^\d{6}$`)
	phonePattern      = regexp.MustCompile(`^(\+91)?\d{10}$`)
)

func ValidPostalCode(code string) bool {
	return postalCodePattern.MatchString(strings.TrimSpace(code))
}

// ValidPhoneNumber accepts ten digits with an optional +91 prefix.
func ValidPhoneNumber(phone string) bool {
	return phonePattern.MatchString(strings.ReplaceAll(strings.TrimSpace(phone), " ", ""))
}

// ValidateAddress returns a field-name to message map, empty when the address is valid.
func ValidateAddress(a Address) map[string]string {
	errs := map[string]string{}
	required := []struct{ field, value, message string }{
		{"fullName", a.FullName, "Full name is required"},
		{"addressLine1", a.AddressLine1, "Address is required"},
		{"city", a.City, "City is required"},
		{"state", a.State, "State is required"},
		{"postalCode", a.PostalCode, "Postal code is required"},
		{"phoneNumber", a.PhoneNumber, "Phone number is required"},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errs[r.field] = r.message
		}
	}

	if _, ok := errs["postalCode"]; !ok && !ValidPostalCode(a.PostalCode) {
		errs["postalCode"] = "Postal code must be 6 digits"
	}
	if _, ok := errs["phoneNumber"]; !ok && !ValidPhoneNumber(a.PhoneNumber) {
		errs["phoneNumber"] = "Phone number must be 10 digits"
	}
	if !a.HasLocation() {
		errs["location"] = "Please pick the location on the map"
	} else if *a.Latitude < -90 || *a.Latitude > 90 || *a.Longitude < -180 || *a.Longitude > 180 {
		errs["location"] = "Location is out of range"
	}
	if a.AddressType != "" && a.AddressType != AddressTypeHome && a.AddressType != AddressTypeWork && a.AddressType != AddressTypeOther {
		errs["addressType"] = "Address type must be home, work or other"
	}
	return errs
}
