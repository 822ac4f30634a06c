package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr(f float64) *float64 { return &f }

func validAddress() Address {
	return Address{
		FullName:     "Asha Rao",
		AddressLine1: "12 MG Road",
		City:         "Bengaluru",
		State:        "Karnataka",
		PostalCode:   "560001",
		PhoneNumber:  "+919876543210",
		Latitude:     ptr(12.97),
		Longitude:    ptr(77.59),
	}
}

func TestValidateAddress(t *testing.T) {
	assert.Empty(t, ValidateAddress(validAddress()))

	a := validAddress()
	a.PostalCode = "5600"
	a.PhoneNumber = "12345"
	a.Latitude = nil
	errs := ValidateAddress(a)
	assert.Equal(t, "Postal code must be 6 digits", errs["postalCode"])
	assert.Equal(t, "Phone number must be 10 digits", errs["phoneNumber"])
	assert.Contains(t, errs, "location")

	errs = ValidateAddress(Address{})
	assert.Equal(t, "Full name is required", errs["fullName"])
	assert.Equal(t, "City is required", errs["city"])
}

func TestValidPhoneNumber(t *testing.T) {
	assert.True(t, ValidPhoneNumber("9876543210"))
	assert.True(t, ValidPhoneNumber("+91 98765 43210"))
	assert.False(t, ValidPhoneNumber("+1 9876543210"))
	assert.False(t, ValidPhoneNumber("987654321"))
}
