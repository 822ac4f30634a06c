package models

import "time"

const (
	AddressTypeHome  = "home"
	AddressTypeWork  = "work"
	AddressTypeOther = "other"
)

type Address struct {
	ID           string    `json:"id"`
	UserID       string    `json:"-"`
	FullName     string    `json:"fullName"`
	AddressLine1 string    `json:"addressLine1"`
	AddressLine2 string    `json:"addressLine2,omitempty"`
	City         string    `json:"city"`
	State        string    `json:"state"`
	PostalCode   string    `json:"postalCode"`
	PhoneNumber  string    `json:"phoneNumber"`
	AddressType  string    `json:"addressType,omitempty"`
	Latitude     *float64  `json:"latitude,omitempty"`
	Longitude    *float64  `json:"longitude,omitempty"`
	CreatedAt    time.Time `json:"createdAt,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt,omitempty"`
}

// HasLocation reports whether the address carries resolved coordinates.
func (a Address) HasLocation() bool {
	return a.Latitude != nil && a.Longitude != nil
}

type AddressRequest struct {
	FullName     string   `json:"fullName" binding:"required"`
	AddressLine1 string   `json:"addressLine1" binding:"required"`
	AddressLine2 string   `json:"addressLine2"`
	City         string   `json:"city" binding:"required"`
	State        string   `json:"state" binding:"required"`
	PostalCode   string   `json:"postalCode" binding:"required"`
	PhoneNumber  string   `json:"phoneNumber" binding:"required"`
	AddressType  string   `json:"addressType" binding:"omitempty,oneof=home work other"`
	Latitude     *float64 `json:"latitude" binding:"required"`
	Longitude    *float64 `json:"longitude" binding:"required"`
}

func (r AddressRequest) ToAddress() Address {
	addressType := r.AddressType
	if addressType == "" {
		addressType = AddressTypeHome
	}
	return Address{
		FullName:     r.FullName,
		AddressLine1: r.AddressLine1,
		AddressLine2: r.AddressLine2,
		City:         r.City,
		State:        r.State,
		PostalCode:   r.PostalCode,
		PhoneNumber:  r.PhoneNumber,
		AddressType:  addressType,
		Latitude:     r.Latitude,
		Longitude:    r.Longitude,
	}
}

type AddressListResponse struct {
	Addresses []Address `json:"addresses"`
}

type AddressResponse struct {
	Success bool    `json:"success"`
	Address Address `json:"address"`
}
