package services

import (
	"context"
	"errors"
	"testing"

	"medcart/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addressRequest() models.AddressRequest {
	return models.AddressRequest{
		FullName: "Asha Rao", AddressLine1: "12 MG Road", City: "Bengaluru", State: "Karnataka",
		PostalCode: "560001", PhoneNumber: "9876543210", Latitude: floatPtr(12.97), Longitude: floatPtr(77.59),
	}
}

func TestAddressLifecycle(t *testing.T) {
	svc := NewAddressService(newFakeAddresses())
	ctx := context.Background()

	created, err := svc.Create(ctx, customerID, addressRequest())
	require.NoError(t, err)
	assert.Equal(t, models.AddressTypeHome, created.AddressType)

	req := addressRequest()
	req.City = "Mysuru"
	updated, err := svc.Update(ctx, customerID, created.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "Mysuru", updated.City)

	_, err = svc.Update(ctx, "user-2", created.ID, req)
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := svc.List(ctx, customerID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.Delete(ctx, customerID, created.ID))
	assert.ErrorIs(t, svc.Delete(ctx, customerID, created.ID), ErrNotFound)
}

func TestAddressCreateValidation(t *testing.T) {
	svc := NewAddressService(newFakeAddresses())

	req := addressRequest()
	req.PostalCode = "12"
	_, err := svc.Create(context.Background(), customerID, req)
	require.ErrorIs(t, err, ErrInvalidInput)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "Postal code must be 6 digits", verr.Fields["postalCode"])
}
