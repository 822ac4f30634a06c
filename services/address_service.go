package services

import (
	"context"

	"medcart/models"
)

type AddressService struct {
	addresses AddressStore
}

func NewAddressService(addresses AddressStore) *AddressService {
	return &AddressService{addresses: addresses}
}

func (s *AddressService) List(ctx context.Context, userID string) ([]models.Address, error) {
	return s.addresses.ListByUser(ctx, userID)
}

func (s *AddressService) Get(ctx context.Context, userID, id string) (*models.Address, error) {
	return s.addresses.Get(ctx, userID, id)
}

func (s *AddressService) Create(ctx context.Context, userID string, req models.AddressRequest) (*models.Address, error) {
	address := req.ToAddress()
	if errs := models.ValidateAddress(address); len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	address.UserID = userID
	if err := s.addresses.Create(ctx, &address); err != nil {
		return nil, err
	}
	return &address, nil
}

func (s *AddressService) Update(ctx context.Context, userID, id string, req models.AddressRequest) (*models.Address, error) {
	if _, err := s.addresses.Get(ctx, userID, id); err != nil {
		return nil, err
	}

	address := req.ToAddress()
	if errs := models.ValidateAddress(address); len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	address.ID = id
	address.UserID = userID
	if err := s.addresses.Update(ctx, &address); err != nil {
		return nil, err
	}
	return &address, nil
}

func (s *AddressService) Delete(ctx context.Context, userID, id string) error {
	return s.addresses.Delete(ctx, userID, id)
}
