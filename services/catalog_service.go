package services

import (
	"context"
	"mime/multipart"
	"strings"

	"medcart/config"
	"medcart/models"

	"go.uber.org/zap"
)

type CatalogService struct {
	items  CatalogStore
	images ImageStore
}

// NewCatalogService builds the service; images may be nil when uploads are disabled.
func NewCatalogService(items CatalogStore, images ImageStore) *CatalogService {
	return &CatalogService{items: items, images: images}
}

func (s *CatalogService) List(ctx context.Context, filter models.CatalogFilter) ([]models.CatalogItem, int, error) {
	if filter.Kind != "" && filter.Kind != models.KindProduct && filter.Kind != models.KindMedicine {
		return nil, 0, invalid("kind must be product or medicine")
	}
	filter.Page, filter.Limit = clampPage(filter.Page, filter.Limit, 20)
	filter.Search = strings.TrimSpace(filter.Search)
	return s.items.List(ctx, filter)
}

func (s *CatalogService) Get(ctx context.Context, id string) (*models.CatalogItem, error) {
	item, err := s.items.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !item.IsActive {
		return nil, ErrNotFound
	}
	return item, nil
}

func (s *CatalogService) Create(ctx context.Context, req models.CreateCatalogItemRequest, image *multipart.FileHeader) (*models.CatalogItem, error) {
	item := &models.CatalogItem{
		Kind:        req.Kind,
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Price:       req.Price,
		Stock:       req.Stock,
	}

	if image != nil {
		url, ref, err := s.upload(ctx, image)
		if err != nil {
			return nil, err
		}
		item.ImageURL, item.CloudinaryID = url, ref
	}

	if err := s.items.Create(ctx, item); err != nil {
		s.discard(ctx, item.CloudinaryID)
		return nil, err
	}
	return item, nil
}

func (s *CatalogService) Update(ctx context.Context, id string, req models.UpdateCatalogItemRequest, image *multipart.FileHeader) (*models.CatalogItem, error) {
	item, err := s.items.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		item.Name = name
	}
	if req.Description != "" {
		item.Description = strings.TrimSpace(req.Description)
	}
	if req.Price != nil {
		if *req.Price <= 0 {
			return nil, invalid("price must be greater than 0")
		}
		item.Price = *req.Price
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return nil, invalid("stock cannot be negative")
		}
		item.Stock = *req.Stock
	}
	if req.IsActive != nil {
		item.IsActive = *req.IsActive
	}

	oldRef := ""
	if image != nil {
		url, ref, err := s.upload(ctx, image)
		if err != nil {
			return nil, err
		}
		oldRef = item.CloudinaryID
		item.ImageURL, item.CloudinaryID = url, ref
	}

	if err := s.items.Update(ctx, item); err != nil {
		return nil, err
	}
	s.discard(ctx, oldRef)
	return item, nil
}

func (s *CatalogService) Delete(ctx context.Context, id string) error {
	return s.items.Deactivate(ctx, id)
}

func (s *CatalogService) upload(ctx context.Context, image *multipart.FileHeader) (string, string, error) {
	if s.images == nil {
		return "", "", ErrImageStoreDisabled
	}
	return s.images.Upload(ctx, image)
}

func (s *CatalogService) discard(ctx context.Context, ref string) {
	if ref == "" || s.images == nil {
		return
	}
	if err := s.images.Delete(ctx, ref); err != nil {
		config.Logger().Warn("failed to delete catalog image", zap.String("ref", ref), zap.Error(err))
	}
}
