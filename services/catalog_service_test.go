package services

import (
	"context"
	"mime/multipart"
	"testing"

	"medcart/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeImages struct {
	uploaded []string
	deleted  []string
}

func (f *fakeImages) Upload(ctx context.Context, header *multipart.FileHeader) (string, string, error) {
	ref := "catalog/" + header.Filename
	f.uploaded = append(f.uploaded, ref)
	return "https://img.example.com/" + ref, ref, nil
}

func (f *fakeImages) Delete(ctx context.Context, ref string) error {
	f.deleted = append(f.deleted, ref)
	return nil
}

func TestCatalogCreateAndReplaceImage(t *testing.T) {
	images := &fakeImages{}
	svc := NewCatalogService(newFakeCatalog(), images)
	ctx := context.Background()

	item, err := svc.Create(ctx, models.CreateCatalogItemRequest{Kind: models.KindMedicine, Name: " Cetirizine ", Price: 32, Stock: 10},
		&multipart.FileHeader{Filename: "a.png"})
	require.NoError(t, err)
	assert.Equal(t, "Cetirizine", item.Name)
	assert.Equal(t, "catalog/a.png", item.CloudinaryID)

	price := 30.0
	updated, err := svc.Update(ctx, item.ID, models.UpdateCatalogItemRequest{Price: &price}, &multipart.FileHeader{Filename: "b.png"})
	require.NoError(t, err)
	assert.Equal(t, 30.0, updated.Price)
	assert.Equal(t, "catalog/b.png", updated.CloudinaryID)
	assert.Equal(t, []string{"catalog/a.png"}, images.deleted)

	require.NoError(t, svc.Delete(ctx, item.ID))
	_, err = svc.Get(ctx, item.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCatalogUploadDisabled(t *testing.T) {
	svc := NewCatalogService(newFakeCatalog(), nil)
	_, err := svc.Create(context.Background(), models.CreateCatalogItemRequest{Kind: models.KindProduct, Name: "Mask", Price: 10},
		&multipart.FileHeader{Filename: "a.png"})
	assert.ErrorIs(t, err, ErrImageStoreDisabled)

	_, _, err = svc.List(context.Background(), models.CatalogFilter{Kind: "toy"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
