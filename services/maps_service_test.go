package services

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"medcart/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	autocompleteCalls int
	detailsCalls      int
}

func (p *fakeProvider) Autocomplete(ctx context.Context, input string) ([]models.MapsPrediction, error) {
	p.autocompleteCalls++
	return []models.MapsPrediction{{Description: input + ", India", PlaceID: "pl-1"}}, nil
}

func (p *fakeProvider) Details(ctx context.Context, placeID string) (models.GeocodedAddress, error) {
	p.detailsCalls++
	return models.GeocodedAddress{City: "Pune", PostalCode: "411001", Latitude: 18.5, Longitude: 73.8}, nil
}

func (p *fakeProvider) Reverse(ctx context.Context, lat, lng float64) (models.GeocodedAddress, error) {
	return models.GeocodedAddress{City: "Pune", Latitude: lat, Longitude: lng}, nil
}

func TestAutocompleteShortQuery(t *testing.T) {
	provider := &fakeProvider{}
	svc := NewMapsService(provider, nil)

	preds, err := svc.Autocomplete(context.Background(), " ko ")
	require.NoError(t, err)
	assert.Empty(t, preds)
	assert.Equal(t, 0, provider.autocompleteCalls)

	preds, err = svc.Autocomplete(context.Background(), "kor")
	require.NoError(t, err)
	assert.Len(t, preds, 1)
}

func TestDetailsCached(t *testing.T) {
	provider := &fakeProvider{}
	svc := NewMapsService(provider, newMemCache())

	for i := 0; i < 2; i++ {
		addr, err := svc.Details(context.Background(), "pl-1")
		require.NoError(t, err)
		assert.Equal(t, "411001", addr.PostalCode)
	}
	assert.Equal(t, 1, provider.detailsCalls)

	_, err := svc.Details(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestReverseValidatesRange(t *testing.T) {
	svc := NewMapsService(&fakeProvider{}, nil)

	_, err := svc.Reverse(context.Background(), 91, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)

	addr, err := svc.Reverse(context.Background(), 18.5, 73.8)
	require.NoError(t, err)
	assert.Equal(t, "Pune", addr.City)

	_, err = NewMapsService(nil, nil).Reverse(context.Background(), 18.5, 73.8)
	assert.ErrorIs(t, err, ErrMapsUnavailable)
}

type blockingProvider struct {
	fakeProvider
	calls   int32
	release chan struct{}
}

func (p *blockingProvider) Reverse(ctx context.Context, lat, lng float64) (models.GeocodedAddress, error) {
	atomic.AddInt32(&p.calls, 1)
	<-p.release
	return models.GeocodedAddress{City: "Nashik", Latitude: lat, Longitude: lng}, nil
}

func TestReverseCoalescesConcurrentLookups(t *testing.T) {
	provider := &blockingProvider{release: make(chan struct{})}
	svc := NewMapsService(provider, nil)

	var wg sync.WaitGroup
	results := make([]*models.GeocodedAddress, 2)
	start := func(i int) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			addr, err := svc.Reverse(context.Background(), 20.0, 73.78)
			assert.NoError(t, err)
			results[i] = addr
		}()
	}

	start(0)
	require.Eventually(t, func() bool { return atomic.LoadInt32(&provider.calls) == 1 }, time.Second, 5*time.Millisecond)
	start(1)
	time.Sleep(50 * time.Millisecond)
	close(provider.release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&provider.calls))
	for _, r := range results {
		require.NotNil(t, r)
		assert.Equal(t, "Nashik", r.City)
	}
}
