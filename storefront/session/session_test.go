package session

import (
	"context"
	"path/filepath"
	"testing"

	"medcart/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoltStore_RoundTripAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.db")

	s := NewBoltStore(path)
	require.NoError(t, s.Open(ctx))

	empty, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, CheckoutState{}, empty)

	want := CheckoutState{
		SelectedAddressID: "addr-1",
		Coupon:            &models.Coupon{Code: "SAVE10", Discount: 10, Active: true},
	}
	require.NoError(t, s.Save(ctx, want))
	require.NoError(t, s.Close())

	s = NewBoltStore(path)
	require.NoError(t, s.Open(ctx))
	defer s.Close()

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.NoError(t, s.Reset(ctx))
	got, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, CheckoutState{}, got)
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	coupon := &models.Coupon{Code: "SAVE10", Discount: 10}
	require.NoError(t, s.Save(ctx, CheckoutState{Coupon: coupon}))
	coupon.Discount = 90

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10.0, got.Coupon.Discount)
}

func TestContext_NotifiesOnChange(t *testing.T) {
	c := NewContext()
	ch, unsubscribe := c.Subscribe()

	c.SetSelectedAddressID("addr-1")
	c.SetCartModalOpen(true)

	got := <-ch
	assert.Equal(t, State{SelectedAddressID: "addr-1", CartModalOpen: true}, got)

	c.SetCartModalOpen(true)
	select {
	case s := <-ch:
		t.Fatalf("unexpected notification %+v", s)
	default:
	}

	unsubscribe()
	unsubscribe()
	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, "addr-1", c.SelectedAddressID())
}
