// Package session holds checkout state that outlives a single page: the
// persisted store and the provider context passed between pages.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"medcart/models"

	bolt "go.etcd.io/bbolt"
)

// CheckoutState is what survives between the checkout and payment pages.
type CheckoutState struct {
	SelectedAddressID string         `json:"selectedAddressId,omitempty"`
	Coupon            *models.Coupon `json:"coupon,omitempty"`
}

type Store interface {
	Load(ctx context.Context) (CheckoutState, error)
	Save(ctx context.Context, state CheckoutState) error
	Reset(ctx context.Context) error
}

var (
	checkoutBucket = []byte("checkout")
	stateKey       = []byte("state")
)

// BoltStore persists CheckoutState in a bbolt file.
type BoltStore struct {
	Path string
	db   *bolt.DB
}

func NewBoltStore(path string) *BoltStore {
	return &BoltStore{Path: path}
}

// Open creates the file and bucket if missing.
func (s *BoltStore) Open(ctx context.Context) error {
	if _, err := os.Stat(s.Path); err != nil && !os.IsNotExist(err) {
		return err
	}

	db, err := bolt.Open(s.Path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return fmt.Errorf("unable to open session store: %w", err)
	}
	s.db = db

	return s.db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(checkoutBucket)
		return err
	})
}

func (s *BoltStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *BoltStore) Load(ctx context.Context) (CheckoutState, error) {
	var state CheckoutState
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(checkoutBucket).Get(stateKey)
		if v == nil {
			return nil
		}
		return json.Unmarshal(v, &state)
	})
	return state, err
}

func (s *BoltStore) Save(ctx context.Context, state CheckoutState) error {
	v, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(checkoutBucket).Put(stateKey, v)
	})
}

func (s *BoltStore) Reset(ctx context.Context) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(checkoutBucket).Delete(stateKey)
	})
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu    sync.Mutex
	state CheckoutState
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(ctx context.Context) (CheckoutState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyState(s.state), nil
}

func (s *MemoryStore) Save(ctx context.Context, state CheckoutState) error {
	s.mu.Lock()
	s.state = copyState(state)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	s.state = CheckoutState{}
	s.mu.Unlock()
	return nil
}

func copyState(s CheckoutState) CheckoutState {
	if s.Coupon != nil {
		c := *s.Coupon
		s.Coupon = &c
	}
	return s
}
