// Package state encodes the user set, session pointer and listing collection
// into the durable key-value store.
package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dtroode/homescout/internal/model"
)

// DefaultTimeout bounds a single load or save.
const DefaultTimeout = 5 * time.Second

// Store reads and writes whole values for the logical keys.
type Store struct {
	kv      model.KVStore
	timeout time.Duration
}

// NewStore wraps a key-value store. A non-positive timeout falls back to DefaultTimeout.
func NewStore(kv model.KVStore, timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Store{kv: kv, timeout: timeout}
}

// LoadUsers returns the persisted users. A missing key yields an empty set;
// an undecodable value yields ErrCorruptState.
func (s *Store) LoadUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := s.load(ctx, model.KeyAllUsers, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// SaveUsers replaces the persisted user set.
func (s *Store) SaveUsers(ctx context.Context, users []model.User) error {
	if users == nil {
		users = []model.User{}
	}
	return s.save(ctx, model.KeyAllUsers, users)
}

// LoadListings returns the persisted listings in insertion order.
func (s *Store) LoadListings(ctx context.Context) ([]model.Listing, error) {
	var listings []model.Listing
	if err := s.load(ctx, model.KeyAllListings, &listings); err != nil {
		return nil, err
	}
	return listings, nil
}

// SaveListings replaces the persisted listing collection.
func (s *Store) SaveListings(ctx context.Context, listings []model.Listing) error {
	if listings == nil {
		listings = []model.Listing{}
	}
	return s.save(ctx, model.KeyAllListings, listings)
}

// LoadSession returns the remembered session token, or "" when there is none.
func (s *Store) LoadSession(ctx context.Context) (string, error) {
	var token string
	if err := s.load(ctx, model.KeyCurrentSession, &token); err != nil {
		return "", err
	}
	return token, nil
}

// SaveSession remembers the session token.
func (s *Store) SaveSession(ctx context.Context, token string) error {
	return s.save(ctx, model.KeyCurrentSession, token)
}

// ClearSession forgets the session. Clearing an absent session is not an error.
func (s *Store) ClearSession(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err := s.kv.Delete(ctx, model.KeyCurrentSession)
	if err != nil && !errors.Is(err, model.ErrKeyNotFound) {
		return fmt.Errorf("failed to delete %s: %w", model.KeyCurrentSession, err)
	}
	return nil
}

func (s *Store) load(ctx context.Context, key string, dst any) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	data, err := s.kv.Get(ctx, key)
	if errors.Is(err, model.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", key, err)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("%w: %s: %v", model.ErrCorruptState, key, err)
	}
	return nil
}

func (s *Store) save(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.kv.Put(ctx, key, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}
