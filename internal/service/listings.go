package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/homescout/internal/logger"
	"github.com/dtroode/homescout/internal/model"
	"github.com/dtroode/homescout/internal/search"
	"github.com/dtroode/homescout/internal/state"
)

// Listings owns the listing collection and enforces ownership on mutation.
type Listings struct {
	mu       sync.RWMutex
	listings []model.Listing

	principals model.PrincipalProvider
	store      *state.Store
	engine     *search.Engine
	logger     *logger.Logger
	strict     bool
	now        func() time.Time
}

// NewListings creates an empty repository. Call Load to rehydrate persisted listings.
func NewListings(
	principals model.PrincipalProvider,
	store *state.Store,
	engine *search.Engine,
	logger *logger.Logger,
	strict bool,
) *Listings {
	return &Listings{
		listings:   []model.Listing{},
		principals: principals,
		store:      store,
		engine:     engine,
		logger:     logger,
		strict:     strict,
		now:        time.Now,
	}
}

// Load replaces the in-memory collection with the persisted one.
func (s *Listings) Load(ctx context.Context) error {
	listings, err := s.store.LoadListings(ctx)
	if err != nil {
		if !errors.Is(err, model.ErrCorruptState) || s.strict {
			s.logger.Error("Listings service: failed to load listings",
				"error", err.Error())
			return fmt.Errorf("failed to load listings: %w", err)
		}
		s.logger.Warn("Listings service: persisted listings are corrupt, starting empty",
			"error", err.Error())
		listings = nil
	}
	if listings == nil {
		listings = []model.Listing{}
	}

	s.mu.Lock()
	s.listings = listings
	s.mu.Unlock()

	s.logger.Debug("Listings service: listings loaded",
		"count", len(listings))

	return nil
}

// Create stores a new listing owned by the current principal.
func (s *Listings) Create(ctx context.Context, in model.ListingInput) (model.Listing, error) {
	principal, ok := s.principals.CurrentPrincipal()
	if !ok {
		return model.Listing{}, model.ErrUnauthenticated
	}

	id, err := uuid.NewV7()
	if err != nil {
		return model.Listing{}, fmt.Errorf("failed to generate listing id: %w", err)
	}

	now := s.now()
	listing := model.Listing{
		ID:         id,
		OwnerID:    principal.ID,
		OwnerName:  principal.Name,
		OwnerEmail: principal.Email,
		Images:     []string{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	in.ApplyTo(&listing)

	s.mu.Lock()
	defer s.mu.Unlock()

	next := append(slices.Clone(s.listings), listing)
	if err := s.save(ctx, next); err != nil {
		return model.Listing{}, err
	}

	s.logger.Info("Listings service: listing created",
		"listing_id", listing.ID,
		"owner_id", principal.ID)

	return listing.Clone(), nil
}

// Update merges the set fields of in onto the listing with the given id.
func (s *Listings) Update(ctx context.Context, id uuid.UUID, in model.ListingInput) (model.Listing, error) {
	principal, ok := s.principals.CurrentPrincipal()
	if !ok {
		return model.Listing{}, model.ErrUnauthenticated
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.ownedIndex(id, principal)
	if err != nil {
		return model.Listing{}, err
	}

	updated := s.listings[idx].Clone()
	in.ApplyTo(&updated)
	updated.UpdatedAt = s.now()
	if updated.UpdatedAt.Before(updated.CreatedAt) {
		updated.UpdatedAt = updated.CreatedAt
	}

	next := slices.Clone(s.listings)
	next[idx] = updated
	if err := s.save(ctx, next); err != nil {
		return model.Listing{}, err
	}

	s.logger.Info("Listings service: listing updated",
		"listing_id", id,
		"owner_id", principal.ID)

	return updated.Clone(), nil
}

// Delete removes the listing with the given id.
func (s *Listings) Delete(ctx context.Context, id uuid.UUID) error {
	principal, ok := s.principals.CurrentPrincipal()
	if !ok {
		return model.ErrUnauthenticated
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.ownedIndex(id, principal)
	if err != nil {
		return err
	}

	next := slices.Delete(slices.Clone(s.listings), idx, idx+1)
	if err := s.save(ctx, next); err != nil {
		return err
	}

	s.logger.Info("Listings service: listing deleted",
		"listing_id", id,
		"owner_id", principal.ID)

	return nil
}

// GetByID returns the listing with the given id.
func (s *Listings) GetByID(id uuid.UUID) (model.Listing, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexByID(id)
	if idx < 0 {
		return model.Listing{}, false
	}
	return s.listings[idx].Clone(), true
}

// GetAll returns every listing in insertion order.
func (s *Listings) GetAll() []model.Listing {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneListings(s.listings, nil)
}

// GetByOwner returns the listings created by ownerID.
func (s *Listings) GetByOwner(ownerID uuid.UUID) []model.Listing {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneListings(s.listings, func(l model.Listing) bool { return l.OwnerID == ownerID })
}

// GetMine returns the current principal's listings, or none when anonymous.
func (s *Listings) GetMine() []model.Listing {
	principal, ok := s.principals.CurrentPrincipal()
	if !ok {
		return []model.Listing{}
	}
	return s.GetByOwner(principal.ID)
}

// Search runs criteria against a snapshot of the collection.
func (s *Listings) Search(criteria model.SearchCriteria) []model.Listing {
	return s.engine.Search(s.GetAll(), criteria)
}

// Recent returns the n most recently created listings.
func (s *Listings) Recent(n int) []model.Listing {
	return search.MostRecent(s.GetAll(), n)
}

// ownedIndex locates id and checks that principal owns it. Callers hold s.mu.
func (s *Listings) ownedIndex(id uuid.UUID, principal model.User) (int, error) {
	idx := s.indexByID(id)
	if idx < 0 {
		return -1, model.ErrNotFound
	}
	if s.listings[idx].OwnerID != principal.ID {
		s.logger.Info("Listings service: rejected mutation by non-owner",
			"listing_id", id,
			"user_id", principal.ID)
		return -1, model.ErrForbidden
	}
	return idx, nil
}

// save persists next and swaps it in. Callers hold s.mu.
func (s *Listings) save(ctx context.Context, next []model.Listing) error {
	if err := s.store.SaveListings(ctx, next); err != nil {
		s.logger.Error("Listings service: failed to save listings",
			"error", err.Error())
		return fmt.Errorf("failed to save listings: %w", err)
	}
	s.listings = next
	return nil
}

func (s *Listings) indexByID(id uuid.UUID) int {
	return slices.IndexFunc(s.listings, func(l model.Listing) bool { return l.ID == id })
}

func cloneListings(listings []model.Listing, keep func(model.Listing) bool) []model.Listing {
	out := make([]model.Listing, 0, len(listings))
	for _, l := range listings {
		if keep == nil || keep(l) {
			out = append(out, l.Clone())
		}
	}
	return out
}
