package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/homescout/internal/model"
	"github.com/dtroode/homescout/internal/search"
	"github.com/dtroode/homescout/internal/state"
	"github.com/dtroode/homescout/internal/storage/memory"
	"github.com/dtroode/homescout/internal/testutil"
)

func newStubListings(t *testing.T, principal *stubPrincipal) *Listings {
	t.Helper()
	store := state.NewStore(memory.New(), time.Second)
	return NewListings(principal, store, search.NewEngine(), testutil.MakeNoopLogger(), false)
}

func TestListings_Create(t *testing.T) {
	ctx := context.Background()
	alice := newUser("alice")
	s := newStubListings(t, &stubPrincipal{user: &alice})

	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return created }

	l, err := s.Create(ctx, apartmentInput())
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, l.ID)
	assert.Equal(t, alice.ID, l.OwnerID)
	assert.Equal(t, alice.Name, l.OwnerName)
	assert.Equal(t, alice.Email, l.OwnerEmail)
	assert.Equal(t, "Sunny flat", l.Title)
	assert.Equal(t, created, l.CreatedAt)
	assert.Equal(t, created, l.UpdatedAt)
	require.NotNil(t, l.Rooms)
	assert.Equal(t, 2, *l.Rooms)

	got, ok := s.GetByID(l.ID)
	require.True(t, ok)
	assert.Equal(t, l, got)
}

func TestListings_Create_Unauthenticated(t *testing.T) {
	s := newStubListings(t, &stubPrincipal{})

	_, err := s.Create(context.Background(), apartmentInput())
	assert.ErrorIs(t, err, model.ErrUnauthenticated)
	assert.Empty(t, s.GetAll())
}

func TestListings_Create_UniqueIDs(t *testing.T) {
	ctx := context.Background()
	alice := newUser("alice")
	s := newStubListings(t, &stubPrincipal{user: &alice})

	seen := map[uuid.UUID]bool{}
	for range 20 {
		l, err := s.Create(ctx, apartmentInput())
		require.NoError(t, err)
		assert.False(t, seen[l.ID])
		seen[l.ID] = true
	}

	all := s.GetAll()
	require.Len(t, all, 20)
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].ID.String(), all[i].ID.String())
	}
}

func TestListings_Update(t *testing.T) {
	ctx := context.Background()
	alice := newUser("alice")
	bob := newUser("bob")
	principal := &stubPrincipal{user: &alice}
	s := newStubListings(t, principal)

	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return created }
	l, err := s.Create(ctx, apartmentInput())
	require.NoError(t, err)

	t.Run("owner merges fields", func(t *testing.T) {
		principal.user = &alice
		later := created.Add(time.Hour)
		s.now = func() time.Time { return later }

		updated, err := s.Update(ctx, l.ID, model.ListingInput{Price: ptr(1100.0)})
		require.NoError(t, err)
		assert.Equal(t, 1100.0, updated.Price)
		assert.Equal(t, l.Title, updated.Title)
		assert.Equal(t, l.OwnerID, updated.OwnerID)
		assert.Equal(t, created, updated.CreatedAt)
		assert.Equal(t, later, updated.UpdatedAt)
	})

	t.Run("clock going backwards keeps updatedAt after createdAt", func(t *testing.T) {
		principal.user = &alice
		s.now = func() time.Time { return created.Add(-time.Hour) }

		updated, err := s.Update(ctx, l.ID, model.ListingInput{Title: ptr("Renamed")})
		require.NoError(t, err)
		assert.False(t, updated.UpdatedAt.Before(updated.CreatedAt))
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		principal.user = &bob
		before, _ := s.GetByID(l.ID)

		_, err := s.Update(ctx, l.ID, model.ListingInput{Price: ptr(1.0)})
		assert.ErrorIs(t, err, model.ErrForbidden)

		after, _ := s.GetByID(l.ID)
		assert.Equal(t, before, after)
	})

	t.Run("unknown id", func(t *testing.T) {
		principal.user = &alice
		_, err := s.Update(ctx, uuid.New(), model.ListingInput{})
		assert.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("anonymous", func(t *testing.T) {
		principal.user = nil
		_, err := s.Update(ctx, l.ID, model.ListingInput{})
		assert.ErrorIs(t, err, model.ErrUnauthenticated)
	})
}

func TestListings_Delete(t *testing.T) {
	ctx := context.Background()
	alice := newUser("alice")
	bob := newUser("bob")
	principal := &stubPrincipal{user: &alice}
	s := newStubListings(t, principal)

	l, err := s.Create(ctx, apartmentInput())
	require.NoError(t, err)

	principal.user = &bob
	assert.ErrorIs(t, s.Delete(ctx, l.ID), model.ErrForbidden)

	principal.user = nil
	assert.ErrorIs(t, s.Delete(ctx, l.ID), model.ErrUnauthenticated)

	principal.user = &alice
	require.NoError(t, s.Delete(ctx, l.ID))
	assert.ErrorIs(t, s.Delete(ctx, l.ID), model.ErrNotFound)

	_, ok := s.GetByID(l.ID)
	assert.False(t, ok)
}

func TestListings_Queries(t *testing.T) {
	ctx := context.Background()
	alice := newUser("alice")
	bob := newUser("bob")
	principal := &stubPrincipal{user: &alice}
	s := newStubListings(t, principal)

	a1, err := s.Create(ctx, apartmentInput())
	require.NoError(t, err)

	principal.user = &bob
	in := apartmentInput()
	in.Title = ptr("Bob's house")
	in.PropertyType = ptr(model.PropertyHouse)
	b1, err := s.Create(ctx, in)
	require.NoError(t, err)

	principal.user = &alice
	a2, err := s.Create(ctx, apartmentInput())
	require.NoError(t, err)

	ids := func(ls []model.Listing) []uuid.UUID {
		out := make([]uuid.UUID, 0, len(ls))
		for _, l := range ls {
			out = append(out, l.ID)
		}
		return out
	}

	assert.Equal(t, []uuid.UUID{a1.ID, b1.ID, a2.ID}, ids(s.GetAll()))
	assert.Equal(t, []uuid.UUID{a1.ID, a2.ID}, ids(s.GetMine()))
	assert.Equal(t, []uuid.UUID{b1.ID}, ids(s.GetByOwner(bob.ID)))
	assert.Empty(t, s.GetByOwner(uuid.New()))

	principal.user = nil
	assert.Empty(t, s.GetMine())

	houses := s.Search(model.SearchCriteria{Filters: model.Filters{PropertyType: model.PropertyHouse}})
	assert.Equal(t, []uuid.UUID{b1.ID}, ids(houses))

	_, ok := s.GetByID(uuid.New())
	assert.False(t, ok)
}

func TestListings_SnapshotsAreCopies(t *testing.T) {
	ctx := context.Background()
	alice := newUser("alice")
	s := newStubListings(t, &stubPrincipal{user: &alice})

	l, err := s.Create(ctx, apartmentInput())
	require.NoError(t, err)

	all := s.GetAll()
	all[0].Title = "mutated"
	*all[0].Rooms = 99
	all[0].Images[0] = "mutated"

	got, _ := s.GetByID(l.ID)
	assert.Equal(t, "Sunny flat", got.Title)
	assert.Equal(t, 2, *got.Rooms)
	assert.Equal(t, "https://img.example/1.jpg", got.Images[0])
}

func TestListings_Recent(t *testing.T) {
	ctx := context.Background()
	alice := newUser("alice")
	s := newStubListings(t, &stubPrincipal{user: &alice})

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var created []model.Listing
	for i := range 5 {
		s.now = func() time.Time { return base.Add(time.Duration(i) * time.Hour) }
		l, err := s.Create(ctx, apartmentInput())
		require.NoError(t, err)
		created = append(created, l)
	}

	recent := s.Recent(3)
	require.Len(t, recent, 3)
	assert.Equal(t, created[4].ID, recent[0].ID)
	assert.Equal(t, created[3].ID, recent[1].ID)
	assert.Equal(t, created[2].ID, recent[2].ID)
}

func TestListings_FailedSaveLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	alice := newUser("alice")

	kv := &MockKVStore{}
	store := state.NewStore(kv, time.Second)
	s := NewListings(&stubPrincipal{user: &alice}, store, search.NewEngine(), testutil.MakeNoopLogger(), false)

	saveErr := errors.New("quota exceeded")
	kv.On("Put", mock.Anything, model.KeyAllListings, mock.Anything).Return(nil).Once()
	l, err := s.Create(ctx, apartmentInput())
	require.NoError(t, err)

	kv.On("Put", mock.Anything, model.KeyAllListings, mock.Anything).Return(saveErr)

	_, err = s.Create(ctx, apartmentInput())
	assert.ErrorIs(t, err, saveErr)

	_, err = s.Update(ctx, l.ID, model.ListingInput{Title: ptr("Renamed")})
	assert.ErrorIs(t, err, saveErr)

	assert.ErrorIs(t, s.Delete(ctx, l.ID), saveErr)

	all := s.GetAll()
	require.Len(t, all, 1)
	assert.Equal(t, l, all[0])
}

func TestListings_Load(t *testing.T) {
	ctx := context.Background()
	log := testutil.MakeNoopLogger()

	t.Run("persisted listings survive restart", func(t *testing.T) {
		kv := memory.New()
		alice := newUser("alice")

		first := NewListings(&stubPrincipal{user: &alice}, state.NewStore(kv, time.Second), search.NewEngine(), log, false)
		l, err := first.Create(ctx, apartmentInput())
		require.NoError(t, err)

		second := NewListings(&stubPrincipal{}, state.NewStore(kv, time.Second), search.NewEngine(), log, false)
		require.NoError(t, second.Load(ctx))

		got, ok := second.GetByID(l.ID)
		require.True(t, ok)
		assert.Equal(t, l.Title, got.Title)
		assert.True(t, l.CreatedAt.Equal(got.CreatedAt))
	})

	t.Run("corrupt listings fall back to empty", func(t *testing.T) {
		kv := memory.New()
		require.NoError(t, kv.Put(ctx, model.KeyAllListings, []byte(`[{"id": 42}`)))

		s := NewListings(&stubPrincipal{}, state.NewStore(kv, time.Second), search.NewEngine(), log, false)
		require.NoError(t, s.Load(ctx))
		assert.Empty(t, s.GetAll())
	})

	t.Run("corrupt listings fail in strict mode", func(t *testing.T) {
		kv := memory.New()
		require.NoError(t, kv.Put(ctx, model.KeyAllListings, []byte(`nope`)))

		s := NewListings(&stubPrincipal{}, state.NewStore(kv, time.Second), search.NewEngine(), log, true)
		assert.ErrorIs(t, s.Load(ctx), model.ErrCorruptState)
	})
}
