package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/homescout/internal/auth"
	"github.com/dtroode/homescout/internal/model"
	"github.com/dtroode/homescout/internal/search"
	"github.com/dtroode/homescout/internal/state"
	"github.com/dtroode/homescout/internal/storage/memory"
	"github.com/dtroode/homescout/internal/testutil"
	"github.com/dtroode/homescout/internal/token"
)

type MockKVStore struct {
	mock.Mock
}

func (m *MockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *MockKVStore) Put(ctx context.Context, key string, value []byte) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockKVStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockKVStore) Close() error {
	return m.Called().Error(0)
}

type stubPrincipal struct {
	user *model.User
}

func (p *stubPrincipal) CurrentPrincipal() (model.User, bool) {
	if p.user == nil {
		return model.User{}, false
	}
	return *p.user, true
}

func testHasher() *auth.Argon2 {
	return auth.NewArgon2(auth.KDFParams{Time: 1, MemKiB: 1024, Par: 1})
}

func testTokens() *token.JWT {
	return token.NewJWT("test-secret", time.Hour)
}

// app is a fully wired identity and listing pair over a shared key-value store.
type app struct {
	kv       model.KVStore
	identity *Identity
	listings *Listings
}

func newApp(t *testing.T, kv model.KVStore) *app {
	t.Helper()

	log := testutil.MakeNoopLogger()
	store := state.NewStore(kv, time.Second)
	identity := NewIdentity(store, testHasher(), testTokens(), log, false)
	listings := NewListings(identity, store, search.NewEngine(), log, false)

	require.NoError(t, identity.Restore(context.Background()))
	require.NoError(t, listings.Load(context.Background()))

	return &app{kv: kv, identity: identity, listings: listings}
}

func newMemoryApp(t *testing.T) *app {
	return newApp(t, memory.New())
}

func ptr[T any](v T) *T {
	return &v
}

func apartmentInput() model.ListingInput {
	return model.ListingInput{
		Title:        ptr("Sunny flat"),
		Address:      ptr("1 Main St, Lisbon"),
		Description:  ptr("Bright two-room flat"),
		PropertyType: ptr(model.PropertyApartment),
		ListingType:  ptr(model.ListingRent),
		SquareMeters: ptr(50.0),
		Price:        ptr(1200.0),
		Rooms:        ptr(2),
		Bedrooms:     ptr(1),
		Floor:        ptr(3),
		TotalFloors:  ptr(5),
		ContactPhone: ptr("+351 000 000"),
		Images:       []string{"https://img.example/1.jpg"},
	}
}

func newUser(name string) model.User {
	return model.User{ID: uuid.Must(uuid.NewV7()), Email: name + "@x.com", Name: name}
}
