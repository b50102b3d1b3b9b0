package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/almada-laundry/almada/internal/cache"
	"github.com/almada-laundry/almada/internal/config"
	"github.com/almada-laundry/almada/internal/entity"
)

type memCache struct {
	entries map[string][]byte
	ttls    map[string]time.Duration
}

func newMemCache() *memCache {
	return &memCache{
		entries: map[string][]byte{},
		ttls:    map[string]time.Duration{},
	}
}

func (m *memCache) Get(_ context.Context, key string) ([]byte, error) {
	value, ok := m.entries[key]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return value, nil
}

func (m *memCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.entries[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *memCache) Delete(_ context.Context, key string) error {
	delete(m.entries, key)
	delete(m.ttls, key)
	return nil
}

func newTestRepo() (*Repository, *memCache) {
	store := newMemCache()
	cfg := config.Config{Auth: config.Auth{SessionTTL: time.Hour}}
	return NewRepository(store, cfg), store
}

func TestSessionRoundTrip(t *testing.T) {
	repo, store := newTestRepo()
	ctx := context.Background()

	sess := &entity.Session{
		Token:       "tok-123",
		UserID:      7,
		Name:        "Owner",
		Role:        entity.RoleOwner,
		LaundryID:   1,
		LaundryName: "Almada Laundry",
		CreatedAt:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	require.NoError(t, repo.Save(ctx, sess))
	assert.Equal(t, time.Hour, store.ttls["sessions:tok-123"])

	got, err := repo.Get(ctx, "tok-123")
	require.NoError(t, err)
	assert.Equal(t, sess, got)
}

func TestSessionGetMissing(t *testing.T) {
	repo, _ := newTestRepo()
	_, err := repo.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.Get(context.Background(), "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSessionSaveRequiresToken(t *testing.T) {
	repo, _ := newTestRepo()
	assert.Error(t, repo.Save(context.Background(), nil))
	assert.Error(t, repo.Save(context.Background(), &entity.Session{}))
}

func TestSessionClear(t *testing.T) {
	repo, _ := newTestRepo()
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &entity.Session{Token: "tok-1"}))
	require.NoError(t, repo.Clear(ctx, "tok-1"))

	_, err := repo.Get(ctx, "tok-1")
	assert.ErrorIs(t, err, ErrNotFound)

	// Clearing again is a no-op.
	assert.NoError(t, repo.Clear(ctx, "tok-1"))
}

func TestPrinterAddressRoundTrip(t *testing.T) {
	repo, _ := newTestRepo()
	ctx := context.Background()

	address, err := repo.PrinterAddress(ctx)
	require.NoError(t, err)
	assert.Empty(t, address)

	require.NoError(t, repo.SavePrinterAddress(ctx, "AA:BB:CC"))
	address, err = repo.PrinterAddress(ctx)
	require.NoError(t, err)
	assert.Equal(t, "AA:BB:CC", address)

	// Saving empty forgets the printer.
	require.NoError(t, repo.SavePrinterAddress(ctx, ""))
	address, err = repo.PrinterAddress(ctx)
	require.NoError(t, err)
	assert.Empty(t, address)
}
