package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasAnyRole(t *testing.T) {
	s := &Session{Roles: []string{"Doctor", "Admin"}}

	assert.True(t, s.HasAnyRole("admin"))
	assert.True(t, s.HasAnyRole("Patient", "DOCTOR"))
	assert.False(t, s.HasAnyRole("Patient"))
	assert.False(t, s.HasAnyRole())
}

func TestContextRoundTrip(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	want := &Session{AccountID: uuid.New(), Username: "drsmith"}
	got, ok := FromContext(NewContext(context.Background(), want))
	require.True(t, ok)
	assert.Same(t, want, got)
	assert.Equal(t, "drsmith", got.Actor())

	var none *Session
	assert.Empty(t, none.Actor())
}

func TestMemoryRevocationStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryRevocationStore()

	revoked, err := store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, store.Revoke(ctx, "jti-1", time.Now().Add(time.Hour)))
	revoked, err = store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	// already expired tokens need no entry
	require.NoError(t, store.Revoke(ctx, "jti-2", time.Now().Add(-time.Minute)))
	revoked, err = store.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func setupRedis(t *testing.T) (*miniredis.Miniredis, *RedisRevocationStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, NewRedisRevocationStore(client)
}

func TestRedisRevocationStore(t *testing.T) {
	ctx := context.Background()
	mr, store := setupRedis(t)

	require.NoError(t, store.Revoke(ctx, "jti-1", time.Now().Add(30*time.Minute)))
	assert.True(t, mr.Exists(revokedKeyPrefix+"jti-1"))

	revoked, err := store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = store.IsRevoked(ctx, "jti-unknown")
	require.NoError(t, err)
	assert.False(t, revoked)

	mr.FastForward(31 * time.Minute)
	revoked, err = store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRedisRevocationStoreUnavailable(t *testing.T) {
	mr, store := setupRedis(t)
	mr.Close()

	_, err := store.IsRevoked(context.Background(), "jti-1")
	assert.Error(t, err)
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewRedisClient(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	client.Close()

	_, err = NewRedisClient(context.Background(), "not-a-url")
	assert.Error(t, err)
}
