package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// newTestSessionCache creates a CachedSessionStore backed by a miniredis
// server and an in-memory session store.
func newTestSessionCache(t *testing.T) (*CachedSessionStore, *MockSessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	inner := NewMockSessionStore()
	cache := NewCachedSessionStore(inner, client, time.Minute, nil)
	return cache, inner, mr
}

func TestCachedSessionStoreReadThrough(t *testing.T) {
	ctx := context.Background()
	cache, inner, mr := newTestSessionCache(t)

	sess := &Session{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		Token:     "tok-123",
		Active:    true,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	if err := inner.Create(ctx, sess); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// First lookup misses the cache and populates it.
	got, err := cache.GetByToken(ctx, "tok-123")
	if err != nil {
		t.Fatalf("GetByToken failed: %v", err)
	}
	if got.ID != sess.ID {
		t.Errorf("expected session %s, got %s", sess.ID, got.ID)
	}
	if !mr.Exists(sessionKey("tok-123")) {
		t.Error("expected cache entry after read-through")
	}

	// Second lookup is served from the cache even if the row disappears.
	delete(inner.Sessions, sess.ID)
	got, err = cache.GetByToken(ctx, "tok-123")
	if err != nil {
		t.Fatalf("cached GetByToken failed: %v", err)
	}
	if got.Token != "tok-123" {
		t.Errorf("expected cached token, got %q", got.Token)
	}
}

func TestCachedSessionStoreInvalidatesOnUpdate(t *testing.T) {
	ctx := context.Background()
	cache, inner, mr := newTestSessionCache(t)

	sess := &Session{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		Token:     "tok-456",
		Active:    true,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	if err := inner.Create(ctx, sess); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := cache.GetByToken(ctx, "tok-456"); err != nil {
		t.Fatalf("GetByToken failed: %v", err)
	}
	if !mr.Exists(sessionKey("tok-456")) {
		t.Fatal("expected cache entry")
	}

	sess.Active = false
	if err := cache.Update(ctx, sess); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if mr.Exists(sessionKey("tok-456")) {
		t.Error("expected cache entry to be invalidated on update")
	}
}

func TestCachedSessionStoreMissFallsThrough(t *testing.T) {
	ctx := context.Background()
	cache, _, _ := newTestSessionCache(t)

	if _, err := cache.GetByToken(ctx, "no-such-token"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
