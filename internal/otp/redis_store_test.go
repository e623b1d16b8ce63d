package otp

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisStore(client), mr
}

func TestRedisStoreRoundtrip(t *testing.T) {
	store, _ := setupRedisStore(t)
	ctx := context.Background()

	hash, err := HashCode("246810")
	if err != nil {
		t.Fatalf("hash code: %v", err)
	}
	cred := PendingCredential{
		Name:      "A",
		Email:     "a@x.com",
		CodeHash:  hash,
		CreatedAt: time.Now().UTC(),
		ExpiresAt: time.Now().UTC().Add(5 * time.Minute),
		Login:     true,
	}
	if err := store.Put(ctx, cred, 5*time.Minute); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := store.Get(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "A" || !got.Login {
		t.Fatalf("unexpected credential %+v", got)
	}
	if !got.Match("246810") {
		t.Fatal("expected stored hash to match the issued code")
	}
}

func TestRedisStoreKeyExpires(t *testing.T) {
	store, mr := setupRedisStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, PendingCredential{Email: "b@x.com"}, 5*time.Minute); err != nil {
		t.Fatalf("put: %v", err)
	}

	mr.FastForward(5*time.Minute + time.Second)

	if _, err := store.Get(ctx, "b@x.com"); !errors.Is(err, ErrNoCredential) {
		t.Fatalf("expected ErrNoCredential after TTL, got %v", err)
	}
}

func TestRedisStorePutReplacesExisting(t *testing.T) {
	store, _ := setupRedisStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, PendingCredential{Email: "c@x.com", Name: "first"}, time.Minute); err != nil {
		t.Fatalf("first put: %v", err)
	}
	if err := store.Put(ctx, PendingCredential{Email: "c@x.com", Name: "second"}, time.Minute); err != nil {
		t.Fatalf("second put: %v", err)
	}

	got, err := store.Get(ctx, "c@x.com")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "second" {
		t.Fatalf("expected latest credential to win, got %q", got.Name)
	}
}
