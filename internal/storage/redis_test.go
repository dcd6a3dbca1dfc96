package storage

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestRedisStore(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping Redis integration test in short mode")
	}

	url := os.Getenv("REDIS_URL")
	if url == "" {
		url = "redis://localhost:6379/15"
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		t.Fatalf("redis.ParseURL() error = %v", err)
	}
	client := redis.NewClient(opts)
	defer client.Close()

	ctx := context.Background()
	if _, err := client.Ping(ctx).Result(); err != nil {
		t.Skip("Skipping Redis integration test: redis not available")
	}

	store := NewRedisStoreWithClient(client)
	cleanup := func() {
		client.Del(ctx, redisIndexKey, sessionKey("session-a"), sessionKey("session-b"))
	}
	cleanup()
	defer cleanup()

	exerciseStore(t, store)
}

func TestRedisStoreUnavailable(t *testing.T) {
	// Nothing listens on port 1.
	store, err := NewRedisStore("redis://127.0.0.1:1/0")
	if err != nil {
		t.Fatalf("NewRedisStore() error = %v", err)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err = store.SaveProgress(ctx, savedSession("session-a", savedAt))
	if err == nil {
		t.Fatal("expected error when redis is unreachable")
	}
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("SaveProgress() error = %v, want ErrUnavailable", err)
	}
}

func TestNewRedisStoreInvalidURL(t *testing.T) {
	if _, err := NewRedisStore("not a url"); err == nil {
		t.Error("expected error for invalid url")
	}
}
