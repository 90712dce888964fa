package redis

import (
	"context"
	"testing"
	"time"
)

func TestCacheSetAndGet(t *testing.T) {
	client, _ := newTestRedisClient(t)

	cache := NewCache(client)
	ctx := context.Background()

	if err := cache.Set(ctx, "dashboard:t1", []byte(`{"report":{}}`), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	val, err := cache.Get(ctx, "dashboard:t1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}

	if string(val) != `{"report":{}}` {
		t.Fatalf("unexpected value %s", val)
	}
}

func TestCacheMissIsNotAnError(t *testing.T) {
	client, _ := newTestRedisClient(t)

	val, err := NewCache(client).Get(context.Background(), "missing")
	if err != nil || val != nil {
		t.Fatalf("expected nil value without error, got %q / %v", val, err)
	}
}

func TestCacheExpires(t *testing.T) {
	client, mr := newTestRedisClient(t)

	cache := NewCache(client)
	ctx := context.Background()

	if err := cache.Set(ctx, "k", []byte("v"), time.Second); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	mr.FastForward(2 * time.Second)

	if val, _ := cache.Get(ctx, "k"); val != nil {
		t.Fatalf("expected key to expire, got %q", val)
	}
}

func TestCacheIncr(t *testing.T) {
	client, mr := newTestRedisClient(t)

	cache := NewCache(client)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := cache.Incr(ctx, "dashboard-version:t1")
		if err != nil {
			t.Fatalf("incr failed: %v", err)
		}
		if got != want {
			t.Fatalf("expected counter %d, got %d", want, got)
		}
	}
	if !mr.Exists("tripledger:cache:dashboard-version:t1") {
		t.Fatalf("expected prefixed key in redis, keys=%v", mr.Keys())
	}

	val, err := cache.Get(ctx, "dashboard-version:t1")
	if err != nil || string(val) != "3" {
		t.Fatalf("expected counter to read back as 3, got %q / %v", val, err)
	}
}

func TestCacheReportsConnectionErrors(t *testing.T) {
	client, mr := newTestRedisClient(t)
	mr.Close()

	if _, err := NewCache(client).Get(context.Background(), "k"); err == nil {
		t.Fatal("expected error when redis is down")
	}
}
