package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
)

type cachedList struct {
	IDs []int64 `json:"ids"`
}

func newTestClient(t *testing.T) (*goredis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return client, mr
}

func TestCacheRepoRoundTrip(t *testing.T) {
	client, _ := newTestClient(t)
	repo := NewCacheRepo(client)
	ctx := context.Background()

	key := DiscoveryKey(42)
	if err := repo.SetJSON(ctx, key, cachedList{IDs: []int64{7, 8, 9}}, time.Minute); err != nil {
		t.Fatalf("SetJSON: %v", err)
	}

	var got cachedList
	found, err := repo.GetJSON(ctx, key, &got)
	if err != nil {
		t.Fatalf("GetJSON: %v", err)
	}
	if !found {
		t.Fatal("expected cached value to be present")
	}
	if len(got.IDs) != 3 || got.IDs[0] != 7 {
		t.Fatalf("unexpected cached value: %+v", got)
	}
}

func TestCacheRepoMiss(t *testing.T) {
	client, _ := newTestClient(t)
	repo := NewCacheRepo(client)

	var got cachedList
	found, err := repo.GetJSON(context.Background(), ConversationsKey(1), &got)
	if err != nil {
		t.Fatalf("GetJSON: %v", err)
	}
	if found {
		t.Fatal("expected cache miss")
	}
}

func TestCacheRepoDelete(t *testing.T) {
	client, _ := newTestClient(t)
	repo := NewCacheRepo(client)
	ctx := context.Background()

	keys := []string{DiscoveryKey(5), LikesKey(5)}
	for _, key := range keys {
		if err := repo.SetJSON(ctx, key, cachedList{IDs: []int64{1}}, time.Minute); err != nil {
			t.Fatalf("SetJSON %s: %v", key, err)
		}
	}

	if err := repo.Delete(ctx, keys...); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	var got cachedList
	for _, key := range keys {
		found, err := repo.GetJSON(ctx, key, &got)
		if err != nil {
			t.Fatalf("GetJSON %s: %v", key, err)
		}
		if found {
			t.Fatalf("expected %s to be gone", key)
		}
	}
}

func TestCacheRepoExpiry(t *testing.T) {
	client, mr := newTestClient(t)
	repo := NewCacheRepo(client)
	ctx := context.Background()

	key := ProfileKey(9)
	if err := repo.SetJSON(ctx, key, cachedList{IDs: []int64{9}}, time.Second); err != nil {
		t.Fatalf("SetJSON: %v", err)
	}

	mr.FastForward(2 * time.Second)

	var got cachedList
	found, err := repo.GetJSON(ctx, key, &got)
	if err != nil {
		t.Fatalf("GetJSON: %v", err)
	}
	if found {
		t.Fatal("expected cached value to expire")
	}
}
