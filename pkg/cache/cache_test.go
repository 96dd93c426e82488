package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type prediction struct {
	Price float64 `json:"price"`
	Note  string  `json:"note"`
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache()
	defer mc.Close()

	if err := mc.Set(ctx, "k", prediction{Price: 412000, Note: "ok"}, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	var got prediction
	if err := mc.Get(ctx, "k", &got); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Price != 412000 || got.Note != "ok" {
		t.Fatalf("got %+v", got)
	}

	var s string
	_ = mc.Set(ctx, "s", "plain", 0)
	if err := mc.Get(ctx, "s", &s); err != nil || s != "plain" {
		t.Fatalf("string = %q, %v", s, err)
	}

	if err := mc.Get(ctx, "missing", &got); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("err = %v", err)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache()
	defer mc.Close()

	_ = mc.Set(ctx, "k", 1, time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	var v int
	if err := mc.Get(ctx, "k", &v); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("err = %v", err)
	}
	if ok, _ := mc.Exists(ctx, "k"); ok {
		t.Fatalf("expired key exists")
	}
}

func TestMemoryCacheEvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache(WithMemoryMaxSize(2))
	defer mc.Close()

	_ = mc.Set(ctx, "a", 1, time.Minute)
	time.Sleep(time.Millisecond)
	_ = mc.Set(ctx, "b", 2, time.Minute)
	time.Sleep(time.Millisecond)
	var v int
	_ = mc.Get(ctx, "a", &v)
	time.Sleep(time.Millisecond)
	_ = mc.Set(ctx, "c", 3, time.Minute)

	if mc.Len() != 2 {
		t.Fatalf("len = %d", mc.Len())
	}
	if ok, _ := mc.Exists(ctx, "b"); ok {
		t.Fatalf("b should have been evicted")
	}
	if ok, _ := mc.Exists(ctx, "a", "c"); !ok {
		t.Fatalf("a or c missing")
	}
}

func TestLayeredCachePromotesFromRemote(t *testing.T) {
	ctx := context.Background()
	remote := NewMemoryCache()
	lc := NewLayeredCache(remote)
	defer lc.Close()

	_ = remote.Set(ctx, "k", prediction{Price: 1}, time.Minute)
	var got prediction
	if err := lc.Get(ctx, "k", &got); err != nil || got.Price != 1 {
		t.Fatalf("get = %+v, %v", got, err)
	}
	_ = remote.Delete(ctx, "k")
	if err := lc.Get(ctx, "k", &got); err != nil {
		t.Fatalf("memory layer should still hold k: %v", err)
	}

	if err := lc.Set(ctx, "n", prediction{Price: 2}, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if ok, _ := remote.Exists(ctx, "n"); !ok {
		t.Fatalf("write-through missing")
	}
	_ = lc.Delete(ctx, "n")
	if ok, _ := lc.Exists(ctx, "n"); ok {
		t.Fatalf("delete did not reach both layers")
	}
}

func TestKeys(t *testing.T) {
	if k := GenerateKey("predict", "housing", "abc"); k != "predict:housing:abc" {
		t.Fatalf("key = %s", k)
	}
	if h := HashKey("x"); len(h) != 64 || h != HashKey("x") {
		t.Fatalf("hash = %s", h)
	}
}
