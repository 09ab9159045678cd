package cache

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestMemoryCache_SetGet(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	ctx := context.Background()

	if _, found, _ := c.Get(ctx, "missing"); found {
		t.Error("Expected missing key to be absent")
	}

	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	val, found, err := c.Get(ctx, "k")
	if err != nil || !found {
		t.Fatalf("Expected key to be present, found=%v err=%v", found, err)
	}
	if string(val) != "v" {
		t.Errorf("Expected value v, got %s", val)
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	ctx := context.Background()

	_ = c.Set(ctx, "short", []byte("x"), 10*time.Millisecond)
	_ = c.Set(ctx, "forever", []byte("y"), NoExpiration)

	time.Sleep(30 * time.Millisecond)

	if _, found, _ := c.Get(ctx, "short"); found {
		t.Error("Expected short-lived key to expire")
	}
	if _, found, _ := c.Get(ctx, "forever"); !found {
		t.Error("Expected NoExpiration key to survive")
	}
}

func TestMemoryCache_Keys(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	ctx := context.Background()

	_ = c.Set(ctx, "a:2", []byte("x"), NoExpiration)
	_ = c.Set(ctx, "a:1", []byte("x"), NoExpiration)
	_ = c.Set(ctx, "b:1", []byte("x"), NoExpiration)

	keys, err := c.Keys(ctx, "a:")
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	if len(keys) != 2 || keys[0] != "a:1" || keys[1] != "a:2" {
		t.Errorf("Unexpected keys: %v", keys)
	}
}

func TestHashKey(t *testing.T) {
	k1 := HashKey("classify", "some text")
	k2 := HashKey("classify", "some text")
	k3 := HashKey("classify", "other text")

	if k1 != k2 {
		t.Error("Expected identical content to hash identically")
	}
	if k1 == k3 {
		t.Error("Expected different content to hash differently")
	}
	if !strings.HasPrefix(k1, "credence:classify:") {
		t.Errorf("Unexpected key prefix: %s", k1)
	}
}
