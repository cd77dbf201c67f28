package cache

import (
	"testing"
	"time"
)

func TestKey(t *testing.T) {
	a := Key("https://example.com/a")
	b := Key("https://example.com/b")
	if a == b {
		t.Error("distinct URLs must produce distinct keys")
	}
	if a != Key("https://example.com/a") {
		t.Error("key derivation must be stable")
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if _, found := c.Get("missing"); found {
		t.Error("unexpected hit on empty cache")
	}

	if err := c.Set("k", []byte("body"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	val, found := c.Get("k")
	if !found || string(val) != "body" {
		t.Errorf("Get = %q, %v", val, found)
	}

	if err := c.Delete("k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, found := c.Get("k"); found {
		t.Error("hit after delete")
	}
}

func TestDiskCache(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Minute)

	if err := c.Set(Key("https://example.com"), []byte("page"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	val, found := c.Get(Key("https://example.com"))
	if !found || string(val) != "page" {
		t.Errorf("Get = %q, %v", val, found)
	}
}

func TestDiskCache_Expiry(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Minute)

	if err := c.Set("k", []byte("stale"), -time.Second); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, found := c.Get("k"); found {
		t.Error("expired entry must miss")
	}
}

func TestLayeredCache_Promotion(t *testing.T) {
	dir := t.TempDir()

	// Seed only the disk layer.
	disk := NewDiskCache(dir, time.Minute)
	if err := disk.Set("k", []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}

	layered := NewLayeredCache(time.Minute, dir, time.Minute)
	val, found := layered.Get("k")
	if !found || string(val) != "v" {
		t.Fatalf("Get = %q, %v", val, found)
	}

	// Now present in memory too.
	if _, found := layered.memory.Get("k"); !found {
		t.Error("disk hit should be promoted to memory")
	}
}
