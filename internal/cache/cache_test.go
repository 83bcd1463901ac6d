package cache

import (
	"testing"
	"time"
)

func TestKey_StableAndDistinct(t *testing.T) {
	a := Key("src_01", "document text")
	b := Key("src_01", "document text")
	if a != b {
		t.Error("same inputs must derive the same key")
	}
	if Key("src_01", "other text") == a {
		t.Error("different text must derive a different key")
	}
	if Key("src_02", "document text") == a {
		t.Error("different source must derive a different key")
	}
	if len(a) < 10 || a[:11] != "cibrief:v1:" {
		t.Errorf("key missing version prefix: %s", a)
	}
}

func TestMemoryCache_ResponseRoundTrip(t *testing.T) {
	c := NewMemoryCache(1 * time.Minute)

	if _, ok := c.GetResponse("src_01", "text"); ok {
		t.Error("empty cache should miss")
	}

	if err := c.SetResponse("src_01", "text", []byte("response")); err != nil {
		t.Fatalf("set: %v", err)
	}
	val, ok := c.GetResponse("src_01", "text")
	if !ok || string(val) != "response" {
		t.Errorf("get after set = %q, %v", val, ok)
	}

	if _, ok := c.GetResponse("src_01", "other text"); ok {
		t.Error("different document must not hit the same entry")
	}
	if _, ok := c.GetResponse("src_02", "text"); ok {
		t.Error("different source must not hit the same entry")
	}
}

func TestMemoryCache_Overwrite(t *testing.T) {
	c := NewMemoryCache(time.Minute)

	_ = c.SetResponse("src_01", "text", []byte("old"))
	_ = c.SetResponse("src_01", "text", []byte("new"))

	val, ok := c.GetResponse("src_01", "text")
	if !ok || string(val) != "new" {
		t.Errorf("re-extraction should replace the cached response, got %q", val)
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(10 * time.Millisecond)

	if err := c.SetResponse("src_01", "text", []byte("response")); err != nil {
		t.Fatalf("set: %v", err)
	}
	time.Sleep(30 * time.Millisecond)
	if _, ok := c.GetResponse("src_01", "text"); ok {
		t.Error("expired entry should miss")
	}
}

func TestMemoryCache_DefaultTTL(t *testing.T) {
	c := NewMemoryCache(0)
	if c.ttl != defaultTTL {
		t.Errorf("non-positive ttl should fall back to the default, got %v", c.ttl)
	}
}

func TestMemoryCache_Clear(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	_ = c.SetResponse("src_01", "a", []byte("1"))
	_ = c.SetResponse("src_02", "b", []byte("2"))

	if err := c.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok := c.GetResponse("src_01", "a"); ok {
		t.Error("clear should remove all entries")
	}
}
