package cache

import (
	"testing"
	"time"
)

func TestStoreSetGet(t *testing.T) {
	s := NewStore(time.Minute)
	s.Set("premier-league", "<html/>")

	got, ok := s.Get("premier-league")
	if !ok || got != "<html/>" {
		t.Fatalf("Get = %v, %v", got, ok)
	}
	if _, ok := s.Get("missing"); ok {
		t.Fatal("missing key must not hit")
	}
}

func TestStoreExpiry(t *testing.T) {
	s := NewStore(time.Minute)
	current := time.Unix(1000, 0)
	s.now = func() time.Time { return current }

	s.Set("k", 1)
	current = current.Add(2 * time.Minute)
	if _, ok := s.Get("k"); ok {
		t.Fatal("expired entry must not hit")
	}
	if s.Len() != 0 {
		t.Fatalf("expired entry not evicted, len = %d", s.Len())
	}
}

func TestStoreZeroTTLNeverExpires(t *testing.T) {
	s := NewStore(0)
	current := time.Unix(1000, 0)
	s.now = func() time.Time { return current }

	s.Set("k", 1)
	current = current.Add(24 * time.Hour)
	if _, ok := s.Get("k"); !ok {
		t.Fatal("zero-ttl entry expired")
	}
}

func TestStoreEmptyKeyIgnored(t *testing.T) {
	s := NewStore(time.Minute)
	s.Set("", 1)
	if s.Len() != 0 {
		t.Fatal("empty key stored")
	}
}
