package ratelimit

import (
	"testing"
	"time"
)

func TestAllowRefills(t *testing.T) {
	l := New(2, time.Second)
	now := time.Unix(0, 0)
	l.now = func() time.Time { return now }

	if !l.Allow("a") || !l.Allow("a") {
		t.Fatal("first two requests should pass")
	}
	if l.Allow("a") {
		t.Error("third request should be limited")
	}
	if !l.Allow("b") {
		t.Error("keys must not share buckets")
	}
	now = now.Add(500 * time.Millisecond)
	if !l.Allow("a") {
		t.Error("bucket should have refilled one token")
	}
	if l.Allow("a") {
		t.Error("only one token should have refilled")
	}
}

func TestCleanup(t *testing.T) {
	l := New(5, time.Minute)
	now := time.Unix(0, 0)
	l.now = func() time.Time { return now }
	l.Allow("old")
	now = now.Add(3 * time.Minute)
	l.Allow("fresh")
	if removed := l.Cleanup(); removed != 1 {
		t.Errorf("Cleanup() removed %d", removed)
	}
	if _, ok := l.entries["fresh"]; !ok {
		t.Error("fresh entry removed")
	}
}
