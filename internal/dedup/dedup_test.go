package dedup

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestMemory_SeenTwice(t *testing.T) {
	m := NewMemory(time.Minute)
	ctx := context.Background()

	seen, err := m.Seen(ctx, "A1")
	if err != nil || seen {
		t.Fatalf("first delivery: seen=%v err=%v", seen, err)
	}
	seen, _ = m.Seen(ctx, "A1")
	if !seen {
		t.Fatal("redelivery should be reported as seen")
	}
	seen, _ = m.Seen(ctx, "B2")
	if seen {
		t.Fatal("different id should not be seen")
	}
}

func TestMemory_Expires(t *testing.T) {
	now := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	m := NewMemory(time.Minute)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	m.Seen(ctx, "A1")
	now = now.Add(30 * time.Second)
	if seen, _ := m.Seen(ctx, "A1"); !seen {
		t.Fatal("expected seen within ttl")
	}

	now = now.Add(2 * time.Minute)
	if seen, _ := m.Seen(ctx, "A1"); seen {
		t.Fatal("expected id to be forgotten after ttl")
	}
}

func TestMemory_Sweep(t *testing.T) {
	now := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	m := NewMemory(time.Minute)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		m.Seen(ctx, fmt.Sprintf("id-%d", i))
	}
	if m.Len() != 5 {
		t.Fatalf("expected 5 entries, got %d", m.Len())
	}

	now = now.Add(5 * time.Minute)
	m.Seen(ctx, "fresh")
	if m.Len() != 1 {
		t.Fatalf("expected expired entries swept, got %d", m.Len())
	}
}

func TestMemory_Concurrent(t *testing.T) {
	m := NewMemory(time.Minute)
	var firsts atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if seen, _ := m.Seen(context.Background(), "same"); !seen {
				firsts.Add(1)
			}
		}()
	}
	wg.Wait()
	if firsts.Load() != 1 {
		t.Fatalf("expected exactly one first delivery, got %d", firsts.Load())
	}
}

func TestNewMemory_DefaultTTL(t *testing.T) {
	if m := NewMemory(0); m.ttl != DefaultTTL {
		t.Fatalf("expected default ttl, got %v", m.ttl)
	}
}

func TestNewRedis_InvalidURL(t *testing.T) {
	if _, err := NewRedis(context.Background(), "not a url", time.Minute); err == nil {
		t.Fatal("expected error for invalid url")
	}
}

func TestKey(t *testing.T) {
	if got := Key("3EB0"); got != "skara:msg:3EB0" {
		t.Fatalf("unexpected key %q", got)
	}
}
