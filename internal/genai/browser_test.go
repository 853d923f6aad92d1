package genai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestNewBrowser_RequiresPaths(t *testing.T) {
	if _, err := NewBrowser(BrowserConfig{ProfileDir: t.TempDir()}); err == nil {
		t.Fatal("expected error without executable path")
	}
	if _, err := NewBrowser(BrowserConfig{ExecPath: "/usr/bin/chromium"}); err == nil {
		t.Fatal("expected error without profile dir")
	}
	b, err := NewBrowser(BrowserConfig{ExecPath: "/usr/bin/chromium", ProfileDir: t.TempDir()})
	if err != nil {
		t.Fatalf("NewBrowser: %v", err)
	}
	if b.cfg.Selectors != GeminiSelectors() {
		t.Fatalf("expected Gemini selectors by default, got %+v", b.cfg.Selectors)
	}
}

func TestBrowser_WaitRespectsDeadline(t *testing.T) {
	b, err := NewBrowser(BrowserConfig{
		ExecPath:   "/nonexistent/chromium",
		ProfileDir: t.TempDir(),
		Logger:     zerolog.Nop(),
	})
	if err != nil {
		t.Fatal(err)
	}
	// Another call holds the browser.
	if err := b.acquire(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer b.release()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err = b.Generate(ctx, "halo")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if took := time.Since(start); took > time.Second {
		t.Fatalf("Generate waited %v past a 100ms deadline", took)
	}

	ctx2, cancel2 := context.WithCancel(context.Background())
	cancel2()
	if err := b.Login(ctx2); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled login, got %v", err)
	}
}
