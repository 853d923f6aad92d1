package genai

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"
)

const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// Selectors locate the chat widgets of a web chat UI.
type Selectors struct {
	URL      string // chat page
	Input    string // prompt text area
	Submit   string // send button
	Response string // answer blocks, the last one is read
	Loading  string // present while the answer is streaming
}

// GeminiSelectors returns the selectors for gemini.google.com.
func GeminiSelectors() Selectors {
	return Selectors{
		URL:      "https://gemini.google.com",
		Input:    ".ql-editor",
		Submit:   ".send-button",
		Response: ".response-content",
		Loading:  ".loading-indicator",
	}
}

// BrowserConfig holds configuration for the browser generator.
type BrowserConfig struct {
	ExecPath   string // Chromium executable
	ProfileDir string // user data directory, keeps the signed-in session
	Selectors  Selectors
	Logger     zerolog.Logger
}

// Browser generates text by typing the prompt into the Gemini web UI.
// Chromium locks its profile directory, so calls are serialized; a caller
// waiting for its turn gives up when its context ends.
type Browser struct {
	cfg  BrowserConfig
	slot chan struct{}
}

// NewBrowser returns a headless browser generator.
func NewBrowser(cfg BrowserConfig) (*Browser, error) {
	if cfg.ExecPath == "" {
		return nil, fmt.Errorf("browser executable path is required")
	}
	if cfg.ProfileDir == "" {
		return nil, fmt.Errorf("browser profile directory is required")
	}
	if cfg.Selectors.URL == "" {
		cfg.Selectors = GeminiSelectors()
	}
	cfg.Logger = cfg.Logger.With().Str("component", "browser").Logger()
	return &Browser{cfg: cfg, slot: make(chan struct{}, 1)}, nil
}

func (b *Browser) acquire(ctx context.Context) error {
	select {
	case b.slot <- struct{}{}:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait for browser: %w", ctx.Err())
	}
}

func (b *Browser) release() { <-b.slot }

func (b *Browser) allocatorOptions(headless bool) []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(b.cfg.ExecPath),
		chromedp.UserDataDir(b.cfg.ProfileDir),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("exclude-switches", "enable-automation"),
		chromedp.UserAgent(userAgent),
	)
	if headless {
		return append(opts, chromedp.Headless)
	}
	return append(opts, chromedp.Flag("headless", false))
}

// newContext starts a Chromium instance. The caller must call cancel.
func (b *Browser) newContext(parent context.Context, headless bool) (context.Context, context.CancelFunc, error) {
	if err := os.MkdirAll(b.cfg.ProfileDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create profile dir: %w", err)
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(parent, b.allocatorOptions(headless)...)
	taskCtx, taskCancel := chromedp.NewContext(allocCtx)
	return taskCtx, func() {
		taskCancel()
		allocCancel()
	}, nil
}

// Login opens a visible window on the chat page so the operator can sign in.
// It returns when ctx is cancelled; the session stays in the profile directory.
func (b *Browser) Login(ctx context.Context) error {
	if err := b.acquire(ctx); err != nil {
		return err
	}
	defer b.release()

	taskCtx, cancel, err := b.newContext(ctx, false)
	if err != nil {
		return err
	}
	defer cancel()

	if err := chromedp.Run(taskCtx, chromedp.Navigate(b.cfg.Selectors.URL)); err != nil {
		return fmt.Errorf("navigate to login page: %w", err)
	}

	b.cfg.Logger.Info().Str("url", b.cfg.Selectors.URL).Msg("🌐 Browser opened. Sign in, then press Ctrl+C.")
	<-ctx.Done()
	b.cfg.Logger.Info().Str("profile", b.cfg.ProfileDir).Msg("login session saved")
	return nil
}

// Generate types prompt into the chat page and returns the last answer block.
func (b *Browser) Generate(ctx context.Context, prompt string) (string, error) {
	if err := b.acquire(ctx); err != nil {
		return "", err
	}
	defer b.release()

	taskCtx, cancel, err := b.newContext(ctx, true)
	if err != nil {
		return "", err
	}
	defer cancel()

	sel := b.cfg.Selectors
	err = chromedp.Run(taskCtx,
		chromedp.Navigate(sel.URL),
		chromedp.WaitReady("body"),
		chromedp.WaitVisible(sel.Input, chromedp.ByQuery),
		chromedp.Click(sel.Input, chromedp.ByQuery),
		chromedp.SendKeys(sel.Input, prompt, chromedp.ByQuery),
		chromedp.Click(sel.Submit, chromedp.ByQuery),
		chromedp.WaitVisible(sel.Response, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("send prompt: %w", err)
	}

	if err := b.waitIdle(taskCtx, sel.Loading); err != nil {
		return "", err
	}

	var response string
	err = chromedp.Run(taskCtx, chromedp.Evaluate(lastTextScript(sel.Response), &response))
	if err != nil {
		return "", fmt.Errorf("extract response: %w", err)
	}

	response = strings.TrimSpace(response)
	if response == "" {
		return "", ErrEmptyResponse
	}
	return response, nil
}

// waitIdle polls until the loading indicator is gone or ctx ends.
func (b *Browser) waitIdle(ctx context.Context, loading string) error {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	script := fmt.Sprintf(`document.querySelector(%s) !== null`, strconv.Quote(loading))
	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("wait for response: %w", ctx.Err())
		case <-ticker.C:
		}

		var busy bool
		if err := chromedp.Run(ctx, chromedp.Evaluate(script, &busy)); err != nil {
			return fmt.Errorf("poll loading indicator: %w", err)
		}
		if !busy {
			return nil
		}
	}
}

func lastTextScript(selector string) string {
	return fmt.Sprintf(`(function() {
	var elements = document.querySelectorAll(%s);
	if (elements.length === 0) return '';
	var last = elements[elements.length - 1];
	return last.innerText || last.textContent || '';
})()`, strconv.Quote(selector))
}
