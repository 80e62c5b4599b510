package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// MinContentLength is the shortest extracted text accepted from a plain HTTP
// fetch. Anything shorter is most likely a client-rendered page shell.
const MinContentLength = 500

// ShouldUseBrowser reports whether extracted text is too short to be a
// complete posting.
func ShouldUseBrowser(extractedText string) bool {
	return len(strings.TrimSpace(extractedText)) < MinContentLength
}

// BrowserOptions configures headless rendering.
type BrowserOptions struct {
	// Timeout bounds the whole render including browser startup.
	Timeout time.Duration
	// Settle is how long to wait for client-side rendering to produce
	// MinContentLength characters of body text before taking the page as is.
	Settle time.Duration
	// ExecPath overrides Chrome discovery.
	ExecPath string
	Logger   *slog.Logger
}

const (
	defaultSettle = 5 * time.Second
	pollInterval  = 250 * time.Millisecond
)

// dismissConsent clicks the first visible cookie consent button, if any.
const dismissConsent = `(() => {
	const b = document.querySelector('button[id*="accept" i], button[class*="accept" i]');
	if (b && b.offsetParent !== null) { b.click(); return true; }
	return false;
})()`

// WithBrowser renders url in headless Chrome and returns the resulting HTML.
// Chrome or Chromium must be installed.
func WithBrowser(ctx context.Context, url string, opts BrowserOptions) (string, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	settle := opts.Settle
	if settle <= 0 {
		settle = defaultSettle
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(DefaultUserAgent),
	)
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	start := time.Now()
	var (
		dismissed bool
		html      string
	)
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Evaluate(dismissConsent, &dismissed),
		chromedp.ActionFunc(func(ctx context.Context) error {
			return waitForText(ctx, settle)
		}),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("browser rendering failed: %w", err)
	}

	logger.Debug("rendered page in browser", "url", url, "bytes", len(html),
		"consent_dismissed", dismissed, "elapsed", time.Since(start).Round(time.Millisecond))
	return html, nil
}

// waitForText polls the body text length until it reaches MinContentLength
// or settle elapses. Running out of time is not an error; the caller gets
// whatever rendered.
func waitForText(ctx context.Context, settle time.Duration) error {
	deadline := time.Now().Add(settle)
	for {
		var n int
		if err := chromedp.Evaluate(`document.body ? document.body.innerText.trim().length : 0`, &n).Do(ctx); err != nil {
			return err
		}
		if n >= MinContentLength || time.Now().After(deadline) {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}
