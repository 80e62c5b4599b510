package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/jonathan/applykit/internal/fetch"
	"github.com/jonathan/applykit/internal/types"
)

var (
	// ErrHTTPRequestFailed is returned when the posting could not be fetched
	ErrHTTPRequestFailed = errors.New("HTTP request failed")
	// ErrContentExtractionFailed is returned when no text could be pulled from the page
	ErrContentExtractionFailed = errors.New("content extraction failed")
)

// DefaultBrowserTimeout bounds the headless browser fallback.
const DefaultBrowserTimeout = 45 * time.Second

// Options controls URL ingestion.
type Options struct {
	// UseBrowser re-renders the page in headless Chrome when the plain HTTP
	// fetch yields too little text (single-page job boards).
	UseBrowser     bool
	BrowserTimeout time.Duration
	Fetch          *fetch.Options
	// PublicOnly refuses URLs that resolve to loopback, private or
	// link-local addresses, for both the HTTP fetch and the browser.
	PublicOnly bool
	Logger     *slog.Logger
}

// FromURL fetches a job posting, extracts its main text with
// platform-specific selectors and normalizes it.
func FromURL(ctx context.Context, urlStr string, opts Options) (types.JobAd, *Source, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "ingestion", "url", urlStr)

	platform := fetch.DetectPlatform(urlStr)
	logger.Debug("detected platform", "platform", platform)

	fetchOpts := opts.Fetch
	if fetchOpts == nil {
		fetchOpts = fetch.DefaultOptions()
	}
	if opts.PublicOnly {
		guarded := *fetchOpts
		guarded.PublicOnly = true
		fetchOpts = &guarded
	}

	result, err := fetch.URL(ctx, urlStr, fetchOpts)
	if err != nil {
		return types.JobAd{}, nil, fmt.Errorf("%w: %w", ErrHTTPRequestFailed, err)
	}
	logger.Debug("fetched posting", "bytes", len(result.HTML))

	contentSelectors := fetch.PlatformContentSelectors(platform)
	noiseSelectors := fetch.PlatformNoiseSelectors(platform)

	text, err := fetch.ExtractMainText(result.HTML, contentSelectors, noiseSelectors...)
	if err != nil {
		return types.JobAd{}, nil, fmt.Errorf("%w: %w", ErrContentExtractionFailed, err)
	}

	if opts.UseBrowser && fetch.ShouldUseBrowser(text) {
		timeout := opts.BrowserTimeout
		if timeout <= 0 {
			timeout = DefaultBrowserTimeout
		}
		logger.Info("content too short, rendering with browser", "chars", len(text), "min", fetch.MinContentLength)

		var rendered string
		browserErr := checkBrowserTarget(ctx, urlStr, opts.PublicOnly)
		if browserErr == nil {
			rendered, browserErr = fetch.WithBrowser(ctx, urlStr, fetch.BrowserOptions{Timeout: timeout, Logger: logger})
		}
		switch {
		case browserErr != nil:
			logger.Warn("browser rendering failed, using HTTP content", "error", browserErr)
		default:
			if browserText, extractErr := fetch.ExtractMainText(rendered, contentSelectors, noiseSelectors...); extractErr != nil {
				logger.Warn("browser content extraction failed", "error", extractErr)
			} else {
				text = browserText
			}
		}
	}

	cleaned := CleanText(text)
	if cleaned == "" {
		return types.JobAd{}, nil, fmt.Errorf("%w: %w", ErrContentExtractionFailed, types.ErrEmptyJobAd)
	}
	logger.Debug("extracted posting text", "chars", len(cleaned))

	return types.JobAd{Text: cleaned, SourceURL: urlStr}, newSource(cleaned, urlStr, platform), nil
}

// checkBrowserTarget applies the public-only rule to the browser, which
// dials on its own.
func checkBrowserTarget(ctx context.Context, urlStr string, publicOnly bool) error {
	if !publicOnly {
		return nil
	}
	u, err := url.Parse(urlStr)
	if err != nil {
		return err
	}
	return fetch.CheckPublicHost(ctx, u.Hostname())
}
