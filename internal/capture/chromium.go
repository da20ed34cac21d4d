// Package capture screenshots the rendered month page with headless
// Chromium.
package capture

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"

	appLog "github.com/bssong66/PerformanceTracker-sub000/internal/log"
)

const (
	DefaultWidth   = 1280
	DefaultHeight  = 900
	DefaultTimeout = 30 * time.Second

	// ReadySelector matches the month table once the server has rendered it.
	ReadySelector = `[data-ready="true"]`
)

// Options defines one screenshot.
type Options struct {
	// URL of the page, usually built with PageURL.
	URL string
	// OutputPath receives the PNG.
	OutputPath string

	// Width and Height are the viewport size in pixels; zero uses the
	// defaults.
	Width  int
	Height int

	Timeout time.Duration

	// Username and Password are sent as HTTP Basic credentials when set.
	Username string
	Password string

	// Ink reduces the screenshot to InkPalette before it is written.
	Ink bool
}

func (o Options) withDefaults() (Options, error) {
	if o.URL == "" {
		return o, errors.New("capture: URL is required")
	}
	u, err := url.Parse(o.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return o, fmt.Errorf("capture: URL %q must be absolute http(s)", o.URL)
	}
	if o.OutputPath == "" {
		return o, errors.New("capture: OutputPath is required")
	}
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	return o, nil
}

// PageURL returns the month page URL under base for month.
func PageURL(base string, month time.Time) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("capture: base URL: %w", err)
	}
	u = u.JoinPath("calendar")
	q := u.Query()
	q.Set("month", month.Format("2006-01"))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Month navigates to opts.URL, waits for ReadySelector and writes a full
// page PNG to opts.OutputPath.
func Month(parent context.Context, opts Options) error {
	opts, err := opts.withDefaults()
	if err != nil {
		return err
	}

	target := opts.URL
	if opts.Username != "" {
		u, _ := url.Parse(target)
		u.User = url.UserPassword(opts.Username, opts.Password)
		target = u.String()
	}

	ctx, cancel := chromedp.NewContext(parent)
	defer cancel()
	ctx, timeoutCancel := context.WithTimeout(ctx, opts.Timeout)
	defer timeoutCancel()

	var png []byte
	start := time.Now()
	err = chromedp.Run(ctx,
		chromedp.EmulateViewport(int64(opts.Width), int64(opts.Height)),
		chromedp.Navigate(target),
		chromedp.WaitVisible(ReadySelector, chromedp.ByQuery),
		chromedp.FullScreenshot(&png, 100),
	)
	if err != nil {
		return fmt.Errorf("capture: chromedp run failed: %w", err)
	}

	if opts.Ink {
		if png, err = InkPNG(png); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(opts.OutputPath), 0o755); err != nil {
		return fmt.Errorf("capture: %w", err)
	}
	if err := os.WriteFile(opts.OutputPath, png, 0o644); err != nil {
		return fmt.Errorf("capture: failed to write PNG: %w", err)
	}
	appLog.Info("month captured", "url", opts.URL, "path", opts.OutputPath,
		"bytes", len(png), "ink", opts.Ink, "elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}
