package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/zoria/nautiljon-planner/internal/logger"
)

const consentClickTimeout = 1200 * time.Millisecond

// consentButtons are XPath expressions for the cookie consent popup, tried in order.
var consentButtons = []string{
	`//button[contains(., "Continuer sans accepter")]`,
	`//button[contains(., "Tout refuser") or contains(., "Refuser tout")]`,
	`//button[contains(., "Continuer") or contains(., "Fermer") or contains(., "Accepter et fermer")]`,
	`//a[contains(., "Continuer sans accepter") or contains(., "Tout refuser") or contains(., "Fermer")]`,
}

// BrowserFetcher renders the planning page in Chrome through the DevTools protocol.
type BrowserFetcher struct {
	Headless  bool
	UserAgent string
	Selector  string
	Debug     bool
	Log       *logger.Logger
}

// NewBrowserFetcher creates a BrowserFetcher with the site's defaults
func NewBrowserFetcher(headless bool) *BrowserFetcher {
	return &BrowserFetcher{
		Headless:  headless,
		UserAgent: UserAgent,
		Selector:  TableSelector,
	}
}

// Fetch opens url, dismisses the consent popup if one shows up, waits for the
// planning table and returns its outer HTML.
func (f *BrowserFetcher) Fetch(ctx context.Context, url string, timeout time.Duration) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", f.Headless),
		chromedp.NoSandbox,
		chromedp.UserAgent(f.UserAgent),
		chromedp.WindowSize(1400, 900),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	var ctxOpts []chromedp.ContextOption
	if f.Debug {
		ctxOpts = append(ctxOpts, chromedp.WithDebugf(func(format string, args ...interface{}) {
			f.log().Debug(fmt.Sprintf(format, args...), nil)
		}))
	}
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, ctxOpts...)
	defer cancelBrowser()

	// Start the browser outside the page timeout so a slow launch is not
	// reported as a missing table.
	if err := chromedp.Run(browserCtx); err != nil {
		return "", fmt.Errorf("starting browser: %w", err)
	}

	f.log().Info("Loading planning page", logger.Fields{
		"url":      url,
		"headless": f.Headless,
	})

	pageCtx, cancelPage := context.WithTimeout(browserCtx, timeout)
	defer cancelPage()

	if err := chromedp.Run(pageCtx, chromedp.Navigate(url)); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", tableNotFound(f.Selector, timeout, err)
		}
		return "", fmt.Errorf("loading %s: %w", url, err)
	}

	f.dismissConsent(pageCtx)

	var markup string
	err := chromedp.Run(pageCtx,
		chromedp.WaitReady(f.Selector, chromedp.ByQuery),
		chromedp.OuterHTML(f.Selector, &markup, chromedp.ByQuery),
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", tableNotFound(f.Selector, timeout, err)
		}
		return "", fmt.Errorf("reading planning table: %w", err)
	}

	f.log().Info("Planning table detected", logger.Fields{"bytes": len(markup)})
	return markup, nil
}

// dismissConsent tries each consent button briefly. Failure is expected when
// no popup is shown and never fails the fetch.
func (f *BrowserFetcher) dismissConsent(ctx context.Context) {
	for _, xpath := range consentButtons {
		clickCtx, cancel := context.WithTimeout(ctx, consentClickTimeout)
		err := chromedp.Run(clickCtx, chromedp.Click(xpath, chromedp.BySearch, chromedp.NodeVisible))
		cancel()
		if err == nil {
			f.log().Info("Consent popup dismissed", logger.Fields{"button": xpath})
			return
		}
	}
	f.log().Debug("No consent popup detected", nil)
}

func (f *BrowserFetcher) log() *logger.Logger {
	if f.Log != nil {
		return f.Log
	}
	return logger.Default()
}
