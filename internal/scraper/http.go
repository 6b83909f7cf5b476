package scraper

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"github.com/zoria/nautiljon-planner/internal/logger"
)

// HTTPFetcher fetches the planning page with a plain HTTP request. It only
// works when the table is server-rendered, but needs no browser.
type HTTPFetcher struct {
	collector *colly.Collector
	selector  string
	log       *logger.Logger
}

// NewHTTPFetcher creates an HTTPFetcher. A nil transport uses the default one.
func NewHTTPFetcher(userAgent string, transport http.RoundTripper) *HTTPFetcher {
	if userAgent == "" {
		userAgent = UserAgent
	}

	c := colly.NewCollector(
		colly.UserAgent(userAgent),
		colly.AllowURLRevisit(),
	)
	if transport != nil {
		c.WithTransport(transport)
	}

	return &HTTPFetcher{
		collector: c,
		selector:  TableSelector,
	}
}

// WithLogger sets the logger used for fetch diagnostics
func (f *HTTPFetcher) WithLogger(l *logger.Logger) *HTTPFetcher {
	f.log = l
	return f
}

// WithSelector overrides the table container selector
func (f *HTTPFetcher) WithSelector(selector string) *HTTPFetcher {
	if selector != "" {
		f.selector = selector
	}
	return f
}

// Fetch requests url and returns the outer HTML of the planning table body.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string, timeout time.Duration) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	c := f.collector.Clone()
	c.SetRequestTimeout(timeout)
	c.Context = ctx

	var (
		markup   string
		found    bool
		fetchErr error
	)

	c.OnHTML(f.selector, func(e *colly.HTMLElement) {
		if found {
			return
		}
		html, err := goquery.OuterHtml(e.DOM)
		if err != nil {
			fetchErr = fmt.Errorf("rendering planning table: %w", err)
			return
		}
		markup = html
		found = true
	})

	c.OnError(func(r *colly.Response, err error) {
		status := 0
		if r != nil {
			status = r.StatusCode
		}
		f.logger().Error("Planning request failed", logger.Fields{
			"url":    url,
			"status": status,
		}, err)
		fetchErr = classifyFetchError(err, status, timeout, f.selector)
	})

	if err := c.Visit(url); err != nil && fetchErr == nil {
		fetchErr = classifyFetchError(err, 0, timeout, f.selector)
	}
	c.Wait()

	if fetchErr != nil {
		return "", fetchErr
	}
	if !found {
		return "", tableNotFound(f.selector, timeout, nil)
	}
	return markup, nil
}

func (f *HTTPFetcher) logger() *logger.Logger {
	if f.log != nil {
		return f.log
	}
	return logger.Default()
}

// classifyFetchError maps timeouts to ErrTableNotFound and wraps everything else.
func classifyFetchError(err error, status int, timeout time.Duration, selector string) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return tableNotFound(selector, timeout, err)
	}
	if status != 0 {
		return fmt.Errorf("fetching planning page: unexpected status code %d: %w", status, err)
	}
	return fmt.Errorf("fetching planning page: %w", err)
}
