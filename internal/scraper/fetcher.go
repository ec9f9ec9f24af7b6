package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// ErrNavigationTimeout indicates a navigation exceeded the configured
// timeout before the page finished loading.
var ErrNavigationTimeout = errors.New("navigation timeout")

// FetcherConfig controls the behavior of the headless fetcher.
type FetcherConfig struct {
	UserAgent         string
	NavigationTimeout time.Duration
}

// ChromedpFetcher implements Fetcher using headless Chrome via
// chromedp. One browser process is launched at construction and reused
// for every navigation; each Fetch runs in its own tab.
type ChromedpFetcher struct {
	cfg             FetcherConfig
	allocatorCancel context.CancelFunc
	browserCtx      context.Context
	browserCancel   context.CancelFunc
	logger          *zap.Logger
}

// NewChromedpFetcher launches the browser and returns a ready fetcher.
func NewChromedpFetcher(cfg FetcherConfig, logger *zap.Logger) (*ChromedpFetcher, error) {
	if cfg.NavigationTimeout <= 0 {
		cfg.NavigationTimeout = 15 * time.Second
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.UserAgent(cfg.UserAgent),
	)
	allocatorCtx, allocatorCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocatorCtx)
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocatorCancel()
		return nil, fmt.Errorf("chromedp warmup: %w", err)
	}

	return &ChromedpFetcher{
		cfg:             cfg,
		allocatorCancel: allocatorCancel,
		browserCtx:      browserCtx,
		browserCancel:   browserCancel,
		logger:          logger,
	}, nil
}

// Close tears down the browser and allocator contexts.
func (f *ChromedpFetcher) Close() {
	if f == nil {
		return
	}
	f.browserCancel()
	f.allocatorCancel()
}

// Fetch navigates to rawURL, waits for the page load, and returns the
// rendered DOM plus the document response status and headers. Returns
// ErrNavigationTimeout when the load does not complete in time.
func (f *ChromedpFetcher) Fetch(ctx context.Context, rawURL string) (FetchResult, error) {
	tabCtx, cancelTab := chromedp.NewContext(f.browserCtx)
	defer cancelTab()

	taskCtx, cancelTask := context.WithTimeout(tabCtx, f.cfg.NavigationTimeout)
	defer cancelTask()

	stopForward := forwardCancel(ctx, cancelTask)
	defer stopForward()

	meta := newResponseMeta()
	chromedp.ListenTarget(tabCtx, meta.captureEvent)

	f.logger.Debug("navigating", zap.String("url", rawURL))
	start := time.Now()
	var html string
	tasks := chromedp.Tasks{
		network.Enable(),
		emulation.SetUserAgentOverride(f.cfg.UserAgent),
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	}
	if err := chromedp.Run(taskCtx, tasks); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return FetchResult{}, fmt.Errorf("%w: %s", ErrNavigationTimeout, rawURL)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return FetchResult{}, fmt.Errorf("fetch canceled: %w", ctxErr)
		}
		return FetchResult{}, fmt.Errorf("chromedp run: %w", err)
	}

	status, headers := meta.snapshot()
	return FetchResult{
		URL:        rawURL,
		StatusCode: status,
		Headers:    headers,
		Body:       html,
		Duration:   time.Since(start),
	}, nil
}

// responseMeta captures the status and headers of the main document
// response from CDP network events.
type responseMeta struct {
	mu      sync.Mutex
	once    bool
	status  int
	headers http.Header
}

func newResponseMeta() *responseMeta {
	return &responseMeta{headers: http.Header{}}
}

func (m *responseMeta) captureEvent(ev any) {
	resp, ok := ev.(*network.EventResponseReceived)
	if !ok || resp.Type != network.ResourceTypeDocument || resp.Response == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.once {
		return
	}
	m.once = true
	m.status = int(resp.Response.Status)
	for key, value := range resp.Response.Headers {
		m.headers.Add(key, fmt.Sprint(value))
	}
}

func (m *responseMeta) snapshot() (int, http.Header) {
	m.mu.Lock()
	defer m.mu.Unlock()
	headers := make(http.Header, len(m.headers))
	for k, values := range m.headers {
		for _, v := range values {
			headers.Add(k, v)
		}
	}
	return m.status, headers
}

func forwardCancel(parent context.Context, cancel context.CancelFunc) func() {
	if parent == nil {
		return func() {}
	}
	done := make(chan struct{})
	go func() {
		select {
		case <-parent.Done():
			cancel()
		case <-done:
		}
	}()
	return func() { close(done) }
}
