package fetch

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// ClientConfig configures a Client.
type ClientConfig struct {
	UserAgent  string
	Timeout    time.Duration
	ObeyRobots bool
	Gate       GateConfig

	// UseBrowser enables headless rendering for pages whose HTTP body has too little text.
	UseBrowser     bool
	BrowserTimeout time.Duration
}

// Client fetches pages for one scrape run: robots.txt is honored and every
// request to a host waits on that host's politeness gate.
type Client struct {
	opts       *Options
	robots     *Robots
	polite     *Politeness
	obeyRobots bool
	useBrowser bool
	browserTO  time.Duration
	logger     *slog.Logger
}

// NewClient creates a Client with a shared HTTP client.
func NewClient(cfg ClientConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.BrowserTimeout <= 0 {
		cfg.BrowserTimeout = DefaultBrowserTimeout
	}
	opts := &Options{
		Timeout:   cfg.Timeout,
		UserAgent: cfg.UserAgent,
		Headers:   map[string]string{"Accept": "text/html,application/xhtml+xml,application/json;q=0.9,*/*;q=0.8"},
		Client:    &http.Client{Timeout: cfg.Timeout},
	}
	polite := NewPoliteness(cfg.Gate)
	return &Client{
		opts:       opts,
		robots:     NewRobots(opts, polite),
		polite:     polite,
		obeyRobots: cfg.ObeyRobots,
		useBrowser: cfg.UseBrowser,
		browserTO:  cfg.BrowserTimeout,
		logger:     logger,
	}
}

// Get fetches rawURL. Errors are *Error values.
func (c *Client) Get(ctx context.Context, rawURL string) (*Result, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, &Error{URL: rawURL, Message: "invalid URL", Cause: err}
	}

	if c.obeyRobots {
		allowed, err := c.robots.Allowed(ctx, rawURL)
		if err != nil {
			return nil, &Error{URL: rawURL, Message: "robots.txt check failed", Cause: err}
		}
		if !allowed {
			return nil, &Error{URL: rawURL, Message: "skipped", Cause: ErrRobotsDisallowed}
		}
	}

	if err := c.polite.Wait(ctx, u.Host); err != nil {
		return nil, &Error{URL: rawURL, Message: "politeness wait aborted", Cause: err}
	}

	result, err := URL(ctx, rawURL, c.opts)
	if result != nil {
		c.polite.Observe(u.Host, result.Latency, result.StatusCode)
		c.logger.Debug("fetched page", "url", rawURL, "status", result.StatusCode,
			"latency", result.Latency, "next_delay", c.polite.Delay(u.Host))
	}
	return result, err
}

// GetRendered fetches rawURL and, when browser rendering is enabled and the
// HTTP body carries too little text, re-renders it in a headless browser.
func (c *Client) GetRendered(ctx context.Context, rawURL string, contentSelectors []string) (*Result, error) {
	result, err := c.Get(ctx, rawURL)
	if err != nil || !c.useBrowser {
		return result, err
	}

	text, _ := ExtractMainText(result.HTML, contentSelectors)
	if !ShouldUseBrowser(text) {
		return result, nil
	}

	c.logger.Debug("content too short, rendering in browser", "url", rawURL, "chars", len(text))
	html, err := Render(ctx, rawURL, c.browserTO, c.opts.UserAgent)
	if err != nil {
		c.logger.Warn("browser rendering failed, using HTTP content", "url", rawURL, "error", err)
		return result, nil
	}
	result.HTML = html
	return result, nil
}
