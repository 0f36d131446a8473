package fetch

import (
	"context"
	"errors"
	"net/url"
	"sync"

	"github.com/temoto/robotstxt"
)

// ErrRobotsDisallowed is the cause of fetch errors for URLs excluded by robots.txt.
var ErrRobotsDisallowed = errors.New("disallowed by robots.txt")

// Robots caches parsed robots.txt files per host.
type Robots struct {
	opts   *Options
	polite *Politeness
	mu     sync.Mutex
	cache map[string]*robotstxt.RobotsData
}

// NewRobots creates a robots.txt checker that fetches with the given options.
// When polite is non-nil, robots.txt requests wait on the host's gate like any other.
func NewRobots(opts *Options, polite *Politeness) *Robots {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &Robots{
		opts:   opts,
		polite: polite,
		cache:  make(map[string]*robotstxt.RobotsData),
	}
}

// Allowed reports whether our user agent may fetch rawURL.
// An unreachable robots.txt allows everything; a 5xx one disallows everything.
func (r *Robots) Allowed(ctx context.Context, rawURL string) (bool, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return false, &Error{URL: rawURL, Message: "invalid URL", Cause: err}
	}

	data, err := r.load(ctx, u)
	if err != nil {
		return false, err
	}
	if data == nil {
		return true, nil
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return data.TestAgent(path, r.opts.UserAgent), nil
}

func (r *Robots) load(ctx context.Context, u *url.URL) (*robotstxt.RobotsData, error) {
	key := u.Scheme + "://" + u.Host

	r.mu.Lock()
	data, ok := r.cache[key]
	r.mu.Unlock()
	if ok {
		return data, nil
	}

	if r.polite != nil {
		if err := r.polite.Wait(ctx, u.Host); err != nil {
			return nil, err
		}
	}
	result, _ := URL(ctx, key+"/robots.txt", r.opts)
	if result != nil {
		if r.polite != nil {
			r.polite.Observe(u.Host, result.Latency, result.StatusCode)
		}
		parsed, err := robotstxt.FromStatusAndBytes(result.StatusCode, []byte(result.HTML))
		if err == nil {
			data = parsed
		}
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	r.mu.Lock()
	r.cache[key] = data
	r.mu.Unlock()
	return data, nil
}
