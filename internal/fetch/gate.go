package fetch

import (
	"context"
	"math/rand/v2"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Autothrottle defaults
const (
	DefaultStartDelay        = 1 * time.Second
	DefaultMaxDelay          = 10 * time.Second
	DefaultTargetConcurrency = 2.0
	defaultCoolOff           = 5 * time.Second
)

// GateConfig configures per-host politeness.
type GateConfig struct {
	// MinDelay is the enforced minimum spacing between requests to one host.
	MinDelay time.Duration
	// Randomize adds up to half of the current delay as jitter on top of it.
	// Jitter only ever lengthens the spacing.
	Randomize bool

	AutoThrottle      bool
	StartDelay        time.Duration
	MaxDelay          time.Duration
	TargetConcurrency float64
}

func (c GateConfig) withDefaults() GateConfig {
	if c.MaxDelay <= 0 {
		c.MaxDelay = DefaultMaxDelay
	}
	if c.MaxDelay < c.MinDelay {
		c.MaxDelay = c.MinDelay
	}
	if c.TargetConcurrency <= 0 {
		c.TargetConcurrency = DefaultTargetConcurrency
	}
	if c.AutoThrottle && c.StartDelay <= 0 {
		c.StartDelay = min(max(DefaultStartDelay, c.MinDelay), c.MaxDelay)
	}
	return c
}

// hostGate spaces requests to a single host. The delay adapts to observed latency
// (additive toward latency/target) and backs off multiplicatively on throttling.
// next is the earliest time the following caller may start; lim is the hard
// floor of one request per delay.
type hostGate struct {
	mu        sync.Mutex
	lim       *rate.Limiter
	delay     time.Duration
	next      time.Time
	coolUntil time.Time
}

func newHostGate(cfg GateConfig) *hostGate {
	delay := cfg.MinDelay
	if cfg.AutoThrottle && cfg.StartDelay > delay {
		delay = cfg.StartDelay
	}
	return &hostGate{
		lim:   rate.NewLimiter(limitFor(delay), 1),
		delay: delay,
	}
}

func limitFor(d time.Duration) rate.Limit {
	if d <= 0 {
		return rate.Inf
	}
	return rate.Every(d)
}

func (g *hostGate) wait(ctx context.Context, randomize bool) error {
	g.mu.Lock()
	now := time.Now()
	start := now
	if g.next.After(start) {
		start = g.next
	}
	if g.coolUntil.After(start) {
		start = g.coolUntil
	}
	spacing := g.delay
	if randomize && spacing > 0 {
		spacing += time.Duration(rand.Int64N(int64(spacing)/2 + 1))
	}
	// the slot is claimed before sleeping so concurrent callers queue behind it
	g.next = start.Add(spacing)
	g.mu.Unlock()

	if d := start.Sub(now); d > 0 {
		if err := sleep(ctx, d); err != nil {
			return err
		}
	}
	return g.lim.Wait(ctx)
}

func (g *hostGate) setDelay(d time.Duration) {
	if d == g.delay {
		return
	}
	g.delay = d
	g.lim.SetLimit(limitFor(d))
}

// observe feeds one response back into the gate.
func (g *hostGate) observe(cfg GateConfig, latency time.Duration, status int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if status == http.StatusTooManyRequests || status == http.StatusServiceUnavailable {
		next := g.delay * 2
		if next <= 0 {
			next = cfg.StartDelay
		}
		g.setDelay(clampDelay(next, cfg))
		g.coolUntil = time.Now().Add(defaultCoolOff)
		return
	}
	if !cfg.AutoThrottle {
		return
	}

	target := time.Duration(float64(latency) / cfg.TargetConcurrency)
	next := max(target, (g.delay+target)/2)
	// non-200 responses are usually fast errors; never let them shrink the delay
	if status != http.StatusOK && next < g.delay {
		return
	}
	g.setDelay(clampDelay(next, cfg))
}

func clampDelay(d time.Duration, cfg GateConfig) time.Duration {
	return min(max(d, cfg.MinDelay), cfg.MaxDelay)
}

// Politeness hands out one gate per host.
type Politeness struct {
	cfg   GateConfig
	mu    sync.Mutex
	gates map[string]*hostGate
}

// NewPoliteness creates a per-host gate registry.
func NewPoliteness(cfg GateConfig) *Politeness {
	return &Politeness{
		cfg:   cfg.withDefaults(),
		gates: make(map[string]*hostGate),
	}
}

func (p *Politeness) gate(host string) *hostGate {
	p.mu.Lock()
	defer p.mu.Unlock()
	g, ok := p.gates[host]
	if !ok {
		g = newHostGate(p.cfg)
		p.gates[host] = g
	}
	return g
}

// Wait blocks until a request to host is allowed.
func (p *Politeness) Wait(ctx context.Context, host string) error {
	return p.gate(host).wait(ctx, p.cfg.Randomize)
}

// Observe records the outcome of a request to host.
func (p *Politeness) Observe(host string, latency time.Duration, status int) {
	p.gate(host).observe(p.cfg, latency, status)
}

// Delay returns the current spacing for host.
func (p *Politeness) Delay(host string) time.Duration {
	g := p.gate(host)
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.delay
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
