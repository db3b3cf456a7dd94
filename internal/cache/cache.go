package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dvcrn/weasel/internal/events"
	"github.com/dvcrn/weasel/internal/openpaths"
	"github.com/rs/zerolog"
)

// ErrRefreshInProgress is returned by RefreshNow while another refresh runs.
var ErrRefreshInProgress = errors.New("refresh already in progress")

// Fetcher retrieves the most recent point from upstream.
type Fetcher interface {
	LastPoint(ctx context.Context) (openpaths.Point, error)
}

// LastPointCache holds the most recently fetched point. Readers never block
// on the network: Get returns whatever the last successful refresh stored.
type LastPointCache struct {
	fetcher Fetcher
	cfg     Config
	logger  zerolog.Logger
	bus     events.Publisher

	point    atomic.Pointer[openpaths.Point]
	inFlight atomic.Bool

	mu      sync.Mutex
	started bool
	closed  bool
	timer   *time.Timer
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New creates a cache. bus may be nil.
func New(fetcher Fetcher, cfg Config, logger zerolog.Logger, bus events.Publisher) *LastPointCache {
	if cfg.Policy == "" {
		cfg.Policy = PolicyPeriodicTimer
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	return &LastPointCache{
		fetcher: fetcher,
		cfg:     cfg,
		logger:  logger,
		bus:     bus,
	}
}

// Get returns the cached point, or false if no refresh has succeeded yet.
func (c *LastPointCache) Get() (openpaths.Point, bool) {
	p := c.point.Load()
	if p == nil {
		return openpaths.Point{}, false
	}
	return *p, true
}

// RefreshNow fetches the latest point and swaps it in. On failure the cached
// point is left as it was.
func (c *LastPointCache) RefreshNow(ctx context.Context) error {
	if !c.inFlight.CompareAndSwap(false, true) {
		return ErrRefreshInProgress
	}
	defer c.inFlight.Store(false)

	p, err := c.fetcher.LastPoint(ctx)
	if err != nil {
		return err
	}
	c.point.Store(&p)

	if c.bus != nil {
		c.bus.Publish(events.TopicPointUpdated, events.PointUpdated{Point: p})
	}
	return nil
}

// Config returns the effective configuration.
func (c *LastPointCache) Config() Config {
	return c.cfg
}

// Start launches the refresh task for the configured policy. Periodic
// policies refresh immediately and then every Interval. It does not block.
func (c *LastPointCache) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started || c.closed {
		return
	}
	c.started = true

	ctx, c.cancel = context.WithCancel(ctx)

	switch c.cfg.Policy {
	case PolicyPeriodicTimer:
		c.wg.Add(1)
		go c.fire(ctx)
	case PolicyPeriodicLoop:
		c.wg.Add(1)
		go c.loop(ctx)
	}

	c.logger.Info().
		Str("policy", string(c.cfg.Policy)).
		Dur("interval", c.cfg.Interval).
		Msg("Started point cache")
}

// Close stops the refresh task and waits for an in-flight refresh to return.
func (c *LastPointCache) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	if c.timer != nil && c.timer.Stop() {
		c.wg.Done()
	}
	if c.cancel != nil {
		c.cancel()
	}
	c.mu.Unlock()

	c.wg.Wait()
}

// fire runs one refresh and re-arms the one-shot timer.
func (c *LastPointCache) fire(ctx context.Context) {
	defer c.wg.Done()
	c.refresh(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || ctx.Err() != nil {
		return
	}
	c.wg.Add(1)
	c.timer = time.AfterFunc(c.cfg.Interval, func() { c.fire(ctx) })
}

func (c *LastPointCache) loop(ctx context.Context) {
	defer c.wg.Done()
	for {
		c.refresh(ctx)

		select {
		case <-time.After(c.cfg.Interval):
		case <-ctx.Done():
			return
		}
	}
}

// refresh runs RefreshNow for the background task. Errors are logged and the
// schedule continues.
func (c *LastPointCache) refresh(ctx context.Context) {
	start := time.Now()
	err := c.RefreshNow(ctx)
	switch {
	case err == nil:
		p, _ := c.Get()
		c.logger.Debug().
			Int64("t", p.T).
			Dur("duration", time.Since(start)).
			Msg("Refreshed last point")
	case errors.Is(err, ErrRefreshInProgress):
		c.logger.Debug().Msg("Skipping refresh, another is in progress")
	case ctx.Err() != nil:
		c.logger.Debug().Err(err).Msg("Refresh cancelled")
	default:
		c.logger.Error().Err(err).Msg("Failed to refresh last point, serving cached value")
	}
}
