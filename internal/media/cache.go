package media

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/roach88/framescript/internal/audioplan"
	"github.com/roach88/framescript/internal/frame"
)

// DefaultPrefetchLimit bounds concurrent probes during Prefetch.
const DefaultPrefetchLimit = 4

// Cache remembers each source's length in project frames.
//
// Every distinct (kind, path) is probed at most once per Cache, including
// when several goroutines ask at the same moment. Failures are cached as 0
// too: a broken asset is reported once, not on every frame. A lookup whose
// context was cancelled is not cached.
type Cache struct {
	prober   Prober
	settings frame.Settings
	logger   *slog.Logger

	mu     sync.RWMutex
	frames map[string]int
	group  singleflight.Group
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithCacheLogger sets the logger used for degraded lookups.
func WithCacheLogger(logger *slog.Logger) CacheOption {
	return func(c *Cache) {
		c.logger = logger
	}
}

// NewCache creates a cache converting durations with settings.FPS.
func NewCache(prober Prober, settings frame.Settings, opts ...CacheOption) *Cache {
	c := &Cache{
		prober:   prober,
		settings: settings,
		logger:   slog.Default(),
		frames:   make(map[string]int),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func cacheKey(src audioplan.Source) string {
	return string(src.Kind) + "\x00" + src.Path
}

// Frames returns the length of src in project frames, 0 when unknown.
func (c *Cache) Frames(ctx context.Context, src audioplan.Source) int {
	key := cacheKey(src)
	c.mu.RLock()
	n, ok := c.frames[key]
	c.mu.RUnlock()
	if ok {
		return n
	}

	v, _, _ := c.group.Do(key, func() (any, error) {
		c.mu.RLock()
		n, ok := c.frames[key]
		c.mu.RUnlock()
		if ok {
			return n, nil
		}

		n = c.lookup(ctx, src)
		if ctx.Err() != nil {
			return n, nil
		}
		c.mu.Lock()
		c.frames[key] = n
		c.mu.Unlock()
		return n, nil
	})
	return v.(int)
}

func (c *Cache) lookup(ctx context.Context, src audioplan.Source) int {
	if c.prober == nil {
		c.logger.Warn("media: no metadata source configured", "kind", src.Kind, "path", src.Path)
		return 0
	}
	meta, err := c.prober.Probe(ctx, src)
	if err != nil {
		c.logger.Error("media: failed to fetch metadata", "kind", src.Kind, "path", src.Path, "error", err)
		return 0
	}
	if err := validate(src.Kind, meta); err != nil {
		c.logger.Warn("media: ignoring metadata", "kind", src.Kind, "path", src.Path,
			"duration_ms", meta.DurationMs, "error", err)
		return 0
	}
	return max(0, c.settings.FramesFromMillis(max(0, meta.DurationMs)))
}

// Len returns the number of cached sources.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.frames)
}

// Prefetch probes every source concurrently, at most limit at a time
// (DefaultPrefetchLimit when limit <= 0). It returns early only when ctx
// is cancelled.
func (c *Cache) Prefetch(ctx context.Context, sources []audioplan.Source, limit int) error {
	if limit <= 0 {
		limit = DefaultPrefetchLimit
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, src := range sources {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			c.Frames(gctx, src)
			return nil
		})
	}
	return g.Wait()
}
