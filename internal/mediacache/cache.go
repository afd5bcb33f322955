package mediacache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"megacut/internal/logging"
	"megacut/internal/media/ffprobe"
)

// ErrMissingSource marks a source identifier whose media file cannot be
// found or opened. It fails the requesting scene only; sibling scenes from
// other sources are unaffected.
var ErrMissingSource = errors.New("missing source")

// Handle is an open, reusable reference to a probed source file.
type Handle struct {
	SourceID string
	Path     string
	Probe    ffprobe.Result
}

// Duration returns the probed container duration.
func (h *Handle) Duration() time.Duration {
	return h.Probe.Duration()
}

// Opener resolves and probes a source by identifier.
type Opener interface {
	Open(ctx context.Context, sourceID string) (*Handle, error)
}

type entry struct {
	once       sync.Once
	handle     *Handle
	err        error
	refs       int
	lastAccess time.Time
}

// Cache is a concurrency-safe, reference-counted media handle store.
type Cache struct {
	opener Opener
	logger *slog.Logger

	mu      sync.Mutex
	entries map[string]*entry
	cleared bool
}

// New constructs a cache around the provided opener.
func New(opener Opener, logger *slog.Logger) *Cache {
	return &Cache{
		opener:  opener,
		logger:  logging.NewComponentLogger(logger, "mediacache"),
		entries: make(map[string]*entry),
	}
}

// Acquire returns the shared handle for sourceID, opening it on first use,
// and increments its reference count. Opening happens outside the cache lock
// so concurrent acquires of other sources never wait on I/O.
func (c *Cache) Acquire(ctx context.Context, sourceID string) (*Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.cleared {
		c.mu.Unlock()
		return nil, errors.New("mediacache: cache already cleared")
	}
	e, ok := c.entries[sourceID]
	if !ok {
		e = &entry{}
		c.entries[sourceID] = e
	}
	e.refs++
	e.lastAccess = time.Now()
	c.mu.Unlock()

	e.once.Do(func() {
		handle, err := c.opener.Open(ctx, sourceID)
		if err != nil {
			e.err = fmt.Errorf("%w: %s: %v", ErrMissingSource, sourceID, err)
			return
		}
		e.handle = handle
		c.logger.Debug("opened source", logging.String(logging.FieldSource, sourceID), logging.String("path", handle.Path))
	})

	if e.err != nil {
		err := e.err
		c.mu.Lock()
		e.refs--
		// A failed open is not cached: once the last waiter leaves, the
		// entry goes so a later chunk can retry a transient failure.
		if e.refs == 0 && c.entries[sourceID] == e {
			delete(c.entries, sourceID)
		}
		c.mu.Unlock()
		return nil, err
	}
	return e.handle, nil
}

// Release decrements the handle's reference count. Handles stay cached at
// zero references for reuse by later chunks; Clear tears them down.
func (c *Cache) Release(handle *Handle) {
	if handle == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[handle.SourceID]
	if !ok {
		return
	}
	if e.refs > 0 {
		e.refs--
	}
}

// ActiveRefs reports the total outstanding references across all handles.
func (c *Cache) ActiveRefs() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := 0
	for _, e := range c.entries {
		total += e.refs
	}
	return total
}

// Len reports the number of cached sources, failed opens included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear drops every cached handle regardless of reference count and marks
// the cache unusable. Callers must ensure no worker still holds a handle;
// outstanding references are logged since they indicate a teardown ordering
// bug.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cleared {
		return
	}
	for id, e := range c.entries {
		if e.refs > 0 {
			c.logger.Warn("clearing source with active references",
				logging.String(logging.FieldSource, id),
				logging.Int("refs", e.refs),
			)
		}
	}
	c.entries = make(map[string]*entry)
	c.cleared = true
}
