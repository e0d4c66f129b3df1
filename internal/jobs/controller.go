package jobs

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/winjanitor/winjanitor/internal/cleaner"
	"github.com/winjanitor/winjanitor/internal/scanner"
)

// DefaultReplaceWait bounds how long starting a job blocks for a running
// job of the same kind to wind down after its cancellation request.
const DefaultReplaceWait = 3 * time.Second

// Controller owns the two single-flight job slots and the workers behind
// them. The zero value is not usable; construct with NewController.
type Controller struct {
	scan  *scanner.Engine
	clean *cleaner.Engine

	mu     sync.Mutex
	active map[Kind]*Handle

	replaceWait time.Duration
	log         *slog.Logger
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithReplaceWait overrides the bounded wait applied when replacing a
// running job.
func WithReplaceWait(d time.Duration) ControllerOption {
	return func(c *Controller) { c.replaceWait = d }
}

// WithLogger sets the controller logger.
func WithLogger(log *slog.Logger) ControllerOption {
	return func(c *Controller) { c.log = log }
}

// NewController builds a controller over the two engines.
func NewController(scan *scanner.Engine, clean *cleaner.Engine, opts ...ControllerOption) *Controller {
	c := &Controller{
		scan:        scan,
		clean:       clean,
		active:      make(map[Kind]*Handle),
		replaceWait: DefaultReplaceWait,
		log:         slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// StartScan launches a scan on a background worker and returns its handle
// immediately. A scan already in flight is cancelled and awaited (bounded)
// first.
func (c *Controller) StartScan(cfg scanner.ScanConfig) *Handle {
	return c.start(KindScan, func(ctx context.Context, h *Handle) (Event, State) {
		res, err := c.scan.Scan(ctx, cfg, h.emitProgress)
		if err != nil {
			return terminalFor(err)
		}
		return Event{Type: EventCompleted, Percent: 100, Scan: res}, StateCompleted
	})
}

// StartClean launches a clean of the given selection on a background
// worker. A clean already in flight is cancelled and awaited (bounded)
// first.
func (c *Controller) StartClean(files []scanner.FileRecord) *Handle {
	return c.start(KindClean, func(ctx context.Context, h *Handle) (Event, State) {
		res, err := c.clean.Clean(ctx, files, h.emitProgress)
		if err != nil {
			return terminalFor(err)
		}
		return Event{Type: EventCompleted, Percent: 100, Clean: res}, StateCompleted
	})
}

// Cancel requests cooperative cancellation of a job. It is meaningful only
// while the job is running; the worker observes the request at its next
// category or file boundary.
func (c *Controller) Cancel(h *Handle) {
	if h == nil || h.State().Terminal() {
		return
	}
	c.log.Info("cancellation requested", "job", h.ID, "kind", h.Kind.String())
	h.cancel()
}

// Active returns the running handle for a kind, or nil.
func (c *Controller) Active(kind Kind) *Handle {
	c.mu.Lock()
	defer c.mu.Unlock()
	if h := c.active[kind]; h != nil && !h.State().Terminal() {
		return h
	}
	return nil
}

func (c *Controller) start(kind Kind, run func(context.Context, *Handle) (Event, State)) *Handle {
	c.displace(kind)

	ctx, cancel := context.WithCancel(context.Background())
	h := newHandle(kind, cancel)

	c.mu.Lock()
	c.active[kind] = h
	c.mu.Unlock()

	c.log.Info("job starting", "job", h.ID, "kind", kind.String())

	go func() {
		defer cancel()
		ev, state := run(ctx, h)
		h.finish(state, ev)
		c.release(kind, h)
		c.log.Info("job finished", "job", h.ID, "kind", kind.String(), "state", state.String())
	}()

	return h
}

// displace cancels a running job of the same kind and waits, bounded, for
// its teardown. If the worker is stuck past the bound (a stalled
// filesystem call is not independently interruptible) the slot is handed
// over anyway and the stale worker discards itself on completion.
func (c *Controller) displace(kind Kind) {
	c.mu.Lock()
	cur := c.active[kind]
	c.mu.Unlock()

	if cur == nil || cur.State().Terminal() {
		return
	}

	cur.cancel()
	select {
	case <-cur.done:
	case <-time.After(c.replaceWait):
		c.log.Warn("job did not stop within bound, abandoning",
			"job", cur.ID, "kind", kind.String())
	}
}

func (c *Controller) release(kind Kind, h *Handle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active[kind] == h {
		delete(c.active, kind)
	}
}

func terminalFor(err error) (Event, State) {
	if errors.Is(err, context.Canceled) {
		return Event{Type: EventCancelled, Err: ErrCancelled}, StateCancelled
	}
	return Event{Type: EventFailed, Err: err}, StateFailed
}
