// Package jobs runs scan and clean operations on background workers and
// delivers progress and completion asynchronously. A controller keeps at
// most one scan job and one clean job in flight; starting a new job of a
// busy kind cancels the incumbent first.
package jobs

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/winjanitor/winjanitor/internal/cleaner"
	"github.com/winjanitor/winjanitor/internal/scanner"
)

// Kind distinguishes the two job families.
type Kind int

const (
	KindScan Kind = iota
	KindClean
)

func (k Kind) String() string {
	if k == KindClean {
		return "clean"
	}
	return "scan"
}

// State is the lifecycle position of one job.
type State int32

const (
	StateRunning State = iota
	StateCompleted
	StateCancelled
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state is final.
func (s State) Terminal() bool { return s != StateRunning }

// EventType tags the entries of a job's event stream.
type EventType int

const (
	// EventProgress carries a label and a percentage.
	EventProgress EventType = iota
	// EventCompleted carries the scan or clean result. It is the last
	// event of a successful job.
	EventCompleted
	// EventCancelled reports a cooperative cancellation. No result follows.
	EventCancelled
	// EventFailed carries the terminal error of a job that failed to run.
	EventFailed
)

// Event is one entry of a job's event stream. Progress events may be
// dropped under backpressure; the single terminal event is always the last
// one delivered before the stream closes.
type Event struct {
	Type    EventType
	Label   string
	Percent int
	Scan    *scanner.ScanResult
	Clean   *cleaner.CleanResult
	Err     error
}

// Handle identifies one running or finished job.
type Handle struct {
	ID   string
	Kind Kind

	// Events delivers progress and exactly one terminal event, then
	// closes.
	Events <-chan Event

	events chan Event
	cancel context.CancelFunc
	done   chan struct{}
	state  atomic.Int32
}

// State returns the job's current lifecycle state.
func (h *Handle) State() State { return State(h.state.Load()) }

// Cancel requests cooperative cancellation. The worker observes it at the
// next category or file boundary; a terminal job ignores it.
func (h *Handle) Cancel() { h.cancel() }

// Done is closed once the job reaches a terminal state and its worker has
// been torn down.
func (h *Handle) Done() <-chan struct{} { return h.done }

func newHandle(kind Kind, cancel context.CancelFunc) *Handle {
	h := &Handle{
		ID:     uuid.New().String(),
		Kind:   kind,
		events: make(chan Event, eventBuffer),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	h.Events = h.events
	return h
}

const eventBuffer = 64

// emitProgress forwards a progress callback into the event stream without
// blocking the worker; a saturated consumer loses intermediate updates,
// never their ordering.
func (h *Handle) emitProgress(label string, percent int) {
	select {
	case h.events <- Event{Type: EventProgress, Label: label, Percent: percent}:
	default:
	}
}

// finish records the terminal state, delivers the terminal event and tears
// the stream down. Unlike progress events the terminal event is never
// dropped: a full buffer sheds its oldest entry until the send lands. Only
// the worker sends on events, so the retry loop terminates.
func (h *Handle) finish(state State, ev Event) {
	h.state.Store(int32(state))
	for {
		select {
		case h.events <- ev:
			close(h.events)
			close(h.done)
			return
		default:
			select {
			case <-h.events:
			default:
			}
		}
	}
}

// ErrCancelled is the terminal error of a cooperatively cancelled job.
var ErrCancelled = errors.New("jobs: cancelled")
