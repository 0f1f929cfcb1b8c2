package flows

import (
	"context"
	"time"
)

// lifetime tracks a flow's open period and its single in-flight request.
// All methods must be called with the owning flow's mutex held.
type lifetime struct {
	ctx      context.Context
	cancel   context.CancelFunc
	open     bool
	epoch    uint64
	inflight context.CancelFunc
	done     chan struct{}
	closed   bool
}

func newLifetime() lifetime {
	return lifetime{done: make(chan struct{})}
}

// start opens the lifetime. Opening an open lifetime is a no-op.
func (l *lifetime) start(parent context.Context) {
	if l.open {
		return
	}
	if l.closed {
		l.done = make(chan struct{})
		l.closed = false
	}
	l.ctx, l.cancel = context.WithCancel(parent)
	l.open = true
	l.epoch++
}

// stop cancels the lifetime and any in-flight request
func (l *lifetime) stop() {
	if !l.open {
		return
	}
	if l.inflight != nil {
		l.inflight()
		l.inflight = nil
	}
	l.cancel()
	l.open = false
	l.epoch++
	close(l.done)
	l.closed = true
}

// abort cancels the in-flight request and invalidates its response and any
// pending timer without ending the lifetime
func (l *lifetime) abort() {
	if l.inflight != nil {
		l.inflight()
		l.inflight = nil
	}
	l.epoch++
}

// begin marks a request as in flight and returns its context and the epoch it
// belongs to
func (l *lifetime) begin(timeout time.Duration) (context.Context, uint64, error) {
	if !l.open {
		return nil, 0, ErrFlowClosed
	}
	if l.inflight != nil {
		return nil, 0, ErrBusy
	}
	ctx, cancel := context.WithTimeout(l.ctx, timeout)
	l.inflight = cancel
	return ctx, l.epoch, nil
}

// finish clears the in-flight request. It reports false when the lifetime moved on
// since begin, in which case the response must be discarded.
func (l *lifetime) finish(epoch uint64) bool {
	if epoch != l.epoch {
		return false
	}
	if l.inflight != nil {
		l.inflight()
		l.inflight = nil
	}
	return true
}

func (l *lifetime) busy() bool {
	return l.inflight != nil
}
