package preview

import (
	"sync"
	"time"
)

// DebounceDelay is the quiet period before queued changes are rebuilt.
const DebounceDelay = 300 * time.Millisecond

// target is a set of rebuild kinds.
type target uint8

const (
	targetStatic target = 1 << iota
	targetPages

	targetAll = targetStatic | targetPages
)

func (t target) String() string {
	switch t {
	case targetStatic:
		return "static"
	case targetPages:
		return "pages"
	case targetAll:
		return "all"
	}
	return "none"
}

// rebuilder accumulates requested targets and signals the worker once the
// debounce window has passed.
type rebuilder struct {
	mu      sync.Mutex
	pending target
	timer   *time.Timer
	delay   time.Duration
	wake    chan struct{}
}

func newRebuilder(delay time.Duration) *rebuilder {
	return &rebuilder{delay: delay, wake: make(chan struct{}, 1)}
}

func (r *rebuilder) request(t target) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending |= t
	if r.timer != nil {
		r.timer.Stop()
	}
	r.timer = time.AfterFunc(r.delay, r.signal)
}

// requestNow queues t without debouncing.
func (r *rebuilder) requestNow(t target) {
	r.mu.Lock()
	r.pending |= t
	r.mu.Unlock()
	r.signal()
}

func (r *rebuilder) signal() {
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// take returns and clears the pending targets.
func (r *rebuilder) take() target {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := r.pending
	r.pending = 0
	return t
}

func (r *rebuilder) stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.timer != nil {
		r.timer.Stop()
	}
}
