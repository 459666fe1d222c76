package store

import (
	"sync"
	"time"
)

// DefaultDebounce is the quiet window between the last mutation and the
// persisted write.
const DefaultDebounce = 250 * time.Millisecond

// saver coalesces bursts of mutations into a single background write. Each
// trigger replaces the pending write and restarts the quiet window, so only
// the latest snapshot ever reaches the store.
type saver struct {
	mu      sync.Mutex
	delay   time.Duration
	timer   *time.Timer
	pending func()
}

func newSaver(delay time.Duration) *saver {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &saver{delay: delay}
}

// trigger schedules write to run after the quiet window, superseding any
// write already pending.
func (s *saver) trigger(write func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = write
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, s.fire)
}

func (s *saver) fire() {
	s.mu.Lock()
	write := s.pending
	s.pending = nil
	s.mu.Unlock()

	if write != nil {
		write()
	}
}

// flush runs the pending write immediately, if any. Called on shutdown so
// the final burst of changes is not lost to the quiet window.
func (s *saver) flush() {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
	}
	write := s.pending
	s.pending = nil
	s.mu.Unlock()

	if write != nil {
		write()
	}
}

// options configure a store.
type options struct {
	debounce time.Duration
	now      func() time.Time
}

// Option configures a store.
type Option func(*options)

// WithDebounce sets the persistence quiet window.
func WithDebounce(d time.Duration) Option {
	return func(o *options) { o.debounce = d }
}

// WithClock overrides the store's time source.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{debounce: DefaultDebounce, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
