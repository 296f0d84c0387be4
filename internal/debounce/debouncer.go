// Package debounce provides a trailing-edge debouncer for values that change
// faster than their consumers should react.
package debounce

import (
	"sync"
	"time"
)

// Timer is the handle returned by an AfterFunc.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f to run once after d.
type AfterFunc func(d time.Duration, f func()) Timer

// Option configures a Debouncer.
type Option func(*options)

type options struct {
	afterFunc AfterFunc
}

// WithAfterFunc replaces the timer source, mainly so tests can drive time.
func WithAfterFunc(fn AfterFunc) Option {
	return func(o *options) {
		o.afterFunc = fn
	}
}

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Debouncer holds a committed value that trails the most recent input by a
// quiet period. The first value is committed at construction; later inputs
// are committed only after delay passes without another Set.
type Debouncer[T comparable] struct {
	mu        sync.Mutex
	delay     time.Duration
	input     T
	value     T
	pending   Timer
	gen       uint64
	stopped   bool
	onCommit  func(T)
	afterFunc AfterFunc
}

// New creates a Debouncer committed to initial. onCommit may be nil; when set
// it is called from the timer goroutine each time the committed value changes.
func New[T comparable](initial T, delay time.Duration, onCommit func(T), opts ...Option) *Debouncer[T] {
	o := options{afterFunc: realAfterFunc}
	for _, opt := range opts {
		opt(&o)
	}

	return &Debouncer[T]{
		delay:     delay,
		input:     initial,
		value:     initial,
		onCommit:  onCommit,
		afterFunc: o.afterFunc,
	}
}

// Set records a new input and restarts the quiet period. Repeating the
// latest input does not restart the wait.
func (d *Debouncer[T]) Set(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped || v == d.input {
		return
	}
	d.input = v

	if d.pending != nil {
		d.pending.Stop()
		d.pending = nil
	}
	d.gen++
	gen := d.gen
	d.pending = d.afterFunc(d.delay, func() { d.fire(gen, v) })
}

func (d *Debouncer[T]) fire(gen uint64, v T) {
	d.mu.Lock()
	// A timer that lost the race with Set, Reset or Stop must not commit.
	if d.stopped || gen != d.gen {
		d.mu.Unlock()
		return
	}
	d.pending = nil
	changed := v != d.value
	d.value = v
	cb := d.onCommit
	d.mu.Unlock()

	if changed && cb != nil {
		cb(v)
	}
}

// Value returns the committed value.
func (d *Debouncer[T]) Value() T {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.value
}

// Input returns the most recent input, committed or not.
func (d *Debouncer[T]) Input() T {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.input
}

// Pending reports whether a commit is scheduled.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

// Reset cancels any pending commit and commits v immediately without
// calling onCommit.
func (d *Debouncer[T]) Reset(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.cancelLocked()
	d.input = v
	d.value = v
}

// Stop cancels any pending commit. The Debouncer ignores all later input.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.cancelLocked()
	d.stopped = true
}

func (d *Debouncer[T]) cancelLocked() {
	if d.pending != nil {
		d.pending.Stop()
		d.pending = nil
	}
	d.gen++
}
