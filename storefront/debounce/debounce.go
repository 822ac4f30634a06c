// Package debounce coalesces bursts of calls into one trailing-edge call.
package debounce

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

type Func func(ctx context.Context)

// Debouncer runs the most recently triggered Func once delay has passed
// without another Trigger.
type Debouncer struct {
	clock clock.Clock
	delay time.Duration

	// run is held while a Func executes so Flush can wait for a firing timer.
	run sync.Mutex

	mu      sync.Mutex
	timer   *clock.Timer
	gen     uint64
	pending Func
}

func New(clk clock.Clock, delay time.Duration) *Debouncer {
	if clk == nil {
		clk = clock.New()
	}
	return &Debouncer{clock: clk, delay: delay}
}

// Trigger replaces any pending Func with fn and restarts the delay.
func (d *Debouncer) Trigger(fn Func) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending = fn
	d.gen++
	gen := d.gen
	if d.timer != nil {
		d.timer.Stop()
	}
	// The callback only hands off: a clock may hold its own lock while it
	// runs timer callbacks.
	d.timer = d.clock.AfterFunc(d.delay, func() { go d.fire(gen) })
}

// Flush runs the pending Func now with ctx, or waits for one that is already
// running. It reports whether a pending Func was run by this call.
func (d *Debouncer) Flush(ctx context.Context) bool {
	d.run.Lock()
	defer d.run.Unlock()

	fn := d.take()
	if fn == nil {
		return false
	}
	fn(ctx)
	return true
}

// Cancel drops the pending Func without running it.
func (d *Debouncer) Cancel() bool {
	return d.take() != nil
}

func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

func (d *Debouncer) take() Func {
	d.mu.Lock()
	defer d.mu.Unlock()

	fn := d.pending
	d.pending = nil
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	return fn
}

// fire runs the Func scheduled by the Trigger that started timer gen. A
// later Trigger, Cancel or Flush makes it a no-op.
func (d *Debouncer) fire(gen uint64) {
	d.run.Lock()
	defer d.run.Unlock()

	d.mu.Lock()
	if d.gen != gen || d.pending == nil {
		d.mu.Unlock()
		return
	}
	fn := d.pending
	d.pending = nil
	d.timer = nil
	d.mu.Unlock()

	fn(context.Background())
}

// Group keeps one Debouncer per key.
type Group struct {
	clock clock.Clock
	delay time.Duration

	mu   sync.Mutex
	keys map[string]*Debouncer
}

func NewGroup(clk clock.Clock, delay time.Duration) *Group {
	if clk == nil {
		clk = clock.New()
	}
	return &Group{clock: clk, delay: delay, keys: make(map[string]*Debouncer)}
}

func (g *Group) get(key string) *Debouncer {
	g.mu.Lock()
	defer g.mu.Unlock()

	d, ok := g.keys[key]
	if !ok {
		d = New(g.clock, g.delay)
		g.keys[key] = d
	}
	return d
}

func (g *Group) Trigger(key string, fn Func) {
	g.get(key).Trigger(fn)
}

// Cancel drops the pending Func for key and forgets the key.
func (g *Group) Cancel(key string) bool {
	g.mu.Lock()
	d, ok := g.keys[key]
	delete(g.keys, key)
	g.mu.Unlock()
	return ok && d.Cancel()
}

// CancelAll drops every pending Func and forgets every key.
func (g *Group) CancelAll() {
	g.mu.Lock()
	keys := g.keys
	g.keys = make(map[string]*Debouncer)
	g.mu.Unlock()

	for _, d := range keys {
		d.Cancel()
	}
}

// Len reports how many keys the group is tracking.
func (g *Group) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.keys)
}

// FlushAll runs every pending Func with ctx and returns how many ran.
func (g *Group) FlushAll(ctx context.Context) int {
	n := 0
	for _, d := range g.all() {
		if d.Flush(ctx) {
			n++
		}
	}
	return n
}

func (g *Group) all() []*Debouncer {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]*Debouncer, 0, len(g.keys))
	for _, d := range g.keys {
		out = append(out, d)
	}
	return out
}
