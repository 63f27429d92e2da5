// Package progress tracks the percent/message status of a long running
// extraction or explanation so that the HTTP API can poll it and the CLI can
// print it as it changes.
package progress

import "sync"

// Status is a snapshot of a Tracker.
type Status struct {
	Percent int    `json:"percent"`
	Message string `json:"message"`
}

// Tracker holds a monotonic status. A nil *Tracker is valid and discards reports.
type Tracker struct {
	mu     sync.Mutex
	status Status
	subs   map[int]chan Status
	nextID int
}

func New() *Tracker {
	return &Tracker{subs: make(map[int]chan Status)}
}

// Report records a new status. Percent is clamped to 0..100 and never moves
// backwards; the message always updates.
func (t *Tracker) Report(percent int, message string) {
	if t == nil {
		return
	}
	percent = clamp(percent)

	t.mu.Lock()
	defer t.mu.Unlock()
	if percent < t.status.Percent {
		percent = t.status.Percent
	}
	t.status = Status{Percent: percent, Message: message}
	t.broadcast()
}

// Step reports position i of n mapped linearly into [lo, hi].
func (t *Tracker) Step(lo, hi, i, n int, message string) {
	t.Report(Span(lo, hi, i, n), message)
}

// Status returns the current snapshot.
func (t *Tracker) Status() Status {
	if t == nil {
		return Status{}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Reset clears the status back to zero, for a new document.
func (t *Tracker) Reset() {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = Status{}
	t.broadcast()
}

// Subscribe returns a channel receiving every subsequent status and a func
// to stop the subscription. Slow receivers miss intermediate updates rather
// than blocking reporters.
func (t *Tracker) Subscribe(buffer int) (<-chan Status, func()) {
	if t == nil {
		ch := make(chan Status)
		close(ch)
		return ch, func() {}
	}
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Status, buffer)

	t.mu.Lock()
	id := t.nextID
	t.nextID++
	if t.subs == nil {
		t.subs = make(map[int]chan Status)
	}
	t.subs[id] = ch
	t.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			t.mu.Lock()
			delete(t.subs, id)
			t.mu.Unlock()
			close(ch)
		})
	}
}

// must hold t.mu
func (t *Tracker) broadcast() {
	for _, ch := range t.subs {
		select {
		case ch <- t.status:
		default:
		}
	}
}

// Span maps step i of n (1-based) linearly into [lo, hi].
func Span(lo, hi, i, n int) int {
	if n <= 0 {
		return lo
	}
	if i > n {
		i = n
	}
	if i < 0 {
		i = 0
	}
	return lo + (hi-lo)*i/n
}

func clamp(p int) int {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}
