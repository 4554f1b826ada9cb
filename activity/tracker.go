// Package activity counts in-flight HTTP requests and publishes a busy flag
// that is true while at least one of them is pending.
package activity

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RequestID identifies one dispatched request
type RequestID string

// NewRequestID returns a random request identity
func NewRequestID() RequestID {
	return RequestID(uuid.NewString())
}

// Tracker holds the multiset of pending requests. Subscribers are told about
// transitions only, so overlapping requests show one busy period.
type Tracker struct {
	mu          sync.Mutex
	pending     map[RequestID]int
	total       int
	subscribers map[int]chan bool
	nextSubID   int
	log         zerolog.Logger
}

type Option func(*Tracker)

func WithLogger(l zerolog.Logger) Option {
	return func(t *Tracker) {
		t.log = l
	}
}

func NewTracker(opts ...Option) *Tracker {
	t := &Tracker{
		pending:     make(map[RequestID]int),
		subscribers: make(map[int]chan bool),
		log:         log.Logger,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Begin records a dispatched request
func (t *Tracker) Begin(id RequestID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.pending[id]++
	t.total++
	t.log.Debug().Str("request_id", string(id)).Int("pending", t.total).Msg("Request added")
	if t.total == 1 {
		t.publish(true)
	}
}

// End removes one occurrence of id. Ending an id that is not pending does
// nothing, so a request settled twice cannot underflow the count.
func (t *Tracker) End(id RequestID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	n, ok := t.pending[id]
	if !ok {
		return
	}
	if n == 1 {
		delete(t.pending, id)
	} else {
		t.pending[id] = n - 1
	}
	t.total--
	t.log.Debug().Str("request_id", string(id)).Int("pending", t.total).Msg("Request removed")
	if t.total == 0 {
		t.publish(false)
	}
}

// Busy reports whether any request is pending
func (t *Tracker) Busy() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total > 0
}

// Pending returns the number of pending requests
func (t *Tracker) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total
}

// Subscribe returns a channel that first carries the current busy value and
// then every change. A subscriber that falls behind only sees the latest
// value. The cancel func unsubscribes and closes the channel.
func (t *Tracker) Subscribe() (<-chan bool, func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ch := make(chan bool, 1)
	ch <- t.total > 0
	id := t.nextSubID
	t.nextSubID++
	t.subscribers[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			t.mu.Lock()
			defer t.mu.Unlock()
			delete(t.subscribers, id)
			close(ch)
		})
	}
	return ch, cancel
}

// publish must be called with t.mu held
func (t *Tracker) publish(busy bool) {
	for _, ch := range t.subscribers {
		select {
		case ch <- busy:
		default:
			// Replace the unread value with the newer one
			select {
			case <-ch:
			default:
			}
			ch <- busy
		}
	}
}

// Start begins a new request and returns the func that settles it. The func
// may be called from any number of completion paths; only the first call
// ends the request.
func (t *Tracker) Start() (RequestID, func()) {
	id := NewRequestID()
	t.Begin(id)
	var once sync.Once
	return id, func() {
		once.Do(func() { t.End(id) })
	}
}
