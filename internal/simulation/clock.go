package simulation

import (
	"context"
	"sync"
	"time"
)

// Clock fires a day tick every interval and broadcasts the resulting day
// number to subscribers.
//
// Invariant: tick is invoked at most once per interval and never concurrently.
type Clock struct {
	interval    time.Duration
	tick        func() int
	mu          sync.Mutex
	subscribers map[chan<- int]struct{}
}

// NewClock returns a stopped Clock that calls tick on every interval. tick
// returns the day reached.
//
// Precondition: interval must be > 0; tick must be non-nil.
func NewClock(interval time.Duration, tick func() int) *Clock {
	if interval <= 0 {
		panic("simulation.NewClock: interval must be > 0")
	}
	if tick == nil {
		panic("simulation.NewClock: tick must not be nil")
	}
	return &Clock{
		interval:    interval,
		tick:        tick,
		subscribers: make(map[chan<- int]struct{}),
	}
}

// Subscribe registers ch to receive the day number after each tick.
// If ch is full, the day is dropped for that subscriber (non-blocking).
//
// Precondition: ch must not be nil.
func (c *Clock) Subscribe(ch chan<- int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscribers[ch] = struct{}{}
}

// Unsubscribe removes ch from the subscriber list.
func (c *Clock) Unsubscribe(ch chan<- int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.subscribers, ch)
}

// Start launches the tick goroutine and returns a stop function. The loop
// ends when ctx is cancelled or stop is called; stop is idempotent and waits
// for an in-flight tick to finish.
//
// Postcondition: tick runs once per interval until stopped.
func (c *Clock) Start(ctx context.Context) (stop func()) {
	done := make(chan struct{})
	finished := make(chan struct{})
	var once sync.Once
	go func() {
		defer close(finished)
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case <-ticker.C:
				day := c.tick()
				c.broadcast(day)
			}
		}
	}()
	return func() {
		once.Do(func() { close(done) })
		<-finished
	}
}

func (c *Clock) broadcast(day int) {
	c.mu.Lock()
	subs := make([]chan<- int, 0, len(c.subscribers))
	for ch := range c.subscribers {
		subs = append(subs, ch)
	}
	c.mu.Unlock()
	for _, ch := range subs {
		select {
		case ch <- day:
		default:
		}
	}
}
