package queue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Work is a unit of work run by the Serializer.
type Work func(ctx context.Context) error

// Observer is notified whenever the number of queued or running units
// of a lane changes.
type Observer func(key string, pending int)

// Serializer owns the lanes. The zero value is not usable; use New.
type Serializer struct {
	mu       sync.Mutex
	lanes    map[string]*lane
	logger   *slog.Logger
	observer Observer
}

type lane struct {
	tail    chan struct{}
	pending int
}

// Option configures a Serializer.
type Option func(*Serializer)

// WithLogger sets the logger failures are reported to.
func WithLogger(l *slog.Logger) Option {
	return func(s *Serializer) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithObserver sets a lane depth observer.
func WithObserver(o Observer) Option {
	return func(s *Serializer) {
		s.observer = o
	}
}

// New creates a Serializer.
func New(opts ...Option) *Serializer {
	s := &Serializer{
		lanes:  make(map[string]*lane),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// resolved is the tail of a lane that has never been used.
var resolved = func() chan struct{} {
	c := make(chan struct{})
	close(c)
	return c
}()

// Ticket tracks one enqueued unit.
type Ticket struct {
	prior chan struct{}
	done  chan struct{}
	err   error
}

// Prior is closed once every unit enqueued before this one has finished.
func (t *Ticket) Prior() <-chan struct{} { return t.prior }

// Done is closed once this unit has finished.
func (t *Ticket) Done() <-chan struct{} { return t.done }

// Err returns the unit's error. Only valid after Done is closed.
func (t *Ticket) Err() error { return t.err }

// Wait blocks until the unit has finished or ctx is done.
func (t *Ticket) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Enqueue appends work to the lane for key and returns immediately.
// The unit runs after the lane's current tail has finished. If ctx is
// done before the unit starts, the unit is skipped and its ticket
// carries ctx.Err().
func (s *Serializer) Enqueue(ctx context.Context, key string, work Work) *Ticket {
	s.mu.Lock()
	l, ok := s.lanes[key]
	if !ok {
		l = &lane{tail: resolved}
		s.lanes[key] = l
	}
	t := &Ticket{prior: l.tail, done: make(chan struct{})}
	l.tail = t.done
	l.pending++
	pending := l.pending
	s.mu.Unlock()

	s.notify(key, pending)
	go s.run(ctx, key, t, work)
	return t
}

func (s *Serializer) run(ctx context.Context, key string, t *Ticket, work Work) {
	<-t.prior

	if err := ctx.Err(); err != nil {
		t.err = err
	} else {
		t.err = s.execute(ctx, work)
	}
	if t.err != nil {
		s.logger.Error("queued work failed", "key", key, "error", t.err)
	}

	s.mu.Lock()
	l := s.lanes[key]
	l.pending--
	pending := l.pending
	if pending == 0 && l.tail == t.done {
		delete(s.lanes, key)
	}
	s.mu.Unlock()

	close(t.done)
	s.notify(key, pending)
}

func (s *Serializer) execute(ctx context.Context, work Work) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in queued work: %v", r)
		}
	}()
	return work(ctx)
}

func (s *Serializer) notify(key string, pending int) {
	if s.observer != nil {
		s.observer(key, pending)
	}
}

// Pending returns the number of queued or running units for key.
func (s *Serializer) Pending(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.lanes[key]; ok {
		return l.pending
	}
	return 0
}
