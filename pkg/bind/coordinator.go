package bind

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/net/html"

	"github.com/hydrostack/hydro-go/internal/errors"
	"github.com/hydrostack/hydro-go/pkg/component"
	"github.com/hydrostack/hydro-go/pkg/dom"
	"github.com/hydrostack/hydro-go/pkg/protocol"
)

// DefaultDelay is the debounce window.
const DefaultDelay = 10 * time.Millisecond

// Flush is one batched bind request.
type Flush struct {
	// Element is the input whose change closed the window.
	Element *html.Node
	URL     string
	Fields  []dom.Field
}

// Sender sends a flushed batch.
type Sender interface {
	SendBind(ctx context.Context, f Flush) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, f Flush) error

// SendBind calls f.
func (f SenderFunc) SendBind(ctx context.Context, fl Flush) error { return f(ctx, fl) }

// Coordinator owns the binding accumulators.
type Coordinator struct {
	doc    *dom.Document
	sender Sender
	delay  time.Duration
	logger *slog.Logger
	base   context.Context

	mu       sync.Mutex
	seq      uint64
	bindings map[string]*binding
}

// binding is the accumulator of one binding URL. It is replaced, never
// reset in place, when its window is flushed.
type binding struct {
	gen     uint64
	fields  *Fields
	element *html.Node
	timer   *time.Timer
	waiters []chan error
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithDelay sets the debounce window.
func WithDelay(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.delay = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithContext sets the context flushes run under. Flushes are detached
// from the contexts of individual Bind calls.
func WithContext(ctx context.Context) Option {
	return func(c *Coordinator) {
		c.base = ctx
	}
}

// New creates a Coordinator for doc sending through sender.
func New(doc *dom.Document, sender Sender, opts ...Option) *Coordinator {
	c := &Coordinator{
		doc:      doc,
		sender:   sender,
		delay:    DefaultDelay,
		logger:   slog.Default(),
		base:     context.Background(),
		bindings: make(map[string]*binding),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Bind records the current value of el and schedules a flush. It is a
// no-op for inputs without the bind attribute.
func (c *Coordinator) Bind(ctx context.Context, el *html.Node) error {
	var (
		bound       bool
		url         string
		name, value string
		err         error
	)
	c.doc.Read(func(*html.Node) {
		if !dom.HasAttr(el, protocol.AttrBind) {
			return
		}
		bound = true
		comp, ok := component.Locate(el)
		if !ok {
			err = errors.New("H001").WithDetail("bound input " + describe(el))
			return
		}
		name = dom.AttrOr(el, "name", "")
		if name == "" {
			err = errors.New("H003").WithDetail("component " + comp.ID)
			return
		}
		value = c.doc.Value(el)
		url = component.BindURL(comp)
	})
	if !bound || err != nil {
		return err
	}

	done := c.schedule(url, el, name, value)
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Coordinator) schedule(url string, el *html.Node, name, value string) <-chan error {
	c.mu.Lock()
	defer c.mu.Unlock()

	b, ok := c.bindings[url]
	if !ok {
		b = &binding{fields: NewFields()}
		c.bindings[url] = b
	}
	if b.timer != nil {
		b.timer.Stop()
	}

	b.fields.Set(name, value)
	b.element = el
	done := make(chan error, 1)
	b.waiters = append(b.waiters, done)

	c.seq++
	gen := c.seq
	b.gen = gen
	b.timer = time.AfterFunc(c.delay, func() { c.flush(url, gen) })
	return done
}

// flush sends the window identified by gen. A timer that fired after
// being superseded finds a newer gen and does nothing.
func (c *Coordinator) flush(url string, gen uint64) {
	c.mu.Lock()
	b, ok := c.bindings[url]
	if !ok || b.gen != gen {
		c.mu.Unlock()
		return
	}
	c.bindings[url] = &binding{fields: NewFields()}
	c.mu.Unlock()

	f := Flush{Element: b.element, URL: url, Fields: b.fields.List()}
	c.logger.Debug("bind flush", "url", url, "fields", len(f.Fields))

	err := c.sender.SendBind(c.base, f)
	if err != nil {
		c.logger.Error("bind flush failed", "url", url, "error", err)
	}
	for _, w := range b.waiters {
		w <- err
	}
}

// Pending returns the number of fields waiting in the window for url.
func (c *Coordinator) Pending(url string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if b, ok := c.bindings[url]; ok {
		return b.fields.Len()
	}
	return 0
}

// Stop cancels all pending windows. Their Bind calls return ErrStopped.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for url, b := range c.bindings {
		if b.timer != nil {
			b.timer.Stop()
		}
		for _, w := range b.waiters {
			w <- ErrStopped
		}
		delete(c.bindings, url)
	}
}

// ErrStopped is returned by Bind calls whose window was cancelled by Stop.
var ErrStopped = errors.Newf(errors.CategoryResolution, "bind coordinator stopped")

func describe(n *html.Node) string {
	if id := dom.AttrOr(n, "id", ""); id != "" {
		return "<" + n.Data + " id=" + id + ">"
	}
	if name := dom.AttrOr(n, "name", ""); name != "" {
		return "<" + n.Data + " name=" + name + ">"
	}
	return "<" + n.Data + ">"
}
