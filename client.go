package hydro

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/html"

	"github.com/hydrostack/hydro-go/internal/config"
	"github.com/hydrostack/hydro-go/pkg/bind"
	"github.com/hydrostack/hydro-go/pkg/dom"
	"github.com/hydrostack/hydro-go/pkg/events"
	"github.com/hydrostack/hydro-go/pkg/history"
	"github.com/hydrostack/hydro-go/pkg/queue"
)

// lane is the serialization key every request uses. All requests of a
// page run one at a time in the order they were issued.
const lane = ""

// Client drives one Hydro page.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
	tracer trace.Tracer

	ctx    context.Context
	cancel context.CancelFunc

	doc     *dom.Document
	queue   *queue.Serializer
	binds   *bind.Coordinator
	bus     *events.Bus
	history *history.Stack
	metrics *metrics

	mu       sync.Mutex
	page     config.Page
	location *url.URL
	wired    bool
	unwire   []func()
}

// New creates a Client with an empty document. Call Load to open a page.
func New(cfg Config) *Client {
	cfg = cfg.withDefaults()

	hc := cfg.HTTPClient
	if hc == nil {
		jar, _ := cookiejar.New(nil)
		hc = &http.Client{Jar: jar}
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Client{
		cfg:     cfg,
		http:    hc,
		logger:  cfg.Logger,
		tracer:  otel.Tracer(cfg.TracerName),
		ctx:     ctx,
		cancel:  cancel,
		doc:     dom.New(&html.Node{Type: html.DocumentNode}),
		bus:     &events.Bus{},
		history: &history.Stack{},
		metrics: newMetrics(cfg.Metrics),
	}
	c.queue = queue.New(
		queue.WithLogger(c.logger),
		queue.WithObserver(func(key string, pending int) {
			c.metrics.queueDepth.WithLabelValues(key).Set(float64(pending))
		}),
	)
	c.binds = bind.New(c.doc, c,
		bind.WithDelay(cfg.BindDebounce),
		bind.WithLogger(c.logger),
		bind.WithContext(ctx),
	)
	return c
}

// Document returns the live document.
func (c *Client) Document() *dom.Document {
	return c.doc
}

// Bus returns the notification bus triggers are broadcast on.
func (c *Client) Bus() *events.Bus {
	return c.bus
}

// History returns the session history.
func (c *Client) History() *history.Stack {
	return c.history
}

// Location returns the URL of the current page, or nil before the first
// load.
func (c *Client) Location() *url.URL {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.location == nil {
		return nil
	}
	u := *c.location
	return &u
}

// Page returns the page configuration read from the last full load.
func (c *Client) Page() config.Page {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

// Pending returns the number of queued or running requests.
func (c *Client) Pending() int {
	return c.queue.Pending(lane)
}

// Close cancels pending binds and in-flight work started by the client
// itself. The client must not be used afterwards.
func (c *Client) Close() {
	c.mu.Lock()
	c.wired = false
	c.mu.Unlock()
	c.binds.Stop()
	c.unsubscribeAll()
	c.cancel()
}

func (c *Client) antiforgery() *Antiforgery {
	if c.cfg.Antiforgery.Valid() {
		return c.cfg.Antiforgery
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.page.Antiforgery.Valid() {
		return c.page.Antiforgery
	}
	return nil
}

// resolve makes ref absolute against the current page, or BaseURL
// before the first load.
func (c *Client) resolve(ref string) string {
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	c.mu.Lock()
	base := c.location
	c.mu.Unlock()
	if base == nil && c.cfg.BaseURL != "" {
		base, _ = url.Parse(c.cfg.BaseURL)
	}
	if base == nil {
		return ref
	}
	return base.ResolveReference(r).String()
}

func (c *Client) setLocation(raw string) {
	u, err := url.Parse(raw)
	if err != nil {
		return
	}
	c.mu.Lock()
	c.location = u
	c.mu.Unlock()
}

func newRequestID() string {
	return ulid.Make().String()
}

func (c *Client) newRequest(ctx context.Context, method, target string, body []byte) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, bodyReader(body))
	if err != nil {
		return nil, err
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	return req, nil
}
