package hydro

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"golang.org/x/net/html"

	"github.com/hydrostack/hydro-go/pkg/dom"
	"github.com/hydrostack/hydro-go/pkg/events"
	"github.com/hydrostack/hydro-go/pkg/hydrotest"
	"github.com/hydrostack/hydro-go/pkg/protocol"
)

type captured struct {
	mu     sync.Mutex
	events []events.Event
}

func (c *captured) handler(ev events.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
}

func (c *captured) all() []events.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]events.Event(nil), c.events...)
}

func TestGlobalTrigger(t *testing.T) {
	srv := hydrotest.New(t)
	srv.Page("/", counterPage())
	srv.Reply("/hydro/Counter/add", hydrotest.Reply{
		Markup:   counter(1, "live"),
		Triggers: []protocol.Trigger{{Name: "saved", Scope: protocol.ScopeGlobal, Data: json.RawMessage(`{"id":7}`)}},
	})
	c, _ := newTestClient(t, srv)
	load(t, c, "/")

	var got captured
	c.Bus().Subscribe("global:saved", got.handler)

	if err := c.Action(context.Background(), query(t, c, "#add"), "click"); err != nil {
		t.Fatalf("Action() error = %v", err)
	}

	evs := got.all()
	if len(evs) != 1 {
		t.Fatalf("events = %d, want 1", len(evs))
	}
	var detail struct{ ID int }
	if err := json.Unmarshal(evs[0].Detail, &detail); err != nil || detail.ID != 7 {
		t.Errorf("detail = %s, want {\"id\":7}", evs[0].Detail)
	}
	if evs[0].Name != "global:saved" {
		t.Errorf("Name = %q, want global:saved", evs[0].Name)
	}
}

func TestParentTrigger(t *testing.T) {
	srv := hydrotest.New(t)
	srv.Page("/", counterPage())
	child := hydrotest.Component("c2", "Child", `{"n":5}`,
		`<em id="child">live</em><button id="close" x-hydro-action="/hydro/Child/close">x</button>`)
	srv.Page("/nested", hydrotest.Document("Nested",
		hydrotest.Component("c1", "Counter", `{}`, child)))
	closed := []protocol.Trigger{{Name: "closed", Scope: protocol.ScopeParent}}
	srv.Reply("/hydro/Child/close", hydrotest.Reply{Markup: child, Triggers: closed})
	srv.Reply("/hydro/Counter/add", hydrotest.Reply{Markup: counter(1, "live"), Triggers: closed})

	c, _ := newTestClient(t, srv)
	ctx := context.Background()

	t.Run("delivered to parent", func(t *testing.T) {
		load(t, c, "/nested")
		var got captured
		unsub := c.Bus().Subscribe("c1:closed", got.handler)
		defer unsub()

		if err := c.Action(ctx, query(t, c, "#close"), "click"); err != nil {
			t.Fatalf("Action() error = %v", err)
		}
		if n := len(got.all()); n != 1 {
			t.Errorf("c1:closed events = %d, want 1", n)
		}
		if v := testutil.ToFloat64(c.metrics.triggersTotal.WithLabelValues("parent", "delivered")); v != 1 {
			t.Errorf("delivered triggers = %v, want 1", v)
		}
	})

	t.Run("dropped without parent", func(t *testing.T) {
		load(t, c, "/")
		var got captured
		unsub := c.Bus().Subscribe("global:closed", got.handler)
		defer unsub()

		if err := c.Action(ctx, query(t, c, "#add"), "click"); err != nil {
			t.Fatalf("Action() error = %v", err)
		}
		if n := len(got.all()); n != 0 {
			t.Errorf("parent trigger without parent delivered %d events", n)
		}
		if v := testutil.ToFloat64(c.metrics.triggersTotal.WithLabelValues("parent", "dropped")); v != 1 {
			t.Errorf("dropped triggers = %v, want 1", v)
		}
	})
}

func TestRedirectSkipsReconcile(t *testing.T) {
	srv := hydrotest.New(t)
	srv.Page("/", counterPage())
	srv.Page("/login", hydrotest.Document("Login", `<form id="login"></form>`))
	srv.Reply("/hydro/Counter/add", hydrotest.Reply{Markup: counter(42, "server"), Redirect: "/login"})
	c, _ := newTestClient(t, srv)
	load(t, c, "/")

	count := query(t, c, "#count")
	if err := c.Action(context.Background(), query(t, c, "#add"), "click"); err != nil {
		t.Fatalf("Action() error = %v", err)
	}

	if got := c.Location().Path; got != "/login" {
		t.Errorf("Location().Path = %q, want /login", got)
	}
	if got := c.Title(); got != "Login" {
		t.Errorf("Title() = %q, want Login", got)
	}
	if got := text(c, count); got != "0" {
		t.Errorf("old component was reconciled: #count = %q, want 0", got)
	}
	if n := len(srv.CallsTo("/login")); n != 1 {
		t.Errorf("GET /login calls = %d, want 1", n)
	}
}

func TestLocationLoadsRegion(t *testing.T) {
	srv := hydrotest.New(t)
	srv.Page("/", hydrotest.Document("Counter",
		`<nav id="nav">menu</nav><main id="main">`+counter(0, "live")+`</main>`))
	srv.Page("/todos", hydrotest.Document("Todos",
		`<nav id="nav">other menu</nav><main id="main"><ul id="todos"><li>one</li></ul></main>`))
	srv.Reply("/hydro/Counter/add", hydrotest.Reply{
		Markup:   counter(1, "live"),
		Location: &protocol.Location{Path: "/todos", Target: "#main"},
	})
	c, _ := newTestClient(t, srv)
	load(t, c, "/")

	if err := c.Action(context.Background(), query(t, c, "#add"), "click"); err != nil {
		t.Fatalf("Action() error = %v", err)
	}

	if got := text(c, query(t, c, "#todos")); got != "one" {
		t.Errorf("#todos = %q, want one", got)
	}
	if got := text(c, query(t, c, "#nav")); got != "menu" {
		t.Errorf("#nav = %q, region outside the target changed", got)
	}
	if got := c.Title(); got != "Todos" {
		t.Errorf("Title() = %q, want Todos", got)
	}
	if cur, _ := c.History().Current(); cur != srv.URLFor("/todos") {
		t.Errorf("History().Current() = %q, want %q", cur, srv.URLFor("/todos"))
	}
	get := srv.CallsTo("/todos")
	if len(get) != 1 || !get[0].Boosted() || get[0].Header.Get(protocol.HeaderRequest) != "true" {
		t.Errorf("boosted GET /todos not sent with Hydro headers: %+v", get)
	}
	main := query(t, c, "#main")
	c.Document().Read(func(*html.Node) {
		if dom.HasClass(main, protocol.ClassLoading) {
			t.Errorf("#main attrs = %v, loading class not cleared", main.Attr)
		}
	})
}

func TestMalformedEffectHeaders(t *testing.T) {
	srv := hydrotest.New(t)
	srv.Page("/", counterPage())
	srv.Reply("/hydro/Counter/add", hydrotest.Reply{
		Markup: counter(3, "live"),
		Header: http.Header{
			protocol.HeaderLocation: {"{not json"},
			protocol.HeaderTrigger:  {"nope"},
		},
	})
	c, logs := newTestClient(t, srv)
	load(t, c, "/")

	if err := c.Action(context.Background(), query(t, c, "#add"), "click"); err != nil {
		t.Fatalf("Action() error = %v, want nil for malformed effects", err)
	}
	if got := text(c, query(t, c, "#count")); got != "3" {
		t.Errorf("#count = %q, want 3", got)
	}
	for _, h := range []string{protocol.HeaderLocation, protocol.HeaderTrigger} {
		if v := testutil.ToFloat64(c.metrics.effectErrors.WithLabelValues(h)); v != 1 {
			t.Errorf("effect errors for %s = %v, want 1", h, v)
		}
	}
	if !strings.Contains(logs.String(), "H020") || !strings.Contains(logs.String(), "H021") {
		t.Errorf("malformed headers not logged:\n%s", logs.String())
	}
}
