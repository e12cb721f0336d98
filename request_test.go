package hydro

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/net/html"

	"github.com/hydrostack/hydro-go/internal/errors"
	"github.com/hydrostack/hydro-go/pkg/dom"
	"github.com/hydrostack/hydro-go/pkg/hydrotest"
	"github.com/hydrostack/hydro-go/pkg/protocol"
)

func counter(count int, child string) string {
	return hydrotest.Component("c1", "Counter", fmt.Sprintf(`{"count":%d}`, count),
		fmt.Sprintf(`<span id="count">%d</span>`, count)+
			`<input type="checkbox" id="agree" name="agree">`+
			`<button id="add" x-hydro-action="/hydro/Counter/add" hydro-parameters='{"step":1}'>add</button>`+
			`<button id="other" x-hydro-action="/hydro/Counter/other">other</button>`+
			hydrotest.Component("c2", "Child", `{"n":5}`, `<em id="child">`+child+`</em>`))
}

func counterPage() string {
	return hydrotest.Document("Counter", counter(0, "live"),
		hydrotest.ConfigMeta("RequestVerificationToken", "tok"))
}

func TestActionSendsProtocolHeaders(t *testing.T) {
	srv := hydrotest.New(t)
	srv.Page("/", counterPage())
	srv.Reply("/hydro/Counter/add", hydrotest.Reply{Markup: counter(1, "server")})
	c, _ := newTestClient(t, srv)
	load(t, c, "/")

	if err := c.Action(context.Background(), query(t, c, "#add"), "click"); err != nil {
		t.Fatalf("Action() error = %v", err)
	}

	calls := srv.CallsTo("/hydro/Counter/add")
	if len(calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(calls))
	}
	call := calls[0]
	checks := []struct{ header, want string }{
		{protocol.HeaderRequest, "true"},
		{"RequestVerificationToken", "tok"},
		{protocol.HeaderModel, `{"count":0}`},
		{protocol.HeaderParameters, `{"step":1}`},
		{protocol.HeaderEventName, ""},
	}
	for _, tt := range checks {
		if got := call.Header.Get(tt.header); got != tt.want {
			t.Errorf("header %s = %q, want %q", tt.header, got, tt.want)
		}
	}
	if ids := call.IDs(); len(ids) != 2 || ids[0] != "c1" || ids[1] != "c2" {
		t.Errorf("IDs() = %v, want [c1 c2]", ids)
	}
	if ct := call.Header.Get("Content-Type"); !strings.HasPrefix(ct, "multipart/form-data") {
		t.Errorf("Content-Type = %q, want multipart/form-data", ct)
	}
	if call.Method != "POST" {
		t.Errorf("Method = %q, want POST", call.Method)
	}

	if got := text(c, query(t, c, "#count")); got != "1" {
		t.Errorf("#count = %q, want 1", got)
	}
	add := query(t, c, "#add")
	c.Document().Read(func(*html.Node) {
		if c.Document().Disabled(add) {
			t.Error("button still disabled after the request")
		}
		if dom.HasClass(add, protocol.ClassRequest) {
			t.Error("button still has the pending class")
		}
	})
}

func TestNestedComponentIsNotOverwritten(t *testing.T) {
	srv := hydrotest.New(t)
	srv.Page("/", counterPage())
	srv.Reply("/hydro/Counter/add", hydrotest.Reply{Markup: counter(1, "server")})
	c, _ := newTestClient(t, srv)
	load(t, c, "/")

	child := query(t, c, "#c2")
	before := outer(c, child)

	if err := c.Action(context.Background(), query(t, c, "#add"), "click"); err != nil {
		t.Fatalf("Action() error = %v", err)
	}

	if got := query(t, c, "#c2"); got != child {
		t.Error("nested component root was replaced")
	}
	if after := outer(c, child); after != before {
		t.Errorf("nested component changed:\n got %s\nwant %s", after, before)
	}
	if got := text(c, query(t, c, "#count")); got != "1" {
		t.Errorf("parent root not merged: #count = %q", got)
	}
}

func TestCheckboxStateSurvivesReconcile(t *testing.T) {
	srv := hydrotest.New(t)
	srv.Page("/", counterPage())
	srv.Reply("/hydro/Counter/add", hydrotest.Reply{Markup: counter(1, "live")})
	c, _ := newTestClient(t, srv)
	load(t, c, "/")
	ctx := context.Background()

	agree := query(t, c, "#agree")
	if err := c.Check(ctx, agree, true); err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if err := c.Action(ctx, query(t, c, "#add"), "click"); err != nil {
		t.Fatalf("Action() error = %v", err)
	}

	c.Document().Read(func(*html.Node) {
		if !c.Document().Checked(agree) {
			t.Error("checkbox was unchecked by the patch")
		}
	})
}

func TestHTTPErrorLeavesDocumentAndQueueUsable(t *testing.T) {
	srv := hydrotest.New(t)
	srv.Page("/", counterPage())
	srv.Reply("/hydro/Counter/add", hydrotest.Reply{Status: 500, Markup: "<div>boom</div>"})
	srv.Reply("/hydro/Counter/other", hydrotest.Reply{Markup: counter(9, "live")})
	c, logs := newTestClient(t, srv)
	load(t, c, "/")
	ctx := context.Background()

	before := documentHTML(c)
	err := c.Action(ctx, query(t, c, "#add"), "click")

	if !errors.HasCode(err, "H010") {
		t.Fatalf("Action() error = %v, want H010", err)
	}
	if got := errors.StatusOf(err); got != 500 {
		t.Errorf("StatusOf() = %d, want 500", got)
	}
	var httpErr *protocol.HTTPError
	if !stderrors.As(err, &httpErr) || httpErr.Status != 500 {
		t.Errorf("errors.As(*protocol.HTTPError) = %v", httpErr)
	}
	if after := documentHTML(c); after != before {
		t.Errorf("document changed after HTTP error:\n got %s\nwant %s", after, before)
	}
	if !strings.Contains(logs.String(), "queued work failed") {
		t.Errorf("error was not logged; logs:\n%s", logs.String())
	}

	if err := c.Action(ctx, query(t, c, "#other"), "click"); err != nil {
		t.Fatalf("later Action() error = %v", err)
	}
	if got := text(c, query(t, c, "#count")); got != "9" {
		t.Errorf("#count = %q, want 9", got)
	}
}

func TestRequestsRunOneAtATimeInOrder(t *testing.T) {
	srv := hydrotest.New(t)
	srv.Page("/", counterPage())

	var (
		inflight, peak int32
		mu             sync.Mutex
		order          []string
	)
	srv.Handle("/hydro/Counter/step/{n}", func(call *hydrotest.Call) hydrotest.Reply {
		n := atomic.AddInt32(&inflight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(15 * time.Millisecond)
		mu.Lock()
		order = append(order, call.Path)
		mu.Unlock()
		atomic.AddInt32(&inflight, -1)
		return hydrotest.Reply{Markup: counter(0, "live")}
	})
	c, _ := newTestClient(t, srv)
	load(t, c, "/")
	ctx := context.Background()

	el := query(t, c, "#count")
	var want []string
	for i := 0; i < 5; i++ {
		path := fmt.Sprintf("/hydro/Counter/step/%d", i)
		want = append(want, path)
		if _, err := c.enqueue(ctx, Request{Element: el, URL: path, Type: protocol.TypeEvent}); err != nil {
			t.Fatalf("enqueue() error = %v", err)
		}
	}
	if got := c.Pending(); got == 0 {
		t.Error("Pending() = 0 right after enqueueing")
	}
	eventually(t, "queue to drain", func() bool { return c.Pending() == 0 })

	mu.Lock()
	defer mu.Unlock()
	if strings.Join(order, ",") != strings.Join(want, ",") {
		t.Errorf("order = %v, want %v", order, want)
	}
	if peak != 1 {
		t.Errorf("peak concurrency = %d, want 1", peak)
	}
}

func TestPendingClassAfterGraceDelay(t *testing.T) {
	srv := hydrotest.New(t)
	srv.Page("/", counterPage())
	srv.Reply("/hydro/Counter/add", hydrotest.Reply{Markup: counter(1, "live"), Delay: 200 * time.Millisecond})
	c, _ := newTestClient(t, srv, func(cfg *Config) { cfg.PendingDelay = 20 * time.Millisecond })
	load(t, c, "/")

	add := query(t, c, "#add")
	done := make(chan error, 1)
	go func() { done <- c.Action(context.Background(), add, "click") }()

	eventually(t, "pending class", func() bool {
		var ok bool
		c.Document().Read(func(*html.Node) {
			ok = dom.HasClass(add, protocol.ClassRequest) && c.Document().Disabled(add)
		})
		return ok
	})

	if err := <-done; err != nil {
		t.Fatalf("Action() error = %v", err)
	}
	c.Document().Read(func(*html.Node) {
		if dom.HasClass(add, protocol.ClassRequest) || c.Document().Disabled(add) {
			t.Error("pending affordances not reverted")
		}
	})
}

func TestEventRequestsDoNotDisable(t *testing.T) {
	srv := hydrotest.New(t)
	srv.Page("/", hydrotest.Document("List", hydrotest.Component("c1", "List", `{}`,
		`<div id="listener" x-on-hydro-event='{"name":"saved","path":"/hydro/List/refresh"}'>old</div>`)))
	srv.Reply("/hydro/List/refresh", hydrotest.Reply{Markup: hydrotest.Component("c1", "List", `{}`,
		`<div id="listener" x-on-hydro-event='{"name":"saved","path":"/hydro/List/refresh"}'>new</div>`),
		Delay: 50 * time.Millisecond})
	c, _ := newTestClient(t, srv, func(cfg *Config) { cfg.PendingDelay = 5 * time.Millisecond })
	load(t, c, "/")

	el := query(t, c, "#listener")
	done := make(chan error, 1)
	go func() { done <- c.Event(context.Background(), el, []byte(`{"id":7}`)) }()

	time.Sleep(25 * time.Millisecond)
	c.Document().Read(func(*html.Node) {
		if c.Document().Disabled(el) || dom.HasClass(el, protocol.ClassRequest) {
			t.Error("event request toggled affordances")
		}
	})
	if err := <-done; err != nil {
		t.Fatalf("Event() error = %v", err)
	}

	call := srv.CallsTo("/hydro/List/refresh")[0]
	if got := call.Header.Get(protocol.HeaderEventName); got != "saved" {
		t.Errorf("Hydro-Event-Name = %q, want saved", got)
	}
	if got := call.Header.Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", got)
	}
	if got := string(call.Body); got != `{"id":7}` {
		t.Errorf("body = %s, want {\"id\":7}", got)
	}
	if got := text(c, query(t, c, "#listener")); got != "new" {
		t.Errorf("#listener = %q, want new", got)
	}
}

func TestRequestOutsideComponent(t *testing.T) {
	srv := hydrotest.New(t)
	srv.Page("/", hydrotest.Document("Bare", `<button id="b" x-hydro-action="/x">x</button>`))
	c, _ := newTestClient(t, srv)
	load(t, c, "/")

	err := c.Action(context.Background(), query(t, c, "#b"), "click")
	if !errors.HasCode(err, "H001") {
		t.Errorf("Action() error = %v, want H001", err)
	}
	if n := len(srv.CallsTo("/x")); n != 0 {
		t.Errorf("calls to /x = %d, want 0", n)
	}
}

func TestRequestWithoutStateSnapshot(t *testing.T) {
	srv := hydrotest.New(t)
	srv.Page("/", hydrotest.Document("NoState",
		`<div id="c1" hydro hydro-name="Bare"><button id="b" x-hydro-action="/x">x</button></div>`))
	c, _ := newTestClient(t, srv)
	load(t, c, "/")

	err := c.Action(context.Background(), query(t, c, "#b"), "click")
	if !errors.HasCode(err, "H002") {
		t.Errorf("Action() error = %v, want H002", err)
	}
}

func TestRequestTimeout(t *testing.T) {
	srv := hydrotest.New(t)
	srv.Page("/", counterPage())
	srv.Reply("/hydro/Counter/add", hydrotest.Reply{Markup: counter(1, "live"), Delay: time.Second})
	c, _ := newTestClient(t, srv, func(cfg *Config) { cfg.RequestTimeout = 30 * time.Millisecond })
	load(t, c, "/")

	err := c.Action(context.Background(), query(t, c, "#add"), "click")
	if !errors.HasCode(err, "H011") {
		t.Errorf("Action() error = %v, want H011 timeout", err)
	}
}
