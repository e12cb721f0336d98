package bind

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"golang.org/x/net/html"

	"github.com/hydrostack/hydro-go/internal/errors"
	"github.com/hydrostack/hydro-go/pkg/dom"
)

const form = `<html><body>
<div id="c1" hydro hydro-name="Profile">
  <input id="a" name="a" x-hydro-bind value="">
  <input id="b" name="b" x-hydro-bind value="">
  <input id="plain" name="plain" value="">
</div>
<div id="c2" hydro hydro-name="Search"><input id="q" name="q" x-hydro-bind></div>
<input id="orphan" name="orphan" x-hydro-bind>
</body></html>`

type recorder struct {
	mu      sync.Mutex
	flushes []Flush
	hold    chan struct{}
	err     error
}

func (r *recorder) SendBind(ctx context.Context, f Flush) error {
	if r.hold != nil {
		<-r.hold
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flushes = append(r.flushes, f)
	return r.err
}

func (r *recorder) all() []Flush {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Flush(nil), r.flushes...)
}

func setup(t *testing.T, rec *recorder, delay time.Duration) (*Coordinator, *dom.Document) {
	t.Helper()
	doc, err := dom.ParseString(form)
	if err != nil {
		t.Fatal(err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(doc, rec, WithDelay(delay), WithLogger(logger)), doc
}

func input(t *testing.T, doc *dom.Document, sel string) *html.Node {
	t.Helper()
	n, err := dom.Query(doc.Root(), sel)
	if err != nil || n == nil {
		t.Fatalf("Query(%q) = %v, %v", sel, n, err)
	}
	return n
}

func change(doc *dom.Document, n *html.Node, v string) {
	doc.Write(func(*html.Node) { doc.SetValue(n, v) })
}

func fieldMap(f Flush) map[string]string {
	m := make(map[string]string)
	for _, fl := range f.Fields {
		m[fl.Name] = fl.Value
	}
	return m
}

func TestRapidChangesCoalesceIntoOneFlush(t *testing.T) {
	rec := &recorder{}
	c, doc := setup(t, rec, 50*time.Millisecond)
	a := input(t, doc, "#a")
	b := input(t, doc, "#b")
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i, v := range []string{"h", "he", "hel", "hell", "hello"} {
		change(doc, a, v)
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- c.Bind(ctx, a)
		}()
		if i == 2 {
			change(doc, b, "x")
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs <- c.Bind(ctx, b)
			}()
		}
		time.Sleep(2 * time.Millisecond)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Errorf("Bind: %v", err)
		}
	}

	flushes := rec.all()
	if len(flushes) != 1 {
		t.Fatalf("flushes = %d, want 1", len(flushes))
	}
	got := fieldMap(flushes[0])
	if got["a"] != "hello" || got["b"] != "x" || len(got) != 2 {
		t.Errorf("fields = %v, want a=hello b=x", got)
	}
	if flushes[0].URL != "/hydro/Profile" {
		t.Errorf("URL = %q, want /hydro/Profile", flushes[0].URL)
	}
}

func TestFlushSendsBothFieldsAndResetsAccumulator(t *testing.T) {
	rec := &recorder{}
	c, doc := setup(t, rec, 20*time.Millisecond)
	a := input(t, doc, "#a")
	b := input(t, doc, "#b")
	ctx := context.Background()

	change(doc, a, "1")
	change(doc, b, "2")
	done := make(chan error, 2)
	go func() { done <- c.Bind(ctx, a) }()
	go func() { done <- c.Bind(ctx, b) }()
	for i := 0; i < 2; i++ {
		if err := <-done; err != nil {
			t.Fatalf("Bind: %v", err)
		}
	}

	flushes := rec.all()
	if len(flushes) != 1 {
		t.Fatalf("flushes = %d, want 1", len(flushes))
	}
	if got := fieldMap(flushes[0]); got["a"] != "1" || got["b"] != "2" {
		t.Errorf("fields = %v", got)
	}
	if n := c.Pending("/hydro/Profile"); n != 0 {
		t.Errorf("Pending after flush = %d, want 0", n)
	}
}

func TestEditsDuringFlushGoToNextWindow(t *testing.T) {
	rec := &recorder{hold: make(chan struct{})}
	c, doc := setup(t, rec, 5*time.Millisecond)
	a := input(t, doc, "#a")
	ctx := context.Background()

	change(doc, a, "first")
	first := make(chan error, 1)
	go func() { first <- c.Bind(ctx, a) }()

	// The first window flushes and blocks in SendBind.
	time.Sleep(30 * time.Millisecond)
	if n := c.Pending("/hydro/Profile"); n != 0 {
		t.Fatalf("Pending = %d, want 0 once the window is swapped", n)
	}

	change(doc, a, "second")
	second := make(chan error, 1)
	go func() { second <- c.Bind(ctx, a) }()

	rec.hold <- struct{}{}
	rec.hold <- struct{}{}
	if err := <-first; err != nil {
		t.Fatal(err)
	}
	if err := <-second; err != nil {
		t.Fatal(err)
	}

	flushes := rec.all()
	if len(flushes) != 2 {
		t.Fatalf("flushes = %d, want 2", len(flushes))
	}
	if fieldMap(flushes[0])["a"] != "first" || fieldMap(flushes[1])["a"] != "second" {
		t.Errorf("flushes = %+v", flushes)
	}
}

func TestBindIgnoresUnboundInputs(t *testing.T) {
	rec := &recorder{}
	c, doc := setup(t, rec, time.Millisecond)

	if err := c.Bind(context.Background(), input(t, doc, "#plain")); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if len(rec.all()) != 0 {
		t.Error("unbound input should not flush")
	}
}

func TestBindWithoutComponent(t *testing.T) {
	c, doc := setup(t, &recorder{}, time.Millisecond)
	err := c.Bind(context.Background(), input(t, doc, "#orphan"))
	if !errors.HasCode(err, "H001") {
		t.Errorf("err = %v, want H001", err)
	}
}

func TestSeparateURLsFlushSeparately(t *testing.T) {
	rec := &recorder{}
	c, doc := setup(t, rec, 5*time.Millisecond)
	ctx := context.Background()

	done := make(chan error, 2)
	go func() { done <- c.Bind(ctx, input(t, doc, "#a")) }()
	go func() { done <- c.Bind(ctx, input(t, doc, "#q")) }()
	<-done
	<-done

	urls := map[string]bool{}
	for _, f := range rec.all() {
		urls[f.URL] = true
	}
	if !urls["/hydro/Profile"] || !urls["/hydro/Search"] || len(urls) != 2 {
		t.Errorf("flushed URLs = %v", urls)
	}
}

func TestFlushErrorReachesEveryWaiter(t *testing.T) {
	boom := stderrors.New("status 500")
	rec := &recorder{err: boom}
	c, doc := setup(t, rec, 10*time.Millisecond)
	ctx := context.Background()

	done := make(chan error, 2)
	go func() { done <- c.Bind(ctx, input(t, doc, "#a")) }()
	go func() { done <- c.Bind(ctx, input(t, doc, "#b")) }()
	for i := 0; i < 2; i++ {
		if err := <-done; !stderrors.Is(err, boom) {
			t.Errorf("Bind err = %v, want boom", err)
		}
	}
	if c.Pending("/hydro/Profile") != 0 {
		t.Error("failed batch must not be carried over")
	}
}

func TestBindContextCancelled(t *testing.T) {
	c, doc := setup(t, &recorder{}, time.Hour)
	defer c.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := c.Bind(ctx, input(t, doc, "#a"))
	if !stderrors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want deadline exceeded", err)
	}
}

func TestFieldsKeepInsertionOrder(t *testing.T) {
	f := NewFields()
	f.Set("b", "1")
	f.Set("a", "2")
	f.Set("b", "3")

	list := f.List()
	if len(list) != 2 || list[0].Name != "b" || list[0].Value != "3" || list[1].Name != "a" {
		t.Errorf("List() = %+v", list)
	}
	if f.Len() != 2 {
		t.Errorf("Len() = %d, want 2", f.Len())
	}
}
