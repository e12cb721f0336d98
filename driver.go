package hydro

import (
	"context"
	stderrors "errors"
	"strconv"
	"sync"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/hydrostack/hydro-go/internal/errors"
	"github.com/hydrostack/hydro-go/pkg/component"
	"github.com/hydrostack/hydro-go/pkg/dom"
	"github.com/hydrostack/hydro-go/pkg/events"
	"github.com/hydrostack/hydro-go/pkg/protocol"
)

// Query returns the first element of the live document matching
// selector, or nil.
func (c *Client) Query(selector string) (*html.Node, error) {
	var n *html.Node
	var err error
	c.doc.Read(func(root *html.Node) {
		n, err = dom.Query(root, selector)
	})
	return n, err
}

// Focus makes el the focused element.
func (c *Client) Focus(el *html.Node) {
	c.doc.Write(func(*html.Node) {
		c.doc.Focus(el)
	})
}

// Click clicks el. Links inside an x-boost region are followed as
// boosted navigations, an action listening for click runs, and a submit
// button submits its form.
func (c *Client) Click(ctx context.Context, el *html.Node) error {
	var link, form *html.Node
	var boosted bool
	c.doc.Read(func(*html.Node) {
		if a := dom.Closest(el, "a[href]"); a != nil {
			link = a
			boosted = dom.Closest(a, "["+protocol.AttrBoost+"]") != nil
		}
		if isSubmitter(el) {
			form = dom.Closest(el, "form")
		}
	})
	if link != nil && boosted {
		return c.FollowLink(ctx, link)
	}

	handled, err := c.fire(ctx, el, "click")
	if handled || err != nil {
		return err
	}
	if form != nil {
		return c.Submit(ctx, form)
	}
	if link != nil {
		return c.FollowLink(ctx, link)
	}
	return nil
}

// Submit submits form, running its submit action if it has one.
func (c *Client) Submit(ctx context.Context, form *html.Node) error {
	_, err := c.fire(ctx, form, EventSubmit)
	return err
}

// Input focuses el and types value into it without firing change, as a
// user who has not left the field yet. An action run next flushes the
// pending bind first.
func (c *Client) Input(el *html.Node, value string) {
	c.doc.Write(func(*html.Node) {
		c.doc.Focus(el)
		c.doc.SetValue(el, value)
	})
}

// Change sets the value of a form control and fires change: bound
// inputs are bound, and an action listening for change runs.
func (c *Client) Change(ctx context.Context, el *html.Node, value string) error {
	c.doc.Write(func(*html.Node) {
		c.doc.SetValue(el, value)
	})
	return c.changed(ctx, el)
}

// Check sets the checked state of a checkbox or radio and fires change.
func (c *Client) Check(ctx context.Context, el *html.Node, checked bool) error {
	c.doc.Write(func(*html.Node) {
		c.doc.SetChecked(el, checked)
	})
	return c.changed(ctx, el)
}

func (c *Client) changed(ctx context.Context, el *html.Node) error {
	if err := c.binds.Bind(ctx, el); err != nil {
		return err
	}
	_, err := c.fire(ctx, el, "change")
	return err
}

// FollowLink follows a link. Links inside an x-boost region load into
// the body; others trigger a full navigation.
func (c *Client) FollowLink(ctx context.Context, a *html.Node) error {
	var href string
	var boosted bool
	c.doc.Read(func(*html.Node) {
		href = dom.AttrOr(a, "href", "")
		boosted = dom.Closest(a, "["+protocol.AttrBoost+"]") != nil
	})
	if href == "" {
		return nil
	}
	if boosted {
		return c.LoadPage(ctx, href, protocol.DefaultTarget, true)
	}
	return c.Load(ctx, href)
}

// Autorun runs every action marked hydro-autorun, each after its own
// hydro-delay, and waits for all of them.
func (c *Client) Autorun(ctx context.Context) error {
	var nodes []*html.Node
	c.doc.Read(func(root *html.Node) {
		nodes, _ = dom.QueryAll(root, "["+protocol.AttrAutorun+"]["+protocol.AttrAction+"]")
	})

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, n := range nodes {
		wg.Add(1)
		go func(n *html.Node) {
			defer wg.Done()
			err := c.delayed(ctx, n, func() error { return c.Action(ctx, n, "") })
			if err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}(n)
	}
	wg.Wait()
	return stderrors.Join(errs...)
}

// fire runs the action of the nearest element from el upward whose
// trigger event is name. It reports whether an action was found.
func (c *Client) fire(ctx context.Context, el *html.Node, name string) (bool, error) {
	var target *html.Node
	c.doc.Read(func(*html.Node) {
		for n := el; n != nil; n = n.Parent {
			if dom.HasAttr(n, protocol.AttrAction) && triggerEvent(n) == name {
				target = n
				return
			}
		}
	})
	if target == nil {
		return false, nil
	}
	return true, c.delayed(ctx, target, func() error {
		return c.Action(ctx, target, name)
	})
}

// triggerEvent is the event an action element listens for: hydro-event
// if set, submit for forms, click otherwise.
func triggerEvent(n *html.Node) string {
	if ev := dom.AttrOr(n, protocol.AttrEvent, ""); ev != "" {
		return ev
	}
	if n.DataAtom == atom.Form {
		return EventSubmit
	}
	return "click"
}

// delayed runs fn after the element's hydro-delay in milliseconds.
func (c *Client) delayed(ctx context.Context, el *html.Node, fn func() error) error {
	var raw string
	c.doc.Read(func(*html.Node) {
		raw = dom.AttrOr(el, protocol.AttrDelay, "")
	})
	if ms, err := strconv.Atoi(raw); err == nil && ms > 0 {
		t := time.NewTimer(time.Duration(ms) * time.Millisecond)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fn()
}

func isSubmitter(n *html.Node) bool {
	switch n.DataAtom {
	case atom.Button:
		t := dom.AttrOr(n, "type", "submit")
		return t == "submit" || t == ""
	case atom.Input:
		return dom.InputType(n) == "submit"
	}
	return false
}

// WireEvents subscribes every x-on-hydro-event element of the document
// to "global:<name>" and "<component-id>:<name>" on the bus. A delivered
// event queues an event request for the element. Subscriptions are
// renewed after every reconcile and navigation until Close. It returns
// the number of elements wired.
func (c *Client) WireEvents() (int, error) {
	c.mu.Lock()
	c.wired = true
	c.mu.Unlock()
	return c.wire()
}

// rewire renews subscriptions once WireEvents has been called.
func (c *Client) rewire() {
	c.mu.Lock()
	wired := c.wired
	c.mu.Unlock()
	if !wired {
		return
	}
	if _, err := c.wire(); err != nil {
		c.logger.Warn("some event listeners were not wired", "error", err)
	}
}

type listener struct {
	el   *html.Node
	comp component.Component
	desc protocol.EventDescriptor
}

func (c *Client) wire() (int, error) {
	var (
		found []listener
		errs  []error
	)
	c.doc.Read(func(root *html.Node) {
		nodes, _ := dom.QueryAll(root, "["+protocol.AttrOnEvent+"]")
		for _, n := range nodes {
			comp, ok := component.Locate(n)
			if !ok {
				errs = append(errs, errors.New("H001").WithDetail("event listener "+describe(n)))
				continue
			}
			desc, err := protocol.ParseEventDescriptor(dom.AttrOr(n, protocol.AttrOnEvent, ""))
			if err != nil {
				errs = append(errs, errors.New("H005").Wrap(err))
				continue
			}
			found = append(found, listener{el: n, comp: comp, desc: desc})
		}
	})

	c.unsubscribeAll()
	var subs []func()
	for _, l := range found {
		handler := c.eventHandler(l.el)
		subs = append(subs,
			c.bus.Subscribe(protocol.EventName(GlobalScope, l.desc.Name), handler),
			c.bus.Subscribe(protocol.EventName(l.comp.ID, l.desc.Name), handler),
		)
	}
	c.mu.Lock()
	c.unwire = subs
	c.mu.Unlock()

	return len(found), stderrors.Join(errs...)
}

// eventHandler queues the event request synchronously, so requests are
// queued in dispatch order, and does not wait for it: the dispatching
// request is still running and holds the queue.
func (c *Client) eventHandler(el *html.Node) events.Handler {
	return func(ev events.Event) {
		r, err := c.eventRequest(el, ev.Detail)
		if err != nil {
			c.logger.Error("event request", "event", ev.Name, "error", err)
			return
		}
		if _, err := c.enqueue(c.ctx, r); err != nil {
			c.logger.Error("event request", "event", ev.Name, "error", err)
		}
	}
}

func (c *Client) unsubscribeAll() {
	c.mu.Lock()
	subs := c.unwire
	c.unwire = nil
	c.mu.Unlock()
	for _, unsub := range subs {
		unsub()
	}
}
