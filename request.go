package hydro

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/html"

	"github.com/hydrostack/hydro-go/internal/errors"
	"github.com/hydrostack/hydro-go/pkg/component"
	"github.com/hydrostack/hydro-go/pkg/dom"
	"github.com/hydrostack/hydro-go/pkg/protocol"
	"github.com/hydrostack/hydro-go/pkg/queue"
	"github.com/hydrostack/hydro-go/pkg/reconcile"
)

// Request is one component request.
type Request struct {
	// Element is the element acting for the component.
	Element *html.Node

	// URL is the endpoint, relative to the current page.
	URL string

	// ContentType is sent when set.
	ContentType string

	// Body is the request body.
	Body []byte

	// Type is what caused the request.
	Type protocol.RequestType

	// EventName is sent as Hydro-Event-Name for event requests.
	EventName string
}

// Request sends r through the request queue and waits for it. The
// element's component is resolved before queueing; everything else
// (state snapshot, id manifest) is read when the request runs, after
// every earlier request has been applied.
//
// A non-success status yields an H010 error wrapping a
// *protocol.HTTPError and leaves the document untouched.
func (c *Client) Request(ctx context.Context, r Request) error {
	t, err := c.enqueue(ctx, r)
	if err != nil {
		return err
	}
	return t.Wait(ctx)
}

// enqueue resolves the component, applies the pending affordances and
// queues the request. It does not wait.
func (c *Client) enqueue(ctx context.Context, r Request) (*queue.Ticket, error) {
	var (
		comp      component.Component
		parent    component.Component
		found     bool
		hasParent bool
	)
	c.doc.Read(func(*html.Node) {
		comp, found = component.Locate(r.Element)
		if found {
			parent, hasParent = component.LocateParent(comp)
		}
	})
	if !found {
		return nil, errors.New("H001").WithDetail("acting element " + describe(r.Element))
	}

	release := c.markPending(r)

	// The unit must run even if ctx ends while queued so the element is
	// always released; ctx is checked inside instead.
	t := c.queue.Enqueue(context.WithoutCancel(ctx), lane, func(context.Context) error {
		defer release()
		if err := ctx.Err(); err != nil {
			return err
		}
		return c.execute(ctx, r, comp, parent, hasParent)
	})
	return t, nil
}

// markPending disables the element of a sourced request and schedules
// the pending class. The returned func reverts both.
func (c *Client) markPending(r Request) (release func()) {
	if !r.Type.Sourced() {
		return func() {}
	}

	var finished bool
	c.doc.Write(func(*html.Node) {
		c.doc.SetDisabled(r.Element, true)
	})
	timer := time.AfterFunc(c.cfg.PendingDelay, func() {
		c.doc.Write(func(*html.Node) {
			if !finished {
				dom.AddClass(r.Element, protocol.ClassRequest)
			}
		})
	})

	var once sync.Once
	return func() {
		once.Do(func() {
			timer.Stop()
			c.doc.Write(func(*html.Node) {
				finished = true
				dom.RemoveClass(r.Element, protocol.ClassRequest)
				c.doc.SetDisabled(r.Element, false)
			})
		})
	}
}

func (c *Client) execute(ctx context.Context, r Request, comp, parent component.Component, hasParent bool) (err error) {
	id := newRequestID()
	logger := c.logger.With(
		slog.String("request_id", id),
		slog.String("component", comp.ID),
		slog.String("type", r.Type.String()),
		slog.String("url", r.URL),
	)

	ctx, span := c.tracer.Start(ctx, "hydro."+r.Type.String(),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("hydro.request_id", id),
			attribute.String("hydro.component", comp.ID),
			attribute.String("hydro.component_name", comp.Name),
			attribute.String("hydro.url", r.URL),
		),
	)
	start := time.Now()
	defer func() {
		c.observe(r.Type, start, err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if c.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.RequestTimeout)
		defer cancel()
	}

	req, err := c.buildRequest(ctx, r, comp)
	if err != nil {
		return err
	}

	logger.Debug("hydro request")
	resp, err := c.http.Do(req)
	if err != nil {
		return errors.New("H011").Wrap(err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if !protocol.OK(resp.StatusCode) {
		_, _ = io.Copy(io.Discard, resp.Body)
		return errors.New("H010").
			WithStatus(resp.StatusCode).
			Wrap(&protocol.HTTPError{Method: req.Method, URL: req.URL.String(), Status: resp.StatusCode})
	}

	markup, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.New("H011").Wrap(err)
	}

	// A redirecting response abandons the page, so its markup is not
	// applied.
	if resp.Header.Get(protocol.HeaderRedirect) == "" {
		if err := c.apply(logger, span, comp, markup); err != nil {
			return err
		}
	}

	c.dispatchEffects(ctx, logger, resp.Header, parent, hasParent)
	return nil
}

// apply reconciles the component with the response markup.
func (c *Client) apply(logger *slog.Logger, span trace.Span, comp component.Component, markup []byte) error {
	var patchErr error
	c.doc.Write(func(*html.Node) {
		stats, err := reconcile.Reconcile(c.doc, comp, string(markup))
		if err != nil {
			patchErr = err
			return
		}
		c.metrics.patchesApplied.Add(float64(stats.Patches()))
		span.SetAttributes(attribute.Int("hydro.patches", stats.Patches()))
		logger.Debug("component reconciled",
			"merged", stats.Merged, "skipped", stats.Skipped,
			"inserted", stats.Inserted, "removed", stats.Removed)
	})
	if patchErr != nil {
		return patchErr
	}
	c.rewire()
	return nil
}

// buildRequest reads the component state and assembles the headers.
func (c *Client) buildRequest(ctx context.Context, r Request, comp component.Component) (*http.Request, error) {
	var (
		ids        []string
		model      string
		hasModel   bool
		parameters string
	)
	c.doc.Read(func(*html.Node) {
		ids = component.IDs(comp)
		model, hasModel = component.State(comp)
		parameters = dom.AttrOr(r.Element, protocol.AttrParameters, "")
	})
	if !hasModel {
		return nil, errors.New("H002").WithDetail("component " + comp.ID)
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.resolve(r.URL), r.Body)
	if err != nil {
		return nil, errors.New("H011").Wrap(err)
	}

	allIDs, _ := json.Marshal(ids)
	req.Header.Set(protocol.HeaderRequest, protocol.HeaderTrue)
	if r.ContentType != "" {
		req.Header.Set("Content-Type", r.ContentType)
	}
	if af := c.antiforgery(); af != nil {
		req.Header.Set(af.HeaderName, af.Token)
	}
	req.Header.Set(protocol.HeaderAllIDs, string(allIDs))
	req.Header.Set(protocol.HeaderModel, model)
	if r.Type == protocol.TypeEvent && r.EventName != "" {
		req.Header.Set(protocol.HeaderEventName, r.EventName)
	}
	if parameters != "" {
		req.Header.Set(protocol.HeaderParameters, parameters)
	}
	return req, nil
}

func (c *Client) observe(t protocol.RequestType, start time.Time, err error) {
	outcome := "ok"
	switch {
	case errors.HasCode(err, "H010"):
		outcome = "http_error"
	case err != nil:
		outcome = "error"
	}
	c.metrics.requestsTotal.WithLabelValues(t.String(), outcome).Inc()
	c.metrics.requestDuration.WithLabelValues(t.String()).Observe(time.Since(start).Seconds())
}

func bodyReader(b []byte) io.Reader {
	if b == nil {
		return nil
	}
	return bytes.NewReader(b)
}

func describe(n *html.Node) string {
	if n == nil {
		return "<nil>"
	}
	if id := dom.AttrOr(n, "id", ""); id != "" {
		return "<" + n.Data + " id=" + id + ">"
	}
	return "<" + n.Data + ">"
}
