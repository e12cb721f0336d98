package hydro

import (
	"context"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/html"

	"github.com/hydrostack/hydro-go/internal/config"
	"github.com/hydrostack/hydro-go/internal/errors"
	"github.com/hydrostack/hydro-go/pkg/dom"
	"github.com/hydrostack/hydro-go/pkg/protocol"
)

// LoadPage performs a boosted navigation: it fetches url and swaps the
// region matching target with the same region of the response. The
// title follows the response, and the URL is pushed onto the history
// when push is set.
//
// If the fetch fails, or the response has no such region, LoadPage
// falls back to a full navigation to url. The hydro-loading class is on
// the target for the duration either way.
func (c *Client) LoadPage(ctx context.Context, url, target string, push bool) error {
	if target == "" {
		target = protocol.DefaultTarget
	}
	abs := c.resolve(url)

	ctx, span := c.tracer.Start(ctx, "hydro.navigate",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("hydro.url", abs),
			attribute.String("hydro.target", target),
		),
	)
	defer span.End()

	var el *html.Node
	c.doc.Write(func(root *html.Node) {
		el, _ = dom.Query(root, target)
		if el != nil {
			dom.AddClass(el, protocol.ClassLoading)
		}
	})
	if el == nil {
		err := errors.New("H040").WithDetail("selector " + target + " in the current document")
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	defer c.doc.Write(func(*html.Node) {
		dom.RemoveClass(el, protocol.ClassLoading)
	})

	region, title, final, err := c.fetchRegion(ctx, abs, target)
	if err != nil {
		c.logger.Error("boosted navigation failed, loading full page", "url", abs, "error", err)
		span.RecordError(err)
		c.metrics.navigations.WithLabelValues("fallback").Inc()
		return c.Load(ctx, abs)
	}

	var swapErr error
	c.doc.Write(func(*html.Node) {
		swapErr = c.doc.SetInnerHTML(el, dom.InnerHTML(region))
		if swapErr == nil && title != nil {
			c.doc.SetTitle(dom.Text(title))
		}
	})
	if swapErr != nil {
		return errors.New("H022").Wrap(swapErr)
	}

	if push {
		c.history.Push(final)
		c.setLocation(final)
	}
	c.metrics.navigations.WithLabelValues("boosted").Inc()
	c.logger.Debug("page region loaded", "url", final, "target", target)
	c.rewire()
	return nil
}

// fetchRegion GETs url as a boosted request and returns the region
// matching target and the head>title of the response.
func (c *Client) fetchRegion(ctx context.Context, url, target string) (region, title *html.Node, final string, err error) {
	req, err := c.newRequest(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, nil, "", errors.New("H011").Wrap(err)
	}
	req.Header.Set(protocol.HeaderRequest, protocol.HeaderTrue)
	req.Header.Set(protocol.HeaderBoosted, protocol.HeaderTrue)

	root, final, err := c.get(req)
	if err != nil {
		return nil, nil, "", err
	}
	region, _ = dom.Query(root, target)
	if region == nil {
		return nil, nil, "", errors.New("H040").WithDetail("selector " + target + " in the response from " + url)
	}
	title, _ = dom.Query(root, "head > title")
	return region, title, final, nil
}

// get sends req and parses the response as a full document. It also
// returns the final URL after redirects. Every page fetch counts as a
// navigation request in the request metrics.
func (c *Client) get(req *http.Request) (_ *html.Node, _ string, err error) {
	start := time.Now()
	defer func() { c.observe(protocol.TypeNavigation, start, err) }()
	trace.SpanFromContext(req.Context()).SetAttributes(
		attribute.String("hydro.type", protocol.TypeNavigation.String()))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", errors.New("H011").Wrap(err)
	}
	defer resp.Body.Close()

	if !protocol.OK(resp.StatusCode) {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, "", errors.New("H010").
			WithStatus(resp.StatusCode).
			Wrap(&protocol.HTTPError{Method: req.Method, URL: req.URL.String(), Status: resp.StatusCode})
	}

	root, err := html.Parse(resp.Body)
	if err != nil {
		return nil, "", errors.New("H011").Wrap(err)
	}
	return root, resp.Request.URL.String(), nil
}

// Load performs a full navigation: the whole document is replaced,
// pending binds are cancelled, the page configuration is read again and
// the URL is pushed onto the history.
func (c *Client) Load(ctx context.Context, url string) error {
	abs := c.resolve(url)

	ctx, span := c.tracer.Start(ctx, "hydro.load",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("hydro.url", abs)),
	)
	defer span.End()

	req, err := c.newRequest(ctx, http.MethodGet, abs, nil)
	if err != nil {
		return errors.New("H011").Wrap(err)
	}
	root, final, err := c.get(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	page, err := config.PageFrom(root)
	if err != nil {
		c.logger.Warn("ignoring page configuration", "url", final, "error", err)
	}

	c.binds.Stop()
	c.unsubscribeAll()
	c.doc.Replace(root)

	c.mu.Lock()
	c.page = page
	c.mu.Unlock()
	c.setLocation(final)
	c.history.Push(final)

	c.metrics.navigations.WithLabelValues("full").Inc()
	c.logger.Info("page loaded", "url", final, "title", c.title())
	c.rewire()
	return nil
}

// PopState reloads the current history entry into the body without
// pushing, as after a back or forward move.
func (c *Client) PopState(ctx context.Context) error {
	url, ok := c.history.Current()
	if !ok {
		return nil
	}
	c.setLocation(url)
	return c.LoadPage(ctx, url, protocol.DefaultTarget, false)
}

// Back moves one history entry back and restores it. It reports false
// when there is no earlier entry.
func (c *Client) Back(ctx context.Context) (bool, error) {
	if _, ok := c.history.Back(); !ok {
		return false, nil
	}
	return true, c.PopState(ctx)
}

// Forward moves one history entry forward and restores it.
func (c *Client) Forward(ctx context.Context) (bool, error) {
	if _, ok := c.history.Forward(); !ok {
		return false, nil
	}
	return true, c.PopState(ctx)
}

// Title returns the current document title.
func (c *Client) Title() string {
	return c.title()
}

func (c *Client) title() string {
	var t string
	c.doc.Read(func(*html.Node) { t = c.doc.Title() })
	return t
}
