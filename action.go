package hydro

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"

	"golang.org/x/net/html"

	"github.com/hydrostack/hydro-go/internal/errors"
	"github.com/hydrostack/hydro-go/pkg/bind"
	"github.com/hydrostack/hydro-go/pkg/dom"
	"github.com/hydrostack/hydro-go/pkg/protocol"
)

// EventSubmit is the event name that makes Action send the enclosing
// form.
const EventSubmit = "submit"

// Action runs the x-hydro-action of el. If the focused element is a
// dirty bound input, its bind is flushed first so the action sees the
// latest value. For the submit event the closest form is sent as the
// body; otherwise the body is an empty form.
func (c *Client) Action(ctx context.Context, el *html.Node, eventName string) error {
	var url string
	var flush *html.Node
	c.doc.Read(func(*html.Node) {
		url = dom.AttrOr(el, protocol.AttrAction, "")
		if active := c.doc.ActiveElement(); active != nil &&
			dom.HasAttr(active, protocol.AttrBind) && c.doc.IsDirty(active) {
			flush = active
		}
	})
	if url == "" {
		return errors.New("H004").WithDetail("element " + describe(el))
	}

	if flush != nil {
		if err := c.binds.Bind(ctx, flush); err != nil {
			return err
		}
	}

	var fields []dom.Field
	if eventName == EventSubmit {
		c.doc.Read(func(*html.Node) {
			if form := dom.Closest(el, "form"); form != nil {
				fields = c.doc.FormFields(form)
			}
		})
	}
	body, contentType, err := encodeForm(fields)
	if err != nil {
		return err
	}

	return c.Request(ctx, Request{
		Element:     el,
		URL:         url,
		ContentType: contentType,
		Body:        body,
		Type:        protocol.TypeAction,
	})
}

// Event sends detail as JSON to the path named by el's
// x-on-hydro-event descriptor.
func (c *Client) Event(ctx context.Context, el *html.Node, detail json.RawMessage) error {
	r, err := c.eventRequest(el, detail)
	if err != nil {
		return err
	}
	return c.Request(ctx, r)
}

func (c *Client) eventRequest(el *html.Node, detail json.RawMessage) (Request, error) {
	var raw string
	c.doc.Read(func(*html.Node) {
		raw = dom.AttrOr(el, protocol.AttrOnEvent, "")
	})
	desc, err := protocol.ParseEventDescriptor(raw)
	if err != nil {
		return Request{}, errors.New("H005").Wrap(err)
	}
	if len(detail) == 0 {
		detail = json.RawMessage("null")
	}
	return Request{
		Element:     el,
		URL:         desc.Path,
		ContentType: "application/json",
		Body:        detail,
		Type:        protocol.TypeEvent,
		EventName:   desc.Name,
	}, nil
}

// Bind records the current value of a bound input and waits until its
// debounced batch has been sent.
func (c *Client) Bind(ctx context.Context, el *html.Node) error {
	return c.binds.Bind(ctx, el)
}

// SendBind sends one flushed bind batch. It implements bind.Sender.
func (c *Client) SendBind(ctx context.Context, f bind.Flush) error {
	c.metrics.bindFlushes.Inc()
	c.metrics.bindFields.Add(float64(len(f.Fields)))

	body, contentType, err := encodeForm(f.Fields)
	if err != nil {
		return err
	}
	return c.Request(ctx, Request{
		Element:     f.Element,
		URL:         f.URL,
		ContentType: contentType,
		Body:        body,
		Type:        protocol.TypeBind,
	})
}

// encodeForm encodes fields as multipart/form-data, the encoding
// browsers use for FormData bodies.
func encodeForm(fields []dom.Field) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range fields {
		if err := w.WriteField(f.Name, f.Value); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
