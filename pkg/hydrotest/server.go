package hydrotest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hydrostack/hydro-go/pkg/protocol"
)

// Call is one recorded request.
type Call struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
	// Form holds multipart fields, when the body is a form.
	Form map[string][]string
}

// Boosted reports whether the call was a boosted page load.
func (c *Call) Boosted() bool {
	return c.Header.Get(protocol.HeaderBoosted) == protocol.HeaderTrue
}

// IDs decodes the Hydro-All-Ids header.
func (c *Call) IDs() []string {
	var ids []string
	_ = json.Unmarshal([]byte(c.Header.Get(protocol.HeaderAllIDs)), &ids)
	return ids
}

// FormValue returns the first value of a form field.
func (c *Call) FormValue(name string) string {
	if v := c.Form[name]; len(v) > 0 {
		return v[0]
	}
	return ""
}

// Reply is the answer to a component request.
type Reply struct {
	// Status defaults to 200.
	Status int

	// Markup is the response body.
	Markup string

	// Location sets Hydro-Location.
	Location *protocol.Location

	// Redirect sets Hydro-Redirect.
	Redirect string

	// Triggers sets Hydro-Trigger.
	Triggers []protocol.Trigger

	// Header holds extra raw headers, applied last.
	Header http.Header

	// Delay holds the response back.
	Delay time.Duration
}

// Handler answers a component request.
type Handler func(call *Call) Reply

// Server is a fake Hydro application.
type Server struct {
	*httptest.Server
	Router chi.Router

	mu    sync.Mutex
	calls []*Call
}

// New starts a server that is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{Router: chi.NewRouter()}
	s.Router.Use(middleware.Recoverer)
	s.Router.Use(s.record)
	s.Server = httptest.NewServer(s.Router)
	t.Cleanup(s.Close)
	return s
}

// Page serves markup as a full page on GET path.
func (s *Server) Page(path, markup string) {
	s.Router.Get(path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, markup)
	})
}

// Handle answers POST path with h.
func (s *Server) Handle(path string, h Handler) {
	s.Router.Post(path, func(w http.ResponseWriter, r *http.Request) {
		call := s.last(r)
		reply := h(call)
		if reply.Delay > 0 {
			select {
			case <-time.After(reply.Delay):
			case <-r.Context().Done():
				return
			}
		}
		writeReply(w, reply)
	})
}

// Reply answers POST path with a fixed reply.
func (s *Server) Reply(path string, reply Reply) {
	s.Handle(path, func(*Call) Reply { return reply })
}

func writeReply(w http.ResponseWriter, reply Reply) {
	h := w.Header()
	h.Set("Content-Type", "text/html; charset=utf-8")
	if reply.Location != nil {
		b, _ := json.Marshal(reply.Location)
		h.Set(protocol.HeaderLocation, string(b))
	}
	if reply.Redirect != "" {
		h.Set(protocol.HeaderRedirect, reply.Redirect)
	}
	if len(reply.Triggers) > 0 {
		b, _ := json.Marshal(reply.Triggers)
		h.Set(protocol.HeaderTrigger, string(b))
	}
	for k, vs := range reply.Header {
		h[k] = vs
	}
	status := reply.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = io.WriteString(w, reply.Markup)
}

// record stores every request before routing it.
func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))

		call := &Call{
			Method: r.Method,
			Path:   r.URL.Path,
			Header: r.Header.Clone(),
			Body:   body,
			Form:   parseForm(r.Header.Get("Content-Type"), body),
		}
		s.mu.Lock()
		s.calls = append(s.calls, call)
		s.mu.Unlock()

		next.ServeHTTP(w, r.WithContext(withCall(r.Context(), call)))
	})
}

func (s *Server) last(r *http.Request) *Call {
	if c := callFrom(r.Context()); c != nil {
		return c
	}
	return &Call{Method: r.Method, Path: r.URL.Path, Header: r.Header}
}

func parseForm(contentType string, body []byte) map[string][]string {
	mt, params, err := mime.ParseMediaType(contentType)
	if err != nil || mt != "multipart/form-data" {
		return nil
	}
	form, err := multipart.NewReader(bytes.NewReader(body), params["boundary"]).ReadForm(1 << 20)
	if err != nil {
		return nil
	}
	return form.Value
}

// Calls returns every recorded request.
func (s *Server) Calls() []*Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Call(nil), s.calls...)
}

// CallsTo returns the recorded requests to path.
func (s *Server) CallsTo(path string) []*Call {
	var out []*Call
	for _, c := range s.Calls() {
		if c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

// URLFor returns the absolute URL of path.
func (s *Server) URLFor(path string) string {
	return s.Server.URL + path
}

// Document builds a full page with a title and body markup. Extra head
// markup, such as the hydro-config meta tag, goes in head.
func Document(title, body string, head ...string) string {
	return fmt.Sprintf("<!DOCTYPE html><html><head><title>%s</title>%s</head><body>%s</body></html>",
		html.EscapeString(title), strings.Join(head, ""), body)
}

// ConfigMeta builds the hydro-config meta tag carrying an antiforgery pair.
func ConfigMeta(headerName, token string) string {
	b, _ := json.Marshal(map[string]any{
		"Antiforgery": map[string]string{"HeaderName": headerName, "Token": token},
	})
	return `<meta name="hydro-config" content="` + html.EscapeString(string(b)) + `">`
}

// Component builds component markup: a root carrying the hydro marker,
// the state snapshot script and inner markup.
func Component(id, name, state, inner string) string {
	return fmt.Sprintf(`<div id="%s" hydro hydro-name="%s"><script type="application/json" data-id="%s">%s</script>%s</div>`,
		id, name, id, state, inner)
}
