// Package nettest provides a scripted net.Doer for exercising probe modules
// without network access.
package nettest

import (
	"errors"
	"strings"
	"sync"

	"github.com/valyala/fasthttp"

	"buckettool/pkg/net"
)

// ErrUnscripted is returned for requests with no matching route.
var ErrUnscripted = errors.New("nettest: no scripted response")

// Response is a canned reply
type Response struct {
	Status  int
	Headers [][2]string
	Body    string
	Err     error
}

// Call is a request observed by the fake. Header names are lowercased.
type Call struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    string
}

// Doer answers requests from a route table keyed by "METHOD url".
// Requests without a route fail with ErrUnscripted, which the probe layer
// treats like any other transport failure.
type Doer struct {
	mu     sync.Mutex
	routes map[string]Response
	calls  []Call
}

func NewDoer() *Doer {
	return &Doer{routes: map[string]Response{}}
}

// On scripts the response for method and full url.
func (d *Doer) On(method, url string, resp Response) *Doer {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.routes[method+" "+url] = resp
	return d
}

// Client wraps the fake in a net.Client.
func (d *Doer) Client() *net.Client {
	return net.NewClientWithDoer(d)
}

func (d *Doer) Do(req *fasthttp.Request, resp *fasthttp.Response) error {
	call := Call{
		Method:  string(req.Header.Method()),
		URL:     req.URI().String(),
		Headers: map[string]string{},
		Body:    string(req.Body()),
	}
	req.Header.VisitAll(func(k, v []byte) {
		call.Headers[strings.ToLower(string(k))] = string(v)
	})

	d.mu.Lock()
	d.calls = append(d.calls, call)
	r, ok := d.routes[call.Method+" "+call.URL]
	d.mu.Unlock()

	if !ok {
		return ErrUnscripted
	}
	if r.Err != nil {
		return r.Err
	}
	status := r.Status
	if status == 0 {
		status = fasthttp.StatusOK
	}
	resp.SetStatusCode(status)
	for _, h := range r.Headers {
		resp.Header.Set(h[0], h[1])
	}
	resp.SetBodyString(r.Body)
	return nil
}

// Calls returns a copy of every observed request in order.
func (d *Doer) Calls() []Call {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Call, len(d.calls))
	copy(out, d.calls)
	return out
}

// URLs returns "METHOD url" for every observed request in order.
func (d *Doer) URLs() []string {
	var out []string
	for _, c := range d.Calls() {
		out = append(out, c.Method+" "+c.URL)
	}
	return out
}
