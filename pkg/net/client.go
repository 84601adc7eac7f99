package net

import (
	"context"
	"crypto/tls"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"buckettool/pkg/core"
)

// Doer sends a single request. *fasthttp.Client satisfies it; tests
// substitute a scripted fake.
type Doer interface {
	Do(req *fasthttp.Request, resp *fasthttp.Response) error
}

// Request describes one probe request
type Request struct {
	Method  string
	URL     string
	Headers []core.Header
	Body    string
}

// Exchange is a completed request/response pair, detached from fasthttp's pools
type Exchange struct {
	Request    Request
	Status     int
	StatusText string
	Headers    []core.Header
	Body       []byte
}

// Header returns the first response header matching name, case-insensitively.
func (e *Exchange) Header(name string) string {
	for _, h := range e.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// Client is a wrapper around fasthttp.Client
type Client struct {
	doer      Doer
	userAgent string
}

// NewClient creates a new HTTP client from the engine configuration
func NewClient(cfg *core.Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	maxConns := cfg.MaxConnsPerHost
	if maxConns <= 0 {
		maxConns = 512
	}
	return &Client{
		doer: &fasthttp.Client{
			MaxConnsPerHost:               maxConns,
			ReadTimeout:                   timeout,
			WriteTimeout:                  timeout,
			NoDefaultUserAgentHeader:      true,
			DisableHeaderNamesNormalizing: true,
			TLSConfig:                     &tls.Config{InsecureSkipVerify: cfg.InsecureTLS},
		},
		userAgent: cfg.UserAgent,
	}
}

// NewClientWithDoer wraps an existing Doer.
func NewClientWithDoer(doer Doer) *Client {
	return &Client{doer: doer}
}

// Do sends r and returns the copied exchange. The context is only checked
// before the request is issued; fasthttp requests cannot be aborted mid-flight.
func (c *Client) Do(ctx context.Context, r Request) (*Exchange, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	if c.userAgent != "" && !hasHeader(r.Headers, "User-Agent") {
		r.Headers = append([]core.Header{{Name: "User-Agent", Value: c.userAgent}}, r.Headers...)
	}

	req.Header.DisableNormalizing()
	req.SetRequestURI(r.URL)
	req.Header.SetMethod(r.Method)
	for _, h := range r.Headers {
		req.Header.Set(h.Name, h.Value)
	}
	if r.Body != "" {
		req.SetBodyString(r.Body)
	}
	if r.Method == fasthttp.MethodHead {
		resp.SkipBody = true
	}

	if err := c.doer.Do(req, resp); err != nil {
		return nil, err
	}

	ex := &Exchange{
		Request:    r,
		Status:     resp.StatusCode(),
		StatusText: fasthttp.StatusMessage(resp.StatusCode()),
	}
	resp.Header.VisitAll(func(k, v []byte) {
		ex.Headers = append(ex.Headers, core.Header{Name: string(k), Value: string(v)})
	})

	// Copy body because ReleaseResponse recycles it
	ex.Body = make([]byte, len(resp.Body()))
	copy(ex.Body, resp.Body())

	return ex, nil
}

// Head performs a HEAD request and returns the response headers only
func (c *Client) Head(ctx context.Context, url string) (*Exchange, error) {
	return c.Do(ctx, Request{Method: fasthttp.MethodHead, URL: url})
}

func hasHeader(headers []core.Header, name string) bool {
	for _, h := range headers {
		if strings.EqualFold(h.Name, name) {
			return true
		}
	}
	return false
}
