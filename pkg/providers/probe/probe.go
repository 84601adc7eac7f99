// Package probe holds the machinery shared by the vendor modules: canonical
// endpoint construction, response predicates and the sequential executor.
package probe

import (
	"context"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"

	"buckettool/internal/logger"
	"buckettool/pkg/core"
	"buckettool/pkg/evidence"
	"buckettool/pkg/net"
)

// Gate decides whether a probe runs for the given options. A nil Gate always runs.
type Gate func(opts core.Options) bool

// Predicate evaluates a completed exchange
type Predicate func(ex *net.Exchange) bool

// Probe is one fixed check of a vendor module
type Probe struct {
	Type     core.FindingType
	Method   string
	Endpoint func(root Root) string
	Headers  []core.Header
	Body     string
	Match    Predicate
	Detail   string
	Gate     Gate
}

// Module is an ordered probe sequence for one vendor
type Module struct {
	vendor core.Vendor
	client *net.Client
	probes []Probe
}

// NewModule creates a module that runs probes in the given order.
func NewModule(vendor core.Vendor, client *net.Client, probes []Probe) *Module {
	return &Module{vendor: vendor, client: client, probes: probes}
}

func (m *Module) Vendor() core.Vendor {
	return m.vendor
}

// Probe runs every enabled probe sequentially and collects the findings.
func (m *Module) Probe(ctx context.Context, target string, opts core.Options) []core.Finding {
	root := Canonical(target)
	findings := []core.Finding{}
	for _, p := range m.probes {
		if ctx.Err() != nil {
			break
		}
		if p.Gate != nil && !p.Gate(opts) {
			continue
		}
		if f, ok := m.run(ctx, root, p); ok {
			findings = append(findings, f)
		}
	}
	return findings
}

// run issues exactly one request for p. Transport errors are reported as not found.
func (m *Module) run(ctx context.Context, root Root, p Probe) (core.Finding, bool) {
	endpoint := p.Endpoint(root)
	log := logger.Log().WithFields(logrus.Fields{
		"vendor": m.vendor.String(),
		"check":  string(p.Type),
		"url":    endpoint,
	})

	ex, err := m.client.Do(ctx, net.Request{
		Method:  p.Method,
		URL:     endpoint,
		Headers: p.Headers,
		Body:    p.Body,
	})
	if err != nil {
		log.WithError(err).Debug("probe failed")
		return core.Finding{}, false
	}
	if !p.Match(ex) {
		log.WithField("status", ex.Status).Debug("probe negative")
		return core.Finding{}, false
	}
	log.WithField("status", ex.Status).Debug("probe positive")

	return core.Finding{
		Type:     p.Type,
		Vendor:   m.vendor,
		URL:      endpoint,
		Found:    true,
		Request:  evidence.RenderRequest(ex.Request.Method, ex.Request.URL, ex.Request.Headers, ex.Request.Body),
		Response: evidence.RenderResponse(ex.Status, ex.StatusText, ex.Headers, string(ex.Body)),
		Detail:   p.Detail,
	}, true
}

// Root is the canonical bucket URL: the target with query and fragment removed.
type Root string

// Canonical strips userinfo, query parameters and fragment from target. An
// empty path becomes "/". Targets that are not absolute http(s) URLs are
// returned unmodified.
func Canonical(target string) Root {
	u, err := url.Parse(target)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return Root(target)
	}
	// fasthttp would turn userinfo into an Authorization header
	u.User = nil
	u.RawQuery = ""
	u.ForceQuery = false
	u.Fragment = ""
	u.RawFragment = ""
	if u.Path == "" {
		u.Path = "/"
		u.RawPath = ""
	}
	return Root(u.String())
}

// String returns the root itself.
func (r Root) String() string {
	return string(r)
}

// Query appends "?sub" directly to the root.
func (r Root) Query(sub string) string {
	return string(r) + "?" + sub
}

// Sub appends "/?sub", never doubling the slash.
func (r Root) Sub(sub string) string {
	return r.slash() + "?" + sub
}

// Object appends "/name", never doubling the slash.
func (r Root) Object(name string) string {
	return r.slash() + name
}

func (r Root) slash() string {
	s := string(r)
	if strings.HasSuffix(s, "/") {
		return s
	}
	return s + "/"
}

// Endpoint helpers usable as Probe.Endpoint.

func AtRoot(root Root) string { return root.String() }

func AtQuery(sub string) func(Root) string {
	return func(root Root) string { return root.Query(sub) }
}

func AtSub(sub string) func(Root) string {
	return func(root Root) string { return root.Sub(sub) }
}

func AtObject(name string) func(Root) string {
	return func(root Root) string { return root.Object(name) }
}

// Gates

func IfACL(opts core.Options) bool    { return opts.CheckACL }
func IfPolicy(opts core.Options) bool { return opts.CheckPolicy }
