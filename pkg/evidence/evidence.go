// Package evidence renders probe exchanges as raw HTTP/1.1 message text,
// suitable for pasting into a replay tool.
package evidence

import (
	"net/url"
	"strconv"
	"strings"

	"buckettool/pkg/core"
)

const crlf = "\r\n"

// RenderRequest renders an outgoing request. The Host line is derived from
// rawURL; Host entries in headers are dropped so it is never written twice.
func RenderRequest(method, rawURL string, headers []core.Header, body string) string {
	var b strings.Builder

	target, host := rawURL, ""
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		target = u.EscapedPath()
		if target == "" {
			target = "/"
		}
		if u.RawQuery != "" {
			target += "?" + u.RawQuery
		}
		host = u.Host
	}

	b.WriteString(method + " " + target + " HTTP/1.1" + crlf)
	if host != "" {
		b.WriteString("Host: " + host + crlf)
	}
	for _, h := range headers {
		if strings.EqualFold(h.Name, "host") {
			continue
		}
		b.WriteString(h.Name + ": " + h.Value + crlf)
	}
	b.WriteString(crlf)
	b.WriteString(body)
	return b.String()
}

// RenderResponse renders an incoming response.
func RenderResponse(status int, statusText string, headers []core.Header, body string) string {
	var b strings.Builder

	b.WriteString("HTTP/1.1 " + strconv.Itoa(status) + " " + statusText + crlf)
	for _, h := range headers {
		b.WriteString(h.Name + ": " + h.Value + crlf)
	}
	b.WriteString(crlf)
	b.WriteString(body)
	return b.String()
}

// StatusCode extracts the status code from a rendered response, or 0.
func StatusCode(rendered string) int {
	line, _, _ := strings.Cut(rendered, crlf)
	fields := strings.Fields(line)
	if len(fields) < 2 || !strings.HasPrefix(fields[0], "HTTP/") {
		return 0
	}
	code, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0
	}
	return code
}
