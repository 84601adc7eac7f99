package engine

import (
	"net/url"
	"strings"
)

// Blacklist holds hosts that must never be probed
type Blacklist struct {
	hosts map[string]struct{}
}

// NewBlacklist accepts bare hosts or full URLs; URLs are reduced to their host.
func NewBlacklist(entries []string) *Blacklist {
	b := &Blacklist{hosts: make(map[string]struct{}, len(entries))}
	for _, e := range entries {
		if h := normalizeHost(e); h != "" {
			b.hosts[h] = struct{}{}
		}
	}
	return b
}

// Blocked reports whether the host of target is listed. A nil Blacklist blocks nothing.
func (b *Blacklist) Blocked(target string) bool {
	if b == nil || len(b.hosts) == 0 {
		return false
	}
	_, ok := b.hosts[normalizeHost(target)]
	return ok
}

// Len returns the number of distinct hosts.
func (b *Blacklist) Len() int {
	if b == nil {
		return 0
	}
	return len(b.hosts)
}

func normalizeHost(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if strings.Contains(s, "://") {
		u, err := url.Parse(s)
		if err != nil {
			return ""
		}
		return strings.ToLower(u.Hostname())
	}
	// bare host, possibly with port or path
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	if h, _, ok := strings.Cut(s, ":"); ok {
		s = h
	}
	return strings.ToLower(s)
}
