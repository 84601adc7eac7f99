package core

import (
	"context"
)

// Provider defines the interface for a vendor probe module
type Provider interface {
	Vendor() Vendor
	// Probe runs the vendor's fixed probe sequence against target and returns
	// the findings in execution order. It never fails; probes that error are
	// treated as not found.
	Probe(ctx context.Context, target string, opts Options) []Finding
}
