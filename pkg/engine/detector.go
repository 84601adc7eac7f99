package engine

import (
	"context"

	"github.com/sirupsen/logrus"

	"buckettool/internal/logger"
	"buckettool/pkg/core"
	"buckettool/pkg/net"
	"buckettool/pkg/providers/aliyun"
	"buckettool/pkg/providers/aws"
	"buckettool/pkg/providers/huawei"
	"buckettool/pkg/providers/tencent"
)

// Detector routes a target to the probe module of its vendor.
type Detector struct {
	client    *net.Client
	providers map[core.Vendor]core.Provider
}

// NewDetector builds a detector with one module per known vendor sharing client.
func NewDetector(client *net.Client) *Detector {
	return NewDetectorWithProviders(client,
		aliyun.NewProvider(client),
		tencent.NewProvider(client),
		huawei.NewProvider(client),
		aws.NewProvider(client),
	)
}

// NewDetectorWithProviders is like NewDetector but with an explicit provider set.
// A later provider for the same vendor replaces an earlier one.
func NewDetectorWithProviders(client *net.Client, providers ...core.Provider) *Detector {
	d := &Detector{client: client, providers: make(map[core.Vendor]core.Provider, len(providers))}
	for _, p := range providers {
		d.providers[p.Vendor()] = p
	}
	return d
}

// Detect runs the probe modules for target and returns every finding in
// execution order. An explicit vendor list is honored as given, even when the
// host belongs to another vendor. Without one the vendor is identified from the
// host and then from a HEAD reply; an unknown vendor yields no findings.
func (d *Detector) Detect(ctx context.Context, target string, opts core.Options) []core.Finding {
	findings := []core.Finding{}

	if len(opts.Vendors) > 0 {
		for _, v := range opts.Vendors {
			if ctx.Err() != nil {
				break
			}
			p, ok := d.providers[v]
			if !ok {
				logger.Log().WithField("vendor", v.String()).Debug("skipping unsupported vendor")
				continue
			}
			findings = append(findings, p.Probe(ctx, target, opts)...)
		}
		return findings
	}

	vendor := Identify(target)
	if vendor == core.Unknown {
		vendor = IdentifyByProbe(ctx, d.client, target)
	}
	log := logger.Log().WithFields(logrus.Fields{"url": target, "vendor": vendor.String()})
	p, ok := d.providers[vendor]
	if !ok {
		log.Debug("vendor not identified")
		return findings
	}
	log.Debug("vendor identified")
	return append(findings, p.Probe(ctx, target, opts)...)
}
