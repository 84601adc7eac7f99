package main

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"buckettool/internal/history"
	"buckettool/internal/logger"
	"buckettool/pkg/core"
)

type probeFlags struct {
	vendors    []string
	allVendors bool
	acl        bool
	policy     bool
	json       bool
	verbose    bool
	noHistory  bool
}

func newProbeCmd(a *app) *cobra.Command {
	f := &probeFlags{}
	cmd := &cobra.Command{
		Use:   "probe <url>",
		Short: "Run every enabled check against one bucket URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runProbe(cmd, f, args[0])
		},
	}
	f.register(cmd.Flags())
	return cmd
}

func (f *probeFlags) register(fs *pflag.FlagSet) {
	fs.StringArrayVarP(&f.vendors, "vendor", "v", nil, "force vendor module (repeatable, in order): aliyun, tencent, huawei, aws")
	fs.BoolVar(&f.allVendors, "all-vendors", false, "run every vendor module regardless of host")
	fs.BoolVar(&f.acl, "acl", true, "probe ACL read/write")
	fs.BoolVar(&f.policy, "policy", true, "probe bucket policy write")
	fs.BoolVar(&f.json, "json", false, "print findings as JSON")
	fs.BoolVar(&f.verbose, "verbose", false, "print request and response evidence")
	fs.BoolVar(&f.noHistory, "no-history", false, "do not record findings in history")
}

// options merges the configured defaults with explicitly set flags.
func (f *probeFlags) options(cmd *cobra.Command, base core.Options) (core.Options, []string) {
	opts := base
	if cmd.Flags().Changed("acl") {
		opts.CheckACL = f.acl
	}
	if cmd.Flags().Changed("policy") {
		opts.CheckPolicy = f.policy
	}
	var dropped []string
	switch {
	case f.allVendors:
		opts.Vendors = core.Vendors()
	case len(f.vendors) > 0:
		opts.Vendors, dropped = core.ParseVendors(f.vendors)
	}
	return opts, dropped
}

func (a *app) runProbe(cmd *cobra.Command, f *probeFlags, target string) error {
	if !isHTTPURL(target) {
		return fmt.Errorf("invalid target %q: an absolute http or https URL is required", target)
	}

	base, dropped := a.cfg.Options()
	opts, flagDropped := f.options(cmd, base)
	for _, id := range append(dropped, flagDropped...) {
		pterm.Warning.Printfln("ignoring unknown vendor %q", id)
	}
	if len(f.vendors) > 0 && len(opts.Vendors) == 0 {
		return fmt.Errorf("no supported vendor in %v", f.vendors)
	}

	out := cmd.OutOrStdout()
	if !f.json {
		fmt.Fprint(out, banner, "\n")
	}

	findings := a.detector().Detect(cmd.Context(), target, opts)

	if store := a.recorder(); store != nil && !f.noHistory {
		if added, err := store.Record(target, findings, history.Active); err != nil {
			logger.Log().WithError(err).Warn("failed to record history")
		} else if len(added) > 0 && !f.json {
			pterm.Info.Printfln("%d new finding(s) recorded in %s", len(added), store.Path())
		}
	}

	if f.json {
		return writeJSON(out, findings)
	}
	return printFindings(out, target, findings, f.verbose)
}
