package main

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"buckettool/internal/history"
	"buckettool/internal/logger"
	"buckettool/internal/watch"
	"buckettool/pkg/engine"
)

func newWatchCmd(a *app) *cobra.Command {
	var fromStart bool
	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Passively probe URLs as they are appended to a file",
		Long: `Follows a file that a proxy or browser hook appends observed URLs to, one per
line. Every new http(s) URL whose host is not blacklisted is probed and new
findings are stored in history.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runWatch(cmd, args[0], fromStart)
		},
	}
	cmd.Flags().BoolVar(&fromStart, "from-start", false, "also probe URLs already in the file")
	return cmd
}

func (a *app) runWatch(cmd *cobra.Command, path string, fromStart bool) error {
	tailer, err := watch.NewTailer(path, fromStart)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	opts, _ := a.cfg.Options()
	runner := engine.NewRunner(a.cfg.Engine(), a.detector(), opts)
	store := a.recorder()

	lines := make(chan string)
	errCh := make(chan error, 1)
	go func() {
		defer close(lines)
		errCh <- tailer.Run(ctx, func(line string) {
			if !isHTTPURL(line) {
				return
			}
			select {
			case <-ctx.Done():
			case lines <- line:
			}
		})
	}()

	pterm.Info.Printfln("Watching %s, press Ctrl+C to stop", path)
	for rep := range runner.Start(ctx, lines) {
		if len(rep.Findings) == 0 {
			continue
		}
		if store == nil {
			_ = printFindings(cmd.OutOrStdout(), rep.Target, rep.Findings, false)
			continue
		}
		added, err := store.Record(rep.Target, rep.Findings, history.Passive)
		if err != nil {
			logger.Log().WithError(err).Warn("failed to record history")
			continue
		}
		for _, e := range added {
			pterm.Success.Printfln("[%s] %s %s", e.Vendor, e.Type, e.URL)
		}
	}
	return <-errCh
}
