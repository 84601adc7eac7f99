package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"buckettool/internal/history"
	"buckettool/internal/logger"
	"buckettool/pkg/engine"
)

type scanFlags struct {
	list    string
	threads int
	output  string
	json    bool
}

func newScanCmd(a *app) *cobra.Command {
	f := &scanFlags{}
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Probe a list of bucket URLs concurrently",
		Long:  "Reads one URL per line from --list or stdin and probes each with the configured options.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runScan(cmd, f)
		},
	}
	cmd.Flags().StringVarP(&f.list, "list", "l", "", "file with target URLs (default: stdin)")
	cmd.Flags().IntVarP(&f.threads, "threads", "t", 0, "concurrent targets (default from config)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "append reports as JSON lines to this file")
	cmd.Flags().BoolVar(&f.json, "json", false, "print reports as JSON lines")
	return cmd
}

func (a *app) runScan(cmd *cobra.Command, f *scanFlags) error {
	targets, err := openTargets(f.list, cmd.InOrStdin())
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		return fmt.Errorf("no targets given")
	}

	eng := a.cfg.Engine()
	if f.threads > 0 {
		eng.Threads = f.threads
	}
	outPath := f.output
	if outPath == "" {
		outPath = a.cfg.Scan.Output
	}
	var sink io.Writer
	if outPath != "" {
		file, err := os.OpenFile(outPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open output file: %w", err)
		}
		defer file.Close()
		sink = file
	}

	opts, _ := a.cfg.Options()
	runner := engine.NewRunner(eng, a.detector(), opts)
	store := a.recorder()
	out := cmd.OutOrStdout()

	if !f.json {
		fmt.Fprint(out, banner, "\n")
		pterm.Info.Printfln("Scanning %d target(s) with %d thread(s)", len(targets), eng.Threads)
	}

	feed := make(chan string)
	go func() {
		defer close(feed)
		for _, t := range targets {
			if !isHTTPURL(t) {
				logger.Log().WithField("url", t).Warn("skipping invalid target")
				continue
			}
			select {
			case <-cmd.Context().Done():
				return
			case feed <- t:
			}
		}
	}()

	start := time.Now()
	for rep := range runner.Start(cmd.Context(), feed) {
		if store != nil {
			if _, err := store.Record(rep.Target, rep.Findings, history.Active); err != nil {
				logger.Log().WithError(err).Warn("failed to record history")
			}
		}
		if sink != nil {
			if err := writeJSONLine(sink, rep); err != nil {
				return fmt.Errorf("failed to write report: %w", err)
			}
		}
		if f.json {
			if err := writeJSONLine(out, rep); err != nil {
				return err
			}
			continue
		}
		if len(rep.Findings) > 0 {
			if err := printFindings(out, rep.Target, rep.Findings, false); err != nil {
				return err
			}
		}
	}

	if !f.json {
		stats := runner.Stats()
		pterm.Info.Printfln("%d/%d target(s) misconfigured, %d blacklisted, total time %s",
			stats.Vulnerable, stats.Checked, stats.Skipped, time.Since(start).Round(time.Millisecond))
	}
	return nil
}

func writeJSONLine(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
