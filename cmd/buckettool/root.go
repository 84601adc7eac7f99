package main

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"buckettool/internal/config"
	"buckettool/internal/history"
	"buckettool/internal/logger"
	"buckettool/pkg/engine"
	"buckettool/pkg/net"
)

// app carries the state loaded by the root command for its subcommands
type app struct {
	configFile string
	logLevel   string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "buckettool",
		Short: "Probe cloud object storage buckets for misconfigurations",
		Long: `buckettool checks Aliyun OSS, Tencent COS, Huawei OBS and Amazon S3 buckets
for public listing, anonymous upload/delete, readable or writable ACLs, writable
bucket policies and bucket takeover exposure. Every finding carries the raw
request and response that proved it.

Examples:
  buckettool probe https://examplebucket.oss-cn-hangzhou.aliyuncs.com/
  buckettool probe https://cdn.example.com/ -v aliyun -v aws --json
  buckettool scan -l urls.txt -t 20 -o findings.jsonl
  buckettool watch /var/log/proxy/urls.log
  buckettool serve`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.configFile, "config", "", "config file (default: ./configs/config.yaml or ./config.yaml)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(
		newProbeCmd(a),
		newScanCmd(a),
		newWatchCmd(a),
		newServeCmd(a),
		newHistoryCmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	// config init must work without a readable config
	if cmd.Annotations["skipConfig"] == "true" {
		return nil
	}

	cfg, err := config.Load(a.configFile)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if _, err := logger.Init(&cfg.Log); err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	if cfg.Log.Level == "debug" {
		pterm.EnableDebugMessages()
	}
	a.cfg = cfg
	return nil
}

func (a *app) detector() *engine.Detector {
	return engine.NewDetector(net.NewClient(a.cfg.Engine()))
}

// recorder returns the history store, or nil when recording is disabled.
func (a *app) recorder() *history.Store {
	if !a.cfg.History.Enabled || a.cfg.History.Path == "" {
		return nil
	}
	return history.NewStore(a.cfg.History.Path)
}
