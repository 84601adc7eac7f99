package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

const banner = `
╔═══════════════════════════════════════════════════════════════╗
║   ██████╗ ██╗   ██╗ ██████╗██╗  ██╗███████╗████████╗          ║
║   ██╔══██╗██║   ██║██╔════╝██║ ██╔╝██╔════╝╚══██╔══╝          ║
║   ██████╔╝██║   ██║██║     █████╔╝ █████╗     ██║             ║
║   ██╔══██╗██║   ██║██║     ██╔═██╗ ██╔══╝     ██║             ║
║   ██████╔╝╚██████╔╝╚██████╗██║  ██╗███████╗   ██║             ║
║   ╚═════╝  ╚═════╝  ╚═════╝╚═╝  ╚═╝╚══════╝   ╚═╝   tool      ║
║                                                               ║
║          Object Storage Misconfiguration Prober               ║
║          Aliyun OSS • Tencent COS • Huawei OBS • S3           ║
╚═══════════════════════════════════════════════════════════════╝
`

func main() {
	ctx, cancel := signalContext()
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// signalContext is cancelled on the first SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(os.Stderr, "\n[!] Interrupted, shutting down...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()
	return ctx, cancel
}
