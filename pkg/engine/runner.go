package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"buckettool/internal/logger"
	"buckettool/pkg/core"
)

// Report is the outcome of detecting one target
type Report struct {
	Target   string         `json:"target"`
	Findings []core.Finding `json:"findings"`
	Duration time.Duration  `json:"duration"`
}

// Detect is the single-target operation the runner fans out. *Detector satisfies it.
type Detect interface {
	Detect(ctx context.Context, target string, opts core.Options) []core.Finding
}

// Stats counts runner progress
type Stats struct {
	Checked    int64 `json:"checked"`
	Vulnerable int64 `json:"vulnerable"`
	Skipped    int64 `json:"skipped"`
}

type Runner struct {
	detector  Detect
	config    *core.Config
	opts      core.Options
	blacklist *Blacklist

	checked    atomic.Int64
	vulnerable atomic.Int64
	skipped    atomic.Int64
}

func NewRunner(config *core.Config, detector Detect, opts core.Options) *Runner {
	return &Runner{
		detector:  detector,
		config:    config,
		opts:      opts,
		blacklist: NewBlacklist(config.Blacklist),
	}
}

// Start consumes targets with config.Threads workers. The returned channel is
// closed once targets is drained or ctx is cancelled and every worker is idle.
// Each call gets its own results channel; Stats accumulate across calls.
func (r *Runner) Start(ctx context.Context, targets <-chan string) <-chan *Report {
	results := make(chan *Report)
	threads := r.config.Threads
	if threads < 1 {
		threads = 1
	}

	// 1. Filter
	jobs := make(chan string, threads)
	go func() {
		defer close(jobs)
		for {
			select {
			case <-ctx.Done():
				return
			case target, ok := <-targets:
				if !ok {
					return
				}
				if r.blacklist.Blocked(target) {
					r.skipped.Add(1)
					logger.Log().WithField("url", target).Debug("skipping blacklisted host")
					continue
				}
				select {
				case <-ctx.Done():
					return
				case jobs <- target:
				}
			}
		}
	}()

	// 2. Worker Pool
	var wgWorkers sync.WaitGroup
	for i := 0; i < threads; i++ {
		wgWorkers.Add(1)
		go func() {
			defer wgWorkers.Done()
			for target := range jobs {
				if ctx.Err() != nil {
					return
				}
				start := time.Now()
				findings := r.detector.Detect(ctx, target, r.opts)
				r.checked.Add(1)
				if len(findings) > 0 {
					r.vulnerable.Add(1)
				}
				select {
				case <-ctx.Done():
					return
				case results <- &Report{Target: target, Findings: findings, Duration: time.Since(start)}:
				}
			}
		}()
	}

	// Close results when all workers are done
	go func() {
		wgWorkers.Wait()
		close(results)
	}()

	return results
}

// Stats returns a snapshot of the counters. It is safe to call while running.
func (r *Runner) Stats() Stats {
	return Stats{
		Checked:    r.checked.Load(),
		Vulnerable: r.vulnerable.Load(),
		Skipped:    r.skipped.Load(),
	}
}
