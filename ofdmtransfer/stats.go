package ofdmtransfer

import (
	"os"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// ProcessStats is a snapshot of this process's resource usage, grounded
// on the teacher's instance_reporter.go periodic self-reporting.
type ProcessStats struct {
	CPUPercent float64
	RSSBytes   uint64
	NumThreads int32
}

func collectProcessStats() (ProcessStats, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return ProcessStats{}, wrapResourceError("process stats", err)
	}
	cpu, err := p.CPUPercent()
	if err != nil {
		return ProcessStats{}, wrapResourceError("process cpu stats", err)
	}
	mem, err := p.MemoryInfo()
	if err != nil {
		return ProcessStats{}, wrapResourceError("process memory stats", err)
	}
	threads, err := p.NumThreads()
	if err != nil {
		return ProcessStats{}, wrapResourceError("process thread stats", err)
	}
	return ProcessStats{CPUPercent: cpu, RSSBytes: mem.RSS, NumThreads: threads}, nil
}

// StartStatsReporter logs a ProcessStats snapshot once per interval when
// verbose logging is enabled, matching the teacher's periodic
// self-reporting goroutine. It returns a stop function.
func StartStatsReporter(interval time.Duration) (stop func()) {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if !IsVerbose() {
					continue
				}
				stats, err := collectProcessStats()
				if err != nil {
					errorLogf("stats: %v", err)
					continue
				}
				errorLogf("stats: cpu=%.1f%% rss=%dMiB threads=%d", stats.CPUPercent, stats.RSSBytes/(1<<20), stats.NumThreads)
			}
		}
	}()
	return func() { close(done) }
}
