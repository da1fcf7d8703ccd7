package main

import (
	"context"
	"os"
	"runtime"
	"time"

	app "github.com/okian/briefmatch/internal/app"
	"github.com/okian/briefmatch/pkg/metrics"
)

// Gauge refresh intervals.
const (
	systemMetricsInterval  = 10 * time.Second
	serviceMetricsInterval = 5 * time.Second
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// reportMetrics refreshes process and service gauges until ctx is done.
func reportMetrics(ctx context.Context, svc *app.Service) {
	system := time.NewTicker(systemMetricsInterval)
	defer system.Stop()
	service := time.NewTicker(serviceMetricsInterval)
	defer service.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-system.C:
			updateSystemMetrics()
		case <-service.C:
			svc.RefreshGauges()
		}
	}
}

func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
	if m.NumGC > 0 {
		avg := time.Duration(m.PauseTotalNs / uint64(m.NumGC))
		metrics.RecordSystemGCPauseTime(float64(avg.Microseconds()) / 1000)
	}
}
