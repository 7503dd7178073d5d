package metrics

import (
	"context"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Conversion metrics
	ConversionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "robotobo_conversions_total",
		Help: "Total number of ROBOT conversions, partitioned by output format.",
	}, []string{"format"})

	ConversionFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "robotobo_conversion_failures_total",
		Help: "Number of ROBOT conversions that exited with an error.",
	}, []string{"format"})

	ConversionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "robotobo_conversion_duration_seconds",
		Help:    "Duration of ROBOT convert pipelines.",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
	})

	// Jar cache metrics
	JarDownloads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "robotobo_jar_downloads_total",
		Help: "Number of robot.jar release downloads.",
	})

	JarDownloadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "robotobo_jar_download_duration_seconds",
		Help:    "Duration of robot.jar downloads.",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
	})

	// Mirror metrics
	MirrorRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "robotobo_mirror_runs_total",
		Help: "Number of scheduled mirror runs.",
	})

	MirrorFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "robotobo_mirror_failures_total",
		Help: "Number of mirror source failures, partitioned by source name.",
	}, []string{"source"})

	MirrorFilesUploaded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "robotobo_mirror_files_uploaded_total",
		Help: "Number of mirrored files uploaded, partitioned by storage backend.",
	}, []string{"backend"})

	MirrorsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "robotobo_mirrors_deleted_total",
		Help: "Number of dated mirrors deleted by retention logic.",
	})

	// Application health
	AppUptime = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "robotobo_app_uptime_seconds",
		Help: "Seconds since the application started.",
	})

	Goroutines = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "robotobo_goroutines",
		Help: "Number of current goroutines.",
	})
)

// StartHealthReporter updates the uptime and goroutine gauges until ctx is
// canceled.
func StartHealthReporter(ctx context.Context) {
	start := time.Now()
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				AppUptime.Set(time.Since(start).Seconds())
				Goroutines.Set(float64(runtime.NumGoroutine()))
			}
		}
	}()
}
