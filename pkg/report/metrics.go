package report

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry returns a registry holding the metrics of r.
func Registry(r *Report) *prometheus.Registry {
	passed := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "testclass",
		Name:      "test_passed",
		Help:      "Whether the test case passed in the last run (1) or not (0).",
	}, []string{"test"})
	duration := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "testclass",
		Name:      "test_duration_seconds",
		Help:      "How long the test case took in the last run.",
	}, []string{"test"})
	throughput := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "testclass",
		Name:      "benchmark_throughput_mbits",
		Help:      "Measured throughput of a benchmark in Mbit/s.",
	}, []string{"test"})
	lastRun := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "testclass",
		Name:      "last_run_timestamp_seconds",
		Help:      "When the last run started.",
	})

	reg := prometheus.NewRegistry()
	reg.MustRegister(passed, duration, throughput, lastRun)

	lastRun.Set(float64(r.Started.Unix()))
	for _, e := range r.Entries {
		v := 0.0
		if e.Passed {
			v = 1
		}
		passed.WithLabelValues(e.Name).Set(v)
		duration.WithLabelValues(e.Name).Set(e.Duration.Seconds())
		for _, b := range e.Benchmarks {
			throughput.WithLabelValues(e.Name).Set(b.Throughput())
		}
	}
	return reg
}

// WriteMetrics writes r as a node_exporter textfile to path.
func WriteMetrics(path string, r *Report) error {
	if err := prometheus.WriteToTextfile(path, Registry(r)); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
