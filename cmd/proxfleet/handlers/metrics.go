package handlers

import (
	"log"
	"net/http"
	"os"
	"sync"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// EnvMetricsAddr enables the prometheus endpoint when set, e.g. ":9464".
// Useful for scraping long apply runs on large fleets.
const EnvMetricsAddr = "PROXFLEET_METRICS_ADDR"

var metricsOnce sync.Once

// maybeServeMetrics starts the metrics listener if EnvMetricsAddr is set.
// The listener lives for the rest of the process.
func maybeServeMetrics() {
	addr := os.Getenv(EnvMetricsAddr)
	if addr == "" {
		return
	}
	metricsOnce.Do(func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			if err := http.ListenAndServe(addr, mux); err != nil {
				log.Printf("metrics listener on %s failed: %v", addr, err)
			}
		}()
	})
}
