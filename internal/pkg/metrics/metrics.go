package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gis_console_requests_total",
		Help: "Total console API requests",
	}, []string{"method", "route", "status"})
	RequestDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gis_console_request_duration_ms",
		Help:    "Console API request duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	}, []string{"method", "route"})
	GISRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gis_console_upstream_requests_total",
		Help: "Total GIS REST requests by outcome",
	}, []string{"method", "status"})
	GISDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gis_console_upstream_duration_ms",
		Help:    "GIS REST call duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000, 5000},
	}, []string{"method"})
	Workspaces = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "gis_console_workspaces",
		Help: "Profiles with a live workspace",
	})
)

func init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RequestDurationMs)
	prometheus.MustRegister(GISRequestsTotal)
	prometheus.MustRegister(GISDurationMs)
	prometheus.MustRegister(Workspaces)
}

func Handler() http.Handler { return promhttp.Handler() }

type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type DoerFunc func(req *http.Request) (*http.Response, error)

func (f DoerFunc) Do(req *http.Request) (*http.Response, error) { return f(req) }

// InstrumentDoer counts and times every outbound GIS call made through d.
func InstrumentDoer(d Doer) Doer {
	return DoerFunc(func(req *http.Request) (*http.Response, error) {
		start := time.Now()
		resp, err := d.Do(req)

		GISDurationMs.WithLabelValues(req.Method).Observe(float64(time.Since(start).Milliseconds()))

		status := "error"
		if err == nil {
			status = strconv.Itoa(resp.StatusCode)
		}

		GISRequestsTotal.WithLabelValues(req.Method, status).Inc()

		return resp, err //nolint:wrapcheck
	})
}
