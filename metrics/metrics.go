// metrics/metrics.go
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ucook/accessflow/util"
)

// Registry owns its collectors so several servers (or tests) can coexist
// in one process.
type Registry struct {
	reg *prometheus.Registry

	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	workflowEvents *prometheus.CounterVec
}

func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "accessflow",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "accessflow",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		workflowEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "accessflow",
			Name:      "workflow_events_total",
			Help:      "Workflow events published, by event type.",
		}, []string{"event"}),
	}
	r.reg.MustRegister(
		r.httpRequests,
		r.httpDuration,
		r.workflowEvents,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// ObserveHTTP records one finished request.
func (r *Registry) ObserveHTTP(route, method string, code int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	r.httpRequests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	r.httpDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// SubscribeWorkflow counts every workflow event published on bus.
func (r *Registry) SubscribeWorkflow(bus *util.EventBus) {
	for _, event := range util.WorkflowEvents {
		bus.Subscribe(event, func(ctx context.Context, e util.Event) error {
			r.workflowEvents.WithLabelValues(e.Type).Inc()
			return nil
		})
	}
}

func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

// Gatherer exposes the registry to tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}
