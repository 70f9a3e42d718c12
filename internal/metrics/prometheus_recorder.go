package metrics

import (
	"strconv"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "draftmd"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once              sync.Once
	operationDuration *prom.HistogramVec
	operationResults  *prom.CounterVec
	pastes            *prom.CounterVec
	pastedLinks       prom.Counter
	httpDuration      *prom.HistogramVec
	httpRequests      *prom.CounterVec
	storeOperations   *prom.CounterVec
	eventPublishes    *prom.CounterVec
	storedDocuments   prom.Gauge
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.operationDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of core document operations",
			Buckets:   prom.DefBuckets,
		}, []string{"operation"})
		pr.operationResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "operation_results_total",
			Help:      "Core operation results by outcome",
		}, []string{"operation", "result"})
		pr.pastes = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "pastes_total",
			Help:      "Paste events by whether the link detector handled them",
		}, []string{"handled"})
		pr.pastedLinks = prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "pasted_links_total",
			Help:      "Link entities created from pasted text",
		})
		pr.httpDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP API requests",
			Buckets:   prom.DefBuckets,
		}, []string{"route"})
		pr.httpRequests = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP API requests by route and status code",
		}, []string{"route", "code"})
		pr.storeOperations = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "store_operations_total",
			Help:      "Document store operations by result",
		}, []string{"operation", "result"})
		pr.eventPublishes = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "event_publishes_total",
			Help:      "Document event publications by result",
		}, []string{"result"})
		pr.storedDocuments = prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "stored_documents",
			Help:      "Number of documents in the store",
		})
		reg.MustRegister(pr.operationDuration, pr.operationResults, pr.pastes, pr.pastedLinks,
			pr.httpDuration, pr.httpRequests, pr.storeOperations, pr.eventPublishes, pr.storedDocuments)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveOperationDuration(op Operation, d time.Duration) {
	if p == nil || p.operationDuration == nil {
		return
	}
	p.operationDuration.WithLabelValues(string(op)).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncOperationResult(op Operation, result ResultLabel) {
	if p == nil || p.operationResults == nil {
		return
	}
	p.operationResults.WithLabelValues(string(op), string(result)).Inc()
}

func (p *PrometheusRecorder) IncPasteOutcome(handled bool, links int) {
	if p == nil || p.pastes == nil {
		return
	}
	p.pastes.WithLabelValues(strconv.FormatBool(handled)).Inc()
	if links > 0 {
		p.pastedLinks.Add(float64(links))
	}
}

func (p *PrometheusRecorder) ObserveHTTPRequest(route string, status int, d time.Duration) {
	if p == nil || p.httpDuration == nil {
		return
	}
	p.httpDuration.WithLabelValues(route).Observe(d.Seconds())
	p.httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

func (p *PrometheusRecorder) IncStoreOperation(op string, success bool) {
	if p == nil || p.storeOperations == nil {
		return
	}
	p.storeOperations.WithLabelValues(op, successLabel(success)).Inc()
}

func (p *PrometheusRecorder) IncEventPublish(success bool) {
	if p == nil || p.eventPublishes == nil {
		return
	}
	p.eventPublishes.WithLabelValues(successLabel(success)).Inc()
}

func (p *PrometheusRecorder) SetStoredDocuments(n int) {
	if p == nil || p.storedDocuments == nil {
		return
	}
	p.storedDocuments.Set(float64(n))
}

func successLabel(ok bool) string {
	if ok {
		return "success"
	}
	return "failed"
}
