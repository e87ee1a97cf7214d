package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	documents     *prom.CounterVec
	issues        *prom.CounterVec
	assets        *prom.CounterVec
	buildDuration prom.Histogram
	buildOutcome  *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers the Prometheus metrics.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		documents: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "contentforge",
			Name:      "documents_total",
			Help:      "Validated documents by collection and validity",
		}, []string{"collection", "valid"}),
		issues: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "contentforge",
			Name:      "issues_total",
			Help:      "Reported validation issues by code",
		}, []string{"code"}),
		assets: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "contentforge",
			Name:      "assets_total",
			Help:      "Asset resolutions by result (written vs reused)",
		}, []string{"result"}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "contentforge",
			Name:      "build_duration_seconds",
			Help:      "Total build duration",
			Buckets:   prom.DefBuckets,
		}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "contentforge",
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"}),
	}
	reg.MustRegister(pr.documents, pr.issues, pr.assets, pr.buildDuration, pr.buildOutcome)
	return pr
}

func (pr *PrometheusRecorder) RecordDocument(collection string, valid bool) {
	v := "false"
	if valid {
		v = "true"
	}
	pr.documents.WithLabelValues(collection, v).Inc()
}

func (pr *PrometheusRecorder) RecordIssue(code string) {
	pr.issues.WithLabelValues(code).Inc()
}

func (pr *PrometheusRecorder) RecordAsset(written bool) {
	result := "reused"
	if written {
		result = "written"
	}
	pr.assets.WithLabelValues(result).Inc()
}

func (pr *PrometheusRecorder) RecordBuild(duration time.Duration, outcome string) {
	pr.buildDuration.Observe(duration.Seconds())
	pr.buildOutcome.WithLabelValues(outcome).Inc()
}
