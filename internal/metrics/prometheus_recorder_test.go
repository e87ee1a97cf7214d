package metrics

import (
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder_CountsDocumentsAndIssues(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)

	pr.RecordDocument("posts", true)
	pr.RecordDocument("posts", false)
	pr.RecordIssue("duplicate")
	pr.RecordIssue("duplicate")
	pr.RecordAsset(true)
	pr.RecordAsset(false)
	pr.RecordBuild(2*time.Second, "ok")

	require.Equal(t, float64(1), testutil.ToFloat64(pr.documents.WithLabelValues("posts", "true")))
	require.Equal(t, float64(1), testutil.ToFloat64(pr.documents.WithLabelValues("posts", "false")))
	require.Equal(t, float64(2), testutil.ToFloat64(pr.issues.WithLabelValues("duplicate")))
	require.Equal(t, float64(1), testutil.ToFloat64(pr.assets.WithLabelValues("written")))
	require.Equal(t, float64(1), testutil.ToFloat64(pr.assets.WithLabelValues("reused")))
	require.Equal(t, float64(1), testutil.ToFloat64(pr.buildOutcome.WithLabelValues("ok")))
}

func TestNoopRecorder_ImplementsRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.RecordDocument("posts", true)
	r.RecordIssue("pattern")
	r.RecordAsset(false)
	r.RecordBuild(time.Second, "ok")
}
