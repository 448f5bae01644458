package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordStream(t *testing.T) {
	before := testutil.ToFloat64(FragmentsTotal.WithLabelValues("metrics-test-model"))
	RecordStream("metrics-test-model", OutcomeDone, 3, 0.2)
	assert.Equal(t, before+3, testutil.ToFloat64(FragmentsTotal.WithLabelValues("metrics-test-model")))
	assert.Equal(t, 1.0, testutil.ToFloat64(StreamOutcomesTotal.WithLabelValues("metrics-test-model", OutcomeDone)))
}

func TestRecordUpstreamErrorDefaultsOperation(t *testing.T) {
	RecordUpstreamError("", PhasePreStream)
	assert.GreaterOrEqual(t, testutil.ToFloat64(UpstreamErrorsTotal.WithLabelValues("unknown", PhasePreStream)), 1.0)
}

func TestRecordRequest(t *testing.T) {
	RecordRequest("POST", "/metrics-test", "200", "", true, 0.5)
	assert.Equal(t, 1.0, testutil.ToFloat64(RequestsTotal.WithLabelValues("POST", "/metrics-test", "200", "unknown", "true")))
}
