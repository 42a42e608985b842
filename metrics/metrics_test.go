package metrics

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/ontosync/health"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.RecordBatch(BatchSynced, 3, time.Millisecond)
	m.RecordUnhandled("HasKey")
	m.RecordImport(10)
	m.RecordPoll(OutcomeEmpty)
	m.RecordPush(OutcomeSent)
	m.SetQueueLength(2)
}

func TestMetrics_Record(t *testing.T) {
	m, err := New(nil)
	require.NoError(t, err)

	m.RecordBatch(BatchSynced, 3, time.Millisecond)
	m.RecordBatch(BatchSynced, 2, time.Millisecond)
	m.RecordBatch(BatchSkipped, 7, 0)
	m.RecordPoll(OutcomeApplied)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.batches.WithLabelValues(BatchSynced)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.batches.WithLabelValues(BatchSkipped)))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.statements))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.relayPolls.WithLabelValues(OutcomeApplied)))
}

func TestNew_RegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)
	_, err = New(reg)
	require.NoError(t, err, "re-registering the same collectors is tolerated")
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)
	m.RecordImport(4)

	status := health.Status{Available: false, FailureCount: 3, CircuitOpen: true}
	srv := httptest.NewServer(Handler(reg, func() health.Status { return status }))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "ontosync_import_axioms_total 4")

	resp2, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp2.StatusCode)

	var got health.Status
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&got))
	assert.Equal(t, 3, got.FailureCount)
	assert.True(t, got.CircuitOpen)
}
