package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"placement/api/internal/approval"
	"placement/api/internal/store"
)

func TestWorkflowCounters(t *testing.T) {
	m := New()
	m.UpdateRouted(approval.ModeSubmitted)
	m.UpdateRouted(approval.ModeSubmitted)
	m.UpdateRouted(approval.ModeApplied)
	m.ProposalResolved(store.ProposalApproved)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.updates.WithLabelValues("submitted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.updates.WithLabelValues("applied")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.resolved.WithLabelValues("approved")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.resolved.WithLabelValues("rejected")))
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := New()
	m.ObserveRequest(http.MethodGet, http.StatusOK, 20*time.Millisecond)
	m.ProposalResolved(store.ProposalRejected)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `placement_proposals_resolved_total{status="rejected"} 1`)
	assert.Contains(t, string(body), `placement_http_request_duration_seconds_count{method="GET",status="200"} 1`)
}
