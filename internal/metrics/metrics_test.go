package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.HostCreated()
	m.VisitCheckedIn()
	m.VisitCheckedIn()
	m.VisitCheckedOut()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HostsCreated))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.VisitsCheckedIn))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.VisitsCheckedOut))
}

func TestObserveRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveRequest("GET", "/visits/active", 200, 15*time.Millisecond)

	n, err := testutil.GatherAndCount(reg, "kiosk_http_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
