package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.SnapshotsCreated(3, 1)
		m.SnapshotFailed()
		m.RollbacksDetected(2)
		m.SourceFailed("remote")
		m.RecordsSkipped("file", 4)
		m.ObserveFetch("file", time.Second)
		m.SeasonTransition("start", nil)
		m.StatusQuery(true)
	})
}

func TestCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.SnapshotsCreated(3, 1)
	m.SnapshotsCreated(2, 0)
	m.RollbacksDetected(2)
	m.SeasonTransition("start", nil)
	m.SeasonTransition("start", errors.New("boom"))
	m.SeasonTransition("end", nil)

	assert.Equal(t, 5.0, testutil.ToFloat64(m.snapshotsCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.snapshotConflicts))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.rollbacks))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.seasonTransitions.WithLabelValues("start", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.seasonTransitions.WithLabelValues("start", "error")))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}
