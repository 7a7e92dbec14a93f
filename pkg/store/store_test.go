package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	edgeio "github.com/hed1ad/edgeguard/pkg/io"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "results.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestWriteAndRecent(t *testing.T) {
	s := openStore(t)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	results := []edgeio.Result{
		{ObservedAt: base, Source: "event", Device: "thermo-1", Score: 0.31, Features: []float64{20, 1, 0}},
		{ObservedAt: base.Add(time.Second), Source: "event", Device: "thermo-2", Score: 0.92, IsAnomaly: true, Features: []float64{90, 0, 1}},
	}
	for _, r := range results {
		require.NoError(t, s.Write(r))
	}

	recent, err := s.Recent(10)
	require.NoError(t, err)
	require.Len(t, recent, 2)

	// Newest first, ids assigned on insert.
	assert.Equal(t, "thermo-2", recent[0].Device)
	assert.True(t, recent[0].IsAnomaly)
	assert.NotEmpty(t, recent[0].ID)
	assert.Equal(t, []float64{90, 0, 1}, recent[0].Features)
	assert.Equal(t, "thermo-1", recent[1].Device)
	assert.False(t, recent[1].IsAnomaly)
}

func TestRecentLimit(t *testing.T) {
	s := openStore(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Write(edgeio.Result{Score: float64(i) / 10}))
	}

	recent, err := s.Recent(3)
	require.NoError(t, err)
	assert.Len(t, recent, 3)
}

func TestCountAnomalies(t *testing.T) {
	s := openStore(t)

	require.NoError(t, s.Write(edgeio.Result{Score: 0.2}))
	require.NoError(t, s.Write(edgeio.Result{Score: 0.8, IsAnomaly: true}))
	require.NoError(t, s.Write(edgeio.Result{Score: 0.9, IsAnomaly: true}))

	n, err := s.CountAnomalies()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
