package prometheus

import (
	"context"
	"testing"

	"github.com/hupe1980/bigfield"
	"github.com/hupe1980/bigfield/blockstore"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserver_RecordsOperations(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	obs, err := NewObserver(reg, WithConstLabels(prometheus.Labels{"field": "test"}))
	require.NoError(t, err)

	bf, err := bigfield.New(blockstore.NewMemoryBlockstore(), bigfield.WithMetricsObserver(obs))
	require.NoError(t, err)

	for _, pos := range []uint64{1, 3, 5, 7, 9} {
		require.NoError(t, bf.Set(ctx, pos))
	}
	require.NoError(t, bf.Set(ctx, 9))
	_, err = bf.Get(ctx, 9)
	require.NoError(t, err)
	_, err = bf.Commit(ctx)
	require.NoError(t, err)

	assert.Equal(t, 5.0, testutil.ToFloat64(obs.sets.WithLabelValues("changed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(obs.sets.WithLabelValues("unchanged")))
	assert.Equal(t, 1.0, testutil.ToFloat64(obs.splits))
	assert.Equal(t, 2.0, testutil.ToFloat64(obs.leaves))

	// set, get and commit, all successful.
	assert.Equal(t, 3, testutil.CollectAndCount(obs.opLatency))
}

func TestObserver_SetErrors(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	obs, err := NewObserver(reg)
	require.NoError(t, err)

	bf, err := bigfield.New(blockstore.NewMemoryBlockstore(), bigfield.WithMetricsObserver(obs))
	require.NoError(t, err)
	require.ErrorIs(t, bf.Set(ctx, ^uint64(0)), bigfield.ErrOutOfRange)

	assert.Equal(t, 1.0, testutil.ToFloat64(obs.sets.WithLabelValues("error")))
}

func TestNewObserver_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewObserver(reg)
	require.NoError(t, err)

	_, err = NewObserver(reg)
	require.Error(t, err)
}
