package kvstore_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/sonlib/kvstore"
)

func TestInstrumented_CountsOutcomes(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	s, err := kvstore.NewInstrumented(kvstore.NewMemory(), reg)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Insert(ctx, 1, []byte("one")))
	_ = s.Insert(ctx, 1, []byte("again"))
	_, _ = s.Get(ctx, 1)
	_, _ = s.Get(ctx, 2)
	_, _ = s.GetPartial(ctx, 1, 5, 1)
	_, _ = s.IncrementInt(ctx, 1, 1)

	ops := s.Ops()
	assert.Equal(t, 1.0, testutil.ToFloat64(ops.WithLabelValues("insert", kvstore.OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(ops.WithLabelValues("insert", kvstore.OutcomeExists)))
	assert.Equal(t, 1.0, testutil.ToFloat64(ops.WithLabelValues("get", kvstore.OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(ops.WithLabelValues("get", kvstore.OutcomeNotFound)))
	assert.Equal(t, 1.0, testutil.ToFloat64(ops.WithLabelValues("get_partial", kvstore.OutcomeOutOfBounds)))
	assert.Equal(t, 1.0, testutil.ToFloat64(ops.WithLabelValues("increment", kvstore.OutcomeCorrupt)))

	// A second store on the same registerer shares the counter.
	other, err := kvstore.NewInstrumented(kvstore.NewMemory(), reg)
	require.NoError(t, err)
	defer other.Close()
	_, _ = other.Get(ctx, 2)
	assert.Equal(t, 2.0, testutil.ToFloat64(ops.WithLabelValues("get", kvstore.OutcomeNotFound)))
	assert.Equal(t, 6, testutil.CollectAndCount(ops, "sonlib_kv_ops_total"))
}
