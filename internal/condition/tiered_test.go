package condition_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pj4239460/story-graph-assistant/internal/condition"
)

func TestTieredJudge_NoRedis_FallsBackToLocalThenInner(t *testing.T) {
	t.Parallel()

	inner := &countingJudge{}
	tiered := condition.NewTieredJudge(inner, 10, nil)

	j1, err := tiered.Judge(context.Background(), "cond", "state")
	require.NoError(t, err)
	j2, err := tiered.Judge(context.Background(), "cond", "state")
	require.NoError(t, err)

	assert.Equal(t, 1, inner.calls, "local tier must absorb the repeat call with no Redis tier configured")
	assert.Equal(t, j1, j2)
}
