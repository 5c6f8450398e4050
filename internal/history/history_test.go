package history_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pj4239460/story-graph-assistant/internal/history"
	"github.com/pj4239460/story-graph-assistant/internal/model"
)

func TestHistory_Append_UpdatesIndices(t *testing.T) {
	t.Parallel()

	h := history.New()
	h.Append(model.TickRecord{
		TickIndex: 0,
		Selected:  []model.SelectedStorylet{{StoryletID: "A"}},
	}, true)

	assert.True(t, h.HasFiredEver("A"))
	assert.Equal(t, 0, h.IdleCount)
	assert.Equal(t, 1, h.NextTickIndex())

	elapsed, fired := h.TicksSinceFired("A", 3)
	require.True(t, fired)
	assert.Equal(t, 3, elapsed)
}

func TestHistory_Append_IdleCountIncrementsOnEmptyTick(t *testing.T) {
	t.Parallel()

	h := history.New()
	h.Append(model.TickRecord{TickIndex: 0}, false)
	h.Append(model.TickRecord{TickIndex: 1}, false)

	assert.Equal(t, 2, h.IdleCount)
}

func TestHistory_RecentSelectedIDs_WindowBoundary(t *testing.T) {
	t.Parallel()

	h := history.New()
	h.Append(model.TickRecord{TickIndex: 0, Selected: []model.SelectedStorylet{{StoryletID: "A"}}}, true)
	h.Append(model.TickRecord{TickIndex: 1, Selected: []model.SelectedStorylet{{StoryletID: "B"}}}, true)
	h.Append(model.TickRecord{TickIndex: 2, Selected: []model.SelectedStorylet{{StoryletID: "C"}}}, true)

	assert.Equal(t, []string{"B", "C"}, h.RecentSelectedIDs(2))
	assert.Nil(t, h.RecentSelectedIDs(0))
}

func TestHistory_Truncate_RebuildsIndices(t *testing.T) {
	t.Parallel()

	h := history.New()
	h.Append(model.TickRecord{TickIndex: 0, Selected: []model.SelectedStorylet{{StoryletID: "A"}}}, true)
	h.Append(model.TickRecord{TickIndex: 1, Selected: []model.SelectedStorylet{{StoryletID: "B"}}}, true)
	h.Append(model.TickRecord{TickIndex: 2, Selected: []model.SelectedStorylet{{StoryletID: "C"}}}, true)

	h.Truncate(2)

	assert.Len(t, h.Records, 2)
	assert.True(t, h.HasFiredEver("A"))
	assert.True(t, h.HasFiredEver("B"))
	assert.False(t, h.HasFiredEver("C"), "truncated record's effects on FiredEver must be undone")
}

func TestHistory_Clone_Independence(t *testing.T) {
	t.Parallel()

	h := history.New()
	h.Append(model.TickRecord{TickIndex: 0, Selected: []model.SelectedStorylet{{StoryletID: "A"}}}, true)

	clone := h.Clone()
	clone.Append(model.TickRecord{TickIndex: 1, Selected: []model.SelectedStorylet{{StoryletID: "B"}}}, true)

	assert.False(t, h.HasFiredEver("B"), "mutating the clone must not affect the source")
	assert.True(t, clone.HasFiredEver("B"))
}
