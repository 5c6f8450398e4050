package storage

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/pj4239460/story-graph-assistant/internal/model"
)

// TickRepository persists the append-only TickRecord sequence for a
// thread, giving Director.Replay a durable source to compare against
// instead of only the in-memory history.History.
type TickRepository struct {
	db *bun.DB
}

// NewTickRepository returns a TickRepository backed by db.
func NewTickRepository(db *bun.DB) *TickRepository {
	return &TickRepository{db: db}
}

// Append stores one tick record for (projectID, threadID). Records are
// never updated or reordered once written, matching the core's
// append-only TickHistory semantics (spec §3).
func (r *TickRepository) Append(ctx context.Context, projectID, threadID string, rec model.TickRecord) error {
	doc, err := marshalJSON(rec)
	if err != nil {
		return fmt.Errorf("marshal tick record: %w", err)
	}
	row := &TickRecordModel{
		ThreadID:  threadID,
		ProjectID: projectID,
		TickIndex: rec.TickIndex,
		Document:  doc,
	}
	if _, err := r.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return fmt.Errorf("append tick record thread=%s tick=%d: %w", threadID, rec.TickIndex, err)
	}
	return nil
}

// ListByThread returns every recorded tick for threadID in ascending
// tick_index order.
func (r *TickRepository) ListByThread(ctx context.Context, threadID string) ([]model.TickRecord, error) {
	var rows []*TickRecordModel
	err := r.db.NewSelect().
		Model(&rows).
		Where("thread_id = ?", threadID).
		Order("tick_index ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list ticks for thread %s: %w", threadID, err)
	}

	out := make([]model.TickRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := row.toTickRecord()
		if err != nil {
			return nil, fmt.Errorf("decode tick record thread=%s tick=%d: %w", threadID, row.TickIndex, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// Range returns the stored ticks for threadID with tick_index in
// [fromTick, toTick] inclusive.
func (r *TickRepository) Range(ctx context.Context, threadID string, fromTick, toTick int) ([]model.TickRecord, error) {
	var rows []*TickRecordModel
	err := r.db.NewSelect().
		Model(&rows).
		Where("thread_id = ? AND tick_index >= ? AND tick_index <= ?", threadID, fromTick, toTick).
		Order("tick_index ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("range ticks for thread %s: %w", threadID, err)
	}

	out := make([]model.TickRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := row.toTickRecord()
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}
