package storage

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/pj4239460/story-graph-assistant/internal/model"
)

// ProjectModel is the bun-mapped row for a stored project. The
// storylet pool, seed state, and director config are kept as a single
// jsonb document rather than normalized tables: spec §1 treats the
// project format as an external concern, and mirroring the author's
// JSON shape exactly avoids a lossy relational decomposition of
// polymorphic Condition/Effect/Scalar values.
type ProjectModel struct {
	bun.BaseModel `bun:"table:projects,alias:p"`

	ID        string    `bun:"id,pk"`
	Name      string    `bun:"name,notnull"`
	Document  []byte    `bun:"document,type:jsonb,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// TickRecordModel is the bun-mapped row for one appended TickRecord.
type TickRecordModel struct {
	bun.BaseModel `bun:"table:tick_records,alias:t"`

	ID        int64     `bun:"id,pk,autoincrement"`
	ThreadID  string    `bun:"thread_id,notnull"`
	ProjectID string    `bun:"project_id,notnull"`
	TickIndex int       `bun:"tick_index,notnull"`
	Document  []byte    `bun:"document,type:jsonb,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// toTickRecord decodes the stored document back into a model.TickRecord.
func (t *TickRecordModel) toTickRecord() (model.TickRecord, error) {
	var rec model.TickRecord
	err := unmarshalJSON(t.Document, &rec)
	return rec, err
}
