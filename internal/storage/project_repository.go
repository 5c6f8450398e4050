package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/pj4239460/story-graph-assistant/internal/model"
)

// ErrProjectNotFound is returned by ProjectRepository.FindByID when no
// row matches.
var ErrProjectNotFound = errors.New("project not found")

// ProjectRepository persists model.Project documents.
type ProjectRepository struct {
	db *bun.DB
}

// NewProjectRepository returns a ProjectRepository backed by db.
func NewProjectRepository(db *bun.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Save inserts or replaces the project, keyed by project.ID.
func (r *ProjectRepository) Save(ctx context.Context, project *model.Project) error {
	doc, err := marshalJSON(project)
	if err != nil {
		return fmt.Errorf("marshal project: %w", err)
	}

	row := &ProjectModel{
		ID:        project.ID,
		Name:      project.Name,
		Document:  doc,
		UpdatedAt: time.Now(),
	}

	_, err = r.db.NewInsert().
		Model(row).
		On("CONFLICT (id) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("document = EXCLUDED.document").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("save project %s: %w", project.ID, err)
	}
	return nil
}

// FindByID loads a project by id.
func (r *ProjectRepository) FindByID(ctx context.Context, id string) (*model.Project, error) {
	row := &ProjectModel{}
	err := r.db.NewSelect().Model(row).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find project %s: %w", id, err)
	}

	var project model.Project
	if err := unmarshalJSON(row.Document, &project); err != nil {
		return nil, fmt.Errorf("unmarshal project %s: %w", id, err)
	}
	return &project, nil
}

// List returns all stored project summaries (id, name), newest first.
func (r *ProjectRepository) List(ctx context.Context, limit, offset int) ([]*ProjectModel, error) {
	var rows []*ProjectModel
	err := r.db.NewSelect().
		Model(&rows).
		Column("id", "name", "created_at", "updated_at").
		Order("updated_at DESC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return rows, nil
}

// Delete removes a project and its tick history.
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*TickRecordModel)(nil)).Where("project_id = ?", id).Exec(ctx); err != nil {
			return fmt.Errorf("delete tick records for project %s: %w", id, err)
		}
		if _, err := tx.NewDelete().Model((*ProjectModel)(nil)).Where("id = ?", id).Exec(ctx); err != nil {
			return fmt.Errorf("delete project %s: %w", id, err)
		}
		return nil
	})
}
