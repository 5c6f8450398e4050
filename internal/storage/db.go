// Package storage persists projects and tick history to Postgres via
// bun, the way the teacher's infrastructure/storage package wires
// pgdriver/pgdialect under a thin repository layer.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/pj4239460/story-graph-assistant/internal/config"
)

// NewDB opens a bun.DB against cfg's Postgres URL and registers the
// models this package persists.
func NewDB(cfg config.DatabaseConfig) (*bun.DB, error) {
	connector := pgdriver.NewConnector(
		pgdriver.WithDSN(cfg.URL),
		pgdriver.WithTimeout(30*time.Second),
		pgdriver.WithDialTimeout(10*time.Second),
		pgdriver.WithReadTimeout(10*time.Second),
		pgdriver.WithWriteTimeout(10*time.Second),
	)

	sqldb := sql.OpenDB(connector)
	sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	db := bun.NewDB(sqldb, pgdialect.New())
	db.RegisterModel((*ProjectModel)(nil), (*TickRecordModel)(nil))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}

// CreateSchema issues the DDL this package's models need. It is
// intentionally idempotent (IF NOT EXISTS) so it is safe to call on
// every process start, the way small services that don't carry a
// separate migration tool do.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	models := []interface{}{
		(*ProjectModel)(nil),
		(*TickRecordModel)(nil),
	}
	for _, m := range models {
		if _, err := db.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table for %T: %w", m, err)
		}
	}
	_, err := db.NewCreateIndex().
		Model((*TickRecordModel)(nil)).
		IfNotExists().
		Index("idx_tick_records_thread_tick").
		Column("thread_id", "tick_index").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create tick_records index: %w", err)
	}
	return nil
}
