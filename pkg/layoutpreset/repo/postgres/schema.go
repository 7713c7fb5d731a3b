package postgres

import (
	"context"
	"fmt"
)

// Schema creates the tables the repository expects. It is idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS type_descriptor (
	id   UUID PRIMARY KEY,
	name TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS type_base (
	type_id  UUID NOT NULL REFERENCES type_descriptor(id) ON DELETE CASCADE,
	base_id  UUID NOT NULL,
	position INT  NOT NULL,
	PRIMARY KEY (type_id, position)
);

CREATE TABLE IF NOT EXISTS content_node (
	seq        BIGSERIAL,
	id         UUID PRIMARY KEY,
	parent_id  UUID,
	type_id    UUID NOT NULL,
	name       TEXT NOT NULL DEFAULT '',
	path       TEXT NOT NULL DEFAULT '',
	layout     TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS content_node_parent_idx ON content_node (parent_id, seq);
`

// EnsureSchema applies Schema on db.
func EnsureSchema(ctx context.Context, db DBTX) error {
	if _, err := db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
