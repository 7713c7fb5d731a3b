package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/layout-presets/pkg/layoutpreset"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements layoutpreset.Repository using PostgreSQL
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository
func New(db DBTX) *Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

// Error handling helper
func (r *Repository) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			if strings.Contains(pgErr.ConstraintName, "content_node") {
				return fmt.Errorf("content node already exists")
			}
			if strings.Contains(pgErr.ConstraintName, "type") {
				return fmt.Errorf("type descriptor already exists")
			}
			return fmt.Errorf("duplicate entry")
		case "23503": // foreign_key_violation
			return fmt.Errorf("referenced record not found")
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}

// Type operations

func (r *Repository) CreateType(ctx context.Context, t *layoutpreset.TypeDescriptor) error {
	query := `
		INSERT INTO type_descriptor (id, name) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name`

	if _, err := r.db.Exec(ctx, query, t.ID, t.Name); err != nil {
		return r.handlePostgresError("create type", err)
	}

	// Base sets are replaced wholesale so their order stays authoritative
	if _, err := r.db.Exec(ctx, `DELETE FROM type_base WHERE type_id = $1`, t.ID); err != nil {
		return r.handlePostgresError("reset type bases", err)
	}
	for i, baseID := range t.BaseIDs {
		_, err := r.db.Exec(ctx,
			`INSERT INTO type_base (type_id, base_id, position) VALUES ($1, $2, $3)`,
			t.ID, baseID, i)
		if err != nil {
			return r.handlePostgresError("create type base", err)
		}
	}

	return nil
}

func (r *Repository) GetType(ctx context.Context, id uuid.UUID) (*layoutpreset.TypeDescriptor, error) {
	var t layoutpreset.TypeDescriptor
	err := r.db.QueryRow(ctx, `SELECT id, name FROM type_descriptor WHERE id = $1`, id).Scan(&t.ID, &t.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, layoutpreset.ErrTypeNotFound
		}
		return nil, r.handlePostgresError("get type", err)
	}

	rows, err := r.db.Query(ctx,
		`SELECT base_id FROM type_base WHERE type_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, r.handlePostgresError("get type bases", err)
	}
	defer rows.Close()

	for rows.Next() {
		var baseID uuid.UUID
		if err := rows.Scan(&baseID); err != nil {
			return nil, err
		}
		t.BaseIDs = append(t.BaseIDs, baseID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &t, nil
}

func (r *Repository) ListTypes(ctx context.Context) ([]*layoutpreset.TypeDescriptor, error) {
	query := `
		SELECT t.id, t.name, b.base_id
		FROM type_descriptor t
		LEFT JOIN type_base b ON b.type_id = t.id
		ORDER BY t.name, t.id, b.position`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, r.handlePostgresError("list types", err)
	}
	defer rows.Close()

	var types []*layoutpreset.TypeDescriptor
	byID := make(map[uuid.UUID]*layoutpreset.TypeDescriptor)
	for rows.Next() {
		var (
			id     uuid.UUID
			name   string
			baseID *uuid.UUID
		)
		if err := rows.Scan(&id, &name, &baseID); err != nil {
			return nil, err
		}
		t, ok := byID[id]
		if !ok {
			t = &layoutpreset.TypeDescriptor{ID: id, Name: name}
			byID[id] = t
			types = append(types, t)
		}
		if baseID != nil {
			t.BaseIDs = append(t.BaseIDs, *baseID)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return types, nil
}

// Node operations

const nodeColumns = `id, COALESCE(parent_id, '00000000-0000-0000-0000-000000000000'::uuid),
               type_id, name, path, layout, created_at, updated_at`

func (r *Repository) CreateNode(ctx context.Context, node *layoutpreset.ContentNode) error {
	query := `
		INSERT INTO content_node (
			id, parent_id, type_id, name, path, layout, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(ctx, query,
		node.ID, nullableID(node.ParentID), node.TypeID, node.Name, node.Path,
		node.Layout, node.CreatedAt, node.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("create node", err)
	}

	return nil
}

func (r *Repository) GetNode(ctx context.Context, id uuid.UUID) (*layoutpreset.ContentNode, error) {
	query := `SELECT ` + nodeColumns + ` FROM content_node WHERE id = $1`

	node, err := scanNode(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, layoutpreset.ErrNodeNotFound
		}
		return nil, r.handlePostgresError("get node", err)
	}

	return node, nil
}

func (r *Repository) UpdateNode(ctx context.Context, node *layoutpreset.ContentNode) error {
	query := `
		UPDATE content_node SET
			parent_id = $2, type_id = $3, name = $4, path = $5,
			layout = $6, updated_at = $7
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		node.ID, nullableID(node.ParentID), node.TypeID, node.Name, node.Path,
		node.Layout, node.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("update node", err)
	}
	if tag.RowsAffected() == 0 {
		return layoutpreset.ErrNodeNotFound
	}

	return nil
}

func (r *Repository) DeleteNode(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM content_node WHERE id = $1`, id)
	if err != nil {
		return r.handlePostgresError("delete node", err)
	}
	if tag.RowsAffected() == 0 {
		return layoutpreset.ErrNodeNotFound
	}
	return nil
}

func (r *Repository) GetChildren(ctx context.Context, parentID uuid.UUID) ([]*layoutpreset.ContentNode, error) {
	query := `SELECT ` + nodeColumns + `
        FROM content_node WHERE parent_id = $1
        ORDER BY seq`

	rows, err := r.db.Query(ctx, query, parentID)
	if err != nil {
		return nil, r.handlePostgresError("get children", err)
	}
	defer rows.Close()

	var nodes []*layoutpreset.ContentNode
	for rows.Next() {
		node, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return nodes, nil
}

func scanNode(row pgx.Row) (*layoutpreset.ContentNode, error) {
	var node layoutpreset.ContentNode
	err := row.Scan(
		&node.ID, &node.ParentID, &node.TypeID, &node.Name, &node.Path,
		&node.Layout, &node.CreatedAt, &node.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &node, nil
}

func nullableID(id uuid.UUID) interface{} {
	if id == uuid.Nil {
		return nil
	}
	return id
}
