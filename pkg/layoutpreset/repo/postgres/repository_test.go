package postgres_test

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/layout-presets/pkg/layoutpreset"
	repopg "github.com/tendant/layout-presets/pkg/layoutpreset/repo/postgres"
)

// newTestRepository connects to TEST_DATABASE_URL and applies the schema in
// a throwaway Postgres schema that is dropped with the test.
func newTestRepository(t *testing.T) *repopg.Repository {
	t.Helper()

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	schema := "layout_test_" + strings.ReplaceAll(uuid.NewString()[:8], "-", "")

	cfg, err := pgxpool.ParseConfig(dbURL)
	require.NoError(t, err)
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		_, err := conn.Exec(ctx, "SET search_path TO "+pgx.Identifier{schema}.Sanitize())
		return err
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	require.NoError(t, err)
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		t.Skipf("postgres not available: %v", err)
	}

	_, err = pool.Exec(ctx, "CREATE SCHEMA "+pgx.Identifier{schema}.Sanitize())
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), "DROP SCHEMA "+pgx.Identifier{schema}.Sanitize()+" CASCADE")
		pool.Close()
	})

	require.NoError(t, repopg.EnsureSchema(ctx, pool))
	// applying twice is harmless
	require.NoError(t, repopg.EnsureSchema(ctx, pool))

	return repopg.NewWithPool(pool)
}

func TestPostgresRepository_Types(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	base := &layoutpreset.TypeDescriptor{ID: uuid.New(), Name: "a-base"}
	mixin := &layoutpreset.TypeDescriptor{ID: uuid.New(), Name: "b-mixin"}
	child := &layoutpreset.TypeDescriptor{ID: uuid.New(), Name: "c-child", BaseIDs: []uuid.UUID{mixin.ID, base.ID}}
	for _, td := range []*layoutpreset.TypeDescriptor{base, mixin, child} {
		require.NoError(t, repo.CreateType(ctx, td))
	}

	got, err := repo.GetType(ctx, child.ID)
	require.NoError(t, err)
	assert.Equal(t, child, got)

	_, err = repo.GetType(ctx, uuid.New())
	assert.Equal(t, layoutpreset.ErrTypeNotFound, err)

	// upsert replaces the base list
	child.BaseIDs = []uuid.UUID{base.ID}
	require.NoError(t, repo.CreateType(ctx, child))

	types, err := repo.ListTypes(ctx)
	require.NoError(t, err)
	require.Len(t, types, 3)
	assert.Equal(t, base.ID, types[0].ID)
	assert.Empty(t, types[0].BaseIDs)
	assert.Equal(t, []uuid.UUID{base.ID}, types[2].BaseIDs)
}

func TestPostgresRepository_Nodes(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	typeID := uuid.New()
	folder := &layoutpreset.ContentNode{ID: uuid.New(), TypeID: typeID, Name: "presets", Path: "/content/presets", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, repo.CreateNode(ctx, folder))

	var children []*layoutpreset.ContentNode
	for i := 0; i < 3; i++ {
		n := &layoutpreset.ContentNode{
			ID:        uuid.New(),
			ParentID:  folder.ID,
			TypeID:    typeID,
			Name:      fmt.Sprintf("preset-%d", i),
			Path:      fmt.Sprintf("/content/presets/preset-%d", i),
			CreatedAt: now,
			UpdatedAt: now,
		}
		require.NoError(t, repo.CreateNode(ctx, n))
		children = append(children, n)
	}

	got, err := repo.GetNode(ctx, folder.ID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, got.ParentID)
	assert.Equal(t, "/content/presets", got.Path)
	assert.True(t, now.Equal(got.CreatedAt))

	listed, err := repo.GetChildren(ctx, folder.ID)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	for i, n := range listed {
		assert.Equal(t, children[i].ID, n.ID)
		assert.Equal(t, folder.ID, n.ParentID)
	}

	update := *children[1]
	update.Layout = "<r/>"
	update.UpdatedAt = now.Add(time.Minute)
	require.NoError(t, repo.UpdateNode(ctx, &update))

	got, err = repo.GetNode(ctx, update.ID)
	require.NoError(t, err)
	assert.Equal(t, "<r/>", got.Layout)

	require.NoError(t, repo.DeleteNode(ctx, children[0].ID))
	_, err = repo.GetNode(ctx, children[0].ID)
	assert.Equal(t, layoutpreset.ErrNodeNotFound, err)
	assert.Equal(t, layoutpreset.ErrNodeNotFound, repo.DeleteNode(ctx, children[0].ID))

	missing := update
	missing.ID = uuid.New()
	assert.Equal(t, layoutpreset.ErrNodeNotFound, repo.UpdateNode(ctx, &missing))

	err = repo.CreateNode(ctx, folder)
	assert.Error(t, err)
}
