package layoutpreset

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSingleRenderingInserter(t *testing.T) {
	ctx := context.Background()
	inserter := &SingleRenderingInserter{newID: sequentialIDs()}
	item := &ContentNode{ID: uuid.MustParse("2c3d4e5f-0000-4000-8000-000000000011")}
	dst := &DeviceVariant{Renderings: []RenderingNode{{SlotPath: "header"}}}

	r, err := inserter.InsertRendering(ctx, dst, item, "main")
	require.NoError(t, err)

	require.Len(t, dst.Renderings, 2)
	assert.Same(t, &dst.Renderings[1], r)
	assert.Equal(t, "{2C3D4E5F-0000-4000-8000-000000000011}", r.ComponentRef)
	assert.Equal(t, "main", r.SlotPath)
	assert.Equal(t, "{AAAAAAAA-0000-4000-8000-000000000001}", r.InstanceID)

	_, err = inserter.InsertRendering(ctx, dst, nil, "main")
	assert.ErrorIs(t, err, ErrMissingArgument)
	_, err = inserter.InsertRendering(ctx, dst, item, "")
	assert.ErrorIs(t, err, ErrMissingArgument)
	_, err = inserter.InsertRendering(ctx, nil, item, "main")
	assert.ErrorIs(t, err, ErrMissingArgument)
}

func TestStaticPlaceholderSettings(t *testing.T) {
	ctx := context.Background()
	hero, teaser := uuid.New(), uuid.New()

	settings := NewStaticPlaceholderSettings([]PlaceholderSetting{
		{Key: "Main", Components: []uuid.UUID{hero}},
		{Key: "main", Components: []uuid.UUID{hero, teaser}, Restricted: true},
		{Key: "col", Components: []uuid.UUID{teaser}},
	})

	ids, restricted, err := settings.AllowedRenderings(ctx, "page/main", "")
	require.NoError(t, err)
	assert.True(t, restricted)
	assert.Equal(t, []uuid.UUID{hero, teaser}, ids)

	ids, restricted, err = settings.AllowedRenderings(ctx, "main/hero/col_d1000000-0000-4000-8000-000000000002", "")
	require.NoError(t, err)
	assert.False(t, restricted)
	assert.Equal(t, []uuid.UUID{teaser}, ids)

	ids, restricted, err = settings.AllowedRenderings(ctx, "footer", "")
	require.NoError(t, err)
	assert.False(t, restricted)
	assert.Empty(t, ids)
}

func TestFormatID(t *testing.T) {
	id := uuid.MustParse("143b7ed9-ae35-450b-a1cd-6ab404016e31")
	assert.Equal(t, "{143B7ED9-AE35-450B-A1CD-6AB404016E31}", FormatID(id))
}
