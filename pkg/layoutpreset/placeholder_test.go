package layoutpreset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalizePlaceholder(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{"plain key", "main", "main"},
		{"nested plain path", "main/partiallayoutpreset/hero", "main/partiallayoutpreset/hero"},
		{"dynamic tail", "main/col_d1000000-0000-4000-8000-000000000002", "main/col"},
		{"upper-case suffix", "main/col_D1000000-0000-4000-8000-000000000002", "main/col"},
		{"suffix on an enclosing segment", "content/aside_e2000000-0000-4000-8000-000000000001/partiallayoutpreset", "content/aside_e2000000-0000-4000-8000-000000000001/partiallayoutpreset"},
		{"nested suffixes", "main_d1000000-0000-4000-8000-000000000001/inner_e1000000-0000-4000-8000-000000000001", "main_d1000000-0000-4000-8000-000000000001/inner"},
		{"anchor under dynamic column", "main/col_d1000000-0000-4000-8000-000000000001/partiallayoutpreset_e1000000-0000-4000-8000-000000000002", "main/col_d1000000-0000-4000-8000-000000000001/partiallayoutpreset"},
		{"stacked suffixes", "main_d1000000-0000-4000-8000-000000000001_e1000000-0000-4000-8000-000000000001", "main"},
		{"suffix without prefix", "_d1000000-0000-4000-8000-000000000001", "_d1000000-0000-4000-8000-000000000001"},
		{"too short to be an id", "main_d1000000-0000-4000-8000", "main_d1000000-0000-4000-8000"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CanonicalizePlaceholder(tt.path)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, CanonicalizePlaceholder(got), "canonical form must be a fixed point")
		})
	}
}

func TestIsAnchorPath(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"main/partiallayoutpreset", true},
		{"partiallayoutpreset", true},
		{"main/PartialLayoutPreset", true},
		{"main/heropartiallayoutpreset", true},
		{"main/partiallayoutpreset/hero", false},
		{"main", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, isAnchorPath(tt.path, DefaultAnchorKey))
		})
	}

	assert.False(t, isAnchorPath("main/partiallayoutpreset", ""))
}

func TestPlaceholderSegments(t *testing.T) {
	assert.Equal(t, []string{"main", "hero"}, PlaceholderSegments("/main//hero/"))
	assert.Empty(t, PlaceholderSegments(""))

	assert.Equal(t, "hero", LastPlaceholderSegment("main/hero"))
	assert.Equal(t, "", LastPlaceholderSegment("/"))

	assert.Equal(t, "main/partiallayoutpreset", ParentPlaceholderPath("main/partiallayoutpreset/hero"))
	assert.Equal(t, "", ParentPlaceholderPath("main"))
}

func TestHasPathPrefix(t *testing.T) {
	assert.True(t, hasPathPrefix("aside/partiallayoutpreset", "aside/partiallayoutpreset"))
	assert.True(t, hasPathPrefix("aside/partiallayoutpreset/hero", "aside/partiallayoutpreset"))
	assert.False(t, hasPathPrefix("aside/partiallayoutpresets", "aside/partiallayoutpreset"))
	assert.False(t, hasPathPrefix("aside", "aside/partiallayoutpreset"))
}

func TestNormalizeID(t *testing.T) {
	assert.Equal(t, "fe5d7fdf-89c0-4d99-9aa3-b5fbd009c9f3", normalizeID(" {FE5D7FDF-89C0-4D99-9AA3-B5FBD009C9F3} "))
	assert.Equal(t, "", normalizeID("{}"))
}

func TestReplaceIDToken(t *testing.T) {
	const (
		oldID = "d1000000-0000-4000-8000-000000000002"
		newID = "aaaaaaaa-0000-4000-8000-000000000001"
	)

	tests := []struct {
		name string
		path string
		want string
	}{
		{
			name: "dynamic suffix",
			path: "main/hero/col_d1000000-0000-4000-8000-000000000002",
			want: "main/hero/col_aaaaaaaa-0000-4000-8000-000000000001",
		},
		{
			name: "upper-case occurrence stays upper-case",
			path: "main/{D1000000-0000-4000-8000-000000000002}/nested",
			want: "main/{AAAAAAAA-0000-4000-8000-000000000001}/nested",
		},
		{
			name: "every occurrence",
			path: "a_d1000000-0000-4000-8000-000000000002/b_d1000000-0000-4000-8000-000000000002",
			want: "a_aaaaaaaa-0000-4000-8000-000000000001/b_aaaaaaaa-0000-4000-8000-000000000001",
		},
		{
			name: "longer hex run on the left",
			path: "main/col_fd1000000-0000-4000-8000-000000000002",
			want: "main/col_fd1000000-0000-4000-8000-000000000002",
		},
		{
			name: "longer hex run on the right",
			path: "main/col_d1000000-0000-4000-8000-0000000000021",
			want: "main/col_d1000000-0000-4000-8000-0000000000021",
		},
		{
			name: "no occurrence",
			path: "main/hero",
			want: "main/hero",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, replaceIDToken(tt.path, oldID, newID))
		})
	}

	assert.Equal(t, "main", replaceIDToken("main", "", newID))
}
