package layout

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/layout-presets/pkg/layoutpreset"
)

const sampleXML = `<r>
  <d id="{FE5D7FDF-89C0-4D99-9AA3-B5FBD009C9F3}" l="{14030E9F-CE92-49C6-AD87-7D49B50E42EA}">
    <r id="{143B7ED9-AE35-450B-A1CD-6AB404016E31}" ph="main/partiallayoutpreset" uid="{D1000000-0000-4000-8000-000000000001}" />
    <r id="{2C3D4E5F-0000-4000-8000-000000000010}" ph="main/partiallayoutpreset/hero" uid="{D1000000-0000-4000-8000-000000000002}" par="theme=dark&amp;size=l" />
  </d>
  <d id="{46D2F427-4CE5-4E1F-BA10-EF3636F43534}" />
</r>`

func TestXMLCodec_Parse(t *testing.T) {
	devices, err := NewXMLCodec().Parse(sampleXML)
	require.NoError(t, err)
	require.Len(t, devices, 2)

	d := devices[0]
	assert.Equal(t, "{FE5D7FDF-89C0-4D99-9AA3-B5FBD009C9F3}", d.ID)
	assert.Equal(t, "{14030E9F-CE92-49C6-AD87-7D49B50E42EA}", d.LayoutID)
	require.Len(t, d.Renderings, 2)
	assert.Equal(t, "main/partiallayoutpreset", d.Renderings[0].SlotPath)
	assert.Equal(t, "{D1000000-0000-4000-8000-000000000001}", d.Renderings[0].InstanceID)
	assert.Nil(t, d.Renderings[0].Settings)
	assert.Equal(t, map[string]string{"theme": "dark", "size": "l"}, d.Renderings[1].Settings)

	assert.Empty(t, devices[1].Renderings)
}

func TestCodecs_RoundTrip(t *testing.T) {
	devices := []layoutpreset.DeviceVariant{
		{
			ID:       "{FE5D7FDF-89C0-4D99-9AA3-B5FBD009C9F3}",
			LayoutID: "{14030E9F-CE92-49C6-AD87-7D49B50E42EA}",
			Renderings: []layoutpreset.RenderingNode{
				{ComponentRef: "{A}", SlotPath: "main", InstanceID: "{1}"},
				{ComponentRef: "{B}", SlotPath: "main/col_1", InstanceID: "{2}", Settings: map[string]string{"q": "a b&c"}},
			},
		},
	}

	for _, format := range []string{FormatXML, FormatJSON} {
		t.Run(format, func(t *testing.T) {
			codec, err := NewCodec(format)
			require.NoError(t, err)

			raw, err := codec.Serialize(devices)
			require.NoError(t, err)

			parsed, err := codec.Parse(raw)
			require.NoError(t, err)
			assert.Equal(t, devices, parsed)
		})
	}
}

const richXML = `<r xmlns:s="s">
  <d id="{FE5D7FDF-89C0-4D99-9AA3-B5FBD009C9F3}" l="{14030E9F-CE92-49C6-AD87-7D49B50E42EA}" custom="kept">
    <r id="{2C3D4E5F-0000-4000-8000-000000000011}" ph="main" uid="{E1000000-0000-4000-8000-000000000001}" ds="{DS-ITEM}" cac="1" s:vbd="1">
      <rls><ruleset id="{R}"/></rls>
    </r>
    <p key="main" md="{F0000000-0000-4000-8000-000000000002}" />
  </d>
</r>`

func TestXMLCodec_KeepsUnmodelledContent(t *testing.T) {
	codec := NewXMLCodec()

	devices, err := codec.Parse(richXML)
	require.NoError(t, err)
	require.Len(t, devices, 1)

	d := devices[0]
	assert.Equal(t, map[string]string{"custom": "kept"}, d.Attributes)
	require.Len(t, d.Elements, 1)
	assert.Equal(t, `<p key="main" md="{F0000000-0000-4000-8000-000000000002}"></p>`, d.Elements[0])

	require.Len(t, d.Renderings, 1)
	r := d.Renderings[0]
	assert.Equal(t, map[string]string{"ds": "{DS-ITEM}", "cac": "1", "{s}vbd": "1"}, r.Attributes)
	require.Len(t, r.Elements, 1)
	assert.Equal(t, `<rls><ruleset id="{R}"/></rls>`, r.Elements[0])

	raw, err := codec.Serialize(devices)
	require.NoError(t, err)
	assert.Contains(t, raw, `ds="{DS-ITEM}"`)
	assert.Contains(t, raw, `cac="1"`)
	assert.Contains(t, raw, `custom="kept"`)
	assert.Contains(t, raw, `<p key="main" md="{F0000000-0000-4000-8000-000000000002}"></p>`)
	assert.Contains(t, raw, `<rls><ruleset id="{R}"/></rls>`)

	again, err := codec.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, devices, again)
}

func TestCodecs_RoundTripUnmodelledContent(t *testing.T) {
	devices := []layoutpreset.DeviceVariant{
		{
			ID:         "{FE5D7FDF-89C0-4D99-9AA3-B5FBD009C9F3}",
			Attributes: map[string]string{"custom": "kept"},
			Elements:   []string{`<p key="main" md="{M}"></p>`},
			Renderings: []layoutpreset.RenderingNode{
				{ComponentRef: "{A}", SlotPath: "main", InstanceID: "{1}", Attributes: map[string]string{"ds": "{DS}"}},
			},
		},
	}

	for _, format := range []string{FormatXML, FormatJSON} {
		t.Run(format, func(t *testing.T) {
			codec, err := NewCodec(format)
			require.NoError(t, err)

			raw, err := codec.Serialize(devices)
			require.NoError(t, err)

			parsed, err := codec.Parse(raw)
			require.NoError(t, err)
			assert.Equal(t, devices, parsed)
		})
	}
}

func TestXMLCodec_SerializeInvalidElement(t *testing.T) {
	_, err := NewXMLCodec().Serialize([]layoutpreset.DeviceVariant{
		{ID: "{D}", Elements: []string{"<p"}},
	})
	assert.Error(t, err)
}

func TestCodecs_Empty(t *testing.T) {
	for _, codec := range []layoutpreset.LayoutCodec{NewXMLCodec(), NewJSONCodec()} {
		devices, err := codec.Parse("  ")
		require.NoError(t, err)
		assert.Empty(t, devices)
	}

	raw, err := NewJSONCodec().Serialize(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)
}

func TestCodecs_InvalidDocument(t *testing.T) {
	tests := []struct {
		name  string
		codec layoutpreset.LayoutCodec
		raw   string
	}{
		{"xml", NewXMLCodec(), "<r><d>"},
		{"xml parameters", NewXMLCodec(), `<r><d id="x"><r id="a" ph="main" uid="1" par="%zz"/></d></r>`},
		{"json", NewJSONCodec(), "{"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.codec.Parse(tt.raw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, layoutpreset.ErrInvalidLayout))
		})
	}
}

func TestNewCodec(t *testing.T) {
	codec, err := NewCodec("")
	require.NoError(t, err)
	assert.IsType(t, &XMLCodec{}, codec)

	codec, err = NewCodec("JSON")
	require.NoError(t, err)
	assert.IsType(t, &JSONCodec{}, codec)

	_, err = NewCodec("yaml")
	assert.Error(t, err)
}
