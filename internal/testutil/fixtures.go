package testutil

import (
	"context"
	_ "embed"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/tendant/layout-presets/pkg/layoutpreset"
	"github.com/tendant/layout-presets/pkg/layoutpreset/layout"
	"github.com/tendant/layout-presets/pkg/layoutpreset/repo/memory"
	"github.com/tendant/layout-presets/pkg/layoutpreset/seed"
)

// SiteYAML is a small content tree: a /content root, a presets folder with
// three fragments, a few rendering items and one page.
//
//go:embed testdata/site.yaml
var SiteYAML []byte

// Well-known ids from SiteYAML.
var (
	DefaultDevice = "{FE5D7FDF-89C0-4D99-9AA3-B5FBD009C9F3}"

	HeroPresetTypeID = uuid.MustParse("9A1F0D2E-5B3C-4E6F-8A7B-1C2D3E4F5A6B")
	FolderTypeID     = uuid.MustParse("1B2C3D4E-0000-4000-8000-000000000001")
	PageTypeID       = uuid.MustParse("1B2C3D4E-0000-4000-8000-000000000002")
	RenderingTypeID  = uuid.MustParse("1B2C3D4E-0000-4000-8000-000000000003")

	ContentRootID = uuid.MustParse("A0000000-0000-4000-8000-000000000001")
	PresetsFolder = uuid.MustParse("A0000000-0000-4000-8000-000000000002")

	HeroComponentID   = uuid.MustParse("2C3D4E5F-0000-4000-8000-000000000010")
	TeaserComponentID = uuid.MustParse("2C3D4E5F-0000-4000-8000-000000000011")

	// HeroMain is bound to "main" and carries a nested dynamic placeholder.
	HeroMain = uuid.MustParse("B0000000-0000-4000-8000-000000000001")
	// Sidebar is bound to "aside" through a dynamic placeholder.
	Sidebar = uuid.MustParse("B0000000-0000-4000-8000-000000000002")
	// Draft has no layout and is therefore unbound.
	Draft = uuid.MustParse("B0000000-0000-4000-8000-000000000003")

	HomePage = uuid.MustParse("C0000000-0000-4000-8000-000000000001")
)

// Fixture bundles a seeded repository and a service over it.
type Fixture struct {
	Repo    *memory.Repository
	Codec   layoutpreset.LayoutCodec
	Service layoutpreset.Service
}

// SeedRepository loads SiteYAML into a fresh memory repository.
func SeedRepository(t *testing.T) (*memory.Repository, layoutpreset.LayoutCodec) {
	t.Helper()

	repo := memory.New()
	codec := layout.NewXMLCodec()

	fixtures, err := seed.Parse(SiteYAML)
	require.NoError(t, err)
	require.NoError(t, seed.Apply(context.Background(), repo, codec, fixtures))

	return repo, codec
}

// NewFixture seeds a repository and builds a service with the shared
// presets folder registered. Extra options are applied last.
func NewFixture(t *testing.T, opts ...layoutpreset.Option) *Fixture {
	t.Helper()

	repo, codec := SeedRepository(t)

	options := []layoutpreset.Option{
		layoutpreset.WithRepository(repo),
		layoutpreset.WithLayoutCodec(codec),
		layoutpreset.WithSiteRegistry(layoutpreset.NewStaticSiteRegistry([]layoutpreset.Site{
			{Name: "website", RootPath: "/content"},
		})),
		layoutpreset.WithLocationRules(layoutpreset.LocationRule{LocationID: PresetsFolder}),
		layoutpreset.WithEventSink(layoutpreset.NewNoopEventSink()),
	}
	options = append(options, opts...)

	svc, err := layoutpreset.New(options...)
	require.NoError(t, err)

	return &Fixture{Repo: repo, Codec: codec, Service: svc}
}

// Device parses the layout of node id and returns its variant for deviceID.
func (f *Fixture) Device(t *testing.T, id uuid.UUID, deviceID string) *layoutpreset.DeviceVariant {
	t.Helper()

	node, err := f.Repo.GetNode(context.Background(), id)
	require.NoError(t, err)
	devices, err := f.Codec.Parse(node.Layout)
	require.NoError(t, err)
	device := layoutpreset.FindDevice(devices, deviceID)
	require.NotNil(t, device, "device %s not found on %s", deviceID, id)
	return device
}
