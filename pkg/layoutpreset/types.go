package layoutpreset

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/maps"
)

// Well-known identifiers used when no override is configured.
var (
	// DefaultBasePresetTypeID is the type every preset fragment derives from.
	DefaultBasePresetTypeID = uuid.MustParse("68C8BC61-4341-4822-A2E1-699245234BFF")

	// DefaultPresetRenderingID is the anchor component authors drop to bind a fragment.
	DefaultPresetRenderingID = uuid.MustParse("143B7ED9-AE35-450B-A1CD-6AB404016E31")
)

const (
	// DefaultAnchorKey is the reserved slot key marking a fragment payload.
	DefaultAnchorKey = "partiallayoutpreset"

	// SharedScope is the location scope offered on every site.
	SharedScope = "shared"

	// DefaultContentRootPath is the generic content root shared by all sites.
	DefaultContentRootPath = "/content"

	// DefaultSiteName is the only site allowed to claim the generic content root.
	DefaultSiteName = "website"
)

// TypeDescriptor describes a content type and its ordered base types.
type TypeDescriptor struct {
	ID      uuid.UUID   `json:"id"`
	Name    string      `json:"name"`
	BaseIDs []uuid.UUID `json:"base_ids,omitempty"`
}

// ContentNode is an item in the content tree.
//
// Layout holds the raw layout document with every device variant of the node.
// It is parsed on demand through a LayoutCodec and never cached.
type ContentNode struct {
	ID        uuid.UUID `json:"id"`
	ParentID  uuid.UUID `json:"parent_id"`
	TypeID    uuid.UUID `json:"type_id"`
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Layout    string    `json:"layout,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DeviceVariant is the ordered set of renderings a node shows on one device.
//
// Attributes and Elements carry layout content the core does not interpret,
// such as placeholder settings, so it survives a parse/serialize cycle.
// Elements hold raw markup in the codec's own format.
type DeviceVariant struct {
	ID         string            `json:"id"`
	LayoutID   string            `json:"layout_id,omitempty"`
	Renderings []RenderingNode   `json:"renderings"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Elements   []string          `json:"elements,omitempty"`
}

// RenderingNode is one placed component.
//
// InstanceID is unique within its DeviceVariant. SlotPath is a '/'-separated
// placeholder path; nested dynamic placeholders carry the instance id of the
// rendering that owns them as part of a segment.
//
// Attributes and Elements are passed through untouched, e.g. a datasource or
// caching options.
type RenderingNode struct {
	ComponentRef string            `json:"component_ref"`
	SlotPath     string            `json:"slot_path"`
	InstanceID   string            `json:"instance_id"`
	Settings     map[string]string `json:"settings,omitempty"`
	Attributes   map[string]string `json:"attributes,omitempty"`
	Elements     []string          `json:"elements,omitempty"`
}

// Clone returns a deep copy of the rendering.
func (r RenderingNode) Clone() RenderingNode {
	c := r
	c.Settings = maps.Clone(r.Settings)
	c.Attributes = maps.Clone(r.Attributes)
	c.Elements = slices.Clone(r.Elements)
	return c
}

// Site is a registered site and the content path it is rooted at.
type Site struct {
	Name     string `json:"name"`
	RootPath string `json:"root_path"`
}

// LocationRule registers a folder whose direct children may be offered as
// presets. An empty SiteName registers the folder for the shared scope.
type LocationRule struct {
	SiteName   string    `json:"site_name,omitempty"`
	LocationID uuid.UUID `json:"location_id"`
}

// AllowedFragments is the outcome of a filter query.
//
// An empty Items slice means nothing should be added; it is not an error.
// Restricted and Delegated are only meaningful when the query was answered by
// the parent placeholder settings.
type AllowedFragments struct {
	Items      []*ContentNode `json:"items"`
	Restricted bool           `json:"restricted"`
	Delegated  bool           `json:"delegated"`
}

// InsertResult reports what an insert action placed into the page.
type InsertResult struct {
	ItemID    uuid.UUID      `json:"item_id"`
	DeviceID  string         `json:"device_id"`
	Rendering *RenderingNode `json:"rendering"`
	Copied    int            `json:"copied"`
	Delegated bool           `json:"delegated"`
}
