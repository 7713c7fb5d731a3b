package layoutpreset

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for content node and type persistence
type Repository interface {
	// Type operations
	CreateType(ctx context.Context, t *TypeDescriptor) error
	GetType(ctx context.Context, id uuid.UUID) (*TypeDescriptor, error)
	ListTypes(ctx context.Context) ([]*TypeDescriptor, error)

	// Node operations
	CreateNode(ctx context.Context, node *ContentNode) error
	GetNode(ctx context.Context, id uuid.UUID) (*ContentNode, error)
	UpdateNode(ctx context.Context, node *ContentNode) error
	DeleteNode(ctx context.Context, id uuid.UUID) error

	// GetChildren returns the direct children of a node in sibling order
	GetChildren(ctx context.Context, parentID uuid.UUID) ([]*ContentNode, error)
}

// LayoutCodec converts between the raw layout field and device variants.
type LayoutCodec interface {
	Parse(raw string) ([]DeviceVariant, error)
	Serialize(devices []DeviceVariant) (string, error)
}

// SiteRegistry lists the sites known to the host.
type SiteRegistry interface {
	Sites(ctx context.Context) ([]Site, error)
}

// PlaceholderSettings resolves the components configured for a placeholder.
// Restricted reports whether the list was explicitly configured, as opposed
// to "anything goes".
type PlaceholderSettings interface {
	AllowedRenderings(ctx context.Context, placeholderPath, deviceID string) (components []uuid.UUID, restricted bool, err error)
}

// Inserter performs the default single-rendering insertion used for items
// that are not preset fragments.
type Inserter interface {
	InsertRendering(ctx context.Context, dst *DeviceVariant, item *ContentNode, placeholderKey string) (*RenderingNode, error)
}

// EventSink defines the interface for insert notifications
type EventSink interface {
	// PresetInserted is fired after a preset payload was copied into a page
	PresetInserted(ctx context.Context, page *ContentNode, preset *ContentNode, result *InsertResult) error

	// RenderingInserted is fired after a non-preset item was inserted
	RenderingInserted(ctx context.Context, page *ContentNode, item *ContentNode, result *InsertResult) error
}
