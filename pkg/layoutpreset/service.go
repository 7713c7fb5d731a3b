package layoutpreset

import (
	"context"

	"github.com/google/uuid"
)

// Service defines the main interface for the layout preset library
type Service interface {
	// Host entry points
	ResolveAllowedFragments(ctx context.Context, req AllowedFragmentsRequest) (*AllowedFragments, error)
	InsertRendering(ctx context.Context, req InsertRenderingRequest) (*InsertResult, error)

	// Fragment inspection
	BoundPlaceholder(ctx context.Context, itemID uuid.UUID, deviceID string) (string, bool, error)
	ListPresets(ctx context.Context, folderID uuid.UUID) ([]*ContentNode, error)
	IsDerived(ctx context.Context, typeID, targetID uuid.UUID) (bool, error)

	// Node and layout access
	GetNode(ctx context.Context, id uuid.UUID) (*ContentNode, error)
	GetDevice(ctx context.Context, itemID uuid.UUID, deviceID string) (*DeviceVariant, error)
}
