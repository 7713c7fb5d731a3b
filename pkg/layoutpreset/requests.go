package layoutpreset

import "github.com/google/uuid"

// Request DTOs

// AllowedFragmentsRequest asks which fragments may be offered in a slot.
//
// ContextItemID is the page being edited (uuid.Nil when the host could not
// resolve it). DeviceID is the device whose layout is being edited and is
// required. ContextDeviceID is the ambient editor device used to decide
// whether the page itself still needs an anchor; it defaults to DeviceID.
// SiteName is the ambient current site, used only when there is no context
// page to derive the site from.
type AllowedFragmentsRequest struct {
	PlaceholderKey  string
	ContextItemID   uuid.UUID
	DeviceID        string
	ContextDeviceID string
	SiteName        string
}

// InsertRenderingRequest describes an insert action in the page editor.
//
// ItemID is the page receiving the insert, RenderingItemID the item the author
// picked (a preset fragment or an ordinary component).
type InsertRenderingRequest struct {
	ItemID          uuid.UUID
	DeviceID        string
	RenderingItemID uuid.UUID
	PlaceholderKey  string
}
