package layoutpreset

import "strings"

// FindDevice returns the variant whose id matches deviceID, ignoring case and
// surrounding braces, or nil.
func FindDevice(devices []DeviceVariant, deviceID string) *DeviceVariant {
	want := normalizeID(deviceID)
	for i := range devices {
		if normalizeID(devices[i].ID) == want {
			return &devices[i]
		}
	}
	return nil
}

// FindAnchor returns the first rendering placed in a slot whose last segment
// ends with anchorKey.
func FindAnchor(device *DeviceVariant, anchorKey string) (*RenderingNode, bool) {
	if device == nil {
		return nil, false
	}
	for i := range device.Renderings {
		if isAnchorPath(device.Renderings[i].SlotPath, anchorKey) {
			return &device.Renderings[i], true
		}
	}
	return nil, false
}

// BoundPlaceholderOf returns the slot key a fragment's device variant is bound
// to: the canonical segment the anchor was dropped into, independent of where
// the anchor sits now. ok is false when the variant has no anchor.
func BoundPlaceholderOf(device *DeviceVariant, anchorKey string) (string, bool) {
	anchor, ok := FindAnchor(device, anchorKey)
	if !ok {
		return "", false
	}

	segments := PlaceholderSegments(CanonicalizePlaceholder(anchor.SlotPath))
	if n := len(segments); n > 0 && strings.EqualFold(segments[n-1], anchorKey) {
		segments = segments[:n-1]
	}
	if len(segments) == 0 {
		return "", false
	}
	// The slot the anchor was dropped into may itself be dynamic.
	return LastPlaceholderSegment(CanonicalizePlaceholder(strings.Join(segments, "/"))), true
}
