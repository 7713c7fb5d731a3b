package layoutpreset

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// SingleRenderingInserter appends one rendering for the inserted item to the
// end of the device variant.
type SingleRenderingInserter struct {
	newID IDGenerator
}

// NewSingleRenderingInserter creates the default inserter.
func NewSingleRenderingInserter() *SingleRenderingInserter {
	return &SingleRenderingInserter{newID: NewInstanceID}
}

// InsertRendering places item at placeholderKey with a fresh instance id.
func (i *SingleRenderingInserter) InsertRendering(ctx context.Context, dst *DeviceVariant, item *ContentNode, placeholderKey string) (*RenderingNode, error) {
	const op = "insert_rendering"
	if dst == nil {
		return nil, missingArgument(op, "device")
	}
	if item == nil {
		return nil, missingArgument(op, "rendering item")
	}
	if placeholderKey == "" {
		return nil, missingArgument(op, "placeholder key")
	}

	dst.Renderings = append(dst.Renderings, RenderingNode{
		ComponentRef: FormatID(item.ID),
		SlotPath:     placeholderKey,
		InstanceID:   i.newID(),
	})
	return &dst.Renderings[len(dst.Renderings)-1], nil
}

// FormatID renders a node id the way layout documents reference it.
func FormatID(id uuid.UUID) string {
	return "{" + strings.ToUpper(id.String()) + "}"
}

// StaticPlaceholderSettings answers placeholder lookups from a fixed table
// keyed by placeholder key. Keys are matched against the last canonical
// segment of the requested path, ignoring case.
type StaticPlaceholderSettings struct {
	entries map[string]PlaceholderSetting
}

// PlaceholderSetting lists the components allowed in one placeholder.
type PlaceholderSetting struct {
	Key        string
	Components []uuid.UUID
	Restricted bool
}

// NewStaticPlaceholderSettings creates settings from the given entries. Later
// entries for the same key replace earlier ones.
func NewStaticPlaceholderSettings(settings []PlaceholderSetting) *StaticPlaceholderSettings {
	s := &StaticPlaceholderSettings{entries: make(map[string]PlaceholderSetting, len(settings))}
	for _, setting := range settings {
		s.entries[strings.ToLower(setting.Key)] = setting
	}
	return s
}

// AllowedRenderings returns the components configured for the placeholder.
// Unknown placeholders are unrestricted and empty.
func (s *StaticPlaceholderSettings) AllowedRenderings(ctx context.Context, placeholderPath, deviceID string) ([]uuid.UUID, bool, error) {
	key := strings.ToLower(LastPlaceholderSegment(CanonicalizePlaceholder(placeholderPath)))
	setting, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	return append([]uuid.UUID(nil), setting.Components...), setting.Restricted, nil
}
