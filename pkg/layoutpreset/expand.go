package layoutpreset

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// IDGenerator mints rendering instance ids.
type IDGenerator func() string

// NewInstanceID returns a fresh instance id in the braced upper-case form
// layout documents use.
func NewInstanceID() string {
	return "{" + strings.ToUpper(uuid.New().String()) + "}"
}

// Expand copies the fragment renderings in src that sit at or below
// sourceAnchor into dst, re-rooted at destination, and returns the copy of the
// anchor rendering.
//
// Every copy receives a fresh instance id. After copying, every rendering in
// dst has its slot path repaired so nested dynamic placeholders keep pointing
// at the renamed owners. src is never modified.
//
// A fragment without a rendering placed exactly at sourceAnchor is an
// integrity failure; dst is left untouched in that case.
func Expand(dst *DeviceVariant, src []RenderingNode, sourceAnchor, destination string) (*RenderingNode, error) {
	return expandWith(NewInstanceID, dst, src, sourceAnchor, destination)
}

func expandWith(newID IDGenerator, dst *DeviceVariant, src []RenderingNode, sourceAnchor, destination string) (*RenderingNode, error) {
	const op = "expand"
	if dst == nil {
		return nil, missingArgument(op, "device")
	}
	if sourceAnchor == "" {
		return nil, missingArgument(op, "source anchor")
	}
	if destination == "" {
		return nil, missingArgument(op, "destination")
	}

	type idMapping struct{ oldID, newID string }
	var (
		mappings       []idMapping
		copies         []RenderingNode
		representative = -1
	)

	for _, r := range src {
		if !hasPathPrefix(r.SlotPath, sourceAnchor) {
			continue
		}

		id := newID()
		if old := normalizeID(r.InstanceID); old != "" {
			mappings = append(mappings, idMapping{oldID: old, newID: normalizeID(id)})
		}

		c := r.Clone()
		c.SlotPath = strings.Replace(r.SlotPath, sourceAnchor, destination, 1)
		c.InstanceID = id
		copies = append(copies, c)

		if representative < 0 && r.SlotPath == sourceAnchor {
			representative = len(copies) - 1
		}
	}

	if representative < 0 {
		return nil, &IntegrityError{
			Op:         op,
			Identifier: sourceAnchor,
			Err:        fmt.Errorf("%w: no rendering at %q (%d below it)", ErrAnchorNotFound, sourceAnchor, len(copies)),
		}
	}

	base := len(dst.Renderings)
	dst.Renderings = append(dst.Renderings, copies...)

	for i := range dst.Renderings {
		for _, m := range mappings {
			dst.Renderings[i].SlotPath = replaceIDToken(dst.Renderings[i].SlotPath, m.oldID, m.newID)
		}
	}

	return &dst.Renderings[base+representative], nil
}
