package layoutpreset

import "github.com/google/uuid"

// TypeGraph is an immutable adjacency view of type descriptors and their
// base types. Base order is preserved so traversal follows declaration order.
type TypeGraph struct {
	bases map[uuid.UUID][]uuid.UUID
}

// NewTypeGraph builds a graph from the given descriptors. Nil entries are ignored.
func NewTypeGraph(types []*TypeDescriptor) *TypeGraph {
	g := &TypeGraph{bases: make(map[uuid.UUID][]uuid.UUID, len(types))}
	for _, t := range types {
		if t == nil {
			continue
		}
		g.bases[t.ID] = append([]uuid.UUID(nil), t.BaseIDs...)
	}
	return g
}

// Bases returns the direct base types of typeID.
func (g *TypeGraph) Bases(typeID uuid.UUID) []uuid.UUID {
	return g.bases[typeID]
}

// IsDerived reports whether typeID equals targetID or reaches it through its
// base types. Each type is visited at most once, so cycles terminate.
func (g *TypeGraph) IsDerived(typeID, targetID uuid.UUID) bool {
	visited := make(map[uuid.UUID]bool)

	var walk func(id uuid.UUID) bool
	walk = func(id uuid.UUID) bool {
		if id == targetID {
			return true
		}
		if visited[id] {
			return false
		}
		visited[id] = true
		for _, base := range g.Bases(id) {
			if walk(base) {
				return true
			}
		}
		return false
	}

	return walk(typeID)
}

// IsNodeDerived reports whether the node's type derives from targetID.
func (g *TypeGraph) IsNodeDerived(node *ContentNode, targetID uuid.UUID) bool {
	if node == nil {
		return false
	}
	return g.IsDerived(node.TypeID, targetID)
}

// ChildrenDerivedFrom filters nodes down to those deriving from targetID,
// keeping their order.
func (g *TypeGraph) ChildrenDerivedFrom(children []*ContentNode, targetID uuid.UUID) []*ContentNode {
	var result []*ContentNode
	for _, child := range children {
		if g.IsNodeDerived(child, targetID) {
			result = append(result, child)
		}
	}
	return result
}
