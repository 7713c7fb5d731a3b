package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/tendant/layout-presets/pkg/layoutpreset"
)

var errNodeExists = errors.New("node already exists")

// Repository implements layoutpreset.Repository using in-memory storage
type Repository struct {
	mu       sync.RWMutex
	types    map[uuid.UUID]*layoutpreset.TypeDescriptor
	typeSeq  []uuid.UUID
	nodes    map[uuid.UUID]*layoutpreset.ContentNode
	children map[uuid.UUID][]uuid.UUID // parent_id -> []node_id in insertion order
}

// New creates a new in-memory repository
func New() *Repository {
	return &Repository{
		types:    make(map[uuid.UUID]*layoutpreset.TypeDescriptor),
		nodes:    make(map[uuid.UUID]*layoutpreset.ContentNode),
		children: make(map[uuid.UUID][]uuid.UUID),
	}
}

// Type operations

func (r *Repository) CreateType(ctx context.Context, t *layoutpreset.TypeDescriptor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.types[t.ID]; !exists {
		r.typeSeq = append(r.typeSeq, t.ID)
	}
	r.types[t.ID] = copyType(t)

	return nil
}

func (r *Repository) GetType(ctx context.Context, id uuid.UUID) (*layoutpreset.TypeDescriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, exists := r.types[id]
	if !exists {
		return nil, layoutpreset.ErrTypeNotFound
	}
	return copyType(t), nil
}

func (r *Repository) ListTypes(ctx context.Context) ([]*layoutpreset.TypeDescriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*layoutpreset.TypeDescriptor, 0, len(r.typeSeq))
	for _, id := range r.typeSeq {
		result = append(result, copyType(r.types[id]))
	}
	return result, nil
}

// Node operations

func (r *Repository) CreateNode(ctx context.Context, node *layoutpreset.ContentNode) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.nodes[node.ID]; exists {
		return &layoutpreset.NodeError{NodeID: node.ID, Op: "create", Err: errNodeExists}
	}

	// Create a copy to avoid external modifications
	nodeCopy := *node
	r.nodes[node.ID] = &nodeCopy
	if node.ParentID != uuid.Nil {
		r.children[node.ParentID] = append(r.children[node.ParentID], node.ID)
	}

	return nil
}

func (r *Repository) GetNode(ctx context.Context, id uuid.UUID) (*layoutpreset.ContentNode, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	node, exists := r.nodes[id]
	if !exists {
		return nil, layoutpreset.ErrNodeNotFound
	}

	// Return a copy to prevent external modifications
	nodeCopy := *node
	return &nodeCopy, nil
}

func (r *Repository) UpdateNode(ctx context.Context, node *layoutpreset.ContentNode) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.nodes[node.ID]
	if !exists {
		return layoutpreset.ErrNodeNotFound
	}

	if existing.ParentID != node.ParentID {
		r.detach(existing.ParentID, node.ID)
		if node.ParentID != uuid.Nil {
			r.children[node.ParentID] = append(r.children[node.ParentID], node.ID)
		}
	}

	nodeCopy := *node
	r.nodes[node.ID] = &nodeCopy

	return nil
}

func (r *Repository) DeleteNode(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	node, exists := r.nodes[id]
	if !exists {
		return layoutpreset.ErrNodeNotFound
	}

	r.detach(node.ParentID, id)
	delete(r.nodes, id)
	return nil
}

func (r *Repository) GetChildren(ctx context.Context, parentID uuid.UUID) ([]*layoutpreset.ContentNode, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.children[parentID]
	result := make([]*layoutpreset.ContentNode, 0, len(ids))
	for _, id := range ids {
		if node, ok := r.nodes[id]; ok {
			nodeCopy := *node
			result = append(result, &nodeCopy)
		}
	}
	return result, nil
}

// detach removes id from its parent's child list. Caller holds the lock.
func (r *Repository) detach(parentID, id uuid.UUID) {
	siblings := r.children[parentID]
	for i, sibling := range siblings {
		if sibling == id {
			r.children[parentID] = append(siblings[:i:i], siblings[i+1:]...)
			return
		}
	}
}

func copyType(t *layoutpreset.TypeDescriptor) *layoutpreset.TypeDescriptor {
	c := *t
	c.BaseIDs = append([]uuid.UUID(nil), t.BaseIDs...)
	return &c
}
