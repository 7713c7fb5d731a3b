// Package seed loads content-tree fixtures into a repository.
//
// A fixture file lists type descriptors and content nodes. A node's layout is
// either a raw document in the repository's layout format or a structured
// list of devices that is serialized with the configured codec.
//
//	types:
//	  - id: 68C8BC61-4341-4822-A2E1-699245234BFF
//	    name: Partial Layout Preset
//	nodes:
//	  - id: 0F6D1C4E-...
//	    parent: 7A2E...
//	    type: 68C8BC61-4341-4822-A2E1-699245234BFF
//	    name: Hero
//	    devices:
//	      - id: "{FE5D7FDF-89C0-4D99-9AA3-B5FBD009C9F3}"
//	        renderings:
//	          - component: "{143B7ED9-AE35-450B-A1CD-6AB404016E31}"
//	            slot: main/partiallayoutpreset
//	            uid: "{0B8E...}"
package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/layout-presets/pkg/layoutpreset"
	"gopkg.in/yaml.v3"
)

// Fixtures is the decoded content of a seed file.
type Fixtures struct {
	Types []TypeFixture `yaml:"types"`
	Nodes []NodeFixture `yaml:"nodes"`
}

type TypeFixture struct {
	ID    string   `yaml:"id"`
	Name  string   `yaml:"name"`
	Bases []string `yaml:"bases"`
}

type NodeFixture struct {
	ID      string          `yaml:"id"`
	Parent  string          `yaml:"parent"`
	Type    string          `yaml:"type"`
	Name    string          `yaml:"name"`
	Path    string          `yaml:"path"`
	Layout  string          `yaml:"layout"`
	Devices []DeviceFixture `yaml:"devices"`
}

type DeviceFixture struct {
	ID         string             `yaml:"id"`
	Layout     string             `yaml:"layout"`
	Renderings []RenderingFixture `yaml:"renderings"`
}

type RenderingFixture struct {
	Component string            `yaml:"component"`
	Slot      string            `yaml:"slot"`
	UID       string            `yaml:"uid"`
	Settings  map[string]string `yaml:"settings"`
}

// Parse decodes fixtures from YAML. Unknown keys are rejected.
func Parse(data []byte) (*Fixtures, error) {
	var f Fixtures
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, fmt.Errorf("failed to decode fixtures: %w", err)
	}
	return &f, nil
}

// LoadFile reads and decodes a fixture file.
func LoadFile(filename string) (*Fixtures, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return Parse(data)
}

// Apply writes the fixtures into repo. Types are upserted; nodes that already
// exist are updated in place. Nodes must be listed after their parent when
// their path is derived from it.
func Apply(ctx context.Context, repo layoutpreset.Repository, codec layoutpreset.LayoutCodec, f *Fixtures) error {
	if f == nil {
		return nil
	}

	for _, tf := range f.Types {
		t, err := tf.descriptor()
		if err != nil {
			return err
		}
		if err := repo.CreateType(ctx, t); err != nil {
			return fmt.Errorf("failed to create type %s: %w", tf.ID, err)
		}
	}

	paths := make(map[uuid.UUID]string, len(f.Nodes))
	now := time.Now().UTC()
	for _, nf := range f.Nodes {
		node, err := nf.node(codec, paths)
		if err != nil {
			return err
		}
		paths[node.ID] = node.Path

		existing, err := repo.GetNode(ctx, node.ID)
		switch {
		case err == nil:
			node.CreatedAt = existing.CreatedAt
			node.UpdatedAt = now
			if err := repo.UpdateNode(ctx, node); err != nil {
				return fmt.Errorf("failed to update node %s: %w", nf.ID, err)
			}
		case errors.Is(err, layoutpreset.ErrNodeNotFound):
			node.CreatedAt = now
			node.UpdatedAt = now
			if err := repo.CreateNode(ctx, node); err != nil {
				return fmt.Errorf("failed to create node %s: %w", nf.ID, err)
			}
		default:
			return fmt.Errorf("failed to look up node %s: %w", nf.ID, err)
		}
	}

	return nil
}

func (tf TypeFixture) descriptor() (*layoutpreset.TypeDescriptor, error) {
	id, err := uuid.Parse(tf.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid type id %q: %w", tf.ID, err)
	}
	t := &layoutpreset.TypeDescriptor{ID: id, Name: tf.Name}
	for _, b := range tf.Bases {
		baseID, err := uuid.Parse(b)
		if err != nil {
			return nil, fmt.Errorf("invalid base %q of type %s: %w", b, tf.ID, err)
		}
		t.BaseIDs = append(t.BaseIDs, baseID)
	}
	return t, nil
}

func (nf NodeFixture) node(codec layoutpreset.LayoutCodec, paths map[uuid.UUID]string) (*layoutpreset.ContentNode, error) {
	id, err := uuid.Parse(nf.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid node id %q: %w", nf.ID, err)
	}
	typeID, err := uuid.Parse(nf.Type)
	if err != nil {
		return nil, fmt.Errorf("invalid type %q of node %s: %w", nf.Type, nf.ID, err)
	}

	node := &layoutpreset.ContentNode{ID: id, TypeID: typeID, Name: nf.Name, Path: nf.Path, Layout: nf.Layout}
	if nf.Parent != "" {
		if node.ParentID, err = uuid.Parse(nf.Parent); err != nil {
			return nil, fmt.Errorf("invalid parent %q of node %s: %w", nf.Parent, nf.ID, err)
		}
	}
	if node.Path == "" {
		node.Path = path.Join("/", paths[node.ParentID], nf.Name)
	}

	if len(nf.Devices) > 0 {
		if nf.Layout != "" {
			return nil, fmt.Errorf("node %s sets both layout and devices", nf.ID)
		}
		raw, err := codec.Serialize(nf.variants())
		if err != nil {
			return nil, fmt.Errorf("failed to serialize layout of node %s: %w", nf.ID, err)
		}
		node.Layout = raw
	}

	return node, nil
}

func (nf NodeFixture) variants() []layoutpreset.DeviceVariant {
	devices := make([]layoutpreset.DeviceVariant, 0, len(nf.Devices))
	for _, df := range nf.Devices {
		d := layoutpreset.DeviceVariant{ID: df.ID, LayoutID: df.Layout}
		for _, rf := range df.Renderings {
			d.Renderings = append(d.Renderings, layoutpreset.RenderingNode{
				ComponentRef: rf.Component,
				SlotPath:     rf.Slot,
				InstanceID:   rf.UID,
				Settings:     rf.Settings,
			})
		}
		devices = append(devices, d)
	}
	return devices
}
