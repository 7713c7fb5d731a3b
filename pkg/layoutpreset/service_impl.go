package layoutpreset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// service implements the Service interface
type service struct {
	repository   Repository
	codec        LayoutCodec
	sites        SiteRegistry
	locations    *LocationRules
	placeholders PlaceholderSettings
	inserter     Inserter
	eventSink    EventSink
	logger       *slog.Logger
	newID        IDGenerator

	basePresetTypeID  uuid.UUID
	presetRenderingID uuid.UUID
	anchorKey         string
	contentRoot       string
	defaultSite       string
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the repository for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithLayoutCodec sets the codec used to read and write layout fields
func WithLayoutCodec(codec LayoutCodec) Option {
	return func(s *service) {
		s.codec = codec
	}
}

// WithSiteRegistry sets the registry used to derive a page's site scope
func WithSiteRegistry(sites SiteRegistry) Option {
	return func(s *service) {
		s.sites = sites
	}
}

// WithLocationRules registers the preset folders per site scope
func WithLocationRules(rules ...LocationRule) Option {
	return func(s *service) {
		s.locations = NewLocationRules(rules)
	}
}

// WithPlaceholderSettings sets the lookup used for slots inside a fragment payload
func WithPlaceholderSettings(settings PlaceholderSettings) Option {
	return func(s *service) {
		s.placeholders = settings
	}
}

// WithInserter replaces the default single-rendering insertion
func WithInserter(inserter Inserter) Option {
	return func(s *service) {
		s.inserter = inserter
	}
}

// WithEventSink sets the event sink for the service
func WithEventSink(sink EventSink) Option {
	return func(s *service) {
		s.eventSink = sink
	}
}

// WithLogger sets the structured logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

// WithIDGenerator overrides how rendering instance ids are minted
func WithIDGenerator(gen IDGenerator) Option {
	return func(s *service) {
		s.newID = gen
	}
}

// WithBasePresetType overrides the type preset fragments derive from
func WithBasePresetType(id uuid.UUID) Option {
	return func(s *service) {
		s.basePresetTypeID = id
	}
}

// WithPresetRendering overrides the anchor component offered on unbound fragments
func WithPresetRendering(id uuid.UUID) Option {
	return func(s *service) {
		s.presetRenderingID = id
	}
}

// WithAnchorKey overrides the reserved anchor slot key
func WithAnchorKey(key string) Option {
	return func(s *service) {
		s.anchorKey = key
	}
}

// WithContentRoot sets the generic content root and the one site allowed to claim it
func WithContentRoot(rootPath, defaultSite string) Option {
	return func(s *service) {
		s.contentRoot = rootPath
		s.defaultSite = defaultSite
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		sites:             NewStaticSiteRegistry(nil),
		locations:         NewLocationRules(nil),
		inserter:          NewSingleRenderingInserter(),
		logger:            slog.Default(),
		newID:             NewInstanceID,
		basePresetTypeID:  DefaultBasePresetTypeID,
		presetRenderingID: DefaultPresetRenderingID,
		anchorKey:         DefaultAnchorKey,
		contentRoot:       DefaultContentRootPath,
		defaultSite:       DefaultSiteName,
	}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if s.codec == nil {
		return nil, fmt.Errorf("layout codec is required")
	}
	if s.anchorKey == "" {
		return nil, fmt.Errorf("anchor key cannot be empty")
	}

	return s, nil
}

// Allowed-fragment filter

func (s *service) ResolveAllowedFragments(ctx context.Context, req AllowedFragmentsRequest) (*AllowedFragments, error) {
	const op = "resolve_allowed_fragments"
	if req.DeviceID == "" {
		return nil, missingArgument(op, "device")
	}

	canonical := CanonicalizePlaceholder(req.PlaceholderKey)
	currentSlot := LastPlaceholderSegment(canonical)

	// Slots inside a fragment payload follow whatever the enclosing slot allows.
	if currentSlot != "" && strings.EqualFold(currentSlot, s.anchorKey) {
		return s.delegateToParent(ctx, canonical, req.DeviceID)
	}

	contextNode, err := s.lookupNode(ctx, req.ContextItemID)
	if err != nil {
		return nil, err
	}

	graph, err := s.typeGraph(ctx)
	if err != nil {
		return nil, err
	}

	result := &AllowedFragments{Items: []*ContentNode{}}

	if contextNode != nil && graph.IsNodeDerived(contextNode, s.basePresetTypeID) {
		contextDevice := req.ContextDeviceID
		if contextDevice == "" {
			contextDevice = req.DeviceID
		}
		if _, bound := s.boundPlaceholder(ctx, contextNode, contextDevice); !bound {
			anchor, err := s.repository.GetNode(ctx, s.presetRenderingID)
			if err != nil {
				return nil, &IntegrityError{Op: op, Identifier: FormatID(s.presetRenderingID), Err: err}
			}
			result.Items = append(result.Items, anchor)
		}
	}

	scope, err := s.siteScope(ctx, contextNode, req.SiteName)
	if err != nil {
		return nil, err
	}

	for _, folderID := range s.locations.Folders(scope) {
		folder, err := s.lookupNode(ctx, folderID)
		if err != nil {
			return nil, err
		}
		if folder == nil {
			continue
		}

		children, err := s.repository.GetChildren(ctx, folder.ID)
		if err != nil {
			return nil, &NodeError{NodeID: folder.ID, Op: "get_children", Err: err}
		}

		for _, candidate := range graph.ChildrenDerivedFrom(children, s.basePresetTypeID) {
			if contextNode != nil && candidate.ID == contextNode.ID {
				continue
			}
			bound, ok := s.boundPlaceholder(ctx, candidate, req.DeviceID)
			if !ok || !strings.EqualFold(bound, currentSlot) {
				continue
			}
			result.Items = append(result.Items, candidate)
		}
	}

	s.logger.DebugContext(ctx, "resolved allowed fragments",
		"placeholder", req.PlaceholderKey,
		"slot", currentSlot,
		"site_scope", scope,
		"count", len(result.Items))

	return result, nil
}

func (s *service) delegateToParent(ctx context.Context, canonical, deviceID string) (*AllowedFragments, error) {
	result := &AllowedFragments{Items: []*ContentNode{}, Delegated: true}
	if s.placeholders == nil {
		return result, nil
	}

	parent := ParentPlaceholderPath(canonical)
	ids, restricted, err := s.placeholders.AllowedRenderings(ctx, parent, deviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve placeholder settings for %q: %w", parent, err)
	}
	result.Restricted = restricted

	for _, id := range ids {
		node, err := s.lookupNode(ctx, id)
		if err != nil {
			return nil, err
		}
		if node != nil {
			result.Items = append(result.Items, node)
		}
	}

	s.logger.DebugContext(ctx, "delegated to parent placeholder",
		"parent", parent,
		"restricted", restricted,
		"count", len(result.Items))

	return result, nil
}

// siteScope derives the site scope from the page path, or falls back to the
// ambient site when there is no page.
func (s *service) siteScope(ctx context.Context, node *ContentNode, ambient string) (string, error) {
	if node == nil {
		return strings.ToLower(ambient), nil
	}
	sites, err := s.sites.Sites(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list sites: %w", err)
	}
	return siteScopeFor(sites, node.Path, s.contentRoot, s.defaultSite), nil
}

// Preset expansion

func (s *service) InsertRendering(ctx context.Context, req InsertRenderingRequest) (*InsertResult, error) {
	const op = "insert_rendering"
	switch {
	case req.ItemID == uuid.Nil:
		return nil, missingArgument(op, "item")
	case req.DeviceID == "":
		return nil, missingArgument(op, "device")
	case req.RenderingItemID == uuid.Nil:
		return nil, missingArgument(op, "rendering item")
	case req.PlaceholderKey == "":
		return nil, missingArgument(op, "placeholder key")
	}

	page, err := s.repository.GetNode(ctx, req.ItemID)
	if err != nil {
		return nil, &NodeError{NodeID: req.ItemID, Op: op, Err: err}
	}
	item, err := s.repository.GetNode(ctx, req.RenderingItemID)
	if err != nil {
		return nil, &NodeError{NodeID: req.RenderingItemID, Op: op, Err: err}
	}

	devices, err := s.codec.Parse(page.Layout)
	if err != nil {
		return nil, &IntegrityError{Op: op, Identifier: FormatID(page.ID), Err: err}
	}
	dst := FindDevice(devices, req.DeviceID)
	if dst == nil {
		devices = append(devices, DeviceVariant{ID: req.DeviceID})
		dst = &devices[len(devices)-1]
	}

	graph, err := s.typeGraph(ctx)
	if err != nil {
		return nil, err
	}

	if !graph.IsNodeDerived(item, s.basePresetTypeID) {
		rendering, err := s.inserter.InsertRendering(ctx, dst, item, req.PlaceholderKey)
		if err != nil {
			return nil, err
		}
		inserted := rendering.Clone()
		result := &InsertResult{
			ItemID:    page.ID,
			DeviceID:  dst.ID,
			Rendering: &inserted,
			Copied:    1,
			Delegated: true,
		}
		if err := s.saveLayout(ctx, page, devices); err != nil {
			return nil, err
		}
		if s.eventSink != nil {
			if err := s.eventSink.RenderingInserted(ctx, page, item, result); err != nil {
				s.logger.WarnContext(ctx, "event sink failed", "event", "rendering_inserted", "err", err)
			}
		}
		return result, nil
	}

	presetDevices, err := s.codec.Parse(item.Layout)
	if err != nil {
		return nil, &IntegrityError{Op: op, Identifier: FormatID(item.ID), Err: err}
	}
	presetDevice := FindDevice(presetDevices, req.DeviceID)
	if presetDevice == nil {
		return nil, &IntegrityError{Op: op, Identifier: req.DeviceID, Err: ErrDeviceNotFound}
	}
	anchor, ok := FindAnchor(presetDevice, s.anchorKey)
	if !ok {
		return nil, &IntegrityError{Op: op, Identifier: FormatID(item.ID), Err: ErrAnchorNotFound}
	}

	src := make([]RenderingNode, len(presetDevice.Renderings))
	for i, r := range presetDevice.Renderings {
		src[i] = r.Clone()
	}

	before := len(dst.Renderings)
	representative, err := expandWith(s.newID, dst, src, anchor.SlotPath, req.PlaceholderKey)
	if err != nil {
		return nil, err
	}
	inserted := representative.Clone()

	result := &InsertResult{
		ItemID:    page.ID,
		DeviceID:  dst.ID,
		Rendering: &inserted,
		Copied:    len(dst.Renderings) - before,
	}

	if err := s.saveLayout(ctx, page, devices); err != nil {
		return nil, err
	}

	if s.eventSink != nil {
		if err := s.eventSink.PresetInserted(ctx, page, item, result); err != nil {
			s.logger.WarnContext(ctx, "event sink failed", "event", "preset_inserted", "err", err)
		}
	}

	return result, nil
}

func (s *service) saveLayout(ctx context.Context, page *ContentNode, devices []DeviceVariant) error {
	raw, err := s.codec.Serialize(devices)
	if err != nil {
		return fmt.Errorf("failed to serialize layout for %s: %w", page.ID, err)
	}
	page.Layout = raw
	page.UpdatedAt = time.Now().UTC()
	if err := s.repository.UpdateNode(ctx, page); err != nil {
		return &NodeError{NodeID: page.ID, Op: "update_layout", Err: err}
	}
	return nil
}

// Fragment inspection

func (s *service) BoundPlaceholder(ctx context.Context, itemID uuid.UUID, deviceID string) (string, bool, error) {
	if deviceID == "" {
		return "", false, missingArgument("bound_placeholder", "device")
	}
	node, err := s.lookupNode(ctx, itemID)
	if err != nil || node == nil {
		return "", false, err
	}
	slot, ok := s.boundPlaceholder(ctx, node, deviceID)
	return slot, ok, nil
}

func (s *service) ListPresets(ctx context.Context, folderID uuid.UUID) ([]*ContentNode, error) {
	children, err := s.repository.GetChildren(ctx, folderID)
	if err != nil {
		return nil, &NodeError{NodeID: folderID, Op: "list_presets", Err: err}
	}
	graph, err := s.typeGraph(ctx)
	if err != nil {
		return nil, err
	}
	return graph.ChildrenDerivedFrom(children, s.basePresetTypeID), nil
}

func (s *service) IsDerived(ctx context.Context, typeID, targetID uuid.UUID) (bool, error) {
	graph, err := s.typeGraph(ctx)
	if err != nil {
		return false, err
	}
	return graph.IsDerived(typeID, targetID), nil
}

func (s *service) GetNode(ctx context.Context, id uuid.UUID) (*ContentNode, error) {
	return s.repository.GetNode(ctx, id)
}

func (s *service) GetDevice(ctx context.Context, itemID uuid.UUID, deviceID string) (*DeviceVariant, error) {
	node, err := s.repository.GetNode(ctx, itemID)
	if err != nil {
		return nil, err
	}
	devices, err := s.codec.Parse(node.Layout)
	if err != nil {
		return nil, err
	}
	device := FindDevice(devices, deviceID)
	if device == nil {
		return nil, ErrDeviceNotFound
	}
	return device, nil
}

// helpers

// boundPlaceholder treats unparsable layouts and missing devices as unbound.
func (s *service) boundPlaceholder(ctx context.Context, node *ContentNode, deviceID string) (string, bool) {
	devices, err := s.codec.Parse(node.Layout)
	if err != nil {
		s.logger.DebugContext(ctx, "skipping unparsable layout", "node_id", node.ID, "err", err)
		return "", false
	}
	return BoundPlaceholderOf(FindDevice(devices, deviceID), s.anchorKey)
}

// lookupNode returns nil without error for uuid.Nil and missing nodes.
func (s *service) lookupNode(ctx context.Context, id uuid.UUID) (*ContentNode, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	node, err := s.repository.GetNode(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNodeNotFound) {
			s.logger.DebugContext(ctx, "node not found", "node_id", id)
			return nil, nil
		}
		return nil, &NodeError{NodeID: id, Op: "get", Err: err}
	}
	return node, nil
}

func (s *service) typeGraph(ctx context.Context) (*TypeGraph, error) {
	types, err := s.repository.ListTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list types: %w", err)
	}
	return NewTypeGraph(types), nil
}
