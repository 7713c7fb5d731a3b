package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/tendant/layout-presets/pkg/layoutpreset"
)

// Handler exposes the preset service as MCP tools
type Handler struct {
	service     layoutpreset.Service
	currentSite string
}

// NewHandler creates a new instance of Handler. currentSite is used when a
// filter call names neither a context item nor a site.
func NewHandler(service layoutpreset.Service, currentSite string) *Handler {
	return &Handler{service: service, currentSite: currentSite}
}

func stringProp(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

// RegisterTools registers the preset tools with the MCP server
func (h *Handler) RegisterTools(s *server.MCPServer) {
	s.AddTool(mcp.Tool{
		Name:        "allowed_fragments",
		Description: "List the preset fragments an author may insert into a placeholder",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"placeholder":    stringProp("Placeholder key, possibly nested and dynamic"),
				"device":         stringProp("Device whose layout is being edited"),
				"item_id":        stringProp("Page being edited (optional)"),
				"context_device": stringProp("Ambient editor device (optional, defaults to device)"),
				"site":           stringProp("Current site when there is no page (optional)"),
			},
			Required: []string{"placeholder", "device"},
		},
	}, h.handleAllowedFragments)

	s.AddTool(mcp.Tool{
		Name:        "insert_preset",
		Description: "Insert a preset fragment or a single component into a page placeholder",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"item_id":           stringProp("Page receiving the insert"),
				"device":            stringProp("Device variant to edit"),
				"rendering_item_id": stringProp("Preset or component to insert"),
				"placeholder":       stringProp("Destination placeholder path"),
			},
			Required: []string{"item_id", "device", "rendering_item_id", "placeholder"},
		},
	}, h.handleInsertPreset)

	s.AddTool(mcp.Tool{
		Name:        "bound_placeholder",
		Description: "Report the placeholder a preset fragment is bound to for a device",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"item_id": stringProp("Preset fragment"),
				"device":  stringProp("Device variant"),
			},
			Required: []string{"item_id", "device"},
		},
	}, h.handleBoundPlaceholder)

	s.AddTool(mcp.Tool{
		Name:        "canonicalize_placeholder",
		Description: "Strip dynamic placeholder suffixes from a placeholder path",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": stringProp("Placeholder path"),
			},
			Required: []string{"path"},
		},
	}, h.handleCanonicalize)
}

func (h *Handler) handleAllowedFragments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	req := layoutpreset.AllowedFragmentsRequest{
		PlaceholderKey:  stringArg(args, "placeholder"),
		DeviceID:        stringArg(args, "device"),
		ContextDeviceID: stringArg(args, "context_device"),
		SiteName:        stringArg(args, "site"),
	}
	if req.SiteName == "" {
		req.SiteName = h.currentSite
	}
	id, err := uuidArg(args, "item_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	req.ContextItemID = id

	result, err := h.service.ResolveAllowedFragments(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	type item struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		Path string `json:"path"`
	}
	items := make([]item, 0, len(result.Items))
	for _, n := range result.Items {
		items = append(items, item{ID: n.ID.String(), Name: n.Name, Path: n.Path})
	}

	return jsonResult(map[string]interface{}{
		"items":      items,
		"restricted": result.Restricted,
		"delegated":  result.Delegated,
	})
}

func (h *Handler) handleInsertPreset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	itemID, err := uuidArg(args, "item_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	renderingItemID, err := uuidArg(args, "rendering_item_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := h.service.InsertRendering(ctx, layoutpreset.InsertRenderingRequest{
		ItemID:          itemID,
		DeviceID:        stringArg(args, "device"),
		RenderingItemID: renderingItemID,
		PlaceholderKey:  stringArg(args, "placeholder"),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return jsonResult(result)
}

func (h *Handler) handleBoundPlaceholder(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	itemID, err := uuidArg(args, "item_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	slot, bound, err := h.service.BoundPlaceholder(ctx, itemID, stringArg(args, "device"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !bound {
		return mcp.NewToolResultText("unbound"), nil
	}
	return mcp.NewToolResultText(slot), nil
}

func (h *Handler) handleCanonicalize(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := stringArg(request.GetArguments(), "path")
	return mcp.NewToolResultText(layoutpreset.CanonicalizePlaceholder(path)), nil
}

func stringArg(args map[string]interface{}, key string) string {
	if v, ok := args[key]; ok && v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// uuidArg returns uuid.Nil for a missing argument.
func uuidArg(args map[string]interface{}, key string) (uuid.UUID, error) {
	raw := stringArg(args, key)
	if raw == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return id, nil
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	out, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return mcp.NewToolResultText(string(out)), nil
}
