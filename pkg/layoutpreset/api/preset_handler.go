package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/tendant/layout-presets/pkg/layoutpreset"
)

// NodeResponse is the response body for a content node
type NodeResponse struct {
	ID        string    `json:"id"`
	ParentID  string    `json:"parent_id,omitempty"`
	TypeID    string    `json:"type_id"`
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AllowedFragmentsResponse is the response body for a filter query
type AllowedFragmentsResponse struct {
	Placeholder string         `json:"placeholder"`
	Items       []NodeResponse `json:"items"`
	Restricted  bool           `json:"restricted"`
	Delegated   bool           `json:"delegated"`
}

// InsertRequest is the request body for an insert action
type InsertRequest struct {
	ItemID          string `json:"item_id"`
	DeviceID        string `json:"device_id"`
	RenderingItemID string `json:"rendering_item_id"`
	PlaceholderKey  string `json:"placeholder_key"`
}

// InsertResponse is the response body for an insert action
type InsertResponse struct {
	ItemID    string                      `json:"item_id"`
	DeviceID  string                      `json:"device_id"`
	Rendering *layoutpreset.RenderingNode `json:"rendering"`
	Copied    int                         `json:"copied"`
	Delegated bool                        `json:"delegated"`
}

// BoundSlotResponse reports the slot a preset is bound to for a device
type BoundSlotResponse struct {
	ItemID   string `json:"item_id"`
	DeviceID string `json:"device_id"`
	Slot     string `json:"slot,omitempty"`
	Bound    bool   `json:"bound"`
}

// ErrorResponse is the JSON error envelope
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PresetHandler handles HTTP requests for layout presets
type PresetHandler struct {
	service     layoutpreset.Service
	currentSite string
}

// NewPresetHandler creates a new preset handler. currentSite is the ambient
// site used when a filter query carries no context item and no site.
func NewPresetHandler(service layoutpreset.Service, currentSite string) *PresetHandler {
	return &PresetHandler{
		service:     service,
		currentSite: currentSite,
	}
}

// Routes returns the routes for presets
func (h *PresetHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/allowed", h.AllowedFragments)
	r.Post("/insert", h.InsertRendering)
	r.Get("/canonical", h.Canonicalize)

	r.Get("/nodes/{id}", h.GetNode)
	r.Get("/nodes/{id}/presets", h.ListPresets)
	r.Get("/nodes/{id}/bound-slot", h.BoundSlot)
	r.Get("/nodes/{id}/devices/{device}", h.GetDevice)

	return r
}

// AllowedFragments answers which presets may be offered in a placeholder.
//
// Query parameters: placeholder, device (or sc_device), sc_itemid (or id),
// context_device and site.
func (h *PresetHandler) AllowedFragments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	req := layoutpreset.AllowedFragmentsRequest{
		PlaceholderKey:  q.Get("placeholder"),
		DeviceID:        firstNonEmpty(q.Get("device"), q.Get("sc_device")),
		ContextDeviceID: q.Get("context_device"),
		SiteName:        firstNonEmpty(q.Get("site"), h.currentSite),
	}

	// The editor passes the page being edited as sc_itemid; plain id is accepted too.
	if raw := firstNonEmpty(q.Get("sc_itemid"), q.Get("id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			slog.Error("Invalid context item ID", "item_id", raw, "error", err)
			writeError(w, r, http.StatusBadRequest, "invalid_argument", "Invalid context item ID")
			return
		}
		req.ContextItemID = id
	}

	result, err := h.service.ResolveAllowedFragments(r.Context(), req)
	if err != nil {
		slog.Error("Failed to resolve allowed fragments", "placeholder", req.PlaceholderKey, "error", err)
		writeServiceError(w, r, err)
		return
	}

	resp := AllowedFragmentsResponse{
		Placeholder: req.PlaceholderKey,
		Items:       make([]NodeResponse, 0, len(result.Items)),
		Restricted:  result.Restricted,
		Delegated:   result.Delegated,
	}
	for _, item := range result.Items {
		resp.Items = append(resp.Items, toNodeResponse(item))
	}

	render.JSON(w, r, resp)
}

// InsertRendering inserts a preset or an ordinary component into a page
func (h *PresetHandler) InsertRendering(w http.ResponseWriter, r *http.Request) {
	var body InsertRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}

	itemID, err := parseOptionalID(body.ItemID)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_argument", "Invalid item ID")
		return
	}
	renderingItemID, err := parseOptionalID(body.RenderingItemID)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_argument", "Invalid rendering item ID")
		return
	}

	result, err := h.service.InsertRendering(r.Context(), layoutpreset.InsertRenderingRequest{
		ItemID:          itemID,
		DeviceID:        body.DeviceID,
		RenderingItemID: renderingItemID,
		PlaceholderKey:  body.PlaceholderKey,
	})
	if err != nil {
		slog.Error("Failed to insert rendering", "item_id", body.ItemID, "rendering_item_id", body.RenderingItemID, "error", err)
		writeServiceError(w, r, err)
		return
	}

	slog.Info("Rendering inserted", "item_id", result.ItemID, "copied", result.Copied, "delegated", result.Delegated)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, InsertResponse{
		ItemID:    result.ItemID.String(),
		DeviceID:  result.DeviceID,
		Rendering: result.Rendering,
		Copied:    result.Copied,
		Delegated: result.Delegated,
	})
}

// Canonicalize strips dynamic placeholder suffixes from the path query parameter
func (h *PresetHandler) Canonicalize(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	render.JSON(w, r, map[string]string{
		"path":      path,
		"canonical": layoutpreset.CanonicalizePlaceholder(path),
	})
}

// GetNode returns a content node without its layout
func (h *PresetHandler) GetNode(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	node, err := h.service.GetNode(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	render.JSON(w, r, toNodeResponse(node))
}

// ListPresets returns the preset fragments directly under a folder
func (h *PresetHandler) ListPresets(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	presets, err := h.service.ListPresets(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := make([]NodeResponse, 0, len(presets))
	for _, p := range presets {
		resp = append(resp, toNodeResponse(p))
	}
	render.JSON(w, r, resp)
}

// BoundSlot reports the slot a preset is bound to. Query parameter: device.
func (h *PresetHandler) BoundSlot(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	deviceID := firstNonEmpty(r.URL.Query().Get("device"), r.URL.Query().Get("sc_device"))

	slot, bound, err := h.service.BoundPlaceholder(r.Context(), id, deviceID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	render.JSON(w, r, BoundSlotResponse{
		ItemID:   id.String(),
		DeviceID: deviceID,
		Slot:     slot,
		Bound:    bound,
	})
}

// GetDevice returns the parsed device variant of a node's layout
func (h *PresetHandler) GetDevice(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	device, err := h.service.GetDevice(r.Context(), id, chi.URLParam(r, "device"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	render.JSON(w, r, device)
}

func (h *PresetHandler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		slog.Error("Invalid node ID", "id", raw, "error", err)
		writeError(w, r, http.StatusBadRequest, "invalid_argument", "Invalid node ID")
		return uuid.Nil, false
	}
	return id, true
}

// writeServiceError maps service errors onto HTTP status codes
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, layoutpreset.ErrMissingArgument):
		writeError(w, r, http.StatusBadRequest, "missing_argument", err.Error())
	case layoutpreset.IsIntegrityError(err):
		writeError(w, r, http.StatusUnprocessableEntity, "integrity_failure", err.Error())
	case errors.Is(err, layoutpreset.ErrNodeNotFound),
		errors.Is(err, layoutpreset.ErrDeviceNotFound),
		errors.Is(err, layoutpreset.ErrTypeNotFound):
		writeError(w, r, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, layoutpreset.ErrInvalidLayout):
		writeError(w, r, http.StatusUnprocessableEntity, "invalid_layout", err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Error: ErrorBody{Code: code, Message: message}})
}

func toNodeResponse(node *layoutpreset.ContentNode) NodeResponse {
	resp := NodeResponse{
		ID:        node.ID.String(),
		TypeID:    node.TypeID.String(),
		Name:      node.Name,
		Path:      node.Path,
		CreatedAt: node.CreatedAt,
		UpdatedAt: node.UpdatedAt,
	}
	if node.ParentID != uuid.Nil {
		resp.ParentID = node.ParentID.String()
	}
	return resp
}

// parseOptionalID leaves uuid.Nil for empty input so the service reports
// the missing argument.
func parseOptionalID(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(raw)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
