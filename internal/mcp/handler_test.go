package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/layout-presets/internal/testutil"
	"github.com/tendant/layout-presets/pkg/layoutpreset"
)

func callRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", result.Content[0])
	return text.Text
}

func TestHandler_AllowedFragments(t *testing.T) {
	f := testutil.NewFixture(t)
	h := NewHandler(f.Service, "website")
	ctx := context.Background()

	result, err := h.handleAllowedFragments(ctx, callRequest("allowed_fragments", map[string]interface{}{
		"placeholder": "main",
		"device":      testutil.DefaultDevice,
		"item_id":     testutil.HomePage.String(),
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	var body struct {
		Items []struct {
			ID   string `json:"id"`
			Path string `json:"path"`
		} `json:"items"`
		Delegated bool `json:"delegated"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &body))
	require.Len(t, body.Items, 1)
	assert.Equal(t, testutil.HeroMain.String(), body.Items[0].ID)
	assert.False(t, body.Delegated)

	result, err = h.handleAllowedFragments(ctx, callRequest("allowed_fragments", map[string]interface{}{
		"placeholder": "main",
		"device":      testutil.DefaultDevice,
		"item_id":     "not-a-uuid",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	result, err = h.handleAllowedFragments(ctx, callRequest("allowed_fragments", map[string]interface{}{
		"placeholder": "main",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError, "missing device is reported as a tool error")
}

func TestHandler_InsertPreset(t *testing.T) {
	f := testutil.NewFixture(t)
	h := NewHandler(f.Service, "")
	ctx := context.Background()

	result, err := h.handleInsertPreset(ctx, callRequest("insert_preset", map[string]interface{}{
		"item_id":           testutil.HomePage.String(),
		"device":            testutil.DefaultDevice,
		"rendering_item_id": testutil.Sidebar.String(),
		"placeholder":       "aside",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))

	var inserted layoutpreset.InsertResult
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &inserted))
	assert.Equal(t, 1, inserted.Copied)
	assert.Equal(t, "aside", inserted.Rendering.SlotPath)

	device := f.Device(t, testutil.HomePage, testutil.DefaultDevice)
	assert.Len(t, device.Renderings, 2)

	result, err = h.handleInsertPreset(ctx, callRequest("insert_preset", map[string]interface{}{
		"item_id":           testutil.HomePage.String(),
		"device":            testutil.DefaultDevice,
		"rendering_item_id": testutil.Draft.String(),
		"placeholder":       "main",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandler_BoundPlaceholderAndCanonicalize(t *testing.T) {
	f := testutil.NewFixture(t)
	h := NewHandler(f.Service, "")
	ctx := context.Background()

	result, err := h.handleBoundPlaceholder(ctx, callRequest("bound_placeholder", map[string]interface{}{
		"item_id": testutil.HeroMain.String(),
		"device":  testutil.DefaultDevice,
	}))
	require.NoError(t, err)
	assert.Equal(t, "main", resultText(t, result))

	result, err = h.handleBoundPlaceholder(ctx, callRequest("bound_placeholder", map[string]interface{}{
		"item_id": testutil.Draft.String(),
		"device":  testutil.DefaultDevice,
	}))
	require.NoError(t, err)
	assert.Equal(t, "unbound", resultText(t, result))

	result, err = h.handleCanonicalize(ctx, callRequest("canonicalize_placeholder", map[string]interface{}{
		"path": "main/col_d1000000-0000-4000-8000-000000000002",
	}))
	require.NoError(t, err)
	assert.Equal(t, "main/col", resultText(t, result))
}

func TestHandler_RegisterTools(t *testing.T) {
	f := testutil.NewFixture(t)
	s := server.NewMCPServer("test", "1.0.0", server.WithToolCapabilities(true))

	NewHandler(f.Service, "").RegisterTools(s)

	resp := s.HandleMessage(context.Background(), json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	out, err := json.Marshal(resp)
	require.NoError(t, err)
	for _, name := range []string{"allowed_fragments", "insert_preset", "bound_placeholder", "canonicalize_placeholder"} {
		assert.Contains(t, string(out), `"name":"`+name+`"`)
	}
}

func TestArgs(t *testing.T) {
	args := map[string]interface{}{"s": "value", "n": 3, "nil": nil}

	assert.Equal(t, "value", stringArg(args, "s"))
	assert.Equal(t, "", stringArg(args, "n"))
	assert.Equal(t, "", stringArg(args, "nil"))
	assert.Equal(t, "", stringArg(args, "missing"))

	id, err := uuidArg(args, "missing")
	require.NoError(t, err)
	assert.Equal(t, "00000000-0000-0000-0000-000000000000", id.String())

	_, err = uuidArg(args, "s")
	assert.Error(t, err)
}
