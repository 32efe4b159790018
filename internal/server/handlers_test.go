package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ironsheep/image-strip-mcp/internal/sink"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestImageFile writes a solid PNG into dir and returns its path.
func createTestImageFile(t *testing.T, dir, name string, width, height int, c color.Color) string {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))

	return path
}

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	out := t.TempDir()
	return New(Options{Sink: sink.NewFileSink(out, sink.DefaultJPEGQuality), Workers: 2}), out
}

// callTool sends a tools/call request and decodes the text content into a map.
func callTool(t *testing.T, s *Server, name string, args interface{}) (map[string]interface{}, *MCPError) {
	t.Helper()

	params := map[string]interface{}{"name": name, "arguments": args}
	paramsJSON, err := json.Marshal(params)
	require.NoError(t, err)

	resp := s.handleRequest(context.Background(), &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  paramsJSON,
	})
	require.NotNil(t, resp)
	if resp.Error != nil {
		return nil, resp.Error
	}

	result, ok := resp.Result.(map[string]interface{})
	require.True(t, ok, "Result should be a map")
	content, ok := result["content"].([]map[string]interface{})
	require.True(t, ok, "content should be a slice")
	require.Len(t, content, 1)
	assert.Equal(t, "text", content[0]["type"])

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(content[0]["text"].(string)), &out))
	return out, nil
}

func mustCall(t *testing.T, s *Server, name string, args interface{}) map[string]interface{} {
	t.Helper()
	out, mcpErr := callTool(t, s, name, args)
	require.Nil(t, mcpErr, "%s: %v", name, mcpErr)
	return out
}

// selectStrip selects a 100x200 red image and a 50x100 blue image.
func selectStrip(t *testing.T, s *Server) {
	t.Helper()
	dir := t.TempDir()
	paths := []string{
		createTestImageFile(t, dir, "a.png", 100, 200, color.NRGBA{255, 0, 0, 255}),
		createTestImageFile(t, dir, "b.png", 50, 100, color.NRGBA{0, 0, 255, 255}),
	}
	out := mustCall(t, s, "strip_select", map[string]interface{}{"paths": paths})
	require.Equal(t, float64(2), out["count"])
}

func layout(t *testing.T, s *Server, index int) map[string]interface{} {
	t.Helper()
	return mustCall(t, s, "strip_layout", map[string]interface{}{
		"index": index, "box_width": 100, "box_height": 200,
	})
}

func region(t *testing.T, out map[string]interface{}) map[string]interface{} {
	t.Helper()
	r, ok := out["region"].(map[string]interface{})
	require.True(t, ok, "region should be an object")
	return r
}

func TestHandleToolsCall_Select(t *testing.T) {
	s, _ := newTestServer(t)
	dir := t.TempDir()
	path := createTestImageFile(t, dir, "tall.png", 40, 120, color.NRGBA{0, 255, 0, 255})

	out := mustCall(t, s, "strip_select", map[string]interface{}{"paths": []string{path}})

	assert.Equal(t, float64(1), out["count"])
	images := out["images"].([]interface{})
	require.Len(t, images, 1)
	info := images[0].(map[string]interface{})
	assert.Equal(t, path, info["path"])
	assert.Equal(t, "png", info["format"])
	assert.Equal(t, float64(40), info["width"])
	assert.Equal(t, float64(120), info["height"])
}

func TestHandleToolsCall_SelectFailureKeepsSelection(t *testing.T) {
	s, _ := newTestServer(t)
	selectStrip(t, s)
	layout(t, s, 0)

	_, mcpErr := callTool(t, s, "strip_select", map[string]interface{}{
		"paths": []string{"/nonexistent/image.png"},
	})
	require.NotNil(t, mcpErr)
	assert.Equal(t, -32000, mcpErr.Code)

	// The old selection and its region survive
	out := mustCall(t, s, "strip_region", map[string]interface{}{"index": 0})
	assert.Equal(t, float64(200), region(t, out)["bottom_current"])
}

func TestHandleToolsCall_SelectEvictsReplacedImages(t *testing.T) {
	s, _ := newTestServer(t)
	selectStrip(t, s)
	require.Equal(t, 2, s.cache.Len())

	dir := t.TempDir()
	path := createTestImageFile(t, dir, "only.png", 10, 10, color.NRGBA{0, 255, 0, 255})
	mustCall(t, s, "strip_select", map[string]interface{}{"paths": []string{path}})

	assert.Equal(t, 1, s.cache.Len())
}

func TestHandleToolsCall_SelectReloadsChangedFile(t *testing.T) {
	s, _ := newTestServer(t)
	dir := t.TempDir()
	path := createTestImageFile(t, dir, "shot.png", 40, 120, color.NRGBA{0, 255, 0, 255})
	mustCall(t, s, "strip_select", map[string]interface{}{"paths": []string{path}})

	createTestImageFile(t, dir, "shot.png", 30, 60, color.NRGBA{255, 0, 0, 255})
	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, later, later))

	out := mustCall(t, s, "strip_select", map[string]interface{}{"paths": []string{path}})
	info := out["images"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, float64(30), info["width"])
	assert.Equal(t, float64(60), info["height"])
}

func TestHandleToolsCall_SelectEmpty(t *testing.T) {
	s, _ := newTestServer(t)
	_, mcpErr := callTool(t, s, "strip_select", map[string]interface{}{"paths": []string{}})
	require.NotNil(t, mcpErr)
	assert.Contains(t, mcpErr.Data, "at least one image")
}

func TestHandleToolsCall_SelectDropsRegions(t *testing.T) {
	s, _ := newTestServer(t)
	selectStrip(t, s)
	layout(t, s, 0)

	selectStrip(t, s)
	_, mcpErr := callTool(t, s, "strip_region", map[string]interface{}{"index": 0})
	require.NotNil(t, mcpErr)
	assert.Contains(t, mcpErr.Data, "not yet measured")
}

func TestHandleToolsCall_Layout(t *testing.T) {
	s, _ := newTestServer(t)
	selectStrip(t, s)

	first := layout(t, s, 1)
	assert.Equal(t, true, first["created"])
	assert.Equal(t, float64(200), first["fitted_height"])
	r := region(t, first)
	assert.Equal(t, float64(0), r["top_initial"])
	assert.Equal(t, float64(200), r["bottom_initial"])
	assert.Equal(t, "top", r["last_edited"])

	mustCall(t, s, "strip_drag", map[string]interface{}{"index": 1, "edge": "top", "position": 30})

	// A later layout keeps the moved handle
	second := mustCall(t, s, "strip_layout", map[string]interface{}{
		"index": 1, "box_width": 80, "box_height": 400,
	})
	assert.Equal(t, false, second["created"])
	assert.Equal(t, float64(30), region(t, second)["top_current"])
}

func TestHandleToolsCall_LayoutLetterboxed(t *testing.T) {
	s, _ := newTestServer(t)
	selectStrip(t, s)

	// 100x200 into a 50x200 box is limited by width
	out := mustCall(t, s, "strip_layout", map[string]interface{}{
		"index": 0, "box_width": 50, "box_height": 200,
	})
	assert.Equal(t, float64(100), out["fitted_height"])
	r := region(t, out)
	assert.Equal(t, float64(50), r["top_initial"])
	assert.Equal(t, float64(150), r["bottom_initial"])
}

func TestHandleToolsCall_LayoutErrors(t *testing.T) {
	s, _ := newTestServer(t)

	_, mcpErr := callTool(t, s, "strip_layout", map[string]interface{}{"index": 0, "box_width": 10, "box_height": 10})
	require.NotNil(t, mcpErr)
	assert.Contains(t, mcpErr.Data, "no images selected")

	selectStrip(t, s)

	tests := []struct {
		name string
		args map[string]interface{}
		want string
	}{
		{"index out of range", map[string]interface{}{"index": 2, "box_width": 10, "box_height": 10}, "out of range"},
		{"negative index", map[string]interface{}{"index": -1, "box_width": 10, "box_height": 10}, "out of range"},
		{"zero box", map[string]interface{}{"index": 0, "box_width": 0, "box_height": 10}, "must be positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, mcpErr := callTool(t, s, "strip_layout", tt.args)
			require.NotNil(t, mcpErr)
			assert.Contains(t, mcpErr.Data, tt.want)
		})
	}
}

func TestHandleToolsCall_Drag(t *testing.T) {
	s, _ := newTestServer(t)
	selectStrip(t, s)
	layout(t, s, 0)

	tests := []struct {
		name       string
		edge       string
		position   float64
		wantTop    float64
		wantBottom float64
	}{
		{"top inward", "top", 40, 40, 200},
		{"bottom inward", "bottom", 150, 40, 150},
		{"top past bottom clamps", "top", 500, 150, 150},
		{"top above start clamps", "top", -20, 0, 150},
		{"bottom below start clamps", "bottom", 900, 0, 200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := mustCall(t, s, "strip_drag", map[string]interface{}{
				"index": 0, "edge": tt.edge, "position": tt.position,
			})
			r := region(t, out)
			assert.Equal(t, tt.wantTop, r["top_current"])
			assert.Equal(t, tt.wantBottom, r["bottom_current"])
			assert.Equal(t, tt.edge, r["last_edited"])
		})
	}
}

func TestHandleToolsCall_DragErrors(t *testing.T) {
	s, _ := newTestServer(t)
	selectStrip(t, s)

	tests := []struct {
		name string
		args map[string]interface{}
		want string
	}{
		{"not measured", map[string]interface{}{"index": 0, "edge": "top", "position": 10}, "not yet measured"},
		{"bad edge", map[string]interface{}{"index": 0, "edge": "left", "position": 10}, "unknown edge"},
		{"missing position", map[string]interface{}{"index": 0, "edge": "top"}, "position is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, mcpErr := callTool(t, s, "strip_drag", tt.args)
			require.NotNil(t, mcpErr)
			assert.Contains(t, mcpErr.Data, tt.want)
		})
	}
}

func TestHandleToolsCall_Reset(t *testing.T) {
	s, _ := newTestServer(t)
	selectStrip(t, s)
	layout(t, s, 0)
	mustCall(t, s, "strip_drag", map[string]interface{}{"index": 0, "edge": "bottom", "position": 120})

	out := mustCall(t, s, "strip_reset", map[string]interface{}{"index": 0})
	r := region(t, out)
	assert.Equal(t, float64(0), r["top_current"])
	assert.Equal(t, float64(200), r["bottom_current"])
}

func TestHandleToolsCall_Region(t *testing.T) {
	s, _ := newTestServer(t)
	selectStrip(t, s)
	layout(t, s, 1)

	// Image 1 is 50x100 shown 200 tall: one layout unit is half a pixel
	mustCall(t, s, "strip_drag", map[string]interface{}{"index": 1, "edge": "top", "position": 40})
	mustCall(t, s, "strip_drag", map[string]interface{}{"index": 1, "edge": "bottom", "position": 180})

	out := mustCall(t, s, "strip_region", map[string]interface{}{"index": 1})
	rect := out["pixel_rect"].(map[string]interface{})
	assert.Equal(t, float64(0), rect["x"])
	assert.InDelta(t, 20, rect["y"], 1e-9)
	assert.Equal(t, float64(50), rect["width"])
	assert.InDelta(t, 70, rect["height"], 1e-9)
	assert.InDelta(t, 140, region(t, out)["span"], 1e-9)
}

func TestHandleToolsCall_Preview(t *testing.T) {
	s, _ := newTestServer(t)
	selectStrip(t, s)
	layout(t, s, 0)
	mustCall(t, s, "strip_drag", map[string]interface{}{"index": 0, "edge": "top", "position": 50})

	out := mustCall(t, s, "strip_preview", map[string]interface{}{"index": 0, "guide_color": "#00ff00"})
	assert.Equal(t, "image/png", out["mime_type"])
	assert.Equal(t, float64(100), out["width"])
	assert.Equal(t, float64(200), out["height"])

	data, err := base64.StdEncoding.DecodeString(out["image_base64"].(string))
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 100, 200), img.Bounds())

	_, mcpErr := callTool(t, s, "strip_preview", map[string]interface{}{"index": 0, "guide_color": "chartreuse-ish"})
	require.NotNil(t, mcpErr)
}

func TestHandleToolsCall_Compose(t *testing.T) {
	s, outDir := newTestServer(t)
	selectStrip(t, s)
	layout(t, s, 0)
	layout(t, s, 1)

	// 50 rows off the top of image 0; 50 rows off the bottom of image 1
	mustCall(t, s, "strip_drag", map[string]interface{}{"index": 0, "edge": "top", "position": 50})
	mustCall(t, s, "strip_drag", map[string]interface{}{"index": 1, "edge": "bottom", "position": 100})

	out := mustCall(t, s, "strip_compose", map[string]interface{}{
		"output_path": "strip.png",
		"fill_color":  "#ffffff",
	})
	assert.Equal(t, float64(100), out["width"])
	assert.Equal(t, float64(200), out["height"])
	assert.Equal(t, []interface{}{float64(0), float64(1)}, out["included"])
	assert.Equal(t, float64(-1), out["stopped_at"])
	assert.NotContains(t, out, "image_base64")

	saved := out["saved_path"].(string)
	assert.Equal(t, filepath.Join(outDir, "strip.png"), saved)

	f, err := os.Open(saved)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 100, 200), img.Bounds())

	red := color.NRGBAModel.Convert(img.At(10, 10)).(color.NRGBA)
	assert.Equal(t, color.NRGBA{255, 0, 0, 255}, red)
	blue := color.NRGBAModel.Convert(img.At(10, 170)).(color.NRGBA)
	assert.Equal(t, color.NRGBA{0, 0, 255, 255}, blue)
	fill := color.NRGBAModel.Convert(img.At(90, 170)).(color.NRGBA)
	assert.Equal(t, color.NRGBA{255, 255, 255, 255}, fill)
}

func TestHandleToolsCall_ComposeStopsAtUnmeasured(t *testing.T) {
	s, _ := newTestServer(t)
	selectStrip(t, s)
	layout(t, s, 0)

	out := mustCall(t, s, "strip_compose", map[string]interface{}{"save": false})
	assert.Equal(t, []interface{}{float64(0)}, out["included"])
	assert.Equal(t, float64(1), out["stopped_at"])
	assert.Equal(t, float64(200), out["height"])
	assert.Equal(t, "image/png", out["mime_type"])
	assert.NotEmpty(t, out["image_base64"])
	assert.NotContains(t, out, "saved_path")
}

func TestHandleToolsCall_ComposeNothingToSave(t *testing.T) {
	s, outDir := newTestServer(t)

	_, mcpErr := callTool(t, s, "strip_compose", map[string]interface{}{})
	require.NotNil(t, mcpErr)
	assert.Contains(t, mcpErr.Data, "nothing to save")

	selectStrip(t, s)
	_, mcpErr = callTool(t, s, "strip_compose", map[string]interface{}{})
	require.NotNil(t, mcpErr)
	assert.Contains(t, mcpErr.Data, "nothing to save")

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestHandleToolsCall_ComposeSaveFailure(t *testing.T) {
	s, _ := newTestServer(t)
	selectStrip(t, s)
	layout(t, s, 0)

	_, mcpErr := callTool(t, s, "strip_compose", map[string]interface{}{"output_path": "strip.xyz"})
	require.NotNil(t, mcpErr)
	assert.Equal(t, -32000, mcpErr.Code)
	assert.Contains(t, mcpErr.Data, sink.ErrSaveFailed.Error())
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s, _ := newTestServer(t)
	resp := s.handleRequest(context.Background(), &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  json.RawMessage(`{invalid json}`),
	})

	require.NotNil(t, resp)
	require.NotNil(t, resp.Error)
	assert.Equal(t, -32602, resp.Error.Code)
}

func TestExecuteTool_UnknownTool(t *testing.T) {
	s, _ := newTestServer(t)
	_, err := s.executeTool(context.Background(), "unknown_tool", json.RawMessage(`{}`))
	assert.ErrorContains(t, err, "unknown tool")
}

func TestExecuteTool_InvalidJSON(t *testing.T) {
	s, _ := newTestServer(t)
	for _, tool := range GetToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			_, err := s.executeTool(context.Background(), tool.Name, json.RawMessage(`{invalid}`))
			assert.Error(t, err)
		})
	}
}
