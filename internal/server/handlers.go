package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image/color"

	"github.com/ironsheep/image-strip-mcp/internal/crop"
	"github.com/ironsheep/image-strip-mcp/internal/imaging"
	"go.uber.org/zap"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "strip_select", "strip_drag").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	s.logger.Debug("Tool call", zap.String("tool", params.Name))

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn("Tool execution failed", zap.String("tool", params.Name), zap.Error(err))
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	// Selection
	case "strip_select":
		return s.handleStripSelect(args)

	// Handles
	case "strip_layout":
		return s.handleStripLayout(args)
	case "strip_drag":
		return s.handleStripDrag(args)
	case "strip_reset":
		return s.handleStripReset(args)
	case "strip_region":
		return s.handleStripRegion(args)
	case "strip_preview":
		return s.handleStripPreview(args)

	// Output
	case "strip_compose":
		return s.handleStripCompose(ctx, args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Selection Handlers ===

type stripSelectArgs struct {
	Paths []string `json:"paths"`
}

type stripSelectResult struct {
	Count  int                  `json:"count"`
	Images []imaging.SourceInfo `json:"images"`
}

func (s *Server) handleStripSelect(args json.RawMessage) (interface{}, error) {
	var a stripSelectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if len(a.Paths) == 0 {
		return nil, fmt.Errorf("paths must name at least one image")
	}

	// Load everything first so a bad path leaves the current selection alone
	sources := make([]*imaging.Source, len(a.Paths))
	infos := make([]imaging.SourceInfo, len(a.Paths))
	for i, path := range a.Paths {
		src, err := s.cache.Load(path)
		if err != nil {
			return nil, fmt.Errorf("image %d (%s): %w", i, path, err)
		}
		sources[i] = src
		infos[i] = imaging.Info(i, src)
	}

	previous := s.session.replace(sources)
	s.evictUnselected(previous, a.Paths)
	s.logger.Info("Selection replaced", zap.Int("images", len(sources)))

	return &stripSelectResult{Count: len(sources), Images: infos}, nil
}

// evictUnselected drops cached images of the old selection that the new one
// no longer uses.
func (s *Server) evictUnselected(previous []*imaging.Source, paths []string) {
	keep := make(map[string]bool, len(paths))
	for _, p := range paths {
		keep[p] = true
	}
	for _, src := range previous {
		if src != nil && !keep[src.Path] {
			s.cache.Evict(src.Path)
		}
	}
}

// === Handle Handlers ===

type regionResult struct {
	Index  int              `json:"index"`
	Region crop.RegionState `json:"region"`
}

type stripLayoutArgs struct {
	Index     int     `json:"index"`
	BoxWidth  float64 `json:"box_width"`
	BoxHeight float64 `json:"box_height"`
}

type stripLayoutResult struct {
	regionResult
	Created      bool    `json:"created"`
	FittedHeight float64 `json:"fitted_height"`
}

func (s *Server) handleStripLayout(args json.RawMessage) (interface{}, error) {
	var a stripLayoutArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if !(a.BoxWidth > 0) || !(a.BoxHeight > 0) {
		return nil, fmt.Errorf("layout box must be positive, got %gx%g", a.BoxWidth, a.BoxHeight)
	}

	s.session.mu.Lock()
	defer s.session.mu.Unlock()

	src, err := s.session.source(a.Index)
	if err != nil {
		return nil, err
	}

	box := crop.Size{Width: a.BoxWidth, Height: a.BoxHeight}
	fitted := crop.FitHeight(src.NaturalSize(), box)
	if fitted <= 0 {
		return nil, fmt.Errorf("image %d has no displayable height", a.Index)
	}
	top, bottom := crop.Seed(box.Height, fitted)
	region, created := s.session.regions.Ensure(a.Index, top, bottom)
	if created {
		s.logger.Debug("Region measured",
			zap.Int("index", a.Index),
			zap.Float64("top", top),
			zap.Float64("bottom", bottom))
	}

	return &stripLayoutResult{
		regionResult: regionResult{Index: a.Index, Region: region.Snapshot()},
		Created:      created,
		FittedHeight: fitted,
	}, nil
}

type stripDragArgs struct {
	Index    int      `json:"index"`
	Edge     string   `json:"edge"`
	Position *float64 `json:"position"`
}

func (s *Server) handleStripDrag(args json.RawMessage) (interface{}, error) {
	var a stripDragArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	edge, err := crop.ParseEdge(a.Edge)
	if err != nil {
		return nil, err
	}
	if a.Position == nil {
		return nil, fmt.Errorf("position is required")
	}

	s.session.mu.Lock()
	defer s.session.mu.Unlock()

	_, region, err := s.session.region(a.Index)
	if err != nil {
		return nil, err
	}
	region.UpdateEdge(edge, *a.Position)

	return &regionResult{Index: a.Index, Region: region.Snapshot()}, nil
}

type indexArgs struct {
	Index int `json:"index"`
}

func (s *Server) handleStripReset(args json.RawMessage) (interface{}, error) {
	var a indexArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	s.session.mu.Lock()
	defer s.session.mu.Unlock()

	_, region, err := s.session.region(a.Index)
	if err != nil {
		return nil, err
	}
	region.Reset()

	return &regionResult{Index: a.Index, Region: region.Snapshot()}, nil
}

type stripRegionResult struct {
	regionResult
	Rect crop.PixelRect `json:"pixel_rect"`
}

func (s *Server) handleStripRegion(args json.RawMessage) (interface{}, error) {
	var a indexArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	s.session.mu.Lock()
	defer s.session.mu.Unlock()

	src, region, err := s.session.region(a.Index)
	if err != nil {
		return nil, err
	}
	rect, err := crop.MapToPixelRect(region, src.NaturalSize())
	if err != nil {
		return nil, err
	}

	return &stripRegionResult{
		regionResult: regionResult{Index: a.Index, Region: region.Snapshot()},
		Rect:         rect,
	}, nil
}

type stripPreviewArgs struct {
	Index      int    `json:"index"`
	GuideColor string `json:"guide_color"`
}

type stripPreviewResult struct {
	*imaging.ImageResult
	Rect crop.PixelRect `json:"pixel_rect"`
}

func (s *Server) handleStripPreview(args json.RawMessage) (interface{}, error) {
	var a stripPreviewArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	var guide color.Color
	if a.GuideColor != "" {
		c, err := imaging.ParseFill(a.GuideColor)
		if err != nil {
			return nil, err
		}
		guide = c
	}

	s.session.mu.Lock()
	defer s.session.mu.Unlock()

	src, region, err := s.session.region(a.Index)
	if err != nil {
		return nil, err
	}
	rect, err := crop.MapToPixelRect(region, src.NaturalSize())
	if err != nil {
		return nil, err
	}
	preview, err := imaging.CropGuides(src, rect, guide)
	if err != nil {
		return nil, err
	}
	encoded, err := imaging.EncodePNG(preview)
	if err != nil {
		return nil, err
	}

	return &stripPreviewResult{ImageResult: encoded, Rect: rect}, nil
}

// === Output Handlers ===

type stripComposeArgs struct {
	OutputPath string `json:"output_path"`
	FillColor  string `json:"fill_color"`
	Save       *bool  `json:"save"`
}

type stripComposeResult struct {
	Width     int            `json:"width"`
	Height    int            `json:"height"`
	Included  []int          `json:"included"`
	Skipped   []imaging.Skip `json:"skipped,omitempty"`
	StoppedAt int            `json:"stopped_at"`
	SavedPath string         `json:"saved_path,omitempty"`

	// Set instead of SavedPath when the composite is returned inline.
	ImageBase64 string `json:"image_base64,omitempty"`
	MimeType    string `json:"mime_type,omitempty"`
}

func (s *Server) handleStripCompose(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a stripComposeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	fill := s.fill
	if a.FillColor != "" {
		c, err := imaging.ParseFill(a.FillColor)
		if err != nil {
			return nil, err
		}
		fill = c
	}
	save := a.Save == nil || *a.Save

	s.session.mu.Lock()
	composite, err := imaging.CropAllAndStitch(ctx, s.session.sources, s.session.regions, imaging.ComposeOptions{
		Fill:    fill,
		Workers: s.workers,
	})
	s.session.mu.Unlock()

	if composite != nil {
		s.logSkips(composite)
	}
	if err != nil {
		if errors.Is(err, imaging.ErrEmptyInput) {
			return nil, fmt.Errorf("nothing to save: %w", err)
		}
		return nil, err
	}

	result := &stripComposeResult{
		Width:     composite.Image.Bounds().Dx(),
		Height:    composite.Image.Bounds().Dy(),
		Included:  composite.Included,
		Skipped:   composite.Skipped,
		StoppedAt: composite.StoppedAt,
	}

	if !save {
		encoded, err := imaging.EncodePNG(composite.Image)
		if err != nil {
			return nil, err
		}
		result.ImageBase64 = encoded.ImageBase64
		result.MimeType = encoded.MimeType
		return result, nil
	}

	path, err := s.sink.Save(ctx, composite.Image, a.OutputPath)
	if err != nil {
		return nil, err
	}
	result.SavedPath = path
	s.logger.Info("Composite saved",
		zap.String("path", path),
		zap.Int("images", len(composite.Included)),
		zap.Int("width", result.Width),
		zap.Int("height", result.Height))

	return result, nil
}

func (s *Server) logSkips(c *imaging.Composite) {
	for _, skip := range c.Skipped {
		s.logger.Warn("Image skipped", zap.Int("index", skip.Index), zap.Error(skip.Err))
	}
	if c.StoppedAt >= 0 {
		s.logger.Info("Compose stopped at unmeasured image", zap.Int("index", c.StoppedAt))
	}
}
