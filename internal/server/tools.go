package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func indexProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": "0-based display index of the image within the current selection",
		"minimum":     0,
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Selection
		{
			Name:        "strip_select",
			Description: "Replace the current selection with the given images, in display order. All crop handles of the previous selection are discarded.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"paths": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Absolute paths to the image files, top to bottom",
					},
				},
				"required": []string{"paths"},
			},
		},

		// Handles
		{
			Name:        "strip_layout",
			Description: "Report the layout box an image is displayed in. The first report places the top and bottom handles at the edges of the letterboxed image; later reports are ignored.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"index": indexProperty(),
					"box_width": map[string]interface{}{
						"type":        "number",
						"description": "Width of the layout box in layout units",
					},
					"box_height": map[string]interface{}{
						"type":        "number",
						"description": "Height of the layout box in layout units",
					},
				},
				"required": []string{"index", "box_width", "box_height"},
			},
		},
		{
			Name:        "strip_drag",
			Description: "Move the top or bottom handle of an image. Positions are clamped so the handles never cross and never leave the image's original extent.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"index": indexProperty(),
					"edge": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"top", "bottom"},
						"description": "Which handle to move",
					},
					"position": map[string]interface{}{
						"type":        "number",
						"description": "New Y position in layout units, measured from the top of the layout box",
					},
				},
				"required": []string{"index", "edge", "position"},
			},
		},
		{
			Name:        "strip_reset",
			Description: "Move both handles of an image back to where they were first placed.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"index": indexProperty(),
				},
				"required": []string{"index"},
			},
		},
		{
			Name:        "strip_region",
			Description: "Return the handle positions of an image and the pixel rectangle they select in the upright source image.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"index": indexProperty(),
				},
				"required": []string{"index"},
			},
		},
		{
			Name:        "strip_preview",
			Description: "Return the upright image with the trimmed rows dimmed and guide lines at the crop edges, as base64-encoded PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"index": indexProperty(),
					"guide_color": map[string]interface{}{
						"type":        "string",
						"description": "Guide line colour as hex (default #FF0000)",
					},
				},
				"required": []string{"index"},
			},
		},

		// Output
		{
			Name:        "strip_compose",
			Description: "Crop every measured image to its handles and stack the results top to bottom into one image. Stops at the first image that has not been laid out yet.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"output_path": map[string]interface{}{
						"type":        "string",
						"description": "Where to save the composite (.png or .jpg). Relative paths resolve against the output directory; empty picks a unique name.",
					},
					"fill_color": map[string]interface{}{
						"type":        "string",
						"description": "Fill for the area right of narrower images: hex colour or 'transparent'. Defaults to the server setting.",
					},
					"save": map[string]interface{}{
						"type":        "boolean",
						"description": "Save the composite (default true). When false the composite is returned as base64-encoded PNG.",
						"default":     true,
					},
				},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
