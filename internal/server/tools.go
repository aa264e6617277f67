package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file",
	}
}

func boxSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"x":      map[string]interface{}{"type": "integer"},
			"y":      map[string]interface{}{"type": "integer"},
			"width":  map[string]interface{}{"type": "integer"},
			"height": map[string]interface{}{"type": "integer"},
		},
		"required": []string{"x", "y", "width", "height"},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name: "remove_text",
			Description: "A tool for removing text from an image. Writes the cleaned image next to the input " +
				"as <name>_remove_text<ext> and returns the text boxes that were removed, largest first. " +
				"When the image had no text, returns a single area where new text could be placed.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "detect_text",
			Description: "Detect text in an image and return one bounding box per word.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "find_text_boxes",
			Description: "Merge word boxes into text blocks by dilating their mask and taking connected components. Blocks are returned largest first.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"boxes": map[string]interface{}{
						"type":        "array",
						"items":       boxSchema(),
						"description": "Word boxes, e.g. from detect_text",
					},
					"kernel_width": map[string]interface{}{
						"type":        "integer",
						"description": "Dilation kernel width. Default 20",
						"default":     20,
					},
					"kernel_height": map[string]interface{}{
						"type":        "integer",
						"description": "Dilation kernel height. Default 20",
						"default":     20,
					},
					"iterations": map[string]interface{}{
						"type":        "integer",
						"description": "Dilation passes. Default 1",
						"default":     1,
					},
				},
				"required": []string{"path", "boxes"},
			},
		},
		{
			Name:        "find_discharged_area",
			Description: "Find a horizontal band with few corner points where text could be placed, and its mean background colour.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"num_text_areas": map[string]interface{}{
						"type":        "integer",
						"description": "Number of horizontal bands. Default 5",
						"default":     5,
					},
					"point_threshold": map[string]interface{}{
						"type":        "number",
						"description": "Fraction of the strongest corner response that counts as a point. Default 0.1",
						"default":     0.1,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
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
