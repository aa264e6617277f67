package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/BespalovSergey/banners/internal/cleartext"
	"github.com/BespalovSergey/banners/internal/detection"
	"github.com/BespalovSergey/banners/internal/imaging"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "remove_text", "detect_text").
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

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
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
	switch name {
	case "remove_text":
		return s.handleRemoveText(ctx, args)
	case "detect_text":
		return s.handleDetectText(ctx, args)
	case "find_text_boxes":
		return s.handleFindTextBoxes(args)
	case "find_discharged_area":
		return s.handleFindDischargedArea(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)
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

type pathArgs struct {
	Path string `json:"path"`
}

// RemoveTextResult is returned by the remove_text tool.
type RemoveTextResult struct {
	*cleartext.RemovalResult

	// Report is the plain text summary also printed by the CLI.
	Report string `json:"report"`
}

func (s *Server) handleRemoveText(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	result, err := s.remover.Remove(ctx, a.Path)
	if err != nil {
		return nil, err
	}
	// The output may have been rewritten since it was last cached.
	s.cache.Evict(result.ClearImagePath)
	return &RemoveTextResult{RemovalResult: result, Report: result.Report()}, nil
}

// DetectTextResult is returned by the detect_text tool.
type DetectTextResult struct {
	Boxes []imaging.TextBox `json:"boxes"`
	Count int               `json:"count"`
}

func (s *Server) handleDetectText(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	boxes, err := s.remover.Deleter.Detector.DetectText(ctx, a.Path)
	if err != nil {
		return nil, err
	}
	if boxes == nil {
		boxes = []imaging.TextBox{}
	}
	return &DetectTextResult{Boxes: boxes, Count: len(boxes)}, nil
}

type findTextBoxesArgs struct {
	Path         string            `json:"path"`
	Boxes        []imaging.TextBox `json:"boxes"`
	KernelWidth  int               `json:"kernel_width"`
	KernelHeight int               `json:"kernel_height"`
	Iterations   *int              `json:"iterations"`
}

func (s *Server) handleFindTextBoxes(args json.RawMessage) (interface{}, error) {
	var a findTextBoxesArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.KernelWidth == 0 {
		a.KernelWidth = s.remover.KernelWidth
	}
	if a.KernelHeight == 0 {
		a.KernelHeight = s.remover.KernelHeight
	}
	iterations := s.remover.Iterations
	if a.Iterations != nil {
		iterations = *a.Iterations
	}
	if a.KernelWidth < 1 || a.KernelHeight < 1 {
		return nil, fmt.Errorf("kernel must be at least 1x1, got %dx%d", a.KernelWidth, a.KernelHeight)
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	mask := imaging.MaskForImage(img, a.Boxes)
	boxes := detection.FindTextBoxes(mask, a.KernelWidth, a.KernelHeight, iterations)
	if boxes == nil {
		boxes = []imaging.TextBox{}
	}
	return &DetectTextResult{Boxes: boxes, Count: len(boxes)}, nil
}

type findDischargedAreaArgs struct {
	Path           string   `json:"path"`
	NumTextAreas   int      `json:"num_text_areas"`
	PointThreshold *float64 `json:"point_threshold"`
}

// DischargedAreaResult is returned by the find_discharged_area tool.
type DischargedAreaResult struct {
	*detection.DischargeResult

	// Background is the mean colour of the area as "#rrggbb".
	Background string `json:"background"`
}

func (s *Server) handleFindDischargedArea(args json.RawMessage) (interface{}, error) {
	var a findDischargedAreaArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.NumTextAreas == 0 {
		a.NumTextAreas = s.remover.NumTextAreas
	}
	threshold := s.remover.PointThreshold
	if a.PointThreshold != nil {
		threshold = *a.PointThreshold
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	area, err := detection.FindDischargedArea(img, a.NumTextAreas, threshold)
	if err != nil {
		return nil, err
	}
	return &DischargedAreaResult{
		DischargeResult: area,
		Background:      imaging.MeanColorHex(img, area.Area.Rect()),
	}, nil
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}
