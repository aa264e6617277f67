// Package server implements an MCP (Model Context Protocol) server exposing
// banner text removal as tools.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Logs go to stderr so they never interleave with responses.
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - remove_text: Clear all text from an image and report the removed blocks
//   - detect_text: Word boxes from the configured detector
//   - find_text_boxes: Merge word boxes into text blocks
//   - find_discharged_area: Suggest a quiet band for new text
//   - image_dimensions: Get width and height
//
// # Image Caching
//
// Images read by the analysis tools are cached by path for the lifetime of
// the process. remove_text evicts its output path so later calls see the
// fresh file.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string, which for remove_text names the failed stage
//
// # Usage
//
//	srv := server.New(remover)
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal().Err(err).Msg("server stopped")
//	}
package server
