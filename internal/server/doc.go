// Package server implements the MCP (Model Context Protocol) server for
// stitching cropped images into a vertical strip.
//
// This package provides a JSON-RPC 2.0 server that lets an MCP client pick a
// set of images, trim each one from the top and bottom by moving two crop
// handles, and save the trimmed images stacked into a single composite.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Selection:
//   - strip_select: Replace the active set with the given image files
//
// Crop Handles:
//   - strip_layout: Report the layout box of an image and seed its region
//   - strip_drag: Move the top or bottom handle of an image
//   - strip_reset: Move both handles back to where they started
//   - strip_region: Read a region and the pixel rectangle it maps to
//   - strip_preview: Render an image with the crop marked on it
//
// Output:
//   - strip_compose: Crop every measured image and stitch them top to bottom
//
// # Session
//
// One selection is active at a time. Regions are keyed by display index and
// are created by the first strip_layout for that index; later layouts return
// the existing region untouched. Selecting new images drops every region.
//
// strip_compose walks the images in display order and stops at the first one
// that has not been laid out yet. Images before it are still stitched.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// # Usage
//
//	srv := server.New(server.Options{Logger: logger})
//	if err := srv.Run(ctx); err != nil {
//	    logger.Fatal("server failed", zap.Error(err))
//	}
package server
