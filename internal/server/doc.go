// Package server implements the MCP (Model Context Protocol) server for
// roster record extraction.
//
// This package provides a JSON-RPC 2.0 server that exposes the extraction
// pipeline through the MCP protocol, so that harvesting clients can hand
// over images and field maps and read back fused records.
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
// Images:
//   - roster_image_info: Header metadata and identity hint
//   - roster_extract_image: Variant x configuration trials, then merge
//   - roster_preview_variants: PNG previews of each preprocessing variant
//
// The image tools accept an optional region (named, such as "top-half", or
// pixel coordinates) that is cropped before anything else runs.
//
// Text and harvested records:
//   - roster_extract_text: Validated fields and quality score for text
//   - roster_ingest_record: Validate and merge a harvested field map
//
// Fused records:
//   - roster_get_record: One record by identity key
//   - roster_list_records: All records, optionally filtered
//
// Runs:
//   - roster_run_batch: Parallel batch with a failure summary
//   - roster_status: Recognizer and menu report
//
// # Record Store
//
// Fused records live in memory for the lifetime of the server process.
// Every tool call that merges contributes to the same store.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The coded error map (error_code, message, source, details)
//     for processing failures, otherwise the Go error string
//
// # Usage
//
//	srv := server.New(processor, server.WithLogger(logger))
//	if err := srv.Run(ctx); err != nil {
//	    logger.Error("server stopped", "error", err)
//	}
package server
