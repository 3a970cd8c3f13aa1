// Package server implements the MCP (Model Context Protocol) server for the
// pixelation pipeline.
//
// This package provides a JSON-RPC 2.0 server that exposes preview, export
// and preset management through the MCP protocol. It is a thin layer: every
// tool call resolves a pixelate.Settings value and hands it to the pipeline.
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
//   - image_load: Load a source image and report its metadata
//   - pixelate_preview: Native-resolution render, no watermark
//   - pixelate_export: Scaled, watermarked render of one scale
//   - pixelate_export_batch: Several scales with per-scale errors
//   - preset_list, preset_save, preset_delete: Preset management
//
// Settings are resolved in layers: defaults, then the named preset, then
// the explicit settings object.
//
// # Image Caching
//
// Decoded sources are cached by path for previews and never modified;
// each render works on a copy. Exports always decode the source bytes
// again so they do not depend on preview state.
//
// # Error Handling
//
// Tool errors are returned as JSON-RPC error responses with:
//   - code: -32602 for bad arguments or settings, -32000 for processing failures
//   - message: Human-readable error description
//   - data: The Go error string
//
// # Usage
//
//	srv, err := server.New(server.Config{Presets: store, Logger: logger})
//	if err != nil {
//	    return err
//	}
//	return srv.Run()
package server
