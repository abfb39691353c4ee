// Package server implements the MCP (Model Context Protocol) server for UV atlas
// and texture painting tools.
//
// This package provides a JSON-RPC 2.0 server that exposes the texsync operations
// through the MCP protocol, so an AI client can lay out and paint a cube model's
// textures without corrupting them.
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
// Project:
//   - project_load: Load a YAML manifest as the active project
//   - project_state: Counts, resolution, outliner nodes, revision
//
// Texture Synchronization:
//   - texture_preflight: Read the UV layout and its uvUsageId
//   - texture_paint_faces: Paint ops onto specific cube faces
//   - texture_auto_uv_atlas: Repack face UVs, preview or apply
//
// Whole-Texture Editing:
//   - texture_paint: Paint ops in texture pixels
//   - texture_paint_batch: Several texture_paint items under one revision check
//   - texture_export: Encode a texture or region as PNG
//
// Mutating tools require the ifRevision returned by the last read.
//
// # Image Caching
//
// Texture files referenced by a manifest are decoded through an image cache.
// The cache is cleared on every project_load.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: "Tool execution failed"
//   - data: the typed error payload {code, message, fix, details}
//
// details.reason is stable and safe to branch on.
//
// # Usage
//
//	srv := server.New(texsync.DefaultOptions(), logger.Named("server"))
//	if _, err := srv.LoadProject("model.yaml"); err != nil {
//	    return err
//	}
//	if err := srv.Run(); err != nil {
//	    return err
//	}
package server
