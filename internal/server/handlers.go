package server

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/ironsheep/texture-atlas-mcp/internal/texsync"
	"github.com/ironsheep/texture-atlas-mcp/internal/toolerr"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "texture_preflight").
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
// Tool execution errors return a JSON-RPC error response with code -32000
// whose data is the typed error payload {code, message, fix, details}.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		te := toolerr.From(err)
		s.log.Info("tool failed",
			zap.String("tool", params.Name),
			zap.String("code", string(te.Code)),
			zap.String("reason", te.Reason()))
		return s.errorResponse(req.ID, -32000, "Tool execution failed", te)
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
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Resolves the active project
//  3. Calls the matching texsync operation
//  4. Returns the result or a typed error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Project
	case "project_load":
		return s.handleProjectLoad(args)
	case "project_state":
		return s.handleProjectState(args)

	// Texture synchronization
	case "texture_preflight":
		return s.handleTexturePreflight(args)
	case "texture_paint_faces":
		return s.handleTexturePaintFaces(args)
	case "texture_auto_uv_atlas":
		return s.handleTextureAutoUvAtlas(args)

	// Whole-texture editing
	case "texture_paint":
		return s.handleTexturePaint(args)
	case "texture_paint_batch":
		return s.handleTexturePaintBatch(args)
	case "texture_export":
		return s.handleTextureExport(args)

	default:
		return nil, toolerr.InvalidPayload(fmt.Sprintf("unknown tool: %s", name))
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message string, data interface{}) *MCPResponse {
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

// decodeArgs unmarshals tool arguments. Missing arguments decode as an empty
// object.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return toolerr.InvalidPayload(fmt.Sprintf("invalid arguments: %v", err))
	}
	return nil
}

// project returns the active project service or NoProject.
func (s *Server) project() (*texsync.Service, error) {
	svc := s.active()
	if svc == nil {
		return nil, toolerr.NoProject()
	}
	return svc, nil
}

// === Project Handlers ===

type projectLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleProjectLoad(args json.RawMessage) (interface{}, error) {
	var a projectLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, toolerr.InvalidPayload("path is required")
	}
	svc, err := s.LoadProject(a.Path)
	if err != nil {
		return nil, toolerr.New(toolerr.CodeInvalidState, toolerr.ReasonNoProject,
			err.Error(), "Check the manifest path and its texture files, then call project_load again.").
			With("path", a.Path)
	}
	return svc.ProjectState()
}

func (s *Server) handleProjectState(json.RawMessage) (interface{}, error) {
	svc, err := s.project()
	if err != nil {
		return nil, err
	}
	return svc.ProjectState()
}

// === Texture Synchronization Handlers ===

func (s *Server) handleTexturePreflight(args json.RawMessage) (interface{}, error) {
	var a texsync.PreflightRequest
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	svc, err := s.project()
	if err != nil {
		return nil, err
	}
	return svc.PreflightTexture(a)
}

func (s *Server) handleTexturePaintFaces(args json.RawMessage) (interface{}, error) {
	var a texsync.PaintFacesRequest
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	svc, err := s.project()
	if err != nil {
		return nil, err
	}
	return svc.PaintFaces(a)
}

func (s *Server) handleTextureAutoUvAtlas(args json.RawMessage) (interface{}, error) {
	var a texsync.AtlasRequest
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	svc, err := s.project()
	if err != nil {
		return nil, err
	}
	return svc.AutoUvAtlas(a)
}

// === Whole-Texture Handlers ===

func (s *Server) handleTexturePaint(args json.RawMessage) (interface{}, error) {
	var a texsync.PaintTextureRequest
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	svc, err := s.project()
	if err != nil {
		return nil, err
	}
	return svc.PaintTexture(a)
}

func (s *Server) handleTexturePaintBatch(args json.RawMessage) (interface{}, error) {
	var a texsync.PaintBatchRequest
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	svc, err := s.project()
	if err != nil {
		return nil, err
	}
	return svc.PaintBatch(a)
}

func (s *Server) handleTextureExport(args json.RawMessage) (interface{}, error) {
	var a texsync.ExportRequest
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	svc, err := s.project()
	if err != nil {
		return nil, err
	}
	return svc.ExportTexture(a)
}
