package server

import (
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/ironsheep/texture-atlas-mcp/internal/texsync"
	"github.com/ironsheep/texture-atlas-mcp/internal/toolerr"
)

const testManifest = `name: golem
resolution: {width: 16, height: 16}
textures:
  - id: tex
    name: skin
    path: skin.png
bones:
  - name: root
    pivot: [0, 0, 0]
cubes:
  - id: c1
    name: body
    bone: root
    from: [0, 0, 0]
    to: [4, 4, 4]
    faces:
      north: {texture: tex, uv: [0, 0, 4, 4]}
      east: {texture: tex, uv: [4, 0, 8, 4]}
      south: {texture: tex, uv: [8, 0, 12, 4]}
      west: {texture: tex, uv: [12, 0, 16, 4]}
      up: {texture: tex, uv: [0, 4, 4, 8]}
      down: {texture: tex, uv: [4, 4, 8, 8]}
`

// createTestProject writes a manifest and an opaque gray skin.png into a
// temp dir and returns the manifest path.
func createTestProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	img := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, color.NRGBA{128, 128, 128, 255})
		}
	}
	f, err := os.Create(filepath.Join(dir, "skin.png"))
	if err != nil {
		t.Fatalf("failed to create image: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}

	path := filepath.Join(dir, "project.yaml")
	if err := os.WriteFile(path, []byte(testManifest), 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}
	return path
}

// callTool sends a tools/call request through handleRequest.
func callTool(t *testing.T, s *Server, name string, args interface{}) *MCPResponse {
	t.Helper()
	params := map[string]interface{}{"name": name}
	if args != nil {
		params["arguments"] = args
	}
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		t.Fatalf("marshal params: %v", err)
	}
	resp := s.handleRequest(&MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  paramsJSON,
	})
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	return resp
}

// decodeContent unmarshals the text content of a successful tool response.
func decodeContent(t *testing.T, resp *MCPResponse, v interface{}) {
	t.Helper()
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %+v", resp.Error.Data)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	content, ok := result["content"].([]map[string]interface{})
	if !ok || len(content) == 0 {
		t.Fatal("Result should have content")
	}
	text, _ := content[0]["text"].(string)
	if err := json.Unmarshal([]byte(text), v); err != nil {
		t.Fatalf("Failed to parse content: %v", err)
	}
}

// toolError returns the typed payload of a failed tool response.
func toolError(t *testing.T, resp *MCPResponse) *toolerr.Error {
	t.Helper()
	if resp.Error == nil {
		t.Fatal("Expected error response")
	}
	if resp.Error.Code != -32000 {
		t.Fatalf("Error code: got %d, want -32000", resp.Error.Code)
	}
	te, ok := resp.Error.Data.(*toolerr.Error)
	if !ok {
		t.Fatalf("Error data: got %T, want *toolerr.Error", resp.Error.Data)
	}
	return te
}

func loadTestProject(t *testing.T) *Server {
	t.Helper()
	s := newTestServer()
	resp := callTool(t, s, "project_load", map[string]interface{}{"path": createTestProject(t)})
	var summary texsync.ProjectSummary
	decodeContent(t, resp, &summary)
	if summary.Name != "golem" {
		t.Fatalf("project name: got %q, want golem", summary.Name)
	}
	return s
}

func TestHandleToolsCall_ProjectLoad(t *testing.T) {
	s := newTestServer()
	resp := callTool(t, s, "project_load", map[string]interface{}{"path": createTestProject(t)})

	var summary texsync.ProjectSummary
	decodeContent(t, resp, &summary)

	if summary.Cubes != 1 || summary.Textures != 1 || summary.Faces != 6 {
		t.Errorf("counts: got cubes=%d textures=%d faces=%d", summary.Cubes, summary.Textures, summary.Faces)
	}
	if summary.Revision == "" || summary.UvUsageID == "" {
		t.Error("summary should carry revision and uvUsageId")
	}
	if s.active() == nil {
		t.Error("project_load should install the service")
	}
}

func TestHandleToolsCall_ProjectLoadErrors(t *testing.T) {
	tests := []struct {
		name       string
		args       interface{}
		wantReason string
	}{
		{"missing path", map[string]interface{}{}, toolerr.ReasonInvalidPayload},
		{"no arguments", nil, toolerr.ReasonInvalidPayload},
		{"missing file", map[string]interface{}{"path": "/nonexistent/project.yaml"}, toolerr.ReasonNoProject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer()
			te := toolError(t, callTool(t, s, "project_load", tt.args))
			if te.Reason() != tt.wantReason {
				t.Errorf("reason: got %s, want %s", te.Reason(), tt.wantReason)
			}
		})
	}
}

func TestHandleToolsCall_NoProject(t *testing.T) {
	tools := []string{
		"project_state",
		"texture_preflight",
		"texture_paint_faces",
		"texture_auto_uv_atlas",
		"texture_paint",
		"texture_paint_batch",
		"texture_export",
	}

	s := newTestServer()
	for _, name := range tools {
		t.Run(name, func(t *testing.T) {
			te := toolError(t, callTool(t, s, name, map[string]interface{}{}))
			if te.Reason() != toolerr.ReasonNoProject {
				t.Errorf("reason: got %s, want %s", te.Reason(), toolerr.ReasonNoProject)
			}
		})
	}
}

func TestHandleToolsCall_PreflightThenPaintFaces(t *testing.T) {
	s := loadTestProject(t)

	var pre texsync.PreflightResult
	decodeContent(t, callTool(t, s, "texture_preflight", map[string]interface{}{
		"textureName": "skin",
	}), &pre)
	if pre.UvUsageID == "" || pre.Revision == "" {
		t.Fatal("preflight should return uvUsageId and revision")
	}
	if len(pre.Textures) != 1 || pre.Textures[0].OpaquePixels != 256 {
		t.Fatalf("texture stats: %+v", pre.Textures)
	}

	var painted texsync.PaintFacesResult
	decodeContent(t, callTool(t, s, "texture_paint_faces", map[string]interface{}{
		"textureId":  "tex",
		"targets":    []map[string]interface{}{{"cubeName": "body", "face": "north"}},
		"ops":        []map[string]interface{}{{"op": "fill_rect", "x": 0, "y": 0, "width": 4, "height": 4, "color": "#ff0000"}},
		"uvUsageId":  pre.UvUsageID,
		"ifRevision": pre.Revision,
	}), &painted)

	if len(painted.Targets) != 1 || painted.Targets[0].Face != "north" {
		t.Errorf("targets: got %+v", painted.Targets)
	}
	if painted.Revision == pre.Revision {
		t.Error("revision should change after a paint")
	}
	if len(painted.Recovery.Attempts) != 0 {
		t.Errorf("unexpected recovery: %+v", painted.Recovery.Attempts)
	}

	// The old revision is now stale.
	te := toolError(t, callTool(t, s, "texture_paint", map[string]interface{}{
		"textureId":  "tex",
		"ops":        []map[string]interface{}{{"op": "set_pixel", "x": 0, "y": 0, "color": "#00ff00"}},
		"ifRevision": pre.Revision,
	}))
	if te.Code != toolerr.CodeRevisionMismatch {
		t.Errorf("code: got %s, want %s", te.Code, toolerr.CodeRevisionMismatch)
	}
}

func TestHandleToolsCall_PaintFacesRequiresRevision(t *testing.T) {
	s := loadTestProject(t)
	te := toolError(t, callTool(t, s, "texture_paint_faces", map[string]interface{}{
		"textureId": "tex",
		"targets":   []map[string]interface{}{{"cubeName": "body"}},
		"ops":       []map[string]interface{}{{"op": "set_pixel", "x": 0, "y": 0, "color": "#ff0000"}},
	}))
	if te.Code != toolerr.CodeRevisionMissing {
		t.Errorf("code: got %s, want %s", te.Code, toolerr.CodeRevisionMissing)
	}
}

func TestHandleToolsCall_AutoUvAtlasPreview(t *testing.T) {
	s := loadTestProject(t)

	var plan texsync.AtlasApplyResult
	decodeContent(t, callTool(t, s, "texture_auto_uv_atlas", nil), &plan)
	if plan.Applied {
		t.Error("preview should not apply")
	}
	if len(plan.Assignments) != 6 {
		t.Errorf("assignments: got %d, want 6", len(plan.Assignments))
	}
}

func TestHandleToolsCall_PaintBatch(t *testing.T) {
	s := loadTestProject(t)

	var state texsync.ProjectSummary
	decodeContent(t, callTool(t, s, "project_state", nil), &state)

	var batch texsync.PaintBatchResult
	decodeContent(t, callTool(t, s, "texture_paint_batch", map[string]interface{}{
		"items": []map[string]interface{}{
			{"textureId": "tex", "ops": []map[string]interface{}{{"op": "set_pixel", "x": 1, "y": 1, "color": "#ff0000"}}},
			{"textureName": "skin", "ops": []map[string]interface{}{{"op": "set_pixel", "x": 2, "y": 2, "color": "#0000ff"}}},
		},
		"ifRevision": state.Revision,
	}), &batch)

	if len(batch.Results) != 2 {
		t.Fatalf("results: got %d, want 2", len(batch.Results))
	}
	if batch.Revision == state.Revision {
		t.Error("revision should change after the batch")
	}
}

func TestHandleToolsCall_Export(t *testing.T) {
	s := loadTestProject(t)

	var exp texsync.ExportResult
	decodeContent(t, callTool(t, s, "texture_export", map[string]interface{}{
		"textureName": "skin",
		"regionName":  "top-left",
		"scale":       2,
	}), &exp)

	if exp.Width != 16 || exp.Height != 16 {
		t.Errorf("size: got %dx%d, want 16x16", exp.Width, exp.Height)
	}
	if exp.MimeType != "image/png" || exp.ImageBase64 == "" {
		t.Errorf("unexpected encoding: %s", exp.MimeType)
	}
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := newTestServer()
	resp := s.handleRequest(&MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  json.RawMessage(`"not an object"`),
	})
	if resp.Error == nil || resp.Error.Code != -32602 {
		t.Fatalf("expected -32602, got %+v", resp.Error)
	}
}

func TestExecuteTool_AllTools(t *testing.T) {
	s := newTestServer()
	for _, tool := range GetToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			_, err := s.executeTool(tool.Name, json.RawMessage(`{}`))
			if err == nil {
				return
			}
			// Every defined tool must be dispatched, so only domain errors are allowed.
			if te := toolerr.From(err); te.Message == "unknown tool: "+tool.Name {
				t.Errorf("tool %s is defined but not dispatched", tool.Name)
			}
		})
	}
}

func TestExecuteTool_UnknownTool(t *testing.T) {
	s := newTestServer()
	_, err := s.executeTool("nonexistent_tool", nil)
	if err == nil {
		t.Fatal("Expected error for unknown tool")
	}
	if !toolerr.IsCode(err, toolerr.CodeInvalidPayload) {
		t.Errorf("code: got %s", toolerr.From(err).Code)
	}
}

func TestExecuteTool_InvalidJSON(t *testing.T) {
	s := loadTestProject(t)
	_, err := s.executeTool("texture_preflight", json.RawMessage(`{invalid`))
	if toolerr.ReasonOf(err) != toolerr.ReasonInvalidPayload {
		t.Errorf("reason: got %s, want %s", toolerr.ReasonOf(err), toolerr.ReasonInvalidPayload)
	}
}
