package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// textureRefProperties adds the textureId/textureName pair to props.
func textureRefProperties(props map[string]interface{}) map[string]interface{} {
	props["textureId"] = map[string]interface{}{
		"type":        "string",
		"description": "Texture id (takes priority over textureName)",
	}
	props["textureName"] = map[string]interface{}{
		"type":        "string",
		"description": "Texture name",
	}
	return props
}

func ifRevisionProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Project revision from the last read (project_state or texture_preflight). Required for mutating calls.",
	}
}

// opsSchema describes the paint op list shared by the paint tools.
func opsSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "array",
		"description": "Paint operations applied in order",
		"items": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"op": map[string]interface{}{
					"type": "string",
					"enum": []string{"set_pixel", "fill_rect", "draw_rect", "draw_line"},
				},
				"x":      map[string]interface{}{"type": "integer"},
				"y":      map[string]interface{}{"type": "integer"},
				"x2":     map[string]interface{}{"type": "integer", "description": "draw_line end X"},
				"y2":     map[string]interface{}{"type": "integer", "description": "draw_line end Y"},
				"width":  map[string]interface{}{"type": "integer", "description": "fill_rect/draw_rect width"},
				"height": map[string]interface{}{"type": "integer", "description": "fill_rect/draw_rect height"},
				"color": map[string]interface{}{
					"type":        "string",
					"description": "Hex color #RRGGBB or #RRGGBBAA",
				},
				"lineWidth": map[string]interface{}{
					"type":        "integer",
					"description": "Stroke width for draw_rect/draw_line",
					"default":     1,
				},
				"shade": map[string]interface{}{
					"type":        "object",
					"description": "Darken a fill_rect toward one side",
					"properties": map[string]interface{}{
						"direction": map[string]interface{}{
							"type": "string",
							"enum": []string{"top", "bottom", "left", "right"},
						},
						"intensity": map[string]interface{}{
							"type":    "number",
							"minimum": 0,
							"maximum": 1,
						},
					},
				},
			},
			"required": []string{"op", "color"},
		},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Project
		{
			Name:        "project_load",
			Description: "Load a YAML project manifest (textures, bones, cubes with face UVs) and make it the active project. Returns the project summary including the current revision.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the project manifest",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "project_state",
			Description: "Summarize the active project: counts, resolution, outliner nodes, revision and uvUsageId.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},

		// Texture synchronization
		{
			Name:        "texture_preflight",
			Description: "Read the UV layout before painting. Returns the uvUsageId to pass to texture_paint_faces, layout warnings, the texel density and per-texture stats.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": textureRefProperties(map[string]interface{}{
					"includeUsage": map[string]interface{}{
						"type":        "boolean",
						"description": "Include the full per-face usage listing",
						"default":     false,
					},
				}),
			},
		},
		{
			Name:        "texture_paint_faces",
			Description: "Paint ops onto the UV rectangles of specific cube faces. Ops outside the targets are rejected. A stale uvUsageId or overlapping layout triggers one automatic atlas repack and retry.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": textureRefProperties(map[string]interface{}{
					"targets": map[string]interface{}{
						"type":        "array",
						"description": "Faces to paint. Omit face to paint every face of the cube.",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"cubeId":   map[string]interface{}{"type": "string"},
								"cubeName": map[string]interface{}{"type": "string"},
								"face": map[string]interface{}{
									"type": "string",
									"enum": []string{"north", "east", "south", "west", "up", "down"},
								},
							},
						},
					},
					"coordSpace": map[string]interface{}{
						"type":        "string",
						"description": "face: ops use local coordinates of the first target; texture: absolute texture pixels",
						"enum":        []string{"face", "texture"},
						"default":     "face",
					},
					"ops": opsSchema(),
					"mapping": map[string]interface{}{
						"type":        "object",
						"description": "How a face-space patch is laid into each target",
						"properties": map[string]interface{}{
							"mode": map[string]interface{}{
								"type":    "string",
								"enum":    []string{"stretch", "tile"},
								"default": "stretch",
							},
							"anchorX": map[string]interface{}{"type": "integer"},
							"anchorY": map[string]interface{}{"type": "integer"},
							"padding": map[string]interface{}{"type": "integer", "minimum": 0},
						},
					},
					"uvUsageId": map[string]interface{}{
						"type":        "string",
						"description": "uvUsageId from texture_preflight (per texture) or project_state/texture_auto_uv_atlas (whole project)",
					},
					"ifRevision": ifRevisionProperty(),
				}),
				"required": []string{"targets", "ops", "ifRevision"},
			},
		},
		{
			Name:        "texture_auto_uv_atlas",
			Description: "Repack every face UV into a non-overlapping atlas, growing the resolution if needed, and reproject existing pixels. Without apply, returns a preview with a layout diff.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"padding": map[string]interface{}{
						"type":        "integer",
						"description": "Pixels between packed rectangles",
						"minimum":     0,
					},
					"apply": map[string]interface{}{
						"type":        "boolean",
						"description": "Apply the plan (default: preview only)",
						"default":     false,
					},
					"ifRevision": ifRevisionProperty(),
				},
			},
		},

		// Whole-texture editing
		{
			Name:        "texture_paint",
			Description: "Paint ops in absolute texture pixels without face targeting. Guarded against wiping the texture.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": textureRefProperties(map[string]interface{}{
					"ops":        opsSchema(),
					"ifRevision": ifRevisionProperty(),
				}),
				"required": []string{"ops", "ifRevision"},
			},
		},
		{
			Name:        "texture_paint_batch",
			Description: "Run several texture_paint items under a single revision check. Stops at the first failing item.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"items": map[string]interface{}{
						"type":        "array",
						"description": "texture_paint arguments without ifRevision",
						"items": map[string]interface{}{
							"type": "object",
							"properties": textureRefProperties(map[string]interface{}{
								"ops": opsSchema(),
							}),
							"required": []string{"ops"},
						},
					},
					"ifRevision": ifRevisionProperty(),
				},
				"required": []string{"items", "ifRevision"},
			},
		},
		{
			Name:        "texture_export",
			Description: "Return a texture, or a region of it, as base64-encoded PNG. Use this to inspect painted results.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": textureRefProperties(map[string]interface{}{
					"region": map[string]interface{}{
						"type":        "object",
						"description": "Pixel rectangle; x2/y2 exclusive",
						"properties": map[string]interface{}{
							"x1": map[string]interface{}{"type": "integer"},
							"y1": map[string]interface{}{"type": "integer"},
							"x2": map[string]interface{}{"type": "integer"},
							"y2": map[string]interface{}{"type": "integer"},
						},
					},
					"regionName": map[string]interface{}{
						"type": "string",
						"enum": []string{
							"full", "top-left", "top-right", "bottom-left", "bottom-right",
							"top-half", "bottom-half", "left-half", "right-half",
						},
					},
					"scale": map[string]interface{}{
						"type":        "integer",
						"description": "Integer upscale factor (nearest neighbor)",
						"minimum":     1,
						"maximum":     16,
						"default":     1,
					},
				}),
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
