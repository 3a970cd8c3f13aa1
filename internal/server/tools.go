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
		"description": "Absolute path to the source image (PNG, JPEG, GIF, BMP, TIFF or WebP, at most 10MB)",
	}
}

// settingsSchema describes pixelate.Settings. Every field is optional; unset
// fields come from the preset or the defaults.
func settingsSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": "Pixelation settings. Fields override the preset, which overrides the defaults.",
		"properties": map[string]interface{}{
			"pixel_size": map[string]interface{}{
				"type":        "integer",
				"description": "Block edge length in source pixels. Default 8",
				"minimum":     1,
			},
			"shape": map[string]interface{}{
				"type":        "string",
				"enum":        []string{"square", "circle", "hex", "isometric"},
				"description": "Block shape. Only square is rendered; other shapes fall back to square",
			},
			"sampling": map[string]interface{}{
				"type":        "string",
				"enum":        []string{"averaged", "nearest"},
				"description": "averaged: mean color of the block. nearest: top-left pixel of the block",
			},
			"color_effect": map[string]interface{}{
				"type": "string",
				"enum": []string{"normal", "grayscale", "duotone", "posterize"},
			},
			"palette_size": map[string]interface{}{
				"type":        "integer",
				"description": "Approximate color count after reduction (2-256). 256 disables reduction",
				"minimum":     2,
				"maximum":     256,
			},
			"show_grid": map[string]interface{}{
				"type":        "boolean",
				"description": "Draw translucent lines on block boundaries",
			},
			"duotone_color1": map[string]interface{}{
				"type":        "string",
				"description": "Shadow color as #RRGGBB. Required for duotone",
			},
			"duotone_color2": map[string]interface{}{
				"type":        "string",
				"description": "Highlight color as #RRGGBB. Required for duotone",
			},
			"posterize_levels": map[string]interface{}{
				"type":        "integer",
				"description": "Levels per channel (2-8). Required for posterize",
				"minimum":     2,
				"maximum":     8,
			},
		},
	}
}

func presetProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Name or id of a built-in or saved preset",
	}
}

func outputDirProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Optional folder to write <name>-<scale>x.png into. When omitted the PNG is returned as base64",
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "image_load",
			Description: "Load a source image and return its dimensions, format, alpha and file size. The decoded image is cached for later previews.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},

		// Pipeline
		{
			Name:        "pixelate_preview",
			Description: "Pixelate an image at its native resolution and return the result as base64-encoded PNG. No watermark is applied.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":     pathProperty(),
					"preset":   presetProperty(),
					"settings": settingsSchema(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "pixelate_export",
			Description: "Export a pixelated image at an integer scale with nearest-neighbor upscaling and a watermark.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":     pathProperty(),
					"preset":   presetProperty(),
					"settings": settingsSchema(),
					"scale": map[string]interface{}{
						"type":        "integer",
						"description": "Output scale factor. Default 1",
						"minimum":     1,
						"default":     1,
					},
					"output_dir": outputDirProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "pixelate_export_batch",
			Description: "Export a pixelated image at several scales. Each scale is rendered independently; a failing scale is reported without stopping the others.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":     pathProperty(),
					"preset":   presetProperty(),
					"settings": settingsSchema(),
					"scales": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "integer", "minimum": 1},
						"description": "Output scale factors. Default [1, 2, 4]",
					},
					"output_dir": outputDirProperty(),
				},
				"required": []string{"path"},
			},
		},

		// Presets
		{
			Name:        "preset_list",
			Description: "List built-in and saved presets.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"builtin_only": map[string]interface{}{"type": "boolean"},
					"user_only":    map[string]interface{}{"type": "boolean"},
				},
			},
		},
		{
			Name:        "preset_save",
			Description: "Save settings as a named preset. Saving an existing name replaces it.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"name": map[string]interface{}{
						"type":        "string",
						"description": "Preset name. Built-in names are reserved",
					},
					"settings": settingsSchema(),
				},
				"required": []string{"name", "settings"},
			},
		},
		{
			Name:        "preset_delete",
			Description: "Delete a saved preset by name or id.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"name": map[string]interface{}{"type": "string"},
					"id":   map[string]interface{}{"type": "string"},
				},
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
