package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func imageProperties() map[string]interface{} {
	return map[string]interface{}{
		"path": map[string]interface{}{
			"type":        "string",
			"description": "Absolute path to the image file",
		},
		"source": map[string]interface{}{
			"type":        "string",
			"description": "Source reference (URL or path) recorded as provenance. Defaults to path",
		},
		"name": map[string]interface{}{
			"type":        "string",
			"description": "Optional identity hint: the entity's display name",
		},
		"number": map[string]interface{}{
			"type":        "integer",
			"description": "Optional identity hint: the entity's number (1-99)",
		},
		"region": map[string]interface{}{
			"type":        "object",
			"description": "Optional crop applied before processing: either a named region (top-left, top-right, bottom-left, bottom-right, top-half, bottom-half, left-half, right-half, center) or x1, y1, x2, y2 in pixels",
			"properties": map[string]interface{}{
				"name": map[string]interface{}{"type": "string"},
				"x1":   map[string]interface{}{"type": "integer"},
				"y1":   map[string]interface{}{"type": "integer"},
				"x2":   map[string]interface{}{"type": "integer"},
				"y2":   map[string]interface{}{"type": "integer"},
			},
		},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	previewProps := imageProperties()
	previewProps["max_side"] = map[string]interface{}{
		"type":        "integer",
		"description": "Longest side of each preview in pixels. Default 400",
		"default":     400,
	}

	extractProps := imageProperties()
	extractProps["merge"] = map[string]interface{}{
		"type":        "boolean",
		"description": "Merge the result into the record store. Default true",
		"default":     true,
	}

	return []Tool{
		// Images
		{
			Name:        "roster_image_info",
			Description: "Read an image header and report its dimensions, format, size and the identity hint carried by its source reference.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": imageProperties(),
				"required":   []string{"path"},
			},
		},
		{
			Name:        "roster_extract_image",
			Description: "Run every image variant through every recognition configuration, keep the best-scoring attempt's validated fields and merge them into the entity's record. Falls back to the identity hint when nothing is recognized.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": extractProps,
				"required":   []string{"path"},
			},
		},
		{
			Name:        "roster_preview_variants",
			Description: "Render every preprocessing variant of an image as a base64 PNG preview, in the order recognition tries them. No recognition is run.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": previewProps,
				"required":   []string{"path"},
			},
		},

		// Text and harvested records
		{
			Name:        "roster_extract_text",
			Description: "Extract and validate fields from already-recognized text and report its quality score. Nothing is merged.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"text": map[string]interface{}{
						"type":        "string",
						"description": "Recognized text to extract fields from",
					},
					"source": map[string]interface{}{
						"type":        "string",
						"description": "Optional source reference recorded as provenance",
					},
				},
				"required": []string{"text"},
			},
		},
		{
			Name:        "roster_ingest_record",
			Description: "Validate a harvested field map (canonical or roster-page keys such as nom_joueur, poste, taille) and merge it into the entity's record. Out-of-domain values are dropped and listed.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"source": map[string]interface{}{
						"type":        "string",
						"description": "Reference the record was harvested from",
					},
					"fields": map[string]interface{}{
						"type":                 "object",
						"description":          "Field name to raw value",
						"additionalProperties": map[string]interface{}{"type": "string"},
					},
				},
				"required": []string{"source", "fields"},
			},
		},

		// Fused records
		{
			Name:        "roster_get_record",
			Description: "Get the fused record for an identity key (e.g. kevin-tillie_12).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"key": map[string]interface{}{
						"type":        "string",
						"description": "Identity key; display forms such as \"Kevin Tillie_12\" are normalized",
					},
				},
				"required": []string{"key"},
			},
		},
		{
			Name:        "roster_list_records",
			Description: "List fused records sorted by identity key.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"min_completeness": map[string]interface{}{
						"type":        "number",
						"description": "Only records at or above this completeness (0-100). Default 0",
						"default":     0,
					},
					"incomplete_only": map[string]interface{}{
						"type":        "boolean",
						"description": "Only records still below the complete-enough threshold",
						"default":     false,
					},
				},
			},
		},

		// Runs
		{
			Name:        "roster_run_batch",
			Description: "Process a batch of images and harvested records in parallel and return a summary with failures, warnings, field fill rates and winning methods. A failing item never aborts the batch.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"images": map[string]interface{}{
						"type": "array",
						"items": map[string]interface{}{
							"type":       "object",
							"properties": imageProperties(),
							"required":   []string{"path"},
						},
						"description": "Images to process",
					},
					"records": map[string]interface{}{
						"type": "array",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"source": map[string]interface{}{"type": "string"},
								"fields": map[string]interface{}{
									"type":                 "object",
									"additionalProperties": map[string]interface{}{"type": "string"},
								},
							},
							"required": []string{"source", "fields"},
						},
						"description": "Harvested field maps to merge",
					},
				},
			},
		},
		{
			Name:        "roster_status",
			Description: "Report recognizer availability, the variant and configuration menus, the complete-enough threshold and record counts.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
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
