package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

var pathProperty = map[string]interface{}{
	"type":        "string",
	"description": "Absolute path to the image file",
}

func pointSchema(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": description,
		"properties": map[string]interface{}{
			"x": map[string]interface{}{"type": "number"},
			"y": map[string]interface{}{"type": "number"},
		},
		"required": []string{"x", "y"},
	}
}

func hsvSchema(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": description,
		"properties": map[string]interface{}{
			"h": map[string]interface{}{"type": "integer", "minimum": 0, "maximum": 180},
			"s": map[string]interface{}{"type": "integer", "minimum": 0, "maximum": 255},
			"v": map[string]interface{}{"type": "integer", "minimum": 0, "maximum": 255},
		},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Image Information
		{
			Name:        "lane_image_info",
			Description: "Get the dimensions, format and color model of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
				},
				"required": []string{"path"},
			},
		},

		// Pipeline Stages
		{
			Name:        "lane_edge_detect",
			Description: "Grayscale, blur with a 5x5 kernel and run Canny edge detection. Returns the edge map as base64-encoded PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"threshold_low": map[string]interface{}{
						"type":        "integer",
						"description": "Lower hysteresis threshold. Default 50",
						"default":     50,
					},
					"threshold_high": map[string]interface{}{
						"type":        "integer",
						"description": "Upper hysteresis threshold. Default 150",
						"default":     150,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "lane_detect_segments",
			Description: "Find straight line segments with the probabilistic Hough transform on the image's Canny edges.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"threshold": map[string]interface{}{
						"type":        "integer",
						"description": "Accumulator votes needed to trace a line. Default 100",
						"default":     100,
					},
					"min_line_length": map[string]interface{}{
						"type":        "integer",
						"description": "Minimum horizontal or vertical extent in pixels. Default 50",
						"default":     50,
					},
					"max_line_gap": map[string]interface{}{
						"type":        "integer",
						"description": "Longest gap bridged within one segment. Default 50",
						"default":     50,
					},
					"max_lines": map[string]interface{}{
						"type":        "integer",
						"description": "Stop after this many segments. Default 0 (unlimited)",
						"default":     0,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "lane_detect",
			Description: "Run the full lane pipeline. Returns the binary lane bitmap and the color-isolated image as base64-encoded PNG, and writes lane_bitmap.jpg and isolated_background.jpg when output_dir is given.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"output_dir": map[string]interface{}{
						"type":        "string",
						"description": "Optional directory for the output files",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "lane_isolate_color",
			Description: "Keep only pixels whose HSV value lies in [lower, upper] (hue 0-180, saturation and value 0-255); everything else becomes black.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":  pathProperty,
					"lower": hsvSchema("Inclusive lower bound. Default {h:0, s:0, v:200}"),
					"upper": hsvSchema("Inclusive upper bound. Default {h:180, s:255, v:255}"),
				},
				"required": []string{"path"},
			},
		},

		// Planning
		{
			Name:        "rrt_plan",
			Description: "Grow a Rapidly-exploring Random Tree from start toward goal on a square map with point obstacles. Returns every node in growth order, the final state and the branch ending at the last node.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"start": pointSchema("Start point. Default (0,0)"),
					"goal":  pointSchema("Goal point. Default (10,10)"),
					"obstacles": map[string]interface{}{
						"type":        "array",
						"description": "Point obstacles. Default (5,5), (3,7), (6,9)",
						"items":       pointSchema("Obstacle center"),
					},
					"map_size": map[string]interface{}{
						"type":        "number",
						"description": "Side length of the sampling square. Default 15",
					},
					"seed": map[string]interface{}{
						"type":        "integer",
						"description": "Random seed for reproducible trees. Default 0",
					},
					"step_size": map[string]interface{}{
						"type":        "number",
						"description": "Distance from a new node to its parent. Default 1.0",
					},
					"max_iter": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum number of iterations. Default 1000",
					},
					"clearance": map[string]interface{}{
						"type":        "number",
						"description": "Obstacle collision radius. Default 1.0",
					},
					"goal_radius": map[string]interface{}{
						"type":        "number",
						"description": "Distance to the goal that ends planning. Default 1.0",
					},
					"plot_file": map[string]interface{}{
						"type":        "string",
						"description": "Optional path for a rendered plot of the tree (png, svg, pdf)",
					},
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
