package server

import (
	"encoding/json"
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/Mayankkcode/Lane-detection/internal/config"
	"github.com/Mayankkcode/Lane-detection/internal/detection"
	"github.com/Mayankkcode/Lane-detection/internal/imaging"
	"github.com/Mayankkcode/Lane-detection/internal/lane"
	"github.com/Mayankkcode/Lane-detection/internal/planner"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "lane_detect", "rrt_plan").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// argumentError marks a tool failure caused by malformed arguments.
type argumentError struct {
	err error
}

func (e *argumentError) Error() string { return "invalid arguments: " + e.err.Error() }
func (e *argumentError) Unwrap() error { return e.err }

// decodeArgs unmarshals tool arguments into v. Missing arguments leave v untouched.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return &argumentError{err: err}
	}
	return nil
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Malformed arguments return code -32602; any other tool failure returns -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		var argErr *argumentError
		if errors.As(err, &argErr) {
			return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
		}
		return s.errorResponse(req.ID, codeToolFailed, "Tool execution failed", err.Error())
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
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "lane_image_info":
		return s.handleImageInfo(args)
	case "lane_edge_detect":
		return s.handleEdgeDetect(args)
	case "lane_detect_segments":
		return s.handleDetectSegments(args)
	case "lane_detect":
		return s.handleLaneDetect(args)
	case "lane_isolate_color":
		return s.handleIsolateColor(args)
	case "rrt_plan":
		return s.handleRRTPlan(args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
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
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Image Handlers ===

type pathArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageInfo(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

type edgeDetectArgs struct {
	Path          string `json:"path"`
	ThresholdLow  int    `json:"threshold_low"`
	ThresholdHigh int    `json:"threshold_high"`
}

func (s *Server) handleEdgeDetect(args json.RawMessage) (interface{}, error) {
	var a edgeDetectArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.ThresholdLow == 0 {
		a.ThresholdLow = s.cfg.Lane.CannyLow
	}
	if a.ThresholdHigh == 0 {
		a.ThresholdHigh = s.cfg.Lane.CannyHigh
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.EdgeDetect(img, a.ThresholdLow, a.ThresholdHigh)
}

type detectSegmentsArgs struct {
	Path          string `json:"path"`
	Threshold     *int   `json:"threshold"`
	MinLineLength *int   `json:"min_line_length"`
	MaxLineGap    *int   `json:"max_line_gap"`
	MaxLines      *int   `json:"max_lines"`
}

type detectSegmentsResult struct {
	Width    int                 `json:"width"`
	Height   int                 `json:"height"`
	Count    int                 `json:"count"`
	Segments []detection.Segment `json:"segments"`
}

func (s *Server) handleDetectSegments(args json.RawMessage) (interface{}, error) {
	var a detectSegmentsArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	p := s.cfg.Lane.Hough
	if a.Threshold != nil {
		p.Threshold = *a.Threshold
	}
	if a.MinLineLength != nil {
		p.MinLineLength = *a.MinLineLength
	}
	if a.MaxLineGap != nil {
		p.MaxLineGap = *a.MaxLineGap
	}
	if a.MaxLines != nil {
		p.MaxLines = *a.MaxLines
	}
	if err := p.Validate(); err != nil {
		return nil, &argumentError{err: err}
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	gray, err := imaging.Preprocess(img, s.cfg.Lane.BlurKernel)
	if err != nil {
		return nil, err
	}
	edges := imaging.DetectEdges(gray, s.cfg.Lane.CannyLow, s.cfg.Lane.CannyHigh)
	segments, err := detection.DetectSegments(edges, p)
	if err != nil {
		return nil, err
	}

	bounds := edges.Bounds()
	return &detectSegmentsResult{
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		Count:    len(segments),
		Segments: segments,
	}, nil
}

type laneDetectArgs struct {
	Path      string `json:"path"`
	OutputDir string `json:"output_dir"`
}

type laneDetectResult struct {
	Width          int                 `json:"width"`
	Height         int                 `json:"height"`
	EdgePixels     int                 `json:"edge_pixels"`
	LanePixels     int                 `json:"lane_pixels"`
	SegmentCount   int                 `json:"segment_count"`
	Segments       []detection.Segment `json:"segments"`
	BitmapBase64   string              `json:"bitmap_base64"`
	IsolatedBase64 string              `json:"isolated_base64"`
	MimeType       string              `json:"mime_type"`
	Files          *lane.Outputs       `json:"files,omitempty"`
}

func (s *Server) handleLaneDetect(args json.RawMessage) (interface{}, error) {
	var a laneDetectArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	res, err := lane.Process(s.cache, a.Path, s.cfg.Lane)
	if err != nil {
		return nil, err
	}

	bitmap, err := imaging.EncodePNGBase64(res.Bitmap)
	if err != nil {
		return nil, fmt.Errorf("failed to encode lane bitmap: %w", err)
	}
	isolated, err := imaging.EncodePNGBase64(res.Isolated)
	if err != nil {
		return nil, fmt.Errorf("failed to encode isolated image: %w", err)
	}

	bounds := res.Bitmap.Bounds()
	out := &laneDetectResult{
		Width:          bounds.Dx(),
		Height:         bounds.Dy(),
		EdgePixels:     imaging.CountNonZero(res.Edges),
		LanePixels:     imaging.CountNonZero(res.Bitmap),
		SegmentCount:   len(res.Segments),
		Segments:       res.Segments,
		BitmapBase64:   bitmap,
		IsolatedBase64: isolated,
		MimeType:       "image/png",
	}

	if a.OutputDir != "" {
		files, err := res.Save(a.OutputDir, s.cfg.Lane)
		if err != nil {
			return nil, err
		}
		out.Files = files
	}
	return out, nil
}

type isolateColorArgs struct {
	Path  string            `json:"path"`
	Lower *imaging.HSVColor `json:"lower"`
	Upper *imaging.HSVColor `json:"upper"`
}

type isolateColorResult struct {
	Width       int              `json:"width"`
	Height      int              `json:"height"`
	Lower       imaging.HSVColor `json:"lower"`
	Upper       imaging.HSVColor `json:"upper"`
	KeptPixels  int              `json:"kept_pixels"`
	ImageBase64 string           `json:"image_base64"`
	MimeType    string           `json:"mime_type"`
}

func (s *Server) handleIsolateColor(args json.RawMessage) (interface{}, error) {
	var a isolateColorArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	lower, upper := s.cfg.Lane.LaneLower, s.cfg.Lane.LaneUpper
	if a.Lower != nil {
		lower = *a.Lower
	}
	if a.Upper != nil {
		upper = *a.Upper
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	mask := imaging.InRange(img, lower, upper)
	isolated := imaging.ApplyMask(img, mask)

	encoded, err := imaging.EncodePNGBase64(isolated)
	if err != nil {
		return nil, fmt.Errorf("failed to encode isolated image: %w", err)
	}

	bounds := isolated.Bounds()
	return &isolateColorResult{
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
		Lower:       lower,
		Upper:       upper,
		KeptPixels:  imaging.CountNonZero(mask),
		ImageBase64: encoded,
		MimeType:    "image/png",
	}, nil
}

// === Planner Handlers ===

type rrtPlanArgs struct {
	Start      *config.Point  `json:"start"`
	Goal       *config.Point  `json:"goal"`
	Obstacles  []config.Point `json:"obstacles"`
	MapSize    *float64       `json:"map_size"`
	Seed       *uint64        `json:"seed"`
	StepSize   *float64       `json:"step_size"`
	MaxIter    *int           `json:"max_iter"`
	Clearance  *float64       `json:"clearance"`
	GoalRadius *float64       `json:"goal_radius"`
	PlotFile   string         `json:"plot_file"`
}

type rrtPlanResult struct {
	State      string         `json:"state"`
	Iterations int            `json:"iterations"`
	NodeCount  int            `json:"node_count"`
	Nodes      []config.Point `json:"nodes"`
	Parents    []int          `json:"parents"`
	Path       []config.Point `json:"path"`
	PlotFile   string         `json:"plot_file,omitempty"`
}

func toPoints(vs []r2.Vec) []config.Point {
	pts := make([]config.Point, len(vs))
	for i, v := range vs {
		pts[i] = config.Point{X: v.X, Y: v.Y}
	}
	return pts
}

func (s *Server) handleRRTPlan(args json.RawMessage) (interface{}, error) {
	var a rrtPlanArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	// Start from the configured scenario and apply each supplied override.
	scenario := config.Config{Lane: s.cfg.Lane, Planner: s.cfg.Planner}
	pc := &scenario.Planner
	if a.Start != nil {
		pc.Start = *a.Start
	}
	if a.Goal != nil {
		pc.Goal = *a.Goal
	}
	if a.Obstacles != nil {
		pc.Obstacles = a.Obstacles
	}
	if a.MapSize != nil {
		pc.MapSize = *a.MapSize
	}
	if a.Seed != nil {
		pc.Seed = *a.Seed
	}
	if a.StepSize != nil {
		pc.StepSize = *a.StepSize
	}
	if a.MaxIter != nil {
		pc.MaxIter = *a.MaxIter
	}
	if a.Clearance != nil {
		pc.Clearance = *a.Clearance
	}
	if a.GoalRadius != nil {
		pc.GoalRadius = *a.GoalRadius
	}
	if err := scenario.Validate(); err != nil {
		return nil, &argumentError{err: err}
	}

	tree := pc.New()
	tree.Plan()
	res := tree.Result()

	out := &rrtPlanResult{
		State:      res.StateName,
		Iterations: res.Iterations,
		NodeCount:  len(res.Nodes),
		Nodes:      toPoints(res.Nodes),
		Parents:    res.Parents,
		Path:       toPoints(res.Path),
	}
	if a.PlotFile != "" {
		if err := planner.SavePlot(tree, a.PlotFile, planner.PlotOptions{Edges: true, Path: true}); err != nil {
			return nil, err
		}
		out.PlotFile = a.PlotFile
	}
	return out, nil
}
