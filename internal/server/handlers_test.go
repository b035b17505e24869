package server

import (
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// createTestImageFile writes a solid-color PNG and returns its path.
func createTestImageFile(t *testing.T, width, height int, c color.Color) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return writeTestPNG(t, img)
}

// createRoadImageFile writes a black image with a white vertical stripe over
// columns x1..x2 and returns its path.
func createRoadImageFile(t *testing.T, width, height, x1, x2 int) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := color.RGBA{0, 0, 0, 255}
			if x >= x1 && x <= x2 {
				c = color.RGBA{255, 255, 255, 255}
			}
			img.Set(x, y, c)
		}
	}
	return writeTestPNG(t, img)
}

func writeTestPNG(t *testing.T, img image.Image) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "handler-test.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

// callTool sends a tools/call request and returns the raw response.
func callTool(t *testing.T, s *Server, name string, args interface{}) *MCPResponse {
	t.Helper()

	params := map[string]interface{}{"name": name}
	if args != nil {
		params["arguments"] = args
	}
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		t.Fatalf("failed to marshal params: %v", err)
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

// decodeToolResult unmarshals the JSON text content of a successful response into v.
func decodeToolResult(t *testing.T, resp *MCPResponse, v interface{}) {
	t.Helper()

	if resp.Error != nil {
		t.Fatalf("Unexpected error: %+v", resp.Error)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("Result: got %T", resp.Result)
	}
	content, ok := result["content"].([]map[string]interface{})
	if !ok || len(content) != 1 {
		t.Fatalf("content: got %#v", result["content"])
	}
	text, ok := content[0]["text"].(string)
	if !ok {
		t.Fatalf("content text: got %T", content[0]["text"])
	}
	if err := json.Unmarshal([]byte(text), v); err != nil {
		t.Fatalf("failed to decode tool result: %v\n%s", err, text)
	}
}

func expectErrorCode(t *testing.T, resp *MCPResponse, code int) {
	t.Helper()
	if resp.Error == nil {
		t.Fatalf("expected error code %d, got success", code)
	}
	if resp.Error.Code != code {
		t.Errorf("error code: got %d, want %d (%v)", resp.Error.Code, code, resp.Error.Data)
	}
}

func TestHandleToolsCall_ImageInfo(t *testing.T) {
	s := New(nil, "")
	imgPath := createTestImageFile(t, 100, 80, color.RGBA{255, 0, 0, 255})

	var info struct {
		Width  int    `json:"width"`
		Height int    `json:"height"`
		Format string `json:"format"`
	}
	decodeToolResult(t, callTool(t, s, "lane_image_info", map[string]interface{}{"path": imgPath}), &info)

	if info.Width != 100 || info.Height != 80 {
		t.Errorf("dimensions: got %dx%d, want 100x80", info.Width, info.Height)
	}
	if info.Format != "png" {
		t.Errorf("format: got %s, want png", info.Format)
	}
}

func TestHandleToolsCall_NonExistentFile(t *testing.T) {
	s := New(nil, "")
	for _, name := range []string{"lane_image_info", "lane_edge_detect", "lane_detect_segments", "lane_detect", "lane_isolate_color"} {
		t.Run(name, func(t *testing.T) {
			resp := callTool(t, s, name, map[string]interface{}{"path": "/nonexistent/road.png"})
			expectErrorCode(t, resp, codeToolFailed)
		})
	}
}

func TestHandleToolsCall_InvalidTool(t *testing.T) {
	resp := callTool(t, New(nil, ""), "image_crop", map[string]interface{}{})
	expectErrorCode(t, resp, codeToolFailed)
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := New(nil, "")
	resp := s.handleRequest(&MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  json.RawMessage(`"not an object"`),
	})
	expectErrorCode(t, resp, codeInvalidParams)
}

func TestHandleToolsCall_MalformedArguments(t *testing.T) {
	resp := callTool(t, New(nil, ""), "lane_edge_detect", map[string]interface{}{"path": 42})
	expectErrorCode(t, resp, codeInvalidParams)
}

func TestHandleToolsCall_EdgeDetect(t *testing.T) {
	s := New(nil, "")
	imgPath := createRoadImageFile(t, 80, 60, 30, 50)

	var res struct {
		Width       int    `json:"width"`
		Height      int    `json:"height"`
		EdgePixels  int    `json:"edge_pixels"`
		ImageBase64 string `json:"image_base64"`
		MimeType    string `json:"mime_type"`
	}
	decodeToolResult(t, callTool(t, s, "lane_edge_detect", map[string]interface{}{"path": imgPath}), &res)

	if res.Width != 80 || res.Height != 60 {
		t.Errorf("dimensions: got %dx%d, want 80x60", res.Width, res.Height)
	}
	if res.EdgePixels == 0 {
		t.Error("expected edges along the stripe borders")
	}
	if res.ImageBase64 == "" || res.MimeType != "image/png" {
		t.Errorf("image: got %d bytes of %s", len(res.ImageBase64), res.MimeType)
	}
}

func TestHandleToolsCall_EdgeDetect_Uniform(t *testing.T) {
	s := New(nil, "")
	imgPath := createTestImageFile(t, 40, 40, color.RGBA{128, 128, 128, 255})

	var res struct {
		EdgePixels int `json:"edge_pixels"`
	}
	decodeToolResult(t, callTool(t, s, "lane_edge_detect", map[string]interface{}{
		"path":           imgPath,
		"threshold_low":  10,
		"threshold_high": 20,
	}), &res)

	if res.EdgePixels != 0 {
		t.Errorf("uniform image: got %d edge pixels, want 0", res.EdgePixels)
	}
}

func TestHandleToolsCall_DetectSegments(t *testing.T) {
	s := New(nil, "")
	imgPath := createRoadImageFile(t, 200, 200, 90, 110)

	var res struct {
		Count    int `json:"count"`
		Segments []struct {
			Start struct{ X, Y int } `json:"start"`
			End   struct{ X, Y int } `json:"end"`
		} `json:"segments"`
	}
	decodeToolResult(t, callTool(t, s, "lane_detect_segments", map[string]interface{}{"path": imgPath}), &res)

	if res.Count != 2 || len(res.Segments) != 2 {
		t.Fatalf("got %d segments, want 2", res.Count)
	}
	for _, seg := range res.Segments {
		if seg.Start.X != seg.End.X {
			t.Errorf("segment %+v should be vertical", seg)
		}
	}
}

func TestHandleToolsCall_DetectSegments_MaxLines(t *testing.T) {
	s := New(nil, "")
	imgPath := createRoadImageFile(t, 200, 200, 90, 110)

	var res struct {
		Count int `json:"count"`
	}
	decodeToolResult(t, callTool(t, s, "lane_detect_segments", map[string]interface{}{
		"path":      imgPath,
		"max_lines": 1,
	}), &res)

	if res.Count != 1 {
		t.Errorf("got %d segments, want 1", res.Count)
	}
}

func TestHandleToolsCall_DetectSegments_InvalidOverride(t *testing.T) {
	s := New(nil, "")
	imgPath := createRoadImageFile(t, 50, 50, 20, 30)

	resp := callTool(t, s, "lane_detect_segments", map[string]interface{}{
		"path":      imgPath,
		"threshold": 0,
	})
	expectErrorCode(t, resp, codeInvalidParams)
}

func TestHandleToolsCall_LaneDetect(t *testing.T) {
	s := New(nil, "")
	imgPath := createRoadImageFile(t, 200, 200, 90, 110)

	var res struct {
		Width          int    `json:"width"`
		Height         int    `json:"height"`
		SegmentCount   int    `json:"segment_count"`
		LanePixels     int    `json:"lane_pixels"`
		BitmapBase64   string `json:"bitmap_base64"`
		IsolatedBase64 string `json:"isolated_base64"`
		Files          *struct {
			BitmapPath string `json:"bitmap_path"`
		} `json:"files"`
	}
	decodeToolResult(t, callTool(t, s, "lane_detect", map[string]interface{}{"path": imgPath}), &res)

	if res.Width != 200 || res.Height != 200 {
		t.Errorf("dimensions: got %dx%d, want 200x200", res.Width, res.Height)
	}
	if res.SegmentCount != 2 {
		t.Errorf("segment_count: got %d, want 2", res.SegmentCount)
	}
	if res.LanePixels == 0 {
		t.Error("expected lane pixels in the bitmap")
	}
	if res.BitmapBase64 == "" || res.IsolatedBase64 == "" {
		t.Error("expected both encoded images")
	}
	if res.Files != nil {
		t.Errorf("no files should be written without output_dir, got %+v", res.Files)
	}
}

func TestHandleToolsCall_LaneDetect_WritesFiles(t *testing.T) {
	s := New(nil, "")
	imgPath := createRoadImageFile(t, 120, 120, 50, 60)
	outDir := filepath.Join(t.TempDir(), "out")

	var res struct {
		Files struct {
			BitmapPath   string `json:"bitmap_path"`
			IsolatedPath string `json:"isolated_path"`
		} `json:"files"`
	}
	decodeToolResult(t, callTool(t, s, "lane_detect", map[string]interface{}{
		"path":       imgPath,
		"output_dir": outDir,
	}), &res)

	if got, want := res.Files.BitmapPath, filepath.Join(outDir, "lane_bitmap.jpg"); got != want {
		t.Errorf("bitmap_path: got %s, want %s", got, want)
	}
	if got, want := res.Files.IsolatedPath, filepath.Join(outDir, "isolated_background.jpg"); got != want {
		t.Errorf("isolated_path: got %s, want %s", got, want)
	}
	for _, p := range []string{res.Files.BitmapPath, res.Files.IsolatedPath} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("expected %s to exist: %v", p, err)
		}
	}
}

func TestHandleToolsCall_IsolateColor(t *testing.T) {
	s := New(nil, "")
	imgPath := createRoadImageFile(t, 40, 20, 10, 19)

	var res struct {
		KeptPixels int `json:"kept_pixels"`
		Lower      struct {
			V int `json:"v"`
		} `json:"lower"`
	}
	decodeToolResult(t, callTool(t, s, "lane_isolate_color", map[string]interface{}{"path": imgPath}), &res)

	if want := 10 * 20; res.KeptPixels != want {
		t.Errorf("kept_pixels: got %d, want %d", res.KeptPixels, want)
	}
	if res.Lower.V != 200 {
		t.Errorf("default lower V: got %d, want 200", res.Lower.V)
	}
}

func TestHandleToolsCall_IsolateColor_CustomRange(t *testing.T) {
	s := New(nil, "")
	imgPath := createTestImageFile(t, 10, 10, color.RGBA{255, 0, 0, 255})

	// Pure red is H=0, S=255, V=255.
	var res struct {
		KeptPixels int `json:"kept_pixels"`
	}
	decodeToolResult(t, callTool(t, s, "lane_isolate_color", map[string]interface{}{
		"path":  imgPath,
		"lower": map[string]int{"h": 0, "s": 200, "v": 200},
		"upper": map[string]int{"h": 10, "s": 255, "v": 255},
	}), &res)
	if res.KeptPixels != 100 {
		t.Errorf("red in red range: got %d, want 100", res.KeptPixels)
	}

	decodeToolResult(t, callTool(t, s, "lane_isolate_color", map[string]interface{}{
		"path":  imgPath,
		"lower": map[string]int{"h": 100, "s": 0, "v": 0},
		"upper": map[string]int{"h": 140, "s": 255, "v": 255},
	}), &res)
	if res.KeptPixels != 0 {
		t.Errorf("red in blue range: got %d, want 0", res.KeptPixels)
	}
}

type planResult struct {
	State      string `json:"state"`
	Iterations int    `json:"iterations"`
	NodeCount  int    `json:"node_count"`
	Nodes      []struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	} `json:"nodes"`
	Parents  []int  `json:"parents"`
	PlotFile string `json:"plot_file"`
}

func TestHandleToolsCall_RRTPlan_DefaultScenario(t *testing.T) {
	s := New(nil, "")

	var res planResult
	decodeToolResult(t, callTool(t, s, "rrt_plan", nil), &res)

	if res.State != "goal_reached" && res.State != "exhausted" {
		t.Errorf("state: got %s", res.State)
	}
	if res.NodeCount != len(res.Nodes) || res.NodeCount > 1001 {
		t.Errorf("node_count: got %d with %d nodes", res.NodeCount, len(res.Nodes))
	}
	if res.Nodes[0].X != 0 || res.Nodes[0].Y != 0 {
		t.Errorf("first node: got %+v, want origin", res.Nodes[0])
	}
	if len(res.Parents) != len(res.Nodes) {
		t.Errorf("parents: got %d, want %d", len(res.Parents), len(res.Nodes))
	}
}

func TestHandleToolsCall_RRTPlan_Deterministic(t *testing.T) {
	s := New(nil, "")
	args := map[string]interface{}{"seed": 17, "max_iter": 200}

	var a, b planResult
	decodeToolResult(t, callTool(t, s, "rrt_plan", args), &a)
	decodeToolResult(t, callTool(t, s, "rrt_plan", args), &b)

	if len(a.Nodes) != len(b.Nodes) {
		t.Fatalf("same seed produced %d and %d nodes", len(a.Nodes), len(b.Nodes))
	}
	for i := range a.Nodes {
		if a.Nodes[i] != b.Nodes[i] {
			t.Fatalf("node %d differs: %+v vs %+v", i, a.Nodes[i], b.Nodes[i])
		}
	}
	if a.Iterations > 200 {
		t.Errorf("iterations: got %d, want <= 200", a.Iterations)
	}
}

func TestHandleToolsCall_RRTPlan_Overrides(t *testing.T) {
	s := New(nil, "")

	var res planResult
	decodeToolResult(t, callTool(t, s, "rrt_plan", map[string]interface{}{
		"start":       map[string]float64{"x": 2, "y": 2},
		"goal":        map[string]float64{"x": 2.5, "y": 2},
		"obstacles":   []interface{}{},
		"map_size":    5,
		"max_iter":    10,
		"goal_radius": 2,
	}), &res)

	if res.Nodes[0].X != 2 || res.Nodes[0].Y != 2 {
		t.Errorf("first node: got %+v, want (2,2)", res.Nodes[0])
	}
	if res.State != "goal_reached" {
		t.Errorf("the first step always lands within the goal radius; got state %s", res.State)
	}
}

func TestHandleToolsCall_RRTPlan_InvalidScenario(t *testing.T) {
	s := New(nil, "")
	resp := callTool(t, s, "rrt_plan", map[string]interface{}{"map_size": -1})
	expectErrorCode(t, resp, codeInvalidParams)

	resp = callTool(t, s, "rrt_plan", map[string]interface{}{"step_size": 0})
	expectErrorCode(t, resp, codeInvalidParams)
}

func TestHandleToolsCall_RRTPlan_PlotFile(t *testing.T) {
	s := New(nil, "")
	plotFile := filepath.Join(t.TempDir(), "tree.png")

	var res planResult
	decodeToolResult(t, callTool(t, s, "rrt_plan", map[string]interface{}{
		"seed":      3,
		"plot_file": plotFile,
	}), &res)

	if res.PlotFile != plotFile {
		t.Errorf("plot_file: got %s, want %s", res.PlotFile, plotFile)
	}
	if info, err := os.Stat(plotFile); err != nil || info.Size() == 0 {
		t.Errorf("expected a non-empty plot at %s: %v", plotFile, err)
	}
}

func TestExecuteTool_AllTools(t *testing.T) {
	s := New(nil, "")
	imgPath := createRoadImageFile(t, 60, 60, 25, 35)

	for _, tool := range GetToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			args := json.RawMessage(`{"path":"` + imgPath + `","max_iter":50}`)
			if _, err := s.executeTool(tool.Name, args); err != nil {
				t.Errorf("%s: %v", tool.Name, err)
			}
		})
	}
}

func TestExecuteTool_UnknownTool(t *testing.T) {
	if _, err := New(nil, "").executeTool("does_not_exist", nil); err == nil {
		t.Error("expected error for unknown tool")
	}
}
