// Package server implements an MCP (Model Context Protocol) server exposing the
// lane pipeline and the RRT planner as tools.
//
// # Protocol
//
// The server speaks JSON-RPC 2.0 over stdio, one request per line:
//   - initialize: Protocol handshake
//   - notifications/initialized: Acknowledged without a response
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Image information and pipeline stages:
//   - lane_image_info: Dimensions, format and color model
//   - lane_edge_detect: Canny edge map as base64 PNG
//   - lane_detect_segments: Probabilistic Hough segments
//   - lane_detect: Full pipeline, optionally writing the output files
//   - lane_isolate_color: HSV range isolation
//
// Planning:
//   - rrt_plan: Grow an RRT and return its nodes, state and path
//
// Tool defaults come from the config.Config passed to New, so a server started
// with a config file answers with that file's thresholds and scenario.
//
// # Image Caching
//
// Decoded images are cached by path for the lifetime of the server. Failed
// loads are not cached.
//
// # Error Handling
//
// Errors are JSON-RPC error responses:
//   - -32601: unknown method
//   - -32602: malformed request or tool arguments
//   - -32000: tool execution failure, such as an image that cannot be loaded
//
// The error's data field carries the Go error string.
package server
