package server

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ironsheep/pixelate-mcp/internal/export"
	"github.com/ironsheep/pixelate-mcp/internal/imaging"
	"github.com/ironsheep/pixelate-mcp/internal/logging"
	"github.com/ironsheep/pixelate-mcp/internal/presets"
	"github.com/ironsheep/pixelate-mcp/internal/preview"
)

// Server handles MCP protocol communication
type Server struct {
	codec    imaging.Codec
	cache    *imaging.SourceCache
	exporter *export.Exporter
	presets  presets.Repository
	previews *preview.Sequencer
	logger   *slog.Logger
	version  string
}

// Config holds the collaborators of a Server. Zero fields get defaults.
type Config struct {
	// Presets stores user presets. Defaults to an in-memory store.
	Presets presets.Repository
	// Logger receives diagnostics. Defaults to a discarding logger.
	Logger *slog.Logger
	// Version is reported in the initialize handshake.
	Version string
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// New creates a new MCP server instance
func New(cfg Config) (*Server, error) {
	codec := imaging.NewPNGCodec()
	exporter, err := export.NewExporter(codec)
	if err != nil {
		return nil, fmt.Errorf("failed to create exporter: %w", err)
	}

	if cfg.Presets == nil {
		cfg.Presets = presets.NewMemoryStore()
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Discard()
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}

	return &Server{
		codec:    codec,
		cache:    imaging.NewSourceCache(codec),
		exporter: exporter,
		presets:  cfg.Presets,
		previews: &preview.Sequencer{},
		logger:   cfg.Logger,
		version:  cfg.Version,
	}, nil
}

// Run starts the MCP server, reading from stdin and writing to stdout
func (s *Server) Run() error {
	return s.Serve(os.Stdin, os.Stdout)
}

// Serve processes newline-delimited requests from r until EOF, writing
// responses to w. Requests are handled one at a time.
func (s *Server) Serve(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	// Sized for base64 payloads in both directions
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 16*1024*1024)

	encoder := json.NewEncoder(w)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.logger.Error("failed to parse request", "error", err)
			if err := encoder.Encode(s.errorResponse(nil, -32700, "Parse error", err.Error())); err != nil {
				s.logger.Error("failed to encode response", "error", err)
			}
			continue
		}

		resp := s.handleRequest(&req)
		if resp != nil {
			if err := encoder.Encode(resp); err != nil {
				s.logger.Error("failed to encode response", "method", req.Method, "error", err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	return nil
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(req *MCPRequest) *MCPResponse {
	s.logger.Debug("request", "method", req.Method, "id", req.ID)

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &MCPError{
				Code:    -32601,
				Message: fmt.Sprintf("Method not found: %s", req.Method),
			},
		}
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    "pixelate-mcp",
				"version": s.version,
			},
		},
	}
}
