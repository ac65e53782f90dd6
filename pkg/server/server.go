package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/richard-senior/footy/internal/logger"
	"github.com/richard-senior/footy/pkg/analyzer"
	"github.com/richard-senior/footy/pkg/protocol"
	"github.com/richard-senior/footy/pkg/tools"
	"github.com/richard-senior/footy/pkg/transport"
)

// Name and Version are reported to clients on initialize
const (
	Name    = "footy"
	Version = "1.0.0"
)

// toolPrefix is added by some clients to tool names
const toolPrefix = "mcp___"

// Server is an MCP server exposing the football tools
type Server struct {
	mu        sync.Mutex
	transport transport.Transport
	handlers  map[string]HandlerFunc
	tools     []protocol.Tool
}

// HandlerFunc is a function that handles an MCP request
type HandlerFunc func(params any) (any, error)

// New creates a server on t with the football tools bound to a
func New(t transport.Transport, a *analyzer.Analyzer) *Server {
	s := &Server{
		transport: t,
		handlers:  make(map[string]HandlerFunc),
	}
	s.handlers[string(protocol.MethodInitialize)] = s.handleInitialize
	s.handlers[string(protocol.MethodInitialized)] = s.handleInitialized
	s.handlers[string(protocol.MethodToolsList)] = s.handleToolsList
	s.handlers[string(protocol.MethodToolsCall)] = s.handleToolsCall
	s.handlers[string(protocol.MethodPing)] = s.handlePing

	if a != nil {
		s.RegisterTool(tools.FootballAnalyzeTool(), tools.NewFootballAnalyzeHandler(a))
		s.RegisterTool(tools.LeagueStatsTool(), tools.NewLeagueStatsHandler(a))
	}
	return s
}

// RegisterTool registers a tool with the server
func (s *Server) RegisterTool(tool protocol.Tool, handler HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tools = append(s.tools, tool)
	s.handlers[tool.Name] = handler
	logger.Info("Registered tool:", tool.Name)
}

// GetTools returns the list of registered tools
func (s *Server) GetTools() []protocol.Tool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]protocol.Tool(nil), s.tools...)
}

// Start processes requests until the input closes or the process is signalled
func (s *Server) Start() error {
	logger.Info("Starting MCP server")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.ProcessRequests()
	}()

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		logger.Info("Received signal:", sig.String())
		return nil
	}
}

// ProcessRequests reads and answers requests until EOF, which is a clean stop
func (s *Server) ProcessRequests() error {
	for {
		req, err := s.transport.ReadRequest()
		if errors.Is(err, io.EOF) {
			return nil
		}
		var parseErr *transport.ParseError
		if errors.As(err, &parseErr) {
			if err := s.transport.WriteResponse(protocol.NewJsonRpcErrorResponse(protocol.ErrParse, parseErr.Error(), nil, nil)); err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}

		// nil means no response is required
		resp := s.handleRequest(req)
		if resp == nil {
			continue
		}
		if err := s.transport.WriteResponse(resp); err != nil {
			return err
		}
	}
}

func (s *Server) lookup(name string) HandlerFunc {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h, ok := s.handlers[name]; ok {
		return h
	}
	return s.handlers[strings.TrimPrefix(name, toolPrefix)]
}

// hasTool keeps tools/call from reaching protocol handlers
func (s *Server) hasTool(name string) bool {
	name = strings.TrimPrefix(name, toolPrefix)
	for _, t := range s.GetTools() {
		if t.Name == name {
			return true
		}
	}
	return false
}

// handleRequest dispatches one request and builds its response
func (s *Server) handleRequest(req *protocol.JsonRpcRequest) *protocol.JsonRpcResponse {
	logger.Info(">> ", req.Method)

	if strings.HasPrefix(req.Method, "notifications/") {
		logger.Debug("Received notification:", req.Method)
		return nil
	}

	handler := s.lookup(req.Method)
	if handler == nil {
		if req.IsNotification() {
			return nil
		}
		return protocol.NewJsonRpcErrorResponse(protocol.ErrMethodNotFound, fmt.Sprintf("Method not found: %s", req.Method), nil, req.ID)
	}

	result, err := handler(req.Params)
	if err != nil {
		return protocol.NewJsonRpcErrorResponse(protocol.ErrToolExecutionFailed, err.Error(), nil, req.ID)
	}
	if result == nil || req.IsNotification() {
		return nil
	}

	resp, err := protocol.NewJsonRpcResponse(result, req.ID)
	if err != nil {
		return protocol.NewJsonRpcErrorResponse(protocol.ErrInternal, "Failed to marshal result: "+err.Error(), nil, req.ID)
	}
	return resp
}

// paramsMap accepts the raw params of a request as a generic map
func paramsMap(params any) (map[string]any, error) {
	out := map[string]any{}
	switch p := params.(type) {
	case nil:
		return out, nil
	case json.RawMessage:
		if len(p) == 0 {
			return out, nil
		}
		if err := json.Unmarshal(p, &out); err != nil {
			return nil, err
		}
		return out, nil
	case map[string]any:
		return p, nil
	default:
		return nil, fmt.Errorf("unexpected params type %T", params)
	}
}

func (s *Server) handleInitialize(params any) (any, error) {
	logger.Info("Handling initialize request with", len(s.GetTools()), "tools registered")

	version := protocol.DefaultProtocolVersion
	if m, err := paramsMap(params); err == nil {
		if v, ok := m["protocolVersion"].(string); ok && v != "" {
			version = v
		}
	}

	type serverInfo struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	}
	return struct {
		ProtocolVersion string         `json:"protocolVersion"`
		Capabilities    map[string]any `json:"capabilities"`
		ServerInfo      serverInfo     `json:"serverInfo"`
	}{
		ProtocolVersion: version,
		Capabilities: map[string]any{
			"tools": map[string]any{"listChanged": false},
		},
		ServerInfo: serverInfo{Name: Name, Version: Version},
	}, nil
}

// handleInitialized needs no response
func (s *Server) handleInitialized(params any) (any, error) {
	return nil, nil
}

func (s *Server) handlePing(params any) (any, error) {
	return struct{}{}, nil
}

func (s *Server) handleToolsList(params any) (any, error) {
	return struct {
		Tools []protocol.Tool `json:"tools"`
	}{
		Tools: s.GetTools(),
	}, nil
}

func (s *Server) handleToolsCall(params any) (any, error) {
	m, err := paramsMap(params)
	if err != nil {
		return nil, fmt.Errorf("invalid tools/call parameters: %v", err)
	}
	name, _ := m["name"].(string)
	if name == "" {
		return nil, fmt.Errorf("missing tool name")
	}
	arguments, _ := m["arguments"].(map[string]any)
	if arguments == nil {
		arguments = map[string]any{}
	}

	logger.Info("Tool call requested for:", name)

	if !s.hasTool(name) {
		return nil, fmt.Errorf("tool not found: %s", name)
	}
	handler := s.lookup(name)

	result, err := handler(arguments)
	if err != nil {
		return nil, fmt.Errorf("tool execution failed: %v", err)
	}
	return result, nil
}
