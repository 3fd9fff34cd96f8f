package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"runtime/debug"

	"github.com/emergent-company/compliance-mcp/internal/telemetry"
)

// sessionState tracks the lifecycle state machine:
//
//	(start) --initialize--> initializeSent --notifications/initialized--> ready --EOF--> (end)
//
// The server tolerates clients that skip the initialized notification: all
// method calls other than initialize and ping are accepted in either
// initializeSent or ready.
type sessionState int

const (
	sessionStart sessionState = iota
	sessionInitializeSent
	sessionReady
)

// Server implements the MCP protocol over framed stdio.
type Server struct {
	registry *Registry
	info     ServerInfo
	logger   *slog.Logger
	state    sessionState
}

// NewServer creates an MCP server with the given registry and server info.
func NewServer(registry *Registry, info ServerInfo, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{registry: registry, info: info, logger: logger}
}

// Run reads framed JSON-RPC requests from r and writes framed responses to
// w. It blocks until r returns EOF or ctx is cancelled, reading exactly one
// message at a time: the dispatcher never reads the next message until the
// previous response (if any) has been written in full.
func (s *Server) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	reader := NewFrameReader(r)
	writer := NewFrameWriter(w)

	s.logger.Info("mcp server started", "name", s.info.Name, "version", s.info.Version)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		body, err := reader.ReadMessage()
		if err != nil {
			if err == io.EOF {
				s.logger.Info("mcp server stopped (stdin closed)")
				return nil
			}
			return fmt.Errorf("reading message: %w", err)
		}
		if len(body) == 0 {
			continue
		}

		resp := s.handleMessage(ctx, body)
		if resp == nil {
			continue
		}

		out, err := json.Marshal(resp)
		if err != nil {
			return fmt.Errorf("marshaling response: %w", err)
		}
		if err := writer.WriteMessage(out); err != nil {
			return fmt.Errorf("writing response: %w", err)
		}
	}
}

// handleMessage parses a single JSON-RPC message and dispatches it,
// recovering from any panic raised by a handler so one bad tool call never
// takes down the dispatcher loop.
func (s *Server) handleMessage(ctx context.Context, data []byte) (resp *Response) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		s.logger.Error("failed to parse request", "error", err)
		return &Response{
			JSONRPC: "2.0",
			Error:   &RPCError{Code: ErrCodeParse, Message: "Parse error", Data: err.Error()},
		}
	}

	if req.Method == "" && !req.IsNotification() {
		return &Response{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &RPCError{Code: ErrCodeInvalidRequest, Message: "Invalid Request: missing method"},
		}
	}

	if req.IsNotification() {
		s.handleNotification(&req)
		return nil // zero responses are written for a notification
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("handler panicked", "method", req.Method, "panic", r)
			resp = &Response{
				JSONRPC: "2.0",
				ID:      req.ID,
				Error: &RPCError{
					Code:    ErrCodeInternal,
					Message: fmt.Sprintf("%v", r),
					Data:    string(debug.Stack()),
				},
			}
		}
	}()

	result, rpcErr := s.dispatch(ctx, &req)
	out := &Response{JSONRPC: "2.0", ID: req.ID}
	if rpcErr != nil {
		out.Error = rpcErr
	} else {
		out.Result = result
	}
	return out
}

func (s *Server) handleNotification(req *Request) {
	switch req.Method {
	case "notifications/initialized":
		s.state = sessionReady
		s.logger.Info("client initialized")
	default:
		s.logger.Debug("received notification", "method", req.Method)
	}
}

// dispatch routes a request to the appropriate handler method. initialize
// and ping are legal in any state; everything else is accepted once the
// handshake is at least in progress, but does NOT require the initialized
// notification to have arrived (tolerant of clients that skip it).
func (s *Server) dispatch(ctx context.Context, req *Request) (any, *RPCError) {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req.Params)
	case "ping":
		return map[string]any{}, nil
	case "tools/list":
		return s.handleToolsList()
	case "tools/call":
		return s.handleToolsCall(ctx, req.Params)
	case "prompts/list":
		return s.handlePromptsList()
	case "prompts/get":
		return s.handlePromptsGet(req.Params)
	case "resources/list":
		return s.handleResourcesList()
	case "resources/read":
		return s.handleResourcesRead(req.Params)
	default:
		return nil, &RPCError{
			Code:    ErrCodeMethodNotFound,
			Message: fmt.Sprintf("method not found: %s", req.Method),
		}
	}
}

func (s *Server) handleInitialize(params json.RawMessage) (any, *RPCError) {
	var initParams InitializeParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &initParams); err != nil {
			return nil, &RPCError{Code: ErrCodeInvalidParams, Message: "Invalid initialize params", Data: err.Error()}
		}
	}

	s.state = sessionInitializeSent
	s.logger.Info("client connecting",
		"client", initParams.ClientInfo.Name,
		"client_version", initParams.ClientInfo.Version,
		"protocol_version", initParams.ProtocolVersion,
	)

	caps := ServerCapability{}
	if s.registry.HasTools() {
		caps.Tools = &ToolsCapability{}
	}
	if s.registry.HasPrompts() {
		caps.Prompts = &PromptsCapability{}
	}
	if s.registry.HasResources() {
		caps.Resources = &ResourcesCapability{}
	}

	return &InitializeResult{
		ProtocolVersion: ProtocolVersion,
		Capabilities:    caps,
		ServerInfo:      s.info,
	}, nil
}

func (s *Server) handleToolsList() (any, *RPCError) {
	return &ToolsListResult{Tools: s.registry.List()}, nil
}

// handleToolsCall dispatches a tool call to the registry, wrapping the
// invocation in a traced span.
func (s *Server) handleToolsCall(ctx context.Context, params json.RawMessage) (any, *RPCError) {
	var callParams ToolsCallParams
	if err := json.Unmarshal(params, &callParams); err != nil {
		return nil, &RPCError{Code: ErrCodeInvalidParams, Message: "Invalid tools/call params", Data: err.Error()}
	}

	tool := s.registry.Get(callParams.Name)
	if tool == nil {
		return nil, &RPCError{Code: ErrCodeMethodNotFound, Message: fmt.Sprintf("tool not found: %s", callParams.Name)}
	}

	spanCtx, span := telemetry.StartToolCall(ctx, s.info.Name, callParams.Name, callParams.Arguments)

	s.logger.Info("calling tool", "tool", callParams.Name)
	result, err := tool.Execute(spanCtx, callParams.Arguments)
	if err != nil {
		s.logger.Error("tool execution failed", "tool", callParams.Name, "error", err)
		telemetry.EndToolCallError(span, reflect.TypeOf(err).String(), err.Error())
		return ToolErrorResult(callParams.Name, err), nil
	}

	resultText := ""
	if result != nil && len(result.Content) > 0 {
		resultText = result.Content[0].Text
	}
	if result != nil && result.IsError {
		telemetry.EndToolCallError(span, "ToolError", resultText)
	} else {
		telemetry.EndToolCallSuccess(span, resultText)
	}
	return result, nil
}

func (s *Server) handlePromptsList() (any, *RPCError) {
	return &PromptsListResult{Prompts: s.registry.ListPrompts()}, nil
}

func (s *Server) handlePromptsGet(params json.RawMessage) (any, *RPCError) {
	var getParams PromptsGetParams
	if err := json.Unmarshal(params, &getParams); err != nil {
		return nil, &RPCError{Code: ErrCodeInvalidParams, Message: "Invalid prompts/get params", Data: err.Error()}
	}

	prompt := s.registry.GetPrompt(getParams.Name)
	if prompt == nil {
		return nil, &RPCError{Code: ErrCodeMethodNotFound, Message: fmt.Sprintf("prompt not found: %s", getParams.Name)}
	}

	result, err := prompt.Get(getParams.Arguments)
	if err != nil {
		return nil, &RPCError{Code: ErrCodeInternal, Message: fmt.Sprintf("prompt error: %v", err)}
	}
	return result, nil
}

func (s *Server) handleResourcesList() (any, *RPCError) {
	return &ResourcesListResult{Resources: s.registry.ListResources()}, nil
}

func (s *Server) handleResourcesRead(params json.RawMessage) (any, *RPCError) {
	var readParams ResourcesReadParams
	if err := json.Unmarshal(params, &readParams); err != nil {
		return nil, &RPCError{Code: ErrCodeInvalidParams, Message: "Invalid resources/read params", Data: err.Error()}
	}

	resource, captured := s.registry.GetResource(readParams.URI)
	if resource == nil {
		return nil, &RPCError{Code: ErrCodeMethodNotFound, Message: fmt.Sprintf("resource not found: %s", readParams.URI)}
	}

	result, err := resource.Read(captured)
	if err != nil {
		return nil, &RPCError{Code: ErrCodeInternal, Message: fmt.Sprintf("resource read error: %v", err)}
	}
	return result, nil
}
