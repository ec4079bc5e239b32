// Package protocol implements the line-delimited JSON-RPC transport
// (C12): one JSON object per line on stdin, dispatched by method name to
// handlers that call into the query surface (C8) and mode controller
// (C7), with one JSON object per line written back to stdout. This is
// the collaborator spec.md §6 describes as "request dispatch
// (collaborator-provided)" — everything here is wire plumbing; no index
// semantics live in this package.
package protocol

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/zixiao-technologies/logos/internal/mode"
	"github.com/zixiao-technologies/logos/internal/query"
)

// Standard JSON-RPC error codes (spec.md §6: "Error codes follow the
// standard JSON-RPC mapping").
const (
	ErrParseError     = -32700
	ErrInvalidRequest = -32600
	ErrMethodNotFound = -32601
	ErrInvalidParams  = -32602
	ErrInternalError  = -32603
)

type request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// errShutdown is returned by the exit handler to unwind Server.Run cleanly.
var errShutdown = errors.New("protocol: exit")

// handlerFunc processes one request's params and returns a JSON-marshalable
// result, or an *rpcError / plain error (wrapped as an internal error).
type handlerFunc func(ctx context.Context, s *Server, params json.RawMessage) (interface{}, error)

// Server reads line-delimited JSON-RPC requests from an input stream and
// writes responses to an output stream, dispatching by method name into
// the query surface and mode controller.
type Server struct {
	Query      *query.Service
	Controller *mode.Controller
	Logger     *slog.Logger

	out   io.Writer
	outMu sync.Mutex

	shuttingDown bool
}

// NewServer builds a Server bound to controller's query surface.
func NewServer(controller *mode.Controller, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		Query:      query.NewService(controller),
		Controller: controller,
		Logger:     logger,
	}
}

var handlers = map[string]handlerFunc{
	"initialize":                        handleInitialize,
	"initialized":                       handleNoop,
	"shutdown":                          handleShutdown,
	"exit":                              handleExit,
	"textDocument/didOpen":              handleDidOpen,
	"textDocument/didChange":            handleDidChange,
	"textDocument/didClose":             handleDidClose,
	"textDocument/definition":           handleDefinition,
	"textDocument/references":           handleReferences,
	"textDocument/hover":                handleHover,
	"textDocument/completion":           handleCompletion,
	"textDocument/documentSymbol":       handleDocumentSymbol,
	"textDocument/rename":               handleRename,
	"textDocument/prepareRename":        handlePrepareRename,
	"textDocument/diagnostic":           handleDiagnostic,
	"workspace/symbol":                  handleWorkspaceSymbol,
	"textDocument/prepareCallHierarchy": handlePrepareCallHierarchy,
	"callHierarchy/incomingCalls":       handleIncomingCalls,
	"callHierarchy/outgoingCalls":       handleOutgoingCalls,
	"logos/setMode":                     handleSetMode,
	"logos/getMode":                     handleGetMode,
	"logos/getIndexStats":               handleGetIndexStats,
}

// Run reads requests from in and writes responses to out until exit is
// received, the scanner hits EOF, or ctx is cancelled.
func (s *Server) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	s.out = out

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := s.dispatch(ctx, line); err != nil {
			if errors.Is(err, errShutdown) {
				return nil
			}
			s.Logger.Warn("protocol: dispatch error", "error", err)
		}
	}
	return scanner.Err()
}

func (s *Server) dispatch(ctx context.Context, line []byte) error {
	var req request
	if err := json.Unmarshal(line, &req); err != nil {
		s.writeError(nil, ErrParseError, "parse error: "+err.Error())
		return nil
	}

	handler, ok := handlers[req.Method]
	if !ok {
		if req.ID != nil {
			s.writeError(req.ID, ErrMethodNotFound, "method not found: "+req.Method)
		}
		return nil
	}

	result, err := handler(ctx, s, req.Params)
	if errors.Is(err, errShutdown) {
		return err
	}
	if req.ID == nil {
		// Notification: no response regardless of outcome.
		if err != nil {
			s.Logger.Warn("protocol: notification handler error", "method", req.Method, "error", err)
		}
		return nil
	}
	if err != nil {
		var re *rpcError
		if errors.As(err, &re) {
			s.writeError(req.ID, re.Code, re.Message)
		} else {
			s.writeError(req.ID, ErrInternalError, err.Error())
		}
		return nil
	}
	s.writeResult(req.ID, result)
	return nil
}

func (e *rpcError) Error() string { return e.Message }

func invalidParams(err error) error {
	return &rpcError{Code: ErrInvalidParams, Message: fmt.Sprintf("invalid params: %v", err)}
}

func (s *Server) writeResult(id json.RawMessage, result interface{}) {
	s.writeLine(response{JSONRPC: "2.0", ID: id, Result: result})
}

func (s *Server) writeError(id json.RawMessage, code int, message string) {
	s.writeLine(response{JSONRPC: "2.0", ID: id, Error: &rpcError{Code: code, Message: message}})
}

func (s *Server) writeLine(resp response) {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	enc := json.NewEncoder(s.out)
	if err := enc.Encode(resp); err != nil {
		s.Logger.Warn("protocol: failed to write response", "error", err)
	}
}
