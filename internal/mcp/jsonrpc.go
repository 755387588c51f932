package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/halfmoon-studio/studiodesk/internal/health"
	"github.com/halfmoon-studio/studiodesk/internal/portfolio"
	"github.com/halfmoon-studio/studiodesk/internal/store"
)

const (
	serverName      = "studiodesk"
	serverVersion   = "0.1.0"
	protocolVersion = "2024-11-05"

	// maxLineBytes bounds a single request line.
	maxLineBytes = 1 << 20
)

// JSON-RPC 2.0 error codes.
const (
	codeParseError     = -32700
	codeInvalidParams  = -32602
	codeMethodNotFound = -32601
)

// Store is the data the tools read. *store.DB satisfies it.
type Store interface {
	portfolio.Source
	GetProjectByName(name string) (*store.Project, error)
	ListLeads(status store.LeadStatus) ([]store.Lead, error)
}

// Server is an MCP stdio server answering health questions about the
// studio's projects. Requests and responses are one JSON object per line.
type Server struct {
	tools  []toolDef
	byName map[string]int
	db     Store
	cfg    health.Config
	now    func() time.Time
}

// toolDef describes a registered MCP tool.
type toolDef struct {
	Name        string
	Description string
	InputSchema json.RawMessage
	Handler     toolHandler
}

// toolHandler is the function signature for MCP tool handlers.
type toolHandler func(ctx context.Context, args json.RawMessage) (any, error)

// jsonrpcRequest is a JSON-RPC 2.0 request message.
type jsonrpcRequest struct {
	JSONRPC string           `json:"jsonrpc"`
	ID      *json.RawMessage `json:"id,omitempty"`
	Method  string           `json:"method"`
	Params  json.RawMessage  `json:"params,omitempty"`
}

// jsonrpcResponse is a JSON-RPC 2.0 response message.
type jsonrpcResponse struct {
	JSONRPC string           `json:"jsonrpc"`
	ID      *json.RawMessage `json:"id,omitempty"`
	Result  any              `json:"result,omitempty"`
	Error   *jsonrpcError    `json:"error,omitempty"`
}

// jsonrpcError represents a JSON-RPC 2.0 error object.
type jsonrpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// toolsCallParams is the params structure for tools/call requests.
type toolsCallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// toolsCallResult wraps a tool result as MCP text content.
type toolsCallResult struct {
	Content []mcpContent `json:"content"`
	IsError bool         `json:"isError"`
}

type mcpContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// toolListEntry is one tool in a tools/list response.
type toolListEntry struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
}

// NewServer constructs a Server reading from db and scoring with cfg.
func NewServer(db Store, cfg health.Config) *Server {
	s := &Server{
		byName: make(map[string]int),
		db:     db,
		cfg:    cfg.WithDefaults(),
		now:    time.Now,
	}
	addTools(s)
	return s
}

// registerTool adds def, replacing any tool already registered under its name.
func (s *Server) registerTool(def toolDef) {
	if i, ok := s.byName[def.Name]; ok {
		s.tools[i] = def
		return
	}
	s.byName[def.Name] = len(s.tools)
	s.tools = append(s.tools, def)
}

// Run serves requests from r until ctx is cancelled or r reaches EOF. It
// returns nil on either, and an error only when reading or writing fails.
func (s *Server) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	bw := bufio.NewWriter(w)
	lines, readErr := readLines(ctx, r)

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-readErr:
			return err
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			resp, reply := s.handle(ctx, line)
			if !reply {
				continue
			}
			if err := writeResponse(bw, resp); err != nil {
				return err
			}
		}
	}
}

// readLines scans r on its own goroutine so Run can stop on ctx while a
// read is blocked. lines is closed at EOF.
func readLines(ctx context.Context, r io.Reader) (<-chan []byte, <-chan error) {
	lines := make(chan []byte)
	errs := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
		for scanner.Scan() {
			line := append([]byte(nil), scanner.Bytes()...)
			if len(bytes.TrimSpace(line)) == 0 {
				continue
			}
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			errs <- err
			return
		}
		close(lines)
	}()
	return lines, errs
}

// handle decodes one request line. reply is false for notifications.
func (s *Server) handle(ctx context.Context, line []byte) (resp jsonrpcResponse, reply bool) {
	resp.JSONRPC = "2.0"

	var req jsonrpcRequest
	if err := json.Unmarshal(line, &req); err != nil {
		resp.Error = &jsonrpcError{Code: codeParseError, Message: "Parse error"}
		return resp, true
	}
	if req.ID == nil {
		return resp, false
	}
	resp.ID = req.ID

	switch req.Method {
	case "initialize":
		resp.Result = map[string]any{
			"protocolVersion": protocolVersion,
			"capabilities":    map[string]any{"tools": map[string]any{}},
			"serverInfo":      map[string]any{"name": serverName, "version": serverVersion},
		}
	case "ping":
		resp.Result = map[string]any{}
	case "tools/list":
		entries := make([]toolListEntry, len(s.tools))
		for i, t := range s.tools {
			entries[i] = toolListEntry{Name: t.Name, Description: t.Description, InputSchema: t.InputSchema}
		}
		resp.Result = map[string]any{"tools": entries}
	case "tools/call":
		var params toolsCallParams
		if err := json.Unmarshal(req.Params, &params); err != nil || params.Name == "" {
			resp.Error = &jsonrpcError{Code: codeInvalidParams, Message: "Invalid params"}
			break
		}
		resp.Result = s.callTool(ctx, params)
	default:
		resp.Error = &jsonrpcError{Code: codeMethodNotFound, Message: "Method not found"}
	}
	return resp, true
}

// callTool runs a tool and wraps its JSON result, or its error, as text
// content. Tool failures are reported in-band, never as JSON-RPC errors.
func (s *Server) callTool(ctx context.Context, params toolsCallParams) toolsCallResult {
	i, ok := s.byName[params.Name]
	if !ok {
		return errorResult(fmt.Errorf("unknown tool: %s", params.Name))
	}
	args := params.Arguments
	if len(args) == 0 || string(args) == "null" {
		args = json.RawMessage(`{}`)
	}

	result, err := s.tools[i].Handler(ctx, args)
	if err != nil {
		return errorResult(err)
	}
	data, err := json.Marshal(result)
	if err != nil {
		return errorResult(err)
	}
	return toolsCallResult{Content: []mcpContent{{Type: "text", Text: string(data)}}}
}

func errorResult(err error) toolsCallResult {
	return toolsCallResult{Content: []mcpContent{{Type: "text", Text: err.Error()}}, IsError: true}
}

// writeResponse writes resp as a single line and flushes.
func writeResponse(bw *bufio.Writer, resp jsonrpcResponse) error {
	if err := json.NewEncoder(bw).Encode(resp); err != nil {
		return err
	}
	return bw.Flush()
}
