package protocol

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zixiao-technologies/logos/internal/adapter"
	"github.com/zixiao-technologies/logos/internal/mode"
	"github.com/zixiao-technologies/logos/internal/orchestrator"
	"github.com/zixiao-technologies/logos/internal/types"
)

type fakeAdapter struct{ ext string }

func (f *fakeAdapter) LanguageID() string       { return "fake" }
func (f *fakeAdapter) FileExtensions() []string { return []string{f.ext} }
func (f *fakeAdapter) CanHandle(path string) bool {
	return len(path) >= len(f.ext) && path[len(path)-len(f.ext):] == f.ext
}

func (f *fakeAdapter) Analyze(ctx context.Context, uri string, source []byte) (types.AnalysisResult, error) {
	id := types.NextSymbolID()
	return types.AnalysisResult{
		Symbols: []types.SmartSymbol{
			{
				ID:       id,
				Name:     "main",
				Kind:     types.SymbolKindFunction,
				Location: types.SymbolLocation{URI: uri, Range: types.NewRange(0, 0, 5, 0), SelectionRange: types.NewRange(0, 5, 0, 9)},
				Exported: true,
			},
		},
	}, nil
}

func (f *fakeAdapter) ResolveImport(fromFile, importPath string) (string, bool) {
	return "", false
}

func newTestServer(t *testing.T, root string) *Server {
	t.Helper()
	reg := adapter.NewRegistry()
	reg.Register(&fakeAdapter{ext: ".fk"})
	ctrl := mode.New(reg, mode.Config{Root: root, ScanOptions: orchestrator.ScanOptions{}})
	return NewServer(ctrl, nil)
}

// roundTrip sends one JSON-RPC request line and returns the decoded
// response, or nil if the method was a notification that drew no reply.
func roundTrip(t *testing.T, s *Server, req map[string]interface{}) *response {
	t.Helper()
	line, err := json.Marshal(req)
	require.NoError(t, err)

	var out bytes.Buffer
	s.out = &out
	err = s.dispatch(context.Background(), line)
	require.NoError(t, err)

	if out.Len() == 0 {
		return nil
	}
	var resp response
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	return &resp
}

func TestDispatch_UnknownMethodReturnsMethodNotFound(t *testing.T) {
	s := newTestServer(t, "")
	resp := roundTrip(t, s, map[string]interface{}{"jsonrpc": "2.0", "id": 1, "method": "nonexistent/method"})
	require.NotNil(t, resp)
	require.NotNil(t, resp.Error)
	require.Equal(t, ErrMethodNotFound, resp.Error.Code)
}

func TestDispatch_NotificationNeverWritesAResponse(t *testing.T) {
	s := newTestServer(t, "")
	resp := roundTrip(t, s, map[string]interface{}{"jsonrpc": "2.0", "method": "nonexistent/method"})
	require.Nil(t, resp)
}

func TestDispatch_MalformedLineWritesParseError(t *testing.T) {
	s := newTestServer(t, "")
	var out bytes.Buffer
	s.out = &out
	require.NoError(t, s.dispatch(context.Background(), []byte("{not json")))

	var resp response
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	require.Equal(t, ErrParseError, resp.Error.Code)
}

func TestDispatch_Initialize(t *testing.T) {
	s := newTestServer(t, "")
	resp := roundTrip(t, s, map[string]interface{}{"jsonrpc": "2.0", "id": 1, "method": "initialize"})
	require.NotNil(t, resp)
	require.Nil(t, resp.Error)

	raw, err := json.Marshal(resp.Result)
	require.NoError(t, err)
	var result initializeResult
	require.NoError(t, json.Unmarshal(raw, &result))
	require.True(t, result.Capabilities.DefinitionProvider)
	require.True(t, result.Capabilities.CallHierarchyProvider)
}

func TestDispatch_ExitReturnsErrShutdown(t *testing.T) {
	s := newTestServer(t, "")
	line, err := json.Marshal(map[string]interface{}{"jsonrpc": "2.0", "id": 1, "method": "exit"})
	require.NoError(t, err)
	var out bytes.Buffer
	s.out = &out
	err = s.dispatch(context.Background(), line)
	require.ErrorIs(t, err, errShutdown)
}

func TestDispatch_DidOpenThenDocumentSymbol(t *testing.T) {
	s := newTestServer(t, "")
	uri := "file:///untitled/scratch.fk"

	resp := roundTrip(t, s, map[string]interface{}{
		"jsonrpc": "2.0", "method": "textDocument/didOpen",
		"params": map[string]interface{}{
			"textDocument": map[string]interface{}{"uri": uri, "languageId": "fake", "version": 1, "text": "x"},
		},
	})
	require.Nil(t, resp)

	resp = roundTrip(t, s, map[string]interface{}{
		"jsonrpc": "2.0", "id": 2, "method": "textDocument/documentSymbol",
		"params": map[string]interface{}{"textDocument": map[string]interface{}{"uri": uri}},
	})
	require.NotNil(t, resp)
	require.Nil(t, resp.Error)

	raw, err := json.Marshal(resp.Result)
	require.NoError(t, err)
	var syms []wireSymbol
	require.NoError(t, json.Unmarshal(raw, &syms))
	require.Len(t, syms, 1)
	require.Equal(t, "main", syms[0].Name)
}

func TestDispatch_CompletionAlwaysEmpty(t *testing.T) {
	s := newTestServer(t, "")
	resp := roundTrip(t, s, map[string]interface{}{"jsonrpc": "2.0", "id": 1, "method": "textDocument/completion"})
	require.NotNil(t, resp)
	require.Nil(t, resp.Error)

	raw, err := json.Marshal(resp.Result)
	require.NoError(t, err)
	require.JSONEq(t, "[]", string(raw))
}

func TestDispatch_DiagnosticAlwaysEmpty(t *testing.T) {
	s := newTestServer(t, "")
	resp := roundTrip(t, s, map[string]interface{}{"jsonrpc": "2.0", "id": 1, "method": "textDocument/diagnostic"})
	require.NotNil(t, resp)
	require.Nil(t, resp.Error)

	raw, err := json.Marshal(resp.Result)
	require.NoError(t, err)
	var diag diagnosticResult
	require.NoError(t, json.Unmarshal(raw, &diag))
	require.Empty(t, diag.Items)
}

func TestDispatch_SetModeTransitions(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.fk"), []byte("x"), 0o644))
	s := newTestServer(t, dir)

	resp := roundTrip(t, s, map[string]interface{}{
		"jsonrpc": "2.0", "id": 1, "method": "logos/setMode",
		"params": map[string]interface{}{"mode": "smart"},
	})
	require.NotNil(t, resp)
	require.Nil(t, resp.Error)
	require.Equal(t, mode.Smart, s.Controller.Mode())

	resp = roundTrip(t, s, map[string]interface{}{
		"jsonrpc": "2.0", "id": 2, "method": "logos/setMode",
		"params": map[string]interface{}{"mode": "nonsense"},
	})
	require.NotNil(t, resp)
	require.NotNil(t, resp.Error)
	require.Equal(t, ErrInvalidParams, resp.Error.Code)
}

func TestDispatch_GetIndexStats(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.fk"), []byte("x"), 0o644))
	s := newTestServer(t, dir)

	require.NoError(t, s.Controller.EnableSmart(context.Background()))

	resp := roundTrip(t, s, map[string]interface{}{"jsonrpc": "2.0", "id": 1, "method": "logos/getIndexStats"})
	require.NotNil(t, resp)
	require.Nil(t, resp.Error)

	raw, err := json.Marshal(resp.Result)
	require.NoError(t, err)
	var stats indexStatsResult
	require.NoError(t, json.Unmarshal(raw, &stats))
	require.Equal(t, 1, stats.FilesIndexed)
	require.Equal(t, "smart", stats.Mode)
}

func TestServer_RunStopsOnExit(t *testing.T) {
	s := newTestServer(t, "")
	in := bytes.NewBufferString(
		`{"jsonrpc":"2.0","id":1,"method":"initialize"}` + "\n" +
			`{"jsonrpc":"2.0","id":2,"method":"exit"}` + "\n",
	)
	var out bytes.Buffer
	err := s.Run(context.Background(), in, &out)
	require.NoError(t, err)

	scanner := bufio.NewScanner(&out)
	lines := 0
	for scanner.Scan() {
		if len(bytes.TrimSpace(scanner.Bytes())) > 0 {
			lines++
		}
	}
	require.Equal(t, 1, lines)
}
