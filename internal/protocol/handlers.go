package protocol

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/zixiao-technologies/logos/internal/types"
)

func handleNoop(ctx context.Context, s *Server, params json.RawMessage) (interface{}, error) {
	return nil, nil
}

// initializeResult is a minimal capabilities handshake; logos/* extension
// methods are always available regardless of what a client declares here.
type initializeResult struct {
	Capabilities struct {
		DefinitionProvider      bool `json:"definitionProvider"`
		ReferencesProvider      bool `json:"referencesProvider"`
		HoverProvider           bool `json:"hoverProvider"`
		DocumentSymbolProvider  bool `json:"documentSymbolProvider"`
		WorkspaceSymbolProvider bool `json:"workspaceSymbolProvider"`
		CallHierarchyProvider   bool `json:"callHierarchyProvider"`
	} `json:"capabilities"`
}

func handleInitialize(ctx context.Context, s *Server, params json.RawMessage) (interface{}, error) {
	var result initializeResult
	result.Capabilities.DefinitionProvider = true
	result.Capabilities.ReferencesProvider = true
	result.Capabilities.HoverProvider = true
	result.Capabilities.DocumentSymbolProvider = true
	result.Capabilities.WorkspaceSymbolProvider = true
	result.Capabilities.CallHierarchyProvider = true
	return result, nil
}

func handleShutdown(ctx context.Context, s *Server, params json.RawMessage) (interface{}, error) {
	s.shuttingDown = true
	return nil, nil
}

func handleExit(ctx context.Context, s *Server, params json.RawMessage) (interface{}, error) {
	return nil, errShutdown
}

type textDocumentItem struct {
	URI        string `json:"uri"`
	LanguageID string `json:"languageId"`
	Version    int    `json:"version"`
	Text       string `json:"text"`
}

type didOpenParams struct {
	TextDocument textDocumentItem `json:"textDocument"`
}

func handleDidOpen(ctx context.Context, s *Server, params json.RawMessage) (interface{}, error) {
	var p didOpenParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, invalidParams(err)
	}
	s.Controller.OnDocumentChange(ctx, p.TextDocument.URI, []byte(p.TextDocument.Text))
	return nil, nil
}

type versionedTextDocumentIdentifier struct {
	URI     string `json:"uri"`
	Version int    `json:"version"`
}

// contentChange carries the whole-document replacement text; logos only
// synchronizes full-text changes, never incremental ranges.
type contentChange struct {
	Text string `json:"text"`
}

type didChangeParams struct {
	TextDocument   versionedTextDocumentIdentifier `json:"textDocument"`
	ContentChanges []contentChange                 `json:"contentChanges"`
}

func handleDidChange(ctx context.Context, s *Server, params json.RawMessage) (interface{}, error) {
	var p didChangeParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, invalidParams(err)
	}
	if len(p.ContentChanges) == 0 {
		return nil, nil
	}
	text := p.ContentChanges[len(p.ContentChanges)-1].Text
	s.Controller.OnDocumentChange(ctx, p.TextDocument.URI, []byte(text))
	return nil, nil
}

type textDocumentIdentifier struct {
	URI string `json:"uri"`
}

type didCloseParams struct {
	TextDocument textDocumentIdentifier `json:"textDocument"`
}

func handleDidClose(ctx context.Context, s *Server, params json.RawMessage) (interface{}, error) {
	var p didCloseParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, invalidParams(err)
	}
	s.Controller.OnDocumentClose(p.TextDocument.URI)
	return nil, nil
}

// textDocumentPositionParams is the shape shared by definition, hover,
// prepareCallHierarchy, and prepareRename requests. Name is an optional
// logos extension: when the transport already knows the identifier text
// under the cursor (e.g. from its own token scanner), it can pass it
// directly instead of relying on SymbolAtPosition resolving a declaration
// site to its own name.
type textDocumentPositionParams struct {
	TextDocument textDocumentIdentifier `json:"textDocument"`
	Position     wirePosition           `json:"position"`
	Name         string                 `json:"name,omitempty"`
}

func handleDefinition(ctx context.Context, s *Server, params json.RawMessage) (interface{}, error) {
	var p textDocumentPositionParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, invalidParams(err)
	}
	name := p.Name
	if name == "" {
		if sym, ok := s.Query.SymbolAtPosition(p.TextDocument.URI, fromWirePosition(p.Position)); ok {
			name = sym.Name
		}
	}
	if name == "" {
		return []wireLocation{}, nil
	}
	locs := s.Query.Definition(p.TextDocument.URI, name)
	out := make([]wireLocation, 0, len(locs))
	for _, loc := range locs {
		out = append(out, toWireLocation(loc))
	}
	return out, nil
}

type referencesContext struct {
	IncludeDeclaration bool `json:"includeDeclaration"`
}

type referencesParams struct {
	TextDocument textDocumentIdentifier `json:"textDocument"`
	Position     wirePosition           `json:"position"`
	Context      referencesContext      `json:"context"`
}

type wireReference struct {
	wireLocation
	IsCall bool `json:"isCall"`
}

func handleReferences(ctx context.Context, s *Server, params json.RawMessage) (interface{}, error) {
	var p referencesParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, invalidParams(err)
	}
	sym, ok := s.Query.SymbolAtPosition(p.TextDocument.URI, fromWirePosition(p.Position))
	if !ok {
		return []wireReference{}, nil
	}
	refs := s.Query.FindReferences(sym.ID)
	out := make([]wireReference, 0, len(refs))
	for _, ref := range refs {
		out = append(out, wireReference{wireLocation: toWireLocation(ref.Location), IsCall: ref.IsCall})
	}
	return out, nil
}

type hoverResult struct {
	Contents string `json:"contents"`
}

func handleHover(ctx context.Context, s *Server, params json.RawMessage) (interface{}, error) {
	var p textDocumentPositionParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, invalidParams(err)
	}
	sym, ok := s.Query.SymbolAtPosition(p.TextDocument.URI, fromWirePosition(p.Position))
	if !ok {
		return nil, nil
	}
	label := sym.QualifiedName
	if label == "" {
		label = sym.Name
	}
	return hoverResult{Contents: fmt.Sprintf("%s (%s)", label, sym.Kind)}, nil
}

// completion has no index-backed implementation — the core records
// declaration sites, not a ranked suggestion model — so this always
// returns an empty list rather than a method-not-found error, matching
// spec.md §7's "null-shaped results (empty list or null)" policy.
func handleCompletion(ctx context.Context, s *Server, params json.RawMessage) (interface{}, error) {
	return []interface{}{}, nil
}

type documentSymbolParams struct {
	TextDocument textDocumentIdentifier `json:"textDocument"`
}

func handleDocumentSymbol(ctx context.Context, s *Server, params json.RawMessage) (interface{}, error) {
	var p documentSymbolParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, invalidParams(err)
	}
	return toWireSymbols(s.Query.DocumentSymbols(p.TextDocument.URI)), nil
}

// rename and prepareRename recognize the method and validate the target,
// but producing the text edit itself is the refactoring collaborator's
// job (spec.md §1: "refactoring transformations over text" is explicitly
// out of scope for the core).
type renameParams struct {
	TextDocument textDocumentIdentifier `json:"textDocument"`
	Position     wirePosition           `json:"position"`
	NewName      string                 `json:"newName"`
}

type workspaceEditResult struct {
	Changes map[string][]interface{} `json:"changes"`
}

func handleRename(ctx context.Context, s *Server, params json.RawMessage) (interface{}, error) {
	var p renameParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, invalidParams(err)
	}
	if _, ok := s.Query.SymbolAtPosition(p.TextDocument.URI, fromWirePosition(p.Position)); !ok {
		return nil, &rpcError{Code: ErrInvalidParams, Message: "no renameable symbol at position"}
	}
	return workspaceEditResult{Changes: map[string][]interface{}{}}, nil
}

type prepareRenameResult struct {
	Range       wireRange `json:"range"`
	Placeholder string    `json:"placeholder"`
}

func handlePrepareRename(ctx context.Context, s *Server, params json.RawMessage) (interface{}, error) {
	var p textDocumentPositionParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, invalidParams(err)
	}
	sym, ok := s.Query.SymbolAtPosition(p.TextDocument.URI, fromWirePosition(p.Position))
	if !ok {
		return nil, &rpcError{Code: ErrInvalidParams, Message: "no renameable symbol at position"}
	}
	return prepareRenameResult{Range: toWireRange(sym.SelectionRange), Placeholder: sym.Name}, nil
}

type diagnosticParams struct {
	TextDocument textDocumentIdentifier `json:"textDocument"`
}

type diagnosticResult struct {
	Kind  string        `json:"kind"`
	Items []interface{} `json:"items"`
}

// diagnostic always reports an empty, clean item list: spec.md §7 states
// the core emits no diagnostics of its own ("no diagnostics emitted from
// the core; upstream collaborators may inspect the tree separately").
func handleDiagnostic(ctx context.Context, s *Server, params json.RawMessage) (interface{}, error) {
	return diagnosticResult{Kind: "full", Items: []interface{}{}}, nil
}

type workspaceSymbolParams struct {
	Query string `json:"query"`
}

func handleWorkspaceSymbol(ctx context.Context, s *Server, params json.RawMessage) (interface{}, error) {
	var p workspaceSymbolParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, invalidParams(err)
	}
	return toWireSymbols(s.Query.WorkspaceSymbols(p.Query)), nil
}

type callHierarchyData struct {
	SymbolID types.SymbolID `json:"symbolId"`
}

type wireCallHierarchyItem struct {
	Name  string            `json:"name"`
	Kind  int               `json:"kind"`
	URI   string            `json:"uri"`
	Range wireRange         `json:"range"`
	Data  callHierarchyData `json:"data"`
}

func handlePrepareCallHierarchy(ctx context.Context, s *Server, params json.RawMessage) (interface{}, error) {
	var p textDocumentPositionParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, invalidParams(err)
	}
	item, ok := s.Query.PrepareCallHierarchy(p.TextDocument.URI, fromWirePosition(p.Position))
	if !ok {
		return []wireCallHierarchyItem{}, nil
	}
	return []wireCallHierarchyItem{{
		Name:  item.Name,
		Kind:  item.Kind.Ordinal(),
		URI:   item.URI,
		Range: toWireRange(item.Range),
		Data:  callHierarchyData{SymbolID: item.SymbolID},
	}}, nil
}

type callHierarchyItemRef struct {
	Data callHierarchyData `json:"data"`
}

type incomingCallsParams struct {
	Item callHierarchyItemRef `json:"item"`
}

type wireIncomingCall struct {
	From wireCallHierarchyItem `json:"from"`
}

func handleIncomingCalls(ctx context.Context, s *Server, params json.RawMessage) (interface{}, error) {
	var p incomingCallsParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, invalidParams(err)
	}
	items := s.Query.IncomingCalls(p.Item.Data.SymbolID)
	out := make([]wireIncomingCall, 0, len(items))
	for _, it := range items {
		out = append(out, wireIncomingCall{From: wireCallHierarchyItem{
			Name: it.Name, Kind: it.Kind.Ordinal(), URI: it.URI, Range: toWireRange(it.Range),
			Data: callHierarchyData{SymbolID: it.SymbolID},
		}})
	}
	return out, nil
}

type wireOutgoingCall struct {
	To wireCallHierarchyItem `json:"to"`
}

func handleOutgoingCalls(ctx context.Context, s *Server, params json.RawMessage) (interface{}, error) {
	var p incomingCallsParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, invalidParams(err)
	}
	items := s.Query.OutgoingCalls(p.Item.Data.SymbolID)
	out := make([]wireOutgoingCall, 0, len(items))
	for _, it := range items {
		out = append(out, wireOutgoingCall{To: wireCallHierarchyItem{
			Name: it.Name, Kind: it.Kind.Ordinal(), URI: it.URI, Range: toWireRange(it.Range),
			Data: callHierarchyData{SymbolID: it.SymbolID},
		}})
	}
	return out, nil
}

type setModeParams struct {
	Mode string `json:"mode"`
}

type setModeResult struct {
	Mode string `json:"mode"`
}

func handleSetMode(ctx context.Context, s *Server, params json.RawMessage) (interface{}, error) {
	var p setModeParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, invalidParams(err)
	}
	switch p.Mode {
	case "smart":
		if err := s.Controller.EnableSmart(ctx); err != nil {
			return nil, &rpcError{Code: ErrInternalError, Message: err.Error()}
		}
	case "basic":
		s.Controller.EnableBasic()
	default:
		return nil, &rpcError{Code: ErrInvalidParams, Message: "mode must be \"basic\" or \"smart\", got " + p.Mode}
	}
	return setModeResult{Mode: s.Controller.Mode().String()}, nil
}

func handleGetMode(ctx context.Context, s *Server, params json.RawMessage) (interface{}, error) {
	return setModeResult{Mode: s.Controller.Mode().String()}, nil
}

type indexStatsResult struct {
	FilesIndexed       int      `json:"filesIndexed"`
	SymbolsFound       int      `json:"symbolsFound"`
	ImportsFound       int      `json:"importsFound"`
	ExportsFound       int      `json:"exportsFound"`
	CallsFound         int      `json:"callsFound"`
	TypeRelationsFound int      `json:"typeRelationsFound"`
	Errors             []string `json:"errors,omitempty"`
	Mode               string   `json:"mode"`
}

func handleGetIndexStats(ctx context.Context, s *Server, params json.RawMessage) (interface{}, error) {
	stats := s.Query.IndexStats()
	return indexStatsResult{
		FilesIndexed:       stats.FilesIndexed,
		SymbolsFound:       stats.SymbolsFound,
		ImportsFound:       stats.ImportsFound,
		ExportsFound:       stats.ExportsFound,
		CallsFound:         stats.CallsFound,
		TypeRelationsFound: stats.TypeRelationsFound,
		Errors:             stats.Errors,
		Mode:               s.Controller.Mode().String(),
	}, nil
}
