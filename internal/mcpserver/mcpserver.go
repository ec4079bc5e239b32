// Package mcpserver exposes the query surface (C8) as MCP tools, a thin
// formatting layer over query.Service — no index semantics live here. It
// is the MCP-capable-client counterpart to the line-delimited JSON-RPC
// transport in internal/protocol, both driving the same core.
package mcpserver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/zixiao-technologies/logos/internal/mode"
	"github.com/zixiao-technologies/logos/internal/query"
	"github.com/zixiao-technologies/logos/internal/types"
	"github.com/zixiao-technologies/logos/internal/version"
)

// New builds an MCP server exposing find_definition, find_references,
// document_symbols, workspace_symbol, call_hierarchy, type_hierarchy, and
// get_index_stats as tools backed by controller's query surface.
func New(controller *mode.Controller, logger *slog.Logger) *mcp.Server {
	if logger == nil {
		logger = slog.Default()
	}
	svc := query.NewService(controller)
	server := mcp.NewServer(&mcp.Implementation{Name: "logos", Version: version.Version}, nil)

	registerTool(server, "find_definition",
		"Resolve an identifier's declaration site, preferring Smart mode's cross-file qualified-name lookup.",
		func(ctx context.Context, req *mcp.CallToolRequest, args findDefinitionArgs) (*mcp.CallToolResult, definitionResult, error) {
			locs := svc.Definition(args.URI, args.Name)
			return textResult(fmt.Sprintf("%d definition(s) found", len(locs))), definitionResult{Locations: toLocations(locs)}, nil
		})

	registerTool(server, "find_references",
		"List every stored reference and call site for the symbol at a position. Smart mode only.",
		func(ctx context.Context, req *mcp.CallToolRequest, args symbolAtPositionArgs) (*mcp.CallToolResult, referencesResult, error) {
			sym, ok := svc.SymbolAtPosition(args.URI, position(args.Line, args.Character))
			if !ok {
				return textResult("no symbol at position"), referencesResult{}, nil
			}
			refs := svc.FindReferences(sym.ID)
			return textResult(fmt.Sprintf("%d reference(s) found for %s", len(refs), sym.Name)), referencesResult{References: toReferences(refs)}, nil
		})

	registerTool(server, "document_symbols",
		"List every symbol declared in a document, hierarchically in Smart mode and flat in Basic mode.",
		func(ctx context.Context, req *mcp.CallToolRequest, args documentArgs) (*mcp.CallToolResult, symbolsResult, error) {
			syms := svc.DocumentSymbols(args.URI)
			return textResult(fmt.Sprintf("%d symbol(s)", len(syms))), symbolsResult{Symbols: toSymbols(syms)}, nil
		})

	registerTool(server, "workspace_symbol",
		"Search every indexed symbol by a case-insensitive substring of its name, ranked by similarity.",
		func(ctx context.Context, req *mcp.CallToolRequest, args queryArgs) (*mcp.CallToolResult, symbolsResult, error) {
			syms := svc.WorkspaceSymbols(args.Query)
			return textResult(fmt.Sprintf("%d match(es)", len(syms))), symbolsResult{Symbols: toSymbols(syms)}, nil
		})

	registerTool(server, "call_hierarchy",
		"Resolve the symbol at a position and list its callers and callees. Smart mode only.",
		func(ctx context.Context, req *mcp.CallToolRequest, args symbolAtPositionArgs) (*mcp.CallToolResult, callHierarchyResult, error) {
			item, ok := svc.PrepareCallHierarchy(args.URI, position(args.Line, args.Character))
			if !ok {
				return textResult("no call-hierarchy-eligible symbol at position"), callHierarchyResult{}, nil
			}
			in := svc.IncomingCalls(item.SymbolID)
			out := svc.OutgoingCalls(item.SymbolID)
			return textResult(fmt.Sprintf("%s: %d caller(s), %d callee(s)", item.Name, len(in), len(out))),
				callHierarchyResult{Symbol: item.Name, Callers: toCallItems(in), Callees: toCallItems(out)}, nil
		})

	registerTool(server, "type_hierarchy",
		"List supertypes, subtypes, implemented interfaces, and implementors of a symbol id. Smart mode only.",
		func(ctx context.Context, req *mcp.CallToolRequest, args symbolIDArgs) (*mcp.CallToolResult, typeHierarchyResult, error) {
			th := svc.TypeHierarchy(types.SymbolID(args.SymbolID))
			return textResult("type hierarchy resolved"), typeHierarchyResult{
				Supertypes:   ids(th.Supertypes),
				Subtypes:     ids(th.Subtypes),
				Interfaces:   ids(th.Interfaces),
				Implementors: ids(th.Implementors),
			}, nil
		})

	registerTool(server, "get_index_stats",
		"Report the mode controller's current operating mode and running indexing statistics.",
		func(ctx context.Context, req *mcp.CallToolRequest, args noArgs) (*mcp.CallToolResult, statsResult, error) {
			stats := svc.IndexStats()
			return textResult(fmt.Sprintf("mode=%s files=%d symbols=%d", controller.Mode(), stats.FilesIndexed, stats.SymbolsFound)),
				statsResult{
					Mode:         controller.Mode().String(),
					FilesIndexed: stats.FilesIndexed,
					SymbolsFound: stats.SymbolsFound,
					ImportsFound: stats.ImportsFound,
					Errors:       stats.Errors,
				}, nil
		})

	return server
}

// Run starts server over stdio and blocks until the client disconnects or
// ctx is cancelled.
func Run(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}

// registerTool wires a typed handler into server, inferring its JSON
// input schema from Args via jsonschema-go.
func registerTool[Args, Result any](server *mcp.Server, name, description string, handler func(context.Context, *mcp.CallToolRequest, Args) (*mcp.CallToolResult, Result, error)) {
	schema, err := jsonschema.For[Args](nil)
	if err != nil {
		panic(fmt.Sprintf("mcpserver: building schema for tool %s: %v", name, err))
	}
	mcp.AddTool(server, &mcp.Tool{Name: name, Description: description, InputSchema: schema}, handler)
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: text}}}
}

func position(line, character uint32) types.Position {
	return types.Position{Line: line, Column: character}
}
