package index

import (
	"sync"

	"github.com/zixiao-technologies/logos/internal/types"
)

// CallGraph tracks directed caller -> callee edges, indexed both ways so
// call-hierarchy queries (incoming and outgoing calls) are O(edges at that
// symbol) rather than a scan of every call site in the project.
type CallGraph struct {
	mu sync.RWMutex

	outgoing map[types.SymbolID]map[types.CallSiteKey]types.CallSite
	incoming map[types.SymbolID]map[types.CallSiteKey]types.CallSite
}

func NewCallGraph() *CallGraph {
	return &CallGraph{
		outgoing: make(map[types.SymbolID]map[types.CallSiteKey]types.CallSite),
		incoming: make(map[types.SymbolID]map[types.CallSiteKey]types.CallSite),
	}
}

// AddCall records a call edge. Re-adding the same (caller, callee,
// location) is a no-op, matching the original's set semantics.
func (g *CallGraph) AddCall(call types.CallSite) {
	g.mu.Lock()
	defer g.mu.Unlock()

	key := call.Key()
	if g.outgoing[call.Caller] == nil {
		g.outgoing[call.Caller] = make(map[types.CallSiteKey]types.CallSite)
	}
	g.outgoing[call.Caller][key] = call

	if g.incoming[call.Callee] == nil {
		g.incoming[call.Callee] = make(map[types.CallSiteKey]types.CallSite)
	}
	g.incoming[call.Callee][key] = call
}

// Callees returns every call site made by caller.
func (g *CallGraph) Callees(caller types.SymbolID) []types.CallSite {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return collectCallSites(g.outgoing[caller])
}

// Callers returns every call site that invokes callee.
func (g *CallGraph) Callers(callee types.SymbolID) []types.CallSite {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return collectCallSites(g.incoming[callee])
}

func collectCallSites(m map[types.CallSiteKey]types.CallSite) []types.CallSite {
	out := make([]types.CallSite, 0, len(m))
	for _, call := range m {
		out = append(out, call)
	}
	return out
}

// RemoveFile drops every call site whose location is in uri, from both
// the outgoing and incoming indexes.
func (g *CallGraph) RemoveFile(uri string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for caller, calls := range g.outgoing {
		for key, call := range calls {
			if call.Location.URI == uri {
				delete(calls, key)
			}
		}
		if len(calls) == 0 {
			delete(g.outgoing, caller)
		}
	}
	for callee, calls := range g.incoming {
		for key, call := range calls {
			if call.Location.URI == uri {
				delete(calls, key)
			}
		}
		if len(calls) == 0 {
			delete(g.incoming, callee)
		}
	}
}

// Len returns the total number of distinct call sites recorded.
func (g *CallGraph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n := 0
	for _, calls := range g.outgoing {
		n += len(calls)
	}
	return n
}
