package index

import (
	"sync"

	"github.com/zixiao-technologies/logos/internal/types"
)

// TypeHierarchy tracks extends/implements edges between type symbols, both
// forward (a type's supertypes/interfaces) and in reverse (a type's
// subtypes/implementors), so queries like "show me every implementor of
// this interface" don't require scanning the whole symbol table.
type TypeHierarchy struct {
	mu sync.RWMutex

	supertypes   map[types.SymbolID][]types.SymbolID
	subtypes     map[types.SymbolID][]types.SymbolID
	implements   map[types.SymbolID][]types.SymbolID
	implementors map[types.SymbolID][]types.SymbolID
}

func NewTypeHierarchy() *TypeHierarchy {
	return &TypeHierarchy{
		supertypes:   make(map[types.SymbolID][]types.SymbolID),
		subtypes:     make(map[types.SymbolID][]types.SymbolID),
		implements:   make(map[types.SymbolID][]types.SymbolID),
		implementors: make(map[types.SymbolID][]types.SymbolID),
	}
}

// AddExtends records that subtype extends supertype (class inheritance).
func (h *TypeHierarchy) AddExtends(subtype, supertype types.SymbolID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.supertypes[subtype] = appendUnique(h.supertypes[subtype], supertype)
	h.subtypes[supertype] = appendUnique(h.subtypes[supertype], subtype)
}

// AddImplements records that implementor implements interfaceID.
func (h *TypeHierarchy) AddImplements(implementor, interfaceID types.SymbolID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.implements[implementor] = appendUnique(h.implements[implementor], interfaceID)
	h.implementors[interfaceID] = appendUnique(h.implementors[interfaceID], implementor)
}

func (h *TypeHierarchy) Supertypes(typeID types.SymbolID) []types.SymbolID {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return cloneIDs(h.supertypes[typeID])
}

func (h *TypeHierarchy) Subtypes(typeID types.SymbolID) []types.SymbolID {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return cloneIDs(h.subtypes[typeID])
}

func (h *TypeHierarchy) Interfaces(typeID types.SymbolID) []types.SymbolID {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return cloneIDs(h.implements[typeID])
}

func (h *TypeHierarchy) Implementors(interfaceID types.SymbolID) []types.SymbolID {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return cloneIDs(h.implementors[interfaceID])
}

func appendUnique(ids []types.SymbolID, id types.SymbolID) []types.SymbolID {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}

func cloneIDs(ids []types.SymbolID) []types.SymbolID {
	out := make([]types.SymbolID, len(ids))
	copy(out, ids)
	return out
}
