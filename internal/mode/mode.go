// Package mode owns the Basic/Smart lifecycle (C7): which of the two
// index backends answers queries, and the transitions between them.
package mode

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/zixiao-technologies/logos/internal/adapter"
	"github.com/zixiao-technologies/logos/internal/basicindex"
	"github.com/zixiao-technologies/logos/internal/index"
	"github.com/zixiao-technologies/logos/internal/orchestrator"
	"github.com/zixiao-technologies/logos/internal/types"
	"github.com/zixiao-technologies/logos/internal/watch"
)

// Intelligence names the two operating modes.
type Intelligence int

const (
	Basic Intelligence = iota
	Smart
)

func (m Intelligence) String() string {
	if m == Smart {
		return "smart"
	}
	return "basic"
}

// Controller owns the Basic document index (always live) and the Smart
// ProjectIndex/Orchestrator pair (live only while in Smart mode).
type Controller struct {
	mu sync.RWMutex

	registry *adapter.Registry
	logger   *slog.Logger
	root     string

	basicIdx *basicindex.Index

	mode   Intelligence
	orch   *orchestrator.Orchestrator
	stats  types.IndexingStats
	scanOp orchestrator.ScanOptions

	watchEnabled  bool
	watchDebounce time.Duration
	watcher       *watch.Watcher
}

// Config is the set of knobs New needs beyond the adapter registry: the
// workspace root (may be empty if unknown at startup), the directory-walk
// options for Smart-mode index_directory, and the file-watcher settings
// that govern Smart mode's automatic reindexing.
type Config struct {
	Root          string
	ScanOptions   orchestrator.ScanOptions
	WatchEnabled  bool
	WatchDebounce time.Duration
	Logger        *slog.Logger
}

// New builds a Controller starting in Basic mode.
func New(registry *adapter.Registry, cfg Config) *Controller {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		registry:      registry,
		logger:        logger,
		root:          cfg.Root,
		basicIdx:      basicindex.New(),
		mode:          Basic,
		scanOp:        cfg.ScanOptions,
		watchEnabled:  cfg.WatchEnabled,
		watchDebounce: cfg.WatchDebounce,
	}
}

// Mode reports the current intelligence mode.
func (c *Controller) Mode() Intelligence {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mode
}

// Basic exposes the always-live per-document index.
func (c *Controller) Basic() *basicindex.Index {
	return c.basicIdx
}

// Smart returns the live ProjectIndex and true when Smart mode is active;
// otherwise nil, false.
func (c *Controller) Smart() (*index.ProjectIndex, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.mode != Smart || c.orch == nil {
		return nil, false
	}
	return c.orch.Index, true
}

// EnableSmart transitions Basic -> Smart. If a workspace root is known, it
// runs index_directory immediately; an indexing error is logged but never
// aborts the transition — Smart mode activates with whatever was indexed
// before the error.
func (c *Controller) EnableSmart(ctx context.Context) error {
	c.mu.Lock()
	if c.mode == Smart {
		c.mu.Unlock()
		return nil
	}
	orch := orchestrator.New(c.registry, index.NewProjectIndex())
	c.orch = orch
	c.mode = Smart
	root := c.root
	scanOpts := c.scanOp
	c.mu.Unlock()

	if root == "" {
		return nil
	}

	c.logger.Info("starting smart mode indexing", "root", root)
	stats, err := orch.IndexDirectory(ctx, root, scanOpts)
	if stats != nil {
		c.mu.Lock()
		c.stats = *stats
		c.mu.Unlock()
	}
	if err != nil {
		c.logger.Warn("indexing error during smart mode activation", "error", err)
		return nil
	}
	c.logger.Info("smart mode indexing complete",
		"files", stats.FilesIndexed, "symbols", stats.SymbolsFound, "imports", stats.ImportsFound)

	c.startWatcher(root, orch)
	return nil
}

// startWatcher registers a recursive file watcher under root, wired to
// call orch.ReindexFile on write/create and orch.RemoveFile on
// remove/rename. A no-op when watching is disabled or root is empty.
func (c *Controller) startWatcher(root string, orch *orchestrator.Orchestrator) {
	if !c.watchEnabled || root == "" {
		return
	}
	w, err := watch.New(c.watchDebounce, watch.Callbacks{
		OnChanged: func(path string) {
			if _, err := orch.ReindexFile(context.Background(), path); err != nil {
				c.logger.Warn("watch-triggered reindex failed", "path", path, "error", err)
			}
		},
		OnRemoved: func(path string) {
			orch.RemoveFile(orchestrator.PathToURI(path))
		},
	}, c.logger)
	if err != nil {
		c.logger.Warn("failed to start file watcher", "error", err)
		return
	}
	if err := w.Start(root); err != nil {
		c.logger.Warn("failed to start file watcher", "error", err)
		return
	}

	c.mu.Lock()
	c.watcher = w
	c.mu.Unlock()
}

// EnableBasic transitions Smart -> Basic, dropping the ProjectIndex,
// Orchestrator, and file watcher. The Basic per-document index is
// untouched.
func (c *Controller) EnableBasic() {
	c.mu.Lock()
	w := c.watcher
	c.watcher = nil
	c.orch = nil
	c.mode = Basic
	c.mu.Unlock()

	if w != nil {
		if err := w.Stop(); err != nil {
			c.logger.Warn("failed to stop file watcher", "error", err)
		}
	}
}

// SetRoot records the workspace root, used by a later EnableSmart call.
func (c *Controller) SetRoot(root string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.root = root
}

// Stats returns the most recently computed indexing statistics. Zero
// valued until the first Smart-mode index_directory run; a run that ends
// in an error still stores the counts it returned.
func (c *Controller) Stats() types.IndexingStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

// OnDocumentChange updates the Basic per-document index for uri from its
// current content, and — in Smart mode, when uri resolves to a filesystem
// path — triggers a reindex_file against the Smart index too.
func (c *Controller) OnDocumentChange(ctx context.Context, uri string, content []byte) {
	a, ok := c.registry.ForFile(uri)
	if ok {
		result, err := a.Analyze(ctx, uri, content)
		if err == nil {
			c.basicIdx.SetDocument(uri, toIndexedSymbols(result.Symbols))
		}
	}

	c.mu.RLock()
	orch := c.orch
	smart := c.mode == Smart
	c.mu.RUnlock()

	if !smart || orch == nil {
		return
	}
	path, ok := orchestrator.URIToPath(uri)
	if !ok {
		return
	}
	if _, err := orch.ReindexFile(ctx, path); err != nil {
		c.logger.Warn("reindex failed", "uri", uri, "error", err)
	}
}

// OnDocumentClose drops uri from the Basic per-document index. Smart-mode
// data for the file is left intact — closing an editor buffer doesn't
// mean the file stopped existing on disk.
func (c *Controller) OnDocumentClose(uri string) {
	c.basicIdx.RemoveDocument(uri)
}

// toIndexedSymbols projects the richer SmartSymbol shape down to the
// Basic index's IndexedSymbol, computing each symbol's enclosing
// container by range containment within the same file.
func toIndexedSymbols(symbols []types.SmartSymbol) []types.IndexedSymbol {
	out := make([]types.IndexedSymbol, 0, len(symbols))
	for _, sym := range symbols {
		container := ""
		if best, ok := enclosingByRange(symbols, sym); ok {
			container = best.Name
		}
		out = append(out, types.IndexedSymbol{
			Name:           sym.Name,
			Kind:           sym.Kind,
			URI:            sym.Location.URI,
			Range:          sym.Location.Range,
			SelectionRange: sym.Location.SelectionRange,
			Container:      container,
		})
	}
	return out
}

// enclosingByRange returns the narrowest symbol (other than target itself)
// whose range strictly contains target's range.
func enclosingByRange(symbols []types.SmartSymbol, target types.SmartSymbol) (types.SmartSymbol, bool) {
	var best types.SmartSymbol
	found := false
	for _, candidate := range symbols {
		if candidate.ID == target.ID {
			continue
		}
		r := candidate.Location.Range
		if r.Start.LessEqual(target.Location.Range.Start) && target.Location.Range.End.LessEqual(r.End) && r != target.Location.Range {
			if !found || rangeSpan(r) < rangeSpan(best.Location.Range) {
				best, found = candidate, true
			}
		}
	}
	return best, found
}

func rangeSpan(r types.Range) int64 {
	lines := int64(r.End.Line) - int64(r.Start.Line)
	cols := int64(r.End.Column) - int64(r.Start.Column)
	return lines*1_000_000 + cols
}
