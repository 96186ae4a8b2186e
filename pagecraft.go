package pagecraft

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/pagecraft/internal/logging"
	"github.com/aretw0/pagecraft/pkg/domain"
	"github.com/aretw0/pagecraft/pkg/importer"
	"github.com/aretw0/pagecraft/pkg/render"
	"github.com/aretw0/pagecraft/pkg/serializer"
	"github.com/aretw0/pagecraft/pkg/tree"
)

// Engine is the high-level entry point for one open document.
// It owns the component tree and wires the serializer, importer and renderer
// around it. One Engine has one logical writer; see pkg/session for sharing.
type Engine struct {
	tree     *tree.Tree
	importer *importer.Importer
	doc      *serializer.Document

	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	now      func() time.Time
	idPrefix string
	random   io.Reader
	library  *importer.Library

	diagMu sync.Mutex
	diags  []domain.Diagnostic

	// Name labels the document in logs.
	Name string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers mutation and diagnostic callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithClock overrides time.Now for save metadata, events and import ids.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithIDPrefix sets the prefix of ids generated by imports.
func WithIDPrefix(prefix string) Option {
	return func(e *Engine) {
		e.idPrefix = prefix
	}
}

// WithRandom sets the source of import id suffixes.
func WithRandom(r io.Reader) Option {
	return func(e *Engine) {
		e.random = r
	}
}

// WithTemplateLibrary replaces the built-in card and snippet templates.
func WithTemplateLibrary(lib *importer.Library) Option {
	return func(e *Engine) {
		e.library = lib
	}
}

// WithName labels the engine (usually the document id).
func WithName(name string) Option {
	return func(e *Engine) {
		e.Name = name
	}
}

// New creates an engine holding an empty document.
func New(opts ...Option) *Engine {
	e := &Engine{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logging.NewNop()
	}
	if e.Name != "" {
		e.logger = e.logger.With("document", e.Name)
	}
	e.hooks = e.hooks.Merge(domain.LifecycleHooks{OnDiagnostic: e.record})

	e.tree = tree.New(
		tree.WithLogger(e.logger),
		tree.WithLifecycleHooks(e.hooks),
		tree.WithClock(e.now),
	)
	imOpts := []importer.Option{
		importer.WithLogger(e.logger),
		importer.WithClock(e.now),
		importer.WithIDPrefix(e.idPrefix),
		importer.WithRandom(e.random),
	}
	if e.library != nil {
		imOpts = append(imOpts, importer.WithLibrary(e.library))
	}
	e.importer = importer.New(imOpts...)
	e.doc = &serializer.Document{Version: serializer.CurrentVersion}
	return e
}

// Tree exposes the component tree for reads.
func (e *Engine) Tree() *tree.Tree { return e.tree }

// Templates returns the template library used by imports.
func (e *Engine) Templates() *importer.Library { return e.importer.Library() }

// Load replaces the tree with the components of a persisted document.
// Malformed components are dropped and reported as diagnostics; an error is
// returned only when data is not a document at all.
func (e *Engine) Load(data []byte) error {
	doc, diags, err := serializer.Decode(data)
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}
	e.report(diags)
	if doc.Migrated {
		e.logger.Info("document migrated to current schema", "version", doc.Version)
	}
	if err := e.tree.Replace(doc.Components); err != nil {
		return fmt.Errorf("load document: %w", err)
	}
	doc.Components = nil
	e.doc = doc
	return nil
}

// LoadNodes replaces the tree with already canonical nodes.
func (e *Engine) LoadNodes(nodes []domain.Node) error {
	return e.tree.Replace(nodes)
}

// Migrated reports whether the last Load converted an older schema.
func (e *Engine) Migrated() bool { return e.doc.Migrated }

// Save serializes the document in the current schema. Fields other than the
// components are written back as they were loaded.
func (e *Engine) Save() ([]byte, error) {
	return serializer.Encode(e.doc, e.tree.List(), e.now())
}

// Add appends node under parentID.
func (e *Engine) Add(node domain.Node, parentID string) error {
	return e.tree.Add(node, parentID)
}

// Update merges patch into the node with the given id.
func (e *Engine) Update(id string, patch domain.NodePatch) bool {
	return e.tree.Update(id, patch)
}

// Delete removes id and its subtree, returning the removed ids.
func (e *Engine) Delete(id string) []string {
	return e.tree.Delete(id)
}

// Reorder moves dragged before, after or inside target.
func (e *Engine) Reorder(draggedID, targetID string, pos domain.Position) bool {
	return e.tree.Reorder(draggedID, targetID, pos)
}

// AssignPage tags a root with a page id.
func (e *Engine) AssignPage(rootID, pageID string) bool {
	return e.tree.AssignPage(rootID, pageID)
}

// Import flattens an external payload and appends it under parentID in one
// step. It returns the generated ids in depth-first order.
func (e *Engine) Import(payload any, parentID string) ([]string, error) {
	res, err := e.importer.Import(payload, parentID, e.tree.Has)
	if err != nil {
		return nil, err
	}
	return e.apply(res)
}

// ImportJSON is Import for a raw JSON payload.
func (e *Engine) ImportJSON(data []byte, parentID string) ([]string, error) {
	res, err := e.importer.ImportJSON(data, parentID, e.tree.Has)
	if err != nil {
		return nil, err
	}
	return e.apply(res)
}

// ImportTemplate imports a named snippet from the template library.
func (e *Engine) ImportTemplate(name, parentID string) ([]string, error) {
	res, err := e.importer.Template(name, parentID, e.tree.Has)
	if err != nil {
		return nil, err
	}
	return e.apply(res)
}

func (e *Engine) apply(res importer.Result) ([]string, error) {
	e.report(res.Diagnostics)
	if err := e.tree.Append(res.Nodes); err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}
	return res.IDs(), nil
}

func (e *Engine) report(diags []domain.Diagnostic) {
	for i := range diags {
		d := diags[i]
		e.logger.Warn("node skipped", "op", d.Op, "kind", d.Kind, "node_id", d.NodeID, "detail", d.Detail)
		if e.hooks.OnDiagnostic != nil {
			e.hooks.OnDiagnostic(&d)
		}
	}
}

func (e *Engine) record(d *domain.Diagnostic) {
	e.diagMu.Lock()
	e.diags = append(e.diags, *d)
	e.diagMu.Unlock()
}

// Diagnostics returns every diagnostic reported since the engine was created.
func (e *Engine) Diagnostics() []domain.Diagnostic {
	e.diagMu.Lock()
	defer e.diagMu.Unlock()
	return append([]domain.Diagnostic(nil), e.diags...)
}

// RenderHTML renders every root.
func (e *Engine) RenderHTML() string {
	return render.HTML(e.tree.List())
}

// RenderPage renders the roots of one page.
func (e *Engine) RenderPage(pageID string) string {
	return render.Page(e.tree.List(), pageID)
}

// Export wraps the rendered tree and css in a standalone HTML document.
func (e *Engine) Export(css, title string) string {
	return render.Document(e.RenderHTML(), css, title)
}

// Summary describes the shape of a document.
type Summary struct {
	Nodes    int            `json:"nodes"`
	Roots    int            `json:"roots"`
	MaxDepth int            `json:"max_depth"`
	Pages    []PageSummary  `json:"pages"`
	Types    map[string]int `json:"types"`
}

// PageSummary lists the roots of one page.
type PageSummary struct {
	ID    string   `json:"id"`
	Roots []string `json:"roots"`
}

// Inspect summarizes the current tree.
func (e *Engine) Inspect() Summary {
	nodes := e.tree.List()
	s := Summary{Nodes: len(nodes), Types: make(map[string]int)}

	parent := make(map[string]string, len(nodes))
	for _, n := range nodes {
		parent[n.ID] = n.ParentID
		s.Types[n.Type]++
		if n.IsRoot() {
			s.Roots++
		}
	}
	for _, n := range nodes {
		depth := 0
		for p := n.ParentID; p != "" && depth < len(nodes); p = parent[p] {
			depth++
		}
		if depth > s.MaxDepth {
			s.MaxDepth = depth
		}
	}
	for _, p := range e.tree.Pages() {
		ps := PageSummary{ID: p}
		for _, r := range e.tree.RootsOnPage(p) {
			ps.Roots = append(ps.Roots, r.ID)
		}
		s.Pages = append(s.Pages, ps)
	}
	return s
}

// TypeNames returns the distinct node types, sorted.
func (s Summary) TypeNames() []string {
	out := make([]string, 0, len(s.Types))
	for t := range s.Types {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
