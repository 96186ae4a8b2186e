// Package importer flattens externally generated subtrees (assistant output,
// image-to-component output, template snippets) into canonical nodes with
// fresh ids.
package importer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/pagecraft/internal/logging"
	"github.com/aretw0/pagecraft/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// ErrUnsupportedPayload is returned for payloads that are neither an object
// nor an array of objects.
var ErrUnsupportedPayload = errors.New("import payload must be an object or an array")

// ErrUnknownTemplate is returned by Template for names not in the library.
var ErrUnknownTemplate = errors.New("unknown template")

// Default frame dimensions, in px, used when bounds are missing or zero.
const (
	DefaultFrameWidth  = 1200
	DefaultFrameHeight = 800
)

const placeholderMarker = "will be rendered here"

// Bounds is the layout box reported by image analysis.
type Bounds struct {
	X      float64 `mapstructure:"x"`
	Y      float64 `mapstructure:"y"`
	Width  float64 `mapstructure:"width"`
	Height float64 `mapstructure:"height"`
}

// RawNode is one externally produced node before canonicalisation.
type RawNode struct {
	Type          string         `mapstructure:"type"`
	Props         map[string]any `mapstructure:"props"`
	Children      []any          `mapstructure:"children"`
	Bounds        *Bounds        `mapstructure:"bounds"`
	Variant       string         `mapstructure:"variant"`
	DominantColor string         `mapstructure:"dominantColor"`
}

// Result is the outcome of one import.
type Result struct {
	// Nodes are in depth-first order; roots carry the requested parent id.
	Nodes       []domain.Node
	Diagnostics []domain.Diagnostic
}

// IDs returns the ids of the imported nodes.
func (r Result) IDs() []string {
	out := make([]string, len(r.Nodes))
	for i, n := range r.Nodes {
		out[i] = n.ID
	}
	return out
}

// Importer converts raw payloads. It holds no per-import state and is safe for
// concurrent use.
type Importer struct {
	prefix  string
	now     func() time.Time
	random  io.Reader
	library *Library
	logger  *slog.Logger
}

// Option configures an Importer.
type Option func(*Importer)

// WithIDPrefix sets the prefix of generated ids.
func WithIDPrefix(prefix string) Option {
	return func(im *Importer) { im.prefix = prefix }
}

// WithClock sets the batch timestamp source.
func WithClock(now func() time.Time) Option {
	return func(im *Importer) { im.now = now }
}

// WithRandom sets the source of id suffixes.
func WithRandom(r io.Reader) Option {
	return func(im *Importer) { im.random = r }
}

// WithLibrary replaces the built-in template library.
func WithLibrary(lib *Library) Option {
	return func(im *Importer) { im.library = lib }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(im *Importer) { im.logger = logger }
}

// New creates an Importer.
func New(opts ...Option) *Importer {
	im := &Importer{
		prefix: DefaultIDPrefix,
		now:    time.Now,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(im)
	}
	if im.library == nil {
		im.library = DefaultLibrary()
	}
	return im
}

// Library returns the template library in use.
func (im *Importer) Library() *Library { return im.library }

// Import flattens payload (one raw node or an array of them) into canonical
// nodes. Roots get parentID; taken reports ids that already exist in the
// target tree and must not be generated.
func (im *Importer) Import(payload any, parentID string, taken func(string) bool) (Result, error) {
	var roots []any
	switch p := payload.(type) {
	case map[string]any:
		roots = []any{p}
	case []any:
		roots = p
	case []map[string]any:
		for _, r := range p {
			roots = append(roots, r)
		}
	default:
		return Result{}, fmt.Errorf("%w: got %T", ErrUnsupportedPayload, payload)
	}

	w := &walker{
		im:  im,
		ids: newIDBatch(im.prefix, im.now(), im.random, taken),
	}
	for _, r := range roots {
		w.walk(r, parentID)
	}
	return Result{Nodes: w.out, Diagnostics: w.diags}, nil
}

// ImportJSON decodes data and imports it.
func (im *Importer) ImportJSON(data []byte, parentID string, taken func(string) bool) (Result, error) {
	var payload any
	if err := json.Unmarshal(data, &payload); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrUnsupportedPayload, err)
	}
	return im.Import(payload, parentID, taken)
}

// Template imports the named snippet from the library.
func (im *Importer) Template(name, parentID string, taken func(string) bool) (Result, error) {
	snippet, ok := im.library.Snippet(name)
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownTemplate, name)
	}
	return im.Import(snippet, parentID, taken)
}

type walker struct {
	im    *Importer
	ids   *idBatch
	out   []domain.Node
	diags []domain.Diagnostic
}

func (w *walker) diagnose(kind domain.DiagnosticKind, id, detail string) {
	d := domain.Diagnostic{Kind: kind, Op: "import", NodeID: id, Detail: detail}
	w.im.logger.Debug("import node adjusted", "kind", d.Kind, "node_id", d.NodeID, "detail", d.Detail)
	w.diags = append(w.diags, d)
}

func (w *walker) walk(v any, parentID string) {
	raw, err := decodeRaw(v)
	if err != nil {
		w.diagnose(domain.DiagMalformedNode, "", err.Error())
		return
	}

	variant := raw.Variant
	if variant == "" {
		variant, _ = raw.Props["variant"].(string)
	}
	if isCard(raw.Type) && variant != "" {
		if tmpl, ok := w.im.library.Card(variant); ok {
			w.walkCardTemplate(tmpl, raw, parentID)
			return
		}
	}
	w.emit(raw, parentID)
}

// walkCardTemplate substitutes the variant's template for the raw card.
func (w *walker) walkCardTemplate(tmpl map[string]any, card RawNode, parentID string) {
	root, err := decodeRaw(tmpl)
	if err != nil {
		w.diagnose(domain.DiagMalformedNode, "", fmt.Sprintf("card template: %v", err))
		return
	}
	color := card.DominantColor
	if color == "" {
		color, _ = card.Props["dominantColor"].(string)
	}
	if color != "" {
		if root.Props == nil {
			root.Props = map[string]any{}
		}
		style, _ := root.Props[domain.PropStyle].(map[string]any)
		if style == nil {
			style = map[string]any{}
		}
		style["backgroundColor"] = color
		root.Props[domain.PropStyle] = style
	}
	w.emit(root, parentID)
}

func (w *walker) emit(raw RawNode, parentID string) {
	kids := raw.children()
	id := w.ids.next()

	typ := strings.TrimSpace(raw.Type)
	if typ == "" {
		typ = domain.TypeDiv
		if len(kids) == 0 {
			w.diagnose(domain.DiagImportShapeAmbiguous, id, "node has neither type nor children")
		}
	}

	props := make(domain.Props, len(raw.Props))
	for k, v := range raw.Props {
		if k == "bounds" {
			continue
		}
		props[k] = domain.ValueOf(v)
	}
	props = props.Canonical()

	if isFrame(typ) {
		applyBounds(props, raw.bounds())
	}

	w.out = append(w.out, domain.Node{ID: id, Type: typ, Props: props, ParentID: parentID})

	chart := isChart(typ)
	for _, kid := range kids {
		if chart && isPlaceholder(kid) {
			w.im.logger.Debug("chart placeholder skipped", "chart_id", id)
			continue
		}
		w.walk(kid, id)
	}
}

func decodeRaw(v any) (RawNode, error) {
	var raw RawNode
	obj, ok := v.(map[string]any)
	if !ok {
		return raw, fmt.Errorf("raw node must be an object, got %T", v)
	}
	if text, ok := obj[domain.PropChildren].(string); ok {
		// top-level text children belong in props
		cp := make(map[string]any, len(obj))
		for k, e := range obj {
			cp[k] = e
		}
		delete(cp, domain.PropChildren)
		props, _ := obj["props"].(map[string]any)
		if _, has := props[domain.PropChildren]; !has {
			merged := make(map[string]any, len(props)+1)
			for k, e := range props {
				merged[k] = e
			}
			merged[domain.PropChildren] = text
			cp["props"] = merged
		}
		v = cp
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &raw,
	})
	if err != nil {
		return raw, err
	}
	if err := dec.Decode(v); err != nil {
		return raw, fmt.Errorf("decode raw node: %w", err)
	}
	return raw, nil
}

// children returns the top-level array followed by an array-valued props.children.
func (r RawNode) children() []any {
	kids := append([]any(nil), r.Children...)
	if nested, ok := r.Props[domain.PropChildren].([]any); ok {
		kids = append(kids, nested...)
	}
	return kids
}

func (r RawNode) bounds() *Bounds {
	if r.Bounds != nil {
		return r.Bounds
	}
	m, ok := r.Props["bounds"].(map[string]any)
	if !ok {
		return nil
	}
	var b Bounds
	if err := mapstructure.WeakDecode(m, &b); err != nil {
		return nil
	}
	return &b
}

// applyBounds derives style width/height from non-zero bounds. A dimension
// the bounds leave out keeps an explicit style value, else the frame default.
func applyBounds(props domain.Props, b *Bounds) {
	style := props.Style()
	set := func(key string, bound float64, fallback int) {
		switch {
		case bound > 0:
			style[key] = px(bound)
		case style[key] == "":
			style[key] = px(float64(fallback))
		}
	}
	var width, height float64
	if b != nil {
		width, height = b.Width, b.Height
	}
	set("width", width, DefaultFrameWidth)
	set("height", height, DefaultFrameHeight)
	props[domain.PropStyle] = domain.StyleValue(style)
}

func px(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64) + "px"
}

func isCard(typ string) bool {
	return strings.EqualFold(typ, domain.TypeCard)
}

func isFrame(typ string) bool {
	return strings.EqualFold(typ, domain.TypeFrame) || strings.EqualFold(typ, domain.TypeContainer)
}

// isChart matches "chart", "barChart", "line-chart" and the like.
func isChart(typ string) bool {
	lower := strings.ToLower(typ)
	return lower == domain.TypeChart ||
		strings.HasSuffix(typ, "Chart") ||
		strings.HasSuffix(lower, "-chart")
}

// isPlaceholder recognises the sample children generators put inside charts.
func isPlaceholder(v any) bool {
	obj, ok := v.(map[string]any)
	if !ok {
		return false
	}
	if t, _ := obj["type"].(string); strings.EqualFold(t, "placeholder") {
		return true
	}
	props, _ := obj["props"].(map[string]any)
	for _, key := range []string{"placeholder", "sample"} {
		if b, ok := props[key].(bool); ok && b {
			return true
		}
	}
	text, _ := props[domain.PropChildren].(string)
	if text == "" {
		text, _ = obj["text"].(string)
	}
	return strings.Contains(strings.ToLower(text), placeholderMarker)
}
