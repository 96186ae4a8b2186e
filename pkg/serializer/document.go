package serializer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/pagecraft/pkg/domain"
)

// CurrentVersion is the envelope version written by Encode.
const CurrentVersion = 2

// ErrNotDocument is returned when the input is neither an object nor a bare
// components array.
var ErrNotDocument = errors.New("not a component document")

const (
	keyVersion        = "version"
	keyComponents     = "components"
	keyEditorSettings = "editorSettings"
	keyMetadata       = "metadata"
)

// Metadata is refreshed on every save.
type Metadata struct {
	SavedAt        string `json:"savedAt,omitempty"`
	ComponentCount int    `json:"componentCount"`
}

// Document is a persisted page document. Only Components is owned by the
// engine; everything else passes through.
type Document struct {
	Version        int
	Components     []domain.Node
	EditorSettings json.RawMessage
	Metadata       Metadata
	// Extra keeps unknown top-level keys verbatim.
	Extra map[string]json.RawMessage
	// Migrated is set when Decode converted an older shape.
	Migrated bool

	metadataExtra map[string]json.RawMessage
}

// Decode parses a document. A bare JSON array is read as a version 1
// components list. The legacy migration runs here and nowhere else.
func Decode(data []byte) (*Document, []domain.Diagnostic, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return &Document{Version: CurrentVersion}, nil, nil
	}

	var top map[string]json.RawMessage
	switch data[0] {
	case '[':
		top = map[string]json.RawMessage{keyComponents: data}
	case '{':
		if err := json.Unmarshal(data, &top); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrNotDocument, err)
		}
	default:
		return nil, nil, ErrNotDocument
	}

	doc := &Document{Version: 1, Extra: make(map[string]json.RawMessage)}
	var raw []any
	var envelope []domain.Diagnostic
	for k, v := range top {
		switch k {
		case keyVersion:
			if err := json.Unmarshal(v, &doc.Version); err != nil {
				doc.Version = 1
				envelope = append(envelope, envelopeDiag(fmt.Sprintf("unreadable version %s, read as 1", v)))
			}
		case keyComponents:
			if err := decodeNumbers(v, &raw); err != nil {
				return nil, nil, fmt.Errorf("decode components: %w", err)
			}
		case keyEditorSettings:
			doc.EditorSettings = v
		case keyMetadata:
			if err := json.Unmarshal(v, &doc.metadataExtra); err != nil || doc.metadataExtra == nil {
				// Not an object: kept verbatim and written back as is.
				doc.metadataExtra = nil
				doc.Extra[k] = v
				envelope = append(envelope, envelopeDiag("metadata is not an object, kept as is"))
				continue
			}
			if err := json.Unmarshal(v, &doc.Metadata); err != nil {
				doc.Metadata = Metadata{}
				envelope = append(envelope, envelopeDiag(fmt.Sprintf("metadata fields ignored: %v", err)))
			}
			delete(doc.metadataExtra, "savedAt")
			delete(doc.metadataExtra, "componentCount")
		default:
			doc.Extra[k] = v
		}
	}

	if doc.Version < CurrentVersion || IsLegacy(raw) {
		doc.Migrated = true
		doc.Version = CurrentVersion
	}
	nodes, diags := DecodeComponents(raw)
	doc.Components = nodes
	return doc, append(envelope, diags...), nil
}

// Encode writes doc with the given components in the current flat shape.
// Metadata is refreshed from now; unknown keys are written back unchanged.
func Encode(doc *Document, nodes []domain.Node, now time.Time) ([]byte, error) {
	if doc == nil {
		doc = &Document{}
	}
	out := make(map[string]any, len(doc.Extra)+4)
	for k, v := range doc.Extra {
		out[k] = v
	}
	out[keyVersion] = CurrentVersion
	out[keyComponents] = canonical(nodes)
	if len(doc.EditorSettings) > 0 {
		out[keyEditorSettings] = doc.EditorSettings
	}

	// Metadata that was not an object stays in Extra untouched.
	if _, kept := doc.Extra[keyMetadata]; !kept {
		meta := make(map[string]any, len(doc.metadataExtra)+2)
		for k, v := range doc.metadataExtra {
			meta[k] = v
		}
		meta["componentCount"] = len(nodes)
		if !now.IsZero() {
			meta["savedAt"] = now.UTC().Format(time.RFC3339Nano)
		}
		out[keyMetadata] = meta
	}

	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return data, nil
}

func envelopeDiag(detail string) domain.Diagnostic {
	return domain.Diagnostic{Kind: domain.DiagMalformedNode, Op: "load", Detail: detail}
}

func decodeNumbers(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}
