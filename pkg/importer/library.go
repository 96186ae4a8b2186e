package importer

import (
	_ "embed"
	"fmt"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var defaultTemplates []byte

// Library holds static raw subtrees: card variants and named snippets.
type Library struct {
	Cards    map[string]map[string]any `yaml:"cards"`
	Snippets map[string]map[string]any `yaml:"snippets"`
}

// LoadLibrary parses a YAML template library.
func LoadLibrary(data []byte) (*Library, error) {
	var lib Library
	if err := yaml.Unmarshal(data, &lib); err != nil {
		return nil, fmt.Errorf("failed to parse template library: %w", err)
	}
	return &lib, nil
}

var (
	defaultOnce sync.Once
	defaultLib  *Library
)

// DefaultLibrary returns the built-in templates.
func DefaultLibrary() *Library {
	defaultOnce.Do(func() {
		lib, err := LoadLibrary(defaultTemplates)
		if err != nil {
			panic(err)
		}
		defaultLib = lib
	})
	return defaultLib
}

// Card returns a copy of the card variant's raw subtree.
func (l *Library) Card(variant string) (map[string]any, bool) {
	t, ok := l.Cards[variant]
	if !ok {
		return nil, false
	}
	return cloneData(t).(map[string]any), true
}

// Snippet returns a copy of the named snippet's raw subtree.
func (l *Library) Snippet(name string) (map[string]any, bool) {
	t, ok := l.Snippets[name]
	if !ok {
		return nil, false
	}
	return cloneData(t).(map[string]any), true
}

// Variants lists card variant names, sorted.
func (l *Library) Variants() []string { return sortedKeys(l.Cards) }

// SnippetNames lists snippet names, sorted.
func (l *Library) SnippetNames() []string { return sortedKeys(l.Snippets) }

func sortedKeys(m map[string]map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func cloneData(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = cloneData(e)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = cloneData(e)
		}
		return out
	default:
		return v
	}
}
