package render

import "strings"

// tagFor maps a node type to its HTML tag. Keys are lower case.
var tagFor = map[string]string{
	// structural
	"div": "div", "section": "section", "header": "header", "footer": "footer",
	"nav": "nav", "main": "main", "article": "article", "aside": "aside",
	"form": "form", "span": "span",

	// semantic aliases
	"container": "div", "frame": "div", "card": "div", "row": "div",
	"column": "div", "grid": "div", "box": "div", "chart": "div", "stack": "div",
	"heading": "h2", "paragraph": "p", "text": "p", "list": "ul",
	"listitem": "li", "link": "a", "image": "img", "divider": "hr",

	// literal tags
	"h1": "h1", "h2": "h2", "h3": "h3", "h4": "h4", "h5": "h5", "h6": "h6",
	"p": "p", "button": "button", "a": "a", "label": "label",
	"ul": "ul", "ol": "ol", "li": "li",
	"img": "img", "input": "input", "hr": "hr", "br": "br",
}

var voidTags = map[string]bool{
	"img":   true,
	"input": true,
	"hr":    true,
	"br":    true,
}

// elementAttrs lists the props copied to attributes, in output order.
var elementAttrs = map[string][]string{
	"img":    {"src", "alt"},
	"a":      {"href", "target"},
	"input":  {"type", "name", "placeholder", "value"},
	"button": {"type", "name", "value"},
	"label":  {"for"},
	"form":   {"name"},
}

// Tag resolves a node type; unknown types become div.
func Tag(nodeType string) string {
	if tag, ok := tagFor[strings.ToLower(nodeType)]; ok {
		return tag
	}
	return "div"
}

// Known reports whether nodeType has its own tag mapping.
func Known(nodeType string) bool {
	_, ok := tagFor[strings.ToLower(nodeType)]
	return ok
}
