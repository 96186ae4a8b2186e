package render_test

import (
	"testing"

	"github.com/aretw0/pagecraft/pkg/domain"
	"github.com/aretw0/pagecraft/pkg/render"
	"github.com/stretchr/testify/assert"
)

func TestHTML_Nesting(t *testing.T) {
	nodes := []domain.Node{
		{ID: "A", Type: "div"},
		{ID: "B", Type: "p", ParentID: "A", Props: domain.Props{"children": domain.String("hi")}},
	}
	assert.Equal(t, "<div><p>hi</p></div>", render.HTML(nodes))
}

func TestHTML_Elements(t *testing.T) {
	tests := []struct {
		name string
		node domain.Node
		want string
	}{
		{
			name: "Image Is Self Closing",
			node: domain.Node{ID: "i", Type: "image", Props: domain.Props{
				"src": domain.String("a.png"), "alt": domain.String(`"quoted"`),
			}},
			want: `<img src="a.png" alt="&#34;quoted&#34;" />`,
		},
		{
			name: "Class And Style",
			node: domain.Node{ID: "s", Type: "section", Props: domain.Props{
				"className": domain.String("hero dark"),
				"style": domain.StyleValue(domain.Style{
					"fontSize": "12px", "color": "red", "WebkitTransition": "all 1s", "margin": "",
				}),
			}},
			want: `<section class="hero dark" style="-webkit-transition: all 1s; color: red; font-size: 12px;"></section>`,
		},
		{
			name: "Link",
			node: domain.Node{ID: "l", Type: "link", Props: domain.Props{
				"href": domain.String("/x?a=1&b=2"), "children": domain.String("Go"),
			}},
			want: `<a href="/x?a=1&amp;b=2">Go</a>`,
		},
		{
			name: "Escaped Text",
			node: domain.Node{ID: "h", Type: "heading", Props: domain.Props{"children": domain.String("<b>&")}},
			want: `<h2>&lt;b&gt;&amp;</h2>`,
		},
		{
			name: "Number Text",
			node: domain.Node{ID: "n", Type: "p", Props: domain.Props{"children": domain.Number(42)}},
			want: `<p>42</p>`,
		},
		{
			name: "Unknown Type",
			node: domain.Node{ID: "u", Type: "fancyWidget"},
			want: `<div></div>`,
		},
		{
			name: "Input",
			node: domain.Node{ID: "in", Type: "input", Props: domain.Props{
				"placeholder": domain.String("Email"), "type": domain.String("email"),
			}},
			want: `<input type="email" placeholder="Email" />`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, render.HTML([]domain.Node{tt.node}))
		})
	}
}

func TestHTML_OrderAndRoots(t *testing.T) {
	nodes := []domain.Node{
		{ID: "l", Type: "list"},
		{ID: "b", Type: "listItem", ParentID: "l", Props: domain.Props{"children": domain.String("b")}},
		{ID: "f", Type: "footer"},
		{ID: "a", Type: "listItem", ParentID: "l", Props: domain.Props{"children": domain.String("a")}},
		{ID: "x", Type: "span", ParentID: "a", Props: domain.Props{"children": domain.String("!")}},
	}
	want := `<ul><li>b</li><li>a<span>!</span></li></ul><footer></footer>`
	assert.Equal(t, want, render.HTML(nodes))
	assert.Equal(t, want, render.HTML(nodes), "deterministic")
	assert.Equal(t, `<li>a<span>!</span></li>`, render.Node(nodes, "a"))
	assert.Empty(t, render.Node(nodes, "zz"))
}

func TestHTML_CycleDoesNotLoop(t *testing.T) {
	nodes := []domain.Node{
		{ID: "r", Type: "div"},
		{ID: "a", Type: "div", ParentID: "r"},
		{ID: "r2", Type: "div", ParentID: "a"},
	}
	nodes = append(nodes, domain.Node{ID: "a", Type: "div", ParentID: "r2"})
	assert.NotPanics(t, func() { render.HTML(nodes) })
}

func TestPage(t *testing.T) {
	nodes := []domain.Node{
		{ID: "h", Type: "header"},
		{ID: "p", Type: "section", Props: domain.Props{"pageId": domain.String("pricing")}},
		{ID: "t", Type: "h1", ParentID: "p", Props: domain.Props{"children": domain.String("Plans")}},
	}
	assert.Equal(t, `<section><h1>Plans</h1></section>`, render.Page(nodes, "pricing"))
	assert.Equal(t, `<header></header>`, render.Page(nodes, ""))
	assert.Empty(t, render.Page(nodes, "blog"))
}

func TestCSSProperty(t *testing.T) {
	cases := map[string]string{
		"color":            "color",
		"backgroundColor":  "background-color",
		"WebkitTransition": "-webkit-transition",
		"msFlex":           "-ms-flex",
		"--brand":          "--brand",
		"borderTopWidth":   "border-top-width",
	}
	for in, want := range cases {
		assert.Equal(t, want, render.CSSProperty(in), in)
	}
}

func TestDocument(t *testing.T) {
	out := render.Document("<p>x</p>", "p{color:red}", "My <Page>")
	assert.Contains(t, out, "<title>My &lt;Page&gt;</title>")
	assert.Contains(t, out, "<style>p{color:red}</style>")
	assert.Contains(t, out, "<body>\n<p>x</p>\n</body>")
}
