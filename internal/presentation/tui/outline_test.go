package tui_test

import (
	"bytes"
	"testing"

	"github.com/aretw0/pagecraft/internal/presentation/tui"
	"github.com/aretw0/pagecraft/internal/testutils"
	"github.com/aretw0/pagecraft/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestOutline(t *testing.T) {
	nodes := []domain.Node{
		{ID: "hero", Type: "section"},
		{ID: "h", Type: "h1", ParentID: "hero", Props: domain.Props{"children": domain.String("Hello  world")}},
		{ID: "about", Type: "section", Props: domain.Props{"pageId": domain.String("about")}},
		{ID: "btn", Type: "button", ParentID: "hero", Props: domain.Props{
			"style": domain.StyleValue(domain.Style{"color": "red", "padding": "4px"}),
		}},
	}

	want := "## Page `home`\n\n" +
		"- `section` **hero**\n" +
		"  - `h1` **h**: Hello world\n" +
		"  - `button` **btn** _(2 style rules)_\n" +
		"\n" +
		"## Page `about`\n\n" +
		"- `section` **about**\n" +
		"\n"
	assert.Equal(t, want, tui.Outline(nodes))
}

func TestOutline_MigratedDocument(t *testing.T) {
	eng := testutils.LoadEngine(t, `[{"id":"a","type":"div","children":[{"id":"b","type":"p","props":{"children":"hi"}}]}]`)

	assert.Equal(t, "## Page `home`\n\n- `div` **a**\n  - `p` **b**: hi\n\n", tui.Outline(eng.Tree().List()))
}

func TestOutline_Empty(t *testing.T) {
	assert.Equal(t, "_empty document_\n", tui.Outline(nil))
}

func TestRendererAndBanner(t *testing.T) {
	out, err := tui.NewRenderer()("# Title")
	assert.NoError(t, err)
	assert.Contains(t, out, "Title")

	var buf bytes.Buffer
	tui.PrintBanner(&buf)
	assert.NotEmpty(t, buf.String())
}
