package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/pagecraft/internal/testutils"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const legacyDoc = `{"components":[{"id":"a","type":"div","props":{"className":"box"},"children":[{"id":"b","type":"p","props":{"children":"hi <there>"}}]}]}`

// run executes the root command with args and returns stdout.
// Flag values are reset first because cobra keeps them between executions.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	t.Setenv("PAGECRAFT_STORE_DRIVER", "memory")

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "pagecraft version "))
}

func TestMigrate_FlattensLegacyDocument(t *testing.T) {
	out, err := run(t, legacyDoc, "migrate", "-")
	require.NoError(t, err)

	var doc struct {
		Version    int `json:"version"`
		Components []struct {
			ID       string `json:"id"`
			ParentID string `json:"parentId"`
		} `json:"components"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, 2, doc.Version)
	require.Len(t, doc.Components, 2)
	assert.Equal(t, "a", doc.Components[1].ParentID)
}

func TestMigrate_InPlace(t *testing.T) {
	path := testutils.WriteDocument(t, "doc.json", legacyDoc)

	_, err := run(t, "", "migrate", "--in-place", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"parentId":"a"`)
	assert.NotContains(t, string(data), `"children":[`)
}

func TestMigrate_InPlaceNeedsFile(t *testing.T) {
	_, err := run(t, legacyDoc, "migrate", "--in-place", "-")
	assert.Error(t, err)
}

func TestRender_Fragment(t *testing.T) {
	path := testutils.WriteDocument(t, "doc.json", legacyDoc)

	out, err := run(t, "", "render", path)
	require.NoError(t, err)
	assert.Equal(t, `<div class="box"><p>hi &lt;there&gt;</p></div>`+"\n", out)
}

func TestRender_ExportWithCSS(t *testing.T) {
	doc := testutils.WriteDocument(t, "doc.yaml", "components:\n  - id: a\n    type: h1\n    props:\n      children: Title\n")
	css := testutils.WriteDocument(t, "site.css", "h1 { color: red; }")

	out, err := run(t, "", "render", doc, "--export", "--css", css, "--title", "Home")
	require.NoError(t, err)
	assert.Contains(t, out, "<title>Home</title>")
	assert.Contains(t, out, "h1 { color: red; }")
	assert.Contains(t, out, "<h1>Title</h1>")
}

func TestRender_PublishNeedsBucket(t *testing.T) {
	path := testutils.WriteDocument(t, "doc.json", legacyDoc)

	_, err := run(t, "", "render", path, "--publish", "home")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish.bucket")
}

func TestImport_TemplateCreatesDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.json")

	_, err := run(t, "", "import", path, "--template", "hero")
	require.NoError(t, err)

	out, err := run(t, "", "inspect", path, "--format", "json")
	require.NoError(t, err)

	var summary struct {
		Nodes int            `json:"nodes"`
		Roots int            `json:"roots"`
		Types map[string]int `json:"types"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, 4, summary.Nodes)
	assert.Equal(t, 1, summary.Roots)
	assert.Equal(t, 1, summary.Types["section"])
}

func TestImport_PayloadUnderParent(t *testing.T) {
	path := testutils.WriteDocument(t, "doc.json", legacyDoc)
	payload := `{"type":"ul","children":[{"type":"li","props":{"children":"one"}}]}`

	_, err := run(t, payload, "import", path, "-", "--parent", "a")
	require.NoError(t, err)

	out, err := run(t, "", "render", path)
	require.NoError(t, err)
	assert.Contains(t, out, `<ul><li>one</li></ul></div>`)
}

func TestImport_NeedsPayload(t *testing.T) {
	path := testutils.WriteDocument(t, "doc.json", legacyDoc)

	_, err := run(t, "", "import", path)
	assert.Error(t, err)
}

func TestInspect_Mermaid(t *testing.T) {
	path := testutils.WriteDocument(t, "doc.json", legacyDoc)

	out, err := run(t, "", "inspect", path, "--format", "mermaid", "--highlight", "b")
	require.NoError(t, err)
	assert.Contains(t, out, "graph TD")
	assert.Contains(t, out, "a --> b")
}

func TestInspect_Outline(t *testing.T) {
	path := testutils.WriteDocument(t, "doc.json", legacyDoc)

	out, err := run(t, "", "inspect", path)
	require.NoError(t, err)
	assert.Contains(t, out, "**a**")
	assert.Contains(t, out, "**b**")
}

func TestInspect_UnknownFormat(t *testing.T) {
	path := testutils.WriteDocument(t, "doc.json", legacyDoc)

	_, err := run(t, "", "inspect", path, "--format", "xml")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	clean := testutils.WriteDocument(t, "clean.json", legacyDoc)
	out, err := run(t, "", "validate", clean)
	require.NoError(t, err)
	assert.Contains(t, out, "2 components, schema v2 (migrated")

	linty := testutils.WriteDocument(t, "linty.json", `{"version":2,"components":[{"id":"i","type":"img"}]}`)
	out, err = run(t, "", "validate", linty)
	require.NoError(t, err)
	assert.Contains(t, out, "warning: i: image without src")

	_, err = run(t, "", "validate", "--strict", linty)
	assert.Error(t, err)

	broken := testutils.WriteDocument(t, "broken.json", `{"version":2,"components":[{"id":"a","type":"div"},{"id":"a","type":"p"}]}`)
	_, err = run(t, "", "validate", broken)
	assert.Error(t, err)
}
