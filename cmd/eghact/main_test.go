package main

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eghact/eghact/internal/errors"
	"github.com/eghact/eghact/internal/watch"
	"github.com/eghact/eghact/pkg/bridge"
	"github.com/eghact/eghact/pkg/component"
	"github.com/eghact/eghact/pkg/devtools"
	"github.com/eghact/eghact/pkg/protocol"
	"github.com/eghact/eghact/pkg/vdom"
)

// project writes a configuration and the given files into a temp dir.
func project(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	files["eghact.yaml"] = "log:\n  level: error\n"
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func run(t *testing.T, dir string, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--no-color", "--config", filepath.Join(dir, "eghact.yaml")}, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

const (
	listBefore = `
tag: ul
children:
  - tag: li
    children: [a]
`
	listAfter = `
tag: ul
props: {class: menu}
children:
  - tag: li
    children: [b]
  - tag: li
    children: [c]
`
)

func TestDiff_Text(t *testing.T) {
	dir := project(t, map[string]string{"old.yaml": listBefore, "new.yaml": listAfter})

	out, _, err := run(t, dir, "", "diff", filepath.Join(dir, "old.yaml"), filepath.Join(dir, "new.yaml"))
	require.NoError(t, err)
	assert.Equal(t, `~ props class="menu"
[0]
  [0]
    ~ text "b"
[1]
  + create <li> (1 children)
`, out)
}

func TestDiff_NoChanges(t *testing.T) {
	dir := project(t, map[string]string{"old.yaml": listBefore})
	path := filepath.Join(dir, "old.yaml")

	out, _, err := run(t, dir, "", "diff", path, path)
	require.NoError(t, err)
	assert.Equal(t, "✓ no changes\n", out)
}

func TestDiff_JSON(t *testing.T) {
	dir := project(t, map[string]string{"old.yaml": listBefore, "new.yaml": listAfter})

	out, _, err := run(t, dir, "", "diff", "--format", "json", filepath.Join(dir, "old.yaml"), filepath.Join(dir, "new.yaml"))
	require.NoError(t, err)

	var patches []patchJSON
	require.NoError(t, json.Unmarshal([]byte(out), &patches))
	require.Len(t, patches, 2)
	assert.Equal(t, "props", patches[0].Op)
	assert.Equal(t, map[string]any{"class": "menu"}, patches[0].Set)

	children := patches[1].Children
	require.Len(t, children, 2)
	assert.Equal(t, "text", children[0].Patches[0].Children[0].Patches[0].Op)
	assert.Equal(t, "b", *children[0].Patches[0].Children[0].Patches[0].Text)
	assert.Equal(t, 1, children[1].Index)
	assert.Equal(t, "create", children[1].Patches[0].Op)
	assert.Equal(t, "<li>c</li>", children[1].Patches[0].Node)
}

func TestDiff_Hex(t *testing.T) {
	dir := project(t, map[string]string{"old.yaml": listBefore, "new.yaml": listAfter})

	out, _, err := run(t, dir, "", "diff", "-f", "hex", filepath.Join(dir, "old.yaml"), filepath.Join(dir, "new.yaml"))
	require.NoError(t, err)

	raw, err := hex.DecodeString(strings.TrimSpace(out))
	require.NoError(t, err)
	patches, err := protocol.DecodePatches(protocol.NewDecoder(raw))
	require.NoError(t, err)

	prev, err := parseTree([]byte(listBefore), "old")
	require.NoError(t, err)
	next, err := parseTree([]byte(listAfter), "new")
	require.NoError(t, err)
	assert.Equal(t, vdom.FormatPatches(vdom.Diff(prev, next)), vdom.FormatPatches(patches))
}

func TestDiff_HTMLInputs(t *testing.T) {
	dir := project(t, map[string]string{
		"a.html": `<p class="x">hi</p>`,
		"b.html": "<p class=\"y\">hi</p>\n",
	})

	out, stderr, err := run(t, dir, "", "diff", "--stats", filepath.Join(dir, "a.html"), filepath.Join(dir, "b.html"))
	require.NoError(t, err)
	assert.Equal(t, "~ props class=\"y\"\n", out)
	assert.Contains(t, stderr, "backend software: 1 patches")
}

func TestDiff_Errors(t *testing.T) {
	dir := project(t, map[string]string{"old.yaml": listBefore, "bad.yaml": "{tag: p, text: x}", "empty.html": "<!-- -->"})
	old := filepath.Join(dir, "old.yaml")

	t.Run("invalid tree", func(t *testing.T) {
		_, _, err := run(t, dir, "", "diff", old, filepath.Join(dir, "bad.yaml"))
		assert.True(t, errors.HasCode(err, errors.CodeTreeFileInvalid), "got %v", err)
	})
	t.Run("empty fragment", func(t *testing.T) {
		_, _, err := run(t, dir, "", "diff", old, filepath.Join(dir, "empty.html"))
		assert.True(t, errors.HasCode(err, errors.CodeTemplateParseError), "got %v", err)
	})
	t.Run("unknown format", func(t *testing.T) {
		_, _, err := run(t, dir, "", "diff", "--format", "xml", old, old)
		assert.ErrorContains(t, err, `unknown format "xml"`)
	})
	t.Run("argument count", func(t *testing.T) {
		_, _, err := run(t, dir, "", "diff", old)
		assert.Error(t, err)
	})
}

func TestCompile(t *testing.T) {
	dir := project(t, map[string]string{"card.html": `<p class="x">hi</p><!-- note --><button onclick="go()" disabled>go</button>`})
	card := filepath.Join(dir, "card.html")

	t.Run("yaml", func(t *testing.T) {
		out, _, err := run(t, dir, "", "compile", card)
		require.NoError(t, err)

		got, err := parseTree([]byte(out), "compiled")
		require.NoError(t, err)
		want := vdom.Fragment(
			vdom.H("p", vdom.Props{"class": "x"}, "hi"),
			vdom.H("button", vdom.Props{"disabled": true}, "go"),
		)
		assert.Empty(t, vdom.Diff(got, want), "compiled:\n%s", out)
	})

	t.Run("html", func(t *testing.T) {
		out, _, err := run(t, dir, "", "compile", "--format", "html", card)
		require.NoError(t, err)
		assert.Equal(t, "<p class=\"x\">hi</p><button disabled>go</button>\n", out)
	})

	t.Run("hex from stdin", func(t *testing.T) {
		out, _, err := run(t, dir, "<em>x</em>", "compile", "-f", "hex", "-")
		require.NoError(t, err)
		raw, err := hex.DecodeString(strings.TrimSpace(out))
		require.NoError(t, err)
		tree, err := protocol.UnmarshalTree(raw)
		require.NoError(t, err)
		assert.Empty(t, vdom.Diff(tree, vdom.H("em", nil, "x")))
	})

	t.Run("empty", func(t *testing.T) {
		_, _, err := run(t, dir, "   ", "compile", "-")
		assert.True(t, errors.HasCode(err, errors.CodeTemplateParseError), "got %v", err)
	})
}

func TestInit(t *testing.T) {
	dir := project(t, map[string]string{})
	target := filepath.Join(dir, "demo")

	out, _, err := run(t, dir, "", "init", target, "--template", "fragment", "--name", "Demo")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ created fragment project in "+target)
	assert.Contains(t, out, "next: eghact preview "+filepath.Join(target, "card.html"))

	pv := newTestPreview(t, filepath.Join(target, "card.html"))
	assert.Contains(t, pv.app.HTML(), "<h2>Demo</h2>")

	t.Run("tree template diffs against itself", func(t *testing.T) {
		treeDir := filepath.Join(dir, "tree")
		_, _, err := run(t, dir, "", "init", treeDir)
		require.NoError(t, err)
		page := filepath.Join(treeDir, "page.yaml")
		out, _, err := run(t, dir, "", "diff", page, page)
		require.NoError(t, err)
		assert.Equal(t, "✓ no changes\n", out)
	})

	t.Run("existing files", func(t *testing.T) {
		_, _, err := run(t, dir, "", "init", target, "-t", "fragment")
		assert.True(t, errors.HasCode(err, errors.CodeScaffoldExists), "got %v", err)

		_, _, err = run(t, dir, "", "init", target, "-t", "fragment", "--force")
		assert.NoError(t, err)
	})

	t.Run("unknown template", func(t *testing.T) {
		_, _, err := run(t, dir, "", "init", filepath.Join(dir, "x"), "-t", "spa")
		assert.True(t, errors.HasCode(err, errors.CodeScaffoldUnknown), "got %v", err)
	})
}

func TestVersion(t *testing.T) {
	dir := project(t, map[string]string{})

	out, _, err := run(t, dir, "", "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, version+"\n", out)

	out, _, err = run(t, dir, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Version:    "+version)
	assert.Contains(t, out, "Go version:")
}

func TestConfigErrors(t *testing.T) {
	dir := t.TempDir()
	_, _, err := run(t, dir, "", "diff", "a.yaml", "b.yaml")
	assert.True(t, errors.HasCode(err, errors.CodeConfigInvalid), "got %v", err)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestPreview(t *testing.T, path string) *preview {
	t.Helper()
	backend := bridge.NewSoftware()
	pv, err := newPreview(context.Background(), path, backend, discardLogger(), false)
	require.NoError(t, err)
	t.Cleanup(pv.app.Unmount)
	return pv
}

func TestPreview_Reload(t *testing.T) {
	dir := project(t, map[string]string{"page.yaml": listBefore})
	path := filepath.Join(dir, "page.yaml")
	pv := newTestPreview(t, path)
	assert.Equal(t, "<ul><li>a</li></ul>", pv.app.HTML())

	var observed []string
	pv.app.Manager().Observe(func(_ *component.Instance, patches []vdom.Patch) {
		observed = append(observed, vdom.FormatPatches(patches))
	})

	require.NoError(t, os.WriteFile(path, []byte(listAfter), 0o644))
	assert.True(t, pv.reload(context.Background()))
	assert.Equal(t, `<ul class="menu"><li>b</li><li>c</li></ul>`, pv.app.HTML())
	assert.Len(t, observed, 1)

	t.Run("invalid file keeps tree", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, []byte("{tag: p, text: x}"), 0o644))
		assert.False(t, pv.reload(context.Background()))
		assert.Equal(t, `<ul class="menu"><li>b</li><li>c</li></ul>`, pv.app.HTML())
	})

	t.Run("removal keeps tree", func(t *testing.T) {
		pv.onChange(context.Background(), []watch.Change{{Path: path, Removed: true}})
		assert.Equal(t, `<ul class="menu"><li>b</li><li>c</li></ul>`, pv.app.HTML())
	})
}

func TestPreview_HTMLSource(t *testing.T) {
	dir := project(t, map[string]string{"card.html": `<p>one</p>`})
	path := filepath.Join(dir, "card.html")
	pv := newTestPreview(t, path)
	assert.Equal(t, "<p>one</p>", pv.app.HTML())

	require.NoError(t, os.WriteFile(path, []byte(`<p>two</p>`), 0o644))
	pv.onChange(context.Background(), []watch.Change{{Path: path, Type: watch.ChangeMarkup}})
	assert.Equal(t, "<p>two</p>", pv.app.HTML())
}

func TestInspect(t *testing.T) {
	dir := project(t, map[string]string{"page.yaml": listBefore})
	pv := newTestPreview(t, filepath.Join(dir, "page.yaml"))

	backend := bridge.NewSoftware()
	backend.DiffTrees(context.Background(), vdom.Text("a"), vdom.Text("b"))
	srv := devtools.NewServer(pv.app, devtools.WithBackend(backend), devtools.WithLogger(discardLogger()))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		srv.Close()
		ts.Close()
	})

	addr := strings.TrimPrefix(ts.URL, "http://")
	out, _, err := run(t, dir, "", "inspect", "--addr", addr)
	require.NoError(t, err)

	root := pv.app.Root()
	assert.Contains(t, out, "Preview #")
	assert.Contains(t, out, "(Mounted, 1 renders)")
	assert.Contains(t, out, "backend software")
	assert.Contains(t, out, "diff_trees: 1 calls")
	assert.True(t, strings.HasPrefix(out, "Preview #"+strconv.FormatUint(root.ID(), 10)), "got %q", out)
}

func TestInspect_Unreachable(t *testing.T) {
	dir := project(t, map[string]string{})
	_, _, err := run(t, dir, "", "inspect", "--addr", "127.0.0.1:1")
	assert.ErrorContains(t, err, "connect to devtools")
}
