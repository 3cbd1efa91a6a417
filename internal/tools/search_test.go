package tools

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func TestListFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"b/panel.component.ts":               "",
		"a/list.component.ts":                "",
		"a/list.component.html":              "",
		"a/widget.service.ts":                "",
		"node_modules/x/vendor.component.ts": "",
	})

	files, err := ListFiles(root, ".component.ts")
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(root, "a/list.component.ts"),
		filepath.Join(root, "b/panel.component.ts"),
		filepath.Join(root, "node_modules/x/vendor.component.ts"),
	}, files)
}

func TestListFiles_WalksEveryDirectory(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a/x.component.html":        "",
		"dist/a/x.component.html":   "",
		"coverage/x.component.html": "",
		".git/x.component.html":     "",
	})

	files, err := ListFiles(root, ".component.html")
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(root, ".git/x.component.html"),
		filepath.Join(root, "a/x.component.html"),
		filepath.Join(root, "coverage/x.component.html"),
		filepath.Join(root, "dist/a/x.component.html"),
	}, files)
}

func TestListFiles_MissingRoot(t *testing.T) {
	_, err := ListFiles(filepath.Join(t.TempDir(), "nope"), ".e2e.ts")
	assert.Error(t, err)
}

func TestNewTextSearcher(t *testing.T) {
	s, err := NewTextSearcher(SearchToolGrep, nil)
	require.NoError(t, err)
	assert.IsType(t, &GrepSearcher{}, s)

	s, err = NewTextSearcher(SearchToolBuiltin, nil)
	require.NoError(t, err)
	assert.IsType(t, &WalkSearcher{}, s)

	_, err = NewTextSearcher("ripgrep", nil)
	assert.Error(t, err)
}

func TestWalkSearcher_Search(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"bar/bar.component.html":   `<span>{{ value | highlight }}</span>`,
		"baz/baz.component.html":   `<span>{{ value }}</span>`,
		"bar/bar.component.ts":     `// highlight`,
		"qux/qux.component.html":   "<div>\n<p adf-highlight></p>\n</div>",
		"case/case.component.html": `<span>HIGHLIGHT</span>`,
	})

	searcher := &WalkSearcher{}
	matches, err := searcher.Search(context.Background(), "highlight", root, "html")
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		filepath.Join(root, "bar/bar.component.html"),
		filepath.Join(root, "qux/qux.component.html"),
	}, matches)
}

func TestWalkSearcher_NoMatches(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.component.html": "<div></div>"})

	matches, err := (&WalkSearcher{}).Search(context.Background(), "highlight", root, "html")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestWalkSearcher_CancelledContext(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.component.html": "highlight"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := (&WalkSearcher{}).Search(ctx, "highlight", root, "html")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGrepSearcher_Search(t *testing.T) {
	if _, err := exec.LookPath("grep"); err != nil {
		t.Skip("grep not available")
	}

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"bar/bar.component.html": `<span>{{ value | highlight }}</span>`,
		"baz/baz.component.html": `<span>{{ value }}</span>`,
		"bar/bar.component.ts":   `// highlight`,
	})

	searcher := &GrepSearcher{}
	matches, err := searcher.Search(context.Background(), "highlight", root, "html")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "bar/bar.component.html")}, matches)

	none, err := searcher.Search(context.Background(), "not-present", root, "html")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSearchers_AgreeOnNestedBuildDirectories(t *testing.T) {
	if _, err := exec.LookPath("grep"); err != nil {
		t.Skip("grep not available")
	}

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a/x.component.html":        "<p>{{ v | highlight }}</p>",
		"dist/a/x.component.html":   "<p>{{ v | highlight }}</p>",
		"coverage/x.component.html": "<p>{{ v | highlight }}</p>",
		"b/y.component.html":        "<p></p>",
	})

	walked, err := (&WalkSearcher{}).Search(context.Background(), "highlight", root, "html")
	require.NoError(t, err)
	grepped, err := (&GrepSearcher{}).Search(context.Background(), "highlight", root, "html")
	require.NoError(t, err)

	assert.Len(t, walked, 3)
	assert.ElementsMatch(t, grepped, walked)
}
