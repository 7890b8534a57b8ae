package minify

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleModule = `// greeting helper
export function greet(name) {
  const message = "Hello, " + name + "!";
  console.log(message);
  return message;
}

greet("world");
`

func write(t *testing.T, root, rel, content string) string {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o600))
	return full
}

func newMinifier(t *testing.T) *TreeMinifier {
	t.Helper()
	m, err := New(Options{Concurrency: 4})
	require.NoError(t, err)
	return m
}

func TestCollect_SortedScriptsOnly(t *testing.T) {
	root := t.TempDir()
	write(t, root, "z.js", "x")
	write(t, root, "a/b.mjs", "x")
	write(t, root, "index.html", "x")
	write(t, root, "style.css", "x")

	files, err := newMinifier(t).Collect(root)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "a", "b.mjs"), filepath.Join(root, "z.js")}, files)
}

func TestCollect_ExtensionCaseInsensitive(t *testing.T) {
	root := t.TempDir()
	upper := write(t, root, "vendor/APP.JS", "x")
	write(t, root, "README.MD", "x")

	m, err := New(Options{Extensions: []string{".Js"}})
	require.NoError(t, err)
	files, err := m.Collect(root)
	require.NoError(t, err)
	assert.Equal(t, []string{upper}, files)
}

func TestRun_MinifiesEveryScript(t *testing.T) {
	root := t.TempDir()
	paths := []string{
		write(t, root, "index.js", sampleModule),
		write(t, root, "blog/post.js", sampleModule),
	}

	report, err := newMinifier(t).Run(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Minified)
	assert.Zero(t, report.Failed)

	for _, p := range paths {
		got, err := os.ReadFile(p)
		require.NoError(t, err)
		assert.Less(t, len(got), len(sampleModule))
		assert.NotContains(t, string(got), "greeting helper")
		assert.Contains(t, string(got), "Hello, ")
	}
}

func TestRun_InvalidFileKeptAndOthersProcessed(t *testing.T) {
	root := t.TempDir()
	bad := write(t, root, "bad.js", "function (")
	good := write(t, root, "good.js", sampleModule)

	report, err := newMinifier(t).Run(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Minified)
	assert.Equal(t, 1, report.Failed)

	warnings := report.Warnings()
	require.Len(t, warnings, 1)
	assert.Equal(t, bad, warnings[0].Path)
	assert.True(t, errors.Is(warnings[0].Warning, ErrTransformFailed))

	got, err := os.ReadFile(bad)
	require.NoError(t, err)
	assert.Equal(t, "function (", string(got))

	minified, err := os.ReadFile(good)
	require.NoError(t, err)
	assert.Less(t, len(minified), len(sampleModule))
}

func TestMinifyFile_EmptyOutputKeepsOriginal(t *testing.T) {
	root := t.TempDir()
	src := "// only a comment\n"
	p := write(t, root, "empty.js", src)

	res := newMinifier(t).MinifyFile(p)
	require.Error(t, res.Warning)
	assert.True(t, errors.Is(res.Warning, ErrEmptyOutput))

	got, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, src, string(got))
}

func TestRun_NoScripts(t *testing.T) {
	root := t.TempDir()
	write(t, root, "index.html", "<html></html>")

	report, err := newMinifier(t).Run(context.Background(), root)
	require.NoError(t, err)
	assert.Empty(t, report.Files)
}

func TestRun_IdempotentOutput(t *testing.T) {
	a := write(t, t.TempDir(), "x.js", sampleModule)
	b := write(t, t.TempDir(), "x.js", sampleModule)
	m := newMinifier(t)
	m.MinifyFile(a)
	m.MinifyFile(b)

	ga, _ := os.ReadFile(a)
	gb, _ := os.ReadFile(b)
	assert.Equal(t, string(ga), string(gb))
	assert.False(t, strings.Contains(string(ga), "\n\n"))
}

func TestNew_UnknownTarget(t *testing.T) {
	_, err := New(Options{Target: "es1999"})
	require.Error(t, err)
}
