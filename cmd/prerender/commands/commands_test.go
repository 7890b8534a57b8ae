package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/prerender/internal/foundation/errors"
)

type project struct {
	dir    string
	config string
}

func newProject(t *testing.T, configYAML string, files map[string]string) *project {
	t.Helper()
	dir := t.TempDir()
	p := &project{dir: dir, config: filepath.Join(dir, "prerender.yaml")}
	require.NoError(t, os.WriteFile(p.config, []byte(configYAML), 0o600))
	for rel, content := range files {
		full := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o600))
	}
	return p
}

func (p *project) global() (*Global, *bytes.Buffer) {
	var out bytes.Buffer
	return &Global{Context: context.Background(), Out: &out}, &out
}

const siteConfig = `
pages:
  dir: src/routes
  extensions:
    .tmpl: template
    .md: markdown
output:
  directory: dist
  clean: true
document:
  stylesheets: []
minify:
  enabled: false
`

func TestBuildCmd_WritesSiteAndReport(t *testing.T) {
	p := newProject(t, siteConfig, map[string]string{
		"src/routes/index.tmpl":   "<p>home</p>",
		"src/routes/blog/post.md": "# Post\n",
		"src/assets/style.css":    "body{}",
	})
	g, out := p.global()
	reportPath := filepath.Join(p.dir, "report.json")
	metricsPath := filepath.Join(p.dir, "metrics.prom")

	err := (&BuildCmd{Report: reportPath, MetricsFile: metricsPath}).Run(g, &CLI{Config: p.config})
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(p.dir, "dist", "index.html"))
	assert.FileExists(t, filepath.Join(p.dir, "dist", "blog", "post.html"))
	assert.FileExists(t, filepath.Join(p.dir, "dist", "assets", "style.css"))
	assert.FileExists(t, reportPath)

	prom, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "prerender_build_outcomes_total")
	assert.Contains(t, out.String(), "Built 2 pages")
}

func TestBuildCmd_WarningsExitThree(t *testing.T) {
	p := newProject(t, siteConfig, map[string]string{
		"src/routes/index.tmpl": "<p>home</p>",
		"src/routes/empty.md":   "",
	})
	cli := &CLI{Config: p.config}

	g, out := p.global()
	err := (&BuildCmd{}).Run(g, cli)
	require.Error(t, err)
	assert.Equal(t, ferrors.ExitWarnings, ferrors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err))
	assert.Contains(t, out.String(), "1 warnings:")
	assert.Contains(t, out.String(), "RENDER_FALLBACK /empty")
	assert.FileExists(t, filepath.Join(p.dir, "dist", "empty.html"))

	g, _ = p.global()
	require.NoError(t, (&BuildCmd{AllowWarnings: true}).Run(g, cli))
}

func TestBuildCmd_InvalidConfig(t *testing.T) {
	p := newProject(t, "pages:\n  extensions:\n    .x: cobol\n", nil)
	g, _ := p.global()

	err := (&BuildCmd{}).Run(g, &CLI{Config: p.config})
	require.Error(t, err)
	assert.Equal(t, ferrors.ExitConfig, ferrors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err))
}

func TestBuildCmd_MissingPagesDir(t *testing.T) {
	p := newProject(t, siteConfig, nil)
	g, _ := p.global()

	err := (&BuildCmd{}).Run(g, &CLI{Config: p.config})
	require.Error(t, err)
	assert.Equal(t, ferrors.ExitBuild, ferrors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err))
}

func TestRoutesCmd_ListsRoutes(t *testing.T) {
	p := newProject(t, siteConfig, map[string]string{
		"src/routes/index.tmpl":   "<p>home</p>",
		"src/routes/blog/post.md": "# Post\n",
	})
	g, out := p.global()

	require.NoError(t, (&RoutesCmd{}).Run(g, &CLI{Config: p.config}))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "ROUTE")
	assert.Contains(t, lines[1], "/blog/post")
	assert.Contains(t, lines[1], filepath.ToSlash(filepath.Join(p.dir, "dist", "blog", "post.html")))
	assert.Contains(t, lines[2], filepath.ToSlash(filepath.Join(p.dir, "dist", "index.html")))
}

func TestRoutesCmd_OutputMatchesBuild(t *testing.T) {
	p := newProject(t, siteConfig, map[string]string{
		"src/routes/index.tmpl": "<p>home</p>",
	})
	cli := &CLI{Config: p.config}

	g, out := p.global()
	require.NoError(t, (&RoutesCmd{}).Run(g, cli))
	fields := strings.Fields(strings.Split(strings.TrimSpace(out.String()), "\n")[1])
	require.Len(t, fields, 3)

	g, _ = p.global()
	require.NoError(t, (&BuildCmd{}).Run(g, cli))
	assert.FileExists(t, filepath.FromSlash(fields[2]))
}

func TestInitCmd_WritesConfig(t *testing.T) {
	dir := t.TempDir()
	g := &Global{Context: context.Background(), Out: &bytes.Buffer{}}

	require.NoError(t, (&InitCmd{Output: dir}).Run(g, &CLI{}))
	assert.FileExists(t, filepath.Join(dir, "prerender.yaml"))
	require.Error(t, (&InitCmd{Output: dir}).Run(g, &CLI{}))
	require.NoError(t, (&InitCmd{Output: dir, Force: true}).Run(g, &CLI{}))
}

func TestCLI_LogLevelPrecedence(t *testing.T) {
	t.Setenv(envLogLevel, "")
	assert.Equal(t, "warn", string((&CLI{}).logLevel("warn")))
	assert.Equal(t, "debug", string((&CLI{Verbose: true}).logLevel("warn")))

	t.Setenv(envLogLevel, "error")
	assert.Equal(t, "error", string((&CLI{}).logLevel("warn")))
}
