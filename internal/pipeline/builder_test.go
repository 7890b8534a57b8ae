package pipeline

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/prerender/internal/config"
	ferrors "git.home.luguber.info/inful/prerender/internal/foundation/errors"
	"git.home.luguber.info/inful/prerender/internal/render"
	"git.home.luguber.info/inful/prerender/internal/routes"
)

type project struct {
	root   string
	pages  string
	assets string
	out    string
	cfg    *config.Config
}

func newProject(t *testing.T) *project {
	t.Helper()
	root := t.TempDir()
	p := &project{
		root:   root,
		pages:  filepath.Join(root, "src", "routes"),
		assets: filepath.Join(root, "src", "assets"),
		out:    filepath.Join(root, "dist"),
	}
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Pages.Dir = p.pages
	cfg.Output.Directory = p.out
	cfg.Assets.Dir = p.assets
	cfg.Document.Stylesheets = []string{"/assets/style.css"}
	off := false
	cfg.Minify.Enabled = &off
	p.cfg = cfg

	require.NoError(t, os.MkdirAll(p.assets, 0o755))
	return p
}

func (p *project) write(t *testing.T, dir, rel, content string) {
	t.Helper()
	full := filepath.Join(dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o600))
}

func (p *project) read(t *testing.T, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(p.out, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

func keep() *bool {
	off := false
	return &off
}

// hydrated marks a page as shipping a client module.
type hydrated struct{ render.Page }

func (hydrated) HasClientScript() bool { return true }

// hydratedLoaders treats template pages as hydrated.
func hydratedLoaders(cfg *config.Config) render.Loaders {
	loaders := render.LoadersFromConfig(cfg)
	tmpl := loaders[".tmpl"]
	loaders[".tmpl"] = func(r routes.Route) (render.Page, error) {
		page, err := tmpl(r)
		if err != nil {
			return nil, err
		}
		return hydrated{page}, nil
	}
	return loaders
}

func (p *project) builder(opts Options) *Builder {
	opts.CommandOutput = io.Discard
	return NewBuilder(p.cfg, opts)
}

func scenario(t *testing.T) *project {
	t.Helper()
	p := newProject(t)
	p.write(t, p.pages, "index.tmpl", `{{define "title"}}Home{{end}}<main><h1>Welcome</h1><svg viewBox="0 0 10 10"><path d="M 1.00000 1.00000 L 9.00000 9.00000"/></svg></main>`)
	p.write(t, p.pages, "about.md", "---\ntitle: About us\n---\n# About\n\nHello.\n")
	p.write(t, p.pages, "blog/post.tmpl", `<article>{{.Route}}</article>`)
	p.write(t, p.assets, "style.css", "body { color: red }\n")
	return p
}

func TestBuild_Scenario(t *testing.T) {
	p := scenario(t)

	report, err := p.builder(Options{}).Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, OutcomeSuccess, report.Outcome)
	assert.Equal(t, 3, report.RoutesDiscovered)
	assert.Equal(t, 3, report.PagesWritten)
	assert.Positive(t, report.BytesWritten)
	assert.Zero(t, report.PagesFallback)
	assert.NotEmpty(t, report.BuildID)
	assert.NotEmpty(t, report.OutputHash)
	assert.Positive(t, report.SVGBytesSaved)

	index := p.read(t, "index.html")
	assert.True(t, strings.HasPrefix(strings.ToLower(index), "<!doctype html>"))
	assert.Contains(t, index, "<title>Home</title>")
	assert.Contains(t, index, "<h1>Welcome</h1>")
	assert.Contains(t, index, `href="/assets/style.css"`)
	assert.NotContains(t, index, "<script", "template pages ship no client module")
	assert.NotContains(t, index, "1.00000")

	about := p.read(t, "about.html")
	assert.Contains(t, about, "<title>About us</title>")
	assert.Contains(t, about, "About</h1>")

	post := p.read(t, "blog/post.html")
	assert.Contains(t, post, "<article>/blog/post</article>")
	assert.NotContains(t, post, "<script")

	assert.Equal(t, "body { color: red }\n", p.read(t, "assets/style.css"))
}

func TestBuild_StagesFollowConfiguration(t *testing.T) {
	p := newProject(t)
	p.cfg.Output.Clean = keep()
	p.cfg.Assets.Dir = ""

	names := func(defs []StageDef) []StageName {
		out := make([]StageName, len(defs))
		for i, d := range defs {
			out[i] = d.Name
		}
		return out
	}
	assert.Equal(t, []StageName{StageDiscoverRoutes, StageRenderPages}, names(p.builder(Options{}).Stages()))

	on := true
	p.cfg.Minify.Enabled = &on
	p.cfg.Output.Clean = nil
	p.cfg.Build.Commands = [][]string{{"true"}}
	assert.Equal(t, []StageName{
		StagePrepareOutput, StageRunCommands, StageDiscoverRoutes, StageRenderPages, StageMinifyScripts,
	}, names(p.builder(Options{}).Stages()))
}

func TestBuild_OptionsOverrideDirectories(t *testing.T) {
	p := newProject(t)
	b := NewBuilder(p.cfg, Options{OutputDir: "/tmp/x", PagesDir: "/tmp/y"})
	assert.Equal(t, "/tmp/x", b.OutputDir())
	assert.Equal(t, "/tmp/y", b.PagesDir())
}

func TestBuild_FailingPageWritesFallbackAndWarns(t *testing.T) {
	p := scenario(t)
	loaders := render.LoadersFromConfig(p.cfg)
	loaders[".tmpl"] = func(r routes.Route) (render.Page, error) {
		if r.Path == "/blog/post" {
			return render.PageFunc(func(context.Context, *render.Request) (render.Content, error) {
				return render.Content{}, errors.New("boom")
			}), nil
		}
		return render.NewTemplatePage(r.Source)
	}

	report, err := p.builder(Options{Loaders: loaders}).Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, OutcomeWarning, report.Outcome)
	assert.Equal(t, 3, report.PagesWritten)
	assert.Equal(t, 1, report.PagesFallback)

	warnings := report.WarningIssues()
	require.Len(t, warnings, 1)
	assert.Equal(t, IssueRenderFallback, warnings[0].Code)
	assert.Equal(t, "/blog/post", warnings[0].Subject)
	assert.Equal(t, 1, report.StageCounts[StageRenderPages].Warning)
	require.Len(t, report.Warnings, 1)
	assert.True(t, ferrors.HasCategory(report.Warnings[0], ferrors.CategoryRender))
	assert.True(t, errors.Is(report.Warnings[0], render.ErrPageFailed))

	assert.Contains(t, p.read(t, "blog/post.html"), "404 Not Found")
	assert.Contains(t, p.read(t, "index.html"), "Welcome")
}

func TestBuild_Idempotent(t *testing.T) {
	p := scenario(t)
	p.cfg.Minify.Enabled = nil
	p.write(t, p.assets, "app.js", "export class Counter {\n  constructor(start) { this.value = start; }\n}\nexport const counter = new Counter(1);\n")
	p.write(t, p.out, "index.js", "function greet(name) { return 'hi ' + name; }\ngreet('x');\n")

	first, err := p.builder(Options{}).Build(context.Background())
	require.NoError(t, err)
	firstScript := p.read(t, "assets/app.js")
	second, err := p.builder(Options{}).Build(context.Background())
	require.NoError(t, err)

	assert.NotEqual(t, first.BuildID, second.BuildID)
	assert.Equal(t, 1, second.ScriptsMinified)
	assert.Equal(t, firstScript, p.read(t, "assets/app.js"), "scripts are minified from fresh copies")
	assert.Equal(t, first.OutputHash, second.OutputHash)
	assert.NoFileExists(t, filepath.Join(p.out, "index.js"))
}

func TestBuild_CleanRemovesStaleFiles(t *testing.T) {
	p := scenario(t)
	p.write(t, p.out, "stale.html", "old")

	_, err := p.builder(Options{}).Build(context.Background())
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(p.out, "stale.html"))
}

func inlineProject(t *testing.T) *project {
	t.Helper()
	p := newProject(t)
	p.cfg.Output.Clean = keep()
	p.cfg.Assets.Dir = ""
	p.cfg.Document.Stylesheets = []string{"/style.css"}
	p.cfg.Document.Icon = "/favicon.ico"
	p.write(t, p.pages, "index.tmpl", `<main>hi</main>`)
	p.write(t, p.out, "style.css", "main{color:blue}")
	p.write(t, p.out, "index.js", "console.log(1)")
	return p
}

func TestBuild_InlineEmbedsAssets(t *testing.T) {
	p := inlineProject(t)

	report, err := p.builder(Options{Inline: true, Loaders: hydratedLoaders(p.cfg)}).Build(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Inline)
	assert.Equal(t, 2, report.AssetsInlined)

	index := p.read(t, "index.html")
	assert.Contains(t, index, "main{color:blue}")
	assert.Contains(t, index, "console.log(1)")
	assert.NotContains(t, index, `href="/style.css"`)
	assert.NotContains(t, index, `src="/index.js"`)
	assert.NotContains(t, index, "favicon")
}

func TestBuild_InlineMarkdownSite(t *testing.T) {
	p := newProject(t)
	p.write(t, p.pages, "index.md", "# Notes\n\nPlain page.\n")
	p.write(t, p.assets, "style.css", "h1{color:green}")

	report, err := p.builder(Options{Inline: true}).Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, report.Outcome)
	assert.Equal(t, 1, report.AssetsInlined)

	index := p.read(t, "index.html")
	assert.Contains(t, index, "h1{color:green}")
	assert.Contains(t, index, "Notes</h1>")
	assert.NotContains(t, index, "<script")
}

func TestBuild_InlineMissingAssetIsFatal(t *testing.T) {
	p := inlineProject(t)
	require.NoError(t, os.Remove(filepath.Join(p.out, "style.css")))

	report, err := p.builder(Options{Inline: true, Loaders: hydratedLoaders(p.cfg)}).Build(context.Background())
	require.Error(t, err)
	assert.Equal(t, OutcomeFailed, report.Outcome)
	require.NotEmpty(t, report.Issues)
	issue := report.Issues[len(report.Issues)-1]
	assert.Equal(t, IssueMissingAsset, issue.Code)
	assert.Equal(t, StageRenderPages, issue.Stage)
	assert.Equal(t, "/", issue.Subject)
	assert.Empty(t, report.OutputHash)
}

func TestBuild_CanceledContext(t *testing.T) {
	p := scenario(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := p.builder(Options{}).Build(ctx)
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryCanceled))
	assert.Equal(t, OutcomeCanceled, report.Outcome)
	assert.Zero(t, report.PagesWritten)
}

func TestBuild_MissingPagesDirIsFatal(t *testing.T) {
	p := newProject(t)

	report, err := p.builder(Options{}).Build(context.Background())
	require.Error(t, err)
	assert.Equal(t, OutcomeFailed, report.Outcome)
	assert.Equal(t, IssueDiscoveryFailure, report.Issues[0].Code)
	assert.True(t, errors.Is(err, routes.ErrDiscoveryFailed))
}

func TestBuild_CommandFailureIsFatal(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	p := scenario(t)
	p.cfg.Build.Commands = [][]string{{"sh", "-c", "exit 0"}, {"sh", "-c", "exit 4"}}

	report, err := p.builder(Options{}).Build(context.Background())
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryCommand))
	assert.Equal(t, OutcomeFailed, report.Outcome)
	assert.Equal(t, IssueCommandFailed, report.Issues[0].Code)
	assert.Zero(t, report.PagesWritten)
}

func TestBuild_MinifiesScripts(t *testing.T) {
	p := scenario(t)
	on := true
	p.cfg.Minify.Enabled = &on
	p.write(t, p.assets, "app.js", "export function add(first, second) {\n  // sum\n  return first + second;\n}\n")
	p.write(t, p.assets, "broken.js", "function (\n")

	report, err := p.builder(Options{}).Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, OutcomeWarning, report.Outcome)
	assert.Equal(t, 1, report.ScriptsMinified)
	assert.Equal(t, 1, report.ScriptsFailed)
	assert.NotContains(t, p.read(t, "assets/app.js"), "// sum")
	assert.Equal(t, "function (\n", p.read(t, "assets/broken.js"))

	warnings := report.WarningIssues()
	require.Len(t, warnings, 1)
	assert.Equal(t, IssueMinifyFailed, warnings[0].Code)
	assert.Equal(t, "assets/broken.js", warnings[0].Subject)
}
