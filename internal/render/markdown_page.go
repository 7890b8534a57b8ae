package render

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"os"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"git.home.luguber.info/inful/prerender/internal/frontmatter"
)

var markdownEngine = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	// Pages embed inline SVG and other raw markup.
	goldmark.WithRendererOptions(html.WithUnsafe()),
)

// MarkdownPage renders a Markdown file. Its frontmatter may set title and lang.
type MarkdownPage struct {
	path string
}

// NewMarkdownPage returns a page for the file at path. The file is read on every
// render so the live server picks up edits.
func NewMarkdownPage(path string) *MarkdownPage {
	return &MarkdownPage{path: path}
}

// Render implements Page.
func (p *MarkdownPage) Render(_ context.Context, _ *Request) (Content, error) {
	src, err := os.ReadFile(p.path)
	if err != nil {
		return Content{}, err
	}
	meta, body, err := frontmatter.Parse(src)
	if err != nil {
		return Content{}, fmt.Errorf("%s: %w", p.path, err)
	}

	var buf bytes.Buffer
	if err := markdownEngine.Convert(body, &buf); err != nil {
		return Content{}, fmt.Errorf("%s: %w", p.path, err)
	}
	// #nosec G203 -- page sources are project files
	return Content{
		Body:        template.HTML(buf.String()),
		Title:       meta.Title,
		Description: meta.Description,
		Lang:        meta.Lang,
	}, nil
}
