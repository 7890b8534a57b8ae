package htmlpass

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	ferrors "git.home.luguber.info/inful/prerender/internal/foundation/errors"
	"git.home.luguber.info/inful/prerender/internal/logfields"
	"git.home.luguber.info/inful/prerender/internal/workerpool"
)

// ErrAssetMissing indicates a referenced asset does not exist under the output root.
var ErrAssetMissing = errors.New("inline asset missing")

// ErrAssetOutsideRoot indicates a reference that resolves outside the output root.
var ErrAssetOutsideRoot = errors.New("inline asset outside output root")

const (
	faviconSelector    = `link[rel="icon"], link[rel="shortcut icon"]`
	stylesheetSelector = `link[rel="stylesheet"]`
	scriptSelector     = `script[src]`
	svgImageSelector   = `img[src$=".svg"]`
)

var (
	schemeRE  = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*:`)
	xmlDeclRE = regexp.MustCompile(`^\s*<\?xml[^>]*\?>\s*(<!DOCTYPE[^>]*>\s*)?`)
)

// AssetRef is one external reference found in a document.
type AssetRef struct {
	Tag  string // link, script or img
	Attr string // href or src
	Ref  string // attribute value as written
}

type pendingAsset struct {
	AssetRef
	sel     *goquery.Selection
	path    string
	content string
}

// InlineStats summarizes one inliner run.
type InlineStats struct {
	Removed int
	Inlined int
	Skipped int
	Bytes   int
}

// Inliner replaces references to local stylesheets, scripts and SVG images with
// their file contents so a page is self-contained.
type Inliner struct {
	root        string
	concurrency int
}

// NewInliner returns an inliner reading assets from the output root. concurrency
// bounds parallel file reads per page; values below 1 mean one read per reference.
func NewInliner(root string, concurrency int) *Inliner {
	return &Inliner{root: root, concurrency: concurrency}
}

// Inline rewrites doc.HTML. Any referenced local asset that cannot be read aborts
// with a fatal error naming the route and the path.
func (in *Inliner) Inline(ctx context.Context, doc *Document) (InlineStats, error) {
	var stats InlineStats
	d, err := goquery.NewDocumentFromReader(strings.NewReader(doc.HTML))
	if err != nil {
		return stats, ferrors.WrapError(err, ferrors.CategoryAsset, "failed to parse document for inlining").
			Fatal().WithContext("route", doc.Route).Build()
	}

	icons := d.Find(faviconSelector)
	stats.Removed = icons.Length()
	icons.Remove()

	var pending []*pendingAsset
	collect := func(selector, attr string) {
		d.Find(selector).Each(func(_ int, s *goquery.Selection) {
			ref, _ := s.Attr(attr)
			if ref == "" || isExternal(ref) {
				stats.Skipped++
				return
			}
			pending = append(pending, &pendingAsset{
				AssetRef: AssetRef{Tag: goquery.NodeName(s), Attr: attr, Ref: ref},
				sel:      s,
			})
		})
	}
	collect(stylesheetSelector, "href")
	collect(scriptSelector, "src")
	collect(svgImageSelector, "src")

	for _, p := range pending {
		path, err := in.resolve(p.Ref)
		if err != nil {
			return stats, in.assetError(doc.Route, p.Ref, err)
		}
		p.path = path
	}

	limit := in.concurrency
	if limit < 1 {
		limit = len(pending)
	}
	err = workerpool.Run(ctx, pending, limit, func(_ context.Context, p *pendingAsset) error {
		// #nosec G304 -- path is confined to the output root by resolve
		data, err := os.ReadFile(p.path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				err = fmt.Errorf("%w: %w", ErrAssetMissing, err)
			}
			return in.assetError(doc.Route, p.Ref, err)
		}
		p.content = string(data)
		return nil
	})
	if err != nil {
		return stats, err
	}

	for _, p := range pending {
		switch p.Tag {
		case "link":
			p.sel.ReplaceWithNodes(rawTextElement(atom.Style, p.content))
		case "script":
			p.sel.ReplaceWithNodes(rawTextElement(atom.Script, p.content, html.Attribute{Key: "type", Val: "module"}))
		default:
			p.sel.ReplaceWithHtml(stripXMLDeclaration(p.content))
		}
		stats.Inlined++
		stats.Bytes += len(p.content)
		slog.Debug("Asset inlined", logfields.Route(doc.Route), logfields.File(p.Ref), logfields.Bytes(len(p.content)))
	}

	out, err := d.Html()
	if err != nil {
		return stats, ferrors.WrapError(err, ferrors.CategoryAsset, "failed to serialize inlined document").
			Fatal().WithContext("route", doc.Route).Build()
	}
	doc.HTML = out
	return stats, nil
}

// resolve maps a document reference onto a file under the output root. Query strings
// and fragments are dropped.
func (in *Inliner) resolve(ref string) (string, error) {
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		ref = ref[:i]
	}
	root, err := filepath.Abs(in.root)
	if err != nil {
		return "", err
	}
	full := filepath.Join(root, filepath.FromSlash(strings.TrimPrefix(ref, "/")))
	rel, err := filepath.Rel(root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrAssetOutsideRoot, ref)
	}
	return full, nil
}

func (in *Inliner) assetError(route, ref string, cause error) error {
	return ferrors.AssetError("cannot inline referenced asset").
		WithCause(cause).
		WithContext("route", route).
		WithContext("path", ref).
		Build()
}

func isExternal(ref string) bool {
	return strings.HasPrefix(ref, "//") || schemeRE.MatchString(ref)
}

func rawTextElement(a atom.Atom, text string, attrs ...html.Attribute) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	return n
}

func stripXMLDeclaration(s string) string {
	return xmlDeclRE.ReplaceAllString(s, "")
}
