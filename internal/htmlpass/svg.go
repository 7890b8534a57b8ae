package htmlpass

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/svg"
	"golang.org/x/net/html"

	"git.home.luguber.info/inful/prerender/internal/logfields"
)

const svgMediaType = "image/svg+xml"

// SVGStats summarizes one optimizer run over a document.
type SVGStats struct {
	Fragments int
	Replaced  int
	Saved     int
}

// SVGOptimizer minifies inline <svg> elements. A fragment is replaced only when the
// minified form is strictly shorter; everything outside replaced fragments is left
// byte-for-byte as rendered.
type SVGOptimizer struct {
	m *minify.M
}

// NewSVGOptimizer returns an optimizer using precision significant digits.
// A precision of 0 keeps numbers as written.
func NewSVGOptimizer(precision int) *SVGOptimizer {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.Add(svgMediaType, &svg.Minifier{Precision: precision})
	return &SVGOptimizer{m: m}
}

// Optimize rewrites doc.HTML. It performs no I/O and cannot fail; fragments the
// minifier rejects are kept as they are.
func (o *SVGOptimizer) Optimize(doc *Document) SVGStats {
	var stats SVGStats
	src := []byte(doc.HTML)
	spans := svgSpans(src)
	if len(spans) == 0 {
		return stats
	}

	var out bytes.Buffer
	out.Grow(len(src))
	last := 0
	for _, s := range spans {
		stats.Fragments++
		frag := src[s.start:s.end]
		small, err := o.m.Bytes(svgMediaType, frag)
		if err != nil {
			slog.Debug("SVG fragment left unoptimized", logfields.Route(doc.Route), logfields.Error(err))
			continue
		}
		if len(small) >= len(frag) {
			continue
		}
		out.Write(src[last:s.start])
		out.Write(small)
		last = s.end
		stats.Replaced++
		stats.Saved += len(frag) - len(small)
	}
	if stats.Replaced == 0 {
		return stats
	}
	out.Write(src[last:])
	doc.HTML = out.String()
	return stats
}

type span struct{ start, end int }

// svgSpans returns the byte ranges of top-level <svg> elements in document order.
// Nested svg elements belong to their outermost ancestor. Unclosed elements are ignored.
func svgSpans(src []byte) []span {
	z := html.NewTokenizer(bytes.NewReader(src))
	var (
		spans  []span
		offset int
		depth  int
		start  int
	)
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if !errors.Is(z.Err(), io.EOF) {
				slog.Debug("HTML tokenizer stopped", logfields.Error(z.Err()))
			}
			return spans
		}
		n := len(z.Raw())
		switch tt {
		case html.StartTagToken:
			if isSVG(z) {
				if depth == 0 {
					start = offset
				}
				depth++
			}
		case html.EndTagToken:
			if depth > 0 && isSVG(z) {
				depth--
				if depth == 0 {
					spans = append(spans, span{start: start, end: offset + n})
				}
			}
		}
		offset += n
	}
}

func isSVG(z *html.Tokenizer) bool {
	name, _ := z.TagName()
	return strings.EqualFold(string(name), "svg")
}
