package render

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/url"
	"path/filepath"
)

// PageData is the data a template page is executed with.
type PageData struct {
	Route string
	Path  string
	Query url.Values
	Title string
}

// TemplatePage renders an html/template file. A template may set the document
// title by defining a "title" block.
type TemplatePage struct {
	tmpl *template.Template
}

// NewTemplatePage parses the template at path.
func NewTemplatePage(path string) (*TemplatePage, error) {
	tmpl, err := template.New(filepath.Base(path)).ParseFiles(path)
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", path, err)
	}
	return &TemplatePage{tmpl: tmpl}, nil
}

// Render implements Page.
func (p *TemplatePage) Render(_ context.Context, req *Request) (Content, error) {
	data := PageData{Route: req.Route, Path: req.Path, Query: req.Query}

	var title string
	if t := p.tmpl.Lookup("title"); t != nil {
		var buf bytes.Buffer
		if err := t.Execute(&buf, data); err != nil {
			return Content{}, err
		}
		title = string(bytes.TrimSpace(buf.Bytes()))
		data.Title = title
	}

	var buf bytes.Buffer
	if err := p.tmpl.Execute(&buf, data); err != nil {
		return Content{}, err
	}
	// #nosec G203 -- output of html/template is already escaped
	return Content{Body: template.HTML(buf.String()), Title: title}, nil
}
