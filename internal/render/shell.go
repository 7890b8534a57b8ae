package render

import (
	"bytes"
	"html/template"

	"git.home.luguber.info/inful/prerender/internal/routes"
)

const shellSource = `<!DOCTYPE html>
<html lang="{{.Lang}}">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
{{with .Title}}<title>{{.}}</title>
{{end}}{{with .Description}}<meta name="description" content="{{.}}">
{{end}}{{with .Icon}}<link rel="icon" href="{{.}}">
{{end}}{{range .Stylesheets}}<link rel="stylesheet" href="{{.}}">
{{end}}{{with .Script}}<script type="module" src="{{.}}"></script>
{{end}}</head>
<body>{{.Body}}</body>
</html>
`

var shellTemplate = template.Must(template.New("shell").Parse(shellSource))

// ShellOptions configures the document every page body is wrapped in.
type ShellOptions struct {
	Lang        string
	Title       string
	Icon        string
	Stylesheets []string
}

// Shell wraps page bodies into complete HTML documents.
type Shell struct {
	opts ShellOptions
}

// NewShell returns a Shell; an empty Lang defaults to "en".
func NewShell(opts ShellOptions) *Shell {
	if opts.Lang == "" {
		opts.Lang = "en"
	}
	return &Shell{opts: opts}
}

// Wrap renders the document for route around c. Content title and language win over
// the configured defaults. The route's client module is linked only when clientScript is set.
func (s *Shell) Wrap(route string, c Content, clientScript bool) (string, error) {
	data := struct {
		ShellOptions
		Description string
		Script      string
		Body        template.HTML
	}{ShellOptions: s.opts, Description: c.Description, Body: c.Body}
	if clientScript {
		data.Script = routes.ScriptPath(route)
	}
	if c.Title != "" {
		data.Title = c.Title
	}
	if c.Lang != "" {
		data.Lang = c.Lang
	}

	var buf bytes.Buffer
	if err := shellTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
