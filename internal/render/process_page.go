package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"os"
	"os/exec"
	"strings"
)

// ProcessPage renders a page by running an external command with the page source as
// its last argument. Standard output is the page body.
type ProcessPage struct {
	command []string
	source  string
	dir     string
}

// NewProcessPage returns a page that runs command (e.g. ["bun", "run"]) on source in dir.
func NewProcessPage(command []string, source, dir string) (*ProcessPage, error) {
	if len(command) == 0 {
		return nil, errors.New("empty ssr command")
	}
	return &ProcessPage{command: command, source: source, dir: dir}, nil
}

// Render implements Page. The route and raw path are passed as PRERENDER_ROUTE and
// PRERENDER_PATH.
func (p *ProcessPage) Render(ctx context.Context, req *Request) (Content, error) {
	args := append(append([]string{}, p.command[1:]...), p.source)
	// #nosec G204 -- command comes from the project configuration
	cmd := exec.CommandContext(ctx, p.command[0], args...)
	cmd.Dir = p.dir
	cmd.Env = append(os.Environ(),
		"PRERENDER_ROUTE="+req.Route,
		"PRERENDER_PATH="+req.Path,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return Content{}, fmt.Errorf("%s: %w: %s", strings.Join(p.command, " "), err, msg)
		}
		return Content{}, fmt.Errorf("%s: %w", strings.Join(p.command, " "), err)
	}
	// #nosec G203 -- the page module owns its markup
	return Content{Body: template.HTML(stdout.String())}, nil
}

// HasClientScript implements ClientScripted: process pages are hydrated by the client
// bundle built next to them.
func (p *ProcessPage) HasClientScript() bool { return true }
